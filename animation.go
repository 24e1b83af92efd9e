package tvg

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/gogpu/tvg/internal/vector"
)

// Animation plays a time-varying picture source frame by frame. Load the
// source through Picture and push the picture to a canvas.
type Animation struct {
	picture *Picture

	begin, end float32
	marker     string
}

// NewAnimation returns an animation with an empty picture.
func (e *Engine) NewAnimation() *Animation {
	return &Animation{picture: e.NewPicture(), end: 1}
}

// Picture returns the picture showing the current frame.
func (a *Animation) Picture() *Picture { return a.picture }

func (a *Animation) source() vector.Animation {
	if a.picture.asset == nil {
		return nil
	}
	return a.picture.asset.Anim
}

// SetFrame moves to frame no, clamped to the active segment. Moving by
// less than a thousandth of a frame is rejected.
func (a *Animation) SetFrame(no float32) error {
	src := a.source()
	if src == nil {
		return fmt.Errorf("tvg: set frame without animation: %w", ErrInsufficientCondition)
	}
	lo, hi := a.span(src)
	no = min(max(no, lo), hi)
	if math32.Abs(no-a.picture.frame) < 0.001 {
		return fmt.Errorf("tvg: frame %g unchanged: %w", no, ErrInsufficientCondition)
	}
	a.picture.frame = no
	a.picture.rebuild()
	return nil
}

// Frame returns the current frame number.
func (a *Animation) Frame() float32 { return a.picture.frame }

// TotalFrame returns the number of frames, or 0 without a source.
func (a *Animation) TotalFrame() float32 {
	if src := a.source(); src != nil {
		return src.TotalFrame()
	}
	return 0
}

// Duration returns the play time in seconds.
func (a *Animation) Duration() float32 {
	src := a.source()
	if src == nil || src.FrameRate() <= 0 {
		return 0
	}
	return src.TotalFrame() / src.FrameRate()
}

// SetSegment limits playback to the fractions [begin, end] of the frame
// range. It fails while a marker is active.
func (a *Animation) SetSegment(begin, end float32) error {
	if a.marker != "" {
		return fmt.Errorf("tvg: set segment while marker %q is active: %w", a.marker, ErrInsufficientCondition)
	}
	if begin > end || begin < 0 || end > 1 {
		return fmt.Errorf("tvg: segment [%g, %g]: %w", begin, end, ErrInvalidArgument)
	}
	a.begin, a.end = begin, end
	return nil
}

// Segment returns the active segment as fractions of the frame range.
func (a *Animation) Segment() (begin, end float32) { return a.begin, a.end }

// SetMarker limits playback to the frames of the named marker. An empty
// name clears the marker and restores the full range.
func (a *Animation) SetMarker(name string) error {
	if name == "" {
		a.marker = ""
		a.begin, a.end = 0, 1
		return nil
	}
	src := a.source()
	if src == nil {
		return fmt.Errorf("tvg: set marker without animation: %w", ErrInsufficientCondition)
	}
	total := src.TotalFrame()
	for _, m := range src.Markers() {
		if m.Name != name {
			continue
		}
		if total <= 0 {
			break
		}
		a.marker = name
		a.begin, a.end = m.Begin/total, m.End/total
		return nil
	}
	return fmt.Errorf("tvg: unknown marker %q: %w", name, ErrInvalidArgument)
}

// Markers returns the marker names of the source in order.
func (a *Animation) Markers() []string {
	src := a.source()
	if src == nil {
		return nil
	}
	var out []string
	for _, m := range src.Markers() {
		out = append(out, m.Name)
	}
	return out
}

// span returns the playable frame range.
func (a *Animation) span(src vector.Animation) (lo, hi float32) {
	total := src.TotalFrame()
	last := max(total-1, 0)
	return min(a.begin*total, last), min(a.end*total, last)
}
