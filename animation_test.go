package tvg

import (
	"errors"
	"math"
	"slices"
	"testing"
)

func loadAnimation(t *testing.T, e *Engine) *Animation {
	t.Helper()
	a := e.NewAnimation()
	if err := a.Picture().Load("testdata/test.json"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return a
}

func TestAnimationInfo(t *testing.T) {
	e := newEngine(t)
	a := loadAnimation(t, e)

	if got := a.TotalFrame(); got != 60 {
		t.Errorf("TotalFrame = %g, want 60", got)
	}
	if got := a.Duration(); math.Abs(float64(got)-2) > 1e-6 {
		t.Errorf("Duration = %g, want 2", got)
	}
	if w, h := a.Picture().Size(); w != 100 || h != 100 {
		t.Errorf("Size = %gx%g", w, h)
	}
	if got := a.Markers(); !slices.Equal(got, []string{"intro", "outro"}) {
		t.Errorf("Markers = %v", got)
	}
}

func TestAnimationWithoutSource(t *testing.T) {
	e := newEngine(t)
	a := e.NewAnimation()
	if err := a.SetFrame(1); !errors.Is(err, ErrInsufficientCondition) {
		t.Errorf("SetFrame: %v", err)
	}
	if err := a.SetMarker("intro"); !errors.Is(err, ErrInsufficientCondition) {
		t.Errorf("SetMarker: %v", err)
	}
	if a.TotalFrame() != 0 || a.Duration() != 0 || a.Markers() != nil {
		t.Error("empty animation reports content")
	}
}

func TestAnimationSetFrame(t *testing.T) {
	e := newEngine(t)
	a := loadAnimation(t, e)

	tests := []struct {
		name    string
		frame   float32
		want    float32
		wantErr error
	}{
		{"forward", 10, 10, nil},
		{"tiny step", 10.0001, 10, ErrInsufficientCondition},
		{"fraction", 12.5, 12.5, nil},
		{"past end", 500, 59, nil},
		{"before start", -3, 0, nil},
	}
	for _, tt := range tests {
		err := a.SetFrame(tt.frame)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("%s: SetFrame(%g) = %v, want %v", tt.name, tt.frame, err, tt.wantErr)
		}
		if got := a.Frame(); got != tt.want {
			t.Errorf("%s: Frame = %g, want %g", tt.name, got, tt.want)
		}
	}
}

func TestAnimationSegment(t *testing.T) {
	e := newEngine(t)
	a := loadAnimation(t, e)

	for _, bad := range [][2]float32{{0.5, 0.2}, {-0.1, 0.5}, {0.2, 1.5}} {
		if err := a.SetSegment(bad[0], bad[1]); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("SetSegment(%g, %g) = %v", bad[0], bad[1], err)
		}
	}
	if err := a.SetSegment(0.25, 0.5); err != nil {
		t.Fatalf("SetSegment: %v", err)
	}
	a.SetFrame(0)
	if got := a.Frame(); got != 15 {
		t.Errorf("frame clamped to %g, want 15", got)
	}
	a.SetFrame(59)
	if got := a.Frame(); got != 30 {
		t.Errorf("frame clamped to %g, want 30", got)
	}
}

func TestAnimationMarker(t *testing.T) {
	e := newEngine(t)
	a := loadAnimation(t, e)

	if err := a.SetMarker("missing"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("unknown marker: %v", err)
	}
	if err := a.SetMarker("outro"); err != nil {
		t.Fatalf("SetMarker: %v", err)
	}
	if b, end := a.Segment(); math.Abs(float64(b)-40.0/60) > 1e-6 || end != 1 {
		t.Errorf("Segment = %g..%g", b, end)
	}
	if err := a.SetSegment(0, 1); !errors.Is(err, ErrInsufficientCondition) {
		t.Errorf("SetSegment with marker: %v", err)
	}
	a.SetFrame(5)
	if got := a.Frame(); got != 40 {
		t.Errorf("frame clamped to %g, want 40", got)
	}
	if err := a.SetMarker(""); err != nil {
		t.Fatalf("clear marker: %v", err)
	}
	if b, end := a.Segment(); b != 0 || end != 1 {
		t.Errorf("Segment after clear = %g..%g", b, end)
	}
}

func TestAnimationSquareMoves(t *testing.T) {
	e := newEngine(t)
	a := loadAnimation(t, e)

	// the red square's left edge starts at x=20 and ends at x=80
	first := render(t, e, 100, 100, a.Picture().Duplicate())
	if got := first[50*100+25]; got != 0xFFFF0000 {
		t.Errorf("frame 0 at square = %#08x, want red", got)
	}
	if got := first[50*100+85]; got != 0xFFFFFFFF {
		t.Errorf("frame 0 background = %#08x, want white", got)
	}

	a.SetFrame(59)
	last := render(t, e, 100, 100, a.Picture().Duplicate())
	if got := last[50*100+25]; got != 0xFFFFFFFF {
		t.Errorf("last frame at old square = %#08x, want white", got)
	}
}
