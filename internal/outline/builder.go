package outline

import (
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/tvg/internal/geom"
)

// Builder appends transformed path commands to an Outline.
type Builder struct {
	m     geom.Matrix
	out   *Outline
	start int  // first point of the current contour
	open  bool // current contour has points that are not yet terminated
}

// NewBuilder returns a builder writing into o through the transform m.
func NewBuilder(o *Outline, m geom.Matrix) *Builder {
	o.Reset()
	return &Builder{m: m, out: o}
}

// Outline returns the target outline. Call End first to terminate the last
// contour.
func (b *Builder) Outline() *Outline { return b.out }

// Reset clears the outline and the builder state.
func (b *Builder) Reset() {
	b.out.Reset()
	b.start = 0
	b.open = false
}

func (b *Builder) push(p geom.Point, t PointType) {
	b.out.Pts = append(b.out.Pts, FixedPoint(b.m.Apply(p)))
	b.out.Types = append(b.out.Types, t)
}

func (b *Builder) endContour(closed bool) {
	b.out.Contours = append(b.out.Contours, uint32(len(b.out.Pts)-1))
	b.out.Closed = append(b.out.Closed, closed)
	if !closed {
		b.out.Opened = true
	}
	b.open = false
}

// MoveTo starts a new contour, terminating the previous one as open.
func (b *Builder) MoveTo(p geom.Point) {
	if b.open {
		b.endContour(false)
	}
	b.start = len(b.out.Pts)
	b.push(p, OnCurve)
	b.open = true
}

// LineTo adds a line. Without a current contour it behaves like MoveTo.
func (b *Builder) LineTo(p geom.Point) {
	if !b.open {
		b.MoveTo(p)
		return
	}
	b.push(p, OnCurve)
}

// CubicTo adds a cubic curve.
func (b *Builder) CubicTo(c1, c2, p geom.Point) {
	if !b.open {
		b.MoveTo(c1)
	}
	b.push(c1, Cubic)
	b.push(c2, Cubic)
	b.push(p, OnCurve)
}

// Close terminates the current contour by repeating its start point.
// Closing an empty contour only marks the outline as opened.
func (b *Builder) Close() {
	if !b.open || len(b.out.Pts) == b.start {
		b.out.Opened = true
		return
	}
	b.out.Pts = append(b.out.Pts, b.out.Pts[b.start])
	b.out.Types = append(b.out.Types, OnCurve)
	b.endContour(true)
}

// End terminates a trailing open contour.
func (b *Builder) End() *Outline {
	if b.open {
		b.endContour(false)
	}
	return b.out
}

// AppendPath replays path through the builder.
func (b *Builder) AppendPath(path *geom.Path) {
	pts := path.Pts
	for _, c := range path.Cmds {
		switch c {
		case geom.MoveTo:
			b.MoveTo(pts[0])
		case geom.LineTo:
			b.LineTo(pts[0])
		case geom.CubicTo:
			b.CubicTo(pts[0], pts[1], pts[2])
		case geom.Close:
			b.Close()
		}
		pts = pts[c.Points():]
	}
}

// AppendRect adds a (rounded) rectangle.
func (b *Builder) AppendRect(x, y, w, h, rx, ry float32, cw bool) {
	var p geom.Path
	p.AppendRect(x, y, w, h, rx, ry, cw)
	b.AppendPath(&p)
}

// AppendCircle adds an ellipse.
func (b *Builder) AppendCircle(cx, cy, rx, ry float32, cw bool) {
	var p geom.Path
	p.AppendCircle(cx, cy, rx, ry, cw)
	b.AppendPath(&p)
}

// AppendArc adds a circular arc.
func (b *Builder) AppendArc(cx, cy, r, start, sweep float32, pie bool) {
	var p geom.Path
	p.AppendArc(cx, cy, r, start, sweep, pie)
	b.AppendPath(&p)
}

// Build converts path into a fresh outline.
func Build(path *geom.Path, m geom.Matrix, rule FillRule) *Outline {
	o := &Outline{FillRule: rule}
	b := NewBuilder(o, m)
	b.AppendPath(path)
	b.End()
	o.FillRule = rule
	return o
}

// Start returns the first point of contour i.
func (o *Outline) Start(i int) fixed.Point26_6 {
	if i == 0 {
		return o.Pts[0]
	}
	return o.Pts[o.Contours[i-1]+1]
}
