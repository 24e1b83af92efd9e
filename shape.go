package tvg

import (
	"fmt"
	"slices"

	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/stroke"
)

// Shape is a path filled and stroked with solid colors or gradients.
type Shape struct {
	paintBase

	path geom.Path
	rule FillRule

	fillColor [4]uint8
	fill      Fill

	stroke strokeStyle
	trim   trimPath
}

type strokeStyle struct {
	width       float32
	color       [4]uint8
	fill        Fill
	cap         StrokeCap
	join        StrokeJoin
	miterLimit  float32
	dash        []float32
	dashOffset  float32
	strokeFirst bool
}

type trimPath struct {
	begin, end   float32
	simultaneous bool
}

func (t trimPath) active() bool { return t.begin != 0 || t.end != 1 }

// NewShape returns an empty shape: no path, no fill and a square-capped,
// bevel-joined stroke of width 0.
func NewShape() *Shape {
	s := &Shape{}
	s.init(s)
	s.stroke = strokeStyle{cap: CapSquare, join: JoinBevel, miterLimit: 4}
	s.trim = trimPath{end: 1}
	return s
}

func (s *Shape) Type() Type { return TypeShape }

// MoveTo starts a new sub-path at (x, y).
func (s *Shape) MoveTo(x, y float32) {
	s.path.MoveTo(x, y)
	s.markDirty()
}

// LineTo adds a line to (x, y).
func (s *Shape) LineTo(x, y float32) {
	s.path.LineTo(x, y)
	s.markDirty()
}

// CubicTo adds a cubic Bézier curve ending at (x, y).
func (s *Shape) CubicTo(cx1, cy1, cx2, cy2, x, y float32) {
	s.path.CubicTo(cx1, cy1, cx2, cy2, x, y)
	s.markDirty()
}

// Close closes the current sub-path.
func (s *Shape) Close() {
	s.path.Close()
	s.markDirty()
}

// AppendPath appends raw commands and points. The points must match the
// commands: none for PathClose, one for PathMoveTo and PathLineTo, three
// for PathCubicTo.
func (s *Shape) AppendPath(cmds []PathCommand, pts []Point) error {
	if !s.path.Append(toGeomCmds(cmds), toGeomPts(pts)) {
		return fmt.Errorf("tvg: append path of %d commands, %d points: %w", len(cmds), len(pts), ErrInvalidArgument)
	}
	s.markDirty()
	return nil
}

// AppendRect adds a rectangle with corner radii rx, ry. cw selects the
// clockwise direction.
func (s *Shape) AppendRect(x, y, w, h, rx, ry float32, cw bool) {
	s.path.AppendRect(x, y, w, h, rx, ry, cw)
	s.markDirty()
}

// AppendCircle adds an ellipse centered at (cx, cy).
func (s *Shape) AppendCircle(cx, cy, rx, ry float32, cw bool) {
	s.path.AppendCircle(cx, cy, rx, ry, cw)
	s.markDirty()
}

// AppendArc adds a circular arc from startAngle sweeping sweep degrees. A
// pie arc is closed through the center.
func (s *Shape) AppendArc(cx, cy, r, startAngle, sweep float32, pie bool) {
	s.path.AppendArc(cx, cy, r, startAngle, sweep, pie)
	s.markDirty()
}

// ResetPath removes the path, keeping fill and stroke.
func (s *Shape) ResetPath() {
	s.path.Reset()
	s.markDirty()
}

// Path returns copies of the path commands and points.
func (s *Shape) Path() ([]PathCommand, []Point) {
	cmds := make([]PathCommand, len(s.path.Cmds))
	for i, c := range s.path.Cmds {
		cmds[i] = PathCommand(c)
	}
	pts := make([]Point, len(s.path.Pts))
	for i, p := range s.path.Pts {
		pts[i] = Point(p)
	}
	return cmds, pts
}

// SetFillColor fills the shape with a solid straight-alpha color,
// replacing any gradient.
func (s *Shape) SetFillColor(r, g, b, a uint8) {
	s.fillColor = [4]uint8{r, g, b, a}
	s.fill = nil
	s.markDirty()
}

// FillColor returns the solid fill color.
func (s *Shape) FillColor() (r, g, b, a uint8) {
	c := s.fillColor
	return c[0], c[1], c[2], c[3]
}

// SetFillGradient fills the shape with f, replacing the solid color. nil
// removes the gradient.
func (s *Shape) SetFillGradient(f Fill) {
	s.fill = f
	if f != nil {
		s.fillColor = [4]uint8{}
	}
	s.markDirty()
}

// FillGradient returns the fill gradient, or nil.
func (s *Shape) FillGradient() Fill { return s.fill }

func (s *Shape) SetFillRule(r FillRule) error {
	if r > EvenOdd {
		return fmt.Errorf("tvg: fill rule %d: %w", r, ErrInvalidArgument)
	}
	s.rule = r
	s.markDirty()
	return nil
}

func (s *Shape) FillRule() FillRule { return s.rule }

// SetStrokeWidth sets the stroke width. 0 disables the stroke.
func (s *Shape) SetStrokeWidth(w float32) error {
	if w < 0 {
		return fmt.Errorf("tvg: stroke width %g: %w", w, ErrInvalidArgument)
	}
	s.stroke.width = w
	s.markDirty()
	return nil
}

func (s *Shape) StrokeWidth() float32 { return s.stroke.width }

// SetStrokeColor strokes with a solid straight-alpha color, replacing any
// gradient.
func (s *Shape) SetStrokeColor(r, g, b, a uint8) {
	s.stroke.color = [4]uint8{r, g, b, a}
	s.stroke.fill = nil
	s.markDirty()
}

func (s *Shape) StrokeColor() (r, g, b, a uint8) {
	c := s.stroke.color
	return c[0], c[1], c[2], c[3]
}

// SetStrokeGradient strokes with f, replacing the solid color.
func (s *Shape) SetStrokeGradient(f Fill) {
	s.stroke.fill = f
	if f != nil {
		s.stroke.color = [4]uint8{}
	}
	s.markDirty()
}

func (s *Shape) StrokeGradient() Fill { return s.stroke.fill }

func (s *Shape) SetStrokeCap(c StrokeCap) error {
	if c > CapSquare {
		return fmt.Errorf("tvg: stroke cap %d: %w", c, ErrInvalidArgument)
	}
	s.stroke.cap = c
	s.markDirty()
	return nil
}

func (s *Shape) StrokeCap() StrokeCap { return s.stroke.cap }

func (s *Shape) SetStrokeJoin(j StrokeJoin) error {
	if j > JoinBevel {
		return fmt.Errorf("tvg: stroke join %d: %w", j, ErrInvalidArgument)
	}
	s.stroke.join = j
	s.markDirty()
	return nil
}

func (s *Shape) StrokeJoin() StrokeJoin { return s.stroke.join }

// SetStrokeMiterLimit sets the miter length limit, in stroke widths, past
// which miter joins fall back to bevels.
func (s *Shape) SetStrokeMiterLimit(limit float32) error {
	if limit < 0 {
		return fmt.Errorf("tvg: miter limit %g: %w", limit, ErrInvalidArgument)
	}
	s.stroke.miterLimit = limit
	s.markDirty()
	return nil
}

func (s *Shape) StrokeMiterLimit() float32 { return s.stroke.miterLimit }

// SetStrokeDash sets the on/off dash pattern starting offset units into
// it. An empty pattern removes dashing and a pattern with a zero entry
// draws a solid stroke. An odd pattern is repeated once.
func (s *Shape) SetStrokeDash(pattern []float32, offset float32) error {
	for _, v := range pattern {
		if v < 0 {
			return fmt.Errorf("tvg: dash entry %g: %w", v, ErrInvalidArgument)
		}
	}
	if len(pattern)%2 == 1 {
		pattern = append(slices.Clone(pattern), pattern...)
	} else {
		pattern = slices.Clone(pattern)
	}
	s.stroke.dash = pattern
	s.stroke.dashOffset = offset
	s.markDirty()
	return nil
}

// StrokeDash returns the dash pattern and offset.
func (s *Shape) StrokeDash() ([]float32, float32) {
	return slices.Clone(s.stroke.dash), s.stroke.dashOffset
}

// SetPaintOrder draws the stroke below the fill when strokeFirst is set.
func (s *Shape) SetPaintOrder(strokeFirst bool) {
	s.stroke.strokeFirst = strokeFirst
	s.markDirty()
}

func (s *Shape) PaintOrder() (strokeFirst bool) { return s.stroke.strokeFirst }

// SetTrimPath keeps the part of the path between the fractions begin and
// end of its length, for both fill and stroke. begin > end wraps around
// the path end. simultaneous trims every sub-path on its own.
func (s *Shape) SetTrimPath(begin, end float32, simultaneous bool) error {
	s.trim = trimPath{begin: begin, end: end, simultaneous: simultaneous}
	s.markDirty()
	return nil
}

// TrimPath returns the trim range.
func (s *Shape) TrimPath() (begin, end float32, simultaneous bool) {
	return s.trim.begin, s.trim.end, s.trim.simultaneous
}

func (s *Shape) Duplicate() Paint {
	d := NewShape()
	s.paintBase.duplicate(&d.paintBase)
	d.path = s.path.Clone()
	d.rule = s.rule
	d.fillColor = s.fillColor
	if s.fill != nil {
		d.fill = s.fill.Duplicate()
	}
	d.stroke = s.stroke
	d.stroke.dash = slices.Clone(s.stroke.dash)
	if s.stroke.fill != nil {
		d.stroke.fill = s.stroke.fill.Duplicate()
	}
	d.trim = s.trim
	return d
}

// Bounds returns the box of the path points. The stroke is not included.
func (s *Shape) Bounds(transformed bool) (x, y, w, h float32, err error) {
	return s.bounds(s.path.Bounds(), transformed)
}

func (s *Shape) hasFill() bool {
	return s.fill != nil || s.fillColor[3] > 0
}

func (s *Shape) hasStroke() bool {
	return s.stroke.width > 0 && (s.stroke.fill != nil || s.stroke.color[3] > 0)
}

// geometry returns the path with the trim applied, or false when nothing
// is left to draw.
func (s *Shape) geometry() (geom.Path, bool) {
	if s.path.Empty() {
		return geom.Path{}, false
	}
	if !s.trim.active() {
		return s.path, true
	}
	return stroke.Trim(&s.path, s.trim.begin, s.trim.end, s.trim.simultaneous)
}

// strokeOutline expands p into the path to fill for the stroke. tol is
// the flattening tolerance in path units.
func (s *Shape) strokeOutline(p *geom.Path, tol float32) geom.Path {
	if stroke.ValidDash(s.stroke.dash) {
		dashed := stroke.Dash(p, s.stroke.dash, s.stroke.dashOffset)
		p = &dashed
	}
	e := stroke.NewExpander(stroke.Style{
		Width:      s.stroke.width,
		Cap:        stroke.Cap(s.stroke.cap),
		Join:       stroke.Join(s.stroke.join),
		MiterLimit: s.stroke.miterLimit,
	})
	e.SetTolerance(tol)
	return e.Expand(p)
}
