// Package stroke turns paths into fillable stroke outlines. It covers the
// three stages that precede rasterization of a stroke: trimming, dashing and
// offset expansion with joins and caps.
//
// Expansion builds two offset polylines per sub-path. The forward side runs
// along the path at -width/2, the backward side at +width/2. An open
// sub-path becomes one contour: forward, end cap, reversed backward, start
// cap. A closed sub-path becomes two contours of opposite orientation, which
// fill as a ring under the non-zero rule.
package stroke

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/tvg/internal/geom"
)

// Cap is the shape drawn at the ends of open sub-paths.
type Cap uint8

const (
	CapButt Cap = iota
	CapRound
	CapSquare
)

// Join is the shape drawn where two segments meet.
type Join uint8

const (
	JoinMiter Join = iota
	JoinRound
	JoinBevel
)

// Style describes a stroke in path units.
type Style struct {
	Width      float32
	Cap        Cap
	Join       Join
	MiterLimit float32
}

// DefaultStyle returns a 1-unit butt/miter stroke with miter limit 4.
func DefaultStyle() Style {
	return Style{Width: 1, Cap: CapButt, Join: JoinMiter, MiterLimit: 4}
}

// Expander converts stroked paths to filled paths.
type Expander struct {
	style Style

	// tolerance bounds the chord error when flattening curves; sag bounds
	// the chord error of round joins and caps.
	tolerance float32
	sag       float32

	forward  []geom.Point
	backward []geom.Point
	out      geom.Path

	startPt   geom.Point
	startNorm geom.Point
	startTan  geom.Point
	lastPt    geom.Point
	lastTan   geom.Point
	lastNorm  geom.Point

	joinThresh float32
}

// NewExpander creates an expander for style with a quarter-unit tolerance.
func NewExpander(style Style) *Expander {
	return &Expander{style: style, tolerance: 0.25, sag: 1.0 / 16}
}

// SetTolerance sets the flattening tolerance in path units. Round joins
// and caps use a quarter of it.
func (e *Expander) SetTolerance(tol float32) {
	if tol > 0 {
		e.tolerance = tol
		e.sag = tol / 4
	}
}

// Expand strokes p and returns the outline to fill with the non-zero rule.
func (e *Expander) Expand(p *geom.Path) geom.Path {
	e.reset()
	if e.style.Width <= 0 {
		return e.out
	}

	p.Walk(func(s geom.Segment) {
		switch s.Cmd {
		case geom.MoveTo:
			e.finish()
			e.startPt = s.Pts[0]
			e.lastPt = s.Pts[0]
		case geom.LineTo:
			e.lineTo(s.Pts[1])
		case geom.CubicTo:
			b := geom.Bezier{Start: e.lastPt, Ctrl1: s.Pts[1], Ctrl2: s.Pts[2], End: s.Pts[3]}
			if b.Ctrl1 == b.Start && b.Ctrl2 == b.Start && b.End == b.Start {
				return
			}
			for _, pt := range b.FlattenTolerance(e.tolerance, nil) {
				e.lineTo(pt)
			}
		case geom.Close:
			e.lineTo(e.startPt)
			e.finishClosed()
		}
	})
	e.finish()
	return e.out
}

func (e *Expander) reset() {
	e.forward = e.forward[:0]
	e.backward = e.backward[:0]
	e.out = geom.Path{}
	e.startPt, e.startNorm, e.startTan = geom.Point{}, geom.Point{}, geom.Point{}
	e.lastPt, e.lastTan, e.lastNorm = geom.Point{}, geom.Point{}, geom.Point{}
	if e.style.Width > 0 {
		e.joinThresh = 2 * e.tolerance / e.style.Width
	}
}

func (e *Expander) normal(tan geom.Point) geom.Point {
	return tan.Perp().Mul(0.5 * e.style.Width / tan.Len())
}

func (e *Expander) lineTo(to geom.Point) {
	tan := to.Sub(e.lastPt)
	if tan.Dot(tan) < 1e-12 {
		return
	}
	e.join(tan)
	e.lastTan = tan

	norm := e.normal(tan)
	e.forward = append(e.forward, to.Sub(norm))
	e.backward = append(e.backward, to.Add(norm))
	e.lastPt = to
	e.lastNorm = norm
}

// join connects the segment starting at lastPt with direction tan0 to the
// previous one.
func (e *Expander) join(tan0 geom.Point) {
	norm := e.normal(tan0)
	p0 := e.lastPt

	if len(e.forward) == 0 {
		e.forward = append(e.forward, p0.Sub(norm))
		e.backward = append(e.backward, p0.Add(norm))
		e.startTan = tan0
		e.startNorm = norm
		return
	}

	ab, cd := e.lastTan, tan0
	cross := ab.Cross(cd)
	dot := ab.Dot(cd)
	hypot := math32.Hypot(cross, dot)

	// Nearly collinear: connect without a visible join.
	if dot > 0 && math32.Abs(cross) < hypot*e.joinThresh {
		e.forward = append(e.forward, p0.Sub(norm))
		e.backward = append(e.backward, p0.Add(norm))
		return
	}

	switch e.style.Join {
	case JoinMiter:
		limit := e.style.MiterLimit * e.style.MiterLimit
		if 2*hypot < (hypot+dot)*limit {
			e.miter(p0, norm, ab, cd, cross)
		}
	case JoinRound:
		lastNorm := e.normal(ab)
		angle := math32.Atan2(cross, dot)
		if angle > 0 {
			e.backward = append(e.backward, p0.Add(norm))
			e.forward = e.arc(e.forward, p0, lastNorm.Neg(), angle)
		} else {
			e.forward = append(e.forward, p0.Sub(norm))
			e.backward = e.arc(e.backward, p0, lastNorm, angle)
		}
	}
	e.forward = append(e.forward, p0.Sub(norm))
	e.backward = append(e.backward, p0.Add(norm))
}

// miter adds the intersection of the two outer offset lines on the outer
// side of the turn, and the vertex itself on the inner side.
func (e *Expander) miter(p0, norm, ab, cd geom.Point, cross float32) {
	lastNorm := e.normal(ab)
	if cross > 0 {
		last := p0.Sub(lastNorm)
		this := p0.Sub(norm)
		h := ab.Cross(this.Sub(last)) / cross
		e.forward = append(e.forward, this.Sub(cd.Mul(h)))
		e.backward = append(e.backward, p0)
	} else if cross < 0 {
		last := p0.Add(lastNorm)
		this := p0.Add(norm)
		h := ab.Cross(this.Sub(last)) / cross
		e.backward = append(e.backward, this.Sub(cd.Mul(h)))
		e.forward = append(e.forward, p0)
	}
}

// arc appends points of a circular arc around center, starting at
// center+from and turning by angle radians, excluding the start point.
func (e *Expander) arc(dst []geom.Point, center, from geom.Point, angle float32) []geom.Point {
	r := from.Len()
	n := 1
	if r > e.sag {
		step := 2 * math32.Acos(1-e.sag/r)
		n = int(math32.Ceil(math32.Abs(angle) / step))
	}
	n = max(n, 1)
	a0 := from.Angle()
	for i := 1; i <= n; i++ {
		s, c := math32.Sincos(a0 + angle*float32(i)/float32(n))
		dst = append(dst, geom.Point{X: center.X + r*c, Y: center.Y + r*s})
	}
	return dst
}

// finish emits an open sub-path with both caps.
func (e *Expander) finish() {
	if len(e.forward) == 0 {
		return
	}
	poly := append([]geom.Point(nil), e.forward...)
	poly = e.capAt(poly, e.lastPt, e.lastNorm.Neg())
	for i := len(e.backward) - 1; i >= 0; i-- {
		poly = append(poly, e.backward[i])
	}
	poly = e.capAt(poly, e.startPt, e.startNorm)
	e.emit(poly)

	e.forward = e.forward[:0]
	e.backward = e.backward[:0]
}

// finishClosed emits a closed sub-path as two opposite contours.
func (e *Expander) finishClosed() {
	if len(e.forward) == 0 {
		return
	}
	e.join(e.startTan)
	e.emit(e.forward)

	rev := make([]geom.Point, 0, len(e.backward))
	for i := len(e.backward) - 1; i >= 0; i-- {
		rev = append(rev, e.backward[i])
	}
	e.emit(rev)

	e.forward = e.forward[:0]
	e.backward = e.backward[:0]
}

// capAt appends the cap around center. norm points from center to the
// current end of poly; the cap ends at center-norm.
func (e *Expander) capAt(poly []geom.Point, center, norm geom.Point) []geom.Point {
	switch e.style.Cap {
	case CapRound:
		// The arc ends at center-norm.
		return e.arc(poly, center, norm, math32.Pi)
	case CapSquare:
		ext := norm.Perp()
		poly = append(poly, center.Add(norm).Add(ext), center.Sub(norm).Add(ext))
	}
	return append(poly, center.Sub(norm))
}

func (e *Expander) emit(poly []geom.Point) {
	if len(poly) < 2 {
		return
	}
	e.out.MoveTo(poly[0].X, poly[0].Y)
	for _, p := range poly[1:] {
		e.out.LineTo(p.X, p.Y)
	}
	e.out.Close()
}
