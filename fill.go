package tvg

import (
	"fmt"
	"slices"

	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/sw"
)

// ColorStop is a straight-alpha gradient color at Offset in [0, 1].
type ColorStop struct {
	Offset     float32
	R, G, B, A uint8
}

// Spread selects how a gradient continues outside its color stops.
type Spread uint8

const (
	// SpreadPad extends the end colors.
	SpreadPad Spread = iota
	// SpreadReflect mirrors the gradient.
	SpreadReflect
	// SpreadRepeat tiles the gradient.
	SpreadRepeat
)

// Fill is a gradient paint for shape and text fills and shape strokes:
// a *LinearGradient or *RadialGradient.
type Fill interface {
	SetColorStops(stops []ColorStop) error
	ColorStops() []ColorStop
	SetSpread(s Spread) error
	Spread() Spread
	SetTransform(m Matrix) error
	Transform() Matrix
	// Duplicate returns an independent copy.
	Duplicate() Fill

	fill() *fillBase
}

type fillBase struct {
	stops  []ColorStop
	spread Spread
	m      geom.Matrix
}

func newFillBase() fillBase { return fillBase{m: geom.Identity()} }

func (f *fillBase) fill() *fillBase { return f }

// SetColorStops replaces the color stops. Offsets are clamped to [0, 1]
// and the stops are kept in offset order, equal offsets in call order.
func (f *fillBase) SetColorStops(stops []ColorStop) error {
	f.stops = slices.Clone(stops)
	for i := range f.stops {
		f.stops[i].Offset = geom.Clamp(f.stops[i].Offset, 0, 1)
	}
	slices.SortStableFunc(f.stops, func(a, b ColorStop) int {
		switch {
		case a.Offset < b.Offset:
			return -1
		case a.Offset > b.Offset:
			return 1
		}
		return 0
	})
	return nil
}

// ColorStops returns the sorted color stops.
func (f *fillBase) ColorStops() []ColorStop { return slices.Clone(f.stops) }

func (f *fillBase) SetSpread(s Spread) error {
	if s > SpreadRepeat {
		return fmt.Errorf("tvg: spread %d: %w", s, ErrInvalidArgument)
	}
	f.spread = s
	return nil
}

func (f *fillBase) Spread() Spread { return f.spread }

// SetTransform sets the gradient transform, applied before the transform
// of the paint it fills.
func (f *fillBase) SetTransform(m Matrix) error {
	f.m = m.geom()
	return nil
}

func (f *fillBase) Transform() Matrix { return matrixOf(f.m) }

func (f *fillBase) clone() fillBase {
	return fillBase{stops: slices.Clone(f.stops), spread: f.spread, m: f.m}
}

func (f *fillBase) swStops() []sw.Stop {
	out := make([]sw.Stop, len(f.stops))
	for i, s := range f.stops {
		out[i] = sw.Stop{Offset: s.Offset, R: s.R, G: s.G, B: s.B, A: s.A}
	}
	return out
}

// LinearGradient varies color along the line from (x1, y1) to (x2, y2).
type LinearGradient struct {
	fillBase
	x1, y1, x2, y2 float32
}

// NewLinearGradient returns a gradient with no stops along a zero-length
// line.
func NewLinearGradient() *LinearGradient {
	return &LinearGradient{fillBase: newFillBase()}
}

// SetLinear sets the gradient line.
func (g *LinearGradient) SetLinear(x1, y1, x2, y2 float32) error {
	g.x1, g.y1, g.x2, g.y2 = x1, y1, x2, y2
	return nil
}

// Linear returns the gradient line.
func (g *LinearGradient) Linear() (x1, y1, x2, y2 float32) {
	return g.x1, g.y1, g.x2, g.y2
}

func (g *LinearGradient) Duplicate() Fill {
	d := *g
	d.fillBase = g.clone()
	return &d
}

// RadialGradient varies color between a focal circle (fx, fy, fr) and the
// end circle (cx, cy, r).
type RadialGradient struct {
	fillBase
	cx, cy, r, fx, fy, fr float32
}

// NewRadialGradient returns a gradient with no stops and zero radius.
func NewRadialGradient() *RadialGradient {
	return &RadialGradient{fillBase: newFillBase()}
}

// SetRadial sets the end circle and the focal circle. Negative radii are
// rejected. A zero radius paints the last stop color.
func (g *RadialGradient) SetRadial(cx, cy, r, fx, fy, fr float32) error {
	if r < 0 || fr < 0 {
		return fmt.Errorf("tvg: radial radius %g, focal radius %g: %w", r, fr, ErrInvalidArgument)
	}
	g.cx, g.cy, g.r, g.fx, g.fy, g.fr = cx, cy, r, fx, fy, fr
	return nil
}

// Radial returns the end circle and the focal circle.
func (g *RadialGradient) Radial() (cx, cy, r, fx, fy, fr float32) {
	return g.cx, g.cy, g.r, g.fx, g.fy, g.fr
}

func (g *RadialGradient) Duplicate() Fill {
	d := *g
	d.fillBase = g.clone()
	return &d
}

// source prepares f for drawing under the world transform m. It returns
// nil when the gradient has no stops or its transform is singular.
func source(f Fill, m geom.Matrix, abgr bool) *sw.Gradient {
	b := f.fill()
	if len(b.stops) == 0 {
		return nil
	}
	m = m.Mul(b.m)
	stops := b.swStops()
	spread := sw.Spread(b.spread)
	switch g := f.(type) {
	case *LinearGradient:
		return sw.NewLinear(geom.Pt(g.x1, g.y1), geom.Pt(g.x2, g.y2), stops, spread, m, abgr)
	case *RadialGradient:
		return sw.NewRadial(geom.Pt(g.cx, g.cy), g.r, geom.Pt(g.fx, g.fy), g.fr, stops, spread, m, abgr)
	}
	return nil
}

// translucent reports whether any stop is not opaque.
func translucent(f Fill) bool {
	for _, s := range f.fill().stops {
		if s.A < 255 {
			return true
		}
	}
	return false
}
