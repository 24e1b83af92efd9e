package sw

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/tvg/internal/blend"
	"github.com/gogpu/tvg/internal/geom"
)

// LUTSize is the number of entries of a gradient color table.
const LUTSize = 256

// Color packs straight r, g, b, a into a premultiplied pixel in the
// requested channel order.
func Color(r, g, b, a uint8, abgr bool) uint32 {
	if abgr {
		return blend.Premultiply(blend.Pack(a, b, g, r))
	}
	return blend.Premultiply(blend.Pack(a, r, g, b))
}

// Spread selects how a gradient continues outside [0, 1].
type Spread uint8

const (
	Pad Spread = iota
	Reflect
	Repeat
)

// Apply maps the gradient parameter t into [0, 1].
func (s Spread) Apply(t float32) float32 {
	switch s {
	case Reflect:
		m := math32.Mod(t, 2)
		if m < 0 {
			m += 2
		}
		return 1 - math32.Abs(m-1)
	case Repeat:
		return t - math32.Floor(t)
	}
	return geom.Clamp(t, 0, 1)
}

// Stop is a straight-alpha gradient color stop.
type Stop struct {
	Offset     float32
	R, G, B, A uint8
}

// GradientKind distinguishes the gradient geometries.
type GradientKind uint8

const (
	Linear GradientKind = iota
	Radial
)

// Gradient is a prepared gradient fill: its color table and the mapping
// from device pixels to gradient space.
type Gradient struct {
	Kind   GradientKind
	Spread Spread
	LUT    [LUTSize]uint32
	// Translucent is set when any stop is not opaque.
	Translucent bool

	inv geom.Matrix

	// linear
	p1, d geom.Point
	lenSq float32

	// radial
	c, f      geom.Point
	r, fr     float32
	radialA   float32
	collapsed bool
}

// NewLinear prepares a linear gradient from p1 to p2. m maps gradient space
// to device space. It returns nil when m is singular.
func NewLinear(p1, p2 geom.Point, stops []Stop, spread Spread, m geom.Matrix, abgr bool) *Gradient {
	inv, ok := m.Invert()
	if !ok {
		return nil
	}
	g := &Gradient{Kind: Linear, Spread: spread, inv: inv, p1: p1, d: p2.Sub(p1)}
	g.lenSq = g.d.Dot(g.d)
	g.buildLUT(stops, abgr)
	return g
}

// NewRadial prepares a radial gradient with center c, radius r, focal
// point f and focal radius fr. A zero radius paints the last stop.
func NewRadial(c geom.Point, r float32, f geom.Point, fr float32, stops []Stop, spread Spread, m geom.Matrix, abgr bool) *Gradient {
	inv, ok := m.Invert()
	if !ok {
		return nil
	}
	g := &Gradient{Kind: Radial, Spread: spread, inv: inv, c: c, r: r, f: f, fr: fr}
	g.collapsed = r < geom.Epsilon
	cd := c.Sub(f)
	dr := r - fr
	g.radialA = cd.Dot(cd) - dr*dr
	g.buildLUT(stops, abgr)
	return g
}

// buildLUT interpolates the stops in straight color and stores
// premultiplied entries. Stops must be sorted by offset.
func (g *Gradient) buildLUT(stops []Stop, abgr bool) {
	if len(stops) == 0 {
		return
	}
	for _, s := range stops {
		if s.A < 255 {
			g.Translucent = true
		}
	}
	j := 0
	for i := range LUTSize {
		pos := float32(i) / (LUTSize - 1)
		for j < len(stops)-1 && pos > stops[j+1].Offset {
			j++
		}
		cur := stops[j]
		switch {
		case pos <= stops[0].Offset:
			cur = stops[0]
		case j == len(stops)-1:
		default:
			next := stops[j+1]
			span := next.Offset - cur.Offset
			if span > geom.Epsilon {
				t := (pos - cur.Offset) / span
				cur = lerpStop(cur, next, t)
			} else {
				cur = next
			}
		}
		g.LUT[i] = Color(cur.R, cur.G, cur.B, cur.A, abgr)
	}
}

func lerpStop(a, b Stop, t float32) Stop {
	l := func(x, y uint8) uint8 {
		return uint8(float32(x) + (float32(y)-float32(x))*t + 0.5)
	}
	return Stop{R: l(a.R, b.R), G: l(a.G, b.G), B: l(a.B, b.B), A: l(a.A, b.A)}
}

func (g *Gradient) lookup(t float32) uint32 {
	t = g.Spread.Apply(t)
	return g.LUT[int(t*(LUTSize-1)+0.5)]
}

// Param returns the gradient parameter at device point q before spread.
// ok is false where a radial gradient is undefined.
func (g *Gradient) Param(q geom.Point) (t float32, ok bool) {
	p := g.inv.Apply(q)
	switch g.Kind {
	case Linear:
		if g.lenSq < geom.Epsilon {
			return 0, true
		}
		return p.Sub(g.p1).Dot(g.d) / g.lenSq, true
	default:
		if g.collapsed {
			return 1, true
		}
		return g.radialParam(p)
	}
}

// radialParam solves |p - (f + t(c-f))| = fr + t(r-fr) for the largest t
// whose circle radius is non-negative.
func (g *Gradient) radialParam(p geom.Point) (float32, bool) {
	cd := g.c.Sub(g.f)
	pd := p.Sub(g.f)
	dr := g.r - g.fr
	b := pd.Dot(cd) + g.fr*dr
	c := pd.Dot(pd) - g.fr*g.fr
	a := g.radialA

	if math32.Abs(a) < geom.Epsilon {
		if math32.Abs(b) < geom.Epsilon {
			return 0, false
		}
		t := c / (2 * b)
		return t, g.fr+t*dr >= 0
	}
	disc := b*b - a*c
	if disc < 0 {
		return 0, false
	}
	sq := math32.Sqrt(disc)
	t0, t1 := (b+sq)/a, (b-sq)/a
	if t0 < t1 {
		t0, t1 = t1, t0
	}
	if g.fr+t0*dr >= 0 {
		return t0, true
	}
	if g.fr+t1*dr >= 0 {
		return t1, true
	}
	return 0, false
}

// Fetch writes the colors of pixels (x..x+len(dst), y) sampled at pixel
// centers.
func (g *Gradient) Fetch(dst []uint32, x, y int) {
	q := geom.Point{X: float32(x) + 0.5, Y: float32(y) + 0.5}
	if g.Kind == Linear {
		// t is affine in x, so step it.
		t, _ := g.Param(q)
		t1, _ := g.Param(geom.Point{X: q.X + 1, Y: q.Y})
		dt := t1 - t
		for i := range dst {
			dst[i] = g.lookup(t + dt*float32(i))
		}
		return
	}
	for i := range dst {
		t, ok := g.Param(q)
		if ok {
			dst[i] = g.lookup(t)
		} else {
			dst[i] = 0
		}
		q.X++
	}
}
