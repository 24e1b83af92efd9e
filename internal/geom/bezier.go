package geom

import "github.com/chewxy/math32"

// Bezier is a cubic Bézier curve.
type Bezier struct {
	Start, Ctrl1, Ctrl2, End Point
}

// At evaluates the curve at t.
func (b Bezier) At(t float32) Point {
	mt := 1 - t
	a := mt * mt * mt
	c := 3 * mt * mt * t
	d := 3 * mt * t * t
	e := t * t * t
	return Point{
		X: a*b.Start.X + c*b.Ctrl1.X + d*b.Ctrl2.X + e*b.End.X,
		Y: a*b.Start.Y + c*b.Ctrl1.Y + d*b.Ctrl2.Y + e*b.End.Y,
	}
}

// Split divides the curve at t.
func (b Bezier) Split(t float32) (left, right Bezier) {
	p01 := b.Start.Lerp(b.Ctrl1, t)
	p12 := b.Ctrl1.Lerp(b.Ctrl2, t)
	p23 := b.Ctrl2.Lerp(b.End, t)
	p012 := p01.Lerp(p12, t)
	p123 := p12.Lerp(p23, t)
	mid := p012.Lerp(p123, t)
	return Bezier{b.Start, p01, p012, mid}, Bezier{mid, p123, p23, b.End}
}

// Length returns the arc length, subdividing until the polygon and the chord
// agree within tolerance.
func (b Bezier) Length() float32 {
	return b.length(0)
}

func (b Bezier) length(depth int) float32 {
	poly := b.Start.Dist(b.Ctrl1) + b.Ctrl1.Dist(b.Ctrl2) + b.Ctrl2.Dist(b.End)
	chord := b.Start.Dist(b.End)
	if poly-chord < 0.01 || depth > 16 {
		return (poly + chord) * 0.5
	}
	l, r := b.Split(0.5)
	return l.length(depth+1) + r.length(depth+1)
}

// SplitAtLength splits the curve where the arc length from Start equals at.
// The parameter is found by bisection.
func (b Bezier) SplitAtLength(at float32) (left, right Bezier) {
	total := b.Length()
	if at <= 0 {
		return Bezier{b.Start, b.Start, b.Start, b.Start}, b
	}
	if at >= total {
		return b, Bezier{b.End, b.End, b.End, b.End}
	}
	t := b.ParamAt(at, total)
	return b.Split(t)
}

// ParamAt returns the curve parameter whose arc length from Start is at.
func (b Bezier) ParamAt(at, total float32) float32 {
	lo, hi := float32(0), float32(1)
	t := at / total
	for i := 0; i < 20; i++ {
		l, _ := b.Split(t)
		d := l.Length() - at
		if math32.Abs(d) < 0.001 {
			break
		}
		if d > 0 {
			hi = t
		} else {
			lo = t
		}
		t = (lo + hi) * 0.5
	}
	return t
}

// Bounds returns the control-point bounds.
func (b Bezier) Bounds() BBox {
	return EmptyBBox().Add(b.Start).Add(b.Ctrl1).Add(b.Ctrl2).Add(b.End)
}

// Flatten appends n evenly spaced points of the curve, excluding Start.
func (b Bezier) Flatten(n int, dst []Point) []Point {
	for i := 1; i <= n; i++ {
		dst = append(dst, b.At(float32(i)/float32(n)))
	}
	return dst
}

// FlattenTolerance appends the end points of a recursive subdivision whose
// control points lie within tol of the chord, excluding Start.
func (b Bezier) FlattenTolerance(tol float32, dst []Point) []Point {
	return b.flatten(tol, dst, 0)
}

func (b Bezier) flatten(tol float32, dst []Point, depth int) []Point {
	d1 := distToLine(b.Ctrl1, b.Start, b.End)
	d2 := distToLine(b.Ctrl2, b.Start, b.End)
	if max(d1, d2) <= tol || depth >= 16 {
		return append(dst, b.End)
	}
	l, r := b.Split(0.5)
	dst = l.flatten(tol, dst, depth+1)
	return r.flatten(tol, dst, depth+1)
}

func distToLine(p, a, c Point) float32 {
	ab := c.Sub(a)
	l2 := ab.Dot(ab)
	if l2 < Epsilon {
		return p.Dist(a)
	}
	t := Clamp(p.Sub(a).Dot(ab)/l2, 0, 1)
	return p.Dist(a.Add(ab.Mul(t)))
}

// LineLength returns the length of a segment.
func LineLength(a, b Point) float32 {
	return a.Dist(b)
}

// SplitLineAt returns the point at distance at along a→b.
func SplitLineAt(a, b Point, at float32) Point {
	l := a.Dist(b)
	if l < Epsilon {
		return a
	}
	return a.Lerp(b, at/l)
}
