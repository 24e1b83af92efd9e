// Package geom holds the float32 geometry shared by every stage of the
// pipeline: points, affine matrices, bounding boxes, paths and Bézier helpers.
package geom

import "github.com/chewxy/math32"

// Epsilon is the tolerance used for float comparisons across the engine.
const Epsilon = 1e-6

// Point is a 2D point or vector.
type Point struct {
	X, Y float32
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float32) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Mul returns p scaled by s.
func (p Point) Mul(s float32) Point { return Point{p.X * s, p.Y * s} }

// Neg returns -p.
func (p Point) Neg() Point { return Point{-p.X, -p.Y} }

// Dot returns the dot product.
func (p Point) Dot(q Point) float32 { return p.X*q.X + p.Y*q.Y }

// Cross returns the z component of the 3D cross product.
func (p Point) Cross(q Point) float32 { return p.X*q.Y - p.Y*q.X }

// Len returns the vector length.
func (p Point) Len() float32 { return math32.Hypot(p.X, p.Y) }

// Dist returns the distance between p and q.
func (p Point) Dist(q Point) float32 { return p.Sub(q).Len() }

// Lerp interpolates between p and q.
func (p Point) Lerp(q Point, t float32) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// Normalize returns a unit vector, or the zero vector for degenerate input.
func (p Point) Normalize() Point {
	l := p.Len()
	if l < Epsilon {
		return Point{}
	}
	return Point{p.X / l, p.Y / l}
}

// Perp returns p rotated 90 degrees counter-clockwise.
func (p Point) Perp() Point { return Point{-p.Y, p.X} }

// Angle returns the direction of p in radians.
func (p Point) Angle() float32 { return math32.Atan2(p.Y, p.X) }

// Equal reports whether p and q are within Epsilon of each other.
func (p Point) Equal(q Point) bool {
	return Zero(p.X-q.X) && Zero(p.Y-q.Y)
}

// Zero reports whether v is within Epsilon of zero.
func Zero(v float32) bool {
	return math32.Abs(v) < Epsilon
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float32) float32 {
	return deg * (math32.Pi / 180)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
