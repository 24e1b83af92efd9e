package tvg

import "github.com/gogpu/tvg/internal/geom"

// Matrix represents a 2D affine transformation in a 3x3 row-major layout:
//
//	| E11 E12 E13 |
//	| E21 E22 E23 |
//	| E31 E32 E33 |
//
// This represents the transformation:
//
//	x' = E11*x + E12*y + E13
//	y' = E21*x + E22*y + E23
//
// The last row is kept for layout compatibility and is (0, 0, 1) for
// every affine transform.
type Matrix struct {
	E11, E12, E13 float32
	E21, E22, E23 float32
	E31, E32, E33 float32
}

// Identity returns the identity transformation matrix.
func Identity() Matrix {
	return Matrix{E11: 1, E22: 1, E33: 1}
}

// Translate creates a translation matrix.
func Translate(x, y float32) Matrix {
	return matrixOf(geom.Translation(x, y))
}

// ScaleMatrix creates a scaling matrix.
func ScaleMatrix(sx, sy float32) Matrix {
	return matrixOf(geom.Scaling(sx, sy))
}

// RotateMatrix creates a rotation matrix, clockwise in degrees.
func RotateMatrix(degree float32) Matrix {
	return matrixOf(geom.Rotation(degree))
}

// Multiply returns m*other, applying other first.
func (m Matrix) Multiply(other Matrix) Matrix {
	return matrixOf(m.geom().Mul(other.geom()))
}

// TransformPoint applies the transformation to a point.
func (m Matrix) TransformPoint(p Point) Point {
	q := m.geom().Apply(geom.Point(p))
	return Point(q)
}

// Invert returns the inverse of m. ok is false when m is singular.
func (m Matrix) Invert() (inv Matrix, ok bool) {
	g, ok := m.geom().Invert()
	return matrixOf(g), ok
}

// IsIdentity reports whether m is the identity.
func (m Matrix) IsIdentity() bool { return m.geom().IsIdentity() }

func (m Matrix) geom() geom.Matrix { return geom.Matrix(m) }

func matrixOf(g geom.Matrix) Matrix { return Matrix(g) }
