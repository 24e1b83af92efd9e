package geom

import "github.com/chewxy/math32"

// Matrix is a 3x3 affine transform in row-major order:
//
//	x' = E11*x + E12*y + E13
//	y' = E21*x + E22*y + E23
type Matrix struct {
	E11, E12, E13 float32
	E21, E22, E23 float32
	E31, E32, E33 float32
}

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{E11: 1, E22: 1, E33: 1}
}

// Translation returns a translation matrix.
func Translation(tx, ty float32) Matrix {
	return Matrix{E11: 1, E13: tx, E22: 1, E23: ty, E33: 1}
}

// Scaling returns a scale matrix.
func Scaling(sx, sy float32) Matrix {
	return Matrix{E11: sx, E22: sy, E33: 1}
}

// Rotation returns a rotation matrix for deg degrees (clockwise in y-down space).
func Rotation(deg float32) Matrix {
	s, c := math32.Sincos(Deg2Rad(deg))
	return Matrix{E11: c, E12: -s, E21: s, E22: c, E33: 1}
}

// Mul returns m*n, applying n first.
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		E11: m.E11*n.E11 + m.E12*n.E21 + m.E13*n.E31,
		E12: m.E11*n.E12 + m.E12*n.E22 + m.E13*n.E32,
		E13: m.E11*n.E13 + m.E12*n.E23 + m.E13*n.E33,
		E21: m.E21*n.E11 + m.E22*n.E21 + m.E23*n.E31,
		E22: m.E21*n.E12 + m.E22*n.E22 + m.E23*n.E32,
		E23: m.E21*n.E13 + m.E22*n.E23 + m.E23*n.E33,
		E31: m.E31*n.E11 + m.E32*n.E21 + m.E33*n.E31,
		E32: m.E31*n.E12 + m.E32*n.E22 + m.E33*n.E32,
		E33: m.E31*n.E13 + m.E32*n.E23 + m.E33*n.E33,
	}
}

// Apply transforms p.
func (m Matrix) Apply(p Point) Point {
	return Point{
		X: m.E11*p.X + m.E12*p.Y + m.E13,
		Y: m.E21*p.X + m.E22*p.Y + m.E23,
	}
}

// Det returns the determinant of the linear part.
func (m Matrix) Det() float32 {
	return m.E11*(m.E22*m.E33-m.E32*m.E23) -
		m.E12*(m.E21*m.E33-m.E23*m.E31) +
		m.E13*(m.E21*m.E32-m.E22*m.E31)
}

// Invert returns the inverse of m. ok is false when m is singular.
func (m Matrix) Invert() (inv Matrix, ok bool) {
	det := m.Det()
	if Zero(det) {
		return Matrix{}, false
	}
	d := 1 / det
	inv.E11 = (m.E22*m.E33 - m.E32*m.E23) * d
	inv.E12 = (m.E13*m.E32 - m.E12*m.E33) * d
	inv.E13 = (m.E12*m.E23 - m.E13*m.E22) * d
	inv.E21 = (m.E23*m.E31 - m.E21*m.E33) * d
	inv.E22 = (m.E11*m.E33 - m.E13*m.E31) * d
	inv.E23 = (m.E21*m.E13 - m.E11*m.E23) * d
	inv.E31 = (m.E21*m.E32 - m.E31*m.E22) * d
	inv.E32 = (m.E31*m.E12 - m.E11*m.E32) * d
	inv.E33 = (m.E11*m.E22 - m.E21*m.E12) * d
	return inv, true
}

// IsIdentity reports whether m is the identity.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// Rectilinear reports whether m maps axis-aligned rectangles to
// axis-aligned rectangles.
func (m Matrix) Rectilinear() bool {
	return (Zero(m.E12) && Zero(m.E21)) || (Zero(m.E11) && Zero(m.E22))
}

// ScaleFactor returns the average linear scale of m.
func (m Matrix) ScaleFactor() float32 {
	sx := math32.Hypot(m.E11, m.E21)
	sy := math32.Hypot(m.E12, m.E22)
	return (sx + sy) * 0.5
}
