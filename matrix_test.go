package tvg

import (
	"testing"

	"github.com/chewxy/math32"
)

func matrixNear(a, b Matrix) bool {
	const eps = 1e-5
	d := [...]float32{
		a.E11 - b.E11, a.E12 - b.E12, a.E13 - b.E13,
		a.E21 - b.E21, a.E22 - b.E22, a.E23 - b.E23,
	}
	for _, v := range d {
		if math32.Abs(v) > eps {
			return false
		}
	}
	return true
}

func TestMatrixTransformPoint(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		in   Point
		want Point
	}{
		{"identity", Identity(), Pt(3, 4), Pt(3, 4)},
		{"translate", Translate(10, -2), Pt(1, 1), Pt(11, -1)},
		{"scale", ScaleMatrix(2, 3), Pt(1, 1), Pt(2, 3)},
		{"rotate 90", RotateMatrix(90), Pt(1, 0), Pt(0, 1)},
		{"translate after scale", Translate(5, 5).Multiply(ScaleMatrix(2, 2)), Pt(1, 1), Pt(7, 7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.TransformPoint(tt.in)
			if math32.Abs(got.X-tt.want.X) > 1e-5 || math32.Abs(got.Y-tt.want.Y) > 1e-5 {
				t.Errorf("TransformPoint(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMatrixInvert(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		ok   bool
	}{
		{"identity", Identity(), true},
		{"affine", Translate(3, 4).Multiply(RotateMatrix(30)).Multiply(ScaleMatrix(2, 0.5)), true},
		{"singular", ScaleMatrix(0, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := tt.m.Invert()
			if ok != tt.ok {
				t.Fatalf("Invert ok = %v, want %v", ok, tt.ok)
			}
			if ok && !matrixNear(tt.m.Multiply(inv), Identity()) {
				t.Errorf("m*inv = %+v, want identity", tt.m.Multiply(inv))
			}
		})
	}
}

func TestMatrixIsIdentity(t *testing.T) {
	if !Identity().IsIdentity() || !Translate(0, 0).IsIdentity() {
		t.Error("identity not recognized")
	}
	if Translate(1, 0).IsIdentity() || RotateMatrix(10).IsIdentity() {
		t.Error("transform reported as identity")
	}
}
