package geom

import (
	"testing"

	"github.com/chewxy/math32"
)

func near(a, b, tol float32) bool {
	return math32.Abs(a-b) <= tol
}

func TestMatrixInvert(t *testing.T) {
	m := Translation(10, 20).Mul(Rotation(30)).Mul(Scaling(2, 3))
	inv, ok := m.Invert()
	if !ok {
		t.Fatal("Invert() reported singular matrix")
	}
	p := Pt(7, -4)
	got := inv.Apply(m.Apply(p))
	if !near(got.X, p.X, 1e-4) || !near(got.Y, p.Y, 1e-4) {
		t.Errorf("inv(m(p)) = %v, want %v", got, p)
	}

	if _, ok := Scaling(0, 1).Invert(); ok {
		t.Error("Invert() of singular matrix should fail")
	}
}

func TestMatrixRectilinear(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		want bool
	}{
		{"identity", Identity(), true},
		{"scale", Scaling(2, 5), true},
		{"rotate 90", Rotation(90), true},
		{"rotate 30", Rotation(30), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.Rectilinear(); got != tt.want {
				t.Errorf("Rectilinear() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPathAppendValidation(t *testing.T) {
	var p Path
	if p.Append([]Command{MoveTo, LineTo}, []Point{{0, 0}}) {
		t.Error("Append() accepted mismatched point count")
	}
	if !p.Append([]Command{MoveTo, CubicTo, Close}, make([]Point, 4)) {
		t.Error("Append() rejected valid input")
	}
}

func TestAppendRectStartPoint(t *testing.T) {
	tests := []struct {
		name   string
		rx, ry float32
		wantX  float32
	}{
		{"sharp", 0, 0, 10},
		{"rounded", 5, 5, 15},
		{"clamped", 100, 100, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Path
			p.AppendRect(10, 10, 40, 20, tt.rx, tt.ry, true)
			if p.Pts[0].X != tt.wantX || p.Pts[0].Y != 10 {
				t.Errorf("start = %v, want (%v, 10)", p.Pts[0], tt.wantX)
			}
			if p.Cmds[len(p.Cmds)-1] != Close {
				t.Error("rect is not closed")
			}
		})
	}
}

func TestAppendArcFullTurn(t *testing.T) {
	var p Path
	p.AppendArc(50, 50, 10, 0, 720, false)
	if len(p.Cmds) != 6 {
		t.Fatalf("full-turn arc has %d commands, want circle (6)", len(p.Cmds))
	}
}

func TestAppendArcPie(t *testing.T) {
	var p Path
	p.AppendArc(0, 0, 10, 0, 90, true)
	if p.Pts[0] != (Point{}) {
		t.Errorf("pie start = %v, want center", p.Pts[0])
	}
	end := p.Pts[len(p.Pts)-1]
	if !near(end.X, 0, 1e-4) || !near(end.Y, 10, 1e-4) {
		t.Errorf("arc end = %v, want (0, 10)", end)
	}
}

func TestBezierLength(t *testing.T) {
	line := Bezier{Pt(0, 0), Pt(10, 0), Pt(20, 0), Pt(30, 0)}
	if l := line.Length(); !near(l, 30, 0.01) {
		t.Errorf("Length() = %v, want 30", l)
	}

	// Quarter circle of radius 100.
	c1, c2, end := ArcSegment(Pt(0, 0), 100, 0, math32.Pi/2)
	arc := Bezier{Pt(100, 0), c1, c2, end}
	want := float32(math32.Pi * 50)
	if l := arc.Length(); !near(l, want, 0.1) {
		t.Errorf("arc Length() = %v, want %v", l, want)
	}
}

func TestBezierSplitAtLength(t *testing.T) {
	b := Bezier{Pt(0, 0), Pt(10, 0), Pt(20, 0), Pt(30, 0)}
	left, right := b.SplitAtLength(12)
	if !near(left.End.X, 12, 0.05) {
		t.Errorf("split point = %v, want x=12", left.End)
	}
	if right.End != b.End {
		t.Errorf("right end = %v, want %v", right.End, b.End)
	}
}

func TestBBoxSnap(t *testing.T) {
	b := EmptyBBox().Add(Pt(1.5, 2.2)).Add(Pt(9.1, 7))
	r := b.Snap()
	if r != (Rect{1, 2, 10, 7}) {
		t.Errorf("Snap() = %+v", r)
	}
	if !EmptyBBox().Empty() {
		t.Error("EmptyBBox() is not empty")
	}
}
