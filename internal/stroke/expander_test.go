package stroke

import (
	"math"
	"testing"

	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/outline"
	"github.com/gogpu/tvg/internal/raster"
)

func coverage(p geom.Path) float64 {
	o := outline.Build(&p, geom.Identity(), outline.NonZero)
	return raster.Rasterize(o, geom.Rect{X0: -100, Y0: -100, X1: 400, Y1: 400}, true).Coverage()
}

func line(x0, y0, x1, y1 float32) *geom.Path {
	var p geom.Path
	p.MoveTo(x0, y0)
	p.LineTo(x1, y1)
	return &p
}

// =============================================================================
// Expansion
// =============================================================================

func TestExpandLineCaps(t *testing.T) {
	tests := []struct {
		name     string
		cap      Cap
		area     float64
		minX     float32
		tolerant float64
	}{
		{"butt", CapButt, 100 * 10, 10, 1},
		{"square", CapSquare, 110 * 10, 5, 1},
		{"round", CapRound, 100*10 + math.Pi*25, 5, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExpander(Style{Width: 10, Cap: tt.cap, Join: JoinMiter, MiterLimit: 4})
			out := e.Expand(line(10, 50, 110, 50))
			if got := coverage(out); math.Abs(got-tt.area) > tt.tolerant {
				t.Errorf("area = %.2f, want %.2f", got, tt.area)
			}
			if b := out.Bounds(); math.Abs(float64(b.Min.X-tt.minX)) > 0.01 {
				t.Errorf("min x = %v, want %v", b.Min.X, tt.minX)
			}
		})
	}
}

func TestExpandClosedRing(t *testing.T) {
	var p geom.Path
	p.AppendRect(50, 50, 100, 100, 0, 0, true)
	out := NewExpander(Style{Width: 10, Join: JoinMiter, MiterLimit: 4}).Expand(&p)

	// outer 110x110 minus inner 90x90
	want := 110.0*110 - 90*90
	if got := coverage(out); math.Abs(got-want) > 2 {
		t.Errorf("ring area = %.2f, want %.2f", got, want)
	}

	n := 0
	for _, c := range out.Cmds {
		if c == geom.MoveTo {
			n++
		}
	}
	if n != 2 {
		t.Errorf("closed stroke has %d contours, want 2", n)
	}
}

func TestExpandMiterLimit(t *testing.T) {
	// A sharp spike: miter length far exceeds a limit of 1.
	var p geom.Path
	p.MoveTo(0, 100)
	p.LineTo(50, 0)
	p.LineTo(100, 100)

	miter := NewExpander(Style{Width: 10, Join: JoinMiter, MiterLimit: 10}).Expand(&p)
	bevel := NewExpander(Style{Width: 10, Join: JoinMiter, MiterLimit: 1}).Expand(&p)

	if miter.Bounds().Min.Y >= bevel.Bounds().Min.Y {
		t.Errorf("miter top %v should extend above degraded bevel top %v",
			miter.Bounds().Min.Y, bevel.Bounds().Min.Y)
	}
	explicit := NewExpander(Style{Width: 10, Join: JoinBevel, MiterLimit: 10}).Expand(&p)
	if explicit.Bounds() != bevel.Bounds() {
		t.Errorf("limit-degraded miter bounds %v, want bevel %v", bevel.Bounds(), explicit.Bounds())
	}
}

func TestExpandRoundJoinSag(t *testing.T) {
	var p geom.Path
	p.MoveTo(0, 0)
	p.LineTo(100, 0)
	p.LineTo(100, 100)

	e := NewExpander(Style{Width: 40, Join: JoinRound})
	out := e.Expand(&p)
	// every point of the join arc lies on the circle of radius 20 around the vertex
	center := geom.Pt(100, 0)
	found := 0
	for _, pt := range out.Pts {
		d := pt.Dist(center)
		if pt.X > 100 && pt.Y < 0 {
			found++
			if math.Abs(float64(d-20)) > 0.01 {
				t.Fatalf("join point %v at distance %v, want 20", pt, d)
			}
		}
	}
	if found < 3 {
		t.Errorf("round join has %d arc points, want a subdivided arc", found)
	}
}

func TestExpandZeroWidth(t *testing.T) {
	out := NewExpander(Style{Width: 0}).Expand(line(0, 0, 10, 10))
	if !out.Empty() {
		t.Errorf("zero width produced %d commands", len(out.Cmds))
	}
}

func TestExpandDeterministic(t *testing.T) {
	var p geom.Path
	p.AppendCircle(100, 100, 50, 30, true)
	e := NewExpander(Style{Width: 6, Cap: CapRound, Join: JoinRound})
	a := e.Expand(&p)
	b := e.Expand(&p)
	if len(a.Pts) != len(b.Pts) {
		t.Fatalf("repeated expansion differs: %d vs %d points", len(a.Pts), len(b.Pts))
	}
	for i := range a.Pts {
		if a.Pts[i] != b.Pts[i] {
			t.Fatalf("point %d differs: %v vs %v", i, a.Pts[i], b.Pts[i])
		}
	}
}
