// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package raster

import (
	"math"
	"testing"

	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/outline"
)

var screen = geom.Rect{X0: 0, Y0: 0, X1: 400, Y1: 400}

func rasterPath(build func(p *geom.Path), rule outline.FillRule) *RLE {
	var p geom.Path
	build(&p)
	return Rasterize(outline.Build(&p, geom.Identity(), rule), screen, true)
}

// =============================================================================
// Rasterizer
// =============================================================================

func TestRasterizeRect(t *testing.T) {
	rle := rasterPath(func(p *geom.Path) { p.AppendRect(10, 10, 80, 80, 0, 0, true) }, outline.NonZero)

	if len(rle.Spans) != 80 {
		t.Fatalf("len(Spans) = %d, want 80", len(rle.Spans))
	}
	for _, s := range rle.Spans {
		if s.X != 10 || s.Len != 80 || s.Coverage != 255 {
			t.Fatalf("span %+v, want x=10 len=80 cov=255", s)
		}
	}
	if got := rle.CoverageAt(9, 50); got != 0 {
		t.Errorf("CoverageAt(9,50) = %d, want 0", got)
	}
	if got := rle.CoverageAt(90, 50); got != 0 {
		t.Errorf("CoverageAt(90,50) = %d, want 0", got)
	}
}

func TestRasterizeArea(t *testing.T) {
	tests := []struct {
		name  string
		build func(p *geom.Path)
		area  float64
		tol   float64
	}{
		{"triangle", func(p *geom.Path) {
			p.MoveTo(0, 0)
			p.LineTo(100, 0)
			p.LineTo(0, 100)
			p.Close()
		}, 5000, 1},
		{"offset square", func(p *geom.Path) { p.AppendRect(10.5, 20.25, 30, 40, 0, 0, true) }, 1200, 1},
		{"diamond", func(p *geom.Path) {
			p.MoveTo(50, 0)
			p.LineTo(100, 50)
			p.LineTo(50, 100)
			p.LineTo(0, 50)
			p.Close()
		}, 5000, 1},
		{"circle", func(p *geom.Path) { p.AppendCircle(200, 200, 100, 100, true) }, math.Pi * 100 * 100, 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rle := rasterPath(tt.build, outline.NonZero)
			got := rle.Coverage()
			if math.Abs(got-tt.area) > tt.tol {
				t.Errorf("Coverage() = %.2f, want %.2f ± %.2f", got, tt.area, tt.tol)
			}
		})
	}
}

func TestRasterizeFillRuleDuality(t *testing.T) {
	build := func(p *geom.Path) {
		p.MoveTo(20, 20)
		p.LineTo(180, 40)
		p.LineTo(120, 170)
		p.LineTo(30, 120)
		p.Close()
	}
	nz := rasterPath(build, outline.NonZero)
	eo := rasterPath(build, outline.EvenOdd)
	if len(nz.Spans) != len(eo.Spans) {
		t.Fatalf("span count differs: %d vs %d", len(nz.Spans), len(eo.Spans))
	}
	for i := range nz.Spans {
		if nz.Spans[i] != eo.Spans[i] {
			t.Fatalf("span %d differs: %+v vs %+v", i, nz.Spans[i], eo.Spans[i])
		}
	}
}

func TestRasterizeEvenOddHole(t *testing.T) {
	build := func(p *geom.Path) {
		p.AppendRect(0, 0, 100, 100, 0, 0, true)
		p.AppendRect(25, 25, 50, 50, 0, 0, true)
	}
	if got := rasterPath(build, outline.EvenOdd).CoverageAt(50, 50); got != 0 {
		t.Errorf("EvenOdd hole coverage = %d, want 0", got)
	}
	if got := rasterPath(build, outline.NonZero).CoverageAt(50, 50); got != 255 {
		t.Errorf("NonZero overlap coverage = %d, want 255", got)
	}
}

func TestRasterizeClip(t *testing.T) {
	var p geom.Path
	p.AppendRect(-50, -50, 100, 100, 0, 0, true)
	rle := Rasterize(outline.Build(&p, geom.Identity(), outline.NonZero), screen, true)
	if b := rle.Bounds(); b != (geom.Rect{X0: 0, Y0: 0, X1: 50, Y1: 50}) {
		t.Errorf("Bounds() = %+v", b)
	}
}

func TestRasterizeEmpty(t *testing.T) {
	if rle := Rasterize(&outline.Outline{}, screen, true); !rle.Empty() {
		t.Error("empty outline produced spans")
	}
	var p geom.Path
	p.AppendRect(500, 500, 10, 10, 0, 0, true)
	if rle := Rasterize(outline.Build(&p, geom.Identity(), outline.NonZero), screen, true); !rle.Empty() {
		t.Error("outline outside the clip produced spans")
	}
}

// =============================================================================
// Span algebra
// =============================================================================

func TestIntersect(t *testing.T) {
	a := FromRect(geom.Rect{X0: 0, Y0: 0, X1: 10, Y1: 10})
	b := &RLE{Spans: []Span{{X: 5, Y: 3, Len: 10, Coverage: 128}}}
	if !a.Intersect(b) {
		t.Fatal("Intersect() reported empty result")
	}
	want := Span{X: 5, Y: 3, Len: 5, Coverage: 128}
	if len(a.Spans) != 1 || a.Spans[0] != want {
		t.Errorf("Intersect() = %+v, want [%+v]", a.Spans, want)
	}
}

func TestClipRect(t *testing.T) {
	a := FromRect(geom.Rect{X0: 0, Y0: 0, X1: 10, Y1: 10})
	a.ClipRect(geom.Rect{X0: 2, Y0: 4, X1: 6, Y1: 5})
	want := Span{X: 2, Y: 4, Len: 4, Coverage: 255}
	if len(a.Spans) != 1 || a.Spans[0] != want {
		t.Errorf("ClipRect() = %+v, want [%+v]", a.Spans, want)
	}
}

func TestOverlaps(t *testing.T) {
	a := FromRect(geom.Rect{X0: 10, Y0: 10, X1: 20, Y1: 20})
	if !a.Overlaps(geom.Rect{X0: 15, Y0: 15, X1: 30, Y1: 30}) {
		t.Error("Overlaps() = false for intersecting rect")
	}
	if a.Overlaps(geom.Rect{X0: 20, Y0: 10, X1: 30, Y1: 20}) {
		t.Error("Overlaps() = true for adjacent rect")
	}
}

func BenchmarkRasterizeCircle(b *testing.B) {
	var p geom.Path
	p.AppendCircle(200, 200, 150, 150, true)
	o := outline.Build(&p, geom.Identity(), outline.NonZero)
	dst := &RLE{}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		RasterizeInto(dst, o, screen, true)
	}
}
