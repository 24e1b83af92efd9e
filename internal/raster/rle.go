// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package raster turns fixed-point outlines into run-length encoded coverage
// spans and provides the span algebra used for clipping.
package raster

import (
	"sort"

	"github.com/gogpu/tvg/internal/geom"
)

// Span is a horizontal run of pixels sharing one coverage value.
type Span struct {
	X, Y     int16
	Len      uint16
	Coverage uint8
}

// End returns the exclusive end column of s.
func (s Span) End() int { return int(s.X) + int(s.Len) }

// RLE is a list of spans sorted by Y, then X.
type RLE struct {
	Spans []Span
}

// Empty reports whether r covers nothing.
func (r *RLE) Empty() bool { return r == nil || len(r.Spans) == 0 }

// Reset drops all spans, keeping capacity.
func (r *RLE) Reset() { r.Spans = r.Spans[:0] }

// Clone returns a copy of r.
func (r *RLE) Clone() *RLE {
	if r == nil {
		return nil
	}
	return &RLE{Spans: append([]Span(nil), r.Spans...)}
}

// Fetch returns the spans whose row lies in [minY, maxY].
func (r *RLE) Fetch(minY, maxY int) []Span {
	if r.Empty() {
		return nil
	}
	lo := sort.Search(len(r.Spans), func(i int) bool { return int(r.Spans[i].Y) >= minY })
	hi := sort.Search(len(r.Spans), func(i int) bool { return int(r.Spans[i].Y) > maxY })
	return r.Spans[lo:hi]
}

// Bounds returns the pixel box covered by r.
func (r *RLE) Bounds() geom.Rect {
	if r.Empty() {
		return geom.Rect{}
	}
	b := geom.Rect{X0: int(r.Spans[0].X), Y0: int(r.Spans[0].Y), X1: r.Spans[0].End(), Y1: int(r.Spans[len(r.Spans)-1].Y) + 1}
	for _, s := range r.Spans[1:] {
		b.X0 = min(b.X0, int(s.X))
		b.X1 = max(b.X1, s.End())
	}
	return b
}

// Coverage returns the sum of coverage over all pixels, in pixel units.
func (r *RLE) Coverage() float64 {
	if r == nil {
		return 0
	}
	var sum float64
	for _, s := range r.Spans {
		sum += float64(s.Len) * float64(s.Coverage) / 255
	}
	return sum
}

// CoverageAt returns the coverage of pixel (x, y), or 0.
func (r *RLE) CoverageAt(x, y int) uint8 {
	for _, s := range r.Fetch(y, y) {
		if x >= int(s.X) && x < s.End() {
			return s.Coverage
		}
	}
	return 0
}

// FromRect builds a full-coverage RLE of the rectangle.
func FromRect(rc geom.Rect) *RLE {
	if rc.Empty() {
		return &RLE{}
	}
	spans := make([]Span, 0, rc.H())
	for y := rc.Y0; y < rc.Y1; y++ {
		spans = append(spans, Span{X: int16(rc.X0), Y: int16(y), Len: uint16(rc.W()), Coverage: 255})
	}
	return &RLE{Spans: spans}
}

func mulCov(a, b uint8) uint8 {
	return uint8((int(a)*int(b) + 0xff) >> 8)
}

// Intersect clips r by the spans of clip, multiplying coverage. It reports
// whether anything remains.
func (r *RLE) Intersect(clip *RLE) bool {
	if r.Empty() || clip.Empty() {
		if r != nil {
			r.Reset()
		}
		return false
	}
	spans := r.Fetch(int(clip.Spans[0].Y), int(clip.Spans[len(clip.Spans)-1].Y))
	if len(spans) == 0 {
		r.Reset()
		return false
	}
	cspans := clip.Fetch(int(spans[0].Y), int(spans[len(spans)-1].Y))

	out := make([]Span, 0, max(len(r.Spans), len(clip.Spans)))
	i, j := 0, 0
	for i < len(spans) && j < len(cspans) {
		s, c := spans[i], cspans[j]
		if c.Y > s.Y {
			i++
			continue
		}
		if s.Y > c.Y {
			j++
			continue
		}
		for k := j; k < len(cspans) && cspans[k].Y == c.Y; k++ {
			t := cspans[k]
			x := max(int(s.X), int(t.X))
			l := min(s.End(), t.End()) - x
			if l > 0 {
				out = append(out, Span{X: int16(x), Y: s.Y, Len: uint16(l), Coverage: mulCov(s.Coverage, t.Coverage)})
			}
		}
		i++
	}
	r.Spans = out
	return len(out) > 0
}

// ClipRect trims r to the rectangle.
func (r *RLE) ClipRect(rc geom.Rect) bool {
	if r.Empty() || rc.Empty() {
		if r != nil {
			r.Reset()
		}
		return false
	}
	out := r.Spans[:0]
	for _, s := range r.Spans {
		y := int(s.Y)
		if y < rc.Y0 || y >= rc.Y1 || int(s.X) >= rc.X1 || s.End() <= rc.X0 {
			continue
		}
		x := max(int(s.X), rc.X0)
		l := min(s.End(), rc.X1) - x
		if l > 0 {
			out = append(out, Span{X: int16(x), Y: s.Y, Len: uint16(l), Coverage: s.Coverage})
		}
	}
	r.Spans = out
	return len(out) > 0
}

// Overlaps reports whether any span of r touches the rectangle.
func (r *RLE) Overlaps(rc geom.Rect) bool {
	if r.Empty() {
		return false
	}
	for _, s := range r.Fetch(rc.Y0, rc.Y1-1) {
		if int(s.X) < rc.X1 && s.End() > rc.X0 {
			return true
		}
	}
	return false
}
