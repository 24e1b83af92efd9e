// Package sw is the software rendering backend. It blends colors,
// gradients and images into premultiplied 32-bit pixel buffers through
// coverage spans, and composites layers for masks and blend methods.
//
// Every drawing call takes a band rectangle and touches only the pixels
// inside it, so disjoint bands can be drawn concurrently.
package sw

import (
	"sync"

	"github.com/gogpu/tvg/internal/blend"
	"github.com/gogpu/tvg/internal/geom"
)

// Surface is a premultiplied pixel buffer covering Rect. Pixel (x, y)
// lives at Pix[(y-Rect.Y0)*Stride + x-Rect.X0].
type Surface struct {
	Pix    []uint32
	Stride int
	Rect   geom.Rect
	// ABGR selects the channel order of the words.
	ABGR bool
}

// NewSurface wraps buf, whose rows are stride words apart, as a w×h
// surface at the origin.
func NewSurface(buf []uint32, stride, w, h int, abgr bool) *Surface {
	return &Surface{Pix: buf, Stride: stride, Rect: geom.Rect{X1: w, Y1: h}, ABGR: abgr}
}

// Row returns the pixels of row y from column x0 to x1. The range must lie
// inside Rect.
func (s *Surface) Row(y, x0, x1 int) []uint32 {
	off := (y-s.Rect.Y0)*s.Stride - s.Rect.X0
	return s.Pix[off+x0 : off+x1]
}

// Clear zeroes the pixels of rc.
func (s *Surface) Clear(rc geom.Rect) {
	rc = rc.Intersect(s.Rect)
	if rc.Empty() {
		return
	}
	for y := rc.Y0; y < rc.Y1; y++ {
		clear(s.Row(y, rc.X0, rc.X1))
	}
}

// Premultiply converts straight-alpha pixels of rc in place.
func (s *Surface) Premultiply(rc geom.Rect) {
	s.convert(rc, blend.Premultiply)
}

// Unpremultiply converts premultiplied pixels of rc to straight alpha.
func (s *Surface) Unpremultiply(rc geom.Rect) {
	s.convert(rc, blend.Unpremultiply)
}

func (s *Surface) convert(rc geom.Rect, fn func(uint32) uint32) {
	rc = rc.Intersect(s.Rect)
	if rc.Empty() {
		return
	}
	for y := rc.Y0; y < rc.Y1; y++ {
		row := s.Row(y, rc.X0, rc.X1)
		for i, c := range row {
			row[i] = fn(c)
		}
	}
}

// LayerPool recycles layer buffers by capacity.
type LayerPool struct {
	pool sync.Pool
}

// Get returns a cleared layer covering rc in the given channel order.
func (p *LayerPool) Get(rc geom.Rect, abgr bool) *Surface {
	n := rc.W() * rc.H()
	var buf []uint32
	if v, ok := p.pool.Get().(*[]uint32); ok && cap(*v) >= n {
		buf = (*v)[:n]
		clear(buf)
	} else {
		buf = make([]uint32, n)
	}
	return &Surface{Pix: buf, Stride: rc.W(), Rect: rc, ABGR: abgr}
}

// Put hands the layer's storage back for reuse.
func (p *LayerPool) Put(s *Surface) {
	if s == nil || s.Pix == nil {
		return
	}
	buf := s.Pix[:0]
	s.Pix = nil
	p.pool.Put(&buf)
}
