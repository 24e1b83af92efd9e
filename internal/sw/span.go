package sw

import (
	"github.com/gogpu/tvg/internal/blend"
	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/raster"
)

// Op describes how a source is laid onto a surface.
type Op struct {
	Opacity uint8
	Method  blend.Method
}

// Normal is a fully opaque source-over operation.
var Normal = Op{Opacity: 255, Method: blend.Normal}

// Source provides premultiplied colors for a run of pixels.
type Source interface {
	fetch(dst []uint32, x, y int)
	solid() (uint32, bool)
}

// Solid is a constant premultiplied color.
type Solid uint32

func (c Solid) fetch(dst []uint32, _, _ int) {
	for i := range dst {
		dst[i] = uint32(c)
	}
}

func (c Solid) solid() (uint32, bool) { return uint32(c), true }

func (g *Gradient) fetch(dst []uint32, x, y int) { g.Fetch(dst, x, y) }

func (g *Gradient) solid() (uint32, bool) { return 0, false }

func grow(buf []uint32, n int) []uint32 {
	if cap(buf) < n {
		return make([]uint32, n, n*2)
	}
	return buf[:n]
}

// FillRLE blends src through the coverage of rle, limited to band.
func (s *Surface) FillRLE(rle *raster.RLE, src Source, op Op, band geom.Rect) {
	clip := band.Intersect(s.Rect)
	if clip.Empty() || rle.Empty() || op.Opacity == 0 {
		return
	}
	fn := blend.Lookup(op.Method)
	color, isSolid := src.solid()
	var scratch []uint32
	for _, sp := range rle.Fetch(clip.Y0, clip.Y1-1) {
		x0, x1 := max(int(sp.X), clip.X0), min(sp.End(), clip.X1)
		if x0 >= x1 {
			continue
		}
		cov := sp.Coverage
		if op.Opacity < 255 {
			cov = uint8(blend.Mul(uint32(cov), uint32(op.Opacity)))
		}
		dst := s.Row(int(sp.Y), x0, x1)
		if isSolid {
			spanSolid(dst, color, cov, op.Method, fn)
			continue
		}
		scratch = grow(scratch, x1-x0)
		src.fetch(scratch, x0, int(sp.Y))
		spanColors(dst, scratch, cov, fn)
	}
}

// FillRect blends src over every pixel of rc inside band.
func (s *Surface) FillRect(rc geom.Rect, src Source, op Op, band geom.Rect) {
	clip := rc.Intersect(band).Intersect(s.Rect)
	if clip.Empty() || op.Opacity == 0 {
		return
	}
	fn := blend.Lookup(op.Method)
	color, isSolid := src.solid()
	var scratch []uint32
	for y := clip.Y0; y < clip.Y1; y++ {
		dst := s.Row(y, clip.X0, clip.X1)
		if isSolid {
			spanSolid(dst, color, op.Opacity, op.Method, fn)
			continue
		}
		scratch = grow(scratch, len(dst))
		src.fetch(scratch, clip.X0, y)
		spanColors(dst, scratch, op.Opacity, fn)
	}
}

func spanSolid(dst []uint32, color uint32, cov uint8, m blend.Method, fn blend.Func) {
	c := blend.Scale(color, cov)
	if c>>24 == 255 && (m == blend.Normal || !m.Supported()) {
		for i := range dst {
			dst[i] = c
		}
		return
	}
	for i, d := range dst {
		dst[i] = fn(c, d)
	}
}

func spanColors(dst, src []uint32, cov uint8, fn blend.Func) {
	for i, d := range dst {
		dst[i] = fn(blend.Scale(src[i], cov), d)
	}
}

// Composite blends the pixels of layer inside rc onto s.
func (s *Surface) Composite(layer *Surface, rc geom.Rect, op Op, band geom.Rect) {
	clip := rc.Intersect(band).Intersect(s.Rect).Intersect(layer.Rect)
	if clip.Empty() || op.Opacity == 0 {
		return
	}
	fn := blend.Lookup(op.Method)
	for y := clip.Y0; y < clip.Y1; y++ {
		dst := s.Row(y, clip.X0, clip.X1)
		src := layer.Row(y, clip.X0, clip.X1)
		for i, c := range src {
			if c == 0 {
				continue
			}
			dst[i] = fn(blend.Scale(c, op.Opacity), dst[i])
		}
	}
}

// ApplyMask modulates the pixels of s inside rc by masker with method.
// Pixels outside masker count as transparent.
func (s *Surface) ApplyMask(masker *Surface, method blend.MaskMethod, rc geom.Rect, band geom.Rect) {
	clip := rc.Intersect(band).Intersect(s.Rect)
	if clip.Empty() || method == blend.MaskNone {
		return
	}
	inside := masker.Rect
	for y := clip.Y0; y < clip.Y1; y++ {
		row := s.Row(y, clip.X0, clip.X1)
		for i := range row {
			x := clip.X0 + i
			var m uint32
			if inside.Contains(x, y) {
				m = masker.Row(y, x, x+1)[0]
			}
			row[i] = blend.Mask(method, row[i], m, s.ABGR)
		}
	}
}
