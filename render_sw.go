package tvg

import (
	"github.com/gogpu/tvg/internal/blend"
	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/sw"
)

// swRenderer draws prepared paints into a surface one band at a time.
type swRenderer struct {
	layers sw.LayerPool
}

// draw renders p inside band.
func (r *swRenderer) draw(dst *sw.Surface, p Paint, band geom.Rect) {
	b := p.base()
	if b.opacity == 0 {
		return
	}
	if b.mask == nil && b.prep.bounds.Intersect(band).Empty() {
		return
	}
	op := sw.Op{Opacity: b.opacity, Method: blend.Method(b.blend)}
	if !needsLayer(p) {
		r.content(dst, p, op, band)
		return
	}

	rc := layerBounds(p).Intersect(band).Intersect(dst.Rect)
	if rc.Empty() {
		return
	}
	layer := r.layers.Get(rc, dst.ABGR)
	defer r.layers.Put(layer)
	r.content(layer, p, sw.Normal, rc)
	if m := b.mask; m != nil {
		masker := r.layers.Get(rc, dst.ABGR)
		r.draw(masker, m, rc)
		layer.ApplyMask(masker, blend.MaskMethod(b.maskMethod), rc, rc)
		r.layers.Put(masker)
	}
	dst.Composite(layer, rc, op, band)
}

// needsLayer reports whether p must be drawn offscreen before it is
// combined with the destination.
func needsLayer(p Paint) bool {
	b := p.base()
	if b.mask != nil {
		return true
	}
	switch v := p.(type) {
	case *Scene:
		return b.opacity < 255 || b.blend != BlendNormal
	case *Picture:
		return v.content != nil && (b.opacity < 255 || b.blend != BlendNormal)
	case *Shape:
		return b.opacity < 255 && v.prep.fill != nil && v.prep.stroke != nil
	}
	return false
}

// content draws the paint itself, without its mask.
func (r *swRenderer) content(dst *sw.Surface, p Paint, op sw.Op, band geom.Rect) {
	switch v := p.(type) {
	case *Shape:
		drawShape(dst, v, op, band)
	case *Scene:
		for _, c := range v.children {
			r.draw(dst, c, band)
		}
	case *Picture:
		pr := &v.prep
		switch {
		case v.content != nil:
			r.draw(dst, v.content, band)
		case pr.image == nil:
		case pr.imageRLE != nil:
			dst.DrawImage(pr.image, pr.imageM, pr.imageRLE, op, band)
		default:
			dst.Texmap(pr.image, pr.imageM, op, band.Intersect(pr.bounds))
		}
	case *Text:
		if v.glyphs != nil {
			drawShape(dst, v.glyphs, op, band)
		}
	}
}

func drawShape(dst *sw.Surface, s *Shape, op sw.Op, band geom.Rect) {
	pr := &s.prep
	if s.stroke.strokeFirst {
		dst.FillRLE(pr.stroke, pr.strokeSrc, op, band)
		dst.FillRLE(pr.fill, pr.fillSrc, op, band)
		return
	}
	dst.FillRLE(pr.fill, pr.fillSrc, op, band)
	dst.FillRLE(pr.stroke, pr.strokeSrc, op, band)
}
