package tvg

import (
	"log/slog"

	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/outline"
	"github.com/gogpu/tvg/internal/raster"
	"github.com/gogpu/tvg/internal/sw"
	"github.com/gogpu/tvg/internal/tess"
)

// prepared is the device-space state of a paint after an update.
type prepared struct {
	world geom.Matrix
	// bounds is the pixel box the paint may touch, clipped to the viewport
	bounds geom.Rect

	fill, stroke       *raster.RLE
	fillSrc, strokeSrc sw.Source

	image    *sw.Image
	imageM   geom.Matrix
	imageRLE *raster.RLE // set when the image is clipped

	fillMesh, strokeMesh tess.Mesh
}

// target describes what paints are prepared for.
type target struct {
	abgr     bool
	viewport geom.Rect
	// meshes selects tessellation instead of rasterization
	meshes bool
	log    *slog.Logger
}

// tessellate fills dst with the triangles of p. A path the tessellator
// cannot simplify draws nothing.
func (t *target) tessellate(dst *tess.Mesh, p *geom.Path, rule outline.FillRule) {
	if err := tess.TessellateInto(dst, p, rule); err != nil {
		t.log.Warn("tvg: path dropped", "err", err, "bounds", p.Bounds())
	}
}

// prepare brings p and everything it draws through up to date under the
// parent transform pm. clip restricts coverage when not nil.
func prepare(p Paint, pm geom.Matrix, clip *raster.RLE, t *target) {
	b := p.base()
	b.dirty = false

	if m := b.mask; m != nil {
		prepare(m, pm, clip, t)
	}
	if c := b.clip; c != nil {
		prepareShape(c, pm, clip, t, true)
		if !t.meshes {
			own := c.prep.fill.Clone()
			if own == nil {
				own = &raster.RLE{}
			}
			if clip != nil {
				own.Intersect(clip)
			}
			clip = own
		}
	}

	switch v := p.(type) {
	case *Shape:
		prepareShape(v, pm, clip, t, false)
	case *Scene:
		b.prep.world = pm.Mul(b.matrix())
		b.prep.bounds = geom.Rect{}
		for _, c := range v.children {
			prepare(c, b.prep.world, clip, t)
			b.prep.bounds = b.prep.bounds.Union(c.base().prep.bounds)
		}
	case *Picture:
		preparePicture(v, pm, clip, t)
	case *Text:
		b.prep.world = pm.Mul(b.matrix())
		b.prep.bounds = geom.Rect{}
		if g := v.shape(); g != nil {
			prepareShape(g, b.prep.world, clip, t, false)
			b.prep.bounds = g.prep.bounds
		}
	}
	if clip != nil && !t.meshes {
		b.prep.bounds = b.prep.bounds.Intersect(clip.Bounds())
	}
}

// prepareShape rasterizes the fill and stroke of s. A clipper only needs
// its fill area, whatever its colors.
func prepareShape(s *Shape, pm geom.Matrix, clip *raster.RLE, t *target, clipper bool) {
	pr := &s.prep
	pr.world = pm.Mul(s.matrix())
	pr.bounds = geom.Rect{}
	pr.fill, pr.stroke, pr.fillSrc, pr.strokeSrc = nil, nil, nil, nil
	pr.fillMesh.Reset()
	pr.strokeMesh.Reset()
	s.dirty = false

	path, ok := s.geometry()
	if !ok {
		return
	}
	rule := outline.FillRule(s.rule)

	if clipper || s.hasFill() {
		if clipper {
			pr.fillSrc = sw.Solid(0)
		} else {
			pr.fillSrc = paintSource(s.fill, s.fillColor, pr.world, t.abgr)
		}
		if pr.fillSrc != nil {
			if t.meshes {
				dev := path.Transform(pr.world)
				t.tessellate(&pr.fillMesh, &dev, rule)
				pr.bounds = pr.bounds.Union(dev.Bounds().Snap())
			} else {
				pr.fill = rasterize(&path, pr.world, rule, clip, t.viewport)
				pr.bounds = pr.bounds.Union(pr.fill.Bounds())
			}
		}
	}
	if clipper || !s.hasStroke() {
		return
	}
	pr.strokeSrc = paintSource(s.stroke.fill, s.stroke.color, pr.world, t.abgr)
	if pr.strokeSrc == nil {
		return
	}
	tol := float32(0.25)
	if sf := pr.world.ScaleFactor(); sf > geom.Epsilon {
		tol /= sf
	}
	out := s.strokeOutline(&path, tol)
	if t.meshes {
		dev := out.Transform(pr.world)
		t.tessellate(&pr.strokeMesh, &dev, outline.NonZero)
		pr.bounds = pr.bounds.Union(dev.Bounds().Snap())
	} else {
		pr.stroke = rasterize(&out, pr.world, outline.NonZero, clip, t.viewport)
		pr.bounds = pr.bounds.Union(pr.stroke.Bounds())
	}
	if t.meshes {
		pr.bounds = pr.bounds.Intersect(t.viewport)
	}
}

// rasterize converts path under m to coverage inside the viewport.
// Axis-aligned rectangles skip the scanline converter.
func rasterize(path *geom.Path, m geom.Matrix, rule outline.FillRule, clip *raster.RLE, viewport geom.Rect) *raster.RLE {
	o := outline.Build(path, m, rule)
	var rle *raster.RLE
	if o.AxisAlignedRect() {
		rle = raster.FromRect(o.Bounds(true).Intersect(viewport))
	} else {
		rle = raster.Rasterize(o, viewport, true)
	}
	if clip != nil {
		rle.Intersect(clip)
	}
	return rle
}

// paintSource returns the span source for a gradient or solid color, or
// nil when nothing would be painted.
func paintSource(f Fill, color [4]uint8, world geom.Matrix, abgr bool) sw.Source {
	if f != nil {
		if g := source(f, world, abgr); g != nil {
			return g
		}
		return nil
	}
	if color[3] == 0 {
		return nil
	}
	return sw.Solid(sw.Color(color[0], color[1], color[2], color[3], abgr))
}

func preparePicture(p *Picture, pm geom.Matrix, clip *raster.RLE, t *target) {
	pr := &p.prep
	pr.world = pm.Mul(p.matrix())
	pr.bounds = geom.Rect{}
	pr.image, pr.imageRLE = nil, nil
	inner := pr.world.Mul(p.sizing())

	if c := p.content; c != nil {
		c.dirty = false
		prepare(c, inner, clip, t)
		pr.bounds = c.prep.bounds
		return
	}
	img := p.image(t.abgr)
	if img == nil {
		return
	}
	pr.image, pr.imageM = img, inner
	box := geom.BBox{Max: geom.Pt(float32(img.W), float32(img.H))}
	pr.bounds = box.Transform(inner).Snap().Intersect(t.viewport)
	if t.meshes {
		var rect geom.Path
		rect.AppendRect(0, 0, float32(img.W), float32(img.H), 0, 0, true)
		dev := rect.Transform(inner)
		t.tessellate(&pr.fillMesh, &dev, outline.NonZero)
		return
	}
	if clip != nil {
		var rect geom.Path
		rect.AppendRect(0, 0, float32(img.W), float32(img.H), 0, 0, true)
		pr.imageRLE = rasterize(&rect, inner, outline.NonZero, clip, t.viewport)
		pr.bounds = pr.imageRLE.Bounds()
	}
}

// layerBounds is the region a layered paint draws into: its own bounds
// and, for composing masks, the mask target's.
func layerBounds(p Paint) geom.Rect {
	b := p.base()
	rc := b.prep.bounds
	if b.mask != nil && b.maskMethod >= MaskAdd {
		rc = rc.Union(b.mask.base().prep.bounds)
	}
	return rc
}
