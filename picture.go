package tvg

import (
	"fmt"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/gogpu/tvg/internal/blend"
	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/loader"
	"github.com/gogpu/tvg/internal/outline"
	"github.com/gogpu/tvg/internal/stroke"
	"github.com/gogpu/tvg/internal/sw"
	"github.com/gogpu/tvg/internal/vector"
)

// Picture draws an image or vector document loaded from a file, memory
// or raw pixels. Create pictures with Engine.NewPicture.
type Picture struct {
	paintBase
	engine *Engine

	key     string
	cleanup runtime.Cleanup
	asset   *loader.Asset

	// raw is the raster content as premultiplied ARGB.
	raw *loader.Raster
	// swapped is raw in ABGR order, built on first use.
	swapped *sw.Image

	content *Scene
	frame   float32

	// size the content is scaled to; orig is its natural size
	w, h         float32
	origW, origH float32
}

// NewPicture returns an empty picture bound to e's caches.
func (e *Engine) NewPicture() *Picture {
	p := &Picture{engine: e}
	p.init(p)
	return p
}

func (p *Picture) Type() Type { return TypePicture }

// Load decodes the file at path. The format comes from the extension,
// falling back to the content.
func (p *Picture) Load(path string) error {
	if err := p.engine.check(); err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("tvg: load %s: %w: %w", path, ErrInvalidArgument, err)
	}
	key := "file:" + abs
	a, err := p.engine.asset(key, func() (*loader.Asset, error) {
		return p.engine.loader.Open(abs)
	})
	if err != nil {
		return wrap("load "+path, err)
	}
	p.set(a, key)
	return nil
}

// LoadData decodes data. mimetype may be empty or a name like "png",
// "svg" or "lottie". Without copy the picture shares the decoded content
// with other pictures loading the same slice, which the caller must not
// modify.
func (p *Picture) LoadData(data []byte, mimetype string, copy bool) error {
	if err := p.engine.check(); err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("tvg: load data: %w", ErrInvalidArgument)
	}
	key := ""
	if !copy {
		key = fmt.Sprintf("mem:%p:%d:%s", &data[0], len(data), mimetype)
	}
	a, err := p.engine.asset(key, func() (*loader.Asset, error) {
		return p.engine.loader.Decode(data, mimetype)
	})
	if err != nil {
		return wrap("load data", err)
	}
	p.set(a, key)
	return nil
}

// LoadRaw loads a w×h bitmap whose rows are w words apart. Pixels that are
// already premultiplied ARGB are used in place unless copy is set; any
// other layout is converted into a private buffer.
func (p *Picture) LoadRaw(pix []uint32, w, h int, cs Colorspace, copy bool) error {
	if err := p.engine.check(); err != nil {
		return err
	}
	if w <= 0 || h <= 0 || len(pix) < w*h || !cs.valid() {
		return fmt.Errorf("tvg: load raw %dx%d %v: %w", w, h, cs, ErrInvalidArgument)
	}
	pix = pix[:w*h]
	if copy || cs != ARGB8888 {
		pix = slices.Clone(pix)
		for i, c := range pix {
			if cs.abgr() {
				c = blend.SwapRB(c)
			}
			if cs.straight() {
				c = blend.Premultiply(c)
			}
			pix[i] = c
		}
	}
	p.set(&loader.Asset{
		Format: loader.Raw,
		W:      float32(w),
		H:      float32(h),
		Raster: &loader.Raster{Pix: pix, W: w, H: h},
	}, "")
	return nil
}

// set replaces the content with a, held under the image cache key.
func (p *Picture) set(a *loader.Asset, key string) {
	p.unload()
	p.asset, p.key = a, key
	if key != "" {
		e := p.engine
		p.cleanup = runtime.AddCleanup(p, func(k string) { e.releaseAsset(k) }, key)
	}
	p.raw = a.Raster
	p.origW, p.origH = a.W, a.H
	p.w, p.h = a.W, a.H
	p.frame = 0
	p.rebuild()
}

func (p *Picture) unload() {
	if p.key != "" {
		p.cleanup.Stop()
		p.engine.releaseAsset(p.key)
	}
	if p.content != nil {
		release(p.content)
	}
	p.asset, p.key, p.raw, p.swapped, p.content = nil, "", nil, nil, nil
}

// rebuild turns the vector content at the current frame into paints.
func (p *Picture) rebuild() {
	if p.content != nil {
		release(p.content)
		p.content = nil
	}
	var root *vector.Node
	switch {
	case p.asset == nil:
	case p.asset.Vector != nil:
		root = p.asset.Vector
	case p.asset.Anim != nil:
		root = p.asset.Anim.Frame(p.frame)
	}
	if root != nil {
		s := NewScene()
		s.Push(buildNode(root))
		s.parent = p
		s.refs = 1
		p.content = s
	}
	p.markDirty()
}

// Size returns the size the picture is drawn at.
func (p *Picture) Size() (w, h float32) { return p.w, p.h }

// SetSize scales the content to w×h.
func (p *Picture) SetSize(w, h float32) error {
	if p.asset == nil {
		return fmt.Errorf("tvg: set size of empty picture: %w", ErrInsufficientCondition)
	}
	if w < 0 || h < 0 {
		return fmt.Errorf("tvg: picture size %gx%g: %w", w, h, ErrInvalidArgument)
	}
	p.w, p.h = w, h
	p.markDirty()
	return nil
}

// Data returns the raster content as premultiplied ARGB words, or nil for
// vector content.
func (p *Picture) Data() (pix []uint32, w, h int) {
	if p.raw == nil {
		return nil, 0, 0
	}
	return p.raw.Pix, p.raw.W, p.raw.H
}

func (p *Picture) Duplicate() Paint {
	d := p.engine.NewPicture()
	p.paintBase.duplicate(&d.paintBase)
	if p.asset == nil {
		return d
	}
	a := p.asset
	if p.key != "" {
		// The entry is alive while p holds it.
		a, _ = p.engine.asset(p.key, func() (*loader.Asset, error) { return p.asset, nil })
	}
	d.set(a, p.key)
	d.frame = p.frame
	if p.asset.Anim != nil {
		d.rebuild()
	}
	d.w, d.h = p.w, p.h
	return d
}

// Bounds returns the picture rectangle at its current size.
func (p *Picture) Bounds(transformed bool) (x, y, w, h float32, err error) {
	if p.asset == nil {
		return p.bounds(geom.EmptyBBox(), transformed)
	}
	box := geom.BBox{Max: geom.Pt(p.w, p.h)}
	return p.bounds(box, transformed)
}

// sizing maps content space to picture space.
func (p *Picture) sizing() geom.Matrix {
	if p.origW <= 0 || p.origH <= 0 {
		return geom.Identity()
	}
	return geom.Scaling(p.w/p.origW, p.h/p.origH)
}

// image returns the raster content in the requested channel order.
func (p *Picture) image(abgr bool) *sw.Image {
	if p.raw == nil {
		return nil
	}
	if !abgr {
		return &sw.Image{Pix: p.raw.Pix, W: p.raw.W, H: p.raw.H, Stride: p.raw.W}
	}
	if p.swapped == nil {
		pix := make([]uint32, len(p.raw.Pix))
		for i, c := range p.raw.Pix {
			pix[i] = blend.SwapRB(c)
		}
		p.swapped = &sw.Image{Pix: pix, W: p.raw.W, H: p.raw.H, Stride: p.raw.W}
	}
	return p.swapped
}

// buildNode converts a decoded vector tree into paints.
func buildNode(n *vector.Node) Paint {
	var p Paint
	if n.Path != nil {
		p = buildShape(n)
	} else {
		s := NewScene()
		for _, c := range n.Children {
			s.Push(buildNode(c))
		}
		p = s
	}
	if !n.Transform.IsIdentity() {
		p.SetTransform(matrixOf(n.Transform))
	}
	p.SetOpacity(n.Opacity)
	if n.ID != "" {
		p.SetID(AccessorID(n.ID))
	}
	return p
}

func buildShape(n *vector.Node) *Shape {
	s := NewShape()
	s.path = n.Path.Clone()
	if n.FillRule == outline.EvenOdd {
		s.rule = EvenOdd
	}
	if n.Fill != nil {
		if f := buildFill(n.Fill.Gradient); f != nil {
			s.fill = f
		} else {
			s.fillColor = n.Fill.Color
		}
	}
	if st := n.Stroke; st != nil && st.Width > 0 {
		s.stroke.width = st.Width
		if f := buildFill(st.Gradient); f != nil {
			s.stroke.fill = f
		} else {
			s.stroke.color = st.Color
		}
		s.stroke.cap = strokeCap(st.Cap)
		s.stroke.join = strokeJoin(st.Join)
		s.stroke.miterLimit = st.MiterLimit
		if len(st.Dash) > 0 {
			s.SetStrokeDash(st.Dash, st.DashOffset)
		}
	}
	if t := n.Trim; t != nil {
		s.trim = trimPath{begin: t.Begin, end: t.End, simultaneous: t.Simultaneous}
	}
	return s
}

func buildFill(g *vector.Gradient) Fill {
	if g == nil {
		return nil
	}
	var f Fill
	switch g.Kind {
	case vector.Radial:
		rg := NewRadialGradient()
		rg.SetRadial(g.CX, g.CY, max(g.R, 0), g.FX, g.FY, max(g.FR, 0))
		f = rg
	default:
		lg := NewLinearGradient()
		lg.SetLinear(g.X1, g.Y1, g.X2, g.Y2)
		f = lg
	}
	stops := make([]ColorStop, len(g.Stops))
	for i, s := range g.Stops {
		stops[i] = ColorStop{Offset: s.Offset, R: s.Color[0], G: s.Color[1], B: s.Color[2], A: s.Color[3]}
	}
	f.SetColorStops(stops)
	f.SetSpread(Spread(g.Spread))
	f.SetTransform(matrixOf(g.Transform))
	return f
}

func strokeCap(c stroke.Cap) StrokeCap {
	switch c {
	case stroke.CapRound:
		return CapRound
	case stroke.CapSquare:
		return CapSquare
	}
	return CapButt
}

func strokeJoin(j stroke.Join) StrokeJoin {
	switch j {
	case stroke.JoinRound:
		return JoinRound
	case stroke.JoinBevel:
		return JoinBevel
	}
	return JoinMiter
}
