package tvg

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/tess"
)

// Mesh is a triangulated paint layer in device coordinates, ready for a
// GPU pipeline. Solid layers carry Color; gradient layers carry Fill and
// the Transform from gradient space to device space.
type Mesh struct {
	Points  []Point
	Indices []uint32

	Color     [4]uint8
	Fill      Fill
	Transform Matrix
	Opacity   uint8
	Blend     BlendMethod
}

// MeshSubmitter records the meshes of a GPU canvas frame into the
// target framebuffer.
type MeshSubmitter interface {
	Submit(frame GPUFrame) error
}

// GPUFrame is one Draw of a GPU canvas.
type GPUFrame struct {
	Provider gpucontext.DeviceProvider
	FBO      uint32
	Format   gputypes.TextureFormat
	Viewport [4]int
	Clear    bool
	Meshes   []Mesh
}

// gpuCanvas is the GPU target shared by GlCanvas and WgCanvas.
type gpuCanvas struct {
	canvas

	provider  gpucontext.DeviceProvider
	fbo       uint32
	format    gputypes.TextureFormat
	submitter MeshSubmitter

	frame GPUFrame
	err   error
}

// GlCanvas tessellates paints for an OpenGL framebuffer.
type GlCanvas struct {
	gpuCanvas
}

// WgCanvas tessellates paints for a WebGPU surface.
type WgCanvas struct {
	gpuCanvas
}

// NewGlCanvas returns a GL canvas without a target.
func (e *Engine) NewGlCanvas() *GlCanvas {
	c := &GlCanvas{}
	c.init(e, &c.gpuCanvas)
	return c
}

// NewWgCanvas returns a WebGPU canvas without a target.
func (e *Engine) NewWgCanvas() *WgCanvas {
	c := &WgCanvas{}
	c.init(e, &c.gpuCanvas)
	return c
}

// TextureFormat maps a straight-alpha colorspace to the GPU texture
// format of the same byte order.
func TextureFormat(cs Colorspace) (gputypes.TextureFormat, error) {
	switch cs {
	case ABGR8888S:
		return gputypes.TextureFormatRGBA8Unorm, nil
	case ARGB8888S:
		return gputypes.TextureFormatBGRA8Unorm, nil
	}
	return gputypes.TextureFormatUndefined, fmt.Errorf("tvg: gpu colorspace %v: %w", cs, ErrInvalidArgument)
}

// SetTarget binds framebuffer fbo of provider's device, w×h pixels in
// colorspace cs. Only straight-alpha colorspaces are accepted.
func (c *gpuCanvas) SetTarget(provider gpucontext.DeviceProvider, fbo uint32, w, h int, cs Colorspace) error {
	if provider == nil || w <= 0 || h <= 0 {
		return fmt.Errorf("tvg: gpu target %dx%d: %w", w, h, ErrInvalidArgument)
	}
	format, err := TextureFormat(cs)
	if err != nil {
		return err
	}
	if err := c.resize(w, h); err != nil {
		return err
	}
	if sf := provider.SurfaceFormat(); sf != gputypes.TextureFormatUndefined && sf != format {
		c.log.Warn("tvg: target format differs from surface format", "target", format, "surface", sf)
	}
	ai := provider.AdapterInfo()
	c.log.Debug("tvg: gpu target", "adapter", ai.Name, "type", ai.Type, "format", format, "w", w, "h", h)
	c.provider, c.fbo, c.format = provider, fbo, format
	return nil
}

// SetSubmitter sets the receiver of the meshes of each Draw. Without one,
// Draw only tessellates.
func (c *gpuCanvas) SetSubmitter(s MeshSubmitter) { c.submitter = s }

// Frame returns the meshes of the last completed Draw.
func (c *gpuCanvas) Frame() GPUFrame { return c.frame }

func (c *gpuCanvas) target() target { return target{meshes: true} }

func (c *gpuCanvas) render(paints []Paint, vp geom.Rect, clear bool) {
	f := GPUFrame{
		Provider: c.provider,
		FBO:      c.fbo,
		Format:   c.format,
		Viewport: [4]int{vp.X0, vp.Y0, vp.W(), vp.H()},
		Clear:    clear,
	}
	for _, p := range paints {
		f.Meshes = collectMeshes(f.Meshes, p, 255)
	}
	c.frame, c.err = f, nil
	if c.submitter != nil {
		c.err = c.submitter.Submit(f)
	}
}

func (c *gpuCanvas) finish(geom.Rect) error {
	if c.err != nil {
		return wrap("gpu submit", c.err)
	}
	return nil
}

// collectMeshes appends the meshes of p in draw order. Opacity is carried
// down the tree; masks and clippers are not applied.
func collectMeshes(dst []Mesh, p Paint, opacity uint8) []Mesh {
	b := p.base()
	opacity = uint8(uint32(opacity) * uint32(b.opacity) / 255)
	if opacity == 0 {
		return dst
	}
	switch v := p.(type) {
	case *Shape:
		dst = shapeMeshes(dst, v, opacity, b.blend)
	case *Scene:
		for _, c := range v.children {
			dst = collectMeshes(dst, c, opacity)
		}
	case *Picture:
		if v.content != nil {
			return collectMeshes(dst, v.content, opacity)
		}
		if !v.prep.fillMesh.Empty() {
			dst = append(dst, mesh(&v.prep.fillMesh, opacity, b.blend))
		}
	case *Text:
		if v.glyphs != nil {
			dst = shapeMeshes(dst, v.glyphs, opacity, b.blend)
		}
	}
	return dst
}

func shapeMeshes(dst []Mesh, s *Shape, opacity uint8, bm BlendMethod) []Mesh {
	fill := func() {
		if s.prep.fillMesh.Empty() {
			return
		}
		m := mesh(&s.prep.fillMesh, opacity, bm)
		m.Color, m.Fill, m.Transform = s.fillColor, s.fill, matrixOf(s.prep.world)
		dst = append(dst, m)
	}
	stroke := func() {
		if s.prep.strokeMesh.Empty() {
			return
		}
		m := mesh(&s.prep.strokeMesh, opacity, bm)
		m.Color, m.Fill, m.Transform = s.stroke.color, s.stroke.fill, matrixOf(s.prep.world)
		dst = append(dst, m)
	}
	if s.stroke.strokeFirst {
		stroke()
		fill()
	} else {
		fill()
		stroke()
	}
	return dst
}

func mesh(t *tess.Mesh, opacity uint8, bm BlendMethod) Mesh {
	pts := make([]Point, len(t.Points))
	for i, p := range t.Points {
		pts[i] = Point(p)
	}
	return Mesh{
		Points:    pts,
		Indices:   append([]uint32(nil), t.Indices...),
		Color:     [4]uint8{255, 255, 255, 255},
		Transform: Identity(),
		Opacity:   opacity,
		Blend:     bm,
	}
}
