package tvg

import (
	"fmt"

	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/sw"
)

// SwCanvas renders on the CPU into a caller-owned pixel buffer.
type SwCanvas struct {
	canvas

	surface  *sw.Surface
	cs       Colorspace
	renderer swRenderer
}

// NewSwCanvas returns a software canvas without a target.
func (e *Engine) NewSwCanvas() *SwCanvas {
	c := &SwCanvas{}
	c.init(e, c)
	return c
}

// SetTarget draws into buf, a w×h image whose rows are stride words apart.
// Straight-alpha colorspaces are premultiplied before drawing and restored
// by Sync. The viewport resets to the whole target.
func (c *SwCanvas) SetTarget(buf []uint32, stride, w, h int, cs Colorspace) error {
	if w <= 0 || h <= 0 || stride < w || len(buf) < stride*(h-1)+w || !cs.valid() {
		return fmt.Errorf("tvg: sw target %dx%d stride %d %v: %w", w, h, stride, cs, ErrInvalidArgument)
	}
	if err := c.resize(w, h); err != nil {
		return err
	}
	c.surface = sw.NewSurface(buf, stride, w, h, cs.abgr())
	c.cs = cs
	return nil
}

// Colorspace returns the target colorspace.
func (c *SwCanvas) Colorspace() Colorspace { return c.cs }

func (c *SwCanvas) target() target { return target{abgr: c.cs.abgr()} }

func (c *SwCanvas) render(paints []Paint, vp geom.Rect, clear bool) {
	bands := c.bands(vp)
	tasks := make([]func(), len(bands))
	for i, band := range bands {
		tasks[i] = func() {
			switch {
			case clear:
				c.surface.Clear(band)
			case c.cs.straight():
				c.surface.Premultiply(band)
			}
			for _, p := range paints {
				c.renderer.draw(c.surface, p, band)
			}
		}
	}
	c.engine.pool.Run(tasks)
}

func (c *SwCanvas) finish(vp geom.Rect) error {
	if c.cs.straight() {
		c.surface.Unpremultiply(vp)
	}
	return nil
}
