package tvg

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/parallel"
)

// Canvas is the drawing surface paints are pushed to. Its lifecycle is
//
//	Synced ─Push/Update→ Updating ─Draw→ Drawing ─Sync→ Synced
//
// Draw starts rendering in the background and Sync waits for it. Paints
// must not be modified between Draw and Sync.
type Canvas interface {
	Push(p Paint) error
	PushAt(p Paint, before Paint) error
	Remove(p Paint) error
	Paints() []Paint
	Update() error
	UpdatePaint(p Paint) error
	Draw(clear bool) error
	Sync() error
	SetViewport(x, y, w, h int) error
}

type canvasState uint8

const (
	stateSynced canvasState = iota
	stateUpdating
	stateDrawing
)

// backend is the part of a canvas that differs per target.
type backend interface {
	// target describes the prepared state the backend draws from.
	target() target
	// render draws the prepared paints. It runs on the engine pool.
	render(paints []Paint, viewport geom.Rect, clear bool)
	// finish runs in Sync after rendering has completed.
	finish(viewport geom.Rect) error
}

// canvas holds the paint list and the state machine shared by every
// canvas type.
type canvas struct {
	engine *Engine
	log    *slog.Logger
	be     backend

	paints []Paint
	state  canvasState

	w, h     int
	hasTgt   bool
	viewport geom.Rect
	// stale forces every paint to be prepared again
	stale bool

	task *parallel.Task
}

func (c *canvas) init(e *Engine, be backend) {
	c.engine, c.log, c.be = e, e.log, be
}

// resize installs a new target size and resets the viewport to cover it.
func (c *canvas) resize(w, h int) error {
	if c.state == stateDrawing {
		return fmt.Errorf("tvg: set target while drawing: %w", ErrInsufficientCondition)
	}
	c.w, c.h, c.hasTgt = w, h, true
	c.viewport = geom.Rect{X1: w, Y1: h}
	c.stale = true
	c.state = stateUpdating
	return nil
}

// Push adds p on top of the canvas paints.
func (c *canvas) Push(p Paint) error { return c.PushAt(p, nil) }

// PushAt inserts p below before, or on top when before is nil. p must not
// have an owner.
func (c *canvas) PushAt(p Paint, before Paint) error {
	if err := c.engine.check(); err != nil {
		return err
	}
	if c.state == stateDrawing {
		return fmt.Errorf("tvg: push while drawing: %w", ErrInsufficientCondition)
	}
	if p == nil {
		return fmt.Errorf("tvg: push: %w", ErrInvalidArgument)
	}
	pb := p.base()
	if pb.attached() {
		return fmt.Errorf("tvg: push of owned %v: %w", p.Type(), ErrInsufficientCondition)
	}
	at := len(c.paints)
	if before != nil {
		at = slices.Index(c.paints, before)
		if at < 0 {
			return fmt.Errorf("tvg: push before a paint not on the canvas: %w", ErrInvalidArgument)
		}
	}
	c.paints = slices.Insert(c.paints, at, p)
	pb.canvas = c
	pb.refs++
	pb.markDirty()
	c.state = stateUpdating
	return nil
}

// Remove takes p off the canvas, or every paint when p is nil.
func (c *canvas) Remove(p Paint) error {
	if c.state == stateDrawing {
		return fmt.Errorf("tvg: remove while drawing: %w", ErrInsufficientCondition)
	}
	if p == nil {
		for _, q := range c.paints {
			release(q)
		}
		c.paints = nil
		c.state = stateUpdating
		return nil
	}
	i := slices.Index(c.paints, p)
	if i < 0 {
		return fmt.Errorf("tvg: remove of a paint not on the canvas: %w", ErrInvalidArgument)
	}
	release(p)
	c.paints = slices.Delete(c.paints, i, i+1)
	c.state = stateUpdating
	return nil
}

// Paints returns the canvas paints in draw order.
func (c *canvas) Paints() []Paint { return slices.Clone(c.paints) }

// Update prepares every changed paint for drawing.
func (c *canvas) Update() error {
	if err := c.ready("update"); err != nil {
		return err
	}
	c.update(nil)
	return nil
}

// UpdatePaint prepares the canvas paint holding p.
func (c *canvas) UpdatePaint(p Paint) error {
	if err := c.ready("update"); err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("tvg: update of nil paint: %w", ErrInvalidArgument)
	}
	top := p
	for {
		b := top.base()
		if b.parent != nil {
			top = b.parent
		} else if b.owner != nil {
			top = b.owner
		} else {
			break
		}
	}
	if top.base().canvas != c {
		return fmt.Errorf("tvg: update of a paint not on the canvas: %w", ErrInvalidArgument)
	}
	c.update(top)
	return nil
}

func (c *canvas) ready(op string) error {
	if err := c.engine.check(); err != nil {
		return err
	}
	if c.state == stateDrawing {
		return fmt.Errorf("tvg: %s while drawing: %w", op, ErrInsufficientCondition)
	}
	if !c.hasTgt {
		return fmt.Errorf("tvg: %s without target: %w", op, ErrInsufficientCondition)
	}
	return nil
}

// update prepares only (when not nil) or every dirty top-level paint, one
// task per paint.
func (c *canvas) update(only Paint) {
	start := time.Now()
	tgt := c.be.target()
	tgt.viewport, tgt.log = c.viewport, c.log
	var tasks []func()
	for _, p := range c.paints {
		if only != nil && p != only {
			continue
		}
		if !c.stale && !p.base().dirty {
			continue
		}
		tasks = append(tasks, func() { prepare(p, geom.Identity(), nil, &tgt) })
	}
	c.engine.pool.Run(tasks)
	if only == nil {
		c.stale = false
	}
	c.state = stateUpdating
	c.log.Debug("tvg: canvas updated", "paints", len(tasks), "elapsed", time.Since(start))
}

// Draw renders the paints into the target, updating changed paints first.
// clear erases the viewport beforehand. Rendering runs in the background
// until Sync.
func (c *canvas) Draw(clear bool) error {
	if err := c.ready("draw"); err != nil {
		return err
	}
	if c.stale || slices.ContainsFunc(c.paints, func(p Paint) bool { return p.base().dirty }) {
		c.update(nil)
	}
	paints, vp := slices.Clone(c.paints), c.viewport
	c.task = c.engine.pool.Go(func() { c.be.render(paints, vp, clear) })
	c.state = stateDrawing
	return nil
}

// Sync waits for Draw to complete.
func (c *canvas) Sync() error {
	if c.state != stateDrawing {
		return fmt.Errorf("tvg: sync without draw: %w", ErrInsufficientCondition)
	}
	c.task.Wait()
	c.task = nil
	c.state = stateSynced
	return c.be.finish(c.viewport)
}

// SetViewport limits drawing to the rectangle (x, y, w, h) of the target.
func (c *canvas) SetViewport(x, y, w, h int) error {
	if c.state == stateDrawing {
		return fmt.Errorf("tvg: set viewport while drawing: %w", ErrInsufficientCondition)
	}
	if w < 0 || h < 0 {
		return fmt.Errorf("tvg: viewport %dx%d: %w", w, h, ErrInvalidArgument)
	}
	vp := geom.Rect{X0: x, Y0: y, X1: x + w, Y1: y + h}
	if c.hasTgt {
		vp = vp.Intersect(geom.Rect{X1: c.w, Y1: c.h})
	}
	c.viewport = vp
	c.stale = true
	c.state = stateUpdating
	return nil
}

// Viewport returns the drawing rectangle.
func (c *canvas) Viewport() (x, y, w, h int) {
	return c.viewport.X0, c.viewport.Y0, c.viewport.W(), c.viewport.H()
}

// bands splits the viewport rows for the pool's workers.
func (c *canvas) bands(vp geom.Rect) []geom.Rect {
	n := max(c.engine.pool.Workers(), 1)
	var out []geom.Rect
	for _, b := range parallel.Bands(vp.Y0, vp.Y1, n, 16) {
		out = append(out, geom.Rect{X0: vp.X0, Y0: b.Y0, X1: vp.X1, Y1: b.Y1})
	}
	return out
}
