package tvg

import (
	"fmt"
	"slices"

	"github.com/gogpu/tvg/internal/geom"
)

// Scene groups paints so they can be transformed, masked and composited
// as one. Children draw in push order.
type Scene struct {
	paintBase
	children []Paint
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	s := &Scene{}
	s.init(s)
	return s
}

func (s *Scene) Type() Type { return TypeScene }

// Push appends p on top of the other children. p must not have an owner.
func (s *Scene) Push(p Paint) error {
	return s.PushAt(p, nil)
}

// PushAt inserts p below before, or on top when before is nil.
func (s *Scene) PushAt(p Paint, before Paint) error {
	if p == nil || p == Paint(s) {
		return fmt.Errorf("tvg: scene push: %w", ErrInvalidArgument)
	}
	pb := p.base()
	if pb.attached() {
		return fmt.Errorf("tvg: scene push of owned %v: %w", p.Type(), ErrInsufficientCondition)
	}
	if references(p, s) {
		return fmt.Errorf("tvg: scene push of ancestor: %w", ErrInvalidArgument)
	}
	at := len(s.children)
	if before != nil {
		at = slices.Index(s.children, before)
		if at < 0 {
			return fmt.Errorf("tvg: scene push before a non-child: %w", ErrInvalidArgument)
		}
	}
	s.children = slices.Insert(s.children, at, p)
	pb.parent = s
	pb.refs++
	s.markDirty()
	return nil
}

// Remove detaches p, or every child when p is nil.
func (s *Scene) Remove(p Paint) error {
	if p == nil {
		s.Clear()
		return nil
	}
	i := slices.Index(s.children, p)
	if i < 0 {
		return fmt.Errorf("tvg: scene remove of a non-child: %w", ErrInvalidArgument)
	}
	release(p)
	s.children = slices.Delete(s.children, i, i+1)
	s.markDirty()
	return nil
}

// Clear detaches every child.
func (s *Scene) Clear() {
	for _, c := range s.children {
		release(c)
	}
	s.children = nil
	s.markDirty()
}

// Children returns the children in draw order.
func (s *Scene) Children() []Paint { return slices.Clone(s.children) }

func (s *Scene) Duplicate() Paint {
	d := NewScene()
	s.paintBase.duplicate(&d.paintBase)
	for _, c := range s.children {
		cd := c.Duplicate()
		cd.base().parent = d
		cd.base().refs = 1
		d.children = append(d.children, cd)
	}
	return d
}

// Bounds returns the union of the children's transformed bounds.
func (s *Scene) Bounds(transformed bool) (x, y, w, h float32, err error) {
	return s.bounds(childBounds(s.children), transformed)
}

func childBounds(children []Paint) geom.BBox {
	box := geom.EmptyBBox()
	for _, c := range children {
		x, y, w, h, err := c.Bounds(true)
		if err != nil {
			continue
		}
		box = box.Add(geom.Pt(x, y)).Add(geom.Pt(x+w, y+h))
	}
	return box
}
