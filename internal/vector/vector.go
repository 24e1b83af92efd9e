// Package vector is the paint-tree description vector loaders produce.
// It carries geometry and styling only; the renderer turns it into live
// paints.
package vector

import (
	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/outline"
	"github.com/gogpu/tvg/internal/stroke"
	"github.com/gogpu/tvg/internal/sw"
)

// GradientKind selects the gradient geometry.
type GradientKind uint8

const (
	Linear GradientKind = iota
	Radial
)

// Stop is a straight-alpha color stop.
type Stop struct {
	Offset float32
	Color  [4]uint8
}

// Gradient describes a linear or radial gradient in the user space of the
// shape it fills.
type Gradient struct {
	Kind           GradientKind
	X1, Y1, X2, Y2 float32
	CX, CY, R      float32
	FX, FY, FR     float32
	Stops          []Stop
	Spread         sw.Spread
	Transform      geom.Matrix
}

// Paint is a solid color or, when Gradient is set, a gradient.
type Paint struct {
	Color    [4]uint8
	Gradient *Gradient
}

// Stroke is an outline style.
type Stroke struct {
	Paint
	Width      float32
	Cap        stroke.Cap
	Join       stroke.Join
	MiterLimit float32
	Dash       []float32
	DashOffset float32
}

// Trim keeps part of a shape's path.
type Trim struct {
	Begin, End   float32
	Simultaneous bool
}

// Node is a group when Path is nil and a shape otherwise.
type Node struct {
	ID        string
	Transform geom.Matrix
	Opacity   uint8
	Children  []*Node

	Path     *geom.Path
	FillRule outline.FillRule
	Fill     *Paint
	Stroke   *Stroke
	Trim     *Trim
}

// NewGroup returns an empty, fully opaque group.
func NewGroup() *Node {
	return &Node{Transform: geom.Identity(), Opacity: 255}
}

// NewShape returns a fully opaque shape drawing p.
func NewShape(p *geom.Path) *Node {
	return &Node{Transform: geom.Identity(), Opacity: 255, Path: p}
}

// Walk calls fn for n and its descendants depth first until fn returns
// false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Marker names a frame range of an animation.
type Marker struct {
	Name       string
	Begin, End float32
}

// Animation is a time-varying vector source.
type Animation interface {
	// TotalFrame is the number of frames.
	TotalFrame() float32
	// FrameRate is the playback rate in frames per second.
	FrameRate() float32
	// Size is the canvas size of the animation.
	Size() (w, h float32)
	// Frame builds the tree at frame no, counted from the first frame.
	Frame(no float32) *Node
	Markers() []Marker
}
