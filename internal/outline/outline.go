// Package outline converts float paths into device-space outlines made of
// 26.6 fixed-point points, the input format of the scanline rasterizer.
package outline

import (
	"github.com/chewxy/math32"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/tvg/internal/geom"
)

// PointType tags an outline point.
type PointType uint8

const (
	// OnCurve marks a point the contour passes through.
	OnCurve PointType = iota
	// Cubic marks a cubic control point; two Cubic points precede the
	// OnCurve end point of a curve.
	Cubic
)

// FillRule decides which regions of a self-overlapping outline are inside.
type FillRule uint8

const (
	// NonZero fills every region with a non-zero winding number.
	NonZero FillRule = iota
	// EvenOdd fills regions with an odd winding number.
	EvenOdd
)

// Outline is a device-space path.
type Outline struct {
	Pts   []fixed.Point26_6
	Types []PointType
	// Contours holds the index of the last point of each contour.
	Contours []uint32
	// Closed reports per contour whether it ended with a close command.
	Closed []bool
	// Opened is set when any contour was left open.
	Opened   bool
	FillRule FillRule
}

// Reset clears o, keeping its storage.
func (o *Outline) Reset() {
	o.Pts = o.Pts[:0]
	o.Types = o.Types[:0]
	o.Contours = o.Contours[:0]
	o.Closed = o.Closed[:0]
	o.Opened = false
}

// Empty reports whether o has nothing to rasterize.
func (o *Outline) Empty() bool {
	return len(o.Pts) == 0 || len(o.Contours) == 0
}

// ToFixed rounds a float coordinate to 26.6.
func ToFixed(v float32) fixed.Int26_6 {
	return fixed.Int26_6(math32.Floor(v*64 + 0.5))
}

// FixedPoint converts p to 26.6.
func FixedPoint(p geom.Point) fixed.Point26_6 {
	return fixed.Point26_6{X: ToFixed(p.X), Y: ToFixed(p.Y)}
}

// Bounds returns the pixel box covering every point. Fast-track rectangles
// round to the nearest pixel instead of expanding outwards.
func (o *Outline) Bounds(fastTrack bool) geom.Rect {
	if len(o.Pts) == 0 {
		return geom.Rect{}
	}
	minX, minY := o.Pts[0].X, o.Pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range o.Pts[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	if fastTrack {
		return geom.Rect{
			X0: minX.Round(), Y0: minY.Round(),
			X1: maxX.Round(), Y1: maxY.Round(),
		}
	}
	return geom.Rect{
		X0: minX.Floor(), Y0: minY.Floor(),
		X1: maxX.Ceil(), Y1: maxY.Ceil(),
	}
}

// AxisAlignedRect reports whether o is a single closed axis-aligned
// rectangle: five points with the last equal to the first and the corners
// matching pairwise.
func (o *Outline) AxisAlignedRect() bool {
	if len(o.Pts) != 5 || len(o.Contours) != 1 {
		return false
	}
	if o.Types[2] == Cubic {
		return false
	}
	p := o.Pts
	if p[0] != p[4] {
		return false
	}
	a := fixed.Point26_6{X: p[0].X, Y: p[2].Y}
	b := fixed.Point26_6{X: p[2].X, Y: p[0].Y}
	return (p[1] == a && p[3] == b) || (p[1] == b && p[3] == a)
}
