package geom

import "github.com/chewxy/math32"

// BBox is an axis-aligned bounding box. The zero value with Min > Max is
// produced by EmptyBBox and absorbs the first point added.
type BBox struct {
	Min, Max Point
}

// EmptyBBox returns a box that contains nothing.
func EmptyBBox() BBox {
	inf := math32.Inf(1)
	return BBox{Min: Point{inf, inf}, Max: Point{-inf, -inf}}
}

// Empty reports whether b has no area.
func (b BBox) Empty() bool {
	return b.Min.X >= b.Max.X || b.Min.Y >= b.Max.Y
}

// Add grows b to contain p.
func (b BBox) Add(p Point) BBox {
	b.Min.X = min(b.Min.X, p.X)
	b.Min.Y = min(b.Min.Y, p.Y)
	b.Max.X = max(b.Max.X, p.X)
	b.Max.Y = max(b.Max.Y, p.Y)
	return b
}

// Union returns the box covering b and o.
func (b BBox) Union(o BBox) BBox {
	return b.Add(o.Min).Add(o.Max)
}

// Width returns the box width.
func (b BBox) Width() float32 { return b.Max.X - b.Min.X }

// Height returns the box height.
func (b BBox) Height() float32 { return b.Max.Y - b.Min.Y }

// Transform returns the bounds of the four transformed corners.
func (b BBox) Transform(m Matrix) BBox {
	out := EmptyBBox()
	out = out.Add(m.Apply(b.Min))
	out = out.Add(m.Apply(Point{b.Max.X, b.Min.Y}))
	out = out.Add(m.Apply(b.Max))
	out = out.Add(m.Apply(Point{b.Min.X, b.Max.Y}))
	return out
}

// Rect is an integer pixel rectangle, Max exclusive.
type Rect struct {
	X0, Y0, X1, Y1 int
}

// Empty reports whether r has no pixels.
func (r Rect) Empty() bool { return r.X0 >= r.X1 || r.Y0 >= r.Y1 }

// W returns the width.
func (r Rect) W() int { return r.X1 - r.X0 }

// H returns the height.
func (r Rect) H() int { return r.Y1 - r.Y0 }

// Intersect returns the overlap of r and o.
func (r Rect) Intersect(o Rect) Rect {
	r.X0 = max(r.X0, o.X0)
	r.Y0 = max(r.Y0, o.Y0)
	r.X1 = min(r.X1, o.X1)
	r.Y1 = min(r.Y1, o.Y1)
	if r.Empty() {
		return Rect{}
	}
	return r
}

// Union returns the smallest rectangle covering r and o. Empty operands
// are ignored.
func (r Rect) Union(o Rect) Rect {
	switch {
	case r.Empty():
		return o
	case o.Empty():
		return r
	}
	return Rect{X0: min(r.X0, o.X0), Y0: min(r.Y0, o.Y0), X1: max(r.X1, o.X1), Y1: max(r.Y1, o.Y1)}
}

// Contains reports whether (x, y) lies in r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X0 && x < r.X1 && y >= r.Y0 && y < r.Y1
}

// Snap returns the pixel rectangle covering b.
func (b BBox) Snap() Rect {
	if b.Min.X > b.Max.X || b.Min.Y > b.Max.Y {
		return Rect{}
	}
	return Rect{
		X0: int(math32.Floor(b.Min.X)),
		Y0: int(math32.Floor(b.Min.Y)),
		X1: int(math32.Ceil(b.Max.X)),
		Y1: int(math32.Ceil(b.Max.Y)),
	}
}
