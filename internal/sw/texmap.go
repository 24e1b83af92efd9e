package sw

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/tvg/internal/blend"
	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/raster"
)

// Image is a premultiplied source bitmap in the channel order of the
// surface it is drawn on.
type Image struct {
	Pix    []uint32
	W, H   int
	Stride int
}

func (img *Image) at(x, y int) uint32 {
	x = min(max(x, 0), img.W-1)
	y = min(max(y, 0), img.H-1)
	return img.Pix[y*img.Stride+x]
}

// Sample returns the bilinear sample at image coordinates (u, v), where
// pixel centers sit at half-integers. Coordinates are clamped to the
// image.
func (img *Image) Sample(u, v float32) uint32 {
	fx, fy := u-0.5, v-0.5
	x0f, y0f := math32.Floor(fx), math32.Floor(fy)
	tx := uint8((fx-x0f)*255 + 0.5)
	ty := uint8((fy-y0f)*255 + 0.5)
	x0, y0 := int(x0f), int(y0f)

	c00 := img.at(x0, y0)
	if tx == 0 && ty == 0 {
		return c00
	}
	top := blend.Lerp(img.at(x0+1, y0), c00, tx)
	bot := blend.Lerp(img.at(x0+1, y0+1), img.at(x0, y0+1), tx)
	return blend.Lerp(bot, top, ty)
}

// DrawImage draws img, placed by m from image to device space, over the
// coverage of rle. rle is usually the transformed image rectangle,
// possibly intersected with a clip.
func (s *Surface) DrawImage(img *Image, m geom.Matrix, rle *raster.RLE, op Op, band geom.Rect) bool {
	inv, ok := m.Invert()
	if !ok || img.W == 0 || img.H == 0 {
		return false
	}
	clip := band.Intersect(s.Rect)
	if clip.Empty() || rle.Empty() || op.Opacity == 0 {
		return true
	}
	fn := blend.Lookup(op.Method)
	for _, sp := range rle.Fetch(clip.Y0, clip.Y1-1) {
		x0, x1 := max(int(sp.X), clip.X0), min(sp.End(), clip.X1)
		if x0 >= x1 {
			continue
		}
		cov := uint8(blend.Mul(uint32(sp.Coverage), uint32(op.Opacity)))
		uv := inv.Apply(geom.Point{X: float32(x0) + 0.5, Y: float32(sp.Y) + 0.5})
		dst := s.Row(int(sp.Y), x0, x1)
		for i, d := range dst {
			u := uv.X + inv.E11*float32(i)
			v := uv.Y + inv.E21*float32(i)
			dst[i] = fn(blend.Scale(img.Sample(u, v), cov), d)
		}
	}
	return true
}

type texVertex struct {
	pos, uv geom.Point
}

// edgeAt interpolates position and texture coordinates along a→b at row
// center y.
func edgeAt(a, b texVertex, y float32) (x float32, uv geom.Point) {
	t := (y - a.pos.Y) / (b.pos.Y - a.pos.Y)
	return a.pos.X + (b.pos.X-a.pos.X)*t, a.uv.Lerp(b.uv, t)
}

// Texmap draws img placed by m without coverage: the image rectangle is
// split into two triangles whose edges are walked scanline by scanline.
// Pixels whose centers fall inside a triangle are drawn exactly once.
func (s *Surface) Texmap(img *Image, m geom.Matrix, op Op, band geom.Rect) bool {
	inv, ok := m.Invert()
	if !ok || img.W == 0 || img.H == 0 {
		return false
	}
	clip := band.Intersect(s.Rect)
	if clip.Empty() || op.Opacity == 0 {
		return true
	}
	w, h := float32(img.W), float32(img.H)
	corners := [4]geom.Point{{}, {X: w}, {X: w, Y: h}, {Y: h}}
	var vs [4]texVertex
	for i, c := range corners {
		vs[i] = texVertex{pos: m.Apply(c), uv: c}
	}
	fn := blend.Lookup(op.Method)
	du, dv := inv.E11, inv.E21

	for _, tri := range [2][3]texVertex{{vs[0], vs[1], vs[2]}, {vs[0], vs[2], vs[3]}} {
		a, b, c := tri[0], tri[1], tri[2]
		if a.pos.Y > b.pos.Y {
			a, b = b, a
		}
		if b.pos.Y > c.pos.Y {
			b, c = c, b
		}
		if a.pos.Y > b.pos.Y {
			a, b = b, a
		}
		y0 := max(int(math32.Ceil(a.pos.Y-0.5)), clip.Y0)
		y1 := min(int(math32.Ceil(c.pos.Y-0.5)), clip.Y1)
		for y := y0; y < y1; y++ {
			yc := float32(y) + 0.5
			xl, uvl := edgeAt(a, c, yc)
			var xr float32
			if yc < b.pos.Y {
				xr, _ = edgeAt(a, b, yc)
			} else {
				xr, _ = edgeAt(b, c, yc)
			}
			if xr < xl {
				// the long edge is on the right; restart from the short one
				xl, xr = xr, xl
				if yc < b.pos.Y {
					_, uvl = edgeAt(a, b, yc)
				} else {
					_, uvl = edgeAt(b, c, yc)
				}
			}
			x0 := max(int(math32.Ceil(xl-0.5)), clip.X0)
			x1 := min(int(math32.Ceil(xr-0.5)), clip.X1)
			if x0 >= x1 {
				continue
			}
			// step from the edge to the first pixel center
			off := float32(x0) + 0.5 - xl
			u, v := uvl.X+du*off, uvl.Y+dv*off
			dst := s.Row(y, x0, x1)
			for i, d := range dst {
				px := img.Sample(u+du*float32(i), v+dv*float32(i))
				if op.Opacity < 255 {
					px = blend.Scale(px, op.Opacity)
				}
				dst[i] = fn(px, d)
			}
		}
	}
	return true
}
