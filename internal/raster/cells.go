// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package raster

import (
	"math"

	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/outline"
)

// The rasterizer accumulates signed area and cover per cell at PixelBits of
// sub-pixel precision, then sweeps every row converting the running cover
// into span coverage. Outline points come in as 26.6 and are upscaled.
const (
	PixelBits = 8
	onePixel  = 1 << PixelBits
	maxCoord  = math.MaxInt16
)

type point struct {
	x, y int32
}

func (p point) sub(q point) point { return point{p.x - q.x, p.y - q.y} }

func upscale(x, y int32) point {
	return point{x << (PixelBits - 6), y << (PixelBits - 6)}
}

func trunc(p point) point { return point{p.x >> PixelBits, p.y >> PixelBits} }

func fract(p point) point { return point{p.x & (onePixel - 1), p.y & (onePixel - 1)} }

// hypot approximates the vector length with alpha max plus beta min,
// alpha 1 and beta 3/8.
func hypot(p point) int64 {
	x, y := int64(p.x), int64(p.y)
	if x < 0 {
		x = -x
	}
	if y < 0 {
		y = -y
	}
	if x > y {
		return x + (3 * y >> 3)
	}
	return y + (3 * x >> 3)
}

func udiv(a, b int64) int32 {
	return int32((uint64(a) * uint64(b)) >> 32)
}

type cell struct {
	x     int32
	cover int32
	area  int64
	next  int32
}

type worker struct {
	rle *RLE

	cellPos  point
	cellMin  point
	cellMax  point
	cellXCnt int32
	cellYCnt int32

	area  int64
	cover int32

	cells  []cell
	yCells []int32

	pos     point
	invalid bool

	rule      outline.FillRule
	antiAlias bool

	lines []point
	bez   []point
}

// Rasterize converts o into coverage spans clipped to clip. An outline with
// no points or contours, or one outside clip, yields an empty RLE.
func Rasterize(o *outline.Outline, clip geom.Rect, antiAlias bool) *RLE {
	return RasterizeInto(&RLE{}, o, clip, antiAlias)
}

// RasterizeInto is Rasterize reusing dst's storage.
func RasterizeInto(dst *RLE, o *outline.Outline, clip geom.Rect, antiAlias bool) *RLE {
	dst.Reset()
	if o == nil || o.Empty() {
		return dst
	}
	box := o.Bounds(false).Intersect(clip)
	if box.Empty() {
		return dst
	}

	w := worker{
		rle:       dst,
		cellMin:   point{int32(box.X0), int32(box.Y0)},
		cellMax:   point{int32(box.X1), int32(box.Y1)},
		invalid:   true,
		rule:      o.FillRule,
		antiAlias: antiAlias,
	}
	w.cellXCnt = w.cellMax.x - w.cellMin.x
	w.cellYCnt = w.cellMax.y - w.cellMin.y
	w.yCells = make([]int32, w.cellYCnt)
	for i := range w.yCells {
		w.yCells[i] = -1
	}
	w.cells = make([]cell, 0, max(box.W(), box.H())*4)

	w.decompose(o)
	if !w.invalid {
		w.recordCell()
	}
	w.sweep()
	return dst
}

func (w *worker) horizLine(x, y int32, area int64, count int32) {
	x += w.cellMin.x
	y += w.cellMin.y

	if y < w.cellMin.y || y >= w.cellMax.y {
		return
	}

	// area is scaled by ONE_PIXEL*ONE_PIXEL*2; keep 8 bits of it.
	coverage := area >> (PixelBits*2 + 1 - 8)
	if coverage < 0 {
		coverage = -coverage
	}
	if w.rule == outline.EvenOdd {
		coverage &= 511
		if coverage > 255 {
			coverage = 511 - coverage
		}
	} else if coverage > 255 {
		coverage = 255
	}
	if coverage == 0 {
		return
	}
	if x >= maxCoord || y >= maxCoord {
		return
	}
	if !w.antiAlias {
		coverage = 255
	}

	xOver := int32(0)
	if x+count >= w.cellMax.x {
		xOver -= x + count - w.cellMax.x
	}

	spans := w.rle.Spans
	if n := len(spans); n > 0 {
		last := &spans[n-1]
		if int64(last.Coverage) == coverage && int32(last.Y) == y && int32(last.X)+int32(last.Len) == x {
			if x < w.cellMin.x {
				xOver -= w.cellMin.x - x
			}
			last.Len += uint16(count + xOver)
			return
		}
	}

	if x < w.cellMin.x {
		xOver -= w.cellMin.x - x
		x = w.cellMin.x
	}
	if count+xOver <= 0 {
		return
	}
	w.rle.Spans = append(spans, Span{X: int16(x), Y: int16(y), Len: uint16(count + xOver), Coverage: uint8(coverage)})
}

func (w *worker) sweep() {
	if len(w.cells) == 0 {
		return
	}
	for y := int32(0); y < w.cellYCnt; y++ {
		cover := int32(0)
		x := int32(0)
		for ci := w.yCells[y]; ci >= 0; ci = w.cells[ci].next {
			c := &w.cells[ci]
			if c.x > x && cover != 0 {
				w.horizLine(x, y, int64(cover)*(onePixel*2), c.x-x)
			}
			cover += c.cover
			area := int64(cover)*(onePixel*2) - c.area
			if area != 0 && c.x >= 0 {
				w.horizLine(c.x, y, area, 1)
			}
			x = c.x + 1
		}
		if cover != 0 {
			w.horizLine(x, y, int64(cover)*(onePixel*2), w.cellXCnt-x)
		}
	}
}

// findCell returns the cell at cellPos, inserting it into its row list
// sorted by x.
func (w *worker) findCell() *cell {
	x := min(w.cellPos.x, w.cellXCnt)
	prev := int32(-1)
	ci := w.yCells[w.cellPos.y]
	for ci >= 0 {
		c := &w.cells[ci]
		if c.x > x {
			break
		}
		if c.x == x {
			return c
		}
		prev, ci = ci, c.next
	}
	w.cells = append(w.cells, cell{x: x, next: ci})
	idx := int32(len(w.cells) - 1)
	if prev < 0 {
		w.yCells[w.cellPos.y] = idx
	} else {
		w.cells[prev].next = idx
	}
	return &w.cells[idx]
}

func (w *worker) recordCell() {
	if w.area != 0 || w.cover != 0 {
		c := w.findCell()
		c.area += w.area
		c.cover += w.cover
	}
}

// setCell moves to the cell at absolute pos. Cells left of the clip box
// collapse to column -1 so their cover still reaches the sweep.
func (w *worker) setCell(pos point) {
	pos = pos.sub(w.cellMin)
	if pos.x < 0 {
		pos.x = -1
	} else if pos.x > w.cellXCnt {
		pos.x = w.cellXCnt
	}
	if pos != w.cellPos {
		if !w.invalid {
			w.recordCell()
		}
		w.area, w.cover = 0, 0
		w.cellPos = pos
	}
	w.invalid = uint32(pos.y) >= uint32(w.cellYCnt) || pos.x >= w.cellXCnt
}

func (w *worker) startCell(pos point) {
	if pos.x > w.cellMax.x {
		pos.x = w.cellMax.x
	}
	if pos.x < w.cellMin.x {
		pos.x = w.cellMin.x - 1
	}
	w.area, w.cover = 0, 0
	w.cellPos = pos.sub(w.cellMin)
	w.invalid = false
	w.setCell(pos)
}

func (w *worker) moveTo(to point) {
	if !w.invalid {
		w.recordCell()
	}
	w.startCell(trunc(to))
	w.pos = to
}

func safeHypot(a, b point) int64 {
	x := int64(a.x) - int64(b.x)
	y := int64(a.y) - int64(b.y)
	if x < 0 {
		x = -x
	}
	if y < 0 {
		y = -y
	}
	if x > y {
		return x + (3 * y >> 3)
	}
	return y + (3 * x >> 3)
}

func (w *worker) accumulate(f1, f2 point) {
	w.cover += f2.y - f1.y
	w.area += int64(f2.y-f1.y) * int64(f1.x+f2.x)
}

func (w *worker) lineTo(to point) {
	e1 := trunc(w.pos)
	e2 := trunc(to)

	if (e1.y >= w.cellMax.y && e2.y >= w.cellMax.y) || (e1.y < w.cellMin.y && e2.y < w.cellMin.y) {
		w.pos = to
		return
	}

	// stack[li] is the segment end, stack[li+1] its start. Long segments are
	// halved until the fixed-point stepping below cannot overflow.
	stack := append(w.lines[:0], to, w.pos)
	li := 0
	for {
		if safeHypot(stack[li], stack[li+1]) > maxCoord {
			from := stack[li+1]
			mid := point{(stack[li].x + from.x) / 2, (stack[li].y + from.y) / 2}
			stack = append(stack[:li+1], mid, from)
			li++
			continue
		}

		end, start := stack[li], stack[li+1]
		diff := end.sub(start)
		e1 = trunc(start)
		e2 = trunc(end)
		f1 := fract(start)
		var f2 point

		switch {
		case e1 == e2:
		case diff.y == 0:
			e1.x = e2.x
			w.setCell(e1)
		case diff.x == 0:
			if diff.y > 0 {
				for {
					f2.y = onePixel
					w.cover += f2.y - f1.y
					w.area += int64(f2.y-f1.y) * int64(f1.x) * 2
					f1.y = 0
					e1.y++
					w.setCell(e1)
					if e1.y == e2.y {
						break
					}
				}
			} else {
				for {
					f2.y = 0
					w.cover += f2.y - f1.y
					w.area += int64(f2.y-f1.y) * int64(f1.x) * 2
					f1.y = onePixel
					e1.y--
					w.setCell(e1)
					if e1.y == e2.y {
						break
					}
				}
			}
		default:
			prod := int64(diff.x)*int64(f1.y) - int64(diff.y)*int64(f1.x)
			var dxr, dyr int64
			if e1.x != e2.x {
				dxr = 0xffffffff / int64(diff.x)
			}
			if e1.y != e2.y {
				dyr = 0xffffffff / int64(diff.y)
			}
			px := int64(diff.x) * onePixel
			py := int64(diff.y) * onePixel

			// prod tells on which side of the cell the line exits.
			for {
				switch {
				case prod <= 0 && prod-px > 0: // left
					f2 = point{0, udiv(-prod, -dxr)}
					prod -= py
					w.accumulate(f1, f2)
					f1 = point{onePixel, f2.y}
					e1.x--
				case prod-px <= 0 && prod-px+py > 0: // up
					prod -= px
					f2 = point{udiv(-prod, dyr), onePixel}
					w.accumulate(f1, f2)
					f1 = point{f2.x, 0}
					e1.y++
				case prod-px+py <= 0 && prod+py >= 0: // right
					prod += py
					f2 = point{onePixel, udiv(prod, dxr)}
					w.accumulate(f1, f2)
					f1 = point{0, f2.y}
					e1.x++
				default: // down
					f2 = point{udiv(prod, -dyr), 0}
					prod += px
					w.accumulate(f1, f2)
					f1 = point{f2.x, onePixel}
					e1.y--
				}
				w.setCell(e1)
				if e1 == e2 {
					break
				}
			}
		}

		f2 = fract(end)
		w.accumulate(f1, f2)
		w.pos = end

		if li == 0 {
			w.lines = stack
			return
		}
		li--
	}
}

func splitCubic(b []point) {
	// b holds 7 slots; the curve in b[0:4] becomes b[0:4] and b[3:7].
	b[6] = b[3]
	c, d := b[1], b[2]
	a := point{(b[0].x + c.x) / 2, (b[0].y + c.y) / 2}
	e := point{(b[3].x + d.x) / 2, (b[3].y + d.y) / 2}
	b[1], b[5] = a, e
	c = point{(c.x + d.x) / 2, (c.y + d.y) / 2}
	a = point{(a.x + c.x) / 2, (a.y + c.y) / 2}
	e = point{(e.x + c.x) / 2, (e.y + c.y) / 2}
	b[2], b[4] = a, e
	b[3] = point{(a.x + e.x) / 2, (a.y + e.y) / 2}
}

// cubicTo flattens with the rapid termination test of T. F. Hain: a curve
// is drawn as a line once both control points are within a sixth of a
// pixel of the chord and neither makes an acute angle with it.
func (w *worker) cubicTo(ctrl1, ctrl2, to point) {
	arc := append(w.bez[:0], to, ctrl2, ctrl1, w.pos)

	minY, maxY := arc[0].y, arc[0].y
	for _, p := range arc[1:] {
		minY = min(minY, p.y)
		maxY = max(maxY, p.y)
	}
	if minY>>PixelBits >= w.cellMax.y || maxY>>PixelBits < w.cellMin.y {
		w.lineTo(arc[0])
		w.bez = arc
		return
	}

	ai := 0
	for {
		if w.shouldSplit(arc[ai:ai+4]) && ai < 32*3 {
			for len(arc) < ai+7 {
				arc = append(arc, point{})
			}
			splitCubic(arc[ai : ai+7])
			ai += 3
			continue
		}
		w.lineTo(arc[ai])
		if ai == 0 {
			w.bez = arc
			return
		}
		ai -= 3
	}
}

func (w *worker) shouldSplit(arc []point) bool {
	diff := arc[3].sub(arc[0])
	l := hypot(diff)
	if l > maxCoord {
		return true
	}
	sLimit := l * (onePixel / 6)

	diff1 := arc[1].sub(arc[0])
	s := int64(diff.y)*int64(diff1.x) - int64(diff.x)*int64(diff1.y)
	if s < 0 {
		s = -s
	}
	if s > sLimit {
		return true
	}

	diff2 := arc[2].sub(arc[0])
	s = int64(diff.y)*int64(diff2.x) - int64(diff.x)*int64(diff2.y)
	if s < 0 {
		s = -s
	}
	if s > sLimit {
		return true
	}

	return int64(diff1.x)*int64(diff1.x-diff.x)+int64(diff1.y)*int64(diff1.y-diff.y) > 0 ||
		int64(diff2.x)*int64(diff2.x-diff.x)+int64(diff2.y)*int64(diff2.y-diff.y) > 0
}

func (w *worker) decompose(o *outline.Outline) {
	first := 0
	for _, last := range o.Contours {
		end := int(last)
		start := upscale(int32(o.Pts[first].X), int32(o.Pts[first].Y))
		w.moveTo(start)

		i := first
		for i < end {
			if o.Types[i+1] == outline.OnCurve {
				i++
				w.lineTo(upscale(int32(o.Pts[i].X), int32(o.Pts[i].Y)))
				continue
			}
			i += 3
			if i <= end {
				w.cubicTo(
					upscale(int32(o.Pts[i-2].X), int32(o.Pts[i-2].Y)),
					upscale(int32(o.Pts[i-1].X), int32(o.Pts[i-1].Y)),
					upscale(int32(o.Pts[i].X), int32(o.Pts[i].Y)))
			} else if i-1 == end {
				w.cubicTo(
					upscale(int32(o.Pts[i-2].X), int32(o.Pts[i-2].Y)),
					upscale(int32(o.Pts[i-1].X), int32(o.Pts[i-1].Y)),
					start)
			}
		}
		w.lineTo(start)
		first = end + 1
	}
}
