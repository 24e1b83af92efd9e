package stroke

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/tvg/internal/geom"
)

const dashEpsilon = 1e-4

// ValidDash reports whether pattern can dash a path: it must be non-empty
// and every entry positive. A zero entry means no dashing.
func ValidDash(pattern []float32) bool {
	if len(pattern) == 0 {
		return false
	}
	for _, v := range pattern {
		if v <= 0 {
			return false
		}
	}
	return true
}

type dasher struct {
	pattern []float32
	out     geom.Path

	idx    int
	curLen float32
	gap    bool
	move   bool

	start, cur geom.Point

	// first dash of the current sub-path, when it begins at the start point
	headCmd int
	headOn  bool
	tailCmd int
}

// Dash splits p into on-segments of the cyclic pattern starting offset units
// into it. An odd pattern is repeated once so that on and off alternate.
// Each sub-path restarts the pattern. On a closed sub-path the last dash is
// joined with the first when both touch the start point.
func Dash(p *geom.Path, pattern []float32, offset float32) geom.Path {
	if !ValidDash(pattern) || p.Empty() {
		return p.Clone()
	}
	if len(pattern)%2 == 1 {
		pattern = append(append([]float32(nil), pattern...), pattern...)
	}

	var total float32
	for _, v := range pattern {
		total += v
	}
	offIdx := 0
	if !geom.Zero(offset) {
		offset = math32.Mod(offset, total)
		if offset < 0 {
			offset += total
		}
		for offIdx < len(pattern) && offset >= pattern[offIdx] {
			offset -= pattern[offIdx]
			offIdx++
		}
		offIdx %= len(pattern)
	}

	d := dasher{pattern: pattern}
	p.Walk(func(s geom.Segment) {
		switch s.Cmd {
		case geom.MoveTo:
			d.moveTo(s.Pts[0], offIdx, offset)
		case geom.LineTo:
			d.lineTo(s.Pts[1])
		case geom.CubicTo:
			d.cubicTo(geom.Bezier{Start: d.cur, Ctrl1: s.Pts[1], Ctrl2: s.Pts[2], End: s.Pts[3]})
		case geom.Close:
			d.close()
		}
	})
	return d.out
}

func (d *dasher) moveTo(pt geom.Point, offIdx int, offset float32) {
	d.idx = offIdx
	d.curLen = d.pattern[offIdx] - offset
	d.gap = offIdx%2 == 1
	d.move = true
	d.start, d.cur = pt, pt
	d.headCmd = len(d.out.Cmds)
	d.headOn = !d.gap
	d.tailCmd = -1
}

func (d *dasher) next() {
	d.idx = (d.idx + 1) % len(d.pattern)
	d.curLen = d.pattern[d.idx]
	d.gap = !d.gap
	d.move = true
}

func (d *dasher) begin(from geom.Point) {
	if d.move {
		d.tailCmd = len(d.out.Cmds)
		d.out.MoveTo(from.X, from.Y)
		d.move = false
	}
}

func (d *dasher) lineTo(to geom.Point) {
	remaining := d.cur.Dist(to)
	if remaining < dashEpsilon {
		d.cur = to
		return
	}
	from := d.cur
	for remaining-d.curLen > dashEpsilon {
		mid := from.Lerp(to, d.curLen/remaining)
		if !d.gap {
			d.begin(from)
			d.out.LineTo(mid.X, mid.Y)
		}
		remaining -= d.curLen
		from = mid
		d.next()
	}
	d.curLen -= remaining
	if !d.gap {
		d.begin(from)
		d.out.LineTo(to.X, to.Y)
	}
	if d.curLen < dashEpsilon {
		d.next()
	}
	d.cur = to
}

func (d *dasher) cubicTo(b geom.Bezier) {
	remaining := b.Length()
	if remaining < dashEpsilon {
		d.cur = b.End
		return
	}
	for remaining-d.curLen > dashEpsilon {
		left, right := b.SplitAtLength(d.curLen)
		if !d.gap {
			d.begin(left.Start)
			d.out.CubicTo(left.Ctrl1.X, left.Ctrl1.Y, left.Ctrl2.X, left.Ctrl2.Y, left.End.X, left.End.Y)
		}
		remaining -= d.curLen
		b = right
		d.next()
	}
	d.curLen -= remaining
	if !d.gap {
		d.begin(b.Start)
		d.out.CubicTo(b.Ctrl1.X, b.Ctrl1.Y, b.Ctrl2.X, b.Ctrl2.Y, b.End.X, b.End.Y)
	}
	if d.curLen < dashEpsilon {
		d.next()
	}
	d.cur = b.End
}

func (d *dasher) close() {
	d.lineTo(d.start)
	// A dash that was still on when the contour came back to its start
	// continues into the first dash.
	endsOn := !d.move && !d.gap
	if d.headOn && endsOn && d.tailCmd > d.headCmd {
		d.merge()
	}
	d.move = true
}

// merge moves the last dash in front of the first one, dropping the first
// dash's MoveTo so the two form one run through the start point.
func (d *dasher) merge() {
	cmds, pts := d.out.Cmds, d.out.Pts
	headEnd := d.headCmd + 1
	for headEnd < len(cmds) && cmds[headEnd] != geom.MoveTo {
		headEnd++
	}
	pi := func(ci int) int {
		n := 0
		for _, c := range cmds[:ci] {
			n += c.Points()
		}
		return n
	}
	hp, hpEnd, tp := pi(d.headCmd), pi(headEnd), pi(d.tailCmd)

	var nc []geom.Command
	var np []geom.Point
	nc = append(nc, cmds[:d.headCmd]...)
	np = append(np, pts[:hp]...)
	nc = append(nc, cmds[d.tailCmd:]...)
	np = append(np, pts[tp:]...)
	nc = append(nc, cmds[d.headCmd+1:headEnd]...)
	np = append(np, pts[hp+1:hpEnd]...)
	nc = append(nc, cmds[headEnd:d.tailCmd]...)
	np = append(np, pts[hpEnd:tp]...)
	d.out.Cmds, d.out.Pts = nc, np
}
