// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tess

import (
	"math"

	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/outline"
)

// segment is a directed boundary piece with the covered area on its right.
type segment struct{ from, to handle }

// Boundary returns the outline of the area p covers under rule. The result
// has no crossing edges, every contour is closed, and it fills the same
// area under NonZero. ErrStalled leaves the outline empty.
func Boundary(p *geom.Path, rule outline.FillRule) (geom.Path, error) {
	var out geom.Path
	m, err := build(p)
	if err != nil {
		return out, err
	}
	m.sweep(nil)

	// Inner edges have the same fill state on both sides and are dropped.
	// The left of a horizontal edge is the side below it.
	var segs []segment
	for i := range m.edges {
		e := &m.edges[i]
		if e.dead {
			continue
		}
		l, r := filled(rule, e.windLeft), filled(rule, e.windLeft+e.winding)
		switch {
		case r && !l:
			segs = append(segs, segment{e.bottom, e.top})
		case l && !r:
			segs = append(segs, segment{e.top, e.bottom})
		}
	}
	m.walkLoops(&out, segs)
	return out, nil
}

// walkLoops chains the segments into closed contours. Every vertex has as
// many segments leaving it as arriving. Where several leave one vertex the
// walk takes the sharpest right turn, which keeps loops that touch at a
// vertex apart.
func (m *mesh) walkLoops(out *geom.Path, segs []segment) {
	from := make(map[handle][]int, len(segs))
	for i, s := range segs {
		from[s.from] = append(from[s.from], i)
	}
	used := make([]bool, len(segs))
	var loop []point
	for i := range segs {
		if used[i] {
			continue
		}
		loop = loop[:0]
		start, cur := segs[i].from, i
		for {
			used[cur] = true
			loop = append(loop, m.pos(segs[cur].from))
			end := segs[cur].to
			if end == start {
				break
			}
			next := m.turn(segs[cur], from[end], used, segs)
			if next < 0 {
				break
			}
			cur = next
		}

		loop = dropCollinear(loop)
		if len(loop) < 3 {
			continue
		}
		p := loop[0].toGeom()
		out.MoveTo(p.X, p.Y)
		for _, v := range loop[1:] {
			p = v.toGeom()
			out.LineTo(p.X, p.Y)
		}
		out.Close()
	}
}

// turn picks the unused segment among cands that turns furthest right
// after in.
func (m *mesh) turn(in segment, cands []int, used []bool, segs []segment) int {
	a, b := m.pos(in.from), m.pos(in.to)
	dx, dy := b.x-a.x, b.y-a.y
	best, bestAngle := -1, math.Inf(-1)
	for _, j := range cands {
		if used[j] {
			continue
		}
		c := m.pos(segs[j].to)
		ex, ey := c.x-b.x, c.y-b.y
		angle := math.Atan2(dx*ey-dy*ex, dx*ex+dy*ey)
		if angle > bestAngle {
			best, bestAngle = j, angle
		}
	}
	return best
}

// dropCollinear removes points in the middle of a straight run.
func dropCollinear(loop []point) []point {
	n := len(loop)
	out := make([]point, 0, n)
	for i, v := range loop {
		p, q := loop[(i+n-1)%n], loop[(i+1)%n]
		ax, ay := v.x-p.x, v.y-p.y
		bx, by := q.x-v.x, q.y-v.y
		if ax*by-ay*bx == 0 && ax*bx+ay*by > 0 {
			continue
		}
		out = append(out, v)
	}
	return out
}
