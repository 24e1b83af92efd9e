// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tess

import (
	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/outline"
)

// Mesh is an indexed triangle list.
type Mesh struct {
	Points  []geom.Point
	Indices []uint32
}

// Triangles returns the number of triangles in m.
func (m *Mesh) Triangles() int { return len(m.Indices) / 3 }

// Empty reports whether m has no triangles.
func (m *Mesh) Empty() bool { return len(m.Indices) == 0 }

// Reset clears m, keeping capacity.
func (m *Mesh) Reset() {
	m.Points = m.Points[:0]
	m.Indices = m.Indices[:0]
}

type side int

const (
	leftSide side = iota
	rightSide
)

// monotone is a filled region between two chains running down its left and
// right borders. Chains only grow through convex turns, so a fan from the
// first point triangulates the region.
type monotone struct {
	chain [2][]point
}

// Tessellate triangulates the area p covers under rule. Self-intersecting
// paths are resolved first; a path that covers nothing gives an empty mesh.
// ErrStalled leaves the mesh empty.
func Tessellate(p *geom.Path, rule outline.FillRule) (Mesh, error) {
	var out Mesh
	err := TessellateInto(&out, p, rule)
	return out, err
}

// TessellateInto is Tessellate writing into dst, which is reset first.
func TessellateInto(dst *Mesh, p *geom.Path, rule outline.FillRule) error {
	dst.Reset()
	m, err := build(p)
	if err != nil {
		return err
	}
	t := tessellator{m: m, rule: rule}
	m.sweep(t.visit)

	em := emitter{mesh: dst, index: make(map[geom.Point]uint32)}
	for _, i := range t.done {
		em.fan(&t.polys[i])
	}
	return nil
}

type tessellator struct {
	m     *mesh
	rule  outline.FillRule
	polys []monotone
	done  []handle
}

// open starts a polygon at the cut from l to r when winding w is filled.
func (t *tessellator) open(w int32, l, r point) handle {
	if !filled(t.rule, w) {
		return none
	}
	t.polys = append(t.polys, monotone{chain: [2][]point{{l}, {r}}})
	return handle(len(t.polys) - 1)
}

// close ends polygon i at the cut from l to r.
func (t *tessellator) close(i handle, l, r point) {
	if i == none {
		return
	}
	mp := &t.polys[i]
	mp.chain[leftSide] = append(mp.chain[leftSide], l)
	mp.chain[rightSide] = append(mp.chain[rightSide], r)
	t.done = append(t.done, i)
}

// extends reports whether chain s of polygon i turns convexly through v
// towards next.
func (t *tessellator) extends(i handle, s side, v, next point) bool {
	if i == none {
		return false
	}
	c := t.polys[i].chain[s]
	turn := cross(c[len(c)-1], v, next)
	if s == rightSide {
		return turn >= 0
	}
	return turn <= 0
}

// xAt returns the point of e on row y.
func (m *mesh) xAt(e handle, y float64) point {
	t, b := m.pos(m.edges[e].top), m.pos(m.edges[e].bottom)
	switch {
	case t.y == b.y, y >= b.y:
		return b
	case y <= t.y:
		return t
	}
	return point{t.x + (b.x-t.x)*(y-t.y)/(b.y-t.y), y}
}

// visit updates the polygons at v. Polygons between the edges ending at v
// close there. A polygon beside v continues when v is a regular vertex and
// its chain turns convexly; otherwise it closes with a horizontal cut
// through v and a new one opens below the cut.
func (t *tessellator) visit(v, left, right handle, above, below []handle) {
	m := t.m
	vp := m.pos(v)
	var wl int32
	var xl, xr point
	lp, rp := none, none
	if left != none {
		wl = m.edges[left].windLeft + m.edges[left].winding
		xl = m.xAt(left, vp.y)
		lp = m.edges[left].rightPoly
	}
	if right != none {
		xr = m.xAt(right, vp.y)
		rp = m.edges[right].leftPoly
	}

	keepL, keepR := false, false
	if len(above) == 1 && len(below) == 1 {
		next := m.pos(m.edges[below[0]].bottom)
		keepL = t.extends(lp, rightSide, vp, next)
		keepR = t.extends(rp, leftSide, vp, next)
	}

	for _, e := range above[:max(len(above)-1, 0)] {
		t.close(m.edges[e].rightPoly, vp, vp)
	}
	switch {
	case len(above) > 0:
		if keepL {
			t.polys[lp].chain[rightSide] = append(t.polys[lp].chain[rightSide], vp)
		} else {
			t.close(lp, xl, vp)
		}
		if keepR {
			t.polys[rp].chain[leftSide] = append(t.polys[rp].chain[leftSide], vp)
		} else {
			t.close(rp, vp, xr)
		}
	case len(below) > 0:
		t.close(lp, xl, xr)
	}

	if len(below) == 0 {
		if len(above) > 0 {
			t.link(left, right, t.open(wl, xl, xr))
		}
		return
	}
	first, last := below[0], below[len(below)-1]
	pl := lp
	if !keepL {
		pl = t.open(wl, xl, vp)
	}
	t.link(left, first, pl)
	for i, e := range below[:len(below)-1] {
		ed := &m.edges[e]
		t.link(e, below[i+1], t.open(ed.windLeft+ed.winding, vp, vp))
	}
	pr := rp
	if !keepR {
		pr = t.open(m.edges[last].windLeft+m.edges[last].winding, vp, xr)
	}
	t.link(last, right, pr)
}

// link records polygon i as lying between edges l and r.
func (t *tessellator) link(l, r, i handle) {
	if l != none {
		t.m.edges[l].rightPoly = i
	}
	if r != none {
		t.m.edges[r].leftPoly = i
	}
}

type emitter struct {
	mesh  *Mesh
	index map[geom.Point]uint32
	pts   []point
}

func (em *emitter) point(p point) uint32 {
	g := p.toGeom()
	if i, ok := em.index[g]; ok {
		return i
	}
	i := uint32(len(em.mesh.Points))
	em.mesh.Points = append(em.mesh.Points, g)
	em.index[g] = i
	return i
}

// fan emits mp as a triangle fan from the top of its right chain.
func (em *emitter) fan(mp *monotone) {
	pts := em.pts[:0]
	add := func(p point) {
		if len(pts) == 0 || pts[len(pts)-1] != p {
			pts = append(pts, p)
		}
	}
	for _, p := range mp.chain[rightSide] {
		add(p)
	}
	l := mp.chain[leftSide]
	for i := len(l) - 1; i >= 0; i-- {
		add(l[i])
	}
	for len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	for i := 1; i+1 < len(pts); i++ {
		a, b, c := pts[0], pts[i], pts[i+1]
		if cross(a, b, c) == 0 {
			continue
		}
		em.mesh.Indices = append(em.mesh.Indices, em.point(a), em.point(b), em.point(c))
	}
	em.pts = pts
}
