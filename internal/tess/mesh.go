// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package tess turns filled paths into triangle meshes for GPU submission
// and extracts the merged boundary of self-overlapping fills.
//
// Both operations share one pipeline. The path is flattened into a mesh of
// vertices and edges kept in arenas and addressed by index. Vertices form a
// list sorted top to bottom, and each vertex keeps the edges ending at it
// and the edges leaving it ordered left to right. A sweep down the vertex
// list tests every edge against its neighbours in the active edge list and
// splits pairs that cross, rewinding the sweep to the earliest vertex a
// split can disturb. Afterwards two edges only meet at a shared vertex, and
// a second sweep accumulates winding numbers from left to right and grows
// monotone polygons between neighbouring edges.
package tess

import (
	"math"
	"slices"

	"github.com/gogpu/tvg/internal/geom"
)

// cubicSegments is the number of lines one cubic flattens to.
const cubicSegments = 16

// vertexGrid is the number of grid cells per pixel vertices snap to.
const vertexGrid = 256

// stepLimit bounds the splits simplify may make on a mesh of the given size.
var stepLimit = func(edges, verts int) int { return 64*(edges+verts) + 1024 }

type point struct{ x, y float64 }

// before orders points top to bottom, then left to right.
func (p point) before(o point) bool {
	return p.y < o.y || p.y == o.y && p.x < o.x
}

func (p point) toGeom() geom.Point {
	return geom.Pt(float32(p.x), float32(p.y))
}

func cross(o, a, b point) float64 {
	return (a.x-o.x)*(b.y-o.y) - (a.y-o.y)*(b.x-o.x)
}

func snap(x, y float64) point {
	return point{math.Round(x*vertexGrid) / vertexGrid, math.Round(y*vertexGrid) / vertexGrid}
}

// handle indexes the vertex and edge arenas.
type handle = int32

const none handle = -1

type vertex struct {
	p          point
	prev, next handle

	// Edges ending here and edges leaving here, left to right.
	firstAbove, lastAbove handle
	firstBelow, lastBelow handle
}

type edge struct {
	top, bottom handle
	// winding is +1 when the path runs from top to bottom and -1 when it
	// runs upwards. Merged edges carry the sum.
	winding int32

	// Line through the edge: a*x + b*y + c is positive right of it.
	a, b, c float64

	prevAbove, nextAbove handle
	prevBelow, nextBelow handle

	// Neighbours in the active edge list.
	left, right handle
	active      bool
	dead        bool

	// windLeft is the winding number just left of the edge.
	windLeft int32
	// Monotone polygons on either side while tessellating.
	leftPoly, rightPoly handle
}

type mesh struct {
	verts []vertex
	edges []edge
	index map[point]handle

	head, tail handle // sorted vertex list
	first, last handle // active edge list
}

func newMesh() *mesh {
	return &mesh{index: make(map[point]handle), head: none, tail: none, first: none, last: none}
}

func (m *mesh) pos(v handle) point { return m.verts[v].p }

// vertex returns the vertex at p, creating it when no vertex sits there.
func (m *mesh) vertex(p point) handle {
	if h, ok := m.index[p]; ok {
		return h
	}
	h := handle(len(m.verts))
	m.verts = append(m.verts, vertex{
		p: p, prev: none, next: none,
		firstAbove: none, lastAbove: none, firstBelow: none, lastBelow: none,
	})
	m.index[p] = h
	return h
}

func (m *mesh) connected(v handle) bool {
	return m.verts[v].firstAbove != none || m.verts[v].firstBelow != none
}

func (m *mesh) setLine(e handle) {
	ed := &m.edges[e]
	t, b := m.pos(ed.top), m.pos(ed.bottom)
	ed.a = b.y - t.y
	ed.b = t.x - b.x
	ed.c = t.y*b.x - t.x*b.y
}

func (m *mesh) dist(e handle, p point) float64 {
	ed := &m.edges[e]
	return ed.a*p.x + ed.b*p.y + ed.c
}

// leftOf reports whether e passes strictly left of p.
func (m *mesh) leftOf(e handle, p point) bool { return m.dist(e, p) > 0 }

// rightOf reports whether e passes strictly right of p.
func (m *mesh) rightOf(e handle, p point) bool { return m.dist(e, p) < 0 }

// newEdge adds an edge from top to bottom and links it into both vertices.
func (m *mesh) newEdge(top, bottom handle, winding int32) handle {
	e := handle(len(m.edges))
	m.edges = append(m.edges, edge{
		top: top, bottom: bottom, winding: winding,
		prevAbove: none, nextAbove: none, prevBelow: none, nextBelow: none,
		left: none, right: none, leftPoly: none, rightPoly: none,
	})
	m.setLine(e)
	m.insertAbove(bottom, e)
	m.insertBelow(top, e)
	return e
}

// addEdge adds the edge the path draws from a to b.
func (m *mesh) addEdge(a, b handle) {
	if a == b {
		return
	}
	w := int32(1)
	if m.pos(b).before(m.pos(a)) {
		a, b, w = b, a, -1
	}
	m.newEdge(a, b, w)
}

func (m *mesh) insertAbove(v, e handle) {
	tp := m.pos(m.edges[e].top)
	prev, next := none, m.verts[v].firstAbove
	for next != none && !m.rightOf(next, tp) {
		prev, next = next, m.edges[next].nextAbove
	}
	ed := &m.edges[e]
	ed.prevAbove, ed.nextAbove = prev, next
	if prev != none {
		m.edges[prev].nextAbove = e
	} else {
		m.verts[v].firstAbove = e
	}
	if next != none {
		m.edges[next].prevAbove = e
	} else {
		m.verts[v].lastAbove = e
	}
}

func (m *mesh) insertBelow(v, e handle) {
	bp := m.pos(m.edges[e].bottom)
	prev, next := none, m.verts[v].firstBelow
	for next != none && !m.rightOf(next, bp) {
		prev, next = next, m.edges[next].nextBelow
	}
	ed := &m.edges[e]
	ed.prevBelow, ed.nextBelow = prev, next
	if prev != none {
		m.edges[prev].nextBelow = e
	} else {
		m.verts[v].firstBelow = e
	}
	if next != none {
		m.edges[next].prevBelow = e
	} else {
		m.verts[v].lastBelow = e
	}
}

func (m *mesh) removeAbove(e handle) {
	ed := &m.edges[e]
	v := &m.verts[ed.bottom]
	if ed.prevAbove != none {
		m.edges[ed.prevAbove].nextAbove = ed.nextAbove
	} else {
		v.firstAbove = ed.nextAbove
	}
	if ed.nextAbove != none {
		m.edges[ed.nextAbove].prevAbove = ed.prevAbove
	} else {
		v.lastAbove = ed.prevAbove
	}
	ed.prevAbove, ed.nextAbove = none, none
}

func (m *mesh) removeBelow(e handle) {
	ed := &m.edges[e]
	v := &m.verts[ed.top]
	if ed.prevBelow != none {
		m.edges[ed.prevBelow].nextBelow = ed.nextBelow
	} else {
		v.firstBelow = ed.nextBelow
	}
	if ed.nextBelow != none {
		m.edges[ed.nextBelow].prevBelow = ed.prevBelow
	} else {
		v.lastBelow = ed.prevBelow
	}
	ed.prevBelow, ed.nextBelow = none, none
}

// kill drops e from the mesh and the active edge list.
func (m *mesh) kill(e handle) {
	m.deactivate(e)
	m.removeAbove(e)
	m.removeBelow(e)
	m.edges[e].dead = true
}

func (m *mesh) setTop(e, v handle) {
	m.removeBelow(e)
	m.edges[e].top = v
	m.setLine(e)
	m.insertBelow(v, e)
}

func (m *mesh) setBottom(e, v handle) {
	m.removeAbove(e)
	m.edges[e].bottom = v
	m.setLine(e)
	m.insertAbove(v, e)
}

// linkVertex puts v between prev and next in the sorted list.
func (m *mesh) linkVertex(v, prev, next handle) {
	m.verts[v].prev, m.verts[v].next = prev, next
	if prev != none {
		m.verts[prev].next = v
	} else {
		m.head = v
	}
	if next != none {
		m.verts[next].prev = v
	} else {
		m.tail = v
	}
}

// insertVertex returns the vertex at p, adding it to the sorted list near
// the vertex hint when it is new.
func (m *mesh) insertVertex(p point, hint handle) handle {
	if h, ok := m.index[p]; ok {
		return h
	}
	v := m.vertex(p)
	prev := hint
	for prev != none && p.before(m.pos(prev)) {
		prev = m.verts[prev].prev
	}
	next := m.head
	if prev != none {
		next = m.verts[prev].next
	}
	for next != none && m.pos(next).before(p) {
		prev, next = next, m.verts[next].next
	}
	m.linkVertex(v, prev, next)
	return v
}

// addPath flattens p into the mesh. Open contours close implicitly.
func (m *mesh) addPath(p *geom.Path) {
	first, prev := none, none
	start := func(pt geom.Point) {
		first = m.vertex(snap(float64(pt.X), float64(pt.Y)))
		prev = first
	}
	lineTo := func(x, y float64) {
		v := m.vertex(snap(x, y))
		if v != prev {
			m.addEdge(prev, v)
			prev = v
		}
	}
	closeContour := func() {
		if prev != none && prev != first {
			m.addEdge(prev, first)
		}
		first, prev = none, none
	}

	p.Walk(func(s geom.Segment) {
		switch s.Cmd {
		case geom.MoveTo:
			closeContour()
			start(s.Pts[0])
		case geom.LineTo:
			if prev == none {
				start(s.Pts[0])
			}
			lineTo(float64(s.Pts[1].X), float64(s.Pts[1].Y))
		case geom.CubicTo:
			if prev == none {
				start(s.Pts[0])
			}
			p0, p1, p2, p3 := s.Pts[0], s.Pts[1], s.Pts[2], s.Pts[3]
			for i := 1; i <= cubicSegments; i++ {
				t := float64(i) / cubicSegments
				u := 1 - t
				b0, b1, b2, b3 := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
				lineTo(
					b0*float64(p0.X)+b1*float64(p1.X)+b2*float64(p2.X)+b3*float64(p3.X),
					b0*float64(p0.Y)+b1*float64(p1.Y)+b2*float64(p2.Y)+b3*float64(p3.Y),
				)
			}
		case geom.Close:
			closeContour()
		}
	})
	closeContour()
}

// sortVertices links every vertex into the sorted list.
func (m *mesh) sortVertices() {
	order := make([]handle, len(m.verts))
	for i := range order {
		order[i] = handle(i)
	}
	slices.SortFunc(order, func(a, b handle) int {
		pa, pb := m.pos(a), m.pos(b)
		switch {
		case pa.before(pb):
			return -1
		case pb.before(pa):
			return 1
		}
		return 0
	})
	prev := none
	for _, v := range order {
		m.linkVertex(v, prev, none)
		prev = v
	}
}

// mergeEdges folds edges joining the same two vertices into one and drops
// edges whose windings cancel.
func (m *mesh) mergeEdges() {
	for v := m.head; v != none; v = m.verts[v].next {
		for e := m.verts[v].firstBelow; e != none; {
			for f := m.edges[e].nextBelow; f != none; {
				next := m.edges[f].nextBelow
				if m.edges[f].bottom == m.edges[e].bottom {
					m.edges[e].winding += m.edges[f].winding
					m.kill(f)
				}
				f = next
			}
			next := m.edges[e].nextBelow
			if m.edges[e].winding == 0 {
				m.kill(e)
			}
			e = next
		}
	}
}

// build flattens and simplifies p.
func build(p *geom.Path) (*mesh, error) {
	m := newMesh()
	if p != nil {
		m.addPath(p)
	}
	m.sortVertices()
	m.mergeEdges()
	if err := m.simplify(stepLimit(len(m.edges), len(m.verts))); err != nil {
		return nil, err
	}
	return m, nil
}
