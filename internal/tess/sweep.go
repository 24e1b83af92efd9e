// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tess

import "github.com/gogpu/tvg/internal/outline"

func filled(rule outline.FillRule, w int32) bool {
	if rule == outline.EvenOdd {
		return w&1 != 0
	}
	return w != 0
}

// activate inserts e into the active edge list right of prev, or first when
// prev is none.
func (m *mesh) activate(e, prev handle) {
	next := m.first
	if prev != none {
		next = m.edges[prev].right
	}
	ed := &m.edges[e]
	ed.left, ed.right, ed.active = prev, next, true
	if prev != none {
		m.edges[prev].right = e
	} else {
		m.first = e
	}
	if next != none {
		m.edges[next].left = e
	} else {
		m.last = e
	}
}

func (m *mesh) deactivate(e handle) {
	ed := &m.edges[e]
	if !ed.active {
		return
	}
	if ed.left != none {
		m.edges[ed.left].right = ed.right
	} else {
		m.first = ed.right
	}
	if ed.right != none {
		m.edges[ed.right].left = ed.left
	} else {
		m.last = ed.left
	}
	ed.left, ed.right, ed.active = none, none, false
}

func (m *mesh) clearActive() {
	for e := m.first; e != none; {
		next := m.edges[e].right
		m.edges[e].left, m.edges[e].right, m.edges[e].active = none, none, false
		e = next
	}
	m.first, m.last = none, none
}

// enclosing returns the active edges just left and right of v.
func (m *mesh) enclosing(v handle) (left, right handle) {
	vx := &m.verts[v]
	if vx.firstAbove != none {
		return m.edges[vx.firstAbove].left, m.edges[vx.lastAbove].right
	}
	right = none
	for left = m.last; left != none; left = m.edges[left].left {
		if m.leftOf(left, vx.p) {
			break
		}
		right = left
	}
	return left, right
}

// advance moves the sweep past v: the edges ending at v leave the active
// list and the edges leaving v take their place right of left. The winding
// left of each inserted edge is recorded.
func (m *mesh) advance(v, left handle) {
	vx := &m.verts[v]
	for e := vx.firstAbove; e != none; e = m.edges[e].nextAbove {
		m.deactivate(e)
	}
	var w int32
	if left != none {
		w = m.edges[left].windLeft + m.edges[left].winding
	}
	for e := vx.firstBelow; e != none; e = m.edges[e].nextBelow {
		m.activate(e, left)
		m.edges[e].windLeft = w
		w += m.edges[e].winding
		left = e
	}
}

// rewind restores the active list to its state just before the sweep
// reached dst and returns dst. It returns cur when dst is not above cur.
// The list is rebuilt from the top, which is exact whenever the mesh above
// dst is free of crossings.
func (m *mesh) rewind(cur, dst handle) handle {
	if cur == dst || m.pos(cur).before(m.pos(dst)) {
		return cur
	}
	m.clearActive()
	for v := m.head; v != dst; v = m.verts[v].next {
		if m.connected(v) {
			left, _ := m.enclosing(v)
			m.advance(v, left)
		}
	}
	return dst
}

// earliest returns the first of vs in sweep order.
func (m *mesh) earliest(vs ...handle) handle {
	best := vs[0]
	for _, v := range vs[1:] {
		if m.pos(v).before(m.pos(best)) {
			best = v
		}
	}
	return best
}

// sweep walks the simplified mesh top to bottom, recording the winding left
// of every edge. visit, when not nil, runs at each vertex after the active
// list has moved past it, with the enclosing edges and the edges ending and
// leaving there left to right. The slices are reused between calls.
func (m *mesh) sweep(visit func(v, left, right handle, above, below []handle)) {
	var above, below []handle
	for v := m.head; v != none; v = m.verts[v].next {
		if !m.connected(v) {
			continue
		}
		left, right := m.enclosing(v)
		above, below = above[:0], below[:0]
		for e := m.verts[v].firstAbove; e != none; e = m.edges[e].nextAbove {
			above = append(above, e)
		}
		for e := m.verts[v].firstBelow; e != none; e = m.edges[e].nextBelow {
			below = append(below, e)
		}
		m.advance(v, left)
		if visit != nil {
			visit(v, left, right, above, below)
		}
	}
	m.clearActive()
}
