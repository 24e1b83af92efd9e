// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tess

import "errors"

// ErrStalled reports a path whose edges kept crossing after every split
// the step limit allowed.
var ErrStalled = errors.New("tess: simplification did not converge")

// simplify sweeps the vertex list and splits edges until no two edges
// cross. At each vertex the enclosing edges and the edges leaving the
// vertex are tested against their neighbours; a split rewinds the sweep to
// the earliest vertex whose active list it changes. More than limit splits
// give ErrStalled.
func (m *mesh) simplify(limit int) error {
	steps := 0
	for v := m.head; v != none; {
		if !m.connected(v) {
			v = m.verts[v].next
			continue
		}
		for {
			var hit bool
			left, right := m.enclosing(v)
			if hit, v = m.splitEnclosing(v, left, right); !hit {
				if hit, v = m.splitOverlap(v); !hit {
					hit, v = m.checkNeighbours(v, left, right)
				}
			}
			if !hit {
				break
			}
			if steps++; steps > limit {
				m.clearActive()
				return ErrStalled
			}
		}
		left, _ := m.enclosing(v)
		m.advance(v, left)
		v = m.verts[v].next
	}
	m.clearActive()
	m.mergeEdges()
	return nil
}

// inside reports whether v lies strictly between the ends of e in sweep
// order.
func (m *mesh) inside(e, v handle) bool {
	p := m.pos(v)
	return m.pos(m.edges[e].top).before(p) && p.before(m.pos(m.edges[e].bottom))
}

// splitEnclosing splits an enclosing edge that v lies on or beyond.
func (m *mesh) splitEnclosing(v, left, right handle) (bool, handle) {
	p := m.pos(v)
	for _, e := range [2]handle{left, right} {
		if e == none || !m.inside(e, v) {
			continue
		}
		if e == left && m.leftOf(e, p) || e == right && m.rightOf(e, p) {
			continue
		}
		cur := m.rewind(v, m.edges[e].top)
		m.split(e, v)
		return true, cur
	}
	return false, v
}

// splitOverlap splits the longer of two collinear edges sharing an end at
// v where the shorter one ends.
func (m *mesh) splitOverlap(v handle) (bool, handle) {
	vx := &m.verts[v]
	for e := vx.firstBelow; e != none && m.edges[e].nextBelow != none; e = m.edges[e].nextBelow {
		f := m.edges[e].nextBelow
		if fb := m.pos(m.edges[f].bottom); m.dist(e, fb) == 0 {
			long, short := f, e
			if fb.before(m.pos(m.edges[e].bottom)) {
				long, short = e, f
			}
			return m.split(long, m.edges[short].bottom), v
		}
	}
	for e := vx.firstAbove; e != none && m.edges[e].nextAbove != none; e = m.edges[e].nextAbove {
		f := m.edges[e].nextAbove
		if ft := m.pos(m.edges[f].top); m.dist(e, ft) == 0 {
			long, short := f, e
			if m.pos(m.edges[e].top).before(ft) {
				long, short = e, f
			}
			cur := m.rewind(v, m.edges[long].top)
			return m.split(long, m.edges[short].top), cur
		}
	}
	return false, v
}

func (m *mesh) checkNeighbours(v, left, right handle) (bool, handle) {
	below := m.verts[v].firstBelow
	if below == none {
		return m.checkPair(left, right, v)
	}
	for e := below; e != none; e = m.edges[e].nextBelow {
		if hit, cur := m.checkPair(left, e, v); hit {
			return true, cur
		}
		if hit, cur := m.checkPair(e, right, v); hit {
			return true, cur
		}
	}
	return false, v
}

// checkPair splits the neighbouring edges l and r where they cross, or
// where an end of one lies on the wrong side of the other.
func (m *mesh) checkPair(l, r, cur handle) (bool, handle) {
	if l == none || r == none {
		return false, cur
	}
	p, ok := m.intersect(l, r)
	if !ok {
		return m.pairEnds(l, r, cur)
	}
	v := m.insertVertex(p, cur)
	cur = m.rewind(cur, m.earliest(m.edges[l].top, m.edges[r].top, v))
	sl := m.split(l, v)
	sr := m.split(r, v)
	return sl || sr, cur
}

// intersect returns where l and r cross, snapped to the vertex grid.
// Edges sharing an end never cross.
func (m *mesh) intersect(l, r handle) (point, bool) {
	el, er := &m.edges[l], &m.edges[r]
	if el.top == er.top || el.bottom == er.bottom || el.top == er.bottom || el.bottom == er.top {
		return point{}, false
	}
	lt, lb := m.pos(el.top), m.pos(el.bottom)
	rt, rb := m.pos(er.top), m.pos(er.bottom)
	if min(lt.x, lb.x) > max(rt.x, rb.x) || max(lt.x, lb.x) < min(rt.x, rb.x) ||
		lt.y > rb.y || lb.y < rt.y {
		return point{}, false
	}
	denom := el.a*er.b - el.b*er.a
	if denom == 0 {
		return point{}, false
	}
	dx, dy := rt.x-lt.x, rt.y-lt.y
	s := dy*er.b + dx*er.a
	t := dy*el.b + dx*el.a
	if denom > 0 {
		if s < 0 || s > denom || t < 0 || t > denom {
			return point{}, false
		}
	} else if s > 0 || s < denom || t > 0 || t < denom {
		return point{}, false
	}
	s /= denom
	return snap(lt.x-s*el.b, lt.y+s*el.a), true
}

// pairEnds handles neighbours that touch without crossing: an end of one
// edge on or past the other splits the other there.
func (m *mesh) pairEnds(l, r, cur handle) (bool, handle) {
	el, er := &m.edges[l], &m.edges[r]
	if el.top == er.top || el.bottom == er.bottom {
		return false, cur
	}
	split, at := none, none
	if m.pos(el.top).before(m.pos(er.top)) {
		if !m.leftOf(l, m.pos(er.top)) {
			split, at = l, er.top
		}
	} else if !m.rightOf(r, m.pos(el.top)) {
		split, at = r, el.top
	}
	if m.pos(er.bottom).before(m.pos(el.bottom)) {
		if !m.leftOf(l, m.pos(er.bottom)) {
			split, at = l, er.bottom
		}
	} else if !m.rightOf(r, m.pos(el.bottom)) {
		split, at = r, el.bottom
	}
	if split == none || !m.inside(split, at) {
		return false, cur
	}
	cur = m.rewind(cur, m.edges[split].top)
	return m.split(split, at), cur
}

// split cuts e at v. A v outside e's span extends the edge and adds the
// reversed remainder, keeping the winding of every face.
func (m *mesh) split(e, v handle) bool {
	ed := &m.edges[e]
	if v == ed.top || v == ed.bottom {
		return false
	}
	p := m.pos(v)
	var top, bottom handle
	w := ed.winding
	switch {
	case p.before(m.pos(ed.top)):
		top, bottom, w = v, ed.top, -w
		m.setTop(e, v)
	case m.pos(ed.bottom).before(p):
		top, bottom, w = ed.bottom, v, -w
		m.setBottom(e, v)
	default:
		top, bottom = v, ed.bottom
		m.setBottom(e, v)
	}
	n := m.newEdge(top, bottom, w)
	m.dedupe(e)
	m.dedupe(n)
	return true
}

// dedupe merges e into another edge joining the same vertices.
func (m *mesh) dedupe(e handle) {
	ed := &m.edges[e]
	if ed.dead {
		return
	}
	for f := m.verts[ed.top].firstBelow; f != none; f = m.edges[f].nextBelow {
		if f == e || m.edges[f].bottom != ed.bottom {
			continue
		}
		m.edges[f].winding += ed.winding
		m.kill(e)
		if m.edges[f].winding == 0 {
			m.kill(f)
		}
		return
	}
}
