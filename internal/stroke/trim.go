package stroke

import (
	"github.com/gogpu/tvg/internal/geom"
)

const trimEpsilon = 1e-4

type piece struct {
	seg geom.Segment
	len float32
}

type subpath struct {
	pieces []piece
	closed bool
	length float32
}

func split(p *geom.Path) []subpath {
	var subs []subpath
	var cur *subpath
	p.Walk(func(s geom.Segment) {
		if s.Cmd == geom.MoveTo {
			subs = append(subs, subpath{})
			cur = &subs[len(subs)-1]
			return
		}
		if cur == nil {
			subs = append(subs, subpath{})
			cur = &subs[len(subs)-1]
		}
		var l float32
		switch s.Cmd {
		case geom.LineTo, geom.Close:
			l = s.Pts[0].Dist(s.Pts[1])
			if s.Cmd == geom.Close {
				cur.closed = true
				s.Cmd = geom.LineTo
			}
		case geom.CubicTo:
			l = geom.Bezier{Start: s.Pts[0], Ctrl1: s.Pts[1], Ctrl2: s.Pts[2], End: s.Pts[3]}.Length()
		}
		cur.pieces = append(cur.pieces, piece{seg: s, len: l})
		cur.length += l
	})
	return subs
}

// normalizeTrim maps begin and end onto the unit interval the way angles
// wrap. The returned pair may have begin > end, which selects the wrapping
// range [begin, 1] + [0, end].
func normalizeTrim(begin, end float32) (float32, float32) {
	loop := true
	if begin > 1 && end > 1 {
		loop = false
	}
	if begin < 0 && end < 0 {
		loop = false
	}
	if begin >= 0 && begin <= 1 && end >= 0 && end <= 1 {
		loop = false
	}
	if begin > 1 {
		begin--
	}
	if begin < 0 {
		begin++
	}
	if end > 1 {
		end--
	}
	if end < 0 {
		end++
	}
	if (loop && begin < end) || (!loop && begin > end) {
		begin, end = end, begin
	}
	return begin, end
}

// Trim keeps the part of p between the fractions begin and end of its
// length. simultaneous trims every sub-path on its own; otherwise the
// sub-paths are measured as one concatenated run. It reports false when
// nothing remains.
func Trim(p *geom.Path, begin, end float32, simultaneous bool) (geom.Path, bool) {
	var out geom.Path
	if len(p.Pts) < 2 || geom.Zero(begin-end) {
		return out, false
	}
	begin, end = normalizeTrim(begin, end)

	subs := split(p)
	if simultaneous {
		for _, s := range subs {
			trimRun([]subpath{s}, begin, end, s.closed, &out)
		}
	} else {
		trimRun(subs, begin, end, false, &out)
	}
	return out, len(out.Pts) >= 2
}

func trimRun(subs []subpath, begin, end float32, connect bool, out *geom.Path) {
	var total float32
	for _, s := range subs {
		total += s.length
	}
	if total <= 0 {
		return
	}
	from, to := begin*total, end*total
	if begin >= end {
		extract(subs, from, total, false, out)
		extract(subs, 0, to, connect, out)
		return
	}
	extract(subs, from, to, false, out)
}

// extract appends the parts of subs lying in [from, to] of the cumulative
// length. With connect the first part continues the previous run instead of
// starting a new sub-path.
func extract(subs []subpath, from, to float32, connect bool, out *geom.Path) {
	if to-from < trimEpsilon {
		return
	}
	started := connect
	var at float32
	for _, s := range subs {
		for _, pc := range s.pieces {
			lo, hi := at, at+pc.len
			at = hi
			if hi <= from+trimEpsilon || lo >= to-trimEpsilon {
				continue
			}
			t0 := max(from, lo) - lo
			t1 := min(to, hi) - lo
			emitPiece(pc, t0, t1, !started, out)
			started = true
		}
		// a new sub-path never continues the previous one
		started = false
	}
}

func emitPiece(pc piece, t0, t1 float32, move bool, out *geom.Path) {
	s := pc.seg
	switch s.Cmd {
	case geom.LineTo:
		a := geom.SplitLineAt(s.Pts[0], s.Pts[1], t0)
		b := geom.SplitLineAt(s.Pts[0], s.Pts[1], t1)
		if move {
			out.MoveTo(a.X, a.Y)
		}
		out.LineTo(b.X, b.Y)
	case geom.CubicTo:
		bz := geom.Bezier{Start: s.Pts[0], Ctrl1: s.Pts[1], Ctrl2: s.Pts[2], End: s.Pts[3]}
		if t1 < pc.len {
			bz, _ = bz.SplitAtLength(t1)
		}
		if t0 > 0 {
			_, bz = bz.SplitAtLength(t0)
		}
		if move {
			out.MoveTo(bz.Start.X, bz.Start.Y)
		}
		out.CubicTo(bz.Ctrl1.X, bz.Ctrl1.Y, bz.Ctrl2.X, bz.Ctrl2.Y, bz.End.X, bz.End.Y)
	}
}
