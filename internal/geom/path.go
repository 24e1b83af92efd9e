package geom

import "github.com/chewxy/math32"

// Kappa is the cubic control distance for a quarter circle of radius 1.
const Kappa = 0.552284

// Command is a path drawing command.
type Command uint8

// Path commands. Each consumes a fixed number of points: Close 0,
// MoveTo 1, LineTo 1, CubicTo 3.
const (
	Close Command = iota
	MoveTo
	LineTo
	CubicTo
)

// Points returns the number of points cmd consumes.
func (c Command) Points() int {
	switch c {
	case MoveTo, LineTo:
		return 1
	case CubicTo:
		return 3
	}
	return 0
}

// Path is a command list with its point stream.
type Path struct {
	Cmds []Command
	Pts  []Point
}

// Empty reports whether p has no commands.
func (p *Path) Empty() bool { return len(p.Cmds) == 0 }

// Reset clears the path, keeping capacity.
func (p *Path) Reset() {
	p.Cmds = p.Cmds[:0]
	p.Pts = p.Pts[:0]
}

// Clone returns a deep copy.
func (p *Path) Clone() Path {
	return Path{
		Cmds: append([]Command(nil), p.Cmds...),
		Pts:  append([]Point(nil), p.Pts...),
	}
}

// MoveTo starts a new sub-path.
func (p *Path) MoveTo(x, y float32) {
	p.Cmds = append(p.Cmds, MoveTo)
	p.Pts = append(p.Pts, Point{x, y})
}

// LineTo adds a line segment.
func (p *Path) LineTo(x, y float32) {
	p.Cmds = append(p.Cmds, LineTo)
	p.Pts = append(p.Pts, Point{x, y})
}

// CubicTo adds a cubic Bézier segment.
func (p *Path) CubicTo(cx1, cy1, cx2, cy2, x, y float32) {
	p.Cmds = append(p.Cmds, CubicTo)
	p.Pts = append(p.Pts, Point{cx1, cy1}, Point{cx2, cy2}, Point{x, y})
}

// Close closes the current sub-path. Repeated closes collapse into one.
func (p *Path) Close() {
	if n := len(p.Cmds); n > 0 && p.Cmds[n-1] != Close {
		p.Cmds = append(p.Cmds, Close)
	}
}

// Valid reports whether the point count matches the commands.
func Valid(cmds []Command, pts []Point) bool {
	n := 0
	for _, c := range cmds {
		if c > CubicTo {
			return false
		}
		n += c.Points()
	}
	return n == len(pts)
}

// Append adds raw commands and points. It reports false when the point count
// does not match the commands.
func (p *Path) Append(cmds []Command, pts []Point) bool {
	if len(cmds) == 0 || !Valid(cmds, pts) {
		return false
	}
	p.Cmds = append(p.Cmds, cmds...)
	p.Pts = append(p.Pts, pts...)
	return true
}

// AppendRect adds a (rounded) rectangle starting at (x+rx, y). Radii larger
// than half the size are clamped, which turns the rect into an ellipse.
func (p *Path) AppendRect(x, y, w, h, rx, ry float32, cw bool) {
	rx = Clamp(rx, 0, w*0.5)
	ry = Clamp(ry, 0, h*0.5)

	if Zero(rx) || Zero(ry) {
		p.MoveTo(x, y)
		if cw {
			p.LineTo(x+w, y)
			p.LineTo(x+w, y+h)
			p.LineTo(x, y+h)
		} else {
			p.LineTo(x, y+h)
			p.LineTo(x+w, y+h)
			p.LineTo(x+w, y)
		}
		p.Close()
		return
	}

	hx, hy := rx*Kappa, ry*Kappa
	fullW := Zero(w*0.5 - rx)
	fullH := Zero(h*0.5 - ry)

	p.MoveTo(x+rx, y)
	if cw {
		if !fullW {
			p.LineTo(x+w-rx, y)
		}
		p.CubicTo(x+w-rx+hx, y, x+w, y+ry-hy, x+w, y+ry)
		if !fullH {
			p.LineTo(x+w, y+h-ry)
		}
		p.CubicTo(x+w, y+h-ry+hy, x+w-rx+hx, y+h, x+w-rx, y+h)
		if !fullW {
			p.LineTo(x+rx, y+h)
		}
		p.CubicTo(x+rx-hx, y+h, x, y+h-ry+hy, x, y+h-ry)
		if !fullH {
			p.LineTo(x, y+ry)
		}
		p.CubicTo(x, y+ry-hy, x+rx-hx, y, x+rx, y)
	} else {
		p.CubicTo(x+rx-hx, y, x, y+ry-hy, x, y+ry)
		if !fullH {
			p.LineTo(x, y+h-ry)
		}
		p.CubicTo(x, y+h-ry+hy, x+rx-hx, y+h, x+rx, y+h)
		if !fullW {
			p.LineTo(x+w-rx, y+h)
		}
		p.CubicTo(x+w-rx+hx, y+h, x+w, y+h-ry+hy, x+w, y+h-ry)
		if !fullH {
			p.LineTo(x+w, y+ry)
		}
		p.CubicTo(x+w, y+ry-hy, x+w-rx+hx, y, x+w-rx, y)
		if !fullW {
			p.LineTo(x+rx, y)
		}
	}
	p.Close()
}

// AppendCircle adds an ellipse starting at its top point.
func (p *Path) AppendCircle(cx, cy, rx, ry float32, cw bool) {
	kx, ky := rx*Kappa, ry*Kappa
	p.MoveTo(cx, cy-ry)
	if cw {
		p.CubicTo(cx+kx, cy-ry, cx+rx, cy-ky, cx+rx, cy)
		p.CubicTo(cx+rx, cy+ky, cx+kx, cy+ry, cx, cy+ry)
		p.CubicTo(cx-kx, cy+ry, cx-rx, cy+ky, cx-rx, cy)
		p.CubicTo(cx-rx, cy-ky, cx-kx, cy-ry, cx, cy-ry)
	} else {
		p.CubicTo(cx-kx, cy-ry, cx-rx, cy-ky, cx-rx, cy)
		p.CubicTo(cx-rx, cy+ky, cx-kx, cy+ry, cx, cy+ry)
		p.CubicTo(cx+kx, cy+ry, cx+rx, cy+ky, cx+rx, cy)
		p.CubicTo(cx+rx, cy-ky, cx+kx, cy-ry, cx, cy-ry)
	}
	p.Close()
}

// AppendArc adds a circular arc of radius r from startDeg sweeping sweepDeg.
// A pie arc starts and ends at the center. Sweeps of a full turn or more
// produce a full circle.
func (p *Path) AppendArc(cx, cy, r, startDeg, sweepDeg float32, pie bool) {
	if math32.Abs(sweepDeg) >= 360 {
		p.AppendCircle(cx, cy, r, r, sweepDeg > 0)
		return
	}
	start := Deg2Rad(startDeg)
	sweep := Deg2Rad(sweepDeg)

	n := int(math32.Ceil(math32.Abs(sweep) / (math32.Pi / 2)))
	if n == 0 {
		n = 1
	}
	step := sweep / float32(n)

	s, c := math32.Sincos(start)
	first := Point{cx + r*c, cy + r*s}
	if pie {
		p.MoveTo(cx, cy)
		p.LineTo(first.X, first.Y)
	} else {
		p.MoveTo(first.X, first.Y)
	}

	a := start
	for i := 0; i < n; i++ {
		c1, c2, end := ArcSegment(Point{cx, cy}, r, a, a+step)
		p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, end.X, end.Y)
		a += step
	}
	if pie {
		p.Close()
	}
}

// ArcSegment returns the control points and end point of a cubic
// approximating the arc from a0 to a1 (radians, at most a quarter turn).
func ArcSegment(center Point, r, a0, a1 float32) (c1, c2, end Point) {
	da := a1 - a0
	t := math32.Tan(da / 4)
	k := 4.0 / 3.0 * t
	s0, c0 := math32.Sincos(a0)
	s1, co1 := math32.Sincos(a1)
	start := Point{center.X + r*c0, center.Y + r*s0}
	end = Point{center.X + r*co1, center.Y + r*s1}
	c1 = Point{start.X - k*r*s0, start.Y + k*r*c0}
	c2 = Point{end.X + k*r*s1, end.Y - k*r*co1}
	return c1, c2, end
}

// Transform returns a copy of p with every point mapped through m.
func (p *Path) Transform(m Matrix) Path {
	out := Path{Cmds: append([]Command(nil), p.Cmds...), Pts: make([]Point, len(p.Pts))}
	for i, pt := range p.Pts {
		out.Pts[i] = m.Apply(pt)
	}
	return out
}

// Bounds returns the box covering every point, control points included.
func (p *Path) Bounds() BBox {
	b := EmptyBBox()
	for _, pt := range p.Pts {
		b = b.Add(pt)
	}
	return b
}

// Segment is one drawable piece of a path as reported by Walk.
type Segment struct {
	Cmd Command
	// Pts holds the start point followed by the command's points.
	Pts [4]Point
}

// Walk calls fn for every command with resolved start points. Close reports
// the segment from the current point back to the sub-path start in Pts[0:2].
func (p *Path) Walk(fn func(seg Segment)) {
	var start, cur Point
	pi := 0
	for _, c := range p.Cmds {
		var s Segment
		s.Cmd = c
		s.Pts[0] = cur
		switch c {
		case MoveTo:
			start = p.Pts[pi]
			cur = start
			s.Pts[0] = cur
			pi++
		case LineTo:
			s.Pts[1] = p.Pts[pi]
			cur = s.Pts[1]
			pi++
		case CubicTo:
			s.Pts[1], s.Pts[2], s.Pts[3] = p.Pts[pi], p.Pts[pi+1], p.Pts[pi+2]
			cur = s.Pts[3]
			pi += 3
		case Close:
			s.Pts[1] = start
			cur = start
		}
		fn(s)
	}
}
