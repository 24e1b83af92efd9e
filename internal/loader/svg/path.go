package svg

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/tdewolff/parse/v2/strconv"

	"github.com/gogpu/tvg/internal/geom"
)

var cmdArgs = map[byte]int{
	'M': 2, 'L': 2, 'H': 1, 'V': 1, 'C': 6, 'S': 4, 'Q': 4, 'T': 2, 'A': 7, 'Z': 0,
}

// parsePath appends the path data d to p. Quadratic segments and arcs are
// converted to cubics.
func parsePath(d string, p *geom.Path) error {
	b := []byte(d)
	var (
		f       [7]float32
		cur     geom.Point // current point
		start   geom.Point // sub-path start
		ctrl    geom.Point // last control point, for S and T
		prev    byte
		started bool
	)
	i := skipSeparators(b)
	for i < len(b) {
		cmd := prev
		if c := b[i]; !(c >= '0' && c <= '9' || c == '.' || c == '-' || c == '+') {
			cmd = c
			i++
			i += skipSeparators(b[i:])
		} else if prev == 0 || prev == 'Z' || prev == 'z' {
			return fmt.Errorf("%w: number without command at %d", errUnknownCmd, i)
		}
		upper := cmd &^ 0x20
		n, ok := cmdArgs[upper]
		if !ok {
			return fmt.Errorf("%w: %q at %d", errUnknownCmd, cmd, i)
		}
		for j := range n {
			if upper == 'A' && (j == 3 || j == 4) {
				if i >= len(b) || b[i] != '0' && b[i] != '1' {
					return fmt.Errorf("svg: arc flag must be 0 or 1 at %d", i)
				}
				f[j] = float32(b[i] - '0')
				i++
			} else {
				v, m := strconv.ParseFloat(b[i:])
				if m == 0 {
					return fmt.Errorf("%w: %c needs %d numbers at %d", errParamCount, cmd, n, i)
				}
				f[j] = float32(v)
				i += m
			}
			i += skipSeparators(b[i:])
		}

		var rel geom.Point
		if cmd != upper {
			rel = cur
		}
		if upper != 'M' && upper != 'Z' && !started {
			// drawing without a moveto starts at the origin
			p.MoveTo(cur.X, cur.Y)
			start, started = cur, true
		}
		switch upper {
		case 'M':
			cur = geom.Pt(f[0], f[1]).Add(rel)
			p.MoveTo(cur.X, cur.Y)
			start, started = cur, true
			ctrl = cur
			// following pairs are implicit linetos
			if cmd == 'm' {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
		case 'Z':
			if started {
				p.Close()
			}
			cur, ctrl = start, start
			started = false
		case 'L':
			cur = geom.Pt(f[0], f[1]).Add(rel)
			p.LineTo(cur.X, cur.Y)
			ctrl = cur
		case 'H':
			cur.X = f[0] + rel.X
			p.LineTo(cur.X, cur.Y)
			ctrl = cur
		case 'V':
			cur.Y = f[0] + rel.Y
			p.LineTo(cur.X, cur.Y)
			ctrl = cur
		case 'C':
			c1, c2, end := geom.Pt(f[0], f[1]).Add(rel), geom.Pt(f[2], f[3]).Add(rel), geom.Pt(f[4], f[5]).Add(rel)
			p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, end.X, end.Y)
			cur, ctrl = end, c2
		case 'S':
			c1 := cur
			if u := prev &^ 0x20; u == 'C' || u == 'S' {
				c1 = cur.Mul(2).Sub(ctrl)
			}
			c2, end := geom.Pt(f[0], f[1]).Add(rel), geom.Pt(f[2], f[3]).Add(rel)
			p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, end.X, end.Y)
			cur, ctrl = end, c2
		case 'Q':
			q, end := geom.Pt(f[0], f[1]).Add(rel), geom.Pt(f[2], f[3]).Add(rel)
			quadTo(p, cur, q, end)
			cur, ctrl = end, q
		case 'T':
			q := cur
			if u := prev &^ 0x20; u == 'Q' || u == 'T' {
				q = cur.Mul(2).Sub(ctrl)
			}
			end := geom.Pt(f[0], f[1]).Add(rel)
			quadTo(p, cur, q, end)
			cur, ctrl = end, q
		case 'A':
			end := geom.Pt(f[5], f[6]).Add(rel)
			arcTo(p, cur, f[0], f[1], f[2], f[3] == 1, f[4] == 1, end)
			cur, ctrl = end, end
		}
		prev = cmd
	}
	return nil
}

func quadTo(p *geom.Path, from, q, to geom.Point) {
	c1 := from.Add(q.Sub(from).Mul(2.0 / 3))
	c2 := to.Add(q.Sub(to).Mul(2.0 / 3))
	p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, to.X, to.Y)
}

// arcTo appends an elliptical arc in endpoint form (SVG 1.1 F.6.5).
func arcTo(p *geom.Path, from geom.Point, rx, ry, phiDeg float32, large, sweep bool, to geom.Point) {
	if from.Equal(to) {
		return
	}
	rx, ry = math32.Abs(rx), math32.Abs(ry)
	if rx == 0 || ry == 0 {
		p.LineTo(to.X, to.Y)
		return
	}
	sinPhi, cosPhi := math32.Sincos(geom.Deg2Rad(phiDeg))

	dx, dy := (from.X-to.X)/2, (from.Y-to.Y)/2
	x1 := cosPhi*dx + sinPhi*dy
	y1 := -sinPhi*dx + cosPhi*dy

	// scale radii up when they cannot reach
	if l := x1*x1/(rx*rx) + y1*y1/(ry*ry); l > 1 {
		s := math32.Sqrt(l)
		rx, ry = rx*s, ry*s
	}

	num := rx*rx*ry*ry - rx*rx*y1*y1 - ry*ry*x1*x1
	den := rx*rx*y1*y1 + ry*ry*x1*x1
	k := math32.Sqrt(max(num, 0) / den)
	if large == sweep {
		k = -k
	}
	cx1, cy1 := k*rx*y1/ry, -k*ry*x1/rx

	theta := func(ux, uy, vx, vy float32) float32 {
		return math32.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
	}
	a0 := theta(1, 0, (x1-cx1)/rx, (y1-cy1)/ry)
	da := theta((x1-cx1)/rx, (y1-cy1)/ry, (-x1-cx1)/rx, (-y1-cy1)/ry)
	switch {
	case !sweep && da > 0:
		da -= 2 * math32.Pi
	case sweep && da < 0:
		da += 2 * math32.Pi
	}

	// unit circle segments mapped through the ellipse transform
	m := geom.Translation(cosPhi*cx1-sinPhi*cy1+(from.X+to.X)/2, sinPhi*cx1+cosPhi*cy1+(from.Y+to.Y)/2).
		Mul(geom.Rotation(phiDeg)).
		Mul(geom.Scaling(rx, ry))
	n := max(int(math32.Ceil(math32.Abs(da)/(math32.Pi/2)-1e-3)), 1)
	step := da / float32(n)
	a := a0
	for i := range n {
		c1, c2, end := geom.ArcSegment(geom.Point{}, 1, a, a+step)
		c1, c2 = m.Apply(c1), m.Apply(c2)
		end = m.Apply(end)
		if i == n-1 {
			end = to
		}
		p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, end.X, end.Y)
		a += step
	}
}
