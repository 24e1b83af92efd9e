// Package lottie evaluates the static-shape subset of the Lottie format:
// shape, solid and null layers with parenting, groups, rectangles,
// ellipses and free paths, solid and gradient fills and strokes, trim
// paths, keyframed transforms and markers.
package lottie

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/chewxy/math32"

	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/outline"
	"github.com/gogpu/tvg/internal/stroke"
	"github.com/gogpu/tvg/internal/sw"
	"github.com/gogpu/tvg/internal/vector"
)

var errComposition = errors.New("lottie: invalid composition")

// maxParentDepth bounds layer parent chains, which may be cyclic in
// malformed files.
const maxParentDepth = 32

// Animation is a parsed composition. It is immutable and safe for
// concurrent use.
type Animation struct {
	comp    composition
	byIndex map[int]*layer
}

var _ vector.Animation = (*Animation)(nil)

// Parse decodes a Lottie JSON document.
func Parse(data []byte) (*Animation, error) {
	a := &Animation{}
	if err := json.Unmarshal(data, &a.comp); err != nil {
		return nil, fmt.Errorf("lottie: %w", err)
	}
	c := &a.comp
	if c.FrameRate <= 0 || c.OutPoint <= c.InPoint || c.W <= 0 || c.H <= 0 {
		return nil, fmt.Errorf("%w: fr=%v ip=%v op=%v size=%vx%v", errComposition, c.FrameRate, c.InPoint, c.OutPoint, c.W, c.H)
	}
	a.byIndex = make(map[int]*layer, len(c.Layers))
	for i := range c.Layers {
		if l := &c.Layers[i]; l.Index != nil {
			a.byIndex[*l.Index] = l
		}
	}
	return a, nil
}

// TotalFrame returns the number of frames between the in and out points.
func (a *Animation) TotalFrame() float32 { return a.comp.OutPoint - a.comp.InPoint }

// FrameRate returns the playback rate in frames per second.
func (a *Animation) FrameRate() float32 { return a.comp.FrameRate }

// Size returns the composition size.
func (a *Animation) Size() (w, h float32) { return a.comp.W, a.comp.H }

// Markers returns the named segments, in frames from the first frame.
func (a *Animation) Markers() []vector.Marker {
	out := make([]vector.Marker, 0, len(a.comp.Markers))
	for _, m := range a.comp.Markers {
		begin := max(m.Time-a.comp.InPoint, 0)
		out = append(out, vector.Marker{Name: m.Comment, Begin: begin, End: begin + m.Duration})
	}
	return out
}

// Frame builds the scene at frame no, counted from the first frame.
func (a *Animation) Frame(no float32) *vector.Node {
	f := a.comp.InPoint + no
	root := vector.NewGroup()
	root.ID = "lottie"

	// layers are listed top first
	for i := len(a.comp.Layers) - 1; i >= 0; i-- {
		l := &a.comp.Layers[i]
		if l.Hidden || f < l.InPoint || f >= l.OutPoint {
			continue
		}
		var n *vector.Node
		switch l.Type {
		case layerShape:
			n = vector.NewGroup()
			n.Children, _ = contents(l.Shapes, localFrame(l, f))
		case layerSolid:
			n = solid(l)
		default:
			continue
		}
		if n == nil {
			continue
		}
		n.ID = l.Name
		n.Transform = a.world(l, f, 0)
		n.Opacity = opacity(&l.Transform.Opacity, localFrame(l, f))
		root.Children = append(root.Children, n)
	}
	return root
}

func localFrame(l *layer, f float32) float32 {
	f -= l.StartTime
	if l.Stretch > 0 && l.Stretch != 1 {
		f /= l.Stretch
	}
	return f
}

func (a *Animation) world(l *layer, f float32, depth int) geom.Matrix {
	m := matrix(&l.Transform, localFrame(l, f))
	if l.Parent == nil || depth >= maxParentDepth {
		return m
	}
	p, ok := a.byIndex[*l.Parent]
	if !ok || p == l {
		return m
	}
	return a.world(p, f, depth+1).Mul(m)
}

// matrix composes position, rotation, skew, scale and anchor.
func matrix(t *transform, f float32) geom.Matrix {
	anchor := t.Anchor.vec2(f, [2]float32{})
	pos := t.Position.vec2(f)
	scale := t.Scale.vec2(f, [2]float32{100, 100})

	m := geom.Translation(pos[0], pos[1]).Mul(geom.Rotation(t.Rotation.scalar(f, 0)))
	if sk := t.Skew.scalar(f, 0); sk != 0 {
		axis := t.SkewAxis.scalar(f, 0)
		shear := geom.Matrix{E11: 1, E12: math32.Tan(geom.Deg2Rad(-sk)), E22: 1, E33: 1}
		m = m.Mul(geom.Rotation(axis)).Mul(shear).Mul(geom.Rotation(-axis))
	}
	return m.Mul(geom.Scaling(scale[0]/100, scale[1]/100)).Mul(geom.Translation(-anchor[0], -anchor[1]))
}

func opacity(p *prop, f float32) uint8 {
	return unit(p.scalar(f, 100) / 100)
}

func unit(v float32) uint8 {
	return uint8(geom.Clamp(v, 0, 1)*255 + 0.5)
}

func solid(l *layer) *vector.Node {
	hex := strings.TrimPrefix(l.SolidColor, "#")
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil || l.SolidW <= 0 || l.SolidH <= 0 {
		return nil
	}
	var p geom.Path
	p.AppendRect(0, 0, l.SolidW, l.SolidH, 0, 0, true)
	s := vector.NewShape(&p)
	s.Fill = &vector.Paint{Color: [4]uint8{r, g, b, 255}}
	n := vector.NewGroup()
	n.Children = []*vector.Node{s}
	return n
}

// contents converts the items of one group. It returns the drawable
// children in paint order and the group's geometry, which styles of the
// enclosing groups paint too.
func contents(items []shape, f float32) ([]*vector.Node, geom.Path) {
	geo := make([]geom.Path, len(items))
	groups := make([]*vector.Node, len(items))
	trimAt := -1
	for i := range items {
		it := &items[i]
		if it.Hidden {
			continue
		}
		switch it.Type {
		case "rc":
			c, sz := it.Position.vec2(f, [2]float32{}), it.Size.vec2(f, [2]float32{})
			if sz[0] > 0 && sz[1] > 0 {
				r := it.Roundness.scalar(f, 0)
				geo[i].AppendRect(c[0]-sz[0]/2, c[1]-sz[1]/2, sz[0], sz[1], r, r, true)
			}
		case "el":
			c, sz := it.Position.vec2(f, [2]float32{}), it.Size.vec2(f, [2]float32{})
			if sz[0] > 0 && sz[1] > 0 {
				geo[i].AppendCircle(c[0], c[1], sz[0]/2, sz[1]/2, true)
			}
		case "sh":
			appendVertices(&geo[i], it.Path.at(f), it.Path.closed)
		case "gr":
			g := vector.NewGroup()
			var inner geom.Path
			g.Children, inner = contents(it.Items, f)
			for j := range it.Items {
				if tr := &it.Items[j]; tr.Type == "tr" {
					g.Transform = matrix(&tr.Transform, f)
					g.Opacity = opacity(&tr.Transform.Opacity, f)
				}
			}
			groups[i] = g
			geo[i] = inner.Transform(g.Transform)
		case "tm":
			if trimAt < 0 {
				trimAt = i
			}
		}
	}

	var children []*vector.Node
	// items are listed top first
	for i := len(items) - 1; i >= 0; i-- {
		it := &items[i]
		if it.Hidden {
			continue
		}
		if groups[i] != nil {
			children = append(children, groups[i])
			continue
		}
		if !isStyle(it.Type) {
			continue
		}
		var path geom.Path
		for j := range i {
			path.Append(geo[j].Cmds, geo[j].Pts)
		}
		if path.Empty() {
			continue
		}
		n := vector.NewShape(&path)
		style(n, it, f)
		if trimAt >= 0 && trimAt < i {
			n.Trim = trim(&items[trimAt], f)
		}
		children = append(children, n)
	}

	var all geom.Path
	for i := range geo {
		all.Append(geo[i].Cmds, geo[i].Pts)
	}
	return children, all
}

func isStyle(ty string) bool {
	return ty == "fl" || ty == "st" || ty == "gf" || ty == "gs"
}

// appendVertices builds a path from flattened vertices with relative
// tangents.
func appendVertices(p *geom.Path, v []float32, closed bool) {
	n := len(v) / 6
	if n == 0 {
		return
	}
	seg := func(a, b int) {
		va, vb := v[6*a:6*a+6], v[6*b:6*b+6]
		if va[4] == 0 && va[5] == 0 && vb[2] == 0 && vb[3] == 0 {
			p.LineTo(vb[0], vb[1])
			return
		}
		p.CubicTo(va[0]+va[4], va[1]+va[5], vb[0]+vb[2], vb[1]+vb[3], vb[0], vb[1])
	}
	p.MoveTo(v[0], v[1])
	for k := 1; k < n; k++ {
		seg(k-1, k)
	}
	if closed {
		seg(n-1, 0)
		p.Close()
	}
}

func color(p *prop, f float32, alpha uint8) [4]uint8 {
	c := p.at(f)
	var out [4]uint8
	for i := range min(len(c), 3) {
		out[i] = unit(c[i])
	}
	out[3] = alpha
	return out
}

func style(n *vector.Node, it *shape, f float32) {
	alpha := opacity(&it.Opacity, f)
	var pt vector.Paint
	if it.Type == "gf" || it.Type == "gs" {
		pt.Gradient = gradient(it, f, alpha)
	} else {
		pt.Color = color(&it.Color, f, alpha)
	}

	if it.Type == "fl" || it.Type == "gf" {
		n.Fill = &pt
		n.FillRule = outline.NonZero
		if it.FillRule == 2 {
			n.FillRule = outline.EvenOdd
		}
		return
	}

	s := &vector.Stroke{Paint: pt, Width: it.Width.scalar(f, 1), MiterLimit: it.Miter}
	if s.MiterLimit == 0 {
		s.MiterLimit = 4
	}
	switch it.Cap {
	case 2:
		s.Cap = stroke.CapRound
	case 3:
		s.Cap = stroke.CapSquare
	}
	switch it.Join {
	case 2:
		s.Join = stroke.JoinRound
	case 3:
		s.Join = stroke.JoinBevel
	}
	for _, d := range it.Dashes {
		v := d.Value.scalar(f, 0)
		if d.Name == "o" {
			s.DashOffset = v
			continue
		}
		s.Dash = append(s.Dash, v)
	}
	n.Stroke = s
}

func gradient(it *shape, f float32, alpha uint8) *vector.Gradient {
	g := &vector.Gradient{Transform: geom.Identity(), Spread: sw.Pad}
	start, end := it.Position.vec2(f, [2]float32{}), it.End.vec2(f, [2]float32{})

	vals := it.Gradient.Stops.at(f)
	n := it.Gradient.Count
	if n <= 0 || len(vals) < 4*n {
		n = len(vals) / 4
	}
	g.Stops = make([]vector.Stop, n)
	for i := range g.Stops {
		c := vals[4*i : 4*i+4]
		a := float32(1)
		if tail := vals[4*n:]; len(tail) >= 2*n {
			a = tail[2*i+1]
		}
		g.Stops[i] = vector.Stop{
			Offset: c[0],
			Color:  [4]uint8{unit(c[1]), unit(c[2]), unit(c[3]), unit(a * float32(alpha) / 255)},
		}
	}

	if it.GradientType == 2 {
		g.Kind = vector.Radial
		dx, dy := end[0]-start[0], end[1]-start[1]
		g.CX, g.CY, g.R = start[0], start[1], math32.Hypot(dx, dy)
		h := geom.Clamp(it.Highlight.scalar(f, 0)/100, -0.99, 0.99)
		ang := math32.Atan2(dy, dx) + geom.Deg2Rad(it.Angle.scalar(f, 0))
		g.FX, g.FY = g.CX+h*g.R*math32.Cos(ang), g.CY+h*g.R*math32.Sin(ang)
		return g
	}
	g.Kind = vector.Linear
	g.X1, g.Y1, g.X2, g.Y2 = start[0], start[1], end[0], end[1]
	return g
}

func trim(it *shape, f float32) *vector.Trim {
	off := it.TrimOffset.scalar(f, 0) / 360
	return &vector.Trim{
		Begin:        it.TrimStart.scalar(f, 0)/100 + off,
		End:          it.TrimEnd.scalar(f, 100)/100 + off,
		Simultaneous: it.TrimMode != 2,
	}
}
