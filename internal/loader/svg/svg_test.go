package svg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/outline"
	"github.com/gogpu/tvg/internal/stroke"
	"github.com/gogpu/tvg/internal/sw"
	"github.com/gogpu/tvg/internal/vector"
)

func parseDoc(t *testing.T, src string) *Doc {
	t.Helper()
	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	require.NotNil(t, doc.Root)
	return doc
}

// shapes collects the shape nodes of n in document order.
func shapes(n *vector.Node) []*vector.Node {
	var out []*vector.Node
	n.Walk(func(c *vector.Node) bool {
		if c.Path != nil {
			out = append(out, c)
		}
		return true
	})
	return out
}

func TestParseBasicShapes(t *testing.T) {
	doc := parseDoc(t, `<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" width="200" height="100">
  <!-- comment -->
  <rect x="10" y="10" width="50" height="30" fill="#f00"/>
  <circle cx="100" cy="50" r="20" fill="blue"/>
  <ellipse cx="150" cy="50" rx="30" ry="10"/>
  <line x1="0" y1="0" x2="200" y2="100" stroke="black"/>
  <polyline points="0,0 10,10 20,0" fill="none" stroke="green"/>
  <polygon points="0 0, 10 10, 20 0"/>
  <path d="M 0 0 L 10 0 L 10 10 Z"/>
</svg>`)

	assert.Equal(t, float32(200), doc.W)
	assert.Equal(t, float32(100), doc.H)

	all := shapes(doc.Root)
	require.Len(t, all, 7)

	rect := all[0]
	assert.Equal(t, []geom.Command{geom.MoveTo, geom.LineTo, geom.LineTo, geom.LineTo, geom.Close}, rect.Path.Cmds)
	require.NotNil(t, rect.Fill)
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, rect.Fill.Color)
	assert.Nil(t, rect.Stroke)

	assert.Equal(t, [4]uint8{0, 0, 255, 255}, all[1].Fill.Color)
	// default fill is opaque black
	assert.Equal(t, [4]uint8{0, 0, 0, 255}, all[2].Fill.Color)

	line := all[3]
	require.NotNil(t, line.Stroke)
	assert.Equal(t, float32(1), line.Stroke.Width)

	poly := all[4]
	assert.Nil(t, poly.Fill)
	assert.Equal(t, geom.LineTo, poly.Path.Cmds[len(poly.Path.Cmds)-1])
	assert.Equal(t, geom.Close, all[5].Path.Cmds[len(all[5].Path.Cmds)-1])
}

func TestParseViewBox(t *testing.T) {
	doc := parseDoc(t, `<svg viewBox="0 0 50 50" width="100" height="200"><rect width="50" height="50"/></svg>`)
	m := doc.Root.Transform
	// uniform scale 2, centered vertically
	p := m.Apply(geom.Pt(50, 50))
	assert.InDelta(t, 100, p.X, 1e-4)
	assert.InDelta(t, 150, p.Y, 1e-4)
	p = m.Apply(geom.Pt(0, 0))
	assert.InDelta(t, 50, p.Y, 1e-4)

	// size defaults to the view box
	doc = parseDoc(t, `<svg viewBox="10 10 30 40"></svg>`)
	assert.Equal(t, float32(30), doc.W)
	assert.Equal(t, float32(40), doc.H)
}

func TestParseStyleInheritance(t *testing.T) {
	doc := parseDoc(t, `<svg width="10" height="10">
  <g fill="red" stroke="#00ff00" stroke-width="3" opacity="0.5" fill-rule="evenodd">
    <rect width="5" height="5" style="fill: rgb(0, 0, 255); fill-opacity: 0.5"/>
    <rect width="5" height="5" stroke-linecap="round" stroke-linejoin="bevel" stroke-dasharray="2 1"/>
    <rect width="5" height="5" fill="none" stroke="none"/>
  </g>
</svg>`)
	all := shapes(doc.Root)
	require.Len(t, all, 3)

	var group *vector.Node
	doc.Root.Walk(func(n *vector.Node) bool {
		if n.Path == nil && n.Opacity != 255 {
			group = n
		}
		return true
	})
	require.NotNil(t, group, "group opacity not applied")
	assert.Equal(t, uint8(128), group.Opacity)

	assert.Equal(t, [4]uint8{0, 0, 255, 128}, all[0].Fill.Color)
	assert.Equal(t, outline.EvenOdd, all[0].FillRule)

	s := all[1].Stroke
	require.NotNil(t, s)
	assert.Equal(t, [4]uint8{0, 255, 0, 255}, s.Color)
	assert.Equal(t, float32(3), s.Width)
	assert.Equal(t, stroke.CapRound, s.Cap)
	assert.Equal(t, stroke.JoinBevel, s.Join)
	assert.Equal(t, []float32{2, 1}, s.Dash)
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, all[1].Fill.Color)

	assert.Nil(t, all[2].Fill)
	assert.Nil(t, all[2].Stroke)
}

func TestParseDefsAndGradients(t *testing.T) {
	doc := parseDoc(t, `<svg width="100" height="100" xmlns:xlink="http://www.w3.org/1999/xlink">
  <rect width="100" height="50" fill="url(#lin)"/>
  <defs>
    <linearGradient id="base">
      <stop offset="0" stop-color="white"/>
      <stop offset="50%" style="stop-color:#000;stop-opacity:0.5"/>
    </linearGradient>
    <linearGradient id="lin" xlink:href="#base" x2="0" y2="1" spreadMethod="reflect"/>
    <radialGradient id="rad" gradientUnits="userSpaceOnUse" cx="50" cy="50" r="25">
      <stop offset="1" stop-color="red"/>
    </radialGradient>
    <rect width="10" height="10"/>
  </defs>
  <circle cx="50" cy="50" r="25" fill="url(#rad)" stroke="url(#missing)"/>
</svg>`)
	all := shapes(doc.Root)
	require.Len(t, all, 2, "defs content must not draw")

	g := all[0].Fill.Gradient
	require.NotNil(t, g)
	assert.Equal(t, vector.Linear, g.Kind)
	assert.Equal(t, sw.Reflect, g.Spread)
	require.Len(t, g.Stops, 2)
	assert.Equal(t, [4]uint8{255, 255, 255, 255}, g.Stops[0].Color)
	assert.Equal(t, [4]uint8{0, 0, 0, 128}, g.Stops[1].Color)
	assert.InDelta(t, 0.5, g.Stops[1].Offset, 1e-6)
	// bounding box units map (0,1) onto the rect's bottom left corner
	end := g.Transform.Apply(geom.Pt(g.X2, g.Y2))
	assert.InDelta(t, 0, end.X, 1e-4)
	assert.InDelta(t, 50, end.Y, 1e-4)

	r := all[1].Fill.Gradient
	require.NotNil(t, r)
	assert.Equal(t, vector.Radial, r.Kind)
	assert.Equal(t, float32(25), r.R)
	assert.Equal(t, r.CX, r.FX)
	assert.True(t, r.Transform.IsIdentity())
	assert.Nil(t, all[1].Stroke, "stroke with a missing gradient paints nothing")
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no root", `<g></g>`},
		{"unbalanced", `<svg><g></svg>`},
		{"bad path", `<svg><path d="M0 0 X 10"/></svg>`},
		{"bad color", `<svg><rect width="1" height="1" fill="#12"/></svg>`},
		{"bad transform", `<svg><g transform="spin(3)"/></svg>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			assert.Error(t, err)
		})
	}
}

// =============================================================================
// Path data
// =============================================================================

func TestParsePath(t *testing.T) {
	tests := []struct {
		name string
		d    string
		cmds []geom.Command
		last geom.Point
	}{
		{"absolute", "M10 10 L 20 10 L20,20 Z", []geom.Command{geom.MoveTo, geom.LineTo, geom.LineTo, geom.Close}, geom.Pt(20, 20)},
		{"relative", "m10 10 h10 v10 h-10z", []geom.Command{geom.MoveTo, geom.LineTo, geom.LineTo, geom.LineTo, geom.Close}, geom.Pt(10, 20)},
		{"implicit lineto", "M0 0 10 0 10 10", []geom.Command{geom.MoveTo, geom.LineTo, geom.LineTo}, geom.Pt(10, 10)},
		{"compact numbers", "M.5.5l-.5-.5", []geom.Command{geom.MoveTo, geom.LineTo}, geom.Pt(0, 0)},
		{"smooth cubic", "M0 0 C0 10 10 10 10 0 S20 -10 20 0", []geom.Command{geom.MoveTo, geom.CubicTo, geom.CubicTo}, geom.Pt(20, 0)},
		{"quadratic", "M0 0 Q5 10 10 0 T20 0", []geom.Command{geom.MoveTo, geom.CubicTo, geom.CubicTo}, geom.Pt(20, 0)},
		{"arc flags packed", "M0 0 a10 10 0 0010 10", []geom.Command{geom.MoveTo, geom.CubicTo}, geom.Pt(10, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p geom.Path
			require.NoError(t, parsePath(tt.d, &p))
			assert.Equal(t, tt.cmds, p.Cmds)
			last := p.Pts[len(p.Pts)-1]
			assert.InDelta(t, tt.last.X, last.X, 1e-4)
			assert.InDelta(t, tt.last.Y, last.Y, 1e-4)
		})
	}
}

func TestParsePathSmoothReflects(t *testing.T) {
	var p geom.Path
	require.NoError(t, parsePath("M0 0 C0 10 10 10 10 0 S20 -10 20 0", &p))
	// first control point of S mirrors (10,10) about (10,0)
	assert.Equal(t, geom.Pt(10, -10), p.Pts[4])
}

func TestParseArcHalfCircle(t *testing.T) {
	var p geom.Path
	require.NoError(t, parsePath("M0 0 A10 10 0 0 1 20 0", &p))
	// a half turn needs two quarter segments bulging to y = -10 in y-down space
	require.Equal(t, []geom.Command{geom.MoveTo, geom.CubicTo, geom.CubicTo}, p.Cmds)
	mid := p.Pts[3]
	assert.InDelta(t, 10, mid.X, 1e-3)
	assert.InDelta(t, -10, mid.Y, 1e-3)
	assert.Equal(t, geom.Pt(20, 0), p.Pts[len(p.Pts)-1])
}

func TestParsePathErrors(t *testing.T) {
	for _, d := range []string{"L 10", "M 0 0 K 1 1", "M0 0 A 1 1 0 2 0 5 5", "10 10"} {
		var p geom.Path
		assert.Error(t, parsePath(d, &p), d)
	}
}

// =============================================================================
// Attribute values
// =============================================================================

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want [3]uint8
		ok   bool
	}{
		{"#fff", [3]uint8{255, 255, 255}, true},
		{"#1A2b3C", [3]uint8{0x1a, 0x2b, 0x3c}, true},
		{"rgb(255, 0, 10)", [3]uint8{255, 0, 10}, true},
		{"rgb(100%,50%,0%)", [3]uint8{255, 128, 0}, true},
		{"orange", [3]uint8{255, 165, 0}, true},
		{"none", [3]uint8{}, false},
	}
	for _, tt := range tests {
		c, ok, err := parseColor(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, c, tt.in)
	}
}

func TestParseLength(t *testing.T) {
	tests := []struct {
		in   string
		ref  float32
		want float32
	}{
		{"12", 0, 12},
		{"12px", 0, 12},
		{"1in", 0, 96},
		{"3pt", 0, 4},
		{"50%", 80, 40},
		{"-1.5e1", 0, -15},
	}
	for _, tt := range tests {
		v, err := parseLength(tt.in, tt.ref)
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, v, 1e-4, tt.in)
	}
	_, err := parseLength("12furlongs", 0)
	assert.Error(t, err)
}

func TestParseTransform(t *testing.T) {
	m, err := parseTransform("translate(10, 20) scale(2)")
	require.NoError(t, err)
	assert.Equal(t, geom.Pt(12, 22), m.Apply(geom.Pt(1, 1)))

	m, err = parseTransform("rotate(90 10 10)")
	require.NoError(t, err)
	p := m.Apply(geom.Pt(20, 10))
	assert.InDelta(t, 10, p.X, 1e-4)
	assert.InDelta(t, 20, p.Y, 1e-4)

	m, err = parseTransform("matrix(1 0 0 1 5 6)")
	require.NoError(t, err)
	assert.Equal(t, geom.Translation(5, 6), m)

	_, err = parseTransform("translate(1, 2, 3)")
	assert.Error(t, err)
}
