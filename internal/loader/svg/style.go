package svg

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"golang.org/x/image/colornames"

	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/outline"
	"github.com/gogpu/tvg/internal/stroke"
	"github.com/gogpu/tvg/internal/vector"
)

type paintKind uint8

const (
	paintNone paintKind = iota
	paintColor
	paintURL
)

type paint struct {
	kind  paintKind
	color [3]uint8
	url   string
}

// style holds the inherited presentation properties.
type style struct {
	fill, stroke  paint
	fillOpacity   float32
	strokeOpacity float32
	fillRule      outline.FillRule
	width         float32
	cap           stroke.Cap
	join          stroke.Join
	miter         float32
	dash          []float32
	dashOffset    float32
	hidden        bool
}

func defaultStyle() style {
	return style{
		fill:          paint{kind: paintColor},
		fillOpacity:   1,
		strokeOpacity: 1,
		width:         1,
		miter:         4,
	}
}

func (s style) inherit() style {
	s.dash = append([]float32(nil), s.dash...)
	return s
}

// set applies one presentation attribute. Unknown keys are ignored;
// opacity is not inherited and goes straight to n.
func (s *style) set(key, val string, n *vector.Node) error {
	if val == "inherit" {
		return nil
	}
	var err error
	switch key {
	case "fill":
		s.fill, err = parsePaint(val)
	case "stroke":
		s.stroke, err = parsePaint(val)
	case "fill-opacity":
		s.fillOpacity, err = parseOpacity(val)
	case "stroke-opacity":
		s.strokeOpacity, err = parseOpacity(val)
	case "opacity":
		var o float32
		o, err = parseOpacity(val)
		n.Opacity = uint8(o*255 + 0.5)
	case "fill-rule":
		s.fillRule = outline.NonZero
		if val == "evenodd" {
			s.fillRule = outline.EvenOdd
		}
	case "stroke-width":
		s.width, err = parseLength(val, 0)
	case "stroke-linecap":
		switch val {
		case "round":
			s.cap = stroke.CapRound
		case "square":
			s.cap = stroke.CapSquare
		default:
			s.cap = stroke.CapButt
		}
	case "stroke-linejoin":
		switch val {
		case "round":
			s.join = stroke.JoinRound
		case "bevel":
			s.join = stroke.JoinBevel
		default:
			s.join = stroke.JoinMiter
		}
	case "stroke-miterlimit":
		s.miter, err = parseLength(val, 0)
	case "stroke-dasharray":
		if val == "none" {
			s.dash = nil
			break
		}
		s.dash, err = parseNumbers(val, s.dash[:0])
	case "stroke-dashoffset":
		s.dashOffset, err = parseLength(val, 0)
	case "display":
		if val == "none" {
			s.hidden = true
		}
	case "visibility":
		s.hidden = val == "hidden" || val == "collapse"
	}
	if err != nil {
		return fmt.Errorf("svg: %s=%q: %w", key, val, err)
	}
	return nil
}

func alpha(o float32) uint8 {
	return uint8(geom.Clamp(o, 0, 1)*255 + 0.5)
}

// pendingPaint is a url() reference resolved once every gradient is known.
type pendingPaint struct {
	node    *vector.Node
	paint   *vector.Paint
	url     string
	opacity float32
	stroke  bool
}

func (p *parser) applyPaint(n *vector.Node, st *style) {
	n.FillRule = st.fillRule
	if pt := p.resolve(n, st.fill, st.fillOpacity, false); pt != nil {
		n.Fill = pt
	}
	if st.width <= 0 {
		return
	}
	if pt := p.resolve(n, st.stroke, st.strokeOpacity, true); pt != nil {
		n.Stroke = &vector.Stroke{
			Paint:      *pt,
			Width:      st.width,
			Cap:        st.cap,
			Join:       st.join,
			MiterLimit: st.miter,
			Dash:       st.dash,
			DashOffset: st.dashOffset,
		}
	}
}

func (p *parser) resolve(n *vector.Node, pt paint, opacity float32, isStroke bool) *vector.Paint {
	switch pt.kind {
	case paintColor:
		c := pt.color
		return &vector.Paint{Color: [4]uint8{c[0], c[1], c[2], alpha(opacity)}}
	case paintURL:
		out := &vector.Paint{}
		p.pending = append(p.pending, pendingPaint{node: n, paint: out, url: pt.url, opacity: opacity, stroke: isStroke})
		return out
	}
	return nil
}

// resolvePaints binds url() paints to their gradients. A reference to a
// missing gradient paints nothing.
func (p *parser) resolvePaints() {
	for _, pp := range p.pending {
		g := p.gradient(pp.node, pp.url, pp.opacity)
		if g != nil {
			pp.paint.Gradient = g
			continue
		}
		if pp.stroke {
			pp.node.Stroke = nil
		} else {
			pp.node.Fill = nil
		}
	}
	p.pending = nil
}

func parsePaint(s string) (paint, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "url("); ok {
		id, _, _ := strings.Cut(rest, ")")
		id = strings.Trim(strings.TrimSpace(id), `'"`)
		return paint{kind: paintURL, url: strings.TrimPrefix(id, "#")}, nil
	}
	c, ok, err := parseColor(s)
	if err != nil || !ok {
		return paint{}, err
	}
	return paint{kind: paintColor, color: c}, nil
}

// parseColor parses a CSS color. ok is false for none and transparent.
func parseColor(s string) (c [3]uint8, ok bool, err error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "none", "transparent", "":
		return c, false, nil
	case "currentcolor":
		return c, true, nil
	}
	if hex, found := strings.CutPrefix(s, "#"); found {
		var v [6]uint8
		switch len(hex) {
		case 3:
			for i := range 3 {
				d, e := hexDigit(hex[i])
				if e != nil {
					return c, false, e
				}
				v[2*i], v[2*i+1] = d, d
			}
		case 6:
			for i := range 6 {
				d, e := hexDigit(hex[i])
				if e != nil {
					return c, false, e
				}
				v[i] = d
			}
		default:
			return c, false, fmt.Errorf("bad hex color %q", s)
		}
		return [3]uint8{v[0]<<4 | v[1], v[2]<<4 | v[3], v[4]<<4 | v[5]}, true, nil
	}
	if args, found := strings.CutPrefix(s, "rgb("); found {
		args = strings.TrimSuffix(args, ")")
		parts := strings.FieldsFunc(args, func(r rune) bool { return r == ',' || r == ' ' })
		if len(parts) != 3 {
			return c, false, fmt.Errorf("%w: %q", errParamCount, s)
		}
		for i, part := range parts {
			v, e := parseLength(part, 255)
			if e != nil {
				return c, false, e
			}
			c[i] = uint8(geom.Clamp(math32.Round(v), 0, 255))
		}
		return c, true, nil
	}
	if named, found := colornames.Map[s]; found {
		return [3]uint8{named.R, named.G, named.B}, true, nil
	}
	return c, false, fmt.Errorf("unknown color %q", s)
}

func hexDigit(b byte) (uint8, error) {
	switch {
	case '0' <= b && b <= '9':
		return b - '0', nil
	case 'a' <= b && b <= 'f':
		return b - 'a' + 10, nil
	}
	return 0, fmt.Errorf("bad hex digit %q", b)
}

func parseOpacity(s string) (float32, error) {
	v, err := parseLength(s, 1)
	return geom.Clamp(v, 0, 1), err
}
