package svg

import (
	"strings"

	"github.com/chewxy/math32"

	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/sw"
	"github.com/gogpu/tvg/internal/vector"
)

// gradient is a gradient element as written. Attributes and stops missing
// here are inherited through href when the paint is resolved.
type gradient struct {
	id     string
	radial bool
	attrs  map[string]string
	stops  []vector.Stop
}

func parseGradient(name string, attrs []attr) (*gradient, error) {
	g := &gradient{radial: name == "radialGradient", attrs: make(map[string]string, len(attrs))}
	for _, a := range attrs {
		switch a.key {
		case "id":
			g.id = a.val
		case "href", "xlink:href":
			g.attrs["href"] = strings.TrimPrefix(a.val, "#")
		case "gradientTransform":
			if _, err := parseTransform(a.val); err != nil {
				return nil, err
			}
			g.attrs[a.key] = a.val
		default:
			g.attrs[a.key] = a.val
		}
	}
	return g, nil
}

func parseStop(attrs []attr) vector.Stop {
	st := vector.Stop{Color: [4]uint8{0, 0, 0, 255}}
	opacity := float32(1)
	apply := func(k, v string) {
		switch k {
		case "offset":
			if o, err := parseLength(v, 1); err == nil {
				st.Offset = geom.Clamp(o, 0, 1)
			}
		case "stop-color":
			if c, ok, err := parseColor(v); err == nil && ok {
				st.Color[0], st.Color[1], st.Color[2] = c[0], c[1], c[2]
			}
		case "stop-opacity":
			if o, err := parseOpacity(v); err == nil {
				opacity = o
			}
		}
	}
	for _, a := range attrs {
		if a.key == "style" {
			for decl := range strings.SplitSeq(a.val, ";") {
				if k, v, ok := strings.Cut(decl, ":"); ok {
					apply(strings.TrimSpace(k), strings.TrimSpace(v))
				}
			}
			continue
		}
		apply(a.key, a.val)
	}
	st.Color[3] = alpha(opacity)
	return st
}

// lookup returns attribute key of g or of the gradients it references.
func (p *parser) lookup(g *gradient, key string) string {
	for range 8 {
		if v, ok := g.attrs[key]; ok {
			return v
		}
		next, ok := p.grads[g.attrs["href"]]
		if !ok || next == g {
			break
		}
		g = next
	}
	return ""
}

func (p *parser) stopsOf(g *gradient) []vector.Stop {
	for range 8 {
		if len(g.stops) > 0 {
			return g.stops
		}
		next, ok := p.grads[g.attrs["href"]]
		if !ok || next == g {
			break
		}
		g = next
	}
	return nil
}

// gradient builds the paint server referenced by url for node n. It
// returns nil when the reference is missing or cannot paint.
func (p *parser) gradient(n *vector.Node, url string, opacity float32) *vector.Gradient {
	g, ok := p.grads[url]
	if !ok {
		return nil
	}
	stops := p.stopsOf(g)
	if len(stops) == 0 {
		return nil
	}

	out := &vector.Gradient{Transform: geom.Identity()}
	out.Stops = make([]vector.Stop, len(stops))
	var last float32
	for i, s := range stops {
		// offsets never decrease
		s.Offset = max(s.Offset, last)
		last = s.Offset
		s.Color[3] = uint8(float32(s.Color[3])*geom.Clamp(opacity, 0, 1) + 0.5)
		out.Stops[i] = s
	}
	switch p.lookup(g, "spreadMethod") {
	case "reflect":
		out.Spread = sw.Reflect
	case "repeat":
		out.Spread = sw.Repeat
	default:
		out.Spread = sw.Pad
	}

	userSpace := p.lookup(g, "gradientUnits") == "userSpaceOnUse"
	rw, rh := float32(1), float32(1)
	if userSpace {
		rw, rh = p.view[2], p.view[3]
	}
	rd := math32.Sqrt((rw*rw + rh*rh) / 2)
	coord := func(key, def string, ref float32) float32 {
		s := p.lookup(g, key)
		if s == "" {
			s = def
		}
		v, err := parseLength(s, ref)
		if err != nil {
			v, _ = parseLength(def, ref)
		}
		return v
	}

	if g.radial {
		out.Kind = vector.Radial
		out.CX, out.CY, out.R = coord("cx", "50%", rw), coord("cy", "50%", rh), coord("r", "50%", rd)
		out.FX, out.FY = out.CX, out.CY
		if p.lookup(g, "fx") != "" {
			out.FX = coord("fx", "50%", rw)
		}
		if p.lookup(g, "fy") != "" {
			out.FY = coord("fy", "50%", rh)
		}
		out.FR = coord("fr", "0", rd)
	} else {
		out.Kind = vector.Linear
		out.X1, out.Y1 = coord("x1", "0", rw), coord("y1", "0", rh)
		out.X2, out.Y2 = coord("x2", "100%", rw), coord("y2", "0", rh)
	}

	if t := p.lookup(g, "gradientTransform"); t != "" {
		out.Transform, _ = parseTransform(t)
	}
	if !userSpace {
		if n.Path == nil {
			return nil
		}
		bb := n.Path.Bounds()
		if bb.Empty() {
			return nil
		}
		box := geom.Translation(bb.Min.X, bb.Min.Y).Mul(geom.Scaling(bb.Width(), bb.Height()))
		out.Transform = box.Mul(out.Transform)
	}
	return out
}
