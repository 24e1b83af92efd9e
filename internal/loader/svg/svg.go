// Package svg parses the static subset of SVG 1.1 into a vector.Node tree:
// the svg, g, a and defs containers, the basic shapes, path data, solid and
// gradient paints, and the presentation attributes that style them.
package svg

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chewxy/math32"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/xml"

	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/vector"
)

var (
	errNoRoot      = errors.New("svg: no svg element")
	errParamCount  = errors.New("svg: wrong number of parameters")
	errUnknownCmd  = errors.New("svg: unknown path command")
	errUnbalanced  = errors.New("svg: unbalanced element")
	defaultViewBox = [4]float32{0, 0, 100, 100}
)

// Doc is a parsed SVG document.
type Doc struct {
	// W and H are the document size in pixels.
	W, H float32
	// Root maps the view box onto [0, W] x [0, H].
	Root *vector.Node
}

type attr struct{ key, val string }

// frame is one open element.
type frame struct {
	name  string
	group *vector.Node // nil for elements that add no paint
	style style
	grad  *gradient
	skip  bool
}

type parser struct {
	stack   []frame
	grads   map[string]*gradient
	pending []pendingPaint
	view    [4]float32
	root    *vector.Node
	doc     Doc
}

// Parse parses an SVG document.
func Parse(data []byte) (*Doc, error) {
	p := &parser{grads: make(map[string]*gradient)}
	l := xml.NewLexer(parse.NewInputBytes(data))

	var (
		name  string
		attrs []attr
	)
	for {
		tt, _ := l.Next()
		switch tt {
		case xml.ErrorToken:
			if err := l.Err(); err != io.EOF {
				return nil, fmt.Errorf("svg: %w", err)
			}
			if p.root == nil {
				return nil, errNoRoot
			}
			p.resolvePaints()
			return &p.doc, nil
		case xml.StartTagToken:
			name = localName(l.Text())
			attrs = attrs[:0]
		case xml.AttributeToken:
			attrs = append(attrs, attr{localName(l.Text()), unquote(l.AttrVal())})
		case xml.StartTagCloseToken:
			if err := p.open(name, attrs); err != nil {
				return nil, err
			}
		case xml.StartTagCloseVoidToken:
			if err := p.open(name, attrs); err != nil {
				return nil, err
			}
			p.close()
		case xml.EndTagToken:
			if len(p.stack) == 0 || p.top().name != localName(l.Text()) {
				return nil, fmt.Errorf("%w: </%s>", errUnbalanced, l.Text())
			}
			p.close()
		}
	}
}

func localName(b []byte) string {
	s := string(b)
	if _, after, ok := strings.Cut(s, ":"); ok && !strings.HasPrefix(s, "xlink") {
		return after
	}
	return s
}

func unquote(b []byte) string {
	if len(b) >= 2 && (b[0] == '"' || b[0] == '\'') && b[len(b)-1] == b[0] {
		b = b[1 : len(b)-1]
	}
	return string(b)
}

func (p *parser) top() *frame { return &p.stack[len(p.stack)-1] }

// parent returns the nearest open group node.
func (p *parser) parent() *vector.Node {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if g := p.stack[i].group; g != nil {
			return g
		}
	}
	return nil
}

func (p *parser) close() {
	p.stack = p.stack[:len(p.stack)-1]
}

func (p *parser) open(name string, attrs []attr) error {
	f := frame{name: name, style: defaultStyle()}
	if len(p.stack) > 0 {
		parent := p.top()
		f.style = parent.style.inherit()
		f.skip = parent.skip
		if parent.grad != nil && name == "stop" {
			parent.grad.stops = append(parent.grad.stops, parseStop(attrs))
		}
	}
	p.stack = append(p.stack, f)
	cur := p.top()

	if name == "svg" && p.root == nil {
		return p.openRoot(cur, attrs)
	}
	if cur.skip {
		return nil
	}
	if p.root == nil {
		cur.skip = true
		return nil
	}

	switch name {
	case "defs":
		// gradients inside still register, shapes never draw
		cur.style.hidden = true
		return nil
	case "title", "desc", "metadata", "style", "clipPath", "mask", "symbol", "pattern", "marker", "text":
		cur.skip = true
		return nil
	case "linearGradient", "radialGradient":
		g, err := parseGradient(name, attrs)
		if err != nil {
			return err
		}
		if g.id != "" {
			p.grads[g.id] = g
		}
		cur.grad = g
		return nil
	}
	if cur.style.hidden {
		return nil
	}

	node, err := p.element(name, attrs, &cur.style)
	if err != nil || node == nil {
		return err
	}
	p.parent().Children = append(p.parent().Children, node)
	if node.Path == nil {
		cur.group = node
	}
	return nil
}

func (p *parser) openRoot(cur *frame, attrs []attr) error {
	var w, h float32
	var haveW, haveH, haveView bool
	for _, a := range attrs {
		var err error
		switch a.key {
		case "width":
			w, err = parseLength(a.val, 0)
			haveW = err == nil && !strings.HasSuffix(a.val, "%")
		case "height":
			h, err = parseLength(a.val, 0)
			haveH = err == nil && !strings.HasSuffix(a.val, "%")
		case "viewBox":
			var nums []float32
			nums, err = parseNumbers(a.val, nil)
			if err == nil && len(nums) != 4 {
				err = fmt.Errorf("%w: viewBox %q", errParamCount, a.val)
			}
			if err == nil && nums[2] > 0 && nums[3] > 0 {
				copy(p.view[:], nums)
				haveView = true
			}
		}
		if err != nil {
			return err
		}
	}
	switch {
	case !haveView && haveW && haveH:
		p.view = [4]float32{0, 0, w, h}
	case !haveView:
		p.view = defaultViewBox
	}
	if !haveW {
		w = p.view[2]
	}
	if !haveH {
		h = p.view[3]
	}

	p.root = vector.NewGroup()
	p.root.ID = "svg"
	// xMidYMid meet
	s := min(w/p.view[2], h/p.view[3])
	tx := (w-p.view[2]*s)/2 - p.view[0]*s
	ty := (h-p.view[3]*s)/2 - p.view[1]*s
	p.root.Transform = geom.Translation(tx, ty).Mul(geom.Scaling(s, s))
	p.doc = Doc{W: w, H: h, Root: p.root}

	content := vector.NewGroup()
	if err := p.applyCommon(content, attrs, &cur.style); err != nil {
		return err
	}
	p.root.Children = append(p.root.Children, content)
	cur.group = content
	return nil
}

// element builds the node for a drawable element or group. It returns nil
// for elements that draw nothing.
func (p *parser) element(name string, attrs []attr, st *style) (*vector.Node, error) {
	var (
		path geom.Path
		err  error
	)
	get := func(key string) string {
		for _, a := range attrs {
			if a.key == key {
				return a.val
			}
		}
		return ""
	}
	num := func(key string, ref float32) float32 {
		if err != nil {
			return 0
		}
		var v float32
		if s := get(key); s != "" {
			v, err = parseLength(s, ref)
		}
		return v
	}
	vw, vh := p.view[2], p.view[3]
	diag := math32.Sqrt((vw*vw + vh*vh) / 2)

	switch name {
	case "g", "a", "switch":
		n := vector.NewGroup()
		return n, p.applyCommon(n, attrs, st)
	case "rect":
		x, y, w, h := num("x", vw), num("y", vh), num("width", vw), num("height", vh)
		rx, ry := num("rx", vw), num("ry", vh)
		if get("rx") == "" {
			rx = ry
		}
		if get("ry") == "" {
			ry = rx
		}
		if err != nil || w <= 0 || h <= 0 {
			return nil, err
		}
		path.AppendRect(x, y, w, h, min(rx, w/2), min(ry, h/2), true)
	case "circle":
		cx, cy, r := num("cx", vw), num("cy", vh), num("r", diag)
		if err != nil || r <= 0 {
			return nil, err
		}
		path.AppendCircle(cx, cy, r, r, true)
	case "ellipse":
		cx, cy, rx, ry := num("cx", vw), num("cy", vh), num("rx", vw), num("ry", vh)
		if err != nil || rx <= 0 || ry <= 0 {
			return nil, err
		}
		path.AppendCircle(cx, cy, rx, ry, true)
	case "line":
		x1, y1, x2, y2 := num("x1", vw), num("y1", vh), num("x2", vw), num("y2", vh)
		if err != nil {
			return nil, err
		}
		path.MoveTo(x1, y1)
		path.LineTo(x2, y2)
	case "polyline", "polygon":
		var pts []float32
		pts, err = parseNumbers(get("points"), nil)
		if err != nil {
			return nil, err
		}
		// an odd trailing coordinate is ignored
		if len(pts) < 4 {
			return nil, nil
		}
		path.MoveTo(pts[0], pts[1])
		for i := 2; i+1 < len(pts); i += 2 {
			path.LineTo(pts[i], pts[i+1])
		}
		if name == "polygon" {
			path.Close()
		}
	case "path":
		if err = parsePath(get("d"), &path); err != nil {
			return nil, err
		}
		if path.Empty() {
			return nil, nil
		}
	default:
		return nil, nil
	}

	n := vector.NewShape(&path)
	if err := p.applyCommon(n, attrs, st); err != nil {
		return nil, err
	}
	p.applyPaint(n, st)
	return n, nil
}

// applyCommon reads the attributes every element shares and folds the
// presentation attributes into st. A style attribute overrides them.
func (p *parser) applyCommon(n *vector.Node, attrs []attr, st *style) error {
	var css string
	for _, a := range attrs {
		switch a.key {
		case "id":
			n.ID = a.val
		case "transform":
			m, err := parseTransform(a.val)
			if err != nil {
				return err
			}
			n.Transform = m
		case "style":
			css = a.val
		default:
			if err := st.set(a.key, a.val, n); err != nil {
				return err
			}
		}
	}
	for decl := range strings.SplitSeq(css, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if err := st.set(strings.TrimSpace(k), strings.TrimSpace(v), n); err != nil {
			return err
		}
	}
	return nil
}
