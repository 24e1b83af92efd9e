package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/tvg"
)

// sceneFile is a scene description: a canvas size, an optional background
// and paints drawn in order.
type sceneFile struct {
	Width      int         `toml:"width" yaml:"width"`
	Height     int         `toml:"height" yaml:"height"`
	Background string      `toml:"background" yaml:"background"`
	Fonts      []string    `toml:"fonts" yaml:"fonts"`
	Paints     []paintSpec `toml:"paints" yaml:"paints"`
}

type paintSpec struct {
	Type string `toml:"type" yaml:"type"` // rect, circle, polygon, picture, text, scene

	X  float32 `toml:"x" yaml:"x"`
	Y  float32 `toml:"y" yaml:"y"`
	W  float32 `toml:"w" yaml:"w"`
	H  float32 `toml:"h" yaml:"h"`
	RX float32 `toml:"rx" yaml:"rx"`
	RY float32 `toml:"ry" yaml:"ry"`

	Points [][2]float32 `toml:"points" yaml:"points"`
	Open   bool         `toml:"open" yaml:"open"`

	Src  string  `toml:"src" yaml:"src"`
	Text string  `toml:"text" yaml:"text"`
	Font string  `toml:"font" yaml:"font"`
	Size float32 `toml:"size" yaml:"size"`

	Fill     string        `toml:"fill" yaml:"fill"`
	Gradient *gradientSpec `toml:"gradient" yaml:"gradient"`
	EvenOdd  bool          `toml:"even_odd" yaml:"even_odd"`
	Stroke   *strokeSpec   `toml:"stroke" yaml:"stroke"`

	Opacity   *float32    `toml:"opacity" yaml:"opacity"`
	Blend     string      `toml:"blend" yaml:"blend"`
	Translate [2]float32  `toml:"translate" yaml:"translate"`
	Rotate    float32     `toml:"rotate" yaml:"rotate"`
	Scale     float32     `toml:"scale" yaml:"scale"`
	Mask      *maskSpec   `toml:"mask" yaml:"mask"`
	Clip      *paintSpec  `toml:"clip" yaml:"clip"`
	Children  []paintSpec `toml:"children" yaml:"children"`
}

type strokeSpec struct {
	Width    float32       `toml:"width" yaml:"width"`
	Color    string        `toml:"color" yaml:"color"`
	Gradient *gradientSpec `toml:"gradient" yaml:"gradient"`
	Cap      string        `toml:"cap" yaml:"cap"`
	Join     string        `toml:"join" yaml:"join"`
	Dash     []float32     `toml:"dash" yaml:"dash"`
	Offset   float32       `toml:"offset" yaml:"offset"`
	First    bool          `toml:"first" yaml:"first"`
}

type gradientSpec struct {
	Kind   string     `toml:"kind" yaml:"kind"` // linear or radial
	From   [2]float32 `toml:"from" yaml:"from"`
	To     [2]float32 `toml:"to" yaml:"to"`
	Center [2]float32 `toml:"center" yaml:"center"`
	Radius float32    `toml:"radius" yaml:"radius"`
	Spread string     `toml:"spread" yaml:"spread"`
	Stops  []stopSpec `toml:"stops" yaml:"stops"`
}

type stopSpec struct {
	Offset float32 `toml:"offset" yaml:"offset"`
	Color  string  `toml:"color" yaml:"color"`
}

type maskSpec struct {
	Method string    `toml:"method" yaml:"method"`
	Paint  paintSpec `toml:"paint" yaml:"paint"`
}

var errScene = errors.New("scene")

// decodeScene parses a TOML or YAML scene, chosen by the file extension.
func decodeScene(data []byte, ext string) (*sceneFile, error) {
	var s sceneFile
	switch strings.ToLower(ext) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("%w: toml: %w", errScene, err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("%w: yaml: %w", errScene, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown scene format %q", errScene, ext)
	}
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", errScene, s.Width, s.Height)
	}
	return &s, nil
}

// loadScene reads and decodes the scene file at path.
func loadScene(path string) (*sceneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeScene(data, filepath.Ext(path))
}

// builder turns scene descriptions into paints. Relative picture and font
// paths resolve against dir.
type builder struct {
	engine *tvg.Engine
	dir    string
}

// build returns a single scene holding the background and every paint,
// sized to the canvas.
func (b *builder) build(s *sceneFile) (*tvg.Scene, error) {
	for _, f := range s.Fonts {
		if err := b.engine.LoadFont(b.resolve(f)); err != nil {
			return nil, err
		}
	}

	root := tvg.NewScene()
	// The background also fixes the saved image size.
	bg := tvg.NewShape()
	bg.AppendRect(0, 0, float32(s.Width), float32(s.Height), 0, 0, true)
	if s.Background != "" {
		c, err := parseColor(s.Background)
		if err != nil {
			return nil, err
		}
		bg.SetFillColor(c[0], c[1], c[2], c[3])
	}
	root.Push(bg)

	for i, ps := range s.Paints {
		p, err := b.paint(&ps)
		if err != nil {
			return nil, fmt.Errorf("paint %d (%s): %w", i, ps.Type, err)
		}
		if err := root.Push(p); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func (b *builder) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(b.dir, path)
}

func (b *builder) paint(ps *paintSpec) (tvg.Paint, error) {
	var p tvg.Paint
	switch ps.Type {
	case "rect", "circle", "polygon":
		s, err := b.shape(ps)
		if err != nil {
			return nil, err
		}
		p = s
	case "picture":
		pic := b.engine.NewPicture()
		if err := pic.Load(b.resolve(ps.Src)); err != nil {
			return nil, err
		}
		if ps.W > 0 && ps.H > 0 {
			if err := pic.SetSize(ps.W, ps.H); err != nil {
				return nil, err
			}
		}
		p = pic
	case "text":
		t := b.engine.NewText()
		size := ps.Size
		if size == 0 {
			size = 16
		}
		if err := t.SetFont(ps.Font, size, ""); err != nil {
			return nil, err
		}
		t.SetText(ps.Text)
		if ps.Fill != "" {
			c, err := parseColor(ps.Fill)
			if err != nil {
				return nil, err
			}
			t.SetFillColor(c[0], c[1], c[2], c[3])
		}
		if ps.Gradient != nil {
			g, err := gradient(ps.Gradient)
			if err != nil {
				return nil, err
			}
			t.SetFillGradient(g)
		}
		p = t
	case "scene":
		sc := tvg.NewScene()
		for i := range ps.Children {
			c, err := b.paint(&ps.Children[i])
			if err != nil {
				return nil, err
			}
			sc.Push(c)
		}
		p = sc
	default:
		return nil, fmt.Errorf("%w: unknown paint type %q", errScene, ps.Type)
	}
	if err := b.common(p, ps); err != nil {
		return nil, err
	}
	return p, nil
}

func (b *builder) shape(ps *paintSpec) (*tvg.Shape, error) {
	s := tvg.NewShape()
	switch ps.Type {
	case "rect":
		s.AppendRect(ps.X, ps.Y, ps.W, ps.H, ps.RX, ps.RY, true)
	case "circle":
		ry := ps.RY
		if ry == 0 {
			ry = ps.RX
		}
		s.AppendCircle(ps.X, ps.Y, ps.RX, ry, true)
	case "polygon":
		if len(ps.Points) < 2 {
			return nil, fmt.Errorf("%w: polygon needs two points", errScene)
		}
		s.MoveTo(ps.Points[0][0], ps.Points[0][1])
		for _, pt := range ps.Points[1:] {
			s.LineTo(pt[0], pt[1])
		}
		if !ps.Open {
			s.Close()
		}
	}

	if ps.Fill != "" {
		c, err := parseColor(ps.Fill)
		if err != nil {
			return nil, err
		}
		s.SetFillColor(c[0], c[1], c[2], c[3])
	}
	if ps.Gradient != nil {
		g, err := gradient(ps.Gradient)
		if err != nil {
			return nil, err
		}
		s.SetFillGradient(g)
	}
	if ps.EvenOdd {
		s.SetFillRule(tvg.EvenOdd)
	}
	if st := ps.Stroke; st != nil {
		if err := stroke(s, st); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func stroke(s *tvg.Shape, st *strokeSpec) error {
	if err := s.SetStrokeWidth(st.Width); err != nil {
		return err
	}
	if st.Color != "" {
		c, err := parseColor(st.Color)
		if err != nil {
			return err
		}
		s.SetStrokeColor(c[0], c[1], c[2], c[3])
	}
	if st.Gradient != nil {
		g, err := gradient(st.Gradient)
		if err != nil {
			return err
		}
		s.SetStrokeGradient(g)
	}
	switch st.Cap {
	case "":
	case "butt":
		s.SetStrokeCap(tvg.CapButt)
	case "round":
		s.SetStrokeCap(tvg.CapRound)
	case "square":
		s.SetStrokeCap(tvg.CapSquare)
	default:
		return fmt.Errorf("%w: stroke cap %q", errScene, st.Cap)
	}
	switch st.Join {
	case "":
	case "miter":
		s.SetStrokeJoin(tvg.JoinMiter)
	case "round":
		s.SetStrokeJoin(tvg.JoinRound)
	case "bevel":
		s.SetStrokeJoin(tvg.JoinBevel)
	default:
		return fmt.Errorf("%w: stroke join %q", errScene, st.Join)
	}
	if len(st.Dash) > 0 {
		if err := s.SetStrokeDash(st.Dash, st.Offset); err != nil {
			return err
		}
	}
	s.SetPaintOrder(st.First)
	return nil
}

func gradient(gs *gradientSpec) (tvg.Fill, error) {
	var f tvg.Fill
	switch gs.Kind {
	case "", "linear":
		g := tvg.NewLinearGradient()
		g.SetLinear(gs.From[0], gs.From[1], gs.To[0], gs.To[1])
		f = g
	case "radial":
		g := tvg.NewRadialGradient()
		if err := g.SetRadial(gs.Center[0], gs.Center[1], gs.Radius, gs.Center[0], gs.Center[1], 0); err != nil {
			return nil, err
		}
		f = g
	default:
		return nil, fmt.Errorf("%w: gradient kind %q", errScene, gs.Kind)
	}

	stops := make([]tvg.ColorStop, 0, len(gs.Stops))
	for _, st := range gs.Stops {
		c, err := parseColor(st.Color)
		if err != nil {
			return nil, err
		}
		stops = append(stops, tvg.ColorStop{Offset: st.Offset, R: c[0], G: c[1], B: c[2], A: c[3]})
	}
	f.SetColorStops(stops)

	switch gs.Spread {
	case "", "pad":
	case "reflect":
		f.SetSpread(tvg.SpreadReflect)
	case "repeat":
		f.SetSpread(tvg.SpreadRepeat)
	default:
		return nil, fmt.Errorf("%w: spread %q", errScene, gs.Spread)
	}
	return f, nil
}

var blendNames = map[string]tvg.BlendMethod{
	"normal":      tvg.BlendNormal,
	"multiply":    tvg.BlendMultiply,
	"screen":      tvg.BlendScreen,
	"overlay":     tvg.BlendOverlay,
	"darken":      tvg.BlendDarken,
	"lighten":     tvg.BlendLighten,
	"color-dodge": tvg.BlendColorDodge,
	"color-burn":  tvg.BlendColorBurn,
	"hard-light":  tvg.BlendHardLight,
	"soft-light":  tvg.BlendSoftLight,
	"difference":  tvg.BlendDifference,
	"exclusion":   tvg.BlendExclusion,
	"add":         tvg.BlendAdd,
}

var maskNames = map[string]tvg.MaskMethod{
	"alpha":         tvg.MaskAlpha,
	"inverse-alpha": tvg.MaskInverseAlpha,
	"luma":          tvg.MaskLuma,
	"inverse-luma":  tvg.MaskInverseLuma,
	"add":           tvg.MaskAdd,
	"subtract":      tvg.MaskSubtract,
	"intersect":     tvg.MaskIntersect,
	"difference":    tvg.MaskDifference,
	"lighten":       tvg.MaskLighten,
	"darken":        tvg.MaskDarken,
}

// common applies the attributes every paint type shares.
func (b *builder) common(p tvg.Paint, ps *paintSpec) error {
	if ps.Translate != [2]float32{} {
		p.Translate(ps.Translate[0], ps.Translate[1])
	}
	if ps.Rotate != 0 {
		p.Rotate(ps.Rotate)
	}
	if ps.Scale != 0 {
		p.Scale(ps.Scale)
	}
	if ps.Opacity != nil {
		p.SetOpacity(uint8(min(max(*ps.Opacity, 0), 1)*255 + 0.5))
	}
	if ps.Blend != "" {
		m, ok := blendNames[ps.Blend]
		if !ok {
			return fmt.Errorf("%w: blend %q", errScene, ps.Blend)
		}
		p.SetBlend(m)
	}
	if ps.Mask != nil {
		m, ok := maskNames[ps.Mask.Method]
		if !ok {
			return fmt.Errorf("%w: mask method %q", errScene, ps.Mask.Method)
		}
		target, err := b.paint(&ps.Mask.Paint)
		if err != nil {
			return err
		}
		if err := p.SetMask(target, m); err != nil {
			return err
		}
	}
	if ps.Clip != nil {
		c, err := b.shape(ps.Clip)
		if err != nil {
			return err
		}
		if err := b.common(c, ps.Clip); err != nil {
			return err
		}
		if err := p.SetClip(c); err != nil {
			return err
		}
	}
	return nil
}

// parseColor accepts #rgb, #rrggbb, #rrggbbaa and CSS color names.
func parseColor(s string) ([4]uint8, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if c, ok := colornames.Map[s]; ok {
		return [4]uint8{c.R, c.G, c.B, 255}, nil
	}
	if s == "none" || s == "transparent" {
		return [4]uint8{}, nil
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return [4]uint8{}, fmt.Errorf("%w: color %q", errScene, s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if len(hex) != 8 || err != nil {
		return [4]uint8{}, fmt.Errorf("%w: color %q", errScene, s)
	}
	return [4]uint8{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}
