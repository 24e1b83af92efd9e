package tvg

import (
	"fmt"
	"strings"

	"github.com/gogpu/tvg/internal/font"
	"github.com/gogpu/tvg/internal/geom"
)

// Text draws a single line of UTF-8 text with a font loaded into the
// engine. Glyphs are placed one per rune by their advances, with the
// baseline at the font ascent below the origin. Create texts with
// Engine.NewText.
type Text struct {
	paintBase
	engine *Engine

	fontName string
	size     float32
	italic   bool
	text     string

	fillColor [4]uint8
	fill      Fill

	// glyphs is the laid out text, rebuilt by prepare when dirty
	glyphs *Shape
	layout font.Layout
}

// NewText returns an empty text with an opaque black fill.
func (e *Engine) NewText() *Text {
	t := &Text{engine: e, fillColor: [4]uint8{0, 0, 0, 255}}
	t.init(t)
	return t
}

func (t *Text) Type() Type { return TypeText }

// SetFont selects a loaded font by name at size pixels per em. style
// "italic" slants the glyphs; other styles are ignored.
func (t *Text) SetFont(name string, size float32, style string) error {
	if size <= 0 {
		return fmt.Errorf("tvg: font size %g: %w", size, ErrInvalidArgument)
	}
	if _, ok := t.engine.font(name); !ok {
		return fmt.Errorf("tvg: font %q not loaded: %w", name, ErrInsufficientCondition)
	}
	t.fontName, t.size = name, size
	t.italic = strings.Contains(strings.ToLower(style), "italic")
	t.markDirty()
	return nil
}

// Font returns the font name and size.
func (t *Text) Font() (name string, size float32) { return t.fontName, t.size }

// SetText sets the UTF-8 text.
func (t *Text) SetText(s string) {
	t.text = s
	t.markDirty()
}

func (t *Text) Text() string { return t.text }

// SetFillColor fills the glyphs with a solid straight-alpha color,
// replacing any gradient.
func (t *Text) SetFillColor(r, g, b, a uint8) {
	t.fillColor = [4]uint8{r, g, b, a}
	t.fill = nil
	t.markDirty()
}

// SetFillGradient fills the glyphs with f.
func (t *Text) SetFillGradient(f Fill) {
	t.fill = f
	t.markDirty()
}

func (t *Text) Duplicate() Paint {
	d := t.engine.NewText()
	t.paintBase.duplicate(&d.paintBase)
	d.fontName, d.size, d.italic, d.text = t.fontName, t.size, t.italic, t.text
	d.fillColor = t.fillColor
	if t.fill != nil {
		d.fill = t.fill.Duplicate()
	}
	return d
}

// Bounds returns the line box: the advance width by the font height.
func (t *Text) Bounds(transformed bool) (x, y, w, h float32, err error) {
	l, ok := t.lay()
	if !ok || l.Path.Empty() {
		return t.bounds(geom.EmptyBBox(), transformed)
	}
	return t.bounds(geom.BBox{Max: geom.Pt(l.Width, l.Height)}, transformed)
}

func (t *Text) lay() (font.Layout, bool) {
	f, ok := t.engine.font(t.fontName)
	if !ok || t.text == "" {
		return font.Layout{}, false
	}
	return f.Layout(t.text, t.size, t.italic), true
}

// shape lays the text out as a filled shape. It returns nil when the font
// is gone or nothing would be drawn.
func (t *Text) shape() *Shape {
	l, ok := t.lay()
	if !ok || l.Path.Empty() {
		t.glyphs = nil
		return nil
	}
	if l.Missing > 0 {
		t.engine.log.Debug("tvg: runes without glyphs", "font", t.fontName, "missing", l.Missing)
	}
	s := NewShape()
	s.path = l.Path
	s.fillColor, s.fill = t.fillColor, t.fill
	t.glyphs, t.layout = s, l
	return s
}
