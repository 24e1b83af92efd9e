// Package font turns text into glyph outlines.
//
// Glyphs come from TrueType and OpenType fonts parsed with
// golang.org/x/image/font/sfnt. There is no shaping: every rune maps to
// one glyph and glyphs are placed by their advance widths alone.
package font

import (
	"errors"
	"fmt"
	"sync"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/tvg/internal/geom"
)

// ErrInvalidFont is returned for data that is not a usable font.
var ErrInvalidFont = errors.New("font: invalid font data")

// ItalicShear is the horizontal shear applied for synthetic italics.
const ItalicShear = 0.18

// Font is a parsed font face. It is safe for concurrent use.
type Font struct {
	sf *sfnt.Font

	mu  sync.Mutex
	buf sfnt.Buffer
}

// Parse parses TrueType or OpenType data. The font keeps a reference to
// data.
func Parse(data []byte) (*Font, error) {
	sf, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFont, err)
	}
	return &Font{sf: sf}, nil
}

// Family returns the font family name, or "" when the font has none.
func (f *Font) Family() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, err := f.sf.Name(&f.buf, sfnt.NameIDFamily)
	if err != nil {
		return ""
	}
	return name
}

// Metrics holds vertical font metrics in pixels.
type Metrics struct {
	Ascent  float32
	Descent float32
	// Height is the recommended line spacing.
	Height float32
}

// Metrics returns the metrics at size pixels per em.
func (f *Font) Metrics(size float32) Metrics {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.sf.Metrics(&f.buf, ppem(size), xfont.HintingNone)
	if err != nil {
		return Metrics{}
	}
	return Metrics{Ascent: toFloat(m.Ascent), Descent: toFloat(m.Descent), Height: toFloat(m.Height)}
}

// Layout is a line of text converted to outlines. The origin is the top
// left of the line box; the baseline sits at Ascent.
type Layout struct {
	Path   geom.Path
	Width  float32
	Height float32
	// Missing counts runes without a glyph in the font.
	Missing int
}

// Layout converts text at size pixels per em into a single path. Text is
// normalized to NFC first so that composed and decomposed input render
// alike. italic shears the glyphs by ItalicShear.
func (f *Font) Layout(text string, size float32, italic bool) Layout {
	var out Layout
	if size <= 0 || text == "" {
		return out
	}
	text = norm.NFC.String(text)

	f.mu.Lock()
	defer f.mu.Unlock()

	scale := ppem(size)
	var ascent float32
	if m, err := f.sf.Metrics(&f.buf, scale, xfont.HintingNone); err == nil {
		ascent = toFloat(m.Ascent)
		out.Height = toFloat(m.Ascent + m.Descent)
	}

	var pen float32
	for _, r := range text {
		gi, err := f.sf.GlyphIndex(&f.buf, r)
		if err != nil || gi == 0 {
			out.Missing++
		}
		m := geom.Translation(pen, ascent)
		if italic {
			m = m.Mul(geom.Matrix{E11: 1, E12: -ItalicShear, E22: 1, E33: 1})
		}
		f.appendGlyph(&out.Path, gi, scale, m)
		if adv, err := f.sf.GlyphAdvance(&f.buf, gi, scale, xfont.HintingNone); err == nil {
			pen += toFloat(adv)
		}
	}
	out.Width = pen
	return out
}

// appendGlyph adds the outline of glyph gi, placed by m relative to its
// baseline origin. sfnt reports y growing downwards, as the canvas does.
func (f *Font) appendGlyph(p *geom.Path, gi sfnt.GlyphIndex, scale fixed.Int26_6, m geom.Matrix) {
	segs, err := f.sf.LoadGlyph(&f.buf, gi, scale, nil)
	if err != nil || len(segs) == 0 {
		return
	}
	pt := func(v fixed.Point26_6) geom.Point {
		return m.Apply(geom.Pt(toFloat(v.X), toFloat(v.Y)))
	}
	var cur geom.Point
	open := false
	for _, s := range segs {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				p.Close()
			}
			cur = pt(s.Args[0])
			p.MoveTo(cur.X, cur.Y)
			open = true
		case sfnt.SegmentOpLineTo:
			cur = pt(s.Args[0])
			p.LineTo(cur.X, cur.Y)
		case sfnt.SegmentOpQuadTo:
			c, to := pt(s.Args[0]), pt(s.Args[1])
			c1 := cur.Add(c.Sub(cur).Mul(2.0 / 3))
			c2 := to.Add(c.Sub(to).Mul(2.0 / 3))
			p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, to.X, to.Y)
			cur = to
		case sfnt.SegmentOpCubeTo:
			c1, c2, to := pt(s.Args[0]), pt(s.Args[1]), pt(s.Args[2])
			p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, to.X, to.Y)
			cur = to
		}
	}
	if open {
		p.Close()
	}
}

func ppem(size float32) fixed.Int26_6 { return fixed.Int26_6(size*64 + 0.5) }

func toFloat(v fixed.Int26_6) float32 { return float32(v) / 64 }
