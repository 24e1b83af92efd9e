package font

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func goRegular(t *testing.T) *Font {
	t.Helper()
	f, err := Parse(goregular.TTF)
	require.NoError(t, err)
	return f
}

func TestParse(t *testing.T) {
	f := goRegular(t)
	assert.Equal(t, "Go", f.Family())

	_, err := Parse([]byte("not a font"))
	assert.ErrorIs(t, err, ErrInvalidFont)
}

func TestMetrics(t *testing.T) {
	m := goRegular(t).Metrics(32)
	assert.Greater(t, m.Ascent, float32(0))
	assert.Greater(t, m.Descent, float32(0))
	assert.GreaterOrEqual(t, m.Height, m.Ascent)
}

func TestLayout(t *testing.T) {
	f := goRegular(t)
	l := f.Layout("Hi", 40, false)
	require.False(t, l.Path.Empty())
	assert.Zero(t, l.Missing)
	assert.Greater(t, l.Width, float32(0))

	asc := f.Metrics(40).Ascent
	b := l.Path.Bounds()
	// glyphs hang from the top of the line box and sit on the baseline
	assert.GreaterOrEqual(t, b.Min.Y, float32(0))
	assert.InDelta(t, asc, b.Max.Y, 1)
	assert.LessOrEqual(t, b.Max.X, l.Width)

	wider := f.Layout("HiHi", 40, false)
	assert.InDelta(t, 2*l.Width, wider.Width, 1e-3)
}

func TestLayoutSpaceHasAdvance(t *testing.T) {
	l := goRegular(t).Layout("   ", 20, false)
	assert.True(t, l.Path.Empty())
	assert.Greater(t, l.Width, float32(0))
}

func TestLayoutItalicLeansRight(t *testing.T) {
	f := goRegular(t)
	up, it := f.Layout("l", 50, false), f.Layout("l", 50, true)
	upright, italic := up.Path.Bounds(), it.Path.Bounds()
	// the top of the stem moves right, the baseline stays put
	assert.Greater(t, italic.Max.X, upright.Max.X)
	assert.InDelta(t, upright.Max.Y, italic.Max.Y, 1e-3)
}

func TestLayoutNormalizes(t *testing.T) {
	f := goRegular(t)
	composed := f.Layout("\u00e9", 30, false)
	decomposed := f.Layout("e\u0301", 30, false)
	assert.Equal(t, composed.Path, decomposed.Path)
	assert.Equal(t, composed.Width, decomposed.Width)
}

func TestLayoutEmpty(t *testing.T) {
	f := goRegular(t)
	empty, zero := f.Layout("", 20, false), f.Layout("abc", 0, false)
	assert.True(t, empty.Path.Empty())
	assert.True(t, zero.Path.Empty())
}
