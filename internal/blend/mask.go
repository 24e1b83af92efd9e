package blend

// MaskMethod selects how a mask target modulates the paint it is attached
// to.
type MaskMethod uint8

// Mask methods. The first four derive a per-pixel factor from the masker
// and scale the source by it. The rest combine the source alpha s with the
// masker alpha m and rescale the source color to the result.
const (
	MaskNone MaskMethod = iota
	MaskAlpha
	MaskInverseAlpha
	MaskLuma
	MaskInverseLuma
	MaskAdd
	MaskSubtract
	MaskIntersect
	MaskDifference
	MaskLighten
	MaskDarken
)

var maskNames = [...]string{
	"None", "Alpha", "InverseAlpha", "Luma", "InverseLuma", "Add",
	"Subtract", "Intersect", "Difference", "Lighten", "Darken",
}

func (m MaskMethod) String() string {
	if int(m) < len(maskNames) {
		return maskNames[m]
	}
	return "Unknown"
}

// Composing reports whether m combines alphas rather than scaling by a
// factor. Composing masks affect pixels the masker does not cover.
func (m MaskMethod) Composing() bool { return m >= MaskAdd && m <= MaskDarken }

// Luma returns the BT.601 luma of a premultiplied pixel, which equals the
// straight luma scaled by alpha. abgr selects the channel order.
func Luma(c uint32, abgr bool) uint8 {
	_, c1, c2, c3 := Unpack(c)
	r, b := c1, c3
	if abgr {
		r, b = c3, c1
	}
	return uint8((r*77 + c2*151 + b*28) >> 8)
}

// Factor returns the per-pixel scale for the factor methods and 255 for
// everything else.
func Factor(m MaskMethod, masker uint32, abgr bool) uint8 {
	switch m {
	case MaskAlpha:
		return A(masker)
	case MaskInverseAlpha:
		return IA(masker)
	case MaskLuma:
		return Luma(masker, abgr)
	case MaskInverseLuma:
		return 255 - Luma(masker, abgr)
	}
	return 255
}

// ComposeAlpha combines the paint alpha s with the masker alpha m.
func ComposeAlpha(method MaskMethod, s, m uint8) uint8 {
	a, b := uint32(s), uint32(m)
	switch method {
	case MaskAdd:
		return uint8(a + Mul(b, 255-a))
	case MaskSubtract:
		return uint8(Mul(a, 255-b))
	case MaskIntersect:
		return uint8(Mul(a, b))
	case MaskDifference:
		return uint8(min(Mul(a, 255-b)+Mul(b, 255-a), 255))
	case MaskLighten:
		return max(s, m)
	case MaskDarken:
		return min(s, m)
	}
	return s
}

// Mask applies method to the premultiplied src given the masker pixel.
func Mask(method MaskMethod, src, masker uint32, abgr bool) uint32 {
	switch method {
	case MaskNone:
		return src
	case MaskAlpha, MaskInverseAlpha, MaskLuma, MaskInverseLuma:
		return Scale(src, Factor(method, masker, abgr))
	}
	s := A(src)
	a := ComposeAlpha(method, s, A(masker))
	return Rescale(src, a)
}

// Rescale changes the alpha of premultiplied c to a, keeping its straight
// color. A fully transparent c becomes black at alpha a.
func Rescale(c uint32, a uint8) uint32 {
	s := c >> 24
	if s == uint32(a) {
		return c
	}
	if s == 0 || a == 0 {
		return uint32(a) << 24
	}
	na := uint32(a)
	_, c1, c2, c3 := Unpack(c)
	f := func(v uint32) uint32 { return min((v*na+s/2)/s, na) }
	return na<<24 | f(c1)<<16 | f(c2)<<8 | f(c3)
}
