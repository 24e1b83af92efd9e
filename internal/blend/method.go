package blend

// Method selects how a paint combines with what is already drawn.
type Method uint8

// Blend methods. Hue, Saturation, Color, Luminosity and HardMix are
// accepted but render as Normal.
const (
	Normal Method = iota
	Multiply
	Screen
	Overlay
	Darken
	Lighten
	ColorDodge
	ColorBurn
	HardLight
	SoftLight
	Difference
	Exclusion
	Hue
	Saturation
	Color
	Luminosity
	Add
	HardMix
)

var methodNames = [...]string{
	"Normal", "Multiply", "Screen", "Overlay", "Darken", "Lighten",
	"ColorDodge", "ColorBurn", "HardLight", "SoftLight", "Difference",
	"Exclusion", "Hue", "Saturation", "Color", "Luminosity", "Add", "HardMix",
}

func (m Method) String() string {
	if int(m) < len(methodNames) {
		return methodNames[m]
	}
	return "Unknown"
}

// Supported reports whether m has its own arithmetic. Unsupported methods
// fall back to Normal.
func (m Method) Supported() bool {
	switch m {
	case Hue, Saturation, Color, Luminosity, HardMix:
		return false
	}
	return m <= HardMix
}

// Func combines a premultiplied source pixel with a premultiplied
// destination pixel.
type Func func(src, dst uint32) uint32

// Lookup returns the pixel function for m.
func Lookup(m Method) Func {
	switch m {
	case Add:
		return add
	case Multiply:
		return separable(multiply)
	case Screen:
		return separable(screen)
	case Overlay:
		return separable(overlay)
	case Darken:
		return separable(darken)
	case Lighten:
		return separable(lighten)
	case ColorDodge:
		return separable(colorDodge)
	case ColorBurn:
		return separable(colorBurn)
	case HardLight:
		return separable(hardLight)
	case SoftLight:
		return separable(softLight)
	case Difference:
		return separable(difference)
	case Exclusion:
		return separable(exclusion)
	}
	return Over
}

// Apply blends src into dst with m.
func Apply(m Method, src, dst uint32) uint32 {
	return Lookup(m)(src, dst)
}

// separable lifts a channel function B(s, d) on straight colors to the
// premultiplied compositing formula
//
//	result = s*(1-da) + d*(1-sa) + sa*da*B(s/sa, d/da)
//	alpha  = sa + da*(1-sa)
func separable(fn func(s, d uint32) uint32) Func {
	return func(src, dst uint32) uint32 {
		sa, s1, s2, s3 := Unpack(src)
		if sa == 0 {
			return dst
		}
		da, d1, d2, d3 := Unpack(dst)
		if da == 0 {
			return src
		}
		sada := Mul(sa, da)
		ch := func(s, d uint32) uint32 {
			b := fn(straight(s, sa), straight(d, da))
			return min(Mul(s, 255-da)+Mul(d, 255-sa)+Mul(sada, b), 255)
		}
		a := sa + Mul(da, 255-sa)
		return a<<24 | ch(s1, d1)<<16 | ch(s2, d2)<<8 | ch(s3, d3)
	}
}

func straight(c, a uint32) uint32 {
	if a == 255 {
		return c
	}
	return min(c*255/a, 255)
}

func multiply(s, d uint32) uint32 { return Mul(s, d) }

func screen(s, d uint32) uint32 { return s + d - Mul(s, d) }

func overlay(s, d uint32) uint32 { return hardLight(d, s) }

func darken(s, d uint32) uint32 { return min(s, d) }

func lighten(s, d uint32) uint32 { return max(s, d) }

func colorDodge(s, d uint32) uint32 {
	switch {
	case d == 0:
		return 0
	case s == 255:
		return 255
	}
	return min(d*255/(255-s), 255)
}

func colorBurn(s, d uint32) uint32 {
	switch {
	case d == 255:
		return 255
	case s == 0:
		return 0
	}
	return 255 - min((255-d)*255/s, 255)
}

func hardLight(s, d uint32) uint32 {
	if s < 128 {
		return Mul(2*s, d)
	}
	return screen(2*s-255, d)
}

// softLight uses the Pegtop formulation: (1-2s)*d² + 2*s*d.
func softLight(s, d uint32) uint32 {
	return min(Mul(255-min(2*s, 255), Mul(d, d))+min(2*Mul(s, d), 255), 255)
}

func difference(s, d uint32) uint32 {
	if s > d {
		return s - d
	}
	return d - s
}

func exclusion(s, d uint32) uint32 {
	return s + d - min(2*Mul(s, d), s+d)
}
