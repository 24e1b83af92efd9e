// Package blend implements the per-pixel compositing arithmetic of the
// software renderer: premultiplied source-over, the separable blend
// methods and the mask methods.
//
// Pixels are packed uint32 words with alpha in the top byte and three
// color channels below it. The channel order (ARGB or ABGR) only matters
// for luma masks, which take it as a parameter.
package blend

// Mul returns a*b/255 rounded to nearest for a, b in [0, 255].
//
// This is Alvy Ray Smith's exact formulation, with no division.
func Mul(a, b uint32) uint32 {
	t := a*b + 128
	return (t + (t >> 8)) >> 8
}

// A returns the alpha byte of c.
func A(c uint32) uint8 { return uint8(c >> 24) }

// IA returns 255 minus the alpha byte of c.
func IA(c uint32) uint8 { return uint8(^c >> 24) }

// Pack assembles a pixel from alpha and three channels in memory order.
func Pack(a, c1, c2, c3 uint8) uint32 {
	return uint32(a)<<24 | uint32(c1)<<16 | uint32(c2)<<8 | uint32(c3)
}

// Unpack splits c into alpha and its three channels.
func Unpack(c uint32) (a, c1, c2, c3 uint32) {
	return c >> 24, (c >> 16) & 0xff, (c >> 8) & 0xff, c & 0xff
}

// Scale multiplies every channel of c, alpha included, by a/255.
func Scale(c uint32, a uint8) uint32 {
	switch a {
	case 0:
		return 0
	case 255:
		return c
	}
	ca, c1, c2, c3 := Unpack(c)
	m := uint32(a)
	return Mul(ca, m)<<24 | Mul(c1, m)<<16 | Mul(c2, m)<<8 | Mul(c3, m)
}

// Over composites premultiplied src over premultiplied dst.
func Over(src, dst uint32) uint32 {
	ia := IA(src)
	if ia == 0 {
		return src
	}
	return add(src, Scale(dst, ia))
}

// Lerp returns s*a + d*(255-a) per channel.
func Lerp(s, d uint32, a uint8) uint32 {
	switch a {
	case 0:
		return d
	case 255:
		return s
	}
	return add(Scale(s, a), Scale(d, 255-a))
}

// add sums two pixels channel by channel with saturation.
func add(x, y uint32) uint32 {
	xa, x1, x2, x3 := Unpack(x)
	ya, y1, y2, y3 := Unpack(y)
	return min(xa+ya, 255)<<24 | min(x1+y1, 255)<<16 | min(x2+y2, 255)<<8 | min(x3+y3, 255)
}

// Premultiply converts a straight-alpha pixel to premultiplied form.
func Premultiply(c uint32) uint32 {
	a := c >> 24
	switch a {
	case 255:
		return c
	case 0:
		return 0
	}
	_, c1, c2, c3 := Unpack(c)
	return a<<24 | Mul(c1, a)<<16 | Mul(c2, a)<<8 | Mul(c3, a)
}

// Unpremultiply converts a premultiplied pixel to straight alpha.
func Unpremultiply(c uint32) uint32 {
	a := c >> 24
	switch a {
	case 255:
		return c
	case 0:
		return 0
	}
	_, c1, c2, c3 := Unpack(c)
	f := func(v uint32) uint32 { return min((v*255+a/2)/a, 255) }
	return a<<24 | f(c1)<<16 | f(c2)<<8 | f(c3)
}

// SwapRB exchanges the first and third color channels, converting between
// ARGB and ABGR word layouts.
func SwapRB(c uint32) uint32 {
	return c&0xff00ff00 | (c>>16)&0xff | (c&0xff)<<16
}
