package blend

import "testing"

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

func near(x, y uint32, tol uint32) bool {
	for shift := 0; shift < 32; shift += 8 {
		if absDiff((x>>shift)&0xff, (y>>shift)&0xff) > tol {
			return false
		}
	}
	return true
}

// =============================================================================
// Arithmetic
// =============================================================================

func TestMulExact(t *testing.T) {
	for a := uint32(0); a < 256; a++ {
		for b := uint32(0); b < 256; b++ {
			want := (a*b*2 + 255) / 510
			if got := Mul(a, b); got != want {
				t.Fatalf("Mul(%d, %d) = %d, want %d", a, b, got, want)
			}
		}
	}
}

func TestPremultiplyRoundTrip(t *testing.T) {
	tests := []uint32{0xff102030, 0x80ff8040, 0x01ffffff, 0x00ffffff, 0xc0000000}
	for _, c := range tests {
		p := Premultiply(c)
		if A(p) != A(c) {
			t.Errorf("Premultiply(%08x) changed alpha to %02x", c, A(p))
		}
		back := Unpremultiply(p)
		// precision loss grows as alpha shrinks
		tol := uint32(255/max(uint32(A(c)), 1)) + 1
		if A(c) != 0 && !near(back, c, tol) {
			t.Errorf("round trip %08x -> %08x -> %08x", c, p, back)
		}
	}
}

func TestSwapRB(t *testing.T) {
	if got := SwapRB(0x80112233); got != 0x80332211 {
		t.Errorf("SwapRB = %08x, want 80332211", got)
	}
}

// =============================================================================
// Blend methods
// =============================================================================

func TestNormalAlgebra(t *testing.T) {
	// src + (1 - src.a) * dst, per premultiplied component
	for _, src := range []uint32{0x00000000, 0x80400000, 0xff00ff00, 0x40102030} {
		for _, dst := range []uint32{0x00000000, 0xffffffff, 0x80808080, 0xff0000ff} {
			sa, s1, s2, s3 := Unpack(src)
			da, d1, d2, d3 := Unpack(dst)
			ia := 255 - sa
			want := (sa+Mul(da, ia))<<24 | (s1+Mul(d1, ia))<<16 | (s2+Mul(d2, ia))<<8 | (s3 + Mul(d3, ia))
			if got := Apply(Normal, src, dst); got != want {
				t.Errorf("Normal(%08x, %08x) = %08x, want %08x", src, dst, got, want)
			}
		}
	}
}

func TestSeparableMethods(t *testing.T) {
	const (
		white = 0xffffffff
		black = 0xff000000
		gray  = 0xff808080
		red   = 0xffff0000
	)
	tests := []struct {
		name     string
		m        Method
		src, dst uint32
		want     uint32
	}{
		{"multiply white identity", Multiply, white, red, red},
		{"multiply black", Multiply, black, red, black},
		{"multiply gray", Multiply, gray, gray, 0xff404040},
		{"screen black identity", Screen, black, red, red},
		{"screen white", Screen, white, red, white},
		{"darken", Darken, gray, red, 0xff800000},
		{"lighten", Lighten, gray, red, 0xffff8080},
		{"difference self", Difference, gray, gray, black},
		{"difference white", Difference, white, red, 0xff00ffff},
		{"exclusion black identity", Exclusion, black, red, red},
		{"add saturates", Add, gray, gray, white},
		{"color dodge black identity", ColorDodge, black, gray, gray},
		{"color burn white identity", ColorBurn, white, gray, gray},
		{"hard light black", HardLight, black, gray, black},
		{"hard light white", HardLight, white, gray, white},
		{"overlay on black", Overlay, gray, black, black},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Apply(tt.m, tt.src, tt.dst); !near(got, tt.want, 1) {
				t.Errorf("%v(%08x, %08x) = %08x, want %08x", tt.m, tt.src, tt.dst, got, tt.want)
			}
		})
	}
}

func TestSeparableTransparentOperands(t *testing.T) {
	for m := Multiply; m <= Exclusion; m++ {
		if got := Apply(m, 0, 0x80402010); got != 0x80402010 {
			t.Errorf("%v with transparent source = %08x", m, got)
		}
		if got := Apply(m, 0x80402010, 0); got != 0x80402010 {
			t.Errorf("%v onto transparent destination = %08x", m, got)
		}
	}
}

func TestUnsupportedFallsBackToNormal(t *testing.T) {
	src, dst := uint32(0x80400000), uint32(0xff0000ff)
	want := Apply(Normal, src, dst)
	for _, m := range []Method{Hue, Saturation, Color, Luminosity, HardMix} {
		if m.Supported() {
			t.Errorf("%v reported as supported", m)
		}
		if got := Apply(m, src, dst); got != want {
			t.Errorf("%v = %08x, want Normal result %08x", m, got, want)
		}
	}
}

// =============================================================================
// Masks
// =============================================================================

func TestMaskFactors(t *testing.T) {
	src := uint32(0xff00ff00)
	tests := []struct {
		name   string
		method MaskMethod
		masker uint32
		want   uint32
	}{
		{"none", MaskNone, 0, src},
		{"alpha opaque", MaskAlpha, 0xff000000, src},
		{"alpha empty", MaskAlpha, 0, 0},
		{"inverse alpha empty", MaskInverseAlpha, 0, src},
		{"luma white", MaskLuma, 0xffffffff, src},
		{"luma black", MaskLuma, 0xff000000, 0},
		{"inverse luma black", MaskInverseLuma, 0xff000000, src},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mask(tt.method, src, tt.masker, false); got != tt.want {
				t.Errorf("Mask = %08x, want %08x", got, tt.want)
			}
		})
	}
}

func TestLumaChannelOrder(t *testing.T) {
	// pure red in ARGB and in ABGR
	argb := Luma(0xffff0000, false)
	abgr := Luma(0xff0000ff, true)
	if argb != abgr || argb != 76 {
		t.Errorf("red luma = %d / %d, want 76", argb, abgr)
	}
}

func TestComposeAlpha(t *testing.T) {
	tests := []struct {
		method MaskMethod
		s, m   uint8
		want   uint8
	}{
		{MaskAdd, 128, 128, 192},
		{MaskAdd, 0, 255, 255},
		{MaskSubtract, 255, 64, 191},
		{MaskIntersect, 255, 64, 64},
		{MaskIntersect, 0, 255, 0},
		{MaskDifference, 255, 255, 0},
		{MaskDifference, 255, 0, 255},
		{MaskLighten, 10, 200, 200},
		{MaskDarken, 10, 200, 10},
	}
	for _, tt := range tests {
		if got := ComposeAlpha(tt.method, tt.s, tt.m); absDiff(uint32(got), uint32(tt.want)) > 1 {
			t.Errorf("%v(%d, %d) = %d, want %d", tt.method, tt.s, tt.m, got, tt.want)
		}
	}
}

func TestRescaleKeepsColor(t *testing.T) {
	c := Premultiply(0xff20c040)
	half := Rescale(c, 128)
	if A(half) != 128 {
		t.Fatalf("alpha = %d, want 128", A(half))
	}
	if !near(Unpremultiply(half), 0x8020c040, 2) {
		t.Errorf("straight color drifted: %08x", Unpremultiply(half))
	}
	if got := Rescale(0, 90); got != 0x5a000000 {
		t.Errorf("Rescale(transparent) = %08x", got)
	}
}

func BenchmarkOver(b *testing.B) {
	dst := uint32(0xff204060)
	for i := 0; i < b.N; i++ {
		dst = Over(0x80402010, dst)
	}
	_ = dst
}
