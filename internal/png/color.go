// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package png

// sample reads the x-th value of bitdepth bits from a packed row.
func sample(row []byte, x, depth int) uint16 {
	switch depth {
	case 8:
		return uint16(row[x])
	case 16:
		return uint16(row[2*x])<<8 | uint16(row[2*x+1])
	}
	bit := x * depth
	shift := 8 - depth - bit&7
	return uint16(row[bit>>3]>>uint(shift)) & (1<<uint(depth) - 1)
}

func putSample(row []byte, x, depth int, v uint16) {
	switch depth {
	case 8:
		row[x] = uint8(v)
		return
	case 16:
		row[2*x] = uint8(v >> 8)
		row[2*x+1] = uint8(v)
		return
	}
	bit := x * depth
	shift := uint(8 - depth - bit&7)
	mask := uint8(1<<uint(depth)-1) << shift
	row[bit>>3] = row[bit>>3]&^mask | uint8(v)<<shift&mask
}

// scale8 expands a sample of the given depth to 8 bits.
func scale8(v uint16, depth int) uint8 {
	switch depth {
	case 16:
		return uint8(v >> 8)
	case 8:
		return uint8(v)
	}
	return uint8(uint32(v) * 255 / (1<<uint(depth) - 1))
}

// pixelRGBA8 reads pixel x of row in mode m as straight RGBA.
func pixelRGBA8(row []byte, x int, m *ColorMode) (r, g, b, a uint8, err error) {
	d := int(m.BitDepth)
	switch m.Type {
	case Gray:
		v := sample(row, x, d)
		r = scale8(v, d)
		g, b, a = r, r, 255
		if m.KeyDefined && v == m.KeyR {
			a = 0
		}
	case RGB:
		rv, gv, bv := sample(row, 3*x, d), sample(row, 3*x+1, d), sample(row, 3*x+2, d)
		r, g, b, a = scale8(rv, d), scale8(gv, d), scale8(bv, d), 255
		if m.KeyDefined && rv == m.KeyR && gv == m.KeyG && bv == m.KeyB {
			a = 0
		}
	case Palette:
		i := int(sample(row, x, d))
		if i >= len(m.Palette) {
			return 0, 0, 0, 0, errorf(ErrPaletteIndex, "index %d of %d", i, len(m.Palette))
		}
		c := m.Palette[i]
		r, g, b, a = c[0], c[1], c[2], c[3]
	case GrayAlpha:
		r = scale8(sample(row, 2*x, d), d)
		g, b = r, r
		a = scale8(sample(row, 2*x+1, d), d)
	case RGBA:
		r = scale8(sample(row, 4*x, d), d)
		g = scale8(sample(row, 4*x+1, d), d)
		b = scale8(sample(row, 4*x+2, d), d)
		a = scale8(sample(row, 4*x+3, d), d)
	}
	return r, g, b, a, nil
}

// pixelRGBA16 reads pixel x of a 16-bit row as straight RGBA.
func pixelRGBA16(row []byte, x int, m *ColorMode) (r, g, b, a uint16) {
	switch m.Type {
	case Gray:
		r = sample(row, x, 16)
		g, b, a = r, r, 0xffff
		if m.KeyDefined && r == m.KeyR {
			a = 0
		}
	case RGB:
		r, g, b, a = sample(row, 3*x, 16), sample(row, 3*x+1, 16), sample(row, 3*x+2, 16), 0xffff
		if m.KeyDefined && r == m.KeyR && g == m.KeyG && b == m.KeyB {
			a = 0
		}
	case GrayAlpha:
		r = sample(row, 2*x, 16)
		g, b = r, r
		a = sample(row, 2*x+1, 16)
	case RGBA:
		r, g, b, a = sample(row, 4*x, 16), sample(row, 4*x+1, 16), sample(row, 4*x+2, 16), sample(row, 4*x+3, 16)
	}
	return r, g, b, a
}

func packRGBA(r, g, b, a uint8) uint32 {
	return uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a)
}

// convertRGBA8 is the decoder hot path: any mode to straight RGBA8.
func convertRGBA8(out, in []byte, w, h int, m *ColorMode) error {
	stride := m.Stride(w)
	d := int(m.BitDepth)
	for y := 0; y < h; y++ {
		row := in[y*stride : (y+1)*stride]
		dst := out[y*w*4 : (y+1)*w*4]
		switch {
		case m.Type == RGBA && d == 8:
			copy(dst, row)
		case m.Type == RGB && d == 8 && !m.KeyDefined:
			for x := 0; x < w; x++ {
				dst[4*x], dst[4*x+1], dst[4*x+2], dst[4*x+3] = row[3*x], row[3*x+1], row[3*x+2], 255
			}
		case m.Type == Palette && d == 8:
			for x := 0; x < w; x++ {
				i := int(row[x])
				if i >= len(m.Palette) {
					return errorf(ErrPaletteIndex, "index %d of %d", i, len(m.Palette))
				}
				c := m.Palette[i]
				dst[4*x], dst[4*x+1], dst[4*x+2], dst[4*x+3] = c[0], c[1], c[2], c[3]
			}
		default:
			for x := 0; x < w; x++ {
				r, g, b, a, err := pixelRGBA8(row, x, m)
				if err != nil {
					return err
				}
				dst[4*x], dst[4*x+1], dst[4*x+2], dst[4*x+3] = r, g, b, a
			}
		}
	}
	return nil
}

// convert rewrites a raw image from mode src to mode dst.
func convert(out, in []byte, w, h int, dst, src *ColorMode) error {
	if dst.Equal(*src) {
		copy(out, in[:src.RawSize(w, h)])
		return nil
	}
	if dst.Type == RGBA && dst.BitDepth == 8 {
		return convertRGBA8(out, in, w, h, src)
	}
	var index map[uint32]int
	if dst.Type == Palette {
		index = make(map[uint32]int, len(dst.Palette))
		for i := len(dst.Palette) - 1; i >= 0; i-- {
			c := dst.Palette[i]
			index[packRGBA(c[0], c[1], c[2], c[3])] = i
		}
	}
	sstride, dstride := src.Stride(w), dst.Stride(w)
	dd := int(dst.BitDepth)
	wide := src.BitDepth == 16 && dst.BitDepth == 16
	for y := 0; y < h; y++ {
		srow := in[y*sstride : (y+1)*sstride]
		drow := out[y*dstride : (y+1)*dstride]
		for x := 0; x < w; x++ {
			var r, g, b, a uint16
			if wide {
				r, g, b, a = pixelRGBA16(srow, x, src)
			} else {
				r8, g8, b8, a8, err := pixelRGBA8(srow, x, src)
				if err != nil {
					return err
				}
				if dst.Type == Palette {
					i, ok := index[packRGBA(r8, g8, b8, a8)]
					if !ok {
						return errorf(ErrPaletteIndex, "color %02x%02x%02x%02x not in palette", r8, g8, b8, a8)
					}
					putSample(drow, x, dd, uint16(i))
					continue
				}
				r, g, b, a = uint16(r8)*257, uint16(g8)*257, uint16(b8)*257, uint16(a8)*257
			}
			writePixel(drow, x, dst, r, g, b, a)
		}
	}
	return nil
}

// writePixel stores a 16-bit straight RGBA pixel into a non-palette row.
func writePixel(row []byte, x int, m *ColorMode, r, g, b, a uint16) {
	d := int(m.BitDepth)
	down := func(v uint16) uint16 {
		if d == 16 {
			return v
		}
		return v >> (16 - uint(d))
	}
	switch m.Type {
	case Gray:
		putSample(row, x, d, down(r))
	case GrayAlpha:
		putSample(row, 2*x, d, down(r))
		putSample(row, 2*x+1, d, down(a))
	case RGB:
		putSample(row, 3*x, d, down(r))
		putSample(row, 3*x+1, d, down(g))
		putSample(row, 3*x+2, d, down(b))
	case RGBA:
		putSample(row, 4*x, d, down(r))
		putSample(row, 4*x+1, d, down(g))
		putSample(row, 4*x+2, d, down(b))
		putSample(row, 4*x+3, d, down(a))
	}
}

// ColorStats summarizes what an image needs from its color mode.
type ColorStats struct {
	Colored bool
	Key     bool
	KeyR    uint16 // 16-bit
	KeyG    uint16
	KeyB    uint16
	Alpha   bool
	// NumColors counts distinct RGBA colors up to 257.
	NumColors int
	Palette   [][4]uint8
	// Bits is the sample depth needed: 1, 2, 4, 8 or 16.
	Bits      int
	NumPixels int

	AllowPalette bool
	AllowGray    bool
}

// bitsRequired is the narrowest gray depth that represents v exactly.
func bitsRequired(v uint8) int {
	switch {
	case v == 0 || v == 255:
		return 1
	case v%17 == 0:
		if v%85 == 0 {
			return 2
		}
		return 4
	}
	return 8
}

// ComputeStats scans an image in mode m.
func ComputeStats(img []byte, w, h int, m *ColorMode) (*ColorStats, error) {
	s := &ColorStats{Bits: 1, NumPixels: w * h, AllowPalette: true, AllowGray: true}
	stride := m.Stride(w)

	sixteen := false
	if m.BitDepth == 16 {
	scan:
		for y := 0; y < h; y++ {
			row := img[y*stride:]
			for x := 0; x < w; x++ {
				r, g, b, a := pixelRGBA16(row, x, m)
				if r&255 != r>>8 || g&255 != g>>8 || b&255 != b>>8 || a&255 != a>>8 {
					sixteen = true
					break scan
				}
			}
		}
	}

	if sixteen {
		s.Bits = 16
		s.NumColors = 257
		for y := 0; y < h; y++ {
			row := img[y*stride:]
			for x := 0; x < w; x++ {
				r, g, b, a := pixelRGBA16(row, x, m)
				if r != g || r != b {
					s.Colored = true
				}
				s.observeAlpha(r, g, b, a, 0xffff)
			}
		}
		if s.Key && !s.Alpha {
			s.dropKeyIfOpaqueMatch(img, w, h, m, true)
		}
		return s, nil
	}

	colors := make(map[uint32]struct{})
	for y := 0; y < h; y++ {
		row := img[y*stride:]
		for x := 0; x < w; x++ {
			r, g, b, a, err := pixelRGBA8(row, x, m)
			if err != nil {
				return nil, err
			}
			if s.Bits < 8 {
				if n := bitsRequired(r); n > s.Bits {
					s.Bits = n
				}
			}
			if r != g || r != b {
				s.Colored = true
			}
			s.observeAlpha(uint16(r), uint16(g), uint16(b), uint16(a), 255)
			if s.NumColors < 257 {
				c := packRGBA(r, g, b, a)
				if _, ok := colors[c]; !ok {
					colors[c] = struct{}{}
					if s.NumColors < 256 {
						s.Palette = append(s.Palette, [4]uint8{r, g, b, a})
					}
					s.NumColors++
				}
			}
		}
	}
	if s.Key && !s.Alpha {
		s.dropKeyIfOpaqueMatch(img, w, h, m, false)
	}
	// modes narrower than 8 bits exist only for opaque gray
	if (s.Colored || s.Alpha) && s.Bits < 8 {
		s.Bits = 8
	}
	s.KeyR += s.KeyR << 8
	s.KeyG += s.KeyG << 8
	s.KeyB += s.KeyB << 8
	return s, nil
}

// observeAlpha tracks whether a single transparent color key can express
// the alpha channel.
func (s *ColorStats) observeAlpha(r, g, b, a, opaque uint16) {
	if s.Alpha {
		return
	}
	match := r == s.KeyR && g == s.KeyG && b == s.KeyB
	switch {
	case a != opaque && (a != 0 || (s.Key && !match)):
		s.Alpha = true
		s.Key = false
	case a == 0 && !s.Key:
		s.Key = true
		s.KeyR, s.KeyG, s.KeyB = r, g, b
	case a == opaque && s.Key && match:
		s.Alpha = true
		s.Key = false
	}
}

// dropKeyIfOpaqueMatch rejects the key when an opaque pixel that was seen
// before the key was chosen shares its RGB.
func (s *ColorStats) dropKeyIfOpaqueMatch(img []byte, w, h int, m *ColorMode, wide bool) {
	stride := m.Stride(w)
	for y := 0; y < h; y++ {
		row := img[y*stride:]
		for x := 0; x < w; x++ {
			var r, g, b, a uint16
			if wide {
				r, g, b, a = pixelRGBA16(row, x, m)
			} else {
				r8, g8, b8, a8, _ := pixelRGBA8(row, x, m)
				r, g, b, a = uint16(r8), uint16(g8), uint16(b8), uint16(a8)
			}
			if a != 0 && r == s.KeyR && g == s.KeyG && b == s.KeyB {
				s.Alpha = true
				s.Key = false
				return
			}
		}
	}
}

// AutoChooseColor returns the narrowest mode that stores every pixel
// described by stats losslessly. in is the mode of the source image; an
// equivalent palette in is kept to preserve its order.
func AutoChooseColor(stats *ColorStats, in *ColorMode) ColorMode {
	alpha, key, bits := stats.Alpha, stats.Key, stats.Bits

	// a tRNS chunk costs more than the alpha channel on tiny images
	if key && stats.NumPixels <= 16 {
		alpha, key = true, false
		if bits < 8 {
			bits = 8
		}
	}

	grayOK := !stats.Colored && stats.AllowGray
	if !grayOK && bits < 8 {
		bits = 8
	}

	n := stats.NumColors
	paletteBits := 8
	switch {
	case n <= 2:
		paletteBits = 1
	case n <= 4:
		paletteBits = 2
	case n <= 16:
		paletteBits = 4
	}
	paletteOK := n <= 256 && bits <= 8 && n != 0 && stats.AllowPalette
	if stats.NumPixels < n*2 {
		paletteOK = false
	}
	// gray wins only when it packs tighter than the palette indices
	if grayOK && !alpha && bits < paletteBits {
		paletteOK = false
	}

	if paletteOK {
		out := ColorMode{Type: Palette, BitDepth: uint8(paletteBits)}
		out.Palette = append(out.Palette, stats.Palette[:n]...)
		if in.Type == Palette && len(in.Palette) >= n && in.BitDepth == out.BitDepth {
			return cloneMode(in)
		}
		return out
	}

	out := ColorMode{BitDepth: uint8(bits)}
	switch {
	case alpha && grayOK:
		out.Type = GrayAlpha
	case alpha:
		out.Type = RGBA
	case grayOK:
		out.Type = Gray
	default:
		out.Type = RGB
	}
	if key {
		mask := uint16(1<<uint(bits) - 1)
		out.KeyDefined = true
		out.KeyR = stats.KeyR & mask
		out.KeyG = stats.KeyG & mask
		out.KeyB = stats.KeyB & mask
	}
	return out
}

func cloneMode(m *ColorMode) ColorMode {
	c := *m
	c.Palette = append([][4]uint8(nil), m.Palette...)
	return c
}
