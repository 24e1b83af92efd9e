// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package png

// FilterStrategy selects the per-scanline filter when encoding.
type FilterStrategy uint8

// Filter strategies. FilterZero through FilterFour apply one filter to
// every row.
const (
	FilterZero FilterStrategy = iota
	FilterOne
	FilterTwo
	FilterThree
	FilterFour
	// FilterMinSum picks the filter with the smallest sum of signed residuals.
	FilterMinSum
	// FilterEntropy picks the filter whose residuals have the lowest entropy.
	FilterEntropy
	// FilterPredefined uses EncoderSettings.PredefinedFilters, one per row.
	FilterPredefined
	// FilterBruteForce deflates every candidate and keeps the smallest.
	FilterBruteForce
)

func paeth(a, b, c int16) uint8 {
	pa := b - c
	pb := a - c
	pc := pa + pb
	if pa < 0 {
		pa = -pa
	}
	if pb < 0 {
		pb = -pb
	}
	if pc < 0 {
		pc = -pc
	}
	switch {
	case pa <= pb && pa <= pc:
		return uint8(a)
	case pb <= pc:
		return uint8(b)
	default:
		return uint8(c)
	}
}

// unfilterScanline reverses one filter. prev is nil on the first row.
// recon and in may alias.
func unfilterScanline(recon, in, prev []byte, bytewidth int, ftype byte) error {
	n := len(in)
	switch ftype {
	case 0:
		copy(recon, in)
	case 1:
		copy(recon[:bytewidth], in[:bytewidth])
		for i := bytewidth; i < n; i++ {
			recon[i] = in[i] + recon[i-bytewidth]
		}
	case 2:
		if prev == nil {
			copy(recon, in)
			break
		}
		for i := 0; i < n; i++ {
			recon[i] = in[i] + prev[i]
		}
	case 3:
		if prev == nil {
			copy(recon[:bytewidth], in[:bytewidth])
			for i := bytewidth; i < n; i++ {
				recon[i] = in[i] + recon[i-bytewidth]>>1
			}
			break
		}
		for i := 0; i < bytewidth; i++ {
			recon[i] = in[i] + prev[i]>>1
		}
		for i := bytewidth; i < n; i++ {
			recon[i] = in[i] + uint8((uint16(recon[i-bytewidth])+uint16(prev[i]))>>1)
		}
	case 4:
		if prev == nil {
			copy(recon[:bytewidth], in[:bytewidth])
			for i := bytewidth; i < n; i++ {
				recon[i] = in[i] + recon[i-bytewidth]
			}
			break
		}
		for i := 0; i < bytewidth; i++ {
			recon[i] = in[i] + prev[i]
		}
		for i := bytewidth; i < n; i++ {
			recon[i] = in[i] + paeth(int16(recon[i-bytewidth]), int16(prev[i]), int16(prev[i-bytewidth]))
		}
	default:
		return errorf(ErrFilter, "type %d", ftype)
	}
	return nil
}

// filterScanline applies one filter. prev is nil on the first row.
func filterScanline(out, scanline, prev []byte, bytewidth int, ftype byte) {
	n := len(scanline)
	switch ftype {
	case 0:
		copy(out, scanline)
	case 1:
		copy(out[:bytewidth], scanline[:bytewidth])
		for i := bytewidth; i < n; i++ {
			out[i] = scanline[i] - scanline[i-bytewidth]
		}
	case 2:
		if prev == nil {
			copy(out, scanline)
			return
		}
		for i := 0; i < n; i++ {
			out[i] = scanline[i] - prev[i]
		}
	case 3:
		if prev == nil {
			copy(out[:bytewidth], scanline[:bytewidth])
			for i := bytewidth; i < n; i++ {
				out[i] = scanline[i] - scanline[i-bytewidth]>>1
			}
			return
		}
		for i := 0; i < bytewidth; i++ {
			out[i] = scanline[i] - prev[i]>>1
		}
		for i := bytewidth; i < n; i++ {
			out[i] = scanline[i] - uint8((uint16(scanline[i-bytewidth])+uint16(prev[i]))>>1)
		}
	case 4:
		if prev == nil {
			copy(out[:bytewidth], scanline[:bytewidth])
			for i := bytewidth; i < n; i++ {
				out[i] = scanline[i] - scanline[i-bytewidth]
			}
			return
		}
		for i := 0; i < bytewidth; i++ {
			out[i] = scanline[i] - prev[i]
		}
		for i := bytewidth; i < n; i++ {
			out[i] = scanline[i] - paeth(int16(scanline[i-bytewidth]), int16(prev[i]), int16(prev[i-bytewidth]))
		}
	}
}

// ilog2i approximates i·log2(i) in integers.
func ilog2i(i int) int {
	if i == 0 {
		return 0
	}
	l := 0
	for v := i; v >= 2; v >>= 1 {
		l++
	}
	return i*l + (i-1<<l)<<1
}

// filterImage writes h filtered rows, each prefixed by its filter type byte,
// into out. in holds h rows of linebytes bytes.
func filterImage(out, in []byte, w, h int, mode ColorMode, s *EncoderSettings) error {
	bpp := mode.BPP()
	linebytes := mode.Stride(w)
	bytewidth := (bpp + 7) / 8
	strategy := s.FilterStrategy
	if s.FilterPaletteZero && (mode.Type == Palette || mode.BitDepth < 8) {
		strategy = FilterZero
	}
	if strategy == FilterPredefined && len(s.PredefinedFilters) < h {
		return errorf(ErrSettings, "%d predefined filters for %d rows", len(s.PredefinedFilters), h)
	}

	var attempts [5][]byte
	if strategy >= FilterMinSum && strategy != FilterPredefined {
		for t := range attempts {
			attempts[t] = make([]byte, linebytes)
		}
	}
	var bruteSettings CompressSettings
	if strategy == FilterBruteForce {
		bruteSettings = s.Compress
		bruteSettings.BlockType = Fixed
		if bruteSettings.WindowSize == 0 {
			bruteSettings.WindowSize = DefaultCompressSettings().WindowSize
		}
	}

	var prev []byte
	for y := 0; y < h; y++ {
		row := in[y*linebytes : (y+1)*linebytes]
		dst := out[y*(linebytes+1):]
		var ftype byte
		switch {
		case strategy <= FilterFour:
			ftype = byte(strategy)
		case strategy == FilterPredefined:
			ftype = s.PredefinedFilters[y]
			if ftype > 4 {
				return errorf(ErrFilter, "predefined type %d", ftype)
			}
		default:
			best := 0
			for t := byte(0); t < 5; t++ {
				filterScanline(attempts[t], row, prev, bytewidth, t)
				var score int
				switch strategy {
				case FilterMinSum:
					for _, v := range attempts[t] {
						if t == 0 {
							score += int(v)
						} else if v < 128 {
							score += int(v)
						} else {
							score += 255 - int(v)
						}
					}
				case FilterEntropy:
					var count [256]int
					for _, v := range attempts[t] {
						count[v]++
					}
					count[t]++
					// higher sum of n·log(n) means lower entropy
					for _, c := range count {
						score -= ilog2i(c)
					}
				case FilterBruteForce:
					z, err := Deflate(attempts[t], bruteSettings)
					if err != nil {
						return err
					}
					score = len(z)
				}
				if t == 0 || score < best {
					best = score
					ftype = t
				}
			}
		}
		dst[0] = ftype
		filterScanline(dst[1:1+linebytes], row, prev, bytewidth, ftype)
		prev = row
	}
	return nil
}
