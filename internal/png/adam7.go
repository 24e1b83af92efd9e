// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package png

var (
	adam7IX = [7]int{0, 4, 0, 2, 0, 1, 0}
	adam7IY = [7]int{0, 0, 4, 0, 2, 0, 1}
	adam7DX = [7]int{8, 8, 4, 4, 2, 2, 1}
	adam7DY = [7]int{8, 8, 8, 4, 4, 2, 2}
)

// adam7Pass is the geometry of one reduced image.
type adam7Pass struct {
	w, h     int
	filtered int // offset into the filtered stream
	raw      int // offset into the concatenated raw passes
}

// adam7Passes returns the pass layout for a w×h image at bpp bits per
// pixel. Empty passes contribute no bytes, not even filter type bytes.
func adam7Passes(w, h, bpp int) (passes [7]adam7Pass, filteredSize, rawSize int) {
	for i := range passes {
		p := &passes[i]
		p.w = (w + adam7DX[i] - adam7IX[i] - 1) / adam7DX[i]
		p.h = (h + adam7DY[i] - adam7IY[i] - 1) / adam7DY[i]
		if p.w <= 0 || p.h <= 0 {
			p.w, p.h = 0, 0
		}
		p.filtered = filteredSize
		p.raw = rawSize
		if p.w > 0 {
			stride := (p.w*bpp + 7) / 8
			filteredSize += p.h * (stride + 1)
			rawSize += p.h * stride
		}
	}
	return passes, filteredSize, rawSize
}

func readBit(buf []byte, bit int) uint8 {
	return buf[bit>>3] >> (7 - uint(bit&7)) & 1
}

func setBit(buf []byte, bit int, v uint8) {
	if v != 0 {
		buf[bit>>3] |= 1 << (7 - uint(bit&7))
	} else {
		buf[bit>>3] &^= 1 << (7 - uint(bit&7))
	}
}

// adam7Deinterlace scatters the raw passes into a full w×h image.
func adam7Deinterlace(out, in []byte, w, h, bpp int, passes *[7]adam7Pass) {
	stride := (w*bpp + 7) / 8
	for i, p := range passes {
		if p.w == 0 {
			continue
		}
		pstride := (p.w*bpp + 7) / 8
		for y := 0; y < p.h; y++ {
			dy := adam7IY[i] + y*adam7DY[i]
			src := in[p.raw+y*pstride:]
			dst := out[dy*stride:]
			for x := 0; x < p.w; x++ {
				dx := adam7IX[i] + x*adam7DX[i]
				if bpp >= 8 {
					n := bpp / 8
					copy(dst[dx*n:dx*n+n], src[x*n:x*n+n])
					continue
				}
				for b := 0; b < bpp; b++ {
					setBit(dst, dx*bpp+b, readBit(src, x*bpp+b))
				}
			}
		}
	}
}

// adam7Interlace gathers a full w×h image into its raw passes.
func adam7Interlace(out, in []byte, w, h, bpp int, passes *[7]adam7Pass) {
	stride := (w*bpp + 7) / 8
	for i, p := range passes {
		if p.w == 0 {
			continue
		}
		pstride := (p.w*bpp + 7) / 8
		for y := 0; y < p.h; y++ {
			sy := adam7IY[i] + y*adam7DY[i]
			src := in[sy*stride:]
			dst := out[p.raw+y*pstride:]
			for x := 0; x < p.w; x++ {
				sx := adam7IX[i] + x*adam7DX[i]
				if bpp >= 8 {
					n := bpp / 8
					copy(dst[x*n:x*n+n], src[sx*n:sx*n+n])
					continue
				}
				for b := 0; b < bpp; b++ {
					setBit(dst, x*bpp+b, readBit(src, sx*bpp+b))
				}
			}
		}
	}
}
