// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package png

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
)

// DecoderSettings tunes Decode.
type DecoderSettings struct {
	// IgnoreCRC skips chunk checksum verification.
	IgnoreCRC bool
	// IgnoreAdler32 skips the zlib checksum of the image data.
	IgnoreAdler32 bool
	// Output is the mode of the returned pixels. The zero value means RGBA8.
	Output ColorMode
}

type chunk struct {
	typ  [4]byte
	data []byte
}

func (c chunk) critical() bool {
	return c.typ[0]&0x20 == 0
}

// chunkReader walks the chunk sequence after the signature.
type chunkReader struct {
	data      []byte
	pos       int
	ignoreCRC bool
}

func newChunkReader(data []byte, ignoreCRC bool) (*chunkReader, error) {
	if len(data) < len(Signature) {
		return nil, errorf(ErrTruncated, "signature")
	}
	if !bytes.Equal(data[:len(Signature)], Signature[:]) {
		return nil, ErrSignature
	}
	return &chunkReader{data: data, pos: len(Signature), ignoreCRC: ignoreCRC}, nil
}

func (r *chunkReader) next() (chunk, error) {
	var c chunk
	if len(r.data)-r.pos < 12 {
		return c, errorf(ErrTruncated, "chunk header at %d", r.pos)
	}
	n := binary.BigEndian.Uint32(r.data[r.pos:])
	if n > 1<<31-1 {
		return c, errorf(ErrChunk, "length %d", n)
	}
	end := r.pos + 8 + int(n)
	if end+4 > len(r.data) {
		return c, errorf(ErrTruncated, "chunk %q", r.data[r.pos+4:r.pos+8])
	}
	copy(c.typ[:], r.data[r.pos+4:r.pos+8])
	c.data = r.data[r.pos+8 : end]
	if !r.ignoreCRC {
		want := binary.BigEndian.Uint32(r.data[end:])
		if crc32.ChecksumIEEE(r.data[r.pos+4:end]) != want {
			return c, errorf(ErrCRC, "chunk %q", c.typ[:])
		}
	}
	r.pos = end + 4
	return c, nil
}

func parseIHDR(c chunk) (Info, error) {
	var info Info
	if string(c.typ[:]) != "IHDR" {
		return info, errorf(ErrChunk, "first chunk is %q", c.typ[:])
	}
	if len(c.data) != 13 {
		return info, errorf(ErrChunk, "IHDR length %d", len(c.data))
	}
	w := binary.BigEndian.Uint32(c.data[0:])
	h := binary.BigEndian.Uint32(c.data[4:])
	if w == 0 || h == 0 || w > maxDimension || h > maxDimension {
		return info, errorf(ErrSize, "%dx%d", w, h)
	}
	info.Width, info.Height = int(w), int(h)
	info.Color = ColorMode{BitDepth: c.data[8], Type: ColorType(c.data[9])}
	if err := info.Color.Validate(); err != nil {
		return info, err
	}
	if c.data[10] != 0 {
		return info, errorf(ErrUnsupported, "compression method %d", c.data[10])
	}
	if c.data[11] != 0 {
		return info, errorf(ErrUnsupported, "filter method %d", c.data[11])
	}
	if c.data[12] > 1 {
		return info, errorf(ErrUnsupported, "interlace method %d", c.data[12])
	}
	info.Interlace = c.data[12] == 1
	return info, nil
}

func parsePLTE(info *Info, c chunk) error {
	if len(c.data)%3 != 0 || len(c.data) > 3*256 {
		return errorf(ErrChunk, "PLTE length %d", len(c.data))
	}
	info.Color.Palette = make([][4]uint8, len(c.data)/3)
	for i := range info.Color.Palette {
		info.Color.Palette[i] = [4]uint8{c.data[3*i], c.data[3*i+1], c.data[3*i+2], 255}
	}
	return nil
}

func parseTRNS(info *Info, c chunk) error {
	m := &info.Color
	switch m.Type {
	case Palette:
		if len(c.data) > len(m.Palette) {
			return errorf(ErrChunk, "tRNS has %d entries for %d colors", len(c.data), len(m.Palette))
		}
		for i, a := range c.data {
			m.Palette[i][3] = a
		}
	case Gray:
		if len(c.data) != 2 {
			return errorf(ErrChunk, "gray tRNS length %d", len(c.data))
		}
		m.KeyDefined = true
		m.KeyR = binary.BigEndian.Uint16(c.data)
		m.KeyG, m.KeyB = m.KeyR, m.KeyR
	case RGB:
		if len(c.data) != 6 {
			return errorf(ErrChunk, "rgb tRNS length %d", len(c.data))
		}
		m.KeyDefined = true
		m.KeyR = binary.BigEndian.Uint16(c.data)
		m.KeyG = binary.BigEndian.Uint16(c.data[2:])
		m.KeyB = binary.BigEndian.Uint16(c.data[4:])
	default:
		return errorf(ErrChunk, "tRNS not allowed for %v", m.Type)
	}
	return nil
}

// readHeader parses chunks up to the first IDAT, then keeps collecting image
// data when idat is non-nil.
func readHeader(data []byte, ignoreCRC bool, idat *[]byte) (Info, error) {
	r, err := newChunkReader(data, ignoreCRC)
	if err != nil {
		return Info{}, err
	}
	c, err := r.next()
	if err != nil {
		return Info{}, err
	}
	info, err := parseIHDR(c)
	if err != nil {
		return info, err
	}
	seenIDAT := false
	for {
		c, err := r.next()
		if err != nil {
			return info, err
		}
		switch string(c.typ[:]) {
		case "PLTE":
			if err := parsePLTE(&info, c); err != nil {
				return info, err
			}
		case "tRNS":
			if err := parseTRNS(&info, c); err != nil {
				return info, err
			}
		case "IDAT":
			if idat == nil {
				return info, nil
			}
			seenIDAT = true
			*idat = append(*idat, c.data...)
		case "IEND":
			if !seenIDAT {
				return info, errorf(ErrChunk, "no image data")
			}
			return info, nil
		default:
			if c.critical() {
				return info, errorf(ErrUnknownChunk, "%q", c.typ[:])
			}
		}
	}
}

// Inspect reads the header, palette and transparency without decoding the
// image data.
func Inspect(data []byte) (Info, error) {
	return readHeader(data, true, nil)
}

// Decode decodes a PNG stream. It returns the pixels in s.Output and the
// stream's own header.
func Decode(data []byte, s DecoderSettings) ([]byte, Info, error) {
	var idat []byte
	info, err := readHeader(data, s.IgnoreCRC, &idat)
	if err != nil {
		return nil, info, err
	}
	if info.Color.Type == Palette && len(info.Color.Palette) == 0 {
		return nil, info, errorf(ErrChunk, "palette image without PLTE")
	}

	out := s.Output
	if out.BitDepth == 0 {
		out = RGBA8()
	}
	if err := out.Validate(); err != nil {
		return nil, info, err
	}

	w, h := info.Width, info.Height
	bpp := info.Color.BPP()
	if err := checkDecodedSize(w, h, bpp, out.BPP()); err != nil {
		return nil, info, err
	}
	var filteredSize, rawSize int
	var passes [7]adam7Pass
	if info.Interlace {
		passes, filteredSize, rawSize = adam7Passes(w, h, bpp)
	} else {
		stride := info.Color.Stride(w)
		filteredSize = h * (stride + 1)
		rawSize = h * stride
	}

	scanlines, err := zlibDecompress(nil, idat, s.IgnoreAdler32, filteredSize)
	if err != nil {
		return nil, info, err
	}
	if len(scanlines) < filteredSize {
		return nil, info, errorf(ErrTruncated, "image data %d of %d bytes", len(scanlines), filteredSize)
	}

	raw := make([]byte, info.Color.RawSize(w, h))
	if info.Interlace {
		tmp := make([]byte, rawSize)
		for i := range passes {
			p := &passes[i]
			if p.w == 0 {
				continue
			}
			if err := unfilter(tmp[p.raw:], scanlines[p.filtered:], p.w, p.h, bpp); err != nil {
				return nil, info, err
			}
		}
		adam7Deinterlace(raw, tmp, w, h, bpp, &passes)
	} else if err := unfilter(raw, scanlines, w, h, bpp); err != nil {
		return nil, info, err
	}

	pix := make([]byte, out.RawSize(w, h))
	if err := convert(pix, raw, w, h, &out, &info.Color); err != nil {
		return nil, info, err
	}
	return pix, info, nil
}

// unfilter reverses the scanline filters of one (sub)image into out.
func unfilter(out, in []byte, w, h, bpp int) error {
	stride := (w*bpp + 7) / 8
	bytewidth := (bpp + 7) / 8
	var prev []byte
	for y := 0; y < h; y++ {
		src := in[y*(stride+1):]
		recon := out[y*stride : (y+1)*stride]
		if err := unfilterScanline(recon, src[1:1+stride], prev, bytewidth, src[0]); err != nil {
			return err
		}
		prev = recon
	}
	return nil
}

// checkDecodedSize rejects headers whose scanline, raw or output buffers
// would exceed MaxDecodedBytes. The arithmetic is done in 64 bits so a
// forged header cannot wrap around.
func checkDecodedSize(w, h, inBPP, outBPP int) error {
	uw, uh := uint64(w), uint64(h)
	filtered := uh * ((uw*uint64(inBPP)+7)/8 + 1)
	output := uh * ((uw*uint64(outBPP) + 7) / 8)
	if filtered > MaxDecodedBytes || output > MaxDecodedBytes {
		return errorf(ErrTooLarge, "%dx%d needs %d bytes", w, h, max(filtered, output))
	}
	return nil
}
