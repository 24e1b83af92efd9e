// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package png

import (
	"encoding/binary"
	"hash/crc32"
)

// EncoderSettings tunes Encode.
type EncoderSettings struct {
	Compress       CompressSettings
	FilterStrategy FilterStrategy
	// FilterPaletteZero forces FilterZero for palette and sub-byte images.
	FilterPaletteZero bool
	// PredefinedFilters holds one filter type per row for FilterPredefined.
	PredefinedFilters []byte
	// AutoConvert picks the narrowest lossless color mode. When false the
	// stream uses Output, or the input mode if Output is unset.
	AutoConvert bool
	Output      ColorMode
	Interlace   bool
	// MaxIDAT splits image data into chunks of at most this many bytes.
	MaxIDAT int
}

// DefaultEncoderSettings returns auto color selection with MinSum filtering.
func DefaultEncoderSettings() EncoderSettings {
	return EncoderSettings{
		Compress:          DefaultCompressSettings(),
		FilterStrategy:    FilterMinSum,
		FilterPaletteZero: true,
		AutoConvert:       true,
		MaxIDAT:           1 << 20,
	}
}

// Encode encodes a w×h raw image in mode in. It returns the stream and the
// color mode written to it.
func Encode(img []byte, w, h int, in ColorMode, s EncoderSettings) ([]byte, ColorMode, error) {
	if w <= 0 || h <= 0 || w > maxDimension || h > maxDimension {
		return nil, ColorMode{}, errorf(ErrSize, "%dx%d", w, h)
	}
	if err := in.Validate(); err != nil {
		return nil, ColorMode{}, err
	}
	if len(img) < in.RawSize(w, h) {
		return nil, ColorMode{}, errorf(ErrSize, "buffer holds %d of %d bytes", len(img), in.RawSize(w, h))
	}

	var out ColorMode
	switch {
	case s.AutoConvert:
		stats, err := ComputeStats(img, w, h, &in)
		if err != nil {
			return nil, ColorMode{}, err
		}
		out = AutoChooseColor(stats, &in)
	case s.Output.BitDepth != 0:
		out = cloneMode(&s.Output)
	default:
		out = cloneMode(&in)
	}
	if err := out.Validate(); err != nil {
		return nil, out, err
	}
	if out.Type == Palette && len(out.Palette) == 0 {
		return nil, out, errorf(ErrColorMode, "palette mode without palette")
	}

	raw := img
	if !out.Equal(in) {
		raw = make([]byte, out.RawSize(w, h))
		if err := convert(raw, img, w, h, &out, &in); err != nil {
			return nil, out, err
		}
	}

	filtered, err := filterAll(raw, w, h, out, &s)
	if err != nil {
		return nil, out, err
	}
	zdata, err := ZlibCompress(filtered, s.Compress)
	if err != nil {
		return nil, out, err
	}

	buf := make([]byte, 0, len(zdata)+128+len(out.Palette)*4)
	buf = append(buf, Signature[:]...)

	var ihdr [13]byte
	binary.BigEndian.PutUint32(ihdr[0:], uint32(w))
	binary.BigEndian.PutUint32(ihdr[4:], uint32(h))
	ihdr[8] = out.BitDepth
	ihdr[9] = uint8(out.Type)
	if s.Interlace {
		ihdr[12] = 1
	}
	buf = appendChunk(buf, "IHDR", ihdr[:])

	if out.Type == Palette {
		plte := make([]byte, 0, 3*len(out.Palette))
		for _, c := range out.Palette {
			plte = append(plte, c[0], c[1], c[2])
		}
		buf = appendChunk(buf, "PLTE", plte)
	}
	if trns := transparency(&out); trns != nil {
		buf = appendChunk(buf, "tRNS", trns)
	}

	maxIDAT := s.MaxIDAT
	if maxIDAT <= 0 {
		maxIDAT = len(zdata)
	}
	for start := 0; start < len(zdata); start += maxIDAT {
		end := min(start+maxIDAT, len(zdata))
		buf = appendChunk(buf, "IDAT", zdata[start:end])
	}
	buf = appendChunk(buf, "IEND", nil)
	return buf, out, nil
}

// transparency returns the tRNS payload for m, or nil when none is needed.
func transparency(m *ColorMode) []byte {
	switch m.Type {
	case Palette:
		n := len(m.Palette)
		for n > 0 && m.Palette[n-1][3] == 255 {
			n--
		}
		if n == 0 {
			return nil
		}
		t := make([]byte, n)
		for i := range t {
			t[i] = m.Palette[i][3]
		}
		return t
	case Gray:
		if m.KeyDefined {
			return binary.BigEndian.AppendUint16(nil, m.KeyR)
		}
	case RGB:
		if m.KeyDefined {
			t := binary.BigEndian.AppendUint16(nil, m.KeyR)
			t = binary.BigEndian.AppendUint16(t, m.KeyG)
			return binary.BigEndian.AppendUint16(t, m.KeyB)
		}
	}
	return nil
}

func filterAll(raw []byte, w, h int, mode ColorMode, s *EncoderSettings) ([]byte, error) {
	bpp := mode.BPP()
	if !s.Interlace {
		out := make([]byte, h*(mode.Stride(w)+1))
		return out, filterImage(out, raw, w, h, mode, s)
	}
	passes, filteredSize, rawSize := adam7Passes(w, h, bpp)
	tmp := make([]byte, rawSize)
	adam7Interlace(tmp, raw, w, h, bpp, &passes)
	out := make([]byte, filteredSize)
	for i := range passes {
		p := &passes[i]
		if p.w == 0 {
			continue
		}
		ps := *s
		if s.FilterStrategy == FilterPredefined {
			// predefined filters apply to the full image only
			ps.FilterStrategy = FilterZero
		}
		if err := filterImage(out[p.filtered:], tmp[p.raw:], p.w, p.h, mode, &ps); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func appendChunk(buf []byte, typ string, data []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	start := len(buf)
	buf = append(buf, typ...)
	buf = append(buf, data...)
	return binary.BigEndian.AppendUint32(buf, crc32.ChecksumIEEE(buf[start:]))
}
