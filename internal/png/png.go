// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package png is a self-contained PNG codec.
//
// It carries its own DEFLATE inflater and compressor, the five scanline
// filters, Adam7 interlacing and conversion between every legal PNG color
// mode. The encoder can pick the narrowest color mode that represents an
// image losslessly.
//
// Raw buffers with a bit depth below 8 pack pixels MSB first and pad every
// row to a whole byte, the same way PNG scanlines are laid out.
package png

import (
	"errors"
	"fmt"
)

// Signature is the eight byte preamble of every PNG stream.
var Signature = [8]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Decoder and encoder errors. Every error returned by this package wraps
// one of these sentinels.
var (
	ErrSignature    = errors.New("png: invalid signature")
	ErrTruncated    = errors.New("png: truncated stream")
	ErrChunk        = errors.New("png: malformed chunk")
	ErrUnknownChunk = errors.New("png: unknown critical chunk")
	ErrCRC          = errors.New("png: chunk crc mismatch")
	ErrAdler32      = errors.New("png: adler32 mismatch")
	ErrZlibHeader   = errors.New("png: invalid zlib header")
	ErrHuffman      = errors.New("png: invalid huffman code")
	ErrDeflate      = errors.New("png: corrupt deflate stream")
	ErrFilter       = errors.New("png: invalid filter type")
	ErrColorMode    = errors.New("png: invalid bit depth for color type")
	ErrPaletteIndex = errors.New("png: palette index out of range")
	ErrSize         = errors.New("png: invalid image size")
	ErrUnsupported  = errors.New("png: unsupported feature")
	ErrSettings     = errors.New("png: invalid settings")

	// ErrTooLarge wraps ErrSize for headers whose decoded buffers would
	// exceed MaxDecodedBytes.
	ErrTooLarge = fmt.Errorf("%w: decoded size over limit", ErrSize)
)

func errorf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)
}

// ColorType is the PNG color type stored in IHDR.
type ColorType uint8

// PNG color types.
const (
	Gray      ColorType = 0
	RGB       ColorType = 2
	Palette   ColorType = 3
	GrayAlpha ColorType = 4
	RGBA      ColorType = 6
)

// String returns the color type name.
func (c ColorType) String() string {
	switch c {
	case Gray:
		return "Gray"
	case RGB:
		return "RGB"
	case Palette:
		return "Palette"
	case GrayAlpha:
		return "GrayAlpha"
	case RGBA:
		return "RGBA"
	default:
		return fmt.Sprintf("ColorType(%d)", uint8(c))
	}
}

// Channels returns the number of samples per pixel.
func (c ColorType) Channels() int {
	switch c {
	case Gray, Palette:
		return 1
	case GrayAlpha:
		return 2
	case RGB:
		return 3
	case RGBA:
		return 4
	}
	return 0
}

// ColorMode describes the layout of a raw pixel buffer.
type ColorMode struct {
	Type     ColorType
	BitDepth uint8

	// Chroma key, used by Gray and RGB. Values are raw samples at BitDepth.
	KeyDefined bool
	KeyR       uint16
	KeyG       uint16
	KeyB       uint16

	// Palette entries as straight RGBA, at most 256.
	Palette [][4]uint8
}

// RGBA8 is the default mode: four 8-bit samples per pixel.
func RGBA8() ColorMode {
	return ColorMode{Type: RGBA, BitDepth: 8}
}

// Validate reports whether the type and depth pair is legal PNG.
func (m ColorMode) Validate() error {
	ok := false
	switch m.Type {
	case Gray:
		ok = m.BitDepth == 1 || m.BitDepth == 2 || m.BitDepth == 4 || m.BitDepth == 8 || m.BitDepth == 16
	case Palette:
		ok = m.BitDepth == 1 || m.BitDepth == 2 || m.BitDepth == 4 || m.BitDepth == 8
	case RGB, GrayAlpha, RGBA:
		ok = m.BitDepth == 8 || m.BitDepth == 16
	}
	if !ok {
		return errorf(ErrColorMode, "type %v depth %d", m.Type, m.BitDepth)
	}
	if len(m.Palette) > 256 {
		return errorf(ErrColorMode, "palette has %d entries", len(m.Palette))
	}
	return nil
}

// BPP returns bits per pixel.
func (m ColorMode) BPP() int {
	return m.Type.Channels() * int(m.BitDepth)
}

// IsGray reports whether the mode stores a single luminance sample.
func (m ColorMode) IsGray() bool {
	return m.Type == Gray || m.Type == GrayAlpha
}

// CanHaveAlpha reports whether pixels in this mode can be non-opaque.
func (m ColorMode) CanHaveAlpha() bool {
	if m.KeyDefined || m.Type == GrayAlpha || m.Type == RGBA {
		return true
	}
	if m.Type == Palette {
		for _, c := range m.Palette {
			if c[3] != 255 {
				return true
			}
		}
	}
	return false
}

// Equal reports whether both modes describe the same pixels.
func (m ColorMode) Equal(o ColorMode) bool {
	if m.Type != o.Type || m.BitDepth != o.BitDepth || m.KeyDefined != o.KeyDefined {
		return false
	}
	if m.KeyDefined && (m.KeyR != o.KeyR || m.KeyG != o.KeyG || m.KeyB != o.KeyB) {
		return false
	}
	if len(m.Palette) != len(o.Palette) {
		return false
	}
	for i := range m.Palette {
		if m.Palette[i] != o.Palette[i] {
			return false
		}
	}
	return true
}

// Stride returns the byte length of one raw row.
func (m ColorMode) Stride(w int) int {
	return (w*m.BPP() + 7) / 8
}

// RawSize returns the byte length of a w×h raw buffer.
func (m ColorMode) RawSize(w, h int) int {
	return m.Stride(w) * h
}

// Info is the image header plus the color mode found in the stream.
type Info struct {
	Width     int
	Height    int
	Color     ColorMode
	Interlace bool
}

const maxDimension = 1 << 24

// MaxDecodedBytes bounds every buffer Decode allocates from header values.
const MaxDecodedBytes = 1 << 30
