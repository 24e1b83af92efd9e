// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package png

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	stdpng "image/png"
	"io"
	"math/rand"
	"testing"
)

func checkerboard(w, h int) []byte {
	pix := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := byte(0xff)
			if (x+y)%2 == 1 {
				v = 0
			}
			i := 4 * (y*w + x)
			pix[i], pix[i+1], pix[i+2], pix[i+3] = v, v, v, 0xff
		}
	}
	return pix
}

func noise(n int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	b := make([]byte, n)
	r.Read(b)
	return b
}

// gradientImage mixes smooth ramps with repeated runs so LZ77 finds matches.
func gradientImage(w, h int) []byte {
	pix := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := 4 * (y*w + x)
			pix[i] = byte(x * 255 / w)
			pix[i+1] = byte(y * 255 / h)
			pix[i+2] = byte((x / 8) * 16)
			pix[i+3] = 0xff
		}
	}
	return pix
}

// =============================================================================
// Round trips
// =============================================================================

func TestCheckerboardPalette(t *testing.T) {
	pix := checkerboard(16, 16)
	data, mode, err := Encode(pix, 16, 16, RGBA8(), DefaultEncoderSettings())
	if err != nil {
		t.Fatal(err)
	}
	if mode.Type != Palette || mode.BitDepth != 1 || len(mode.Palette) != 2 {
		t.Fatalf("chose %v/%d with %d colors, want Palette/1 with 2", mode.Type, mode.BitDepth, len(mode.Palette))
	}

	info, err := Inspect(data)
	if err != nil {
		t.Fatal(err)
	}
	if info.Color.Type != Palette || info.Color.BitDepth != 1 || len(info.Color.Palette) != 2 {
		t.Errorf("stream header %v/%d with %d colors", info.Color.Type, info.Color.BitDepth, len(info.Color.Palette))
	}

	got, _, err := Decode(data, DecoderSettings{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, pix) {
		t.Error("decoded pixels differ from input")
	}
}

func TestRoundTripModes(t *testing.T) {
	gray8 := make([]byte, 20*4)
	for i := 0; i < 20; i++ {
		v := byte(i * 13)
		gray8[4*i], gray8[4*i+1], gray8[4*i+2], gray8[4*i+3] = v, v, v, 0xff
	}
	gray4 := make([]byte, 10*7*4)
	for i := 0; i < 70; i++ {
		v := byte((i % 16) * 17)
		gray4[4*i], gray4[4*i+1], gray4[4*i+2], gray4[4*i+3] = v, v, v, 0xff
	}
	keyed := gradientImage(9, 9)
	for i := 0; i < len(keyed); i += 4 * 5 {
		keyed[i], keyed[i+1], keyed[i+2], keyed[i+3] = 1, 2, 3, 0
	}
	translucent := gradientImage(13, 5)
	for i := 3; i < len(translucent); i += 4 {
		translucent[i] = byte(i)
	}

	tests := []struct {
		name     string
		pix      []byte
		w, h     int
		wantType ColorType
	}{
		{"gray8", gray8, 20, 1, Gray},
		{"gray4 palette", gray4, 10, 7, Palette},
		{"rgb", gradientImage(33, 17), 33, 17, RGB},
		{"rgb key", keyed, 9, 9, RGB},
		{"rgba", translucent, 13, 5, RGBA},
		{"single pixel", []byte{10, 20, 30, 255}, 1, 1, RGB},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, mode, err := Encode(tt.pix, tt.w, tt.h, RGBA8(), DefaultEncoderSettings())
			if err != nil {
				t.Fatal(err)
			}
			if mode.Type != tt.wantType {
				t.Errorf("color type = %v, want %v", mode.Type, tt.wantType)
			}
			got, _, err := Decode(data, DecoderSettings{})
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, tt.pix) {
				t.Error("round trip differs")
			}
		})
	}
}

func TestRoundTripStrategies(t *testing.T) {
	pix := gradientImage(40, 24)
	strategies := []FilterStrategy{
		FilterZero, FilterOne, FilterTwo, FilterThree, FilterFour,
		FilterMinSum, FilterEntropy, FilterBruteForce,
	}
	for _, st := range strategies {
		for _, interlace := range []bool{false, true} {
			s := DefaultEncoderSettings()
			s.FilterStrategy = st
			s.Interlace = interlace
			data, _, err := Encode(pix, 40, 24, RGBA8(), s)
			if err != nil {
				t.Fatalf("strategy %d interlace %v: %v", st, interlace, err)
			}
			got, info, err := Decode(data, DecoderSettings{})
			if err != nil {
				t.Fatalf("strategy %d interlace %v: %v", st, interlace, err)
			}
			if info.Interlace != interlace {
				t.Errorf("interlace flag = %v", info.Interlace)
			}
			if !bytes.Equal(got, pix) {
				t.Errorf("strategy %d interlace %v: round trip differs", st, interlace)
			}
		}
	}
}

func TestPredefinedFilters(t *testing.T) {
	pix := gradientImage(8, 4)
	s := DefaultEncoderSettings()
	s.AutoConvert = false
	s.FilterStrategy = FilterPredefined
	s.PredefinedFilters = []byte{4, 3, 2, 1}
	data, _, err := Encode(pix, 8, 4, RGBA8(), s)
	if err != nil {
		t.Fatal(err)
	}
	got, _, err := Decode(data, DecoderSettings{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, pix) {
		t.Error("round trip differs")
	}

	s.PredefinedFilters = []byte{4}
	if _, _, err := Encode(pix, 8, 4, RGBA8(), s); !errors.Is(err, ErrSettings) {
		t.Errorf("short filter list: err = %v, want ErrSettings", err)
	}
}

func TestInterlacedSubByte(t *testing.T) {
	// widths that leave some Adam7 passes empty
	for _, size := range [][2]int{{1, 1}, {3, 2}, {5, 9}, {17, 3}} {
		w, h := size[0], size[1]
		pix := checkerboard(w, h)
		s := DefaultEncoderSettings()
		s.Interlace = true
		data, _, err := Encode(pix, w, h, RGBA8(), s)
		if err != nil {
			t.Fatalf("%dx%d: %v", w, h, err)
		}
		got, _, err := Decode(data, DecoderSettings{})
		if err != nil {
			t.Fatalf("%dx%d: %v", w, h, err)
		}
		if !bytes.Equal(got, pix) {
			t.Errorf("%dx%d: round trip differs", w, h)
		}
	}
}

func TestDecodeToCallerMode(t *testing.T) {
	pix := checkerboard(6, 6)
	data, _, err := Encode(pix, 6, 6, RGBA8(), DefaultEncoderSettings())
	if err != nil {
		t.Fatal(err)
	}
	got, _, err := Decode(data, DecoderSettings{Output: ColorMode{Type: Gray, BitDepth: 8}})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 36 {
		t.Fatalf("len = %d, want 36", len(got))
	}
	for i, v := range got {
		want := byte(0xff)
		if (i%6+i/6)%2 == 1 {
			want = 0
		}
		if v != want {
			t.Fatalf("pixel %d = %d, want %d", i, v, want)
		}
	}
}

// =============================================================================
// Interoperability
// =============================================================================

func TestStdlibDecodesOutput(t *testing.T) {
	pix := gradientImage(31, 19)
	pix[3] = 0x80
	data, _, err := Encode(pix, 31, 19, RGBA8(), DefaultEncoderSettings())
	if err != nil {
		t.Fatal(err)
	}
	img, err := stdpng.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("image/png: %v", err)
	}
	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		t.Fatalf("decoded as %T", img)
	}
	for y := 0; y < 19; y++ {
		for x := 0; x < 31; x++ {
			i := 4 * (y*31 + x)
			want := color.NRGBA{pix[i], pix[i+1], pix[i+2], pix[i+3]}
			if got := nrgba.NRGBAAt(x, y); got != want {
				t.Fatalf("(%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestDecodeStdlibOutput(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 23, 11))
	copy(src.Pix, noise(len(src.Pix), 3))
	var buf bytes.Buffer
	if err := stdpng.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}
	got, info, err := Decode(buf.Bytes(), DecoderSettings{})
	if err != nil {
		t.Fatal(err)
	}
	if info.Width != 23 || info.Height != 11 {
		t.Errorf("size = %dx%d", info.Width, info.Height)
	}
	if !bytes.Equal(got, src.Pix) {
		t.Error("pixels differ from image/png input")
	}
}

func TestDecodeStdlibPaletted(t *testing.T) {
	pal := color.Palette{
		color.NRGBA{255, 0, 0, 255},
		color.NRGBA{0, 255, 0, 128},
		color.NRGBA{0, 0, 255, 0},
	}
	src := image.NewPaletted(image.Rect(0, 0, 7, 3), pal)
	for i := range src.Pix {
		src.Pix[i] = uint8(i % 3)
	}
	var buf bytes.Buffer
	if err := stdpng.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}
	got, info, err := Decode(buf.Bytes(), DecoderSettings{})
	if err != nil {
		t.Fatal(err)
	}
	if info.Color.Type != Palette {
		t.Fatalf("type = %v", info.Color.Type)
	}
	for i := range src.Pix {
		c := pal[i%3].(color.NRGBA)
		want := []byte{c.R, c.G, c.B, c.A}
		if !bytes.Equal(got[4*i:4*i+4], want) {
			t.Fatalf("pixel %d = %v, want %v", i, got[4*i:4*i+4], want)
		}
	}
}

// =============================================================================
// Deflate
// =============================================================================

func TestDeflateRoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"empty":    nil,
		"byte":     {42},
		"zeros":    make([]byte, 100000),
		"noise":    noise(70000, 1),
		"gradient": gradientImage(300, 300),
		"text":     bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 500),
	}
	settings := map[string]CompressSettings{
		"default": DefaultCompressSettings(),
		"stored":  {BlockType: Stored},
		"fixed":   {BlockType: Fixed, UseLZ77: true, WindowSize: 32768, MinMatch: 3, NiceMatch: 258},
		"literal": {BlockType: Dynamic},
		"eager":   {BlockType: Dynamic, UseLZ77: true, WindowSize: 1024, MinMatch: 6, NiceMatch: 16},
	}
	for iname, in := range inputs {
		for sname, s := range settings {
			z, err := Deflate(in, s)
			if err != nil {
				t.Fatalf("%s/%s: %v", iname, sname, err)
			}

			got, n, err := Inflate(nil, z)
			if err != nil {
				t.Fatalf("%s/%s: inflate: %v", iname, sname, err)
			}
			if n != len(z) {
				t.Errorf("%s/%s: consumed %d of %d bytes", iname, sname, n, len(z))
			}
			if !bytes.Equal(got, in) {
				t.Errorf("%s/%s: own inflate differs", iname, sname)
			}

			std, err := io.ReadAll(flate.NewReader(bytes.NewReader(z)))
			if err != nil {
				t.Fatalf("%s/%s: compress/flate: %v", iname, sname, err)
			}
			if !bytes.Equal(std, in) {
				t.Errorf("%s/%s: compress/flate output differs", iname, sname)
			}
		}
	}
}

func TestDeflateCompresses(t *testing.T) {
	in := make([]byte, 100000)
	z, err := Deflate(in, DefaultCompressSettings())
	if err != nil {
		t.Fatal(err)
	}
	if len(z) > 1000 {
		t.Errorf("100000 zeros deflated to %d bytes", len(z))
	}
}

func TestInflateStdlibStreams(t *testing.T) {
	in := gradientImage(200, 100)
	for _, level := range []int{flate.NoCompression, flate.BestSpeed, flate.DefaultCompression, flate.BestCompression, flate.HuffmanOnly} {
		var buf bytes.Buffer
		zw, err := flate.NewWriter(&buf, level)
		if err != nil {
			t.Fatal(err)
		}
		zw.Write(in)
		zw.Close()
		got, _, err := Inflate(nil, buf.Bytes())
		if err != nil {
			t.Fatalf("level %d: %v", level, err)
		}
		if !bytes.Equal(got, in) {
			t.Errorf("level %d: output differs", level)
		}
	}
}

func TestZlib(t *testing.T) {
	in := bytes.Repeat([]byte{1, 2, 3, 4, 5}, 1000)
	z, err := ZlibCompress(in, DefaultCompressSettings())
	if err != nil {
		t.Fatal(err)
	}
	r, err := zlib.NewReader(bytes.NewReader(z))
	if err != nil {
		t.Fatal(err)
	}
	std, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(std, in) {
		t.Error("compress/zlib output differs")
	}

	z[len(z)-1] ^= 0xff
	if _, err := ZlibDecompress(nil, z, false); !errors.Is(err, ErrAdler32) {
		t.Errorf("corrupt checksum: err = %v, want ErrAdler32", err)
	}
	got, err := ZlibDecompress(nil, z, true)
	if err != nil || !bytes.Equal(got, in) {
		t.Errorf("ignored checksum: err = %v", err)
	}

	if _, err := ZlibDecompress(nil, []byte{0x78, 0x02}, false); !errors.Is(err, ErrZlibHeader) {
		t.Errorf("bad header: err = %v, want ErrZlibHeader", err)
	}
}

func TestCodeLengths(t *testing.T) {
	tests := []struct {
		name  string
		freqs []uint32
		max   int
		want  []uint8
	}{
		{"none", []uint32{0, 0, 0}, 15, []uint8{1, 1, 0}},
		{"one", []uint32{0, 0, 5}, 15, []uint8{1, 0, 1}},
		{"two", []uint32{3, 0, 5}, 15, []uint8{1, 0, 1}},
		{"skewed", []uint32{1, 1, 2, 4}, 15, []uint8{3, 3, 2, 1}},
		{"limited", []uint32{1, 1, 2, 4}, 2, []uint8{2, 2, 2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := codeLengths(tt.freqs, tt.max)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("codeLengths = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCodeLengthsKraft(t *testing.T) {
	freqs := make([]uint32, 286)
	r := rand.New(rand.NewSource(7))
	for i := range freqs {
		// Fibonacci-like weights force deep trees that must be limited
		if i < 30 {
			freqs[i] = uint32(1) << uint(i%24)
		} else if r.Intn(3) > 0 {
			freqs[i] = uint32(r.Intn(1000))
		}
	}
	lengths := codeLengths(freqs, 15)
	var kraft float64
	for i, l := range lengths {
		if (freqs[i] == 0) != (l == 0) {
			t.Fatalf("symbol %d freq %d got length %d", i, freqs[i], l)
		}
		if l > 15 {
			t.Fatalf("symbol %d length %d exceeds limit", i, l)
		}
		if l > 0 {
			kraft += 1 / float64(uint(1)<<l)
		}
	}
	if kraft != 1 {
		t.Errorf("kraft sum = %v, want 1", kraft)
	}
}

// =============================================================================
// Errors
// =============================================================================

func TestDecodeErrors(t *testing.T) {
	good, _, err := Encode(gradientImage(4, 4), 4, 4, RGBA8(), DefaultEncoderSettings())
	if err != nil {
		t.Fatal(err)
	}
	mutate := func(f func([]byte) []byte) []byte {
		return f(append([]byte(nil), good...))
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"signature", mutate(func(b []byte) []byte { b[1] = 'X'; return b }), ErrSignature},
		{"short", good[:5], ErrTruncated},
		{"truncated", good[:len(good)-20], ErrTruncated},
		{"crc", mutate(func(b []byte) []byte { b[20] ^= 1; return b }), ErrCRC},
		{"depth", mutate(func(b []byte) []byte {
			b[24] = 3
			return fixCRC(b, 8)
		}), ErrColorMode},
		{"zero width", mutate(func(b []byte) []byte {
			b[16], b[17], b[18], b[19] = 0, 0, 0, 0
			return fixCRC(b, 8)
		}), ErrSize},
		{"unknown critical", mutate(func(b []byte) []byte {
			extra := appendChunk(nil, "CRIT", []byte{1})
			return append(b[:33], append(extra, b[33:]...)...)
		}), ErrUnknownChunk},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Decode(tt.data, DecoderSettings{}); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	// ancillary chunks are skipped
	extra := appendChunk(nil, "tEXt", []byte("k\x00v"))
	withText := append(append(append([]byte(nil), good[:33]...), extra...), good[33:]...)
	if _, _, err := Decode(withText, DecoderSettings{}); err != nil {
		t.Errorf("ancillary chunk: %v", err)
	}

	// a corrupt CRC is accepted when checks are off
	bad := mutate(func(b []byte) []byte { b[29] ^= 0xff; return b })
	if _, _, err := Decode(bad, DecoderSettings{IgnoreCRC: true}); err != nil {
		t.Errorf("IgnoreCRC: %v", err)
	}
}

// fixCRC recomputes the CRC of the chunk starting at off.
func fixCRC(b []byte, off int) []byte {
	n := int(b[off])<<24 | int(b[off+1])<<16 | int(b[off+2])<<8 | int(b[off+3])
	fixed := appendChunk(nil, string(b[off+4:off+8]), b[off+8:off+8+n])
	copy(b[off:], fixed)
	return b
}

func TestPaletteIndexOutOfRange(t *testing.T) {
	mode := ColorMode{Type: Palette, BitDepth: 8, Palette: [][4]uint8{{1, 2, 3, 255}, {4, 5, 6, 255}}}
	s := DefaultEncoderSettings()
	s.AutoConvert = false
	data, _, err := Encode([]byte{0, 1}, 2, 1, mode, s)
	if err != nil {
		t.Fatal(err)
	}
	// shrink PLTE to one entry so the second pixel indexes past it
	i := bytes.Index(data, []byte("PLTE"))
	plte := appendChunk(nil, "PLTE", []byte{1, 2, 3})
	data = append(append(append([]byte(nil), data[:i-4]...), plte...), data[i+4+6+4:]...)
	if _, _, err := Decode(data, DecoderSettings{}); !errors.Is(err, ErrPaletteIndex) {
		t.Errorf("decode err = %v, want ErrPaletteIndex", err)
	}

	rgba := []byte{9, 9, 9, 255}
	if _, _, err := Encode(rgba, 1, 1, RGBA8(), EncoderSettings{Output: ColorMode{Type: Palette, BitDepth: 8, Palette: mode.Palette}}); !errors.Is(err, ErrPaletteIndex) {
		t.Errorf("encode of a color missing from the palette: err = %v, want ErrPaletteIndex", err)
	}
}

// setSize rewrites the IHDR dimensions and its CRC.
func setSize(b []byte, w, h uint32) []byte {
	b = append([]byte(nil), b...)
	binary.BigEndian.PutUint32(b[16:], w)
	binary.BigEndian.PutUint32(b[20:], h)
	return fixCRC(b, 8)
}

func TestForgedHeaderSize(t *testing.T) {
	tiny, _, err := Encode([]byte{1, 2, 3, 255}, 1, 1, RGBA8(), DefaultEncoderSettings())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		w, h uint32
		want error
	}{
		{"max dimension", maxDimension, maxDimension, ErrTooLarge},
		{"24-bit dimensions", 1<<24 - 1, 1<<24 - 1, ErrTooLarge},
		{"over output limit", 20000, 20000, ErrTooLarge},
		{"wide strip", maxDimension, 64, ErrTooLarge},
		// fits the limit, so the missing pixel data is what fails
		{"plausible", 4096, 4096, ErrTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := setSize(tiny, tt.w, tt.h)
			_, info, err := Decode(data, DecoderSettings{})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if tt.want == ErrTooLarge && !errors.Is(err, ErrSize) {
				t.Errorf("err = %v does not wrap ErrSize", err)
			}
			if info.Width != int(tt.w) || info.Height != int(tt.h) {
				t.Errorf("info = %dx%d, want %dx%d", info.Width, info.Height, tt.w, tt.h)
			}
		})
	}

	if _, err := Inspect(setSize(tiny, maxDimension, maxDimension)); err != nil {
		t.Errorf("Inspect of a large header: %v", err)
	}
}

func TestInflateStopsAtImageSize(t *testing.T) {
	// 16x16 RGBA needs 16*(64+1) filtered bytes; the stream holds 1 MiB.
	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	if _, err := zw.Write(make([]byte, 1<<20)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], 16)
	binary.BigEndian.PutUint32(ihdr[4:], 16)
	ihdr[8], ihdr[9] = 8, byte(RGBA)
	data := append([]byte(nil), Signature[:]...)
	data = appendChunk(data, "IHDR", ihdr)
	data = appendChunk(data, "IDAT", z.Bytes())
	data = appendChunk(data, "IEND", nil)

	if _, _, err := Decode(data, DecoderSettings{}); !errors.Is(err, ErrTooLarge) {
		t.Errorf("err = %v, want ErrTooLarge", err)
	}

	// unbounded inflation still returns everything
	out, err := ZlibDecompress(nil, z.Bytes(), false)
	if err != nil || len(out) != 1<<20 {
		t.Errorf("ZlibDecompress = %d bytes, %v", len(out), err)
	}
}

func TestDecodeMutatedStreams(t *testing.T) {
	good, _, err := Encode(gradientImage(13, 11), 13, 11, RGBA8(), DefaultEncoderSettings())
	if err != nil {
		t.Fatal(err)
	}
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 3000; i++ {
		b := append([]byte(nil), good...)
		for n := 1 + r.Intn(4); n > 0; n-- {
			b[8+r.Intn(len(b)-8)] = byte(r.Intn(256))
		}
		// errors are expected; only panics fail the test
		_, _, _ = Decode(b, DecoderSettings{IgnoreCRC: true, IgnoreAdler32: i%2 == 0})
	}
}

func FuzzDecode(f *testing.F) {
	for _, seed := range [][]byte{
		mustEncode(f, gradientImage(13, 11), 13, 11),
		mustEncode(f, checkerboard(8, 8), 8, 8),
	} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, data []byte) {
		pix, info, err := Decode(data, DecoderSettings{IgnoreCRC: true, IgnoreAdler32: true})
		if err != nil {
			return
		}
		if len(pix) != RGBA8().RawSize(info.Width, info.Height) {
			t.Fatalf("%d bytes for %dx%d", len(pix), info.Width, info.Height)
		}
	})
}

func mustEncode(tb testing.TB, pix []byte, w, h int) []byte {
	tb.Helper()
	data, _, err := Encode(pix, w, h, RGBA8(), DefaultEncoderSettings())
	if err != nil {
		tb.Fatal(err)
	}
	return data
}

func TestValidate(t *testing.T) {
	tests := []struct {
		mode ColorMode
		ok   bool
	}{
		{ColorMode{Type: Gray, BitDepth: 1}, true},
		{ColorMode{Type: Gray, BitDepth: 16}, true},
		{ColorMode{Type: RGB, BitDepth: 4}, false},
		{ColorMode{Type: Palette, BitDepth: 16}, false},
		{ColorMode{Type: GrayAlpha, BitDepth: 8}, true},
		{ColorMode{Type: RGBA, BitDepth: 2}, false},
		{ColorMode{Type: 5, BitDepth: 8}, false},
	}
	for _, tt := range tests {
		if err := tt.mode.Validate(); (err == nil) != tt.ok {
			t.Errorf("%v/%d: err = %v", tt.mode.Type, tt.mode.BitDepth, err)
		}
	}
}

func TestPaeth(t *testing.T) {
	tests := []struct {
		a, b, c int16
		want    uint8
	}{
		{10, 20, 10, 20},
		{20, 10, 10, 20},
		{5, 5, 5, 5},
		{100, 50, 200, 50},
		{0, 0, 255, 0},
	}
	for _, tt := range tests {
		if got := paeth(tt.a, tt.b, tt.c); got != tt.want {
			t.Errorf("paeth(%d,%d,%d) = %d, want %d", tt.a, tt.b, tt.c, got, tt.want)
		}
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkEncode(b *testing.B) {
	pix := gradientImage(256, 256)
	s := DefaultEncoderSettings()
	b.SetBytes(int64(len(pix)))
	for i := 0; i < b.N; i++ {
		if _, _, err := Encode(pix, 256, 256, RGBA8(), s); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecode(b *testing.B) {
	pix := gradientImage(256, 256)
	data, _, err := Encode(pix, 256, 256, RGBA8(), DefaultEncoderSettings())
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(pix)))
	for i := 0; i < b.N; i++ {
		if _, _, err := Decode(data, DecoderSettings{}); err != nil {
			b.Fatal(err)
		}
	}
}
