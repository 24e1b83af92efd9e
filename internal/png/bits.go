// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package png

// bitReader reads a DEFLATE stream least significant bit first.
// Reads past the end yield zero bits; callers check overrun after consuming.
type bitReader struct {
	data []byte
	pos  int // in bits
	size int // in bits
}

func newBitReader(data []byte) *bitReader {
	return &bitReader{data: data, size: len(data) * 8}
}

// peek returns the next 25 bits without consuming them.
func (r *bitReader) peek() uint32 {
	i := r.pos >> 3
	var v uint32
	switch n := len(r.data) - i; {
	case n >= 4:
		v = uint32(r.data[i]) | uint32(r.data[i+1])<<8 | uint32(r.data[i+2])<<16 | uint32(r.data[i+3])<<24
	case n == 3:
		v = uint32(r.data[i]) | uint32(r.data[i+1])<<8 | uint32(r.data[i+2])<<16
	case n == 2:
		v = uint32(r.data[i]) | uint32(r.data[i+1])<<8
	case n == 1:
		v = uint32(r.data[i])
	}
	return v >> uint(r.pos&7)
}

func (r *bitReader) skip(n int) {
	r.pos += n
}

// bits reads n ≤ 25 bits.
func (r *bitReader) bits(n int) uint32 {
	if n == 0 {
		return 0
	}
	v := r.peek() & (1<<uint(n) - 1)
	r.pos += n
	return v
}

func (r *bitReader) overrun() bool {
	return r.pos > r.size
}

func (r *bitReader) alignByte() {
	r.pos = (r.pos + 7) &^ 7
}

// bitWriter appends bits least significant first.
type bitWriter struct {
	out   []byte
	acc   uint64
	nbits uint
}

func (w *bitWriter) write(v uint32, n uint) {
	w.acc |= uint64(v) << w.nbits
	w.nbits += n
	for w.nbits >= 8 {
		w.out = append(w.out, byte(w.acc))
		w.acc >>= 8
		w.nbits -= 8
	}
}

// writeCode writes a Huffman code whose bits are already reversed.
func (w *bitWriter) writeCode(code uint16, n uint8) {
	w.write(uint32(code), uint(n))
}

func (w *bitWriter) flush() {
	if w.nbits > 0 {
		w.out = append(w.out, byte(w.acc))
		w.acc = 0
		w.nbits = 0
	}
}

func reverseBits(v uint32, n int) uint32 {
	var r uint32
	for i := 0; i < n; i++ {
		r = r<<1 | v&1
		v >>= 1
	}
	return r
}
