// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package png

import (
	"encoding/binary"
	"sync"
)

var (
	lengthBase = [29]uint16{
		3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
		35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258,
	}
	lengthExtra = [29]uint8{
		0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
		3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
	}
	distBase = [30]uint16{
		1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193,
		257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
	}
	distExtra = [30]uint8{
		0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
		7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
	}
	// transmission order of code length code lengths
	clclOrder = [numCodeLen]uint8{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}
)

func fixedLitLenLengths() []uint8 {
	l := make([]uint8, numLitLen)
	for i := range l {
		switch {
		case i < 144:
			l[i] = 8
		case i < 256:
			l[i] = 9
		case i < 280:
			l[i] = 7
		default:
			l[i] = 8
		}
	}
	return l
}

func fixedDistLengths() []uint8 {
	l := make([]uint8, numDist)
	for i := range l {
		l[i] = 5
	}
	return l
}

var fixedTables = sync.OnceValues(func() (*huffmanTable, *huffmanTable) {
	var ll, d huffmanTable
	if err := ll.build(fixedLitLenLengths()); err != nil {
		panic(err)
	}
	if err := d.build(fixedDistLengths()); err != nil {
		panic(err)
	}
	return &ll, &d
})

// Inflate decompresses a raw DEFLATE stream, appending to dst. It returns
// the output and the number of input bytes consumed.
func Inflate(dst, src []byte) ([]byte, int, error) {
	return inflate(dst, src, 0)
}

// inflate fails with ErrTooLarge once more than limit bytes have been
// appended to dst. A limit of zero is unbounded.
func inflate(dst, src []byte, limit int) ([]byte, int, error) {
	ceil := -1
	if limit > 0 {
		ceil = len(dst) + limit
	}
	r := newBitReader(src)
	out := dst
	for {
		final := r.bits(1)
		btype := r.bits(2)
		if r.overrun() {
			return out, 0, errorf(ErrTruncated, "block header")
		}
		var err error
		switch btype {
		case 0:
			out, err = inflateStored(out, r, ceil)
		case 1:
			ll, d := fixedTables()
			out, err = inflateHuffman(out, r, ll, d, ceil)
		case 2:
			var ll, d huffmanTable
			if err = readDynamicTables(r, &ll, &d); err == nil {
				out, err = inflateHuffman(out, r, &ll, &d, ceil)
			}
		default:
			err = errorf(ErrDeflate, "reserved block type")
		}
		if err != nil {
			return out, 0, err
		}
		if final == 1 {
			break
		}
	}
	return out, (r.pos + 7) / 8, nil
}

func inflateStored(out []byte, r *bitReader, ceil int) ([]byte, error) {
	r.alignByte()
	p := r.pos / 8
	if p+4 > len(r.data) {
		return out, errorf(ErrTruncated, "stored block header")
	}
	n := int(binary.LittleEndian.Uint16(r.data[p:]))
	nn := int(binary.LittleEndian.Uint16(r.data[p+2:]))
	if n+nn != 0xffff {
		return out, errorf(ErrDeflate, "stored block length check")
	}
	p += 4
	if p+n > len(r.data) {
		return out, errorf(ErrTruncated, "stored block data")
	}
	if ceil >= 0 && len(out)+n > ceil {
		return out, errorf(ErrTooLarge, "inflated past %d bytes", ceil)
	}
	out = append(out, r.data[p:p+n]...)
	r.pos = (p + n) * 8
	return out, nil
}

func readDynamicTables(r *bitReader, ll, d *huffmanTable) error {
	hlit := int(r.bits(5)) + 257
	hdist := int(r.bits(5)) + 1
	hclen := int(r.bits(4)) + 4
	if r.overrun() {
		return errorf(ErrTruncated, "dynamic header")
	}
	if hlit > 286 || hdist > 30 {
		return errorf(ErrDeflate, "hlit %d hdist %d", hlit, hdist)
	}

	var clcl [numCodeLen]uint8
	for i := 0; i < hclen; i++ {
		clcl[clclOrder[i]] = uint8(r.bits(3))
	}
	var cl huffmanTable
	if err := cl.build(clcl[:]); err != nil {
		return err
	}

	lengths := make([]uint8, hlit+hdist)
	for i := 0; i < len(lengths); {
		sym, err := cl.decode(r)
		if err != nil {
			return err
		}
		if r.overrun() {
			return errorf(ErrTruncated, "code lengths")
		}
		var value uint8
		var repeat int
		switch {
		case sym < 16:
			lengths[i] = uint8(sym)
			i++
			continue
		case sym == 16:
			if i == 0 {
				return errorf(ErrDeflate, "repeat with no previous length")
			}
			value = lengths[i-1]
			repeat = 3 + int(r.bits(2))
		case sym == 17:
			repeat = 3 + int(r.bits(3))
		default:
			repeat = 11 + int(r.bits(7))
		}
		if i+repeat > len(lengths) {
			return errorf(ErrDeflate, "code lengths overflow")
		}
		for ; repeat > 0; repeat-- {
			lengths[i] = value
			i++
		}
	}
	if lengths[endOfBlock] == 0 {
		return errorf(ErrDeflate, "missing end of block code")
	}
	if err := ll.build(lengths[:hlit]); err != nil {
		return err
	}
	return d.build(lengths[hlit:])
}

func inflateHuffman(out []byte, r *bitReader, ll, d *huffmanTable, ceil int) ([]byte, error) {
	for {
		if ceil >= 0 && len(out) > ceil {
			return out, errorf(ErrTooLarge, "inflated past %d bytes", ceil)
		}
		sym, err := ll.decode(r)
		if err != nil {
			return out, err
		}
		if r.overrun() {
			return out, errorf(ErrTruncated, "literal")
		}
		switch {
		case sym < 256:
			out = append(out, byte(sym))
			continue
		case sym == endOfBlock:
			return out, nil
		case sym > 285:
			return out, errorf(ErrDeflate, "length symbol %d", sym)
		}
		sym -= firstLength
		length := int(lengthBase[sym]) + int(r.bits(int(lengthExtra[sym])))

		dsym, err := d.decode(r)
		if err != nil {
			return out, err
		}
		if dsym > 29 {
			return out, errorf(ErrDeflate, "distance symbol %d", dsym)
		}
		dist := int(distBase[dsym]) + int(r.bits(int(distExtra[dsym])))
		if r.overrun() {
			return out, errorf(ErrTruncated, "match")
		}
		if dist > len(out) {
			return out, errorf(ErrDeflate, "distance %d too far back", dist)
		}
		start := len(out) - dist
		if dist >= length {
			out = append(out, out[start:start+length]...)
			continue
		}
		for i := 0; i < length; i++ {
			out = append(out, out[start+i])
		}
	}
}
