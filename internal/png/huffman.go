// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package png

import "sort"

const (
	maxCodeBits  = 15
	maxCLCLBits  = 7
	primaryBits  = 9
	primarySize  = 1 << primaryBits
	primaryMask  = primarySize - 1
	numLitLen    = 288
	numDist      = 32
	numCodeLen   = 19
	firstLength  = 257
	endOfBlock   = 256
	maxMatch     = 258
	maxWindow    = 32768
	invalidEntry = 0
)

// huffmanTable is a two-level decoding table. The first primarySize entries
// are indexed by the next 9 stream bits. An entry whose length exceeds
// primaryBits points at a secondary table: its value is the table offset and
// its length the longest code sharing that prefix.
type huffmanTable struct {
	lens []uint8
	vals []uint16
}

// build constructs the table from canonical code lengths. Incomplete codes
// are accepted; over-subscribed ones are not.
func (t *huffmanTable) build(lengths []uint8) error {
	var count [maxCodeBits + 1]int
	for _, l := range lengths {
		if l > maxCodeBits {
			return errorf(ErrHuffman, "code length %d", l)
		}
		count[l]++
	}
	count[0] = 0
	left := 1
	for l := 1; l <= maxCodeBits; l++ {
		left <<= 1
		left -= count[l]
		if left < 0 {
			return errorf(ErrHuffman, "over-subscribed code")
		}
	}

	var next [maxCodeBits + 2]uint32
	code := uint32(0)
	for l := 1; l <= maxCodeBits; l++ {
		code = (code + uint32(count[l-1])) << 1
		next[l] = code
	}
	codes := make([]uint32, len(lengths))
	for sym, l := range lengths {
		if l != 0 {
			codes[sym] = reverseBits(next[l], int(l))
			next[l]++
		}
	}

	// longest code per primary prefix decides each secondary table size
	var longest [primarySize]uint8
	for sym, l := range lengths {
		if l > primaryBits {
			p := codes[sym] & primaryMask
			if l > longest[p] {
				longest[p] = l
			}
		}
	}
	size := primarySize
	for _, l := range longest {
		if l > primaryBits {
			size += 1 << (l - primaryBits)
		}
	}

	t.lens = make([]uint8, size)
	t.vals = make([]uint16, size)
	offset := primarySize
	for p, l := range longest {
		if l > primaryBits {
			t.lens[p] = l
			t.vals[p] = uint16(offset)
			offset += 1 << (l - primaryBits)
		}
	}

	for sym, l := range lengths {
		switch {
		case l == 0:
		case l <= primaryBits:
			for i := codes[sym]; i < primarySize; i += 1 << l {
				t.lens[i] = l
				t.vals[i] = uint16(sym)
			}
		default:
			p := codes[sym] & primaryMask
			base := int(t.vals[p])
			sub := int(codes[sym] >> primaryBits)
			step := 1 << (l - primaryBits)
			span := 1 << (longest[p] - primaryBits)
			for i := sub; i < span; i += step {
				t.lens[base+i] = l - primaryBits
				t.vals[base+i] = uint16(sym)
			}
		}
	}
	return nil
}

// decode reads one symbol.
func (t *huffmanTable) decode(r *bitReader) (int, error) {
	bits := r.peek()
	idx := bits & primaryMask
	l := t.lens[idx]
	if l == invalidEntry {
		return 0, errorf(ErrHuffman, "invalid code")
	}
	if l <= primaryBits {
		r.skip(int(l))
		return int(t.vals[idx]), nil
	}
	sub := int(t.vals[idx]) + int((bits>>primaryBits)&(1<<(l-primaryBits)-1))
	l2 := t.lens[sub]
	if l2 == invalidEntry {
		return 0, errorf(ErrHuffman, "invalid code")
	}
	r.skip(primaryBits + int(l2))
	return int(t.vals[sub]), nil
}

// huffmanCode is an encoder-side tree: per symbol, the bit-reversed code and
// its length.
type huffmanCode struct {
	codes   []uint16
	lengths []uint8
}

func newHuffmanCode(lengths []uint8) huffmanCode {
	var count [maxCodeBits + 1]int
	for _, l := range lengths {
		count[l]++
	}
	count[0] = 0
	var next [maxCodeBits + 2]uint32
	code := uint32(0)
	for l := 1; l <= maxCodeBits; l++ {
		code = (code + uint32(count[l-1])) << 1
		next[l] = code
	}
	h := huffmanCode{codes: make([]uint16, len(lengths)), lengths: lengths}
	for sym, l := range lengths {
		if l != 0 {
			h.codes[sym] = uint16(reverseBits(next[l], int(l)))
			next[l]++
		}
	}
	return h
}

func (h huffmanCode) write(w *bitWriter, sym int) {
	w.writeCode(h.codes[sym], h.lengths[sym])
}

// pmNode is an item of a package-merge list: a leaf symbol or a package of
// two items from the previous level.
type pmNode struct {
	weight      uint64
	sym         int
	left, right *pmNode
}

// codeLengths computes length-limited Huffman code lengths with the
// package-merge algorithm. Symbols with zero frequency get length zero. When
// fewer than two symbols occur, two codes of length one are still assigned so
// the resulting tree is complete.
func codeLengths(freqs []uint32, maxBits int) []uint8 {
	lengths := make([]uint8, len(freqs))
	leaves := make([]*pmNode, 0, len(freqs))
	for sym, f := range freqs {
		if f > 0 {
			leaves = append(leaves, &pmNode{weight: uint64(f), sym: sym})
		}
	}
	switch len(leaves) {
	case 0:
		lengths[0], lengths[1] = 1, 1
		return lengths
	case 1:
		lengths[leaves[0].sym] = 1
		if leaves[0].sym == 0 {
			lengths[1] = 1
		} else {
			lengths[0] = 1
		}
		return lengths
	}
	sort.SliceStable(leaves, func(i, j int) bool { return leaves[i].weight < leaves[j].weight })

	list := leaves
	for level := 1; level < maxBits; level++ {
		packages := make([]*pmNode, 0, len(list)/2)
		for i := 0; i+1 < len(list); i += 2 {
			packages = append(packages, &pmNode{
				weight: list[i].weight + list[i+1].weight,
				sym:    -1,
				left:   list[i],
				right:  list[i+1],
			})
		}
		merged := make([]*pmNode, 0, len(leaves)+len(packages))
		i, j := 0, 0
		for i < len(leaves) || j < len(packages) {
			if j >= len(packages) || (i < len(leaves) && leaves[i].weight <= packages[j].weight) {
				merged = append(merged, leaves[i])
				i++
			} else {
				merged = append(merged, packages[j])
				j++
			}
		}
		list = merged
	}

	var count func(n *pmNode)
	count = func(n *pmNode) {
		if n.sym >= 0 {
			lengths[n.sym]++
			return
		}
		count(n.left)
		count(n.right)
	}
	for _, n := range list[:2*len(leaves)-2] {
		count(n)
	}
	return lengths
}
