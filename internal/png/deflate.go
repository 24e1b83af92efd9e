// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package png

// BlockType selects how Deflate encodes its blocks.
type BlockType uint8

// DEFLATE block types.
const (
	Stored  BlockType = 0
	Fixed   BlockType = 1
	Dynamic BlockType = 2
)

// CompressSettings tunes the DEFLATE compressor.
type CompressSettings struct {
	BlockType    BlockType
	UseLZ77      bool
	WindowSize   int // power of two, at most 32768
	MinMatch     int // shortest match emitted, at least 3
	NiceMatch    int // stop searching once a match this long is found
	LazyMatching bool
}

// DefaultCompressSettings returns dynamic blocks over a 2048 byte window
// with lazy matching.
func DefaultCompressSettings() CompressSettings {
	return CompressSettings{
		BlockType:    Dynamic,
		UseLZ77:      true,
		WindowSize:   2048,
		MinMatch:     3,
		NiceMatch:    128,
		LazyMatching: true,
	}
}

func (s CompressSettings) validate() error {
	if s.BlockType > Dynamic {
		return errorf(ErrSettings, "block type %d", s.BlockType)
	}
	if s.BlockType == Stored || !s.UseLZ77 {
		return nil
	}
	if s.WindowSize <= 0 || s.WindowSize > maxWindow || s.WindowSize&(s.WindowSize-1) != 0 {
		return errorf(ErrSettings, "window size %d", s.WindowSize)
	}
	return nil
}

const (
	hashBits       = 16
	hashSize       = 1 << hashBits
	hashMask       = hashSize - 1
	maxStoredBlock = 65535
)

// token is an LZ77 symbol: a literal byte, or a length/distance pair.
type token struct {
	length uint16 // zero for literals
	value  uint16 // literal byte or distance
}

// matcher finds back references through hash chains keyed by three bytes.
type matcher struct {
	head     []int32
	prev     []int32
	window   int
	maxChain int
	nice     int
}

func newMatcher(s CompressSettings) *matcher {
	m := &matcher{
		head:     make([]int32, hashSize),
		prev:     make([]int32, s.WindowSize),
		window:   s.WindowSize,
		maxChain: s.WindowSize,
		nice:     s.NiceMatch,
	}
	if s.WindowSize < 8192 {
		m.maxChain = s.WindowSize / 8
	}
	if m.nice <= 0 || m.nice > maxMatch {
		m.nice = maxMatch
	}
	for i := range m.head {
		m.head[i] = -1
	}
	return m
}

func hash3(data []byte, pos int) int {
	return int(uint32(data[pos])^uint32(data[pos+1])<<4^uint32(data[pos+2])<<8) & hashMask
}

func (m *matcher) insert(data []byte, pos, end int) {
	if pos+3 > end {
		return
	}
	h := hash3(data, pos)
	m.prev[pos&(m.window-1)] = m.head[h]
	m.head[h] = int32(pos)
}

func (m *matcher) find(data []byte, pos, end int) (length, dist int) {
	if pos+3 > end {
		return 0, 0
	}
	limit := end - pos
	if limit > maxMatch {
		limit = maxMatch
	}
	cand := int(m.head[hash3(data, pos)])
	for chain := 0; cand >= 0 && chain < m.maxChain; chain++ {
		d := pos - cand
		if d <= 0 || d > m.window {
			break
		}
		if data[cand+length] == data[pos+length] {
			n := 0
			for n < limit && data[cand+n] == data[pos+n] {
				n++
			}
			if n > length {
				length, dist = n, d
				if n >= m.nice || n >= limit {
					break
				}
			}
		}
		next := int(m.prev[cand&(m.window-1)])
		if next >= cand {
			break
		}
		cand = next
	}
	return length, dist
}

// lz77 tokenizes data[start:end]; earlier bytes may be referenced.
func (m *matcher) lz77(dst []token, data []byte, start, end int, s CompressSettings) []token {
	minMatch := s.MinMatch
	if minMatch < 3 {
		minMatch = 3
	}
	pos := start
	for pos < end {
		length, dist := m.find(data, pos, end)
		m.insert(data, pos, end)
		if s.LazyMatching && length >= 3 && length < maxMatch && pos+1 < end {
			if l2, d2 := m.find(data, pos+1, end); l2 > length+1 {
				dst = append(dst, token{value: uint16(data[pos])})
				pos++
				length, dist = l2, d2
				m.insert(data, pos, end)
			}
		}
		// a distant three byte match costs more than three literals
		if length < minMatch || (length == 3 && dist > 4096) {
			dst = append(dst, token{value: uint16(data[pos])})
			pos++
			continue
		}
		dst = append(dst, token{length: uint16(length), value: uint16(dist)})
		for i := 1; i < length; i++ {
			m.insert(data, pos+i, end)
		}
		pos += length
	}
	return dst
}

func literalTokens(dst []token, data []byte) []token {
	for _, b := range data {
		dst = append(dst, token{value: uint16(b)})
	}
	return dst
}

func lengthSymbol(length int) (sym int, extra uint32) {
	i := len(lengthBase) - 1
	for int(lengthBase[i]) > length {
		i--
	}
	return firstLength + i, uint32(length - int(lengthBase[i]))
}

func distSymbol(dist int) (sym int, extra uint32) {
	i := len(distBase) - 1
	for int(distBase[i]) > dist {
		i--
	}
	return i, uint32(dist - int(distBase[i]))
}

// Deflate compresses data into a raw DEFLATE stream.
func Deflate(data []byte, s CompressSettings) ([]byte, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	w := &bitWriter{out: make([]byte, 0, len(data)/2+64)}

	if s.BlockType == Stored {
		writeStored(w, data)
		return w.out, nil
	}

	blockSize := len(data)/8 + 8
	if blockSize < 65536 {
		blockSize = 65536
	}
	if blockSize > 262144 {
		blockSize = 262144
	}

	var m *matcher
	if s.UseLZ77 {
		m = newMatcher(s)
	}
	var tokens []token
	for start := 0; ; start += blockSize {
		end := start + blockSize
		final := end >= len(data)
		if final {
			end = len(data)
		}
		tokens = tokens[:0]
		if m != nil {
			tokens = m.lz77(tokens, data, start, end, s)
		} else {
			tokens = literalTokens(tokens, data[start:end])
		}
		if s.BlockType == Fixed {
			writeFixedBlock(w, tokens, final)
		} else {
			writeDynamicBlock(w, tokens, final)
		}
		if final {
			break
		}
	}
	w.flush()
	return w.out, nil
}

func writeStored(w *bitWriter, data []byte) {
	for start := 0; ; start += maxStoredBlock {
		end := start + maxStoredBlock
		final := end >= len(data)
		if final {
			end = len(data)
		}
		n := end - start
		if final {
			w.write(1, 1)
		} else {
			w.write(0, 1)
		}
		w.write(0, 2)
		w.flush()
		w.out = append(w.out, byte(n), byte(n>>8), byte(^n), byte(^n>>8))
		w.out = append(w.out, data[start:end]...)
		if final {
			return
		}
	}
}

func writeTokens(w *bitWriter, tokens []token, ll, d huffmanCode) {
	for _, t := range tokens {
		if t.length == 0 {
			ll.write(w, int(t.value))
			continue
		}
		sym, extra := lengthSymbol(int(t.length))
		ll.write(w, sym)
		w.write(extra, uint(lengthExtra[sym-firstLength]))
		dsym, dextra := distSymbol(int(t.value))
		d.write(w, dsym)
		w.write(dextra, uint(distExtra[dsym]))
	}
	ll.write(w, endOfBlock)
}

func writeFixedBlock(w *bitWriter, tokens []token, final bool) {
	if final {
		w.write(1, 1)
	} else {
		w.write(0, 1)
	}
	w.write(uint32(Fixed), 2)
	ll, d := fixedEncoders()
	writeTokens(w, tokens, ll, d)
}

var fixedEncoders = func() func() (huffmanCode, huffmanCode) {
	ll := newHuffmanCode(fixedLitLenLengths())
	d := newHuffmanCode(fixedDistLengths())
	return func() (huffmanCode, huffmanCode) { return ll, d }
}()

func writeDynamicBlock(w *bitWriter, tokens []token, final bool) {
	freqLL := make([]uint32, 286)
	freqD := make([]uint32, 30)
	for _, t := range tokens {
		if t.length == 0 {
			freqLL[t.value]++
			continue
		}
		sym, _ := lengthSymbol(int(t.length))
		freqLL[sym]++
		dsym, _ := distSymbol(int(t.value))
		freqD[dsym]++
	}
	freqLL[endOfBlock] = 1

	llLengths := codeLengths(freqLL, maxCodeBits)
	dLengths := codeLengths(freqD, maxCodeBits)

	hlit := 286
	for hlit > 257 && llLengths[hlit-1] == 0 {
		hlit--
	}
	hdist := 30
	for hdist > 1 && dLengths[hdist-1] == 0 {
		hdist--
	}

	all := make([]uint8, 0, hlit+hdist)
	all = append(all, llLengths[:hlit]...)
	all = append(all, dLengths[:hdist]...)
	rle := runLengthCodes(all)

	freqCL := make([]uint32, numCodeLen)
	for _, c := range rle {
		freqCL[c.sym]++
	}
	clLengths := codeLengths(freqCL, maxCLCLBits)
	hclen := numCodeLen
	for hclen > 4 && clLengths[clclOrder[hclen-1]] == 0 {
		hclen--
	}

	if final {
		w.write(1, 1)
	} else {
		w.write(0, 1)
	}
	w.write(uint32(Dynamic), 2)
	w.write(uint32(hlit-257), 5)
	w.write(uint32(hdist-1), 5)
	w.write(uint32(hclen-4), 4)
	for i := 0; i < hclen; i++ {
		w.write(uint32(clLengths[clclOrder[i]]), 3)
	}
	cl := newHuffmanCode(clLengths)
	for _, c := range rle {
		cl.write(w, int(c.sym))
		switch c.sym {
		case 16:
			w.write(uint32(c.extra), 2)
		case 17:
			w.write(uint32(c.extra), 3)
		case 18:
			w.write(uint32(c.extra), 7)
		}
	}
	writeTokens(w, tokens, newHuffmanCode(llLengths), newHuffmanCode(dLengths))
}

type clSymbol struct {
	sym   uint8
	extra uint8
}

// runLengthCodes encodes a code length sequence with the repeat symbols
// 16 (previous, 3-6), 17 (zeros, 3-10) and 18 (zeros, 11-138).
func runLengthCodes(lengths []uint8) []clSymbol {
	var out []clSymbol
	for i := 0; i < len(lengths); {
		v := lengths[i]
		run := 1
		for i+run < len(lengths) && lengths[i+run] == v {
			run++
		}
		if v == 0 {
			for run >= 11 {
				n := min(run, 138)
				out = append(out, clSymbol{18, uint8(n - 11)})
				run -= n
				i += n
			}
			if run >= 3 {
				out = append(out, clSymbol{17, uint8(run - 3)})
				i += run
				run = 0
			}
		} else if run >= 4 {
			out = append(out, clSymbol{v, 0})
			i++
			run--
			for run >= 3 {
				n := min(run, 6)
				out = append(out, clSymbol{16, uint8(n - 3)})
				run -= n
				i += n
			}
		}
		for ; run > 0; run-- {
			out = append(out, clSymbol{v, 0})
			i++
		}
	}
	return out
}
