// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package png

import (
	"encoding/binary"
	"hash/adler32"
)

// ZlibDecompress inflates a zlib stream. The trailing Adler-32 is verified
// unless ignoreAdler is set.
func ZlibDecompress(dst, src []byte, ignoreAdler bool) ([]byte, error) {
	return zlibDecompress(dst, src, ignoreAdler, 0)
}

func zlibDecompress(dst, src []byte, ignoreAdler bool, limit int) ([]byte, error) {
	if len(src) < 2 {
		return dst, errorf(ErrTruncated, "zlib header")
	}
	cmf, flg := src[0], src[1]
	if (uint(cmf)*256+uint(flg))%31 != 0 {
		return dst, errorf(ErrZlibHeader, "check bits")
	}
	if cmf&15 != 8 || cmf>>4 > 7 {
		return dst, errorf(ErrZlibHeader, "method %d window %d", cmf&15, cmf>>4)
	}
	if flg&0x20 != 0 {
		return dst, errorf(ErrUnsupported, "preset dictionary")
	}

	start := len(dst)
	out, n, err := inflate(dst, src[2:], limit)
	if err != nil {
		return out, err
	}
	if ignoreAdler {
		return out, nil
	}
	tail := src[2+n:]
	if len(tail) < 4 {
		return out, errorf(ErrTruncated, "adler32")
	}
	if binary.BigEndian.Uint32(tail) != adler32.Checksum(out[start:]) {
		return out, ErrAdler32
	}
	return out, nil
}

// ZlibCompress deflates data into a zlib stream.
func ZlibCompress(data []byte, s CompressSettings) ([]byte, error) {
	body, err := Deflate(data, s)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(body)+6)
	out = append(out, 0x78, 0x01)
	out = append(out, body...)
	return binary.BigEndian.AppendUint32(out, adler32.Checksum(data)), nil
}
