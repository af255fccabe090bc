// Package vectorset encodes the fragment vectors of a processed document
// into the blob stored alongside its text.
//
// Layout, all integers little-endian:
//
//	magic   [4]byte "FVS1"
//	rank    uint16  always 2
//	rows    uint32
//	dims    uint32
//	data    rows*dims float32, row-major
package vectorset

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrCorrupt is returned when a blob cannot be decoded into a well-formed
// rows x dims matrix.
var ErrCorrupt = errors.New("vectorset: corrupt blob")

const (
	magic      = "FVS1"
	rank       = 2
	headerSize = 4 + 2 + 4 + 4

	// MaxDims bounds the vector width accepted by Decode.
	MaxDims = 1 << 16
)

// Encode serializes vectors, which must all have the same length.
func Encode(vectors [][]float32) ([]byte, error) {
	dims := 0
	if len(vectors) > 0 {
		dims = len(vectors[0])
	}
	for i, v := range vectors {
		if len(v) != dims {
			return nil, fmt.Errorf("vectorset: row %d has %d dims, want %d", i, len(v), dims)
		}
	}

	buf := make([]byte, headerSize+4*len(vectors)*dims)
	copy(buf, magic)
	binary.LittleEndian.PutUint16(buf[4:], rank)
	binary.LittleEndian.PutUint32(buf[6:], uint32(len(vectors)))
	binary.LittleEndian.PutUint32(buf[10:], uint32(dims))

	off := headerSize
	for _, v := range vectors {
		for _, x := range v {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(x))
			off += 4
		}
	}
	return buf, nil
}

// Decode parses a blob produced by Encode. Any structural problem or
// non-finite value yields an error wrapping ErrCorrupt.
func Decode(blob []byte) ([][]float32, error) {
	if len(blob) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorrupt, len(blob))
	}
	if string(blob[:4]) != magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorrupt, blob[:4])
	}
	if r := binary.LittleEndian.Uint16(blob[4:]); r != rank {
		return nil, fmt.Errorf("%w: rank %d, want %d", ErrCorrupt, r, rank)
	}
	rows := uint64(binary.LittleEndian.Uint32(blob[6:]))
	dims := uint64(binary.LittleEndian.Uint32(blob[10:]))

	if dims > MaxDims {
		return nil, fmt.Errorf("%w: %d dims exceeds %d", ErrCorrupt, dims, MaxDims)
	}

	// Compare by division: rows*dims from a crafted header can overflow.
	payload := uint64(len(blob) - headerSize)
	if payload%4 != 0 {
		return nil, fmt.Errorf("%w: payload of %d bytes is not whole float32s", ErrCorrupt, payload)
	}
	cells := payload / 4
	if dims == 0 {
		if rows != 0 || cells != 0 {
			return nil, fmt.Errorf("%w: %d rows of zero width with %d values", ErrCorrupt, rows, cells)
		}
	} else if cells%dims != 0 || cells/dims != rows {
		return nil, fmt.Errorf("%w: %d values for %dx%d", ErrCorrupt, cells, rows, dims)
	}

	vectors := make([][]float32, rows)
	off := headerSize
	for i := range vectors {
		row := make([]float32, dims)
		for j := range row {
			x := math.Float32frombits(binary.LittleEndian.Uint32(blob[off:]))
			if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
				return nil, fmt.Errorf("%w: non-finite value at row %d", ErrCorrupt, i)
			}
			row[j] = x
			off += 4
		}
		vectors[i] = row
	}
	return vectors, nil
}
