package io

import (
	"io"
)

// GatheringReader presents a continuous read stream over N discontiguous
// byte buffers, advancing buffer by buffer within a single Read call. This
// is cheaper than chaining per-buffer readers for many reads over many
// buffers. The buffer sequence is stored as-is, no copying or concatenation.
//
// The read cursor is exclusively owned by one caller. Distinct instances
// over the same buffers are safe to use concurrently, the buffers are only
// read.
type GatheringReader struct {
	buffers [][]byte
	index   int
	offset  int
}

// NewGatheringReader create a new GatheringReader over the given buffers
func NewGatheringReader(buffers [][]byte) *GatheringReader {
	return &GatheringReader{
		buffers: buffers,
		index:   0,
		offset:  0,
	}
}

// Read copies data into buffer, crossing source buffer boundaries within the
// same call until the buffer is full or all source buffers are exhausted.
// Returns (0, io.EOF) on full exhaustion. Empty source buffers are skipped.
func (reader *GatheringReader) Read(buffer []byte) (int, error) {
	if len(buffer) == 0 {
		return 0, nil
	}

	totalReadLen := 0
	for reader.index < len(reader.buffers) {
		current := reader.buffers[reader.index]
		if reader.offset >= len(current) {
			reader.index++
			reader.offset = 0
			continue
		}

		copyLen := copy(buffer[totalReadLen:], current[reader.offset:])
		reader.offset += copyLen
		totalReadLen += copyLen

		if totalReadLen == len(buffer) {
			return totalReadLen, nil
		}
	}

	if totalReadLen == 0 {
		return 0, io.EOF
	}
	return totalReadLen, nil
}
