package fs

import (
	"io"

	log "github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/parafs/parafs-common/utils"
)

// ReadPos turns a PosReader into a sequential read/seek stream by keeping an
// instance-local position. Two instances over the same shared PosReader never
// observe each other's position, so they are safe to operate concurrently
// from different threads.
type ReadPos struct {
	reader PosReader
	pos    int64
	length int64
}

// NewReadPos create a new ReadPos with the given logical length bound.
// The initial position is 0. The length is not checked against the
// underlying reader and is used to bound reads and interpret SeekEnd.
func NewReadPos(reader PosReader, length int64) *ReadPos {
	return &ReadPos{
		reader: reader,
		pos:    0,
		length: length,
	}
}

// NewReadPosFromReader create a new ReadPos bounded by the reader's size
func NewReadPosFromReader(reader PosReader) *ReadPos {
	return NewReadPos(reader, reader.Size())
}

// GetPath returns path of the file
func (reader *ReadPos) GetPath() string {
	return reader.reader.GetPath()
}

// Length returns the length bound as provided on construction
func (reader *ReadPos) Length() int64 {
	return reader.length
}

// Tell returns the current instance position
func (reader *ReadPos) Tell() int64 {
	return reader.pos
}

// Clone returns a new, independent ReadPos over the same PosReader,
// with the same length bound, at position 0
func (reader *ReadPos) Clone() *ReadPos {
	return NewReadPos(reader.reader, reader.length)
}

// PReadAt reads data at offset, delegating to the underlying PosReader
func (reader *ReadPos) PReadAt(buffer []byte, offset int64) (int, error) {
	return reader.reader.PReadAt(buffer, offset)
}

// Size returns the length bound, implements PosReader
func (reader *ReadPos) Size() int64 {
	return reader.length
}

// Release releases this instance. The underlying PosReader's lifecycle is
// managed by the caller (e.g. via SharedFile references).
func (reader *ReadPos) Release() {
}

// Read reads data at the current position, advancing it by the bytes read
func (reader *ReadPos) Read(buffer []byte) (int, error) {
	logger := log.WithFields(log.Fields{
		"package":  "fs",
		"struct":   "ReadPos",
		"function": "Read",
	})

	defer utils.StackTraceFromPanic(logger)

	if reader.pos >= reader.length {
		return 0, io.EOF
	}

	remaining := reader.length - reader.pos
	if int64(len(buffer)) > remaining {
		buffer = buffer[:remaining]
	}

	readLen, err := reader.reader.PReadAt(buffer, reader.pos)
	reader.pos += int64(readLen)
	if err != nil && err != io.EOF {
		return readLen, err
	}

	// may return EOF as well
	return readLen, err
}

// Seek sets the position per standard seek semantics, relative to the length
// bound for io.SeekEnd. Positions past the bound clamp to the bound. Seeking
// to a negative position fails.
func (reader *ReadPos) Seek(offset int64, whence int) (int64, error) {
	var origin int64
	switch whence {
	case io.SeekStart:
		origin = 0
	case io.SeekCurrent:
		origin = reader.pos
	case io.SeekEnd:
		origin = reader.length
	default:
		return 0, xerrors.Errorf("invalid seek whence %d", whence)
	}

	newPos := origin + offset
	if newPos < 0 {
		return 0, xerrors.Errorf("invalid seek to negative position %d", newPos)
	}

	if newPos > reader.length {
		newPos = reader.length
	}

	reader.pos = newPos
	return newPos, nil
}
