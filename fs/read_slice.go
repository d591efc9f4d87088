package fs

import (
	"io"

	log "github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/parafs/parafs-common/utils"
)

// ReadSlice is a ReadPos further bounded to a fixed [start, end) byte range
// of the underlying PosReader. Seeks are relative to the window, so a seek
// to offset 0 is always the first byte of the slice. Reads never cross end.
type ReadSlice struct {
	reader PosReader
	start  int64
	pos    int64 // absolute position within the underlying reader
	end    int64
}

// NewReadSlice create a new ReadSlice for the byte range [start, end).
// The initial position is at start (relative offset 0).
func NewReadSlice(reader PosReader, start int64, end int64) (*ReadSlice, error) {
	if start < 0 {
		return nil, xerrors.Errorf("invalid slice start %d", start)
	}
	if start > end {
		return nil, xerrors.Errorf("invalid slice range [%d, %d)", start, end)
	}

	return &ReadSlice{
		reader: reader,
		start:  start,
		pos:    start,
		end:    end,
	}, nil
}

// GetPath returns path of the file
func (slice *ReadSlice) GetPath() string {
	return slice.reader.GetPath()
}

// Length returns the total size of the slice in bytes
func (slice *ReadSlice) Length() int64 {
	return slice.end - slice.start
}

// Tell returns the current position, relative to the slice
func (slice *ReadSlice) Tell() int64 {
	return slice.pos - slice.start
}

// Clone returns a new, independent ReadSlice with the same window,
// positioned at start
func (slice *ReadSlice) Clone() *ReadSlice {
	return &ReadSlice{
		reader: slice.reader,
		start:  slice.start,
		pos:    slice.start,
		end:    slice.end,
	}
}

// Subslice returns a new and independent ReadSlice for the range
// [start, end) relative to this slice. The range must be fully contained.
func (slice *ReadSlice) Subslice(start int64, end int64) (*ReadSlice, error) {
	if start < 0 || start > end {
		return nil, xerrors.Errorf("invalid subslice range [%d, %d)", start, end)
	}

	absStart := slice.start + start
	absEnd := slice.start + end
	if absEnd > slice.end {
		return nil, xerrors.Errorf("subslice range [%d, %d) not contained in [%d, %d)", absStart, absEnd, slice.start, slice.end)
	}

	return NewReadSlice(slice.reader, absStart, absEnd)
}

// Size returns the slice length, implements PosReader
func (slice *ReadSlice) Size() int64 {
	return slice.end - slice.start
}

// Release releases this instance. The underlying PosReader's lifecycle is
// managed by the caller.
func (slice *ReadSlice) Release() {
}

// preadAbs reads at an absolute position, clamped so reads never cross end
func (slice *ReadSlice) preadAbs(buffer []byte, absPos int64) (int, error) {
	if absPos >= slice.end {
		return 0, io.EOF
	}

	maxLen := slice.end - absPos
	clamped := false
	if int64(len(buffer)) > maxLen {
		buffer = buffer[:maxLen]
		clamped = true
	}

	readLen, err := slice.reader.PReadAt(buffer, absPos)
	if err == nil && clamped {
		// the requested range runs past the window end
		err = io.EOF
	}
	return readLen, err
}

// PReadAt reads data at the given slice-relative offset, implements PosReader
func (slice *ReadSlice) PReadAt(buffer []byte, offset int64) (int, error) {
	if offset < 0 {
		return 0, xerrors.Errorf("failed to read %q at negative offset %d", slice.GetPath(), offset)
	}

	return slice.preadAbs(buffer, slice.start+offset)
}

// Read reads data at the current position, advancing it by the bytes read
func (slice *ReadSlice) Read(buffer []byte) (int, error) {
	logger := log.WithFields(log.Fields{
		"package":  "fs",
		"struct":   "ReadSlice",
		"function": "Read",
	})

	defer utils.StackTraceFromPanic(logger)

	readLen, err := slice.preadAbs(buffer, slice.pos)
	slice.pos += int64(readLen)
	if err != nil && err != io.EOF {
		return readLen, err
	}

	// may return EOF as well
	return readLen, err
}

// Seek sets the position per standard seek semantics, relative to the
// window. Positions past end clamp to end. Seeking before the window start
// fails.
func (slice *ReadSlice) Seek(offset int64, whence int) (int64, error) {
	var origin int64
	switch whence {
	case io.SeekStart:
		origin = slice.start
	case io.SeekCurrent:
		origin = slice.pos
	case io.SeekEnd:
		origin = slice.end
	default:
		return 0, xerrors.Errorf("invalid seek whence %d", whence)
	}

	newPos := origin + offset
	if newPos < slice.start {
		return 0, xerrors.Errorf("invalid seek to negative position %d", newPos-slice.start)
	}

	if newPos > slice.end {
		newPos = slice.end
	}

	slice.pos = newPos
	return newPos - slice.start, nil
}
