package fs

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadSlice(t *testing.T) {
	t.Run("test SeekRead", testReadSliceSeekRead)
	t.Run("test SubsliceSeekRead", testReadSliceSubsliceSeekRead)
	t.Run("test WindowClamp", testReadSliceWindowClamp)
	t.Run("test RoundTrip", testReadSliceRoundTrip)
	t.Run("test InvalidRange", testReadSliceInvalidRange)
}

func testReadSliceSeekRead(t *testing.T) {
	tempFile := createTestFile(t, []byte("1234567890"))
	defer tempFile.Close()

	borrowed, err := NewBorrowedFile(tempFile)
	assert.NoError(t, err)

	slice, err := NewReadSlice(borrowed, 0, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(10), slice.Length())

	buffer := make([]byte, 5)

	pos, err := slice.Seek(0, io.SeekCurrent)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), pos)

	pos, err = slice.Seek(1, io.SeekCurrent)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), pos)

	_, err = io.ReadFull(slice, buffer)
	assert.NoError(t, err)
	assert.Equal(t, []byte("23456"), buffer)

	pos, err = slice.Seek(-5, io.SeekEnd)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), pos)
	assert.Equal(t, int64(5), slice.Tell())

	_, err = io.ReadFull(slice, buffer)
	assert.NoError(t, err)
	assert.Equal(t, []byte("67890"), buffer)
}

func testReadSliceSubsliceSeekRead(t *testing.T) {
	tempFile := createTestFile(t, []byte("012345678901"))
	defer tempFile.Close()

	borrowed, err := NewBorrowedFile(tempFile)
	assert.NoError(t, err)

	outer, err := NewReadSlice(borrowed, 1, 12)
	assert.NoError(t, err)

	slice, err := outer.Subslice(0, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(10), slice.Length())

	buffer := make([]byte, 5)

	pos, err := slice.Seek(1, io.SeekCurrent)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), pos)

	_, err = io.ReadFull(slice, buffer)
	assert.NoError(t, err)
	assert.Equal(t, []byte("23456"), buffer)

	pos, err = slice.Seek(-5, io.SeekEnd)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), pos)

	_, err = io.ReadFull(slice, buffer)
	assert.NoError(t, err)
	assert.Equal(t, []byte("67890"), buffer)
}

func testReadSliceWindowClamp(t *testing.T) {
	tempFile := createTestFile(t, []byte("abcdefghij"))
	defer tempFile.Close()

	borrowed, err := NewBorrowedFile(tempFile)
	assert.NoError(t, err)

	slice, err := NewReadSlice(borrowed, 2, 6)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), slice.Length())

	// reads never cross the end of the window
	buffer := make([]byte, 10)
	readLen, err := slice.Read(buffer)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 4, readLen)
	assert.Equal(t, []byte("cdef"), buffer[:readLen])

	readLen, err = slice.Read(buffer)
	assert.Equal(t, 0, readLen)
	assert.Equal(t, io.EOF, err)

	// positioned reads are relative to the window
	readLen, err = slice.PReadAt(buffer, 2)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 2, readLen)
	assert.Equal(t, []byte("ef"), buffer[:readLen])

	readLen, err = slice.PReadAt(buffer, 4)
	assert.Equal(t, 0, readLen)
	assert.Equal(t, io.EOF, err)

	// seeking past the window clamps, seeking before it fails
	pos, err := slice.Seek(100, io.SeekStart)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), pos)

	_, err = slice.Seek(-1, io.SeekStart)
	assert.Error(t, err)
}

func testReadSliceRoundTrip(t *testing.T) {
	data := make([]byte, 16*1024)
	for i := range data {
		data[i] = byte(i % 251)
	}

	tempFile := createTestFile(t, data)
	defer tempFile.Close()

	borrowed, err := NewBorrowedFile(tempFile)
	assert.NoError(t, err)

	slice, err := NewReadSlice(borrowed, 137, 9137)
	assert.NoError(t, err)

	readData, err := io.ReadAll(slice)
	assert.NoError(t, err)
	assert.True(t, bytes.Equal(data[137:9137], readData))

	// an independent clone starts over at the window start
	clone := slice.Clone()
	cloneData, err := io.ReadAll(clone)
	assert.NoError(t, err)
	assert.True(t, bytes.Equal(data[137:9137], cloneData))
}

func testReadSliceInvalidRange(t *testing.T) {
	tempFile := createTestFile(t, []byte("1234567890"))
	defer tempFile.Close()

	borrowed, err := NewBorrowedFile(tempFile)
	assert.NoError(t, err)

	_, err = NewReadSlice(borrowed, 5, 3)
	assert.Error(t, err)

	_, err = NewReadSlice(borrowed, -1, 3)
	assert.Error(t, err)

	slice, err := NewReadSlice(borrowed, 2, 6)
	assert.NoError(t, err)

	_, err = slice.Subslice(2, 10)
	assert.Error(t, err)

	_, err = slice.Subslice(3, 2)
	assert.Error(t, err)
}
