package io

import (
	"bytes"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parafs/parafs-common/fs"
	"github.com/parafs/parafs-common/report"
)

func createTestFile(t *testing.T, data []byte) *os.File {
	tempFile, err := os.CreateTemp(t.TempDir(), "parafs_test")
	assert.NoError(t, err)

	_, err = tempFile.Write(data)
	assert.NoError(t, err)

	return tempFile
}

func makePattern(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte((i * 13) % 251)
	}
	return data
}

func TestBlockReader(t *testing.T) {
	t.Run("test ReadAcrossBlocks", testBlockReaderReadAcrossBlocks)
	t.Run("test ReadAtEnd", testBlockReaderReadAtEnd)
	t.Run("test CachedRead", testBlockReaderCachedRead)
	t.Run("test ConcurrentRead", testBlockReaderConcurrentRead)
}

func testBlockReaderReadAcrossBlocks(t *testing.T) {
	data := makePattern(100)

	tempFile := createTestFile(t, data)
	defer tempFile.Close()

	borrowed, err := fs.NewBorrowedFile(tempFile)
	assert.NoError(t, err)

	blockReader, err := NewBlockReader(borrowed, 16, 4, report.NewLogReporter())
	assert.NoError(t, err)
	defer blockReader.Release()

	// a read spanning multiple blocks
	buffer := make([]byte, 40)
	readLen, err := blockReader.ReadAt(buffer, 10)
	assert.NoError(t, err)
	assert.Equal(t, 40, readLen)
	assert.True(t, bytes.Equal(data[10:50], buffer))

	// an aligned single block read
	buffer = make([]byte, 16)
	readLen, err = blockReader.ReadAt(buffer, 32)
	assert.NoError(t, err)
	assert.Equal(t, 16, readLen)
	assert.True(t, bytes.Equal(data[32:48], buffer))
}

func testBlockReaderReadAtEnd(t *testing.T) {
	data := makePattern(100)

	tempFile := createTestFile(t, data)
	defer tempFile.Close()

	borrowed, err := fs.NewBorrowedFile(tempFile)
	assert.NoError(t, err)

	blockReader, err := NewBlockReader(borrowed, 16, 4, nil)
	assert.NoError(t, err)
	defer blockReader.Release()

	// a read running past the end returns the available bytes and EOF
	buffer := make([]byte, 32)
	readLen, err := blockReader.ReadAt(buffer, 90)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 10, readLen)
	assert.True(t, bytes.Equal(data[90:], buffer[:readLen]))

	// a read entirely past the end returns no bytes
	readLen, err = blockReader.ReadAt(buffer, 200)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 0, readLen)
}

func testBlockReaderCachedRead(t *testing.T) {
	data := makePattern(128)

	tempFile := createTestFile(t, data)
	defer tempFile.Close()

	borrowed, err := fs.NewBorrowedFile(tempFile)
	assert.NoError(t, err)

	blockReader, err := NewBlockReader(borrowed, 32, 2, nil)
	assert.NoError(t, err)
	defer blockReader.Release()

	buffer := make([]byte, 20)

	// the second read of the same block is served from the cache
	readLen, err := blockReader.ReadAt(buffer, 5)
	assert.NoError(t, err)
	assert.Equal(t, 20, readLen)
	assert.True(t, bytes.Equal(data[5:25], buffer))

	readLen, err = blockReader.ReadAt(buffer, 7)
	assert.NoError(t, err)
	assert.Equal(t, 20, readLen)
	assert.True(t, bytes.Equal(data[7:27], buffer))
}

func testBlockReaderConcurrentRead(t *testing.T) {
	data := makePattern(4096)

	tempFile := createTestFile(t, data)
	defer tempFile.Close()

	sharedFile, err := fs.NewSharedFile(tempFile)
	assert.NoError(t, err)

	blockReader, err := NewBlockReader(sharedFile, 256, 8, nil)
	assert.NoError(t, err)
	defer blockReader.Release()

	waitGroup := sync.WaitGroup{}
	for i := 0; i < 20; i++ {
		waitGroup.Add(1)

		go func(index int) {
			defer waitGroup.Done()

			offset := (index * 123) % 3000
			buffer := make([]byte, 512)

			readLen, readErr := blockReader.ReadAt(buffer, int64(offset))
			assert.NoError(t, readErr)
			assert.Equal(t, 512, readLen)
			assert.True(t, bytes.Equal(data[offset:offset+512], buffer))
		}(i)
	}

	waitGroup.Wait()
}
