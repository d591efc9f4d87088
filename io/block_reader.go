package io

import (
	"fmt"
	"io"
	"sync"

	lrucache "github.com/hashicorp/golang-lru"
	log "github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/parafs/parafs-common/fs"
	"github.com/parafs/parafs-common/report"
	"github.com/parafs/parafs-common/utils"
)

const (
	defaultCachedBlocks int = 5
)

type cachedBlock struct {
	id   int64
	data []byte
	eof  bool // is eof?
}

// BlockReader helps read in block level through an LRU block cache,
// implements Reader. All fetches are positioned reads against the
// underlying PosReader, so multiple BlockReaders may share one file.
type BlockReader struct {
	path string

	reader      fs.PosReader
	rangeHelper *utils.RangeHelper

	lruCache *lrucache.Cache
	mutex    sync.Mutex // serializes block fetch

	reportClient report.FileAccessReporter // can be null
}

// NewBlockReader create a new BlockReader. The BlockReader takes over the
// caller's reference to the PosReader and releases it on Release.
func NewBlockReader(reader fs.PosReader, blockSize int, cachedBlocks int, reportClient report.FileAccessReporter) (Reader, error) {
	if cachedBlocks <= 0 {
		cachedBlocks = defaultCachedBlocks
	}

	lruCache, err := lrucache.New(cachedBlocks)
	if err != nil {
		return nil, xerrors.Errorf("failed to create LRU cache: %w", err)
	}

	blockReader := &BlockReader{
		path: reader.GetPath(),

		reader:      reader,
		rangeHelper: utils.NewRangeHelper(blockSize),

		lruCache: lruCache,

		reportClient: reportClient,
	}

	if reportClient != nil {
		reportClient.StartFileAccess(blockReader.path) //nolint
	}

	return blockReader, nil
}

// Release releases all resources
func (reader *BlockReader) Release() {
	if reader.reportClient != nil {
		reader.reportClient.DoneFileAccess(reader.path) //nolint
		reader.reportClient = nil
	}

	if reader.lruCache != nil {
		reader.lruCache.Purge()
		reader.lruCache = nil
	}

	if reader.reader != nil {
		reader.reader.Release()
		reader.reader = nil
	}
}

// GetPath returns path of the file
func (reader *BlockReader) GetPath() string {
	return reader.path
}

func (reader *BlockReader) getCacheEntryKey(blockID int64) uint64 {
	return utils.MakeFastHash(fmt.Sprintf("%s:%d", reader.path, blockID))
}

// ReadAt reads data
func (reader *BlockReader) ReadAt(buffer []byte, offset int64) (int, error) {
	logger := log.WithFields(log.Fields{
		"package":  "io",
		"struct":   "BlockReader",
		"function": "ReadAt",
	})

	defer utils.StackTraceFromPanic(logger)

	if len(buffer) <= 0 || offset < 0 {
		return 0, nil
	}

	logger.Debugf("Reading data - %s, offset %d, length %d", reader.path, offset, len(buffer))

	blockIDs := reader.rangeHelper.GetBlockIDs(offset, len(buffer))

	currentOffset := offset
	totalReadLen := 0
	for _, blockID := range blockIDs {
		block, err := reader.getBlock(blockID)
		if err != nil {
			return 0, err
		}

		blockStartOffset := reader.rangeHelper.GetBlockStartOffset(blockID)
		inBlockOffset := int(currentOffset - blockStartOffset)

		if inBlockOffset >= len(block.data) {
			if block.eof {
				return totalReadLen, io.EOF
			}
			break
		}

		copyLen := copy(buffer[totalReadLen:], block.data[inBlockOffset:])
		totalReadLen += copyLen
		currentOffset += int64(copyLen)

		if block.eof && inBlockOffset+copyLen == len(block.data) && totalReadLen < len(buffer) {
			// reached end of data before filling the buffer
			if reader.reportClient != nil {
				reader.reportClient.FileAccess(reader.path, offset, int64(totalReadLen)) //nolint
			}
			return totalReadLen, io.EOF
		}

		if totalReadLen == len(buffer) {
			break
		}
	}

	if reader.reportClient != nil {
		reader.reportClient.FileAccess(reader.path, offset, int64(totalReadLen)) //nolint
	}

	return totalReadLen, nil
}

func (reader *BlockReader) getBlock(blockID int64) (*cachedBlock, error) {
	logger := log.WithFields(log.Fields{
		"package":  "io",
		"struct":   "BlockReader",
		"function": "getBlock",
	})

	blockKey := reader.getCacheEntryKey(blockID)

	if cached, ok := reader.lruCache.Get(blockKey); ok {
		logger.Debugf("cache for block %d found - %s", blockID, reader.path)
		return cached.(*cachedBlock), nil
	}

	reader.mutex.Lock()
	defer reader.mutex.Unlock()

	// check again, another caller may have fetched the block meanwhile
	if cached, ok := reader.lruCache.Get(blockKey); ok {
		return cached.(*cachedBlock), nil
	}

	logger.Debugf("cache for block %d not found - %s, read from file", blockID, reader.path)

	blockSize := reader.rangeHelper.GetBlockSize()
	blockStartOffset := reader.rangeHelper.GetBlockStartOffset(blockID)

	blockBuffer := make([]byte, blockSize)
	readLen, err := reader.reader.PReadAt(blockBuffer, blockStartOffset)
	if err != nil && err != io.EOF {
		return nil, err
	}

	block := &cachedBlock{
		id:   blockID,
		data: blockBuffer[:readLen],
		eof:  err == io.EOF,
	}

	reader.lruCache.Add(blockKey, block)
	return block, nil
}
