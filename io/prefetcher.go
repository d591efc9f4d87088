package io

import (
	"context"
	"io"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	"github.com/parafs/parafs-common/fs"
	"github.com/parafs/parafs-common/utils"
)

const (
	prefetchTriggerRatio float32 = 0.3 // determine when to start prefetch
)

// Prefetcher warms the OS page cache with read-ahead blocks of a shared
// file, using positioned reads so running prefetches never disturb other
// readers of the same file.
type Prefetcher struct {
	reader      fs.PosReader
	rangeHelper *utils.RangeHelper
	prefetchMap map[int64]bool
	mutex       sync.Mutex
}

// NewPrefetcher create a new Prefetcher
func NewPrefetcher(reader fs.PosReader, blockSize int) *Prefetcher {
	return &Prefetcher{
		reader:      reader,
		rangeHelper: utils.NewRangeHelper(blockSize),
		prefetchMap: map[int64]bool{},
	}
}

// Determine returns block ids to prefetch for a read at the given offset
func (prefetcher *Prefetcher) Determine(offset int64, size int64) []int64 {
	blockID := prefetcher.rangeHelper.GetBlockIDForOffset(offset)
	blockStartOffset := prefetcher.rangeHelper.GetBlockStartOffset(blockID)
	inBlockOffset := int(offset - blockStartOffset)
	blockSize := prefetcher.rangeHelper.GetBlockSize()
	lastBlockID := prefetcher.rangeHelper.GetLastBlockID(size)

	// do prefetch when current offset passed certain point, e.g., 30% of the block
	triggerPoint := float32(blockSize) * prefetchTriggerRatio
	if inBlockOffset < int(triggerPoint) {
		return nil
	}

	targetBlockID := blockID + 1
	// if current block is the last, prefetch the first block (e.g., zip has entry footer)
	if blockID >= lastBlockID {
		targetBlockID = 0
	}

	prefetcher.mutex.Lock()
	defer prefetcher.mutex.Unlock()

	// if target block is already prefetched
	if _, ok := prefetcher.prefetchMap[targetBlockID]; ok {
		return nil
	}

	// otherwise
	prefetcher.prefetchMap[targetBlockID] = true
	return []int64{targetBlockID}
}

// Prefetch reads the given blocks concurrently, discarding the data
func (prefetcher *Prefetcher) Prefetch(ctx context.Context, blockIDs []int64) error {
	logger := log.WithFields(log.Fields{
		"package":  "io",
		"struct":   "Prefetcher",
		"function": "Prefetch",
	})

	errGroup, groupCtx := errgroup.WithContext(ctx)

	for _, blockID := range blockIDs {
		blockID := blockID
		errGroup.Go(func() error {
			if groupCtx.Err() != nil {
				return groupCtx.Err()
			}

			logger.Debugf("Prefetching block - %s, block id %d", prefetcher.reader.GetPath(), blockID)

			blockStartOffset := prefetcher.rangeHelper.GetBlockStartOffset(blockID)
			buffer := make([]byte, prefetcher.rangeHelper.GetBlockSize())

			_, err := prefetcher.reader.PReadAt(buffer, blockStartOffset)
			if err != nil && err != io.EOF {
				return xerrors.Errorf("failed to prefetch block %d of %q: %w", blockID, prefetcher.reader.GetPath(), err)
			}
			return nil
		})
	}

	return errGroup.Wait()
}
