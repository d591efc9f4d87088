package fs

import (
	log "github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/parafs/parafs-common/mem"
)

// MemMap returns a read-only memory mapped view of the slice window
// [start, end), wrapped in a mem.MemHandle that owns the unmapping on its
// last release. The mapping is created on demand and is not cached by the
// slice. Only file backed PosReaders can be mapped.
func (slice *ReadSlice) MemMap() (*mem.MemHandle, error) {
	logger := log.WithFields(log.Fields{
		"package":  "fs",
		"struct":   "ReadSlice",
		"function": "MemMap",
	})

	fileBacked, ok := slice.reader.(FileBacked)
	if !ok {
		return nil, xerrors.Errorf("reader for %q is not file backed", slice.GetPath())
	}

	if slice.end <= slice.start {
		return nil, xerrors.Errorf("cannot map empty slice range [%d, %d)", slice.start, slice.end)
	}

	logger.Debugf("Mapping %q range [%d, %d)", slice.GetPath(), slice.start, slice.end)

	mapped, view, err := mmapRange(fileBacked.File(), slice.start, slice.end)
	if err != nil {
		return nil, xerrors.Errorf("failed to map %q range [%d, %d): %w", slice.GetPath(), slice.start, slice.end, err)
	}

	return mem.NewMemHandleWithRelease(view, func() error {
		return munmapRange(mapped)
	}), nil
}
