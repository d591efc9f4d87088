//go:build unix

package fs

import (
	"os"

	"golang.org/x/sys/unix"
)

// mmapRange maps [start, end) of the file read-only. The mapping itself is
// page aligned as the platform requires, the returned view covers exactly
// [start, end).
func mmapRange(file *os.File, start int64, end int64) ([]byte, []byte, error) {
	pageSize := int64(os.Getpagesize())
	mapStart := start - (start % pageSize)
	mapLen := end - mapStart

	mapped, err := unix.Mmap(int(file.Fd()), mapStart, int(mapLen), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}

	delta := start - mapStart
	return mapped, mapped[delta : delta+(end-start)], nil
}

func munmapRange(mapped []byte) error {
	return unix.Munmap(mapped)
}
