//go:build !unix

package fs

import (
	"os"

	"golang.org/x/xerrors"
)

func mmapRange(file *os.File, start int64, end int64) ([]byte, []byte, error) {
	return nil, nil, xerrors.Errorf("memory mapping is not supported on this platform")
}

func munmapRange(mapped []byte) error {
	return nil
}
