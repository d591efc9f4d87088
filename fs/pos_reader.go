package fs

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/rs/xid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/parafs/parafs-common/utils"
)

// PosReader is the capability to read at an absolute offset.
// PReadAt must not rely on or disturb any shared file position cursor, so
// multiple callers may use the same PosReader concurrently without locking.
type PosReader interface {
	GetPath() string

	// PReadAt reads up to len(buffer) bytes starting at the absolute offset.
	// It returns (0, io.EOF) at or past the end of data.
	PReadAt(buffer []byte, offset int64) (int, error)
	// Size returns the logical size of the underlying data
	Size() int64

	Release()
}

// FileBacked is implemented by PosReaders backed by an os file
type FileBacked interface {
	File() *os.File
}

func preadFile(file *os.File, path string, buffer []byte, offset int64) (int, error) {
	if offset < 0 {
		return 0, xerrors.Errorf("failed to read %q at negative offset %d", path, offset)
	}

	if len(buffer) == 0 {
		return 0, nil
	}

	// os.File.ReadAt is a positioned read and does not touch the file cursor
	readLen, err := file.ReadAt(buffer, offset)
	if err != nil && err != io.EOF {
		return readLen, err
	}

	// may return EOF as well
	return readLen, err
}

// OwnedFile is a PosReader that exclusively owns the underlying file
type OwnedFile struct {
	file *os.File
	path string
	size int64
}

// OpenOwnedFile opens the file at path and create a new OwnedFile
func OpenOwnedFile(path string) (*OwnedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("failed to open file %q: %w", path, err)
	}

	ownedFile, err := NewOwnedFile(file)
	if err != nil {
		file.Close() //nolint
		return nil, err
	}

	return ownedFile, nil
}

// NewOwnedFile create a new OwnedFile taking ownership of the given file
func NewOwnedFile(file *os.File) (*OwnedFile, error) {
	stat, err := file.Stat()
	if err != nil {
		return nil, xerrors.Errorf("failed to stat file %q: %w", file.Name(), err)
	}

	return &OwnedFile{
		file: file,
		path: file.Name(),
		size: stat.Size(),
	}, nil
}

// Release releases all resources, closing the file
func (reader *OwnedFile) Release() {
	if reader.file != nil {
		reader.file.Close() //nolint
		reader.file = nil
	}
}

// GetPath returns path of the file
func (reader *OwnedFile) GetPath() string {
	return reader.path
}

// Size returns size of the file
func (reader *OwnedFile) Size() int64 {
	return reader.size
}

// File returns the underlying file
func (reader *OwnedFile) File() *os.File {
	return reader.file
}

// PReadAt reads data at offset
func (reader *OwnedFile) PReadAt(buffer []byte, offset int64) (int, error) {
	return preadFile(reader.file, reader.path, buffer, offset)
}

// BorrowedFile is a PosReader over a file owned by the caller.
// The caller must keep the file open while the BorrowedFile is in use.
type BorrowedFile struct {
	file *os.File
	path string
	size int64
}

// NewBorrowedFile create a new BorrowedFile, the caller retains ownership
func NewBorrowedFile(file *os.File) (*BorrowedFile, error) {
	stat, err := file.Stat()
	if err != nil {
		return nil, xerrors.Errorf("failed to stat file %q: %w", file.Name(), err)
	}

	return &BorrowedFile{
		file: file,
		path: file.Name(),
		size: stat.Size(),
	}, nil
}

// Release releases all resources, the borrowed file stays open
func (reader *BorrowedFile) Release() {
}

// GetPath returns path of the file
func (reader *BorrowedFile) GetPath() string {
	return reader.path
}

// Size returns size of the file
func (reader *BorrowedFile) Size() int64 {
	return reader.size
}

// File returns the underlying file
func (reader *BorrowedFile) File() *os.File {
	return reader.file
}

// PReadAt reads data at offset
func (reader *BorrowedFile) PReadAt(buffer []byte, offset int64) (int, error) {
	return preadFile(reader.file, reader.path, buffer, offset)
}

type sharedFileCore struct {
	file *os.File
	path string
	size int64
	id   string

	refs atomic.Int64
}

// SharedFile is a reference-counted PosReader over one file.
// Clone adds a reference, Release drops one. The file is closed exactly when
// the last reference is dropped. Callers must not drop the last reference
// while another instance still performs reads against it.
type SharedFile struct {
	core *sharedFileCore

	released bool
}

// OpenSharedFile opens the file at path and create a new SharedFile with one reference
func OpenSharedFile(path string) (*SharedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("failed to open file %q: %w", path, err)
	}

	sharedFile, err := NewSharedFile(file)
	if err != nil {
		file.Close() //nolint
		return nil, err
	}

	return sharedFile, nil
}

// NewSharedFile create a new SharedFile taking ownership of the given file
func NewSharedFile(file *os.File) (*SharedFile, error) {
	stat, err := file.Stat()
	if err != nil {
		return nil, xerrors.Errorf("failed to stat file %q: %w", file.Name(), err)
	}

	core := &sharedFileCore{
		file: file,
		path: file.Name(),
		size: stat.Size(),
		id:   xid.New().String(),
	}
	core.refs.Store(1)

	return &SharedFile{
		core: core,
	}, nil
}

// Clone returns a new instance sharing the underlying file, adding a reference
func (reader *SharedFile) Clone() *SharedFile {
	reader.core.refs.Add(1)

	return &SharedFile{
		core: reader.core,
	}
}

// Release drops this instance's reference, closing the file on the last drop
func (reader *SharedFile) Release() {
	logger := log.WithFields(log.Fields{
		"package":  "fs",
		"struct":   "SharedFile",
		"function": "Release",
	})

	defer utils.StackTraceFromPanic(logger)

	if reader.released {
		return
	}
	reader.released = true

	refs := reader.core.refs.Add(-1)
	if refs == 0 {
		logger.Debugf("Closing shared file - %s, handle %s", reader.core.path, reader.core.id)
		reader.core.file.Close() //nolint
	}
}

// GetPath returns path of the file
func (reader *SharedFile) GetPath() string {
	return reader.core.path
}

// GetID returns id of the shared file handle
func (reader *SharedFile) GetID() string {
	return reader.core.id
}

// Size returns size of the file
func (reader *SharedFile) Size() int64 {
	return reader.core.size
}

// File returns the underlying file
func (reader *SharedFile) File() *os.File {
	return reader.core.file
}

// PReadAt reads data at offset
func (reader *SharedFile) PReadAt(buffer []byte, offset int64) (int, error) {
	return preadFile(reader.core.file, reader.core.path, buffer, offset)
}
