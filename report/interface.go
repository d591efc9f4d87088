package report

// FileAccessReporter is an interface to report file access events
type FileAccessReporter interface {
	Release()

	// StartFileAccess marks the beginning of accesses to the file
	StartFileAccess(path string) error
	// FileAccess reports a single read of the given length at offset
	FileAccess(path string, offset int64, length int64) error
	// DoneFileAccess marks the end of accesses to the file
	DoneFileAccess(path string) error
}
