package report

import (
	"sync"

	"github.com/rs/xid"
	log "github.com/sirupsen/logrus"
)

// LogReporter reports file access events via logs, implements FileAccessReporter
type LogReporter struct {
	instanceID string

	accessCounts map[string]int64
	accessBytes  map[string]int64
	mutex        sync.Mutex
}

// NewLogReporter create a new LogReporter
func NewLogReporter() *LogReporter {
	return &LogReporter{
		instanceID: xid.New().String(),

		accessCounts: map[string]int64{},
		accessBytes:  map[string]int64{},
	}
}

// Release releases all resources
func (reporter *LogReporter) Release() {
	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()

	reporter.accessCounts = map[string]int64{}
	reporter.accessBytes = map[string]int64{}
}

// StartFileAccess marks the beginning of accesses to the file
func (reporter *LogReporter) StartFileAccess(path string) error {
	logger := log.WithFields(log.Fields{
		"package":  "report",
		"struct":   "LogReporter",
		"function": "StartFileAccess",
	})

	logger.Debugf("Start file access - instance %s, path %s", reporter.instanceID, path)

	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()

	reporter.accessCounts[path] = 0
	reporter.accessBytes[path] = 0
	return nil
}

// FileAccess reports a single read of the given length at offset
func (reporter *LogReporter) FileAccess(path string, offset int64, length int64) error {
	logger := log.WithFields(log.Fields{
		"package":  "report",
		"struct":   "LogReporter",
		"function": "FileAccess",
	})

	logger.Debugf("File access - instance %s, path %s, offset %d, length %d", reporter.instanceID, path, offset, length)

	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()

	reporter.accessCounts[path]++
	reporter.accessBytes[path] += length
	return nil
}

// DoneFileAccess marks the end of accesses to the file
func (reporter *LogReporter) DoneFileAccess(path string) error {
	logger := log.WithFields(log.Fields{
		"package":  "report",
		"struct":   "LogReporter",
		"function": "DoneFileAccess",
	})

	reporter.mutex.Lock()
	count := reporter.accessCounts[path]
	bytes := reporter.accessBytes[path]
	delete(reporter.accessCounts, path)
	delete(reporter.accessBytes, path)
	reporter.mutex.Unlock()

	logger.Debugf("Done file access - instance %s, path %s, reads %d, bytes %d", reporter.instanceID, path, count, bytes)
	return nil
}
