package utils

import (
	"runtime/debug"

	log "github.com/sirupsen/logrus"
)

// StackTraceFromPanic logs stack trace for a panic, then resumes the panic
func StackTraceFromPanic(logger *log.Entry) {
	if r := recover(); r != nil {
		logger.Errorf("panic: %v", r)
		logger.Errorf("%s", string(debug.Stack()))
		panic(r)
	}
}
