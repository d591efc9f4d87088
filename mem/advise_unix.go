//go:build unix

package mem

import (
	"golang.org/x/sys/unix"
)

// osAdvise relays the advice level via madvise
func osAdvise(data []byte, advice MemAdvice) error {
	if len(data) == 0 {
		return nil
	}

	var flag int
	switch advice {
	case AdviceRandom:
		flag = unix.MADV_RANDOM
	case AdviceSequential:
		flag = unix.MADV_SEQUENTIAL
	case AdviceWillNeed:
		flag = unix.MADV_WILLNEED
	case AdviceDontNeed:
		flag = unix.MADV_DONTNEED
	default:
		flag = unix.MADV_NORMAL
	}

	err := unix.Madvise(data, flag)
	if err == unix.EINVAL {
		// heap buffers are usually not page aligned, the hint is advisory
		// and carries no correctness weight
		return nil
	}
	return err
}
