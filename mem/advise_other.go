//go:build !unix

package mem

// osAdvise is an always-succeeding no-op on platforms without madvise
func osAdvise(data []byte, advice MemAdvice) error {
	return nil
}
