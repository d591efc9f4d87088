package mem

import (
	"sync/atomic"

	"github.com/rs/xid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// adviseSyscall relays the effective advice level to the operating system.
// A package variable so tests can observe transitions.
var adviseSyscall = osAdvise

type memCore struct {
	data []byte
	id   string

	// packed per-level holder counts, see advice.go
	advisors atomic.Uint64
	refs     atomic.Int64

	release func() error
}

// MemHandle shares ownership of one byte buffer among any number of clones,
// coordinating memory access advice so that the highest priority advice
// among all live clones wins and the operating system is informed at most
// once per effective level change. All advisor bookkeeping is done with
// compare-and-exchange retries on a single atomic word, no clone ever blocks
// another.
//
// Each clone carries its own standing advice and must be used by one
// goroutine at a time. Clones of the same handle may be used concurrently.
type MemHandle struct {
	core *memCore

	advice   MemAdvice
	released bool
}

// NewMemHandle create a new MemHandle wrapping the given buffer
func NewMemHandle(data []byte) *MemHandle {
	return NewMemHandleWithRelease(data, nil)
}

// NewMemHandleWithRelease create a new MemHandle wrapping the given buffer.
// The release function runs when the last clone is released, e.g. to unmap
// a memory mapped region.
func NewMemHandleWithRelease(data []byte, release func() error) *MemHandle {
	core := &memCore{
		data:    data,
		id:      xid.New().String(),
		release: release,
	}
	core.refs.Store(1)

	return &MemHandle{
		core:   core,
		advice: AdviceNormal,
	}
}

// Clone returns a new handle sharing the buffer and advisor state,
// starting at AdviceNormal
func (handle *MemHandle) Clone() *MemHandle {
	handle.core.refs.Add(1)

	return &MemHandle{
		core:   handle.core,
		advice: AdviceNormal,
	}
}

// Bytes returns the underlying buffer
func (handle *MemHandle) Bytes() []byte {
	return handle.core.data
}

// Len returns the length of the underlying buffer
func (handle *MemHandle) Len() int {
	return len(handle.core.data)
}

// GetID returns id of the shared buffer
func (handle *MemHandle) GetID() string {
	return handle.core.id
}

// Advise declares this clone's access plan for the underlying buffer,
// replacing its prior standing advice. The advice is relayed to the
// operating system only if it changes the effective highest priority level
// across all clones. Returns the effective level. A syscall failure is
// reported but the advice bookkeeping still completes, advice is an
// optimization hint only.
func (handle *MemHandle) Advise(advice MemAdvice) (MemAdvice, error) {
	prior := handle.advice
	handle.advice = advice

	if advice == prior {
		return topMost(handle.core.advisors.Load()), nil
	}

	return handle.core.adjustAdvice(prior, advice)
}

// Release reverts this clone's standing advice to the baseline and drops
// its buffer reference. The buffer's release function runs exactly when the
// last clone is released.
func (handle *MemHandle) Release() error {
	logger := log.WithFields(log.Fields{
		"package":  "mem",
		"struct":   "MemHandle",
		"function": "Release",
	})

	if handle.released {
		return nil
	}
	handle.released = true

	var adviseErr error
	if handle.advice != AdviceNormal {
		_, adviseErr = handle.core.adjustAdvice(handle.advice, AdviceNormal)
		handle.advice = AdviceNormal
	}

	refs := handle.core.refs.Add(-1)
	if refs == 0 && handle.core.release != nil {
		logger.Debugf("Releasing shared buffer - handle %s, length %d", handle.core.id, len(handle.core.data))

		if err := handle.core.release(); err != nil {
			return xerrors.Errorf("failed to release shared buffer %s: %w", handle.core.id, err)
		}
	}

	return adviseErr
}

// adjustAdvice moves one holder from the prior level to the new level and
// relays the new effective level to the operating system if it changed.
// Racing adjustments converge via compare-and-exchange retry, only the
// transition that lands a top level change issues the syscall.
func (core *memCore) adjustAdvice(prior MemAdvice, advice MemAdvice) (MemAdvice, error) {
	logger := log.WithFields(log.Fields{
		"package":  "mem",
		"struct":   "MemHandle",
		"function": "adjustAdvice",
	})

	word := core.advisors.Load()
	for {
		oldTop := topMost(word)
		newWord := incrAdvisors(decrAdvisors(word, prior), advice)
		newTop := topMost(newWord)

		if core.advisors.CompareAndSwap(word, newWord) {
			if newTop == oldTop {
				return newTop, nil
			}

			logger.Debugf("Advice transition - handle %s, %s -> %s", core.id, oldTop, newTop)

			// the logical state is already committed, a syscall failure is
			// reported but never rolled back
			if err := adviseSyscall(core.data, newTop); err != nil {
				return newTop, xerrors.Errorf("failed to advise %s for buffer %s: %w", newTop, core.id, err)
			}
			return newTop, nil
		}

		word = core.advisors.Load()
	}
}
