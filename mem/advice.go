package mem

// MemAdvice is a memory access pattern hint, purely advisory and never
// affecting correctness. Levels are arranged in ascending order of priority
// in the presence of concurrent interest in the same region.
type MemAdvice int

const (
	// AdviceNormal is the baseline, carrying no holder count
	AdviceNormal MemAdvice = iota
	// AdviceRandom expects random access
	AdviceRandom
	// AdviceSequential expects sequential access
	AdviceSequential
	// AdviceWillNeed expects access in the near future
	AdviceWillNeed
	// AdviceDontNeed does not expect access in the near future
	AdviceDontNeed
)

func (advice MemAdvice) String() string {
	switch advice {
	case AdviceNormal:
		return "normal"
	case AdviceRandom:
		return "random"
	case AdviceSequential:
		return "sequential"
	case AdviceWillNeed:
		return "willneed"
	case AdviceDontNeed:
		return "dontneed"
	default:
		return "unknown"
	}
}

// Holder counts for each elevated advice level are packed into a single
// uint64 word, 12 bits per level, so the whole advisor state can be mutated
// with one compare-and-exchange. Counts saturate at the field capacity,
// further holders at a saturated level are ignored in favor of the prior
// highest priority advice.
const (
	advisorBits = 12
	advisorMask = uint64(1<<advisorBits - 1)
	maxAdvisors = advisorMask
)

func levelShift(advice MemAdvice) uint {
	return uint(advice-1) * advisorBits
}

func advisorCount(word uint64, advice MemAdvice) uint64 {
	return (word >> levelShift(advice)) & advisorMask
}

// incrAdvisors returns the word with one more holder at the given level
func incrAdvisors(word uint64, advice MemAdvice) uint64 {
	if advice == AdviceNormal {
		return word
	}

	count := advisorCount(word, advice)
	if count < maxAdvisors {
		count++
	}

	shift := levelShift(advice)
	return (word &^ (advisorMask << shift)) | (count << shift)
}

// decrAdvisors returns the word with one less holder at the given level
func decrAdvisors(word uint64, advice MemAdvice) uint64 {
	if advice == AdviceNormal {
		return word
	}

	count := advisorCount(word, advice)
	if count > 0 {
		count--
	}

	shift := levelShift(advice)
	return (word &^ (advisorMask << shift)) | (count << shift)
}

// topMost returns the highest advice level with at least one holder
func topMost(word uint64) MemAdvice {
	for advice := AdviceDontNeed; advice > AdviceNormal; advice-- {
		if advisorCount(word, advice) > 0 {
			return advice
		}
	}
	return AdviceNormal
}
