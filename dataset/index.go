package dataset

import (
	"errors"
	"fmt"
)

// ErrFrameOutOfRange reports a global frame index outside [0, Len()).
var ErrFrameOutOfRange = errors.New("frame index out of range")

// frameIndex converts a global frame index into a (file, local frame)
// pair using the per-file frame counts recorded at construction.
type frameIndex struct {
	counts []int
	total  int
}

func newFrameIndex(counts []int) frameIndex {
	total := 0
	for _, n := range counts {
		total += n
	}
	return frameIndex{counts: counts, total: total}
}

// locate returns the owning file and local frame index for a global
// index. The scan is linear in the number of files: the first file whose
// cumulative frame count exceeds the target owns it.
func (ix frameIndex) locate(target int) (fileIdx, frameIdx int, err error) {
	if target < 0 || target >= ix.total {
		return 0, 0, fmt.Errorf("%w: %d not in [0,%d)", ErrFrameOutOfRange, target, ix.total)
	}

	running := 0
	for i, n := range ix.counts {
		running += n
		if target < running {
			return i, target - (running - n), nil
		}
	}

	// unreachable: total covers the counts
	return 0, 0, fmt.Errorf("%w: %d", ErrFrameOutOfRange, target)
}
