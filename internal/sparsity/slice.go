package sparsity

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// End marks an open-ended stop: the slice runs to the end of the axis in the direction of
// its step.
const End = math.MaxInt

// Slice addresses positions start, start+step, ... up to but excluding stop along one axis.
// Negative start and stop count from the end of the axis.
type Slice struct {
	Start int
	Stop  int
	Step  int
}

// All addresses every position of an axis.
func All() Slice {
	return Slice{Start: 0, Stop: End, Step: 1}
}

// Range addresses [start, stop) with unit step.
func Range(start, stop int) Slice {
	return Slice{Start: start, Stop: stop, Step: 1}
}

// Index addresses the single position i.
func Index(i int) Slice {
	if i == -1 {
		return Slice{Start: -1, Stop: End, Step: 1}
	}
	return Slice{Start: i, Stop: i + 1, Step: 1}
}

// Indices expands the slice against an axis of length n. Stops beyond either end of the
// axis are clamped, so every returned index lies in [0, n).
func (s Slice) Indices(n int) ([]int, error) {
	if s.Step == 0 {
		return nil, errors.Wrap(ErrInvalidSlice, "step must be non-zero")
	}

	start := s.Start
	if start < 0 {
		start += n
	}

	if s.Step > 0 {
		stop := s.Stop
		switch {
		case stop == End || stop > n:
			stop = n
		case stop < 0:
			stop = max(stop+n, 0)
		}
		if start < 0 || start > n {
			return nil, errors.Wrapf(ErrOutOfRange, "slice %v on axis of length %d", s, n)
		}
		var idx []int
		for i := start; i < stop; i += s.Step {
			idx = append(idx, i)
			// Stop before i+step can overflow.
			if s.Step >= stop-i {
				break
			}
		}
		return idx, nil
	}

	stop := s.Stop
	switch {
	case stop == End:
		stop = -1
	case stop < 0:
		stop = max(stop+n, -1)
	case stop >= n:
		stop = n - 1
	}
	if start < 0 || start >= n {
		if n == 0 {
			return nil, nil
		}
		return nil, errors.Wrapf(ErrOutOfRange, "slice %v on axis of length %d", s, n)
	}
	var idx []int
	for i := start; i > stop; i += s.Step {
		idx = append(idx, i)
		if s.Step <= stop-i {
			break
		}
	}
	return idx, nil
}

// String formats the slice as start:stop:step.
func (s Slice) String() string {
	stop := fmt.Sprint(s.Stop)
	if s.Stop == End {
		stop = ""
	}
	if s.Step == 1 {
		return fmt.Sprintf("%d:%s", s.Start, stop)
	}
	return fmt.Sprintf("%d:%s:%d", s.Start, stop, s.Step)
}
