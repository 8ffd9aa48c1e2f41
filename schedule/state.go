package schedule

import (
	"fmt"
	"math"
)

// State holds the per-run counters a schedule advances.
// The meaning of CycleIndex and CycleLength depends on the variant:
//   - StepDecay: current phase of the piecewise schedule, horizon in epochs
//   - Plateau: reductions applied so far, patience in epochs
//   - Cyclic: current triangle cycle, full period in iterations
//   - WarmRestart: restarts so far, current cycle length T_i in epochs
type State struct {
	Epoch       int     `yaml:"epoch"`
	Iteration   int     `yaml:"iteration"`
	CycleIndex  int     `yaml:"cycle_index"`
	CycleLength float64 `yaml:"cycle_length"`
}

// Validate checks the counter domains shared by every variant.
func (s State) Validate() error {
	if s.Epoch < 0 {
		return fmt.Errorf("%w: epoch must be non-negative, got %d", ErrInvalidState, s.Epoch)
	}
	if s.Iteration < 0 {
		return fmt.Errorf("%w: iteration must be non-negative, got %d", ErrInvalidState, s.Iteration)
	}
	if s.CycleIndex < 0 {
		return fmt.Errorf("%w: cycle_index must be non-negative, got %d", ErrInvalidState, s.CycleIndex)
	}
	if !(s.CycleLength > 0) || math.IsInf(s.CycleLength, 1) {
		return fmt.Errorf("%w: cycle_length must be positive and finite, got %g", ErrInvalidState, s.CycleLength)
	}
	return nil
}
