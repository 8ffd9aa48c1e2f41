package schedule

import (
	"fmt"
	"math"
)

// cyclicHorizonCycles is the recommended horizon in half-cycles.
const cyclicHorizonCycles = 20

// Cyclic is the triangular cyclical learning rate. The rate climbs linearly from
// MinLR to MaxLR over StepLen epochs worth of iterations, falls back over the
// same span and repeats with constant amplitude.
type Cyclic struct {
	cfg      CyclicConfig
	stepSize int // half-cycle length in iterations
	state    State
}

// IterationsPerEpoch is the number of optimizer steps in one epoch, ⌊numSamples/batchSize⌋.
func IterationsPerEpoch(numSamples, batchSize int) (int, error) {
	if numSamples <= 0 || batchSize <= 0 {
		return 0, fmt.Errorf("%w: num_samples and batch_size must be positive, got %d and %d", ErrInvalidConfig, numSamples, batchSize)
	}
	n := numSamples / batchSize
	if n == 0 {
		return 0, fmt.Errorf("%w: batch_size %d exceeds num_samples %d", ErrInvalidConfig, batchSize, numSamples)
	}
	return n, nil
}

// NewCyclic creates a Cyclic schedule; iterationsPerEpoch converts StepLen to iterations.
func NewCyclic(cfg CyclicConfig, iterationsPerEpoch int) (*Cyclic, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if iterationsPerEpoch <= 0 {
		return nil, fmt.Errorf("%w: iterations per epoch must be positive, got %d", ErrInvalidConfig, iterationsPerEpoch)
	}
	if cfg.StepLen > math.MaxInt32/2/iterationsPerEpoch {
		return nil, fmt.Errorf("%w: step_len %d is too long for %d iterations per epoch", ErrInvalidConfig, cfg.StepLen, iterationsPerEpoch)
	}
	c := &Cyclic{cfg: cfg, stepSize: cfg.StepLen * iterationsPerEpoch}
	c.state = State{CycleIndex: c.cycleOf(0), CycleLength: float64(2 * c.stepSize)}
	return c, nil
}

// StepSize returns the half-cycle length in iterations.
func (c *Cyclic) StepSize() int { return c.stepSize }

func (c *Cyclic) cycleOf(iteration int) int {
	return int(math.Floor(1 + float64(iteration)/float64(2*c.stepSize)))
}

// RateAt evaluates the triangular wave at iteration without touching state.
func (c *Cyclic) RateAt(iteration int) float64 {
	cycle := float64(c.cycleOf(iteration))
	x := math.Abs(float64(iteration)/float64(c.stepSize) - 2*cycle + 1)
	scale := math.Max(0, 1-x)
	switch scale {
	case 0:
		return c.cfg.MinLR
	case 1:
		return c.cfg.MaxLR
	}
	return math.Min(c.cfg.MinLR+(c.cfg.MaxLR-c.cfg.MinLR)*scale, c.cfg.MaxLR)
}

func (c *Cyclic) Name() string   { return "clr" }
func (c *Cyclic) Unit() StepUnit { return UnitIteration }

func (c *Cyclic) NextRate() float64 {
	return c.RateAt(c.state.Iteration)
}

func (c *Cyclic) OnIterationEnd() {
	c.state.Iteration++
	c.state.CycleIndex = c.cycleOf(c.state.Iteration)
}

// OnEpochEnd only counts epochs; the rate follows iterations. metric is ignored.
func (c *Cyclic) OnEpochEnd(_ *float64) error {
	c.state.Epoch++
	return nil
}

func (c *Cyclic) RecommendedEpochs() int {
	return c.cfg.StepLen * cyclicHorizonCycles
}

func (c *Cyclic) State() State { return c.state }

func (c *Cyclic) Restore(st State) error {
	if err := st.Validate(); err != nil {
		return err
	}
	if st.CycleLength != float64(2*c.stepSize) {
		return fmt.Errorf("%w: cycle_length %g does not match period %d", ErrInvalidState, st.CycleLength, 2*c.stepSize)
	}
	if want := c.cycleOf(st.Iteration); st.CycleIndex != want {
		return fmt.Errorf("%w: cycle_index %d, iteration %d is in cycle %d", ErrInvalidState, st.CycleIndex, st.Iteration, want)
	}
	c.state = st
	return nil
}
