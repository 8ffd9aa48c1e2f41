package schedule

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

const (
	// PlateauFactor multiplies the rate on every reduction.
	PlateauFactor = 0.1
	// PlateauTolerance is the minimum decrease of the metric that counts as an improvement.
	PlateauTolerance = 1e-4

	plateauHorizon = 200
)

// Plateau reduces the rate when the validation metric (lower is better) has not
// improved by more than PlateauTolerance for Patience consecutive epochs.
// It never reduces below MinLR and never stops training on its own.
//
// Best metric and the count of stale epochs are not part of State: a restored
// Plateau keeps its reduced rate but starts tracking improvements afresh.
type Plateau struct {
	cfg   PlateauConfig
	state State
	rate  float64
	best  float64
	wait  int
}

// NewPlateau creates a Plateau schedule from a validated config.
func NewPlateau(cfg PlateauConfig) (*Plateau, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Plateau{
		cfg:   cfg,
		state: State{CycleLength: float64(cfg.Patience)},
		rate:  cfg.InitialLR,
		best:  math.Inf(1),
	}, nil
}

func (p *Plateau) Name() string   { return "sgd" }
func (p *Plateau) Unit() StepUnit { return UnitEpoch }

func (p *Plateau) NextRate() float64 { return p.rate }

func (p *Plateau) OnIterationEnd() {
	p.state.Iteration++
}

// OnEpochEnd records the epoch's validation metric. A NaN metric counts as no improvement.
func (p *Plateau) OnEpochEnd(metric *float64) error {
	if metric == nil {
		return fmt.Errorf("%w: plateau schedule at epoch %d", ErrMissingMetric, p.state.Epoch)
	}
	p.state.Epoch++

	if *metric < p.best-PlateauTolerance {
		p.best = *metric
		p.wait = 0
		return nil
	}

	p.wait++
	if p.wait < p.cfg.Patience || p.rate <= p.cfg.MinLR {
		return nil
	}
	old := p.rate
	p.wait = 0
	p.state.CycleIndex++
	p.rate = p.rateAfter(p.state.CycleIndex)
	logrus.Debugf("plateau: epoch %d reducing rate %g -> %g", p.state.Epoch, old, p.rate)
	return nil
}

func (p *Plateau) RecommendedEpochs() int { return plateauHorizon }

func (p *Plateau) State() State { return p.state }

// Restore resumes from st. The rate is rebuilt from the number of reductions
// recorded in CycleIndex.
func (p *Plateau) Restore(st State) error {
	if err := st.Validate(); err != nil {
		return err
	}
	if st.CycleLength != float64(p.cfg.Patience) {
		return fmt.Errorf("%w: cycle_length %g does not match patience %d", ErrInvalidState, st.CycleLength, p.cfg.Patience)
	}
	p.state = st
	p.rate = p.rateAfter(st.CycleIndex)
	p.best = math.Inf(1)
	p.wait = 0
	return nil
}

// rateAfter is the rate once n reductions have been applied.
func (p *Plateau) rateAfter(n int) float64 {
	r := p.cfg.InitialLR * math.Pow(PlateauFactor, float64(n))
	// Round-off in the power must not leave the rate a hair above the floor.
	if r <= p.cfg.MinLR*(1+1e-9) {
		return p.cfg.MinLR
	}
	return r
}
