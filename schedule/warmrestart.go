package schedule

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// warmRestartHorizonCycles is the number of cycles the recommended horizon covers.
const warmRestartHorizonCycles = 5

// WarmRestart is cosine annealing with warm restarts (SGDR). Within a cycle of
// T_i epochs the rate falls from MaxLR towards MinLR along half a cosine; when
// the cycle completes the rate snaps back to MaxLR and T_i grows by Mul.
type WarmRestart struct {
	cfg   WarmRestartConfig
	state State
	tCur  int // epochs since the last restart
}

// NewWarmRestart creates a WarmRestart schedule from a validated config.
func NewWarmRestart(cfg WarmRestartConfig) (*WarmRestart, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &WarmRestart{
		cfg:   cfg,
		state: State{CycleLength: cycleLength(cfg.BaseLen, cfg.Mul, 0)},
	}, nil
}

// cycleLength is T_k, the length of cycle k in epochs (possibly fractional).
func cycleLength(baseLen int, mul float64, k int) float64 {
	return float64(baseLen) * math.Pow(mul, float64(k))
}

// cycleEpochs is the number of whole epochs cycle k occupies: the restart fires
// on the first epoch where t_cur reaches T_k.
func cycleEpochs(baseLen int, mul float64, k int) int {
	return int(math.Ceil(cycleLength(baseLen, mul, k)))
}

func warmRestartHorizon(baseLen int, mul float64) float64 {
	total := 0.0
	for k := 0; k < warmRestartHorizonCycles; k++ {
		total += math.Ceil(cycleLength(baseLen, mul, k))
	}
	return total
}

func (w *WarmRestart) Name() string   { return "sgdr" }
func (w *WarmRestart) Unit() StepUnit { return UnitEpoch }

func (w *WarmRestart) NextRate() float64 {
	if w.tCur == 0 {
		return w.cfg.MaxLR
	}
	cos := math.Cos(math.Pi * float64(w.tCur) / w.state.CycleLength)
	rate := w.cfg.MinLR + 0.5*(w.cfg.MaxLR-w.cfg.MinLR)*(1+cos)
	return math.Min(math.Max(rate, w.cfg.MinLR), w.cfg.MaxLR)
}

func (w *WarmRestart) OnIterationEnd() {
	w.state.Iteration++
}

// OnEpochEnd ignores metric.
func (w *WarmRestart) OnEpochEnd(_ *float64) error {
	w.state.Epoch++
	w.tCur++
	if float64(w.tCur) < w.state.CycleLength {
		return nil
	}
	w.tCur = 0
	w.state.CycleIndex++
	w.state.CycleLength = cycleLength(w.cfg.BaseLen, w.cfg.Mul, w.state.CycleIndex)
	logrus.Debugf("sgdr: warm restart %d at epoch %d, next cycle %g epochs", w.state.CycleIndex, w.state.Epoch, w.state.CycleLength)
	return nil
}

// RecommendedEpochs covers the first five cycles.
func (w *WarmRestart) RecommendedEpochs() int {
	return int(warmRestartHorizon(w.cfg.BaseLen, w.cfg.Mul))
}

// EpochsSinceRestart returns t_cur.
func (w *WarmRestart) EpochsSinceRestart() int { return w.tCur }

func (w *WarmRestart) State() State { return w.state }

// Restore resumes from st, deriving t_cur from the epoch and the lengths of
// the cycles already completed.
func (w *WarmRestart) Restore(st State) error {
	if err := st.Validate(); err != nil {
		return err
	}
	if st.CycleIndex > st.Epoch {
		return fmt.Errorf("%w: %d restarts cannot happen in %d epochs", ErrInvalidState, st.CycleIndex, st.Epoch)
	}
	want := cycleLength(w.cfg.BaseLen, w.cfg.Mul, st.CycleIndex)
	if math.Abs(st.CycleLength-want) > 1e-9*want {
		return fmt.Errorf("%w: cycle_length %g, cycle %d should last %g epochs", ErrInvalidState, st.CycleLength, st.CycleIndex, want)
	}
	start := 0
	for k := 0; k < st.CycleIndex; k++ {
		start += cycleEpochs(w.cfg.BaseLen, w.cfg.Mul, k)
	}
	tCur := st.Epoch - start
	if tCur < 0 || tCur >= cycleEpochs(w.cfg.BaseLen, w.cfg.Mul, st.CycleIndex) {
		return fmt.Errorf("%w: epoch %d is not inside cycle %d", ErrInvalidState, st.Epoch, st.CycleIndex)
	}
	st.CycleLength = want
	w.state = st
	w.tCur = tCur
	return nil
}
