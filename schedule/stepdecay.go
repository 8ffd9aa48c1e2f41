package schedule

import "fmt"

// stepDecayHorizon is the recommended training length of the ResNet schedule.
const stepDecayHorizon = 164

// stepDecayBoundaries are the first epochs of phases 1..3; phase 0 is epoch 0.
var stepDecayBoundaries = [...]int{1, 80, 120}

// stepDecayRates holds the rate of each phase.
var stepDecayRates = [...]float64{0.01, 0.1, 0.01, 0.001}

// StepDecay is the piecewise-constant ResNet schedule: a one-epoch warm-up at
// 0.01, then 0.1 until epoch 80, 0.01 until epoch 120 and 0.001 afterwards.
type StepDecay struct {
	state State
}

// NewStepDecay creates the ResNet step schedule. It takes no options.
func NewStepDecay() *StepDecay {
	return &StepDecay{state: State{CycleLength: stepDecayHorizon}}
}

// StepDecayRate returns the ResNet schedule's rate for epoch.
func StepDecayRate(epoch int) float64 {
	return stepDecayRates[stepDecayPhase(epoch)]
}

func stepDecayPhase(epoch int) int {
	phase := 0
	for _, b := range stepDecayBoundaries {
		if epoch >= b {
			phase++
		}
	}
	return phase
}

func (s *StepDecay) Name() string   { return "resnet-schedule" }
func (s *StepDecay) Unit() StepUnit { return UnitEpoch }

func (s *StepDecay) NextRate() float64 {
	return StepDecayRate(s.state.Epoch)
}

func (s *StepDecay) OnIterationEnd() {
	s.state.Iteration++
}

// OnEpochEnd ignores metric.
func (s *StepDecay) OnEpochEnd(_ *float64) error {
	s.state.Epoch++
	s.state.CycleIndex = stepDecayPhase(s.state.Epoch)
	return nil
}

func (s *StepDecay) RecommendedEpochs() int { return stepDecayHorizon }

func (s *StepDecay) State() State { return s.state }

func (s *StepDecay) Restore(st State) error {
	if err := st.Validate(); err != nil {
		return err
	}
	if st.CycleLength != stepDecayHorizon {
		return fmt.Errorf("%w: cycle_length %g does not match horizon %d", ErrInvalidState, st.CycleLength, stepDecayHorizon)
	}
	if want := stepDecayPhase(st.Epoch); st.CycleIndex != want {
		return fmt.Errorf("%w: cycle_index %d, epoch %d is in phase %d", ErrInvalidState, st.CycleIndex, st.Epoch, want)
	}
	s.state = st
	return nil
}
