package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepDecayRate_Thresholds(t *testing.T) {
	tests := []struct {
		epoch int
		want  float64
	}{
		{0, 0.01},
		{1, 0.1},
		{40, 0.1},
		{79, 0.1},
		{80, 0.01},
		{119, 0.01},
		{120, 0.001},
		{163, 0.001},
		{1000, 0.001},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StepDecayRate(tt.epoch), "epoch %d", tt.epoch)
	}
}

func TestStepDecay_DrivenByEpochs(t *testing.T) {
	// GIVEN a fresh ResNet schedule
	s := NewStepDecay()
	assert.Equal(t, UnitEpoch, s.Unit())
	assert.Equal(t, 164, s.RecommendedEpochs())

	// WHEN it is advanced epoch by epoch
	// THEN every rate matches the piecewise formula and iterations do not move it
	for e := 0; e < 200; e++ {
		require.Equal(t, StepDecayRate(e), s.NextRate(), "epoch %d", e)
		s.OnIterationEnd()
		require.Equal(t, StepDecayRate(e), s.NextRate(), "epoch %d after an iteration", e)
		require.NoError(t, s.OnEpochEnd(nil))
	}
	st := s.State()
	assert.Equal(t, 200, st.Epoch)
	assert.Equal(t, 200, st.Iteration)
	assert.Equal(t, 3, st.CycleIndex)
}

func TestStepDecay_NextRateIsIdempotent(t *testing.T) {
	s := NewStepDecay()
	require.NoError(t, s.OnEpochEnd(nil))
	first := s.NextRate()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, s.NextRate())
	}
}

func TestStepDecay_Restore(t *testing.T) {
	s := NewStepDecay()
	require.NoError(t, s.Restore(State{Epoch: 100, Iteration: 5000, CycleIndex: 2, CycleLength: 164}))
	assert.Equal(t, 0.01, s.NextRate())

	err := s.Restore(State{Epoch: 100, CycleIndex: 1, CycleLength: 164})
	assert.ErrorIs(t, err, ErrInvalidState)
	err = s.Restore(State{Epoch: 100, CycleIndex: 2, CycleLength: 12})
	assert.ErrorIs(t, err, ErrInvalidState)
}
