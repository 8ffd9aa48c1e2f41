package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_NamesAreCaseInsensitive(t *testing.T) {
	tests := []struct {
		name     string
		wantType RateSchedule
		horizon  int
	}{
		{"SGD", &Plateau{}, 200},
		{"sgd", &Plateau{}, 200},
		{"SgDr", &WarmRestart{}, 372},
		{"CLR", &Cyclic{}, 240},
		{"ResNet-Schedule", &StepDecay{}, 164},
		{"resnet-schedule", &StepDecay{}, 164},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, horizon, err := Build(tt.name, 50000, 128, Overrides{})
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, s)
			assert.Equal(t, tt.horizon, horizon)
			assert.Equal(t, horizon, s.RecommendedEpochs())
		})
	}
}

func TestBuild_UnknownSchedule(t *testing.T) {
	for _, name := range []string{"", "adam", "cosine", "sgd-r"} {
		_, _, err := Build(name, 100, 10, Overrides{})
		assert.ErrorIs(t, err, ErrUnknownSchedule, "name %q", name)
	}
	assert.False(t, IsValidSchedule("adam"))
	assert.True(t, IsValidSchedule("Clr"))
}

func TestBuild_AppliesDefaults(t *testing.T) {
	// GIVEN no options
	s, _, err := Build("sgd", 0, 0, Overrides{})
	require.NoError(t, err)

	// THEN the documented Plateau defaults are in effect
	p := s.(*Plateau)
	assert.Equal(t, DefaultPlateauConfig(), p.cfg)
	assert.Equal(t, 10.0, p.State().CycleLength)

	s, _, err = Build("clr", 50000, 128, Overrides{})
	require.NoError(t, err)
	c := s.(*Cyclic)
	assert.Equal(t, 12*390, c.StepSize())
	assert.Equal(t, 1e-5, c.NextRate())
}

func TestBuild_OverridesTakeEffect(t *testing.T) {
	o := Overrides{BaseLen: intPtr(5), Mul: float64Ptr(3), MaxLR: float64Ptr(0.05)}
	s, horizon, err := Build("sgdr", 0, 0, o)
	require.NoError(t, err)
	// 5 + 15 + 45 + 135 + 405
	assert.Equal(t, 605, horizon)
	assert.Equal(t, 0.05, s.NextRate())
	assert.Equal(t, 5.0, s.State().CycleLength)
}

func TestBuild_DoesNotModifyCallerOverrides(t *testing.T) {
	// GIVEN a sparse override value
	o := Overrides{StepLen: intPtr(4)}
	before := o

	// WHEN it is used to build a schedule
	_, _, err := Build("clr", 1000, 10, o)
	require.NoError(t, err)

	// THEN no defaults were written into it
	assert.Equal(t, before, o)
	assert.Nil(t, o.MinLR)
	assert.Nil(t, o.MaxLR)
	assert.Equal(t, 4, *o.StepLen)
}

func TestBuild_RejectsForeignOptions(t *testing.T) {
	tests := []struct {
		name string
		o    Overrides
	}{
		{"sgd", Overrides{Mul: float64Ptr(2)}},
		{"sgd", Overrides{MaxLR: float64Ptr(0.2)}},
		{"sgdr", Overrides{Patience: intPtr(3)}},
		{"clr", Overrides{BaseLen: intPtr(3)}},
		{"clr", Overrides{InitialLR: float64Ptr(0.1)}},
		{"resnet-schedule", Overrides{MinLR: float64Ptr(0.001)}},
	}
	for _, tt := range tests {
		_, _, err := Build(tt.name, 1000, 10, tt.o)
		assert.ErrorIs(t, err, ErrInvalidConfig, "%s %+v", tt.name, tt.o.setKeys())
	}
}

func TestBuild_RejectsOutOfDomainOptions(t *testing.T) {
	tests := []struct {
		name string
		o    Overrides
	}{
		{"sgd", Overrides{Patience: intPtr(0)}},
		{"sgd", Overrides{MinLR: float64Ptr(-1)}},
		{"sgdr", Overrides{BaseLen: intPtr(0)}},
		{"sgdr", Overrides{Mul: float64Ptr(1)}},
		{"sgdr", Overrides{MaxLR: float64Ptr(0)}},
		{"clr", Overrides{StepLen: intPtr(-1)}},
		{"clr", Overrides{MinLR: float64Ptr(0.2), MaxLR: float64Ptr(0.2)}},
	}
	for _, tt := range tests {
		_, _, err := Build(tt.name, 1000, 10, tt.o)
		assert.ErrorIs(t, err, ErrInvalidConfig, "%s %v", tt.name, tt.o.setKeys())
	}
}

func TestBuild_CyclicNeedsAtLeastOneIterationPerEpoch(t *testing.T) {
	_, _, err := Build("clr", 64, 128, Overrides{})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	// other schedules ignore the batch geometry
	_, _, err = Build("sgdr", 64, 128, Overrides{})
	assert.NoError(t, err)
}

func TestAdvance_DispatchesOnUnit(t *testing.T) {
	c, _, err := Build("clr", 100, 10, Overrides{})
	require.NoError(t, err)
	require.NoError(t, Advance(c, nil))
	assert.Equal(t, 1, c.State().Iteration)
	assert.Equal(t, 0, c.State().Epoch)

	p, _, err := Build("sgd", 0, 0, Overrides{})
	require.NoError(t, err)
	assert.ErrorIs(t, Advance(p, nil), ErrMissingMetric)
	require.NoError(t, Advance(p, float64Ptr(0.3)))
	assert.Equal(t, 1, p.State().Epoch)
	assert.Equal(t, 0, p.State().Iteration)
}
