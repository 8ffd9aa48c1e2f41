package metric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSquaredDistance(t *testing.T) {
	tests := []struct {
		name       string
		trueVec    []float64
		pred       []float64
		wantSq     float64
		wantEuclid float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 0, 0},
		{"3-4-5", []float64{0, 0}, []float64{3, 4}, 25, 5},
		{"negative components", []float64{-1, -1}, []float64{1, 1}, 8, math.Sqrt(8)},
		{"one dimension", []float64{0}, []float64{0.1}, 0.01, 0.1},
		{"empty", []float64{}, []float64{}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sq, err := SquaredDistance(tt.trueVec, tt.pred)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantSq, sq, 1e-12)

			d, err := EuclideanDistance(tt.trueVec, tt.pred)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantEuclid, d, 1e-12)
		})
	}
}

func TestSquaredDistance_IsSymmetric(t *testing.T) {
	a := []float64{0.3, -1.2, 4.5}
	b := []float64{2.0, 0.1, -0.7}
	ab, err := SquaredDistance(a, b)
	require.NoError(t, err)
	ba, err := SquaredDistance(b, a)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
}

func TestDistance_DimensionMismatch(t *testing.T) {
	_, err := SquaredDistance([]float64{1, 2}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	_, err = EuclideanDistance([]float64{1}, nil)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestMeanDistance(t *testing.T) {
	trueBatch := [][]float64{{0, 0}, {1, 1}, {5, 5}}
	predBatch := [][]float64{{3, 4}, {1, 1}, {5, 6}}
	got, err := MeanDistance(trueBatch, predBatch)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, got, 1e-12) // (5 + 0 + 1) / 3

	got, err = MeanDistance(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	_, err = MeanDistance(trueBatch, predBatch[:2])
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = MeanDistance([][]float64{{0, 0}}, [][]float64{{0}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
