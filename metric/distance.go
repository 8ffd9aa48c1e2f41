package metric

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrDimensionMismatch is returned when vector or matrix shapes disagree.
// Shapes are never truncated or broadcast.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// ErrUnknownClass is returned for a class label outside the centroid set.
var ErrUnknownClass = errors.New("unknown class")

// SquaredDistance returns Σ(predᵢ − trueᵢ)².
func SquaredDistance(trueVec, pred []float64) (float64, error) {
	if len(trueVec) != len(pred) {
		return 0, fmt.Errorf("%w: target has %d components, prediction has %d", ErrDimensionMismatch, len(trueVec), len(pred))
	}
	diff := make([]float64, len(pred))
	floats.SubTo(diff, pred, trueVec)
	return floats.Dot(diff, diff), nil
}

// EuclideanDistance returns √SquaredDistance(trueVec, pred).
func EuclideanDistance(trueVec, pred []float64) (float64, error) {
	sq, err := SquaredDistance(trueVec, pred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(sq), nil
}

// MeanDistance is the mean Euclidean distance over a batch of target and
// predicted rows. An empty batch has mean distance 0.
func MeanDistance(trueBatch, predBatch [][]float64) (float64, error) {
	if len(trueBatch) != len(predBatch) {
		return 0, fmt.Errorf("%w: %d target rows, %d predicted rows", ErrDimensionMismatch, len(trueBatch), len(predBatch))
	}
	if len(predBatch) == 0 {
		return 0, nil
	}
	dists := make([]float64, len(predBatch))
	for i := range predBatch {
		d, err := EuclideanDistance(trueBatch[i], predBatch[i])
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i, err)
		}
		dists[i] = d
	}
	return stat.Mean(dists, nil), nil
}
