package metric

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultTolerance is the largest gap between the distance to the true
// centroid and the distance to the nearest centroid that still counts as a
// correct classification. It absorbs round-off between the expanded and the
// direct distance formulas.
const DefaultTolerance = 1e-6

// CentroidSet is an immutable C×D matrix of class centroids, one row per class,
// with the squared norm of every row cached. Safe for concurrent use.
type CentroidSet struct {
	centroids *mat.Dense
	norms     []float64
}

// NewCentroidSet copies centroids into a CentroidSet. There must be at least one
// centroid and every centroid must have the same, non-zero dimensionality.
func NewCentroidSet(centroids [][]float64) (*CentroidSet, error) {
	if len(centroids) == 0 {
		return nil, fmt.Errorf("%w: centroid set is empty", ErrDimensionMismatch)
	}
	dim := len(centroids[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: centroids have zero dimensions", ErrDimensionMismatch)
	}
	m := mat.NewDense(len(centroids), dim, nil)
	norms := make([]float64, len(centroids))
	for k, c := range centroids {
		if len(c) != dim {
			return nil, fmt.Errorf("%w: centroid %d has %d components, want %d", ErrDimensionMismatch, k, len(c), dim)
		}
		m.SetRow(k, c)
		norms[k] = floats.Dot(c, c)
	}
	return &CentroidSet{centroids: m, norms: norms}, nil
}

// Len returns the number of classes C.
func (cs *CentroidSet) Len() int {
	r, _ := cs.centroids.Dims()
	return r
}

// Dim returns the embedding dimensionality D.
func (cs *CentroidSet) Dim() int {
	_, c := cs.centroids.Dims()
	return c
}

// Centroid returns a copy of class k's centroid.
func (cs *CentroidSet) Centroid(k int) []float64 {
	return mat.Row(nil, k, cs.centroids)
}

// Targets maps class labels to their centroids, producing the true-embedding
// batch Evaluate expects.
func (cs *CentroidSet) Targets(labels []int) ([][]float64, error) {
	out := make([][]float64, len(labels))
	for i, label := range labels {
		if label < 0 || label >= cs.Len() {
			return nil, fmt.Errorf("%w: label %d at row %d, have %d classes", ErrUnknownClass, label, i, cs.Len())
		}
		out[i] = cs.Centroid(label)
	}
	return out, nil
}

// squaredDistances returns the N×C matrix of squared distances from every
// predicted row to every centroid, computed as ‖p‖² + ‖c‖² − 2·p·c so only one
// N×C matrix product is needed.
func (cs *CentroidSet) squaredDistances(predicted [][]float64) (*mat.Dense, error) {
	dim := cs.Dim()
	p := mat.NewDense(len(predicted), dim, nil)
	predNorms := make([]float64, len(predicted))
	for i, row := range predicted {
		if len(row) != dim {
			return nil, fmt.Errorf("%w: prediction %d has %d components, centroids have %d", ErrDimensionMismatch, i, len(row), dim)
		}
		p.SetRow(i, row)
		predNorms[i] = floats.Dot(row, row)
	}

	var dist mat.Dense
	dist.Mul(p, cs.centroids.T())
	dist.Apply(func(i, k int, dot float64) float64 {
		return predNorms[i] + cs.norms[k] - 2*dot
	}, &dist)
	return &dist, nil
}

// Classifier scores predicted embeddings by nearest-centroid lookup.
type Classifier struct {
	Centroids *CentroidSet
	Tolerance float64
}

// NewClassifier creates a Classifier over cs using DefaultTolerance.
func NewClassifier(cs *CentroidSet) *Classifier {
	return &Classifier{Centroids: cs, Tolerance: DefaultTolerance}
}

// Evaluate reports, for every predicted row, whether the sample's own class
// centroid is (within Tolerance) the nearest centroid.
//
// Precondition: trueBatch[i] is exactly the centroid of sample i's true class.
// The true distance is measured directly against that row, so a target that is
// not a centroid of the set yields meaningless results. When several centroids
// tie for nearest, a sample whose true centroid is among them is correct.
//
// predicted and trueBatch must both be N×D with D = Centroids.Dim().
// Inputs are not modified.
func (c *Classifier) Evaluate(predicted, trueBatch [][]float64) ([]bool, error) {
	if len(predicted) != len(trueBatch) {
		return nil, fmt.Errorf("%w: %d predicted rows, %d target rows", ErrDimensionMismatch, len(predicted), len(trueBatch))
	}
	correct := make([]bool, len(predicted))
	if len(predicted) == 0 {
		return correct, nil
	}
	dist, err := c.Centroids.squaredDistances(predicted)
	if err != nil {
		return nil, err
	}
	dim := c.Centroids.Dim()
	for i := range predicted {
		if len(trueBatch[i]) != dim {
			return nil, fmt.Errorf("%w: target %d has %d components, centroids have %d", ErrDimensionMismatch, i, len(trueBatch[i]), dim)
		}
		minDist := floats.Min(dist.RawRowView(i))
		trueDist, err := SquaredDistance(trueBatch[i], predicted[i])
		if err != nil {
			return nil, err
		}
		correct[i] = math.Abs(trueDist-minDist) < c.Tolerance
	}
	return correct, nil
}

// Predict returns the index of the nearest centroid for every predicted row.
// Ties resolve to the lowest class index.
func (c *Classifier) Predict(predicted [][]float64) ([]int, error) {
	classes := make([]int, len(predicted))
	if len(predicted) == 0 {
		return classes, nil
	}
	dist, err := c.Centroids.squaredDistances(predicted)
	if err != nil {
		return nil, err
	}
	for i := range predicted {
		classes[i] = floats.MinIdx(dist.RawRowView(i))
	}
	return classes, nil
}

// Accuracy returns the fraction of true entries; 0 for an empty slice.
func Accuracy(correct []bool) float64 {
	if len(correct) == 0 {
		return 0
	}
	n := 0
	for _, ok := range correct {
		if ok {
			n++
		}
	}
	return float64(n) / float64(len(correct))
}
