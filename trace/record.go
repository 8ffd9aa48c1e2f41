// Package trace provides run-trace recording for learning-rate schedules.
// It has no dependencies on schedule/ or metric/ and stores pure data types.
package trace

// RateEvent marks a discontinuity in the rate curve.
type RateEvent string

const (
	EventNone      RateEvent = ""
	EventRestart   RateEvent = "restart"   // warm restart back to the ceiling
	EventReduction RateEvent = "reduction" // plateau reduction
)

// RateRecord captures the rate a schedule chose for one step.
type RateRecord struct {
	Epoch      int
	Iteration  int
	Rate       float64
	CycleIndex int
	Event      RateEvent
}

// EvalRecord captures one evaluation batch scored by nearest-centroid lookup.
type EvalRecord struct {
	Epoch        int
	Samples      int
	Correct      int
	MeanDistance float64
}
