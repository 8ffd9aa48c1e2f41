package schedule

// StepUnit names the training boundary that moves a schedule forward.
type StepUnit string

const (
	// UnitIteration schedules advance after every optimizer step.
	UnitIteration StepUnit = "iteration"
	// UnitEpoch schedules advance after every full pass over the data.
	UnitEpoch StepUnit = "epoch"
)

// RateSchedule decides the learning rate for the next training step.
// NextRate is a pure function of the schedule's state: calling it repeatedly
// without OnIterationEnd or OnEpochEnd in between returns the same value.
type RateSchedule interface {
	// Name returns the factory name of the variant (e.g. "sgdr").
	Name() string
	// Unit reports whether the rate changes per iteration or per epoch.
	Unit() StepUnit
	// NextRate returns the rate to apply to the next step.
	NextRate() float64
	// OnIterationEnd records one finished optimizer step.
	OnIterationEnd()
	// OnEpochEnd records one finished epoch. metric is the epoch's validation
	// value (lower is better); only Plateau requires it.
	OnEpochEnd(metric *float64) error
	// RecommendedEpochs is the training horizon derived from the configuration.
	RecommendedEpochs() int
	// State returns a copy of the schedule's counters.
	State() State
	// Restore replaces the counters with a previously captured State.
	Restore(s State) error
}

// Advance moves s forward by one unit of its own StepUnit: an iteration for
// iteration-driven schedules, an epoch otherwise.
func Advance(s RateSchedule, metric *float64) error {
	if s.Unit() == UnitIteration {
		s.OnIterationEnd()
		return nil
	}
	return s.OnEpochEnd(metric)
}
