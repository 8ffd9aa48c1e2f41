package schedule

import "errors"

var (
	// ErrUnknownSchedule is returned by Build for an unrecognized schedule name.
	ErrUnknownSchedule = errors.New("unknown learning rate schedule")
	// ErrInvalidConfig is returned when an option is outside its domain or
	// does not belong to the selected schedule.
	ErrInvalidConfig = errors.New("invalid schedule config")
	// ErrMissingMetric is returned by Plateau.OnEpochEnd without a validation metric.
	ErrMissingMetric = errors.New("validation metric required")
	// ErrInvalidState is returned when a snapshot cannot be restored.
	ErrInvalidState = errors.New("invalid schedule state")
)
