package schedule

import (
	"fmt"
	"strings"
)

// ValidSchedules is the set of recognized schedule names (lower case).
// Shared by IsValidSchedule and Build.
var ValidSchedules = map[string]bool{"sgd": true, "sgdr": true, "clr": true, "resnet-schedule": true}

// IsValidSchedule reports whether name (case-insensitive) selects a schedule.
func IsValidSchedule(name string) bool {
	return ValidSchedules[strings.ToLower(strings.TrimSpace(name))]
}

// ScheduleNames returns the recognized names in a stable order for help text.
func ScheduleNames() []string {
	return []string{"sgd", "sgdr", "clr", "resnet-schedule"}
}

// Build creates the schedule selected by name and returns it together with
// its recommended training horizon in epochs.
// Valid names (case-insensitive): "sgd" (Plateau), "sgdr" (WarmRestart),
// "clr" (Cyclic), "resnet-schedule" (StepDecay).
// numSamples and batchSize are only used by "clr" to convert epochs to iterations.
// Unset options in o take the variant's defaults; options that belong to
// another variant are rejected.
func Build(name string, numSamples, batchSize int, o Overrides) (RateSchedule, int, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if !ValidSchedules[key] {
		return nil, 0, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownSchedule, name, strings.Join(ScheduleNames(), ", "))
	}
	if err := o.checkAccepted(key); err != nil {
		return nil, 0, err
	}

	var s RateSchedule
	var err error
	switch key {
	case "sgd":
		s, err = NewPlateau(o.Plateau())
	case "sgdr":
		s, err = NewWarmRestart(o.WarmRestart())
	case "clr":
		var perEpoch int
		perEpoch, err = IterationsPerEpoch(numSamples, batchSize)
		if err == nil {
			s, err = NewCyclic(o.Cyclic(), perEpoch)
		}
	case "resnet-schedule":
		s = NewStepDecay()
	default:
		panic(fmt.Sprintf("unhandled schedule %q", key))
	}
	if err != nil {
		return nil, 0, err
	}
	return s, s.RecommendedEpochs(), nil
}
