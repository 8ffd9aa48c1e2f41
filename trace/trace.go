package trace

// TraceLevel controls how much of a run is recorded.
type TraceLevel string

const (
	// TraceLevelNone disables tracing.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelEpochs records the rate once per epoch plus every evaluation.
	TraceLevelEpochs TraceLevel = "epochs"
	// TraceLevelIterations records the rate after every optimizer step.
	TraceLevelIterations TraceLevel = "iterations"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:       true,
	TraceLevelEpochs:     true,
	TraceLevelIterations: true,
	"":                   true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// Enabled reports whether anything is recorded at all.
func (c TraceConfig) Enabled() bool {
	return c.Level != TraceLevelNone && c.Level != ""
}

// RunTrace collects rate and evaluation records during a training run.
type RunTrace struct {
	Config      TraceConfig
	Rates       []RateRecord
	Evaluations []EvalRecord
}

// NewRunTrace creates a RunTrace ready for recording.
func NewRunTrace(config TraceConfig) *RunTrace {
	return &RunTrace{
		Config:      config,
		Rates:       make([]RateRecord, 0),
		Evaluations: make([]EvalRecord, 0),
	}
}

// RecordRate appends a rate record.
func (rt *RunTrace) RecordRate(record RateRecord) {
	rt.Rates = append(rt.Rates, record)
}

// RecordEvaluation appends an evaluation record.
func (rt *RunTrace) RecordEvaluation(record EvalRecord) {
	rt.Evaluations = append(rt.Evaluations, record)
}
