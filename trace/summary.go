package trace

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TraceSummary aggregates statistics from a RunTrace.
type TraceSummary struct {
	Steps        int
	MinRate      float64
	MaxRate      float64
	MeanRate     float64
	FinalRate    float64
	Restarts     int
	Reductions   int
	Evaluations  int
	Samples      int
	Correct      int
	Accuracy     float64
	MeanDistance float64 // sample-weighted
}

// Summarize computes aggregate statistics from a RunTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(rt *RunTrace) *TraceSummary {
	summary := &TraceSummary{}
	if rt == nil {
		return summary
	}

	summary.Steps = len(rt.Rates)
	if len(rt.Rates) > 0 {
		rates := make([]float64, len(rt.Rates))
		for i, r := range rt.Rates {
			rates[i] = r.Rate
			switch r.Event {
			case EventRestart:
				summary.Restarts++
			case EventReduction:
				summary.Reductions++
			}
		}
		summary.MinRate = floats.Min(rates)
		summary.MaxRate = floats.Max(rates)
		summary.MeanRate = stat.Mean(rates, nil)
		summary.FinalRate = rates[len(rates)-1]
	}

	summary.Evaluations = len(rt.Evaluations)
	weightedDist := 0.0
	for _, e := range rt.Evaluations {
		summary.Samples += e.Samples
		summary.Correct += e.Correct
		weightedDist += e.MeanDistance * float64(e.Samples)
	}
	if summary.Samples > 0 {
		summary.Accuracy = float64(summary.Correct) / float64(summary.Samples)
		summary.MeanDistance = weightedDist / float64(summary.Samples)
	}

	return summary
}
