package harness

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/hierembed/trainsched/metric"
	"github.com/hierembed/trainsched/schedule"
	"github.com/hierembed/trainsched/trace"
)

// RunConfig groups the host-loop geometry of a replay.
type RunConfig struct {
	IterationsPerEpoch int       // optimizer steps per epoch (must be > 0)
	Epochs             int       // total epochs to reach; 0 = the schedule's recommended horizon
	Metrics            []float64 // validation metric of epoch i at index i (optional)
	Trace              trace.TraceConfig
}

// EpochResult is the rate in effect at the start of an epoch.
type EpochResult struct {
	Epoch int
	Rate  float64
	Event trace.RateEvent
}

// Runner drives one schedule. It is not safe for concurrent use: the schedule
// it owns must see a single, ordered sequence of callbacks.
type Runner struct {
	Schedule   schedule.RateSchedule
	Config     RunConfig
	Trace      *trace.RunTrace
	Classifier *metric.Classifier // optional, used by Evaluate
}

// NewRunner validates cfg and creates a Runner for s.
func NewRunner(s schedule.RateSchedule, cfg RunConfig) (*Runner, error) {
	if cfg.IterationsPerEpoch <= 0 {
		return nil, fmt.Errorf("iterations per epoch must be positive, got %d", cfg.IterationsPerEpoch)
	}
	if cfg.Epochs < 0 {
		return nil, fmt.Errorf("epochs must be non-negative, got %d", cfg.Epochs)
	}
	if !trace.IsValidTraceLevel(string(cfg.Trace.Level)) {
		return nil, fmt.Errorf("unknown trace level %q", cfg.Trace.Level)
	}
	if cfg.Epochs == 0 {
		cfg.Epochs = s.RecommendedEpochs()
	}
	r := &Runner{Schedule: s, Config: cfg}
	if cfg.Trace.Enabled() {
		r.Trace = trace.NewRunTrace(cfg.Trace)
	}
	return r, nil
}

// Run advances the schedule from its current epoch up to Config.Epochs and
// returns the rate at the start of every epoch it ran. A schedule restored
// from a snapshot continues where it left off.
func (r *Runner) Run() ([]EpochResult, error) {
	s := r.Schedule
	start := s.State().Epoch
	if start >= r.Config.Epochs {
		logrus.Infof("%s: already at epoch %d of %d, nothing to run", s.Name(), start, r.Config.Epochs)
		return nil, nil
	}
	logrus.Infof("%s: running epochs %d..%d, %d iterations per epoch", s.Name(), start, r.Config.Epochs-1, r.Config.IterationsPerEpoch)

	results := make([]EpochResult, 0, r.Config.Epochs-start)
	event := trace.EventNone
	for epoch := start; epoch < r.Config.Epochs; epoch++ {
		st := s.State()
		rate := s.NextRate()
		results = append(results, EpochResult{Epoch: epoch, Rate: rate, Event: event})
		if r.Trace != nil && r.Trace.Config.Level == trace.TraceLevelEpochs {
			r.Trace.RecordRate(trace.RateRecord{Epoch: epoch, Iteration: st.Iteration, Rate: rate, CycleIndex: st.CycleIndex, Event: event})
		}

		for i := 0; i < r.Config.IterationsPerEpoch; i++ {
			if r.Trace != nil && r.Trace.Config.Level == trace.TraceLevelIterations {
				cur := s.State()
				r.Trace.RecordRate(trace.RateRecord{Epoch: epoch, Iteration: cur.Iteration, Rate: s.NextRate(), CycleIndex: cur.CycleIndex, Event: event})
				event = trace.EventNone
			}
			s.OnIterationEnd()
		}

		if err := s.OnEpochEnd(r.metricFor(epoch)); err != nil {
			return results, fmt.Errorf("epoch %d: %w", epoch, err)
		}
		event = eventFor(s, st, s.State())
		switch event {
		case trace.EventRestart:
			logrus.Infof("%s: warm restart after epoch %d, next rate %g", s.Name(), epoch, s.NextRate())
		case trace.EventReduction:
			logrus.Infof("%s: rate reduced after epoch %d to %g", s.Name(), epoch, s.NextRate())
		}
		logrus.Debugf("%s: epoch %d done, rate was %g", s.Name(), epoch, rate)
	}
	return results, nil
}

// metricFor returns the recorded validation metric of epoch, or nil past the end of the history.
func (r *Runner) metricFor(epoch int) *float64 {
	if epoch < len(r.Config.Metrics) {
		return &r.Config.Metrics[epoch]
	}
	return nil
}

// eventFor classifies a change of cycle index across one epoch boundary.
func eventFor(s schedule.RateSchedule, before, after schedule.State) trace.RateEvent {
	if after.CycleIndex == before.CycleIndex {
		return trace.EventNone
	}
	switch s.(type) {
	case *schedule.WarmRestart:
		return trace.EventRestart
	case *schedule.Plateau:
		return trace.EventReduction
	}
	return trace.EventNone
}

// Evaluate scores one evaluation batch with the runner's classifier and records
// it in the trace. trueBatch rows must be the true classes' centroids.
func (r *Runner) Evaluate(predicted, trueBatch [][]float64) ([]bool, error) {
	if r.Classifier == nil {
		return nil, fmt.Errorf("runner has no classifier")
	}
	correct, err := r.Classifier.Evaluate(predicted, trueBatch)
	if err != nil {
		return nil, err
	}
	meanDist, err := metric.MeanDistance(trueBatch, predicted)
	if err != nil {
		return nil, err
	}
	n := 0
	for _, ok := range correct {
		if ok {
			n++
		}
	}
	epoch := r.Schedule.State().Epoch
	if r.Trace != nil {
		r.Trace.RecordEvaluation(trace.EvalRecord{Epoch: epoch, Samples: len(correct), Correct: n, MeanDistance: meanDist})
	}
	logrus.Infof("epoch %d: nearest-centroid accuracy %.4f over %d samples, mean distance %.4f", epoch, metric.Accuracy(correct), len(correct), meanDist)
	return correct, nil
}
