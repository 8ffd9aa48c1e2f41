// Package schedule provides the learning-rate scheduling engine.
//
// # Variants
//
// Four schedules implement RateSchedule and are selected by name through Build:
//   - "sgd": Plateau, reduces the rate when a monitored validation metric stalls
//   - "sgdr": WarmRestart, cosine annealing with cycles that grow after each restart
//   - "clr": Cyclic, a triangular wave driven by optimizer iterations
//   - "resnet-schedule": StepDecay, a fixed piecewise-constant epoch schedule
//
// # Driving a schedule
//
// The host loop reads NextRate before each step and advances the schedule with
// OnIterationEnd after every optimizer step and OnEpochEnd after every epoch.
// Cyclic moves on iterations; the other variants move on epochs. Plateau needs
// the epoch's validation metric passed to OnEpochEnd.
//
// A schedule owns its State. Callers must serialize all calls on one schedule;
// nothing in this package spawns goroutines or blocks.
package schedule
