// Package harness replays a learning-rate schedule the way a host training loop
// would drive it: one NextRate/OnIterationEnd pair per optimizer step and one
// OnEpochEnd per epoch, fed from a recorded validation-metric history.
// Evaluation batches are scored by nearest-centroid lookup.
//
// The harness computes no gradients; it exists to inspect schedules and to
// score recorded embeddings.
package harness
