// Package metric provides the embedding-distance metrics used to assess
// training: per-sample distances between a predicted and a target embedding,
// and nearest-centroid accuracy against a fixed set of class centroids.
//
// Everything here is reporting only. Nothing feeds back into gradients.
package metric
