// Package digi provides the core pixel-matrix digitization engine: a
// clock-driven simulation of a binary-readout pixel chip and the
// Hoshen-Kopelman clustering pipeline that turns fired pixels into hits.
//
// # Reading Guide
//
// Start with these three files to understand the pipeline:
//   - matrix.go: PixelDigiMatrix, the per-pixel charge/threshold state machine
//   - partition.go: GridPartitionedSet, the union-find connected-component scan
//   - sensor.go: HKSensor, the per-tick orchestration and hit building
//
// # Architecture
//
// An external front end deposits charge into the PixelDigiMatrix and calls
// HKSensor.BuildHits to drain finalized hits. One BuildHits call runs clock
// cycles until the matrix goes quiet: each cycle advances every pixel by one
// state-machine step (threshold crossing, aging, linear charge depletion),
// labels the connected components of pixels currently over threshold, and
// feeds them into one ClusterHeap per sensor segment. The heap merges
// clusters that overlap across cycles and releases a cluster once it stops
// growing; released clusters become SegmentDigiHit records with a
// charge-weighted centroid and a packed cell ID.
//
// # Extension points
//
// ClusterProcessor is an injected hook that reshapes raw clusters (for
// example splitting merged ones) before they reach the heap; the clustering
// engine itself never changes. The workload sub-package generates synthetic
// deposition events for the CLI and for integration tests.
package digi
