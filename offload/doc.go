// Package offload implements the adaptive split-point controller for
// device/edge split inference.
//
// # Reading Guide
//
// Start with these three files to understand the decision core:
//   - history.go: per-layer sliding window of execution times and the stability verdict
//   - monitor.go: per-source histories, smoothed cost tables, and cascading variance flags
//   - coordinator.go: the per-request record+decide critical section
//
// # Architecture
//
// A layered model is cut at a split point: the device executes layers
// [0, split] and the edge executes the rest. The controller picks the split
// point per request from smoothed per-layer timings and a transfer-cost
// estimate, and occasionally overrides it with the SplitLocalOnly sentinel
// to force a full-local round that refreshes device-side measurements.
//
// The pieces, leaves first:
//   - History: bounded FIFO window of samples, coefficient-of-variation verdict
//   - Monitor: owns one History per layer per source (local, remote), the EMA
//     cost tables consumed by the optimizer, and the variance flag sets
//   - Optimizer: evaluates every candidate split and picks the cheapest
//   - RefreshGate: memoryless Bernoulli gate that forces full-local rounds
//   - Coordinator: one instance per model; serializes record+decide under a mutex
//
// The simulation harness (scenario.go, simulator.go, delay.go) drives a
// Coordinator with synthetic per-layer timings so controller behavior can be
// studied without real devices; it is not part of the decision path.
//
// Execution, transport, and model management live outside this package: the
// controller only ever sees reported timings and returns an integer decision.
package offload
