// Package metrics is an in-process, ephemeral telemetry aggregator:
// counters, gauges, bounded sample-buffer histograms with on-demand
// percentile stats, request/agent tracking composites, retention-based
// cleanup, and snapshot plus Prometheus text export.
//
// The aggregator is strictly best-effort. No operation errors, blocks,
// or panics in normal use; reads on absent series return zero-value
// sentinels, and memory is bounded by a per-histogram sample cap and a
// retention window enforced by a periodic background sweep.
//
// Construct one Aggregator per process with New, pass it to every
// collaborator that records telemetry, and Close it when done.
package metrics
