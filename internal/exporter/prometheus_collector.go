package exporter

import (
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tutorchat/metricsbox/metrics"
)

// nameSanitizer converts dotted aggregator names to the Prometheus
// naming convention.
var nameSanitizer = strings.NewReplacer(".", "_", "-", "_")

// sanitizeName returns the Prometheus form of an aggregator metric name.
func sanitizeName(name string) string {
	return nameSanitizer.Replace(name)
}

// collector implements prometheus.Collector over an aggregator
// snapshot taken on each scrape. Counters and gauges map directly;
// histogram series are exposed as summaries carrying the aggregator's
// q50/q90/q95/q99 stats.
type collector struct {
	agg *metrics.Aggregator
}

// newCollector creates a collector reading the given aggregator.
func newCollector(agg *metrics.Aggregator) *collector {
	return &collector{agg: agg}
}

// Describe sends no descriptors: the series set is dynamic, so the
// collector registers as unchecked and builds descriptors per scrape.
func (c *collector) Describe(ch chan<- *prometheus.Desc) {}

// Collect snapshots the aggregator and emits every series.
// This is called on each Prometheus scrape.
func (c *collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.agg.Snapshot()

	for name, entries := range snap.Counters {
		promName := sanitizeName(name)
		for _, e := range entries {
			names, values := labelPairs(e.Tags)
			m, err := prometheus.NewConstMetric(
				prometheus.NewDesc(promName, "", names, nil),
				prometheus.CounterValue,
				e.Value,
				values...,
			)
			if err != nil {
				continue
			}
			ch <- m
		}
	}

	for name, entries := range snap.Gauges {
		promName := sanitizeName(name)
		for _, e := range entries {
			names, values := labelPairs(e.Tags)
			m, err := prometheus.NewConstMetric(
				prometheus.NewDesc(promName, "", names, nil),
				prometheus.GaugeValue,
				e.Value,
				values...,
			)
			if err != nil {
				continue
			}
			ch <- m
		}
	}

	for name, entries := range snap.Histograms {
		promName := sanitizeName(name)
		for _, e := range entries {
			names, values := labelPairs(e.Tags)
			m, err := prometheus.NewConstSummary(
				prometheus.NewDesc(promName, "", names, nil),
				uint64(e.Stats.Count),
				e.Stats.Sum,
				map[float64]float64{
					0.5:  e.Stats.P50,
					0.9:  e.Stats.P90,
					0.95: e.Stats.P95,
					0.99: e.Stats.P99,
				},
				values...,
			)
			if err != nil {
				continue
			}
			ch <- m
		}
	}
}

// labelPairs splits a tag set into sorted label names and their values.
// Sorted order keeps descriptors consistent across scrapes.
func labelPairs(tags metrics.Tags) ([]string, []string) {
	if len(tags) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(tags))
	for k := range tags {
		names = append(names, k)
	}
	sort.Strings(names)

	values := make([]string, len(names))
	for i, k := range names {
		values[i] = tags[k]
	}
	return names, values
}
