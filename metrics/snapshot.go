package metrics

import "time"

// CounterEntry is one tagged counter series inside a snapshot.
type CounterEntry struct {
	Value       float64   `json:"value"`
	Tags        Tags      `json:"tags,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}

// GaugeEntry is one tagged gauge series inside a snapshot.
type GaugeEntry struct {
	Value       float64   `json:"value"`
	Tags        Tags      `json:"tags,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}

// HistogramEntry is one tagged histogram series inside a snapshot,
// summarized to its stat block.
type HistogramEntry struct {
	Stats       HistogramStats `json:"stats"`
	Tags        Tags           `json:"tags,omitempty"`
	LastUpdated time.Time      `json:"last_updated"`
}

// Snapshot is the structured export of every series, grouped by
// metric name.
type Snapshot struct {
	Counters   map[string][]CounterEntry   `json:"counters"`
	Gauges     map[string][]GaugeEntry     `json:"gauges"`
	Histograms map[string][]HistogramEntry `json:"histograms"`
	UptimeMs   int64                       `json:"uptime_ms"`
	Timestamp  time.Time                   `json:"timestamp"`
}

// Snapshot returns a point-in-time summary of all counter, gauge, and
// histogram series grouped by metric name. Tag sets are defensive
// copies; the caller may retain the result.
func (a *Aggregator) Snapshot() *Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	snap := &Snapshot{
		Counters:   make(map[string][]CounterEntry),
		Gauges:     make(map[string][]GaugeEntry),
		Histograms: make(map[string][]HistogramEntry),
		UptimeMs:   a.now().Sub(a.start).Milliseconds(),
		Timestamp:  a.now(),
	}

	for key, c := range a.counters {
		snap.Counters[key.name] = append(snap.Counters[key.name], CounterEntry{
			Value:       c.value,
			Tags:        c.tags.clone(),
			LastUpdated: c.updated,
		})
	}

	for key, g := range a.gauges {
		snap.Gauges[key.name] = append(snap.Gauges[key.name], GaugeEntry{
			Value:       g.value,
			Tags:        g.tags.clone(),
			LastUpdated: g.updated,
		})
	}

	for key, h := range a.histograms {
		if len(h.samples) == 0 {
			continue
		}
		values := make([]float64, len(h.samples))
		for i, s := range h.samples {
			values[i] = s.value
		}
		snap.Histograms[key.name] = append(snap.Histograms[key.name], HistogramEntry{
			Stats:       *computeStats(values, h.updated),
			Tags:        h.tags.clone(),
			LastUpdated: h.updated,
		})
	}

	return snap
}
