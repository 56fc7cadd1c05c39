package metrics

import (
	"math"
	"sort"
	"time"
)

// HistogramStats summarizes one histogram series at a point in time.
type HistogramStats struct {
	Count       int       `json:"count"`
	Sum         float64   `json:"sum"`
	Mean        float64   `json:"mean"`
	Min         float64   `json:"min"`
	Max         float64   `json:"max"`
	P50         float64   `json:"p50"`
	P90         float64   `json:"p90"`
	P95         float64   `json:"p95"`
	P99         float64   `json:"p99"`
	LastUpdated time.Time `json:"last_updated"`
}

// HistogramStats computes summary statistics for the named histogram
// series. Returns nil if the series is absent or holds no samples.
func (a *Aggregator) HistogramStats(name string, tags Tags) *HistogramStats {
	key := newSeriesKey(name, tags)

	a.mu.RLock()
	h, ok := a.histograms[key]
	if !ok || len(h.samples) == 0 {
		a.mu.RUnlock()
		return nil
	}
	values := make([]float64, len(h.samples))
	for i, s := range h.samples {
		values[i] = s.value
	}
	updated := h.updated
	a.mu.RUnlock()

	return computeStats(values, updated)
}

// computeStats derives the stat block from a value slice. The slice is
// sorted in place.
func computeStats(values []float64, updated time.Time) *HistogramStats {
	sort.Float64s(values)

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	n := len(values)

	return &HistogramStats{
		Count:       n,
		Sum:         sum,
		Mean:        sum / float64(n),
		Min:         values[0],
		Max:         values[n-1],
		P50:         percentile(values, 0.50),
		P90:         percentile(values, 0.90),
		P95:         percentile(values, 0.95),
		P99:         percentile(values, 0.99),
		LastUpdated: updated,
	}
}

// percentile estimates quantile p over ascending-sorted values using
// linear interpolation between closest ranks: index = (n-1)*p, exact
// element for integer index, otherwise a weighted blend of the two
// neighbors. An empty slice yields 0.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := float64(n-1) * p
	lower := math.Floor(idx)
	upper := math.Ceil(idx)
	if lower == upper {
		return sorted[int(idx)]
	}
	frac := idx - lower
	return sorted[int(lower)]*(1-frac) + sorted[int(upper)]*frac
}
