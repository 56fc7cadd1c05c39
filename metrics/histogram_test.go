package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogramStatsInterpolation(t *testing.T) {
	a := newTestAggregator(t, Config{})
	tags := Tags{"agent": "quizmaster"}

	for v := 1; v <= 10; v++ {
		a.RecordHistogram("agent.duration", float64(v), tags)
	}

	stats := a.HistogramStats("agent.duration", tags)
	require.NotNil(t, stats)

	assert.Equal(t, 10, stats.Count)
	assert.Equal(t, 55.0, stats.Sum)
	assert.Equal(t, 5.5, stats.Mean)
	assert.Equal(t, 1.0, stats.Min)
	assert.Equal(t, 10.0, stats.Max)
	assert.Equal(t, 5.5, stats.P50)
	assert.InDelta(t, 9.1, stats.P90, 1e-9)
	assert.InDelta(t, 9.55, stats.P95, 1e-9)
	assert.InDelta(t, 9.91, stats.P99, 1e-9)
}

func TestHistogramStatsAbsentSeries(t *testing.T) {
	a := newTestAggregator(t, Config{})
	assert.Nil(t, a.HistogramStats("never.recorded", nil))
}

func TestHistogramStatsSingleSample(t *testing.T) {
	a := newTestAggregator(t, Config{})
	a.RecordHistogram("h", 42, nil)

	stats := a.HistogramStats("h", nil)
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.Count)
	assert.Equal(t, 42.0, stats.P50)
	assert.Equal(t, 42.0, stats.P99)
	assert.Equal(t, 42.0, stats.Min)
	assert.Equal(t, 42.0, stats.Max)
}

func TestHistogramCapEvictsOldestFirst(t *testing.T) {
	a := newTestAggregator(t, Config{MaxHistogramSamples: 3})

	for v := 1; v <= 4; v++ {
		a.RecordHistogram("h", float64(v), nil)
	}

	stats := a.HistogramStats("h", nil)
	require.NotNil(t, stats)
	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, 2.0, stats.Min)
	assert.Equal(t, 4.0, stats.Max)
	assert.Equal(t, 9.0, stats.Sum)
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty", nil, 0.5, 0},
		{"single", []float64{7}, 0.99, 7},
		{"exact index", []float64{1, 2, 3}, 0.5, 2},
		{"interpolated", []float64{1, 2}, 0.5, 1.5},
		{"p0", []float64{3, 5, 9}, 0, 3},
		{"p100", []float64{3, 5, 9}, 1, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, percentile(tt.sorted, tt.p), 1e-9)
		})
	}
}
