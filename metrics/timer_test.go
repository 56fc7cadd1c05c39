package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerRoundTrip(t *testing.T) {
	a := newTestAggregator(t, Config{})
	tags := Tags{"endpoint": "/chat"}

	base := time.Now()
	a.now = func() time.Time { return base }
	h := a.StartTimer("api.request_duration", tags)

	a.now = func() time.Time { return base.Add(250 * time.Millisecond) }
	d := a.EndTimer(h)

	assert.Equal(t, 250*time.Millisecond, d)

	stats := a.HistogramStats("api.request_duration", tags)
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.Count)
	assert.Equal(t, 250.0, stats.Max)
}

func TestEndTimerUnknownHandle(t *testing.T) {
	a := newTestAggregator(t, Config{})

	d := a.EndTimer(TimerHandle{})
	assert.Zero(t, d)
	assert.Zero(t, a.HealthMetrics().Series.Histograms)
}

func TestEndTimerTwice(t *testing.T) {
	a := newTestAggregator(t, Config{})
	tags := Tags{"endpoint": "/quiz"}

	h := a.StartTimer("api.request_duration", tags)
	first := a.EndTimer(h)
	second := a.EndTimer(h)

	assert.GreaterOrEqual(t, first, time.Duration(0))
	assert.Zero(t, second)

	stats := a.HistogramStats("api.request_duration", tags)
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.Count)
}

func TestStartTimerOverwritesPending(t *testing.T) {
	a := newTestAggregator(t, Config{})
	tags := Tags{"endpoint": "/story"}

	base := time.Now()
	a.now = func() time.Time { return base }
	a.StartTimer("api.request_duration", tags)

	a.now = func() time.Time { return base.Add(time.Second) }
	h := a.StartTimer("api.request_duration", tags)

	a.now = func() time.Time { return base.Add(2 * time.Second) }
	d := a.EndTimer(h)

	// Duration measured from the second start, and only one pending
	// entry existed for the series.
	assert.Equal(t, time.Second, d)
	stats := a.HistogramStats("api.request_duration", tags)
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.Count)
}
