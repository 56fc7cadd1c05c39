package generator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorchat/metricsbox/internal/config"
	"github.com/tutorchat/metricsbox/metrics"
)

func TestStepTracksRequestAndAgent(t *testing.T) {
	agg := metrics.New(metrics.Config{})
	t.Cleanup(agg.Close)

	cfg := &config.WorkloadConfig{
		Enabled:  true,
		Interval: 10 * time.Millisecond,
		Duration: config.RangeConfig{Min: 1, Max: 5},
	}
	require.NoError(t, cfg.Validate())

	g := New(cfg, agg)
	for i := 0; i < len(routes); i++ {
		g.step()
	}

	var requests float64
	for _, r := range routes {
		requests += agg.GetCounter(metrics.MetricAPIRequests, metrics.Tags{
			"endpoint": r.endpoint,
			"method":   r.method,
			"mode":     r.mode,
		})
	}
	assert.Equal(t, float64(len(routes)), requests)

	var agentCalls float64
	for _, op := range agentOps {
		agentCalls += agg.GetCounter(metrics.MetricAgentRequests, metrics.Tags{
			"agent":     op.agent,
			"operation": op.operation,
		})
	}
	assert.Equal(t, float64(len(routes)), agentCalls)

	// Every request completed: no pending timers left behind.
	assert.Zero(t, agg.HealthMetrics().Series.Timers)
}

func TestStepRotatesRoutes(t *testing.T) {
	agg := metrics.New(metrics.Config{})
	t.Cleanup(agg.Close)

	cfg := &config.WorkloadConfig{Enabled: true}
	require.NoError(t, cfg.Validate())

	g := New(cfg, agg)
	g.step()
	g.step()

	first := routes[0]
	second := routes[1]
	assert.Equal(t, 1.0, agg.GetCounter(metrics.MetricAPIRequests, metrics.Tags{
		"endpoint": first.endpoint, "method": first.method, "mode": first.mode,
	}))
	assert.Equal(t, 1.0, agg.GetCounter(metrics.MetricAPIRequests, metrics.Tags{
		"endpoint": second.endpoint, "method": second.method, "mode": second.mode,
	}))
}
