package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorchat/metricsbox/internal/config"
)

func TestNewWithDefaults(t *testing.T) {
	a, err := New(config.Default())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.NotNil(t, a.Aggregator)
	assert.NotNil(t, a.PrometheusExporter)
	assert.Nil(t, a.OTELExporter)
	assert.NotNil(t, a.Server)
	assert.Nil(t, a.Workload)
}

func TestNewWithWorkload(t *testing.T) {
	cfg := config.Default()
	cfg.Workload.Enabled = true
	require.NoError(t, cfg.Workload.Validate())

	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.NotNil(t, a.Workload)
}

func TestAggregatorWiredToConfig(t *testing.T) {
	cfg := config.Default()
	detailed := false
	cfg.Metrics.Detailed = &detailed

	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	// Detailed recording disabled: writes leave no raw series behind.
	a.Aggregator.IncrementCounter("c", nil, 1)
	assert.Zero(t, a.Aggregator.HealthMetrics().Series.RawSeries)
}
