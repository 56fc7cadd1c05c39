package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultRetention, cfg.Metrics.Retention)
	assert.Equal(t, DefaultMaxHistogramSamples, cfg.Metrics.MaxHistogramSamples)
	assert.Equal(t, DefaultCleanupInterval, cfg.Metrics.CleanupInterval)
	assert.True(t, cfg.Metrics.DetailedEnabled())

	require.NotNil(t, cfg.Export.Prometheus)
	assert.True(t, cfg.Export.Prometheus.Enabled)
	assert.Equal(t, DefaultPrometheusPort, cfg.Export.Prometheus.Port)
	assert.Equal(t, DefaultPrometheusPath, cfg.Export.Prometheus.Path)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
metrics:
  retention: 1h
  max_histogram_samples: 500
  cleanup_interval: 10m
  detailed: false
export:
  prometheus:
    enabled: true
    port: 9191
    path: /prom
    internal_metrics: true
  otel:
    enabled: true
    transport: http
    interval:
      read: 5s
      push: 15s
server:
  enabled: true
  port: 8081
monitor:
  enabled: true
workload:
  enabled: true
  duration:
    min: 10
    max: 100
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.Metrics.Retention)
	assert.Equal(t, 500, cfg.Metrics.MaxHistogramSamples)
	assert.Equal(t, 10*time.Minute, cfg.Metrics.CleanupInterval)
	assert.False(t, cfg.Metrics.DetailedEnabled())

	assert.Equal(t, 9191, cfg.Export.Prometheus.Port)
	assert.Equal(t, "/prom", cfg.Export.Prometheus.Path)
	assert.True(t, cfg.Export.Prometheus.InternalMetrics)

	require.NotNil(t, cfg.Export.OTEL)
	assert.Equal(t, "http", cfg.Export.OTEL.Transport)
	assert.Equal(t, DefaultOTELPortHTTP, cfg.Export.OTEL.Port)
	assert.Equal(t, 5*time.Second, cfg.Export.OTEL.Interval.Read)
	assert.Equal(t, 15*time.Second, cfg.Export.OTEL.Interval.Push)
	assert.Equal(t, DefaultServiceName, cfg.Export.OTEL.Resource["service.name"])

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, DefaultMonitorInterval, cfg.Monitor.Interval)
	assert.Equal(t, DefaultWorkloadInterval, cfg.Workload.Interval)
	assert.Equal(t, 10, cfg.Workload.Duration.Min)
}

func TestLoadSimpleIntervalForm(t *testing.T) {
	path := writeConfig(t, `
export:
  otel:
    enabled: true
    interval: 30s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Export.OTEL.Interval.Read)
	assert.Equal(t, 30*time.Second, cfg.Export.OTEL.Interval.Push)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad transport", "export:\n  otel:\n    enabled: true\n    transport: udp\n"},
		{"bad prometheus port", "export:\n  prometheus:\n    enabled: true\n    port: 70000\n"},
		{"bad server port", "server:\n  enabled: true\n  port: -1\n"},
		{"bad workload range", "workload:\n  enabled: true\n  duration:\n    min: 100\n    max: 10\n"},
		{"not yaml", "{{{\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.Server.Enabled)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	require.NotNil(t, cfg.Export.Prometheus)
	assert.True(t, cfg.Export.Prometheus.Enabled)
}
