package config

import (
	"fmt"
	"time"
)

const (
	// Aggregator defaults
	DefaultRetention           = 24 * time.Hour
	DefaultMaxHistogramSamples = 10_000
	DefaultCleanupInterval     = time.Hour

	// Ops server defaults
	DefaultServerPort = 8080

	// Monitor defaults
	DefaultMonitorInterval = 5 * time.Second

	// Workload defaults
	DefaultWorkloadInterval    = 250 * time.Millisecond
	DefaultWorkloadMinDuration = 20
	DefaultWorkloadMaxDuration = 900
)

// Config holds the complete daemon configuration.
type Config struct {
	Metrics  MetricsConfig  `yaml:"metrics"`
	Export   ExportConfig   `yaml:"export"`
	Server   ServerConfig   `yaml:"server"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Workload WorkloadConfig `yaml:"workload"`
}

// Validate applies defaults and validates all sections.
func (c *Config) Validate() error {
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.Export.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Monitor.Validate(); err != nil {
		return err
	}
	return c.Workload.Validate()
}

// MetricsConfig controls the aggregator's retention behavior.
type MetricsConfig struct {
	Retention           time.Duration `yaml:"retention"`
	MaxHistogramSamples int           `yaml:"max_histogram_samples"`
	CleanupInterval     time.Duration `yaml:"cleanup_interval"`
	Detailed            *bool         `yaml:"detailed"`
}

// Validate applies defaults and validates aggregator settings.
func (m *MetricsConfig) Validate() error {
	if m.Retention == 0 {
		m.Retention = DefaultRetention
	}
	if m.MaxHistogramSamples == 0 {
		m.MaxHistogramSamples = DefaultMaxHistogramSamples
	}
	if m.CleanupInterval == 0 {
		m.CleanupInterval = DefaultCleanupInterval
	}
	if m.Detailed == nil {
		detailed := true
		m.Detailed = &detailed
	}

	if m.Retention < 0 {
		return fmt.Errorf("invalid retention: %s", m.Retention)
	}
	if m.MaxHistogramSamples < 0 {
		return fmt.Errorf("invalid max_histogram_samples: %d", m.MaxHistogramSamples)
	}
	if m.CleanupInterval < 0 {
		return fmt.Errorf("invalid cleanup_interval: %s", m.CleanupInterval)
	}
	return nil
}

// DetailedEnabled reports whether raw per-point recording is on.
func (m *MetricsConfig) DetailedEnabled() bool {
	return m.Detailed == nil || *m.Detailed
}

// ServerConfig defines the ops API server (snapshot and health).
type ServerConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Validate applies defaults and validates server configuration.
func (s *ServerConfig) Validate() error {
	if !s.Enabled {
		return nil
	}
	if s.Port == 0 {
		s.Port = DefaultServerPort
	}
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", s.Port)
	}
	return nil
}

// MonitorConfig defines the process resource monitor.
type MonitorConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// Validate applies defaults and validates monitor configuration.
func (m *MonitorConfig) Validate() error {
	if !m.Enabled {
		return nil
	}
	if m.Interval == 0 {
		m.Interval = DefaultMonitorInterval
	}
	if m.Interval < 0 {
		return fmt.Errorf("invalid monitor interval: %s", m.Interval)
	}
	return nil
}

// WorkloadConfig defines the synthetic traffic driver used to exercise
// the aggregator in demos and soak runs.
type WorkloadConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	Duration RangeConfig   `yaml:"duration"`
}

// RangeConfig bounds a randomly generated integer value.
type RangeConfig struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Validate applies defaults and validates workload configuration.
func (w *WorkloadConfig) Validate() error {
	if !w.Enabled {
		return nil
	}
	if w.Interval == 0 {
		w.Interval = DefaultWorkloadInterval
	}
	if w.Interval < 0 {
		return fmt.Errorf("invalid workload interval: %s", w.Interval)
	}
	if w.Duration.Min == 0 && w.Duration.Max == 0 {
		w.Duration.Min = DefaultWorkloadMinDuration
		w.Duration.Max = DefaultWorkloadMaxDuration
	}
	if w.Duration.Min < 0 || w.Duration.Max < w.Duration.Min {
		return fmt.Errorf("invalid workload duration range: [%d, %d]", w.Duration.Min, w.Duration.Max)
	}
	return nil
}
