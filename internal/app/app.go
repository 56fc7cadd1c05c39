package app

import (
	"fmt"

	"github.com/tutorchat/metricsbox/internal/config"
	"github.com/tutorchat/metricsbox/internal/exporter"
	"github.com/tutorchat/metricsbox/internal/generator"
	"github.com/tutorchat/metricsbox/internal/server"
	"github.com/tutorchat/metricsbox/metrics"
)

// App holds initialized application components.
type App struct {
	Config             *config.Config
	Aggregator         *metrics.Aggregator
	PrometheusExporter *exporter.PrometheusExporter
	OTELExporter       *exporter.OTELExporter
	Server             *server.Server
	Workload           *generator.Generator
}

// New initializes the application from a resolved configuration.
func New(cfg *config.Config) (*App, error) {
	agg := metrics.New(metrics.Config{
		Retention:           cfg.Metrics.Retention,
		MaxHistogramSamples: cfg.Metrics.MaxHistogramSamples,
		CleanupInterval:     cfg.Metrics.CleanupInterval,
		DisableDetailed:     !cfg.Metrics.DetailedEnabled(),
	})

	a := &App{
		Config:     cfg,
		Aggregator: agg,
	}

	if cfg.Export.Prometheus != nil && cfg.Export.Prometheus.Enabled {
		a.PrometheusExporter = exporter.NewPrometheusExporter(cfg.Export.Prometheus, agg)
	}

	if cfg.Export.OTEL != nil && cfg.Export.OTEL.Enabled {
		otelExporter, err := exporter.NewOTELExporter(cfg.Export.OTEL, agg)
		if err != nil {
			agg.Close()
			return nil, fmt.Errorf("failed to create OTEL exporter: %w", err)
		}
		a.OTELExporter = otelExporter
	}

	if cfg.Server.Enabled {
		a.Server = server.New(cfg.Server.Port, agg)
	}

	if cfg.Workload.Enabled {
		a.Workload = generator.New(&cfg.Workload, agg)
	}

	return a, nil
}

// Close releases the aggregator's background resources.
func (a *App) Close() {
	a.Aggregator.Close()
}
