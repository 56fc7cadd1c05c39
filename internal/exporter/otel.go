package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/tutorchat/metricsbox/internal/config"
	"github.com/tutorchat/metricsbox/metrics"
)

// OTELExporter pushes aggregator series to an OTEL collector. Because
// the aggregator's series set is dynamic, the exporter rescans the
// snapshot on the read interval and registers observable instruments
// lazily for every metric name it discovers; each instrument's
// callback then observes all tagged series of that name on the SDK
// reader's push cadence.
type OTELExporter struct {
	config        *config.OTELExportConfig
	agg           *metrics.Aggregator
	meterProvider *sdkmetric.MeterProvider
	meter         otelmetric.Meter

	counters map[string]otelmetric.Float64ObservableCounter
	gauges   map[string]otelmetric.Float64ObservableGauge
}

// NewOTELExporter creates an OTEL exporter for the given aggregator.
func NewOTELExporter(cfg *config.OTELExportConfig, agg *metrics.Aggregator) (*OTELExporter, error) {
	res, err := createOTELResource(cfg.Resource)
	if err != nil {
		return nil, err
	}

	meterProvider, err := createMeterProvider(cfg, res)
	if err != nil {
		return nil, err
	}

	e := &OTELExporter{
		config:        cfg,
		agg:           agg,
		meterProvider: meterProvider,
		meter:         meterProvider.Meter("metricsbox"),
		counters:      make(map[string]otelmetric.Float64ObservableCounter),
		gauges:        make(map[string]otelmetric.Float64ObservableGauge),
	}

	// Register instruments for series that already exist.
	if err := e.refreshInstruments(); err != nil {
		return nil, fmt.Errorf("failed to register instruments: %w", err)
	}

	return e, nil
}

// Start runs the instrument discovery loop until the context is
// cancelled, then shuts the meter provider down.
func (e *OTELExporter) Start(ctx context.Context) error {
	slog.Info("starting otel exporter",
		"endpoint", e.config.GetEndpoint(),
		"transport", e.config.Transport,
		"read_interval", e.config.Interval.Read,
		"push_interval", e.config.Interval.Push,
	)

	ticker := time.NewTicker(e.config.Interval.Read)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return e.Stop()
		case <-ticker.C:
			if err := e.refreshInstruments(); err != nil {
				slog.Warn("otel instrument refresh failed", "error", err)
			}
		}
	}
}

// Stop gracefully stops the exporter, flushing pending pushes.
func (e *OTELExporter) Stop() error {
	slog.Info("shutting down otel exporter")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return e.meterProvider.Shutdown(ctx)
}
