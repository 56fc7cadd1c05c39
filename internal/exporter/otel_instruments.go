package exporter

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/tutorchat/metricsbox/metrics"
)

// refreshInstruments scans the aggregator snapshot and registers an
// observable instrument for every counter and gauge name not seen
// before. Histogram series are not pushed over OTLP; they are served
// as summaries by the Prometheus collector.
func (e *OTELExporter) refreshInstruments() error {
	snap := e.agg.Snapshot()

	for name := range snap.Counters {
		if _, ok := e.counters[name]; ok {
			continue
		}
		counter, err := e.meter.Float64ObservableCounter(
			name,
			otelmetric.WithFloat64Callback(e.observeCounter(name)),
		)
		if err != nil {
			return fmt.Errorf("failed to create counter %q: %w", name, err)
		}
		e.counters[name] = counter
		slog.Info("registered otel metric", "name", name, "type", "counter")
	}

	for name := range snap.Gauges {
		if _, ok := e.gauges[name]; ok {
			continue
		}
		gauge, err := e.meter.Float64ObservableGauge(
			name,
			otelmetric.WithFloat64Callback(e.observeGauge(name)),
		)
		if err != nil {
			return fmt.Errorf("failed to create gauge %q: %w", name, err)
		}
		e.gauges[name] = gauge
		slog.Info("registered otel metric", "name", name, "type", "gauge")
	}

	return nil
}

// observeCounter builds the callback reporting all tagged series of
// one counter name.
func (e *OTELExporter) observeCounter(name string) otelmetric.Float64Callback {
	return func(_ context.Context, observer otelmetric.Float64Observer) error {
		snap := e.agg.Snapshot()
		for _, entry := range snap.Counters[name] {
			observer.Observe(entry.Value,
				otelmetric.WithAttributes(tagAttributes(entry.Tags)...))
		}
		return nil
	}
}

// observeGauge builds the callback reporting all tagged series of one
// gauge name.
func (e *OTELExporter) observeGauge(name string) otelmetric.Float64Callback {
	return func(_ context.Context, observer otelmetric.Float64Observer) error {
		snap := e.agg.Snapshot()
		for _, entry := range snap.Gauges[name] {
			observer.Observe(entry.Value,
				otelmetric.WithAttributes(tagAttributes(entry.Tags)...))
		}
		return nil
	}
}

// tagAttributes converts a tag set to OTEL attributes.
func tagAttributes(tags metrics.Tags) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(tags))
	for k, v := range tags {
		attrs = append(attrs, attribute.String(k, v))
	}
	return attrs
}
