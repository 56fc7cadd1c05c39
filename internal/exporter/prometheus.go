package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tutorchat/metricsbox/internal/config"
	"github.com/tutorchat/metricsbox/metrics"
)

// Internal metric names for the exporter's self-instrumentation.
const (
	promScrapesTotal   = "metricsbox_prometheus_scrapes_total"
	promScrapeDuration = "metricsbox_prometheus_scrape_duration_seconds"
)

// PrometheusExporter serves the aggregator's series over a Prometheus
// pull endpoint.
type PrometheusExporter struct {
	addr         string
	path         string
	server       *http.Server
	promRegistry *prometheus.Registry

	// Internal metrics
	scrapesTotal   prometheus.Counter
	scrapeDuration prometheus.Histogram
}

// NewPrometheusExporter creates a Prometheus HTTP exporter reading the
// given aggregator.
func NewPrometheusExporter(cfg *config.PrometheusExportConfig, agg *metrics.Aggregator) *PrometheusExporter {
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(newCollector(agg))

	mux := http.NewServeMux()
	addr := fmt.Sprintf(":%d", cfg.Port)

	e := &PrometheusExporter{
		addr:         addr,
		path:         cfg.Path,
		promRegistry: promRegistry,
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}

	if cfg.InternalMetrics {
		e.scrapesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: promScrapesTotal,
			Help: "Total number of scrape requests",
		})
		e.scrapeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    promScrapeDuration,
			Help:    "Duration of scrape requests in seconds",
			Buckets: prometheus.DefBuckets,
		})

		promRegistry.MustRegister(e.scrapesTotal, e.scrapeDuration)

		slog.Info("registered prometheus internal metrics",
			"scrapes_total", promScrapesTotal,
			"scrape_duration", promScrapeDuration)
	}

	mux.Handle(cfg.Path, e.instrumentedHandler(promhttp.HandlerFor(
		promRegistry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		},
	)))

	return e
}

// instrumentedHandler wraps the Prometheus handler with internal metrics instrumentation.
func (e *PrometheusExporter) instrumentedHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer func() {
			if e.scrapesTotal != nil {
				e.scrapesTotal.Inc()
			}
			if e.scrapeDuration != nil {
				e.scrapeDuration.Observe(time.Since(start).Seconds())
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// Start begins serving HTTP requests.
func (e *PrometheusExporter) Start(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		slog.Info("starting prometheus exporter", "addr", e.addr, "path", e.path)
		if err := e.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return e.Stop()
	}
}

// Stop gracefully stops the exporter.
func (e *PrometheusExporter) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("shutting down prometheus exporter")
	return e.server.Shutdown(ctx)
}
