package monitor

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/tutorchat/metricsbox/metrics"
)

// Gauge names fed into the aggregator each collection.
const (
	GaugeProcessCPU       = "process.cpu.percent"
	GaugeProcessHeapMB    = "process.memory.heap_alloc_mb"
	GaugeProcessGoroutine = "process.goroutines"
)

// Monitor samples process resource usage into the aggregator and logs
// saturation indicators.
type Monitor struct {
	interval time.Duration
	agg      *metrics.Aggregator
	logger   *slog.Logger
	wg       sync.WaitGroup
	proc     *process.Process
}

// New creates a monitor with the specified collection interval.
func New(interval time.Duration, agg *metrics.Aggregator, logger *slog.Logger) *Monitor {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		logger.Error("failed to get process handle", "error", err)
		return nil
	}

	return &Monitor{
		interval: interval,
		agg:      agg,
		logger:   logger,
		proc:     proc,
	}
}

// Run starts the monitoring loop in a background goroutine.
func (m *Monitor) Run(ctx context.Context) {
	m.wg.Go(func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		// Immediate first collection
		m.collect()

		for {
			select {
			case <-ctx.Done():
				m.logger.Info("monitor shutdown complete")
				return
			case <-ticker.C:
				m.collect()
			}
		}
	})
}

// Wait blocks until the monitor goroutine exits.
func (m *Monitor) Wait() {
	m.wg.Wait()
}

// collect reads current resource usage, records it as gauges, and
// warns on CPU saturation.
func (m *Monitor) collect() {
	processCPU, err := m.proc.CPUPercent()
	if err != nil {
		m.logger.Warn("failed to get CPU percent", "error", err)
		processCPU = 0
	}

	cores := runtime.GOMAXPROCS(-1)
	maxCPU := float64(cores * 100)

	utilization := 0.0
	if maxCPU > 0 {
		utilization = processCPU / maxCPU
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	goroutines := runtime.NumGoroutine()
	heapMB := float64(ms.HeapAlloc) / (1024 * 1024)

	m.agg.SetGauge(GaugeProcessCPU, processCPU, nil)
	m.agg.SetGauge(GaugeProcessHeapMB, heapMB, nil)
	m.agg.SetGauge(GaugeProcessGoroutine, float64(goroutines), nil)

	m.logger.Debug("resource sample",
		"cpu", processCPU,
		"heap_mb", heapMB,
		"gor", goroutines,
		"gc", ms.NumGC)

	if utilization > 0.95 {
		m.logger.Warn("cpu saturation detected",
			"cpu", processCPU,
			"util_pct", utilization*100,
			"action", "reduce load or increase GOMAXPROCS",
		)
	}
}
