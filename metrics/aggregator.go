package metrics

import (
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultRetention bounds the age of detailed raw points,
	// histogram samples, and pending timers.
	DefaultRetention = 24 * time.Hour

	// DefaultMaxHistogramSamples caps each histogram series; the
	// oldest samples are evicted first once the cap is exceeded.
	DefaultMaxHistogramSamples = 10_000

	// DefaultCleanupInterval is the cadence of the background
	// retention sweep.
	DefaultCleanupInterval = time.Hour
)

// Config holds aggregator settings. The zero value is usable: all
// fields default per the constants above, detailed recording is on,
// and logging goes to slog.Default().
type Config struct {
	// Retention is the maximum age of any detailed raw point,
	// histogram sample, or pending timer before it becomes eligible
	// for cleanup.
	Retention time.Duration

	// MaxHistogramSamples is the hard cap per histogram series.
	MaxHistogramSamples int

	// CleanupInterval is how often the background sweep runs.
	CleanupInterval time.Duration

	// DisableDetailed suppresses the raw per-point time series.
	// Counters, gauges, and histograms are always recorded.
	DisableDetailed bool

	// Logger receives the misuse warnings and cleanup reports.
	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.Retention <= 0 {
		c.Retention = DefaultRetention
	}
	if c.MaxHistogramSamples <= 0 {
		c.MaxHistogramSamples = DefaultMaxHistogramSamples
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = DefaultCleanupInterval
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// counterSeries is a monotonically increasing value for one series.
type counterSeries struct {
	value   float64
	tags    Tags
	updated time.Time
}

// gaugeSeries holds the last value set for one series.
type gaugeSeries struct {
	value   float64
	tags    Tags
	updated time.Time
}

// sample is one histogram observation.
type sample struct {
	value float64
	at    time.Time
}

// histogramSeries is a bounded, insertion-ordered sample buffer.
type histogramSeries struct {
	samples []sample
	tags    Tags
	updated time.Time
}

// pendingTimer is an open timed operation awaiting EndTimer.
type pendingTimer struct {
	name  string
	tags  Tags
	start time.Time
}

// metricKind distinguishes raw-point series by instrument type.
type metricKind string

const (
	kindCounter   metricKind = "counter"
	kindGauge     metricKind = "gauge"
	kindHistogram metricKind = "histogram"
)

// rawKey addresses one detailed raw-point series.
type rawKey struct {
	kind metricKind
	name string
}

// rawPoint is one detailed observation kept for ad-hoc analysis.
type rawPoint struct {
	value float64
	tags  Tags
	at    time.Time
}

// Aggregator owns all counters, gauges, histograms, pending timers,
// and detailed raw points for one process. It is safe for concurrent
// use. Operations never fail: reads on absent series return zero-value
// sentinels, and the only warning condition is ending a timer that was
// never started.
//
// Construct with New and hand the instance to every collaborator that
// records telemetry; Close stops the background sweep.
type Aggregator struct {
	cfg Config
	log *slog.Logger

	mu         sync.RWMutex
	counters   map[seriesKey]*counterSeries
	gauges     map[seriesKey]*gaugeSeries
	histograms map[seriesKey]*histogramSeries
	timers     map[seriesKey]pendingTimer
	raw        map[rawKey][]rawPoint
	start      time.Time

	now func() time.Time

	closeOnce sync.Once
	done      chan struct{}
}

// New creates an aggregator and starts its periodic cleanup sweep.
func New(cfg Config) *Aggregator {
	cfg = cfg.withDefaults()
	a := &Aggregator{
		cfg:  cfg,
		log:  cfg.Logger,
		now:  time.Now,
		done: make(chan struct{}),
	}
	a.initState()
	go a.runCleanup()
	return a
}

// initState resets all series maps and the uptime origin.
// Callers must hold the write lock, except during construction.
func (a *Aggregator) initState() {
	a.counters = make(map[seriesKey]*counterSeries)
	a.gauges = make(map[seriesKey]*gaugeSeries)
	a.histograms = make(map[seriesKey]*histogramSeries)
	a.timers = make(map[seriesKey]pendingTimer)
	a.raw = make(map[rawKey][]rawPoint)
	a.start = a.now()
}

// Close stops the background cleanup loop. The aggregator remains
// usable afterwards; only the periodic sweep stops.
func (a *Aggregator) Close() {
	a.closeOnce.Do(func() { close(a.done) })
}

// IncrementCounter adds amount to the named counter series, creating
// it on first use. Amount is conventionally non-negative.
func (a *Aggregator) IncrementCounter(name string, tags Tags, amount float64) {
	now := a.now()
	key := newSeriesKey(name, tags)

	a.mu.Lock()
	c, ok := a.counters[key]
	if !ok {
		c = &counterSeries{tags: tags.clone()}
		a.counters[key] = c
	}
	c.value += amount
	c.updated = now
	a.appendRawLocked(kindCounter, name, amount, tags, now)
	a.mu.Unlock()
}

// SetGauge overwrites the named gauge series with value.
func (a *Aggregator) SetGauge(name string, value float64, tags Tags) {
	now := a.now()
	key := newSeriesKey(name, tags)

	a.mu.Lock()
	g, ok := a.gauges[key]
	if !ok {
		g = &gaugeSeries{tags: tags.clone()}
		a.gauges[key] = g
	}
	g.value = value
	g.updated = now
	a.appendRawLocked(kindGauge, name, value, tags, now)
	a.mu.Unlock()
}

// RecordHistogram appends a sample to the named histogram series,
// evicting the oldest samples once the configured cap is exceeded.
func (a *Aggregator) RecordHistogram(name string, value float64, tags Tags) {
	now := a.now()
	key := newSeriesKey(name, tags)

	a.mu.Lock()
	h, ok := a.histograms[key]
	if !ok {
		h = &histogramSeries{tags: tags.clone()}
		a.histograms[key] = h
	}
	h.samples = append(h.samples, sample{value: value, at: now})
	if excess := len(h.samples) - a.cfg.MaxHistogramSamples; excess > 0 {
		h.samples = append(h.samples[:0], h.samples[excess:]...)
	}
	h.updated = now
	a.appendRawLocked(kindHistogram, name, value, tags, now)
	a.mu.Unlock()
}

// GetCounter returns the counter's current value, or 0 if the series
// does not exist.
func (a *Aggregator) GetCounter(name string, tags Tags) float64 {
	key := newSeriesKey(name, tags)

	a.mu.RLock()
	defer a.mu.RUnlock()
	if c, ok := a.counters[key]; ok {
		return c.value
	}
	return 0
}

// GetGauge returns the gauge's current value. The second result is
// false if the series does not exist.
func (a *Aggregator) GetGauge(name string, tags Tags) (float64, bool) {
	key := newSeriesKey(name, tags)

	a.mu.RLock()
	defer a.mu.RUnlock()
	if g, ok := a.gauges[key]; ok {
		return g.value, true
	}
	return 0, false
}

// Reset wipes all counters, gauges, histograms, pending timers, and
// raw points, and restarts the uptime origin.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	a.initState()
	a.mu.Unlock()
}

// Uptime reports the time elapsed since construction or the last Reset.
func (a *Aggregator) Uptime() time.Duration {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.now().Sub(a.start)
}

// appendRawLocked records a detailed raw point, dropping points older
// than the retention window on each write. Callers hold the write lock.
func (a *Aggregator) appendRawLocked(kind metricKind, name string, value float64, tags Tags, now time.Time) {
	if a.cfg.DisableDetailed {
		return
	}
	key := rawKey{kind: kind, name: name}
	cutoff := now.Add(-a.cfg.Retention)
	points := a.raw[key]
	kept := points[:0]
	for _, p := range points {
		if !p.at.Before(cutoff) {
			kept = append(kept, p)
		}
	}
	a.raw[key] = append(kept, rawPoint{value: value, tags: tags.clone(), at: now})
}
