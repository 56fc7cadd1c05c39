package metrics

import "time"

// TimerHandle identifies an open timed operation between StartTimer
// and EndTimer. Handles are opaque; the zero handle is invalid and
// ends with a warning.
type TimerHandle struct {
	key  seriesKey
	name string
	tags Tags
}

// StartTimer records the current time for the series and returns a
// handle for EndTimer. Starting a second timer for the same name and
// tags before the first one ends overwrites the pending entry; only
// one timer per series is tracked at a time.
func (a *Aggregator) StartTimer(name string, tags Tags) TimerHandle {
	now := a.now()
	key := newSeriesKey(name, tags)
	tags = tags.clone()

	a.mu.Lock()
	a.timers[key] = pendingTimer{name: name, tags: tags, start: now}
	a.mu.Unlock()

	return TimerHandle{key: key, name: name, tags: tags}
}

// EndTimer completes the timed operation: it removes the pending
// entry, records the elapsed time as a histogram sample in
// milliseconds under the timer's name and tags, and returns the
// duration. An unknown handle (never started, or already ended) logs
// a warning and returns 0 without touching any histogram.
func (a *Aggregator) EndTimer(h TimerHandle) time.Duration {
	now := a.now()

	a.mu.Lock()
	t, ok := a.timers[h.key]
	if !ok {
		a.mu.Unlock()
		a.log.Warn("ending unknown timer", "name", h.name, "tags", h.key.tags)
		return 0
	}
	delete(a.timers, h.key)
	a.mu.Unlock()

	d := now.Sub(t.start)
	a.RecordHistogram(t.name, durationMillis(d), t.tags)
	return d
}

// durationMillis converts a duration to fractional milliseconds, the
// unit all duration histograms are recorded in.
func durationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
