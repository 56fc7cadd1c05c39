package metrics

import "time"

// Cleanup drops every histogram sample and detailed raw point older
// than the retention window, and expires pending timers that were
// never ended within it. Returns the number of entries removed and
// logs a summary only when something was dropped; an immediate second
// call removes nothing. The same pass runs automatically on the
// configured interval until Close.
func (a *Aggregator) Cleanup() int {
	cutoff := a.now().Add(-a.cfg.Retention)

	// Snapshot the key sets first so no lock is held across the full
	// scan; each series is filtered in its own short critical section.
	a.mu.RLock()
	histKeys := make([]seriesKey, 0, len(a.histograms))
	for key := range a.histograms {
		histKeys = append(histKeys, key)
	}
	rawKeys := make([]rawKey, 0, len(a.raw))
	for key := range a.raw {
		rawKeys = append(rawKeys, key)
	}
	timerKeys := make([]seriesKey, 0, len(a.timers))
	for key := range a.timers {
		timerKeys = append(timerKeys, key)
	}
	a.mu.RUnlock()

	removed := 0

	for _, key := range histKeys {
		a.mu.Lock()
		if h, ok := a.histograms[key]; ok {
			kept := h.samples[:0]
			for _, s := range h.samples {
				if !s.at.Before(cutoff) {
					kept = append(kept, s)
				}
			}
			removed += len(h.samples) - len(kept)
			h.samples = kept
		}
		a.mu.Unlock()
	}

	for _, key := range rawKeys {
		a.mu.Lock()
		if points, ok := a.raw[key]; ok {
			kept := points[:0]
			for _, p := range points {
				if !p.at.Before(cutoff) {
					kept = append(kept, p)
				}
			}
			removed += len(points) - len(kept)
			a.raw[key] = kept
		}
		a.mu.Unlock()
	}

	for _, key := range timerKeys {
		a.mu.Lock()
		if t, ok := a.timers[key]; ok && t.start.Before(cutoff) {
			delete(a.timers, key)
			removed++
		}
		a.mu.Unlock()
	}

	if removed > 0 {
		a.log.Info("metrics cleanup", "removed", removed, "retention", a.cfg.Retention)
	}
	return removed
}

// runCleanup is the background sweep loop started by New.
func (a *Aggregator) runCleanup() {
	ticker := time.NewTicker(a.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.done:
			return
		case <-ticker.C:
			a.Cleanup()
		}
	}
}
