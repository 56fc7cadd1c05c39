package metrics

import "time"

// Metric names produced by the tracking composites.
const (
	MetricAPIRequests        = "api.requests"
	MetricAPIRequestDuration = "api.request_duration"
	MetricAPIResponses       = "api.responses"
	MetricAPIErrors          = "api.errors"

	MetricAgentRequests = "agent.requests"
	MetricAgentDuration = "agent.duration"
	MetricAgentErrors   = "agent.errors"
)

// TrackRequest records an incoming API request: it increments
// api.requests tagged with endpoint and method and starts a duration
// timer under api.request_duration with the same tags. Complete the
// request with TrackResponse.
func (a *Aggregator) TrackRequest(endpoint, method string, tags Tags) TimerHandle {
	t := tags.clone()
	if t == nil {
		t = make(Tags, 2)
	}
	t["endpoint"] = endpoint
	t["method"] = method

	a.IncrementCounter(MetricAPIRequests, t, 1)
	return a.StartTimer(MetricAPIRequestDuration, t)
}

// TrackResponse completes a request started with TrackRequest: it ends
// the duration timer, increments api.responses tagged with the status
// code and success flag, and additionally increments api.errors when
// success is false. Returns the request duration.
func (a *Aggregator) TrackResponse(h TimerHandle, statusCode int, success bool) time.Duration {
	d := a.EndTimer(h)

	respTags := h.tags.clone()
	if respTags == nil {
		respTags = make(Tags, 2)
	}
	respTags["status"] = TagInt(statusCode)
	respTags["success"] = TagBool(success)

	a.IncrementCounter(MetricAPIResponses, respTags, 1)
	if !success {
		a.IncrementCounter(MetricAPIErrors, h.tags, 1)
	}
	return d
}

// TrackAgentUsage records one agent operation: an agent.requests
// increment, an agent.duration histogram sample, and an agent.errors
// increment when the operation failed — all tagged by agent and
// operation.
func (a *Aggregator) TrackAgentUsage(agent, operation string, d time.Duration, success bool) {
	tags := Tags{"agent": agent, "operation": operation}

	a.IncrementCounter(MetricAgentRequests, tags, 1)
	a.RecordHistogram(MetricAgentDuration, durationMillis(d), tags)
	if !success {
		a.IncrementCounter(MetricAgentErrors, tags, 1)
	}
}

// Health summarizes request error rate, latency, uptime, and series
// cardinality for liveness endpoints.
type Health struct {
	ErrorRate         float64      `json:"error_rate"`
	AvgResponseTimeMs float64      `json:"avg_response_time_ms"`
	UptimeMs          int64        `json:"uptime_ms"`
	Series            SeriesCounts `json:"series"`
}

// SeriesCounts reports how many series of each kind are held in
// memory, a proxy for the aggregator's footprint.
type SeriesCounts struct {
	Counters   int `json:"counters"`
	Gauges     int `json:"gauges"`
	Histograms int `json:"histograms"`
	Timers     int `json:"timers"`
	RawSeries  int `json:"raw_series"`
}

// HealthMetrics derives the health summary. The error rate is
// errors/requests*100 summed across every tagged series of the two
// counters, 0 when no requests have been seen; the average response
// time is the combined mean of all api.request_duration samples, 0
// when none exist.
func (a *Aggregator) HealthMetrics() Health {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var requests, errors float64
	for key, c := range a.counters {
		switch key.name {
		case MetricAPIRequests:
			requests += c.value
		case MetricAPIErrors:
			errors += c.value
		}
	}

	errorRate := 0.0
	if requests > 0 {
		errorRate = errors / requests * 100
	}

	var durSum float64
	var durCount int
	for key, h := range a.histograms {
		if key.name != MetricAPIRequestDuration {
			continue
		}
		for _, s := range h.samples {
			durSum += s.value
		}
		durCount += len(h.samples)
	}

	avg := 0.0
	if durCount > 0 {
		avg = durSum / float64(durCount)
	}

	return Health{
		ErrorRate:         errorRate,
		AvgResponseTimeMs: avg,
		UptimeMs:          a.now().Sub(a.start).Milliseconds(),
		Series: SeriesCounts{
			Counters:   len(a.counters),
			Gauges:     len(a.gauges),
			Histograms: len(a.histograms),
			Timers:     len(a.timers),
			RawSeries:  len(a.raw),
		},
	}
}
