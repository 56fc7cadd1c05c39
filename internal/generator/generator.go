package generator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/neox5/simv/clock"
	"github.com/neox5/simv/source"
	"github.com/neox5/simv/value"

	"github.com/tutorchat/metricsbox/internal/config"
	"github.com/tutorchat/metricsbox/metrics"
)

// route is one synthetic API call shape.
type route struct {
	endpoint string
	method   string
	mode     string
}

// agentOp is one synthetic agent operation shape.
type agentOp struct {
	agent     string
	operation string
}

var routes = []route{
	{"/api/chat", "POST", "chat"},
	{"/api/quiz", "POST", "quiz"},
	{"/api/story", "POST", "story"},
	{"/api/learning-path", "GET", "path"},
}

var agentOps = []agentOp{
	{"quizmaster", "generate"},
	{"storyteller", "feedback"},
	{"tutor", "explain"},
}

// failurePercent of synthetic calls complete with a 500.
const failurePercent = 5

// Generator drives synthetic chat/quiz traffic through the aggregator
// so the exporters have live data to serve. Durations and failure
// rolls come from simv random sources ticking on a periodic clock.
type Generator struct {
	interval time.Duration
	clock    clock.Clock
	duration *value.Value[int]
	chance   *value.Value[int]
	agg      *metrics.Aggregator

	wg   sync.WaitGroup
	tick int
}

// New creates a workload generator from configuration.
func New(cfg *config.WorkloadConfig, agg *metrics.Aggregator) *Generator {
	clk := clock.NewPeriodicClock(cfg.Interval)

	durationSrc := source.NewRandomIntSource(clk, cfg.Duration.Min, cfg.Duration.Max)
	chanceSrc := source.NewRandomIntSource(clk, 0, 99)

	return &Generator{
		interval: cfg.Interval,
		clock:    clk,
		duration: value.New(durationSrc),
		chance:   value.New(chanceSrc),
		agg:      agg,
	}
}

// Run starts the workload loop in a background goroutine.
func (g *Generator) Run(ctx context.Context) {
	g.clock.Start()

	g.wg.Go(func() {
		defer g.clock.Stop()

		ticker := time.NewTicker(g.interval)
		defer ticker.Stop()

		slog.Info("starting workload generator", "interval", g.interval)

		for {
			select {
			case <-ctx.Done():
				slog.Info("workload generator shutdown complete")
				return
			case <-ticker.C:
				g.step()
			}
		}
	})
}

// Wait blocks until the workload goroutine exits.
func (g *Generator) Wait() {
	g.wg.Wait()
}

// step plays one synthetic request and one agent operation.
func (g *Generator) step() {
	r := routes[g.tick%len(routes)]
	op := agentOps[g.tick%len(agentOps)]
	g.tick++

	failed := g.chance.Value() < failurePercent
	status := 200
	if failed {
		status = 500
	}

	h := g.agg.TrackRequest(r.endpoint, r.method, metrics.Tags{"mode": r.mode})
	g.agg.TrackResponse(h, status, !failed)

	simulated := time.Duration(g.duration.Value()) * time.Millisecond
	g.agg.TrackAgentUsage(op.agent, op.operation, simulated, !failed)
}
