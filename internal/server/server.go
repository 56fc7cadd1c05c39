package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tutorchat/metricsbox/metrics"
)

// Server exposes the aggregator's snapshot and health over HTTP. Its
// own requests are tracked through the aggregator, so the ops API
// shows up in the data it serves.
type Server struct {
	addr   string
	agg    *metrics.Aggregator
	server *http.Server
}

// New creates the ops API server on the given port.
func New(port int, agg *metrics.Aggregator) *Server {
	addr := fmt.Sprintf(":%d", port)

	s := &Server{
		addr: addr,
		agg:  agg,
	}

	mux := http.NewServeMux()
	mux.Handle("GET /snapshot", s.tracked("/snapshot", s.handleSnapshot))
	mux.Handle("GET /health", s.tracked("/health", s.handleHealth))

	s.server = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	return s
}

// tracked instruments a handler with the request/response composites.
func (s *Server) tracked(endpoint string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := s.agg.TrackRequest(endpoint, r.Method, nil)
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.agg.TrackResponse(h, rw.status, rw.status < http.StatusBadRequest)
	})
}

// statusWriter captures the response status for instrumentation.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.agg.Snapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.agg.HealthMetrics())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

// Start begins serving HTTP requests.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		slog.Info("starting ops server", "addr", s.addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return s.shutdown()
	}
}

// shutdown gracefully stops the server.
func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("shutting down ops server")
	return s.server.Shutdown(ctx)
}
