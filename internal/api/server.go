// Package api exposes the scenario evaluator over HTTP JSON so external
// rendering clients can drive it. The evaluator core stays network-free;
// this package owns the request lifecycle, request IDs, and metrics.
package api

import (
	"context"
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gridmix/gridmix/internal/config"
	"github.com/gridmix/gridmix/internal/dataset"
	"github.com/gridmix/gridmix/internal/scenario"
)

// requestIDHeader is honored on requests and always set on responses.
const requestIDHeader = "X-Request-ID"

type ctxKey int

const requestIDKey ctxKey = 0

// Server serves scenario evaluations over the configured dataset. The
// dataset and mix are fixed at construction; requests only vary the window
// and the baseload fractions.
type Server struct {
	cfg    *config.Config
	table  *dataset.Table
	mix    scenario.Mix
	logger zerolog.Logger
	mux    *http.ServeMux
}

// New builds a Server around an already-loaded table and validated config.
func New(cfg *config.Config, table *dataset.Table, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		table:  table,
		mix:    cfg.ScenarioMix(),
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/scenarios", s.handleScenarios)
	mux.HandleFunc("/api/v1/dataset", s.handleDataset)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())
	s.mux = mux

	datasetHours.Set(float64(table.Len()))
	return s
}

// Handler returns the full middleware-wrapped handler chain.
func (s *Server) Handler() http.Handler {
	return s.withRequestID(s.mux)
}

// withRequestID tags every request with an ID for log correlation.
//
// Extraction order:
//  1. X-Request-ID header from the caller
//  2. UUID generation
//
// The ID is echoed in the response header and carried in the request
// context.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))

		// The counter is labeled by matched route, keeping the label set
		// bounded; requests that match no route are not counted.
		if _, route := s.mux.Handler(r); route != "" {
			httpRequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		}
		s.logger.Info().
			Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Msg("request")
	})
}

// requestIDFrom returns the request ID stored by withRequestID, or "" when
// the middleware did not run.
func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON encodes v as the response body. Encoding failures are logged;
// the status line has already been sent by then.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("encode response")
	}
}

// writeError sends a JSON error payload. The request ID rides along so
// clients can quote it back.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.logger.Error().
		Str("request_id", requestIDFrom(r.Context())).
		Str("path", r.URL.Path).
		Int("status", status).
		Str("error", msg).
		Msg("request failed")
	s.writeJSON(w, status, map[string]string{
		"error":      msg,
		"request_id": requestIDFrom(r.Context()),
	})
}
