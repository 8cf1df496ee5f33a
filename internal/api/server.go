// Package api exposes the matching pipeline over HTTP.
package api

import (
	"net/http"
	"time"

	"alumni-match/internal/common/config"
	"alumni-match/internal/common/logger"
	"alumni-match/internal/pipeline"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds the HTTP surface for the matching endpoint.
type Server struct {
	pipeline *pipeline.Pipeline
	cfg      config.ServerConfig
	logger   logger.Logger
}

// NewServer creates the HTTP layer over an assembled pipeline.
func NewServer(p *pipeline.Pipeline, cfg config.ServerConfig, log logger.Logger) *Server {
	return &Server{
		pipeline: p,
		cfg:      cfg,
		logger:   log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// Router builds the route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.recovery)
	r.Use(s.requestLogger)

	r.Post("/api/match", s.handleMatch)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

type ctxKey string

const requestIDKey ctxKey = "requestID"

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(withRequestID(r.Context(), id)))
	})
}

func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic while handling request", map[string]interface{}{
					"panic":     rec,
					"path":      r.URL.Path,
					"requestId": requestIDFrom(r.Context()),
				})
				writeError(w, http.StatusInternalServerError, "internal server error", 0)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.logger.Info("request handled", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     sw.status,
			"durationMs": time.Since(started).Milliseconds(),
			"requestId":  requestIDFrom(r.Context()),
		})
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
