// Package apiio exposes hydromon's data over HTTP as JSON.
package apiio

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/oceandata/hydromon/internal/ent/store"
	"github.com/oceandata/hydromon/pkg/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves the hydromon HTTP API.
type Server struct {
	httpServer *http.Server
	store      store.Store
	metrics    *Metrics
	chunkSize  int
}

// New creates a Server with all routes registered. The server does not
// listen until Start is called.
func New(cfg config.Config, st store.Store, m *Metrics) *Server {
	s := &Server{
		store:     st,
		metrics:   m,
		chunkSize: cfg.ChunkSize,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/register", s.handleRegister)

	mux.HandleFunc("GET /api/users", s.handleListUsers)
	mux.HandleFunc("POST /api/users", s.handleCreateUser)
	mux.HandleFunc("GET /api/users/{id}", s.handleGetUser)
	mux.HandleFunc("PUT /api/users/{id}", s.handleUpdateUser)
	mux.HandleFunc("DELETE /api/users/{id}", s.handleDeleteUser)

	mux.HandleFunc("GET /api/hydrodata", s.handleHydroData)
	mux.HandleFunc("GET /api/fish", s.handleFish)
	mux.HandleFunc("GET /api/monitoring-data", s.handleMonitoringData)

	mux.HandleFunc("POST /api/import/hydrodata", s.handleImportHydroData)
	mux.HandleFunc("POST /api/import/fish", s.handleImportFish)

	mux.HandleFunc("GET /api/test", s.handleTest)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.withCommon(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Start listens on the configured address and blocks until the server
// stops. It returns http.ErrServerClosed after a graceful Shutdown.
func (s *Server) Start() error {
	slog.Info("Starting HTTP API", "address", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP API")
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP lets tests drive the full middleware and routing stack
// without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// statusWriter records the status code written by a handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// withCommon applies CORS headers, request logging and request metrics
// to every route.
func (s *Server) withCommon(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods",
			"GET, POST, PUT, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(sw, r)

		s.metrics.RequestsTotal.
			WithLabelValues(r.Method, strconv.Itoa(sw.status)).Inc()
		slog.Info("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Cannot encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "API connection successful",
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
