// Package api exposes the job supervisor's HTTP control plane: a thin,
// read-mostly REST surface over a *jobsupervisor.Supervisor plus an
// NDJSON event stream. The route table, status codes and JSON shapes are
// a fixed external contract and must not drift.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/devtud/jobsupervisor/internal/jobsupervisor"
)

// maxRequestBodySize limits request body to prevent memory exhaustion.
const maxRequestBodySize = 8 * 1024 * 1024 // 8MB

// Server is the HTTP control plane for a single Supervisor.
type Server struct {
	port       int
	auth       string
	supervisor *jobsupervisor.Supervisor
	server     *http.Server
	logger     *slog.Logger
}

// NewServer creates a new API server bound to the given supervisor. auth,
// when non-empty, is the bearer token required on every request.
func NewServer(port int, auth string, supervisor *jobsupervisor.Supervisor, log *slog.Logger) *Server {
	return &Server{
		port:       port,
		auth:       auth,
		supervisor: supervisor,
		logger:     log,
	}
}

// Start registers routes and begins serving in the background. It returns
// without waiting for the listener to bind; a listen or serve error is
// logged, not returned.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/jobs", s.wrapHandler(s.handleListJobs))
	mux.HandleFunc("GET /api/jobs/{name}", s.wrapHandler(s.handleGetJob))
	mux.HandleFunc("GET /api/jobs/{name}/start", s.wrapHandler(s.handleStartJob))
	mux.HandleFunc("GET /api/jobs/{name}/cancel", s.wrapHandler(s.handleCancelJob))
	mux.HandleFunc("GET /api/log-stream", s.wrapHandler(s.handleLogStream))

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // the log stream handler holds the connection open indefinitely
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server stopped unexpectedly", "error", err)
		}
	}()

	s.logger.Info("api server listening", "port", s.port)
	return nil
}

// Stop gracefully shuts down the HTTP server, waiting for in-flight
// requests (including log-stream subscribers) up to ctx's deadline.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Port returns the port the server is listening on.
func (s *Server) Port() int { return s.port }

// authMiddleware checks Bearer token authentication.
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.auth == "" {
			next(w, r)
			return
		}
		expected := "Bearer " + s.auth
		if r.Header.Get("Authorization") != expected {
			s.respondDetail(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

// panicRecoveryMiddleware recovers from panics in a handler and returns a
// 500 instead of crashing the server.
func (s *Server) panicRecoveryMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered in api handler",
					"error", rec,
					"path", r.URL.Path,
					"method", r.Method,
					"stack", string(debug.Stack()),
				)
				s.respondDetail(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next(w, r)
	}
}

// bodyLimitMiddleware caps request body size to prevent memory exhaustion.
func (s *Server) bodyLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		}
		next(w, r)
	}
}

// wrapHandler applies the middleware stack common to every route:
// panicRecovery -> bodyLimit -> auth -> handler.
func (s *Server) wrapHandler(handler http.HandlerFunc) http.HandlerFunc {
	h := s.authMiddleware(handler)
	h = s.bodyLimitMiddleware(h)
	h = s.panicRecoveryMiddleware(h)
	return h
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.supervisor.List())
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	info, err := s.supervisor.Get(name)
	if err != nil {
		s.respondJobError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleStartJob(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.supervisor.Start(name); err != nil {
		s.respondJobError(w, err)
		return
	}
	info, err := s.supervisor.Get(name)
	if err != nil {
		s.respondJobError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if _, err := s.supervisor.Cancel(name); err != nil {
		s.respondJobError(w, err)
		return
	}
	info, err := s.supervisor.Get(name)
	if err != nil {
		s.respondJobError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, info)
}

// handleLogStream writes the event log as newline-delimited JSON, starting
// from the beginning of the log and following new events as they arrive
// until the client disconnects.
func (s *Server) handleLogStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondDetail(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	events := s.supervisor.StreamEvents(r.Context())
	for event := range events {
		if err := enc.Encode(event); err != nil {
			s.logger.Warn("log-stream encode failed, dropping subscriber", "error", err)
			return
		}
		flusher.Flush()
	}
}

// respondJobError maps a Supervisor error to the wire contract's status
// codes, preserving the legacy 402 used for "already running"/"not
// running" responses.
func (s *Server) respondJobError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, jobsupervisor.ErrJobNotFound):
		s.respondDetail(w, http.StatusNotFound, "Job not found")
	case errors.Is(err, jobsupervisor.ErrJobAlreadyRunning):
		s.respondLegacy402(w, "Job already running")
	case errors.Is(err, jobsupervisor.ErrJobNotRunning):
		s.respondLegacy402(w, "Job not running")
	case errors.Is(err, jobsupervisor.ErrJobAlreadyExists):
		s.respondDetail(w, http.StatusConflict, err.Error())
	case errors.Is(err, jobsupervisor.ErrInvalidCronExpr):
		s.respondDetail(w, http.StatusBadRequest, err.Error())
	default:
		s.respondDetail(w, httpStatusFromError(err), err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode json response", "error", err)
	}
}

// respondDetail writes the plain {"detail": ...} shape used by every
// non-legacy error response in the wire contract.
func (s *Server) respondDetail(w http.ResponseWriter, status int, detail string) {
	s.respondJSON(w, status, map[string]string{"detail": detail})
}

// respondLegacy402 writes the {"detail": ..., "status_code": 402} shape
// the original interface used for already-running/not-running conflicts.
// This is a bit-compatibility requirement, not a modeling choice: a plain
// 409 would be the idiomatic status here, but callers depend on 402.
func (s *Server) respondLegacy402(w http.ResponseWriter, detail string) {
	s.respondJSON(w, http.StatusPaymentRequired, map[string]interface{}{
		"detail":      detail,
		"status_code": http.StatusPaymentRequired,
	})
}

// httpStatusFromError is the fallback classifier for errors that aren't
// one of the supervisor's sentinels, kept as a safety net the same way
// the system this was modeled on keeps a string-matching fallback
// alongside its typed errors.
func httpStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	lowered := strings.ToLower(err.Error())
	if strings.Contains(lowered, "not found") || strings.Contains(lowered, "does not exist") {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
