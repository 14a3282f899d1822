// Package controller contains the controller-specific logic for the HTTP API.
package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"clipline/internal/controller/handlers"
	"clipline/internal/controller/middleware"
)

// Enqueue rate limit per project. Clients retry with backoff on 429.
const (
	enqueueRPS   = 5
	enqueueBurst = 10
)

// Server is the HTTP server for the controller API.
type Server struct {
	httpServer *http.Server
}

// New creates a new controller server.
func New(addr string, store handlers.StoreFactory, logger *slog.Logger, metricsHandler http.Handler) *Server {
	h := handlers.New(store, logger)
	limitMW := middleware.RateLimitMiddleware(enqueueRPS, enqueueBurst)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /projects", h.CreateProject)
	mux.HandleFunc("GET /projects/{projectID}", h.GetProject)
	mux.HandleFunc("DELETE /projects/{projectID}", h.DeleteProject)
	mux.HandleFunc("GET /projects/{projectID}/clips", h.ListClips)

	// Queue surface. Enqueue is rate limited per project; reads are cheap
	// indexed lookups and stay unlimited for client polling.
	mux.Handle("POST /projects/{projectID}/jobs", limitMW(http.HandlerFunc(h.EnqueueJob)))
	mux.HandleFunc("GET /projects/{projectID}/jobs", h.ListJobs)
	mux.HandleFunc("GET /jobs/{id}", h.GetJob)

	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)

	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutDownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.Shutdown(shutDownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
