// Package httpapi serves a read-only status surface over the migration
// history: health, applied rows, and pending units.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"db_prog_object_migrator/internal/db"
	"db_prog_object_migrator/internal/migrate"
)

type requestLogger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Server wires the status handlers behind a chi router.
type Server struct {
	addr    string
	logger  requestLogger
	adapter db.Adapter
	units   []migrate.Migration
}

// New builds a Server. units is the registered migration set used to compute
// pending IDs; pass migrate.Registered().
func New(addr string, logger requestLogger, adapter db.Adapter, units []migrate.Migration) *Server {
	return &Server{addr: addr, logger: logger, adapter: adapter, units: units}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("status api starting", "addr", s.addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("status api shutting down")
		return httpServer.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}

// Routes builds the router; exposed separately so tests can drive it with
// httptest.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(requestLogging(s.logger))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/migrations", s.handleMigrations)
		r.Get("/status", s.handleStatus)
	})
	return r
}
