// Package web serves the import status endpoint.
//
// While a long import runs, GET /progress returns the live counters as
// JSON so an external dashboard can render progress without touching
// the import process. The parser itself does no I/O for this; the
// endpoint polls the progress reporter.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/NaturalHistoryMuseum/KEParser/internal/logging"
	"github.com/NaturalHistoryMuseum/KEParser/internal/progress"
)

// Server is the HTTP status server for a running import.
type Server struct {
	reporter *progress.Reporter
	router   *chi.Mux
	server   *http.Server
}

// NewServer returns a server exposing reporter on addr.
func NewServer(reporter *progress.Reporter, addr string) *Server {
	s := &Server{
		reporter: reporter,
		router:   chi.NewRouter(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(10 * time.Second))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/progress", s.handleProgress)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return s
}

// Start begins serving. It blocks until the server stops; run it in a
// goroutine. http.ErrServerClosed is swallowed as the normal shutdown
// result.
func (s *Server) Start() error {
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	snap := s.reporter.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		logging.FromContext(r.Context()).Error("encode progress", "error", err)
	}
}
