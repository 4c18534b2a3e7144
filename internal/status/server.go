package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kiddolearn/kiddo-player/internal/metrics"
	"github.com/kiddolearn/kiddo-player/internal/playback"
	"github.com/kiddolearn/kiddo-player/internal/version"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// SnapshotSource provides the current playback state.  It is called from HTTP handler goroutines.
type SnapshotSource interface {
	Snapshot() playback.State
}

// Server is a small read-only HTTP server exposing health, metrics and the current playback state
type Server struct {
	addr    string
	log     *slog.Logger
	handler http.Handler
}

// New builds the status server.  Metrics may be nil, in which case /metrics is not mounted.
func New(addr string, source SnapshotSource, met *metrics.Metrics, log *slog.Logger) *Server {
	s := &Server{addr: addr, log: log}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(log))
	if met != nil {
		r.Use(metrics.RequestMiddleware(met))
		r.Method(http.MethodGet, "/metrics", met.Handler())
	}
	r.Get("/healthz", s.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/playback", func(w http.ResponseWriter, r *http.Request) {
			s.writeJSON(w, http.StatusOK, source.Snapshot())
		})
	})

	s.handler = r
	return s
}

// Handler returns the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then drains connections
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("status server failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.log.Info("Status server started", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("status server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("status server shutdown: %w", err)
	}
	s.log.Info("Status server stopped")
	return nil
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: version.GetVersion()})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("Failed to encode status response", "error", err)
	}
}
