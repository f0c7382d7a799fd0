// Package server provides the local preview server for exported sites.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nbexport/internal/logfields"
)

// Options configures the preview server.
type Options struct {
	// Addr is the listen address, e.g. ":8866".
	Addr string
	// Dir is the output directory to serve.
	Dir string
	// Hub enables the live reload endpoints when non-nil.
	Hub *LiveReloadHub
	// Registry exposes /metrics when non-nil.
	Registry *prometheus.Registry
}

// Server serves an exported site directory over HTTP.
type Server struct {
	opts Options
}

// New creates a preview server for the given options.
func New(opts Options) *Server {
	return &Server{opts: opts}
}

// Router builds the HTTP handler: static site files, live reload endpoints,
// and Prometheus metrics.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	if s.opts.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.opts.Registry, promhttp.HandlerOpts{}))
	}
	if s.opts.Hub != nil {
		r.Get("/livereload", s.opts.Hub.ServeHTTP)
		r.Get("/livereload.js", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/javascript")
			_, _ = w.Write([]byte(Script))
		})
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/tree/", http.StatusFound)
	})
	r.Handle("/*", http.FileServer(http.Dir(s.opts.Dir)))
	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Preview server listening", slog.String("addr", s.opts.Addr), logfields.Path(s.opts.Dir))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		if s.opts.Hub != nil {
			s.opts.Hub.Shutdown()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			// Open SSE streams can outlive the grace period.
			_ = srv.Close()
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
