// Package server exposes the recommender over HTTP: an HTML form, a JSON API,
// lookup history, health and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/hubenschmidt/reelmatch/logging"
	"github.com/hubenschmidt/reelmatch/recommend"
	"github.com/hubenschmidt/reelmatch/server/store"
)

const (
	shutdownTimeout    = 10 * time.Second
	defaultLookupLimit = 100
	maxFormBytes       = 1 << 16
)

// Config configures a new Server instance.
type Config struct {
	Engine  *recommend.Engine
	Lookups store.LookupStore // Optional: defaults to an in-memory store

	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// RateLimit is requests per minute per client IP on recommendation
	// routes; 0 disables limiting.
	RateLimit   int
	CORSOrigins []string
}

// Server is an HTTP server for movie recommendations.
type Server struct {
	engine  *recommend.Engine
	lookups store.LookupStore
	cfg     Config
	log     zerolog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, errors.New("server: engine is required")
	}
	lookups := cfg.Lookups
	if lookups == nil {
		lookups = store.NewMemoryLookupStore()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}
	return &Server{
		engine:  cfg.Engine,
		lookups: lookups,
		cfg:     cfg,
		log:     logging.With("server"),
	}, nil
}

// Handler returns an http.Handler for every route.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(accessLog(s.log))

	limit := rateLimit(s.cfg.RateLimit)

	r.Get("/", s.handleIndex)
	r.With(limit).Post("/recommend", s.handleRecommendForm)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(corsMiddleware(s.cfg.CORSOrigins))

		r.With(limit).Get("/recommend", s.handleAPIRecommend)

		r.Get("/lookups", s.handleLookupList)
		r.Get("/lookups/summary", s.handleLookupSummary)
		r.Get("/lookups/{id}", s.handleLookupGet)
		r.Delete("/lookups/{id}", s.handleLookupDelete)
	})

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
