// Package server provides the HTTP API in front of the simulation engine.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/mcgo/investment-calculator/internal/domain"
	"github.com/mcgo/investment-calculator/internal/simulation"
)

// Config holds server configuration.
type Config struct {
	Log      zerolog.Logger
	Port     int
	CacheTTL time.Duration
}

// Server is the HTTP server wrapping the simulation engine.
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	cache  *ResultCache

	// run executes one engine request; replaced in tests.
	run func(ctx context.Context, params domain.SimulationParameters) (*domain.EngineOutput, error)
}

// New creates a new HTTP server.
func New(cfg Config) *Server {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 15 * time.Minute
	}

	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		cache:  NewResultCache(cfg.CacheTTL, 128),
		run: func(ctx context.Context, params domain.SimulationParameters) (*domain.EngineOutput, error) {
			return simulation.NewCoordinator(params, cfg.Log).Execute(ctx)
		},
	}

	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/presets", s.handlePresets)
		r.Post("/simulate", s.handleSimulate)
	})

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Router exposes the handler tree, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.server.Addr).Msg("http server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
