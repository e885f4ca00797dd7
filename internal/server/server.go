// Package server provides the HTTP server and routing for Arbiter.
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

	"github.com/junghoon-dev/arbiter/internal/clients/krx"
	"github.com/junghoon-dev/arbiter/internal/config"
	"github.com/junghoon-dev/arbiter/internal/database"
	"github.com/junghoon-dev/arbiter/internal/evaluation"
	"github.com/junghoon-dev/arbiter/internal/modules/performance"
	"github.com/junghoon-dev/arbiter/internal/modules/ranking"
	"github.com/junghoon-dev/arbiter/internal/modules/regime"
	"github.com/junghoon-dev/arbiter/internal/modules/rotation"
	"github.com/junghoon-dev/arbiter/internal/modules/summary"
)

// Config holds server configuration
type Config struct {
	Log          zerolog.Logger
	DB           *database.DB
	Config       *config.Config
	Port         int
	DevMode      bool
	Orchestrator *evaluation.Orchestrator
	KRXClient    *krx.Client

	RegimeService  *regime.Service
	RegimeRepo     *regime.Repository
	SignalRepo     *performance.SignalRepository
	RankingRepo    *ranking.Repository
	RotationRepo   *rotation.Repository
	SummaryService *summary.Service
}

// Server represents the HTTP server
type Server struct {
	router              *chi.Mux
	server              *http.Server
	log                 zerolog.Logger
	cfg                 *config.Config
	db                  *database.DB
	systemHandlers      *SystemHandlers
	krHandlers          *KRHandlers
	evaluationHandlers  *EvaluationHandlers
	regimeHandlers      *regime.Handlers
	performanceHandlers *performance.Handlers
	rankingHandlers     *ranking.Handlers
	rotationHandlers    *rotation.Handlers
	summaryHandlers     *summary.Handlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:              chi.NewRouter(),
		log:                 cfg.Log.With().Str("component", "server").Logger(),
		cfg:                 cfg.Config,
		db:                  cfg.DB,
		systemHandlers:      NewSystemHandlers(cfg.Log, cfg.Config.DataDir, cfg.DB, cfg.Orchestrator),
		krHandlers:          NewKRHandlers(cfg.KRXClient, cfg.Log),
		evaluationHandlers:  NewEvaluationHandlers(cfg.Orchestrator, cfg.Log),
		regimeHandlers:      regime.NewHandlers(cfg.RegimeService, cfg.RegimeRepo, cfg.Log),
		performanceHandlers: performance.NewHandlers(cfg.SignalRepo, cfg.Log),
		rankingHandlers:     ranking.NewHandlers(cfg.RankingRepo, cfg.Log),
		rotationHandlers:    rotation.NewHandlers(cfg.RotationRepo, cfg.Log),
		summaryHandlers:     summary.NewHandlers(cfg.SummaryService, cfg.Log),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.systemHandlers.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/meta", func(r chi.Router) {
			r.Get("/summary", s.summaryHandlers.HandleGetSummary)
			r.Get("/regime", s.regimeHandlers.HandleGetCurrent)
			r.Get("/regime/history", s.regimeHandlers.HandleGetHistory)
			r.Get("/rankings/{regime}", s.rankingHandlers.HandleGetByRegime)
			r.Get("/rotations", s.rotationHandlers.HandleGetRecent)
			r.Post("/signals", s.performanceHandlers.HandlePostSignal)

			r.Route("/evaluation", func(r chi.Router) {
				r.Get("/status", s.evaluationHandlers.HandleStatus)
				r.Post("/start", s.evaluationHandlers.HandleStart)
				r.Post("/stop", s.evaluationHandlers.HandleStop)
				r.Post("/cycles/{name}", s.evaluationHandlers.HandleRunCycle)
			})
		})

		r.Route("/kr", func(r chi.Router) {
			r.Get("/symbols", s.krHandlers.HandleGetSymbols)
			r.Get("/price/{symbol}", s.krHandlers.HandleGetPrice)
		})

		r.Route("/system", func(r chi.Router) {
			r.Get("/health", s.systemHandlers.HandleSystemHealth)
			r.Get("/database/stats", s.systemHandlers.HandleDatabaseStats)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Router exposes the underlying router, used by tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
