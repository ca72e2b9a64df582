// Package server provides the HTTP server and routing for taxfolio.
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

	"github.com/aristath/taxfolio/internal/config"
	"github.com/aristath/taxfolio/internal/database"
	"github.com/aristath/taxfolio/internal/modules/amt"
	amthandlers "github.com/aristath/taxfolio/internal/modules/amt/handlers"
	"github.com/aristath/taxfolio/internal/modules/capitalgains"
	capitalgainshandlers "github.com/aristath/taxfolio/internal/modules/capitalgains/handlers"
	"github.com/aristath/taxfolio/internal/modules/estimates"
	estimateshandlers "github.com/aristath/taxfolio/internal/modules/estimates/handlers"
	"github.com/aristath/taxfolio/internal/modules/washsale"
	washsalehandlers "github.com/aristath/taxfolio/internal/modules/washsale/handlers"
	"github.com/aristath/taxfolio/internal/taxparams"
	taxparamshandlers "github.com/aristath/taxfolio/internal/taxparams/handlers"
)

// Config holds server configuration.
type Config struct {
	Log         zerolog.Logger
	Config      *config.Config
	ParamsDB    *database.DB
	ParamsStore *taxparams.Store
	Port        int
	DevMode     bool
}

// Server is the HTTP server wiring the engines to their handlers.
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	paramsDB       *database.DB
	paramsStore    *taxparams.Store
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server.
func New(cfg Config) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		log:         cfg.Log.With().Str("component", "server").Logger(),
		cfg:         cfg.Config,
		paramsDB:    cfg.ParamsDB,
		paramsStore: cfg.ParamsStore,
	}
	s.systemHandlers = NewSystemHandlers(cfg.Log, cfg.ParamsDB)

	s.setupMiddleware()
	s.setupRoutes(cfg.Log)

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
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes builds the engines and mounts their handlers. Engines are
// stateless, so constructing them here is the entire dependency wiring.
func (s *Server) setupRoutes(log zerolog.Logger) {
	capitalGains := capitalgainshandlers.NewHandler(capitalgains.NewEngine(log), log)
	washSales := washsalehandlers.NewHandler(washsale.NewDetector(log), log)
	amtCalc := amthandlers.NewHandler(amt.NewCalculator(log), s.paramsStore, log)
	estimatesCalc := estimateshandlers.NewHandler(estimates.NewEngine(log), s.paramsStore, log)
	params := taxparamshandlers.NewHandler(s.paramsStore, log)

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/capital-gains", func(r chi.Router) {
			r.Post("/select-lots", capitalGains.HandleSelectLots)
			r.Post("/compare-strategies", capitalGains.HandleCompareStrategies)
		})

		r.Route("/wash-sales", func(r chi.Router) {
			r.Post("/check", washSales.HandleCheck)
			r.Post("/would-trigger", washSales.HandleWouldTrigger)
		})

		r.Post("/amt/calculate", amtCalc.HandleCompute)
		r.Post("/estimates/quarterly", estimatesCalc.HandleCalculate)

		r.Route("/tax-params", func(r chi.Router) {
			r.Get("/", params.HandleListYears)
			r.Get("/{year}", params.HandleGetYear)
		})

		r.Get("/system/status", s.systemHandlers.HandleStatus)
	})
}

// loggingMiddleware logs each request with duration at debug level
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request")
	})
}

// Router exposes the mux for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins serving. Blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
