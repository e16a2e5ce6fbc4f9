// Package api exposes the haplotype pipeline over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/semaphore"

	"haplocheck/app"
	"haplocheck/domain/dataset"
	"haplocheck/internal"
	"haplocheck/ports"
)

// DefaultMaxConcurrentRuns bounds pipeline runs executing at once
const DefaultMaxConcurrentRuns = 2

// Config holds the server settings
type Config struct {
	Port string
	// DataDir roots every file named in a request; empty allows any path
	DataDir           string
	Sheet             string
	Schema            dataset.Schema
	Run               app.RunConfig
	Scan              app.ScanConfig
	MaxConcurrentRuns int64
}

// Server routes HTTP requests to the haplotype and scan services
type Server struct {
	router    *chi.Mux
	config    Config
	loader    ports.DatasetLoader
	haplo     *app.HaplotypeService
	scans     *app.ScanService
	repo      ports.ReportRepository
	logger    *internal.Logger
	runSlots  *semaphore.Weighted
	startedAt time.Time
}

// NewServer wires the services. repo may be nil, in which case runs are not
// stored and the run listing routes are not mounted.
func NewServer(config Config, loader ports.DatasetLoader, repo ports.ReportRepository, logger *internal.Logger) *Server {
	if config.MaxConcurrentRuns < 1 {
		config.MaxConcurrentRuns = DefaultMaxConcurrentRuns
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:    chi.NewRouter(),
		config:    config,
		loader:    loader,
		haplo:     app.NewHaplotypeService(logger),
		scans:     app.NewScanService(logger),
		repo:      repo,
		logger:    logger,
		runSlots:  semaphore.NewWeighted(config.MaxConcurrentRuns),
		startedAt: time.Now(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/runs", s.handleRun)
		r.Post("/scans", s.handleScan)
		if s.repo != nil {
			r.Get("/runs", s.handleListRuns)
			r.Get("/runs/{id}/summary", s.handleRunSummary)
			r.Get("/runs/{id}/significance", s.handleRunSignificance)
		}
	})
}

// ServeHTTP makes the server usable with httptest and custom listeners
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start listens on the configured port until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.config.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP API listening on :%s", s.config.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.logger.Info("shutting down HTTP API")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.WithFields(internal.Fields{
			"request_id":  middleware.GetReqID(r.Context()),
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("request served")
	})
}
