// Package server provides the HTTP API for mixingcompass.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/mixingcompass/internal/analysis"
	"github.com/hyperjump/mixingcompass/internal/config"
	"github.com/hyperjump/mixingcompass/internal/importer"
)

// DirectoryManager adds and removes watched data directories.
type DirectoryManager interface {
	Directories() []string
	AddDirectory(path string, importExisting bool) error
	RemoveDirectory(path string) error
}

// Server is the HTTP server for the mixingcompass API.
type Server struct {
	engine   *analysis.Engine
	importer *importer.Importer
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server

	watch      DirectoryManager
	configPath string
	configMu   sync.Mutex
}

// NewServer creates a server with the given dependencies. watch may be nil when
// no watcher runs; configPath, when set, receives directory changes.
func NewServer(
	engine *analysis.Engine,
	im *importer.Importer,
	cfg *config.Config,
	logger *zap.Logger,
	watch DirectoryManager,
	configPath string,
) *Server {
	return &Server{
		engine:     engine,
		importer:   im,
		config:     cfg,
		logger:     logger,
		watch:      watch,
		configPath: configPath,
	}
}

// Router returns the API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/mixture", s.handleMixture)
		r.Post("/red", s.handleRED)
		r.Post("/scene", s.handleScene)

		r.Get("/solvents", s.handleSearchSolvents)
		r.Put("/solvents", s.handleUpsertSolvent)
		r.Get("/solvents/{name}", s.handleGetSolvent)
		r.Delete("/solvents/{name}", s.handleDeleteSolvent)
		r.Post("/import", s.handleImport)
		r.Get("/status", s.handleStatus)

		r.Get("/data/directories", s.handleDirectoriesList)
		r.Post("/data/directories", s.handleDirectoriesAdd)
		r.Delete("/data/directories", s.handleDirectoriesRemove)
	})
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.config.Server.Addr()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
