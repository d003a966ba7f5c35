// Package server provides the HTTP API for resumatch.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/resumatch/internal/config"
	"github.com/hyperjump/resumatch/internal/ingest"
	"github.com/hyperjump/resumatch/internal/search"
	"github.com/hyperjump/resumatch/internal/storage"
	"go.uber.org/zap"
)

// InboxService is the part of the resume inbox reported by the status endpoint.
type InboxService interface {
	Directories() []string
}

// Server is the HTTP server for the resumatch API.
type Server struct {
	engine  *search.Engine
	ingest  *ingest.Service
	storage storage.CandidateStore
	config  *config.Config
	inbox   InboxService
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server with the given dependencies. inbox may be nil.
func NewServer(
	engine *search.Engine,
	ingestSvc *ingest.Service,
	store storage.CandidateStore,
	cfg *config.Config,
	inbox InboxService,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		engine:  engine,
		ingest:  ingestSvc,
		storage: store,
		config:  cfg,
		inbox:   inbox,
		logger:  logger,
	}
}

// Routes returns the API router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/resumes", s.handleUploadResume)
		r.Post("/search", s.handleSearch)
		r.Get("/candidates", s.handleListCandidates)
		r.Get("/candidates/{id}", s.handleGetCandidate)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// requestLogger logs each request through zap.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
