// Package server provides the HTTP API for ragbench.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/ragbench/internal/config"
	"github.com/hyperjump/ragbench/internal/metrics"
	"github.com/hyperjump/ragbench/internal/models"
	"github.com/hyperjump/ragbench/pkg/utils"
	"go.uber.org/zap"
)

// Pipeline is the subset of the pipeline the API drives. Implementations must be safe
// for concurrent use; see pipeline.Guarded.
type Pipeline interface {
	Ingest(ctx context.Context, docID, content string) (int, error)
	Replace(ctx context.Context, docID, content string) (int, error)
	Delete(ctx context.Context, docID string) error
	Reset(ctx context.Context) error
	Answer(ctx context.Context, query string, topK, topN int) (*models.AnswerResult, error)
	Stats(ctx context.Context) (*models.IndexStats, error)
	Provider() string
}

// WatchService manages watched directories at runtime. It is implemented by watcher.Watcher.
type WatchService interface {
	Directories() []string
	AddDirectory(path string, syncExisting bool) error
	RemoveDirectory(path string) error
}

// Server is the HTTP server for the ragbench API.
type Server struct {
	pipeline Pipeline
	config   *config.Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
	watch    WatchService
	// configPath, when set, is where watch directory changes are persisted.
	configPath    string
	watchConfigMu sync.Mutex
	server        *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics serves m at /metrics and counts uploads into it.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithWatch enables the watch directory endpoints. When configPath is non-empty,
// directory changes are saved back to the config file.
func WithWatch(w WatchService, configPath string) Option {
	return func(s *Server) {
		s.watch = w
		s.configPath = configPath
	}
}

// NewServer creates a server over p.
func NewServer(p Pipeline, cfg *config.Config, opts ...Option) *Server {
	s := &Server{pipeline: p, config: cfg}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = utils.OrNop(s.logger)
	return s
}

// Router returns the API routes with middleware applied.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Duration(s.requestTimeoutSeconds()) * time.Second))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/documents", s.handleIngestDocument)
		r.Post("/documents/upload", s.handleUpload)
		r.Delete("/documents/{id}", s.handleDeleteDocument)
		r.Post("/answer", s.handleAnswer)
		r.Delete("/index", s.handleReset)
		r.Get("/status", s.handleStatus)
		r.Get("/watch/directories", s.handleWatchDirectoriesList)
		r.Post("/watch/directories", s.handleWatchDirectoriesAdd)
		r.Delete("/watch/directories", s.handleWatchDirectoriesRemove)
	})
	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}
	return r
}

// requestTimeoutSeconds leaves room for a slow LLM call inside one request.
func (s *Server) requestTimeoutSeconds() int {
	if s.config != nil && s.config.LLM.TimeoutSeconds > 0 {
		return s.config.LLM.TimeoutSeconds + 30
	}
	return 90
}

// requestLogger logs every request with zap, tagged with chi's request id.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Debug("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("elapsed", time.Since(start)))
		}()
		next.ServeHTTP(ww, r)
	})
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr), zap.String("provider", s.pipeline.Provider()))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
