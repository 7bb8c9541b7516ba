package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/custodia-labs/docsync/internal/logger"
)

// Server routes the HTTP API onto the driving ports.
type Server struct {
	ports  *Ports
	router chi.Router
	now    func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithClock overrides the clock used for publish directives and health
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// WithMount mounts an extra handler, such as the MCP endpoint, at pattern.
func WithMount(pattern string, h http.Handler) Option {
	return func(s *Server) {
		s.router.Mount(pattern, h)
	}
}

// NewServer creates a new HTTP server with the given ports.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports:  ports,
		router: chi.NewRouter(),
		now:    defaultNow,
	}
	s.routes()
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/document-stores", func(r chi.Router) {
		r.Get("/", s.handleListRecords)
		r.Post("/", s.handleCreateRecord)

		r.Get("/system/health", s.handleHealth)
		r.Get("/search/advanced", s.handleAdvancedSearch)

		r.Route("/meilisearch", func(r chi.Router) {
			r.Post("/refresh", s.handleRefresh)
			r.Get("/stats", s.handleStats)
			r.Delete("/clear", s.handleClear)
			r.Post("/rebuild", s.handleRebuild)
			r.Post("/configure", s.handleConfigure)
			r.Post("/configure-complete", s.handleConfigureComplete)
		})

		r.Get("/{id}", s.handleGetRecord)
		r.Put("/{id}", s.handleUpdateRecord)
		r.Delete("/{id}", s.handleDeleteRecord)
		r.Post("/{id}/auto-populate", s.handleAutoPopulate)
	})
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("HTTP API listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http listen %s: %w", addr, err)
	}
	return nil
}

// requestLogger logs one structured line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		logger.L().Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}
