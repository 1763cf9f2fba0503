// Package server provides the HTTP boundary of the services gateway.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/services-gateway/internal/rendering"
	"github.com/jonathan/services-gateway/internal/server/middleware"
	"github.com/jonathan/services-gateway/internal/server/ratelimit"
	"github.com/jonathan/services-gateway/internal/store"
	"go.uber.org/zap"
)

// Server represents the HTTP server
type Server struct {
	httpServer      *http.Server
	store           *store.Store
	renderer        *rendering.Renderer
	rateLimiter     *ratelimit.Limiter
	logger          *zap.Logger
	shutdownTimeout time.Duration
}

// Config holds server configuration. Store is required; zero timeouts fall
// back to defaults and a nil RateLimit uses the limiter defaults.
type Config struct {
	Addr            string
	Store           *store.Store
	Logger          *zap.Logger
	RateLimit       *ratelimit.Config
	CORSAllowOrigin string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("server requires a document store")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 60 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}

	s := &Server{
		store:           cfg.Store,
		renderer:        rendering.NewRenderer(cfg.Store),
		rateLimiter:     ratelimit.NewLimiter(cfg.RateLimit),
		logger:          cfg.Logger,
		shutdownTimeout: cfg.ShutdownTimeout,
	}

	handler := middleware.Chain(s.routes(),
		middleware.RequestID(cfg.Logger),
		middleware.AccessLog(cfg.Logger),
		middleware.Recover(cfg.Logger),
		s.withRateLimit,
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ErrorLog:          zap.NewStdLog(cfg.Logger),
	}

	return s, nil
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	defer s.rateLimiter.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			zap.String("addr", s.httpServer.Addr),
			zap.String("store", s.store.Dir()),
		)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}
