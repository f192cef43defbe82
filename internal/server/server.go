// Package server exposes the progression core and the chat assistant over
// HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/forgelabs/forgelabs/internal/chat"
	"github.com/forgelabs/forgelabs/internal/logger"
	"github.com/forgelabs/forgelabs/internal/progression"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = "127.0.0.1:8788"

// Config holds the HTTP settings.
type Config struct {
	Addr         string
	AllowOrigins []string

	// ShutdownTimeout bounds graceful shutdown. Default: 5s.
	ShutdownTimeout time.Duration
}

// Server wires handlers to the controller and the chat registry.
type Server struct {
	cfg      Config
	ctrl     *progression.Controller
	sessions *chat.Sessions
	log      *logger.Logger
	engine   *gin.Engine
}

// New builds a Server. log may be nil.
func New(cfg Config, ctrl *progression.Controller, sessions *chat.Sessions, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	s := &Server{
		cfg:      cfg,
		ctrl:     ctrl,
		sessions: sessions,
		log:      log.With("component", "server"),
	}
	s.engine = s.newRouter()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
