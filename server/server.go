package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/flanksource/commons/logger"

	"github.com/flanksource/changelog/changelog"
	"github.com/flanksource/changelog/config"
)

type Server struct {
	http            *http.Server
	shutdownTimeout time.Duration
}

func New(cfg config.ServerConfig, svc *changelog.Service) *Server {
	return &Server{
		http: &http.Server{
			Addr:         cfg.Addr,
			Handler:      Handler(svc),
			ReadTimeout:  cfg.ReadTimeout.Std(),
			WriteTimeout: cfg.WriteTimeout.Std(),
			IdleTimeout:  120 * time.Second,
		},
		shutdownTimeout: cfg.ShutdownTimeout.Std(),
	}
}

func (s *Server) Addr() string {
	return s.http.Addr
}

// ListenAndServe blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) ListenAndServe() error {
	logger.Infof("listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests for up to the configured timeout.
func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		logger.Errorf("server shutdown: %v", err)
		return
	}
	logger.Infof("server stopped")
}
