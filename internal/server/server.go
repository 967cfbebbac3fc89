package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type Server struct {
	config *Config
	server *http.Server
	svc    *Services
}

func New(ctx context.Context, config *Config) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	svc, err := NewServices(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create services: %w", err)
	}

	handler, err := SetupRoutes(&config.HTTP, svc)
	if err != nil {
		svc.Shutdown(ctx)
		return nil, err
	}

	return &Server{
		config: config,
		svc:    svc,
		server: &http.Server{
			Addr:              config.HTTP.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	slog.Info("dsmanager server start", "datasets", s.svc.Dataset.Root(), "http", &s.config.HTTP)
	defer slog.Info("dsmanager server stop")

	if err := s.svc.Start(ctx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.runHttpServer(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server start error", "error", err)
			errCh <- err
			return
		}
		slog.Info("http server stopped")
	}()

	select {
	case <-ctx.Done():
		slog.Info("dsmanager shutdown signal")
	case err := <-errCh:
		s.svc.Shutdown(context.Background())
		return err
	}

	if err := s.Stop(context.Background()); err != nil {
		slog.Error("dsmanager shutdown error", "error", err)
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return s.svc.Shutdown(shutdownCtx)
}

func (s *Server) runHttpServer() error {
	if s.config.HTTP.TLS() {
		slog.Info("server start tls", "addr", s.config.HTTP.Addr, "cert", s.config.HTTP.CertFile, "key", s.config.HTTP.KeyFile)
		return s.server.ListenAndServeTLS(s.config.HTTP.CertFile, s.config.HTTP.KeyFile)
	} else {
		slog.Info("server start http", "addr", s.config.HTTP.Addr)
		return s.server.ListenAndServe()
	}
}
