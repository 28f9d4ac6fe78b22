package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/wealthvault/internal/config"
)

// Server HTTP server lifecycle
type Server struct {
	httpServer      *http.Server
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

// New creates a server for handler using HTTP settings from cfg
func New(logger *slog.Logger, cfg config.HTTPConfig, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger:          logger,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Run serves until ctx is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "starting http server", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.InfoContext(ctx, "shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// TokenCleaner removes expired refresh tokens
type TokenCleaner interface {
	DeleteExpiredTokens(ctx context.Context) (int, error)
}

// RunTokenCleanup periodically deletes expired refresh tokens until ctx is canceled
func RunTokenCleanup(ctx context.Context, logger *slog.Logger, cleaner TokenCleaner, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := cleaner.DeleteExpiredTokens(ctx)
			if err != nil {
				// Ошибка очистки не останавливает сервер
				logger.WarnContext(ctx, "failed to delete expired refresh tokens", slog.Any("error", err))
				continue
			}
			if n > 0 {
				logger.InfoContext(ctx, "expired refresh tokens deleted", slog.Int("count", n))
			}
		}
	}
}
