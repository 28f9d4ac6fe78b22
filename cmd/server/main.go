package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/iudanet/wealthvault/internal/config"
	"github.com/iudanet/wealthvault/internal/extraction"
	"github.com/iudanet/wealthvault/internal/logging"
	"github.com/iudanet/wealthvault/internal/server"
	"github.com/iudanet/wealthvault/internal/server/blob"
	"github.com/iudanet/wealthvault/internal/server/handlers"
	"github.com/iudanet/wealthvault/internal/server/jwt"
	"github.com/iudanet/wealthvault/internal/server/metrics"
	"github.com/iudanet/wealthvault/internal/server/middleware"
	"github.com/iudanet/wealthvault/internal/server/service"
	"github.com/iudanet/wealthvault/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Parse flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := sqlite.New(ctx, cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close database", slog.Any("error", err))
		}
	}()

	blobs, err := blob.New(cfg.Storage.BlobPath)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	defer func() {
		if err := blobs.Close(); err != nil {
			logger.Warn("failed to close blob store", slog.Any("error", err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	tokens := jwt.NewService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	signer := jwt.NewShareSigner(cfg.Guardian.Secret)

	types := service.NewTypeService(logger, store)
	policies := service.NewPolicyService(logger, store, types, m)
	guardian := service.NewGuardianService(logger, store, policies, signer, m, cfg.HTTP.PublicURL, cfg.Guardian.ShareTTL)
	documents := service.NewDocumentService(logger, blobs, newExtractor(cfg, logger), m, cfg.HTTP.PublicURL)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, logger)
	limiter.OnReject = m.ObserveRateLimited
	defer limiter.Stop()

	router := server.NewRouter(logger, server.RouterDependencies{
		Auth:           handlers.NewAuthHandler(logger, store, store, tokens),
		Health:         handlers.NewHealthHandler(logger, store, Version),
		Policies:       handlers.NewPolicyHandler(logger, policies),
		Types:          handlers.NewTypeHandler(logger, types),
		Shares:         handlers.NewShareHandler(logger, guardian),
		Documents:      handlers.NewDocumentHandler(logger, documents),
		Tokens:         tokens,
		RateLimiter:    limiter,
		Metrics:        m,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	srv := server.New(logger, cfg.HTTP, router)

	logger.InfoContext(ctx, "starting WealthVault server",
		slog.String("version", Version),
		slog.String("public_url", cfg.HTTP.PublicURL),
		slog.Bool("extraction_enabled", cfg.ExtractionEnabled()),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		return server.RunTokenCleanup(gctx, logger, store, cfg.Auth.CleanupInterval)
	})

	return g.Wait()
}

// newExtractor возвращает nil, если сервисы распознавания не настроены
func newExtractor(cfg *config.Config, logger *slog.Logger) service.Extractor {
	if !cfg.ExtractionEnabled() {
		return nil
	}

	text := extraction.NewHTTPTextExtractor(extraction.HTTPTextConfig{
		Endpoint: cfg.Extraction.TextURL,
		APIKey:   cfg.Extraction.TextAPIKey,
	})
	generator := extraction.NewOpenAIGenerator(extraction.OpenAIConfig{
		ResponsesURL: cfg.Extraction.ResponsesURL,
		APIKey:       cfg.Extraction.APIKey,
		Model:        cfg.Extraction.Model,
	})

	return extraction.NewGateway(text, generator, cfg.Extraction.Timeout, logger)
}

func printVersion() {
	fmt.Printf("WealthVault Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
