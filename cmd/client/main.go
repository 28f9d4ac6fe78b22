package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/wealthvault/internal/client/cli"
	"github.com/iudanet/wealthvault/internal/client/iocli"
	"github.com/iudanet/wealthvault/internal/config"
	"github.com/iudanet/wealthvault/internal/logging"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Клиент пишет в лог только предупреждения, вывод команд идет в stdout
	logger := logging.NewWithWriter(config.LoggingConfig{Level: "warn", Format: "text"}, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(iocli.NewStdio(), logger)
	root := app.Command(fmt.Sprintf("%s (built %s, commit %s)", Version, BuildDate, GitCommit))

	err := root.ExecuteContext(ctx)
	if closeErr := app.Close(); closeErr != nil {
		logger.Error("failed to close database", slog.Any("error", closeErr))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
