package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/reviewd/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook server",
	Long: `Run the webhook server. Accepted pull-request events are acknowledged
immediately and reviewed asynchronously.

Examples:
  # Serve with environment configuration
  REVIEWD_GITHUB_TOKEN=ghp_xxx REVIEWD_GITHUB_WEBHOOK_SECRET=s3cret reviewd serve

  # Serve with a config file
  reviewd serve --config reviewd.yaml`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if !cfg.GitHub.WebhookSecret.IsSet() {
		logger.Warn(ctx, "webhook secret not set: signature verification disabled")
	}

	orch, err := buildOrchestrator(ctx, cfg, true, logger)
	if err != nil {
		return err
	}

	srv, err := server.New(orch, cfg.GitHub.WebhookSecret, cfg.Server, logger)
	if err != nil {
		return err
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "server shutdown error", zap.Error(err))
		return err
	}

	logger.Info(ctx, "server stopped gracefully")
	return nil
}
