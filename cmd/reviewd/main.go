// Package main implements the reviewd CLI: a webhook-driven PR review
// daemon plus a one-shot review command.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/reviewd/internal/config"
	"github.com/fyrsmithlabs/reviewd/internal/github"
	"github.com/fyrsmithlabs/reviewd/internal/logging"
	"github.com/fyrsmithlabs/reviewd/internal/orchestrator"
	"github.com/fyrsmithlabs/reviewd/internal/rules"
	"github.com/fyrsmithlabs/reviewd/internal/specialist"
	"github.com/fyrsmithlabs/reviewd/internal/ticket"
)

var (
	configPath string
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "reviewd",
	Short: "Automated PR review orchestration",
	Long: `reviewd reviews pull requests by fanning a diff out to a pattern-rule
scanner and a set of specialist analyzers, aggregating their findings
into a severity-ranked report, and posting it back to the PR.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file (env vars override)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reviewCmd)
}

func loadConfig() (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.NewLogger(&logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}
	return cfg, logger, nil
}

// buildOrchestrator wires the producers and collaborators from config.
// Absent Jira credentials disable ticket lookup; an absent reasoner key
// disables the specialist adapters. Both degrade, neither is fatal.
func buildOrchestrator(ctx context.Context, cfg *config.Config, publish bool, logger *logging.Logger) (*orchestrator.Orchestrator, error) {
	host, err := github.NewClient(ctx, cfg.GitHub.Token, cfg.GitHub.BaseURL, logger)
	if err != nil {
		return nil, err
	}
	host.SetRetry(&github.RetryConfig{
		MaxRetries:        cfg.Publish.MaxRetries,
		InitialBackoff:    cfg.Publish.InitialBackoff.Duration(),
		MaxBackoff:        cfg.Publish.MaxBackoff.Duration(),
		BackoffMultiplier: 2.0,
	})

	var tickets orchestrator.TicketClient
	if cfg.TicketLookupEnabled() {
		tc, err := ticket.NewClient(cfg.Jira, logger)
		if err != nil {
			return nil, err
		}
		tickets = tc
	} else {
		logger.Info(ctx, "ticket lookup disabled: Jira not configured")
	}

	producers, err := buildProducers(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return orchestrator.New(host, tickets, producers, cfg.Review, publish, logger), nil
}

func buildProducers(ctx context.Context, cfg *config.Config, logger *logging.Logger) ([]orchestrator.Producer, error) {
	ruleTimeout := cfg.Review.RuleTimeout.Duration()

	fast, err := rules.NewFastEngine(ruleTimeout)
	if err != nil {
		return nil, fmt.Errorf("compiling fast rules: %w", err)
	}
	deep, err := rules.NewDeepEngine(ruleTimeout)
	if err != nil {
		return nil, fmt.Errorf("compiling deep rules: %w", err)
	}
	producers := []orchestrator.Producer{fast, deep}

	if !cfg.Review.ReasonerAPIKey.IsSet() {
		logger.Info(ctx, "specialist analysis disabled: reasoner API key not set")
		return producers, nil
	}

	reasoner, err := specialist.NewHTTPReasoner(cfg.Review.ReasonerAPIKey, cfg.Review.ReasonerBaseURL, cfg.Review.ReasonerModel)
	if err != nil {
		return nil, err
	}
	producers = append(producers,
		specialist.NewCodeQuality(reasoner, logger),
		specialist.NewSecurity(reasoner, logger),
		specialist.NewPerformanceTesting(reasoner, logger),
		specialist.NewDocumentationCompliance(reasoner, logger),
	)
	return producers, nil
}
