package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	reviewRepo string
	reviewPR   int
	reviewPost bool
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review a single PR and print the report",
	Long: `Run one review synchronously and print the rendered report to stdout.

Examples:
  # Review a PR without posting
  reviewd review --repo acme/widgets --pr 42

  # Review and post the report as a PR comment
  reviewd review --repo acme/widgets --pr 42 --post`,
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().StringVar(&reviewRepo, "repo", "", "repository as owner/name (required)")
	reviewCmd.Flags().IntVar(&reviewPR, "pr", 0, "pull request number (required)")
	reviewCmd.Flags().BoolVar(&reviewPost, "post", false, "post the report as a PR comment")
	_ = reviewCmd.MarkFlagRequired("repo")
	_ = reviewCmd.MarkFlagRequired("pr")
}

func runReview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	orch, err := buildOrchestrator(ctx, cfg, reviewPost, logger)
	if err != nil {
		return err
	}

	run, err := orch.Review(ctx, reviewRepo, reviewPR)
	if err != nil {
		return fmt.Errorf("review failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), run.Rendered)
	return nil
}
