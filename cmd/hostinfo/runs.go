package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dreschagin/hostinfo/internal/application/dto"
	"github.com/dreschagin/hostinfo/internal/application/usecase"
	"github.com/dreschagin/hostinfo/pkg/config"
	"github.com/dreschagin/hostinfo/pkg/logger"
)

var (
	runsHost  string
	runsLimit int
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent collection runs of a host",
		Long: `List recent collection runs from the DynamoDB run index
(DYNAMODB_ENABLED), newest first.

Example:
  hostinfo runs --limit 5
  hostinfo runs --host web-01`,
		Args: cobra.NoArgs,
		RunE: runRuns,
	}

	cmd.Flags().StringVar(&runsHost, "host", "", "host name (default: this host)")
	cmd.Flags().IntVar(&runsLimit, "limit", 10, "maximum number of runs")

	return cmd
}

func runRuns(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return usageError("failed to load config: %w", err)
	}
	if !cfg.Dynamo.Enabled {
		return usageError("run index is disabled: set DYNAMODB_ENABLED")
	}
	if runsLimit <= 0 {
		return usageError("--limit must be positive, got %d", runsLimit)
	}

	log := logger.New(cfg.Log.Level)
	ctx := cmd.Context()

	repo := openDynamo(ctx, cfg.Dynamo, log)
	if repo == nil {
		return &exitError{code: 2}
	}

	runs, err := usecase.NewListRecentRunsUseCase(repo, log).Execute(ctx, resolveHost(ctx, runsHost), runsLimit)
	if err != nil {
		return &exitError{code: 1, err: err}
	}

	data, err := dto.EncodeIndent(runs)
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
