package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dreschagin/hostinfo/internal/application/dto"
	"github.com/dreschagin/hostinfo/internal/application/port"
	"github.com/dreschagin/hostinfo/internal/application/usecase"
	"github.com/dreschagin/hostinfo/internal/domain/repository"
	"github.com/dreschagin/hostinfo/internal/domain/valueobject"
	"github.com/dreschagin/hostinfo/internal/infrastructure/hostmeta"
	"github.com/dreschagin/hostinfo/pkg/config"
	"github.com/dreschagin/hostinfo/pkg/logger"
)

var showHost string

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <metric>",
		Short: "Print the latest archived document of a metric",
		Long: `Print the latest document of a metric as JSON.

The Redis cache is read first (REDIS_ENABLED), the PostgreSQL archive
(DB_ENABLED) is the fallback and refills the cache.

Example:
  hostinfo show df
  hostinfo show mem --host web-01`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}

	cmd.Flags().StringVar(&showHost, "host", "", "host name (default: this host)")

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return usageError("failed to load config: %w", err)
	}
	if !cfg.Redis.Enabled && !cfg.Database.Enabled {
		return usageError("no document backend enabled: set REDIS_ENABLED or DB_ENABLED")
	}

	metric := valueobject.MetricName(args[0])
	if err := metric.Validate(); err != nil {
		return usageError("%w", err)
	}

	log := logger.New(cfg.Log.Level)
	ctx := cmd.Context()
	host := resolveHost(ctx, showHost)

	var cache port.DocumentCache
	if cfg.Redis.Enabled {
		if c := openRedis(cfg.Redis, log); c != nil {
			defer c.Close()
			cache = c
		}
	}

	var archive repository.DocumentRepository
	if cfg.Database.Enabled {
		if repo := openPostgres(ctx, cfg.Database, log); repo != nil {
			defer repo.Close()
			archive = repo
		}
	}

	doc, err := usecase.NewGetLatestDocumentUseCase(cache, archive, log).Execute(ctx, host, metric)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return &exitError{code: 1, err: err}
		}
		return &exitError{code: 2, err: err}
	}

	data, err := dto.EncodeIndent(doc)
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

// resolveHost возвращает явно заданный хост или имя текущего хоста в том же виде, что пишет сборщик
func resolveHost(ctx context.Context, host string) string {
	if host != "" {
		return host
	}
	info, _ := hostmeta.NewInspector().Describe(ctx)
	if info.Hostname == "" {
		return "unknown"
	}
	return info.Hostname
}
