package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	// Application
	"github.com/dreschagin/hostinfo/internal/application/port"
	"github.com/dreschagin/hostinfo/internal/application/usecase"

	// Domain
	"github.com/dreschagin/hostinfo/internal/domain/valueobject"

	// Infrastructure
	"github.com/dreschagin/hostinfo/internal/infrastructure/collector"
	"github.com/dreschagin/hostinfo/internal/infrastructure/executor"
	"github.com/dreschagin/hostinfo/internal/infrastructure/hostmeta"
	natsInfra "github.com/dreschagin/hostinfo/internal/infrastructure/messaging/nats"
	"github.com/dreschagin/hostinfo/internal/infrastructure/observability/cloudwatch"
	fileStorage "github.com/dreschagin/hostinfo/internal/infrastructure/storage/file"
	s3storage "github.com/dreschagin/hostinfo/internal/infrastructure/storage/s3"

	// Shared
	"github.com/dreschagin/hostinfo/pkg/config"
	"github.com/dreschagin/hostinfo/pkg/logger"
)

var (
	collectOutputDir string
	collectOnly      string
)

func runCollect(cmd *cobra.Command, _ []string) error {
	// 1. Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		return usageError("failed to load config: %w", err)
	}
	if collectOutputDir != "" {
		abs, absErr := filepath.Abs(collectOutputDir)
		if absErr != nil {
			return usageError("invalid output directory: %w", absErr)
		}
		cfg.Output.Dir = abs
	}
	if collectOnly != "" {
		cfg.Collector.Metrics = collectOnly
	}

	// 2. Инициализируем logger
	log := logger.New(cfg.Log.Level)

	metrics := valueobject.RunOrder()
	if cfg.Collector.Metrics != "" {
		metrics, err = valueobject.ParseMetricNames(cfg.Collector.Metrics)
		if err != nil {
			log.Error("Invalid metric selection", err)
			return &exitError{code: 2}
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. CloudWatch Logs подключаем первым, чтобы он получил все записи запуска
	if cfg.CloudWatch.LogsEnabled {
		logsPublisher, initErr := cloudwatch.NewLogsPublisher(ctx, cloudwatch.LogsPublisherConfig{
			LogGroupName:    cfg.CloudWatch.LogGroupName,
			LogStreamName:   cfg.CloudWatch.LogStreamName,
			Region:          cfg.CloudWatch.Region,
			Endpoint:        cfg.CloudWatch.Endpoint,
			AccessKeyID:     cfg.CloudWatch.AccessKeyID,
			SecretAccessKey: cfg.CloudWatch.SecretAccessKey,
			BufferSize:      cfg.CloudWatch.LogsBufferSize,
			FlushInterval:   cfg.CloudWatch.LogsFlushInterval,
			AutoCreate:      true,
		})
		if initErr != nil {
			log.Warn("Failed to initialize CloudWatch logs publisher, continuing without it", "error", initErr.Error())
		} else {
			log.SetLogPublisher(logsPublisher)
			defer func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if closeErr := logsPublisher.Close(flushCtx); closeErr != nil {
					fmt.Fprintf(os.Stderr, "Failed to flush CloudWatch logs: %v\n", closeErr)
				}
			}()
		}
	}

	// 4. Dependency Injection - Infrastructure Layer
	runner := executor.NewProcessRunner(cfg.Collector.CommandTimeout, log)
	hostCollector := collector.NewHostCollector(runner, collector.Config{
		ProcUptimePath:  cfg.Collector.ProcUptimePath,
		IssuePath:       cfg.Collector.IssuePath,
		PasswdPath:      cfg.Collector.PasswdPath,
		WhereisPackages: cfg.Collector.WhereisPackages,
		SystemUIDMax:    cfg.Collector.SystemUIDMax,
	}, log)
	sink := fileStorage.NewDocumentSink(cfg.Output.Dir, log)

	// 5. Use case
	collectUseCase := usecase.NewCollectHostInfoUseCase(
		hostCollector,
		sink,
		hostmeta.NewInspector(),
		usecase.CollectHostInfoConfig{
			FailFast:     cfg.Collector.FailFast,
			WriteSummary: cfg.Output.WriteSummary,
		},
		log,
	)

	// 6. Зеркала документов и получатели итогов
	publishers := attachMirrors(ctx, cfg, collectUseCase, log)
	defer func() {
		for _, publisher := range publishers {
			if closeErr := publisher.Close(); closeErr != nil {
				log.Warn("Failed to close mirror", "mirror", publisher.Name(), "error", closeErr.Error())
			}
		}
	}()

	// 7. Запуск; итог запуска пишет use case
	log.Info("Starting host info collection", "output_dir", cfg.Output.Dir, "metrics", len(metrics))

	summary, runErr := collectUseCase.Execute(ctx, metrics)
	if summary == nil {
		log.Error("Collection did not start", runErr)
		return &exitError{code: 2}
	}
	if runErr != nil {
		log.Error("Collection finished with errors", runErr, "run_id", summary.RunID)
		return &exitError{code: 1}
	}

	return nil
}

// attachMirrors подключает включенные в конфигурации зеркала.
// Ошибка подключения зеркала не прерывает запуск: файл остается основным результатом
func attachMirrors(
	ctx context.Context,
	cfg *config.Config,
	uc *usecase.CollectHostInfoUseCase,
	log *logger.Logger,
) []port.DocumentPublisher {
	publishers := make([]port.DocumentPublisher, 0)

	// S3
	if cfg.S3.Enabled {
		storage, err := s3storage.NewDocumentStorage(ctx, s3storage.Config{
			Bucket:             cfg.S3.Bucket,
			Region:             cfg.S3.Region,
			Endpoint:           cfg.S3.Endpoint,
			AccessKeyID:        cfg.S3.AccessKeyID,
			SecretAccessKey:    cfg.S3.SecretAccessKey,
			UsePathStyle:       cfg.S3.UsePathStyle,
			KeyPrefix:          cfg.S3.KeyPrefix,
			RateLimitPerSecond: cfg.S3.RateLimitPerSecond,
			RateLimitBurst:     cfg.S3.RateLimitBurst,
		})
		if err != nil {
			log.Warn("Failed to initialize S3 mirror", "error", err.Error())
		} else {
			uc.AddPublisher(storage)
			publishers = append(publishers, storage)
			log.Info("S3 mirror initialized", "bucket", cfg.S3.Bucket)
		}
	}

	// Redis
	if cfg.Redis.Enabled {
		if cache := openRedis(cfg.Redis, log); cache != nil {
			uc.AddPublisher(cache)
			uc.AddRecorder(cache)
			publishers = append(publishers, cache)
		}
	}

	// NATS
	if cfg.NATS.Enabled {
		publisher, err := natsInfra.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.Stream, cfg.NATS.SubjectPrefix, log)
		if err != nil {
			log.Warn("Failed to connect to NATS, continuing without event publishing", "error", err.Error())
		} else {
			uc.AddPublisher(publisher)
			uc.AddRecorder(publisher)
			publishers = append(publishers, publisher)
		}
	}

	// PostgreSQL
	if cfg.Database.Enabled {
		if repo := openPostgres(ctx, cfg.Database, log); repo != nil {
			uc.AddPublisher(repo)
			uc.AddRecorder(repo)
			publishers = append(publishers, repo)
		}
	}

	// DynamoDB
	if cfg.Dynamo.Enabled {
		if repo := openDynamo(ctx, cfg.Dynamo, log); repo != nil {
			uc.AddRecorder(repo)
		}
	}

	// CloudWatch Metrics
	if cfg.CloudWatch.MetricsEnabled {
		publisher, err := cloudwatch.NewMetricsPublisher(ctx, cloudwatch.MetricsPublisherConfig{
			Namespace:         cfg.CloudWatch.MetricsNamespace,
			Region:            cfg.CloudWatch.Region,
			Endpoint:          cfg.CloudWatch.Endpoint,
			AccessKeyID:       cfg.CloudWatch.AccessKeyID,
			SecretAccessKey:   cfg.CloudWatch.SecretAccessKey,
			DefaultDimensions: cfg.CloudWatch.MetricsDimensions,
		})
		if err != nil {
			log.Warn("Failed to initialize CloudWatch metrics publisher", "error", err.Error())
		} else {
			uc.AddRecorder(publisher)
		}
	}

	return publishers
}
