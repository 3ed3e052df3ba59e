package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dreschagin/hostinfo/internal/application/port"
	"github.com/dreschagin/hostinfo/internal/domain/entity"
	"github.com/dreschagin/hostinfo/internal/domain/valueobject"
	"github.com/dreschagin/hostinfo/pkg/logger"
)

// CollectHostInfoConfig параметры запуска
type CollectHostInfoConfig struct {
	// FailFast прерывает запуск на первой ошибке, оставшиеся метрики помечаются skipped
	FailFast     bool
	WriteSummary bool
}

// CollectHostInfoUseCase координирует сбор метрик хоста, запись документов и зеркалирование
type CollectHostInfoUseCase struct {
	collector  port.HostCollector
	sink       port.OutputSink
	inspector  port.HostInspector
	publishers []port.DocumentPublisher
	recorders  []port.RunRecorder
	config     CollectHostInfoConfig
	logger     *logger.Logger
}

// NewCollectHostInfoUseCase создает новый use case
func NewCollectHostInfoUseCase(
	collector port.HostCollector,
	sink port.OutputSink,
	inspector port.HostInspector,
	cfg CollectHostInfoConfig,
	logger *logger.Logger,
) *CollectHostInfoUseCase {
	return &CollectHostInfoUseCase{
		collector: collector,
		sink:      sink,
		inspector: inspector,
		config:    cfg,
		logger:    logger,
	}
}

// AddPublisher подключает зеркало документов
func (uc *CollectHostInfoUseCase) AddPublisher(publisher port.DocumentPublisher) {
	uc.publishers = append(uc.publishers, publisher)
}

// AddRecorder подключает получателя итогов запуска
func (uc *CollectHostInfoUseCase) AddRecorder(recorder port.RunRecorder) {
	uc.recorders = append(uc.recorders, recorder)
}

// CollectMetric собирает одну метрику и выполняет ровно одну запись в sink
func (uc *CollectHostInfoUseCase) CollectMetric(ctx context.Context, metric valueobject.MetricName) (port.Reading, error) {
	if err := metric.Validate(); err != nil {
		return port.Reading{}, err
	}

	reading, err := uc.collector.Collect(ctx, metric)
	if err != nil {
		return reading, err
	}

	// Заглушка допустима для любой метрики
	kind := reading.Record.Kind()
	if kind != valueobject.KindNotImplemented && kind != metric.Shape() {
		return reading, fmt.Errorf("%w: %s produced %s, declared %s", port.ErrShapeMismatch, metric, kind, metric.Shape())
	}

	if err := uc.sink.Write(ctx, metric, reading.Record); err != nil {
		return reading, err
	}

	return reading, nil
}

// Execute собирает метрики в фиксированном порядке (или переданное подмножество)
// Возвращает итог запуска и объединенную ошибку всех неудачных метрик
func (uc *CollectHostInfoUseCase) Execute(ctx context.Context, metrics []valueobject.MetricName) (*entity.RunSummary, error) {
	if len(metrics) == 0 {
		metrics = valueobject.RunOrder()
	}
	for _, metric := range metrics {
		if err := metric.Validate(); err != nil {
			return nil, err
		}
	}

	summary := entity.NewRunSummary(uc.describeHost(ctx))
	uc.logger.Info("Collection started", "run_id", summary.RunID, "host", summary.Host.Hostname, "metrics", len(metrics))

	var errs []error
	for i, metric := range metrics {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("run interrupted: %w", err))
			uc.skip(summary, metrics[i:])
			break
		}

		outcome, err := uc.runMetric(ctx, summary, metric)
		summary.Add(outcome)

		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", metric, err))
			if uc.config.FailFast {
				uc.skip(summary, metrics[i+1:])
				break
			}
		}
	}

	summary.Finish()
	uc.finishRun(ctx, summary)

	uc.logger.Info("Collection finished",
		"run_id", summary.RunID,
		"ok", summary.Count(entity.StatusOK),
		"not_implemented", summary.Count(entity.StatusNotImplemented),
		"failed", summary.Count(entity.StatusFailed),
		"skipped", summary.Count(entity.StatusSkipped),
		"duration", summary.Duration().String(),
	)

	return summary, errors.Join(errs...)
}

func (uc *CollectHostInfoUseCase) runMetric(ctx context.Context, summary *entity.RunSummary, metric valueobject.MetricName) (entity.MetricOutcome, error) {
	startedAt := time.Now()
	uc.logger.Debug("Collecting metric", "metric", metric.String())

	reading, err := uc.CollectMetric(ctx, metric)
	outcome := entity.MetricOutcome{
		Metric:     metric,
		Warnings:   reading.Warnings,
		DurationMS: time.Since(startedAt).Milliseconds(),
	}

	for _, warning := range reading.Warnings {
		uc.logger.Warn("Metric collected with warning", "metric", metric.String(), "warning", warning)
	}

	if err != nil {
		outcome.Status = entity.StatusFailed
		outcome.Error = err.Error()
		uc.logger.Error("Failed to collect metric", err, "metric", metric.String())
		return outcome, err
	}

	outcome.Status = entity.StatusOK
	if reading.Record.Kind() == valueobject.KindNotImplemented {
		outcome.Status = entity.StatusNotImplemented
	}

	uc.publish(ctx, summary, metric, reading.Record)
	return outcome, nil
}

// publish отправляет документ во все зеркала; ошибки зеркал не влияют на результат метрики
func (uc *CollectHostInfoUseCase) publish(ctx context.Context, summary *entity.RunSummary, metric valueobject.MetricName, record valueobject.Record) {
	if len(uc.publishers) == 0 {
		return
	}

	doc, err := entity.NewDocument(summary.RunID, summary.Host.Hostname, metric, record)
	if err != nil {
		uc.logger.Warn("Failed to build document", "metric", metric.String(), "error", err.Error())
		return
	}

	for _, publisher := range uc.publishers {
		if err := publisher.PublishDocument(ctx, doc); err != nil {
			uc.logger.Warn("Failed to mirror document",
				"mirror", publisher.Name(),
				"metric", metric.String(),
				"error", err.Error(),
			)
		}
	}
}

// finishRun пишет итог запуска и передает его получателям
func (uc *CollectHostInfoUseCase) finishRun(ctx context.Context, summary *entity.RunSummary) {
	if uc.config.WriteSummary {
		if err := uc.sink.WriteSummary(ctx, summary); err != nil {
			uc.logger.Error("Failed to write run summary", err, "run_id", summary.RunID)
		}
	}

	for _, recorder := range uc.recorders {
		if err := recorder.RecordRun(ctx, summary); err != nil {
			uc.logger.Warn("Failed to record run",
				"recorder", recorder.Name(),
				"run_id", summary.RunID,
				"error", err.Error(),
			)
		}
	}
}

func (uc *CollectHostInfoUseCase) skip(summary *entity.RunSummary, metrics []valueobject.MetricName) {
	for _, metric := range metrics {
		summary.Add(entity.MetricOutcome{Metric: metric, Status: entity.StatusSkipped})
	}
}

func (uc *CollectHostInfoUseCase) describeHost(ctx context.Context) entity.HostInfo {
	if uc.inspector == nil {
		return entity.HostInfo{Hostname: "unknown"}
	}

	info, err := uc.inspector.Describe(ctx)
	if err != nil {
		uc.logger.Warn("Failed to describe host", "error", err.Error())
	}
	if info.Hostname == "" {
		info.Hostname = "unknown"
	}
	return info
}
