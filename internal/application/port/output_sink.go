package port

import (
	"context"

	"github.com/dreschagin/hostinfo/internal/domain/entity"
	"github.com/dreschagin/hostinfo/internal/domain/valueobject"
)

// OutputSink определяет интерфейс записи выходных документов (Port)
type OutputSink interface {
	// Write сериализует запись и сохраняет ее под именем метрики.
	// Повторная запись перезаписывает документ.
	Write(ctx context.Context, metric valueobject.MetricName, record valueobject.Record) error

	// WriteSummary сохраняет итог запуска рядом с документами метрик
	WriteSummary(ctx context.Context, summary *entity.RunSummary) error
}

// DocumentPublisher зеркалирует документы во внешние хранилища (S3, Redis, NATS, PostgreSQL)
type DocumentPublisher interface {
	// Name возвращает имя зеркала для логов
	Name() string

	// PublishDocument публикует документ метрики
	PublishDocument(ctx context.Context, document *entity.Document) error

	// Close освобождает соединения
	Close() error
}

// RunRecorder сохраняет итоги запусков (DynamoDB, CloudWatch, PostgreSQL, NATS)
type RunRecorder interface {
	Name() string

	// RecordRun сохраняет итог запуска
	RecordRun(ctx context.Context, summary *entity.RunSummary) error
}
