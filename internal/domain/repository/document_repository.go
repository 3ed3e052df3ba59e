package repository

import (
	"context"

	"github.com/dreschagin/hostinfo/internal/domain/entity"
	"github.com/dreschagin/hostinfo/internal/domain/valueobject"
)

// DocumentRepository определяет интерфейс архива документов и запусков (Port)
// Реализация будет в Infrastructure слое
type DocumentRepository interface {
	// Save сохраняет документ, заменяя предыдущий для той же пары host/metric
	Save(ctx context.Context, doc *entity.Document) error

	// FindLatest находит последний документ метрики хоста
	FindLatest(ctx context.Context, host string, metric valueobject.MetricName) (*entity.Document, error)

	// SaveRun сохраняет итог запуска
	SaveRun(ctx context.Context, summary *entity.RunSummary) error
}
