package port

import (
	"context"
	"time"

	"github.com/dreschagin/hostinfo/internal/domain/entity"
	"github.com/dreschagin/hostinfo/internal/domain/valueobject"
)

// DocumentCache кеш последних документов (Redis)
type DocumentCache interface {
	// Latest возвращает документ из кеша; промах возвращается как ошибка
	Latest(ctx context.Context, host string, metric valueobject.MetricName) (*entity.Document, error)

	PublishDocument(ctx context.Context, document *entity.Document) error
}

// RunRecord итог запуска в индексе запусков
type RunRecord struct {
	RunID      string    `json:"run_id"`
	Host       string    `json:"host"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMS int64     `json:"duration_ms"`
	Collected  int       `json:"collected"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	Summary    string    `json:"summary,omitempty"`
}

// RunHistory читает итоги запусков хоста, новые первыми (DynamoDB)
type RunHistory interface {
	ListRecent(ctx context.Context, host string, limit int) ([]RunRecord, error)
}
