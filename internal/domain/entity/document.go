package entity

import (
	"errors"
	"time"

	"github.com/dreschagin/hostinfo/internal/domain/valueobject"
	"github.com/google/uuid"
)

// Document представляет выходной документ одной метрики (Aggregate Root)
// Один документ на метрику за запуск
type Document struct {
	id          string
	runID       string
	host        string
	metric      valueobject.MetricName
	record      valueobject.Record
	collectedAt time.Time
}

// NewDocument создает новый документ (Factory Method)
func NewDocument(
	runID string,
	host string,
	metric valueobject.MetricName,
	record valueobject.Record,
) (*Document, error) {
	if err := metric.Validate(); err != nil {
		return nil, err
	}
	if runID == "" {
		return nil, errors.New("run id cannot be empty")
	}

	return &Document{
		id:          uuid.New().String(),
		runID:       runID,
		host:        host,
		metric:      metric,
		record:      record,
		collectedAt: time.Now().UTC(),
	}, nil
}

// Reconstruct восстанавливает документ из хранилища (для Repository)
func Reconstruct(
	id, runID, host string,
	metric valueobject.MetricName,
	record valueobject.Record,
	collectedAt time.Time,
) *Document {
	return &Document{
		id:          id,
		runID:       runID,
		host:        host,
		metric:      metric,
		record:      record,
		collectedAt: collectedAt,
	}
}

func (d *Document) ID() string {
	return d.id
}

func (d *Document) RunID() string {
	return d.runID
}

func (d *Document) Host() string {
	return d.host
}

func (d *Document) Metric() valueobject.MetricName {
	return d.metric
}

func (d *Document) Record() valueobject.Record {
	return d.record
}

func (d *Document) CollectedAt() time.Time {
	return d.collectedAt
}

// IsPlaceholder проверяет, является ли документ заглушкой нереализованной метрики
func (d *Document) IsPlaceholder() bool {
	return d.record.Kind() == valueobject.KindNotImplemented
}
