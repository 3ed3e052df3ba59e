package dto

import (
	"time"

	"github.com/dreschagin/hostinfo/internal/domain/entity"
	"github.com/dreschagin/hostinfo/internal/domain/valueobject"
)

// DocumentDTO представляет документ метрики для зеркал (Redis, NATS)
type DocumentDTO struct {
	ID          string             `json:"id"`
	RunID       string             `json:"run_id"`
	Host        string             `json:"host"`
	Metric      string             `json:"metric"`
	Kind        string             `json:"kind"`
	Data        valueobject.Record `json:"data"`
	CollectedAt time.Time          `json:"collected_at"`
}

// FromDocument конвертирует Domain Entity в DTO
func FromDocument(doc *entity.Document) *DocumentDTO {
	return &DocumentDTO{
		ID:          doc.ID(),
		RunID:       doc.RunID(),
		Host:        doc.Host(),
		Metric:      doc.Metric().String(),
		Kind:        string(doc.Record().Kind()),
		Data:        doc.Record(),
		CollectedAt: doc.CollectedAt(),
	}
}

// ToEntity конвертирует DTO обратно в Domain Entity
func (d *DocumentDTO) ToEntity() (*entity.Document, error) {
	metric := valueobject.MetricName(d.Metric)
	if err := metric.Validate(); err != nil {
		return nil, err
	}
	return entity.Reconstruct(d.ID, d.RunID, d.Host, metric, d.Data, d.CollectedAt), nil
}
