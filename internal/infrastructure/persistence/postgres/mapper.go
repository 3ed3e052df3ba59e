package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dreschagin/hostinfo/internal/application/dto"
	"github.com/dreschagin/hostinfo/internal/domain/entity"
	"github.com/dreschagin/hostinfo/internal/domain/valueobject"
)

// DocumentDBModel представляет документ метрики в БД
type DocumentDBModel struct {
	ID          string
	RunID       string
	Host        string
	Metric      string
	Kind        string
	Data        []byte // JSON
	CollectedAt time.Time
}

// RunDBModel представляет итог запуска в БД
type RunDBModel struct {
	RunID      string
	Host       string
	StartedAt  time.Time
	FinishedAt time.Time
	Collected  int
	Failed     int
	Skipped    int
	Summary    []byte // JSON
}

// ToDBModel конвертирует Domain Entity в DB Model
func ToDBModel(doc *entity.Document) (*DocumentDBModel, error) {
	data, err := json.Marshal(doc.Record())
	if err != nil {
		return nil, err
	}

	return &DocumentDBModel{
		ID:          doc.ID(),
		RunID:       doc.RunID(),
		Host:        doc.Host(),
		Metric:      doc.Metric().String(),
		Kind:        string(doc.Record().Kind()),
		Data:        data,
		CollectedAt: doc.CollectedAt(),
	}, nil
}

// ToEntity конвертирует DB Model в Domain Entity
func ToEntity(model *DocumentDBModel) (*entity.Document, error) {
	metric := valueobject.MetricName(model.Metric)
	if err := metric.Validate(); err != nil {
		return nil, err
	}

	var record valueobject.Record
	if err := json.Unmarshal(model.Data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode document data: %w", err)
	}

	// Восстанавливаем entity через Reconstruct
	return entity.Reconstruct(
		model.ID,
		model.RunID,
		model.Host,
		metric,
		record,
		model.CollectedAt,
	), nil
}

// ToRunDBModel конвертирует итог запуска в DB Model
func ToRunDBModel(summary *entity.RunSummary) (*RunDBModel, error) {
	view := dto.FromRunSummary(summary)
	data, err := json.Marshal(view)
	if err != nil {
		return nil, err
	}

	return &RunDBModel{
		RunID:      view.RunID,
		Host:       view.Host.Hostname,
		StartedAt:  view.StartedAt,
		FinishedAt: view.FinishedAt,
		Collected:  view.Collected,
		Failed:     view.Failed,
		Skipped:    view.Skipped,
		Summary:    data,
	}, nil
}

// ScanDocumentRow сканирует строку БД в DocumentDBModel
func ScanDocumentRow(row rowScanner) (*DocumentDBModel, error) {
	var model DocumentDBModel

	err := row.Scan(
		&model.ID,
		&model.RunID,
		&model.Host,
		&model.Metric,
		&model.Kind,
		&model.Data,
		&model.CollectedAt,
	)
	if err != nil {
		return nil, err
	}

	return &model, nil
}
