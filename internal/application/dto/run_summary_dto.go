package dto

import (
	"time"

	"github.com/dreschagin/hostinfo/internal/domain/entity"
)

// RunSummaryDTO итог запуска с вычисляемыми счетчиками
type RunSummaryDTO struct {
	RunID      string                 `json:"run_id"`
	Host       entity.HostInfo        `json:"host"`
	StartedAt  time.Time              `json:"started_at"`
	FinishedAt time.Time              `json:"finished_at"`
	DurationMS int64                  `json:"duration_ms"`
	Collected  int                    `json:"collected"`
	Failed     int                    `json:"failed"`
	Skipped    int                    `json:"skipped"`
	Outcomes   []entity.MetricOutcome `json:"outcomes"`
}

// FromRunSummary конвертирует итог запуска в DTO
func FromRunSummary(summary *entity.RunSummary) *RunSummaryDTO {
	outcomes := make([]entity.MetricOutcome, len(summary.Outcomes))
	copy(outcomes, summary.Outcomes)

	return &RunSummaryDTO{
		RunID:      summary.RunID,
		Host:       summary.Host,
		StartedAt:  summary.StartedAt,
		FinishedAt: summary.FinishedAt,
		DurationMS: summary.Duration().Milliseconds(),
		Collected:  summary.Count(entity.StatusOK) + summary.Count(entity.StatusNotImplemented),
		Failed:     summary.Count(entity.StatusFailed),
		Skipped:    summary.Count(entity.StatusSkipped),
		Outcomes:   outcomes,
	}
}
