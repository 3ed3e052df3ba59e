package entity

import (
	"time"

	"github.com/dreschagin/hostinfo/internal/domain/valueobject"
	"github.com/google/uuid"
)

// OutcomeStatus результат сбора одной метрики
type OutcomeStatus string

const (
	StatusOK             OutcomeStatus = "ok"
	StatusFailed         OutcomeStatus = "failed"
	StatusNotImplemented OutcomeStatus = "not_implemented"
	StatusSkipped        OutcomeStatus = "skipped"
)

// HostInfo описывает хост, на котором выполнялся сбор
type HostInfo struct {
	Hostname        string    `json:"hostname"`
	Platform        string    `json:"platform,omitempty"`
	PlatformVersion string    `json:"platform_version,omitempty"`
	KernelVersion   string    `json:"kernel_version,omitempty"`
	BootTime        time.Time `json:"boot_time"`
}

// MetricOutcome результат сбора метрики внутри запуска
type MetricOutcome struct {
	Metric     valueobject.MetricName `json:"metric"`
	Status     OutcomeStatus          `json:"status"`
	Error      string                 `json:"error,omitempty"`
	Warnings   []string               `json:"warnings,omitempty"`
	DurationMS int64                  `json:"duration_ms"`
}

// RunSummary итог одного запуска сборщика
type RunSummary struct {
	RunID      string          `json:"run_id"`
	Host       HostInfo        `json:"host"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Outcomes   []MetricOutcome `json:"outcomes"`
}

// NewRunSummary начинает новый запуск
func NewRunSummary(host HostInfo) *RunSummary {
	return &RunSummary{
		RunID:     uuid.New().String(),
		Host:      host,
		StartedAt: time.Now().UTC(),
		Outcomes:  make([]MetricOutcome, 0),
	}
}

// Add добавляет результат метрики
func (s *RunSummary) Add(outcome MetricOutcome) {
	s.Outcomes = append(s.Outcomes, outcome)
}

// Finish фиксирует время завершения
func (s *RunSummary) Finish() {
	s.FinishedAt = time.Now().UTC()
}

// Duration возвращает длительность запуска
func (s *RunSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Count возвращает количество результатов с указанным статусом
func (s *RunSummary) Count(status OutcomeStatus) int {
	count := 0
	for _, outcome := range s.Outcomes {
		if outcome.Status == status {
			count++
		}
	}
	return count
}
