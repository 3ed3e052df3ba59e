package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/dreschagin/hostinfo/internal/application/port"
	"github.com/dreschagin/hostinfo/pkg/logger"
)

// ListRecentRunsUseCase возвращает последние запуски хоста из индекса
type ListRecentRunsUseCase struct {
	history port.RunHistory
	logger  *logger.Logger
}

// NewListRecentRunsUseCase создает новый use case
func NewListRecentRunsUseCase(history port.RunHistory, logger *logger.Logger) *ListRecentRunsUseCase {
	return &ListRecentRunsUseCase{
		history: history,
		logger:  logger,
	}
}

// Execute возвращает до limit запусков, новые первыми
func (uc *ListRecentRunsUseCase) Execute(ctx context.Context, host string, limit int) ([]port.RunRecord, error) {
	if host == "" {
		return nil, errors.New("host is required")
	}

	runs, err := uc.history.ListRecent(ctx, host, limit)
	if err != nil {
		uc.logger.Error("Failed to list runs", err, "host", host)
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	uc.logger.Debug("Listed runs", "host", host, "count", len(runs))
	return runs, nil
}
