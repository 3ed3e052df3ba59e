package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/dreschagin/hostinfo/internal/application/dto"
	"github.com/dreschagin/hostinfo/internal/application/port"
	"github.com/dreschagin/hostinfo/internal/domain/entity"
	"github.com/dreschagin/hostinfo/internal/domain/repository"
	"github.com/dreschagin/hostinfo/internal/domain/valueobject"
	"github.com/dreschagin/hostinfo/pkg/logger"
)

// GetLatestDocumentUseCase возвращает последний документ метрики хоста:
// сначала из кеша, при промахе из архива с прогревом кеша
type GetLatestDocumentUseCase struct {
	cache      port.DocumentCache
	repository repository.DocumentRepository
	logger     *logger.Logger
}

// NewGetLatestDocumentUseCase создает новый use case; любой из источников может быть nil
func NewGetLatestDocumentUseCase(
	cache port.DocumentCache,
	repository repository.DocumentRepository,
	logger *logger.Logger,
) *GetLatestDocumentUseCase {
	return &GetLatestDocumentUseCase{
		cache:      cache,
		repository: repository,
		logger:     logger,
	}
}

// Execute выполняет поиск документа
func (uc *GetLatestDocumentUseCase) Execute(
	ctx context.Context,
	host string,
	metric valueobject.MetricName,
) (*dto.DocumentDTO, error) {
	if err := metric.Validate(); err != nil {
		return nil, err
	}
	if host == "" {
		return nil, errors.New("host is required")
	}

	if uc.cache != nil {
		doc, err := uc.cache.Latest(ctx, host, metric)
		if err == nil {
			uc.logger.Debug("Cache hit for document", "host", host, "metric", metric.String())
			return uc.toDTO(doc), nil
		}
		uc.logger.Debug("Cache miss for document", "host", host, "metric", metric.String(), "reason", err.Error())
	}

	if uc.repository == nil {
		return nil, fmt.Errorf("%w: %s/%s", repository.ErrDocumentNotFound, host, metric)
	}

	doc, err := uc.repository.FindLatest(ctx, host, metric)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.PublishDocument(ctx, doc); err != nil {
			uc.logger.Warn("Failed to cache document", "host", host, "metric", metric.String(), "error", err.Error())
		}
	}

	return uc.toDTO(doc), nil
}

func (uc *GetLatestDocumentUseCase) toDTO(doc *entity.Document) *dto.DocumentDTO {
	if doc.IsPlaceholder() {
		uc.logger.Info("Metric is not implemented on this host", "host", doc.Host(), "metric", doc.Metric().String())
	}
	return dto.FromDocument(doc)
}
