package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dreschagin/hostinfo/internal/application/dto"
	"github.com/dreschagin/hostinfo/internal/application/port"
	"github.com/dreschagin/hostinfo/internal/domain/entity"
	"github.com/dreschagin/hostinfo/internal/domain/valueobject"
	"github.com/dreschagin/hostinfo/pkg/logger"
)

// SummaryFileName имя файла итога запуска в выходной директории
const SummaryFileName = "run.json"

// DocumentSink пишет документы метрик в <dir>/<metric>.json
// Реализует интерфейс port.OutputSink
type DocumentSink struct {
	dir    string
	logger *logger.Logger
}

// NewDocumentSink создает sink для указанной директории
// Директория не создается: ее отсутствие является ошибкой записи
func NewDocumentSink(dir string, log *logger.Logger) *DocumentSink {
	return &DocumentSink{
		dir:    dir,
		logger: log,
	}
}

// Dir возвращает выходную директорию
func (s *DocumentSink) Dir() string {
	return s.dir
}

// PathFor возвращает путь документа метрики
func (s *DocumentSink) PathFor(metric valueobject.MetricName) string {
	return filepath.Join(s.dir, metric.FileName())
}

// Write сериализует запись и атомарно заменяет файл метрики
func (s *DocumentSink) Write(ctx context.Context, metric valueobject.MetricName, record valueobject.Record) error {
	if err := metric.Validate(); err != nil {
		return fmt.Errorf("%w: %v", port.ErrWrite, err)
	}

	data, err := dto.EncodeIndent(record)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", port.ErrWrite, metric, err)
	}

	if err := s.writeAtomic(ctx, metric.FileName(), data); err != nil {
		return err
	}

	s.logger.Debug("Document written", "metric", metric.String(), "path", s.PathFor(metric), "bytes", len(data))
	return nil
}

// WriteSummary пишет итог запуска в <dir>/run.json
func (s *DocumentSink) WriteSummary(ctx context.Context, summary *entity.RunSummary) error {
	data, err := dto.EncodeIndent(dto.FromRunSummary(summary))
	if err != nil {
		return fmt.Errorf("%w: encode run summary: %v", port.ErrWrite, err)
	}

	return s.writeAtomic(ctx, SummaryFileName, data)
}

// writeAtomic пишет во временный файл рядом с целевым, затем fsync и rename
func (s *DocumentSink) writeAtomic(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s: %v", port.ErrWrite, name, err)
	}

	target := filepath.Join(s.dir, name)

	tmp, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", port.ErrWrite, target, err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("%w: %s: %v", port.ErrWrite, target, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("%w: %s: %v", port.ErrWrite, target, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", port.ErrWrite, target, err)
	}

	// CreateTemp создает файл с правами 0600
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", port.ErrWrite, target, err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", port.ErrWrite, target, err)
	}

	return nil
}
