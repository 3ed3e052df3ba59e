package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dreschagin/hostinfo/internal/application/port"
	"github.com/dreschagin/hostinfo/internal/domain/entity"
	"github.com/dreschagin/hostinfo/internal/domain/repository"
	"github.com/dreschagin/hostinfo/internal/domain/valueobject"
	_ "github.com/lib/pq"
)

// Schema создает таблицы архива, если их еще нет
const Schema = `
CREATE TABLE IF NOT EXISTS host_documents (
	id           UUID PRIMARY KEY,
	run_id       UUID NOT NULL,
	host         TEXT NOT NULL,
	metric       TEXT NOT NULL,
	kind         TEXT NOT NULL,
	data         JSONB,
	collected_at TIMESTAMPTZ NOT NULL,
	UNIQUE (host, metric)
);

CREATE TABLE IF NOT EXISTS host_runs (
	run_id      UUID PRIMARY KEY,
	host        TEXT NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL,
	collected   INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	skipped     INTEGER NOT NULL,
	summary     JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_host_runs_host_started ON host_runs (host, started_at DESC);
`

var (
	_ repository.DocumentRepository = (*PostgresDocumentRepository)(nil)
	_ port.DocumentPublisher        = (*PostgresDocumentRepository)(nil)
	_ port.RunRecorder              = (*PostgresDocumentRepository)(nil)
)

// rowScanner совпадает с *sql.Row
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// sqlConn подмножество *sql.DB, используемое репозиторием
type sqlConn interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) rowScanner
	Close() error
}

// dbConn адаптирует *sql.DB к sqlConn
type dbConn struct {
	*sql.DB
}

func (c dbConn) QueryRow(ctx context.Context, query string, args ...interface{}) rowScanner {
	return c.DB.QueryRowContext(ctx, query, args...)
}

// PostgresDocumentRepository реализует repository.DocumentRepository для PostgreSQL
// Также служит зеркалом документов и получателем итогов запуска
type PostgresDocumentRepository struct {
	db sqlConn
}

// NewPostgresDocumentRepository создает новый PostgreSQL repository
func NewPostgresDocumentRepository(db *sql.DB) *PostgresDocumentRepository {
	return &PostgresDocumentRepository{
		db: dbConn{DB: db},
	}
}

// EnsureSchema применяет Schema
func (r *PostgresDocumentRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Save сохраняет документ (upsert по host/metric)
func (r *PostgresDocumentRepository) Save(ctx context.Context, doc *entity.Document) error {
	model, err := ToDBModel(doc)
	if err != nil {
		return fmt.Errorf("failed to convert to DB model: %w", err)
	}

	query := `
		INSERT INTO host_documents (id, run_id, host, metric, kind, data, collected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (host, metric) DO UPDATE SET
			id = EXCLUDED.id,
			run_id = EXCLUDED.run_id,
			kind = EXCLUDED.kind,
			data = EXCLUDED.data,
			collected_at = EXCLUDED.collected_at
	`

	_, err = r.db.ExecContext(ctx, query,
		model.ID,
		model.RunID,
		model.Host,
		model.Metric,
		model.Kind,
		string(model.Data),
		model.CollectedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	return nil
}

// FindLatest находит последний документ метрики хоста
func (r *PostgresDocumentRepository) FindLatest(
	ctx context.Context,
	host string,
	metric valueobject.MetricName,
) (*entity.Document, error) {
	query := `
		SELECT id, run_id, host, metric, kind, data, collected_at
		FROM host_documents
		WHERE host = $1 AND metric = $2
	`

	row := r.db.QueryRow(ctx, query, host, metric.String())
	model, err := ScanDocumentRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", repository.ErrDocumentNotFound, host, metric)
		}
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}

	return ToEntity(model)
}

// SaveRun сохраняет итог запуска
func (r *PostgresDocumentRepository) SaveRun(ctx context.Context, summary *entity.RunSummary) error {
	model, err := ToRunDBModel(summary)
	if err != nil {
		return fmt.Errorf("failed to convert run to DB model: %w", err)
	}

	query := `
		INSERT INTO host_runs (run_id, host, started_at, finished_at, collected, failed, skipped, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.ExecContext(ctx, query,
		model.RunID,
		model.Host,
		model.StartedAt,
		model.FinishedAt,
		model.Collected,
		model.Failed,
		model.Skipped,
		string(model.Summary),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

func (r *PostgresDocumentRepository) Name() string {
	return "postgres"
}

// PublishDocument реализует port.DocumentPublisher
func (r *PostgresDocumentRepository) PublishDocument(ctx context.Context, doc *entity.Document) error {
	return r.Save(ctx, doc)
}

// RecordRun реализует port.RunRecorder
func (r *PostgresDocumentRepository) RecordRun(ctx context.Context, summary *entity.RunSummary) error {
	return r.SaveRun(ctx, summary)
}

// Close закрывает пул соединений
func (r *PostgresDocumentRepository) Close() error {
	return r.db.Close()
}
