package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"TranscriptDigest/internal/domain"
	"TranscriptDigest/internal/ports"
)

const transcriptsTable = "transcripts"

const schema = `CREATE TABLE IF NOT EXISTS transcripts (
    symbol         TEXT        NOT NULL,
    year           INTEGER     NOT NULL,
    quarter        INTEGER     NOT NULL,
    content        TEXT        NOT NULL,
    summary        JSONB,
    report         TEXT,
    skipped_topics TEXT[]      NOT NULL DEFAULT '{}',
    status         TEXT        NOT NULL,
    fetched_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (symbol, year, quarter)
)`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository persists transcripts and their summaries into Postgres.
type PostgresRepository struct {
	db *sql.DB
}

var (
	_ ports.TranscriptRepository = (*PostgresRepository)(nil)
	_ ports.StatusRecorder       = (*PostgresRepository)(nil)
)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the transcripts table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveTranscript upserts the raw transcript text.
func (r *PostgresRepository) SaveTranscript(ctx context.Context, doc domain.Transcript) error {
	if r.db == nil {
		return nil
	}

	query, args, err := saveTranscriptQuery(doc)
	if err != nil {
		return fmt.Errorf("build upsert transcript: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert transcript: %w", err)
	}
	return nil
}

// SaveSummary stores the summary map, report and skipped topics for an existing row.
func (r *PostgresRepository) SaveSummary(ctx context.Context, doc domain.Transcript) error {
	if r.db == nil {
		return nil
	}

	query, args, err := saveSummaryQuery(doc)
	if err != nil {
		return fmt.Errorf("build update summary: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update summary: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update summary %s: %w", doc.Key, domain.ErrTranscriptNotFound)
	}
	return nil
}

// HasSummary reports whether a summary has been stored for key.
func (r *PostgresRepository) HasSummary(ctx context.Context, key domain.TranscriptKey) (bool, error) {
	if r.db == nil {
		return false, nil
	}

	query, args, err := hasSummaryQuery(key)
	if err != nil {
		return false, fmt.Errorf("build has summary: %w", err)
	}

	var one int
	switch err := r.db.QueryRowContext(ctx, query, args...).Scan(&one); {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("query summary: %w", err)
	}
	return true, nil
}

// SetStatus records a later milestone, such as delivery, for an existing row.
func (r *PostgresRepository) SetStatus(ctx context.Context, key domain.TranscriptKey, status domain.ProcessingStatus) error {
	if r.db == nil {
		return nil
	}

	query, args, err := setStatusQuery(key, status)
	if err != nil {
		return fmt.Errorf("build set status: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set status %s: %w", key, err)
	}
	return nil
}

func saveTranscriptQuery(doc domain.Transcript) (string, []interface{}, error) {
	fetchedAt := doc.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}
	return psql.Insert(transcriptsTable).
		Columns("symbol", "year", "quarter", "content", "status", "fetched_at").
		Values(doc.Key.Symbol, doc.Key.Year, doc.Key.Quarter, doc.Content, string(domain.StatusFetched), fetchedAt).
		Suffix(`ON CONFLICT (symbol, year, quarter) DO UPDATE
              SET content = EXCLUDED.content,
                  status = EXCLUDED.status,
                  fetched_at = EXCLUDED.fetched_at,
                  updated_at = NOW()`).
		ToSql()
}

func saveSummaryQuery(doc domain.Transcript) (string, []interface{}, error) {
	summary, err := json.Marshal(doc.Summary)
	if err != nil {
		return "", nil, fmt.Errorf("encode summary: %w", err)
	}

	skipped := make([]string, 0, len(doc.Skipped))
	for _, s := range doc.Skipped {
		skipped = append(skipped, s.Topic)
	}

	return psql.Update(transcriptsTable).
		Set("summary", string(summary)).
		Set("report", doc.Report).
		Set("skipped_topics", pq.StringArray(skipped)).
		Set("status", string(domain.StatusSummarized)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(keyPredicate(doc.Key)).
		ToSql()
}

func hasSummaryQuery(key domain.TranscriptKey) (string, []interface{}, error) {
	return psql.Select("1").
		From(transcriptsTable).
		Where(keyPredicate(key)).
		Where(sq.NotEq{"summary": nil}).
		Limit(1).
		ToSql()
}

func setStatusQuery(key domain.TranscriptKey, status domain.ProcessingStatus) (string, []interface{}, error) {
	return psql.Update(transcriptsTable).
		Set("status", string(status)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(keyPredicate(key)).
		ToSql()
}

func keyPredicate(key domain.TranscriptKey) sq.Eq {
	return sq.Eq{"symbol": key.Symbol, "year": key.Year, "quarter": key.Quarter}
}
