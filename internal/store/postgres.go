package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"smart-docs/internal/domain"
)

const foreignKeyViolation = "23503"

type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	// Advisory lock so the gateway and archiver do not migrate concurrently.
	const lockID = 424242001

	var acquired bool
	err := s.db.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, lockID).Scan(&acquired)
	if err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	if !acquired {
		// Another service is running migrations; wait briefly and skip
		time.Sleep(2 * time.Second)
		return nil
	}
	defer func() {
		_, _ = s.db.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockID)
	}()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id UUID PRIMARY KEY,
			origin TEXT NOT NULL,
			origin_label TEXT NOT NULL,
			content TEXT NOT NULL,
			size_bytes BIGINT NOT NULL,
			loaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS documents_loaded_at_idx ON documents (loaded_at DESC);`,
		`CREATE TABLE IF NOT EXISTS summaries (
			document_id UUID PRIMARY KEY REFERENCES documents(id) ON DELETE CASCADE,
			summary TEXT NOT NULL,
			key_points TEXT[] NOT NULL,
			technical_highlights TEXT[] NOT NULL,
			recommendations TEXT[] NOT NULL,
			details JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) SaveDocument(ctx context.Context, doc domain.Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents(id, origin, origin_label, content, size_bytes, loaded_at)
		VALUES($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO NOTHING`,
		doc.ID, string(doc.Origin), doc.OriginLabel, doc.Content, doc.SizeBytes, doc.LoadedAt)
	return err
}

func (s *PostgresStore) GetDocument(ctx context.Context, id uuid.UUID) (domain.Document, error) {
	var (
		doc    domain.Document
		origin string
	)
	row := s.db.QueryRowContext(ctx, `
		SELECT id, origin, origin_label, content, size_bytes, loaded_at
		FROM documents WHERE id=$1`, id)
	if err := row.Scan(&doc.ID, &origin, &doc.OriginLabel, &doc.Content, &doc.SizeBytes, &doc.LoadedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Document{}, ErrDocumentNotFound
		}
		return domain.Document{}, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	doc.Origin = domain.Origin(origin)
	doc.LoadedAt = doc.LoadedAt.UTC()
	return doc, nil
}

func (s *PostgresStore) ListDocuments(ctx context.Context, limit int) ([]Record, error) {
	query := `
		SELECT d.id, d.origin, d.origin_label, d.size_bytes, d.loaded_at, s.document_id IS NOT NULL
		FROM documents d
		LEFT JOIN summaries s ON s.document_id = d.id
		ORDER BY d.loaded_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r      Record
			origin string
		)
		if err := rows.Scan(&r.ID, &origin, &r.OriginLabel, &r.SizeBytes, &r.LoadedAt, &r.HasSummary); err != nil {
			return nil, err
		}
		r.Origin = domain.Origin(origin)
		r.LoadedAt = r.LoadedAt.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SaveSummary(ctx context.Context, docID uuid.UUID, res domain.SummaryResult) error {
	det, err := encodeDetails(res)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO summaries(document_id, summary, key_points, technical_highlights, recommendations, details)
		VALUES($1,$2,$3,$4,$5,$6)
		ON CONFLICT (document_id) DO UPDATE SET
			summary=excluded.summary,
			key_points=excluded.key_points,
			technical_highlights=excluded.technical_highlights,
			recommendations=excluded.recommendations,
			details=excluded.details,
			created_at=now()`,
		docID, res.Summary,
		pq.Array(pqStringArray(res.KeyPoints)),
		pq.Array(pqStringArray(res.TechnicalHighlights)),
		pq.Array(pqStringArray(res.Recommendations)),
		det)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return ErrDocumentNotFound
	}
	return err
}

func (s *PostgresStore) GetSummary(ctx context.Context, docID uuid.UUID) (Summary, error) {
	var (
		sum Summary
		det []byte
	)
	row := s.db.QueryRowContext(ctx, `
		SELECT summary, key_points, technical_highlights, recommendations, details, created_at
		FROM summaries WHERE document_id=$1`, docID)
	err := row.Scan(&sum.Result.Summary,
		pq.Array(&sum.Result.KeyPoints),
		pq.Array(&sum.Result.TechnicalHighlights),
		pq.Array(&sum.Result.Recommendations),
		&det, &sum.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Summary{}, ErrSummaryNotFound
		}
		return Summary{}, fmt.Errorf("failed to get summary for doc %s: %w", docID, err)
	}
	if err := decodeDetails(det, &sum.Result); err != nil {
		return Summary{}, err
	}
	sum.DocumentID = docID
	sum.CreatedAt = sum.CreatedAt.UTC()
	return sum, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func pqStringArray(items []string) []string {
	if len(items) == 0 {
		return []string{}
	}
	return items
}
