package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"smart-docs/internal/domain"
)

// SQLiteStore keeps history in a local SQLite file, for the CLI and
// single-node deployments.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps PRAGMAs in effect and serialises writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			origin TEXT NOT NULL,
			origin_label TEXT NOT NULL,
			content TEXT NOT NULL,
			size_bytes INTEGER NOT NULL,
			loaded_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS documents_loaded_at_idx ON documents (loaded_at DESC);`,
		`CREATE TABLE IF NOT EXISTS summaries (
			document_id TEXT PRIMARY KEY REFERENCES documents(id) ON DELETE CASCADE,
			summary TEXT NOT NULL,
			key_points TEXT NOT NULL,
			technical_highlights TEXT NOT NULL,
			recommendations TEXT NOT NULL,
			details TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) SaveDocument(ctx context.Context, doc domain.Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents(id, origin, origin_label, content, size_bytes, loaded_at)
		VALUES(?,?,?,?,?,?)
		ON CONFLICT (id) DO NOTHING`,
		doc.ID.String(), string(doc.Origin), doc.OriginLabel, doc.Content, doc.SizeBytes, doc.LoadedAt.UnixNano())
	return err
}

func (s *SQLiteStore) GetDocument(ctx context.Context, id uuid.UUID) (domain.Document, error) {
	var (
		doc      domain.Document
		rawID    string
		origin   string
		loadedAt int64
	)
	row := s.db.QueryRowContext(ctx, `
		SELECT id, origin, origin_label, content, size_bytes, loaded_at
		FROM documents WHERE id=?`, id.String())
	if err := row.Scan(&rawID, &origin, &doc.OriginLabel, &doc.Content, &doc.SizeBytes, &loadedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Document{}, ErrDocumentNotFound
		}
		return domain.Document{}, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	parsed, err := uuid.Parse(rawID)
	if err != nil {
		return domain.Document{}, fmt.Errorf("corrupt document id %q: %w", rawID, err)
	}
	doc.ID = parsed
	doc.Origin = domain.Origin(origin)
	doc.LoadedAt = time.Unix(0, loadedAt).UTC()
	return doc, nil
}

func (s *SQLiteStore) ListDocuments(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1 // no limit in SQLite
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.origin, d.origin_label, d.size_bytes, d.loaded_at, s.document_id IS NOT NULL
		FROM documents d
		LEFT JOIN summaries s ON s.document_id = d.id
		ORDER BY d.loaded_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r        Record
			rawID    string
			origin   string
			loadedAt int64
		)
		if err := rows.Scan(&rawID, &origin, &r.OriginLabel, &r.SizeBytes, &loadedAt, &r.HasSummary); err != nil {
			return nil, err
		}
		if r.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("corrupt document id %q: %w", rawID, err)
		}
		r.Origin = domain.Origin(origin)
		r.LoadedAt = time.Unix(0, loadedAt).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveSummary(ctx context.Context, docID uuid.UUID, res domain.SummaryResult) error {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM documents WHERE id=?)`, docID.String()).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrDocumentNotFound
	}

	det, err := encodeDetails(res)
	if err != nil {
		return err
	}
	keyPoints, err := json.Marshal(pqStringArray(res.KeyPoints))
	if err != nil {
		return err
	}
	highlights, err := json.Marshal(pqStringArray(res.TechnicalHighlights))
	if err != nil {
		return err
	}
	recs, err := json.Marshal(pqStringArray(res.Recommendations))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO summaries(document_id, summary, key_points, technical_highlights, recommendations, details, created_at)
		VALUES(?,?,?,?,?,?,?)
		ON CONFLICT (document_id) DO UPDATE SET
			summary=excluded.summary,
			key_points=excluded.key_points,
			technical_highlights=excluded.technical_highlights,
			recommendations=excluded.recommendations,
			details=excluded.details,
			created_at=excluded.created_at`,
		docID.String(), res.Summary, string(keyPoints), string(highlights), string(recs), string(det), time.Now().UnixNano())
	return err
}

func (s *SQLiteStore) GetSummary(ctx context.Context, docID uuid.UUID) (Summary, error) {
	var (
		sum                               Summary
		keyPoints, highlights, recs, det string
		createdAt                         int64
	)
	row := s.db.QueryRowContext(ctx, `
		SELECT summary, key_points, technical_highlights, recommendations, details, created_at
		FROM summaries WHERE document_id=?`, docID.String())
	if err := row.Scan(&sum.Result.Summary, &keyPoints, &highlights, &recs, &det, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Summary{}, ErrSummaryNotFound
		}
		return Summary{}, fmt.Errorf("failed to get summary for doc %s: %w", docID, err)
	}
	for _, f := range []struct {
		raw string
		dst *[]string
	}{
		{keyPoints, &sum.Result.KeyPoints},
		{highlights, &sum.Result.TechnicalHighlights},
		{recs, &sum.Result.Recommendations},
	} {
		if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
			return Summary{}, fmt.Errorf("decode summary lists: %w", err)
		}
	}
	if err := decodeDetails([]byte(det), &sum.Result); err != nil {
		return Summary{}, err
	}
	sum.DocumentID = docID
	sum.CreatedAt = time.Unix(0, createdAt).UTC()
	return sum, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
