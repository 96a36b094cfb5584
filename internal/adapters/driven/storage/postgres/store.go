// Package postgres provides a driven.CorpusStore backed by PostgreSQL with the
// pgvector extension. Similarity is computed in the database as
// 1 - (embedding <=> query), using an ivfflat cosine index.
package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/dossier/internal/adapters/driven/storage/postgres/migrations"
	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CorpusStore = (*Store)(nil)

// DefaultMaxOpenConns bounds the pool when Config.MaxOpenConns is zero.
const DefaultMaxOpenConns = 10

// connectTimeout bounds the start-up ping.
const connectTimeout = 10 * time.Second

// Config holds connection settings.
type Config struct {
	// DatabaseURL is a PostgreSQL connection string (required).
	DatabaseURL string

	// Dimensions is the vector column size. An existing table must match.
	Dimensions int

	// MaxOpenConns bounds the pool (default 10).
	MaxOpenConns int
}

// Store is a PostgreSQL/pgvector corpus store.
type Store struct {
	db         *sql.DB
	dimensions int
}

// NewStore connects, applies pending migrations and verifies the vector column size.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("postgres: database URL is required")
	}
	if cfg.Dimensions <= 0 {
		return nil, errors.New("postgres: dimensions must be positive")
	}
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = DefaultMaxOpenConns
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	s := &Store{db: db, dimensions: cfg.Dimensions}
	if err := s.migrate(ctx, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if err := s.checkDimensions(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies every NNN_*.up.sql newer than the recorded version.
// Each script is rendered with the configured dimensions before execution.
func (s *Store) migrate(ctx context.Context, fsys fs.FS) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("get current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read migrations directory: %w", err)
	}
	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil || version <= current {
			continue
		}

		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		script, err := renderMigration(string(raw), s.dimensions)
		if err != nil {
			return fmt.Errorf("render migration %s: %w", name, err)
		}
		if err := s.applyMigration(ctx, version, script); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}

// renderMigration substitutes {{.Dimensions}} in a migration script.
func renderMigration(script string, dimensions int) (string, error) {
	tmpl, err := template.New("migration").Option("missingkey=error").Parse(script)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Dimensions int }{dimensions}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *Store) applyMigration(ctx context.Context, version int, script string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// checkDimensions compares the vector column's declared size with the configured one.
// For pgvector columns atttypmod holds the dimension.
func (s *Store) checkDimensions(ctx context.Context) error {
	var declared int
	err := s.db.QueryRowContext(ctx, `
		SELECT atttypmod FROM pg_attribute
		WHERE attrelid = 'chunks'::regclass AND attname = 'embedding'
	`).Scan(&declared)
	if err != nil {
		return fmt.Errorf("read vector column size: %w", err)
	}
	if declared > 0 && declared != s.dimensions {
		return &domain.DimensionMismatchError{
			Provider: "postgres",
			Model:    "chunks.embedding",
			Expected: declared,
			Got:      s.dimensions,
		}
	}
	return nil
}

// MatchChunks returns chunks whose similarity is strictly above minSimilarity, nearest first.
func (s *Store) MatchChunks(ctx context.Context, query []float32, minSimilarity float64) ([]domain.ChunkMatch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.file_id, c.chunk_index, c.content,
		       f.file_path, f.title, f.url,
		       1 - (c.embedding <=> $1) AS similarity
		FROM chunks c
		JOIN files f ON f.id = c.file_id
		WHERE 1 - (c.embedding <=> $1) > $2
		ORDER BY c.embedding <=> $1
	`, pgvector.NewVector(query), minSimilarity)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var matches []domain.ChunkMatch
	for rows.Next() {
		var m domain.ChunkMatch
		if err := rows.Scan(&m.Chunk.ID, &m.Chunk.DocumentID, &m.Chunk.Index, &m.Chunk.Content,
			&m.Document.Path, &m.Document.Title, &m.Document.URL, &m.Similarity); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		m.Document.ID = m.Chunk.DocumentID
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}
	return matches, nil
}

// MaxSimilarity returns the similarity of the nearest chunk, or 0 when the store is empty.
func (s *Store) MaxSimilarity(ctx context.Context, query []float32) (float64, error) {
	var best float64
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 - (embedding <=> $1) FROM chunks
		ORDER BY embedding <=> $1
		LIMIT 1
	`, pgvector.NewVector(query)).Scan(&best)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query max similarity: %w", err)
	}
	return best, nil
}

// NeighborChunks returns chunks of documentID within radius of index, ordered by index.
func (s *Store) NeighborChunks(ctx context.Context, documentID string, index, radius int) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, chunk_index, content
		FROM chunks
		WHERE file_id = $1 AND chunk_index BETWEEN $2 AND $3
		ORDER BY chunk_index
	`, documentID, index-radius, index+radius)
	if err != nil {
		return nil, fmt.Errorf("query neighbors: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		c := domain.Chunk{DocumentID: documentID}
		if err := rows.Scan(&c.ID, &c.Index, &c.Content); err != nil {
			return nil, fmt.Errorf("scan neighbor: %w", err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate neighbors: %w", err)
	}
	return chunks, nil
}

// Stats returns document and chunk counts.
func (s *Store) Stats(ctx context.Context) (domain.CorpusStats, error) {
	var stats domain.CorpusStats
	err := s.db.QueryRowContext(ctx,
		"SELECT (SELECT COUNT(*) FROM files), (SELECT COUNT(*) FROM chunks)",
	).Scan(&stats.Files, &stats.Chunks)
	if err != nil {
		return domain.CorpusStats{}, fmt.Errorf("count corpus: %w", err)
	}
	return stats, nil
}

// GetDocumentByPath retrieves a document by its corpus path.
func (s *Store) GetDocumentByPath(ctx context.Context, path string) (*domain.Document, error) {
	var doc domain.Document
	err := s.db.QueryRowContext(ctx, `
		SELECT id, file_path, title, content, url, created_at, updated_at
		FROM files WHERE file_path = $1
	`, path).Scan(&doc.ID, &doc.Path, &doc.Title, &doc.Content, &doc.URL, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return &doc, nil
}

// WithinTx runs fn in one database transaction, committing only if fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(w driven.CorpusWriter) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(&txWriter{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type txWriter struct {
	tx *sql.Tx
}

func (w *txWriter) UpsertDocument(ctx context.Context, doc *domain.Document) error {
	err := w.tx.QueryRowContext(ctx, `
		INSERT INTO files (id, file_path, title, content, url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (file_path) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			url = EXCLUDED.url,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`, uuid.New().String(), doc.Path, doc.Title, doc.Content, doc.URL).
		Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert file: %w", err)
	}
	return nil
}

func (w *txWriter) UpsertChunks(ctx context.Context, documentID string, chunks []domain.EmbeddedChunk) error {
	var exists int
	err := w.tx.QueryRowContext(ctx, "SELECT 1 FROM files WHERE id = $1", documentID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check file: %w", err)
	}

	if _, err := w.tx.ExecContext(ctx, "DELETE FROM chunks WHERE file_id = $1", documentID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}

	stmt, err := w.tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, file_id, content, embedding, chunk_index)
		VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return fmt.Errorf("prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		_, err := stmt.ExecContext(ctx, uuid.New().String(), documentID, c.Content, pgvector.NewVector(c.Embedding), c.Index)
		if err != nil {
			return fmt.Errorf("insert chunk %d: %w", c.Index, err)
		}
	}
	return nil
}
