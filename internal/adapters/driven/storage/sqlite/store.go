package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/dossier/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/dossier/internal/adapters/driven/storage/vector"
	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CorpusStore = (*Store)(nil)

// DatabaseFile is the file created inside the data directory.
const DatabaseFile = "dossier.db"

// Store is a SQLite-backed corpus store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database in dataDir and applies pending migrations.
// If dataDir is empty, defaults to ~/.dossier/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".dossier", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// Pragmas in the DSN apply to every pooled connection.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(context.Background(), migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

// SetMaxOpenConns bounds the connection pool.
func (s *Store) SetMaxOpenConns(n int) {
	if n > 0 {
		s.db.SetMaxOpenConns(n)
	}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate applies every NNN_*.up.sql newer than the recorded version, each in its own transaction.
func (s *Store) migrate(ctx context.Context, fsys fs.FS) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
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
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if err := s.applyMigration(ctx, version, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
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
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// SchemaVersion returns the highest applied migration version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("get schema version: %w", err)
	}
	return v, nil
}

// MatchChunks scores every stored chunk in process and keeps those strictly above minSimilarity.
func (s *Store) MatchChunks(ctx context.Context, query []float32, minSimilarity float64) ([]domain.ChunkMatch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.file_id, c.chunk_index, c.content, c.embedding,
		       f.file_path, f.title, f.url
		FROM chunks c
		JOIN files f ON f.id = c.file_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var matches []domain.ChunkMatch
	for rows.Next() {
		var (
			m    domain.ChunkMatch
			blob []byte
		)
		if err := rows.Scan(&m.Chunk.ID, &m.Chunk.DocumentID, &m.Chunk.Index, &m.Chunk.Content, &blob,
			&m.Document.Path, &m.Document.Title, &m.Document.URL); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		embedding, err := vector.Decode(blob)
		if err != nil {
			return nil, fmt.Errorf("decode embedding of chunk %s: %w", m.Chunk.ID, err)
		}

		m.Similarity = vector.Similarity(query, embedding)
		if m.Similarity <= minSimilarity {
			continue
		}
		m.Document.ID = m.Chunk.DocumentID
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}
	return matches, nil
}

// MaxSimilarity returns the best similarity across all chunks, or 0 when the store is empty.
func (s *Store) MaxSimilarity(ctx context.Context, query []float32) (float64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT embedding FROM chunks")
	if err != nil {
		return 0, fmt.Errorf("query embeddings: %w", err)
	}
	defer rows.Close()

	best, found := 0.0, false
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return 0, fmt.Errorf("scan embedding: %w", err)
		}
		embedding, err := vector.Decode(blob)
		if err != nil {
			return 0, fmt.Errorf("decode embedding: %w", err)
		}
		if sim := vector.Similarity(query, embedding); !found || sim > best {
			best, found = sim, true
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate embeddings: %w", err)
	}
	return best, nil
}

// NeighborChunks returns chunks of documentID within radius of index, ordered by index.
func (s *Store) NeighborChunks(ctx context.Context, documentID string, index, radius int) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, chunk_index, content
		FROM chunks
		WHERE file_id = ? AND chunk_index BETWEEN ? AND ?
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
	row := s.db.QueryRowContext(ctx, `
		SELECT id, file_path, title, content, url, created_at, updated_at
		FROM files WHERE file_path = ?
	`, path)

	var (
		doc                  domain.Document
		createdAt, updatedAt sql.NullTime
	)
	err := row.Scan(&doc.ID, &doc.Path, &doc.Title, &doc.Content, &doc.URL, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan document: %w", err)
	}
	doc.CreatedAt = createdAt.Time
	doc.UpdatedAt = updatedAt.Time
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

// txWriter implements driven.CorpusWriter on an open transaction.
type txWriter struct {
	tx *sql.Tx
}

func (w *txWriter) UpsertDocument(ctx context.Context, doc *domain.Document) error {
	now := time.Now().UTC()
	_, err := w.tx.ExecContext(ctx, `
		INSERT INTO files (id, file_path, title, content, url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			url = excluded.url,
			updated_at = excluded.updated_at
	`, uuid.New().String(), doc.Path, doc.Title, doc.Content, doc.URL, now, now)
	if err != nil {
		return fmt.Errorf("upsert file: %w", err)
	}

	// The row may pre-date this call, so read back the surviving ID.
	var createdAt sql.NullTime
	err = w.tx.QueryRowContext(ctx, "SELECT id, created_at FROM files WHERE file_path = ?", doc.Path).
		Scan(&doc.ID, &createdAt)
	if err != nil {
		return fmt.Errorf("read file id: %w", err)
	}
	doc.CreatedAt = createdAt.Time
	doc.UpdatedAt = now
	return nil
}

func (w *txWriter) UpsertChunks(ctx context.Context, documentID string, chunks []domain.EmbeddedChunk) error {
	var exists int
	err := w.tx.QueryRowContext(ctx, "SELECT 1 FROM files WHERE id = ?", documentID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check file: %w", err)
	}

	// Chunks are replaced wholesale so a shorter document leaves no stale tail.
	if _, err := w.tx.ExecContext(ctx, "DELETE FROM chunks WHERE file_id = ?", documentID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}

	stmt, err := w.tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, file_id, content, embedding, chunk_index, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, c := range chunks {
		_, err := stmt.ExecContext(ctx, uuid.New().String(), documentID, c.Content, vector.Encode(c.Embedding), c.Index, now)
		if err != nil {
			return fmt.Errorf("insert chunk %d: %w", c.Index, err)
		}
	}
	return nil
}
