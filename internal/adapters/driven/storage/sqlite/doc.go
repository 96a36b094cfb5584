// Package sqlite provides the default driven.CorpusStore, backed by an embedded
// SQLite database.
//
// It uses modernc.org/sqlite, a pure Go SQLite implementation that needs no CGO.
// Embeddings are stored as BLOBs and scored in process with cosine similarity,
// which is adequate for corpora of a few thousand chunks. Use the postgres store
// for larger corpora.
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/ directory.
// Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.dossier/data/dossier.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. The database runs in WAL mode so
// readers are not blocked by an ingest transaction.
package sqlite
