// Package history implements the C9 history store: a persistent, local,
// single-file SQLite database holding every dispatched command, combining
// a lexical full-text index (BM25 via SQLite's FTS5 virtual table) with an
// in-memory cosine-similarity vector search over embeddings computed by
// internal/aiclient.
//
// Grounded on internal/store's gorm+sqlite setup (WAL pragma, AutoMigrate,
// CRUD helper shape), kept as a separate *gorm.DB handle so high-frequency
// history inserts and FTS trigger maintenance don't share a WAL with the
// low-frequency profile/settings store. FTS5 has no analog in the teacher
// (its audit log is a plain table with no search), so the virtual-table
// and trigger wiring here is built directly against documented SQLite FTS5
// syntax through the same mattn/go-sqlite3 driver the teacher already uses.
package history
