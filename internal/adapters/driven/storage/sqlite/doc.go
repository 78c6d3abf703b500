// Package sqlite provides the SQLite implementation of the document store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Three tables live in one database file:
//
//   - documents: Crawled file metadata, excerpt and content hash
//   - labels: One classification row per document
//   - audit: Append-only record of sync and review changes
//
// # Schema
//
// The base schema is created by versioned migrations stored in the migrations/
// directory. Columns added after the first release are applied additively on open:
// missing columns are detected through PRAGMA table_info and appended, so databases
// written by older builds keep working without data loss.
//
// # Data Location
//
// By default, the database is stored at data/workdrive.db relative to the
// working directory.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
