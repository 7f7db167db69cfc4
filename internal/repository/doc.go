// Package repository defines the data access interface for manifestlock's
// run history.
//
// History recording is optional: when no database path is configured the
// orchestrator simply runs without it, and a history failure never changes
// the run's exit code. The gate's verdict depends only on the manifest tree
// and the ledger.
//
// # SQLite Implementation
//
// The sqlite implementation persists runs and their failures using the pure
// Go modernc.org/sqlite driver. It handles:
//
// - Schema creation on startup
// - Transactional writes (a run and its failures land together or not at all)
// - In-memory databases for tests
package repository
