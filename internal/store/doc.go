// Package store provides SQLite-backed storage for the catalog,
// modeled as a generic document store: whole-document reads and
// conditional saves for projects and wireless cameras, a streaming
// cursor and batched multi-operation writes for images, and simple CRUD
// for task records.
//
// # Atomicity model
//
// Each operation is atomic on its own collection; nothing here spans
// collections. BulkWriteImages wraps its statements in one sqlite
// transaction as a floor, but callers must not rely on batch atomicity:
// the contract is per-operation, matching document stores where each
// collection may live behind a separate service. Cross-collection
// consistency is the catalog engine's job (its compensation ledger).
//
// # Concurrency
//
// Projects and wireless cameras carry a rev column; Save is a
// conditional update (WHERE rev = ?) and fails with model.ErrStaleWrite
// when the document moved, closing the read-modify-save lost-update
// race.
//
// # Database configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - single-writer connection pool (SQLite allows one writer)
package store
