// Package store provides the row sources the processor reads base tables from.
//
// Two sources implement process.RowSource:
//   - Store: SQLite-backed tables, one SQL table per catalog table
//   - MemorySource: rows held in memory, for tests and small fixtures
//
// # Critical Patterns
//
// CP-1: Criteria Are Advisory
//   - Store pushes only the criteria SQLite evaluates exactly like the processor
//   - Every criterion is re-checked by the processor, so extra rows are harmless
//
// CP-2: Deterministic Row Order
//   - All fetches end with ORDER BY rowid ASC (insertion order)
//   - MemorySource returns rows in insertion order
//
// CP-3: Typed Columns
//   - Column types are recorded in the rq_columns table at CreateTable time
//   - Values are checked against the column type on insert
//   - Strings are stored NFC-normalized
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
