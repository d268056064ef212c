// Package store provides SQLite-backed durable storage for validated rules.
//
// Each row keeps the rule label, the content hash of label, body and head,
// the canonical JSON of body, head and normal form, and the number of
// normal-form branches.
//
// # Invariants
//
//   - Writes are idempotent by hash: rewriting an identical rule is a no-op.
//   - A label names one rule: writing different content under a stored
//     label fails with ErrLabelConflict.
//   - Hashes are unique; the same content cannot live under two labels.
//   - Insertion order is a logical seq, never a timestamp.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Hashes are computed by internal/ir using canonical JSON and SHA-256 with
// domain separation.
package store
