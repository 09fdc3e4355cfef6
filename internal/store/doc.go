// Package store provides SQLite-backed storage for conformance runs.
//
// The store keeps two tables:
//   - runs: one row per conformance run, with its seed and tallies
//   - cases: (pattern, subject) pairs on which the VM and the oracle
//     disagreed, kept as a regression corpus for replay
//
// Patterns are persisted in canonical JSON (pattern.MarshalCanonical) and
// keyed by pattern.Fingerprint, so the same failing pair found by two runs
// is stored once. Subjects are bound as text with an explicit length, so
// byte strings that are not valid UTF-8 round-trip unchanged.
//
// All reads are ordered by integer sequence columns, never by wall-clock
// time, so listings are identical across machines.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
