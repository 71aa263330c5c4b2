// Package repositories implements SQLite persistence for sync run history.
//
// History is an audit trail: runs are written once they finish and are never read back by the sync itself.
//
// Key Implementations:
//   - [RunRepository] : sync runs with their per-list outcomes
//
// Sequence numbers provide stable, human-readable ordering (e.g., run #42) independent of UUIDs and timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
