/*
store.go - Persistence interfaces the engine consumes

PURPOSE:
  The engine never touches a database. A SnapshotSource hands it a
  consistent point-in-time Snapshot; the engine computes over that and
  nothing else. How the snapshot is assembled — one SQL transaction, an
  in-memory map, a fixture — is entirely the store's concern.

SNAPSHOT CONSISTENCY:
  Arrears and penalties are only valid relative to the data seen, so
  implementations must read all collections within one consistent view.
  The sqlite store does this inside a single read transaction.

STATEMENT CACHE:
  Computation is stateless and replays the full history on every call.
  That is correct but O(units × priorPeriods × expenses); the optional
  StatementCache lets callers persist assembled statements per period
  (once a period's due date has passed, its numbers only change if an
  administrator backfills data, in which case the cache entry is
  overwritten by the next warm-up run).

IMPLEMENTATIONS:
  - store/memory.go: in-memory, for tests and dev
  - store/sqlite:    production SQLite store
*/
package engine

import "context"

// =============================================================================
// SNAPSHOT SOURCE - Point-in-time reads
// =============================================================================

// SnapshotSource loads one association's full billing data as a
// consistent snapshot.
type SnapshotSource interface {
	// Snapshot returns the association's units, expenses, funds,
	// payments, and billing rules as one consistent read.
	// Returns ErrAssociationNotFound if nothing is recorded for id.
	Snapshot(ctx context.Context, id AssociationID) (*Snapshot, error)
}

// =============================================================================
// STATEMENT CACHE - Optional period-indexed persistence of results
// =============================================================================

// StatementCache persists assembled statements keyed by association and
// period. Get returns ErrStatementNotCached on a miss.
type StatementCache interface {
	SaveStatement(ctx context.Context, st BillingStatement) error
	GetStatement(ctx context.Context, id AssociationID, period BillingPeriod) (*BillingStatement, error)
}
