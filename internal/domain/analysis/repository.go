package analysis

import (
	"context"
	"time"
)

// StateRepository persists per team+season analysis state, unique on that pair.
type StateRepository interface {
	Get(ctx context.Context, teamID, season string) (State, bool, error)
	// Claim writes the given processing state only when no run currently owns
	// the pair: it loses against an existing done row and against a processing
	// row updated at or after staleBefore. The conflict-backed conditional
	// write arbitrates racing triggers; exactly one caller wins.
	Claim(ctx context.Context, state State, staleBefore time.Time) (bool, error)
	// Upsert replaces the state row unconditionally. Only the run that won the
	// claim writes through it.
	Upsert(ctx context.Context, state State) error
}

// LedgerRepository tracks which games have already been ingested per team.
type LedgerRepository interface {
	ListGameIDs(ctx context.Context, teamID, season string) ([]string, error)
	Insert(ctx context.Context, game ProcessedGame) error
}

// GoalEventRepository stores accepted goals and serves the aggregation reads.
type GoalEventRepository interface {
	InsertMany(ctx context.Context, events []GoalEvent) error
	AggregateCombos(ctx context.Context, teamID, season string, filter MatrixFilter) ([]ComboRow, error)
	AggregateSolos(ctx context.Context, teamID, season string, filter MatrixFilter) ([]SoloRow, error)
}
