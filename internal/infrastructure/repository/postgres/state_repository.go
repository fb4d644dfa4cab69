package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/janhofer/linemates/internal/domain/analysis"
	qb "github.com/janhofer/linemates/internal/platform/querybuilder"
)

type StateRepository struct {
	db *sqlx.DB
}

var analysisStateSelectColumns = []string{
	"team_id",
	"season",
	"status",
	"has_roster",
	"games_total",
	"games_processed",
	"error_message",
	"run_id",
	"last_updated_at",
}

func NewStateRepository(db *sqlx.DB) *StateRepository {
	return &StateRepository{db: db}
}

func (r *StateRepository) Get(ctx context.Context, teamID, season string) (analysis.State, bool, error) {
	query, args, err := qb.Select(analysisStateSelectColumns...).From("analysis_states").
		Where(
			qb.Eq("team_id", teamID),
			qb.Eq("season", season),
		).
		ToSQL()
	if err != nil {
		return analysis.State{}, false, fmt.Errorf("build select analysis state query: %w", err)
	}

	var row analysisStateTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return analysis.State{}, false, nil
		}
		return analysis.State{}, false, fmt.Errorf("select analysis state: %w", err)
	}

	return analysis.State{
		TeamID:         row.TeamID,
		Season:         row.Season,
		Status:         analysis.Status(row.Status),
		HasRoster:      row.HasRoster,
		GamesTotal:     row.GamesTotal,
		GamesProcessed: row.GamesProcessed,
		ErrorMessage:   stringValue(row.ErrorMessage),
		RunID:          stringValue(row.RunID),
		LastUpdatedAt:  row.LastUpdatedAt,
	}, true, nil
}

// Claim arbitrates racing triggers at the database: the conditional conflict
// update only fires against an error row or a stale processing row, so at most
// one caller sees an affected row and starts a run. Done rows never lose.
func (r *StateRepository) Claim(ctx context.Context, state analysis.State, staleBefore time.Time) (bool, error) {
	query, args, err := qb.InsertModel("analysis_states", stateTableModel(state), `ON CONFLICT (team_id, season)
DO UPDATE SET
	status = EXCLUDED.status,
	has_roster = EXCLUDED.has_roster,
	games_total = EXCLUDED.games_total,
	games_processed = EXCLUDED.games_processed,
	error_message = EXCLUDED.error_message,
	run_id = EXCLUDED.run_id,
	last_updated_at = EXCLUDED.last_updated_at
WHERE analysis_states.status = 'error'
	OR (analysis_states.status = 'processing' AND analysis_states.last_updated_at < ?)`, staleBefore)
	if err != nil {
		return false, fmt.Errorf("build claim analysis run query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("claim analysis run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim analysis run rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *StateRepository) Upsert(ctx context.Context, state analysis.State) error {
	query, args, err := qb.InsertModel("analysis_states", stateTableModel(state), `ON CONFLICT (team_id, season)
DO UPDATE SET
	status = EXCLUDED.status,
	has_roster = EXCLUDED.has_roster,
	games_total = EXCLUDED.games_total,
	games_processed = EXCLUDED.games_processed,
	error_message = EXCLUDED.error_message,
	run_id = EXCLUDED.run_id,
	last_updated_at = EXCLUDED.last_updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert analysis state query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert analysis state: %w", err)
	}
	return nil
}

func stateTableModel(state analysis.State) analysisStateTableModel {
	return analysisStateTableModel{
		TeamID:         state.TeamID,
		Season:         state.Season,
		Status:         string(state.Status),
		HasRoster:      state.HasRoster,
		GamesTotal:     state.GamesTotal,
		GamesProcessed: state.GamesProcessed,
		ErrorMessage:   optionalString(state.ErrorMessage),
		RunID:          optionalString(state.RunID),
		LastUpdatedAt:  state.LastUpdatedAt,
	}
}
