package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/janhofer/linemates/internal/domain/analysis"
	qb "github.com/janhofer/linemates/internal/platform/querybuilder"
)

type LedgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) ListGameIDs(ctx context.Context, teamID, season string) ([]string, error) {
	query, args, err := qb.Select("game_id").From("processed_games").
		Where(
			qb.Eq("team_id", teamID),
			qb.Eq("season", season),
		).
		OrderBy("game_date", "game_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select processed games query: %w", err)
	}

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("select processed games: %w", err)
	}
	return ids, nil
}

func (r *LedgerRepository) Insert(ctx context.Context, game analysis.ProcessedGame) error {
	model := processedGameInsertModel{
		GameID:   game.GameID,
		TeamID:   game.TeamID,
		Season:   game.Season,
		GameDate: game.GameDate,
	}

	query, args, err := qb.InsertModel("processed_games", model, `ON CONFLICT (game_id, team_id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("build insert processed game query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert processed game: %w", err)
	}
	return nil
}
