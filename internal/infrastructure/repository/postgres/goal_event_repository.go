package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/janhofer/linemates/internal/domain/analysis"
	qb "github.com/janhofer/linemates/internal/platform/querybuilder"
)

type GoalEventRepository struct {
	db *sqlx.DB
}

func NewGoalEventRepository(db *sqlx.DB) *GoalEventRepository {
	return &GoalEventRepository{db: db}
}

func (r *GoalEventRepository) InsertMany(ctx context.Context, events []analysis.GoalEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert goal events tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, event := range events {
		model := goalEventInsertModel{
			GameID:            event.GameID,
			TeamID:            event.TeamID,
			Season:            event.Season,
			GameDate:          event.GameDate,
			ScorerRawName:     event.ScorerRawName,
			ScorerDisplayName: event.ScorerDisplayName,
			ScorerPlayerID:    event.ScorerPlayerID,
			AssistRawName:     event.AssistRawName,
			AssistDisplayName: event.AssistDisplayName,
			AssistPlayerID:    event.AssistPlayerID,
			IsHome:            event.IsHome,
		}

		query, args, err := qb.InsertModel("goal_events", model, "")
		if err != nil {
			return fmt.Errorf("build insert goal event query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert goal event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert goal events tx: %w", err)
	}
	return nil
}

var comboAggregateColumns = []string{
	"assist_raw_name",
	"MAX(assist_display_name) AS assist_display_name",
	"MAX(assist_player_id) AS assist_player_id",
	"scorer_raw_name",
	"MAX(scorer_display_name) AS scorer_display_name",
	"MAX(scorer_player_id) AS scorer_player_id",
	"COUNT(*) AS total",
	"COUNT(*) FILTER (WHERE is_home) AS home_goals",
	"COUNT(*) FILTER (WHERE NOT is_home) AS away_goals",
}

func (r *GoalEventRepository) AggregateCombos(ctx context.Context, teamID, season string, filter analysis.MatrixFilter) ([]analysis.ComboRow, error) {
	conditions := scopeConditions(teamID, season, filter)
	conditions = append(conditions, qb.IsNotNull("assist_raw_name"))

	query, args, err := qb.Select(comboAggregateColumns...).From("goal_events").
		Where(conditions...).
		GroupBy("assist_raw_name", "scorer_raw_name").
		OrderBy("total DESC", "assist_raw_name", "scorer_raw_name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build aggregate combos query: %w", err)
	}

	var rows []comboAggregateModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select combo aggregates: %w", err)
	}

	out := make([]analysis.ComboRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, analysis.ComboRow{
			ScorerRawName:     row.ScorerRawName,
			ScorerDisplayName: row.ScorerDisplayName.String,
			ScorerPlayerID:    nullStringPtr(row.ScorerPlayerID),
			AssistRawName:     row.AssistRawName,
			AssistDisplayName: row.AssistDisplayName.String,
			AssistPlayerID:    nullStringPtr(row.AssistPlayerID),
			Total:             row.Total,
			HomeGoals:         row.HomeGoals,
			AwayGoals:         row.AwayGoals,
		})
	}
	return out, nil
}

var soloAggregateColumns = []string{
	"scorer_raw_name",
	"MAX(scorer_display_name) AS scorer_display_name",
	"MAX(scorer_player_id) AS scorer_player_id",
	"COUNT(*) AS total",
	"COUNT(*) FILTER (WHERE is_home) AS home_goals",
	"COUNT(*) FILTER (WHERE NOT is_home) AS away_goals",
}

func (r *GoalEventRepository) AggregateSolos(ctx context.Context, teamID, season string, filter analysis.MatrixFilter) ([]analysis.SoloRow, error) {
	conditions := scopeConditions(teamID, season, filter)
	conditions = append(conditions, qb.IsNull("assist_raw_name"))

	query, args, err := qb.Select(soloAggregateColumns...).From("goal_events").
		Where(conditions...).
		GroupBy("scorer_raw_name").
		OrderBy("total DESC", "scorer_raw_name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build aggregate solos query: %w", err)
	}

	var rows []soloAggregateModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select solo aggregates: %w", err)
	}

	out := make([]analysis.SoloRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, analysis.SoloRow{
			ScorerRawName:     row.ScorerRawName,
			ScorerDisplayName: row.ScorerDisplayName.String,
			ScorerPlayerID:    nullStringPtr(row.ScorerPlayerID),
			Total:             row.Total,
			HomeGoals:         row.HomeGoals,
			AwayGoals:         row.AwayGoals,
		})
	}
	return out, nil
}

func scopeConditions(teamID, season string, filter analysis.MatrixFilter) []qb.Condition {
	conditions := []qb.Condition{
		qb.Eq("team_id", teamID),
		qb.Eq("season", season),
	}
	if filter.FromDate != "" {
		conditions = append(conditions, qb.Gte("game_date", filter.FromDate))
	}
	if filter.ToDate != "" {
		conditions = append(conditions, qb.Lte("game_date", filter.ToDate))
	}
	return conditions
}
