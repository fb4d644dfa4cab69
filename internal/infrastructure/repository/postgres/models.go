package postgres

import (
	"database/sql"
	"time"
)

type analysisStateTableModel struct {
	TeamID         string    `db:"team_id"`
	Season         string    `db:"season"`
	Status         string    `db:"status"`
	HasRoster      bool      `db:"has_roster"`
	GamesTotal     int       `db:"games_total"`
	GamesProcessed int       `db:"games_processed"`
	ErrorMessage   *string   `db:"error_message"`
	RunID          *string   `db:"run_id"`
	LastUpdatedAt  time.Time `db:"last_updated_at"`
}

type processedGameInsertModel struct {
	GameID   string `db:"game_id"`
	TeamID   string `db:"team_id"`
	Season   string `db:"season"`
	GameDate string `db:"game_date"`
}

type goalEventInsertModel struct {
	GameID            string  `db:"game_id"`
	TeamID            string  `db:"team_id"`
	Season            string  `db:"season"`
	GameDate          string  `db:"game_date"`
	ScorerRawName     string  `db:"scorer_raw_name"`
	ScorerDisplayName string  `db:"scorer_display_name"`
	ScorerPlayerID    *string `db:"scorer_player_id"`
	AssistRawName     *string `db:"assist_raw_name"`
	AssistDisplayName *string `db:"assist_display_name"`
	AssistPlayerID    *string `db:"assist_player_id"`
	IsHome            bool    `db:"is_home"`
}

type comboAggregateModel struct {
	AssistRawName     string         `db:"assist_raw_name"`
	AssistDisplayName sql.NullString `db:"assist_display_name"`
	AssistPlayerID    sql.NullString `db:"assist_player_id"`
	ScorerRawName     string         `db:"scorer_raw_name"`
	ScorerDisplayName sql.NullString `db:"scorer_display_name"`
	ScorerPlayerID    sql.NullString `db:"scorer_player_id"`
	Total             int            `db:"total"`
	HomeGoals         int            `db:"home_goals"`
	AwayGoals         int            `db:"away_goals"`
}

type soloAggregateModel struct {
	ScorerRawName     string         `db:"scorer_raw_name"`
	ScorerDisplayName sql.NullString `db:"scorer_display_name"`
	ScorerPlayerID    sql.NullString `db:"scorer_player_id"`
	Total             int            `db:"total"`
	HomeGoals         int            `db:"home_goals"`
	AwayGoals         int            `db:"away_goals"`
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func nullStringPtr(value sql.NullString) *string {
	if !value.Valid || value.String == "" {
		return nil
	}
	out := value.String
	return &out
}
