package querybuilder

import "testing"

func TestSelect_WithGroupByAndRange(t *testing.T) {
	t.Parallel()

	query, args, err := Select("assist_raw_name", "scorer_raw_name", "COUNT(*) AS total").
		From("goal_events").
		Where(
			Eq("team_id", "t1"),
			Eq("season", "2024"),
			Gte("game_date", "2024-01-01"),
			Lte("game_date", "2024-12-31"),
			IsNotNull("assist_raw_name"),
		).
		GroupBy("assist_raw_name", "scorer_raw_name").
		OrderBy("total DESC").
		ToSQL()
	if err != nil {
		t.Fatalf("build select: %v", err)
	}

	want := "SELECT assist_raw_name, scorer_raw_name, COUNT(*) AS total FROM goal_events" +
		" WHERE team_id = $1 AND season = $2 AND game_date >= $3 AND game_date <= $4 AND assist_raw_name IS NOT NULL" +
		" GROUP BY assist_raw_name, scorer_raw_name ORDER BY total DESC"
	if query != want {
		t.Fatalf("unexpected query:\ngot:  %s\nwant: %s", query, want)
	}
	if len(args) != 4 {
		t.Fatalf("expected 4 args, got %d", len(args))
	}
}

func TestInsertModel_UsesDBTags(t *testing.T) {
	t.Parallel()

	model := struct {
		GameID string `db:"game_id"`
		TeamID string `db:"team_id"`
		Skip   string `db:"-"`
	}{GameID: "g1", TeamID: "t1", Skip: "x"}

	query, args, err := InsertModel("processed_games", model, "ON CONFLICT (game_id, team_id) DO NOTHING")
	if err != nil {
		t.Fatalf("insert model: %v", err)
	}

	want := "INSERT INTO processed_games (game_id, team_id) VALUES ($1, $2) ON CONFLICT (game_id, team_id) DO NOTHING"
	if query != want {
		t.Fatalf("unexpected query:\ngot:  %s\nwant: %s", query, want)
	}
	if len(args) != 2 || args[0] != "g1" || args[1] != "t1" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestInsertModel_SuffixArgsContinueNumbering(t *testing.T) {
	t.Parallel()

	model := struct {
		TeamID string `db:"team_id"`
		Season string `db:"season"`
		Status string `db:"status"`
	}{TeamID: "t1", Season: "2024", Status: "processing"}

	query, args, err := InsertModel("analysis_states", model,
		`ON CONFLICT (team_id, season) DO UPDATE SET status = EXCLUDED.status
WHERE analysis_states.status = 'error' OR analysis_states.last_updated_at < ?`,
		"2025-05-01")
	if err != nil {
		t.Fatalf("insert model: %v", err)
	}

	want := "INSERT INTO analysis_states (team_id, season, status) VALUES ($1, $2, $3) " +
		"ON CONFLICT (team_id, season) DO UPDATE SET status = EXCLUDED.status\n" +
		"WHERE analysis_states.status = 'error' OR analysis_states.last_updated_at < $4"
	if query != want {
		t.Fatalf("unexpected query:\ngot:  %s\nwant: %s", query, want)
	}
	if len(args) != 4 || args[3] != "2025-05-01" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestUpdate_MixesValuesAndExpressions(t *testing.T) {
	t.Parallel()

	query, args, err := Update("analysis_states").
		Set("games_processed", 3).
		SetExpr("last_updated_at", "NOW()").
		Where(Eq("team_id", "t1"), Eq("season", "2024")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update: %v", err)
	}

	want := "UPDATE analysis_states SET games_processed = $1, last_updated_at = NOW() WHERE team_id = $2 AND season = $3"
	if query != want {
		t.Fatalf("unexpected query:\ngot:  %s\nwant: %s", query, want)
	}
	if len(args) != 3 {
		t.Fatalf("expected 3 args, got %d", len(args))
	}
}

func TestIn_EmptyValuesNeverMatch(t *testing.T) {
	t.Parallel()

	query, args, err := Select("game_id").
		From("processed_games").
		Where(In("game_id", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select: %v", err)
	}
	if query != "SELECT game_id FROM processed_games WHERE 1=0" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 0 {
		t.Fatalf("expected no args, got %v", args)
	}
}
