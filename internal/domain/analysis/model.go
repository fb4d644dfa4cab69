package analysis

import "time"

type Status string

const (
	// StatusNotStarted is synthetic: it means no state row exists yet.
	StatusNotStarted Status = "not_started"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusError      Status = "error"
)

// State is the persisted progress record of one team+season analysis run.
type State struct {
	TeamID         string
	Season         string
	Status         Status
	HasRoster      bool
	GamesTotal     int
	GamesProcessed int
	ErrorMessage   string
	RunID          string
	LastUpdatedAt  time.Time
}

// ProcessedGame marks a game as ingested for a team. The row is written even
// when the event fetch failed, so a permanently broken game can never stall
// the pipeline.
type ProcessedGame struct {
	GameID   string
	TeamID   string
	Season   string
	GameDate string
}

// GoalEvent is one accepted goal. Rows are append-only; the processed-game
// ledger guarantees a game is never ingested twice.
type GoalEvent struct {
	GameID            string
	TeamID            string
	Season            string
	GameDate          string
	ScorerRawName     string
	ScorerDisplayName string
	ScorerPlayerID    *string
	AssistRawName     *string
	AssistDisplayName *string
	AssistPlayerID    *string
	IsHome            bool
}

// RawGoal is a goal event as emitted by the feed, before dedup and name
// resolution. An empty Assist means the feed carried no assist.
type RawGoal struct {
	Scorer string
	Assist string
	IsHome bool
}

// ComboRow is one scorer/assister pairing with home/away split counts.
type ComboRow struct {
	ScorerRawName     string
	ScorerDisplayName string
	ScorerPlayerID    *string
	AssistRawName     string
	AssistDisplayName string
	AssistPlayerID    *string
	Total             int
	HomeGoals         int
	AwayGoals         int
}

// SoloRow is one scorer's unassisted goal counts.
type SoloRow struct {
	ScorerRawName     string
	ScorerDisplayName string
	ScorerPlayerID    *string
	Total             int
	HomeGoals         int
	AwayGoals         int
}

// Matrix is the aggregated chemistry result for a team+season.
type Matrix struct {
	Combos []ComboRow
	Solos  []SoloRow
}

// MatrixFilter is an optional inclusive ISO date range.
type MatrixFilter struct {
	FromDate string
	ToDate   string
}
