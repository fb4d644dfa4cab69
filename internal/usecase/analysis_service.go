package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/janhofer/linemates/internal/domain/analysis"
	"github.com/janhofer/linemates/internal/domain/rawfeed"
	"github.com/janhofer/linemates/internal/domain/roster"
	"github.com/janhofer/linemates/internal/platform/dates"
	idgen "github.com/janhofer/linemates/internal/platform/id"
	"github.com/janhofer/linemates/internal/platform/logging"
)

const (
	eventTypeGoal        = "goal"
	eventTypePenaltyGoal = "penalty_goal"
	teamSideHome         = "home"
)

// UpstreamProvider is the sports-data client the analysis pipeline consumes.
type UpstreamProvider interface {
	GetTeamDetails(ctx context.Context, teamID string) (TeamDetails, error)
	GetTeamPlayers(ctx context.Context, teamID string) ([]roster.Player, error)
	GetTeamGames(ctx context.Context, teamID, season string) ([]UpstreamGame, error)
	// GetGameEvents also returns the verbatim provider payload for archival.
	GetGameEvents(ctx context.Context, gameID string) ([]UpstreamGameEvent, []byte, error)
}

type TeamDetails struct {
	Name string
}

type UpstreamGame struct {
	ID       string
	GameDate string
}

type UpstreamGameEvent struct {
	EventType string
	Player    string
	Assist    string
	TeamName  string
	TeamSide  string
}

// StatusView is the poll response for one team+season analysis.
type StatusView struct {
	Status         analysis.Status
	HasRoster      bool
	GamesTotal     int
	GamesProcessed int
	ErrorMessage   string
}

type AnalysisConfig struct {
	// StaleAfter lets a crashed run be retriggered: processing state whose
	// last update is older than this no longer blocks a new trigger.
	StaleAfter  time.Duration
	WorkerCount int
}

// AnalysisService drives the incremental goal-chemistry pipeline. It is the
// sole writer of analysis state, the processed-game ledger and goal events.
type AnalysisService struct {
	provider   UpstreamProvider
	stateRepo  analysis.StateRepository
	ledgerRepo analysis.LedgerRepository
	goalRepo   analysis.GoalEventRepository
	rawRepo    rawfeed.Repository
	idGen      idgen.Generator
	pool       *ants.Pool
	cfg        AnalysisConfig
	logger     *logging.Logger
	now        func() time.Time
}

func NewAnalysisService(
	provider UpstreamProvider,
	stateRepo analysis.StateRepository,
	ledgerRepo analysis.LedgerRepository,
	goalRepo analysis.GoalEventRepository,
	rawRepo rawfeed.Repository,
	generator idgen.Generator,
	cfg AnalysisConfig,
	logger *logging.Logger,
) (*AnalysisService, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if generator == nil {
		generator = idgen.NewRandomGenerator()
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 30 * time.Minute
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}

	pool, err := ants.NewPool(cfg.WorkerCount)
	if err != nil {
		return nil, fmt.Errorf("create analysis worker pool: %w", err)
	}

	return &AnalysisService{
		provider:   provider,
		stateRepo:  stateRepo,
		ledgerRepo: ledgerRepo,
		goalRepo:   goalRepo,
		rawRepo:    rawRepo,
		idGen:      generator,
		pool:       pool,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}, nil
}

func (s *AnalysisService) Close() {
	if s.pool != nil {
		s.pool.Release()
	}
}

func (s *AnalysisService) GetStatus(ctx context.Context, teamID, season string) (StatusView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalysisService.GetStatus")
	defer span.End()

	teamID, season, err := normalizeAnalysisKey(teamID, season)
	if err != nil {
		return StatusView{}, err
	}

	state, exists, err := s.stateRepo.Get(ctx, teamID, season)
	if err != nil {
		return StatusView{}, fmt.Errorf("load analysis state team=%s season=%s: %w", teamID, season, err)
	}
	if !exists {
		return StatusView{Status: analysis.StatusNotStarted}, nil
	}

	return statusView(state), nil
}

// TriggerAnalysis starts a background run for the team+season and returns the
// resulting status immediately. Done is sticky; an active run is a no-op.
func (s *AnalysisService) TriggerAnalysis(ctx context.Context, teamID, season string) (StatusView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalysisService.TriggerAnalysis")
	defer span.End()

	teamID, season, err := normalizeAnalysisKey(teamID, season)
	if err != nil {
		return StatusView{}, err
	}
	if s.provider == nil {
		return StatusView{}, fmt.Errorf("%w: upstream sports-data provider is not configured", ErrDependencyUnavailable)
	}

	state, exists, err := s.stateRepo.Get(ctx, teamID, season)
	if err != nil {
		return StatusView{}, fmt.Errorf("load analysis state team=%s season=%s: %w", teamID, season, err)
	}
	if exists {
		switch state.Status {
		case analysis.StatusDone:
			return statusView(state), nil
		case analysis.StatusProcessing:
			if !s.isStale(state) {
				return statusView(state), nil
			}
			s.logger.WarnContext(ctx, "retriggering stale analysis run",
				"team_id", teamID,
				"season", season,
				"last_updated_at", state.LastUpdatedAt,
			)
		}
	}

	runID, err := s.idGen.NewID()
	if err != nil {
		return StatusView{}, fmt.Errorf("generate run id: %w", err)
	}

	state.TeamID = teamID
	state.Season = season
	state.Status = analysis.StatusProcessing
	state.ErrorMessage = ""
	state.RunID = runID
	state.LastUpdatedAt = s.now().UTC()

	// The conditional claim, not the guard above, decides the winner: two
	// triggers racing past the Get both reach here, but only one claim lands
	// and only that caller submits a run.
	won, err := s.stateRepo.Claim(ctx, state, s.now().UTC().Add(-s.cfg.StaleAfter))
	if err != nil {
		return StatusView{}, fmt.Errorf("claim analysis run team=%s season=%s: %w", teamID, season, err)
	}
	if !won {
		current, exists, err := s.stateRepo.Get(ctx, teamID, season)
		if err != nil {
			return StatusView{}, fmt.Errorf("load analysis state team=%s season=%s: %w", teamID, season, err)
		}
		if !exists {
			return StatusView{Status: analysis.StatusNotStarted}, nil
		}
		return statusView(current), nil
	}

	if err := s.pool.Submit(func() {
		s.runAnalysis(teamID, season, runID)
	}); err != nil {
		s.failRun(context.Background(), teamID, season, runID, fmt.Errorf("submit analysis run: %w", err))
		return StatusView{}, fmt.Errorf("%w: analysis worker pool rejected run: %v", ErrDependencyUnavailable, err)
	}

	return statusView(state), nil
}

func (s *AnalysisService) isStale(state analysis.State) bool {
	return s.now().UTC().Sub(state.LastUpdatedAt) > s.cfg.StaleAfter
}

// runAnalysis executes one detached run. The trigger caller never waits; any
// failure that escapes the per-game loop lands in the persisted error state.
func (s *AnalysisService) runAnalysis(teamID, season, runID string) {
	ctx := context.Background()
	logger := s.logger.With("team_id", teamID, "season", season, "run_id", runID)

	defer func() {
		if rec := recover(); rec != nil {
			s.failRun(ctx, teamID, season, runID, fmt.Errorf("analysis run panicked: %v", rec))
		}
	}()

	if err := s.run(ctx, teamID, season, runID, logger); err != nil {
		logger.ErrorContext(ctx, "analysis run failed", "error", err)
		s.failRun(ctx, teamID, season, runID, err)
		return
	}

	logger.InfoContext(ctx, "analysis run finished")
}

func (s *AnalysisService) run(ctx context.Context, teamID, season, runID string, logger *logging.Logger) error {
	state := analysis.State{
		TeamID: teamID,
		Season: season,
		Status: analysis.StatusProcessing,
		RunID:  runID,
	}

	teamName := ""
	if details, err := s.provider.GetTeamDetails(ctx, teamID); err != nil {
		logger.WarnContext(ctx, "load team details failed, event team filter disabled", "error", err)
	} else {
		teamName = strings.TrimSpace(details.Name)
	}

	var lookup roster.Lookup
	players, err := s.provider.GetTeamPlayers(ctx, teamID)
	if err != nil {
		logger.WarnContext(ctx, "load roster failed, name resolution disabled", "error", err)
	} else if len(players) > 0 {
		lookup = roster.BuildLookup(players)
		state.HasRoster = true
	}
	if err := s.saveState(ctx, &state); err != nil {
		return err
	}

	games, err := s.provider.GetTeamGames(ctx, teamID, season)
	if err != nil {
		return fmt.Errorf("list games team=%s season=%s: %w", teamID, season, err)
	}
	played := playedGames(games, s.now())
	state.GamesTotal = len(played)
	if err := s.saveState(ctx, &state); err != nil {
		return err
	}

	processedIDs, err := s.ledgerRepo.ListGameIDs(ctx, teamID, season)
	if err != nil {
		return fmt.Errorf("list processed games team=%s season=%s: %w", teamID, season, err)
	}
	processed := make(map[string]struct{}, len(processedIDs))
	for _, id := range processedIDs {
		processed[id] = struct{}{}
	}

	toProcess := make([]playedGame, 0, len(played))
	for _, game := range played {
		if _, ok := processed[game.id]; ok {
			continue
		}
		toProcess = append(toProcess, game)
	}
	state.GamesProcessed = len(played) - len(toProcess)
	if err := s.saveState(ctx, &state); err != nil {
		return err
	}

	logger.InfoContext(ctx, "analysis run starting",
		"games_total", state.GamesTotal,
		"games_new", len(toProcess),
		"has_roster", state.HasRoster,
	)

	for _, game := range toProcess {
		s.processGame(ctx, game, teamID, season, teamName, lookup, logger)

		state.GamesProcessed++
		if err := s.saveState(ctx, &state); err != nil {
			return err
		}
	}

	state.Status = analysis.StatusDone
	return s.saveState(ctx, &state)
}

// processGame ingests a single game. Fetch and insert failures are logged but
// never abort the run, and the ledger row is written in every case so a
// permanently broken game cannot cause an infinite retry loop.
func (s *AnalysisService) processGame(
	ctx context.Context,
	game playedGame,
	teamID, season, teamName string,
	lookup roster.Lookup,
	logger *logging.Logger,
) {
	events, raw, err := s.provider.GetGameEvents(ctx, game.id)
	if err != nil {
		logger.WarnContext(ctx, "fetch game events failed, marking game processed anyway",
			"game_id", game.id,
			"error", err,
		)
	} else {
		s.archivePayload(ctx, game.id, teamID, raw, logger)

		goals := filterTeamGoals(events, teamName)
		goals = analysis.DedupGoals(goals)

		rows := make([]analysis.GoalEvent, 0, len(goals))
		for _, goal := range goals {
			rows = append(rows, buildGoalEvent(goal, game, teamID, season, lookup))
		}
		if len(rows) > 0 {
			if err := s.goalRepo.InsertMany(ctx, rows); err != nil {
				logger.ErrorContext(ctx, "insert goal events failed",
					"game_id", game.id,
					"events", len(rows),
					"error", err,
				)
			}
		}
	}

	ledgerRow := analysis.ProcessedGame{
		GameID:   game.id,
		TeamID:   teamID,
		Season:   season,
		GameDate: game.isoDate,
	}
	if err := s.ledgerRepo.Insert(ctx, ledgerRow); err != nil {
		logger.ErrorContext(ctx, "insert processed-game ledger row failed",
			"game_id", game.id,
			"error", err,
		)
	}
}

func (s *AnalysisService) archivePayload(ctx context.Context, gameID, teamID string, raw []byte, logger *logging.Logger) {
	if s.rawRepo == nil || len(raw) == 0 {
		return
	}

	payload := rawfeed.Payload{
		Source:      "puckdata",
		Endpoint:    "game-events",
		GameID:      gameID,
		TeamID:      teamID,
		PayloadJSON: string(raw),
		FetchedAt:   s.now().UTC(),
	}
	if err := s.rawRepo.Upsert(ctx, payload); err != nil {
		logger.WarnContext(ctx, "archive raw event feed failed", "game_id", gameID, "error", err)
	}
}

func (s *AnalysisService) saveState(ctx context.Context, state *analysis.State) error {
	state.LastUpdatedAt = s.now().UTC()
	if err := s.stateRepo.Upsert(ctx, *state); err != nil {
		return fmt.Errorf("persist analysis state team=%s season=%s: %w", state.TeamID, state.Season, err)
	}
	return nil
}

func (s *AnalysisService) failRun(ctx context.Context, teamID, season, runID string, runErr error) {
	state, exists, err := s.stateRepo.Get(ctx, teamID, season)
	if err != nil {
		s.logger.ErrorContext(ctx, "load state for failure report", "team_id", teamID, "season", season, "error", err)
	}
	if !exists {
		state = analysis.State{TeamID: teamID, Season: season}
	}

	state.Status = analysis.StatusError
	state.ErrorMessage = runErr.Error()
	state.RunID = runID
	state.LastUpdatedAt = s.now().UTC()
	if err := s.stateRepo.Upsert(ctx, state); err != nil {
		s.logger.ErrorContext(ctx, "persist error state failed", "team_id", teamID, "season", season, "error", err)
	}
}

type playedGame struct {
	id      string
	isoDate string
}

// playedGames keeps games whose normalized date is strictly before today.
// Unparseable dates count as not yet played.
func playedGames(games []UpstreamGame, now time.Time) []playedGame {
	out := make([]playedGame, 0, len(games))
	for _, game := range games {
		if strings.TrimSpace(game.ID) == "" {
			continue
		}
		iso, ok := dates.ToISO(game.GameDate)
		if !ok {
			continue
		}
		if !dates.BeforeDay(iso, now) {
			continue
		}
		out = append(out, playedGame{id: game.ID, isoDate: iso})
	}
	return out
}

// filterTeamGoals keeps goal-type events of the analyzed team. When the team
// name could not be loaded all goal events pass, which over-counts rather
// than silently dropping the team's own goals.
func filterTeamGoals(events []UpstreamGameEvent, teamName string) []analysis.RawGoal {
	out := make([]analysis.RawGoal, 0, len(events))
	for _, event := range events {
		switch strings.ToLower(strings.TrimSpace(event.EventType)) {
		case eventTypeGoal, eventTypePenaltyGoal:
		default:
			continue
		}
		if teamName != "" && !strings.EqualFold(strings.TrimSpace(event.TeamName), teamName) {
			continue
		}
		scorer := strings.TrimSpace(event.Player)
		if scorer == "" {
			continue
		}
		out = append(out, analysis.RawGoal{
			Scorer: scorer,
			Assist: strings.TrimSpace(event.Assist),
			IsHome: strings.EqualFold(strings.TrimSpace(event.TeamSide), teamSideHome),
		})
	}
	return out
}

func buildGoalEvent(goal analysis.RawGoal, game playedGame, teamID, season string, lookup roster.Lookup) analysis.GoalEvent {
	scorer := lookup.Resolve(goal.Scorer)
	row := analysis.GoalEvent{
		GameID:            game.id,
		TeamID:            teamID,
		Season:            season,
		GameDate:          game.isoDate,
		ScorerRawName:     goal.Scorer,
		ScorerDisplayName: scorer.DisplayName,
		ScorerPlayerID:    scorer.PlayerID,
		IsHome:            goal.IsHome,
	}

	if goal.Assist != "" {
		assist := lookup.Resolve(goal.Assist)
		assistRaw := goal.Assist
		row.AssistRawName = &assistRaw
		row.AssistDisplayName = &assist.DisplayName
		row.AssistPlayerID = assist.PlayerID
	}

	return row
}

func statusView(state analysis.State) StatusView {
	return StatusView{
		Status:         state.Status,
		HasRoster:      state.HasRoster,
		GamesTotal:     state.GamesTotal,
		GamesProcessed: state.GamesProcessed,
		ErrorMessage:   state.ErrorMessage,
	}
}

func normalizeAnalysisKey(teamID, season string) (string, string, error) {
	teamID = strings.TrimSpace(teamID)
	season = strings.TrimSpace(season)
	if teamID == "" {
		return "", "", fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}
	if season == "" {
		return "", "", fmt.Errorf("%w: season is required", ErrInvalidInput)
	}
	return teamID, season, nil
}
