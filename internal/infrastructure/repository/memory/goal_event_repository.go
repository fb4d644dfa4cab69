package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/janhofer/linemates/internal/domain/analysis"
)

type GoalEventRepository struct {
	mu     sync.RWMutex
	events []analysis.GoalEvent
}

func NewGoalEventRepository() *GoalEventRepository {
	return &GoalEventRepository{}
}

func (r *GoalEventRepository) InsertMany(_ context.Context, events []analysis.GoalEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, events...)
	return nil
}

func (r *GoalEventRepository) All() []analysis.GoalEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]analysis.GoalEvent(nil), r.events...)
}

func (r *GoalEventRepository) AggregateCombos(_ context.Context, teamID, season string, filter analysis.MatrixFilter) ([]analysis.ComboRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	grouped := make(map[string]*analysis.ComboRow)
	order := make([]string, 0)
	for _, event := range r.events {
		if !matchesScope(event, teamID, season, filter) || event.AssistRawName == nil {
			continue
		}

		key := *event.AssistRawName + "|" + event.ScorerRawName
		row, ok := grouped[key]
		if !ok {
			row = &analysis.ComboRow{
				ScorerRawName:     event.ScorerRawName,
				ScorerDisplayName: event.ScorerDisplayName,
				ScorerPlayerID:    event.ScorerPlayerID,
				AssistRawName:     *event.AssistRawName,
			}
			if event.AssistDisplayName != nil {
				row.AssistDisplayName = *event.AssistDisplayName
			}
			row.AssistPlayerID = event.AssistPlayerID
			grouped[key] = row
			order = append(order, key)
		}
		countGoal(&row.Total, &row.HomeGoals, &row.AwayGoals, event.IsHome)
	}

	out := make([]analysis.ComboRow, 0, len(grouped))
	for _, key := range order {
		out = append(out, *grouped[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		if out[i].AssistRawName != out[j].AssistRawName {
			return out[i].AssistRawName < out[j].AssistRawName
		}
		return out[i].ScorerRawName < out[j].ScorerRawName
	})
	return out, nil
}

func (r *GoalEventRepository) AggregateSolos(_ context.Context, teamID, season string, filter analysis.MatrixFilter) ([]analysis.SoloRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	grouped := make(map[string]*analysis.SoloRow)
	order := make([]string, 0)
	for _, event := range r.events {
		if !matchesScope(event, teamID, season, filter) || event.AssistRawName != nil {
			continue
		}

		row, ok := grouped[event.ScorerRawName]
		if !ok {
			row = &analysis.SoloRow{
				ScorerRawName:     event.ScorerRawName,
				ScorerDisplayName: event.ScorerDisplayName,
				ScorerPlayerID:    event.ScorerPlayerID,
			}
			grouped[event.ScorerRawName] = row
			order = append(order, event.ScorerRawName)
		}
		countGoal(&row.Total, &row.HomeGoals, &row.AwayGoals, event.IsHome)
	}

	out := make([]analysis.SoloRow, 0, len(grouped))
	for _, key := range order {
		out = append(out, *grouped[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].ScorerRawName < out[j].ScorerRawName
	})
	return out, nil
}

func matchesScope(event analysis.GoalEvent, teamID, season string, filter analysis.MatrixFilter) bool {
	if event.TeamID != teamID || event.Season != season {
		return false
	}
	if filter.FromDate != "" && event.GameDate < filter.FromDate {
		return false
	}
	if filter.ToDate != "" && event.GameDate > filter.ToDate {
		return false
	}
	return true
}

func countGoal(total, home, away *int, isHome bool) {
	*total++
	if isHome {
		*home++
		return
	}
	*away++
}
