package memory

import (
	"context"
	"sync"
	"time"

	"github.com/janhofer/linemates/internal/domain/analysis"
)

type StateRepository struct {
	mu     sync.RWMutex
	states map[string]analysis.State
}

func NewStateRepository() *StateRepository {
	return &StateRepository{states: make(map[string]analysis.State)}
}

func (r *StateRepository) Get(_ context.Context, teamID, season string) (analysis.State, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.states[stateKey(teamID, season)]
	return state, ok, nil
}

// Claim mirrors the conditional conflict update of the postgres repository:
// the write only lands when no live run owns the pair, and the winner is
// decided under the same lock that serializes racing triggers.
func (r *StateRepository) Claim(_ context.Context, state analysis.State, staleBefore time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := stateKey(state.TeamID, state.Season)
	if existing, ok := r.states[key]; ok {
		switch existing.Status {
		case analysis.StatusDone:
			return false, nil
		case analysis.StatusProcessing:
			if !existing.LastUpdatedAt.Before(staleBefore) {
				return false, nil
			}
		}
	}

	r.states[key] = state
	return true, nil
}

func (r *StateRepository) Upsert(_ context.Context, state analysis.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.states[stateKey(state.TeamID, state.Season)] = state
	return nil
}

func stateKey(teamID, season string) string {
	return teamID + "|" + season
}
