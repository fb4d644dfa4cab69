package memory

import (
	"context"
	"sync"

	"github.com/janhofer/linemates/internal/domain/analysis"
)

type LedgerRepository struct {
	mu    sync.RWMutex
	games map[string][]analysis.ProcessedGame
	seen  map[string]struct{}
}

func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{
		games: make(map[string][]analysis.ProcessedGame),
		seen:  make(map[string]struct{}),
	}
}

func (r *LedgerRepository) ListGameIDs(_ context.Context, teamID, season string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.games[stateKey(teamID, season)]
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.GameID)
	}
	return out, nil
}

func (r *LedgerRepository) Insert(_ context.Context, game analysis.ProcessedGame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dedupKey := game.GameID + "|" + game.TeamID
	if _, ok := r.seen[dedupKey]; ok {
		return nil
	}
	r.seen[dedupKey] = struct{}{}

	key := stateKey(game.TeamID, game.Season)
	r.games[key] = append(r.games[key], game)
	return nil
}
