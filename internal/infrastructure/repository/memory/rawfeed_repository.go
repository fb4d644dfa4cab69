package memory

import (
	"context"
	"sync"

	"github.com/janhofer/linemates/internal/domain/rawfeed"
)

type RawFeedRepository struct {
	mu       sync.RWMutex
	payloads map[string]rawfeed.Payload
}

func NewRawFeedRepository() *RawFeedRepository {
	return &RawFeedRepository{payloads: make(map[string]rawfeed.Payload)}
}

func (r *RawFeedRepository) Upsert(_ context.Context, payload rawfeed.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.payloads[payload.Source+"|"+payload.Endpoint+"|"+payload.GameID] = payload
	return nil
}

func (r *RawFeedRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.payloads)
}
