package resilience

import "sync"

// SingleFlight deduplicates concurrent calls for the same key. The third
// return value reports whether the caller shared another call's result.
type SingleFlight struct {
	mu    sync.Mutex
	calls map[string]*inflightCall
}

type inflightCall struct {
	done sync.WaitGroup
	val  any
	err  error
}

func (g *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*inflightCall)
	}
	if existing, ok := g.calls[key]; ok {
		g.mu.Unlock()
		existing.done.Wait()
		return existing.val, existing.err, true
	}

	c := &inflightCall{}
	c.done.Add(1)
	g.calls[key] = c
	g.mu.Unlock()

	// Deferred so waiters are released and the slot is freed even when fn
	// panics; the panic still propagates to the leader.
	defer func() {
		c.done.Done()
		g.mu.Lock()
		delete(g.calls, key)
		g.mu.Unlock()
	}()

	c.val, c.err = fn()
	return c.val, c.err, false
}
