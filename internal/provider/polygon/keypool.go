package polygon

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// apiKey is one credential with its own request budget.
type apiKey struct {
	key      string
	limiter  *rate.Limiter
	requests int64
	lastUsed time.Time
}

func (k *apiKey) prefix() string {
	if len(k.key) > 8 {
		return k.key[:8] + "..."
	}
	return k.key
}

// keyPool hands out API keys round-robin. Each key is limited to
// requestsPerMinute; Acquire blocks until the chosen key has budget.
type keyPool struct {
	mu    sync.Mutex
	keys  []*apiKey
	index int
}

func newKeyPool(keys []string, requestsPerMinute int) (*keyPool, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("at least one API key is required")
	}
	var limit rate.Limit = rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(requestsPerMinute))
	}
	p := &keyPool{keys: make([]*apiKey, len(keys))}
	for i, k := range keys {
		p.keys[i] = &apiKey{key: k, limiter: rate.NewLimiter(limit, 1)}
	}
	return p, nil
}

// Acquire picks the next key and waits for its limiter.
func (p *keyPool) Acquire(ctx context.Context) (*apiKey, error) {
	p.mu.Lock()
	k := p.keys[p.index]
	p.index = (p.index + 1) % len(p.keys)
	p.mu.Unlock()

	if err := k.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait (key=%s): %w", k.prefix(), err)
	}

	p.mu.Lock()
	k.requests++
	k.lastUsed = time.Now()
	p.mu.Unlock()
	return k, nil
}

// Stats returns per-key usage for logging.
func (p *keyPool) Stats() map[string]int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]int64, len(p.keys))
	for _, k := range p.keys {
		out[k.prefix()] = k.requests
	}
	return out
}

// First returns the first configured key; reference-data calls use it.
func (p *keyPool) First() string { return p.keys[0].key }
