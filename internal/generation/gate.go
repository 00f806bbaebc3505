package generation

import (
	"context"
	"sync"

	"inova/internal/domain"
	"inova/internal/metrics"
)

// Gate keeps at most one generation in flight per session. Acquire returns a
// context that is cancelled with cause domain.ErrSuperseded when a newer call
// for the same session arrives. The release func must always be called.
type Gate interface {
	Acquire(ctx context.Context, sessionID string) (context.Context, func(), error)
}

type gateEntry struct {
	cancel context.CancelCauseFunc
}

// MemoryGate is a process-local Gate.
type MemoryGate struct {
	mu       sync.Mutex
	inflight map[string]*gateEntry
}

func NewMemoryGate() *MemoryGate {
	return &MemoryGate{inflight: make(map[string]*gateEntry)}
}

func (g *MemoryGate) Acquire(ctx context.Context, sessionID string) (context.Context, func(), error) {
	if sessionID == "" {
		return ctx, func() {}, nil
	}
	gctx, cancel := context.WithCancelCause(ctx)
	entry := &gateEntry{cancel: cancel}

	g.mu.Lock()
	if prev, ok := g.inflight[sessionID]; ok {
		prev.cancel(domain.ErrSuperseded)
		metrics.IncSuperseded()
	}
	g.inflight[sessionID] = entry
	g.mu.Unlock()

	release := func() {
		g.mu.Lock()
		if g.inflight[sessionID] == entry {
			delete(g.inflight, sessionID)
		}
		g.mu.Unlock()
		cancel(nil)
	}
	return gctx, release, nil
}

// InFlight reports how many sessions currently hold the gate.
func (g *MemoryGate) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inflight)
}

var _ Gate = (*MemoryGate)(nil)
