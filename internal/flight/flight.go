// Package flight coalesces concurrent calls that share a key: one caller
// owns the execution, every other caller arriving while it is pending waits
// for the same settlement.
package flight

import (
	"context"
	"sync"
)

// Group tracks pending calls by key. The zero value is not usable; construct
// with New.
type Group struct {
	mu    sync.Mutex
	calls map[string]*call
}

// call is one pending or settled execution shared between callers.
type call struct {
	done chan struct{}
	val  any
	err  error
}

// New returns an empty Group.
func New() *Group {
	return &Group{calls: make(map[string]*call)}
}

// Do executes fn under the key, or joins a pending execution of the same
// key. The key is cleared before any waiter observes the settlement, so a
// caller arriving after settlement always starts a fresh execution. A
// waiter's ctx cancels only its own wait, never the owned execution.
func (g *Group) Do(ctx context.Context, key string, fn func() (any, error)) (any, error) {
	g.mu.Lock()
	if c, ok := g.calls[key]; ok {
		g.mu.Unlock()
		select {
		case <-c.done:
			return c.val, c.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	c := &call{done: make(chan struct{})}
	g.calls[key] = c
	g.mu.Unlock()

	c.val, c.err = fn()

	g.mu.Lock()
	if g.calls[key] == c {
		delete(g.calls, key)
	}
	g.mu.Unlock()
	close(c.done)

	return c.val, c.err
}

// Pending reports whether an execution for the key is currently in flight.
func (g *Group) Pending(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.calls[key]
	return ok
}
