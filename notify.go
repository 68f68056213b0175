package panggil

import (
	"fmt"
	"sync"
	"time"
)

// Notifier renders a user-facing message for a classified error. A nil
// notifier on the client is a no-op. Implementations are called at most once
// per coalescing key within the coalescing window.
type Notifier interface {
	Notify(kind Kind, message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(kind Kind, message string)

func (f NotifierFunc) Notify(kind Kind, message string) { f(kind, message) }

const defaultCoalesceWindow = 4 * time.Second

// coalescingNotifier suppresses repeats of the same "{kind}:{message}" key
// inside the window, so identical errors from concurrent calls surface as a
// single notification instead of stacking.
type coalescingNotifier struct {
	next   Notifier
	window time.Duration

	mu   sync.Mutex
	seen map[string]time.Time
}

func newCoalescingNotifier(next Notifier, window time.Duration) *coalescingNotifier {
	if window <= 0 {
		window = defaultCoalesceWindow
	}
	return &coalescingNotifier{
		next:   next,
		window: window,
		seen:   make(map[string]time.Time),
	}
}

func (n *coalescingNotifier) Notify(kind Kind, message string) {
	key := fmt.Sprintf("%s:%s", kind, message)
	now := time.Now()

	n.mu.Lock()
	if last, ok := n.seen[key]; ok && now.Sub(last) < n.window {
		n.mu.Unlock()
		return
	}
	n.seen[key] = now
	for k, at := range n.seen {
		if now.Sub(at) >= n.window {
			delete(n.seen, k)
		}
	}
	n.mu.Unlock()

	n.next.Notify(kind, message)
}

const defaultNavigateWindow = 2 * time.Second

// debouncer bounds a side effect to at most one firing per window. It backs
// the unauthorized-navigation path, where a single failed refresh can
// otherwise fan out into a burst of navigations from concurrently-failing
// calls.
type debouncer struct {
	window time.Duration

	mu   sync.Mutex
	last time.Time
}

func newDebouncer(window time.Duration) *debouncer {
	if window <= 0 {
		window = defaultNavigateWindow
	}
	return &debouncer{window: window}
}

// Fire runs fn unless the previous firing was inside the window.
func (d *debouncer) Fire(fn func()) {
	now := time.Now()

	d.mu.Lock()
	if now.Sub(d.last) < d.window {
		d.mu.Unlock()
		return
	}
	d.last = now
	d.mu.Unlock()

	fn()
}
