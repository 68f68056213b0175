package flight

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDoExecutesFunction(t *testing.T) {
	g := New()

	v, err := g.Do(context.Background(), "key", func() (any, error) {
		return "value", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "value" {
		t.Errorf("expected %q, got %v", "value", v)
	}
}

func TestDoDeduplicatesConcurrentCallers(t *testing.T) {
	g := New()

	var executions int32
	release := make(chan struct{})
	started := make(chan struct{})

	fn := func() (any, error) {
		atomic.AddInt32(&executions, 1)
		close(started)
		<-release
		return "shared", nil
	}

	const callers = 10
	results := make([]any, callers)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = g.Do(context.Background(), "key", fn)
	}()
	<-started

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = g.Do(context.Background(), "key", func() (any, error) {
				atomic.AddInt32(&executions, 1)
				return "unexpected", nil
			})
		}(i)
	}

	// Give the waiters time to join the pending call before releasing it.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&executions); n != 1 {
		t.Fatalf("expected exactly 1 execution, got %d", n)
	}
	for i, v := range results {
		if v != "shared" {
			t.Errorf("caller %d got %v, want %q", i, v, "shared")
		}
	}
}

func TestDoPropagatesErrorToAllWaiters(t *testing.T) {
	g := New()
	boom := errors.New("refresh failed")

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		g.Do(context.Background(), "key", func() (any, error) {
			close(started)
			<-release
			return nil, boom
		})
	}()
	<-started

	errs := make(chan error, 3)
	for i := 0; i < 3; i++ {
		go func() {
			_, err := g.Do(context.Background(), "key", func() (any, error) {
				return nil, nil
			})
			errs <- err
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)

	for i := 0; i < 3; i++ {
		if err := <-errs; !errors.Is(err, boom) {
			t.Errorf("waiter got %v, want %v", err, boom)
		}
	}
}

func TestKeyClearedBeforeDelivery(t *testing.T) {
	g := New()

	if _, err := g.Do(context.Background(), "key", func() (any, error) {
		return nil, nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if g.Pending("key") {
		t.Error("expected key to be cleared after settlement")
	}

	// The next call must start a fresh execution, not replay the old one.
	var ran bool
	if _, err := g.Do(context.Background(), "key", func() (any, error) {
		ran = true
		return nil, nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ran {
		t.Error("expected a fresh execution after settlement")
	}
}

func TestWaiterContextCancellation(t *testing.T) {
	g := New()

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		g.Do(context.Background(), "key", func() (any, error) {
			close(started)
			<-release
			return "late", nil
		})
	}()
	<-started
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Do(ctx, "key", func() (any, error) { return nil, nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
