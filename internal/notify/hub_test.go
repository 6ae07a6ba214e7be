package notify

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timeout waiting for condition")
}

func TestSubscribeUnsubscribe(t *testing.T) {
	hub := NewHub(slog.Default())

	cancel1 := hub.Subscribe(func() {})
	cancel2 := hub.Subscribe(func() {})

	if got := hub.Count(); got != 2 {
		t.Fatalf("expected 2 subscribers, got %d", got)
	}

	cancel1()
	if got := hub.Count(); got != 1 {
		t.Fatalf("expected 1 subscriber after cancel, got %d", got)
	}

	cancel2()
	if got := hub.Count(); got != 0 {
		t.Fatalf("expected 0 subscribers, got %d", got)
	}
}

func TestDoubleUnsubscribe(t *testing.T) {
	hub := NewHub(slog.Default())
	cancel := hub.Subscribe(func() {})
	cancel()
	// Should not panic
	cancel()

	if got := hub.Count(); got != 0 {
		t.Fatalf("expected 0 subscribers, got %d", got)
	}
}

func TestBroadcastReachesAll(t *testing.T) {
	hub := NewHub(slog.Default())

	var a, b atomic.Int32
	defer hub.Subscribe(func() { a.Add(1) })()
	defer hub.Subscribe(func() { b.Add(1) })()

	hub.Broadcast()

	waitFor(t, func() bool { return a.Load() == 1 && b.Load() == 1 })
}

func TestBroadcastEmptyHub(t *testing.T) {
	hub := NewHub(slog.Default())
	// Should not panic
	hub.Broadcast()
}

func TestBroadcastCoalescesWhileBusy(t *testing.T) {
	hub := NewHub(slog.Default())

	release := make(chan struct{})
	started := make(chan struct{}, 10)
	var calls atomic.Int32
	defer hub.Subscribe(func() {
		calls.Add(1)
		started <- struct{}{}
		<-release
	})()

	hub.Broadcast()
	<-started

	// Subscriber is blocked; these collapse into one pending signal.
	for i := 0; i < 10; i++ {
		hub.Broadcast()
	}
	close(release)

	waitFor(t, func() bool { return calls.Load() == 2 })
	time.Sleep(20 * time.Millisecond)
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 callback runs, got %d", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cancel := hub.Subscribe(func() {})
			hub.Broadcast()
			cancel()
		}()
	}

	wg.Wait()

	if got := hub.Count(); got != 0 {
		t.Errorf("expected 0 subscribers after concurrent test, got %d", got)
	}
}
