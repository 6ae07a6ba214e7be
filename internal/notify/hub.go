package notify

import (
	"log/slog"
	"sync"
)

// sendBufferSize of one is what makes bursts coalesce: while a subscriber is
// busy, at most one further signal is parked for it and the rest are dropped.
const sendBufferSize = 1

type subscriber struct {
	fn   func()
	send chan struct{}
}

// Hub fans out payload-less change signals to subscribers. Each subscriber
// runs its callback on its own goroutine, so a slow one never blocks
// Broadcast or the others.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subs:   make(map[*subscriber]struct{}),
		logger: logger,
	}
}

// Subscribe registers fn and returns a function that unregisters it.
// Calling the returned function more than once is safe.
func (h *Hub) Subscribe(fn func()) func() {
	s := &subscriber{
		fn:   fn,
		send: make(chan struct{}, sendBufferSize),
	}

	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	go s.run()

	return func() { h.unsubscribe(s) }
}

func (h *Hub) unsubscribe(s *subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.send)
	}
	h.mu.Unlock()
}

func (s *subscriber) run() {
	for range s.send {
		s.fn()
	}
}

// Broadcast signals every subscriber.
func (h *Hub) Broadcast() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := 0
	for s := range h.subs {
		select {
		case s.send <- struct{}{}:
		default:
			// Already has a signal pending; it will see this change too.
			dropped++
		}
	}
	if dropped > 0 && h.logger != nil {
		h.logger.Debug("coalesced change signal", "subscribers", dropped)
	}
}

// Count returns the number of subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
