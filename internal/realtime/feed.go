// Package realtime is a client for a websocket change feed. The server sends
// one JSON message per row change; the client only looks at which list the
// change belongs to.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	ws "github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

const pingInterval = 30 * time.Second

// Message is the part of a change event the client reads.
type Message struct {
	Op     string `json:"op,omitempty"`
	ListID string `json:"list_id,omitempty"`
}

// Feed subscribes to change events for one list.
type Feed struct {
	url        string
	listID     string
	logger     *slog.Logger
	newBackoff func() retry.Backoff
}

func NewFeed(url, listID string, logger *slog.Logger) *Feed {
	return &Feed{
		url:    url,
		listID: listID,
		logger: logger,
		newBackoff: func() retry.Backoff {
			return retry.WithCappedDuration(30*time.Second, retry.NewExponential(500*time.Millisecond))
		},
	}
}

// relevant reports whether data may concern the feed's list. Messages that
// do not parse, or carry no list id, count as relevant.
func (f *Feed) relevant(data []byte) bool {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return true
	}
	if m.ListID == "" {
		return true
	}
	got, errGot := uuid.Parse(m.ListID)
	want, errWant := uuid.Parse(f.listID)
	if errGot != nil || errWant != nil {
		return m.ListID == f.listID
	}
	return got == want
}

func (f *Feed) dial(ctx context.Context) (*ws.Conn, error) {
	conn, _, err := ws.Dial(ctx, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", f.url, err)
	}
	return conn, nil
}

// Subscribe connects to the feed and calls onChange for each relevant
// message. A dropped connection is redialled with backoff, after which
// onChange fires once for whatever was missed. The first dial must succeed.
func (f *Feed) Subscribe(ctx context.Context, onChange func()) (func(), error) {
	conn, err := f.dial(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		f.run(ctx, conn, onChange)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}, nil
}

func (f *Feed) run(ctx context.Context, conn *ws.Conn, onChange func()) {
	for {
		err := f.read(ctx, conn, onChange)
		conn.Close(ws.StatusNormalClosure, "")
		if ctx.Err() != nil {
			return
		}
		f.logger.Warn("change feed disconnected", "error", err)

		err = retry.Do(ctx, f.newBackoff(), func(ctx context.Context) error {
			c, err := f.dial(ctx)
			if err != nil {
				f.logger.Debug("change feed redial failed", "error", err)
				return retry.RetryableError(err)
			}
			conn = c
			return nil
		})
		if err != nil {
			return
		}
		f.logger.Info("change feed reconnected")
		onChange()
	}
}

// read runs until the connection fails. Pings keep idle connections from
// being dropped by proxies.
func (f *Feed) read(ctx context.Context, conn *ws.Conn, onChange func()) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.Ping(ctx); err != nil {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if f.relevant(data) {
			onChange()
		}
	}
}
