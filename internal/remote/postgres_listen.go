package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sethvargo/go-retry"

	"github.com/dukerupert/shoplist/internal/model"
)

// notifyChannel matches the channel the table trigger publishes on.
const notifyChannel = "shopping_list_items"

type changePayload struct {
	Op     string `json:"op"`
	ListID string `json:"list_id"`
}

// relevant reports whether a notification payload may concern listID.
// Anything that cannot be read is treated as relevant.
func relevant(payload, listID string) bool {
	if payload == "" {
		return true
	}
	var p changePayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return true
	}
	return p.ListID == "" || sameList(p.ListID, listID)
}

// sameList compares list ids as UUIDs, so letter case does not matter.
func sameList(a, b string) bool {
	ua, errA := uuid.Parse(a)
	ub, errB := uuid.Parse(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return ua == ub
}

func (p *Postgres) listen(ctx context.Context) (*pgx.Conn, error) {
	pc, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listen connection: %w", err)
	}
	conn := pc.Hijack()
	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		conn.Close(context.Background())
		return nil, fmt.Errorf("listen %s: %w", notifyChannel, err)
	}
	return conn, nil
}

// Subscribe holds a dedicated connection in LISTEN mode and calls onChange
// for every notification about this list. When the connection drops it is
// re-established with backoff and onChange fires once, since notifications
// may have been missed in between. The first LISTEN must succeed.
func (p *Postgres) Subscribe(ctx context.Context, onChange func()) (func(), error) {
	conn, err := p.listen(ctx)
	if err != nil {
		return nil, model.NewRemoteError("subscribe", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.listenLoop(ctx, conn, onChange)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}, nil
}

func (p *Postgres) listenLoop(ctx context.Context, conn *pgx.Conn, onChange func()) {
	for {
		err := p.wait(ctx, conn, onChange)
		conn.Close(context.Background())
		if ctx.Err() != nil {
			return
		}
		p.logger.Warn("change listener lost connection", "error", err)

		err = retry.Do(ctx, p.newBackoff(), func(ctx context.Context) error {
			c, err := p.listen(ctx)
			if err != nil {
				p.logger.Debug("change listener reconnect failed", "error", err)
				return retry.RetryableError(err)
			}
			conn = c
			return nil
		})
		if err != nil {
			// Only cancellation ends an uncapped retry.
			return
		}
		p.logger.Info("change listener reconnected")
		onChange()
	}
}

func (p *Postgres) wait(ctx context.Context, conn *pgx.Conn, onChange func()) error {
	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			return fmt.Errorf("wait for notification: %w", err)
		}
		if relevant(n.Payload, p.listID) {
			onChange()
		}
	}
}
