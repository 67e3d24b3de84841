package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/journalfeed/internal/domain"
)

// DefaultChannel is the NOTIFY channel written by the notify_feed_change trigger.
const DefaultChannel = "feed_changes"

// recordGetter fetches a row announced without its body.
type recordGetter interface {
	Get(ctx context.Context, feed domain.Feed, id string) (domain.Raw, error)
}

// ChangeHandler receives each decoded change in arrival order.
type ChangeHandler func(ctx context.Context, ch domain.Change)

// Listener LISTENs on the realtime channel with a dedicated connection and
// reconnects with exponential backoff when the connection drops.
type Listener struct {
	pool       *pgxpool.Pool
	channel    string
	records    recordGetter
	log        *slog.Logger
	minBackoff time.Duration
	maxBackoff time.Duration
}

// NewListener creates a Listener. An empty channel means DefaultChannel.
func NewListener(pool *pgxpool.Pool, channel string, records recordGetter, log *slog.Logger) *Listener {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Listener{
		pool:       pool,
		channel:    channel,
		records:    records,
		log:        log.With("adapter", "pg_listener", "channel", channel),
		minBackoff: time.Second,
		maxBackoff: 30 * time.Second,
	}
}

// Run blocks until ctx is cancelled, delivering changes to handle.
func (l *Listener) Run(ctx context.Context, handle ChangeHandler) error {
	backoff := l.minBackoff
	for {
		err := l.listen(ctx, handle, func() { backoff = l.minBackoff })
		if ctx.Err() != nil {
			return nil
		}
		l.log.WarnContext(ctx, "realtime connection lost", slog.String("error", err.Error()), slog.Duration("retry_in", backoff))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, l.maxBackoff)
	}
}

func (l *Listener) listen(ctx context.Context, handle ChangeHandler, connected func()) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return MapError(err, "listener", l.channel)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return MapError(err, "listener", l.channel)
	}
	connected()
	l.log.InfoContext(ctx, "listening for feed changes")

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}

		ch, truncated, err := ParseNotification(n.Payload)
		if err != nil {
			l.log.WarnContext(ctx, "skip malformed notification", slog.String("error", err.Error()))
			continue
		}
		if truncated && ch.Type != domain.ChangeDelete {
			rec, err := l.records.Get(ctx, ch.Feed, ch.ID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					continue
				}
				l.log.WarnContext(ctx, "fetch announced record", slog.String("id", ch.ID), slog.String("error", err.Error()))
				continue
			}
			ch.Record = rec
		}
		handle(ctx, ch)
	}
}

type notification struct {
	Table     string     `json:"table"`
	Type      string     `json:"type"`
	Record    domain.Raw `json:"record"`
	OldRecord domain.Raw `json:"old_record"`
	Truncated bool       `json:"truncated"`
}

// ParseNotification decodes a trigger payload. Numbers are kept as
// json.Number so bigint ids survive intact.
func ParseNotification(payload string) (domain.Change, bool, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.UseNumber()

	var n notification
	if err := dec.Decode(&n); err != nil {
		return domain.Change{}, false, fmt.Errorf("decode notification: %w", err)
	}

	feed, ok := domain.FeedFromTable(n.Table)
	if !ok {
		return domain.Change{}, false, fmt.Errorf("unknown table %q", n.Table)
	}
	typ := domain.ChangeType(n.Type)
	if !typ.IsValid() {
		return domain.Change{}, false, fmt.Errorf("unknown change type %q", n.Type)
	}

	src := n.Record
	if typ == domain.ChangeDelete {
		src = n.OldRecord
	}
	id := ""
	if src != nil {
		switch v := src["id"].(type) {
		case string:
			id = v
		case json.Number:
			id = v.String()
		}
	}
	if id == "" {
		return domain.Change{}, false, fmt.Errorf("%s %s: %w", n.Table, n.Type, domain.ErrMissingIdentifier)
	}

	return domain.Change{Feed: feed, Type: typ, Record: n.Record, ID: id}, n.Truncated, nil
}
