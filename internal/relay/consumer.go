package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/heartmarshall/hearme-backend/internal/adapter/kafka"
	"github.com/heartmarshall/hearme-backend/internal/domain"
)

// EventHandler reacts to one matching event. It must be idempotent: the
// consumer delivers at least once.
type EventHandler interface {
	HandleEvent(ctx context.Context, e domain.MatchingEvent) error
}

// Dispatcher decodes broker messages and hands them to an EventHandler,
// retrying transient failures with exponential backoff.
type Dispatcher struct {
	handler    EventHandler
	log        *slog.Logger
	maxRetries uint64
	newBackOff func() backoff.BackOff
}

// NewDispatcher creates a dispatcher for h.
func NewDispatcher(h EventHandler, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		handler:    h,
		log:        log.With("component", "event_dispatcher"),
		maxRetries: 5,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxInterval = 5 * time.Second
			return b
		},
	}
}

// Handle is a kafka.HandlerFunc. Undecodable messages are logged and
// skipped. A handler that keeps failing returns its last error, which stops
// the consumer before the offset is committed.
func (d *Dispatcher) Handle(ctx context.Context, msg kafka.Message) error {
	var e domain.MatchingEvent
	if err := json.Unmarshal(msg.Value, &e); err != nil {
		d.log.ErrorContext(ctx, "skip undecodable event",
			slog.String("event_id", string(msg.Header(kafka.HeaderEventID))),
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if !e.EventType.IsValid() || e.AggregateID <= 0 {
		d.log.WarnContext(ctx, "skip malformed event",
			slog.String("event_id", e.EventID.String()),
			slog.String("event_type", string(e.EventType)),
		)
		return nil
	}

	attempt := 0
	op := func() error {
		attempt++
		err := d.handler.HandleEvent(ctx, e)
		if err != nil && attempt <= int(d.maxRetries) {
			d.log.WarnContext(ctx, "event handler failed",
				slog.String("event_id", e.EventID.String()),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()),
			)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(d.newBackOff(), d.maxRetries), ctx)
	return backoff.Retry(op, policy)
}
