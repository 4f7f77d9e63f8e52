// Package relay publishes matching events to the broker. A send that fails,
// times out or is refused by the circuit breaker diverts the event to a
// bounded backup queue that a scheduled drain empties in FIFO order. The
// caller never sees a delivery failure.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/heartmarshall/hearme-backend/internal/adapter/kafka"
	"github.com/heartmarshall/hearme-backend/internal/config"
)

// Sender delivers one message to the broker.
type Sender interface {
	Send(ctx context.Context, topic, key string, payload []byte, headers ...kafka.Header) error
}

// Message is one event addressed to a topic partition by key.
type Message struct {
	Topic      string
	Key        string
	Payload    []byte
	EventID    string
	EnqueuedAt time.Time
}

// NewMessage encodes v as the JSON payload of a message.
func NewMessage(topic, key, eventID string, v any) (Message, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return Message{}, fmt.Errorf("relay: encode %s event %s: %w", topic, eventID, err)
	}
	return Message{Topic: topic, Key: key, Payload: payload, EventID: eventID}, nil
}

// Stats is a point-in-time view of the relay.
type Stats struct {
	BreakerState  string `json:"breakerState"`
	QueueDepth    int    `json:"queueDepth"`
	QueueCapacity int    `json:"queueCapacity"`
	Dropped       uint64 `json:"dropped"`
}

// Relay publishes messages through a breaker-guarded sender and a backup
// queue.
type Relay struct {
	sender  Sender
	breaker *Breaker
	queue   *Queue
	metrics *Metrics
	log     *slog.Logger

	sendTimeout   time.Duration
	drainInterval time.Duration
	drainBatch    int
	now           func() time.Time

	// Publishes hold it shared, drains exclusively, so no direct send runs
	// while buffered events are being flushed. Publish never waits for it.
	sendMu sync.RWMutex
}

// New creates a relay. metrics may be nil.
func New(sender Sender, cfg config.RelayConfig, metrics *Metrics, log *slog.Logger) (*Relay, error) {
	policy, err := ParseDropPolicy(cfg.DropPolicy)
	if err != nil {
		return nil, err
	}

	r := &Relay{
		sender: sender,
		breaker: NewBreaker(BreakerConfig{
			FailureRateThreshold: cfg.FailureRateThreshold,
			MinRequests:          cfg.MinRequests,
			Window:               cfg.Window,
			OpenTimeout:          cfg.OpenTimeout,
			HalfOpenMaxRequests:  cfg.HalfOpenMaxRequests,
		}),
		queue:         NewQueue(cfg.BackupQueueSize, policy),
		metrics:       metrics,
		log:           log.With("component", "relay"),
		sendTimeout:   cfg.SendTimeout,
		drainInterval: cfg.DrainInterval,
		drainBatch:    cfg.DrainBatch,
		now:           time.Now,
	}
	r.breaker.onStateChange = func(from, to BreakerState) {
		r.metrics.setBreakerState(to)
		r.log.Warn("circuit breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	}
	return r, nil
}

// Publish sends m or, failing that, queues it for the next drain. While
// the queue holds anything, or a drain is flushing it, m goes straight to
// the queue so it cannot overtake earlier events.
func (r *Relay) Publish(ctx context.Context, m Message) {
	if !r.sendMu.TryRLock() {
		r.buffer(ctx, m, "draining")
		return
	}
	defer r.sendMu.RUnlock()

	if r.queue.Len() > 0 {
		r.buffer(ctx, m, "backlog")
		return
	}

	if err := r.send(ctx, m); err != nil {
		reason := "send_error"
		switch {
		case errors.Is(err, ErrBreakerOpen):
			reason = "breaker_open"
		case errors.Is(err, context.DeadlineExceeded):
			reason = "timeout"
		}
		r.log.WarnContext(ctx, "publish deferred",
			slog.String("topic", m.Topic),
			slog.String("event_id", m.EventID),
			slog.String("reason", reason),
			slog.String("error", err.Error()),
		)
		r.buffer(ctx, m, reason)
		return
	}
	r.metrics.incPublished(m.Topic, "direct")
}

// DrainBackupQueue sends up to the configured batch of queued messages in
// order and stops at the first failure, leaving that message at the head.
// Returns how many were delivered.
func (r *Relay) DrainBackupQueue(ctx context.Context) int {
	r.sendMu.Lock()
	defer r.sendMu.Unlock()

	sent := 0
	for sent < r.drainBatch {
		m, ok := r.queue.Peek()
		if !ok {
			break
		}
		if err := r.send(ctx, m); err != nil {
			r.log.DebugContext(ctx, "drain stopped",
				slog.String("event_id", m.EventID),
				slog.String("error", err.Error()),
			)
			break
		}
		r.queue.Pop()
		r.metrics.incPublished(m.Topic, "drain")
		sent++
	}

	r.metrics.setQueueDepth(r.queue.Len())
	if sent > 0 {
		r.log.InfoContext(ctx, "backup queue drained",
			slog.Int("sent", sent),
			slog.Int("remaining", r.queue.Len()),
		)
	}
	return sent
}

// Run drains the backup queue every drain interval until ctx is canceled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.drainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.DrainBackupQueue(ctx)
		}
	}
}

// Stats returns the breaker state and queue occupancy.
func (r *Relay) Stats() Stats {
	return Stats{
		BreakerState:  r.breaker.State().String(),
		QueueDepth:    r.queue.Len(),
		QueueCapacity: r.queue.Cap(),
		Dropped:       r.queue.Dropped(),
	}
}

// Pending returns the queued messages in delivery order.
func (r *Relay) Pending() []Message {
	return r.queue.Snapshot()
}

func (r *Relay) send(ctx context.Context, m Message) error {
	return r.breaker.Execute(func() error {
		// The caller's cancellation must not turn into a deferred delivery.
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.sendTimeout)
		defer cancel()

		var headers []kafka.Header
		if m.EventID != "" {
			headers = append(headers, kafka.Header{Key: kafka.HeaderEventID, Value: []byte(m.EventID)})
		}
		return r.sender.Send(sendCtx, m.Topic, m.Key, m.Payload, headers...)
	})
}

func (r *Relay) buffer(ctx context.Context, m Message, reason string) {
	if m.EnqueuedAt.IsZero() {
		m.EnqueuedAt = r.now()
	}
	dropped, ok := r.queue.Push(m)
	r.metrics.incBuffered(m.Topic, reason)
	r.metrics.setQueueDepth(r.queue.Len())
	if ok {
		r.metrics.incDropped()
		r.log.ErrorContext(ctx, "backup queue full, event dropped",
			slog.String("topic", dropped.Topic),
			slog.String("event_id", dropped.EventID),
			slog.Time("enqueued_at", dropped.EnqueuedAt),
		)
	}
}
