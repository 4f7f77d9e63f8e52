package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/heartmarshall/hearme-backend/internal/config"
)

// Message is a received record.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   []Header
}

// Header returns the value of header key, or nil.
func (m Message) Header(key string) []byte {
	for _, h := range m.Headers {
		if h.Key == key {
			return h.Value
		}
	}
	return nil
}

// HandlerFunc processes one message. A returned error stops the consumer
// without committing, so the message is redelivered on restart.
type HandlerFunc func(ctx context.Context, msg Message) error

// messageReader is the subset of *kafka.Reader used by Consumer.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads one topic as a member of a consumer group and commits each
// message after its handler returns.
type Consumer struct {
	r   messageReader
	log *slog.Logger
}

// NewConsumer joins cfg.ConsumerGroup on topic.
func NewConsumer(cfg config.KafkaConfig, topic string, log *slog.Logger) *Consumer {
	return &Consumer{
		r: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.Brokers,
			GroupID:  cfg.ConsumerGroup,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6,
		}),
		log: log.With("component", "kafka_consumer", "topic", topic),
	}
}

// Run fetches and handles messages until ctx is canceled or the handler
// fails. Returns nil on cancellation.
func (c *Consumer) Run(ctx context.Context, handle HandlerFunc) error {
	for {
		km, err := c.r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("kafka: fetch: %w", err)
		}

		msg := Message{
			Topic:     km.Topic,
			Partition: km.Partition,
			Offset:    km.Offset,
			Key:       km.Key,
			Value:     km.Value,
		}
		for _, h := range km.Headers {
			msg.Headers = append(msg.Headers, Header{Key: h.Key, Value: h.Value})
		}

		if err := handle(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("kafka: handle %s/%d@%d: %w", msg.Topic, msg.Partition, msg.Offset, err)
		}

		if err := c.r.CommitMessages(ctx, km); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("kafka: commit %s/%d@%d: %w", msg.Topic, msg.Partition, msg.Offset, err)
		}
		c.log.DebugContext(ctx, "message handled",
			slog.Int("partition", msg.Partition),
			slog.Int64("offset", msg.Offset),
		)
	}
}

// Close leaves the group.
func (c *Consumer) Close() error {
	return c.r.Close()
}
