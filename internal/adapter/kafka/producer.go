// Package kafka adapts segmentio/kafka-go to the relay's sender and to the
// event consumer.
package kafka

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/heartmarshall/hearme-backend/internal/config"
)

// HeaderEventID carries the event id so consumers can deduplicate without
// decoding the payload.
const HeaderEventID = "event-id"

// Header is a message header.
type Header struct {
	Key   string
	Value []byte
}

// messageWriter is the subset of *kafka.Writer used by Producer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes single keyed messages synchronously. Messages with the
// same key land on the same partition.
type Producer struct {
	w messageWriter
}

// NewProducer creates a producer for cfg.Brokers. The topic is chosen per
// message.
func NewProducer(cfg config.KafkaConfig) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Balancer:               &kafka.Hash{},
			BatchTimeout:           cfg.BatchTimeout,
			WriteTimeout:           cfg.WriteTimeout,
			RequiredAcks:           kafka.RequireAll,
			MaxAttempts:            1,
			AllowAutoTopicCreation: true,
		},
	}
}

// Send writes one message and waits for the broker acknowledgement or ctx.
func (p *Producer) Send(ctx context.Context, topic, key string, payload []byte, headers ...Header) error {
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	}
	for _, h := range headers {
		msg.Headers = append(msg.Headers, kafka.Header{Key: h.Key, Value: h.Value})
	}

	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write to %s: %w", topic, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.w.Close()
}
