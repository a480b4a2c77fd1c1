package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// KafkaDispatcher publishes events to a Kafka topic, keyed by recipient so
// one recipient's events land on one partition in order.
type KafkaDispatcher struct {
	writer *kafka.Writer
}

// NewKafkaDispatcher builds a dispatcher against the given broker and topic.
func NewKafkaDispatcher(brokerAddr, topic string) *KafkaDispatcher {
	return &KafkaDispatcher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokerAddr),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
	}
}

// Dispatch publishes one event.
func (d *KafkaDispatcher) Dispatch(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal notification event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(event.RecipientID),
		Value: payload,
	}
	if err := d.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish notification event: %w", err)
	}
	return nil
}

// Close shuts down the underlying Kafka writer.
func (d *KafkaDispatcher) Close() error {
	if d == nil || d.writer == nil {
		return nil
	}
	return d.writer.Close()
}

var _ Dispatcher = (*KafkaDispatcher)(nil)
