package repository

import (
	"context"
	"fmt"

	"TradeDesk/internal/domain/models"
	pkgkafka "TradeDesk/pkg/kafka"
)

// KafkaEventSink streams session events to a Kafka topic, keyed by
// symbol so per-symbol ordering survives partitioning.
type KafkaEventSink struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaEventSink(producer *pkgkafka.Producer, topic string) *KafkaEventSink {
	return &KafkaEventSink{producer: producer, topic: topic}
}

func (s *KafkaEventSink) Publish(ctx context.Context, ev models.Event) error {
	key := ev.Symbol
	if key == "" {
		key = ev.SessionID
	}
	if err := s.producer.Publish(ctx, s.topic, []byte(key), ev); err != nil {
		return fmt.Errorf("publish event %s: %w", ev.Type, err)
	}
	return nil
}

func (s *KafkaEventSink) Close() error { return s.producer.Close() }
