package repository

import (
	"context"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	pkgkafka "StockPulse/pkg/kafka"
)

// KafkaSink publishes sync events to a Kafka topic, keyed by symbol so
// per-symbol ordering survives partitioning.
type KafkaSink struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSink creates the Kafka event sink.
func NewKafkaSink(producer *pkgkafka.Producer, topic string) domrepo.EventSink {
	return &KafkaSink{producer: producer, topic: topic}
}

func (s *KafkaSink) Publish(ctx context.Context, ev *models.SyncEvent) error {
	return s.producer.Publish(ctx, s.topic, []byte(ev.Symbol), ev)
}

func (s *KafkaSink) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}
