package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/jacquesmit/myriad-green/models"
)

// Publisher pushes order lifecycle events to an event stream. Wiring may
// substitute NopPublisher when no brokers are configured.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, event models.OrderEvent) error
	Close() error
}

// OrderEventProducer publishes lifecycle events to Kafka, keyed by session ID
// so one checkout's events land on a single partition in order.
type OrderEventProducer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewOrderEventProducer(brokers []string, topic string, logger *zap.Logger) *OrderEventProducer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	logger.Info("kafka producer initialized",
		zap.String("topic", topic),
		zap.Strings("brokers", brokers),
	)
	return &OrderEventProducer{writer: w, logger: logger}
}

func (p *OrderEventProducer) PublishOrderEvent(ctx context.Context, event models.OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.SessionID),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Warn("failed to publish order event",
			zap.String("type", event.Type),
			zap.String("session_id", event.SessionID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (p *OrderEventProducer) Close() error {
	return p.writer.Close()
}

// NopPublisher drops events. Used when KAFKA_BROKERS is unset.
type NopPublisher struct{}

func (NopPublisher) PublishOrderEvent(ctx context.Context, event models.OrderEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
