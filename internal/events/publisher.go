package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/shareit-go/shareit/internal/pkg/kafka"
)

// Producer writes a CloudEvent to a topic. *kafka.Producer satisfies it.
type Producer interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// Publisher sends booking events fire-and-forget: failures are logged and
// never returned to the caller. A nil Publisher or nil producer publishes nothing.
type Publisher struct {
	producer Producer
	topic    string
	logger   *zap.Logger
}

// NewPublisher creates a Publisher writing to topic.
func NewPublisher(producer Producer, topic string, logger *zap.Logger) *Publisher {
	if topic == "" {
		topic = TopicBookingEvents
	}
	return &Publisher{producer: producer, topic: topic, logger: logger}
}

// Publish wraps data in a CloudEvent keyed by subject and writes it.
func (p *Publisher) Publish(ctx context.Context, eventType, subject string, data interface{}) {
	if p == nil || p.producer == nil {
		return
	}

	cloudEvent, err := kafka.NewCloudEvent(Source, eventType, subject, data)
	if err != nil {
		p.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := p.producer.PublishEvent(ctx, p.topic, cloudEvent); err != nil {
		p.logger.Error("failed to publish event",
			zap.String("topic", p.topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
