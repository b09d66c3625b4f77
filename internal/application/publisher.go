package application

import (
	"context"

	"github.com/pos-platform/inventory-service/internal/domain"
	"github.com/pos-platform/inventory-service/pkg/kafka"
	"github.com/pos-platform/inventory-service/pkg/logging"
	"github.com/pos-platform/inventory-service/pkg/metrics"
)

// EventPublisher pushes domain events to Kafka after successful mutations.
// Publishing is best-effort: a broker failure is logged and counted but never
// fails the request that triggered it. A nil publisher drops all events, which
// lets tests and single-node deployments run without a broker.
type EventPublisher struct {
	producer *kafka.Producer
	metrics  *metrics.Metrics
	logger   *logging.Logger
	source   string
}

// NewEventPublisher wires a publisher around a producer. producer may be nil.
func NewEventPublisher(producer *kafka.Producer, m *metrics.Metrics, logger *logging.Logger, source string) *EventPublisher {
	return &EventPublisher{
		producer: producer,
		metrics:  m,
		logger:   logger.WithComponent("event-publisher"),
		source:   source,
	}
}

// Publish serializes the event and sends it to the topic, keyed by subject.
func (p *EventPublisher) Publish(ctx context.Context, topic, subject string, event domain.DomainEvent) {
	if p == nil || p.producer == nil {
		return
	}

	msg, err := kafka.NewEvent(event.EventType(), p.source, subject, event)
	if err != nil {
		p.logger.WithError(err).ErrorContext(ctx, "failed to encode event",
			"eventType", event.EventType(), "subject", subject)
		p.metrics.RecordEventPublished(event.EventType(), "encode_error")
		return
	}

	if err := p.producer.PublishEvent(ctx, topic, msg); err != nil {
		p.logger.WithError(err).ErrorContext(ctx, "failed to publish event",
			"eventType", event.EventType(), "topic", topic, "subject", subject)
		p.metrics.RecordEventPublished(event.EventType(), "error")
		return
	}

	p.metrics.RecordEventPublished(event.EventType(), "success")
}
