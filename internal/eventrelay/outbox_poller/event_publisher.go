package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mutualaid-ledger/internal/domain/event"
	"github.com/mutualaid-ledger/internal/platform/messaging/producers"
)

// EventPublisher publishes outbox messages to the domain event stream
type EventPublisher interface {
	PublishEvent(ctx context.Context, message *event.Message) error
}

// EventPublisherImpl implements EventPublisher
type EventPublisherImpl struct {
	outboxRepo event.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewEventPublisher creates a new publisher
func NewEventPublisher(
	outboxRepo event.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) EventPublisher {
	return &EventPublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishEvent publishes one outbox message to Kafka and marks it PROCESSED.
// The message is keyed by aggregate ID so events for the same aggregate stay
// ordered within their partition.
func (p *EventPublisherImpl) PublishEvent(ctx context.Context, message *event.Message) error {
	p.logger.Info("Attempting to publish outbox message to event stream",
		"outbox_id", message.ID,
		"event_id", message.EventID.String(),
		"event_type", message.EventType,
	)

	if err := p.producer.Publish(ctx, message.AggregateID, message.Payload); err != nil {
		return fmt.Errorf("failed to publish event %s to broker: %w", message.EventID.String(), err)
	}

	// The broker has acked the write; a crash before the status update only
	// causes a re-publish, which consumers deduplicate by event ID.
	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, event.OutboxStatusProcessed); err != nil {
		p.logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID,
			"event_id", message.EventID.String(),
			"error", err,
		)
		return fmt.Errorf("broker write for %s OK, but failed to mark outbox %d as PROCESSED: %w", message.EventID.String(), message.ID, err)
	}

	p.logger.Info("Outbox message successfully published and marked as PROCESSED",
		"outbox_id", message.ID,
		"event_id", message.EventID.String(),
	)
	return nil
}
