package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mutualaid-ledger/internal/domain/event"
	"github.com/mutualaid-ledger/internal/eventrelay/service"
	"github.com/mutualaid-ledger/internal/platform/messaging/producers"
)

// ArchiveEventHandler handles incoming domain event messages from Kafka
type ArchiveEventHandler struct {
	archiveService service.ArchiveService
	producer       producers.DeadLetterPublisher
	logger         *slog.Logger
}

// NewArchiveEventHandler creates a new handler
func NewArchiveEventHandler(
	logger *slog.Logger,
	archiveService service.ArchiveService,
	producer producers.DeadLetterPublisher,
) *ArchiveEventHandler {
	return &ArchiveEventHandler{
		archiveService: archiveService,
		producer:       producer,
		logger:         logger,
	}
}

// HandleMessage processes Kafka messages
func (h *ArchiveEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var evt event.Event
	if err := json.Unmarshal(value, &evt); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal domain event from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
				// Return original error if DLQ fails
			} else {
				h.logger.Info("Successfully published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	h.logger.Info("Received domain event for archiving",
		"event_id", evt.ID.String(),
		"event_type", evt.Type,
		"aggregate_type", evt.AggregateType,
		"aggregate_id", evt.AggregateID,
	)

	if err := h.archiveService.ArchiveEvent(ctx, &evt); err != nil {
		h.logger.Error("Failed to archive domain event",
			"event_id", evt.ID.String(),
			"event_type", evt.Type,
			"error", err,
		)
		return fmt.Errorf("archiving event %s failed: %w", evt.ID.String(), err)
	}

	h.logger.Info("Successfully archived domain event", "event_id", evt.ID.String())
	return nil // Success, commit offset
}
