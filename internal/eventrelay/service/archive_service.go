package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mutualaid-ledger/internal/domain/event"
)

// ArchiveServiceImpl implements the ArchiveService interface
type ArchiveServiceImpl struct {
	archive EventArchive
	logger  *slog.Logger
}

// NewArchiveService creates a new archive service
func NewArchiveService(logger *slog.Logger, archive EventArchive) ArchiveService {
	return &ArchiveServiceImpl{
		archive: archive,
		logger:  logger,
	}
}

// ArchiveEvent stores one consumed domain event. Redeliveries are
// deduplicated by event ID inside the archive.
func (s *ArchiveServiceImpl) ArchiveEvent(ctx context.Context, evt *event.Event) error {
	if err := s.archive.Archive(ctx, evt); err != nil {
		s.logger.Error("Failed to archive domain event",
			"event_id", evt.ID.String(),
			"event_type", evt.Type,
			"error", err,
		)
		return fmt.Errorf("failed to archive event %s: %w", evt.ID.String(), err)
	}

	s.logger.Debug("Archived domain event",
		"event_id", evt.ID.String(),
		"event_type", evt.Type,
		"aggregate_type", evt.AggregateType,
		"aggregate_id", evt.AggregateID,
	)
	return nil
}
