package service

import (
	"context"

	"github.com/mutualaid-ledger/internal/domain/event"
)

// ArchiveService stores consumed domain events in the archive
type ArchiveService interface {
	ArchiveEvent(ctx context.Context, evt *event.Event) error
}

// EventArchive is the storage port for archived events. Satisfied by the
// MongoDB archive repository.
type EventArchive interface {
	Archive(ctx context.Context, evt *event.Event) error
}
