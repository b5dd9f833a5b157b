package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ArchivedEvent is the archive's view of a published domain event. Payload is
// kept as the raw JSON the event carried on the stream.
type ArchivedEvent struct {
	EventID       uuid.UUID `bson:"event_id" json:"event_id"`
	Type          string    `bson:"type" json:"type"`
	AggregateType string    `bson:"aggregate_type" json:"aggregate_type"`
	AggregateID   string    `bson:"aggregate_id" json:"aggregate_id"`
	Payload       string    `bson:"payload" json:"payload"`
	OccurredAt    time.Time `bson:"occurred_at" json:"occurred_at"`
	ArchivedAt    time.Time `bson:"archived_at" json:"archived_at"`
}

// ArchiveReader is the read side of the event archive, serving the audit and
// notification-feed queries
type ArchiveReader interface {
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*ArchivedEvent, error)
	CountByAggregate(ctx context.Context, aggregateType, aggregateID string) (int64, error)
}
