// Package mongo provides the MongoDB event archive. Every domain event
// published on the stream is archived here as a queryable history, separate
// from the transactional PostgreSQL store.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mutualaid-ledger/internal/domain/event"
)

const (
	// EventCollectionName is the name of the event archive collection
	EventCollectionName = "domain_events"
)

// EventArchiveRepository stores published domain events in MongoDB
type EventArchiveRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewEventArchiveRepository creates a new MongoDB event archive repository
func NewEventArchiveRepository(logger *slog.Logger, db *mongo.Database) *EventArchiveRepository {
	return &EventArchiveRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureIndexes creates the archive's indexes: the unique event_id index that
// makes Archive idempotent, and the aggregate lookup index the read side
// sorts on. Called by the relay before it starts consuming.
func (r *EventArchiveRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(EventCollectionName)

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "aggregate_type", Value: 1},
				{Key: "aggregate_id", Value: 1},
				{Key: "occurred_at", Value: -1},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create event archive indexes: %w", err)
	}

	return nil
}

// Archive stores a domain event. The unique event_id index rejects
// re-deliveries (the consumer is at-least-once), which are silently skipped.
func (r *EventArchiveRepository) Archive(ctx context.Context, evt *event.Event) error {
	collection := r.db.Collection(EventCollectionName)

	doc := bson.M{
		"event_id":       evt.ID,
		"type":           evt.Type,
		"aggregate_type": evt.AggregateType,
		"aggregate_id":   evt.AggregateID,
		"payload":        string(evt.Payload),
		"occurred_at":    evt.OccurredAt,
		"archived_at":    time.Now().UTC(),
	}

	if _, err := collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Debug("Event already archived, skipping", "event_id", evt.ID.String())
			return nil
		}
		r.logger.Error("Failed to archive event",
			"event_id", evt.ID.String(),
			"error", err)
		return fmt.Errorf("failed to archive event: %w", err)
	}

	return nil
}

// GetByAggregate retrieves paginated archived events for one aggregate,
// newest first
func (r *EventArchiveRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*event.ArchivedEvent, error) {
	collection := r.db.Collection(EventCollectionName)

	filter := bson.M{
		"aggregate_type": aggregateType,
		"aggregate_id":   aggregateID,
	}
	opts := options.Find().
		SetSort(bson.M{"occurred_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get archived events",
			"aggregate_type", aggregateType,
			"aggregate_id", aggregateID,
			"error", err)
		return nil, fmt.Errorf("failed to get archived events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*event.ArchivedEvent
	if err := cursor.All(ctx, &events); err != nil {
		r.logger.Error("Failed to decode archived events",
			"aggregate_type", aggregateType,
			"aggregate_id", aggregateID,
			"error", err)
		return nil, fmt.Errorf("failed to decode archived events: %w", err)
	}

	return events, nil
}

// CountByAggregate returns the number of archived events for one aggregate
func (r *EventArchiveRepository) CountByAggregate(ctx context.Context, aggregateType, aggregateID string) (int64, error) {
	collection := r.db.Collection(EventCollectionName)

	filter := bson.M{
		"aggregate_type": aggregateType,
		"aggregate_id":   aggregateID,
	}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count archived events: %w", err)
	}

	return count, nil
}

var _ event.ArchiveReader = (*EventArchiveRepository)(nil)
