package service

import (
	"context"

	"github.com/mutualaid-ledger/internal/domain/event"
)

// stageEvent writes a domain event into the outbox through the given
// (transaction-bound) repository, so the event commits with the state change
// it describes
func stageEvent(ctx context.Context, outboxRepo event.Repository, eventType, aggregateType, aggregateID string, payload interface{}) error {
	evt, err := event.New(eventType, aggregateType, aggregateID, payload)
	if err != nil {
		return err
	}
	msg, err := event.NewMessage(evt)
	if err != nil {
		return err
	}
	return outboxRepo.Create(ctx, msg)
}
