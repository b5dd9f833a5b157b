// Package event defines the domain events this service emits after each
// successful transaction, and the transactional outbox messages that carry
// them to the broker. Notification and reporting collaborators subscribe to
// the published stream; delivery is not this service's responsibility.
package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types published on the domain stream
const (
	TypeBillCreated      = "bill.created"
	TypePaymentSubmitted = "payment.submitted"
	TypePaymentApproved  = "payment.approved"
	TypePaymentRejected  = "payment.rejected"
	TypeDeathRecorded    = "death.recorded"
	TypeDeathReversed    = "death.reversed"
	TypeBenefitDisbursed = "benefit.disbursed"
)

// Aggregate types for event routing and archive queries
const (
	AggregateBill    = "bill"
	AggregatePayment = "payment"
	AggregateBenefit = "benefit"
)

// Event is one domain occurrence, emitted after its transaction committed
type Event struct {
	ID            uuid.UUID       `json:"id" bson:"event_id"`
	Type          string          `json:"type" bson:"type"`
	AggregateType string          `json:"aggregate_type" bson:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id" bson:"aggregate_id"`
	Payload       json.RawMessage `json:"payload" bson:"payload"`
	OccurredAt    time.Time       `json:"occurred_at" bson:"occurred_at"`
}

// New builds an event, marshaling the payload value
func New(eventType, aggregateType, aggregateID string, payload interface{}) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:            uuid.New(),
		Type:          eventType,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Payload:       raw,
		OccurredAt:    time.Now().UTC(),
	}, nil
}
