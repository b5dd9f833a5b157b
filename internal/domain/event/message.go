package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)

// Message stores a committed domain event for reliable publishing. It is
// written in the same transaction as the state change it describes, so an
// event exists if and only if its transaction committed.
type Message struct {
	ID            int64           `json:"id"`
	EventID       uuid.UUID       `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	Payload       json.RawMessage `json:"payload"`
	Status        OutboxStatus    `json:"status"`
	Attempts      int             `json:"attempts"`
	CreatedAt     time.Time       `json:"created_at"`
	LastAttemptAt *time.Time      `json:"last_attempt_at,omitempty"`
}

// NewMessage wraps an event into a pending outbox message
func NewMessage(evt *Event) (*Message, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, err
	}

	return &Message{
		EventID:       evt.ID,
		EventType:     evt.Type,
		AggregateType: evt.AggregateType,
		AggregateID:   evt.AggregateID,
		Payload:       payload,
		Status:        OutboxStatusPending,
		Attempts:      0,
		CreatedAt:     time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = OutboxStatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = OutboxStatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// GetEvent extracts the domain event from the payload
func (m *Message) GetEvent() (*Event, error) {
	var evt Event
	if err := json.Unmarshal(m.Payload, &evt); err != nil {
		return nil, err
	}
	return &evt, nil
}
