// Package kas defines the society's append-only cash ledger. Entries are the
// single source of truth for the cash balance; they are only ever appended as
// a side effect of payment approval or benefit disbursement, and corrections
// are made with compensating entries, never mutation.
package kas

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes money in from money out
type Kind string

const (
	KindCredit Kind = "credit"
	KindDebit  Kind = "debit"
)

// Reference types link an entry back to the record that produced it, so
// reporting can reconstruct the cash trail.
const (
	ReferencePayment = "payment"
	ReferenceBenefit = "benefit"
)

// Entry is one immutable cash movement
type Entry struct {
	ID            uuid.UUID `json:"id"`
	Kind          Kind      `json:"kind"`
	Amount        int64     `json:"amount"`
	Memo          string    `json:"memo,omitempty"`
	ReferenceID   uuid.UUID `json:"reference_id"`
	ReferenceType string    `json:"reference_type"`
	CreatedAt     time.Time `json:"created_at"`
	CreatedBy     uuid.UUID `json:"created_by"`
}

// NewEntry builds a ledger entry, rejecting non-positive amounts
func NewEntry(kind Kind, amount int64, memo string, referenceID uuid.UUID, referenceType string, createdBy uuid.UUID) (*Entry, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount{Amount: amount}
	}
	if kind != KindCredit && kind != KindDebit {
		return nil, ErrInvalidKind{Kind: kind}
	}

	return &Entry{
		ID:            uuid.New(),
		Kind:          kind,
		Amount:        amount,
		Memo:          memo,
		ReferenceID:   referenceID,
		ReferenceType: referenceType,
		CreatedAt:     time.Now(),
		CreatedBy:     createdBy,
	}, nil
}

// Signed returns the entry's contribution to the balance
func (e *Entry) Signed() int64 {
	if e.Kind == KindDebit {
		return -e.Amount
	}
	return e.Amount
}

// ErrInvalidAmount indicates a non-positive ledger amount
type ErrInvalidAmount struct {
	Amount int64
}

func (e ErrInvalidAmount) Error() string {
	return "ledger amount must be positive: " + strconv.FormatInt(e.Amount, 10)
}

// ErrInvalidKind indicates an unknown entry kind
type ErrInvalidKind struct {
	Kind Kind
}

func (e ErrInvalidKind) Error() string {
	return "unknown ledger entry kind: " + string(e.Kind)
}
