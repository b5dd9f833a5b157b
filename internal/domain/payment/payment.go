// Package payment defines a collector's payment submission (pembayaran)
// against a bill, pending admin confirmation. At most one submission per bill
// may be awaiting review at a time; an approved submission is immutable.
package payment

import (
	"time"

	"github.com/google/uuid"
)

// Status defines submission review states
type Status string

const (
	StatusPendingReview Status = "pending_review"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
)

// Submission is a collector-reported payment awaiting an admin decision
type Submission struct {
	ID              uuid.UUID  `json:"id"`
	BillID          uuid.UUID  `json:"bill_id"`
	CollectorID     uuid.UUID  `json:"collector_id"`
	Amount          int64      `json:"amount"`
	Method          string     `json:"method"` // e.g. tunai, transfer
	EvidenceRef     string     `json:"evidence_ref,omitempty"`
	Note            string     `json:"note,omitempty"`
	Status          Status     `json:"status"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	DecidedBy       *uuid.UUID `json:"decided_by,omitempty"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
}

// NewSubmission creates a pending submission against a bill. The evidence
// reference is opaque here; uploads are resolved by the caller beforehand.
func NewSubmission(billID, collectorID uuid.UUID, amount int64, method, evidenceRef, note string) (*Submission, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount{Amount: amount}
	}
	if method == "" {
		return nil, ErrEmptyMethod
	}

	return &Submission{
		ID:          uuid.New(),
		BillID:      billID,
		CollectorID: collectorID,
		Amount:      amount,
		Method:      method,
		EvidenceRef: evidenceRef,
		Note:        note,
		Status:      StatusPendingReview,
		SubmittedAt: time.Now(),
	}, nil
}

// Approve marks the submission approved by the given admin. Only legal from
// pending_review.
func (s *Submission) Approve(adminID uuid.UUID) error {
	if s.Status != StatusPendingReview {
		return ErrInvalidState{PaymentID: s.ID, Status: s.Status}
	}
	now := time.Now()
	s.Status = StatusApproved
	s.DecidedBy = &adminID
	s.DecidedAt = &now
	return nil
}

// Reject marks the submission rejected with a reason. Only legal from
// pending_review; the bill is freed for a fresh submission by the caller.
func (s *Submission) Reject(adminID uuid.UUID, reason string) error {
	if s.Status != StatusPendingReview {
		return ErrInvalidState{PaymentID: s.ID, Status: s.Status}
	}
	if reason == "" {
		return ErrEmptyRejectionReason
	}
	now := time.Now()
	s.Status = StatusRejected
	s.DecidedBy = &adminID
	s.DecidedAt = &now
	s.RejectionReason = reason
	return nil
}
