package payment

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines payment submission persistence operations
type Repository interface {
	Create(ctx context.Context, s *Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*Submission, error)

	// LockForDecision loads the submission FOR UPDATE so racing admins
	// serialize on the row before reading its status
	LockForDecision(ctx context.Context, id uuid.UUID) (*Submission, error)

	// UpdateDecision persists the approve/reject outcome (status, decided_by,
	// decided_at, rejection_reason)
	UpdateDecision(ctx context.Context, s *Submission) error

	ListPending(ctx context.Context, limit, offset int) ([]*Submission, error)
	CountPending(ctx context.Context) (int64, error)
	ListByBill(ctx context.Context, billID uuid.UUID) ([]*Submission, error)

	// CountActiveByBill counts submissions against the bill that are not
	// rejected; a positive count blocks bill deletion
	CountActiveByBill(ctx context.Context, billID uuid.UUID) (int64, error)

	// DeleteRejectedByBill removes the bill's rejected submissions. Called
	// before bill deletion because submissions reference the bill row.
	DeleteRejectedByBill(ctx context.Context, billID uuid.UUID) error

	WithTx(tx pgx.Tx) Repository
}

// ErrEmptyMethod indicates a submission without a payment method
var ErrEmptyMethod = errors.New("payment method cannot be empty")

// ErrEmptyRejectionReason indicates a rejection without a reason
var ErrEmptyRejectionReason = errors.New("rejection reason cannot be empty")

// ErrInvalidAmount indicates a non-positive payment amount
type ErrInvalidAmount struct {
	Amount int64
}

func (e ErrInvalidAmount) Error() string {
	return "payment amount must be positive: " + strconv.FormatInt(e.Amount, 10)
}

// ErrPaymentNotFound indicates a missing submission
type ErrPaymentNotFound struct {
	PaymentID uuid.UUID
}

func (e ErrPaymentNotFound) Error() string {
	return "payment submission not found: " + e.PaymentID.String()
}

// Is matches any ErrPaymentNotFound when the target carries the nil UUID
func (e ErrPaymentNotFound) Is(target error) bool {
	t, ok := target.(ErrPaymentNotFound)
	if !ok {
		return false
	}
	if t.PaymentID == uuid.Nil {
		return true
	}
	return e.PaymentID == t.PaymentID
}

// ErrInvalidState indicates a decision attempted on a submission that is not
// pending review
type ErrInvalidState struct {
	PaymentID uuid.UUID
	Status    Status
}

func (e ErrInvalidState) Error() string {
	return "payment submission " + e.PaymentID.String() + " is not pending review (status: " + string(e.Status) + ")"
}

// ErrDuplicatePending indicates the bill already has a submission awaiting
// review (partial unique index violation)
type ErrDuplicatePending struct {
	BillID uuid.UUID
}

func (e ErrDuplicatePending) Error() string {
	return "bill already has a pending submission: " + e.BillID.String()
}
