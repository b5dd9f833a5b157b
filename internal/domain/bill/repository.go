package bill

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines bill persistence operations
type Repository interface {
	// Create inserts a bill, failing with ErrDuplicateBill when the
	// household already has one for the period
	Create(ctx context.Context, b *Bill) error

	// CreateIgnoreDuplicate inserts a bill unless the household already has
	// one for the period. Returns true when a row was inserted. This backs
	// idempotent period generation.
	CreateIgnoreDuplicate(ctx context.Context, b *Bill) (bool, error)

	GetByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	ListByHousehold(ctx context.Context, householdKey string) ([]*Bill, error)
	ListByPeriod(ctx context.Context, period string, limit, offset int) ([]*Bill, error)

	// OutstandingTotal sums the amounts of the household's bills with status
	// unpaid or pending_review
	OutstandingTotal(ctx context.Context, householdKey string) (int64, error)

	// MarkPendingReview flips an unpaid bill to pending_review. Returns
	// false when the bill was not unpaid; this conditional update is the
	// serialization point between racing collectors.
	MarkPendingReview(ctx context.Context, id uuid.UUID) (bool, error)

	// SetStatus updates the bill status unconditionally (used inside
	// approval/rejection transactions after the submission row is locked)
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error

	Delete(ctx context.Context, id uuid.UUID) error

	WithTx(tx pgx.Tx) Repository
}
