package benefit

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages death record and benefit persistence. The two are
// created and removed together (1:1), so they share a repository.
type Repository interface {
	CreateDeathRecord(ctx context.Context, r *DeathRecord) error
	GetDeathRecord(ctx context.Context, id uuid.UUID) (*DeathRecord, error)
	DeleteDeathRecord(ctx context.Context, id uuid.UUID) error

	CreateBenefit(ctx context.Context, b *Benefit) error
	GetBenefit(ctx context.Context, id uuid.UUID) (*Benefit, error)
	GetBenefitByDeathRecord(ctx context.Context, deathRecordID uuid.UUID) (*Benefit, error)

	// LockBenefit loads the benefit FOR UPDATE so racing disbursements
	// serialize on the row before reading its status
	LockBenefit(ctx context.Context, id uuid.UUID) (*Benefit, error)

	// UpdateDisbursement persists the disbursed status, timestamp, method
	// and recipient
	UpdateDisbursement(ctx context.Context, b *Benefit) error

	DeleteBenefitByDeathRecord(ctx context.Context, deathRecordID uuid.UUID) error

	ListBenefits(ctx context.Context, limit, offset int) ([]*Benefit, error)
	CountBenefits(ctx context.Context) (int64, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrDeathRecordNotFound indicates a missing death record
type ErrDeathRecordNotFound struct {
	DeathRecordID uuid.UUID
}

func (e ErrDeathRecordNotFound) Error() string {
	return "death record not found: " + e.DeathRecordID.String()
}

// ErrDuplicateDeathRecord indicates the member already has a death record
type ErrDuplicateDeathRecord struct {
	MemberID uuid.UUID
}

func (e ErrDuplicateDeathRecord) Error() string {
	return "death record already exists for member: " + e.MemberID.String()
}

// ErrBenefitNotFound indicates a missing benefit
type ErrBenefitNotFound struct {
	BenefitID uuid.UUID
}

func (e ErrBenefitNotFound) Error() string {
	return "benefit not found: " + e.BenefitID.String()
}

// Is matches any ErrBenefitNotFound when the target carries the nil UUID
func (e ErrBenefitNotFound) Is(target error) bool {
	t, ok := target.(ErrBenefitNotFound)
	if !ok {
		return false
	}
	if t.BenefitID == uuid.Nil {
		return true
	}
	return e.BenefitID == t.BenefitID
}

// ErrAlreadyDisbursed indicates the benefit was already paid out. Disbursal
// is terminal; a disbursed benefit can only be offset with a compensating
// ledger entry, never reversed in place.
type ErrAlreadyDisbursed struct {
	BenefitID uuid.UUID
}

func (e ErrAlreadyDisbursed) Error() string {
	return "benefit already disbursed: " + e.BenefitID.String()
}

// ErrInsufficientFunds indicates the ledger balance cannot cover the payout;
// disbursement must never drive the balance negative
type ErrInsufficientFunds struct {
	Balance  int64
	Required int64
}

func (e ErrInsufficientFunds) Error() string {
	return "insufficient ledger balance for disbursement: have " +
		strconv.FormatInt(e.Balance, 10) + ", need " + strconv.FormatInt(e.Required, 10)
}
