package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mutualaid-ledger/internal/domain/benefit"
	"github.com/mutualaid-ledger/internal/domain/bill"
	"github.com/mutualaid-ledger/internal/domain/event"
	"github.com/mutualaid-ledger/internal/domain/kas"
	"github.com/mutualaid-ledger/internal/domain/payment"
)

// TxRunner executes a function inside a database transaction. Satisfied by
// persistence.PostgresDB.
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// BillingService defines dues billing operations
type BillingService interface {
	// GeneratePeriod creates one unpaid bill per household for the period.
	// Households already billed for the period are skipped, making the
	// operation safe to retry. An empty household list bills every active
	// household from the registry. A zero unitAmount falls back to the
	// configured tariff.
	// Returns the number of bills created.
	GeneratePeriod(ctx context.Context, period string, unitAmount int64, dueDate time.Time, householdKeys []string) (int, error)

	// CreateManual creates a single bill outside the generation run.
	// Returns ErrDuplicateBill if the household is already billed for the period.
	CreateManual(ctx context.Context, householdKey, period string, amount int64, dueDate time.Time) (*bill.Bill, error)

	// GetBill retrieves a bill by ID
	GetBill(ctx context.Context, id uuid.UUID) (*bill.Bill, error)

	// ListByHousehold retrieves a household's bills, newest period first
	ListByHousehold(ctx context.Context, householdKey string) ([]*bill.Bill, error)

	// ListByPeriod retrieves paginated bills for a period
	ListByPeriod(ctx context.Context, period string, page, perPage int) ([]*bill.Bill, error)

	// Delete removes an unpaid bill that no non-rejected submission references.
	// Returns ErrBillNotDeletable otherwise.
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentService defines the payment submission and review workflow
type PaymentService interface {
	// Submit records a collector's payment against an unpaid bill and flips
	// the bill to pending_review in one transaction.
	// Returns ErrBillNotFound or ErrInvalidBillState when the bill cannot
	// accept a submission.
	Submit(ctx context.Context, billID, collectorID uuid.UUID, amount int64, method, evidenceRef, note string) (*payment.Submission, error)

	// Approve confirms a submission: marks it approved, the bill paid, and
	// credits the ledger, all in one transaction. Approving an already
	// approved submission is a no-op.
	Approve(ctx context.Context, paymentID, adminID uuid.UUID) (*payment.Submission, error)

	// Reject declines a submission with a reason and frees the bill for a
	// fresh submission. No ledger effect.
	Reject(ctx context.Context, paymentID, adminID uuid.UUID, reason string) (*payment.Submission, error)

	// GetSubmission retrieves a submission by ID
	GetSubmission(ctx context.Context, id uuid.UUID) (*payment.Submission, error)

	// ListPending retrieves the admin review queue, oldest first, with the
	// total pending count
	ListPending(ctx context.Context, page, perPage int) ([]*payment.Submission, int64, error)

	// ListByBill retrieves all submissions against a bill
	ListByBill(ctx context.Context, billID uuid.UUID) ([]*payment.Submission, error)
}

// BenefitService defines the death record and benefit workflow
type BenefitService interface {
	// RecordDeath registers a member's death, snapshots the household's
	// outstanding dues, and creates the pending benefit, all in one
	// transaction. Returns ErrDuplicateDeathRecord for a second record on the
	// same member.
	RecordDeath(ctx context.Context, memberID uuid.UUID, dateOfDeath time.Time, cause, place, note string) (*benefit.DeathRecord, *benefit.Benefit, error)

	// Disburse pays out a benefit: marks it disbursed and debits the ledger in
	// one transaction. Fails with ErrAlreadyDisbursed or ErrInsufficientFunds.
	Disburse(ctx context.Context, benefitID, actorID uuid.UUID, disbursedAt time.Time, method, recipient, note string) (*benefit.Benefit, error)

	// ReverseDeath undoes a mistaken death record by deleting the record and
	// its benefit. A disbursed benefit blocks reversal.
	ReverseDeath(ctx context.Context, deathRecordID, actorID uuid.UUID) error

	// GetBenefit retrieves a benefit by ID
	GetBenefit(ctx context.Context, id uuid.UUID) (*benefit.Benefit, error)

	// GetDeathRecord retrieves a death record by ID
	GetDeathRecord(ctx context.Context, id uuid.UUID) (*benefit.DeathRecord, error)

	// ListBenefits retrieves paginated benefits with the total count
	ListBenefits(ctx context.Context, page, perPage int) ([]*benefit.Benefit, int64, error)
}

// QueryService defines the read-only reporting surface
type QueryService interface {
	// HouseholdStatement returns a household's bills together with its
	// outstanding total
	HouseholdStatement(ctx context.Context, householdKey string) (*HouseholdStatement, error)

	// Balance returns the current cash balance
	Balance(ctx context.Context) (int64, error)

	// LedgerEntries retrieves paginated ledger entries with the total count
	LedgerEntries(ctx context.Context, page, perPage int) ([]*kas.Entry, int64, error)

	// AggregateEvents retrieves one aggregate's archived event history,
	// newest first, with the total count
	AggregateEvents(ctx context.Context, aggregateType, aggregateID string, page, perPage int) ([]*event.ArchivedEvent, int64, error)
}

// HouseholdStatement is a household's dues position
type HouseholdStatement struct {
	HouseholdKey     string       `json:"household_key"`
	Bills            []*bill.Bill `json:"bills"`
	OutstandingTotal int64        `json:"outstanding_total"`
}
