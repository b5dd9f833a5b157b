package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mutualaid-ledger/internal/domain/payment"
	"github.com/mutualaid-ledger/internal/platform/persistence"
)

// PaymentRepository implements the payment.Repository interface for PostgreSQL
type PaymentRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewPaymentRepository creates a new PostgreSQL payment submission repository
func NewPaymentRepository(logger *slog.Logger, db *persistence.PostgresDB) payment.Repository {
	return &PaymentRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction for atomic operations
func (r *PaymentRepository) WithTx(tx pgx.Tx) payment.Repository {
	return &PaymentRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const submissionColumns = `id, bill_id, collector_id, amount, method, evidence_ref, note, status, submitted_at, decided_by, decided_at, rejection_reason`

// Create stores a new payment submission. A second pending submission for the
// same bill violates the partial unique index and maps to ErrDuplicatePending.
func (r *PaymentRepository) Create(ctx context.Context, s *payment.Submission) error {
	query := `
		INSERT INTO payment_submissions (id, bill_id, collector_id, amount, method, evidence_ref, note, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.querier.Exec(ctx, query,
		s.ID,
		s.BillID,
		s.CollectorID,
		s.Amount,
		s.Method,
		s.EvidenceRef,
		s.Note,
		s.Status,
		s.SubmittedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "uq_payment_pending_per_bill") {
			return payment.ErrDuplicatePending{BillID: s.BillID}
		}
		r.logger.Error("Failed to create payment submission", "bill_id", s.BillID.String(), "error", err)
		return fmt.Errorf("failed to create payment submission: %w", err)
	}

	return nil
}

// GetByID retrieves a payment submission by its ID
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*payment.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM payment_submissions
		WHERE id = $1
	`

	s, err := r.scanSubmissionRow(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payment.ErrPaymentNotFound{PaymentID: id}
		}
		r.logger.Error("Failed to get payment submission", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get payment submission: %w", err)
	}

	return s, nil
}

// LockForDecision obtains a pessimistic lock on the submission and returns its
// current state. Must be called within a transaction; racing approvals and
// rejections serialize here.
func (r *PaymentRepository) LockForDecision(ctx context.Context, id uuid.UUID) (*payment.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM payment_submissions
		WHERE id = $1
		FOR UPDATE
	`

	s, err := r.scanSubmissionRow(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payment.ErrPaymentNotFound{PaymentID: id}
		}
		r.logger.Error("Failed to lock payment submission", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock payment submission: %w", err)
	}

	return s, nil
}

// UpdateDecision persists the approve/reject outcome
func (r *PaymentRepository) UpdateDecision(ctx context.Context, s *payment.Submission) error {
	query := `
		UPDATE payment_submissions
		SET status = $1, decided_by = $2, decided_at = $3, rejection_reason = $4
		WHERE id = $5
	`

	result, err := r.querier.Exec(ctx, query,
		s.Status,
		s.DecidedBy,
		s.DecidedAt,
		s.RejectionReason,
		s.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update payment decision", "id", s.ID.String(), "error", err)
		return fmt.Errorf("failed to update payment decision: %w", err)
	}

	if result.RowsAffected() == 0 {
		return payment.ErrPaymentNotFound{PaymentID: s.ID}
	}

	return nil
}

// ListPending retrieves submissions awaiting review, oldest first
func (r *PaymentRepository) ListPending(ctx context.Context, limit, offset int) ([]*payment.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM payment_submissions
		WHERE status = 'pending_review'
		ORDER BY submitted_at ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.querier.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list pending submissions", "error", err)
		return nil, fmt.Errorf("failed to list pending submissions: %w", err)
	}
	defer rows.Close()

	return scanSubmissions(rows)
}

// CountPending counts submissions awaiting review
func (r *PaymentRepository) CountPending(ctx context.Context) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM payment_submissions
		WHERE status = 'pending_review'
	`

	var count int64
	if err := r.querier.QueryRow(ctx, query).Scan(&count); err != nil {
		r.logger.Error("Failed to count pending submissions", "error", err)
		return 0, fmt.Errorf("failed to count pending submissions: %w", err)
	}

	return count, nil
}

// ListByBill retrieves all submissions against a bill, newest first
func (r *PaymentRepository) ListByBill(ctx context.Context, billID uuid.UUID) ([]*payment.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM payment_submissions
		WHERE bill_id = $1
		ORDER BY submitted_at DESC
	`

	rows, err := r.querier.Query(ctx, query, billID)
	if err != nil {
		r.logger.Error("Failed to list submissions by bill", "bill_id", billID.String(), "error", err)
		return nil, fmt.Errorf("failed to list submissions by bill: %w", err)
	}
	defer rows.Close()

	return scanSubmissions(rows)
}

// CountActiveByBill counts non-rejected submissions against a bill
func (r *PaymentRepository) CountActiveByBill(ctx context.Context, billID uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM payment_submissions
		WHERE bill_id = $1 AND status != 'rejected'
	`

	var count int64
	if err := r.querier.QueryRow(ctx, query, billID).Scan(&count); err != nil {
		r.logger.Error("Failed to count active submissions", "bill_id", billID.String(), "error", err)
		return 0, fmt.Errorf("failed to count active submissions: %w", err)
	}

	return count, nil
}

// DeleteRejectedByBill removes the bill's rejected submissions. Rejected rows
// still reference the bill, so bill deletion clears them first in the same
// transaction.
func (r *PaymentRepository) DeleteRejectedByBill(ctx context.Context, billID uuid.UUID) error {
	query := `
		DELETE FROM payment_submissions
		WHERE bill_id = $1 AND status = 'rejected'
	`

	_, err := r.querier.Exec(ctx, query, billID)
	if err != nil {
		r.logger.Error("Failed to delete rejected submissions", "bill_id", billID.String(), "error", err)
		return fmt.Errorf("failed to delete rejected submissions: %w", err)
	}

	return nil
}

func (r *PaymentRepository) scanSubmissionRow(row pgx.Row) (*payment.Submission, error) {
	var s payment.Submission
	err := row.Scan(
		&s.ID,
		&s.BillID,
		&s.CollectorID,
		&s.Amount,
		&s.Method,
		&s.EvidenceRef,
		&s.Note,
		&s.Status,
		&s.SubmittedAt,
		&s.DecidedBy,
		&s.DecidedAt,
		&s.RejectionReason,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanSubmissions(rows pgx.Rows) ([]*payment.Submission, error) {
	var submissions []*payment.Submission
	for rows.Next() {
		var s payment.Submission
		err := rows.Scan(
			&s.ID,
			&s.BillID,
			&s.CollectorID,
			&s.Amount,
			&s.Method,
			&s.EvidenceRef,
			&s.Note,
			&s.Status,
			&s.SubmittedAt,
			&s.DecidedBy,
			&s.DecidedAt,
			&s.RejectionReason,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment submission: %w", err)
		}
		submissions = append(submissions, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over payment submissions: %w", err)
	}

	return submissions, nil
}
