// Package postgres provides PostgreSQL implementations of the domain
// repositories. All money mutations run inside caller-provided transactions
// via WithTx so a request's state changes commit or roll back together.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mutualaid-ledger/internal/domain/bill"
	"github.com/mutualaid-ledger/internal/platform/persistence"
)

const uniqueViolationCode = "23505"

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode && pgErr.ConstraintName == constraint
	}
	return false
}

// BillRepository implements the bill.Repository interface for PostgreSQL
type BillRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewBillRepository creates a new PostgreSQL bill repository
func NewBillRepository(logger *slog.Logger, db *persistence.PostgresDB) bill.Repository {
	return &BillRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls
func (r *BillRepository) WithTx(tx pgx.Tx) bill.Repository {
	return &BillRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new bill. A second bill for the same household and period
// violates the unique constraint and maps to ErrDuplicateBill.
func (r *BillRepository) Create(ctx context.Context, b *bill.Bill) error {
	query := `
		INSERT INTO bills (id, household_key, period, amount, due_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.querier.Exec(ctx, query,
		b.ID,
		b.HouseholdKey,
		b.Period,
		b.Amount,
		b.DueDate,
		b.Status,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "uq_bills_household_period") {
			return bill.ErrDuplicateBill{HouseholdKey: b.HouseholdKey, Period: b.Period}
		}
		r.logger.Error("Failed to create bill", "error", err)
		return fmt.Errorf("failed to create bill: %w", err)
	}

	return nil
}

// CreateIgnoreDuplicate inserts a bill unless the household already has one
// for the period. Returns true when a row was inserted.
func (r *BillRepository) CreateIgnoreDuplicate(ctx context.Context, b *bill.Bill) (bool, error) {
	query := `
		INSERT INTO bills (id, household_key, period, amount, due_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT ON CONSTRAINT uq_bills_household_period DO NOTHING
	`

	result, err := r.querier.Exec(ctx, query,
		b.ID,
		b.HouseholdKey,
		b.Period,
		b.Amount,
		b.DueDate,
		b.Status,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create bill", "household_key", b.HouseholdKey, "period", b.Period, "error", err)
		return false, fmt.Errorf("failed to create bill: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// GetByID retrieves a bill by its ID
func (r *BillRepository) GetByID(ctx context.Context, id uuid.UUID) (*bill.Bill, error) {
	query := `
		SELECT id, household_key, period, amount, due_date, status, created_at, updated_at
		FROM bills
		WHERE id = $1
	`

	var b bill.Bill
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&b.ID,
		&b.HouseholdKey,
		&b.Period,
		&b.Amount,
		&b.DueDate,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, bill.ErrBillNotFound{BillID: id}
		}
		r.logger.Error("Failed to get bill", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	return &b, nil
}

// ListByHousehold retrieves all bills for a household, newest period first
func (r *BillRepository) ListByHousehold(ctx context.Context, householdKey string) ([]*bill.Bill, error) {
	query := `
		SELECT id, household_key, period, amount, due_date, status, created_at, updated_at
		FROM bills
		WHERE household_key = $1
		ORDER BY period DESC
	`

	rows, err := r.querier.Query(ctx, query, householdKey)
	if err != nil {
		r.logger.Error("Failed to list bills by household", "household_key", householdKey, "error", err)
		return nil, fmt.Errorf("failed to list bills by household: %w", err)
	}
	defer rows.Close()

	return scanBills(rows)
}

// ListByPeriod retrieves bills for a billing period with pagination
func (r *BillRepository) ListByPeriod(ctx context.Context, period string, limit, offset int) ([]*bill.Bill, error) {
	query := `
		SELECT id, household_key, period, amount, due_date, status, created_at, updated_at
		FROM bills
		WHERE period = $1
		ORDER BY household_key ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, period, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list bills by period", "period", period, "error", err)
		return nil, fmt.Errorf("failed to list bills by period: %w", err)
	}
	defer rows.Close()

	return scanBills(rows)
}

func scanBills(rows pgx.Rows) ([]*bill.Bill, error) {
	var bills []*bill.Bill
	for rows.Next() {
		var b bill.Bill
		err := rows.Scan(
			&b.ID,
			&b.HouseholdKey,
			&b.Period,
			&b.Amount,
			&b.DueDate,
			&b.Status,
			&b.CreatedAt,
			&b.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over bills: %w", err)
	}

	return bills, nil
}

// OutstandingTotal sums the household's unpaid and pending_review bill amounts
func (r *BillRepository) OutstandingTotal(ctx context.Context, householdKey string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM bills
		WHERE household_key = $1 AND status IN ('unpaid', 'pending_review')
	`

	var total int64
	err := r.querier.QueryRow(ctx, query, householdKey).Scan(&total)
	if err != nil {
		r.logger.Error("Failed to sum outstanding bills", "household_key", householdKey, "error", err)
		return 0, fmt.Errorf("failed to sum outstanding bills: %w", err)
	}

	return total, nil
}

// MarkPendingReview flips an unpaid bill to pending_review. The status guard
// in the WHERE clause makes concurrent submissions race on the same row; only
// one update succeeds.
func (r *BillRepository) MarkPendingReview(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE bills
		SET status = 'pending_review', updated_at = NOW()
		WHERE id = $1 AND status = 'unpaid'
	`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to mark bill pending review", "id", id.String(), "error", err)
		return false, fmt.Errorf("failed to mark bill pending review: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// SetStatus updates the bill status unconditionally. Callers hold the related
// submission row lock, which serializes the state change.
func (r *BillRepository) SetStatus(ctx context.Context, id uuid.UUID, status bill.Status) error {
	query := `
		UPDATE bills
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update bill status", "id", id.String(), "status", string(status), "error", err)
		return fmt.Errorf("failed to update bill status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return bill.ErrBillNotFound{BillID: id}
	}

	return nil
}

// Delete removes a bill
func (r *BillRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM bills
		WHERE id = $1
	`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete bill", "id", id.String(), "error", err)
		return fmt.Errorf("failed to delete bill: %w", err)
	}

	if result.RowsAffected() == 0 {
		return bill.ErrBillNotFound{BillID: id}
	}

	return nil
}
