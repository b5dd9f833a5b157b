package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mutualaid-ledger/internal/domain/benefit"
	"github.com/mutualaid-ledger/internal/platform/persistence"
)

// BenefitRepository implements the benefit.Repository interface for PostgreSQL
type BenefitRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewBenefitRepository creates a new PostgreSQL benefit repository
func NewBenefitRepository(logger *slog.Logger, db *persistence.PostgresDB) benefit.Repository {
	return &BenefitRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction for atomic operations
func (r *BenefitRepository) WithTx(tx pgx.Tx) benefit.Repository {
	return &BenefitRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// CreateDeathRecord stores a new death record. A second record for the same
// member violates the unique constraint and maps to ErrDuplicateDeathRecord.
func (r *BenefitRepository) CreateDeathRecord(ctx context.Context, rec *benefit.DeathRecord) error {
	query := `
		INSERT INTO death_records (id, member_id, household_key, date_of_death, cause, place, note, outstanding_dues, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.querier.Exec(ctx, query,
		rec.ID,
		rec.MemberID,
		rec.HouseholdKey,
		rec.DateOfDeath,
		rec.Cause,
		rec.Place,
		rec.Note,
		rec.OutstandingDues,
		rec.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "death_records_member_id_key") {
			return benefit.ErrDuplicateDeathRecord{MemberID: rec.MemberID}
		}
		r.logger.Error("Failed to create death record", "member_id", rec.MemberID.String(), "error", err)
		return fmt.Errorf("failed to create death record: %w", err)
	}

	return nil
}

// GetDeathRecord retrieves a death record by its ID
func (r *BenefitRepository) GetDeathRecord(ctx context.Context, id uuid.UUID) (*benefit.DeathRecord, error) {
	query := `
		SELECT id, member_id, household_key, date_of_death, cause, place, note, outstanding_dues, created_at
		FROM death_records
		WHERE id = $1
	`

	var rec benefit.DeathRecord
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.MemberID,
		&rec.HouseholdKey,
		&rec.DateOfDeath,
		&rec.Cause,
		&rec.Place,
		&rec.Note,
		&rec.OutstandingDues,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, benefit.ErrDeathRecordNotFound{DeathRecordID: id}
		}
		r.logger.Error("Failed to get death record", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get death record: %w", err)
	}

	return &rec, nil
}

// DeleteDeathRecord removes a death record
func (r *BenefitRepository) DeleteDeathRecord(ctx context.Context, id uuid.UUID) error {
	result, err := r.querier.Exec(ctx, `DELETE FROM death_records WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete death record", "id", id.String(), "error", err)
		return fmt.Errorf("failed to delete death record: %w", err)
	}

	if result.RowsAffected() == 0 {
		return benefit.ErrDeathRecordNotFound{DeathRecordID: id}
	}

	return nil
}

const benefitColumns = `id, death_record_id, member_id, base_amount, dues_deduction, final_amount, status, disbursed_at, method, recipient, created_at, updated_at`

// CreateBenefit stores a new pending benefit
func (r *BenefitRepository) CreateBenefit(ctx context.Context, b *benefit.Benefit) error {
	query := `
		INSERT INTO benefits (id, death_record_id, member_id, base_amount, dues_deduction, final_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.querier.Exec(ctx, query,
		b.ID,
		b.DeathRecordID,
		b.MemberID,
		b.BaseAmount,
		b.DuesDeduction,
		b.FinalAmount,
		b.Status,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create benefit", "death_record_id", b.DeathRecordID.String(), "error", err)
		return fmt.Errorf("failed to create benefit: %w", err)
	}

	return nil
}

// GetBenefit retrieves a benefit by its ID
func (r *BenefitRepository) GetBenefit(ctx context.Context, id uuid.UUID) (*benefit.Benefit, error) {
	query := `
		SELECT ` + benefitColumns + `
		FROM benefits
		WHERE id = $1
	`

	b, err := r.scanBenefitRow(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, benefit.ErrBenefitNotFound{BenefitID: id}
		}
		r.logger.Error("Failed to get benefit", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get benefit: %w", err)
	}

	return b, nil
}

// GetBenefitByDeathRecord retrieves the benefit attached to a death record
func (r *BenefitRepository) GetBenefitByDeathRecord(ctx context.Context, deathRecordID uuid.UUID) (*benefit.Benefit, error) {
	query := `
		SELECT ` + benefitColumns + `
		FROM benefits
		WHERE death_record_id = $1
	`

	b, err := r.scanBenefitRow(r.querier.QueryRow(ctx, query, deathRecordID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, benefit.ErrBenefitNotFound{}
		}
		r.logger.Error("Failed to get benefit by death record", "death_record_id", deathRecordID.String(), "error", err)
		return nil, fmt.Errorf("failed to get benefit by death record: %w", err)
	}

	return b, nil
}

// LockBenefit obtains a pessimistic lock on the benefit and returns its
// current state. Must be called within a transaction; racing disbursements
// serialize here.
func (r *BenefitRepository) LockBenefit(ctx context.Context, id uuid.UUID) (*benefit.Benefit, error) {
	query := `
		SELECT ` + benefitColumns + `
		FROM benefits
		WHERE id = $1
		FOR UPDATE
	`

	b, err := r.scanBenefitRow(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, benefit.ErrBenefitNotFound{BenefitID: id}
		}
		r.logger.Error("Failed to lock benefit", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock benefit: %w", err)
	}

	return b, nil
}

// UpdateDisbursement persists the disbursed status, timestamp, method and recipient
func (r *BenefitRepository) UpdateDisbursement(ctx context.Context, b *benefit.Benefit) error {
	query := `
		UPDATE benefits
		SET status = $1, disbursed_at = $2, method = $3, recipient = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := r.querier.Exec(ctx, query,
		b.Status,
		b.DisbursedAt,
		b.Method,
		b.Recipient,
		b.UpdatedAt,
		b.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update benefit disbursement", "id", b.ID.String(), "error", err)
		return fmt.Errorf("failed to update benefit disbursement: %w", err)
	}

	if result.RowsAffected() == 0 {
		return benefit.ErrBenefitNotFound{BenefitID: b.ID}
	}

	return nil
}

// DeleteBenefitByDeathRecord removes the benefit attached to a death record
func (r *BenefitRepository) DeleteBenefitByDeathRecord(ctx context.Context, deathRecordID uuid.UUID) error {
	result, err := r.querier.Exec(ctx, `DELETE FROM benefits WHERE death_record_id = $1`, deathRecordID)
	if err != nil {
		r.logger.Error("Failed to delete benefit", "death_record_id", deathRecordID.String(), "error", err)
		return fmt.Errorf("failed to delete benefit: %w", err)
	}

	if result.RowsAffected() == 0 {
		return benefit.ErrBenefitNotFound{}
	}

	return nil
}

// ListBenefits retrieves benefits, newest first, with pagination
func (r *BenefitRepository) ListBenefits(ctx context.Context, limit, offset int) ([]*benefit.Benefit, error) {
	query := `
		SELECT ` + benefitColumns + `
		FROM benefits
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.querier.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list benefits", "error", err)
		return nil, fmt.Errorf("failed to list benefits: %w", err)
	}
	defer rows.Close()

	var benefits []*benefit.Benefit
	for rows.Next() {
		var b benefit.Benefit
		err := rows.Scan(
			&b.ID,
			&b.DeathRecordID,
			&b.MemberID,
			&b.BaseAmount,
			&b.DuesDeduction,
			&b.FinalAmount,
			&b.Status,
			&b.DisbursedAt,
			&b.Method,
			&b.Recipient,
			&b.CreatedAt,
			&b.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan benefit: %w", err)
		}
		benefits = append(benefits, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over benefits: %w", err)
	}

	return benefits, nil
}

// CountBenefits returns the total number of benefits
func (r *BenefitRepository) CountBenefits(ctx context.Context) (int64, error) {
	var count int64
	if err := r.querier.QueryRow(ctx, `SELECT COUNT(*) FROM benefits`).Scan(&count); err != nil {
		r.logger.Error("Failed to count benefits", "error", err)
		return 0, fmt.Errorf("failed to count benefits: %w", err)
	}

	return count, nil
}

func (r *BenefitRepository) scanBenefitRow(row pgx.Row) (*benefit.Benefit, error) {
	var b benefit.Benefit
	err := row.Scan(
		&b.ID,
		&b.DeathRecordID,
		&b.MemberID,
		&b.BaseAmount,
		&b.DuesDeduction,
		&b.FinalAmount,
		&b.Status,
		&b.DisbursedAt,
		&b.Method,
		&b.Recipient,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
