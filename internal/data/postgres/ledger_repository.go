package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/mutualaid-ledger/internal/domain/kas"
	"github.com/mutualaid-ledger/internal/platform/persistence"
)

// balanceLockKey is the advisory lock key guarding the ledger balance.
// Disbursements hold it across their balance check and debit.
const balanceLockKey = 815001

// LedgerRepository implements the kas.Repository interface for PostgreSQL
type LedgerRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewLedgerRepository creates a new PostgreSQL ledger repository
func NewLedgerRepository(logger *slog.Logger, db *persistence.PostgresDB) kas.Repository {
	return &LedgerRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction for atomic operations
func (r *LedgerRepository) WithTx(tx pgx.Tx) kas.Repository {
	return &LedgerRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Append stores a new ledger entry. Entries are immutable once written.
func (r *LedgerRepository) Append(ctx context.Context, entry *kas.Entry) error {
	query := `
		INSERT INTO ledger_entries (id, kind, amount, memo, reference_id, reference_type, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.querier.Exec(ctx, query,
		entry.ID,
		entry.Kind,
		entry.Amount,
		entry.Memo,
		entry.ReferenceID,
		entry.ReferenceType,
		entry.CreatedAt,
		entry.CreatedBy,
	)
	if err != nil {
		r.logger.Error("Failed to append ledger entry", "error", err)
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	return nil
}

// Balance computes sum(credits) - sum(debits) in a single statement so the
// result is a consistent snapshot relative to concurrent appends
func (r *LedgerRepository) Balance(ctx context.Context) (int64, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN kind = 'credit' THEN amount ELSE -amount END), 0)
		FROM ledger_entries
	`

	var balance int64
	if err := r.querier.QueryRow(ctx, query).Scan(&balance); err != nil {
		r.logger.Error("Failed to compute ledger balance", "error", err)
		return 0, fmt.Errorf("failed to compute ledger balance: %w", err)
	}

	return balance, nil
}

// List retrieves ledger entries, newest first, with pagination
func (r *LedgerRepository) List(ctx context.Context, limit, offset int) ([]*kas.Entry, error) {
	query := `
		SELECT id, kind, amount, memo, reference_id, reference_type, created_at, created_by
		FROM ledger_entries
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.querier.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list ledger entries", "error", err)
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*kas.Entry
	for rows.Next() {
		var e kas.Entry
		err := rows.Scan(
			&e.ID,
			&e.Kind,
			&e.Amount,
			&e.Memo,
			&e.ReferenceID,
			&e.ReferenceType,
			&e.CreatedAt,
			&e.CreatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over ledger entries: %w", err)
	}

	return entries, nil
}

// Count returns the total number of ledger entries
func (r *LedgerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.querier.QueryRow(ctx, `SELECT COUNT(*) FROM ledger_entries`).Scan(&count); err != nil {
		r.logger.Error("Failed to count ledger entries", "error", err)
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	return count, nil
}

// AcquireBalanceLock takes a transaction-scoped advisory lock on the ledger.
// The lock is released automatically at commit or rollback. Must be called
// inside a transaction.
func (r *LedgerRepository) AcquireBalanceLock(ctx context.Context) error {
	if _, err := r.querier.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(balanceLockKey)); err != nil {
		r.logger.Error("Failed to acquire ledger balance lock", "error", err)
		return fmt.Errorf("failed to acquire ledger balance lock: %w", err)
	}

	return nil
}
