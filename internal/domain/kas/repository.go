package kas

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository manages the append-only ledger. There is deliberately no update
// or delete: the audit trail is the design.
type Repository interface {
	Append(ctx context.Context, entry *Entry) error

	// Balance returns sum(credits) - sum(debits) over all entries. The sum is
	// computed in a single statement so it observes a consistent snapshot
	// relative to concurrent appends.
	Balance(ctx context.Context) (int64, error)

	List(ctx context.Context, limit, offset int) ([]*Entry, error)
	Count(ctx context.Context) (int64, error)

	// AcquireBalanceLock takes a transaction-scoped advisory lock on the
	// ledger. A disbursement holds it across its balance check and debit so
	// two disbursements cannot both be authorized against funds only
	// sufficient for one. Must be called inside a transaction.
	AcquireBalanceLock(ctx context.Context) error

	WithTx(tx pgx.Tx) Repository
}
