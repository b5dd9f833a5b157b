package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mutualaid-ledger/internal/domain/registry"
	"github.com/mutualaid-ledger/internal/platform/persistence"
)

// RegistryRepository implements the registry.Reader port against the shared
// database. The registry service owns the household and member tables; this
// repository only reads them.
type RegistryRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewRegistryRepository creates a read-only registry accessor
func NewRegistryRepository(logger *slog.Logger, db *persistence.PostgresDB) registry.Reader {
	return &RegistryRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// ActiveHouseholds lists households eligible for dues billing
func (r *RegistryRepository) ActiveHouseholds(ctx context.Context) ([]*registry.Household, error) {
	query := `
		SELECT household_key, name, head_member_id, active
		FROM households
		WHERE active = TRUE
		ORDER BY household_key ASC
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list active households", "error", err)
		return nil, fmt.Errorf("failed to list active households: %w", err)
	}
	defer rows.Close()

	var households []*registry.Household
	for rows.Next() {
		var h registry.Household
		var headMemberID *uuid.UUID
		if err := rows.Scan(&h.Key, &h.Name, &headMemberID, &h.Active); err != nil {
			return nil, fmt.Errorf("failed to scan household: %w", err)
		}
		if headMemberID != nil {
			h.HeadMemberID = *headMemberID
		}
		households = append(households, &h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over households: %w", err)
	}

	return households, nil
}

// GetMember resolves a member and their household
func (r *RegistryRepository) GetMember(ctx context.Context, memberID uuid.UUID) (*registry.Member, error) {
	query := `
		SELECT id, household_key, full_name, status
		FROM members
		WHERE id = $1
	`

	var m registry.Member
	err := r.querier.QueryRow(ctx, query, memberID).Scan(
		&m.ID,
		&m.HouseholdKey,
		&m.FullName,
		&m.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, registry.ErrMemberNotFound{MemberID: memberID}
		}
		r.logger.Error("Failed to get member", "member_id", memberID.String(), "error", err)
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return &m, nil
}
