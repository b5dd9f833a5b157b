// Package registry is the read-only port onto the community member registry.
// Household and member master data is owned by the registry service; this
// module only reads it to drive billing and benefit decisions.
package registry

import (
	"context"

	"github.com/google/uuid"
)

// Household is a dues-paying unit keyed by its registry identifier
type Household struct {
	Key          string    `json:"key"`
	Name         string    `json:"name"`
	HeadMemberID uuid.UUID `json:"head_member_id"`
	Active       bool      `json:"active"`
}

// Member is a registered individual belonging to a household
type Member struct {
	ID           uuid.UUID `json:"id"`
	HouseholdKey string    `json:"household_key"`
	FullName     string    `json:"full_name"`
	Status       string    `json:"status"`
}

// Reader exposes the registry lookups billing and benefits depend on
type Reader interface {
	// ActiveHouseholds lists households eligible for dues billing
	ActiveHouseholds(ctx context.Context) ([]*Household, error)

	// GetMember resolves a member and their household
	GetMember(ctx context.Context, memberID uuid.UUID) (*Member, error)
}

// ErrMemberNotFound indicates the registry has no such member
type ErrMemberNotFound struct {
	MemberID uuid.UUID
}

func (e ErrMemberNotFound) Error() string {
	return "member not found in registry: " + e.MemberID.String()
}

// Is matches any ErrMemberNotFound when the target carries the nil UUID
func (e ErrMemberNotFound) Is(target error) bool {
	t, ok := target.(ErrMemberNotFound)
	if !ok {
		return false
	}
	if t.MemberID == uuid.Nil {
		return true
	}
	return e.MemberID == t.MemberID
}
