package bill

import (
	"errors"
	"strconv"

	"github.com/google/uuid"
)

// ErrEmptyHouseholdKey indicates a bill without a household
var ErrEmptyHouseholdKey = errors.New("household key cannot be empty")

// ErrInvalidUnitAmount indicates a non-positive bill amount
type ErrInvalidUnitAmount struct {
	Amount int64
}

func (e ErrInvalidUnitAmount) Error() string {
	return "unit amount must be positive: " + strconv.FormatInt(e.Amount, 10)
}

// ErrInvalidPeriod indicates a malformed billing period
type ErrInvalidPeriod struct {
	Period string
}

func (e ErrInvalidPeriod) Error() string {
	return "period must have the form YYYY-MM: " + e.Period
}

// ErrBillNotFound indicates a missing bill
type ErrBillNotFound struct {
	BillID uuid.UUID
}

func (e ErrBillNotFound) Error() string {
	return "bill not found: " + e.BillID.String()
}

// Is matches any ErrBillNotFound when the target carries the nil UUID
func (e ErrBillNotFound) Is(target error) bool {
	t, ok := target.(ErrBillNotFound)
	if !ok {
		return false
	}
	if t.BillID == uuid.Nil {
		return true
	}
	return e.BillID == t.BillID
}

// ErrDuplicateBill indicates the household already has a bill for the period
type ErrDuplicateBill struct {
	HouseholdKey string
	Period       string
}

func (e ErrDuplicateBill) Error() string {
	return "bill already exists for household " + e.HouseholdKey + " in period " + e.Period
}

// ErrInvalidBillState indicates an operation not legal from the bill's
// current status, e.g. submitting a payment against a bill already under
// review. This is the collision guard against duplicate collection.
type ErrInvalidBillState struct {
	BillID uuid.UUID
	Status Status
}

func (e ErrInvalidBillState) Error() string {
	return "bill " + e.BillID.String() + " is not open for this operation (status: " + string(e.Status) + ")"
}

// ErrBillNotDeletable indicates deletion is blocked: the bill is no longer
// unpaid or a non-rejected submission references it
type ErrBillNotDeletable struct {
	BillID uuid.UUID
}

func (e ErrBillNotDeletable) Error() string {
	return "bill cannot be deleted: " + e.BillID.String()
}
