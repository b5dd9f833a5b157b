// Package bill defines the household dues bill (tagihan) and its status
// machine. A bill is the obligation of one household for one period; its
// status moves unpaid -> pending_review -> paid, with pending_review falling
// back to unpaid when the submission is rejected.
package bill

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Status defines the bill states
type Status string

const (
	StatusUnpaid        Status = "unpaid"
	StatusPendingReview Status = "pending_review"
	StatusPaid          Status = "paid"
)

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidPeriod reports whether the period has the YYYY-MM form
func ValidPeriod(period string) bool {
	return periodPattern.MatchString(period)
}

// Bill represents one household's dues obligation for one period
type Bill struct {
	ID           uuid.UUID `json:"id"`
	HouseholdKey string    `json:"household_key"`
	Period       string    `json:"period"` // YYYY-MM
	Amount       int64     `json:"amount"` // Rupiah, whole units
	DueDate      time.Time `json:"due_date"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewBill creates an unpaid bill for the given household and period
func NewBill(householdKey, period string, amount int64, dueDate time.Time) (*Bill, error) {
	if householdKey == "" {
		return nil, ErrEmptyHouseholdKey
	}
	if !ValidPeriod(period) {
		return nil, ErrInvalidPeriod{Period: period}
	}
	if amount <= 0 {
		return nil, ErrInvalidUnitAmount{Amount: amount}
	}

	now := time.Now()
	return &Bill{
		ID:           uuid.New(),
		HouseholdKey: householdKey,
		Period:       period,
		Amount:       amount,
		DueDate:      dueDate,
		Status:       StatusUnpaid,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Outstanding reports whether the bill still counts against the household
// (tunggakan). A bill under review is outstanding until the ledger confirms it.
func (b *Bill) Outstanding() bool {
	return b.Status == StatusUnpaid || b.Status == StatusPendingReview
}
