// Package benefit defines death records (kematian) and the death benefit
// (santunan) paid to a deceased member's household, net of the household's
// outstanding dues at the time of death.
package benefit

import (
	"time"

	"github.com/google/uuid"
)

// Status defines benefit disbursement states. The processing state exists
// for UI purposes and carries no invariant beyond pending.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDisbursed  Status = "disbursed"
)

// DeathRecord registers a member's death. One per member; it freezes the
// household's outstanding dues at that moment.
type DeathRecord struct {
	ID              uuid.UUID `json:"id"`
	MemberID        uuid.UUID `json:"member_id"`
	HouseholdKey    string    `json:"household_key"`
	DateOfDeath     time.Time `json:"date_of_death"`
	Cause           string    `json:"cause,omitempty"`
	Place           string    `json:"place,omitempty"`
	Note            string    `json:"note,omitempty"`
	OutstandingDues int64     `json:"outstanding_dues"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewDeathRecord creates a death record with the dues snapshot already
// computed by the caller (inside the same transaction)
func NewDeathRecord(memberID uuid.UUID, householdKey string, dateOfDeath time.Time, cause, place, note string, outstandingDues int64) *DeathRecord {
	return &DeathRecord{
		ID:              uuid.New(),
		MemberID:        memberID,
		HouseholdKey:    householdKey,
		DateOfDeath:     dateOfDeath,
		Cause:           cause,
		Place:           place,
		Note:            note,
		OutstandingDues: outstandingDues,
		CreatedAt:       time.Now(),
	}
}

// Benefit is the payable death benefit, one per death record
type Benefit struct {
	ID            uuid.UUID  `json:"id"`
	DeathRecordID uuid.UUID  `json:"death_record_id"`
	MemberID      uuid.UUID  `json:"member_id"`
	BaseAmount    int64      `json:"base_amount"`
	DuesDeduction int64      `json:"dues_deduction"`
	FinalAmount   int64      `json:"final_amount"`
	Status        Status     `json:"status"`
	DisbursedAt   *time.Time `json:"disbursed_at,omitempty"`
	Method        string     `json:"method,omitempty"`
	Recipient     string     `json:"recipient,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// FinalAmount computes the net benefit: the base minus outstanding dues,
// floored at zero. The snapshot is taken at death time and is not adjusted
// when pending bills are approved later.
func FinalAmount(baseAmount, duesDeduction int64) int64 {
	final := baseAmount - duesDeduction
	if final < 0 {
		return 0
	}
	return final
}

// NewBenefit creates a pending benefit for a death record
func NewBenefit(deathRecordID, memberID uuid.UUID, baseAmount, duesDeduction int64) *Benefit {
	now := time.Now()
	return &Benefit{
		ID:            uuid.New(),
		DeathRecordID: deathRecordID,
		MemberID:      memberID,
		BaseAmount:    baseAmount,
		DuesDeduction: duesDeduction,
		FinalAmount:   FinalAmount(baseAmount, duesDeduction),
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// MarkDisbursed records the payout. Only legal while not yet disbursed.
func (b *Benefit) MarkDisbursed(at time.Time, method, recipient string) error {
	if b.Status == StatusDisbursed {
		return ErrAlreadyDisbursed{BenefitID: b.ID}
	}
	b.Status = StatusDisbursed
	b.DisbursedAt = &at
	b.Method = method
	b.Recipient = recipient
	b.UpdatedAt = time.Now()
	return nil
}
