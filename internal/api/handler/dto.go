package handler

import "encoding/json"

// GenerateBillsRequest represents a request to generate dues bills for a period
type GenerateBillsRequest struct {
	Period        string   `json:"period" binding:"required"`
	UnitAmount    int64    `json:"unit_amount" binding:"min=0"`
	DueDate       string   `json:"due_date" binding:"required"`
	HouseholdKeys []string `json:"household_keys,omitempty"`
}

// GenerateBillsResponse reports the outcome of a generation run
type GenerateBillsResponse struct {
	Period       string `json:"period"`
	BillsCreated int    `json:"bills_created"`
}

// CreateBillRequest represents a request to create a single bill manually
type CreateBillRequest struct {
	HouseholdKey string `json:"household_key" binding:"required"`
	Period       string `json:"period" binding:"required"`
	Amount       int64  `json:"amount" binding:"required,gt=0"`
	DueDate      string `json:"due_date" binding:"required"`
}

// BillResponse represents a bill in API responses
type BillResponse struct {
	ID           string `json:"id"`
	HouseholdKey string `json:"household_key"`
	Period       string `json:"period"`
	Amount       int64  `json:"amount"`
	DueDate      string `json:"due_date"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// StatementResponse represents a household's dues position in API responses
type StatementResponse struct {
	HouseholdKey     string         `json:"household_key"`
	Bills            []BillResponse `json:"bills"`
	OutstandingTotal int64          `json:"outstanding_total"`
}

// SubmitPaymentRequest represents a collector's payment submission
type SubmitPaymentRequest struct {
	BillID      string `json:"bill_id" binding:"required,uuid"`
	CollectorID string `json:"collector_id" binding:"required,uuid"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Method      string `json:"method" binding:"required"`
	EvidenceRef string `json:"evidence_ref,omitempty"`
	Note        string `json:"note,omitempty"`
}

// ApprovePaymentRequest represents an admin's approval decision
type ApprovePaymentRequest struct {
	AdminID string `json:"admin_id" binding:"required,uuid"`
}

// RejectPaymentRequest represents an admin's rejection decision
type RejectPaymentRequest struct {
	AdminID string `json:"admin_id" binding:"required,uuid"`
	Reason  string `json:"reason" binding:"required"`
}

// SubmissionResponse represents a payment submission in API responses
type SubmissionResponse struct {
	ID              string `json:"id"`
	BillID          string `json:"bill_id"`
	CollectorID     string `json:"collector_id"`
	Amount          int64  `json:"amount"`
	Method          string `json:"method"`
	EvidenceRef     string `json:"evidence_ref,omitempty"`
	Note            string `json:"note,omitempty"`
	Status          string `json:"status"`
	SubmittedAt     string `json:"submitted_at"`
	DecidedBy       string `json:"decided_by,omitempty"`
	DecidedAt       string `json:"decided_at,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

// RecordDeathRequest represents a request to register a member's death
type RecordDeathRequest struct {
	MemberID    string `json:"member_id" binding:"required,uuid"`
	DateOfDeath string `json:"date_of_death" binding:"required"`
	Cause       string `json:"cause,omitempty"`
	Place       string `json:"place,omitempty"`
	Note        string `json:"note,omitempty"`
}

// ReverseDeathRequest represents a request to undo a mistaken death record
type ReverseDeathRequest struct {
	ActorID string `json:"actor_id" binding:"required,uuid"`
}

// DisburseBenefitRequest represents a request to pay out a benefit
type DisburseBenefitRequest struct {
	ActorID     string `json:"actor_id" binding:"required,uuid"`
	DisbursedAt string `json:"disbursed_at,omitempty"`
	Method      string `json:"method" binding:"required"`
	Recipient   string `json:"recipient" binding:"required"`
	Note        string `json:"note,omitempty"`
}

// DeathRecordResponse represents a death record in API responses
type DeathRecordResponse struct {
	ID              string `json:"id"`
	MemberID        string `json:"member_id"`
	HouseholdKey    string `json:"household_key"`
	DateOfDeath     string `json:"date_of_death"`
	Cause           string `json:"cause,omitempty"`
	Place           string `json:"place,omitempty"`
	Note            string `json:"note,omitempty"`
	OutstandingDues int64  `json:"outstanding_dues"`
	CreatedAt       string `json:"created_at"`
}

// BenefitResponse represents a benefit in API responses
type BenefitResponse struct {
	ID            string `json:"id"`
	DeathRecordID string `json:"death_record_id"`
	MemberID      string `json:"member_id"`
	BaseAmount    int64  `json:"base_amount"`
	DuesDeduction int64  `json:"dues_deduction"`
	FinalAmount   int64  `json:"final_amount"`
	Status        string `json:"status"`
	DisbursedAt   string `json:"disbursed_at,omitempty"`
	Method        string `json:"method,omitempty"`
	Recipient     string `json:"recipient,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// RecordDeathResponse bundles the death record with its benefit
type RecordDeathResponse struct {
	DeathRecord DeathRecordResponse `json:"death_record"`
	Benefit     BenefitResponse     `json:"benefit"`
}

// LedgerEntryResponse represents a cash ledger entry in API responses
type LedgerEntryResponse struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	Amount        int64  `json:"amount"`
	Memo          string `json:"memo,omitempty"`
	ReferenceID   string `json:"reference_id"`
	ReferenceType string `json:"reference_type"`
	CreatedAt     string `json:"created_at"`
	CreatedBy     string `json:"created_by"`
}

// BalanceResponse represents the current cash balance in API responses
type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

// ListEventsParams represents query parameters for the event history endpoint
type ListEventsParams struct {
	AggregateType string `form:"aggregate_type" binding:"required,oneof=bill payment benefit"`
	AggregateID   string `form:"aggregate_id" binding:"required"`
	Page          int    `form:"page,default=1" binding:"min=1"`
	PerPage       int    `form:"per_page,default=10" binding:"min=1,max=100"`
}

// ArchivedEventResponse represents an archived domain event in API responses
type ArchivedEventResponse struct {
	EventID       string          `json:"event_id"`
	Type          string          `json:"type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    string          `json:"occurred_at"`
}
