package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mutualaid-ledger/internal/api/service"
	"github.com/mutualaid-ledger/internal/domain/benefit"
	"github.com/mutualaid-ledger/internal/domain/registry"
)

// BenefitHandler handles death record and benefit HTTP requests
type BenefitHandler struct {
	benefitService service.BenefitService
	logger         *slog.Logger
}

// NewBenefitHandler creates a new benefit handler
func NewBenefitHandler(benefitService service.BenefitService, logger *slog.Logger) *BenefitHandler {
	return &BenefitHandler{
		benefitService: benefitService,
		logger:         logger,
	}
}

// RecordDeath handles POST /api/v1/deaths
func (h *BenefitHandler) RecordDeath(c *gin.Context) {
	var req RecordDeathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request: "+err.Error())
		return
	}

	memberID, err := uuid.Parse(req.MemberID)
	if err != nil {
		RespondBadRequest(c, "Invalid member_id format")
		return
	}
	dateOfDeath, err := parseDate(req.DateOfDeath)
	if err != nil {
		RespondBadRequest(c, "Invalid date_of_death, expected YYYY-MM-DD: "+req.DateOfDeath)
		return
	}

	record, ben, err := h.benefitService.RecordDeath(c.Request.Context(), memberID, dateOfDeath, req.Cause, req.Place, req.Note)
	if err != nil {
		var memberErr registry.ErrMemberNotFound
		var dupErr benefit.ErrDuplicateDeathRecord
		switch {
		case errors.As(err, &memberErr):
			RespondNotFound(c, memberErr.Error())
		case errors.As(err, &dupErr):
			RespondConflict(c, dupErr.Error())
		default:
			h.logger.Error("Failed to record death", "error", err, "member_id", memberID)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, RecordDeathResponse{
		DeathRecord: mapDeathRecordToResponse(record),
		Benefit:     mapBenefitToResponse(ben),
	})
}

// ReverseDeath handles POST /api/v1/deaths/:id/reverse
func (h *BenefitHandler) ReverseDeath(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid death record ID format")
		return
	}

	var req ReverseDeathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request: "+err.Error())
		return
	}
	actorID, err := uuid.Parse(req.ActorID)
	if err != nil {
		RespondBadRequest(c, "Invalid actor_id format")
		return
	}

	if err := h.benefitService.ReverseDeath(c.Request.Context(), recordID, actorID); err != nil {
		var notFoundErr benefit.ErrDeathRecordNotFound
		var disbursedErr benefit.ErrAlreadyDisbursed
		switch {
		case errors.As(err, &notFoundErr):
			RespondNotFound(c, notFoundErr.Error())
		case errors.As(err, &disbursedErr):
			RespondConflict(c, disbursedErr.Error())
		default:
			h.logger.Error("Failed to reverse death record", "error", err, "death_record_id", recordID)
			RespondInternalError(c)
		}
		return
	}

	RespondNoContent(c)
}

// DisburseBenefit handles POST /api/v1/benefits/:id/disburse
func (h *BenefitHandler) DisburseBenefit(c *gin.Context) {
	benefitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid benefit ID format")
		return
	}

	var req DisburseBenefitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request: "+err.Error())
		return
	}
	actorID, err := uuid.Parse(req.ActorID)
	if err != nil {
		RespondBadRequest(c, "Invalid actor_id format")
		return
	}

	disbursedAt := time.Now()
	if req.DisbursedAt != "" {
		disbursedAt, err = time.Parse(time.RFC3339, req.DisbursedAt)
		if err != nil {
			RespondBadRequest(c, "Invalid disbursed_at, expected RFC3339: "+req.DisbursedAt)
			return
		}
	}

	ben, err := h.benefitService.Disburse(c.Request.Context(), benefitID, actorID, disbursedAt, req.Method, req.Recipient, req.Note)
	if err != nil {
		var notFoundErr benefit.ErrBenefitNotFound
		var disbursedErr benefit.ErrAlreadyDisbursed
		var fundsErr benefit.ErrInsufficientFunds
		switch {
		case errors.As(err, &notFoundErr):
			RespondNotFound(c, notFoundErr.Error())
		case errors.As(err, &disbursedErr):
			RespondConflict(c, disbursedErr.Error())
		case errors.As(err, &fundsErr):
			RespondConflict(c, fundsErr.Error())
		default:
			h.logger.Error("Failed to disburse benefit", "error", err, "benefit_id", benefitID)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, mapBenefitToResponse(ben))
}

// GetBenefit handles GET /api/v1/benefits/:id
func (h *BenefitHandler) GetBenefit(c *gin.Context) {
	benefitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid benefit ID format")
		return
	}

	ben, err := h.benefitService.GetBenefit(c.Request.Context(), benefitID)
	if err != nil {
		var notFoundErr benefit.ErrBenefitNotFound
		if errors.As(err, &notFoundErr) {
			RespondNotFound(c, notFoundErr.Error())
			return
		}
		h.logger.Error("Failed to get benefit", "error", err, "benefit_id", benefitID)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapBenefitToResponse(ben))
}

// GetDeathRecord handles GET /api/v1/deaths/:id
func (h *BenefitHandler) GetDeathRecord(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid death record ID format")
		return
	}

	record, err := h.benefitService.GetDeathRecord(c.Request.Context(), recordID)
	if err != nil {
		var notFoundErr benefit.ErrDeathRecordNotFound
		if errors.As(err, &notFoundErr) {
			RespondNotFound(c, notFoundErr.Error())
			return
		}
		h.logger.Error("Failed to get death record", "error", err, "death_record_id", recordID)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapDeathRecordToResponse(record))
}

// ListBenefits handles GET /api/v1/benefits
func (h *BenefitHandler) ListBenefits(c *gin.Context) {
	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	benefits, total, err := h.benefitService.ListBenefits(c.Request.Context(), params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list benefits", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]BenefitResponse, 0, len(benefits))
	for _, b := range benefits {
		responses = append(responses, mapBenefitToResponse(b))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, params.Page, params.PerPage, int(total))
}

func mapDeathRecordToResponse(r *benefit.DeathRecord) DeathRecordResponse {
	return DeathRecordResponse{
		ID:              r.ID.String(),
		MemberID:        r.MemberID.String(),
		HouseholdKey:    r.HouseholdKey,
		DateOfDeath:     r.DateOfDeath.Format(dateLayout),
		Cause:           r.Cause,
		Place:           r.Place,
		Note:            r.Note,
		OutstandingDues: r.OutstandingDues,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}
}

func mapBenefitToResponse(b *benefit.Benefit) BenefitResponse {
	resp := BenefitResponse{
		ID:            b.ID.String(),
		DeathRecordID: b.DeathRecordID.String(),
		MemberID:      b.MemberID.String(),
		BaseAmount:    b.BaseAmount,
		DuesDeduction: b.DuesDeduction,
		FinalAmount:   b.FinalAmount,
		Status:        string(b.Status),
		Method:        b.Method,
		Recipient:     b.Recipient,
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     b.UpdatedAt.Format(time.RFC3339),
	}
	if b.DisbursedAt != nil {
		resp.DisbursedAt = b.DisbursedAt.Format(time.RFC3339)
	}
	return resp
}
