package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mutualaid-ledger/internal/api/service"
	"github.com/mutualaid-ledger/internal/domain/bill"
	"github.com/mutualaid-ledger/internal/domain/payment"
)

// PaymentHandler handles payment submission and review HTTP requests
type PaymentHandler struct {
	paymentService service.PaymentService
	logger         *slog.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService service.PaymentService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// SubmitPayment handles POST /api/v1/payments
func (h *PaymentHandler) SubmitPayment(c *gin.Context) {
	var req SubmitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request: "+err.Error())
		return
	}

	billID, err := uuid.Parse(req.BillID)
	if err != nil {
		RespondBadRequest(c, "Invalid bill_id format")
		return
	}
	collectorID, err := uuid.Parse(req.CollectorID)
	if err != nil {
		RespondBadRequest(c, "Invalid collector_id format")
		return
	}

	submission, err := h.paymentService.Submit(c.Request.Context(), billID, collectorID, req.Amount, req.Method, req.EvidenceRef, req.Note)
	if err != nil {
		var notFoundErr bill.ErrBillNotFound
		var stateErr bill.ErrInvalidBillState
		var dupErr payment.ErrDuplicatePending
		var amountErr payment.ErrInvalidAmount
		switch {
		case errors.As(err, &notFoundErr):
			RespondNotFound(c, notFoundErr.Error())
		case errors.As(err, &stateErr):
			RespondConflict(c, stateErr.Error())
		case errors.As(err, &dupErr):
			RespondConflict(c, dupErr.Error())
		case errors.As(err, &amountErr):
			RespondUnprocessable(c, amountErr.Error())
		case errors.Is(err, payment.ErrEmptyMethod):
			RespondUnprocessable(c, err.Error())
		default:
			h.logger.Error("Failed to submit payment", "error", err, "bill_id", billID)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, mapSubmissionToResponse(submission))
}

// ApprovePayment handles POST /api/v1/payments/:id/approve
func (h *PaymentHandler) ApprovePayment(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid payment ID format")
		return
	}

	var req ApprovePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request: "+err.Error())
		return
	}
	adminID, err := uuid.Parse(req.AdminID)
	if err != nil {
		RespondBadRequest(c, "Invalid admin_id format")
		return
	}

	submission, err := h.paymentService.Approve(c.Request.Context(), paymentID, adminID)
	if err != nil {
		var notFoundErr payment.ErrPaymentNotFound
		var stateErr payment.ErrInvalidState
		switch {
		case errors.As(err, &notFoundErr):
			RespondNotFound(c, notFoundErr.Error())
		case errors.As(err, &stateErr):
			RespondConflict(c, stateErr.Error())
		default:
			h.logger.Error("Failed to approve payment", "error", err, "payment_id", paymentID)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, mapSubmissionToResponse(submission))
}

// RejectPayment handles POST /api/v1/payments/:id/reject
func (h *PaymentHandler) RejectPayment(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid payment ID format")
		return
	}

	var req RejectPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request: "+err.Error())
		return
	}
	adminID, err := uuid.Parse(req.AdminID)
	if err != nil {
		RespondBadRequest(c, "Invalid admin_id format")
		return
	}

	submission, err := h.paymentService.Reject(c.Request.Context(), paymentID, adminID, req.Reason)
	if err != nil {
		var notFoundErr payment.ErrPaymentNotFound
		var stateErr payment.ErrInvalidState
		switch {
		case errors.As(err, &notFoundErr):
			RespondNotFound(c, notFoundErr.Error())
		case errors.As(err, &stateErr):
			RespondConflict(c, stateErr.Error())
		case errors.Is(err, payment.ErrEmptyRejectionReason):
			RespondUnprocessable(c, err.Error())
		default:
			h.logger.Error("Failed to reject payment", "error", err, "payment_id", paymentID)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, mapSubmissionToResponse(submission))
}

// GetPayment handles GET /api/v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid payment ID format")
		return
	}

	submission, err := h.paymentService.GetSubmission(c.Request.Context(), paymentID)
	if err != nil {
		var notFoundErr payment.ErrPaymentNotFound
		if errors.As(err, &notFoundErr) {
			RespondNotFound(c, notFoundErr.Error())
			return
		}
		h.logger.Error("Failed to get payment", "error", err, "payment_id", paymentID)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapSubmissionToResponse(submission))
}

// ListPendingPayments handles GET /api/v1/payments/pending
func (h *PaymentHandler) ListPendingPayments(c *gin.Context) {
	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	submissions, total, err := h.paymentService.ListPending(c.Request.Context(), params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list pending payments", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, s := range submissions {
		responses = append(responses, mapSubmissionToResponse(s))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, params.Page, params.PerPage, int(total))
}

func mapSubmissionToResponse(s *payment.Submission) SubmissionResponse {
	resp := SubmissionResponse{
		ID:              s.ID.String(),
		BillID:          s.BillID.String(),
		CollectorID:     s.CollectorID.String(),
		Amount:          s.Amount,
		Method:          s.Method,
		EvidenceRef:     s.EvidenceRef,
		Note:            s.Note,
		Status:          string(s.Status),
		SubmittedAt:     s.SubmittedAt.Format(time.RFC3339),
		RejectionReason: s.RejectionReason,
	}
	if s.DecidedBy != nil {
		resp.DecidedBy = s.DecidedBy.String()
	}
	if s.DecidedAt != nil {
		resp.DecidedAt = s.DecidedAt.Format(time.RFC3339)
	}
	return resp
}
