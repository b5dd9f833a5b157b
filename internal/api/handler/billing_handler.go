package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mutualaid-ledger/internal/api/service"
	"github.com/mutualaid-ledger/internal/domain/bill"
)

// dateLayout is the wire format for calendar dates (due dates, death dates)
const dateLayout = "2006-01-02"

func parseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}

// BillingHandler handles bill-related HTTP requests
type BillingHandler struct {
	billingService service.BillingService
	paymentService service.PaymentService
	logger         *slog.Logger
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingService service.BillingService, paymentService service.PaymentService, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
		paymentService: paymentService,
		logger:         logger,
	}
}

// GenerateBills handles POST /api/v1/bills/generate
func (h *BillingHandler) GenerateBills(c *gin.Context) {
	var req GenerateBillsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request: "+err.Error())
		return
	}

	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		RespondBadRequest(c, "Invalid due_date, expected YYYY-MM-DD: "+req.DueDate)
		return
	}

	created, err := h.billingService.GeneratePeriod(c.Request.Context(), req.Period, req.UnitAmount, dueDate, req.HouseholdKeys)
	if err != nil {
		var periodErr bill.ErrInvalidPeriod
		var amountErr bill.ErrInvalidUnitAmount
		switch {
		case errors.As(err, &periodErr):
			RespondUnprocessable(c, periodErr.Error())
		case errors.As(err, &amountErr):
			RespondUnprocessable(c, amountErr.Error())
		default:
			h.logger.Error("Failed to generate bills", "error", err, "period", req.Period)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, GenerateBillsResponse{Period: req.Period, BillsCreated: created})
}

// CreateBill handles POST /api/v1/bills
func (h *BillingHandler) CreateBill(c *gin.Context) {
	var req CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request: "+err.Error())
		return
	}

	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		RespondBadRequest(c, "Invalid due_date, expected YYYY-MM-DD: "+req.DueDate)
		return
	}

	created, err := h.billingService.CreateManual(c.Request.Context(), req.HouseholdKey, req.Period, req.Amount, dueDate)
	if err != nil {
		var dupErr bill.ErrDuplicateBill
		var periodErr bill.ErrInvalidPeriod
		var amountErr bill.ErrInvalidUnitAmount
		switch {
		case errors.As(err, &dupErr):
			RespondConflict(c, dupErr.Error())
		case errors.As(err, &periodErr):
			RespondUnprocessable(c, periodErr.Error())
		case errors.As(err, &amountErr):
			RespondUnprocessable(c, amountErr.Error())
		case errors.Is(err, bill.ErrEmptyHouseholdKey):
			RespondUnprocessable(c, err.Error())
		default:
			h.logger.Error("Failed to create bill", "error", err, "household_key", req.HouseholdKey)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, mapBillToResponse(created))
}

// GetBill handles GET /api/v1/bills/:id
func (h *BillingHandler) GetBill(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid bill ID format")
		return
	}

	b, err := h.billingService.GetBill(c.Request.Context(), id)
	if err != nil {
		var notFoundErr bill.ErrBillNotFound
		if errors.As(err, &notFoundErr) {
			RespondNotFound(c, notFoundErr.Error())
			return
		}
		h.logger.Error("Failed to get bill", "error", err, "bill_id", id)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapBillToResponse(b))
}

// ListBillPayments handles GET /api/v1/bills/:id/payments
func (h *BillingHandler) ListBillPayments(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid bill ID format")
		return
	}

	submissions, err := h.paymentService.ListByBill(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to list bill payments", "error", err, "bill_id", id)
		RespondInternalError(c)
		return
	}

	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, s := range submissions {
		responses = append(responses, mapSubmissionToResponse(s))
	}

	RespondOK(c, responses)
}

// ListPeriodBills handles GET /api/v1/periods/:period/bills
func (h *BillingHandler) ListPeriodBills(c *gin.Context) {
	period := c.Param("period")
	if !bill.ValidPeriod(period) {
		RespondBadRequest(c, "Invalid period, expected YYYY-MM: "+period)
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	bills, err := h.billingService.ListByPeriod(c.Request.Context(), period, params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list period bills", "error", err, "period", period)
		RespondInternalError(c)
		return
	}

	responses := make([]BillResponse, 0, len(bills))
	for _, b := range bills {
		responses = append(responses, mapBillToResponse(b))
	}

	RespondOK(c, responses)
}

// DeleteBill handles DELETE /api/v1/bills/:id
func (h *BillingHandler) DeleteBill(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid bill ID format")
		return
	}

	if err := h.billingService.Delete(c.Request.Context(), id); err != nil {
		var notFoundErr bill.ErrBillNotFound
		var blockedErr bill.ErrBillNotDeletable
		switch {
		case errors.As(err, &notFoundErr):
			RespondNotFound(c, notFoundErr.Error())
		case errors.As(err, &blockedErr):
			RespondConflict(c, blockedErr.Error())
		default:
			h.logger.Error("Failed to delete bill", "error", err, "bill_id", id)
			RespondInternalError(c)
		}
		return
	}

	RespondNoContent(c)
}

func mapBillToResponse(b *bill.Bill) BillResponse {
	return BillResponse{
		ID:           b.ID.String(),
		HouseholdKey: b.HouseholdKey,
		Period:       b.Period,
		Amount:       b.Amount,
		DueDate:      b.DueDate.Format(dateLayout),
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    b.UpdatedAt.Format(time.RFC3339),
	}
}
