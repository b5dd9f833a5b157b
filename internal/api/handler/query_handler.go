package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mutualaid-ledger/internal/api/service"
	"github.com/mutualaid-ledger/internal/domain/event"
	"github.com/mutualaid-ledger/internal/domain/kas"
)

// QueryHandler handles read-only reporting HTTP requests
type QueryHandler struct {
	queryService service.QueryService
	logger       *slog.Logger
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(queryService service.QueryService, logger *slog.Logger) *QueryHandler {
	return &QueryHandler{
		queryService: queryService,
		logger:       logger,
	}
}

// GetHouseholdStatement handles GET /api/v1/households/:key/bills
func (h *QueryHandler) GetHouseholdStatement(c *gin.Context) {
	householdKey := c.Param("key")
	if householdKey == "" {
		RespondBadRequest(c, "Household key is required")
		return
	}

	statement, err := h.queryService.HouseholdStatement(c.Request.Context(), householdKey)
	if err != nil {
		h.logger.Error("Failed to build household statement", "error", err, "household_key", householdKey)
		RespondInternalError(c)
		return
	}

	bills := make([]BillResponse, 0, len(statement.Bills))
	for _, b := range statement.Bills {
		bills = append(bills, mapBillToResponse(b))
	}

	RespondOK(c, StatementResponse{
		HouseholdKey:     statement.HouseholdKey,
		Bills:            bills,
		OutstandingTotal: statement.OutstandingTotal,
	})
}

// GetBalance handles GET /api/v1/ledger/balance
func (h *QueryHandler) GetBalance(c *gin.Context) {
	balance, err := h.queryService.Balance(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get ledger balance", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, BalanceResponse{Balance: balance})
}

// ListLedgerEntries handles GET /api/v1/ledger
func (h *QueryHandler) ListLedgerEntries(c *gin.Context) {
	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	entries, total, err := h.queryService.LedgerEntries(c.Request.Context(), params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list ledger entries", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, mapLedgerEntryToResponse(e))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, params.Page, params.PerPage, int(total))
}

// ListAggregateEvents handles GET /api/v1/events
func (h *QueryHandler) ListAggregateEvents(c *gin.Context) {
	var params ListEventsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid event history parameters: "+err.Error())
		return
	}

	events, total, err := h.queryService.AggregateEvents(c.Request.Context(), params.AggregateType, params.AggregateID, params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list archived events",
			"error", err,
			"aggregate_type", params.AggregateType,
			"aggregate_id", params.AggregateID,
		)
		RespondInternalError(c)
		return
	}

	responses := make([]ArchivedEventResponse, 0, len(events))
	for _, e := range events {
		responses = append(responses, mapArchivedEventToResponse(e))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, params.Page, params.PerPage, int(total))
}

func mapArchivedEventToResponse(e *event.ArchivedEvent) ArchivedEventResponse {
	return ArchivedEventResponse{
		EventID:       e.EventID.String(),
		Type:          e.Type,
		AggregateType: e.AggregateType,
		AggregateID:   e.AggregateID,
		Payload:       json.RawMessage(e.Payload),
		OccurredAt:    e.OccurredAt.Format(time.RFC3339),
	}
}

func mapLedgerEntryToResponse(e *kas.Entry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:            e.ID.String(),
		Kind:          string(e.Kind),
		Amount:        e.Amount,
		Memo:          e.Memo,
		ReferenceID:   e.ReferenceID.String(),
		ReferenceType: e.ReferenceType,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
		CreatedBy:     e.CreatedBy.String(),
	}
}
