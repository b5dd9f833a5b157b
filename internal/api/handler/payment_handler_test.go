package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mutualaid-ledger/internal/domain/bill"
	"github.com/mutualaid-ledger/internal/domain/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPaymentHandler_SubmitPayment(t *testing.T) {
	logger := newTestLogger()

	t.Run("Success", func(t *testing.T) {
		mockPayment := new(MockPaymentService)
		handler := NewPaymentHandler(mockPayment, logger)

		billID := uuid.New()
		collectorID := uuid.New()
		submission := &payment.Submission{
			ID:          uuid.New(),
			BillID:      billID,
			CollectorID: collectorID,
			Amount:      50000,
			Method:      "tunai",
			Status:      payment.StatusPendingReview,
			SubmittedAt: time.Now(),
		}
		mockPayment.On("Submit", mock.Anything, billID, collectorID, int64(50000), "tunai", "", "").Return(submission, nil)

		router := setupTestRouter()
		router.POST("/payments", handler.SubmitPayment)

		reqBody := SubmitPaymentRequest{
			BillID:      billID.String(),
			CollectorID: collectorID.String(),
			Amount:      50000,
			Method:      "tunai",
		}
		jsonBody, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/payments", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var topLevelResponse Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topLevelResponse))
		require.NotNil(t, topLevelResponse.Data)

		var responseBody SubmissionResponse
		dataBytes, _ := json.Marshal(topLevelResponse.Data)
		require.NoError(t, json.Unmarshal(dataBytes, &responseBody))

		assert.Equal(t, submission.ID.String(), responseBody.ID)
		assert.Equal(t, "pending_review", responseBody.Status)
		mockPayment.AssertExpectations(t)
	})

	t.Run("BillAlreadyUnderReview", func(t *testing.T) {
		mockPayment := new(MockPaymentService)
		handler := NewPaymentHandler(mockPayment, logger)

		billID := uuid.New()
		collectorID := uuid.New()
		stateErr := bill.ErrInvalidBillState{BillID: billID, Status: bill.StatusPendingReview}
		mockPayment.On("Submit", mock.Anything, billID, collectorID, int64(50000), "tunai", "", "").Return(nil, stateErr)

		router := setupTestRouter()
		router.POST("/payments", handler.SubmitPayment)

		reqBody := SubmitPaymentRequest{
			BillID:      billID.String(),
			CollectorID: collectorID.String(),
			Amount:      50000,
			Method:      "tunai",
		}
		jsonBody, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/payments", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)

		var response Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		require.NotNil(t, response.Error)
		assert.Equal(t, "CONFLICT", response.Error.Code)
		mockPayment.AssertExpectations(t)
	})

	t.Run("BillNotFound", func(t *testing.T) {
		mockPayment := new(MockPaymentService)
		handler := NewPaymentHandler(mockPayment, logger)

		billID := uuid.New()
		collectorID := uuid.New()
		mockPayment.On("Submit", mock.Anything, billID, collectorID, int64(50000), "tunai", "", "").
			Return(nil, bill.ErrBillNotFound{BillID: billID})

		router := setupTestRouter()
		router.POST("/payments", handler.SubmitPayment)

		reqBody := SubmitPaymentRequest{
			BillID:      billID.String(),
			CollectorID: collectorID.String(),
			Amount:      50000,
			Method:      "tunai",
		}
		jsonBody, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/payments", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockPayment.AssertExpectations(t)
	})

	t.Run("MissingMethod", func(t *testing.T) {
		mockPayment := new(MockPaymentService)
		handler := NewPaymentHandler(mockPayment, logger)

		router := setupTestRouter()
		router.POST("/payments", handler.SubmitPayment)

		reqBody := SubmitPaymentRequest{
			BillID:      uuid.New().String(),
			CollectorID: uuid.New().String(),
			Amount:      50000,
		}
		jsonBody, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/payments", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockPayment.AssertExpectations(t)
	})
}

func TestPaymentHandler_ApprovePayment(t *testing.T) {
	logger := newTestLogger()

	t.Run("Success", func(t *testing.T) {
		mockPayment := new(MockPaymentService)
		handler := NewPaymentHandler(mockPayment, logger)

		paymentID := uuid.New()
		adminID := uuid.New()
		now := time.Now()
		approved := &payment.Submission{
			ID:          paymentID,
			BillID:      uuid.New(),
			CollectorID: uuid.New(),
			Amount:      50000,
			Method:      "tunai",
			Status:      payment.StatusApproved,
			SubmittedAt: now,
			DecidedBy:   &adminID,
			DecidedAt:   &now,
		}
		mockPayment.On("Approve", mock.Anything, paymentID, adminID).Return(approved, nil)

		router := setupTestRouter()
		router.POST("/payments/:id/approve", handler.ApprovePayment)

		jsonBody, _ := json.Marshal(ApprovePaymentRequest{AdminID: adminID.String()})
		req, _ := http.NewRequest(http.MethodPost, "/payments/"+paymentID.String()+"/approve", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var topLevelResponse Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topLevelResponse))

		var responseBody SubmissionResponse
		dataBytes, _ := json.Marshal(topLevelResponse.Data)
		require.NoError(t, json.Unmarshal(dataBytes, &responseBody))

		assert.Equal(t, "approved", responseBody.Status)
		assert.Equal(t, adminID.String(), responseBody.DecidedBy)
		mockPayment.AssertExpectations(t)
	})

	t.Run("AlreadyRejected", func(t *testing.T) {
		mockPayment := new(MockPaymentService)
		handler := NewPaymentHandler(mockPayment, logger)

		paymentID := uuid.New()
		adminID := uuid.New()
		stateErr := payment.ErrInvalidState{PaymentID: paymentID, Status: payment.StatusRejected}
		mockPayment.On("Approve", mock.Anything, paymentID, adminID).Return(nil, stateErr)

		router := setupTestRouter()
		router.POST("/payments/:id/approve", handler.ApprovePayment)

		jsonBody, _ := json.Marshal(ApprovePaymentRequest{AdminID: adminID.String()})
		req, _ := http.NewRequest(http.MethodPost, "/payments/"+paymentID.String()+"/approve", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		mockPayment.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockPayment := new(MockPaymentService)
		handler := NewPaymentHandler(mockPayment, logger)

		paymentID := uuid.New()
		adminID := uuid.New()
		mockPayment.On("Approve", mock.Anything, paymentID, adminID).
			Return(nil, payment.ErrPaymentNotFound{PaymentID: paymentID})

		router := setupTestRouter()
		router.POST("/payments/:id/approve", handler.ApprovePayment)

		jsonBody, _ := json.Marshal(ApprovePaymentRequest{AdminID: adminID.String()})
		req, _ := http.NewRequest(http.MethodPost, "/payments/"+paymentID.String()+"/approve", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockPayment.AssertExpectations(t)
	})
}

func TestPaymentHandler_RejectPayment(t *testing.T) {
	logger := newTestLogger()

	t.Run("Success", func(t *testing.T) {
		mockPayment := new(MockPaymentService)
		handler := NewPaymentHandler(mockPayment, logger)

		paymentID := uuid.New()
		adminID := uuid.New()
		now := time.Now()
		rejected := &payment.Submission{
			ID:              paymentID,
			BillID:          uuid.New(),
			CollectorID:     uuid.New(),
			Amount:          50000,
			Method:          "tunai",
			Status:          payment.StatusRejected,
			SubmittedAt:     now,
			DecidedBy:       &adminID,
			DecidedAt:       &now,
			RejectionReason: "amount does not match receipt",
		}
		mockPayment.On("Reject", mock.Anything, paymentID, adminID, "amount does not match receipt").Return(rejected, nil)

		router := setupTestRouter()
		router.POST("/payments/:id/reject", handler.RejectPayment)

		jsonBody, _ := json.Marshal(RejectPaymentRequest{AdminID: adminID.String(), Reason: "amount does not match receipt"})
		req, _ := http.NewRequest(http.MethodPost, "/payments/"+paymentID.String()+"/reject", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var topLevelResponse Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topLevelResponse))

		var responseBody SubmissionResponse
		dataBytes, _ := json.Marshal(topLevelResponse.Data)
		require.NoError(t, json.Unmarshal(dataBytes, &responseBody))

		assert.Equal(t, "rejected", responseBody.Status)
		assert.Equal(t, "amount does not match receipt", responseBody.RejectionReason)
		mockPayment.AssertExpectations(t)
	})

	t.Run("MissingReason", func(t *testing.T) {
		mockPayment := new(MockPaymentService)
		handler := NewPaymentHandler(mockPayment, logger)

		router := setupTestRouter()
		router.POST("/payments/:id/reject", handler.RejectPayment)

		jsonBody, _ := json.Marshal(RejectPaymentRequest{AdminID: uuid.New().String()})
		req, _ := http.NewRequest(http.MethodPost, "/payments/"+uuid.New().String()+"/reject", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockPayment.AssertExpectations(t)
	})
}

func TestPaymentHandler_ListPendingPayments(t *testing.T) {
	logger := newTestLogger()

	t.Run("Success", func(t *testing.T) {
		mockPayment := new(MockPaymentService)
		handler := NewPaymentHandler(mockPayment, logger)

		submissions := []*payment.Submission{
			{ID: uuid.New(), BillID: uuid.New(), CollectorID: uuid.New(), Amount: 50000, Method: "tunai", Status: payment.StatusPendingReview, SubmittedAt: time.Now()},
			{ID: uuid.New(), BillID: uuid.New(), CollectorID: uuid.New(), Amount: 50000, Method: "transfer", Status: payment.StatusPendingReview, SubmittedAt: time.Now()},
		}
		mockPayment.On("ListPending", mock.Anything, 1, 10).Return(submissions, int64(25), nil)

		router := setupTestRouter()
		router.GET("/payments/pending", handler.ListPendingPayments)

		req, _ := http.NewRequest(http.MethodGet, "/payments/pending", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var response Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		require.NotNil(t, response.Meta)
		assert.Equal(t, 1, response.Meta.Page)
		assert.Equal(t, 10, response.Meta.PerPage)
		assert.Equal(t, 25, response.Meta.TotalItems)
		assert.Equal(t, 3, response.Meta.TotalPages)
		mockPayment.AssertExpectations(t)
	})

	t.Run("InvalidPage", func(t *testing.T) {
		mockPayment := new(MockPaymentService)
		handler := NewPaymentHandler(mockPayment, logger)

		router := setupTestRouter()
		router.GET("/payments/pending", handler.ListPendingPayments)

		req, _ := http.NewRequest(http.MethodGet, "/payments/pending?page=0", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockPayment.AssertExpectations(t)
	})
}
