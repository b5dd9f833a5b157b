package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mutualaid-ledger/internal/config"
	"github.com/mutualaid-ledger/internal/domain/bill"
	"github.com/mutualaid-ledger/internal/domain/event"
	"github.com/mutualaid-ledger/internal/domain/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newBillingService(billRepo *MockBillRepository, paymentRepo *MockPaymentRepository, outboxRepo *MockOutboxRepository, registryReader *MockRegistryReader) BillingService {
	return NewBillingService(
		newTestLogger(),
		&fakeTxRunner{},
		billRepo,
		paymentRepo,
		outboxRepo,
		registryReader,
		config.DuesConfig{UnitAmount: 50000},
	)
}

func TestBillingServiceImpl_GeneratePeriod(t *testing.T) {
	ctx := context.Background()
	dueDate := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

	t.Run("BillsEveryHousehold", func(t *testing.T) {
		billRepo := new(MockBillRepository)
		outboxRepo := new(MockOutboxRepository)
		svc := newBillingService(billRepo, new(MockPaymentRepository), outboxRepo, new(MockRegistryReader))

		billRepo.On("CreateIgnoreDuplicate", ctx, mock.AnythingOfType("*bill.Bill")).Return(true, nil).Times(3)
		outboxRepo.On("Create", ctx, mock.AnythingOfType("*event.Message")).Return(nil).Times(3)

		created, err := svc.GeneratePeriod(ctx, "2026-09", 0, dueDate, []string{"RT03-001", "RT03-002", "RT03-003"})

		assert.NoError(t, err)
		assert.Equal(t, 3, created)
		billRepo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("RerunSkipsExistingBills", func(t *testing.T) {
		billRepo := new(MockBillRepository)
		outboxRepo := new(MockOutboxRepository)
		svc := newBillingService(billRepo, new(MockPaymentRepository), outboxRepo, new(MockRegistryReader))

		// First household already billed, second is new
		billRepo.On("CreateIgnoreDuplicate", ctx, mock.MatchedBy(func(b *bill.Bill) bool {
			return b.HouseholdKey == "RT03-001"
		})).Return(false, nil).Once()
		billRepo.On("CreateIgnoreDuplicate", ctx, mock.MatchedBy(func(b *bill.Bill) bool {
			return b.HouseholdKey == "RT03-002"
		})).Return(true, nil).Once()
		outboxRepo.On("Create", ctx, mock.AnythingOfType("*event.Message")).Return(nil).Once()

		created, err := svc.GeneratePeriod(ctx, "2026-09", 0, dueDate, []string{"RT03-001", "RT03-002"})

		assert.NoError(t, err)
		assert.Equal(t, 1, created)
		billRepo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("EmptyHouseholdListUsesRegistry", func(t *testing.T) {
		billRepo := new(MockBillRepository)
		outboxRepo := new(MockOutboxRepository)
		registryReader := new(MockRegistryReader)
		svc := newBillingService(billRepo, new(MockPaymentRepository), outboxRepo, registryReader)

		registryReader.On("ActiveHouseholds", ctx).Return([]*registry.Household{
			{Key: "RT03-001", Active: true},
			{Key: "RT03-002", Active: true},
		}, nil).Once()
		billRepo.On("CreateIgnoreDuplicate", ctx, mock.AnythingOfType("*bill.Bill")).Return(true, nil).Times(2)
		outboxRepo.On("Create", ctx, mock.AnythingOfType("*event.Message")).Return(nil).Times(2)

		created, err := svc.GeneratePeriod(ctx, "2026-09", 0, dueDate, nil)

		assert.NoError(t, err)
		assert.Equal(t, 2, created)
		registryReader.AssertExpectations(t)
		billRepo.AssertExpectations(t)
	})

	t.Run("ZeroUnitAmountUsesConfiguredTariff", func(t *testing.T) {
		billRepo := new(MockBillRepository)
		outboxRepo := new(MockOutboxRepository)
		svc := newBillingService(billRepo, new(MockPaymentRepository), outboxRepo, new(MockRegistryReader))

		billRepo.On("CreateIgnoreDuplicate", ctx, mock.MatchedBy(func(b *bill.Bill) bool {
			return b.Amount == 50000
		})).Return(true, nil).Once()
		outboxRepo.On("Create", ctx, mock.AnythingOfType("*event.Message")).Return(nil).Once()

		created, err := svc.GeneratePeriod(ctx, "2026-09", 0, dueDate, []string{"RT03-001"})

		assert.NoError(t, err)
		assert.Equal(t, 1, created)
		billRepo.AssertExpectations(t)
	})

	t.Run("ZeroUnitAmountWithoutConfiguredTariff", func(t *testing.T) {
		billRepo := new(MockBillRepository)
		svc := NewBillingService(
			newTestLogger(),
			&fakeTxRunner{},
			billRepo,
			new(MockPaymentRepository),
			new(MockOutboxRepository),
			new(MockRegistryReader),
			config.DuesConfig{},
		)

		created, err := svc.GeneratePeriod(ctx, "2026-09", 0, dueDate, []string{"RT03-001"})

		assert.Zero(t, created)
		var amountErr bill.ErrInvalidUnitAmount
		assert.ErrorAs(t, err, &amountErr)
		billRepo.AssertNotCalled(t, "CreateIgnoreDuplicate", mock.Anything, mock.Anything)
	})

	t.Run("NegativeUnitAmount", func(t *testing.T) {
		billRepo := new(MockBillRepository)
		svc := newBillingService(billRepo, new(MockPaymentRepository), new(MockOutboxRepository), new(MockRegistryReader))

		created, err := svc.GeneratePeriod(ctx, "2026-09", -1, dueDate, []string{"RT03-001"})

		assert.Zero(t, created)
		var amountErr bill.ErrInvalidUnitAmount
		assert.ErrorAs(t, err, &amountErr)
		assert.Equal(t, int64(-1), amountErr.Amount)
		billRepo.AssertNotCalled(t, "CreateIgnoreDuplicate", mock.Anything, mock.Anything)
	})

	t.Run("MalformedPeriod", func(t *testing.T) {
		svc := newBillingService(new(MockBillRepository), new(MockPaymentRepository), new(MockOutboxRepository), new(MockRegistryReader))

		_, err := svc.GeneratePeriod(ctx, "2026-13", 0, dueDate, []string{"RT03-001"})

		var periodErr bill.ErrInvalidPeriod
		assert.ErrorAs(t, err, &periodErr)
	})
}

func TestBillingServiceImpl_CreateManual(t *testing.T) {
	ctx := context.Background()
	dueDate := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		billRepo := new(MockBillRepository)
		outboxRepo := new(MockOutboxRepository)
		svc := newBillingService(billRepo, new(MockPaymentRepository), outboxRepo, new(MockRegistryReader))

		billRepo.On("Create", ctx, mock.AnythingOfType("*bill.Bill")).Return(nil).Once()
		outboxRepo.On("Create", ctx, mock.MatchedBy(func(m *event.Message) bool {
			return m.EventType == event.TypeBillCreated
		})).Return(nil).Once()

		b, err := svc.CreateManual(ctx, "RT03-017", "2026-09", 50000, dueDate)

		assert.NoError(t, err)
		assert.Equal(t, "RT03-017", b.HouseholdKey)
		assert.Equal(t, bill.StatusUnpaid, b.Status)
		billRepo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("DuplicatePeriod", func(t *testing.T) {
		billRepo := new(MockBillRepository)
		svc := newBillingService(billRepo, new(MockPaymentRepository), new(MockOutboxRepository), new(MockRegistryReader))

		dupErr := bill.ErrDuplicateBill{HouseholdKey: "RT03-017", Period: "2026-09"}
		billRepo.On("Create", ctx, mock.AnythingOfType("*bill.Bill")).Return(dupErr).Once()

		b, err := svc.CreateManual(ctx, "RT03-017", "2026-09", 50000, dueDate)

		assert.Nil(t, b)
		var gotErr bill.ErrDuplicateBill
		assert.ErrorAs(t, err, &gotErr)
		billRepo.AssertExpectations(t)
	})
}

func TestBillingServiceImpl_Delete(t *testing.T) {
	ctx := context.Background()
	billID := uuid.New()

	unpaidBill := func() *bill.Bill {
		return &bill.Bill{ID: billID, HouseholdKey: "RT03-017", Period: "2026-09", Amount: 50000, Status: bill.StatusUnpaid}
	}

	t.Run("DeletesUnpaidBill", func(t *testing.T) {
		billRepo := new(MockBillRepository)
		paymentRepo := new(MockPaymentRepository)
		svc := newBillingService(billRepo, paymentRepo, new(MockOutboxRepository), new(MockRegistryReader))

		billRepo.On("GetByID", ctx, billID).Return(unpaidBill(), nil).Once()
		paymentRepo.On("CountActiveByBill", ctx, billID).Return(int64(0), nil).Once()
		paymentRepo.On("DeleteRejectedByBill", ctx, billID).Return(nil).Once()
		billRepo.On("Delete", ctx, billID).Return(nil).Once()

		err := svc.Delete(ctx, billID)

		assert.NoError(t, err)
		billRepo.AssertExpectations(t)
		paymentRepo.AssertExpectations(t)
	})

	t.Run("ClearsRejectedSubmissionsBeforeDelete", func(t *testing.T) {
		billRepo := new(MockBillRepository)
		paymentRepo := new(MockPaymentRepository)
		svc := newBillingService(billRepo, paymentRepo, new(MockOutboxRepository), new(MockRegistryReader))

		// A bill whose only submission history is rejected rows still counts
		// as having zero active submissions; those rows reference the bill
		// and must be removed or the delete hits the foreign key.
		billRepo.On("GetByID", ctx, billID).Return(unpaidBill(), nil).Once()
		paymentRepo.On("CountActiveByBill", ctx, billID).Return(int64(0), nil).Once()
		paymentRepo.On("DeleteRejectedByBill", ctx, billID).Return(nil).Once()
		billRepo.On("Delete", ctx, billID).Return(nil).Once()

		err := svc.Delete(ctx, billID)

		assert.NoError(t, err)
		paymentRepo.AssertCalled(t, "DeleteRejectedByBill", ctx, billID)
		billRepo.AssertExpectations(t)
		paymentRepo.AssertExpectations(t)
	})

	t.Run("RejectedCleanupFailureAbortsDelete", func(t *testing.T) {
		billRepo := new(MockBillRepository)
		paymentRepo := new(MockPaymentRepository)
		svc := newBillingService(billRepo, paymentRepo, new(MockOutboxRepository), new(MockRegistryReader))

		billRepo.On("GetByID", ctx, billID).Return(unpaidBill(), nil).Once()
		paymentRepo.On("CountActiveByBill", ctx, billID).Return(int64(0), nil).Once()
		paymentRepo.On("DeleteRejectedByBill", ctx, billID).Return(errors.New("db down")).Once()

		err := svc.Delete(ctx, billID)

		assert.Error(t, err)
		billRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("PaidBillBlocked", func(t *testing.T) {
		billRepo := new(MockBillRepository)
		svc := newBillingService(billRepo, new(MockPaymentRepository), new(MockOutboxRepository), new(MockRegistryReader))

		paid := unpaidBill()
		paid.Status = bill.StatusPaid
		billRepo.On("GetByID", ctx, billID).Return(paid, nil).Once()

		err := svc.Delete(ctx, billID)

		var blockedErr bill.ErrBillNotDeletable
		assert.ErrorAs(t, err, &blockedErr)
		billRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("ActiveSubmissionBlocks", func(t *testing.T) {
		billRepo := new(MockBillRepository)
		paymentRepo := new(MockPaymentRepository)
		svc := newBillingService(billRepo, paymentRepo, new(MockOutboxRepository), new(MockRegistryReader))

		billRepo.On("GetByID", ctx, billID).Return(unpaidBill(), nil).Once()
		paymentRepo.On("CountActiveByBill", ctx, billID).Return(int64(1), nil).Once()

		err := svc.Delete(ctx, billID)

		var blockedErr bill.ErrBillNotDeletable
		assert.ErrorAs(t, err, &blockedErr)
		billRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
