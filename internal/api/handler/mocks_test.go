package handler

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mutualaid-ledger/internal/api/service"
	"github.com/mutualaid-ledger/internal/domain/benefit"
	"github.com/mutualaid-ledger/internal/domain/bill"
	"github.com/mutualaid-ledger/internal/domain/event"
	"github.com/mutualaid-ledger/internal/domain/kas"
	"github.com/mutualaid-ledger/internal/domain/payment"
	"github.com/stretchr/testify/mock"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	return r
}

type MockBillingService struct {
	mock.Mock
}

func (m *MockBillingService) GeneratePeriod(ctx context.Context, period string, unitAmount int64, dueDate time.Time, householdKeys []string) (int, error) {
	args := m.Called(ctx, period, unitAmount, dueDate, householdKeys)
	return args.Int(0), args.Error(1)
}

func (m *MockBillingService) CreateManual(ctx context.Context, householdKey, period string, amount int64, dueDate time.Time) (*bill.Bill, error) {
	args := m.Called(ctx, householdKey, period, amount, dueDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bill.Bill), args.Error(1)
}

func (m *MockBillingService) GetBill(ctx context.Context, id uuid.UUID) (*bill.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bill.Bill), args.Error(1)
}

func (m *MockBillingService) ListByHousehold(ctx context.Context, householdKey string) ([]*bill.Bill, error) {
	args := m.Called(ctx, householdKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*bill.Bill), args.Error(1)
}

func (m *MockBillingService) ListByPeriod(ctx context.Context, period string, page, perPage int) ([]*bill.Bill, error) {
	args := m.Called(ctx, period, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*bill.Bill), args.Error(1)
}

func (m *MockBillingService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) Submit(ctx context.Context, billID, collectorID uuid.UUID, amount int64, method, evidenceRef, note string) (*payment.Submission, error) {
	args := m.Called(ctx, billID, collectorID, amount, method, evidenceRef, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Submission), args.Error(1)
}

func (m *MockPaymentService) Approve(ctx context.Context, paymentID, adminID uuid.UUID) (*payment.Submission, error) {
	args := m.Called(ctx, paymentID, adminID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Submission), args.Error(1)
}

func (m *MockPaymentService) Reject(ctx context.Context, paymentID, adminID uuid.UUID, reason string) (*payment.Submission, error) {
	args := m.Called(ctx, paymentID, adminID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Submission), args.Error(1)
}

func (m *MockPaymentService) GetSubmission(ctx context.Context, id uuid.UUID) (*payment.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Submission), args.Error(1)
}

func (m *MockPaymentService) ListPending(ctx context.Context, page, perPage int) ([]*payment.Submission, int64, error) {
	args := m.Called(ctx, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*payment.Submission), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentService) ListByBill(ctx context.Context, billID uuid.UUID) ([]*payment.Submission, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Submission), args.Error(1)
}

type MockBenefitService struct {
	mock.Mock
}

func (m *MockBenefitService) RecordDeath(ctx context.Context, memberID uuid.UUID, dateOfDeath time.Time, cause, place, note string) (*benefit.DeathRecord, *benefit.Benefit, error) {
	args := m.Called(ctx, memberID, dateOfDeath, cause, place, note)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*benefit.DeathRecord), args.Get(1).(*benefit.Benefit), args.Error(2)
}

func (m *MockBenefitService) Disburse(ctx context.Context, benefitID, actorID uuid.UUID, disbursedAt time.Time, method, recipient, note string) (*benefit.Benefit, error) {
	args := m.Called(ctx, benefitID, actorID, disbursedAt, method, recipient, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*benefit.Benefit), args.Error(1)
}

func (m *MockBenefitService) ReverseDeath(ctx context.Context, deathRecordID, actorID uuid.UUID) error {
	args := m.Called(ctx, deathRecordID, actorID)
	return args.Error(0)
}

func (m *MockBenefitService) GetBenefit(ctx context.Context, id uuid.UUID) (*benefit.Benefit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*benefit.Benefit), args.Error(1)
}

func (m *MockBenefitService) GetDeathRecord(ctx context.Context, id uuid.UUID) (*benefit.DeathRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*benefit.DeathRecord), args.Error(1)
}

func (m *MockBenefitService) ListBenefits(ctx context.Context, page, perPage int) ([]*benefit.Benefit, int64, error) {
	args := m.Called(ctx, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*benefit.Benefit), args.Get(1).(int64), args.Error(2)
}

type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) HouseholdStatement(ctx context.Context, householdKey string) (*service.HouseholdStatement, error) {
	args := m.Called(ctx, householdKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.HouseholdStatement), args.Error(1)
}

func (m *MockQueryService) Balance(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQueryService) LedgerEntries(ctx context.Context, page, perPage int) ([]*kas.Entry, int64, error) {
	args := m.Called(ctx, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*kas.Entry), args.Get(1).(int64), args.Error(2)
}

func (m *MockQueryService) AggregateEvents(ctx context.Context, aggregateType, aggregateID string, page, perPage int) ([]*event.ArchivedEvent, int64, error) {
	args := m.Called(ctx, aggregateType, aggregateID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*event.ArchivedEvent), args.Get(1).(int64), args.Error(2)
}

var (
	_ service.BillingService = (*MockBillingService)(nil)
	_ service.PaymentService = (*MockPaymentService)(nil)
	_ service.BenefitService = (*MockBenefitService)(nil)
	_ service.QueryService   = (*MockQueryService)(nil)
)
