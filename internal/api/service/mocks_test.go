package service

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mutualaid-ledger/internal/domain/benefit"
	"github.com/mutualaid-ledger/internal/domain/bill"
	"github.com/mutualaid-ledger/internal/domain/event"
	"github.com/mutualaid-ledger/internal/domain/kas"
	"github.com/mutualaid-ledger/internal/domain/payment"
	"github.com/mutualaid-ledger/internal/domain/registry"
	"github.com/stretchr/testify/mock"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// fakeTxRunner runs the transaction function directly. Repository mocks
// return themselves from WithTx, so the services exercise the same code path
// as with a live pool.
type fakeTxRunner struct {
	err error
}

func (f *fakeTxRunner) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) Create(ctx context.Context, b *bill.Bill) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBillRepository) CreateIgnoreDuplicate(ctx context.Context, b *bill.Bill) (bool, error) {
	args := m.Called(ctx, b)
	return args.Bool(0), args.Error(1)
}

func (m *MockBillRepository) GetByID(ctx context.Context, id uuid.UUID) (*bill.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bill.Bill), args.Error(1)
}

func (m *MockBillRepository) ListByHousehold(ctx context.Context, householdKey string) ([]*bill.Bill, error) {
	args := m.Called(ctx, householdKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*bill.Bill), args.Error(1)
}

func (m *MockBillRepository) ListByPeriod(ctx context.Context, period string, limit, offset int) ([]*bill.Bill, error) {
	args := m.Called(ctx, period, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*bill.Bill), args.Error(1)
}

func (m *MockBillRepository) OutstandingTotal(ctx context.Context, householdKey string) (int64, error) {
	args := m.Called(ctx, householdKey)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBillRepository) MarkPendingReview(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockBillRepository) SetStatus(ctx context.Context, id uuid.UUID, status bill.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockBillRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBillRepository) WithTx(tx pgx.Tx) bill.Repository {
	return m
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, s *payment.Submission) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*payment.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Submission), args.Error(1)
}

func (m *MockPaymentRepository) LockForDecision(ctx context.Context, id uuid.UUID) (*payment.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Submission), args.Error(1)
}

func (m *MockPaymentRepository) UpdateDecision(ctx context.Context, s *payment.Submission) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockPaymentRepository) ListPending(ctx context.Context, limit, offset int) ([]*payment.Submission, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Submission), args.Error(1)
}

func (m *MockPaymentRepository) CountPending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) ListByBill(ctx context.Context, billID uuid.UUID) ([]*payment.Submission, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Submission), args.Error(1)
}

func (m *MockPaymentRepository) CountActiveByBill(ctx context.Context, billID uuid.UUID) (int64, error) {
	args := m.Called(ctx, billID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) DeleteRejectedByBill(ctx context.Context, billID uuid.UUID) error {
	args := m.Called(ctx, billID)
	return args.Error(0)
}

func (m *MockPaymentRepository) WithTx(tx pgx.Tx) payment.Repository {
	return m
}

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Append(ctx context.Context, entry *kas.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) Balance(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) List(ctx context.Context, limit, offset int) ([]*kas.Entry, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*kas.Entry), args.Error(1)
}

func (m *MockLedgerRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) AcquireBalanceLock(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockLedgerRepository) WithTx(tx pgx.Tx) kas.Repository {
	return m
}

type MockBenefitRepository struct {
	mock.Mock
}

func (m *MockBenefitRepository) CreateDeathRecord(ctx context.Context, r *benefit.DeathRecord) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockBenefitRepository) GetDeathRecord(ctx context.Context, id uuid.UUID) (*benefit.DeathRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*benefit.DeathRecord), args.Error(1)
}

func (m *MockBenefitRepository) DeleteDeathRecord(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBenefitRepository) CreateBenefit(ctx context.Context, b *benefit.Benefit) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBenefitRepository) GetBenefit(ctx context.Context, id uuid.UUID) (*benefit.Benefit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*benefit.Benefit), args.Error(1)
}

func (m *MockBenefitRepository) GetBenefitByDeathRecord(ctx context.Context, deathRecordID uuid.UUID) (*benefit.Benefit, error) {
	args := m.Called(ctx, deathRecordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*benefit.Benefit), args.Error(1)
}

func (m *MockBenefitRepository) LockBenefit(ctx context.Context, id uuid.UUID) (*benefit.Benefit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*benefit.Benefit), args.Error(1)
}

func (m *MockBenefitRepository) UpdateDisbursement(ctx context.Context, b *benefit.Benefit) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBenefitRepository) DeleteBenefitByDeathRecord(ctx context.Context, deathRecordID uuid.UUID) error {
	args := m.Called(ctx, deathRecordID)
	return args.Error(0)
}

func (m *MockBenefitRepository) ListBenefits(ctx context.Context, limit, offset int) ([]*benefit.Benefit, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*benefit.Benefit), args.Error(1)
}

func (m *MockBenefitRepository) CountBenefits(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBenefitRepository) WithTx(tx pgx.Tx) benefit.Repository {
	return m
}

type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Create(ctx context.Context, message *event.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepository) GetPending(ctx context.Context, limit int) ([]*event.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Message), args.Error(1)
}

func (m *MockOutboxRepository) UpdateStatus(ctx context.Context, id int64, status event.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepository) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) (*event.Message, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Message), args.Error(1)
}

func (m *MockOutboxRepository) WithTx(tx pgx.Tx) event.Repository {
	return m
}

type MockArchiveReader struct {
	mock.Mock
}

func (m *MockArchiveReader) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*event.ArchivedEvent, error) {
	args := m.Called(ctx, aggregateType, aggregateID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.ArchivedEvent), args.Error(1)
}

func (m *MockArchiveReader) CountByAggregate(ctx context.Context, aggregateType, aggregateID string) (int64, error) {
	args := m.Called(ctx, aggregateType, aggregateID)
	return args.Get(0).(int64), args.Error(1)
}

type MockRegistryReader struct {
	mock.Mock
}

func (m *MockRegistryReader) ActiveHouseholds(ctx context.Context) ([]*registry.Household, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*registry.Household), args.Error(1)
}

func (m *MockRegistryReader) GetMember(ctx context.Context, memberID uuid.UUID) (*registry.Member, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Member), args.Error(1)
}

var (
	_ bill.Repository     = (*MockBillRepository)(nil)
	_ payment.Repository  = (*MockPaymentRepository)(nil)
	_ kas.Repository      = (*MockLedgerRepository)(nil)
	_ benefit.Repository  = (*MockBenefitRepository)(nil)
	_ event.Repository    = (*MockOutboxRepository)(nil)
	_ event.ArchiveReader = (*MockArchiveReader)(nil)
	_ registry.Reader     = (*MockRegistryReader)(nil)
)
