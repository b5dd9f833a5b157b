package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mutualaid-ledger/internal/config"
	"github.com/mutualaid-ledger/internal/domain/bill"
	"github.com/mutualaid-ledger/internal/domain/event"
	"github.com/mutualaid-ledger/internal/domain/payment"
	"github.com/mutualaid-ledger/internal/domain/registry"
)

// BillingServiceImpl implements the BillingService interface
type BillingServiceImpl struct {
	db          TxRunner
	billRepo    bill.Repository
	paymentRepo payment.Repository
	outboxRepo  event.Repository
	registry    registry.Reader
	duesCfg     config.DuesConfig
	logger      *slog.Logger
}

// NewBillingService creates a new billing service
func NewBillingService(
	logger *slog.Logger,
	db TxRunner,
	billRepo bill.Repository,
	paymentRepo payment.Repository,
	outboxRepo event.Repository,
	registryReader registry.Reader,
	duesCfg config.DuesConfig,
) BillingService {
	return &BillingServiceImpl{
		db:          db,
		billRepo:    billRepo,
		paymentRepo: paymentRepo,
		outboxRepo:  outboxRepo,
		registry:    registryReader,
		duesCfg:     duesCfg,
		logger:      logger,
	}
}

type billCreatedPayload struct {
	BillID       string `json:"bill_id"`
	HouseholdKey string `json:"household_key"`
	Period       string `json:"period"`
	Amount       int64  `json:"amount"`
}

// GeneratePeriod creates one unpaid bill per household for the period. The
// unique (household_key, period) index plus ON CONFLICT DO NOTHING make the
// run idempotent: retrying after a partial failure only fills the gaps.
func (s *BillingServiceImpl) GeneratePeriod(ctx context.Context, period string, unitAmount int64, dueDate time.Time, householdKeys []string) (int, error) {
	if !bill.ValidPeriod(period) {
		return 0, bill.ErrInvalidPeriod{Period: period}
	}

	if unitAmount == 0 {
		unitAmount = s.duesCfg.UnitAmount
	}
	if unitAmount <= 0 {
		return 0, bill.ErrInvalidUnitAmount{Amount: unitAmount}
	}

	if len(householdKeys) == 0 {
		households, err := s.registry.ActiveHouseholds(ctx)
		if err != nil {
			return 0, err
		}
		householdKeys = make([]string, 0, len(households))
		for _, h := range households {
			householdKeys = append(householdKeys, h.Key)
		}
	}

	created := 0
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		billRepo := s.billRepo.WithTx(tx)
		outboxRepo := s.outboxRepo.WithTx(tx)

		for _, key := range householdKeys {
			b, err := bill.NewBill(key, period, unitAmount, dueDate)
			if err != nil {
				return err
			}

			inserted, err := billRepo.CreateIgnoreDuplicate(ctx, b)
			if err != nil {
				return err
			}
			if !inserted {
				continue
			}
			created++

			err = stageEvent(ctx, outboxRepo, event.TypeBillCreated, event.AggregateBill, b.ID.String(), billCreatedPayload{
				BillID:       b.ID.String(),
				HouseholdKey: b.HouseholdKey,
				Period:       b.Period,
				Amount:       b.Amount,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Generated dues bills",
		"period", period,
		"households", len(householdKeys),
		"created", created,
	)

	return created, nil
}

// CreateManual creates a single bill outside the generation run
func (s *BillingServiceImpl) CreateManual(ctx context.Context, householdKey, period string, amount int64, dueDate time.Time) (*bill.Bill, error) {
	b, err := bill.NewBill(householdKey, period, amount, dueDate)
	if err != nil {
		return nil, err
	}

	err = s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.billRepo.WithTx(tx).Create(ctx, b); err != nil {
			return err
		}
		return stageEvent(ctx, s.outboxRepo.WithTx(tx), event.TypeBillCreated, event.AggregateBill, b.ID.String(), billCreatedPayload{
			BillID:       b.ID.String(),
			HouseholdKey: b.HouseholdKey,
			Period:       b.Period,
			Amount:       b.Amount,
		})
	})
	if err != nil {
		return nil, err
	}

	return b, nil
}

// GetBill retrieves a bill by ID
func (s *BillingServiceImpl) GetBill(ctx context.Context, id uuid.UUID) (*bill.Bill, error) {
	return s.billRepo.GetByID(ctx, id)
}

// ListByHousehold retrieves a household's bills
func (s *BillingServiceImpl) ListByHousehold(ctx context.Context, householdKey string) ([]*bill.Bill, error) {
	return s.billRepo.ListByHousehold(ctx, householdKey)
}

// ListByPeriod retrieves paginated bills for a period
func (s *BillingServiceImpl) ListByPeriod(ctx context.Context, period string, page, perPage int) ([]*bill.Bill, error) {
	if !bill.ValidPeriod(period) {
		return nil, bill.ErrInvalidPeriod{Period: period}
	}
	offset := (page - 1) * perPage
	return s.billRepo.ListByPeriod(ctx, period, perPage, offset)
}

// Delete removes a bill that is still unpaid and has no non-rejected
// submissions. Paid history and bills under review are never deleted.
func (s *BillingServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		billRepo := s.billRepo.WithTx(tx)

		b, err := billRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if b.Status != bill.StatusUnpaid {
			return bill.ErrBillNotDeletable{BillID: id}
		}

		paymentRepo := s.paymentRepo.WithTx(tx)

		active, err := paymentRepo.CountActiveByBill(ctx, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return bill.ErrBillNotDeletable{BillID: id}
		}

		// Rejected submissions reference the bill; clear them so the
		// delete does not trip the foreign key.
		if err := paymentRepo.DeleteRejectedByBill(ctx, id); err != nil {
			return err
		}

		return billRepo.Delete(ctx, id)
	})
}
