package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mutualaid-ledger/internal/config"
	"github.com/mutualaid-ledger/internal/domain/benefit"
	"github.com/mutualaid-ledger/internal/domain/bill"
	"github.com/mutualaid-ledger/internal/domain/event"
	"github.com/mutualaid-ledger/internal/domain/kas"
	"github.com/mutualaid-ledger/internal/domain/registry"
)

// BenefitServiceImpl implements the BenefitService interface
type BenefitServiceImpl struct {
	db          TxRunner
	benefitRepo benefit.Repository
	billRepo    bill.Repository
	ledgerRepo  kas.Repository
	outboxRepo  event.Repository
	registry    registry.Reader
	benefitCfg  config.BenefitConfig
	logger      *slog.Logger
}

// NewBenefitService creates a new benefit workflow service
func NewBenefitService(
	logger *slog.Logger,
	db TxRunner,
	benefitRepo benefit.Repository,
	billRepo bill.Repository,
	ledgerRepo kas.Repository,
	outboxRepo event.Repository,
	registryReader registry.Reader,
	benefitCfg config.BenefitConfig,
) BenefitService {
	return &BenefitServiceImpl{
		db:          db,
		benefitRepo: benefitRepo,
		billRepo:    billRepo,
		ledgerRepo:  ledgerRepo,
		outboxRepo:  outboxRepo,
		registry:    registryReader,
		benefitCfg:  benefitCfg,
		logger:      logger,
	}
}

type deathEventPayload struct {
	DeathRecordID string `json:"death_record_id"`
	BenefitID     string `json:"benefit_id,omitempty"`
	MemberID      string `json:"member_id"`
	HouseholdKey  string `json:"household_key,omitempty"`
	FinalAmount   int64  `json:"final_amount,omitempty"`
}

// RecordDeath registers a member's death. The outstanding dues snapshot is
// read in the same transaction that creates the record, so a payment approved
// concurrently either counts fully or not at all. The snapshot is final; it
// is not adjusted when pending bills resolve later.
func (s *BenefitServiceImpl) RecordDeath(ctx context.Context, memberID uuid.UUID, dateOfDeath time.Time, cause, place, note string) (*benefit.DeathRecord, *benefit.Benefit, error) {
	member, err := s.registry.GetMember(ctx, memberID)
	if err != nil {
		return nil, nil, err
	}

	var (
		rec *benefit.DeathRecord
		ben *benefit.Benefit
	)

	err = s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		outstanding, err := s.billRepo.WithTx(tx).OutstandingTotal(ctx, member.HouseholdKey)
		if err != nil {
			return err
		}

		rec = benefit.NewDeathRecord(memberID, member.HouseholdKey, dateOfDeath, cause, place, note, outstanding)

		benefitRepo := s.benefitRepo.WithTx(tx)
		if err := benefitRepo.CreateDeathRecord(ctx, rec); err != nil {
			return err
		}

		ben = benefit.NewBenefit(rec.ID, memberID, s.benefitCfg.BaseAmount, outstanding)
		if err := benefitRepo.CreateBenefit(ctx, ben); err != nil {
			return err
		}

		return stageEvent(ctx, s.outboxRepo.WithTx(tx), event.TypeDeathRecorded, event.AggregateBenefit, ben.ID.String(), deathEventPayload{
			DeathRecordID: rec.ID.String(),
			BenefitID:     ben.ID.String(),
			MemberID:      memberID.String(),
			HouseholdKey:  member.HouseholdKey,
			FinalAmount:   ben.FinalAmount,
		})
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("Death recorded",
		"death_record_id", rec.ID.String(),
		"member_id", memberID.String(),
		"outstanding_dues", rec.OutstandingDues,
		"final_amount", ben.FinalAmount,
	)

	return rec, ben, nil
}

// Disburse pays out a benefit. The advisory lock serializes the balance check
// with the debit, so two disbursements cannot both be authorized against
// funds only sufficient for one. A zero final amount (dues exceeded the base)
// is recorded as disbursed without a ledger entry.
func (s *BenefitServiceImpl) Disburse(ctx context.Context, benefitID, actorID uuid.UUID, disbursedAt time.Time, method, recipient, note string) (*benefit.Benefit, error) {
	var ben *benefit.Benefit

	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		benefitRepo := s.benefitRepo.WithTx(tx)
		ledgerRepo := s.ledgerRepo.WithTx(tx)

		locked, err := benefitRepo.LockBenefit(ctx, benefitID)
		if err != nil {
			return err
		}
		ben = locked

		if ben.Status == benefit.StatusDisbursed {
			return benefit.ErrAlreadyDisbursed{BenefitID: benefitID}
		}

		if ben.FinalAmount > 0 {
			if err := ledgerRepo.AcquireBalanceLock(ctx); err != nil {
				return err
			}

			balance, err := ledgerRepo.Balance(ctx)
			if err != nil {
				return err
			}
			if balance < ben.FinalAmount {
				return benefit.ErrInsufficientFunds{Balance: balance, Required: ben.FinalAmount}
			}

			memo := "benefit disbursement " + ben.ID.String()
			if note != "" {
				memo = memo + ": " + note
			}
			entry, err := kas.NewEntry(kas.KindDebit, ben.FinalAmount, memo, ben.ID, kas.ReferenceBenefit, actorID)
			if err != nil {
				return err
			}
			if err := ledgerRepo.Append(ctx, entry); err != nil {
				return err
			}
		}

		if err := ben.MarkDisbursed(disbursedAt, method, recipient); err != nil {
			return err
		}
		if err := benefitRepo.UpdateDisbursement(ctx, ben); err != nil {
			return err
		}

		return stageEvent(ctx, s.outboxRepo.WithTx(tx), event.TypeBenefitDisbursed, event.AggregateBenefit, ben.ID.String(), deathEventPayload{
			DeathRecordID: ben.DeathRecordID.String(),
			BenefitID:     ben.ID.String(),
			MemberID:      ben.MemberID.String(),
			FinalAmount:   ben.FinalAmount,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Benefit disbursed",
		"benefit_id", ben.ID.String(),
		"final_amount", ben.FinalAmount,
		"actor_id", actorID.String(),
	)

	return ben, nil
}

// ReverseDeath deletes a mistaken death record and its benefit. Once money
// has moved the record is permanent; a disbursed benefit blocks reversal.
func (s *BenefitServiceImpl) ReverseDeath(ctx context.Context, deathRecordID, actorID uuid.UUID) error {
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		benefitRepo := s.benefitRepo.WithTx(tx)

		rec, err := benefitRepo.GetDeathRecord(ctx, deathRecordID)
		if err != nil {
			return err
		}

		ben, err := benefitRepo.GetBenefitByDeathRecord(ctx, deathRecordID)
		if err != nil {
			return err
		}
		if ben.Status == benefit.StatusDisbursed {
			return benefit.ErrAlreadyDisbursed{BenefitID: ben.ID}
		}

		if err := benefitRepo.DeleteBenefitByDeathRecord(ctx, deathRecordID); err != nil {
			return err
		}
		if err := benefitRepo.DeleteDeathRecord(ctx, deathRecordID); err != nil {
			return err
		}

		return stageEvent(ctx, s.outboxRepo.WithTx(tx), event.TypeDeathReversed, event.AggregateBenefit, ben.ID.String(), deathEventPayload{
			DeathRecordID: deathRecordID.String(),
			BenefitID:     ben.ID.String(),
			MemberID:      rec.MemberID.String(),
			HouseholdKey:  rec.HouseholdKey,
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("Death record reversed",
		"death_record_id", deathRecordID.String(),
		"actor_id", actorID.String(),
	)

	return nil
}

// GetBenefit retrieves a benefit by ID
func (s *BenefitServiceImpl) GetBenefit(ctx context.Context, id uuid.UUID) (*benefit.Benefit, error) {
	return s.benefitRepo.GetBenefit(ctx, id)
}

// GetDeathRecord retrieves a death record by ID
func (s *BenefitServiceImpl) GetDeathRecord(ctx context.Context, id uuid.UUID) (*benefit.DeathRecord, error) {
	return s.benefitRepo.GetDeathRecord(ctx, id)
}

// ListBenefits retrieves paginated benefits with the total count
func (s *BenefitServiceImpl) ListBenefits(ctx context.Context, page, perPage int) ([]*benefit.Benefit, int64, error) {
	offset := (page - 1) * perPage

	benefits, err := s.benefitRepo.ListBenefits(ctx, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.benefitRepo.CountBenefits(ctx)
	if err != nil {
		return nil, 0, err
	}

	return benefits, count, nil
}
