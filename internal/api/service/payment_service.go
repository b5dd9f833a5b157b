package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mutualaid-ledger/internal/domain/bill"
	"github.com/mutualaid-ledger/internal/domain/event"
	"github.com/mutualaid-ledger/internal/domain/kas"
	"github.com/mutualaid-ledger/internal/domain/payment"
)

// PaymentServiceImpl implements the PaymentService interface
type PaymentServiceImpl struct {
	db          TxRunner
	billRepo    bill.Repository
	paymentRepo payment.Repository
	ledgerRepo  kas.Repository
	outboxRepo  event.Repository
	logger      *slog.Logger
}

// NewPaymentService creates a new payment workflow service
func NewPaymentService(
	logger *slog.Logger,
	db TxRunner,
	billRepo bill.Repository,
	paymentRepo payment.Repository,
	ledgerRepo kas.Repository,
	outboxRepo event.Repository,
) PaymentService {
	return &PaymentServiceImpl{
		db:          db,
		billRepo:    billRepo,
		paymentRepo: paymentRepo,
		ledgerRepo:  ledgerRepo,
		outboxRepo:  outboxRepo,
		logger:      logger,
	}
}

type paymentEventPayload struct {
	PaymentID    string `json:"payment_id"`
	BillID       string `json:"bill_id"`
	HouseholdKey string `json:"household_key,omitempty"`
	Amount       int64  `json:"amount"`
	Method       string `json:"method,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

// Submit records a collector's payment against an unpaid bill. The insert and
// the bill status flip happen in one transaction; the conditional update on
// bill status is the guard that lets exactly one of two racing collectors
// through.
func (s *PaymentServiceImpl) Submit(ctx context.Context, billID, collectorID uuid.UUID, amount int64, method, evidenceRef, note string) (*payment.Submission, error) {
	sub, err := payment.NewSubmission(billID, collectorID, amount, method, evidenceRef, note)
	if err != nil {
		return nil, err
	}

	err = s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		billRepo := s.billRepo.WithTx(tx)

		flipped, err := billRepo.MarkPendingReview(ctx, billID)
		if err != nil {
			return err
		}
		if !flipped {
			// Distinguish a missing bill from one that is not open
			b, err := billRepo.GetByID(ctx, billID)
			if err != nil {
				return err
			}
			return bill.ErrInvalidBillState{BillID: billID, Status: b.Status}
		}

		if err := s.paymentRepo.WithTx(tx).Create(ctx, sub); err != nil {
			return err
		}

		return stageEvent(ctx, s.outboxRepo.WithTx(tx), event.TypePaymentSubmitted, event.AggregatePayment, sub.ID.String(), paymentEventPayload{
			PaymentID: sub.ID.String(),
			BillID:    billID.String(),
			Amount:    sub.Amount,
			Method:    sub.Method,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment submitted",
		"payment_id", sub.ID.String(),
		"bill_id", billID.String(),
		"amount", sub.Amount,
	)

	return sub, nil
}

// Approve confirms a submission. The submission row lock serializes racing
// admins; the loser sees the updated status. Re-approving an approved
// submission succeeds without touching the ledger again.
func (s *PaymentServiceImpl) Approve(ctx context.Context, paymentID, adminID uuid.UUID) (*payment.Submission, error) {
	var sub *payment.Submission

	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		paymentRepo := s.paymentRepo.WithTx(tx)

		locked, err := paymentRepo.LockForDecision(ctx, paymentID)
		if err != nil {
			return err
		}
		sub = locked

		if sub.Status == payment.StatusApproved {
			return nil // Idempotent: already confirmed, nothing to redo
		}

		if err := sub.Approve(adminID); err != nil {
			return err
		}

		if err := paymentRepo.UpdateDecision(ctx, sub); err != nil {
			return err
		}

		if err := s.billRepo.WithTx(tx).SetStatus(ctx, sub.BillID, bill.StatusPaid); err != nil {
			return err
		}

		entry, err := kas.NewEntry(kas.KindCredit, sub.Amount, "dues payment "+sub.BillID.String(), sub.ID, kas.ReferencePayment, adminID)
		if err != nil {
			return err
		}
		if err := s.ledgerRepo.WithTx(tx).Append(ctx, entry); err != nil {
			return err
		}

		return stageEvent(ctx, s.outboxRepo.WithTx(tx), event.TypePaymentApproved, event.AggregatePayment, sub.ID.String(), paymentEventPayload{
			PaymentID: sub.ID.String(),
			BillID:    sub.BillID.String(),
			Amount:    sub.Amount,
			Method:    sub.Method,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment approved",
		"payment_id", sub.ID.String(),
		"bill_id", sub.BillID.String(),
		"admin_id", adminID.String(),
	)

	return sub, nil
}

// Reject declines a submission and reopens the bill for a fresh submission.
// Rejection never touches the ledger.
func (s *PaymentServiceImpl) Reject(ctx context.Context, paymentID, adminID uuid.UUID, reason string) (*payment.Submission, error) {
	var sub *payment.Submission

	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		paymentRepo := s.paymentRepo.WithTx(tx)

		locked, err := paymentRepo.LockForDecision(ctx, paymentID)
		if err != nil {
			return err
		}
		sub = locked

		if err := sub.Reject(adminID, reason); err != nil {
			return err
		}

		if err := paymentRepo.UpdateDecision(ctx, sub); err != nil {
			return err
		}

		if err := s.billRepo.WithTx(tx).SetStatus(ctx, sub.BillID, bill.StatusUnpaid); err != nil {
			return err
		}

		return stageEvent(ctx, s.outboxRepo.WithTx(tx), event.TypePaymentRejected, event.AggregatePayment, sub.ID.String(), paymentEventPayload{
			PaymentID: sub.ID.String(),
			BillID:    sub.BillID.String(),
			Amount:    sub.Amount,
			Reason:    reason,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment rejected",
		"payment_id", sub.ID.String(),
		"bill_id", sub.BillID.String(),
		"admin_id", adminID.String(),
		"reason", reason,
	)

	return sub, nil
}

// GetSubmission retrieves a submission by ID
func (s *PaymentServiceImpl) GetSubmission(ctx context.Context, id uuid.UUID) (*payment.Submission, error) {
	return s.paymentRepo.GetByID(ctx, id)
}

// ListPending retrieves the admin review queue with the total pending count
func (s *PaymentServiceImpl) ListPending(ctx context.Context, page, perPage int) ([]*payment.Submission, int64, error) {
	offset := (page - 1) * perPage

	submissions, err := s.paymentRepo.ListPending(ctx, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.paymentRepo.CountPending(ctx)
	if err != nil {
		return nil, 0, err
	}

	return submissions, count, nil
}

// ListByBill retrieves all submissions against a bill
func (s *PaymentServiceImpl) ListByBill(ctx context.Context, billID uuid.UUID) ([]*payment.Submission, error) {
	return s.paymentRepo.ListByBill(ctx, billID)
}
