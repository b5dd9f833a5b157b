package service

import (
	"context"
	"log/slog"

	"github.com/mutualaid-ledger/internal/domain/bill"
	"github.com/mutualaid-ledger/internal/domain/event"
	"github.com/mutualaid-ledger/internal/domain/kas"
)

// QueryServiceImpl implements the QueryService interface
type QueryServiceImpl struct {
	billRepo   bill.Repository
	ledgerRepo kas.Repository
	archive    event.ArchiveReader
	logger     *slog.Logger
}

// NewQueryService creates a new read-only query service
func NewQueryService(logger *slog.Logger, billRepo bill.Repository, ledgerRepo kas.Repository, archive event.ArchiveReader) QueryService {
	return &QueryServiceImpl{
		billRepo:   billRepo,
		ledgerRepo: ledgerRepo,
		archive:    archive,
		logger:     logger,
	}
}

// HouseholdStatement returns a household's bills with its outstanding total
func (s *QueryServiceImpl) HouseholdStatement(ctx context.Context, householdKey string) (*HouseholdStatement, error) {
	bills, err := s.billRepo.ListByHousehold(ctx, householdKey)
	if err != nil {
		return nil, err
	}

	outstanding, err := s.billRepo.OutstandingTotal(ctx, householdKey)
	if err != nil {
		return nil, err
	}

	return &HouseholdStatement{
		HouseholdKey:     householdKey,
		Bills:            bills,
		OutstandingTotal: outstanding,
	}, nil
}

// Balance returns the current cash balance
func (s *QueryServiceImpl) Balance(ctx context.Context) (int64, error) {
	return s.ledgerRepo.Balance(ctx)
}

// LedgerEntries retrieves paginated ledger entries with the total count
func (s *QueryServiceImpl) LedgerEntries(ctx context.Context, page, perPage int) ([]*kas.Entry, int64, error) {
	offset := (page - 1) * perPage

	entries, err := s.ledgerRepo.List(ctx, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.ledgerRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	return entries, count, nil
}

// AggregateEvents retrieves one aggregate's archived event history with the
// total count. Served from the MongoDB archive, so very recent events may
// still be in flight through the relay.
func (s *QueryServiceImpl) AggregateEvents(ctx context.Context, aggregateType, aggregateID string, page, perPage int) ([]*event.ArchivedEvent, int64, error) {
	offset := (page - 1) * perPage

	events, err := s.archive.GetByAggregate(ctx, aggregateType, aggregateID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.archive.CountByAggregate(ctx, aggregateType, aggregateID)
	if err != nil {
		return nil, 0, err
	}

	return events, count, nil
}
