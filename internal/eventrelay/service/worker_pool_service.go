package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mutualaid-ledger/internal/domain/event"
	"github.com/panjf2000/ants/v2"
)

// WorkerPoolArchiveService implements the ArchiveService interface on top of
// a bounded worker pool, so a burst of consumed events cannot exhaust archive
// connections.
type WorkerPoolArchiveService struct {
	baseService ArchiveService
	pool        *ants.Pool
	logger      *slog.Logger
	// Protects access to the results map
	mu      sync.Mutex
	results map[string]chan error
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolArchiveService(
	baseService ArchiveService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolArchiveService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolArchiveService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
		results:     make(map[string]chan error),
	}, nil
}

// ArchiveEvent submits an event to the worker pool for archiving.
func (s *WorkerPoolArchiveService) ArchiveEvent(ctx context.Context, evt *event.Event) error {
	s.logger.Debug("Submitting event to worker pool",
		"event_id", evt.ID.String(),
		"event_type", evt.Type,
	)

	// Create a channel to receive the result of the archive operation
	resultChan := make(chan error, 1)

	eventID := evt.ID.String()
	s.mu.Lock()
	s.results[eventID] = resultChan
	s.mu.Unlock()

	// Copy the event to avoid data races
	eventCopy := *evt

	err := s.pool.Submit(func() {
		err := s.baseService.ArchiveEvent(ctx, &eventCopy)

		resultChan <- err

		s.mu.Lock()
		delete(s.results, eventID)
		close(resultChan)
		s.mu.Unlock()
	})

	if err != nil {
		// If we couldn't submit the task to the pool, remove the result channel
		s.mu.Lock()
		delete(s.results, eventID)
		close(resultChan)
		s.mu.Unlock()

		s.logger.Error("Failed to submit event to worker pool",
			"event_id", eventID,
			"error", err,
		)
		return err
	}

	// Wait for the result from the worker
	return <-resultChan
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolArchiveService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolArchiveService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolArchiveService) Capacity() int {
	return s.pool.Cap()
}
