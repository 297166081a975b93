package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spendlog/internal/amqp"
	"spendlog/internal/core"
	"spendlog/internal/log"
	"spendlog/internal/records"
)

const (
	storeAttempts = 3
	retryBaseWait = 100 * time.Millisecond
)

// EventPublisher publishes expense change events after a successful write.
type EventPublisher interface {
	PublishExpenseChanged(ctx context.Context, id, action string) error
}

// ExpenseService orchestrates expense writes across the store and AMQP
type ExpenseService struct {
	store     records.Store
	publisher EventPublisher
	logger    *log.Logger
	now       func() time.Time
}

func NewExpenseService(store records.Store, publisher EventPublisher, logger *log.Logger) *ExpenseService {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentExpense)
	}
	return &ExpenseService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *ExpenseService) WithClock(now func() time.Time) *ExpenseService {
	s.now = now
	return s
}

// CreateExpense validates and saves an expense, then publishes a change event.
// A publish failure does not fail the request; the expense is already stored.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.ExpenseRecord) (core.ExpenseRecord, error) {
	if e.CreatedAt == "" {
		e.CreatedAt = s.now().UTC().Format("2006-01-02T15:04:05+00:00")
	}
	if err := e.Validate(); err != nil {
		return core.ExpenseRecord{}, err
	}

	var id string
	err := s.withRetry(ctx, func() error {
		var appendErr error
		id, appendErr = s.store.Append(ctx, e)
		return appendErr
	})
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("save expense: %w", err)
	}
	e.ID = id

	s.publishChange(ctx, id, amqp.ActionCreated)

	return e, nil
}

// ListExpenses returns stored expenses, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, limit int) ([]core.ExpenseRecord, error) {
	var out []core.ExpenseRecord
	err := s.withRetry(ctx, func() error {
		var listErr error
		out, listErr = s.store.ListExpenses(ctx, limit)
		return listErr
	})
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return out, nil
}

// UpdateExpense replaces a stored expense and publishes a change event.
func (s *ExpenseService) UpdateExpense(ctx context.Context, e core.ExpenseRecord) error {
	if err := e.Validate(); err != nil {
		return err
	}

	err := s.withRetry(ctx, func() error {
		return s.store.UpdateExpense(ctx, e)
	})
	if err != nil {
		return err
	}

	s.publishChange(ctx, e.ID, amqp.ActionUpdated)

	return nil
}

// DeleteExpense removes a stored expense and publishes a change event.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id string) error {
	err := s.withRetry(ctx, func() error {
		return s.store.DeleteExpense(ctx, id)
	})
	if err != nil {
		return err
	}

	s.publishChange(ctx, id, amqp.ActionDeleted)

	return nil
}

// withRetry runs op up to storeAttempts times with linear backoff.
// records.ErrNotFound is terminal and not retried.
func (s *ExpenseService) withRetry(ctx context.Context, op func() error) error {
	var lastErr error
	for attempt := 0; attempt < storeAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * retryBaseWait):
			}
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, records.ErrNotFound) {
			return lastErr
		}

		s.logger.WarnContext(ctx, "Store operation failed, retrying",
			"attempt", attempt+1,
			"max_attempts", storeAttempts,
			log.FieldError, lastErr.Error())
	}
	return lastErr
}

func (s *ExpenseService) publishChange(ctx context.Context, id, action string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseChanged(ctx, id, action); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish expense change event",
			log.FieldExpenseID, id,
			"action", action,
			log.FieldError, err.Error())
	}
}
