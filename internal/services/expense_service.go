package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"quickspend/internal/core"
	"quickspend/internal/log"
)

// Repository is the storage the service persists to.
type Repository interface {
	Insert(ctx context.Context, d core.Draft) (int64, error)
	Get(ctx context.Context, id int64) (core.Expense, error)
	List(ctx context.Context, q core.ListQuery) ([]core.Expense, error)
	Ping(ctx context.Context) error
	Close() error
}

// EventPublisher announces created expenses to other processes.
type EventPublisher interface {
	PublishExpenseCreated(ctx context.Context, id int64) error
}

// ExpenseService validates input, persists it and reads it back.
type ExpenseService struct {
	storage   Repository
	publisher EventPublisher
	now       func() time.Time
}

// Option configures an ExpenseService.
type Option func(*ExpenseService)

// WithPublisher enables expense.created events. A nil publisher disables them.
func WithPublisher(p EventPublisher) Option {
	return func(s *ExpenseService) { s.publisher = p }
}

// WithClock overrides the clock used for created_at.
func WithClock(now func() time.Time) Option {
	return func(s *ExpenseService) { s.now = now }
}

func NewExpenseService(storage Repository, opts ...Option) *ExpenseService {
	s := &ExpenseService{
		storage: storage,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates in, inserts it and returns the stored record.
// The idempotency key is only logged.
func (s *ExpenseService) Create(ctx context.Context, in core.NewExpense, idempotencyKey string) (core.Expense, error) {
	logger := log.FromContext(ctx).WithComponent(log.ComponentExpense)

	draft, err := in.Normalize(s.now())
	if err != nil {
		logger.WarnContext(ctx, "Rejected expense", log.NewFields().
			WithOperation(log.OpValidate).
			WithError(err).ToSlice()...)
		return core.Expense{}, err
	}

	id, err := s.storage.Insert(ctx, draft)
	if err != nil {
		return core.Expense{}, &core.PersistenceError{Op: "insert", Err: err}
	}

	e, err := s.storage.Get(ctx, id)
	if err != nil {
		return core.Expense{}, &core.PersistenceError{Op: "read back", Err: err}
	}

	fields := log.NewFields().
		WithOperation(log.OpCreate).
		WithExpense(e.ID, e.Amount.Cents, e.Category, e.Date)
	if idempotencyKey != "" {
		fields[log.FieldIdempotencyKey] = idempotencyKey
	}
	logger.InfoContext(ctx, "Expense saved", fields.ToSlice()...)

	// Publishing is best effort: the record is already durable.
	if err := s.publishCreated(ctx, e.ID); err != nil {
		logger.LogError(ctx, "Failed to publish expense.created", err, log.OpPublish,
			log.NewFields().WithExpense(e.ID, e.Amount.Cents, e.Category, e.Date))
	}

	return e, nil
}

// List returns the records matching q. It never returns a nil slice on success.
func (s *ExpenseService) List(ctx context.Context, q core.ListQuery) ([]core.Expense, error) {
	expenses, err := s.storage.List(ctx, q)
	if err != nil {
		return nil, &core.PersistenceError{Op: "list", Err: err}
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}
	return expenses, nil
}

// Get returns a single record by id.
func (s *ExpenseService) Get(ctx context.Context, id int64) (core.Expense, error) {
	e, err := s.storage.Get(ctx, id)
	if err != nil {
		return core.Expense{}, &core.PersistenceError{Op: "get", Err: err}
	}
	return e, nil
}

// Ping checks that storage is reachable.
func (s *ExpenseService) Ping(ctx context.Context) error {
	return s.storage.Ping(ctx)
}

func (s *ExpenseService) publishCreated(ctx context.Context, id int64) error {
	if s.publisher == nil {
		return nil
	}
	return s.publisher.PublishExpenseCreated(ctx, id)
}

// Close closes storage and, when it holds a connection, the publisher.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %w", errors.Join(errs...))
	}

	return nil
}
