package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quickspend/internal/amqp"
	"quickspend/internal/cache"
	"quickspend/internal/core"
	"quickspend/internal/log"
	"quickspend/internal/sheets"
	"quickspend/internal/storage"
)

// ExpenseReader loads a stored expense by ID.
type ExpenseReader interface {
	Get(ctx context.Context, id int64) (core.Expense, error)
}

// Redelivered events for recently mirrored IDs are acked without a new row.
const (
	recentSize = 1024
	recentTTL  = time.Hour
)

// MirrorWorker copies newly created expenses into a spreadsheet.
type MirrorWorker struct {
	expenses ExpenseReader
	sheet    sheets.ExpenseAppender
	recent   cache.Cache[int64, string]
	logger   *log.Logger
}

func NewMirrorWorker(expenses ExpenseReader, sheet sheets.ExpenseAppender, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &MirrorWorker{
		expenses: expenses,
		sheet:    sheet,
		recent:   cache.NewLRU[int64, string](recentSize, recentTTL),
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleCreated processes a single expense.created message. A returned error
// asks the consumer to requeue the message.
func (w *MirrorWorker) HandleCreated(ctx context.Context, msg *amqp.ExpenseCreatedMessage) error {
	start := time.Now()

	if ref, ok := w.recent.Get(msg.ID); ok {
		w.logger.DebugContext(ctx, "Expense already mirrored", log.FieldExpenseID, msg.ID, "row_ref", ref)
		return nil
	}

	e, err := w.expenses.Get(ctx, msg.ID)
	if errors.Is(err, storage.ErrNotFound) {
		// Acked: a missing record never appears later.
		w.logger.WarnContext(ctx, "Skipping expense.created for unknown expense",
			log.FieldExpenseID, msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get expense %d: %w", msg.ID, err)
	}

	ref, err := w.sheet.Append(ctx, e)
	if err != nil {
		w.logger.LogError(ctx, "Failed to append expense to sheet", err, log.OpAppend,
			log.NewFields().WithExpense(e.ID, e.Amount.Cents, e.Category, e.Date))
		return fmt.Errorf("append expense %d: %w", msg.ID, err)
	}
	w.recent.Set(e.ID, ref)

	w.logger.InfoContext(ctx, "Mirrored expense to sheet",
		log.NewFields().
			WithOperation(log.OpAppend).
			WithExpense(e.ID, e.Amount.Cents, e.Category, e.Date).
			ToSlice()...,
	)
	w.logger.DebugContext(ctx, "Mirror details",
		"row_ref", ref,
		log.FieldDurationHuman, time.Since(start).String(),
		"event_timestamp", msg.Timestamp)
	return nil
}

// Run consumes expense.created events until ctx is cancelled.
func (w *MirrorWorker) Run(ctx context.Context, consumer *amqp.Client) error {
	w.logger.InfoContext(ctx, "Mirror worker started", log.FieldOperation, log.OpConsume)
	err := consumer.ConsumeExpenseCreated(ctx, w.HandleCreated)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
