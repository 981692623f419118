// Package submit sends create-expense submissions so that a retry after a
// failure or a restart reuses the same idempotency token.
package submit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"quickspend/internal/client"
	"quickspend/internal/core"
)

// Status lines shown to the user.
const (
	StatusSaving     = "Saving…"
	StatusSaved      = "Saved."
	StatusFailed     = "Failed to save expense. You can retry; duplicates are avoided."
	StatusIncomplete = "Amount, category and date are required."
	StatusResuming   = "Finishing a previous submission…"
)

var (
	// ErrIncomplete means amount, category or date was left empty.
	ErrIncomplete = errors.New("amount, category and date are required")
	// ErrInFlight means another send has not finished yet.
	ErrInFlight = errors.New("a submission is already in flight")
)

// Creator sends a create request. *client.Client satisfies it.
type Creator interface {
	Create(ctx context.Context, in core.NewExpense, idempotencyKey string) (core.Expense, error)
}

// Result is what the form shows after a Submit or Resume.
type Result struct {
	Form    core.NewExpense
	Status  string
	Expense *core.Expense
}

// Submitter runs the submission state machine over one MarkerStore slot.
type Submitter struct {
	store    MarkerStore
	api      Creator
	newToken func() string
	now      func() time.Time
	onSaved  func(core.Expense)

	mu       sync.Mutex
	inFlight bool
}

// Option configures a Submitter.
type Option func(*Submitter)

// WithOnSaved registers a hook called after every confirmed save.
func WithOnSaved(fn func(core.Expense)) Option {
	return func(s *Submitter) { s.onSaved = fn }
}

// WithClock overrides the clock used for the reset form's date.
func WithClock(now func() time.Time) Option {
	return func(s *Submitter) { s.now = now }
}

// WithTokenSource overrides idempotency token generation.
func WithTokenSource(fn func() string) Option {
	return func(s *Submitter) { s.newToken = fn }
}

func NewSubmitter(store MarkerStore, api Creator, opts ...Option) *Submitter {
	s := &Submitter{
		store:    store,
		api:      api,
		newToken: uuid.NewString,
		now:      time.Now,
		onSaved:  func(core.Expense) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit sends form. An unchanged retry of the pending submission reuses its
// token; anything else replaces the marker with a fresh token first.
func (s *Submitter) Submit(ctx context.Context, form core.NewExpense) (Result, error) {
	payload := core.NewExpense{
		Amount:      form.Amount,
		Category:    strings.TrimSpace(form.Category),
		Description: strings.TrimSpace(form.Description),
		Date:        form.Date,
	}
	if payload.Incomplete() {
		return Result{Form: form, Status: StatusIncomplete}, ErrIncomplete
	}

	if !s.begin() {
		return Result{Form: form, Status: StatusSaving}, ErrInFlight
	}
	defer s.end()

	pending, err := s.store.Load()
	if err != nil {
		return Result{Form: form, Status: StatusFailed}, err
	}

	var key string
	if pending != nil && pending.Payload.Equal(payload) {
		key = pending.IdempotencyKey
	} else {
		key = s.newToken()
		if err := s.store.Save(Marker{Payload: payload, IdempotencyKey: key}); err != nil {
			return Result{Form: form, Status: StatusFailed}, fmt.Errorf("save pending marker: %w", err)
		}
	}

	return s.send(ctx, payload, key, form)
}

// Resume re-sends a pending submission with its stored token. It reports
// false when there was nothing to resume.
func (s *Submitter) Resume(ctx context.Context) (Result, bool, error) {
	if !s.begin() {
		return Result{Status: StatusSaving}, false, ErrInFlight
	}
	defer s.end()

	pending, err := s.store.Load()
	if err != nil {
		return Result{}, false, err
	}
	if pending == nil {
		return Result{}, false, nil
	}

	res, err := s.send(ctx, pending.Payload, pending.IdempotencyKey, pending.Payload)
	return res, true, err
}

// Pending returns the stored marker, if any.
func (s *Submitter) Pending() (*Marker, error) {
	return s.store.Load()
}

func (s *Submitter) send(ctx context.Context, payload core.NewExpense, key string, form core.NewExpense) (Result, error) {
	e, err := s.api.Create(ctx, payload, key)
	if err != nil {
		var ne *client.NetworkError
		if !errors.As(err, &ne) {
			ne = &client.NetworkError{Op: "create expense", Err: err}
		}
		return Result{Form: form, Status: StatusFailed}, ne
	}

	res := Result{
		Form:    core.NewExpense{Date: s.today()},
		Status:  StatusSaved,
		Expense: &e,
	}
	s.onSaved(e)

	if err := s.store.Clear(); err != nil {
		return res, fmt.Errorf("clear pending marker: %w", err)
	}
	return res, nil
}

func (s *Submitter) today() string {
	return s.now().UTC().Format(core.DateLayout)
}

func (s *Submitter) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return false
	}
	s.inFlight = true
	return true
}

func (s *Submitter) end() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}
