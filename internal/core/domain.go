package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// CreatedAtLayout is the ISO-8601 layout used for created_at (UTC, millisecond precision).
const CreatedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// DateLayout is the calendar-date layout used to prefill a new expense's date.
const DateLayout = "2006-01-02"

// dateLen is the number of characters kept from a supplied date.
const dateLen = 10

type (
	// Expense is a persisted expense record.
	Expense struct {
		ID          int64   `json:"id"`
		Amount      Money   `json:"amount"`
		Category    string  `json:"category"`
		Description *string `json:"description"`
		Date        string  `json:"date"`
		CreatedAt   string  `json:"created_at"`
	}

	// NewExpense is the raw create input, as typed by the user.
	// It is also the payload stored in a pending-submission marker.
	NewExpense struct {
		Amount      string `json:"amount"`
		Category    string `json:"category"`
		Description string `json:"description"`
		Date        string `json:"date"`
	}

	// Draft is a validated and normalized expense ready to be inserted.
	Draft struct {
		Amount      Money
		Category    string
		Description string
		Date        string
		CreatedAt   string
	}

	// ListQuery selects and orders expenses. An empty Category means no filter.
	ListQuery struct {
		Category    string
		NewestFirst bool
	}
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrPersistence matches every *PersistenceError.
	ErrPersistence = errors.New("persistence failed")

	ErrMissingFields = &ValidationError{Message: "amount, category and date are required"}
	ErrInvalidAmount = &ValidationError{Field: "amount", Message: "Amount must be a positive number"}
)

// ValidationError reports input the client can correct.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// PersistenceError reports a storage failure. The record's durability is unknown.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Err == nil {
		return e.Op + ": persistence failed"
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// DescriptionText returns the description, or "" when it is null.
func (e Expense) DescriptionText() string {
	if e.Description == nil {
		return ""
	}
	return *e.Description
}

// Normalize validates the raw input and converts it into a Draft stamped with now.
// Missing fields are reported before the amount is parsed.
func (in NewExpense) Normalize(now time.Time) (Draft, error) {
	amount := strings.TrimSpace(in.Amount)
	category := strings.TrimSpace(in.Category)
	date := strings.TrimSpace(in.Date)
	if amount == "" || category == "" || date == "" {
		return Draft{}, ErrMissingFields
	}

	money, err := ParseAmount(amount)
	if err != nil {
		return Draft{}, err
	}

	return Draft{
		Amount:      money,
		Category:    category,
		Description: strings.TrimSpace(in.Description),
		Date:        truncateRunes(date, dateLen),
		CreatedAt:   now.UTC().Format(CreatedAtLayout),
	}, nil
}

// Equal reports whether two inputs are field-for-field identical.
func (in NewExpense) Equal(other NewExpense) bool {
	return in == other
}

// Incomplete reports whether a required field is empty.
func (in NewExpense) Incomplete() bool {
	return in.Amount == "" || in.Category == "" || in.Date == ""
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
