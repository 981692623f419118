// Package storage persists expense records in SQLite or Postgres.
package storage

import (
	"errors"
	"strconv"
	"strings"

	"quickspend/internal/core"
)

// ErrNotFound is returned by Get when no record has the requested id.
var ErrNotFound = errors.New("expense not found")

const selectColumns = "id, amount_cents, category, description, date, created_at"

// placeholder renders the n-th (1-based) bind parameter for a dialect.
type placeholder func(n int) string

func questionMark(int) string { return "?" }

func dollar(n int) string { return "$" + strconv.Itoa(n) }

// buildListQuery renders the SELECT for q. Ordering is (date, id) so records
// sharing a date keep insertion order.
func buildListQuery(q core.ListQuery, ph placeholder) (string, []any) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString("SELECT " + selectColumns + " FROM expenses")
	if q.Category != "" {
		args = append(args, q.Category)
		sb.WriteString(" WHERE category = " + ph(len(args)))
	}
	if q.NewestFirst {
		sb.WriteString(" ORDER BY date DESC, id DESC")
	} else {
		sb.WriteString(" ORDER BY date ASC, id ASC")
	}
	return sb.String(), args
}

type scanner interface {
	Scan(dest ...any) error
}

// scanExpense reads one row in selectColumns order.
func scanExpense(row scanner) (core.Expense, error) {
	var (
		e           core.Expense
		description *string
	)
	if err := row.Scan(&e.ID, &e.Amount.Cents, &e.Category, &description, &e.Date, &e.CreatedAt); err != nil {
		return core.Expense{}, err
	}
	e.Description = description
	return e, nil
}
