package sheets

import (
	"context"

	"quickspend/internal/core"
)

// Ports for outbound adapters.
type (
	// ExpenseAppender writes one stored expense as a new spreadsheet row.
	ExpenseAppender interface {
		Append(ctx context.Context, e core.Expense) (rowRef string, err error)
	}
)

// Header is the column layout of the mirror sheet.
var Header = []string{"ID", "Date", "Category", "Description", "Amount", "Created At"}

// Row converts an expense into cell values in Header order.
func Row(e core.Expense) []any {
	return []any{e.ID, e.Date, e.Category, e.DescriptionText(), e.Amount.String(), e.CreatedAt}
}
