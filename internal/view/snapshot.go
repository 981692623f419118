package view

import "quickspend/internal/core"

// CurrencySymbol prefixes amounts in the snapshot card.
const CurrencySymbol = "₹"

const placeholder = "—"

// SnapshotRow is one line of the snapshot card.
type SnapshotRow struct {
	Title string
	Value string
}

// Snapshot summarizes the displayed expenses by category.
type Snapshot struct {
	Chip   string
	Label  string
	Rows   [2]SnapshotRow
	Footer string

	Empty bool
	Total core.Money
	Top   []core.CategoryAmount
}

// Summarize ranks categories by subtotal and keeps the top two. An empty
// input yields the placeholder snapshot.
func Summarize(expenses []core.Expense) Snapshot {
	if len(expenses) == 0 {
		return Snapshot{
			Chip:  "Current view",
			Label: "Spending snapshot",
			Rows: [2]SnapshotRow{
				{Title: "No expenses yet", Value: formatCurrency(core.Money{})},
				{Title: placeholder, Value: placeholder},
			},
			Footer: "Add an expense to see live spending here →",
			Empty:  true,
			Top:    []core.CategoryAmount{},
		}
	}

	total, ranked := core.Totals(expenses)
	top := ranked
	if len(top) > 2 {
		top = top[:2]
	}

	s := Snapshot{
		Chip:   "Current view",
		Label:  "Top categories",
		Footer: "Total in view: " + formatCurrency(total) + " · based on the expenses listed below.",
		Total:  total,
		Top:    top,
	}
	s.Rows[1] = SnapshotRow{Title: placeholder, Value: placeholder}
	for i, c := range top {
		s.Rows[i] = SnapshotRow{Title: c.Name, Value: formatCurrency(c.Amount)}
	}
	return s
}

func formatCurrency(m core.Money) string {
	return CurrencySymbol + " " + m.String()
}
