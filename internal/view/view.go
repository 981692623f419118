// Package view turns a list of expenses into what the list page shows:
// table rows, the total, the category filter and the spending snapshot.
package view

import (
	"context"
	"fmt"
	"time"

	"quickspend/internal/core"
)

// Status lines shown under the table.
const (
	StatusEmpty      = "No expenses yet."
	StatusLoadFailed = "Could not load expenses from the server. Try again."
)

// Lister fetches expenses. Both the API client and the service satisfy it.
type Lister interface {
	List(ctx context.Context, q core.ListQuery) ([]core.Expense, error)
}

// State is the user-controlled part of the list view.
type State struct {
	Category    string
	NewestFirst bool
}

// Query converts the state into a list query.
func (s State) Query() core.ListQuery {
	return core.ListQuery{Category: s.Category, NewestFirst: s.NewestFirst}
}

// Row is one table line, already formatted.
type Row struct {
	Date        string
	Category    string
	Description string
	Amount      string
}

// Option is one entry of the category filter. An empty Value means all.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Page is everything the list view renders.
type Page struct {
	State    State
	Rows     []Row
	Total    string
	Options  []Option
	Status   string
	Snapshot Snapshot
	// Today prefills the add form's date.
	Today string
}

// Renderer builds pages from a Lister.
type Renderer struct {
	lister Lister
	now    func() time.Time
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithClock overrides the clock used for Page.Today.
func WithClock(now func() time.Time) RendererOption {
	return func(r *Renderer) { r.now = now }
}

func NewRenderer(lister Lister, opts ...RendererOption) *Renderer {
	r := &Renderer{lister: lister, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh lists expenses for st and builds the page. The returned Page.State
// holds the effective selection: a category no longer present resets to all.
func (r *Renderer) Refresh(ctx context.Context, st State) (Page, error) {
	today := r.now().UTC().Format(core.DateLayout)

	expenses, err := r.lister.List(ctx, st.Query())
	if err != nil {
		return Page{State: st, Status: StatusLoadFailed, Snapshot: Summarize(nil), Options: []Option{{Label: "All", Selected: true}}, Total: core.Money{}.String(), Today: today},
			fmt.Errorf("refresh expenses: %w", err)
	}
	page := Build(expenses, st)
	page.Today = today
	return page, nil
}

// Build assembles a page from an already fetched list.
func Build(expenses []core.Expense, st State) Page {
	total, _ := core.Totals(expenses)

	rows := make([]Row, 0, len(expenses))
	for _, e := range expenses {
		desc := e.DescriptionText()
		if desc == "" {
			desc = "-"
		}
		rows = append(rows, Row{
			Date:        e.Date,
			Category:    e.Category,
			Description: desc,
			Amount:      e.Amount.String(),
		})
	}

	categories := distinctCategories(expenses)
	if !contains(categories, st.Category) {
		st.Category = ""
	}

	options := make([]Option, 0, len(categories)+1)
	options = append(options, Option{Label: "All", Selected: st.Category == ""})
	for _, c := range categories {
		options = append(options, Option{Value: c, Label: c, Selected: c == st.Category})
	}

	status := ""
	if len(expenses) == 0 {
		status = StatusEmpty
	}

	return Page{
		State:    st,
		Rows:     rows,
		Total:    total.String(),
		Options:  options,
		Status:   status,
		Snapshot: Summarize(expenses),
	}
}

// distinctCategories returns categories in order of first appearance.
func distinctCategories(expenses []core.Expense) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range expenses {
		if !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, e.Category)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
