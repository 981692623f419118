package view

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"quickspend/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listerFunc func(context.Context, core.ListQuery) ([]core.Expense, error)

func (f listerFunc) List(ctx context.Context, q core.ListQuery) ([]core.Expense, error) {
	return f(ctx, q)
}

func str(s string) *string { return &s }

func expense(id int64, cents int64, category, date string, desc *string) core.Expense {
	return core.Expense{ID: id, Amount: core.Money{Cents: cents}, Category: category, Date: date, Description: desc}
}

func TestRefreshBuildsRowsTotalAndOptions(t *testing.T) {
	var gotQuery core.ListQuery
	r := NewRenderer(listerFunc(func(_ context.Context, q core.ListQuery) ([]core.Expense, error) {
		gotQuery = q
		return []core.Expense{
			expense(1, 1250, "Food", "2024-01-01", str("lunch")),
			expense(2, 399, "Travel", "2024-01-02", str("")),
			expense(3, 100, "Food", "2024-01-03", nil),
		}, nil
	}))

	page, err := r.Refresh(context.Background(), State{Category: "", NewestFirst: true})
	require.NoError(t, err)
	assert.Equal(t, core.ListQuery{NewestFirst: true}, gotQuery)

	require.Len(t, page.Rows, 3)
	assert.Equal(t, Row{Date: "2024-01-01", Category: "Food", Description: "lunch", Amount: "12.50"}, page.Rows[0])
	assert.Equal(t, "-", page.Rows[1].Description)
	assert.Equal(t, "-", page.Rows[2].Description)
	assert.Equal(t, "17.49", page.Total)
	assert.Empty(t, page.Status)

	assert.Equal(t, []Option{
		{Value: "", Label: "All", Selected: true},
		{Value: "Food", Label: "Food"},
		{Value: "Travel", Label: "Travel"},
	}, page.Options)
}

func TestRefreshKeepsOrResetsSelection(t *testing.T) {
	foodOnly := listerFunc(func(context.Context, core.ListQuery) ([]core.Expense, error) {
		return []core.Expense{expense(1, 100, "Food", "2024-01-01", nil)}, nil
	})
	page, err := NewRenderer(foodOnly).Refresh(context.Background(), State{Category: "Food"})
	require.NoError(t, err)
	assert.Equal(t, "Food", page.State.Category)
	assert.True(t, page.Options[1].Selected)
	assert.False(t, page.Options[0].Selected)

	empty := listerFunc(func(context.Context, core.ListQuery) ([]core.Expense, error) {
		return []core.Expense{}, nil
	})
	page, err = NewRenderer(empty).Refresh(context.Background(), State{Category: "Gone", NewestFirst: true})
	require.NoError(t, err)
	assert.Equal(t, State{Category: "", NewestFirst: true}, page.State)
	assert.Equal(t, StatusEmpty, page.Status)
	assert.Equal(t, "0.00", page.Total)
	assert.Len(t, page.Options, 1)
}

func TestRefreshFailure(t *testing.T) {
	boom := errors.New("offline")
	page, err := NewRenderer(listerFunc(func(context.Context, core.ListQuery) ([]core.Expense, error) {
		return nil, boom
	})).Refresh(context.Background(), State{Category: "Food"})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, StatusLoadFailed, page.Status)
	assert.True(t, page.Snapshot.Empty)
}

func TestSummarize(t *testing.T) {
	s := Summarize([]core.Expense{
		expense(1, 500, "A", "d", nil),
		expense(2, 700, "B", "d", nil),
		expense(3, 300, "C", "d", nil),
		expense(4, 200, "A", "d", nil),
	})

	assert.False(t, s.Empty)
	assert.Equal(t, "Top categories", s.Label)
	assert.Equal(t, int64(1700), s.Total.Cents)
	require.Len(t, s.Top, 2)
	assert.Equal(t, "A", s.Top[0].Name)
	assert.Equal(t, "B", s.Top[1].Name)
	assert.Equal(t, SnapshotRow{Title: "A", Value: "₹ 7.00"}, s.Rows[0])
	assert.Equal(t, SnapshotRow{Title: "B", Value: "₹ 7.00"}, s.Rows[1])
	assert.Equal(t, "Total in view: ₹ 17.00 · based on the expenses listed below.", s.Footer)
}

func TestSummarizeSingleCategory(t *testing.T) {
	s := Summarize([]core.Expense{expense(1, 250, "Food", "d", nil)})
	assert.Equal(t, SnapshotRow{Title: "Food", Value: "₹ 2.50"}, s.Rows[0])
	assert.Equal(t, SnapshotRow{Title: "—", Value: "—"}, s.Rows[1])
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.True(t, s.Empty)
	assert.Equal(t, "Spending snapshot", s.Label)
	assert.Equal(t, SnapshotRow{Title: "No expenses yet", Value: "₹ 0.00"}, s.Rows[0])
	assert.Equal(t, SnapshotRow{Title: "—", Value: "—"}, s.Rows[1])
	assert.Zero(t, s.Total.Cents)
	assert.Empty(t, s.Top)
}

func TestOptionsHTMLEscapes(t *testing.T) {
	page := Build([]core.Expense{expense(1, 100, `<b>"Tom's"&co</b>`, "d", nil)}, State{})
	html := OptionsHTML(page)

	assert.Contains(t, html, `<option value="" selected>All</option>`)
	assert.NotContains(t, html, "<b>")
	assert.Contains(t, html, "&lt;b&gt;&#34;Tom&#39;s&#34;&amp;co&lt;/b&gt;")
}

func TestWriteHTMLEscapesContent(t *testing.T) {
	page := Build([]core.Expense{expense(1, 100, "<script>x</script>", "2024-01-01", str("<img>"))}, State{})
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, page))

	out := buf.String()
	assert.NotContains(t, out, "<script>x</script>")
	assert.Contains(t, out, "&lt;script&gt;x&lt;/script&gt;")
	assert.NotContains(t, out, "<img>")
	assert.Contains(t, out, "Top categories")
}

func TestWriteText(t *testing.T) {
	page := Build([]core.Expense{expense(1, 1250, "Food", "2024-01-01", str("lunch"))}, State{})
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, page))

	out := buf.String()
	assert.Contains(t, out, "DATE")
	assert.Contains(t, out, "lunch")
	assert.Contains(t, out, "12.50")
	assert.Contains(t, out, "Total in view: ₹ 12.50")

	buf.Reset()
	require.NoError(t, WriteText(&buf, Build(nil, State{})))
	assert.Contains(t, buf.String(), StatusEmpty)
}

func TestRefreshSetsToday(t *testing.T) {
	clock := WithClock(func() time.Time { return time.Date(2024, 3, 9, 23, 30, 0, 0, time.FixedZone("CET", 3600)) })

	page, err := NewRenderer(listerFunc(func(context.Context, core.ListQuery) ([]core.Expense, error) {
		return nil, nil
	}), clock).Refresh(context.Background(), State{})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-09", page.Today)

	page, err = NewRenderer(listerFunc(func(context.Context, core.ListQuery) ([]core.Expense, error) {
		return nil, errors.New("down")
	}), clock).Refresh(context.Background(), State{})
	require.Error(t, err)
	assert.Equal(t, "2024-03-09", page.Today, "the add form is prefilled even when the list fails")

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, page))
	assert.Contains(t, buf.String(), `name="date" type="date" value="2024-03-09"`)
}
