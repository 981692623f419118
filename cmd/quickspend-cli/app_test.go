package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickspend/internal/client"
	"quickspend/internal/core"
	apphttp "quickspend/internal/http"
	"quickspend/internal/log"
	"quickspend/internal/services"
	"quickspend/internal/storage"
	"quickspend/internal/submit"
)

func newTestAPI(t *testing.T) (*httptest.Server, *services.ExpenseService) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "expenses.db"))
	require.NoError(t, err)
	svc := services.NewExpenseService(repo)
	t.Cleanup(func() { svc.Close() })

	srv, err := apphttp.NewServer(apphttp.Options{RateLimitPerMinute: 1000}, svc)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		srv.Shutdown(context.Background())
	})
	return ts, svc
}

func newTestApp(t *testing.T, baseURL string, store submit.MarkerStore) (*app, *bytes.Buffer) {
	t.Helper()
	api, err := client.New(baseURL)
	require.NoError(t, err)
	var out bytes.Buffer
	return &app{
		api:    api,
		store:  store,
		out:    &out,
		errOut: &bytes.Buffer{},
		logger: log.Discard(),
		now:    func() time.Time { return time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC) },
	}, &out
}

func TestApp_AddThenList(t *testing.T) {
	ts, svc := newTestAPI(t)
	store := submit.NewMemoryStore()
	a, out := newTestApp(t, ts.URL, store)

	code := a.run(context.Background(), []string{"add", "--amount", "12.5", "--category", "Food", "--description", "lunch"})
	require.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), submit.StatusSaved)
	assert.Contains(t, out.String(), "2024-03-09")
	assert.Contains(t, out.String(), "12.50")

	m, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, m)

	expenses, err := svc.List(context.Background(), core.ListQuery{})
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "lunch", expenses[0].DescriptionText())

	out.Reset()
	code = a.run(context.Background(), []string{"list", "--category", "Food", "--newest"})
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "Food")
}

func TestApp_AddIncomplete(t *testing.T) {
	ts, _ := newTestAPI(t)
	a, out := newTestApp(t, ts.URL, submit.NewMemoryStore())

	code := a.run(context.Background(), []string{"add", "--amount", "5"})
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), submit.StatusIncomplete)
}

func TestApp_ResumesPendingOnStart(t *testing.T) {
	ts, svc := newTestAPI(t)
	store := submit.NewMemoryStore()
	require.NoError(t, store.Save(submit.Marker{
		Payload:        core.NewExpense{Amount: "3", Category: "Travel", Date: "2024-03-08"},
		IdempotencyKey: "pending-key",
	}))
	a, out := newTestApp(t, ts.URL, store)

	code := a.run(context.Background(), []string{"list"})
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), submit.StatusResuming)
	assert.Contains(t, out.String(), submit.StatusSaved)

	m, _ := store.Load()
	assert.Nil(t, m)

	expenses, err := svc.List(context.Background(), core.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, expenses, 1)
}

func TestApp_ServerDownKeepsMarker(t *testing.T) {
	ts, _ := newTestAPI(t)
	url := ts.URL
	ts.Close()

	store := submit.NewMemoryStore()
	a, out := newTestApp(t, url, store)

	code := a.run(context.Background(), []string{"add", "--amount", "7", "--category", "Books"})
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), submit.StatusFailed)

	m, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "Books", m.Payload.Category)

	out.Reset()
	code = a.run(context.Background(), []string{"add", "--amount", "9", "--category", "Food"})
	assert.Equal(t, 1, code, "add refuses to replace an unsent submission")
	assert.Contains(t, out.String(), submit.StatusResuming)

	m, _ = store.Load()
	require.NotNil(t, m)
	assert.Equal(t, "Books", m.Payload.Category)
}

func TestApp_ResumeCommand(t *testing.T) {
	ts, _ := newTestAPI(t)
	a, out := newTestApp(t, ts.URL, submit.NewMemoryStore())

	assert.Equal(t, 0, a.run(context.Background(), []string{"resume"}))
	assert.Contains(t, out.String(), statusNothingPending)

	assert.Equal(t, 2, a.run(context.Background(), []string{"bogus"}))
	assert.Equal(t, 2, a.run(context.Background(), nil))
}

func TestApp_LogsRejectedAndFailedSendsAtDifferentLevels(t *testing.T) {
	ts, _ := newTestAPI(t)
	a, out := newTestApp(t, ts.URL, submit.NewMemoryStore())
	var logs bytes.Buffer
	a.logger = log.New(log.Config{Output: &logs})

	code := a.run(context.Background(), []string{"add", "--amount", "abc", "--category", "Food"})
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), submit.StatusFailed)
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "status 400")
	assert.NotContains(t, logs.String(), "level=ERROR")

	url := ts.URL
	ts.Close()
	b, _ := newTestApp(t, url, submit.NewMemoryStore())
	logs.Reset()
	b.logger = log.New(log.Config{Output: &logs})

	code = b.run(context.Background(), []string{"add", "--amount", "5", "--category", "Food"})
	assert.Equal(t, 1, code)
	assert.Contains(t, logs.String(), "level=ERROR")
}
