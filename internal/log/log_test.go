package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONLoggerCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentHTTP, Output: &buf})

	l.Info("hello", FieldCount, 3)
	assert.Contains(t, buf.String(), `"component":"http"`)
	assert.Contains(t, buf.String(), `"count":3`)
	assert.Equal(t, ComponentHTTP, l.Component())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
	assert.Equal(t, "unknown", l.Component())
}

func TestNewContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Format: "text", Output: &buf}).With(FieldRequestID, "req_1")

	ctx := NewContext(context.Background(), base)
	got := FromContext(ctx)
	require.Same(t, base, got)

	got.Info("inside")
	assert.Contains(t, buf.String(), "request_id=req_1")
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithOperation(OpCreate).
		WithExpense(7, 1250, "Food", "2024-01-01").
		WithError(errors.New("boom"))

	assert.Equal(t, OpCreate, f[FieldOperation])
	assert.Equal(t, int64(7), f[FieldExpenseID])
	assert.Equal(t, "boom", f[FieldError])
	assert.Len(t, f.ToSlice(), len(f)*2)

	assert.NotContains(t, NewFields().WithError(nil), FieldError)
}
