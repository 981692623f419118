package http

import (
	"errors"
	"net/http"

	"quickspend/internal/core"
	"quickspend/internal/log"
)

// HeaderIdempotencyKey carries the client's submission token.
const HeaderIdempotencyKey = "Idempotency-Key"

// Messages returned for failures the client cannot fix.
const (
	msgSaveFailed     = "Failed to save expense"
	msgReadBackFailed = "Expense created but could not be read back"
	msgListFailed     = "Failed to load expenses"
	msgInvalidBody    = "Invalid request body"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	p, err := NewRequestBodyParser(w, r)
	if err != nil {
		logger.WarnContext(ctx, "Unreadable create body", log.FieldError, err.Error())
		writeError(w, r, http.StatusBadRequest, msgInvalidBody)
		return
	}

	e, err := s.api.Create(ctx, p.NewExpense(), r.Header.Get(HeaderIdempotencyKey))
	if err != nil {
		var verr *core.ValidationError
		var perr *core.PersistenceError
		switch {
		case errors.As(err, &verr):
			writeError(w, r, http.StatusBadRequest, verr.Message)
		case errors.As(err, &perr) && perr.Op == "read back":
			logger.LogError(ctx, "Expense read back failed", err, log.OpCreate, nil)
			writeError(w, r, http.StatusInternalServerError, msgReadBackFailed)
		default:
			logger.LogError(ctx, "Expense insert failed", err, log.OpCreate, nil)
			writeError(w, r, http.StatusInternalServerError, msgSaveFailed)
		}
		return
	}

	// A plain browser form goes back to the list instead of receiving JSON.
	if p.IsForm() && wantsHTML(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, r, http.StatusCreated, e)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := parseViewState(r.URL.Query())

	expenses, err := s.api.List(ctx, st.Query())
	if err != nil {
		log.FromContext(ctx).LogError(ctx, "List expenses failed", err, log.OpList, nil)
		writeError(w, r, http.StatusInternalServerError, msgListFailed)
		return
	}
	writeJSON(w, r, http.StatusOK, expenses)
}
