package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"quickspend/internal/client"
	"quickspend/internal/core"
	"quickspend/internal/log"
	"quickspend/internal/submit"
	"quickspend/internal/view"
)

const usage = `usage: quickspend-cli <command> [flags]

commands:
  add     --amount N --category C [--description D] [--date YYYY-MM-DD]
  list    [--category C] [--newest]
  resume  finish a pending submission
`

const statusNothingPending = "No pending submission."

type expenseAPI interface {
	submit.Creator
	view.Lister
}

type app struct {
	api    expenseAPI
	store  submit.MarkerStore
	out    io.Writer
	errOut io.Writer
	logger *log.Logger
	now    func() time.Time
}

func (a *app) run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(a.errOut, usage)
		return 2
	}

	logger := a.logger.WithComponent(log.ComponentClient)
	submitter := submit.NewSubmitter(a.store, a.api,
		submit.WithClock(a.now),
		submit.WithOnSaved(func(e core.Expense) {
			logger.InfoContext(ctx, "Expense saved", log.NewFields().
				WithOperation(log.OpCreate).
				WithExpense(e.ID, e.Amount.Cents, e.Category, e.Date).
				ToSlice()...)
		}),
	)

	switch args[0] {
	case "add":
		if !a.resume(ctx, submitter, false) {
			return 1
		}
		return a.add(ctx, submitter, args[1:])
	case "list":
		a.resume(ctx, submitter, false)
		return a.list(ctx, args[1:])
	case "resume":
		if !a.resume(ctx, submitter, true) {
			return 1
		}
		return 0
	default:
		fmt.Fprintf(a.errOut, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}
}

// resume finishes a pending submission, if any. It reports false when one
// exists and could not be sent; its marker is kept for the next run.
func (a *app) resume(ctx context.Context, s *submit.Submitter, explicit bool) bool {
	pending, err := s.Pending()
	if err != nil {
		a.logger.LogError(ctx, "Failed to read pending submission", err, log.OpResume, nil)
		fmt.Fprintln(a.out, submit.StatusFailed)
		return false
	}
	if pending == nil {
		if explicit {
			fmt.Fprintln(a.out, statusNothingPending)
		}
		return true
	}

	fmt.Fprintln(a.out, submit.StatusResuming)
	res, _, err := s.Resume(ctx)
	fmt.Fprintln(a.out, res.Status)
	if err != nil {
		a.logSendError(ctx, "Failed to resume submission", err, log.OpResume,
			log.LogFields{log.FieldIdempotencyKey: pending.IdempotencyKey})
		return false
	}
	return a.list(ctx, nil) == 0
}

func (a *app) add(ctx context.Context, s *submit.Submitter, args []string) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	var form core.NewExpense
	fs.StringVar(&form.Amount, "amount", "", "amount, e.g. 12.50")
	fs.StringVar(&form.Category, "category", "", "category")
	fs.StringVar(&form.Description, "description", "", "optional description")
	fs.StringVar(&form.Date, "date", a.now().UTC().Format(core.DateLayout), "date as YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	res, err := s.Submit(ctx, form)
	fmt.Fprintln(a.out, res.Status)
	if err != nil {
		if !errors.Is(err, submit.ErrIncomplete) {
			a.logSendError(ctx, "Failed to submit expense", err, log.OpCreate, nil)
		}
		return 1
	}
	return a.list(ctx, nil)
}

func (a *app) list(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	var st view.State
	fs.StringVar(&st.Category, "category", "", "show only this category")
	fs.BoolVar(&st.NewestFirst, "newest", false, "sort by date, newest first")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	page, err := view.NewRenderer(a.api).Refresh(ctx, st)
	if werr := view.WriteText(a.out, page); werr != nil {
		a.logger.LogError(ctx, "Failed to render list", werr, log.OpRender, nil)
		return 1
	}
	if err != nil {
		a.logger.LogError(ctx, "Failed to load expenses", err, log.OpList, nil)
		return 1
	}
	return 0
}

// logSendError logs requests the server refused at warn and every other
// failure at error.
func (a *app) logSendError(ctx context.Context, msg string, err error, op string, fields log.LogFields) {
	if client.IsStatus(err, http.StatusBadRequest) || client.IsStatus(err, http.StatusTooManyRequests) {
		if fields == nil {
			fields = log.NewFields()
		}
		a.logger.WarnContext(ctx, msg, fields.WithError(err).WithOperation(op).ToSlice()...)
		return
	}
	a.logger.LogError(ctx, msg, err, op, fields)
}
