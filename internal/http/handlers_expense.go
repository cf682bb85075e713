package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"grana/internal/core"
	applog "grana/internal/log"
)

type createExpenseRequest struct {
	Description string       `json:"description"`
	Amount      amountString `json:"amount"`
	Category    string       `json:"category"`
	OccurredOn  string       `json:"occurred_on"`
}

type expenseJSON struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Amount      moneyJSON `json:"amount"`
	Category    string    `json:"category"`
	OccurredOn  string    `json:"occurred_on"`
	CreatedAt   time.Time `json:"created_at"`
}

func toExpenseJSON(e core.Expense) expenseJSON {
	return expenseJSON{
		ID:          e.ID,
		Description: e.Description,
		Amount:      toMoneyJSON(e.Amount),
		Category:    string(e.Category),
		OccurredOn:  e.OccurredOn.String(),
		CreatedAt:   e.CreatedAt,
	}
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listExpenses(w, r)
	case http.MethodPost:
		s.createExpense(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestUserID(r)

	var req createExpenseRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	cents, err := core.ParseDecimalToCents(string(req.Amount))
	if err != nil {
		slog.WarnContext(ctx, "Rejected expense amount",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldOperation, applog.OpParse,
			applog.FieldError, err)
		writeError(w, err)
		return
	}

	occurredOn := core.DateOf(s.now(), s.loc)
	if req.OccurredOn != "" {
		occurredOn, err = core.ParseDate(req.OccurredOn)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	// An omitted category is inferred from the description. Labels
	// outside the known set pass through untouched.
	category := core.Category(sanitizeInput(req.Category))
	if category == "" {
		category = s.classifier.Categorize(req.Description)
	}

	expense := core.Expense{
		UserID:      userID,
		Description: sanitizeInput(req.Description),
		Amount:      core.Money{Cents: cents},
		Category:    category,
		OccurredOn:  occurredOn,
		CreatedAt:   s.now().UTC(),
	}
	if err := expense.Validate(); err != nil {
		writeErrorMessage(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	created, err := s.store.CreateExpense(sctx, expense)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to create expense",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldOperation, applog.OpCreate,
			applog.FieldUserID, userID,
			applog.FieldError, err)
		writeError(w, err)
		return
	}

	s.totalExpenses.Add(1)
	s.invalidateUser(userID)

	slog.InfoContext(ctx, "Expense created",
		applog.FieldComponent, applog.ComponentHTTP,
		applog.FieldUserID, userID,
		applog.FieldAmountCents, created.Amount.Cents,
		applog.FieldCategory, string(created.Category))
	writeJSON(w, http.StatusCreated, toExpenseJSON(created))
}

// listExpenses returns the user's direct expenses, restricted to one
// month when year/month query parameters are present.
func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestUserID(r)

	var year, month int
	filtered := monthFilterRequested(r)
	if filtered {
		var err error
		year, month, err = s.parseYearMonth(r)
		if err != nil {
			writeErrorMessage(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	expenses, err := s.store.ListExpenses(sctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list expenses",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldOperation, applog.OpList,
			applog.FieldUserID, userID,
			applog.FieldError, err)
		writeError(w, err)
		return
	}

	out := make([]expenseJSON, 0, len(expenses))
	for _, e := range expenses {
		if filtered && (e.OccurredOn.Year() != year || e.OccurredOn.Month() != month) {
			continue
		}
		out = append(out, toExpenseJSON(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": out})
}

func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, http.MethodDelete)
		return
	}

	ctx := r.Context()
	userID := requestUserID(r)
	id, err := idFromPath(r.URL.Path, "/expenses/")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := s.store.DeleteExpense(sctx, userID, id); err != nil {
		if statusForError(err) >= http.StatusInternalServerError {
			slog.ErrorContext(ctx, "Failed to delete expense",
				applog.FieldComponent, applog.ComponentHTTP,
				applog.FieldOperation, applog.OpDelete,
				applog.FieldUserID, userID,
				applog.FieldError, err)
		}
		writeError(w, err)
		return
	}

	s.invalidateUser(userID)
	slog.InfoContext(ctx, "Expense deleted",
		applog.FieldComponent, applog.ComponentHTTP,
		applog.FieldUserID, userID,
		"id", id)
	w.WriteHeader(http.StatusNoContent)
}
