package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"grana/internal/core"
	applog "grana/internal/log"
)

type setSalaryRequest struct {
	Amount amountString `json:"amount"`
}

type salaryJSON struct {
	Amount    moneyJSON `json:"amount"`
	UpdatedAt string    `json:"updated_at,omitempty"`
}

func toSalaryJSON(set core.SalarySetting) salaryJSON {
	out := salaryJSON{Amount: toMoneyJSON(set.Amount)}
	if !set.UpdatedAt.IsZero() {
		out.UpdatedAt = set.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return out
}

// handleSalary reads or replaces the user's single salary value. A
// user who never set one reads back a zero amount.
func (s *Server) handleSalary(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getSalary(w, r)
	case http.MethodPut:
		s.setSalary(w, r)
	default:
		methodNotAllowed(w, "GET, PUT")
	}
}

func (s *Server) getSalary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestUserID(r)

	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	set, err := s.store.Salary(sctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read salary",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldOperation, applog.OpRead,
			applog.FieldUserID, userID,
			applog.FieldError, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSalaryJSON(set))
}

func (s *Server) setSalary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestUserID(r)

	var req setSalaryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	cents, err := core.ParseDecimalToCents(string(req.Amount))
	if err != nil {
		slog.WarnContext(ctx, "Rejected salary amount",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldOperation, applog.OpParse,
			applog.FieldError, err)
		writeError(w, err)
		return
	}

	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	set, err := s.store.SetSalary(sctx, core.SalarySetting{
		UserID:    userID,
		Amount:    core.Money{Cents: cents},
		UpdatedAt: s.now().UTC(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to set salary",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldOperation, applog.OpCreate,
			applog.FieldUserID, userID,
			applog.FieldError, err)
		writeError(w, err)
		return
	}

	s.invalidateUser(userID)
	slog.InfoContext(ctx, "Salary updated",
		applog.FieldComponent, applog.ComponentHTTP,
		applog.FieldUserID, userID,
		applog.FieldAmountCents, set.Amount.Cents)
	writeJSON(w, http.StatusOK, toSalaryJSON(set))
}
