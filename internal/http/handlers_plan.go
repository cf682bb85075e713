package http

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"grana/internal/core"
	applog "grana/internal/log"
)

type createPlanRequest struct {
	Description  string       `json:"description"`
	Total        amountString `json:"total"`
	Installments int          `json:"installments"`
	Category     string       `json:"category"`
	StartsOn     string       `json:"starts_on"`
}

type planJSON struct {
	ID           int64          `json:"id"`
	Description  string         `json:"description"`
	Total        moneyJSON      `json:"total"`
	Installments int            `json:"installments"`
	Monthly      moneyJSON      `json:"monthly"`
	Category     string         `json:"category"`
	StartsOn     string         `json:"starts_on"`
	CreatedAt    time.Time      `json:"created_at"`
	Schedule     []scheduleJSON `json:"schedule,omitempty"`
}

// scheduleJSON is one derived charge of a plan, in seq order.
type scheduleJSON struct {
	Seq    int       `json:"seq"`
	Amount moneyJSON `json:"amount"`
	DueOn  string    `json:"due_on"`
}

type entryJSON struct {
	ID          int64     `json:"id"`
	PlanID      int64     `json:"plan_id"`
	Seq         int       `json:"seq"`
	Description string    `json:"description"`
	Amount      moneyJSON `json:"amount"`
	Category    string    `json:"category"`
	DueOn       string    `json:"due_on"`
}

func toPlanJSON(p core.InstallmentPlan) planJSON {
	return planJSON{
		ID:           p.ID,
		Description:  p.Description,
		Total:        toMoneyJSON(p.Total),
		Installments: p.Count,
		Monthly:      toMoneyJSON(p.Monthly),
		Category:     string(p.Category),
		StartsOn:     p.StartsOn.String(),
		CreatedAt:    p.CreatedAt,
	}
}

func toEntryJSON(e core.InstallmentEntry) entryJSON {
	return entryJSON{
		ID:          e.ID,
		PlanID:      e.PlanID,
		Seq:         e.Seq,
		Description: e.Description,
		Amount:      toMoneyJSON(e.Amount),
		Category:    string(e.Category),
		DueOn:       e.DueOn.String(),
	}
}

func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listPlans(w, r)
	case http.MethodPost:
		s.createPlan(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) createPlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestUserID(r)

	var req createPlanRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	cents, err := core.ParseDecimalToCents(string(req.Total))
	if err != nil {
		slog.WarnContext(ctx, "Rejected plan total",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldOperation, applog.OpParse,
			applog.FieldError, err)
		writeError(w, err)
		return
	}

	startsOn := core.DateOf(s.now(), s.loc)
	if req.StartsOn != "" {
		startsOn, err = core.ParseDate(req.StartsOn)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	category := core.Category(sanitizeInput(req.Category))
	if category == "" {
		category = s.classifier.Categorize(req.Description)
	}

	plan := core.InstallmentPlan{
		UserID:      userID,
		Description: sanitizeInput(req.Description),
		Total:       core.Money{Cents: cents},
		Count:       req.Installments,
		Category:    category,
		StartsOn:    startsOn,
		CreatedAt:   s.now().UTC(),
	}
	if err := plan.Validate(); err != nil {
		writeErrorMessage(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	plan.Monthly = core.MonthlyAmount(plan.Total, plan.Count)

	entries, err := core.BuildSchedule(plan)
	if err != nil {
		writeError(w, err)
		return
	}

	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	created, err := s.store.CreatePlan(sctx, plan, entries)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to create installment plan",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldOperation, applog.OpCreate,
			applog.FieldUserID, userID,
			applog.FieldError, err)
		writeError(w, err)
		return
	}

	s.totalPlans.Add(1)
	s.invalidateUser(userID)

	out := toPlanJSON(created)
	out.Schedule = make([]scheduleJSON, 0, len(entries))
	for _, e := range entries {
		out.Schedule = append(out.Schedule, scheduleJSON{
			Seq:    e.Seq,
			Amount: toMoneyJSON(e.Amount),
			DueOn:  e.DueOn.String(),
		})
	}

	slog.InfoContext(ctx, "Installment plan created",
		applog.FieldComponent, applog.ComponentHTTP,
		applog.FieldUserID, userID,
		applog.FieldAmountCents, created.Total.Cents,
		"installments", created.Count)
	writeJSON(w, http.StatusCreated, out)
}

// listPlans returns the user's plans, each carrying its derived
// schedule.
func (s *Server) listPlans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestUserID(r)

	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	var (
		plans   []core.InstallmentPlan
		entries []core.InstallmentEntry
	)
	g, gctx := errgroup.WithContext(sctx)
	g.Go(func() error {
		var err error
		plans, err = s.store.ListPlans(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = s.store.ListPlanEntries(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "Failed to list installment plans",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldOperation, applog.OpList,
			applog.FieldUserID, userID,
			applog.FieldError, err)
		writeError(w, err)
		return
	}

	byPlan := make(map[int64][]scheduleJSON, len(plans))
	for _, e := range entries {
		byPlan[e.PlanID] = append(byPlan[e.PlanID], scheduleJSON{
			Seq:    e.Seq,
			Amount: toMoneyJSON(e.Amount),
			DueOn:  e.DueOn.String(),
		})
	}
	for _, schedule := range byPlan {
		sort.Slice(schedule, func(i, j int) bool { return schedule[i].Seq < schedule[j].Seq })
	}

	out := make([]planJSON, 0, len(plans))
	for _, p := range plans {
		pj := toPlanJSON(p)
		pj.Schedule = byPlan[p.ID]
		out = append(out, pj)
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": out})
}

func (s *Server) handlePlanByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, http.MethodDelete)
		return
	}

	ctx := r.Context()
	userID := requestUserID(r)
	id, err := idFromPath(r.URL.Path, "/plans/")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := s.store.DeletePlan(sctx, userID, id); err != nil {
		if statusForError(err) >= http.StatusInternalServerError {
			slog.ErrorContext(ctx, "Failed to delete installment plan",
				applog.FieldComponent, applog.ComponentHTTP,
				applog.FieldOperation, applog.OpDelete,
				applog.FieldUserID, userID,
				applog.FieldError, err)
		}
		writeError(w, err)
		return
	}

	s.invalidateUser(userID)
	slog.InfoContext(ctx, "Installment plan deleted",
		applog.FieldComponent, applog.ComponentHTTP,
		applog.FieldUserID, userID,
		"id", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleInstallments lists every derived installment entry for the
// user across all plans.
func (s *Server) handleInstallments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	ctx := r.Context()
	userID := requestUserID(r)

	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	entries, err := s.store.ListPlanEntries(sctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list installment entries",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldOperation, applog.OpList,
			applog.FieldUserID, userID,
			applog.FieldError, err)
		writeError(w, err)
		return
	}

	out := make([]entryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryJSON(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"installments": out})
}
