package http

import (
	"context"
	"log/slog"
	"net/http"
	"sort"

	"golang.org/x/sync/errgroup"

	"grana/internal/core"
	applog "grana/internal/log"
)

// recentLimit caps how many recent direct expenses the dashboard lists.
const recentLimit = 5

type categoryAmountJSON struct {
	Name   string    `json:"name"`
	Amount moneyJSON `json:"amount"`
}

type monthlyTotalJSON struct {
	Month string    `json:"month"`
	Total moneyJSON `json:"total"`
	Count int       `json:"count"`
}

type dashboardJSON struct {
	CurrentBalance    moneyJSON            `json:"current_balance"`
	CurrentMonthSpent moneyJSON            `json:"current_month_spent"`
	TotalExpenses     int                  `json:"total_expenses"`
	ByCategory        []categoryAmountJSON `json:"by_category"`
	Monthly           []monthlyTotalJSON   `json:"monthly"`
	Recent            []expenseJSON        `json:"recent_expenses"`
}

// dashboardView is the cached unit: the aggregate summary plus the
// recent direct expenses shown next to it.
type dashboardView struct {
	Summary core.DashboardSummary
	Recent  []core.Expense
}

func toDashboardJSON(view dashboardView) dashboardJSON {
	sum := view.Summary
	out := dashboardJSON{
		CurrentBalance:    toMoneyJSON(sum.CurrentBalance),
		CurrentMonthSpent: toMoneyJSON(sum.CurrentMonthSpent),
		TotalExpenses:     sum.TotalExpenses,
		ByCategory:        make([]categoryAmountJSON, 0, len(sum.ByCategory)),
		Monthly:           make([]monthlyTotalJSON, 0, len(sum.Monthly)),
		Recent:            make([]expenseJSON, 0, len(view.Recent)),
	}
	for _, row := range sum.ByCategory {
		out.ByCategory = append(out.ByCategory, categoryAmountJSON{
			Name:   string(row.Name),
			Amount: toMoneyJSON(row.Amount),
		})
	}
	for _, m := range sum.Monthly {
		out.Monthly = append(out.Monthly, monthlyTotalJSON{
			Month: m.Month,
			Total: toMoneyJSON(m.Total),
			Count: m.Count,
		})
	}
	for _, e := range view.Recent {
		out.Recent = append(out.Recent, toExpenseJSON(e))
	}
	return out
}

// recentExpenses returns the newest direct expenses, most recent date
// first, without mutating the input slice.
func recentExpenses(expenses []core.Expense, limit int) []core.Expense {
	sorted := append([]core.Expense(nil), expenses...)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].OccurredOn.Time.Equal(sorted[j].OccurredOn.Time) {
			return sorted[i].OccurredOn.Time.After(sorted[j].OccurredOn.Time)
		}
		return sorted[i].ID > sorted[j].ID
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	ctx := r.Context()
	userID := requestUserID(r)

	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	view, err := s.dashboardSummary(sctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to build dashboard",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldOperation, applog.OpRead,
			applog.FieldUserID, userID,
			applog.FieldError, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardJSON(view))
}

// dashboardSummary serves the cached view when fresh and collapses
// concurrent rebuilds of the same user into one store round trip.
func (s *Server) dashboardSummary(ctx context.Context, userID string) (dashboardView, error) {
	key := dashboardCacheKey(userID)
	if cached, ok := s.dashCache.Get(key); ok {
		return cached, nil
	}

	v, err, _ := s.flight.Do(key, func() (any, error) {
		var (
			expenses []core.Expense
			entries  []core.InstallmentEntry
			salary   core.SalarySetting
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			expenses, err = s.store.ListExpenses(gctx, userID)
			return err
		})
		g.Go(func() error {
			var err error
			entries, err = s.store.ListPlanEntries(gctx, userID)
			return err
		})
		g.Go(func() error {
			var err error
			salary, err = s.store.Salary(gctx, userID)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		stream := core.MergeStream(expenses, entries)
		view := dashboardView{
			Summary: core.BuildDashboardSummary(stream, salary.Amount, s.now(), s.loc),
			Recent:  recentExpenses(expenses, recentLimit),
		}
		s.dashCache.Set(key, view)
		return view, nil
	})
	if err != nil {
		return dashboardView{}, err
	}
	return v.(dashboardView), nil
}
