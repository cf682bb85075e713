package http

import (
	"context"
	"log/slog"
	"net/http"

	"grana/internal/core"
	applog "grana/internal/log"
)

type reportEntryJSON struct {
	Kind        string    `json:"kind"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	Amount      moneyJSON `json:"amount"`
	Category    string    `json:"category"`
}

type reportJSON struct {
	Start         string               `json:"start"`
	End           string               `json:"end"`
	TotalSpent    moneyJSON            `json:"total_spent"`
	TotalExpenses int                  `json:"total_expenses"`
	ByCategory    []categoryAmountJSON `json:"by_category"`
	Entries       []reportEntryJSON    `json:"entries"`
}

func toReportJSON(rep core.PeriodReport) reportJSON {
	out := reportJSON{
		Start:         rep.Start.String(),
		End:           rep.End.String(),
		TotalSpent:    toMoneyJSON(rep.TotalSpent),
		TotalExpenses: rep.TotalExpenses,
		ByCategory:    make([]categoryAmountJSON, 0, len(rep.ByCategory)),
		Entries:       make([]reportEntryJSON, 0, len(rep.Entries)),
	}
	for _, row := range rep.ByCategory {
		out.ByCategory = append(out.ByCategory, categoryAmountJSON{
			Name:   string(row.Name),
			Amount: toMoneyJSON(row.Amount),
		})
	}
	for _, e := range rep.Entries {
		out.Entries = append(out.Entries, reportEntryJSON{
			Kind:        string(e.Kind),
			Date:        e.Date.String(),
			Description: e.Description,
			Amount:      toMoneyJSON(e.Amount),
			Category:    string(e.Category),
		})
	}
	return out
}

// handleReport aggregates the merged stream over an inclusive date
// range given as start and end query parameters.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	ctx := r.Context()
	userID := requestUserID(r)

	q := r.URL.Query()
	rawStart, rawEnd := q.Get("start"), q.Get("end")
	if rawStart == "" || rawEnd == "" {
		writeErrorMessage(w, http.StatusBadRequest, "start and end query parameters are required")
		return
	}
	start, err := core.ParseDate(rawStart)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid start date "+rawStart)
		return
	}
	end, err := core.ParseDate(rawEnd)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid end date "+rawEnd)
		return
	}

	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	report, err := s.periodReport(sctx, userID, start, end)
	if err != nil {
		if statusForError(err) >= http.StatusInternalServerError {
			slog.ErrorContext(ctx, "Failed to build period report",
				applog.FieldComponent, applog.ComponentHTTP,
				applog.FieldOperation, applog.OpRead,
				applog.FieldUserID, userID,
				applog.FieldError, err)
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReportJSON(report))
}

// periodReport caches per range: reports over a fixed range only
// change when the ledger does, and mutations drop the whole prefix.
func (s *Server) periodReport(ctx context.Context, userID string, start, end core.Date) (core.PeriodReport, error) {
	key := reportCachePrefix(userID) + start.String() + ":" + end.String()
	if cached, ok := s.reportCache.Get(key); ok {
		return cached, nil
	}

	v, err, _ := s.flight.Do(key, func() (any, error) {
		entries, err := s.fetchStream(ctx, userID)
		if err != nil {
			return nil, err
		}
		report, err := core.BuildPeriodReport(entries, start, end)
		if err != nil {
			return nil, err
		}
		s.reportCache.Set(key, report)
		return report, nil
	})
	if err != nil {
		return core.PeriodReport{}, err
	}
	return v.(core.PeriodReport), nil
}
