package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"grana/internal/core"
	applog "grana/internal/log"
)

type calendarDayJSON struct {
	Day          int       `json:"day"`
	Date         string    `json:"date"`
	Weekday      string    `json:"weekday"`
	IsPast       bool      `json:"is_past"`
	IsToday      bool      `json:"is_today"`
	IsFuture     bool      `json:"is_future"`
	Spent        moneyJSON `json:"spent"`
	Available    moneyJSON `json:"available"`
	Commitments  moneyJSON `json:"commitments"`
	Appointments []string  `json:"appointments,omitempty"`
}

type calendarJSON struct {
	Year             int               `json:"year"`
	Month            int               `json:"month"`
	Salary           moneyJSON         `json:"salary"`
	DaysRemaining    int               `json:"days_remaining"`
	RemainingBalance moneyJSON         `json:"remaining_balance"`
	DailyAvailable   moneyJSON         `json:"daily_available"`
	Days             []calendarDayJSON `json:"days"`
}

func toCalendarJSON(cal core.MonthCalendar) calendarJSON {
	out := calendarJSON{
		Year:             cal.Year,
		Month:            cal.Month,
		Salary:           toMoneyJSON(cal.Salary),
		DaysRemaining:    cal.DaysRemaining,
		RemainingBalance: toMoneyJSON(cal.RemainingBalance),
		DailyAvailable:   toMoneyJSON(cal.DailyAvailable),
		Days:             make([]calendarDayJSON, 0, len(cal.Days)),
	}
	for _, d := range cal.Days {
		out.Days = append(out.Days, calendarDayJSON{
			Day:          d.Day,
			Date:         d.Date.String(),
			Weekday:      d.Weekday.String(),
			IsPast:       d.IsPast,
			IsToday:      d.IsToday,
			IsFuture:     d.IsFuture,
			Spent:        toMoneyJSON(d.Spent),
			Available:    toMoneyJSON(d.Available),
			Commitments:  toMoneyJSON(d.Commitments),
			Appointments: d.Appointments,
		})
	}
	return out
}

// handleCalendar renders the daily budget view for one month. The
// response is recomputed on every call: the past/today/future split
// moves with the clock, so this view must never be served stale.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	ctx := r.Context()
	userID := requestUserID(r)

	year, month, err := s.parseYearMonth(r)
	if err != nil {
		slog.WarnContext(ctx, "Rejected calendar parameters",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldOperation, applog.OpParse,
			applog.FieldError, err)
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	cal, err := s.monthCalendar(sctx, userID, year, month)
	if err != nil {
		if statusForError(err) >= http.StatusInternalServerError {
			slog.ErrorContext(ctx, "Failed to load calendar inputs",
				applog.FieldComponent, applog.ComponentHTTP,
				applog.FieldOperation, applog.OpRead,
				applog.FieldUserID, userID,
				applog.FieldError, err)
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCalendarJSON(cal))
}

// monthCalendar builds the pacing view, collapsing concurrent identical
// requests into one build. The flight key includes today's date so the
// shared result never crosses a day boundary.
func (s *Server) monthCalendar(ctx context.Context, userID string, year, month int) (core.MonthCalendar, error) {
	now := s.now()
	key := fmt.Sprintf("cal:%s:%04d-%02d:%s", userID, year, month, core.DateOf(now, s.loc))

	v, err, _ := s.flight.Do(key, func() (any, error) {
		var (
			entries      []core.LedgerEntry
			salary       core.SalarySetting
			appointments []core.Appointment
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			entries, err = s.fetchStream(gctx, userID)
			return err
		})
		g.Go(func() error {
			var err error
			salary, err = s.store.Salary(gctx, userID)
			return err
		})
		g.Go(func() error {
			var err error
			appointments, err = s.store.ListAppointments(gctx, userID)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		return core.BuildMonthCalendar(core.CalendarInput{
			Year:         year,
			Month:        month,
			Salary:       salary.Amount,
			Entries:      entries,
			Appointments: appointments,
		}, now, s.loc)
	})
	if err != nil {
		return core.MonthCalendar{}, err
	}
	return v.(core.MonthCalendar), nil
}
