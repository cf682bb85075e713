package core

import (
	"fmt"
	"time"
)

type (
	// CalendarDay is the derived per-day view of a month. Spent is
	// meaningful for past/today days only, Available for today/future
	// days only. Never persisted or cached: the partition depends on
	// the reference instant.
	CalendarDay struct {
		Day          int
		Date         Date
		Weekday      time.Weekday
		IsPast       bool
		IsToday      bool
		IsFuture     bool
		Spent        Money
		Available    Money
		Commitments  Money
		Appointments []string
	}

	// MonthCalendar is the full pacing view for one month.
	MonthCalendar struct {
		Year             int
		Month            int
		Salary           Money
		Days             []CalendarDay
		DaysRemaining    int
		RemainingBalance Money
		DailyAvailable   Money
	}

	// CalendarInput carries everything the generator needs. Entries may
	// span a wider range than the month; anything outside it is
	// ignored.
	CalendarInput struct {
		Year         int
		Month        int
		Salary       Money
		Entries      []LedgerEntry
		Appointments []Appointment
	}
)

// Year bounds accepted for calendar and report inputs.
const (
	minYear = 1900
	maxYear = 2200
)

// ValidateMonth checks a year/month pair against the accepted window.
// Every month-parameterized view goes through this.
func ValidateMonth(year, month int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("month %d: %w", month, ErrInvalidMonth)
	}
	if year < minYear || year > maxYear {
		return fmt.Errorf("year %d: %w", year, ErrInvalidMonth)
	}
	return nil
}

// BuildMonthCalendar computes the daily budget calendar for a month.
//
// Days are partitioned into past/today/future relative to the civil
// date of now in loc. The remaining balance is a running figure: salary
// minus the month's spend through today minus the month's remaining
// commitments. The daily allowance divides it flatly across the days
// left; repeated calls reallocate across whatever days remain, without
// carrying unspent allowance forward.
//
// A month wholly in the past yields per-day spend with zeros for the
// pacing figures rather than an error. A negative balance is reported
// as-is so callers can surface overspend.
func BuildMonthCalendar(in CalendarInput, now time.Time, loc *time.Location) (MonthCalendar, error) {
	if err := ValidateMonth(in.Year, in.Month); err != nil {
		return MonthCalendar{}, err
	}
	if loc == nil {
		loc = time.UTC
	}

	today := DateOf(now, loc)
	numDays := DaysInMonth(in.Year, in.Month)
	monthStart := NewDate(in.Year, in.Month, 1)
	monthEnd := NewDate(in.Year, in.Month, numDays)

	dayTotals := make(map[int]int64)
	commitByDay := make(map[int]int64)
	var elapsed, upcoming int64
	for _, e := range in.Entries {
		if e.Date.Before(monthStart.Time) || e.Date.After(monthEnd.Time) {
			continue
		}
		day := e.Date.Day()
		dayTotals[day] += e.Amount.Cents
		if e.Kind == EntryInstallment {
			commitByDay[day] += e.Amount.Cents
		}
		if e.Date.After(today.Time) {
			upcoming += e.Amount.Cents
		} else {
			elapsed += e.Amount.Cents
		}
	}

	titlesByDay := make(map[int][]string)
	for _, a := range in.Appointments {
		if a.Date.Before(monthStart.Time) || a.Date.After(monthEnd.Time) {
			continue
		}
		titlesByDay[a.Date.Day()] = append(titlesByDay[a.Date.Day()], a.Title)
	}

	cal := MonthCalendar{Year: in.Year, Month: in.Month, Salary: in.Salary}
	switch {
	case monthEnd.Before(today.Time):
		// Wholly past: only per-day spend is meaningful.
	case monthStart.After(today.Time):
		cal.DaysRemaining = numDays
		cal.RemainingBalance = Money{Cents: in.Salary.Cents - upcoming}
		cal.DailyAvailable = Money{Cents: roundDiv(cal.RemainingBalance.Cents, int64(numDays))}
	default:
		cal.DaysRemaining = numDays - today.Day() + 1
		cal.RemainingBalance = Money{Cents: in.Salary.Cents - elapsed - upcoming}
		cal.DailyAvailable = Money{Cents: roundDiv(cal.RemainingBalance.Cents, int64(cal.DaysRemaining))}
	}

	cal.Days = make([]CalendarDay, 0, numDays)
	for i := 1; i <= numDays; i++ {
		date := NewDate(in.Year, in.Month, i)
		day := CalendarDay{
			Day:          i,
			Date:         date,
			Weekday:      date.Time.Weekday(),
			Commitments:  Money{Cents: commitByDay[i]},
			Appointments: titlesByDay[i],
		}
		switch {
		case date.Before(today.Time):
			day.IsPast = true
		case date.Equal(today.Time):
			day.IsToday = true
		default:
			day.IsFuture = true
		}
		if day.IsPast || day.IsToday {
			day.Spent = Money{Cents: dayTotals[i]}
		}
		if (day.IsToday || day.IsFuture) && cal.DaysRemaining > 0 {
			day.Available = cal.DailyAvailable
		}
		cal.Days = append(cal.Days, day)
	}

	return cal, nil
}
