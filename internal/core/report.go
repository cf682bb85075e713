package core

import (
	"fmt"
	"sort"
)

// PeriodReport is the aggregate over an arbitrary inclusive date range.
type PeriodReport struct {
	Start         Date
	End           Date
	TotalSpent    Money
	TotalExpenses int
	ByCategory    []CategoryAmount
	Entries       []LedgerEntry
}

// BuildPeriodReport filters the stream to entries dated within
// [start, end] inclusive and aggregates them. The returned entry list
// is chronological. A one-day range (start equal to end) is valid;
// start strictly after end is ErrInvalidRange. There is no implicit
// range-size limit; pagination belongs to callers.
func BuildPeriodReport(entries []LedgerEntry, start, end Date) (PeriodReport, error) {
	if start.IsZero() || end.IsZero() {
		return PeriodReport{}, fmt.Errorf("missing range bound: %w", ErrInvalidRange)
	}
	if start.After(end.Time) {
		return PeriodReport{}, fmt.Errorf("start %s after end %s: %w", start, end, ErrInvalidRange)
	}

	report := PeriodReport{Start: start, End: end}
	byCategory := make(map[Category]int64)
	for _, e := range entries {
		if e.Date.Before(start.Time) || e.Date.After(end.Time) {
			continue
		}
		report.Entries = append(report.Entries, e)
		report.TotalSpent.Cents += e.Amount.Cents
		byCategory[e.Category] += e.Amount.Cents
	}
	report.TotalExpenses = len(report.Entries)
	report.ByCategory = sortedCategoryTotals(byCategory)
	sort.SliceStable(report.Entries, func(i, j int) bool {
		return report.Entries[i].Date.Before(report.Entries[j].Date.Time)
	})
	return report, nil
}
