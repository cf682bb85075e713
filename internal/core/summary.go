package core

import (
	"sort"
	"time"
)

type (
	// CategoryAmount is one row of a category breakdown.
	CategoryAmount struct {
		Name   Category
		Amount Money
	}

	// MonthlyTotal aggregates one calendar month of the stream, keyed
	// "YYYY-MM".
	MonthlyTotal struct {
		Month string
		Total Money
		Count int
	}

	// DashboardSummary is the whole-of-history view. CurrentBalance
	// nets the current month's spend through today against salary:
	// salary is a monthly quantity, so the month is the anchor period.
	DashboardSummary struct {
		CurrentBalance    Money
		CurrentMonthSpent Money
		TotalExpenses     int
		ByCategory        []CategoryAmount
		Monthly           []MonthlyTotal
	}
)

const monthKeyLayout = "2006-01"

// BuildDashboardSummary aggregates the user's complete merged stream.
// Category totals cover every entry ever recorded and always sum to the
// all-time stream total. CurrentMonthSpent counts entries dated in the
// current month up to and including today.
func BuildDashboardSummary(entries []LedgerEntry, salary Money, now time.Time, loc *time.Location) DashboardSummary {
	if loc == nil {
		loc = time.UTC
	}
	today := DateOf(now, loc)
	currentKey := today.Format(monthKeyLayout)

	byCategory := make(map[Category]int64)
	type monthAgg struct {
		total int64
		count int
	}
	byMonth := make(map[string]*monthAgg)
	var monthSpent int64
	for _, e := range entries {
		byCategory[e.Category] += e.Amount.Cents
		key := e.Date.Format(monthKeyLayout)
		agg := byMonth[key]
		if agg == nil {
			agg = &monthAgg{}
			byMonth[key] = agg
		}
		agg.total += e.Amount.Cents
		agg.count++
		if key == currentKey && !e.Date.After(today.Time) {
			monthSpent += e.Amount.Cents
		}
	}

	monthly := make([]MonthlyTotal, 0, len(byMonth))
	for key, agg := range byMonth {
		monthly = append(monthly, MonthlyTotal{
			Month: key,
			Total: Money{Cents: agg.total},
			Count: agg.count,
		})
	}
	sort.Slice(monthly, func(i, j int) bool { return monthly[i].Month < monthly[j].Month })

	return DashboardSummary{
		CurrentBalance:    Money{Cents: salary.Cents - monthSpent},
		CurrentMonthSpent: Money{Cents: monthSpent},
		TotalExpenses:     len(entries),
		ByCategory:        sortedCategoryTotals(byCategory),
		Monthly:           monthly,
	}
}

// sortedCategoryTotals flattens a category map into rows ordered by
// descending amount, ties broken by name, for stable output.
func sortedCategoryTotals(totals map[Category]int64) []CategoryAmount {
	rows := make([]CategoryAmount, 0, len(totals))
	for name, cents := range totals {
		rows = append(rows, CategoryAmount{Name: name, Amount: Money{Cents: cents}})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Amount.Cents != rows[j].Amount.Cents {
			return rows[i].Amount.Cents > rows[j].Amount.Cents
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}
