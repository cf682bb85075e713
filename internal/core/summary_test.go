package core

import (
	"testing"
	"time"
)

func summaryEntries() []LedgerEntry {
	return []LedgerEntry{
		{Kind: EntryDirect, Date: NewDate(2025, 5, 5), Description: "padaria", Amount: Money{Cents: 10000}, Category: CategoryAlimentacao},
		{Kind: EntryDirect, Date: NewDate(2025, 5, 20), Description: "onibus", Amount: Money{Cents: 20000}, Category: CategoryTransporte},
		{Kind: EntryDirect, Date: NewDate(2025, 6, 3), Description: "mercado", Amount: Money{Cents: 25000}, Category: CategoryAlimentacao},
		{Kind: EntryDirect, Date: NewDate(2025, 6, 10), Description: "farmacia", Amount: Money{Cents: 35000}, Category: CategorySaude},
		{Kind: EntryInstallment, Date: NewDate(2025, 6, 25), Description: "notebook (2/3)", Amount: Money{Cents: 50000}, Category: CategoryTecnologia},
	}
}

func TestBuildDashboardSummary(t *testing.T) {
	now := time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC)
	s := BuildDashboardSummary(summaryEntries(), Money{Cents: 300000}, now, time.UTC)

	// The installment due on the 25th is ahead of today, so it counts
	// toward history totals but not toward the month-to-date spend.
	if s.CurrentMonthSpent.Cents != 60000 {
		t.Fatalf("CurrentMonthSpent = %d, want 60000", s.CurrentMonthSpent.Cents)
	}
	if s.CurrentBalance.Cents != 240000 {
		t.Fatalf("CurrentBalance = %d, want 240000", s.CurrentBalance.Cents)
	}
	if s.TotalExpenses != 5 {
		t.Fatalf("TotalExpenses = %d, want 5", s.TotalExpenses)
	}

	wantCats := []CategoryAmount{
		{Name: CategoryTecnologia, Amount: Money{Cents: 50000}},
		{Name: CategoryAlimentacao, Amount: Money{Cents: 35000}},
		{Name: CategorySaude, Amount: Money{Cents: 35000}},
		{Name: CategoryTransporte, Amount: Money{Cents: 20000}},
	}
	if len(s.ByCategory) != len(wantCats) {
		t.Fatalf("ByCategory = %+v, want %d rows", s.ByCategory, len(wantCats))
	}
	for i, want := range wantCats {
		if s.ByCategory[i] != want {
			t.Fatalf("ByCategory[%d] = %+v, want %+v", i, s.ByCategory[i], want)
		}
	}

	wantMonthly := []MonthlyTotal{
		{Month: "2025-05", Total: Money{Cents: 30000}, Count: 2},
		{Month: "2025-06", Total: Money{Cents: 110000}, Count: 3},
	}
	if len(s.Monthly) != len(wantMonthly) {
		t.Fatalf("Monthly = %+v, want %d rows", s.Monthly, len(wantMonthly))
	}
	for i, want := range wantMonthly {
		if s.Monthly[i] != want {
			t.Fatalf("Monthly[%d] = %+v, want %+v", i, s.Monthly[i], want)
		}
	}
}

func TestBuildDashboardSummaryTotalsReconcile(t *testing.T) {
	now := time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC)
	entries := summaryEntries()
	s := BuildDashboardSummary(entries, Money{Cents: 300000}, now, time.UTC)

	var streamTotal int64
	for _, e := range entries {
		streamTotal += e.Amount.Cents
	}
	var catTotal int64
	for _, c := range s.ByCategory {
		catTotal += c.Amount.Cents
	}
	var monthTotal int64
	for _, m := range s.Monthly {
		monthTotal += m.Total.Cents
	}
	if catTotal != streamTotal || monthTotal != streamTotal {
		t.Fatalf("category %d and monthly %d must both equal stream %d", catTotal, monthTotal, streamTotal)
	}
}

func TestBuildDashboardSummaryEmpty(t *testing.T) {
	now := time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC)
	s := BuildDashboardSummary(nil, Money{Cents: 300000}, now, time.UTC)
	if s.CurrentBalance.Cents != 300000 {
		t.Fatalf("CurrentBalance = %d, want full salary", s.CurrentBalance.Cents)
	}
	if s.CurrentMonthSpent.Cents != 0 || s.TotalExpenses != 0 {
		t.Fatalf("empty stream should report zero spend: %+v", s)
	}
	if len(s.ByCategory) != 0 || len(s.Monthly) != 0 {
		t.Fatalf("empty stream should have no breakdown rows: %+v", s)
	}
}

func TestBuildDashboardSummaryOverspend(t *testing.T) {
	now := time.Date(2025, 6, 28, 10, 0, 0, 0, time.UTC)
	entries := []LedgerEntry{
		{Kind: EntryDirect, Date: NewDate(2025, 6, 2), Amount: Money{Cents: 250000}, Category: CategoryMoradia},
		{Kind: EntryDirect, Date: NewDate(2025, 6, 15), Amount: Money{Cents: 100000}, Category: CategorySaude},
	}
	s := BuildDashboardSummary(entries, Money{Cents: 300000}, now, time.UTC)
	if s.CurrentBalance.Cents != -50000 {
		t.Fatalf("CurrentBalance = %d, want -50000", s.CurrentBalance.Cents)
	}
}
