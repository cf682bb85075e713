package core

import (
	"errors"
	"testing"
)

func TestBuildPeriodReport(t *testing.T) {
	entries := []LedgerEntry{
		{Kind: EntryDirect, Date: NewDate(2025, 5, 31), Description: "antes", Amount: Money{Cents: 11111}, Category: CategoryOutros},
		{Kind: EntryDirect, Date: NewDate(2025, 6, 1), Description: "no inicio", Amount: Money{Cents: 10000}, Category: CategoryAlimentacao},
		{Kind: EntryInstallment, Date: NewDate(2025, 6, 15), Description: "sofa (1/4)", Amount: Money{Cents: 30000}, Category: CategoryMoradia},
		{Kind: EntryDirect, Date: NewDate(2025, 6, 30), Description: "no fim", Amount: Money{Cents: 20000}, Category: CategoryAlimentacao},
		{Kind: EntryDirect, Date: NewDate(2025, 7, 1), Description: "depois", Amount: Money{Cents: 22222}, Category: CategoryOutros},
	}
	report, err := BuildPeriodReport(entries, NewDate(2025, 6, 1), NewDate(2025, 6, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.TotalExpenses != 3 {
		t.Fatalf("TotalExpenses = %d, want 3", report.TotalExpenses)
	}
	if report.TotalSpent.Cents != 60000 {
		t.Fatalf("TotalSpent = %d, want 60000", report.TotalSpent.Cents)
	}
	for i, want := range []string{"no inicio", "sofa (1/4)", "no fim"} {
		if report.Entries[i].Description != want {
			t.Fatalf("entry %d = %q, want %q", i, report.Entries[i].Description, want)
		}
	}
	wantCats := []CategoryAmount{
		{Name: CategoryAlimentacao, Amount: Money{Cents: 30000}},
		{Name: CategoryMoradia, Amount: Money{Cents: 30000}},
	}
	for i, want := range wantCats {
		if report.ByCategory[i] != want {
			t.Fatalf("ByCategory[%d] = %+v, want %+v", i, report.ByCategory[i], want)
		}
	}
}

func TestBuildPeriodReportSingleDay(t *testing.T) {
	day := NewDate(2025, 6, 15)
	entries := []LedgerEntry{
		{Kind: EntryDirect, Date: day, Amount: Money{Cents: 5000}, Category: CategoryOutros},
		{Kind: EntryDirect, Date: NewDate(2025, 6, 16), Amount: Money{Cents: 7000}, Category: CategoryOutros},
	}
	report, err := BuildPeriodReport(entries, day, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TotalExpenses != 1 || report.TotalSpent.Cents != 5000 {
		t.Fatalf("single-day report = %+v", report)
	}
}

func TestBuildPeriodReportRejectsBadRanges(t *testing.T) {
	cases := []struct {
		start, end Date
	}{
		{NewDate(2025, 6, 2), NewDate(2025, 6, 1)},
		{Date{}, NewDate(2025, 6, 1)},
		{NewDate(2025, 6, 1), Date{}},
	}
	for i, tc := range cases {
		if _, err := BuildPeriodReport(nil, tc.start, tc.end); !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("case %d expected ErrInvalidRange, got %v", i, err)
		}
	}
}

func TestBuildPeriodReportEmptyRange(t *testing.T) {
	entries := []LedgerEntry{
		{Kind: EntryDirect, Date: NewDate(2025, 6, 15), Amount: Money{Cents: 5000}, Category: CategoryOutros},
	}
	report, err := BuildPeriodReport(entries, NewDate(2024, 1, 1), NewDate(2024, 12, 31))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TotalExpenses != 0 || report.TotalSpent.Cents != 0 || len(report.Entries) != 0 {
		t.Fatalf("expected an empty report, got %+v", report)
	}
}
