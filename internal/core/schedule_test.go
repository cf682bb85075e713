package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestBuildSchedule(t *testing.T) {
	plan := InstallmentPlan{
		ID:          7,
		UserID:      "u1",
		Description: "notebook",
		Total:       Money{Cents: 100000},
		Count:       3,
		Category:    CategoryTecnologia,
		StartsOn:    NewDate(2025, 6, 10),
	}
	entries, err := BuildSchedule(plan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	wantAmounts := []int64{33333, 33333, 33334}
	wantDates := []Date{NewDate(2025, 6, 10), NewDate(2025, 7, 10), NewDate(2025, 8, 10)}
	for i, e := range entries {
		if e.Amount.Cents != wantAmounts[i] {
			t.Fatalf("entry %d amount = %d, want %d", i, e.Amount.Cents, wantAmounts[i])
		}
		if !e.DueOn.Equal(wantDates[i].Time) {
			t.Fatalf("entry %d due on %s, want %s", i, e.DueOn, wantDates[i])
		}
		if e.Seq != i+1 {
			t.Fatalf("entry %d seq = %d, want %d", i, e.Seq, i+1)
		}
		wantDesc := fmt.Sprintf("notebook (%d/3)", i+1)
		if e.Description != wantDesc {
			t.Fatalf("entry %d description = %q, want %q", i, e.Description, wantDesc)
		}
		if e.PlanID != plan.ID || e.UserID != plan.UserID || e.Category != plan.Category {
			t.Fatalf("entry %d does not carry plan fields: %+v", i, e)
		}
	}
}

func TestBuildScheduleSumsToTotal(t *testing.T) {
	totals := []int64{100000, 99999, 1, 123457, 500000, 2}
	for _, total := range totals {
		for count := MinInstallments; count <= MaxInstallments; count++ {
			plan := InstallmentPlan{
				UserID:      "u",
				Description: "d",
				Total:       Money{Cents: total},
				Count:       count,
				Category:    CategoryOutros,
				StartsOn:    NewDate(2025, 1, 15),
			}
			entries, err := BuildSchedule(plan)
			if err != nil {
				t.Fatalf("total %d count %d: %v", total, count, err)
			}
			var sum int64
			for _, e := range entries {
				sum += e.Amount.Cents
			}
			if sum != total {
				t.Fatalf("total %d count %d: entries sum to %d", total, count, sum)
			}
			for i := 0; i < count-1; i++ {
				if entries[i].Amount.Cents != entries[0].Amount.Cents {
					t.Fatalf("total %d count %d: entry %d differs before the last", total, count, i)
				}
			}
		}
	}
}

func TestBuildScheduleClampsDayOfMonth(t *testing.T) {
	plan := InstallmentPlan{
		UserID:      "u",
		Description: "sofa",
		Total:       Money{Cents: 120000},
		Count:       4,
		Category:    CategoryMoradia,
		StartsOn:    NewDate(2025, 1, 31),
	}
	entries, err := BuildSchedule(plan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Date{
		NewDate(2025, 1, 31),
		NewDate(2025, 2, 28),
		NewDate(2025, 3, 31),
		NewDate(2025, 4, 30),
	}
	for i, e := range entries {
		if !e.DueOn.Equal(want[i].Time) {
			t.Fatalf("entry %d due on %s, want %s", i, e.DueOn, want[i])
		}
	}
}

func TestBuildScheduleRejectsBadPlans(t *testing.T) {
	bads := []InstallmentPlan{
		{UserID: "u", Description: "d", Total: Money{Cents: 0}, Count: 3, Category: "c", StartsOn: NewDate(2025, 1, 1)},
		{UserID: "u", Description: "d", Total: Money{Cents: -500}, Count: 3, Category: "c", StartsOn: NewDate(2025, 1, 1)},
		{UserID: "u", Description: "d", Total: Money{Cents: 1000}, Count: 1, Category: "c", StartsOn: NewDate(2025, 1, 1)},
		{UserID: "u", Description: "d", Total: Money{Cents: 1000}, Count: 49, Category: "c", StartsOn: NewDate(2025, 1, 1)},
		{UserID: "u", Description: "d", Total: Money{Cents: 1000}, Count: 0, Category: "c", StartsOn: NewDate(2025, 1, 1)},
	}
	for i, p := range bads {
		if _, err := BuildSchedule(p); !errors.Is(err, ErrInvalidPlan) {
			t.Fatalf("case %d expected ErrInvalidPlan, got %v", i, err)
		}
	}
}

func TestMonthlyAmount(t *testing.T) {
	cases := []struct {
		total int64
		count int
		want  int64
	}{
		{100000, 3, 33333},
		{120000, 4, 30000},
		{99999, 2, 50000},
		{25, 2, 13},
	}
	for _, tc := range cases {
		if got := MonthlyAmount(Money{Cents: tc.total}, tc.count); got.Cents != tc.want {
			t.Fatalf("MonthlyAmount(%d, %d) = %d, want %d", tc.total, tc.count, got.Cents, tc.want)
		}
	}
}
