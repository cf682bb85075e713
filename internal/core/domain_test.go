package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: -1}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		UserID:      "u1",
		Description: "mercado",
		Amount:      Money{Cents: 4550},
		Category:    CategoryAlimentacao,
		OccurredOn:  NewDate(2025, 6, 10),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{UserID: "", Description: "a", Amount: Money{Cents: 1}, Category: "c", OccurredOn: NewDate(2025, 1, 1)},
		{UserID: "u", Description: "", Amount: Money{Cents: 1}, Category: "c", OccurredOn: NewDate(2025, 1, 1)},
		{UserID: "u", Description: strings.Repeat("x", 201), Amount: Money{Cents: 1}, Category: "c", OccurredOn: NewDate(2025, 1, 1)},
		{UserID: "u", Description: "a", Amount: Money{Cents: 0}, Category: "c", OccurredOn: NewDate(2025, 1, 1)},
		{UserID: "u", Description: "a", Amount: Money{Cents: 1}, Category: "", OccurredOn: NewDate(2025, 1, 1)},
		{UserID: "u", Description: "a", Amount: Money{Cents: 1}, Category: "c", OccurredOn: Date{Time: time.Time{}}},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestInstallmentPlanValidate(t *testing.T) {
	good := InstallmentPlan{
		UserID:      "u1",
		Description: "notebook",
		Total:       Money{Cents: 100000},
		Count:       3,
		Category:    CategoryTecnologia,
		StartsOn:    NewDate(2025, 6, 10),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		mut  func(*InstallmentPlan)
		want error
	}{
		{"zero total", func(p *InstallmentPlan) { p.Total = Money{} }, ErrInvalidPlan},
		{"negative total", func(p *InstallmentPlan) { p.Total = Money{Cents: -100} }, ErrInvalidPlan},
		{"count too low", func(p *InstallmentPlan) { p.Count = 1 }, ErrInvalidPlan},
		{"count too high", func(p *InstallmentPlan) { p.Count = 49 }, ErrInvalidPlan},
		{"empty description", func(p *InstallmentPlan) { p.Description = " " }, ErrEmptyDescription},
		{"empty user", func(p *InstallmentPlan) { p.UserID = "" }, ErrEmptyUser},
		{"empty category", func(p *InstallmentPlan) { p.Category = "" }, ErrEmptyCategory},
		{"zero start", func(p *InstallmentPlan) { p.StartsOn = Date{} }, ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := good
			tc.mut(&p)
			err := p.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestAppointmentValidate(t *testing.T) {
	good := Appointment{
		UserID:    "u1",
		Title:     "dentista",
		Date:      NewDate(2025, 6, 12),
		TimeOfDay: "14:30",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Appointment{
		{UserID: "", Title: "a", Date: NewDate(2025, 1, 1), TimeOfDay: "10:00"},
		{UserID: "u", Title: " ", Date: NewDate(2025, 1, 1), TimeOfDay: "10:00"},
		{UserID: "u", Title: "a", Date: Date{}, TimeOfDay: "10:00"},
		{UserID: "u", Title: "a", Date: NewDate(2025, 1, 1), TimeOfDay: "25:00"},
		{UserID: "u", Title: "a", Date: NewDate(2025, 1, 1), TimeOfDay: ""},
	}
	for i, a := range bads {
		if err := a.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestCategoryKnown(t *testing.T) {
	if !CategoryAlimentacao.Known() {
		t.Fatalf("Alimentação should be known")
	}
	if Category("Criptomoedas").Known() {
		t.Fatalf("arbitrary label should not be known")
	}
	if len(KnownCategories()) != 10 {
		t.Fatalf("expected 10 known categories, got %d", len(KnownCategories()))
	}
}

func TestAddMonthsClamped(t *testing.T) {
	cases := []struct {
		start Date
		n     int
		want  Date
	}{
		{NewDate(2025, 1, 31), 1, NewDate(2025, 2, 28)},
		{NewDate(2024, 1, 31), 1, NewDate(2024, 2, 29)}, // leap year
		{NewDate(2025, 1, 31), 3, NewDate(2025, 4, 30)},
		{NewDate(2025, 1, 15), 1, NewDate(2025, 2, 15)},
		{NewDate(2025, 11, 30), 3, NewDate(2026, 2, 28)}, // rolls over the year
		{NewDate(2025, 5, 10), 0, NewDate(2025, 5, 10)},
	}
	for _, tc := range cases {
		if got := tc.start.AddMonthsClamped(tc.n); !got.Equal(tc.want.Time) {
			t.Fatalf("%s + %d months = %s, want %s", tc.start, tc.n, got, tc.want)
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		year, month, want int
	}{
		{2025, 1, 31},
		{2025, 2, 28},
		{2024, 2, 29},
		{2025, 4, 30},
		{2025, 12, 31},
	}
	for _, tc := range cases {
		if got := DaysInMonth(tc.year, tc.month); got != tc.want {
			t.Fatalf("DaysInMonth(%d, %d) = %d, want %d", tc.year, tc.month, got, tc.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2025 || d.Month() != 6 || d.Day() != 10 {
		t.Fatalf("unexpected date: %s", d)
	}
	if _, err := ParseDate("10/06/2025"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestDateOf(t *testing.T) {
	sp := time.FixedZone("-03", -3*60*60)
	// 01:30 UTC is still the previous day at UTC-3.
	instant := time.Date(2025, 6, 11, 1, 30, 0, 0, time.UTC)
	if got := DateOf(instant, sp); !got.Equal(NewDate(2025, 6, 10).Time) {
		t.Fatalf("DateOf = %s, want 2025-06-10", got)
	}
	if got := DateOf(instant, time.UTC); !got.Equal(NewDate(2025, 6, 11).Time) {
		t.Fatalf("DateOf UTC = %s, want 2025-06-11", got)
	}
}
