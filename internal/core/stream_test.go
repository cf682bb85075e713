package core

import "testing"

func TestMergeStream(t *testing.T) {
	expenses := []Expense{
		{UserID: "u", Description: "mercado", Amount: Money{Cents: 4500}, Category: CategoryAlimentacao, OccurredOn: NewDate(2025, 6, 10)},
		{UserID: "u", Description: "cinema", Amount: Money{Cents: 3000}, Category: CategoryEntretenimento, OccurredOn: NewDate(2025, 6, 2)},
	}
	entries := []InstallmentEntry{
		{PlanID: 1, UserID: "u", Seq: 1, Description: "notebook (1/3)", Amount: Money{Cents: 33333}, Category: CategoryTecnologia, DueOn: NewDate(2025, 6, 10)},
		{PlanID: 1, UserID: "u", Seq: 2, Description: "notebook (2/3)", Amount: Money{Cents: 33333}, Category: CategoryTecnologia, DueOn: NewDate(2025, 7, 10)},
	}

	stream := MergeStream(expenses, entries)
	if len(stream) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(stream))
	}

	wantOrder := []string{"cinema", "mercado", "notebook (1/3)", "notebook (2/3)"}
	for i, want := range wantOrder {
		if stream[i].Description != want {
			t.Fatalf("position %d = %q, want %q", i, stream[i].Description, want)
		}
	}

	if stream[0].Kind != EntryDirect || stream[2].Kind != EntryInstallment {
		t.Fatalf("kinds not carried: %+v", stream)
	}
	if stream[1].Date.Day() != 10 || stream[2].Date.Day() != 10 {
		t.Fatalf("same-day tie should keep the expense first: %+v", stream[1:3])
	}
	if stream[3].Amount.Cents != 33333 || stream[3].Category != CategoryTecnologia {
		t.Fatalf("installment fields not carried: %+v", stream[3])
	}
}

func TestMergeStreamEmpty(t *testing.T) {
	if got := MergeStream(nil, nil); len(got) != 0 {
		t.Fatalf("expected empty stream, got %+v", got)
	}
}
