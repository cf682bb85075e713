package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"grana/internal/core"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "grana.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testExpense() core.Expense {
	return core.Expense{
		UserID:      "u1",
		Description: "mercado",
		Amount:      core.Money{Cents: 4500},
		Category:    core.CategoryAlimentacao,
		OccurredOn:  core.NewDate(2025, 6, 10),
		CreatedAt:   time.Now().UTC(),
	}
}

func TestExpenseLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	stored, evID, err := repo.CreateExpense(ctx, testExpense())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if stored.ID == 0 {
		t.Fatalf("expected an assigned id")
	}
	if evID == 0 {
		t.Fatalf("expected a journal row id")
	}

	list, err := repo.ListExpenses(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 expense, got %d", len(list))
	}
	got := list[0]
	if got.Description != "mercado" || got.Amount.Cents != 4500 || got.Category != core.CategoryAlimentacao {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
	if !got.OccurredOn.Equal(core.NewDate(2025, 6, 10).Time) {
		t.Fatalf("occurred_on = %s", got.OccurredOn)
	}

	if _, err := repo.DeleteExpense(ctx, "u1", stored.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.DeleteExpense(ctx, "u1", stored.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete should be NotFound, got %v", err)
	}

	events, err := repo.PendingEvents(ctx, 10)
	if err != nil {
		t.Fatalf("pending events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 journal rows, got %d", len(events))
	}
	if events[0].Kind != KindExpenseCreated || events[1].Kind != KindExpenseDeleted {
		t.Fatalf("unexpected kinds: %s, %s", events[0].Kind, events[1].Kind)
	}
	if events[1].Description != "mercado" || events[1].AmountCents != 4500 {
		t.Fatalf("deletion event should snapshot the expense: %+v", events[1])
	}
}

func TestUserIsolation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	stored, _, err := repo.CreateExpense(ctx, testExpense())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if list, _ := repo.ListExpenses(ctx, "u2"); len(list) != 0 {
		t.Fatalf("u2 should see nothing, got %v", list)
	}
	if _, err := repo.DeleteExpense(ctx, "u2", stored.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-user delete should be NotFound, got %v", err)
	}
}

func TestPlanLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	plan := core.InstallmentPlan{
		UserID:      "u1",
		Description: "notebook",
		Total:       core.Money{Cents: 100000},
		Count:       3,
		Category:    core.CategoryTecnologia,
		StartsOn:    core.NewDate(2025, 6, 10),
		CreatedAt:   time.Now().UTC(),
	}
	plan.Monthly = core.MonthlyAmount(plan.Total, plan.Count)
	entries, err := core.BuildSchedule(plan)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	stored, _, err := repo.CreatePlan(ctx, plan, entries)
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}

	plans, err := repo.ListPlans(ctx, "u1")
	if err != nil || len(plans) != 1 {
		t.Fatalf("list plans = %v, %v", plans, err)
	}
	if plans[0].Monthly.Cents != 33333 || plans[0].Count != 3 {
		t.Fatalf("plan roundtrip mismatch: %+v", plans[0])
	}

	got, err := repo.ListPlanEntries(ctx, "u1")
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	var sum int64
	for _, e := range got {
		if e.PlanID != stored.ID {
			t.Fatalf("entry not linked: %+v", e)
		}
		sum += e.Amount.Cents
	}
	if sum != 100000 {
		t.Fatalf("entries sum to %d, want the plan total", sum)
	}

	if _, err := repo.DeletePlan(ctx, "u1", stored.ID); err != nil {
		t.Fatalf("delete plan: %v", err)
	}
	if got, _ := repo.ListPlanEntries(ctx, "u1"); len(got) != 0 {
		t.Fatalf("entries should vanish with the plan, got %v", got)
	}
	if _, err := repo.DeletePlan(ctx, "u1", stored.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete should be NotFound, got %v", err)
	}
}

func TestSalaryUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	set, err := repo.Salary(ctx, "u1")
	if err != nil {
		t.Fatalf("unset salary: %v", err)
	}
	if set.Amount.Cents != 0 {
		t.Fatalf("unset salary should be zero, got %d", set.Amount.Cents)
	}

	now := time.Now().UTC()
	if _, _, err := repo.SetSalary(ctx, core.SalarySetting{UserID: "u1", Amount: core.Money{Cents: 300000}, UpdatedAt: now}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, _, err := repo.SetSalary(ctx, core.SalarySetting{UserID: "u1", Amount: core.Money{Cents: 350000}, UpdatedAt: now.Add(time.Hour)}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	set, err = repo.Salary(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if set.Amount.Cents != 350000 {
		t.Fatalf("salary = %d, want the latest value", set.Amount.Cents)
	}
}

func TestAppointmentLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	stored, _, err := repo.CreateAppointment(ctx, core.Appointment{
		UserID:    "u1",
		Title:     "dentista",
		Date:      core.NewDate(2025, 6, 12),
		TimeOfDay: "14:30",
		Location:  "centro",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := repo.CreateAppointment(ctx, core.Appointment{
		UserID:    "u2",
		Title:     "reuniao",
		Date:      core.NewDate(2025, 6, 12),
		TimeOfDay: "09:00",
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("create for u2: %v", err)
	}

	list, err := repo.ListAppointments(ctx, "u1")
	if err != nil || len(list) != 1 {
		t.Fatalf("list = %v, %v", list, err)
	}
	if list[0].TimeOfDay != "14:30" || list[0].Location != "centro" {
		t.Fatalf("roundtrip mismatch: %+v", list[0])
	}

	due, err := repo.DueReminders(ctx, core.NewDate(2025, 6, 12))
	if err != nil {
		t.Fatalf("due reminders: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("reminder scan should span users, got %d", len(due))
	}
	if due[0].TimeOfDay != "09:00" {
		t.Fatalf("reminder scan should order by time, got %+v", due[0])
	}

	if err := repo.MarkReminded(ctx, due[0].ID, core.NewDate(2025, 6, 12)); err != nil {
		t.Fatalf("mark reminded: %v", err)
	}
	if due, _ = repo.DueReminders(ctx, core.NewDate(2025, 6, 12)); len(due) != 1 {
		t.Fatalf("reminded appointment should drop out of the scan, got %d", len(due))
	}

	if _, err := repo.DeleteAppointment(ctx, "u1", stored.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.DeleteAppointment(ctx, "u1", stored.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete should be NotFound, got %v", err)
	}
}

func TestExportLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, id, err := repo.CreateExpense(ctx, testExpense())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	events, err := repo.PendingEvents(ctx, 10)
	if err != nil || len(events) != 1 {
		t.Fatalf("pending = %v, %v", events, err)
	}
	if events[0].ID != id {
		t.Fatalf("pending row id = %d, want the returned journal id %d", events[0].ID, id)
	}

	if err := repo.MarkExported(ctx, id); err != nil {
		t.Fatalf("mark exported: %v", err)
	}
	if events, _ = repo.PendingEvents(ctx, 10); len(events) != 0 {
		t.Fatalf("exported row still pending: %v", events)
	}
	if n, _ := repo.EventCount(ctx, ExportExported); n != 1 {
		t.Fatalf("exported count = %d, want 1", n)
	}

	got, err := repo.Event(ctx, id)
	if err != nil {
		t.Fatalf("event: %v", err)
	}
	if !got.ExportedAt.Valid {
		t.Fatalf("exported_at should be set: %+v", got)
	}
}

func TestExportRetryBudget(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, id, err := repo.CreateExpense(ctx, testExpense())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Two attempts allowed: the first failure keeps it pending, the
	// second parks it as failed.
	if err := repo.MarkExportError(ctx, id, 2); err != nil {
		t.Fatalf("mark error: %v", err)
	}
	if events, _ := repo.PendingEvents(ctx, 10); len(events) != 1 {
		t.Fatalf("row should stay pending after first failure: %v", events)
	}
	if err := repo.MarkExportError(ctx, id, 2); err != nil {
		t.Fatalf("mark error: %v", err)
	}
	if events, _ := repo.PendingEvents(ctx, 10); len(events) != 0 {
		t.Fatalf("row should be parked after retry budget: %v", events)
	}
	if n, _ := repo.EventCount(ctx, ExportFailed); n != 1 {
		t.Fatalf("failed count = %d, want 1", n)
	}
}

func TestDueInstallments(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	plan := core.InstallmentPlan{
		UserID:      "u1",
		Description: "notebook",
		Total:       core.Money{Cents: 90000},
		Count:       3,
		Category:    core.CategoryTecnologia,
		StartsOn:    core.NewDate(2025, 6, 15),
		CreatedAt:   time.Now().UTC(),
	}
	plan.Monthly = core.MonthlyAmount(plan.Total, plan.Count)
	entries, err := core.BuildSchedule(plan)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if _, _, err := repo.CreatePlan(ctx, plan, entries); err != nil {
		t.Fatalf("create plan: %v", err)
	}

	due, err := repo.DueInstallments(ctx, core.NewDate(2025, 7, 15))
	if err != nil {
		t.Fatalf("due installments: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("expected 1 due entry, got %d", len(due))
	}
	if due[0].Seq != 2 || due[0].Amount.Cents != 30000 {
		t.Fatalf("due entry mismatch: %+v", due[0])
	}

	if err := repo.MarkInstallmentReminded(ctx, due[0].ID, core.NewDate(2025, 7, 15)); err != nil {
		t.Fatalf("mark reminded: %v", err)
	}
	if due, _ := repo.DueInstallments(ctx, core.NewDate(2025, 7, 15)); len(due) != 0 {
		t.Fatalf("reminded entry should drop out of the scan, got %d", len(due))
	}

	if due, _ := repo.DueInstallments(ctx, core.NewDate(2025, 7, 14)); len(due) != 0 {
		t.Fatalf("off-date scan should be empty, got %d", len(due))
	}
}
