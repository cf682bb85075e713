package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"grana/internal/core"
)

func TestNewLedgerService(t *testing.T) {
	service := NewLedgerService(nil, nil)

	if service == nil {
		t.Error("NewLedgerService should return a non-nil service")
	}
	if service.storage != nil {
		t.Error("storage should be nil when passed nil")
	}
	if service.amqpClient != nil {
		t.Error("amqpClient should be nil when passed nil")
	}
}

func TestLedgerService_Close(t *testing.T) {
	t.Run("nil components", func(t *testing.T) {
		service := &LedgerService{}

		if err := service.Close(); err != nil {
			t.Fatalf("Close should not return error with nil components: %v", err)
		}
	})
}

// Without an AMQP client the service degrades to storage-only writes.
func TestLedgerService_StorageOnly(t *testing.T) {
	repo := newServiceRepo(t)
	service := NewLedgerService(repo, nil)
	ctx := context.Background()

	stored, err := service.CreateExpense(ctx, core.Expense{
		UserID:      "u1",
		Description: "padaria",
		Amount:      core.Money{Cents: 1250},
		Category:    core.CategoryAlimentacao,
		OccurredOn:  core.NewDate(2025, 6, 10),
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if stored.ID == 0 {
		t.Fatal("expected an assigned id")
	}

	list, err := service.storage.ListExpenses(ctx, "u1")
	if err != nil || len(list) != 1 {
		t.Fatalf("list = %v, %v", list, err)
	}

	if err := service.DeleteExpense(ctx, "u1", stored.ID); err != nil {
		t.Fatalf("delete expense: %v", err)
	}
	if err := service.DeleteExpense(ctx, "u1", stored.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete should be NotFound, got %v", err)
	}

	// Both mutations journaled even with AMQP absent.
	stats, err := repo.ExportStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Pending != 2 {
		t.Fatalf("pending journal rows = %d, want 2", stats.Pending)
	}
}

func TestLedgerService_PlanWrites(t *testing.T) {
	repo := newServiceRepo(t)
	service := NewLedgerService(repo, nil)
	ctx := context.Background()

	plan := core.InstallmentPlan{
		UserID:      "u1",
		Description: "sofa",
		Total:       core.Money{Cents: 240000},
		Count:       4,
		Category:    core.CategoryMoradia,
		StartsOn:    core.NewDate(2025, 7, 5),
		CreatedAt:   time.Now().UTC(),
	}
	plan.Monthly = core.MonthlyAmount(plan.Total, plan.Count)
	entries, err := core.BuildSchedule(plan)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	stored, err := service.CreatePlan(ctx, plan, entries)
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}

	got, err := repo.ListPlanEntries(ctx, "u1")
	if err != nil || len(got) != 4 {
		t.Fatalf("entries = %v, %v", got, err)
	}

	if err := service.DeletePlan(ctx, "u1", stored.ID); err != nil {
		t.Fatalf("delete plan: %v", err)
	}
	if got, _ := repo.ListPlanEntries(ctx, "u1"); len(got) != 0 {
		t.Fatalf("entries should vanish with the plan, got %v", got)
	}
}

func TestLedgerService_SalaryAndAppointments(t *testing.T) {
	repo := newServiceRepo(t)
	service := NewLedgerService(repo, nil)
	ctx := context.Background()

	set, err := service.SetSalary(ctx, core.SalarySetting{
		UserID:    "u1",
		Amount:    core.Money{Cents: 300000},
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("set salary: %v", err)
	}
	if set.Amount.Cents != 300000 {
		t.Fatalf("salary = %d", set.Amount.Cents)
	}

	appt, err := service.CreateAppointment(ctx, core.Appointment{
		UserID:    "u1",
		Title:     "dentista",
		Date:      core.NewDate(2025, 6, 12),
		TimeOfDay: "14:30",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	if err := service.DeleteAppointment(ctx, "u1", appt.ID); err != nil {
		t.Fatalf("delete appointment: %v", err)
	}
	if err := service.DeleteAppointment(ctx, "u1", appt.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete should be NotFound, got %v", err)
	}
}
