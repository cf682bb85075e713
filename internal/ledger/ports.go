// Package ledger defines the persistence ports the reporting engine
// reads from and writes to. Adapters live in subpackages and in
// internal/storage.
package ledger

import (
	"context"

	"grana/internal/core"
)

// Ports for outbound persistence adapters. Implementations map their
// own missing-row errors to core.ErrNotFound; list order is
// unspecified and consumers sort for display.
type (
	ExpenseStore interface {
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		DeleteExpense(ctx context.Context, userID string, id int64) error
		ListExpenses(ctx context.Context, userID string) ([]core.Expense, error)
	}

	// PlanStore persists installment plans together with their derived
	// entries. Creation and deletion are atomic over the plan and its
	// entries: a plan is never observable half-expanded.
	PlanStore interface {
		CreatePlan(ctx context.Context, p core.InstallmentPlan, entries []core.InstallmentEntry) (core.InstallmentPlan, error)
		DeletePlan(ctx context.Context, userID string, id int64) error
		ListPlans(ctx context.Context, userID string) ([]core.InstallmentPlan, error)
		ListPlanEntries(ctx context.Context, userID string) ([]core.InstallmentEntry, error)
	}

	// SalaryStore keeps one current salary per user. Salary returns a
	// zero-amount setting, not an error, for users who never set one.
	SalaryStore interface {
		Salary(ctx context.Context, userID string) (core.SalarySetting, error)
		SetSalary(ctx context.Context, s core.SalarySetting) (core.SalarySetting, error)
	}

	AppointmentStore interface {
		CreateAppointment(ctx context.Context, a core.Appointment) (core.Appointment, error)
		DeleteAppointment(ctx context.Context, userID string, id int64) error
		ListAppointments(ctx context.Context, userID string) ([]core.Appointment, error)
	}

	// Store is the full persistence surface the HTTP handlers depend
	// on.
	Store interface {
		ExpenseStore
		PlanStore
		SalaryStore
		AppointmentStore
		Ping(ctx context.Context) error
	}
)
