package adapters

import (
	"context"
	"errors"
	"fmt"

	"grana/internal/core"
	"grana/internal/ledger"
	"grana/internal/services"
	"grana/internal/storage"
)

// SQLiteAdapter adapts Repository and LedgerService to implement
// ledger.Store. Writes go through the service so every mutation is
// journaled and announced; reads go straight to storage.
type SQLiteAdapter struct {
	storage *storage.Repository
	service *services.LedgerService
}

// Ensure interface conformance
var _ ledger.Store = (*SQLiteAdapter)(nil)

func NewSQLiteAdapter(storage *storage.Repository, service *services.LedgerService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

// asUnavailable marks storage failures as core.ErrUnavailable so the
// API answers 503 when sqlite cannot be reached. core.ErrNotFound is
// the one sentinel storage produces itself and passes through.
func asUnavailable(err error) error {
	if err == nil || errors.Is(err, core.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", core.ErrUnavailable, err)
}

func (a *SQLiteAdapter) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	out, err := a.service.CreateExpense(ctx, e)
	return out, asUnavailable(err)
}

func (a *SQLiteAdapter) DeleteExpense(ctx context.Context, userID string, id int64) error {
	return asUnavailable(a.service.DeleteExpense(ctx, userID, id))
}

func (a *SQLiteAdapter) ListExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	out, err := a.storage.ListExpenses(ctx, userID)
	return out, asUnavailable(err)
}

func (a *SQLiteAdapter) CreatePlan(ctx context.Context, p core.InstallmentPlan, entries []core.InstallmentEntry) (core.InstallmentPlan, error) {
	out, err := a.service.CreatePlan(ctx, p, entries)
	return out, asUnavailable(err)
}

func (a *SQLiteAdapter) DeletePlan(ctx context.Context, userID string, id int64) error {
	return asUnavailable(a.service.DeletePlan(ctx, userID, id))
}

func (a *SQLiteAdapter) ListPlans(ctx context.Context, userID string) ([]core.InstallmentPlan, error) {
	out, err := a.storage.ListPlans(ctx, userID)
	return out, asUnavailable(err)
}

func (a *SQLiteAdapter) ListPlanEntries(ctx context.Context, userID string) ([]core.InstallmentEntry, error) {
	out, err := a.storage.ListPlanEntries(ctx, userID)
	return out, asUnavailable(err)
}

func (a *SQLiteAdapter) Salary(ctx context.Context, userID string) (core.SalarySetting, error) {
	out, err := a.storage.Salary(ctx, userID)
	return out, asUnavailable(err)
}

func (a *SQLiteAdapter) SetSalary(ctx context.Context, s core.SalarySetting) (core.SalarySetting, error) {
	out, err := a.service.SetSalary(ctx, s)
	return out, asUnavailable(err)
}

func (a *SQLiteAdapter) CreateAppointment(ctx context.Context, ap core.Appointment) (core.Appointment, error) {
	out, err := a.service.CreateAppointment(ctx, ap)
	return out, asUnavailable(err)
}

func (a *SQLiteAdapter) DeleteAppointment(ctx context.Context, userID string, id int64) error {
	return asUnavailable(a.service.DeleteAppointment(ctx, userID, id))
}

func (a *SQLiteAdapter) ListAppointments(ctx context.Context, userID string) ([]core.Appointment, error) {
	out, err := a.storage.ListAppointments(ctx, userID)
	return out, asUnavailable(err)
}

func (a *SQLiteAdapter) Ping(ctx context.Context) error {
	return asUnavailable(a.storage.Ping(ctx))
}
