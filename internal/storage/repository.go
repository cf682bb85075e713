package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"grana/internal/core"

	_ "modernc.org/sqlite"
)

// Journal event kinds. The reporting API writes one row per mutation in
// the same transaction; the worker drains them to the export target.
const (
	KindExpenseCreated     = "expense.created"
	KindExpenseDeleted     = "expense.deleted"
	KindPlanCreated        = "plan.created"
	KindPlanDeleted        = "plan.deleted"
	KindSalaryUpdated      = "salary.updated"
	KindAppointmentCreated = "appointment.created"
	KindAppointmentDeleted = "appointment.deleted"
)

type Repository struct {
	db      *sql.DB
	queries *Queries
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db, queries: New(db)}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateExpense stores the expense and journals an expense.created
// event in one transaction. The second return value is the journal
// row id, which write paths hand to the export pipeline.
func (r *Repository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Expense{}, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	qtx := r.queries.WithTx(tx)

	row, err := qtx.CreateExpense(ctx, CreateExpenseParams{
		UserID:      e.UserID,
		Description: e.Description,
		AmountCents: e.Amount.Cents,
		Category:    string(e.Category),
		OccurredOn:  e.OccurredOn.String(),
		CreatedAt:   e.CreatedAt,
	})
	if err != nil {
		return core.Expense{}, 0, fmt.Errorf("create expense: %w", err)
	}
	ev, err := qtx.CreateLedgerEvent(ctx, CreateLedgerEventParams{
		UserID:      e.UserID,
		Kind:        KindExpenseCreated,
		EntityID:    row.ID,
		Description: e.Description,
		AmountCents: e.Amount.Cents,
		Category:    string(e.Category),
		EntryDate:   e.OccurredOn.String(),
		CreatedAt:   e.CreatedAt,
	})
	if err != nil {
		return core.Expense{}, 0, fmt.Errorf("journal expense.created: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Expense{}, 0, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", row.ID,
		"user", e.UserID,
		"amount_cents", e.Amount.Cents,
		"category", e.Category)

	stored := e
	stored.ID = row.ID
	return stored, ev.ID, nil
}

// DeleteExpense removes the expense and journals a snapshot of it. A
// missing id is core.ErrNotFound.
func (r *Repository) DeleteExpense(ctx context.Context, userID string, id int64) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	qtx := r.queries.WithTx(tx)

	row, err := qtx.GetExpense(ctx, GetExpenseParams{UserID: userID, ID: id})
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("get expense: %w", err)
	}
	if _, err := qtx.DeleteExpense(ctx, DeleteExpenseParams{UserID: userID, ID: id}); err != nil {
		return 0, fmt.Errorf("delete expense: %w", err)
	}
	ev, err := qtx.CreateLedgerEvent(ctx, CreateLedgerEventParams{
		UserID:      userID,
		Kind:        KindExpenseDeleted,
		EntityID:    id,
		Description: row.Description,
		AmountCents: row.AmountCents,
		Category:    row.Category,
		EntryDate:   row.OccurredOn,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return 0, fmt.Errorf("journal expense.deleted: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id, "user", userID)
	return ev.ID, nil
}

func (r *Repository) ListExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	rows, err := r.queries.ListExpenses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	out := make([]core.Expense, 0, len(rows))
	for _, row := range rows {
		e, err := toDomainExpense(row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// CreatePlan stores the plan and every derived entry atomically, plus a
// plan.created journal row.
func (r *Repository) CreatePlan(ctx context.Context, p core.InstallmentPlan, entries []core.InstallmentEntry) (core.InstallmentPlan, int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.InstallmentPlan{}, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	qtx := r.queries.WithTx(tx)

	row, err := qtx.CreateInstallmentPlan(ctx, CreateInstallmentPlanParams{
		UserID:           p.UserID,
		Description:      p.Description,
		TotalCents:       p.Total.Cents,
		InstallmentCount: int64(p.Count),
		MonthlyCents:     p.Monthly.Cents,
		Category:         string(p.Category),
		StartsOn:         p.StartsOn.String(),
		CreatedAt:        p.CreatedAt,
	})
	if err != nil {
		return core.InstallmentPlan{}, 0, fmt.Errorf("create plan: %w", err)
	}
	for _, e := range entries {
		if _, err := qtx.CreateInstallmentEntry(ctx, CreateInstallmentEntryParams{
			PlanID:      row.ID,
			UserID:      e.UserID,
			Seq:         int64(e.Seq),
			Description: e.Description,
			AmountCents: e.Amount.Cents,
			Category:    string(e.Category),
			DueOn:       e.DueOn.String(),
		}); err != nil {
			return core.InstallmentPlan{}, 0, fmt.Errorf("create plan entry %d: %w", e.Seq, err)
		}
	}
	ev, err := qtx.CreateLedgerEvent(ctx, CreateLedgerEventParams{
		UserID:      p.UserID,
		Kind:        KindPlanCreated,
		EntityID:    row.ID,
		Description: p.Description,
		AmountCents: p.Total.Cents,
		Category:    string(p.Category),
		EntryDate:   p.StartsOn.String(),
		CreatedAt:   p.CreatedAt,
	})
	if err != nil {
		return core.InstallmentPlan{}, 0, fmt.Errorf("journal plan.created: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.InstallmentPlan{}, 0, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Installment plan saved",
		"id", row.ID,
		"user", p.UserID,
		"total_cents", p.Total.Cents,
		"installments", p.Count)

	stored := p
	stored.ID = row.ID
	return stored, ev.ID, nil
}

// DeletePlan removes the plan and all of its entries. The two deletes
// share a transaction so the stream never sees orphan entries.
func (r *Repository) DeletePlan(ctx context.Context, userID string, id int64) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	qtx := r.queries.WithTx(tx)

	row, err := qtx.GetInstallmentPlan(ctx, GetInstallmentPlanParams{UserID: userID, ID: id})
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("plan %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("get plan: %w", err)
	}
	if err := qtx.DeleteEntriesByPlan(ctx, id); err != nil {
		return 0, fmt.Errorf("delete plan entries: %w", err)
	}
	if _, err := qtx.DeleteInstallmentPlan(ctx, DeleteInstallmentPlanParams{UserID: userID, ID: id}); err != nil {
		return 0, fmt.Errorf("delete plan: %w", err)
	}
	ev, err := qtx.CreateLedgerEvent(ctx, CreateLedgerEventParams{
		UserID:      userID,
		Kind:        KindPlanDeleted,
		EntityID:    id,
		Description: row.Description,
		AmountCents: row.TotalCents,
		Category:    row.Category,
		EntryDate:   row.StartsOn,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return 0, fmt.Errorf("journal plan.deleted: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Installment plan deleted", "id", id, "user", userID)
	return ev.ID, nil
}

func (r *Repository) ListPlans(ctx context.Context, userID string) ([]core.InstallmentPlan, error) {
	rows, err := r.queries.ListInstallmentPlans(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	out := make([]core.InstallmentPlan, 0, len(rows))
	for _, row := range rows {
		p, err := toDomainPlan(row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *Repository) ListPlanEntries(ctx context.Context, userID string) ([]core.InstallmentEntry, error) {
	rows, err := r.queries.ListInstallmentEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list plan entries: %w", err)
	}
	out := make([]core.InstallmentEntry, 0, len(rows))
	for _, row := range rows {
		e, err := toDomainEntry(row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Salary returns a zero-amount setting for users who never set one.
func (r *Repository) Salary(ctx context.Context, userID string) (core.SalarySetting, error) {
	row, err := r.queries.GetSalarySetting(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SalarySetting{UserID: userID}, nil
	}
	if err != nil {
		return core.SalarySetting{}, fmt.Errorf("get salary: %w", err)
	}
	return core.SalarySetting{
		UserID:    row.UserID,
		Amount:    core.Money{Cents: row.AmountCents},
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (r *Repository) SetSalary(ctx context.Context, set core.SalarySetting) (core.SalarySetting, int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.SalarySetting{}, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	qtx := r.queries.WithTx(tx)

	row, err := qtx.UpsertSalarySetting(ctx, UpsertSalarySettingParams{
		UserID:      set.UserID,
		AmountCents: set.Amount.Cents,
		UpdatedAt:   set.UpdatedAt,
	})
	if err != nil {
		return core.SalarySetting{}, 0, fmt.Errorf("upsert salary: %w", err)
	}
	ev, err := qtx.CreateLedgerEvent(ctx, CreateLedgerEventParams{
		UserID:      set.UserID,
		Kind:        KindSalaryUpdated,
		EntityID:    0,
		AmountCents: set.Amount.Cents,
		CreatedAt:   set.UpdatedAt,
	})
	if err != nil {
		return core.SalarySetting{}, 0, fmt.Errorf("journal salary.updated: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.SalarySetting{}, 0, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Salary updated", "user", set.UserID, "amount_cents", set.Amount.Cents)

	return core.SalarySetting{
		UserID:    row.UserID,
		Amount:    core.Money{Cents: row.AmountCents},
		UpdatedAt: row.UpdatedAt,
	}, ev.ID, nil
}

func (r *Repository) CreateAppointment(ctx context.Context, a core.Appointment) (core.Appointment, int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Appointment{}, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	qtx := r.queries.WithTx(tx)

	row, err := qtx.CreateAppointment(ctx, CreateAppointmentParams{
		UserID:      a.UserID,
		Title:       a.Title,
		Description: a.Description,
		Date:        a.Date.String(),
		TimeOfDay:   a.TimeOfDay,
		Location:    a.Location,
		CreatedAt:   a.CreatedAt,
	})
	if err != nil {
		return core.Appointment{}, 0, fmt.Errorf("create appointment: %w", err)
	}
	ev, err := qtx.CreateLedgerEvent(ctx, CreateLedgerEventParams{
		UserID:      a.UserID,
		Kind:        KindAppointmentCreated,
		EntityID:    row.ID,
		Description: a.Title,
		EntryDate:   a.Date.String(),
		CreatedAt:   a.CreatedAt,
	})
	if err != nil {
		return core.Appointment{}, 0, fmt.Errorf("journal appointment.created: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Appointment{}, 0, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Appointment saved", "id", row.ID, "user", a.UserID, "date", a.Date.String())

	stored := a
	stored.ID = row.ID
	return stored, ev.ID, nil
}

func (r *Repository) DeleteAppointment(ctx context.Context, userID string, id int64) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	qtx := r.queries.WithTx(tx)

	row, err := qtx.GetAppointment(ctx, GetAppointmentParams{UserID: userID, ID: id})
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("appointment %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("get appointment: %w", err)
	}
	if _, err := qtx.DeleteAppointment(ctx, DeleteAppointmentParams{UserID: userID, ID: id}); err != nil {
		return 0, fmt.Errorf("delete appointment: %w", err)
	}
	ev, err := qtx.CreateLedgerEvent(ctx, CreateLedgerEventParams{
		UserID:      userID,
		Kind:        KindAppointmentDeleted,
		EntityID:    id,
		Description: row.Title,
		EntryDate:   row.Date,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return 0, fmt.Errorf("journal appointment.deleted: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Appointment deleted", "id", id, "user", userID)
	return ev.ID, nil
}

func (r *Repository) ListAppointments(ctx context.Context, userID string) ([]core.Appointment, error) {
	rows, err := r.queries.ListAppointments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	out := make([]core.Appointment, 0, len(rows))
	for _, row := range rows {
		a, err := toDomainAppointment(row)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// DueReminders returns every user's appointments for one date that have
// not been reminded yet. Used by the reminder worker only.
func (r *Repository) DueReminders(ctx context.Context, d core.Date) ([]core.Appointment, error) {
	rows, err := r.queries.ListDueReminders(ctx, d.String())
	if err != nil {
		return nil, fmt.Errorf("list due reminders on %s: %w", d, err)
	}
	out := make([]core.Appointment, 0, len(rows))
	for _, row := range rows {
		a, err := toDomainAppointment(row)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// MarkReminded flags the appointment so the next scan skips it.
func (r *Repository) MarkReminded(ctx context.Context, id int64, d core.Date) error {
	if err := r.queries.MarkAppointmentReminded(ctx, MarkAppointmentRemindedParams{RemindedOn: d.String(), ID: id}); err != nil {
		return fmt.Errorf("mark appointment reminded: %w", err)
	}
	return nil
}

// DueInstallments returns every user's installment charges falling due
// on one date that have not been reminded yet.
func (r *Repository) DueInstallments(ctx context.Context, d core.Date) ([]core.InstallmentEntry, error) {
	rows, err := r.queries.ListDueInstallments(ctx, d.String())
	if err != nil {
		return nil, fmt.Errorf("list due installments on %s: %w", d, err)
	}
	out := make([]core.InstallmentEntry, 0, len(rows))
	for _, row := range rows {
		e, err := toDomainEntry(row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// MarkInstallmentReminded flags the entry so the next scan skips it.
func (r *Repository) MarkInstallmentReminded(ctx context.Context, id int64, d core.Date) error {
	if err := r.queries.MarkInstallmentReminded(ctx, MarkInstallmentRemindedParams{RemindedOn: d.String(), ID: id}); err != nil {
		return fmt.Errorf("mark installment reminded: %w", err)
	}
	return nil
}

// PendingEvents returns journal rows awaiting export, oldest first.
func (r *Repository) PendingEvents(ctx context.Context, limit int) ([]LedgerEvent, error) {
	rows, err := r.queries.ListPendingEvents(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list pending events: %w", err)
	}
	return rows, nil
}

func (r *Repository) Event(ctx context.Context, id int64) (LedgerEvent, error) {
	row, err := r.queries.GetLedgerEvent(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return LedgerEvent{}, fmt.Errorf("event %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return LedgerEvent{}, fmt.Errorf("get event: %w", err)
	}
	return row, nil
}

func (r *Repository) MarkExported(ctx context.Context, id int64) error {
	if err := r.queries.MarkEventExported(ctx, MarkEventExportedParams{ExportedAt: time.Now().UTC(), ID: id}); err != nil {
		return fmt.Errorf("mark event exported: %w", err)
	}
	slog.InfoContext(ctx, "Event exported", "id", id)
	return nil
}

// MarkExportError bumps the attempt counter and parks the row as failed
// once maxAttempts is reached.
func (r *Repository) MarkExportError(ctx context.Context, id int64, maxAttempts int) error {
	if err := r.queries.MarkEventExportError(ctx, MarkEventExportErrorParams{MaxAttempts: int64(maxAttempts), ID: id}); err != nil {
		return fmt.Errorf("mark event export error: %w", err)
	}
	slog.WarnContext(ctx, "Event export failed", "id", id)
	return nil
}

func (r *Repository) EventCount(ctx context.Context, status string) (int64, error) {
	return r.queries.CountEventsByStatus(ctx, status)
}

func (r *Repository) ExportStats(ctx context.Context) (GetExportStatsRow, error) {
	stats, err := r.queries.GetExportStats(ctx)
	if err != nil {
		return GetExportStatsRow{}, fmt.Errorf("export stats: %w", err)
	}
	return stats, nil
}

// RetryFailedExports requeues every parked row with a fresh attempt
// budget.
func (r *Repository) RetryFailedExports(ctx context.Context) (int64, error) {
	n, err := r.queries.RetryFailedEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("retry failed exports: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Requeued failed exports", "count", n)
	}
	return n, nil
}

// CleanupExported drops journal rows already exported before the
// cutoff. The sheet keeps the archive.
func (r *Repository) CleanupExported(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := r.queries.DeleteExportedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup exported events: %w", err)
	}
	return n, nil
}

func toDomainExpense(row Expense) (core.Expense, error) {
	d, err := core.ParseDate(row.OccurredOn)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %d occurred_on %q: %w", row.ID, row.OccurredOn, err)
	}
	return core.Expense{
		ID:          row.ID,
		UserID:      row.UserID,
		Description: row.Description,
		Amount:      core.Money{Cents: row.AmountCents},
		Category:    core.Category(row.Category),
		OccurredOn:  d,
		CreatedAt:   row.CreatedAt,
	}, nil
}

func toDomainPlan(row InstallmentPlan) (core.InstallmentPlan, error) {
	d, err := core.ParseDate(row.StartsOn)
	if err != nil {
		return core.InstallmentPlan{}, fmt.Errorf("plan %d starts_on %q: %w", row.ID, row.StartsOn, err)
	}
	return core.InstallmentPlan{
		ID:          row.ID,
		UserID:      row.UserID,
		Description: row.Description,
		Total:       core.Money{Cents: row.TotalCents},
		Count:       int(row.InstallmentCount),
		Monthly:     core.Money{Cents: row.MonthlyCents},
		Category:    core.Category(row.Category),
		StartsOn:    d,
		CreatedAt:   row.CreatedAt,
	}, nil
}

func toDomainEntry(row InstallmentEntry) (core.InstallmentEntry, error) {
	d, err := core.ParseDate(row.DueOn)
	if err != nil {
		return core.InstallmentEntry{}, fmt.Errorf("entry %d due_on %q: %w", row.ID, row.DueOn, err)
	}
	return core.InstallmentEntry{
		ID:          row.ID,
		PlanID:      row.PlanID,
		UserID:      row.UserID,
		Seq:         int(row.Seq),
		Description: row.Description,
		Amount:      core.Money{Cents: row.AmountCents},
		Category:    core.Category(row.Category),
		DueOn:       d,
	}, nil
}

func toDomainAppointment(row Appointment) (core.Appointment, error) {
	d, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Appointment{}, fmt.Errorf("appointment %d date %q: %w", row.ID, row.Date, err)
	}
	return core.Appointment{
		ID:          row.ID,
		UserID:      row.UserID,
		Title:       row.Title,
		Description: row.Description,
		Date:        d,
		TimeOfDay:   row.TimeOfDay,
		Location:    row.Location,
		CreatedAt:   row.CreatedAt,
	}, nil
}
