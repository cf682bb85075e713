package storage

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so queries can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Export lifecycle of a journal row.
const (
	ExportPending  = "pending"
	ExportExported = "exported"
	ExportFailed   = "error"
)

// Row models. Dates are TEXT in ISO form; money is integer centavos.
type (
	Expense struct {
		ID          int64
		UserID      string
		Description string
		AmountCents int64
		Category    string
		OccurredOn  string
		CreatedAt   time.Time
	}

	InstallmentPlan struct {
		ID               int64
		UserID           string
		Description      string
		TotalCents       int64
		InstallmentCount int64
		MonthlyCents     int64
		Category         string
		StartsOn         string
		CreatedAt        time.Time
	}

	InstallmentEntry struct {
		ID          int64
		PlanID      int64
		UserID      string
		Seq         int64
		Description string
		AmountCents int64
		Category    string
		DueOn       string
	}

	SalarySetting struct {
		UserID      string
		AmountCents int64
		UpdatedAt   time.Time
	}

	Appointment struct {
		ID          int64
		UserID      string
		Title       string
		Description string
		Date        string
		TimeOfDay   string
		Location    string
		CreatedAt   time.Time
	}

	LedgerEvent struct {
		ID             int64
		UserID         string
		Kind           string
		EntityID       int64
		Description    string
		AmountCents    int64
		Category       string
		EntryDate      string
		CreatedAt      time.Time
		ExportStatus   string
		ExportAttempts int64
		ExportedAt     sql.NullTime
	}
)

const createExpense = `
INSERT INTO expenses (user_id, description, amount_cents, category, occurred_on, created_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, user_id, description, amount_cents, category, occurred_on, created_at
`

type CreateExpenseParams struct {
	UserID      string
	Description string
	AmountCents int64
	Category    string
	OccurredOn  string
	CreatedAt   time.Time
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error) {
	row := q.db.QueryRowContext(ctx, createExpense,
		arg.UserID, arg.Description, arg.AmountCents, arg.Category, arg.OccurredOn, arg.CreatedAt)
	var i Expense
	err := row.Scan(&i.ID, &i.UserID, &i.Description, &i.AmountCents, &i.Category, &i.OccurredOn, &i.CreatedAt)
	return i, err
}

const getExpense = `
SELECT id, user_id, description, amount_cents, category, occurred_on, created_at
FROM expenses WHERE user_id = ? AND id = ?
`

type GetExpenseParams struct {
	UserID string
	ID     int64
}

func (q *Queries) GetExpense(ctx context.Context, arg GetExpenseParams) (Expense, error) {
	row := q.db.QueryRowContext(ctx, getExpense, arg.UserID, arg.ID)
	var i Expense
	err := row.Scan(&i.ID, &i.UserID, &i.Description, &i.AmountCents, &i.Category, &i.OccurredOn, &i.CreatedAt)
	return i, err
}

const deleteExpense = `DELETE FROM expenses WHERE user_id = ? AND id = ?`

type DeleteExpenseParams struct {
	UserID string
	ID     int64
}

func (q *Queries) DeleteExpense(ctx context.Context, arg DeleteExpenseParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpense, arg.UserID, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listExpenses = `
SELECT id, user_id, description, amount_cents, category, occurred_on, created_at
FROM expenses WHERE user_id = ? ORDER BY occurred_on, id
`

func (q *Queries) ListExpenses(ctx context.Context, userID string) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, listExpenses, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Expense
	for rows.Next() {
		var i Expense
		if err := rows.Scan(&i.ID, &i.UserID, &i.Description, &i.AmountCents, &i.Category, &i.OccurredOn, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createInstallmentPlan = `
INSERT INTO installment_plans (user_id, description, total_cents, installment_count, monthly_cents, category, starts_on, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, user_id, description, total_cents, installment_count, monthly_cents, category, starts_on, created_at
`

type CreateInstallmentPlanParams struct {
	UserID           string
	Description      string
	TotalCents       int64
	InstallmentCount int64
	MonthlyCents     int64
	Category         string
	StartsOn         string
	CreatedAt        time.Time
}

func (q *Queries) CreateInstallmentPlan(ctx context.Context, arg CreateInstallmentPlanParams) (InstallmentPlan, error) {
	row := q.db.QueryRowContext(ctx, createInstallmentPlan,
		arg.UserID, arg.Description, arg.TotalCents, arg.InstallmentCount, arg.MonthlyCents, arg.Category, arg.StartsOn, arg.CreatedAt)
	var i InstallmentPlan
	err := row.Scan(&i.ID, &i.UserID, &i.Description, &i.TotalCents, &i.InstallmentCount, &i.MonthlyCents, &i.Category, &i.StartsOn, &i.CreatedAt)
	return i, err
}

const getInstallmentPlan = `
SELECT id, user_id, description, total_cents, installment_count, monthly_cents, category, starts_on, created_at
FROM installment_plans WHERE user_id = ? AND id = ?
`

type GetInstallmentPlanParams struct {
	UserID string
	ID     int64
}

func (q *Queries) GetInstallmentPlan(ctx context.Context, arg GetInstallmentPlanParams) (InstallmentPlan, error) {
	row := q.db.QueryRowContext(ctx, getInstallmentPlan, arg.UserID, arg.ID)
	var i InstallmentPlan
	err := row.Scan(&i.ID, &i.UserID, &i.Description, &i.TotalCents, &i.InstallmentCount, &i.MonthlyCents, &i.Category, &i.StartsOn, &i.CreatedAt)
	return i, err
}

const deleteInstallmentPlan = `DELETE FROM installment_plans WHERE user_id = ? AND id = ?`

type DeleteInstallmentPlanParams struct {
	UserID string
	ID     int64
}

func (q *Queries) DeleteInstallmentPlan(ctx context.Context, arg DeleteInstallmentPlanParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteInstallmentPlan, arg.UserID, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listInstallmentPlans = `
SELECT id, user_id, description, total_cents, installment_count, monthly_cents, category, starts_on, created_at
FROM installment_plans WHERE user_id = ? ORDER BY starts_on, id
`

func (q *Queries) ListInstallmentPlans(ctx context.Context, userID string) ([]InstallmentPlan, error) {
	rows, err := q.db.QueryContext(ctx, listInstallmentPlans, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []InstallmentPlan
	for rows.Next() {
		var i InstallmentPlan
		if err := rows.Scan(&i.ID, &i.UserID, &i.Description, &i.TotalCents, &i.InstallmentCount, &i.MonthlyCents, &i.Category, &i.StartsOn, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createInstallmentEntry = `
INSERT INTO installment_entries (plan_id, user_id, seq, description, amount_cents, category, due_on)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id, plan_id, user_id, seq, description, amount_cents, category, due_on
`

type CreateInstallmentEntryParams struct {
	PlanID      int64
	UserID      string
	Seq         int64
	Description string
	AmountCents int64
	Category    string
	DueOn       string
}

func (q *Queries) CreateInstallmentEntry(ctx context.Context, arg CreateInstallmentEntryParams) (InstallmentEntry, error) {
	row := q.db.QueryRowContext(ctx, createInstallmentEntry,
		arg.PlanID, arg.UserID, arg.Seq, arg.Description, arg.AmountCents, arg.Category, arg.DueOn)
	var i InstallmentEntry
	err := row.Scan(&i.ID, &i.PlanID, &i.UserID, &i.Seq, &i.Description, &i.AmountCents, &i.Category, &i.DueOn)
	return i, err
}

const deleteEntriesByPlan = `DELETE FROM installment_entries WHERE plan_id = ?`

func (q *Queries) DeleteEntriesByPlan(ctx context.Context, planID int64) error {
	_, err := q.db.ExecContext(ctx, deleteEntriesByPlan, planID)
	return err
}

const listInstallmentEntries = `
SELECT id, plan_id, user_id, seq, description, amount_cents, category, due_on
FROM installment_entries WHERE user_id = ? ORDER BY due_on, id
`

func (q *Queries) ListInstallmentEntries(ctx context.Context, userID string) ([]InstallmentEntry, error) {
	rows, err := q.db.QueryContext(ctx, listInstallmentEntries, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []InstallmentEntry
	for rows.Next() {
		var i InstallmentEntry
		if err := rows.Scan(&i.ID, &i.PlanID, &i.UserID, &i.Seq, &i.Description, &i.AmountCents, &i.Category, &i.DueOn); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getSalarySetting = `
SELECT user_id, amount_cents, updated_at FROM salary_settings WHERE user_id = ?
`

func (q *Queries) GetSalarySetting(ctx context.Context, userID string) (SalarySetting, error) {
	row := q.db.QueryRowContext(ctx, getSalarySetting, userID)
	var i SalarySetting
	err := row.Scan(&i.UserID, &i.AmountCents, &i.UpdatedAt)
	return i, err
}

const upsertSalarySetting = `
INSERT INTO salary_settings (user_id, amount_cents, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (user_id) DO UPDATE SET
    amount_cents = excluded.amount_cents,
    updated_at = excluded.updated_at
RETURNING user_id, amount_cents, updated_at
`

type UpsertSalarySettingParams struct {
	UserID      string
	AmountCents int64
	UpdatedAt   time.Time
}

func (q *Queries) UpsertSalarySetting(ctx context.Context, arg UpsertSalarySettingParams) (SalarySetting, error) {
	row := q.db.QueryRowContext(ctx, upsertSalarySetting, arg.UserID, arg.AmountCents, arg.UpdatedAt)
	var i SalarySetting
	err := row.Scan(&i.UserID, &i.AmountCents, &i.UpdatedAt)
	return i, err
}

const createAppointment = `
INSERT INTO appointments (user_id, title, description, date, time_of_day, location, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id, user_id, title, description, date, time_of_day, location, created_at
`

type CreateAppointmentParams struct {
	UserID      string
	Title       string
	Description string
	Date        string
	TimeOfDay   string
	Location    string
	CreatedAt   time.Time
}

func (q *Queries) CreateAppointment(ctx context.Context, arg CreateAppointmentParams) (Appointment, error) {
	row := q.db.QueryRowContext(ctx, createAppointment,
		arg.UserID, arg.Title, arg.Description, arg.Date, arg.TimeOfDay, arg.Location, arg.CreatedAt)
	var i Appointment
	err := row.Scan(&i.ID, &i.UserID, &i.Title, &i.Description, &i.Date, &i.TimeOfDay, &i.Location, &i.CreatedAt)
	return i, err
}

const getAppointment = `
SELECT id, user_id, title, description, date, time_of_day, location, created_at
FROM appointments WHERE user_id = ? AND id = ?
`

type GetAppointmentParams struct {
	UserID string
	ID     int64
}

func (q *Queries) GetAppointment(ctx context.Context, arg GetAppointmentParams) (Appointment, error) {
	row := q.db.QueryRowContext(ctx, getAppointment, arg.UserID, arg.ID)
	var i Appointment
	err := row.Scan(&i.ID, &i.UserID, &i.Title, &i.Description, &i.Date, &i.TimeOfDay, &i.Location, &i.CreatedAt)
	return i, err
}

const deleteAppointment = `DELETE FROM appointments WHERE user_id = ? AND id = ?`

type DeleteAppointmentParams struct {
	UserID string
	ID     int64
}

func (q *Queries) DeleteAppointment(ctx context.Context, arg DeleteAppointmentParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteAppointment, arg.UserID, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listAppointments = `
SELECT id, user_id, title, description, date, time_of_day, location, created_at
FROM appointments WHERE user_id = ? ORDER BY date, time_of_day, id
`

func (q *Queries) ListAppointments(ctx context.Context, userID string) ([]Appointment, error) {
	rows, err := q.db.QueryContext(ctx, listAppointments, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Appointment
	for rows.Next() {
		var i Appointment
		if err := rows.Scan(&i.ID, &i.UserID, &i.Title, &i.Description, &i.Date, &i.TimeOfDay, &i.Location, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listDueReminders = `
SELECT id, user_id, title, description, date, time_of_day, location, created_at
FROM appointments WHERE date = ? AND reminded_on = '' ORDER BY time_of_day, id
`

// ListDueReminders spans every user; the reminder worker runs per date,
// not per account. Rows already flagged with reminded_on are skipped.
func (q *Queries) ListDueReminders(ctx context.Context, date string) ([]Appointment, error) {
	rows, err := q.db.QueryContext(ctx, listDueReminders, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Appointment
	for rows.Next() {
		var i Appointment
		if err := rows.Scan(&i.ID, &i.UserID, &i.Title, &i.Description, &i.Date, &i.TimeOfDay, &i.Location, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const markAppointmentReminded = `
UPDATE appointments SET reminded_on = ? WHERE id = ?
`

type MarkAppointmentRemindedParams struct {
	RemindedOn string
	ID         int64
}

func (q *Queries) MarkAppointmentReminded(ctx context.Context, arg MarkAppointmentRemindedParams) error {
	_, err := q.db.ExecContext(ctx, markAppointmentReminded, arg.RemindedOn, arg.ID)
	return err
}

const listDueInstallments = `
SELECT id, plan_id, user_id, seq, description, amount_cents, category, due_on
FROM installment_entries WHERE due_on = ? AND reminded_on = '' ORDER BY id
`

// ListDueInstallments spans every user, like ListDueReminders.
func (q *Queries) ListDueInstallments(ctx context.Context, dueOn string) ([]InstallmentEntry, error) {
	rows, err := q.db.QueryContext(ctx, listDueInstallments, dueOn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []InstallmentEntry
	for rows.Next() {
		var i InstallmentEntry
		if err := rows.Scan(&i.ID, &i.PlanID, &i.UserID, &i.Seq, &i.Description, &i.AmountCents, &i.Category, &i.DueOn); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const markInstallmentReminded = `
UPDATE installment_entries SET reminded_on = ? WHERE id = ?
`

type MarkInstallmentRemindedParams struct {
	RemindedOn string
	ID         int64
}

func (q *Queries) MarkInstallmentReminded(ctx context.Context, arg MarkInstallmentRemindedParams) error {
	_, err := q.db.ExecContext(ctx, markInstallmentReminded, arg.RemindedOn, arg.ID)
	return err
}

const createLedgerEvent = `
INSERT INTO ledger_events (user_id, kind, entity_id, description, amount_cents, category, entry_date, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, user_id, kind, entity_id, description, amount_cents, category, entry_date, created_at, export_status, export_attempts, exported_at
`

type CreateLedgerEventParams struct {
	UserID      string
	Kind        string
	EntityID    int64
	Description string
	AmountCents int64
	Category    string
	EntryDate   string
	CreatedAt   time.Time
}

func (q *Queries) CreateLedgerEvent(ctx context.Context, arg CreateLedgerEventParams) (LedgerEvent, error) {
	row := q.db.QueryRowContext(ctx, createLedgerEvent,
		arg.UserID, arg.Kind, arg.EntityID, arg.Description, arg.AmountCents, arg.Category, arg.EntryDate, arg.CreatedAt)
	var i LedgerEvent
	err := row.Scan(&i.ID, &i.UserID, &i.Kind, &i.EntityID, &i.Description, &i.AmountCents, &i.Category, &i.EntryDate, &i.CreatedAt, &i.ExportStatus, &i.ExportAttempts, &i.ExportedAt)
	return i, err
}

const getLedgerEvent = `
SELECT id, user_id, kind, entity_id, description, amount_cents, category, entry_date, created_at, export_status, export_attempts, exported_at
FROM ledger_events WHERE id = ?
`

func (q *Queries) GetLedgerEvent(ctx context.Context, id int64) (LedgerEvent, error) {
	row := q.db.QueryRowContext(ctx, getLedgerEvent, id)
	var i LedgerEvent
	err := row.Scan(&i.ID, &i.UserID, &i.Kind, &i.EntityID, &i.Description, &i.AmountCents, &i.Category, &i.EntryDate, &i.CreatedAt, &i.ExportStatus, &i.ExportAttempts, &i.ExportedAt)
	return i, err
}

const listPendingEvents = `
SELECT id, user_id, kind, entity_id, description, amount_cents, category, entry_date, created_at, export_status, export_attempts, exported_at
FROM ledger_events WHERE export_status = 'pending' ORDER BY id LIMIT ?
`

func (q *Queries) ListPendingEvents(ctx context.Context, limit int64) ([]LedgerEvent, error) {
	rows, err := q.db.QueryContext(ctx, listPendingEvents, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LedgerEvent
	for rows.Next() {
		var i LedgerEvent
		if err := rows.Scan(&i.ID, &i.UserID, &i.Kind, &i.EntityID, &i.Description, &i.AmountCents, &i.Category, &i.EntryDate, &i.CreatedAt, &i.ExportStatus, &i.ExportAttempts, &i.ExportedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const markEventExported = `
UPDATE ledger_events SET export_status = 'exported', exported_at = ? WHERE id = ?
`

type MarkEventExportedParams struct {
	ExportedAt time.Time
	ID         int64
}

func (q *Queries) MarkEventExported(ctx context.Context, arg MarkEventExportedParams) error {
	_, err := q.db.ExecContext(ctx, markEventExported, arg.ExportedAt, arg.ID)
	return err
}

const markEventExportError = `
UPDATE ledger_events SET
    export_attempts = export_attempts + 1,
    export_status = CASE WHEN export_attempts + 1 >= ? THEN 'error' ELSE 'pending' END
WHERE id = ?
`

type MarkEventExportErrorParams struct {
	MaxAttempts int64
	ID          int64
}

func (q *Queries) MarkEventExportError(ctx context.Context, arg MarkEventExportErrorParams) error {
	_, err := q.db.ExecContext(ctx, markEventExportError, arg.MaxAttempts, arg.ID)
	return err
}

const countEventsByStatus = `SELECT COUNT(*) FROM ledger_events WHERE export_status = ?`

func (q *Queries) CountEventsByStatus(ctx context.Context, status string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countEventsByStatus, status)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const getExportStats = `
SELECT
    COALESCE(SUM(CASE WHEN export_status = 'pending' THEN 1 ELSE 0 END), 0) AS pending,
    COALESCE(SUM(CASE WHEN export_status = 'exported' THEN 1 ELSE 0 END), 0) AS exported,
    COALESCE(SUM(CASE WHEN export_status = 'error' THEN 1 ELSE 0 END), 0) AS failed
FROM ledger_events
`

type GetExportStatsRow struct {
	Pending  int64
	Exported int64
	Failed   int64
}

func (q *Queries) GetExportStats(ctx context.Context) (GetExportStatsRow, error) {
	row := q.db.QueryRowContext(ctx, getExportStats)
	var i GetExportStatsRow
	err := row.Scan(&i.Pending, &i.Exported, &i.Failed)
	return i, err
}

const retryFailedEvents = `
UPDATE ledger_events SET export_status = 'pending', export_attempts = 0 WHERE export_status = 'error'
`

func (q *Queries) RetryFailedEvents(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, retryFailedEvents)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteExportedBefore = `
DELETE FROM ledger_events WHERE export_status = 'exported' AND exported_at < ?
`

func (q *Queries) DeleteExportedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExportedBefore, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
