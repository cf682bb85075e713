// Package core contains the domain model and the pure computation
// components: installment schedule expansion, the daily budget calendar,
// the dashboard summary, and period reports.
//
// Nothing in this package performs I/O or reads the system clock. Every
// computation receives its inputs, a reference instant, and a timezone
// explicitly, which keeps results deterministic and testable.
package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type (
	// Date is a civil date (no time-of-day, no zone). The wrapped
	// time.Time is always midnight UTC so Before/After/Equal behave as
	// day comparisons.
	Date struct {
		time.Time
	}

	// Money is an amount in centavos. Arithmetic happens on Cents;
	// floats only appear at display boundaries.
	Money struct {
		Cents int64
	}

	// Category is an expense label. The known set is fixed, but the
	// type is open: caller-supplied labels outside the set are kept
	// verbatim and treated as CategoryOutros by styling consumers.
	Category string

	// Expense is a direct ledger record, immutable once created except
	// for deletion.
	Expense struct {
		ID          int64
		UserID      string
		Description string
		Amount      Money
		Category    Category
		OccurredOn  Date
		CreatedAt   time.Time
	}

	// InstallmentPlan splits a purchase into monthly charges. Its
	// derived entries are owned by the plan and deleted with it.
	InstallmentPlan struct {
		ID          int64
		UserID      string
		Description string
		Total       Money
		Count       int
		Monthly     Money
		Category    Category
		StartsOn    Date
		CreatedAt   time.Time
	}

	// InstallmentEntry is one derived monthly charge of a plan. It is a
	// read-only projection, never edited independently.
	InstallmentEntry struct {
		ID          int64
		PlanID      int64
		UserID      string
		Seq         int
		Description string
		Amount      Money
		Category    Category
		DueOn       Date
	}

	// SalarySetting is the single current salary value for a user. No
	// history is kept; the latest value is authoritative everywhere.
	SalarySetting struct {
		UserID    string
		Amount    Money
		UpdatedAt time.Time
	}

	// Appointment is a calendar annotation. It never participates in
	// monetary arithmetic.
	Appointment struct {
		ID          int64
		UserID      string
		Title       string
		Description string
		Date        Date
		TimeOfDay   string
		Location    string
		CreatedAt   time.Time
	}
)

var (
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyTitle       = errors.New("empty title")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyUser        = errors.New("empty user id")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidTime      = errors.New("invalid time of day")
	ErrInvalidPlan      = errors.New("invalid installment plan")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidRange     = errors.New("invalid date range")
	ErrNotFound         = errors.New("not found")
	ErrUnavailable      = errors.New("ledger unavailable")
)

// Installment count bounds, domain-enforced.
const (
	MinInstallments = 2
	MaxInstallments = 48
)

const (
	CategoryAlimentacao    Category = "Alimentação"
	CategoryTransporte     Category = "Transporte"
	CategoryMoradia        Category = "Moradia"
	CategorySaude          Category = "Saúde"
	CategoryEducacao       Category = "Educação"
	CategoryEntretenimento Category = "Entretenimento"
	CategoryVestuario      Category = "Vestuário"
	CategoryTecnologia     Category = "Tecnologia"
	CategoryServicos       Category = "Serviços"
	CategoryOutros         Category = "Outros"
)

// KnownCategories returns the fixed category set in display order.
func KnownCategories() []Category {
	return []Category{
		CategoryAlimentacao,
		CategoryTransporte,
		CategoryMoradia,
		CategorySaude,
		CategoryEducacao,
		CategoryEntretenimento,
		CategoryVestuario,
		CategoryTecnologia,
		CategoryServicos,
		CategoryOutros,
	}
}

// Known reports whether the category belongs to the fixed set.
func (c Category) Known() bool {
	for _, k := range KnownCategories() {
		if c == k {
			return true
		}
	}
	return false
}

// NewDate creates a civil date from year, month, day. Out-of-range
// values are normalized the way time.Date normalizes them.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf reduces an instant to its civil date in the given location.
func DateOf(t time.Time, loc *time.Location) Date {
	y, m, d := t.In(loc).Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, ErrInvalidDate)
	}
	return Date{Time: t}, nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// String returns the date in YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// AddMonthsClamped moves the date n months forward keeping the same
// day-of-month, clamped to the last valid day of shorter target months:
// Jan 31 plus one month is Feb 28 (29 in leap years), not Mar 2.
func (d Date) AddMonthsClamped(n int) Date {
	y, m, day := d.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := DaysInMonth(first.Year(), int(first.Month())); day > last {
		day = last
	}
	return NewDate(first.Year(), int(first.Month()), day)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return ErrEmptyUser
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(string(e.Category)) == "" {
		return ErrEmptyCategory
	}
	if e.OccurredOn.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (p InstallmentPlan) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return ErrEmptyUser
	}
	if len(strings.TrimSpace(p.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(p.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if p.Total.Cents <= 0 {
		return fmt.Errorf("total amount must be positive: %w", ErrInvalidPlan)
	}
	if p.Count < MinInstallments || p.Count > MaxInstallments {
		return fmt.Errorf("installment count %d outside %d..%d: %w",
			p.Count, MinInstallments, MaxInstallments, ErrInvalidPlan)
	}
	if strings.TrimSpace(string(p.Category)) == "" {
		return ErrEmptyCategory
	}
	if p.StartsOn.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (a Appointment) Validate() error {
	if strings.TrimSpace(a.UserID) == "" {
		return ErrEmptyUser
	}
	if len(strings.TrimSpace(a.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(a.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if a.Date.IsZero() {
		return ErrInvalidDate
	}
	if _, err := time.Parse("15:04", a.TimeOfDay); err != nil {
		return ErrInvalidTime
	}
	return nil
}
