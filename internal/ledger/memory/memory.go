// Package memory is the in-memory ledger.Store used by tests and by
// deployments that do not need persistence.
package memory

import (
	"context"
	"fmt"
	"sync"

	"grana/internal/core"
)

type Store struct {
	mu           sync.Mutex
	nextID       int64
	expenses     []core.Expense
	plans        []core.InstallmentPlan
	entries      []core.InstallmentEntry
	salaries     map[string]core.SalarySetting
	appointments []core.Appointment
}

func New() *Store {
	return &Store{salaries: make(map[string]core.SalarySetting)}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.id()
	s.expenses = append(s.expenses, e)
	return e, nil
}

func (s *Store) DeleteExpense(_ context.Context, userID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.expenses {
		if e.ID == id && e.UserID == userID {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
}

func (s *Store) ListExpenses(_ context.Context, userID string) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

// CreatePlan stores the plan and its derived entries in one step. The
// caller supplies the entries so the expansion stays in core.
func (s *Store) CreatePlan(_ context.Context, p core.InstallmentPlan, entries []core.InstallmentEntry) (core.InstallmentPlan, error) {
	if err := p.Validate(); err != nil {
		return core.InstallmentPlan{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	s.plans = append(s.plans, p)
	for _, e := range entries {
		e.ID = s.id()
		e.PlanID = p.ID
		s.entries = append(s.entries, e)
	}
	return p, nil
}

func (s *Store) DeletePlan(_ context.Context, userID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, p := range s.plans {
		if p.ID == id && p.UserID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("plan %d: %w", id, core.ErrNotFound)
	}
	s.plans = append(s.plans[:idx], s.plans[idx+1:]...)
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.PlanID != id {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return nil
}

func (s *Store) ListPlans(_ context.Context, userID string) ([]core.InstallmentPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.InstallmentPlan, 0, len(s.plans))
	for _, p := range s.plans {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) ListPlanEntries(_ context.Context, userID string) ([]core.InstallmentEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.InstallmentEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) Salary(_ context.Context, userID string) (core.SalarySetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if set, ok := s.salaries[userID]; ok {
		return set, nil
	}
	return core.SalarySetting{UserID: userID}, nil
}

func (s *Store) SetSalary(_ context.Context, set core.SalarySetting) (core.SalarySetting, error) {
	if set.UserID == "" {
		return core.SalarySetting{}, core.ErrEmptyUser
	}
	if err := set.Amount.Validate(); err != nil {
		return core.SalarySetting{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.salaries[set.UserID] = set
	return set, nil
}

func (s *Store) CreateAppointment(_ context.Context, a core.Appointment) (core.Appointment, error) {
	if err := a.Validate(); err != nil {
		return core.Appointment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	s.appointments = append(s.appointments, a)
	return a, nil
}

func (s *Store) DeleteAppointment(_ context.Context, userID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.appointments {
		if a.ID == id && a.UserID == userID {
			s.appointments = append(s.appointments[:i], s.appointments[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("appointment %d: %w", id, core.ErrNotFound)
}

func (s *Store) ListAppointments(_ context.Context, userID string) ([]core.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) Ping(context.Context) error { return nil }
