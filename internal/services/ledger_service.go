package services

import (
	"context"
	"fmt"
	"log/slog"

	"grana/internal/amqp"
	"grana/internal/core"
	"grana/internal/storage"
)

// LedgerService orchestrates ledger writes across SQLite and AMQP. Every
// mutation commits to SQLite first; the journal row id is then published
// so the worker can export it without waiting for the next poll.
type LedgerService struct {
	storage    *storage.Repository
	amqpClient *amqp.Client
}

func NewLedgerService(storage *storage.Repository, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// CreateExpense saves an expense locally and publishes the journal event
func (s *LedgerService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	stored, eventID, err := s.storage.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	if err := s.publishEvent(ctx, eventID, storage.KindExpenseCreated, e.UserID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish event message",
			"event_id", eventID, "error", err)
		// Don't fail the request - the expense is saved locally and the
		// poll loop picks the journal row up later
	}

	return stored, nil
}

func (s *LedgerService) DeleteExpense(ctx context.Context, userID string, id int64) error {
	eventID, err := s.storage.DeleteExpense(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.publishEvent(ctx, eventID, storage.KindExpenseDeleted, userID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish event message",
			"event_id", eventID, "error", err)
	}

	return nil
}

// CreatePlan saves the plan with its pre-expanded entries and publishes
// the journal event
func (s *LedgerService) CreatePlan(ctx context.Context, p core.InstallmentPlan, entries []core.InstallmentEntry) (core.InstallmentPlan, error) {
	stored, eventID, err := s.storage.CreatePlan(ctx, p, entries)
	if err != nil {
		return core.InstallmentPlan{}, fmt.Errorf("save plan: %w", err)
	}

	if err := s.publishEvent(ctx, eventID, storage.KindPlanCreated, p.UserID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish event message",
			"event_id", eventID, "error", err)
	}

	return stored, nil
}

func (s *LedgerService) DeletePlan(ctx context.Context, userID string, id int64) error {
	eventID, err := s.storage.DeletePlan(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.publishEvent(ctx, eventID, storage.KindPlanDeleted, userID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish event message",
			"event_id", eventID, "error", err)
	}

	return nil
}

func (s *LedgerService) SetSalary(ctx context.Context, set core.SalarySetting) (core.SalarySetting, error) {
	stored, eventID, err := s.storage.SetSalary(ctx, set)
	if err != nil {
		return core.SalarySetting{}, fmt.Errorf("save salary: %w", err)
	}

	if err := s.publishEvent(ctx, eventID, storage.KindSalaryUpdated, set.UserID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish event message",
			"event_id", eventID, "error", err)
	}

	return stored, nil
}

func (s *LedgerService) CreateAppointment(ctx context.Context, a core.Appointment) (core.Appointment, error) {
	stored, eventID, err := s.storage.CreateAppointment(ctx, a)
	if err != nil {
		return core.Appointment{}, fmt.Errorf("save appointment: %w", err)
	}

	if err := s.publishEvent(ctx, eventID, storage.KindAppointmentCreated, a.UserID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish event message",
			"event_id", eventID, "error", err)
	}

	return stored, nil
}

func (s *LedgerService) DeleteAppointment(ctx context.Context, userID string, id int64) error {
	eventID, err := s.storage.DeleteAppointment(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.publishEvent(ctx, eventID, storage.KindAppointmentDeleted, userID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish event message",
			"event_id", eventID, "error", err)
	}

	return nil
}

func (s *LedgerService) publishEvent(ctx context.Context, eventID int64, kind, userID string) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping event publish", "kind", kind)
		return nil
	}

	return s.amqpClient.PublishEvent(ctx, eventID, kind, userID)
}

// Close closes both storage and AMQP connections
func (s *LedgerService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
