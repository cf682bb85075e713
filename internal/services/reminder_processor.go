package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"grana/internal/amqp"
	"grana/internal/core"
	"grana/internal/storage"
)

// ReminderProcessor publishes a reminder message for every appointment
// and installment charge falling on the processing date. Each item is
// reminded once; the reminded_on flags survive restarts.
type ReminderProcessor struct {
	storage    *storage.Repository
	amqpClient *amqp.Client
}

// NewReminderProcessor creates a new due-date reminder processor
func NewReminderProcessor(storage *storage.Repository, amqpClient *amqp.Client) *ReminderProcessor {
	return &ReminderProcessor{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// ProcessDueReminders publishes reminders for everything due on the day
// of now. The caller passes now already in the ledger timezone.
func (p *ReminderProcessor) ProcessDueReminders(ctx context.Context, now time.Time) (int, error) {
	if p.storage == nil || p.amqpClient == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	today := core.DateOf(now, now.Location())

	appointments, err := p.processAppointments(ctx, today)
	if err != nil {
		return 0, err
	}
	installments, err := p.processInstallments(ctx, today)
	if err != nil {
		return appointments, err
	}

	slog.InfoContext(ctx, "Reminder processing complete",
		"appointments", appointments,
		"installments", installments,
		"processing_date", today.String())

	return appointments + installments, nil
}

func (p *ReminderProcessor) processAppointments(ctx context.Context, today core.Date) (int, error) {
	due, err := p.storage.DueReminders(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to list due appointments: %w", err)
	}

	sentCount := 0
	for _, a := range due {
		msg := amqp.NewAppointmentReminder(a.ID, a.UserID, a.Title, a.Date.String(), a.TimeOfDay)
		if err := p.amqpClient.PublishReminder(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish appointment reminder",
				"appointment_id", a.ID,
				"title", a.Title,
				"error", err)
			continue
		}

		if err := p.storage.MarkReminded(ctx, a.ID, today); err != nil {
			slog.ErrorContext(ctx, "Failed to flag appointment as reminded",
				"appointment_id", a.ID,
				"error", err)
			// Continue anyway - the reminder went out
		}

		sentCount++
		slog.InfoContext(ctx, "Published appointment reminder",
			"appointment_id", a.ID,
			"title", a.Title,
			"time", a.TimeOfDay)
	}
	return sentCount, nil
}

func (p *ReminderProcessor) processInstallments(ctx context.Context, today core.Date) (int, error) {
	due, err := p.storage.DueInstallments(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to list due installments: %w", err)
	}

	sentCount := 0
	for _, e := range due {
		msg := amqp.NewInstallmentReminder(e.ID, e.UserID, e.Description, e.DueOn.String(), e.Amount.Cents)
		if err := p.amqpClient.PublishReminder(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish installment reminder",
				"entry_id", e.ID,
				"description", e.Description,
				"error", err)
			continue
		}

		if err := p.storage.MarkInstallmentReminded(ctx, e.ID, today); err != nil {
			slog.ErrorContext(ctx, "Failed to flag installment as reminded",
				"entry_id", e.ID,
				"error", err)
			// Continue anyway - the reminder went out
		}

		sentCount++
		slog.InfoContext(ctx, "Published installment reminder",
			"entry_id", e.ID,
			"description", e.Description,
			"amount_cents", e.Amount.Cents)
	}
	return sentCount, nil
}
