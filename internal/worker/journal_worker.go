// Package worker bridges AMQP wake-ups to the journal export pipeline.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"grana/internal/amqp"
	"grana/internal/services"
	"grana/internal/storage"
)

// JournalWorker exports the journal rows named by ledger event
// messages. The poll loop inside the export processor remains the
// safety net for rows whose message never arrived.
type JournalWorker struct {
	storage   *storage.Repository
	exporter  *services.ExportProcessor
	batchSize int
}

func NewJournalWorker(storage *storage.Repository, exporter *services.ExportProcessor, batchSize int) *JournalWorker {
	return &JournalWorker{
		storage:   storage,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleEventMessage processes a single ledger event message from AMQP.
func (w *JournalWorker) HandleEventMessage(ctx context.Context, msg *amqp.EventMessage) error {
	slog.InfoContext(ctx, "Processing ledger event message",
		"event_id", msg.EventID,
		"kind", msg.Kind,
		"user_id", msg.UserID)

	if err := w.exporter.ProcessEvent(ctx, msg.EventID); err != nil {
		return fmt.Errorf("process event %d: %w", msg.EventID, err)
	}
	return nil
}

// ProcessBacklog drains pending journal rows oldest first, as a
// recovery path for lost messages.
func (w *JournalWorker) ProcessBacklog(ctx context.Context) error {
	pending, err := w.storage.PendingEvents(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending events: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing journal backlog", "count", len(pending))
	for _, ev := range pending {
		if err := w.exporter.ProcessEvent(ctx, ev.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export journal row", "id", ev.ID, "error", err)
		}
	}
	return nil
}

// StartupCheck drains rows that accumulated during downtime, using a
// larger batch than the steady-state backlog pass.
func (w *JournalWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.storage.PendingEvents(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list pending events for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending journal rows on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending journal rows on startup, processing",
		"count", len(pending))

	exported := 0
	failed := 0
	for _, ev := range pending {
		if err := w.exporter.ProcessEvent(ctx, ev.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export journal row during startup",
				"id", ev.ID, "error", err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Startup backlog check completed",
		"total", len(pending),
		"exported", exported,
		"errors", failed)
	return nil
}
