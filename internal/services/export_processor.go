package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"grana/internal/export"
	"grana/internal/storage"
)

// ExportProcessorConfig holds configuration for the export processor
type ExportProcessorConfig struct {
	// PollInterval is how often to check for pending journal rows (default: 10s)
	PollInterval time.Duration

	// BatchSize is the max number of rows to export per poll cycle (default: 10)
	BatchSize int

	// MaxRetries is the maximum export attempts before parking a row (default: 3)
	MaxRetries int

	// CleanupInterval is how often to drop old exported rows (default: 1h)
	CleanupInterval time.Duration

	// CleanupAge is how old exported rows must be before cleanup (default: 24h)
	CleanupAge time.Duration
}

// DefaultExportProcessorConfig returns sensible defaults
func DefaultExportProcessorConfig() ExportProcessorConfig {
	return ExportProcessorConfig{
		PollInterval:    10 * time.Second,
		BatchSize:       10,
		MaxRetries:      3,
		CleanupInterval: 1 * time.Hour,
		CleanupAge:      24 * time.Hour,
	}
}

// ExportProcessor drains pending journal rows to the export target. The
// poll loop is the fallback path; AMQP wake-ups call ProcessEvent so a
// row goes out as soon as it commits.
type ExportProcessor struct {
	storage *storage.Repository
	sheet   export.EventWriter
	config  ExportProcessorConfig

	// exportMu serializes the poll loop and AMQP-triggered exports so
	// the same row is never appended twice.
	exportMu sync.Mutex

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewExportProcessor creates a new export processor
func NewExportProcessor(storage *storage.Repository, sheet export.EventWriter, config ExportProcessorConfig) *ExportProcessor {
	return &ExportProcessor{
		storage: storage,
		sheet:   sheet,
		config:  config,
	}
}

// Start begins the processing loop. Returns an error if already running.
func (p *ExportProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("export processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Export processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)

	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *ExportProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Export processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Export processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running
func (p *ExportProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// runLoop is the main processing loop
func (p *ExportProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	pollTicker := time.NewTicker(p.config.PollInterval)
	defer pollTicker.Stop()

	cleanupTicker := time.NewTicker(p.config.CleanupInterval)
	defer cleanupTicker.Stop()

	// Process immediately on startup
	p.processBatch(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-pollTicker.C:
			p.processBatch(ctx)
		case <-cleanupTicker.C:
			p.cleanupExported(ctx)
		}
	}
}

// processBatch exports a single batch of pending journal rows
func (p *ExportProcessor) processBatch(ctx context.Context) {
	p.exportMu.Lock()
	defer p.exportMu.Unlock()

	events, err := p.storage.PendingEvents(ctx, p.config.BatchSize)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list pending journal rows", "error", err)
		return
	}

	if len(events) == 0 {
		return
	}

	slog.DebugContext(ctx, "Exporting journal batch", "count", len(events))

	for _, ev := range events {
		// Check if we should stop
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		if err := p.exportEvent(ctx, ev); err != nil {
			p.handleFailure(ctx, ev, err)
		} else {
			p.handleSuccess(ctx, ev)
		}
	}
}

// ProcessEvent exports one journal row by id. The AMQP consumer calls
// this on every wake-up message; a row the poll loop already drained is
// skipped, not an error.
func (p *ExportProcessor) ProcessEvent(ctx context.Context, id int64) error {
	p.exportMu.Lock()
	defer p.exportMu.Unlock()

	ev, err := p.storage.Event(ctx, id)
	if err != nil {
		return fmt.Errorf("get event %d: %w", id, err)
	}
	if ev.ExportStatus != storage.ExportPending {
		slog.DebugContext(ctx, "Journal row already handled", "id", id, "status", ev.ExportStatus)
		return nil
	}

	if err := p.exportEvent(ctx, ev); err != nil {
		p.handleFailure(ctx, ev, err)
		return err
	}
	p.handleSuccess(ctx, ev)
	return nil
}

// exportEvent appends one journal row to the export target
func (p *ExportProcessor) exportEvent(ctx context.Context, ev storage.LedgerEvent) error {
	ref, err := p.sheet.AppendEvent(ctx, ev)
	if err != nil {
		return fmt.Errorf("append event %d: %w", ev.ID, err)
	}

	slog.InfoContext(ctx, "Exported journal row",
		"id", ev.ID,
		"kind", ev.Kind,
		"ref", ref)

	return nil
}

// handleSuccess marks a journal row as exported
func (p *ExportProcessor) handleSuccess(ctx context.Context, ev storage.LedgerEvent) {
	if err := p.storage.MarkExported(ctx, ev.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark journal row exported",
			"id", ev.ID, "error", err)
	}
}

// handleFailure bumps the attempt counter; the row stays pending until
// the retry budget runs out, then is parked as failed.
func (p *ExportProcessor) handleFailure(ctx context.Context, ev storage.LedgerEvent, processErr error) {
	slog.WarnContext(ctx, "Export attempt failed",
		"id", ev.ID,
		"kind", ev.Kind,
		"attempt", ev.ExportAttempts+1,
		"error", processErr)

	if err := p.storage.MarkExportError(ctx, ev.ID, p.config.MaxRetries); err != nil {
		slog.ErrorContext(ctx, "Failed to record export error",
			"id", ev.ID, "error", err)
		return
	}

	if ev.ExportAttempts+1 >= int64(p.config.MaxRetries) {
		slog.ErrorContext(ctx, "Journal row parked after max retries",
			"id", ev.ID,
			"kind", ev.Kind,
			"attempts", ev.ExportAttempts+1)
	}
}

// cleanupExported removes old exported rows
func (p *ExportProcessor) cleanupExported(ctx context.Context) {
	cutoff := time.Now().Add(-p.config.CleanupAge)
	if _, err := p.storage.CleanupExported(ctx, cutoff); err != nil {
		slog.ErrorContext(ctx, "Failed to cleanup exported rows", "error", err)
	}
}

// Stats returns current journal export statistics
func (p *ExportProcessor) Stats(ctx context.Context) (storage.GetExportStatsRow, error) {
	return p.storage.ExportStats(ctx)
}

// RetryFailed requeues all parked rows for another export attempt
func (p *ExportProcessor) RetryFailed(ctx context.Context) error {
	_, err := p.storage.RetryFailedExports(ctx)
	return err
}
