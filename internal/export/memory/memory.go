package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"grana/internal/storage"
)

// Writer collects appended events in memory. Tests use it in place of
// the Google Sheets client.
type Writer struct {
	mu     sync.Mutex
	events []storage.LedgerEvent
	failN  int
}

func New() *Writer {
	return &Writer{}
}

// AppendEvent stores the event and returns a synthetic row reference.
func (w *Writer) AppendEvent(_ context.Context, ev storage.LedgerEvent) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failN > 0 {
		w.failN--
		return "", errors.New("append rejected")
	}
	w.events = append(w.events, ev)
	return fmt.Sprintf("mem:%d", len(w.events)), nil
}

// FailNext makes the next n appends fail.
func (w *Writer) FailNext(n int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failN = n
}

// Events returns a copy of everything appended so far.
func (w *Writer) Events() []storage.LedgerEvent {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]storage.LedgerEvent(nil), w.events...)
}
