package google

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"grana/internal/storage"
)

func clearSheetsEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"GOOGLE_SPREADSHEET_ID",
		"GOOGLE_SHEET_NAME",
		"GOOGLE_SERVICE_ACCOUNT_JSON",
		"GOOGLE_SERVICE_ACCOUNT_FILE",
		"GOOGLE_APPLICATION_CREDENTIALS",
	}
	saved := make(map[string]string, len(keys))
	for _, k := range keys {
		saved[k] = os.Getenv(k)
		os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for k, v := range saved {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	})
}

func TestNewFromEnvMissingSpreadsheetID(t *testing.T) {
	clearSheetsEnv(t)

	_, err := NewFromEnv(context.Background())
	if err == nil {
		t.Fatal("expected error for missing GOOGLE_SPREADSHEET_ID")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewFromEnvMissingCredentials(t *testing.T) {
	clearSheetsEnv(t)
	os.Setenv("GOOGLE_SPREADSHEET_ID", "test-id")

	_, err := NewFromEnv(context.Background())
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
	if !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("expected credentials error, got: %v", err)
	}
}

func TestNewFromEnvUnreadableCredentialFile(t *testing.T) {
	clearSheetsEnv(t)
	os.Setenv("GOOGLE_SPREADSHEET_ID", "test-id")
	os.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "/nonexistent/credentials.json")

	_, err := NewFromEnv(context.Background())
	if err == nil {
		t.Fatal("expected error for unreadable credential file")
	}
	if !strings.Contains(err.Error(), "read service account file") {
		t.Errorf("expected file read error, got: %v", err)
	}
}

func TestAppendEventNilService(t *testing.T) {
	c := &Client{spreadsheetID: "test", eventsSheet: "Lançamentos"}

	_, err := c.AppendEvent(context.Background(), storage.LedgerEvent{ID: 1})
	if err == nil {
		t.Fatal("expected error with nil sheets service")
	}
	if !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestEventRowColumns(t *testing.T) {
	ev := storage.LedgerEvent{
		ID:          7,
		UserID:      "local",
		Kind:        storage.KindExpenseCreated,
		EntityID:    12,
		Description: "Almoço no restaurante",
		AmountCents: 4590,
		Category:    "Alimentação",
		EntryDate:   "2025-06-10",
		CreatedAt:   time.Date(2025, 6, 10, 15, 4, 5, 0, time.UTC),
	}

	row := eventRow(ev)
	if len(row) != 8 {
		t.Fatalf("expected 8 columns, got %d", len(row))
	}
	if row[0] != int64(7) {
		t.Errorf("id column = %v", row[0])
	}
	if row[1] != "2025-06-10T15:04:05Z" {
		t.Errorf("recorded-at column = %v", row[1])
	}
	if row[3] != storage.KindExpenseCreated {
		t.Errorf("kind column = %v", row[3])
	}
	if row[5] != 45.90 {
		t.Errorf("amount column = %v, want 45.90 reais", row[5])
	}
	if row[7] != "2025-06-10" {
		t.Errorf("entry date column = %v", row[7])
	}
}
