package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  almoço  ", "almoço"},
		{"strips control characters", "caf\x00é\x1b", "café"},
		{"keeps tabs and newlines", "linha1\n\tlinha2", "linha1\n\tlinha2"},
		{"empty", "", ""},
		{"unicode preserved", "Feijão com arroz", "Feijão com arroz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeInput(tt.input); got != tt.want {
				t.Errorf("sanitizeInput(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRequestUserID(t *testing.T) {
	req := httptest.NewRequest("GET", "/expenses", nil)
	if got := requestUserID(req); got != defaultUserID {
		t.Errorf("expected default user, got %q", got)
	}

	req.Header.Set(userIDHeader, "  alice  ")
	if got := requestUserID(req); got != "alice" {
		t.Errorf("expected trimmed header value, got %q", got)
	}
}

func TestIDFromPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		prefix  string
		want    int64
		wantErr bool
	}{
		{"valid", "/expenses/42", "/expenses/", 42, false},
		{"missing id", "/expenses/", "/expenses/", 0, true},
		{"non numeric", "/expenses/abc", "/expenses/", 0, true},
		{"zero id", "/expenses/0", "/expenses/", 0, true},
		{"negative id", "/expenses/-3", "/expenses/", 0, true},
		{"nested path", "/expenses/42/extra", "/expenses/", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := idFromPath(tt.path, tt.prefix)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.path)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestParseYearMonth(t *testing.T) {
	s := &Server{
		loc: time.UTC,
		now: func() time.Time { return time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC) },
	}

	t.Run("defaults to current month", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/calendar", nil)
		year, month, err := s.parseYearMonth(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if year != 2025 || month != 6 {
			t.Errorf("expected 2025-06, got %d-%d", year, month)
		}
	})

	t.Run("explicit values", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/calendar?year=2024&month=12", nil)
		year, month, err := s.parseYearMonth(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if year != 2024 || month != 12 {
			t.Errorf("expected 2024-12, got %d-%d", year, month)
		}
	})

	t.Run("partial override keeps defaults", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/calendar?month=2", nil)
		year, month, err := s.parseYearMonth(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if year != 2025 || month != 2 {
			t.Errorf("expected 2025-02, got %d-%d", year, month)
		}
	})

	t.Run("malformed values", func(t *testing.T) {
		for _, target := range []string{"/calendar?year=x", "/calendar?month=x"} {
			req := httptest.NewRequest("GET", target, nil)
			if _, _, err := s.parseYearMonth(req); err == nil {
				t.Errorf("%s: expected error", target)
			}
		}
	})

	t.Run("out of range", func(t *testing.T) {
		for _, target := range []string{"/calendar?month=0", "/calendar?month=13", "/calendar?year=1899", "/calendar?year=2201"} {
			req := httptest.NewRequest("GET", target, nil)
			if _, _, err := s.parseYearMonth(req); err == nil {
				t.Errorf("%s: expected error", target)
			}
		}
	})
}

func TestAmountStringUnmarshal(t *testing.T) {
	var payload struct {
		Amount amountString `json:"amount"`
	}

	if err := json.Unmarshal([]byte(`{"amount":"12,34"}`), &payload); err != nil {
		t.Fatalf("string amount: %v", err)
	}
	if payload.Amount != "12,34" {
		t.Errorf("expected 12,34, got %q", payload.Amount)
	}

	if err := json.Unmarshal([]byte(`{"amount":12.34}`), &payload); err != nil {
		t.Fatalf("numeric amount: %v", err)
	}
	if payload.Amount != "12.34" {
		t.Errorf("expected 12.34, got %q", payload.Amount)
	}

	if err := json.Unmarshal([]byte(`{"amount":[1]}`), &payload); err == nil {
		t.Error("expected error for array amount")
	}
}
