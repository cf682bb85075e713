package adapters

import (
	"errors"
	"fmt"
	"testing"

	"grana/internal/core"
)

func TestAsUnavailable(t *testing.T) {
	if asUnavailable(nil) != nil {
		t.Fatal("nil must stay nil")
	}

	notFound := fmt.Errorf("expense 7: %w", core.ErrNotFound)
	if got := asUnavailable(notFound); !errors.Is(got, core.ErrNotFound) {
		t.Fatalf("not-found should pass through, got %v", got)
	}
	if errors.Is(asUnavailable(notFound), core.ErrUnavailable) {
		t.Fatal("not-found must not be reported as unavailable")
	}

	driver := errors.New("database is locked")
	got := asUnavailable(driver)
	if !errors.Is(got, core.ErrUnavailable) {
		t.Fatalf("driver failure should map to unavailable, got %v", got)
	}
}
