package export

import (
	"context"

	"grana/internal/storage"
)

// Ports for outbound export adapters.
type (
	// EventWriter appends one journal row to the export target and
	// returns an opaque reference to where it landed.
	EventWriter interface {
		AppendEvent(ctx context.Context, ev storage.LedgerEvent) (rowRef string, err error)
	}
)
