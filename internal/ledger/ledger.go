// Package ledger persists codex records and flips their verified flag.
package ledger

import (
	"context"
	"fmt"

	"codex-ledger/internal/domain"
)

// Table is the relation holding codex records.
const Table = "codex_entries"

// Store is the write/lookup/patch contract both backends implement.
type Store interface {
	// Insert writes rec and returns the stored row, which may be nil if the
	// store echoes nothing back.
	Insert(ctx context.Context, rec *domain.LedgerRecord) (*domain.LedgerRecord, error)
	// FindByHash returns nil, nil when no row matches.
	FindByHash(ctx context.Context, hash string) (*domain.LedgerRecord, error)
	MarkVerified(ctx context.Context, id domain.RecordID) error
}

// StoreError is a store call that completed with a failure status.
type StoreError struct {
	Op         string
	StatusCode int
	Body       string
}

// Error is the store's own response text, which is what clients see.
func (e *StoreError) Error() string {
	if e.Body != "" {
		return e.Body
	}
	return fmt.Sprintf("%s failed with status %d", e.Op, e.StatusCode)
}
