package tab

import (
	"context"

	"github.com/google/uuid"
)

// TabRepository is the persistence contract for tabs and their items.
// Every write that touches the total runs in one transaction and is conditioned on
// the version the caller loaded; a stale version yields shared.ErrConcurrencyConflict.
type TabRepository interface {
	// FindAll returns every tab, newest first, with items in insertion order
	FindAll(ctx context.Context) ([]*Tab, error)

	// FindByID finds a tab with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Tab, error)

	// Create inserts an open tab and fills in Number and CreatedAt
	Create(ctx context.Context, t *Tab) error

	// AddItem inserts the item and writes the new tab total
	AddItem(ctx context.Context, t *Tab, item *TabItem) error

	// UpdateItem writes the item quantity and total and the new tab total
	UpdateItem(ctx context.Context, t *Tab, item *TabItem) error

	// RemoveItem deletes the item and writes the new tab total
	RemoveItem(ctx context.Context, t *Tab, itemID uuid.UUID) error

	// Close writes the settlement fields
	Close(ctx context.Context, t *Tab) error
}
