package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindAll returns every product ordered by name
	FindAll(ctx context.Context) ([]*Product, error)

	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// Save inserts a new product and refreshes server-assigned fields
	Save(ctx context.Context, product *Product) error

	// Update writes only the named fields of the product
	Update(ctx context.Context, product *Product, fields []string) error

	// Delete deletes a product
	Delete(ctx context.Context, id uuid.UUID) error
}
