package comanda

import (
	"context"

	"github.com/comanda/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductInput holds the fields of a new product
type CreateProductInput struct {
	Name        string
	Price       decimal.Decimal
	Category    catalog.Category
	Description string
	Available   bool
}

// ListProducts returns copies of every product ordered by name
func (s *Store) ListProducts() []*catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p.Clone())
	}
	return out
}

// ListProductsByCategory returns copies of the products in one category, ordered by name
func (s *Store) ListProductsByCategory(category catalog.Category) []*catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*catalog.Product, 0)
	for _, p := range s.products {
		if p.Category == category {
			out = append(out, p.Clone())
		}
	}
	return out
}

// GetProduct returns a copy of one product
func (s *Store) GetProduct(id uuid.UUID) (*catalog.Product, error) {
	p := s.productCopy(id)
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// CreateProduct validates and stores a new product, then adds it to the mirror
func (s *Store) CreateProduct(ctx context.Context, input CreateProductInput) (*catalog.Product, error) {
	product, err := catalog.NewProduct(input.Name, input.Price, input.Category, input.Description, input.Available)
	if err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, s.remoteFailure("create product", err)
	}

	events := product.PullDomainEvents()
	s.putProduct(product)
	s.publish(ctx, product.ID, events)

	return product.Clone(), nil
}

// UpdateProduct merges the present fields of patch into the product, remotely and in the mirror
func (s *Store) UpdateProduct(ctx context.Context, id uuid.UUID, patch catalog.ProductPatch) (*catalog.Product, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	product := s.productCopy(id)
	if product == nil {
		return nil, ErrProductNotFound
	}
	if err := product.Apply(patch); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product, patch.Fields()); err != nil {
		return nil, s.failProductWrite(ctx, "update product", id, err)
	}

	events := product.PullDomainEvents()
	s.putProduct(product)
	s.publish(ctx, product.ID, events)

	return product.Clone(), nil
}

// DiscontinueProduct retires a product while keeping it for history
func (s *Store) DiscontinueProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	product := s.productCopy(id)
	if product == nil {
		return nil, ErrProductNotFound
	}
	if err := product.Discontinue(); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product, []string{"Available", "Discontinued"}); err != nil {
		return nil, s.failProductWrite(ctx, "discontinue product", id, err)
	}

	events := product.PullDomainEvents()
	s.putProduct(product)
	s.publish(ctx, product.ID, events)

	return product.Clone(), nil
}

// DeleteProduct removes a product remotely and from the mirror.
// Items already on tabs keep their snapshot of name and price.
func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	product := s.productCopy(id)
	if product == nil {
		return ErrProductNotFound
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return s.failProductWrite(ctx, "delete product", id, err)
	}

	product.MarkDeleted()
	s.dropProduct(id)
	s.publish(ctx, id, product.PullDomainEvents())

	return nil
}
