// Package comanda holds the aggregate manager: an in-memory mirror of the catalog
// and every tab, kept consistent with storage after each confirmed write.
package comanda

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/comanda/backend/internal/domain/catalog"
	"github.com/comanda/backend/internal/domain/shared"
	"github.com/comanda/backend/internal/domain/tab"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const reconcileTimeout = 5 * time.Second

// Store is the only modification path for products and tabs.
//
// writeMu serializes every mutation and bulk load, including the remote calls they make,
// so within one process there is a single writer. mu guards the mirror itself and is held
// only while reading or swapping slices, so queries never wait on storage.
// Writers in other processes are caught by the version check in the tab repository.
type Store struct {
	productRepo catalog.ProductRepository
	tabRepo     tab.TabRepository

	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time

	writeMu sync.Mutex
	// sorter is not safe for concurrent use; it is only touched while writeMu is held
	sorter *productSorter

	// reloadHooks run after each successful bulk load, while writeMu is held
	reloadHooks []func(ctx context.Context)

	mu       sync.RWMutex
	products []*catalog.Product
	tabs     []*tab.Tab
	loaded   bool
}

// Option configures a Store
type Option func(*Store)

// WithEventPublisher sets the publisher that receives domain events after each confirmed write
func WithEventPublisher(publisher shared.EventPublisher) Option {
	return func(s *Store) {
		s.eventPublisher = publisher
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used when closing tabs
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates an empty Store. Call FetchInitialData before serving requests.
func NewStore(productRepo catalog.ProductRepository, tabRepo tab.TabRepository, opts ...Option) *Store {
	s := &Store{
		productRepo: productRepo,
		tabRepo:     tabRepo,
		logger:      zap.NewNop(),
		now:         time.Now,
		sorter:      newProductSorter(),
		products:    make([]*catalog.Product, 0),
		tabs:        make([]*tab.Tab, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetEventPublisher sets the event publisher after construction
func (s *Store) SetEventPublisher(publisher shared.EventPublisher) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.eventPublisher = publisher
}

// OnReload registers fn to run after every successful FetchInitialData.
// Caches derived from the mirror use it to drop what the previous mirror produced.
func (s *Store) OnReload(fn func(ctx context.Context)) {
	if fn == nil {
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.reloadHooks = append(s.reloadHooks, fn)
}

// FetchInitialData replaces the whole mirror with the current storage state.
// On any failure the previous mirror is kept untouched.
func (s *Store) FetchInitialData(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return s.remoteFailure("fetch products", err)
	}
	tabs, err := s.tabRepo.FindAll(ctx)
	if err != nil {
		return s.remoteFailure("fetch tabs", err)
	}

	s.sorter.sort(products)
	sort.SliceStable(tabs, func(i, j int) bool {
		return tabs[i].CreatedAt.After(tabs[j].CreatedAt)
	})
	for _, t := range tabs {
		if err := t.Validate(); err != nil {
			s.logger.Warn("Inconsistent tab loaded from storage",
				zap.String("tab_id", t.ID.String()),
				zap.Error(err),
			)
		}
	}

	s.mu.Lock()
	s.products = products
	s.tabs = tabs
	s.loaded = true
	s.mu.Unlock()

	s.logger.Info("Mirror loaded",
		zap.Int("products", len(products)),
		zap.Int("tabs", len(tabs)),
	)
	for _, hook := range s.reloadHooks {
		hook(ctx)
	}
	return nil
}

// Loaded reports whether a bulk load has completed at least once
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// remoteFailure logs and wraps a collaborator error
func (s *Store) remoteFailure(op string, err error) error {
	s.logger.Error("Storage call failed",
		zap.String("op", op),
		zap.Error(err),
	)
	return &RemoteFailure{Op: op, Err: err}
}

// publish hands events pulled from a confirmed write to the publisher.
// Events must be pulled before the aggregate enters the mirror, where readers clone it concurrently.
// Publishing failures are logged; the write has already been confirmed.
func (s *Store) publish(ctx context.Context, aggregateID uuid.UUID, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish domain events",
			zap.String("aggregate_id", aggregateID.String()),
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}

// ==================== mirror access (callers hold writeMu for mutations) ====================

// tabCopy returns a private copy of a mirrored tab, or nil
func (s *Store) tabCopy(id uuid.UUID) *tab.Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tabs {
		if t.ID == id {
			return t.Clone()
		}
	}
	return nil
}

// productCopy returns a private copy of a mirrored product, or nil
func (s *Store) productCopy(id uuid.UUID) *catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p.Clone()
		}
	}
	return nil
}

// putTab replaces the mirrored tab with the same ID, or prepends it when absent
func (s *Store) putTab(t *tab.Tab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.tabs {
		if existing.ID == t.ID {
			s.tabs[i] = t
			return
		}
	}
	s.tabs = append([]*tab.Tab{t}, s.tabs...)
}

func (s *Store) dropTab(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.tabs {
		if existing.ID == id {
			s.tabs = append(s.tabs[:i:i], s.tabs[i+1:]...)
			return
		}
	}
}

// putProduct replaces or appends a product and keeps the catalog ordered by name
func (s *Store) putProduct(p *catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]*catalog.Product, 0, len(s.products)+1)
	replaced := false
	for _, existing := range s.products {
		if existing.ID == p.ID {
			next = append(next, p)
			replaced = true
			continue
		}
		next = append(next, existing)
	}
	if !replaced {
		next = append(next, p)
	}
	s.sorter.sort(next)
	s.products = next
}

func (s *Store) dropProduct(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.products {
		if existing.ID == id {
			s.products = append(s.products[:i:i], s.products[i+1:]...)
			return
		}
	}
}

// failTabWrite reconciles the mirrored tab from storage after a failed write and
// returns the error to report. A version conflict is returned as is so callers can
// tell it apart from an unreachable collaborator.
func (s *Store) failTabWrite(ctx context.Context, op string, tabID uuid.UUID, cause error) error {
	s.reconcileTab(ctx, tabID)
	if errors.Is(cause, shared.ErrConcurrencyConflict) {
		s.logger.Warn("Tab modified concurrently",
			zap.String("op", op),
			zap.String("tab_id", tabID.String()),
		)
		return cause
	}
	return s.remoteFailure(op, cause)
}

// reconcileTab replaces the mirrored tab with what storage holds now.
// It runs even when the request context is already cancelled.
func (s *Store) reconcileTab(ctx context.Context, tabID uuid.UUID) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reconcileTimeout)
	defer cancel()

	fresh, err := s.tabRepo.FindByID(rctx, tabID)
	switch {
	case err == nil:
		s.putTab(fresh)
		s.logger.Info("Tab reconciled from storage",
			zap.String("tab_id", tabID.String()),
			zap.String("total", fresh.Total.String()),
			zap.Int("version", fresh.Version),
		)
	case errors.Is(err, shared.ErrNotFound):
		s.dropTab(tabID)
		s.logger.Warn("Tab vanished from storage, dropped from mirror",
			zap.String("tab_id", tabID.String()),
		)
	default:
		s.logger.Error("Tab reconcile failed, mirror kept",
			zap.String("tab_id", tabID.String()),
			zap.Error(err),
		)
	}
}

// failProductWrite reconciles the mirrored product from storage after a failed write.
// A version conflict is returned as is, a product deleted elsewhere as ErrProductNotFound.
func (s *Store) failProductWrite(ctx context.Context, op string, productID uuid.UUID, cause error) error {
	s.reconcileProduct(ctx, productID)
	switch {
	case errors.Is(cause, shared.ErrConcurrencyConflict):
		s.logger.Warn("Product modified concurrently",
			zap.String("op", op),
			zap.String("product_id", productID.String()),
		)
		return cause
	case errors.Is(cause, shared.ErrNotFound):
		return ErrProductNotFound
	}
	return s.remoteFailure(op, cause)
}

// reconcileProduct replaces the mirrored product with what storage holds now
func (s *Store) reconcileProduct(ctx context.Context, productID uuid.UUID) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reconcileTimeout)
	defer cancel()

	fresh, err := s.productRepo.FindByID(rctx, productID)
	switch {
	case err == nil:
		s.putProduct(fresh)
		s.logger.Info("Product reconciled from storage",
			zap.String("product_id", productID.String()),
			zap.Int("version", fresh.Version),
		)
	case errors.Is(err, shared.ErrNotFound):
		s.dropProduct(productID)
		s.logger.Warn("Product vanished from storage, dropped from mirror",
			zap.String("product_id", productID.String()),
		)
	default:
		s.logger.Error("Product reconcile failed, mirror kept",
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
	}
}
