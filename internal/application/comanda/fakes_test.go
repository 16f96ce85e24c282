package comanda

import (
	"context"
	"sync"
	"time"

	"github.com/comanda/backend/internal/domain/catalog"
	"github.com/comanda/backend/internal/domain/shared"
	"github.com/comanda/backend/internal/domain/tab"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// fakeProductRepo is an in-memory ProductRepository with per-method failure injection
type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*catalog.Product
	fail     map[string]error
	calls    map[string]int
}

func newFakeProductRepo(products ...*catalog.Product) *fakeProductRepo {
	r := &fakeProductRepo{
		products: make(map[uuid.UUID]*catalog.Product),
		fail:     make(map[string]error),
		calls:    make(map[string]int),
	}
	for _, p := range products {
		r.products[p.ID] = p.Clone()
	}
	return r
}

func (r *fakeProductRepo) enter(method string) error {
	r.calls[method]++
	return r.fail[method]
}

func (r *fakeProductRepo) FindAll(ctx context.Context) ([]*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("FindAll"); err != nil {
		return nil, err
	}
	out := make([]*catalog.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p.Clone())
	}
	return out, nil
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("FindByID"); err != nil {
		return nil, err
	}
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *fakeProductRepo) Save(ctx context.Context, product *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("Save"); err != nil {
		return err
	}
	r.products[product.ID] = product.Clone()
	return nil
}

func (r *fakeProductRepo) Update(ctx context.Context, product *catalog.Product, fields []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("Update"); err != nil {
		return err
	}
	stored, ok := r.products[product.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != product.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	r.products[product.ID] = product.Clone()
	return nil
}

// modify changes the stored product as another process would, bumping its version
func (r *fakeProductRepo) modify(id uuid.UUID, change func(*catalog.Product)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.products[id]
	change(stored)
	stored.IncrementVersion()
}

func (r *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("Delete"); err != nil {
		return err
	}
	if _, ok := r.products[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

// fakeTabRepo is an in-memory TabRepository that enforces the version check
type fakeTabRepo struct {
	mu       sync.Mutex
	tabs     map[uuid.UUID]*tab.Tab
	nextNum  int64
	fail     map[string]error
	calls    map[string]int
	clock    time.Time
	ordering []uuid.UUID
}

func newFakeTabRepo(tabs ...*tab.Tab) *fakeTabRepo {
	r := &fakeTabRepo{
		tabs:    make(map[uuid.UUID]*tab.Tab),
		nextNum: 1,
		fail:    make(map[string]error),
		calls:   make(map[string]int),
		clock:   time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC),
	}
	for _, t := range tabs {
		r.tabs[t.ID] = t.Clone()
		r.ordering = append(r.ordering, t.ID)
		if t.Number >= r.nextNum {
			r.nextNum = t.Number + 1
		}
	}
	return r
}

func (r *fakeTabRepo) enter(method string) error {
	r.calls[method]++
	return r.fail[method]
}

// write applies a versioned write: the stored copy must match the caller's version
func (r *fakeTabRepo) write(method string, t *tab.Tab) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(method); err != nil {
		return err
	}
	stored, ok := r.tabs[t.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != t.Version {
		return shared.ErrConcurrencyConflict
	}
	t.IncrementVersion()
	r.tabs[t.ID] = t.Clone()
	return nil
}

func (r *fakeTabRepo) FindAll(ctx context.Context) ([]*tab.Tab, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("FindAll"); err != nil {
		return nil, err
	}
	out := make([]*tab.Tab, 0, len(r.tabs))
	for _, id := range r.ordering {
		if t, ok := r.tabs[id]; ok {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (r *fakeTabRepo) FindByID(ctx context.Context, id uuid.UUID) (*tab.Tab, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("FindByID"); err != nil {
		return nil, err
	}
	t, ok := r.tabs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return t.Clone(), nil
}

func (r *fakeTabRepo) Create(ctx context.Context, t *tab.Tab) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("Create"); err != nil {
		return err
	}
	r.clock = r.clock.Add(time.Minute)
	t.Number = r.nextNum
	t.CreatedAt = r.clock
	r.nextNum++
	r.tabs[t.ID] = t.Clone()
	r.ordering = append(r.ordering, t.ID)
	return nil
}

func (r *fakeTabRepo) AddItem(ctx context.Context, t *tab.Tab, item *tab.TabItem) error {
	return r.write("AddItem", t)
}

func (r *fakeTabRepo) UpdateItem(ctx context.Context, t *tab.Tab, item *tab.TabItem) error {
	return r.write("UpdateItem", t)
}

func (r *fakeTabRepo) RemoveItem(ctx context.Context, t *tab.Tab, itemID uuid.UUID) error {
	return r.write("RemoveItem", t)
}

func (r *fakeTabRepo) Close(ctx context.Context, t *tab.Tab) error {
	return r.write("Close", t)
}

// stored returns the persisted copy of a tab
func (r *fakeTabRepo) stored(id uuid.UUID) *tab.Tab {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tabs[id]; ok {
		return t.Clone()
	}
	return nil
}

// bumpVersion simulates a write from another process
func (r *fakeTabRepo) bumpVersion(id uuid.UUID, mutate func(*tab.Tab)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.tabs[id]
	if mutate != nil {
		mutate(t)
	}
	t.IncrementVersion()
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// recordingPublisher keeps every published event type in order
type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range events {
		p.types = append(p.types, e.EventType())
	}
	return nil
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.types...)
}
