package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/comanda/backend/internal/application/comanda"
	"github.com/comanda/backend/internal/domain/catalog"
	"github.com/comanda/backend/internal/domain/tab"
	"github.com/comanda/backend/internal/interfaces/http/dto"
	"github.com/comanda/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// MockProductRepository implements catalog.ProductRepository for testing
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindAll(ctx context.Context) ([]*catalog.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *catalog.Product, fields []string) error {
	return m.Called(ctx, product, fields).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockTabRepository implements tab.TabRepository for testing
type MockTabRepository struct {
	mock.Mock
}

func (m *MockTabRepository) FindAll(ctx context.Context) ([]*tab.Tab, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tab.Tab), args.Error(1)
}

func (m *MockTabRepository) FindByID(ctx context.Context, id uuid.UUID) (*tab.Tab, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tab.Tab), args.Error(1)
}

func (m *MockTabRepository) Create(ctx context.Context, t *tab.Tab) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTabRepository) AddItem(ctx context.Context, t *tab.Tab, item *tab.TabItem) error {
	return m.Called(ctx, t, item).Error(0)
}

func (m *MockTabRepository) UpdateItem(ctx context.Context, t *tab.Tab, item *tab.TabItem) error {
	return m.Called(ctx, t, item).Error(0)
}

func (m *MockTabRepository) RemoveItem(ctx context.Context, t *tab.Tab, itemID uuid.UUID) error {
	return m.Called(ctx, t, itemID).Error(0)
}

func (m *MockTabRepository) Close(ctx context.Context, t *tab.Tab) error {
	return m.Called(ctx, t).Error(0)
}

// testEnv is a loaded store behind mocked repositories
type testEnv struct {
	store    *comanda.Store
	products *MockProductRepository
	tabs     *MockTabRepository
}

func newTestEnv(t *testing.T, products []*catalog.Product, tabs []*tab.Tab) *testEnv {
	t.Helper()

	env := &testEnv{
		products: new(MockProductRepository),
		tabs:     new(MockTabRepository),
	}
	env.products.On("FindAll", mock.Anything).Return(products, nil).Once()
	env.tabs.On("FindAll", mock.Anything).Return(tabs, nil).Once()

	env.store = comanda.NewStore(env.products, env.tabs)
	require.NoError(t, env.store.FetchInitialData(context.Background()))
	return env
}

func newProduct(t *testing.T, name, price string, category catalog.Category) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, decimal.RequireFromString(price), category, "", true)
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func newOpenTab(t *testing.T, number int64, customer string) *tab.Tab {
	t.Helper()
	c, err := tab.NewCustomer(customer, "", "")
	require.NoError(t, err)
	tb, err := tab.NewTab(c)
	require.NoError(t, err)
	tb.Number = number
	tb.CreatedAt = time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC).Add(time.Duration(number) * time.Minute)
	tb.ClearDomainEvents()
	return tb
}

func performRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeResponse decodes the envelope, unmarshalling data into out when given
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()
	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *dto.ErrorInfo  `json:"error"`
		Meta    *dto.Meta       `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw), w.Body.String())
	if out != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, out))
	}
	return dto.Response{Success: raw.Success, Error: raw.Error, Meta: raw.Meta}
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decodeResponse(t, w, nil)
	require.NotNil(t, resp.Error, w.Body.String())
	return resp.Error.Code
}
