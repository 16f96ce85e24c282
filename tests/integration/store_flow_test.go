package integration

import (
	"context"
	"testing"

	"github.com/comanda/backend/internal/application/comanda"
	"github.com/comanda/backend/internal/domain/catalog"
	"github.com/comanda/backend/internal/domain/shared"
	"github.com/comanda/backend/internal/domain/tab"
	"github.com/comanda/backend/internal/infrastructure/event"
	"github.com/comanda/backend/internal/infrastructure/persistence"
	"github.com/comanda/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStore(t *testing.T, tdb *TestDB, opts ...comanda.Option) *comanda.Store {
	t.Helper()
	store := comanda.NewStore(
		persistence.NewGormProductRepository(tdb.DB),
		persistence.NewGormTabRepository(tdb.DB),
		opts...,
	)
	require.NoError(t, store.FetchInitialData(context.Background()))
	return store
}

func createProduct(t *testing.T, store *comanda.Store, name, price string, category catalog.Category) *catalog.Product {
	t.Helper()
	p, err := store.CreateProduct(context.Background(), comanda.CreateProductInput{
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Category:  category,
		Available: true,
	})
	require.NoError(t, err)
	return p
}

func TestStore_TabLifecycleSurvivesReload(t *testing.T) {
	tdb := NewTestDB(t)
	ctx := context.Background()

	bus := event.NewInMemoryEventBus(zap.NewNop())
	recorder := testutil.NewRecordingHandler(
		tab.EventTypeTabOpened, tab.EventTypeTabItemAdded, tab.EventTypeTabItemQuantityChanged,
		tab.EventTypeTabItemRemoved, tab.EventTypeTabClosed,
	)
	bus.Subscribe(recorder)
	store := newStore(t, tdb, comanda.WithEventPublisher(bus))

	menta := createProduct(t, store, "Essencia Menta 50g", "35.00", catalog.CategoryEssences)
	agua := createProduct(t, store, "Agua", "4.50", catalog.CategoryDrinks)

	customer, err := tab.NewCustomer("Marina", "", "Mesa 2")
	require.NoError(t, err)
	opened, err := store.CreateTab(ctx, customer)
	require.NoError(t, err)
	assert.Positive(t, opened.Number)

	_, err = store.AddItemToTab(ctx, opened.ID, comanda.AddItemInput{ProductID: menta.ID, Quantity: 1})
	require.NoError(t, err)
	withWater, err := store.AddItemToTab(ctx, opened.ID, comanda.AddItemInput{ProductID: agua.ID, Quantity: 2, Notes: "gelada"})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("44").Equal(withWater.Total))

	waterID := withWater.Items[1].ID
	updated, err := store.UpdateItemQuantity(ctx, opened.ID, waterID, 3)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("48.50").Equal(updated.Total))

	mentaID := updated.Items[0].ID
	removed, err := store.RemoveItemFromTab(ctx, opened.ID, mentaID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("13.50").Equal(removed.Total))

	closed, err := store.CloseTab(ctx, opened.ID, tab.PaymentCash, decimal.NewFromInt(20))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("6.50").Equal(*closed.Change))

	assert.Equal(t, []string{
		tab.EventTypeTabOpened, tab.EventTypeTabItemAdded, tab.EventTypeTabItemAdded,
		tab.EventTypeTabItemQuantityChanged, tab.EventTypeTabItemRemoved, tab.EventTypeTabClosed,
	}, recorder.Types())

	// a fresh store sees exactly what the first one mirrored
	reloaded := newStore(t, tdb)
	got, err := reloaded.GetTab(opened.ID)
	require.NoError(t, err)
	assert.Equal(t, tab.StatusClosed, got.Status)
	assert.Equal(t, opened.Number, got.Number)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Agua", got.Items[0].ProductName)
	assert.Equal(t, 3, got.Items[0].Quantity)
	assert.Equal(t, "gelada", got.Items[0].Notes)
	assert.True(t, decimal.RequireFromString("13.50").Equal(got.Total))
	assert.True(t, decimal.RequireFromString("20").Equal(*got.AmountPaid))
	assert.NoError(t, got.Validate())
	assert.Empty(t, reloaded.GetOpenTabs())
	assert.Len(t, reloaded.GetClosedTabs(), 1)
}

func TestStore_TabNumbersIncrease(t *testing.T) {
	tdb := NewTestDB(t)
	store := newStore(t, tdb)

	var last int64
	for _, name := range []string{"Ana", "Bruno", "Carla"} {
		customer, err := tab.NewCustomer(name, "", "")
		require.NoError(t, err)
		created, err := store.CreateTab(context.Background(), customer)
		require.NoError(t, err)
		assert.Greater(t, created.Number, last)
		last = created.Number
	}

	open := store.GetOpenTabs()
	require.Len(t, open, 3)
	assert.Equal(t, "Carla", open[0].Customer.Name)
}

func TestStore_PriceChangeKeepsItemSnapshot(t *testing.T) {
	tdb := NewTestDB(t)
	ctx := context.Background()
	store := newStore(t, tdb)

	rosh := createProduct(t, store, "Rosh Silicone", "25.00", catalog.CategoryAccessories)
	customer, err := tab.NewCustomer("Joao", "", "")
	require.NoError(t, err)
	opened, err := store.CreateTab(ctx, customer)
	require.NoError(t, err)
	_, err = store.AddItemToTab(ctx, opened.ID, comanda.AddItemInput{ProductID: rosh.ID, Quantity: 1})
	require.NoError(t, err)

	newPrice := decimal.RequireFromString("30.00")
	_, err = store.UpdateProduct(ctx, rosh.ID, catalog.ProductPatch{Price: &newPrice})
	require.NoError(t, err)
	require.NoError(t, store.DeleteProduct(ctx, rosh.ID))

	reloaded := newStore(t, tdb)
	_, err = reloaded.GetProduct(rosh.ID)
	assert.ErrorIs(t, err, comanda.ErrProductNotFound)

	got, err := reloaded.GetTab(opened.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, decimal.RequireFromString("25").Equal(got.Items[0].UnitPrice))
	assert.Equal(t, "Rosh Silicone", got.Items[0].ProductName)
}

func TestStore_StaleWriterIsReconciled(t *testing.T) {
	tdb := NewTestDB(t)
	ctx := context.Background()

	counter := newStore(t, tdb)
	agua := createProduct(t, counter, "Agua", "4.50", catalog.CategoryDrinks)
	customer, err := tab.NewCustomer("Marina", "", "")
	require.NoError(t, err)
	opened, err := counter.CreateTab(ctx, customer)
	require.NoError(t, err)

	// a second terminal loads the same state, then the first one writes
	terminal := newStore(t, tdb)
	_, err = counter.AddItemToTab(ctx, opened.ID, comanda.AddItemInput{ProductID: agua.ID, Quantity: 2})
	require.NoError(t, err)

	_, err = terminal.AddItemToTab(ctx, opened.ID, comanda.AddItemInput{ProductID: agua.ID, Quantity: 1})
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	mirrored, err := terminal.GetTab(opened.ID)
	require.NoError(t, err)
	assert.Len(t, mirrored.Items, 1)
	assert.True(t, decimal.RequireFromString("9").Equal(mirrored.Total))

	// after reconciling the terminal writes on top of the current version
	retried, err := terminal.AddItemToTab(ctx, opened.ID, comanda.AddItemInput{ProductID: agua.ID, Quantity: 1})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("13.50").Equal(retried.Total))
}
