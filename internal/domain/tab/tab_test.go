package tab

import (
	"strings"
	"testing"
	"time"

	"github.com/comanda/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenTab(t *testing.T) *Tab {
	t.Helper()
	tb, err := NewTab(Customer{Name: "Ana", Table: "5"})
	require.NoError(t, err)
	tb.Number = 1
	tb.ClearDomainEvents()
	return tb
}

func assertConsistent(t *testing.T, tb *Tab) {
	t.Helper()
	require.NoError(t, tb.Validate())
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	return de.Code
}

// ==================== Status / PaymentMethod ====================

func TestStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, StatusOpen.CanTransitionTo(StatusClosed))
	assert.False(t, StatusClosed.CanTransitionTo(StatusOpen))
	assert.False(t, StatusClosed.CanTransitionTo(StatusClosed))
	assert.False(t, StatusOpen.CanTransitionTo(StatusOpen))
	assert.False(t, Status("paid").IsValid())
}

func TestPaymentMethod_IsValid(t *testing.T) {
	for _, m := range AllPaymentMethods() {
		assert.True(t, m.IsValid(), m.String())
	}
	assert.False(t, PaymentMethod("boleto").IsValid())
}

// ==================== NewTab ====================

func TestNewTab(t *testing.T) {
	t.Run("opens empty tab", func(t *testing.T) {
		tb, err := NewTab(Customer{Name: " Ana ", Identity: " 123 ", Table: ""})
		require.NoError(t, err)

		assert.Equal(t, StatusOpen, tb.Status)
		assert.True(t, tb.Total.IsZero())
		assert.Empty(t, tb.Items)
		assert.Equal(t, "Ana", tb.Customer.Name)
		assert.Equal(t, "123", tb.Customer.Identity)
		assert.Nil(t, tb.ClosedAt)
		assert.Nil(t, tb.PaymentMethod)
		assert.Nil(t, tb.AmountPaid)
		assert.Nil(t, tb.Change)
		assertConsistent(t, tb)

		events := tb.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeTabOpened, events[0].EventType())
	})

	t.Run("requires customer name", func(t *testing.T) {
		_, err := NewTab(Customer{Name: "   "})
		require.Error(t, err)
		assert.Equal(t, "INVALID_CUSTOMER_NAME", domainCode(t, err))
		assert.True(t, shared.IsValidationError(err))
	})

	t.Run("limits customer name length", func(t *testing.T) {
		_, err := NewTab(Customer{Name: strings.Repeat("x", 121)})
		require.Error(t, err)
	})
}

// ==================== Items ====================

func TestTab_AddItem(t *testing.T) {
	t.Run("appends item and grows total", func(t *testing.T) {
		tb := newOpenTab(t)
		productID := uuid.New()

		item, err := tb.AddItem(productID, "Essência", decimal.RequireFromString("10.00"), 3, " gelo ")
		require.NoError(t, err)

		assert.Equal(t, tb.ID, item.TabID)
		assert.True(t, item.TotalPrice.Equal(decimal.NewFromInt(30)))
		assert.Equal(t, "gelo", item.Notes)
		assert.True(t, tb.Total.Equal(decimal.NewFromInt(30)))
		assertConsistent(t, tb)

		second, err := tb.AddItem(uuid.New(), "Água", decimal.RequireFromString("4.50"), 2, "")
		require.NoError(t, err)
		require.Len(t, tb.Items, 2)
		assert.Equal(t, second.ID, tb.Items[1].ID)
		assert.True(t, tb.Total.Equal(decimal.NewFromInt(39)))
		assertConsistent(t, tb)
	})

	t.Run("allows the same product twice", func(t *testing.T) {
		tb := newOpenTab(t)
		productID := uuid.New()
		_, err := tb.AddItem(productID, "Carvão", decimal.NewFromInt(5), 1, "")
		require.NoError(t, err)
		_, err = tb.AddItem(productID, "Carvão", decimal.NewFromInt(5), 1, "outra mesa")
		require.NoError(t, err)
		assert.Len(t, tb.Items, 2)
	})

	t.Run("rejects quantity below one", func(t *testing.T) {
		tb := newOpenTab(t)
		_, err := tb.AddItem(uuid.New(), "Carvão", decimal.NewFromInt(5), 0, "")
		require.Error(t, err)
		assert.Equal(t, "INVALID_QUANTITY", domainCode(t, err))
		assert.Empty(t, tb.Items)
	})

	t.Run("emits item added event", func(t *testing.T) {
		tb := newOpenTab(t)
		_, err := tb.AddItem(uuid.New(), "Carvão", decimal.NewFromInt(5), 2, "")
		require.NoError(t, err)

		events := tb.GetDomainEvents()
		require.Len(t, events, 1)
		ev, ok := events[0].(*TabItemAddedEvent)
		require.True(t, ok)
		assert.True(t, ev.TabTotal.Equal(decimal.NewFromInt(10)))
	})
}

func TestTab_UpdateItemQuantity(t *testing.T) {
	tb := newOpenTab(t)
	item, err := tb.AddItem(uuid.New(), "Essência", decimal.RequireFromString("10.00"), 3, "")
	require.NoError(t, err)
	before := tb.Total

	updated, changed, err := tb.UpdateItemQuantity(item.ID, 5)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, updated.TotalPrice.Equal(decimal.NewFromInt(50)))
	assert.True(t, tb.Total.Sub(before).Equal(decimal.NewFromInt(20)))
	assertConsistent(t, tb)

	t.Run("same quantity is a no-op", func(t *testing.T) {
		total := tb.Total
		tb.ClearDomainEvents()
		_, changed, err := tb.UpdateItemQuantity(item.ID, 5)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.True(t, tb.Total.Equal(total))
		assert.Empty(t, tb.GetDomainEvents())
	})

	t.Run("rejects quantity below one", func(t *testing.T) {
		_, _, err := tb.UpdateItemQuantity(item.ID, 0)
		require.Error(t, err)
		assert.Equal(t, "INVALID_QUANTITY", domainCode(t, err))
	})

	t.Run("unknown item", func(t *testing.T) {
		_, _, err := tb.UpdateItemQuantity(uuid.New(), 2)
		require.Error(t, err)
		assert.Equal(t, "ITEM_NOT_FOUND", domainCode(t, err))
	})
}

func TestTab_RemoveItem(t *testing.T) {
	tb := newOpenTab(t)
	keep, err := tb.AddItem(uuid.New(), "Água", decimal.NewFromInt(4), 1, "")
	require.NoError(t, err)
	drop, err := tb.AddItem(uuid.New(), "Essência", decimal.NewFromInt(10), 3, "")
	require.NoError(t, err)

	removed, err := tb.RemoveItem(drop.ID)
	require.NoError(t, err)
	assert.Equal(t, drop.ID, removed.ID)
	require.Len(t, tb.Items, 1)
	assert.Equal(t, keep.ID, tb.Items[0].ID)
	assert.True(t, tb.Total.Equal(decimal.NewFromInt(4)))
	assertConsistent(t, tb)

	_, err = tb.RemoveItem(drop.ID)
	require.Error(t, err)
	assert.Equal(t, "ITEM_NOT_FOUND", domainCode(t, err))
}

// ==================== Close ====================

func TestTab_Close(t *testing.T) {
	t.Run("settles with change", func(t *testing.T) {
		tb := newOpenTab(t)
		_, err := tb.AddItem(uuid.New(), "Essência", decimal.NewFromInt(10), 3, "")
		require.NoError(t, err)
		at := time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)

		err = tb.Close(PaymentCash, tb.Total.Add(decimal.NewFromInt(5)), at)
		require.NoError(t, err)

		assert.True(t, tb.IsClosed())
		assert.Equal(t, PaymentCash, *tb.PaymentMethod)
		assert.True(t, tb.Change.Equal(decimal.NewFromInt(5)))
		assert.Equal(t, at, *tb.ClosedAt)
		assertConsistent(t, tb)
	})

	t.Run("allows underpayment", func(t *testing.T) {
		tb := newOpenTab(t)
		_, err := tb.AddItem(uuid.New(), "Essência", decimal.NewFromInt(10), 1, "")
		require.NoError(t, err)

		require.NoError(t, tb.Close(PaymentPix, decimal.NewFromInt(7), time.Now()))
		assert.True(t, tb.Change.Equal(decimal.NewFromInt(-3)))
	})

	t.Run("closes empty tab", func(t *testing.T) {
		tb := newOpenTab(t)
		require.NoError(t, tb.Close(PaymentCard, decimal.Zero, time.Now()))
		assert.True(t, tb.Change.IsZero())
	})

	t.Run("rejects unknown method and negative amount", func(t *testing.T) {
		tb := newOpenTab(t)
		err := tb.Close(PaymentMethod("cheque"), decimal.NewFromInt(1), time.Now())
		assert.Equal(t, "INVALID_PAYMENT_METHOD", domainCode(t, err))
		err = tb.Close(PaymentCash, decimal.NewFromInt(-1), time.Now())
		assert.Equal(t, "INVALID_AMOUNT", domainCode(t, err))
		assert.True(t, tb.IsOpen())
		assertConsistent(t, tb)
	})

	t.Run("closed tab rejects every item mutation", func(t *testing.T) {
		tb := newOpenTab(t)
		item, err := tb.AddItem(uuid.New(), "Essência", decimal.NewFromInt(10), 1, "")
		require.NoError(t, err)
		require.NoError(t, tb.Close(PaymentCash, decimal.NewFromInt(10), time.Now()))
		total := tb.Total

		_, err = tb.AddItem(uuid.New(), "Água", decimal.NewFromInt(4), 1, "")
		assert.Equal(t, "INVALID_STATE", domainCode(t, err))
		_, _, err = tb.UpdateItemQuantity(item.ID, 2)
		assert.Equal(t, "INVALID_STATE", domainCode(t, err))
		_, err = tb.RemoveItem(item.ID)
		assert.Equal(t, "INVALID_STATE", domainCode(t, err))
		err = tb.Close(PaymentPix, decimal.NewFromInt(10), time.Now())
		assert.Equal(t, "INVALID_STATE", domainCode(t, err))

		assert.True(t, tb.Total.Equal(total))
		assert.Len(t, tb.Items, 1)
	})
}

// ==================== Validate / Clone ====================

func TestTab_Validate(t *testing.T) {
	t.Run("detects total drift", func(t *testing.T) {
		tb := newOpenTab(t)
		_, err := tb.AddItem(uuid.New(), "Essência", decimal.NewFromInt(10), 1, "")
		require.NoError(t, err)
		tb.Total = decimal.NewFromInt(11)
		assert.Error(t, tb.Validate())
	})

	t.Run("detects item drift", func(t *testing.T) {
		tb := newOpenTab(t)
		_, err := tb.AddItem(uuid.New(), "Essência", decimal.NewFromInt(10), 2, "")
		require.NoError(t, err)
		tb.Items[0].Quantity = 3
		assert.Error(t, tb.Validate())
	})

	t.Run("detects settlement fields on open tab", func(t *testing.T) {
		tb := newOpenTab(t)
		method := PaymentPix
		tb.PaymentMethod = &method
		assert.Error(t, tb.Validate())
	})
}

func TestTab_Clone(t *testing.T) {
	tb := newOpenTab(t)
	_, err := tb.AddItem(uuid.New(), "Essência", decimal.NewFromInt(10), 1, "")
	require.NoError(t, err)
	require.NoError(t, tb.Close(PaymentCash, decimal.NewFromInt(10), time.Now()))

	c := tb.Clone()
	c.Items[0].Quantity = 99
	*c.AmountPaid = decimal.NewFromInt(1)

	assert.Equal(t, 1, tb.Items[0].Quantity)
	assert.True(t, tb.AmountPaid.Equal(decimal.NewFromInt(10)))
	assert.Empty(t, c.GetDomainEvents())
}
