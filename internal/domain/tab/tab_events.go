package tab

import (
	"time"

	"github.com/comanda/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeTab = "Tab"

// Event type constants
const (
	EventTypeTabOpened              = "TabOpened"
	EventTypeTabItemAdded           = "TabItemAdded"
	EventTypeTabItemRemoved         = "TabItemRemoved"
	EventTypeTabItemQuantityChanged = "TabItemQuantityChanged"
	EventTypeTabClosed              = "TabClosed"
)

// TabOpenedEvent is published when a new tab is opened
type TabOpenedEvent struct {
	shared.BaseDomainEvent
	TabID        uuid.UUID `json:"tab_id"`
	CustomerName string    `json:"customer_name"`
	Table        string    `json:"table,omitempty"`
}

// NewTabOpenedEvent creates a new TabOpenedEvent
func NewTabOpenedEvent(t *Tab) *TabOpenedEvent {
	return &TabOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTabOpened, AggregateTypeTab, t.ID),
		TabID:           t.ID,
		CustomerName:    t.Customer.Name,
		Table:           t.Customer.Table,
	}
}

// TabItemAddedEvent is published when an item is added to a tab
type TabItemAddedEvent struct {
	shared.BaseDomainEvent
	TabID      uuid.UUID       `json:"tab_id"`
	ItemID     uuid.UUID       `json:"item_id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
	TabTotal   decimal.Decimal `json:"tab_total"`
}

// NewTabItemAddedEvent creates a new TabItemAddedEvent
func NewTabItemAddedEvent(t *Tab, item *TabItem) *TabItemAddedEvent {
	return &TabItemAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTabItemAdded, AggregateTypeTab, t.ID),
		TabID:           t.ID,
		ItemID:          item.ID,
		ProductID:       item.ProductID,
		Quantity:        item.Quantity,
		TotalPrice:      item.TotalPrice,
		TabTotal:        t.Total,
	}
}

// TabItemRemovedEvent is published when an item is removed from a tab
type TabItemRemovedEvent struct {
	shared.BaseDomainEvent
	TabID      uuid.UUID       `json:"tab_id"`
	ItemID     uuid.UUID       `json:"item_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	TabTotal   decimal.Decimal `json:"tab_total"`
}

// NewTabItemRemovedEvent creates a new TabItemRemovedEvent
func NewTabItemRemovedEvent(t *Tab, item *TabItem) *TabItemRemovedEvent {
	return &TabItemRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTabItemRemoved, AggregateTypeTab, t.ID),
		TabID:           t.ID,
		ItemID:          item.ID,
		TotalPrice:      item.TotalPrice,
		TabTotal:        t.Total,
	}
}

// TabItemQuantityChangedEvent is published when an item quantity changes
type TabItemQuantityChangedEvent struct {
	shared.BaseDomainEvent
	TabID       uuid.UUID       `json:"tab_id"`
	ItemID      uuid.UUID       `json:"item_id"`
	OldQuantity int             `json:"old_quantity"`
	NewQuantity int             `json:"new_quantity"`
	TabTotal    decimal.Decimal `json:"tab_total"`
}

// NewTabItemQuantityChangedEvent creates a new TabItemQuantityChangedEvent
func NewTabItemQuantityChangedEvent(t *Tab, item *TabItem, oldQuantity int) *TabItemQuantityChangedEvent {
	return &TabItemQuantityChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTabItemQuantityChanged, AggregateTypeTab, t.ID),
		TabID:           t.ID,
		ItemID:          item.ID,
		OldQuantity:     oldQuantity,
		NewQuantity:     item.Quantity,
		TabTotal:        t.Total,
	}
}

// TabClosedEvent is published when a tab is settled
type TabClosedEvent struct {
	shared.BaseDomainEvent
	TabID         uuid.UUID       `json:"tab_id"`
	Number        int64           `json:"number"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	Change        decimal.Decimal `json:"change"`
	OpenedAt      time.Time       `json:"opened_at"`
	ClosedAt      time.Time       `json:"closed_at"`
}

// NewTabClosedEvent creates a new TabClosedEvent
func NewTabClosedEvent(t *Tab) *TabClosedEvent {
	return &TabClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTabClosed, AggregateTypeTab, t.ID),
		TabID:           t.ID,
		Number:          t.Number,
		Total:           t.Total,
		PaymentMethod:   *t.PaymentMethod,
		AmountPaid:      *t.AmountPaid,
		Change:          *t.Change,
		OpenedAt:        t.CreatedAt,
		ClosedAt:        *t.ClosedAt,
	}
}
