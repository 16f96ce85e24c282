package tab

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/comanda/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a tab
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	return s == StatusOpen || s == StatusClosed
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	return s == StatusOpen && target == StatusClosed
}

// PaymentMethod is how a closed tab was settled
type PaymentMethod string

const (
	PaymentPix  PaymentMethod = "pix"
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
)

// AllPaymentMethods returns every payment method in display order
func AllPaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentPix, PaymentCard, PaymentCash}
}

// IsValid checks if the payment method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentPix, PaymentCard, PaymentCash:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

const (
	maxCustomerNameLength = 120
	maxCustomerFieldLen   = 60
	maxNotesLength        = 500
	moneyScale            = 2
)

// Customer identifies who the tab belongs to
type Customer struct {
	Name     string
	Identity string
	Table    string
}

// NewCustomer trims the fields and requires a name
func NewCustomer(name, identity, table string) (Customer, error) {
	c := Customer{
		Name:     strings.TrimSpace(name),
		Identity: strings.TrimSpace(identity),
		Table:    strings.TrimSpace(table),
	}
	if c.Name == "" {
		return Customer{}, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if utf8.RuneCountInString(c.Name) > maxCustomerNameLength {
		return Customer{}, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot exceed 120 characters")
	}
	if utf8.RuneCountInString(c.Identity) > maxCustomerFieldLen || utf8.RuneCountInString(c.Table) > maxCustomerFieldLen {
		return Customer{}, shared.NewDomainError("INVALID_INPUT", "Customer identity and table cannot exceed 60 characters")
	}
	return c, nil
}

// TabItem is one line on a tab.
// ProductName and UnitPrice are copies taken when the item was added.
type TabItem struct {
	ID          uuid.UUID
	TabID       uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
	Notes       string
	AddedAt     time.Time
}

// NewTabItem creates a new tab item
func NewTabItem(tabID, productID uuid.UUID, productName string, unitPrice decimal.Decimal, quantity int, notes string) (*TabItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	notes = strings.TrimSpace(notes)
	if utf8.RuneCountInString(notes) > maxNotesLength {
		return nil, shared.NewDomainError("INVALID_NOTES", "Notes cannot exceed 500 characters")
	}

	return &TabItem{
		ID:          uuid.New(),
		TabID:       tabID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalPrice:  unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		Notes:       notes,
		AddedAt:     time.Now(),
	}, nil
}

// setQuantity changes the quantity and keeps TotalPrice in step
func (i *TabItem) setQuantity(quantity int) {
	i.Quantity = quantity
	i.TotalPrice = i.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Tab is the order aggregate: a customer session with its items and running total
type Tab struct {
	shared.BaseAggregateRoot
	Number        int64
	Customer      Customer
	Items         []TabItem
	Status        Status
	Total         decimal.Decimal
	ClosedAt      *time.Time
	PaymentMethod *PaymentMethod
	AmountPaid    *decimal.Decimal
	Change        *decimal.Decimal
}

// NewTab opens a new empty tab. Number is assigned when the tab is persisted.
func NewTab(customer Customer) (*Tab, error) {
	customer, err := NewCustomer(customer.Name, customer.Identity, customer.Table)
	if err != nil {
		return nil, err
	}

	t := &Tab{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Customer:          customer,
		Items:             make([]TabItem, 0),
		Status:            StatusOpen,
		Total:             decimal.Zero,
	}

	t.AddDomainEvent(NewTabOpenedEvent(t))

	return t, nil
}

// AddItem appends a new item at the end of the tab
func (t *Tab) AddItem(productID uuid.UUID, productName string, unitPrice decimal.Decimal, quantity int, notes string) (*TabItem, error) {
	if !t.IsOpen() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a closed tab")
	}

	item, err := NewTabItem(t.ID, productID, productName, unitPrice, quantity, notes)
	if err != nil {
		return nil, err
	}

	t.Items = append(t.Items, *item)
	t.recalculateTotal()
	t.touch()

	t.AddDomainEvent(NewTabItemAddedEvent(t, item))

	return item, nil
}

// UpdateItemQuantity sets a new quantity for an item.
// It returns false when the quantity is unchanged, in which case nothing is modified.
func (t *Tab) UpdateItemQuantity(itemID uuid.UUID, quantity int) (*TabItem, bool, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, false, err
	}
	if !t.IsOpen() {
		return nil, false, shared.NewDomainError("INVALID_STATE", "Cannot update items in a closed tab")
	}

	for idx := range t.Items {
		if t.Items[idx].ID != itemID {
			continue
		}
		item := &t.Items[idx]
		if item.Quantity == quantity {
			return item, false, nil
		}
		oldQuantity := item.Quantity
		item.setQuantity(quantity)
		t.recalculateTotal()
		t.touch()

		t.AddDomainEvent(NewTabItemQuantityChangedEvent(t, item, oldQuantity))

		return item, true, nil
	}

	return nil, false, shared.NewDomainError("ITEM_NOT_FOUND", "Tab item not found")
}

// RemoveItem removes an item and returns the removed copy
func (t *Tab) RemoveItem(itemID uuid.UUID) (*TabItem, error) {
	if !t.IsOpen() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot remove items from a closed tab")
	}

	for idx, item := range t.Items {
		if item.ID == itemID {
			removed := item
			t.Items = append(t.Items[:idx], t.Items[idx+1:]...)
			t.recalculateTotal()
			t.touch()

			t.AddDomainEvent(NewTabItemRemovedEvent(t, &removed))

			return &removed, nil
		}
	}

	return nil, shared.NewDomainError("ITEM_NOT_FOUND", "Tab item not found")
}

// Close settles the tab. Change may be negative: an underpaid tab still closes.
func (t *Tab) Close(method PaymentMethod, amountPaid decimal.Decimal, at time.Time) error {
	if !t.Status.CanTransitionTo(StatusClosed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot close tab in %s status", t.Status))
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method: "+string(method))
	}
	if amountPaid.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount paid cannot be negative")
	}

	paid := amountPaid.Round(moneyScale)
	change := paid.Sub(t.Total)
	closedAt := at

	t.Status = StatusClosed
	t.PaymentMethod = &method
	t.AmountPaid = &paid
	t.Change = &change
	t.ClosedAt = &closedAt
	t.touch()

	t.AddDomainEvent(NewTabClosedEvent(t))

	return nil
}

// recalculateTotal recomputes the total from the items
func (t *Tab) recalculateTotal() {
	total := decimal.Zero
	for _, item := range t.Items {
		total = total.Add(item.TotalPrice)
	}
	t.Total = total
}

// touch stamps the modification time; the repository bumps Version on a successful write
func (t *Tab) touch() {
	t.Touch()
}

// Validate reports the first violated consistency rule, if any
func (t *Tab) Validate() error {
	if !t.Status.IsValid() {
		return fmt.Errorf("tab %d: unknown status %q", t.Number, t.Status)
	}
	sum := decimal.Zero
	for _, item := range t.Items {
		expected := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		if !item.TotalPrice.Equal(expected) {
			return fmt.Errorf("tab %d: item %s total %s != %s x %d", t.Number, item.ID, item.TotalPrice, item.UnitPrice, item.Quantity)
		}
		sum = sum.Add(item.TotalPrice)
	}
	if !t.Total.Equal(sum) {
		return fmt.Errorf("tab %d: total %s != sum of items %s", t.Number, t.Total, sum)
	}
	settled := t.ClosedAt != nil && t.PaymentMethod != nil && t.AmountPaid != nil && t.Change != nil
	unsettled := t.ClosedAt == nil && t.PaymentMethod == nil && t.AmountPaid == nil && t.Change == nil
	if t.IsClosed() && !settled {
		return fmt.Errorf("tab %d: closed without settlement fields", t.Number)
	}
	if t.IsOpen() && !unsettled {
		return fmt.Errorf("tab %d: open with settlement fields", t.Number)
	}
	return nil
}

// IsOpen returns true if the tab accepts item changes
func (t *Tab) IsOpen() bool {
	return t.Status == StatusOpen
}

// IsClosed returns true if the tab has been settled
func (t *Tab) IsClosed() bool {
	return t.Status == StatusClosed
}

// GetItem returns the item with the given ID, or nil
func (t *Tab) GetItem(itemID uuid.UUID) *TabItem {
	for idx := range t.Items {
		if t.Items[idx].ID == itemID {
			return &t.Items[idx]
		}
	}
	return nil
}

// ItemCount returns the number of lines on the tab
func (t *Tab) ItemCount() int {
	return len(t.Items)
}

// TotalQuantity returns the sum of all item quantities
func (t *Tab) TotalQuantity() int {
	total := 0
	for _, item := range t.Items {
		total += item.Quantity
	}
	return total
}

// Clone returns a deep copy of the tab without pending events
func (t *Tab) Clone() *Tab {
	c := *t
	c.ClearDomainEvents()
	c.Items = make([]TabItem, len(t.Items))
	copy(c.Items, t.Items)
	if t.ClosedAt != nil {
		v := *t.ClosedAt
		c.ClosedAt = &v
	}
	if t.PaymentMethod != nil {
		v := *t.PaymentMethod
		c.PaymentMethod = &v
	}
	if t.AmountPaid != nil {
		v := *t.AmountPaid
		c.AmountPaid = &v
	}
	if t.Change != nil {
		v := *t.Change
		c.Change = &v
	}
	return &c
}

// ErrInvalidQuantity is returned for item quantities below one
var ErrInvalidQuantity = shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")

func validateQuantity(quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	return nil
}
