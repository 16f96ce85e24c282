package comanda

import (
	"context"

	"github.com/comanda/backend/internal/domain/tab"
	"github.com/comanda/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AddItemInput holds the fields of a new tab item
type AddItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	Notes     string
}

// CreateTab opens a tab for a customer and puts it first in the mirror
func (s *Store) CreateTab(ctx context.Context, customer tab.Customer) (_ *tab.Tab, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tab", "create")
	defer telemetry.EndSpan(span, &err)

	t, err := tab.NewTab(customer)
	if err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.tabRepo.Create(ctx, t); err != nil {
		return nil, s.remoteFailure("create tab", err)
	}

	events := t.PullDomainEvents()
	s.putTab(t)
	s.publish(ctx, t.ID, events)

	s.logger.Info("Tab opened",
		zap.String("tab_id", t.ID.String()),
		zap.Int64("number", t.Number),
	)

	return t.Clone(), nil
}

// AddItemToTab snapshots the product name and price into a new item at the end of the tab
func (s *Store) AddItemToTab(ctx context.Context, tabID uuid.UUID, input AddItemInput) (_ *tab.Tab, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tab", "add_item",
		telemetry.SpanAttrTabID.String(tabID.String()),
		telemetry.SpanAttrProductID.String(input.ProductID.String()),
		telemetry.SpanAttrQuantity.Int(input.Quantity),
	)
	defer telemetry.EndSpan(span, &err)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	working := s.tabCopy(tabID)
	if working == nil {
		return nil, ErrTabNotFound
	}
	product := s.productCopy(input.ProductID)
	if product == nil {
		return nil, ErrProductNotFound
	}
	if !product.IsSellable() {
		return nil, ErrProductNotOnSale
	}

	item, err := working.AddItem(product.ID, product.Name, product.Price, input.Quantity, input.Notes)
	if err != nil {
		return nil, err
	}

	if err := s.tabRepo.AddItem(ctx, working, item); err != nil {
		return nil, s.failTabWrite(ctx, "add item", tabID, err)
	}

	events := working.PullDomainEvents()
	s.putTab(working)
	s.publish(ctx, working.ID, events)

	return working.Clone(), nil
}

// RemoveItemFromTab deletes an item and lowers the total by its price.
// An unknown tab or item is ignored: the result is the current tab, or nil when the tab is unknown.
func (s *Store) RemoveItemFromTab(ctx context.Context, tabID, itemID uuid.UUID) (_ *tab.Tab, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tab", "remove_item",
		telemetry.SpanAttrTabID.String(tabID.String()),
		telemetry.SpanAttrItemID.String(itemID.String()),
	)
	defer telemetry.EndSpan(span, &err)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	working := s.tabCopy(tabID)
	if working == nil {
		return nil, nil
	}
	if working.GetItem(itemID) == nil {
		return working, nil
	}

	if _, err := working.RemoveItem(itemID); err != nil {
		return nil, err
	}

	if err := s.tabRepo.RemoveItem(ctx, working, itemID); err != nil {
		return nil, s.failTabWrite(ctx, "remove item", tabID, err)
	}

	events := working.PullDomainEvents()
	s.putTab(working)
	s.publish(ctx, working.ID, events)

	return working.Clone(), nil
}

// UpdateItemQuantity sets a new quantity on an item and moves the total by the difference.
// Quantities below one are refused before anything else. An unknown tab or item is ignored,
// as is a quantity equal to the current one.
func (s *Store) UpdateItemQuantity(ctx context.Context, tabID, itemID uuid.UUID, quantity int) (_ *tab.Tab, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tab", "update_item_quantity",
		telemetry.SpanAttrTabID.String(tabID.String()),
		telemetry.SpanAttrItemID.String(itemID.String()),
		telemetry.SpanAttrQuantity.Int(quantity),
	)
	defer telemetry.EndSpan(span, &err)

	if quantity < 1 {
		return nil, tab.ErrInvalidQuantity
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	working := s.tabCopy(tabID)
	if working == nil {
		return nil, nil
	}
	if working.GetItem(itemID) == nil {
		return working, nil
	}

	item, changed, err := working.UpdateItemQuantity(itemID, quantity)
	if err != nil {
		return nil, err
	}
	if !changed {
		return working, nil
	}

	if err := s.tabRepo.UpdateItem(ctx, working, item); err != nil {
		return nil, s.failTabWrite(ctx, "update item quantity", tabID, err)
	}

	events := working.PullDomainEvents()
	s.putTab(working)
	s.publish(ctx, working.ID, events)

	return working.Clone(), nil
}

// CloseTab settles the tab with the given payment. The change may be negative.
func (s *Store) CloseTab(ctx context.Context, tabID uuid.UUID, method tab.PaymentMethod, amountPaid decimal.Decimal) (_ *tab.Tab, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tab", "close",
		telemetry.SpanAttrTabID.String(tabID.String()),
		telemetry.SpanAttrPayment.String(method.String()),
		telemetry.SpanAttrAmount.String(amountPaid.String()),
	)
	defer telemetry.EndSpan(span, &err)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	working := s.tabCopy(tabID)
	if working == nil {
		return nil, ErrTabNotFound
	}

	if err := working.Close(method, amountPaid, s.now()); err != nil {
		return nil, err
	}

	if err := s.tabRepo.Close(ctx, working); err != nil {
		return nil, s.failTabWrite(ctx, "close tab", tabID, err)
	}

	events := working.PullDomainEvents()
	s.putTab(working)
	s.publish(ctx, working.ID, events)

	s.logger.Info("Tab closed",
		zap.String("tab_id", working.ID.String()),
		zap.Int64("number", working.Number),
		zap.String("total", working.Total.String()),
		zap.String("payment_method", method.String()),
	)

	return working.Clone(), nil
}

// ==================== queries ====================

// GetTab returns a copy of one tab
func (s *Store) GetTab(id uuid.UUID) (*tab.Tab, error) {
	t := s.tabCopy(id)
	if t == nil {
		return nil, ErrTabNotFound
	}
	return t, nil
}

// ListTabs returns copies of every tab, newest first
func (s *Store) ListTabs() []*tab.Tab {
	return s.filterTabs(func(*tab.Tab) bool { return true })
}

// GetOpenTabs returns copies of the open tabs, newest first
func (s *Store) GetOpenTabs() []*tab.Tab {
	return s.filterTabs((*tab.Tab).IsOpen)
}

// GetClosedTabs returns copies of the closed tabs, newest first
func (s *Store) GetClosedTabs() []*tab.Tab {
	return s.filterTabs((*tab.Tab).IsClosed)
}

func (s *Store) filterTabs(keep func(*tab.Tab) bool) []*tab.Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*tab.Tab, 0, len(s.tabs))
	for _, t := range s.tabs {
		if keep(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}
