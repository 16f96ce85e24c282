package comanda

import (
	"time"

	"github.com/comanda/backend/internal/domain/catalog"
	"github.com/comanda/backend/internal/domain/tab"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	Available    bool            `json:"available"`
	Discontinued bool            `json:"discontinued"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

// TabItemResponse represents one tab line in API responses
type TabItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Notes       string          `json:"notes,omitempty"`
	AddedAt     time.Time       `json:"added_at"`
}

// TabResponse represents a tab in API responses
type TabResponse struct {
	ID               uuid.UUID         `json:"id"`
	Number           int64             `json:"number"`
	CustomerName     string            `json:"customer_name"`
	CustomerIdentity string            `json:"customer_identity,omitempty"`
	Table            string            `json:"table,omitempty"`
	Status           string            `json:"status"`
	Items            []TabItemResponse `json:"items"`
	ItemCount        int               `json:"item_count"`
	Total            decimal.Decimal   `json:"total"`
	PaymentMethod    *string           `json:"payment_method,omitempty"`
	AmountPaid       *decimal.Decimal  `json:"amount_paid,omitempty"`
	Change           *decimal.Decimal  `json:"change,omitempty"`
	ClosedAt         *time.Time        `json:"closed_at,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	Version          int               `json:"version"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Price:        p.Price,
		Category:     p.Category.String(),
		Description:  p.Description,
		Available:    p.Available,
		Discontinued: p.Discontinued,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Version:      p.Version,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []*catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = ToProductResponse(p)
	}
	return out
}

// ToTabResponse converts a domain Tab to TabResponse
func ToTabResponse(t *tab.Tab) TabResponse {
	items := make([]TabItemResponse, len(t.Items))
	for i, item := range t.Items {
		items[i] = TabItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
			Notes:       item.Notes,
			AddedAt:     item.AddedAt,
		}
	}

	resp := TabResponse{
		ID:               t.ID,
		Number:           t.Number,
		CustomerName:     t.Customer.Name,
		CustomerIdentity: t.Customer.Identity,
		Table:            t.Customer.Table,
		Status:           t.Status.String(),
		Items:            items,
		ItemCount:        t.ItemCount(),
		Total:            t.Total,
		AmountPaid:       t.AmountPaid,
		Change:           t.Change,
		ClosedAt:         t.ClosedAt,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
		Version:          t.Version,
	}
	if t.PaymentMethod != nil {
		method := t.PaymentMethod.String()
		resp.PaymentMethod = &method
	}
	return resp
}

// ToTabResponses converts a slice of tabs
func ToTabResponses(tabs []*tab.Tab) []TabResponse {
	out := make([]TabResponse, len(tabs))
	for i, t := range tabs {
		out[i] = ToTabResponse(t)
	}
	return out
}
