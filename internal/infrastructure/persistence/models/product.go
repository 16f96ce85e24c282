package models

import (
	"github.com/comanda/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	AggregateModel
	Name         string           `gorm:"type:varchar(200);not null;index"`
	Price        decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Category     catalog.Category `gorm:"type:varchar(20);not null;index"`
	Description  string           `gorm:"type:text;not null;default:''"`
	Available    bool             `gorm:"not null;default:true"`
	Discontinued bool             `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Price:             m.Price,
		Category:          m.Category,
		Description:       m.Description,
		Available:         m.Available,
		Discontinued:      m.Discontinued,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.Price = p.Price
	m.Category = p.Category
	m.Description = p.Description
	m.Available = p.Available
	m.Discontinued = p.Discontinued
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// productColumns maps domain field names to column names
var productColumns = map[string]string{
	"Name":         "name",
	"Price":        "price",
	"Category":     "category",
	"Description":  "description",
	"Available":    "available",
	"Discontinued": "discontinued",
}

// UpdateMap returns the column values for the named domain fields.
// Unknown field names are ignored.
func (m *ProductModel) UpdateMap(fields []string) map[string]any {
	updates := make(map[string]any, len(fields)+2)
	for _, f := range fields {
		col, ok := productColumns[f]
		if !ok {
			continue
		}
		switch col {
		case "name":
			updates[col] = m.Name
		case "price":
			updates[col] = m.Price
		case "category":
			updates[col] = m.Category
		case "description":
			updates[col] = m.Description
		case "available":
			updates[col] = m.Available
		case "discontinued":
			updates[col] = m.Discontinued
		}
	}
	return updates
}
