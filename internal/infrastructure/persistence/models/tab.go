package models

import (
	"time"

	"github.com/comanda/backend/internal/domain/tab"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TabModel is the persistence model for the Tab aggregate root.
// Number is assigned by the database sequence and never written by the application.
type TabModel struct {
	AggregateModel
	Number           int64            `gorm:"->;uniqueIndex"`
	CustomerName     string           `gorm:"type:varchar(120);not null"`
	CustomerIdentity string           `gorm:"type:varchar(60);not null;default:''"`
	TableRef         string           `gorm:"column:table_ref;type:varchar(60);not null;default:''"`
	Status           tab.Status       `gorm:"type:varchar(10);not null;default:'open';index"`
	Total            decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	ClosedAt         *time.Time       `gorm:"index"`
	PaymentMethod    *string          `gorm:"type:varchar(10)"`
	AmountPaid       *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Change           *decimal.Decimal `gorm:"column:change_due;type:decimal(12,2)"`
	Items            []TabItemModel   `gorm:"foreignKey:TabID;references:ID"`
}

// TableName returns the table name for GORM
func (TabModel) TableName() string {
	return "tabs"
}

// ToDomain converts the persistence model to a domain Tab.
// Items keep the order they were loaded in.
func (m *TabModel) ToDomain() *tab.Tab {
	t := &tab.Tab{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Number:            m.Number,
		Customer: tab.Customer{
			Name:     m.CustomerName,
			Identity: m.CustomerIdentity,
			Table:    m.TableRef,
		},
		Items:      make([]tab.TabItem, len(m.Items)),
		Status:     m.Status,
		Total:      m.Total,
		ClosedAt:   m.ClosedAt,
		AmountPaid: m.AmountPaid,
		Change:     m.Change,
	}
	if m.PaymentMethod != nil {
		pm := tab.PaymentMethod(*m.PaymentMethod)
		t.PaymentMethod = &pm
	}
	for i := range m.Items {
		t.Items[i] = *m.Items[i].ToDomain()
	}
	return t
}

// FromDomain populates the persistence model from a domain Tab, items excluded.
func (m *TabModel) FromDomain(t *tab.Tab) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Number = t.Number
	m.CustomerName = t.Customer.Name
	m.CustomerIdentity = t.Customer.Identity
	m.TableRef = t.Customer.Table
	m.Status = t.Status
	m.Total = t.Total
	m.ClosedAt = t.ClosedAt
	m.AmountPaid = t.AmountPaid
	m.Change = t.Change
	m.PaymentMethod = nil
	if t.PaymentMethod != nil {
		pm := t.PaymentMethod.String()
		m.PaymentMethod = &pm
	}
}

// TabModelFromDomain creates a new persistence model from a domain Tab.
func TabModelFromDomain(t *tab.Tab) *TabModel {
	m := &TabModel{}
	m.FromDomain(t)
	return m
}

// TabItemModel is the persistence model for a line on a tab.
type TabItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TabID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Notes       string          `gorm:"type:varchar(500);not null;default:''"`
	AddedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TabItemModel) TableName() string {
	return "tab_items"
}

// ToDomain converts the persistence model to a domain TabItem.
func (m *TabItemModel) ToDomain() *tab.TabItem {
	return &tab.TabItem{
		ID:          m.ID,
		TabID:       m.TabID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		TotalPrice:  m.TotalPrice,
		Notes:       m.Notes,
		AddedAt:     m.AddedAt,
	}
}

// TabItemModelFromDomain creates a new persistence model from a domain TabItem.
func TabItemModelFromDomain(i *tab.TabItem) *TabItemModel {
	return &TabItemModel{
		ID:          i.ID,
		TabID:       i.TabID,
		ProductID:   i.ProductID,
		ProductName: i.ProductName,
		Quantity:    i.Quantity,
		UnitPrice:   i.UnitPrice,
		TotalPrice:  i.TotalPrice,
		Notes:       i.Notes,
		AddedAt:     i.AddedAt,
	}
}
