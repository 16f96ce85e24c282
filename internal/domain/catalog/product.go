package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/comanda/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Category classifies a product on the sales screen
type Category string

const (
	CategoryDrinks      Category = "drinks"
	CategoryEssences    Category = "essences"
	CategoryAccessories Category = "accessories"
	CategoryFood        Category = "food"
	CategoryOther       Category = "other"
)

// AllCategories returns every category in display order
func AllCategories() []Category {
	return []Category{
		CategoryDrinks,
		CategoryEssences,
		CategoryAccessories,
		CategoryFood,
		CategoryOther,
	}
}

// IsValid checks if the category is one of the known values
func (c Category) IsValid() bool {
	switch c {
	case CategoryDrinks, CategoryEssences, CategoryAccessories, CategoryFood, CategoryOther:
		return true
	}
	return false
}

// String returns the string representation of Category
func (c Category) String() string {
	return string(c)
}

const (
	maxNameLength        = 200
	maxDescriptionLength = 1000
	priceScale           = 2
)

// Product is a sellable item in the catalog
type Product struct {
	shared.BaseAggregateRoot
	Name         string
	Price        decimal.Decimal
	Category     Category
	Description  string
	Available    bool
	Discontinued bool
}

// NewProduct creates a new product
func NewProduct(name string, price decimal.Decimal, category Category, description string, available bool) (*Product, error) {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	price, err := normalizePrice(price)
	if err != nil {
		return nil, err
	}
	if err := validateCategory(category); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Price:             price,
		Category:          category,
		Description:       description,
		Available:         available,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// ProductPatch carries a partial product update.
// A nil field is left untouched; a non-nil field is applied even when it holds a zero value.
type ProductPatch struct {
	Name        *string
	Price       *decimal.Decimal
	Category    *Category
	Description *string
	Available   *bool
}

// IsEmpty returns true if no field is present
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Price == nil && p.Category == nil && p.Description == nil && p.Available == nil
}

// Fields returns the names of the present fields
func (p ProductPatch) Fields() []string {
	fields := make([]string, 0, 5)
	if p.Name != nil {
		fields = append(fields, "Name")
	}
	if p.Price != nil {
		fields = append(fields, "Price")
	}
	if p.Category != nil {
		fields = append(fields, "Category")
	}
	if p.Description != nil {
		fields = append(fields, "Description")
	}
	if p.Available != nil {
		fields = append(fields, "Available")
	}
	return fields
}

// Apply validates every present field and then merges them into the product.
// Nothing is changed when any field fails validation.
func (p *Product) Apply(patch ProductPatch) error {
	if patch.IsEmpty() {
		return shared.NewDomainError("INVALID_INPUT", "At least one field must be provided")
	}

	var (
		name  string
		price decimal.Decimal
		err   error
	)
	if patch.Name != nil {
		name = strings.TrimSpace(*patch.Name)
		if err = validateProductName(name); err != nil {
			return err
		}
	}
	if patch.Price != nil {
		if price, err = normalizePrice(*patch.Price); err != nil {
			return err
		}
	}
	if patch.Category != nil {
		if err = validateCategory(*patch.Category); err != nil {
			return err
		}
	}
	if patch.Description != nil {
		if err = validateDescription(*patch.Description); err != nil {
			return err
		}
	}

	oldPrice := p.Price
	if patch.Name != nil {
		p.Name = name
	}
	if patch.Price != nil {
		p.Price = price
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Available != nil {
		p.Available = *patch.Available
	}
	p.Touch()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p, patch.Fields()))
	if patch.Price != nil && !oldPrice.Equal(p.Price) {
		p.AddDomainEvent(NewProductPriceChangedEvent(p, oldPrice))
	}

	return nil
}

// Discontinue retires the product without deleting it.
// Existing tab items keep their snapshot; the product just stops being sellable.
func (p *Product) Discontinue() error {
	if p.Discontinued {
		return shared.NewDomainError("ALREADY_DISCONTINUED", "Product is already discontinued")
	}

	p.Discontinued = true
	p.Available = false
	p.Touch()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductDiscontinuedEvent(p))

	return nil
}

// MarkDeleted records the deletion event before the product is removed
func (p *Product) MarkDeleted() {
	p.AddDomainEvent(NewProductDeletedEvent(p))
}

// IsSellable returns true if the product can be added to a tab
func (p *Product) IsSellable() bool {
	return p.Available && !p.Discontinued
}

// Clone returns a copy of the product without pending events
func (p *Product) Clone() *Product {
	c := *p
	c.ClearDomainEvents()
	return &c
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

// normalizePrice rounds to cents and rejects anything that is not strictly positive.
// A zero price is never a valid catalog price.
func normalizePrice(price decimal.Decimal) (decimal.Decimal, error) {
	rounded := price.Round(priceScale)
	if !rounded.IsPositive() {
		return decimal.Zero, shared.NewDomainError("INVALID_PRICE", "Price must be greater than zero")
	}
	return rounded, nil
}

func validateCategory(category Category) error {
	if !category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Unknown product category: "+string(category))
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 1000 characters")
	}
	return nil
}
