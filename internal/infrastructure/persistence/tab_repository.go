package persistence

import (
	"context"
	"errors"

	"github.com/comanda/backend/internal/domain/shared"
	"github.com/comanda/backend/internal/domain/tab"
	"github.com/comanda/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTabRepository implements TabRepository using GORM.
// Item writes and the tab total change in the same transaction, guarded by the tab version.
type GormTabRepository struct {
	db *gorm.DB
}

// NewGormTabRepository creates a new GormTabRepository
func NewGormTabRepository(db *gorm.DB) *GormTabRepository {
	return &GormTabRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("added_at ASC, id ASC")
}

// FindAll returns every tab, newest first
func (r *GormTabRepository) FindAll(ctx context.Context) ([]*tab.Tab, error) {
	var tabModels []models.TabModel
	if err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		Order("created_at DESC, number DESC").
		Find(&tabModels).Error; err != nil {
		return nil, err
	}
	tabs := make([]*tab.Tab, len(tabModels))
	for i := range tabModels {
		tabs[i] = tabModels[i].ToDomain()
	}
	return tabs, nil
}

// FindByID finds a tab with its items
func (r *GormTabRepository) FindByID(ctx context.Context, id uuid.UUID) (*tab.Tab, error) {
	var model models.TabModel
	if err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts the tab and reads back the number the database assigned
func (r *GormTabRepository) Create(ctx context.Context, t *tab.Tab) error {
	model := models.TabModelFromDomain(t)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(model).Error; err != nil {
			return err
		}
		var assigned models.TabModel
		if err := tx.Select("number", "created_at").Where("id = ?", t.ID).Take(&assigned).Error; err != nil {
			return err
		}
		t.Number = assigned.Number
		t.CreatedAt = assigned.CreatedAt
		return nil
	})
}

// AddItem inserts the item and writes the new total
func (r *GormTabRepository) AddItem(ctx context.Context, t *tab.Tab, item *tab.TabItem) error {
	return r.writeTab(ctx, t, nil, func(tx *gorm.DB) error {
		return tx.Create(models.TabItemModelFromDomain(item)).Error
	})
}

// UpdateItem writes the item quantity and line total together with the tab total
func (r *GormTabRepository) UpdateItem(ctx context.Context, t *tab.Tab, item *tab.TabItem) error {
	return r.writeTab(ctx, t, nil, func(tx *gorm.DB) error {
		result := tx.Model(&models.TabItemModel{}).
			Where("id = ? AND tab_id = ?", item.ID, t.ID).
			Updates(map[string]any{
				"quantity":    item.Quantity,
				"total_price": item.TotalPrice,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// RemoveItem deletes the item and writes the new total
func (r *GormTabRepository) RemoveItem(ctx context.Context, t *tab.Tab, itemID uuid.UUID) error {
	return r.writeTab(ctx, t, nil, func(tx *gorm.DB) error {
		result := tx.Delete(&models.TabItemModel{}, "id = ? AND tab_id = ?", itemID, t.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Close writes the status and settlement fields
func (r *GormTabRepository) Close(ctx context.Context, t *tab.Tab) error {
	model := models.TabModelFromDomain(t)
	return r.writeTab(ctx, t, map[string]any{
		"status":         model.Status,
		"closed_at":      model.ClosedAt,
		"payment_method": model.PaymentMethod,
		"amount_paid":    model.AmountPaid,
		"change_due":     model.Change,
	}, nil)
}

// writeTab bumps the tab row from t.Version and runs the item write in the same transaction.
// t.Version is advanced only after commit.
func (r *GormTabRepository) writeTab(ctx context.Context, t *tab.Tab, extra map[string]any, itemWrite func(tx *gorm.DB) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"total":      t.Total,
			"version":    t.Version + 1,
			"updated_at": t.UpdatedAt,
		}
		for k, v := range extra {
			updates[k] = v
		}

		result := tx.Model(&models.TabModel{}).
			Where("id = ? AND version = ?", t.ID, t.Version).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return missingOrStaleTab(tx, t.ID)
		}

		if itemWrite != nil {
			return itemWrite(tx)
		}
		return nil
	})
	if err != nil {
		return err
	}
	t.Version++
	return nil
}

func missingOrStaleTab(tx *gorm.DB, id uuid.UUID) error {
	var count int64
	if err := tx.Model(&models.TabModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return shared.ErrConcurrencyConflict
}

// Ensure GormTabRepository implements TabRepository
var _ tab.TabRepository = (*GormTabRepository)(nil)
