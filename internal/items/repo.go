package items

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/secosha/marketplace/pkg/db/models"
)

// Repository persists clothing items.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an items repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the item.
func (r *Repository) Create(ctx context.Context, item *models.ClothingItem) error {
	return r.db.WithContext(ctx).Omit("Owner").Create(item).Error
}

// FindByID loads an item with its owner's profile fragment.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ClothingItem, error) {
	var item models.ClothingItem
	if err := r.db.WithContext(ctx).
		Preload("Owner").
		First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByOwner returns the owner's items newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.ClothingItem, error) {
	var list []models.ClothingItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Delete removes the item by id.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ClothingItem{}, "id = ?", id).Error
}
