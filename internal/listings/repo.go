package listings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/secosha/marketplace/pkg/db/models"
)

// Repository runs browse queries against clothing_items.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a listings repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func ownerFragment(tx *gorm.DB) *gorm.DB {
	return tx.Select("id", "full_name", "location")
}

// Search returns at most Limit items matching q with the owner fragment preloaded.
func (r *Repository) Search(ctx context.Context, q Query) ([]models.ClothingItem, error) {
	var list []models.ClothingItem
	tx := Apply(r.db.WithContext(ctx).Model(&models.ClothingItem{}), q).
		Preload("Owner", ownerFragment)
	if err := tx.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Count returns the total number of listings, ignoring any query.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.ClothingItem{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// FindByID loads a single listing with its owner fragment.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ClothingItem, error) {
	var item models.ClothingItem
	if err := r.db.WithContext(ctx).
		Preload("Owner", ownerFragment).
		First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}
