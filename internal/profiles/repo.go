package profiles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/secosha/marketplace/pkg/db/models"
)

// Repository persists user profiles keyed by user id.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a profiles repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads the profile for the user id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateIfAbsent inserts the profile unless one already exists for its id.
// It reports whether a row was inserted.
func (r *Repository) CreateIfAbsent(ctx context.Context, profile *models.UserProfile) (bool, error) {
	if profile.DeliveryTypes == nil {
		profile.DeliveryTypes = []string{}
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(profile)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Upsert writes every settings column, inserting the row when missing.
func (r *Repository) Upsert(ctx context.Context, profile *models.UserProfile) error {
	if profile.DeliveryTypes == nil {
		profile.DeliveryTypes = []string{}
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"full_name", "email", "location", "bio", "delivery_types", "updated_at"}),
		}).
		Create(profile).Error
}
