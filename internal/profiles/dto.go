package profiles

import (
	"time"

	"github.com/google/uuid"

	"github.com/secosha/marketplace/pkg/db/models"
)

// ProfileDTO is the public seller profile returned by the API.
type ProfileDTO struct {
	ID            uuid.UUID `json:"id"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	Location      string    `json:"location"`
	Bio           string    `json:"bio"`
	DeliveryTypes []string  `json:"delivery_types"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UpdateProfileRequest is the settings payload. Every field overwrites the stored value.
type UpdateProfileRequest struct {
	FullName      string   `json:"full_name" validate:"max=120"`
	Email         string   `json:"email" validate:"omitempty,email"`
	Location      string   `json:"location" validate:"max=120"`
	Bio           string   `json:"bio" validate:"max=1000"`
	DeliveryTypes []string `json:"delivery_types" validate:"omitempty,dive,delivery_type"`
}

// EnsureProfileRequest seeds a profile when none exists for the user.
type EnsureProfileRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	FullName string `json:"full_name" validate:"max=120"`
}

func FromModel(p *models.UserProfile) *ProfileDTO {
	if p == nil {
		return nil
	}
	delivery := append([]string{}, p.DeliveryTypes...)
	return &ProfileDTO{
		ID:            p.ID,
		FullName:      p.FullName,
		Email:         p.Email,
		Location:      p.Location,
		Bio:           p.Bio,
		DeliveryTypes: delivery,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
