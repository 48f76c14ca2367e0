package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// UserProfile holds the public seller details keyed by the user id.
type UserProfile struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	FullName      string         `gorm:"column:full_name;not null;default:''"`
	Email         string         `gorm:"column:email;not null;default:''"`
	Location      string         `gorm:"column:location;not null;default:''"`
	Bio           string         `gorm:"column:bio;not null;default:''"`
	DeliveryTypes pq.StringArray `gorm:"column:delivery_types;type:text[];not null"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
