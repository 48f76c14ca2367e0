package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/secosha/marketplace/pkg/enums"
)

// ClothingItem is a single listing offered for sale.
type ClothingItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Title       string          `gorm:"column:title;not null"`
	Description string          `gorm:"column:description;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Size        enums.Size      `gorm:"column:size;not null"`
	Color       *string         `gorm:"column:color"`
	Category    enums.Category  `gorm:"column:category;not null"`
	Condition   enums.Condition `gorm:"column:condition;not null"`
	Images      pq.StringArray  `gorm:"column:images;type:text[];not null"`
	UserID      uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index:clothing_items_user_id_idx"`
	Owner       *UserProfile    `gorm:"foreignKey:UserID;references:ID"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime;index:clothing_items_created_at_idx"`
}

func (i *ClothingItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Images == nil {
		i.Images = pq.StringArray{}
	}
	return nil
}
