package items

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/secosha/marketplace/pkg/db/models"
	"github.com/secosha/marketplace/pkg/enums"
)

// OwnerDTO is the denormalized seller fragment shown on listing cards.
type OwnerDTO struct {
	FullName string `json:"full_name"`
	Location string `json:"location"`
}

// ItemDTO is the read-only projection of a clothing item.
type ItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Size        enums.Size      `json:"size"`
	Color       string          `json:"color,omitempty"`
	Category    enums.Category  `json:"category"`
	Condition   enums.Condition `json:"condition"`
	Images      []string        `json:"images"`
	UserID      uuid.UUID       `json:"user_id"`
	CreatedAt   time.Time       `json:"created_at"`
	Owner       *OwnerDTO       `json:"owner,omitempty"`
}

// CreateItemRequest is the listing payload submitted by the sell flow.
type CreateItemRequest struct {
	Title       string   `json:"title" validate:"required,max=120"`
	Description string   `json:"description" validate:"required,max=2000"`
	Price       string   `json:"price" validate:"required,price"`
	Size        string   `json:"size" validate:"required,size"`
	Color       string   `json:"color" validate:"omitempty,color"`
	Category    string   `json:"category" validate:"required,category"`
	Condition   string   `json:"condition" validate:"required,condition"`
	Images      []string `json:"images" validate:"dive,required,url"`
}

// Stats summarizes the caller's listings for the account page.
type Stats struct {
	TotalItems  int             `json:"total_items"`
	TotalValue  decimal.Decimal `json:"total_value"`
	ActiveItems int             `json:"active_items"`
}

// OwnedItems is the account page payload.
type OwnedItems struct {
	Items []ItemDTO `json:"items"`
	Stats Stats     `json:"stats"`
}

// FromModel projects a stored item, including the owner fragment when preloaded.
func FromModel(m *models.ClothingItem) ItemDTO {
	dto := ItemDTO{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Price:       m.Price,
		Size:        m.Size,
		Category:    m.Category,
		Condition:   m.Condition,
		Images:      append([]string{}, m.Images...),
		UserID:      m.UserID,
		CreatedAt:   m.CreatedAt,
	}
	if m.Color != nil {
		dto.Color = *m.Color
	}
	if m.Owner != nil {
		dto.Owner = &OwnerDTO{FullName: m.Owner.FullName, Location: m.Owner.Location}
	}
	return dto
}

// FromModels projects a slice of stored items.
func FromModels(list []models.ClothingItem) []ItemDTO {
	out := make([]ItemDTO, 0, len(list))
	for i := range list {
		out = append(out, FromModel(&list[i]))
	}
	return out
}

// ComputeStats derives the account stats. Every stored listing counts as active.
func ComputeStats(list []ItemDTO) Stats {
	total := decimal.Zero
	for _, item := range list {
		total = total.Add(item.Price)
	}
	return Stats{
		TotalItems:  len(list),
		TotalValue:  total,
		ActiveItems: len(list),
	}
}
