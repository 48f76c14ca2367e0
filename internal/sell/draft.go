package sell

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/secosha/marketplace/pkg/validation"
)

// Draft is the sell form as the user is filling it in.
type Draft struct {
	Title       string   `json:"title" validate:"required,max=120"`
	Description string   `json:"description" validate:"required,max=2000"`
	Price       string   `json:"price" validate:"required,price"`
	Size        string   `json:"size" validate:"required,size"`
	Color       string   `json:"color" validate:"omitempty,color"`
	Category    string   `json:"category" validate:"required,category"`
	Condition   string   `json:"condition" validate:"required,condition"`
	Images      []string `json:"images"`
}

// Submission is a validated draft ready for the item store.
type Submission struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Size        string          `json:"size"`
	Color       string          `json:"color,omitempty"`
	Category    string          `json:"category"`
	Condition   string          `json:"condition"`
	Images      []string        `json:"images"`
}

// Validate checks the draft and returns a VALIDATION_ERROR with per-field details on failure.
func Validate(d Draft) (Submission, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Price = strings.TrimSpace(d.Price)
	d.Color = strings.TrimSpace(d.Color)

	if err := validation.Struct(&d); err != nil {
		return Submission{}, err
	}
	price, err := validation.ParsePrice(d.Price)
	if err != nil {
		return Submission{}, err
	}

	images := d.Images
	if images == nil {
		images = []string{}
	}
	return Submission{
		Title:       d.Title,
		Description: d.Description,
		Price:       price.Round(2),
		Size:        d.Size,
		Color:       d.Color,
		Category:    d.Category,
		Condition:   d.Condition,
		Images:      append([]string(nil), images...),
	}, nil
}
