package browse

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/secosha/marketplace/internal/listings"
)

// Owner is the seller fragment shown on cards.
type Owner struct {
	FullName string `json:"full_name"`
	Location string `json:"location"`
}

// Listing is one clothing item as the client renders it.
type Listing struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Size        string          `json:"size"`
	Color       string          `json:"color,omitempty"`
	Category    string          `json:"category"`
	Condition   string          `json:"condition"`
	Images      []string        `json:"images"`
	UserID      string          `json:"user_id"`
	CreatedAt   time.Time       `json:"created_at"`
	Owner       *Owner          `json:"owner,omitempty"`
}

// PrimaryImage returns the first image or "" when the listing has none.
func (l Listing) PrimaryImage() string {
	if len(l.Images) == 0 {
		return ""
	}
	return l.Images[0]
}

// Page is one search response.
type Page struct {
	Items []Listing `json:"items"`
	Total int64     `json:"total"`
}

// Fetcher runs a listing search against the remote store.
type Fetcher interface {
	Search(ctx context.Context, q listings.Query) (Page, error)
}

// Summary renders the result count line under the grid.
func Summary(shown int, total int64) string {
	return fmt.Sprintf("Showing %d of %d items", shown, total)
}
