package browse

import (
	"context"

	"github.com/shopspring/decimal"
)

// KeyEscape closes the detail overlay.
const KeyEscape = "esc"

// Selection tracks which listing the detail overlay shows.
type Selection struct {
	item *Listing
}

func (s *Selection) Select(item Listing) {
	s.item = &item
}

func (s *Selection) Close() {
	s.item = nil
}

func (s *Selection) Selected() (Listing, bool) {
	if s.item == nil {
		return Listing{}, false
	}
	return *s.item, true
}

// HandleKey reports whether the key was consumed by the overlay.
func (s *Selection) HandleKey(key string) bool {
	if key == KeyEscape && s.item != nil {
		s.Close()
		return true
	}
	return false
}

// CartAdder receives add-to-cart requests from the detail overlay.
type CartAdder interface {
	AddItem(ctx context.Context, itemID, title string, price decimal.Decimal, imageRef string)
}

// AddToCart forwards the listing to the cart with its first image as the thumbnail.
func AddToCart(ctx context.Context, cart CartAdder, item Listing) {
	cart.AddItem(ctx, item.ID, item.Title, item.Price, item.PrimaryImage())
}
