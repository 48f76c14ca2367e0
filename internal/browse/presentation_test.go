package browse

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addCall struct {
	id, title, image string
	price            decimal.Decimal
}

type fakeCart struct {
	calls []addCall
}

func (f *fakeCart) AddItem(_ context.Context, itemID, title string, price decimal.Decimal, imageRef string) {
	f.calls = append(f.calls, addCall{id: itemID, title: title, image: imageRef, price: price})
}

func TestSelectionLifecycle(t *testing.T) {
	var sel Selection
	_, open := sel.Selected()
	assert.False(t, open)
	assert.False(t, sel.HandleKey(KeyEscape))

	sel.Select(Listing{ID: "a", Title: "Coat"})
	item, open := sel.Selected()
	require.True(t, open)
	assert.Equal(t, "Coat", item.Title)

	assert.False(t, sel.HandleKey("enter"))
	assert.True(t, sel.HandleKey(KeyEscape))
	_, open = sel.Selected()
	assert.False(t, open)
}

func TestAddToCartForwardsFirstImage(t *testing.T) {
	cart := &fakeCart{}
	item := Listing{
		ID:     "a",
		Title:  "Coat",
		Price:  decimal.RequireFromString("80.00"),
		Images: []string{"https://cdn.test/1.png", "https://cdn.test/2.png"},
	}
	AddToCart(context.Background(), cart, item)
	AddToCart(context.Background(), cart, Listing{ID: "b", Title: "Hat", Price: decimal.NewFromInt(5)})

	require.Len(t, cart.calls, 2)
	assert.Equal(t, "https://cdn.test/1.png", cart.calls[0].image)
	assert.True(t, cart.calls[0].price.Equal(item.Price))
	assert.Equal(t, "", cart.calls[1].image)
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "Showing 12 of 40 items", Summary(12, 40))
	assert.Equal(t, "Showing 0 of 0 items", Summary(0, 0))
}
