package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secosha/marketplace/internal/localstore"
	"github.com/secosha/marketplace/pkg/logger"
)

type memStorage struct {
	data    map[string][]byte
	getErr  error
	setErr  error
	setHits int
}

func newMemStorage() *memStorage {
	return &memStorage{data: map[string][]byte{}}
}

func (m *memStorage) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, localstore.ErrNotFound
	}
	return v, nil
}

func (m *memStorage) Set(_ context.Context, key string, value []byte) error {
	m.setHits++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAddItemMergesByID(t *testing.T) {
	ctx := context.Background()
	store := Open(ctx, newMemStorage(), logger.Nop())

	store.AddItem(ctx, "a", "Linen shirt", price("20.00"), "https://cdn.test/a.png")
	store.AddItem(ctx, "b", "Boots", price("55.50"), "")
	store.AddItem(ctx, "a", "Linen shirt", price("20.00"), "https://cdn.test/a.png")

	lines := store.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "a", lines[0].ItemID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 1, lines[1].Quantity)
	assert.Equal(t, 3, store.TotalCount())
	assert.True(t, store.TotalPrice().Equal(price("95.50")))
}

func TestUpdateQuantityClampsAndIgnoresMissing(t *testing.T) {
	ctx := context.Background()
	store := Open(ctx, newMemStorage(), logger.Nop())
	store.AddItem(ctx, "a", "Scarf", price("9.99"), "")

	store.UpdateQuantity(ctx, "a", 0)
	assert.Equal(t, 1, store.Lines()[0].Quantity)

	store.UpdateQuantity(ctx, "a", 4)
	assert.Equal(t, 4, store.Lines()[0].Quantity)

	store.UpdateQuantity(ctx, "missing", 3)
	assert.Len(t, store.Lines(), 1)
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	store := Open(ctx, newMemStorage(), logger.Nop())
	store.AddItem(ctx, "a", "A", price("1"), "")
	store.AddItem(ctx, "b", "B", price("2"), "")

	store.RemoveItem(ctx, "missing")
	assert.Len(t, store.Lines(), 2)

	store.RemoveItem(ctx, "a")
	require.Len(t, store.Lines(), 1)
	assert.Equal(t, "b", store.Lines()[0].ItemID)

	store.ClearCart(ctx)
	assert.Empty(t, store.Lines())
	assert.Equal(t, 0, store.TotalCount())
	assert.True(t, store.TotalPrice().IsZero())
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := newMemStorage()
	store := Open(ctx, storage, logger.Nop())
	store.AddItem(ctx, "a", "Coat", price("80.00"), "https://cdn.test/c.png")
	store.AddItem(ctx, "b", "Hat", price("12.25"), "")
	store.UpdateQuantity(ctx, "b", 3)

	reopened := Open(ctx, storage, logger.Nop())
	want, got := store.Lines(), reopened.Lines()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ItemID, got[i].ItemID)
		assert.Equal(t, want[i].Title, got[i].Title)
		assert.Equal(t, want[i].ImageRef, got[i].ImageRef)
		assert.Equal(t, want[i].Quantity, got[i].Quantity)
		assert.True(t, want[i].UnitPrice.Equal(got[i].UnitPrice))
	}

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(storage.data[StorageKey], &raw))
	assert.Equal(t, "a", raw[0]["id"])
	assert.Equal(t, "https://cdn.test/c.png", raw[0]["image"])
	assert.NotContains(t, raw[1], "image")
	assert.Equal(t, 80.0, raw[0]["price"])
	assert.Equal(t, 12.25, raw[1]["price"])
	assert.NotContains(t, string(storage.data[StorageKey]), `"price":"`)
}

func TestClearPersistsEmptyArray(t *testing.T) {
	ctx := context.Background()
	storage := newMemStorage()
	store := Open(ctx, storage, logger.Nop())
	store.AddItem(ctx, "a", "Coat", price("80.00"), "")
	store.ClearCart(ctx)
	assert.Equal(t, "[]", string(storage.data[StorageKey]))
}

func TestOpenRecoversFromCorruptPayload(t *testing.T) {
	storage := newMemStorage()
	storage.data[StorageKey] = []byte("{not json")
	store := Open(context.Background(), storage, logger.Nop())
	assert.Empty(t, store.Lines())
}

func TestOpenRecoversFromReadFailure(t *testing.T) {
	storage := newMemStorage()
	storage.getErr = errors.New("disk unplugged")
	store := Open(context.Background(), storage, logger.Nop())
	assert.Empty(t, store.Lines())
}

func TestOpenNormalizesPayload(t *testing.T) {
	storage := newMemStorage()
	storage.data[StorageKey] = []byte(`[
		{"id":"a","title":"A","price":"5","quantity":0},
		{"id":"b","title":"B","price":1.5,"quantity":2},
		{"id":"a","title":"A","price":"5","quantity":3}
	]`)
	store := Open(context.Background(), storage, logger.Nop())

	lines := store.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "a", lines[0].ItemID)
	assert.Equal(t, 4, lines[0].Quantity)
	assert.Equal(t, 2, lines[1].Quantity)
	assert.Equal(t, "1.5", lines[1].UnitPrice.String())
}

func TestPersistFailureKeepsMutation(t *testing.T) {
	ctx := context.Background()
	storage := newMemStorage()
	storage.setErr = errors.New("read-only fs")
	store := Open(ctx, storage, logger.Nop())

	store.AddItem(ctx, "a", "A", price("1"), "")
	assert.Len(t, store.Lines(), 1)
	assert.Equal(t, 1, storage.setHits)
}

func TestSubscribersSeeEveryMutation(t *testing.T) {
	ctx := context.Background()
	store := Open(ctx, newMemStorage(), logger.Nop())

	var counts []int
	unsubscribe := store.Subscribe(func(lines []Line) {
		counts = append(counts, TotalCount(lines))
	})
	store.AddItem(ctx, "a", "A", price("1"), "")
	store.AddItem(ctx, "a", "A", price("1"), "")
	unsubscribe()
	unsubscribe()
	store.ClearCart(ctx)

	assert.Equal(t, []int{1, 2}, counts)
}

func TestLinesReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := Open(ctx, newMemStorage(), logger.Nop())
	store.AddItem(ctx, "a", "A", price("1"), "")

	lines := store.Lines()
	lines[0].Quantity = 99
	assert.Equal(t, 1, store.Lines()[0].Quantity)
}
