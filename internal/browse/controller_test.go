package browse

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secosha/marketplace/internal/listings"
	"github.com/secosha/marketplace/pkg/enums"
	"github.com/secosha/marketplace/pkg/logger"
)

func newTestController(t *testing.T) (*Controller, *recordingFetcher, *fakeClock) {
	t.Helper()
	fetcher := &recordingFetcher{fn: func(_ context.Context, q listings.Query) (Page, error) {
		return pageOf(q.Term), nil
	}}
	clock := &fakeClock{}
	c := NewController(context.Background(), NewRunner(fetcher, time.Second, logger.Nop()), 0, clock.After)
	t.Cleanup(c.Close)
	return c, fetcher, clock
}

func waitSettled(t *testing.T, c *Controller, tok Token) {
	t.Helper()
	require.Eventually(t, settled(c.runner, tok), time.Second, time.Millisecond)
}

func TestControllerDebouncesTerm(t *testing.T) {
	c, fetcher, clock := newTestController(t)

	c.SetTerm("de")
	c.SetTerm("denim")
	assert.Empty(t, fetcher.Calls())

	clock.Fire()
	require.Eventually(t, func() bool { return len(fetcher.Calls()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, "denim", fetcher.Calls()[0].Term)
	assert.Equal(t, "denim", c.Query().Term)
}

func TestControllerFiltersSubmitImmediatelyWithCommittedTerm(t *testing.T) {
	c, fetcher, clock := newTestController(t)

	c.SetTerm("coat")
	clock.Fire()
	require.Eventually(t, func() bool { return len(fetcher.Calls()) == 1 }, time.Second, time.Millisecond)

	c.SetTerm("coats")
	category := "Outerwear"
	tok := c.SetFilters(listings.FilterSet{Category: &category})
	waitSettled(t, c, tok)

	calls := fetcher.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "coat", calls[1].Term)
	require.NotNil(t, calls[1].Filters.Category)
	assert.Equal(t, "Outerwear", *calls[1].Filters.Category)
}

func TestControllerSortAndClear(t *testing.T) {
	c, fetcher, _ := newTestController(t)

	size := "M"
	minPrice := decimal.NewFromInt(10)
	waitSettled(t, c, c.SetFilters(listings.FilterSet{Size: &size, MinPrice: &minPrice}))
	waitSettled(t, c, c.SetSort(enums.SortPriceDesc))
	assert.Equal(t, 2, c.Query().Filters.ActiveCount())

	tok := c.ClearFilters()
	waitSettled(t, c, tok)

	last := fetcher.Calls()[len(fetcher.Calls())-1]
	assert.Equal(t, 0, last.Filters.ActiveCount())
	assert.Equal(t, enums.SortPriceDesc, last.Sort)
}

func TestControllerClearResetsTermAndPendingInput(t *testing.T) {
	c, fetcher, clock := newTestController(t)

	c.SetTerm("linen")
	clock.Fire()
	require.Eventually(t, func() bool { return len(fetcher.Calls()) == 1 }, time.Second, time.Millisecond)

	c.SetTerm("linen shirt")
	waitSettled(t, c, c.ClearFilters())
	assert.Equal(t, 0, clock.Armed())
	assert.Equal(t, "", c.Query().Term)
	assert.Equal(t, 0, c.Query().ActiveCount())

	calls := fetcher.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "", calls[1].Term)
}

func TestControllerSkipsUnchangedTerm(t *testing.T) {
	c, fetcher, clock := newTestController(t)

	c.SetTerm("a")
	clock.Fire()
	require.Eventually(t, func() bool { return len(fetcher.Calls()) == 1 }, time.Second, time.Millisecond)

	c.SetTerm("")
	c.SetTerm("a")
	clock.Fire()

	waitSettled(t, c, c.SetSort(enums.SortPriceAsc))
	calls := fetcher.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, enums.SortPriceAsc, calls[1].Sort)
	assert.Equal(t, "a", calls[1].Term)
}

func TestControllerSeedDoesNotSubmit(t *testing.T) {
	c, fetcher, _ := newTestController(t)

	color := "Navy"
	c.Seed(listings.Query{Term: "blazer", Filters: listings.FilterSet{Color: &color}})
	assert.Empty(t, fetcher.Calls())
	assert.Equal(t, enums.SortNewest, c.Query().Sort)

	waitSettled(t, c, c.Load())
	got := fetcher.Calls()[0]
	assert.Equal(t, "blazer", got.Term)
	require.NotNil(t, got.Filters.Color)
	assert.Equal(t, "Navy", *got.Filters.Color)
}

func TestControllerDefaultsToNewest(t *testing.T) {
	c, fetcher, _ := newTestController(t)
	waitSettled(t, c, c.Load())
	assert.Equal(t, enums.SortNewest, fetcher.Calls()[0].Sort)
}
