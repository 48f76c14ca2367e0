package browse

import (
	"context"
	"sync"
	"time"

	"github.com/secosha/marketplace/internal/listings"
	"github.com/secosha/marketplace/pkg/enums"
)

// Controller owns the browse query and routes edits to the runner.
type Controller struct {
	ctx      context.Context
	runner   *Runner
	debounce *Debouncer

	mu      sync.Mutex
	term    string
	filters listings.FilterSet
	sort    enums.SortKey
}

// NewController wires a debouncer in front of runner. ctx scopes every submitted search.
func NewController(ctx context.Context, runner *Runner, interval time.Duration, after TimerFunc) *Controller {
	c := &Controller{ctx: ctx, runner: runner, sort: enums.SortNewest}
	c.debounce = NewDebouncer(interval, after, c.commitTerm)
	return c
}

// Load submits the current query without waiting for input.
func (c *Controller) Load() Token {
	return c.runner.Submit(c.ctx, c.Query())
}

// SetTerm feeds the search box; the search runs once typing settles.
func (c *Controller) SetTerm(term string) {
	c.debounce.Input(term)
}

func (c *Controller) SetFilters(filters listings.FilterSet) Token {
	c.mu.Lock()
	c.filters = filters
	c.mu.Unlock()
	return c.Load()
}

func (c *Controller) SetSort(sort enums.SortKey) Token {
	c.mu.Lock()
	c.sort = sort
	c.mu.Unlock()
	return c.Load()
}

// ClearFilters drops the term and every filter. The sort order stays.
func (c *Controller) ClearFilters() Token {
	c.debounce.Cancel()
	c.mu.Lock()
	c.term = ""
	c.filters.Clear()
	c.mu.Unlock()
	return c.Load()
}

// Seed replaces the query without submitting it; call Load to run it.
func (c *Controller) Seed(q listings.Query) {
	c.mu.Lock()
	c.term = q.Term
	c.filters = q.Filters
	c.sort = q.SortOrDefault()
	c.mu.Unlock()
}

// Query returns the committed query.
func (c *Controller) Query() listings.Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return listings.Query{Term: c.term, Filters: c.filters, Sort: c.sort}
}

func (c *Controller) State() State {
	return c.runner.State()
}

// Close stops the debouncer and the runner.
func (c *Controller) Close() {
	c.debounce.Stop()
	c.runner.Close()
}

func (c *Controller) commitTerm(term string) {
	c.mu.Lock()
	if term == c.term {
		c.mu.Unlock()
		return
	}
	c.term = term
	c.mu.Unlock()
	c.Load()
}
