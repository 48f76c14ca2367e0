package browse

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/secosha/marketplace/internal/listings"
	pkgerrors "github.com/secosha/marketplace/pkg/errors"
	"github.com/secosha/marketplace/pkg/logger"
)

// DefaultTimeout bounds one client-side search.
const DefaultTimeout = 8 * time.Second

// Token identifies one submitted search. Later submissions get larger tokens.
type Token uint64

// State is the latest applied search outcome.
type State struct {
	Token   Token
	Query   listings.Query
	Loading bool
	Items   []Listing
	Total   int64
	Err     error
}

// Runner keeps at most one search in flight and applies results in submission order.
type Runner struct {
	fetcher Fetcher
	timeout time.Duration
	logg    *logger.Logger

	mu        sync.Mutex
	state     State
	cancel    context.CancelFunc
	closed    bool
	listeners map[int]func(State)
	nextID    int

	wg sync.WaitGroup
}

// NewRunner builds a runner; timeout <= 0 uses DefaultTimeout.
func NewRunner(fetcher Fetcher, timeout time.Duration, logg *logger.Logger) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{
		fetcher:   fetcher,
		timeout:   timeout,
		logg:      logg,
		listeners: map[int]func(State){},
	}
}

// Submit supersedes any outstanding search and starts q.
func (r *Runner) Submit(ctx context.Context, q listings.Query) Token {
	r.mu.Lock()
	if r.closed {
		tok := r.state.Token
		r.mu.Unlock()
		return tok
	}
	if r.cancel != nil {
		r.cancel()
	}
	r.state.Token++
	r.state.Query = q
	r.state.Loading = true
	r.state.Err = nil
	tok := r.state.Token

	reqCtx, cancel := context.WithTimeout(ctx, r.timeout)
	r.cancel = cancel
	snapshot := r.snapshotLocked()
	r.wg.Add(1)
	r.mu.Unlock()

	r.emit(snapshot)
	go r.run(reqCtx, cancel, tok, q)
	return tok
}

type fetchResult struct {
	page Page
	err  error
}

func (r *Runner) run(ctx context.Context, cancel context.CancelFunc, tok Token, q listings.Query) {
	defer r.wg.Done()
	defer cancel()

	done := make(chan fetchResult, 1)
	go func() {
		page, err := r.fetcher.Search(ctx, q)
		done <- fetchResult{page: page, err: err}
	}()

	select {
	case res := <-done:
		if ctx.Err() != nil && res.err == nil {
			res.err = ctx.Err()
		}
		r.apply(ctx, tok, res)
	case <-ctx.Done():
		// a late response lands in the buffered channel and is dropped
		r.apply(ctx, tok, fetchResult{err: ctx.Err()})
	}
}

func (r *Runner) apply(ctx context.Context, tok Token, res fetchResult) {
	r.mu.Lock()
	if tok != r.state.Token || r.closed {
		r.mu.Unlock()
		return
	}
	r.state.Loading = false
	switch {
	case errors.Is(res.err, context.Canceled):
		r.state.Err = nil
	case res.err != nil:
		r.state.Err = classify(res.err)
	default:
		r.state.Err = nil
		r.state.Items = res.page.Items
		r.state.Total = res.page.Total
	}
	r.cancel = nil
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	if snapshot.Err != nil {
		ctx = r.logg.WithComponent(ctx, "browse")
		r.logg.Warn(r.logg.WithFields(ctx, map[string]any{
			"token": uint64(tok),
			"code":  string(pkgerrors.CodeOf(snapshot.Err)),
		}), "listing search failed")
	}
	r.emit(snapshot)
}

// classify maps transport outcomes onto the error codes the UI understands.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "search timed out")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "search failed")
}

// State returns the latest state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// OnChange registers fn for every state transition. It may be called from any goroutine.
func (r *Runner) OnChange(fn func(State)) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

// Close cancels the outstanding search and waits for it to finish.
func (r *Runner) Close() {
	r.mu.Lock()
	r.closed = true
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *Runner) snapshotLocked() State {
	s := r.state
	if s.Items != nil {
		s.Items = append([]Listing(nil), s.Items...)
	}
	return s
}

func (r *Runner) emit(s State) {
	r.mu.Lock()
	fns := make([]func(State), 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	r.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}
