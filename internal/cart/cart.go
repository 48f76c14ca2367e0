package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/secosha/marketplace/internal/localstore"
	pkgerrors "github.com/secosha/marketplace/pkg/errors"
	"github.com/secosha/marketplace/pkg/logger"
)

// StorageKey is the local store key holding the serialized cart.
const StorageKey = "secosha_cart_v1"

// Line is one item in the cart.
type Line struct {
	ItemID    string          `json:"id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"price"`
	ImageRef  string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
}

// MarshalJSON writes the price as a JSON number.
func (l Line) MarshalJSON() ([]byte, error) {
	type wire Line
	return json.Marshal(struct {
		wire
		UnitPrice json.Number `json:"price"`
	}{wire: wire(l), UnitPrice: json.Number(l.UnitPrice.String())})
}

// Storage is the key/value persistence the cart writes through to.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Store owns the ordered cart lines and persists every mutation.
type Store struct {
	mu      sync.Mutex
	lines   []Line
	storage Storage
	logg    *logger.Logger

	subsMu sync.Mutex
	subs   map[int]func([]Line)
	nextID int
}

// Open rehydrates the cart from storage. Any read or decode failure yields an empty cart.
func Open(ctx context.Context, storage Storage, logg *logger.Logger) *Store {
	s := &Store{
		storage: storage,
		logg:    logg,
		subs:    map[int]func([]Line){},
	}
	ctx = logg.WithComponent(ctx, "cart")
	if storage == nil {
		return s
	}

	raw, err := storage.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, localstore.ErrNotFound) {
			logg.Warn(logg.WithField(ctx, "error", pkgerrors.Wrap(pkgerrors.CodeStorageRead, err, "read cart").Error()), "cart payload unreadable, starting empty")
		}
		return s
	}

	var stored []Line
	if err := json.Unmarshal(raw, &stored); err != nil {
		logg.Warn(logg.WithField(ctx, "error", pkgerrors.Wrap(pkgerrors.CodeStorageRead, err, "decode cart").Error()), "cart payload corrupt, starting empty")
		return s
	}
	s.lines = normalize(stored)
	return s
}

// normalize merges duplicate ids and clamps quantities to at least one.
func normalize(in []Line) []Line {
	out := make([]Line, 0, len(in))
	index := make(map[string]int, len(in))
	for _, line := range in {
		if line.ItemID == "" {
			continue
		}
		if line.Quantity < 1 {
			line.Quantity = 1
		}
		if i, ok := index[line.ItemID]; ok {
			out[i].Quantity += line.Quantity
			continue
		}
		index[line.ItemID] = len(out)
		out = append(out, line)
	}
	return out
}

// AddItem increments the line for itemID or appends a new one with quantity 1.
func (s *Store) AddItem(ctx context.Context, itemID, title string, price decimal.Decimal, imageRef string) {
	s.mutate(ctx, func(lines []Line) []Line {
		for i := range lines {
			if lines[i].ItemID == itemID {
				lines[i].Quantity++
				return lines
			}
		}
		return append(lines, Line{
			ItemID:    itemID,
			Title:     title,
			UnitPrice: price,
			ImageRef:  imageRef,
			Quantity:  1,
		})
	})
}

// RemoveItem deletes the line for itemID if present.
func (s *Store) RemoveItem(ctx context.Context, itemID string) {
	s.mutate(ctx, func(lines []Line) []Line {
		for i := range lines {
			if lines[i].ItemID == itemID {
				return append(lines[:i], lines[i+1:]...)
			}
		}
		return lines
	})
}

// UpdateQuantity sets the quantity of an existing line, never below one.
func (s *Store) UpdateQuantity(ctx context.Context, itemID string, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	s.mutate(ctx, func(lines []Line) []Line {
		for i := range lines {
			if lines[i].ItemID == itemID {
				lines[i].Quantity = quantity
				break
			}
		}
		return lines
	})
}

func (s *Store) ClearCart(ctx context.Context) {
	s.mutate(ctx, func([]Line) []Line { return nil })
}

// Lines returns a copy of the cart in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyLines(s.lines)
}

func (s *Store) TotalPrice() decimal.Decimal {
	return TotalPrice(s.Lines())
}

func (s *Store) TotalCount() int {
	return TotalCount(s.Lines())
}

// Subscribe registers fn to receive the lines after every mutation.
func (s *Store) Subscribe(fn func([]Line)) (unsubscribe func()) {
	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

func (s *Store) mutate(ctx context.Context, fn func([]Line) []Line) {
	s.mu.Lock()
	s.lines = fn(s.lines)
	snapshot := copyLines(s.lines)
	s.persist(ctx, snapshot)
	s.mu.Unlock()

	s.notify(snapshot)
}

// persist writes the full collection; failures are logged and the in-memory state stands.
func (s *Store) persist(ctx context.Context, lines []Line) {
	if s.storage == nil {
		return
	}
	if lines == nil {
		lines = []Line{}
	}
	payload, err := json.Marshal(lines)
	if err == nil {
		err = s.storage.Set(ctx, StorageKey, payload)
	}
	if err != nil {
		ctx = s.logg.WithComponent(ctx, "cart")
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "failed to persist cart")
	}
}

func (s *Store) notify(lines []Line) {
	s.subsMu.Lock()
	subs := make([]func([]Line), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range subs {
		fn(copyLines(lines))
	}
}

func copyLines(lines []Line) []Line {
	if len(lines) == 0 {
		return []Line{}
	}
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}

// TotalPrice sums unit price times quantity.
func TotalPrice(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// TotalCount sums quantities.
func TotalCount(lines []Line) int {
	count := 0
	for _, line := range lines {
		count += line.Quantity
	}
	return count
}
