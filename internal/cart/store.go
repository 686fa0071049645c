// Package cart owns the authoritative, stock-bounded set of line items for
// the active session. Every committed mutation is written through to durable
// storage before observers see the new snapshot; restart recovery reloads
// the last persisted snapshot and treats corrupt data as an empty cart.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/nairamart/storefront/internal/catalog"
	pkgerrors "github.com/nairamart/storefront/pkg/errors"
	"github.com/nairamart/storefront/pkg/logger"
	"github.com/nairamart/storefront/pkg/storage"
)

// Observer receives the committed snapshot after each successful mutation.
type Observer func(Snapshot)

// Store is the single owner of the session's line items. All UI surfaces
// (badge, drawer, checkout) share one instance; mutations serialize on the
// internal lock so each computes its successor state from the immediately
// preceding one.
type Store struct {
	mu        sync.RWMutex
	items     []LineItem
	store     storage.Store
	logg      *logger.Logger
	observers map[int]Observer
	nextObs   int
}

// NewStore builds a cart store bound to the given durable storage and loads
// the last persisted snapshot. An absent or undecodable snapshot yields an
// empty cart; corruption is logged and never fails startup.
func NewStore(ctx context.Context, store storage.Store, logg *logger.Logger) (*Store, error) {
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}

	s := &Store{
		store:     store,
		logg:      logg,
		observers: map[int]Observer{},
	}
	s.items = s.loadSnapshot(ctx)
	return s, nil
}

func (s *Store) loadSnapshot(ctx context.Context) []LineItem {
	raw, err := s.store.Read(ctx, storage.KeyCart)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart snapshot unreadable, starting empty")
		}
		return nil
	}

	var items []LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		corrupt := pkgerrors.Wrap(pkgerrors.CodePersistenceCorrupt, err, "decode cart snapshot")
		s.logg.Warn(s.logg.WithField(ctx, "error", corrupt.Error()), "cart snapshot corrupt, starting empty")
		return nil
	}

	seen := map[string]struct{}{}
	for _, item := range items {
		if _, dup := seen[item.ProductID]; dup || !item.valid() {
			corrupt := pkgerrors.New(pkgerrors.CodePersistenceCorrupt, "cart snapshot violates invariants")
			s.logg.Warn(s.logg.WithField(ctx, "product_id", item.ProductID), corrupt.Message())
			return nil
		}
		seen[item.ProductID] = struct{}{}
	}
	return items
}

// Subscribe registers an observer and returns its unsubscribe function.
// Observers run synchronously after a mutation commits, outside the lock.
func (s *Store) Subscribe(fn Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// Add inserts the product or increments its existing row. The whole
// operation fails with CodeInsufficientStock when the resulting quantity
// would exceed the record's stock ceiling; no partial increment happens.
func (s *Store) Add(ctx context.Context, rec catalog.ProductRecord, quantity int) error {
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	next := cloneItems(s.items)
	idx := indexOf(next, rec.ID)
	if idx >= 0 {
		// Compare against the remaining headroom rather than summing, so an
		// arbitrarily large request cannot wrap the sum negative and slip
		// past the ceiling.
		if quantity > next[idx].Stock-next[idx].Quantity {
			s.mu.Unlock()
			return insufficientStock(rec.ID, next[idx].Stock)
		}
		next[idx].Quantity += quantity
	} else {
		if quantity > rec.Stock {
			s.mu.Unlock()
			return insufficientStock(rec.ID, rec.Stock)
		}
		next = append(next, newLineItem(rec, quantity))
	}
	return s.commit(ctx, next)
}

// UpdateQuantity sets the row's quantity exactly. A quantity of zero or less
// removes the row; exceeding the stock ceiling fails and leaves the row
// unchanged. Targeting a product that is not in the cart is reported as not
// found so callers can surface the stale reference instead of dropping it.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, productID)
	}

	s.mu.Lock()
	next := cloneItems(s.items)
	idx := indexOf(next, productID)
	if idx < 0 {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
	}
	if quantity > next[idx].Stock {
		stock := next[idx].Stock
		s.mu.Unlock()
		return insufficientStock(productID, stock)
	}
	next[idx].Quantity = quantity
	return s.commit(ctx, next)
}

// Remove drops the row if present. Removing an unknown product is a no-op.
func (s *Store) Remove(ctx context.Context, productID string) error {
	s.mu.Lock()
	idx := indexOf(s.items, productID)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	next := cloneItems(s.items)
	next = append(next[:idx], next[idx+1:]...)
	return s.commit(ctx, next)
}

// Clear empties the cart and persists the empty snapshot. Used after a
// successful order placement and for explicit user resets.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	return s.commit(ctx, nil)
}

// commit persists the candidate item set and, on success, installs it as the
// new state and notifies observers. Called with the lock held; releases it.
func (s *Store) commit(ctx context.Context, next []LineItem) error {
	raw, err := json.Marshal(itemsOrEmpty(next))
	if err != nil {
		s.mu.Unlock()
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart snapshot")
	}
	if err := s.store.Write(ctx, storage.KeyCart, raw); err != nil {
		s.mu.Unlock()
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart snapshot")
	}

	s.items = next
	snapshot := Snapshot{Items: cloneItems(next)}
	observers := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(snapshot)
	}
	return nil
}

// Snapshot returns an immutable copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Items: cloneItems(s.items)}
}

// Total returns Σ(price × quantity), zero for an empty cart.
func (s *Store) Total() decimal.Decimal {
	return s.Snapshot().Subtotal()
}

// Count returns Σ(quantity), zero for an empty cart.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// Len returns the number of distinct line items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func insufficientStock(productID string, available int) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("only %d items available", available)).
		WithDetails(map[string]any{
			"product_id": productID,
			"available":  available,
		})
}

func indexOf(items []LineItem, productID string) int {
	for i, item := range items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func cloneItems(items []LineItem) []LineItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

func itemsOrEmpty(items []LineItem) []LineItem {
	if items == nil {
		return []LineItem{}
	}
	return items
}
