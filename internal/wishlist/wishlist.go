// Package wishlist keeps the session's saved products under the durable
// storage "wishlist" key, with the same corruption policy as the cart:
// undecodable data starts empty and never fails the session.
package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/nairamart/storefront/internal/catalog"
	pkgerrors "github.com/nairamart/storefront/pkg/errors"
	"github.com/nairamart/storefront/pkg/logger"
	"github.com/nairamart/storefront/pkg/storage"
)

// Entry is one saved product.
type Entry struct {
	ProductID  string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	ImageURL   string          `json:"image_url"`
	VendorName string          `json:"vendor_name"`
}

// Service owns the wishlist for the active session.
type Service struct {
	mu      sync.RWMutex
	entries []Entry
	store   storage.Store
	logg    *logger.Logger
}

// NewService loads the persisted wishlist, starting empty when the stored
// payload is absent or corrupt.
func NewService(ctx context.Context, store storage.Store, logg *logger.Logger) (*Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "storage is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}

	s := &Service{store: store, logg: logg}
	s.entries = s.load(ctx)
	return s, nil
}

func (s *Service) load(ctx context.Context) []Entry {
	raw, err := s.store.Read(ctx, storage.KeyWishlist)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "wishlist unreadable, starting empty")
		}
		return nil
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		corrupt := pkgerrors.Wrap(pkgerrors.CodePersistenceCorrupt, err, "decode wishlist")
		s.logg.Warn(s.logg.WithField(ctx, "error", corrupt.Error()), "wishlist corrupt, starting empty")
		return nil
	}
	return entries
}

// Add saves the product. Adding a product that is already saved is a no-op.
func (s *Service) Add(ctx context.Context, rec catalog.ProductRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.indexOf(rec.ID) >= 0 {
		s.mu.Unlock()
		return nil
	}
	next := append(s.cloneEntries(), Entry{
		ProductID:  rec.ID,
		Name:       rec.Name,
		Price:      rec.Price,
		ImageURL:   rec.ImageURL,
		VendorName: rec.VendorName,
	})
	return s.commit(ctx, next)
}

// Remove drops the product if saved; unknown ids are a no-op.
func (s *Service) Remove(ctx context.Context, productID string) error {
	s.mu.Lock()
	idx := s.indexOf(productID)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	next := s.cloneEntries()
	next = append(next[:idx], next[idx+1:]...)
	return s.commit(ctx, next)
}

// Toggle adds the product when absent and removes it when present,
// reporting whether it is saved afterwards.
func (s *Service) Toggle(ctx context.Context, rec catalog.ProductRecord) (bool, error) {
	if s.Contains(rec.ID) {
		return false, s.Remove(ctx, rec.ID)
	}
	return true, s.Add(ctx, rec)
}

// Contains reports whether the product is saved.
func (s *Service) Contains(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(productID) >= 0
}

// List returns a copy of the saved entries in insertion order.
func (s *Service) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cloneEntries()
}

// Clear removes every saved product.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	return s.commit(ctx, nil)
}

// commit persists the candidate entries and installs them on success.
// Called with the write lock held; releases it.
func (s *Service) commit(ctx context.Context, next []Entry) error {
	if next == nil {
		next = []Entry{}
	}
	raw, err := json.Marshal(next)
	if err != nil {
		s.mu.Unlock()
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode wishlist")
	}
	if err := s.store.Write(ctx, storage.KeyWishlist, raw); err != nil {
		s.mu.Unlock()
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist wishlist")
	}
	s.entries = next
	s.mu.Unlock()
	return nil
}

func (s *Service) indexOf(productID string) int {
	for i, entry := range s.entries {
		if entry.ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Service) cloneEntries() []Entry {
	if len(s.entries) == 0 {
		return nil
	}
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
