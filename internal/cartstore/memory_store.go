package cartstore

import (
	"context"
	"sync"
	"time"

	"github.com/mariapr27/my-store-app/internal/domain"
)

// MemoryStore keeps guest carts in process memory. Guests have no
// account to attach a remote cart to; their cart lives only as long as
// the server (or until merged into a user cart after login).
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart // identity -> cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts: make(map[string]*domain.Cart),
	}
}

func (s *MemoryStore) Get(_ context.Context, identity string) (*domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, exists := s.carts[identity]
	if !exists {
		return nil, ErrCartNotFound
	}
	return copyCart(cart), nil
}

func (s *MemoryStore) Put(_ context.Context, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	existing, exists := s.carts[cart.Identity]

	if cart.Version == 0 {
		if exists {
			return ErrVersionConflict
		}
		cart.Version = 1
		cart.CreatedAt = now
		cart.UpdatedAt = now
		s.carts[cart.Identity] = copyCart(cart)
		return nil
	}

	if !exists || existing.Version != cart.Version {
		return ErrVersionConflict
	}

	cart.Version++
	cart.UpdatedAt = now
	s.carts[cart.Identity] = copyCart(cart)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.carts[identity]; !exists {
		return ErrCartNotFound
	}
	delete(s.carts, identity)
	return nil
}

// copyCart guards against callers mutating shared state through the
// returned pointer.
func copyCart(cart *domain.Cart) *domain.Cart {
	c := *cart
	c.Items = make([]domain.CartItem, len(cart.Items))
	copy(c.Items, cart.Items)
	return &c
}
