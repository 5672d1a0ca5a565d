package cartstore

import (
	"context"
	"errors"

	"github.com/mariapr27/my-store-app/internal/domain"
)

var (
	ErrCartNotFound = errors.New("cart not found")

	// ErrVersionConflict means the cart changed between the read and this
	// write. The caller must re-read and retry; the concurrent write wins.
	ErrVersionConflict = errors.New("cart was modified concurrently")
)

// Store persists whole cart documents, one per identity.
//
// Put is conditional: a cart read at version N is only written if the
// stored document is still at version N, and the write bumps it to N+1.
// A cart with Version 0 is treated as a first write (insert).
type Store interface {
	Get(ctx context.Context, identity string) (*domain.Cart, error)
	Put(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, identity string) error
}
