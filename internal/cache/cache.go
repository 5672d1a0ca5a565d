package cache

import (
	"context"
	"errors"

	"github.com/mariapr27/my-store-app/internal/domain"
)

type CartCache interface {
	Get(ctx context.Context, identity string) (*domain.Cart, error)
	Set(ctx context.Context, identity string, cart *domain.Cart) error
	Delete(ctx context.Context, identity string) error
}

var ErrCacheMiss = errors.New("cache miss")
