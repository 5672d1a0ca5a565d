package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/mariapr27/my-store-app/internal/cache"
	"github.com/mariapr27/my-store-app/internal/cartstore"
	"github.com/mariapr27/my-store-app/internal/domain"
	"golang.org/x/sync/singleflight"
)

// ProductCatalog is the read-side of the catalog the cart validates
// stock against.
type ProductCatalog interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

// CartService owns the quantity-per-product mapping for one identity.
// Authenticated carts live in the remote document store, guest carts in
// the in-process store; both go through the same version-conditional
// write path, so a concurrent mutation surfaces ErrCartConflict instead
// of silently losing the earlier write.
//
// The stock check here is advisory (fast feedback at add time); the
// order-creation transaction holds the durable guarantee.
type CartService struct {
	catalog ProductCatalog
	users   cartstore.Store
	guests  cartstore.Store
	cache   cache.CartCache
	sfg     singleflight.Group // Prevents cache stampede
}

func NewCartService(catalog ProductCatalog, users, guests cartstore.Store, cartCache cache.CartCache) *CartService {
	return &CartService{
		catalog: catalog,
		users:   users,
		guests:  guests,
		cache:   cartCache,
	}
}

func (s *CartService) storeFor(identity domain.Identity) cartstore.Store {
	if identity.IsGuest() {
		return s.guests
	}
	return s.users
}

func (s *CartService) GetCart(ctx context.Context, identity domain.Identity) (*domain.Cart, error) {
	if identity.IsZero() {
		return nil, ErrIdentityRequired
	}
	key := identity.Key()

	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, key)
		if err == nil {
			return cart, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		cart, errGet := s.storeFor(identity).Get(ctx, key)
		if errGet != nil && errors.Is(errGet, cartstore.ErrCartNotFound) {
			// Carts are created lazily; an absent cart reads as empty.
			return &domain.Cart{
				Identity:  key,
				Items:     []domain.CartItem{},
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			errSet := s.cache.Set(context.Background(), key, cart)
			if errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddToCart adds one unit of the product, creating the line if absent.
// Fails with ErrInsufficientStock when the resulting quantity would
// exceed the product's current stock.
func (s *CartService) AddToCart(ctx context.Context, identity domain.Identity, productID string) (*domain.Cart, error) {
	if identity.IsZero() {
		return nil, ErrIdentityRequired
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	store := s.storeFor(identity)
	cart, err := s.currentCart(ctx, store, identity.Key())
	if err != nil {
		return nil, err
	}

	if idx := cart.Line(productID); idx >= 0 {
		if cart.Items[idx].Quantity+1 > product.Stock {
			return nil, ErrInsufficientStock
		}
		cart.Items[idx].Quantity++
	} else {
		if product.Stock < 1 {
			return nil, ErrInsufficientStock
		}
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    1,
			AddedAt:     time.Now(),
		})
	}

	if err := s.put(ctx, store, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateQuantity replaces a line's quantity. A quantity of zero or less
// removes the line, matching the storefront's stepper behavior.
func (s *CartService) UpdateQuantity(ctx context.Context, identity domain.Identity, productID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return s.RemoveFromCart(ctx, identity, productID)
	}
	if identity.IsZero() {
		return nil, ErrIdentityRequired
	}

	store := s.storeFor(identity)
	cart, err := s.currentCart(ctx, store, identity.Key())
	if err != nil {
		return nil, err
	}

	idx := cart.Line(productID)
	if idx < 0 {
		return nil, ErrLineNotFound
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if quantity > product.Stock {
		return nil, ErrInsufficientStock
	}

	cart.Items[idx].Quantity = quantity

	if err := s.put(ctx, store, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveFromCart drops the line if present; removing an absent line is
// a no-op, not an error.
func (s *CartService) RemoveFromCart(ctx context.Context, identity domain.Identity, productID string) (*domain.Cart, error) {
	if identity.IsZero() {
		return nil, ErrIdentityRequired
	}

	store := s.storeFor(identity)
	cart, err := s.currentCart(ctx, store, identity.Key())
	if err != nil {
		return nil, err
	}

	idx := cart.Line(productID)
	if idx < 0 {
		return cart, nil
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	if err := s.put(ctx, store, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// ClearCart empties the cart but keeps the document: a cart survives
// checkout, it just has no lines afterwards.
func (s *CartService) ClearCart(ctx context.Context, identity domain.Identity) (*domain.Cart, error) {
	if identity.IsZero() {
		return nil, ErrIdentityRequired
	}

	store := s.storeFor(identity)
	cart, err := s.currentCart(ctx, store, identity.Key())
	if err != nil {
		return nil, err
	}
	if cart.Version == 0 && len(cart.Items) == 0 {
		return cart, nil // never persisted, nothing to clear
	}

	cart.Items = []domain.CartItem{}

	if err := s.put(ctx, store, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// MergeCarts folds a guest cart into the user's cart after login,
// summing quantities per product capped at current stock, then deletes
// the guest cart.
func (s *CartService) MergeCarts(ctx context.Context, identity domain.Identity, deviceID string) (*domain.Cart, error) {
	if identity.IsGuest() {
		return nil, ErrIdentityRequired
	}

	guestKey := domain.Identity{DeviceID: deviceID}.Key()
	guestCart, err := s.guests.Get(ctx, guestKey)
	if errors.Is(err, cartstore.ErrCartNotFound) {
		return s.GetCart(ctx, identity)
	}
	if err != nil {
		return nil, err
	}

	cart, err := s.currentCart(ctx, s.users, identity.Key())
	if err != nil {
		return nil, err
	}

	for _, line := range guestCart.Items {
		product, prodErr := s.catalog.GetProduct(ctx, line.ProductID)
		if prodErr != nil {
			// Product vanished since the guest added it; drop the line.
			log.Printf("merge: skipping product %s: %v", line.ProductID, prodErr)
			continue
		}

		if idx := cart.Line(line.ProductID); idx >= 0 {
			merged := cart.Items[idx].Quantity + line.Quantity
			if merged > product.Stock {
				merged = product.Stock
			}
			if merged == 0 {
				// Stock ran out since both carts picked it up; a line
				// never holds quantity zero.
				cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
				continue
			}
			cart.Items[idx].Quantity = merged
		} else {
			quantity := line.Quantity
			if quantity > product.Stock {
				quantity = product.Stock
			}
			if quantity == 0 {
				continue
			}
			line.Quantity = quantity
			cart.Items = append(cart.Items, line)
		}
	}

	if err := s.put(ctx, s.users, cart); err != nil {
		return nil, err
	}

	if errDel := s.guests.Delete(ctx, guestKey); errDel != nil && !errors.Is(errDel, cartstore.ErrCartNotFound) {
		log.Printf("merge: failed to delete guest cart: %v", errDel)
	}
	s.invalidateCache(guestKey)

	return cart, nil
}

// currentCart reads the authoritative cart for a mutation, bypassing
// the cache so the version token is fresh.
func (s *CartService) currentCart(ctx context.Context, store cartstore.Store, key string) (*domain.Cart, error) {
	cart, err := store.Get(ctx, key)
	if errors.Is(err, cartstore.ErrCartNotFound) {
		return &domain.Cart{Identity: key, Items: []domain.CartItem{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) put(ctx context.Context, store cartstore.Store, cart *domain.Cart) error {
	if err := store.Put(ctx, cart); err != nil {
		if errors.Is(err, cartstore.ErrVersionConflict) {
			return ErrCartConflict
		}
		return err
	}
	s.invalidateCache(cart.Identity)
	return nil
}

func (s *CartService) invalidateCache(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, key); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
