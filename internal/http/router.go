package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires every endpoint of the storefront API.
func NewRouter(
	products *ProductHandler,
	cart *CartHandler,
	orders *OrdersHandler,
	health *HealthHandler,
	requestTimeout time.Duration,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(IdentityMiddleware)

	r.Get("/health", health.Check)

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", products.List)
			r.Post("/", products.Create)
			r.Get("/{id}", products.Get)
			r.Put("/{id}", products.Update)
			r.Delete("/{id}", products.Delete)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cart.GetCart)
			r.Delete("/", cart.ClearCart)
			r.Post("/items", cart.AddItem)
			r.Put("/items/{product_id}", cart.UpdateQuantity)
			r.Delete("/items/{product_id}", cart.RemoveItem)
			r.Post("/merge", cart.Merge)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", orders.List)
			r.Post("/", orders.Create)
			r.Get("/{id}", orders.Get)
			r.Put("/{id}/status", orders.UpdateStatus)
		})
	})

	return r
}
