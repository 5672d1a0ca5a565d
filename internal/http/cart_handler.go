package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mariapr27/my-store-app/internal/domain"
)

type CartAPI interface {
	GetCart(ctx context.Context, identity domain.Identity) (*domain.Cart, error)
	AddToCart(ctx context.Context, identity domain.Identity, productID string) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, identity domain.Identity, productID string, quantity int) (*domain.Cart, error)
	RemoveFromCart(ctx context.Context, identity domain.Identity, productID string) (*domain.Cart, error)
	ClearCart(ctx context.Context, identity domain.Identity) (*domain.Cart, error)
	MergeCarts(ctx context.Context, identity domain.Identity, deviceID string) (*domain.Cart, error)
}

type CartHandler struct {
	cart    CartAPI
	timeout time.Duration
}

func NewCartHandler(cart CartAPI, timeout time.Duration) *CartHandler {
	return &CartHandler{cart: cart, timeout: timeout}
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type mergeRequest struct {
	DeviceID string `json:"device_id"`
}

// cartResponse augments the stored cart with its read aggregates so the
// client does not recompute totals.
type cartResponse struct {
	Identity  string            `json:"identity"`
	Items     []domain.CartItem `json:"items"`
	Total     float64           `json:"total"`
	ItemCount int               `json:"item_count"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func toCartResponse(cart *domain.Cart) cartResponse {
	items := cart.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	return cartResponse{
		Identity:  cart.Identity,
		Items:     items,
		Total:     cart.Total(),
		ItemCount: cart.ItemCount(),
		UpdatedAt: cart.UpdatedAt,
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.cart.GetCart(ctx, IdentityFrom(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(cart))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "product_id is required")
		return
	}

	cart, err := h.cart.AddToCart(ctx, IdentityFrom(r.Context()), req.ProductID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCartResponse(cart))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "product_id is required")
		return
	}

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cart, err := h.cart.UpdateQuantity(ctx, IdentityFrom(r.Context()), productID, req.Quantity)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(cart))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "product_id is required")
		return
	}

	cart, err := h.cart.RemoveFromCart(ctx, IdentityFrom(r.Context()), productID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(cart))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.cart.ClearCart(ctx, IdentityFrom(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(cart))
}

func (h *CartHandler) Merge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.DeviceID == "" {
		respondError(w, http.StatusBadRequest, "device_id is required")
		return
	}

	cart, err := h.cart.MergeCarts(ctx, IdentityFrom(r.Context()), req.DeviceID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(cart))
}
