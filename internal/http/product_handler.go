package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mariapr27/my-store-app/internal/domain"
	"github.com/mariapr27/my-store-app/internal/repository"
)

type ProductsAPI interface {
	GetAllProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, input repository.CreateProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, input repository.UpdateProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type ProductHandler struct {
	products ProductsAPI
	timeout  time.Duration
}

func NewProductHandler(products ProductsAPI, timeout time.Duration) *ProductHandler {
	return &ProductHandler{products: products, timeout: timeout}
}

type createProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Stock       int      `json:"stock"`
	ImageURL    string   `json:"image_url"`
	Category    string   `json:"category"`
	SaleType    string   `json:"sale_type"`
}

type updateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	ImageURL    *string  `json:"image_url"`
	Category    *string  `json:"category"`
	SaleType    *string  `json:"sale_type"`
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.products.GetAllProducts(ctx)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if products == nil {
		products = []*domain.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, err := h.products.GetProduct(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Price == nil {
		respondError(w, http.StatusBadRequest, "price is required")
		return
	}
	if *req.Price < 0 {
		respondError(w, http.StatusBadRequest, "price must not be negative")
		return
	}
	if req.Stock < 0 {
		respondError(w, http.StatusBadRequest, "stock must not be negative")
		return
	}

	category := domain.ProductCategory(req.Category)
	if req.Category != "" && !category.Valid() {
		respondError(w, http.StatusBadRequest, "invalid category")
		return
	}

	saleType := domain.SaleType(req.SaleType)
	if req.SaleType == "" {
		saleType = domain.SaleTypeRetail
	} else if !saleType.Valid() {
		respondError(w, http.StatusBadRequest, "invalid sale_type")
		return
	}

	product, err := h.products.CreateProduct(ctx, repository.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		Category:    category,
		SaleType:    saleType,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	input := repository.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	}

	if req.Price != nil && *req.Price < 0 {
		respondError(w, http.StatusBadRequest, "price must not be negative")
		return
	}
	if req.Stock != nil && *req.Stock < 0 {
		respondError(w, http.StatusBadRequest, "stock must not be negative")
		return
	}
	if req.Category != nil {
		category := domain.ProductCategory(*req.Category)
		if !category.Valid() {
			respondError(w, http.StatusBadRequest, "invalid category")
			return
		}
		input.Category = &category
	}
	if req.SaleType != nil {
		saleType := domain.SaleType(*req.SaleType)
		if !saleType.Valid() {
			respondError(w, http.StatusBadRequest, "invalid sale_type")
			return
		}
		input.SaleType = &saleType
	}

	product, err := h.products.UpdateProduct(ctx, chi.URLParam(r, "id"), input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.products.DeleteProduct(ctx, chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}
