package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mariapr27/my-store-app/internal/domain"
	"github.com/mariapr27/my-store-app/internal/service"
)

type OrdersAPI interface {
	CreateOrder(ctx context.Context, input service.CreateOrderInput) (*domain.Order, error)
	GetAll(ctx context.Context) ([]*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status string) (*domain.Order, error)
}

type OrdersHandler struct {
	orders  OrdersAPI
	timeout time.Duration
}

func NewOrdersHandler(orders OrdersAPI, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{orders: orders, timeout: timeout}
}

// createOrderRequest mirrors the storefront checkout payload.
type createOrderRequest struct {
	OrderNumber string `json:"orderNumber"`
	Customer    struct {
		FullName    string `json:"fullName"`
		Cedula      string `json:"cedula"`
		Email       string `json:"email"`
		Phone       string `json:"phone"`
		Address     string `json:"address"`
		FechaPago   string `json:"fechaPago"`
		Comprobante string `json:"comprobante"`
		BancoEmisor string `json:"bancoEmisor"`
	} `json:"customer"`
	Items []struct {
		Product struct {
			ID    string  `json:"id"`
			Name  string  `json:"name"`
			Price float64 `json:"price"`
		} `json:"product"`
		Quantity int `json:"quantity"`
	} `json:"items"`
	Total         float64 `json:"total"`
	PaymentMethod string  `json:"paymentMethod"`
}

func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	input := service.CreateOrderInput{
		OrderNumber: req.OrderNumber,
		Customer: domain.CustomerInfo{
			FullName: req.Customer.FullName,
			Cedula:   req.Customer.Cedula,
			Email:    req.Customer.Email,
			Phone:    req.Customer.Phone,
			Address:  req.Customer.Address,
		},
		PaymentDate:   req.Customer.FechaPago,
		Voucher:       req.Customer.Comprobante,
		IssuingBank:   req.Customer.BancoEmisor,
		Total:         req.Total,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
	}
	for _, item := range req.Items {
		input.Lines = append(input.Lines, service.OrderLine{
			ProductID:    item.Product.ID,
			ProductName:  item.Product.Name,
			ProductPrice: item.Product.Price,
			Quantity:     item.Quantity,
		})
	}

	order, err := h.orders.CreateOrder(ctx, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.orders.GetAll(ctx)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.orders.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	order, err := h.orders.UpdateStatus(ctx, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}
