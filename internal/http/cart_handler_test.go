package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mariapr27/my-store-app/internal/domain"
	"github.com/mariapr27/my-store-app/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartAPIMock struct {
	cart *domain.Cart
	err  error

	lastProductID string
	lastQuantity  int
	lastDeviceID  string
}

func (m *cartAPIMock) GetCart(context.Context, domain.Identity) (*domain.Cart, error) {
	return m.cart, m.err
}

func (m *cartAPIMock) AddToCart(_ context.Context, _ domain.Identity, productID string) (*domain.Cart, error) {
	m.lastProductID = productID
	return m.cart, m.err
}

func (m *cartAPIMock) UpdateQuantity(_ context.Context, _ domain.Identity, productID string, quantity int) (*domain.Cart, error) {
	m.lastProductID = productID
	m.lastQuantity = quantity
	return m.cart, m.err
}

func (m *cartAPIMock) RemoveFromCart(_ context.Context, _ domain.Identity, productID string) (*domain.Cart, error) {
	m.lastProductID = productID
	return m.cart, m.err
}

func (m *cartAPIMock) ClearCart(context.Context, domain.Identity) (*domain.Cart, error) {
	return m.cart, m.err
}

func (m *cartAPIMock) MergeCarts(_ context.Context, _ domain.Identity, deviceID string) (*domain.Cart, error) {
	m.lastDeviceID = deviceID
	return m.cart, m.err
}

func testCart() *domain.Cart {
	return &domain.Cart{
		Identity: "123",
		Items: []domain.CartItem{
			{ProductID: "p1", ProductName: "Jabon", UnitPrice: 2.5, Quantity: 2},
		},
		Version: 1,
	}
}

func withUser(r *http.Request) *http.Request {
	return r.WithContext(WithIdentity(r.Context(), domain.Identity{UserID: "123"}))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestGetCart(t *testing.T) {
	mock := &cartAPIMock{cart: testCart()}
	handler := NewCartHandler(mock, 5*time.Second)

	rec := httptest.NewRecorder()
	req := withUser(httptest.NewRequest("GET", "/api/cart", nil))
	handler.GetCart(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "123", data["identity"])
	assert.InDelta(t, 5.0, data["total"], 1e-9)
	assert.InDelta(t, 2, data["item_count"], 1e-9)
}

func TestGetCart_NoIdentity(t *testing.T) {
	mock := &cartAPIMock{err: service.ErrIdentityRequired}
	handler := NewCartHandler(mock, 5*time.Second)

	rec := httptest.NewRecorder()
	handler.GetCart(rec, httptest.NewRequest("GET", "/api/cart", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestAddItem(t *testing.T) {
	mock := &cartAPIMock{cart: testCart()}
	handler := NewCartHandler(mock, 5*time.Second)

	body := bytes.NewBufferString(`{"product_id":"p1"}`)
	rec := httptest.NewRecorder()
	req := withUser(httptest.NewRequest("POST", "/api/cart/items", body))
	handler.AddItem(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "p1", mock.lastProductID)
}

func TestAddItem_MissingProductID(t *testing.T) {
	handler := NewCartHandler(&cartAPIMock{}, 5*time.Second)

	body := bytes.NewBufferString(`{}`)
	rec := httptest.NewRecorder()
	handler.AddItem(rec, withUser(httptest.NewRequest("POST", "/api/cart/items", body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddItem_InvalidJSON(t *testing.T) {
	handler := NewCartHandler(&cartAPIMock{}, 5*time.Second)

	body := bytes.NewBufferString(`{not json`)
	rec := httptest.NewRecorder()
	handler.AddItem(rec, withUser(httptest.NewRequest("POST", "/api/cart/items", body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddItem_InsufficientStock(t *testing.T) {
	mock := &cartAPIMock{err: service.ErrInsufficientStock}
	handler := NewCartHandler(mock, 5*time.Second)

	body := bytes.NewBufferString(`{"product_id":"p1"}`)
	rec := httptest.NewRecorder()
	handler.AddItem(rec, withUser(httptest.NewRequest("POST", "/api/cart/items", body)))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateQuantity(t *testing.T) {
	mock := &cartAPIMock{cart: testCart()}
	handler := NewCartHandler(mock, 5*time.Second)

	body := bytes.NewBufferString(`{"quantity":4}`)
	rec := httptest.NewRecorder()
	req := withUser(httptest.NewRequest("PUT", "/api/cart/items/p1", body))
	req = withURLParam(req, "product_id", "p1")
	handler.UpdateQuantity(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p1", mock.lastProductID)
	assert.Equal(t, 4, mock.lastQuantity)
}

func TestUpdateQuantity_LineNotFound(t *testing.T) {
	mock := &cartAPIMock{err: service.ErrLineNotFound}
	handler := NewCartHandler(mock, 5*time.Second)

	body := bytes.NewBufferString(`{"quantity":4}`)
	rec := httptest.NewRecorder()
	req := withUser(httptest.NewRequest("PUT", "/api/cart/items/p9", body))
	req = withURLParam(req, "product_id", "p9")
	handler.UpdateQuantity(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveItem(t *testing.T) {
	mock := &cartAPIMock{cart: testCart()}
	handler := NewCartHandler(mock, 5*time.Second)

	rec := httptest.NewRecorder()
	req := withUser(httptest.NewRequest("DELETE", "/api/cart/items/p1", nil))
	req = withURLParam(req, "product_id", "p1")
	handler.RemoveItem(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p1", mock.lastProductID)
}

func TestClearCart(t *testing.T) {
	empty := &domain.Cart{Identity: "123", Items: []domain.CartItem{}}
	handler := NewCartHandler(&cartAPIMock{cart: empty}, 5*time.Second)

	rec := httptest.NewRecorder()
	handler.ClearCart(rec, withUser(httptest.NewRequest("DELETE", "/api/cart", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	data := resp.Data.(map[string]any)
	assert.InDelta(t, 0, data["item_count"], 1e-9)
}

func TestMerge(t *testing.T) {
	mock := &cartAPIMock{cart: testCart()}
	handler := NewCartHandler(mock, 5*time.Second)

	body := bytes.NewBufferString(`{"device_id":"dev-1"}`)
	rec := httptest.NewRecorder()
	handler.Merge(rec, withUser(httptest.NewRequest("POST", "/api/cart/merge", body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dev-1", mock.lastDeviceID)
}

func TestMerge_MissingDeviceID(t *testing.T) {
	handler := NewCartHandler(&cartAPIMock{}, 5*time.Second)

	body := bytes.NewBufferString(`{}`)
	rec := httptest.NewRecorder()
	handler.Merge(rec, withUser(httptest.NewRequest("POST", "/api/cart/merge", body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartConflictMapsTo409(t *testing.T) {
	mock := &cartAPIMock{err: service.ErrCartConflict}
	handler := NewCartHandler(mock, 5*time.Second)

	body := bytes.NewBufferString(`{"product_id":"p1"}`)
	rec := httptest.NewRecorder()
	handler.AddItem(rec, withUser(httptest.NewRequest("POST", "/api/cart/items", body)))

	assert.Equal(t, http.StatusConflict, rec.Code)
}
