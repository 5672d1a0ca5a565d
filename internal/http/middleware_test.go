package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mariapr27/my-store-app/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		deviceID string
		want     domain.Identity
	}{
		{"authenticated", "123", "", domain.Identity{UserID: "123"}},
		{"guest", "", "dev-1", domain.Identity{DeviceID: "dev-1"}},
		{"both headers", "123", "dev-1", domain.Identity{UserID: "123", DeviceID: "dev-1"}},
		{"anonymous", "", "", domain.Identity{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got domain.Identity
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = IdentityFrom(r.Context())
			})

			req := httptest.NewRequest("GET", "/", nil)
			if tt.userID != "" {
				req.Header.Set("X-User-ID", tt.userID)
			}
			if tt.deviceID != "" {
				req.Header.Set("X-Device-ID", tt.deviceID)
			}

			IdentityMiddleware(next).ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentityFrom_MissingValue(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.True(t, IdentityFrom(req.Context()).IsZero())
}

// Routing smoke test: headers flow through the full middleware chain to
// the handler.
func TestRouter(t *testing.T) {
	cartMock := &cartAPIMock{cart: testCart()}
	router := NewRouter(
		NewProductHandler(&productsAPIMock{}, 5*time.Second),
		NewCartHandler(cartMock, 5*time.Second),
		NewOrdersHandler(&ordersAPIMock{}, 5*time.Second),
		NewHealthHandler(pingerMock{}),
		5*time.Second,
	)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/cart", nil)
	req.Header.Set("X-User-ID", "123")
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"identity":"123"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
