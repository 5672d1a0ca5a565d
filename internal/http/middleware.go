package http

import (
	"context"
	"net/http"

	"github.com/mariapr27/my-store-app/internal/domain"
)

type contextKey string

const identityKey contextKey = "identity"

// IdentityMiddleware resolves the caller's identity from headers:
// X-User-ID for authenticated users (set by the auth proxy in front of
// this service), X-Device-ID for guests. Requests may carry neither;
// cart operations reject those downstream.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := domain.Identity{
			UserID:   r.Header.Get("X-User-ID"),
			DeviceID: r.Header.Get("X-Device-ID"),
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFrom(ctx context.Context) domain.Identity {
	if identity, ok := ctx.Value(identityKey).(domain.Identity); ok {
		return identity
	}
	return domain.Identity{}
}
