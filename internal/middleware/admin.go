package middleware

import (
	"context"
	"net/http"

	"github.com/Shravan4507/ise-elevators-website/internal/auth"
	"github.com/Shravan4507/ise-elevators-website/internal/httpx"
	"github.com/Shravan4507/ise-elevators-website/internal/transport"
)

// Revocations reports whether a token id or a session id was signed out
// before it expired.
type Revocations interface {
	Revoked(ctx context.Context, tokenID string) bool
}

type claimsKey struct{}

// AdminClaims resolves the admin access token of a request, from the
// Authorization header first and the access cookie second.
func AdminClaims(r *http.Request, manager *auth.Manager, revoked Revocations) (*auth.Claims, bool) {
	if manager == nil {
		return nil, false
	}
	token := httpx.BearerToken(r)
	if token == "" {
		if cookie, err := r.Cookie(auth.AccessCookie); err == nil {
			token = cookie.Value
		}
	}
	if token == "" {
		return nil, false
	}
	claims, err := manager.ParseAccess(token)
	if err != nil {
		return nil, false
	}
	if revoked != nil && (revoked.Revoked(r.Context(), claims.ID) || revoked.Revoked(r.Context(), claims.SessionID)) {
		return nil, false
	}
	return claims, true
}

func AdminAuth(manager *auth.Manager, revoked Revocations) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
				return
			}

			claims, ok := AdminClaims(r, manager, revoked)
			if !ok {
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims
}
