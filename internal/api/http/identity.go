package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/dds2/internal/api/service"
	"github.com/aussiebroadwan/dds2/pkg/httpx"
	"github.com/aussiebroadwan/dds2/pkg/slogx"
)

// identify resolves the token subject into a service.Identity. It runs after
// AuthnMiddleware, so staff status and tenants are read fresh on every
// request.
func identify(resolver *service.TenantResolver) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID, ok := httpx.UserIDFromContext(ctx)
			if !ok || userID == "" {
				httpx.WriteBearerError(w, "token has no subject")
				return
			}

			ident, err := resolver.Identify(ctx, userID)
			if errors.Is(err, service.ErrUnauthenticated) {
				slogx.FromContext(ctx).Warn("token subject rejected", "user_id", userID)
				httpx.WriteBearerError(w, "unknown or inactive user")
				return
			}
			if err != nil {
				writeError(w, r, err)
				return
			}

			ctx = service.WithIdentity(ctx, ident)
			ctx = slogx.WithUser(ctx, ident.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// identityOf returns the caller set by identify.
func identityOf(r *http.Request) service.Identity {
	ident, _ := service.IdentityFromContext(r.Context())
	return ident
}
