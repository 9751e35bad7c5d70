package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/inkcart/inkcart/pkg/jwtx"
	"github.com/inkcart/inkcart/pkg/slogx"
)

// AccessTokenCookie is the cookie consulted when no Authorization header is
// present, for browser sessions that cannot attach bearer headers.
const AccessTokenCookie = "access_token"

// AuthnMiddleware extracts the bearer token from the Authorization header or
// the access-token cookie, verifies it, and places the resolved identity in
// the request context. Missing or invalid credentials fail closed with 403.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := bearerToken(r)
			if raw == "" {
				WriteError(w, http.StatusForbidden, "forbidden", "missing access token")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				// One failure mode outward, regardless of why the token failed.
				log.Warn("access token rejected", "err", err)
				WriteError(w, http.StatusForbidden, "forbidden", "invalid access token")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithIdentity(ctx, claims)))
		})
	}
}

func bearerToken(r *http.Request) string {
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

func contextWithIdentity(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyRole, c.Role)
	ctx = context.WithValue(ctx, CtxKeyEmail, c.Email)
	return ctx
}
