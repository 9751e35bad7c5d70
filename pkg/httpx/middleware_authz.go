package httpx

import "net/http"

// RequireRole admits only callers whose context role satisfies allow. The
// predicate keeps this package free of domain role ordering. Must run after
// AuthnMiddleware.
func RequireRole(allow func(role string) bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allow(RoleFromContext(r.Context())) {
				WriteError(w, http.StatusForbidden, "forbidden", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
