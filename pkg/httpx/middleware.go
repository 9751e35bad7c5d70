// Package httpx holds the HTTP plumbing shared by all handlers: middleware
// chaining, authentication and authorization checks, rate limiting, JSON
// responses and request metrics.
package httpx

import "net/http"

// Middleware wraps a handler with cross-cutting behavior.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares to h so the first listed runs outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
