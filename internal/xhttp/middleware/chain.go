package middleware

import "net/http"

// Chain wraps h so the middleware run in argument order: the first one sees
// the request first and the response last. The middleware slice is left as
// passed.
func Chain(h http.Handler, middleware ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}
