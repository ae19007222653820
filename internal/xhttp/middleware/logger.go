package middleware

import (
	"log/slog"
	"net/http"

	"runcoach/internal/xcontext"
	"runcoach/internal/xslog"
)

// Logger puts base into each request context, tagged with the request id so
// every line a handler logs can be traced back to its access log entry.
// It must run after RequestID. A nil base falls back to slog.Default.
func Logger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := base
			if id, ok := xcontext.GetRequestID(ctx); ok {
				logger = base.With(xslog.RequestID(id))
			}
			next.ServeHTTP(w, r.WithContext(xslog.WithLogger(ctx, logger)))
		})
	}
}
