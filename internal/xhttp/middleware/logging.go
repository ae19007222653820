package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"runcoach/internal/xslog"
)

// healthPath is polled by supervisors and logged at debug only.
const healthPath = "/health"

// statusRecorder captures the status and body size a handler wrote.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(p []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(p)
	rw.bytes += n
	return n, err
}

// Logging writes one access log line per request. Server errors log at error,
// client errors at warn and health checks at debug.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		ctx := r.Context()
		xslog.FromContext(ctx).LogAttrs(ctx, accessLevel(r, rec.status), "request served",
			xslog.RequestGroup(r),
			xslog.ResponseGroup(rec.status, time.Since(start)),
			slog.Int("bytes", rec.bytes),
		)
	})
}

func accessLevel(r *http.Request, status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	case r.URL.Path == healthPath:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
