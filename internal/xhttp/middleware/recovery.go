package middleware

import (
	"errors"
	"net/http"

	"runcoach/internal/xhttp"
	"runcoach/internal/xslog"
)

// Recovery turns a handler panic into a logged 500 with a JSON body.
// http.ErrAbortHandler is re-raised so the server aborts the response as usual.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(v)
			}

			ctx := r.Context()
			xslog.FromContext(ctx).ErrorContext(ctx, "handler panicked",
				xslog.RequestGroup(r),
				xslog.ErrorGroupWithStack(v),
			)
			xhttp.WriteError(w, http.StatusInternalServerError, "analysis failed unexpectedly")
		}()
		next.ServeHTTP(w, r)
	})
}
