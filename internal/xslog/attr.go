package xslog

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"
)

const (
	keyError = "error"
)

func Error(err error) slog.Attr {
	return slog.String(keyError, err.Error())
}

func RequestID(requestID string) slog.Attr {
	const requestIDKey = "request_id"
	return slog.String(requestIDKey, requestID)
}

func Stack() slog.Attr {
	const stackKey = "stack"
	return slog.String(stackKey, string(debug.Stack()))
}

func HTTPStatus(status int) slog.Attr {
	const statusKey = "status"
	return slog.Int(statusKey, status)
}

func Duration(duration time.Duration) slog.Attr {
	const durationKey = "duration"
	return slog.Duration(durationKey, duration)
}

func RequestMethod(r *http.Request) slog.Attr {
	const methodKey = "method"
	return slog.String(methodKey, r.Method)
}

func RequestPath(r *http.Request) slog.Attr {
	const pathKey = "path"
	return slog.String(pathKey, r.URL.Path)
}

func Count(count int) slog.Attr {
	const countKey = "count"
	return slog.Int(countKey, count)
}

func ActivityID(id string) slog.Attr {
	const activityIDKey = "activity_id"
	return slog.String(activityIDKey, id)
}

func File(path string) slog.Attr {
	const fileKey = "file"
	return slog.String(fileKey, path)
}

func Workout(name string) slog.Attr {
	const workoutKey = "workout"
	return slog.String(workoutKey, name)
}

func Day(t time.Time) slog.Attr {
	const dayKey = "day"
	return slog.String(dayKey, t.Format(time.DateOnly))
}

func Compliance(percent int) slog.Attr {
	const complianceKey = "compliance_percent"
	return slog.Int(complianceKey, percent)
}

func Addr(addr string) slog.Attr {
	const addrKey = "addr"
	return slog.String(addrKey, addr)
}
