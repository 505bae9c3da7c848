package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/popeskul/wa-inbox/internal/metrics"
)

// Recovery turns a handler panic into a 500 and counts it per route. Aborted
// handlers keep unwinding so the server drops the connection.
func Recovery(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				err := recover()
				if err == nil {
					return
				}
				if err == http.ErrAbortHandler {
					panic(err)
				}

				route := routePattern(r)
				metrics.RecordPanic(route)

				fields := []zap.Field{
					zap.Any("error", err),
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("method", r.Method),
					zap.String("route", route),
					zap.String("stack", string(debug.Stack())),
				}
				if id := chi.URLParam(r, "id"); id != "" {
					fields = append(fields, zap.String("conversation_id", id))
				}
				logger.Error("Handler panicked", fields...)

				WriteError(w, r, http.StatusInternalServerError, ErrorCodeInternal, ErrorMessageInternal)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
