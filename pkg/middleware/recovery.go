package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/AnaLR27/cs11-backend/pkg/logger"
)

// Recovery recovers from panics and returns a 500 error instead of crashing.
// The panic value and stack are logged with the request's correlation ID; the
// client only ever sees the opaque message.
func Recovery(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.WithContext(r.Context(), l).Error("panic recovered",
						slog.Any("panic", rec),
						slog.String("stack", string(debug.Stack())),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
					)

					writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
