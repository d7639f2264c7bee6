package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/jmylchreest/eventexport/internal/observability"
)

// Recovery turns a handler panic into a 500 problem response. Panics with
// http.ErrAbortHandler are re-raised so net/http can abort the connection.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				requestID := observability.RequestIDFromContext(r.Context())
				logger.ErrorContext(r.Context(), "panic recovered",
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("request_id", requestID),
				)
				writeProblem(w, http.StatusInternalServerError, requestID)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// writeProblem writes an RFC 9457 body shaped like huma's error model.
func writeProblem(w http.ResponseWriter, status int, requestID string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"title":      http.StatusText(status),
		"status":     status,
		"request_id": requestID,
	})
}
