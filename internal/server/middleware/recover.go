package middleware

import (
	"net/http"

	"github.com/jonathan/services-gateway/internal/logging"
	"go.uber.org/zap"
)

// Recover turns a panicking handler into a 500 response.
// http.ErrAbortHandler is re-panicked so the server can abort the connection.
func Recover(fallback *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logging.FromContext(r.Context(), fallback).Error("panic serving request",
					zap.Any("panic", rec),
					zap.Stack("stack"),
				)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
