package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/transport"
	"github.com/frahmantamala/inventory-management/pkg/logger"
)

// RecoveryMiddleware turns a panic into an opaque 500 carrying only the trace
// id; the panic value and stack are only logged.
func RecoveryMiddleware(base *transport.BaseHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.From(r.Context()).Error("panic recovered",
						"error", rec,
						"method", r.Method,
						"url", r.URL.String(),
						"stack", string(debug.Stack()))

					appErr := internal.NewInternalError("internal server error", fmt.Errorf("panic: %v", rec))
					if traceID := logger.TraceID(r.Context()); traceID != "" {
						appErr = appErr.WithDetails(map[string]string{"trace_id": traceID})
					}
					status, body := appErr.ToHTTPResponse()
					base.WriteJSON(w, status, body)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
