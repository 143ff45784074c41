package middleware

import (
	"net/http"
	"regexp"

	"github.com/frahmantamala/inventory-management/pkg/logger"
	"github.com/google/uuid"
)

const TraceHeader = "X-Trace-ID"

// validTraceID bounds what a client may inject into our logs.
var validTraceID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID adopts a well-formed client trace id or mints a UUID, stores it
// in the request context and echoes it back.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceHeader)
		if !validTraceID.MatchString(traceID) {
			traceID = uuid.NewString()
		}

		w.Header().Set(TraceHeader, traceID)
		next.ServeHTTP(w, r.WithContext(logger.WithTraceID(r.Context(), traceID)))
	})
}
