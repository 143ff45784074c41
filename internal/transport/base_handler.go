package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/pkg/logger"
	"github.com/go-chi/chi"
)

// maxBodyBytes bounds JSON bodies; restore payloads are the largest.
const maxBodyBytes = 32 << 20

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Error("http error", "status", status, "message", message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errorResp := map[string]interface{}{
		"code":    status,
		"message": message,
	}

	if err := json.NewEncoder(w).Encode(errorResp); err != nil {
		h.Logger.Error("failed to encode error response", "error", err)
	}
}

// HandleServiceError renders err as {"error": {...}}. Anything that is not
// an AppError becomes an opaque internal error; causes are only logged.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		appErr = internal.NewInternalError("internal server error", err)
	}

	lg := logger.From(r.Context())
	switch {
	case appErr.StatusCode >= http.StatusInternalServerError:
		lg.Error("request failed", "path", r.URL.Path, "type", appErr.Type, "code", appErr.Code, "error", err)
	default:
		lg.Warn("request rejected", "path", r.URL.Path, "type", appErr.Type, "code", appErr.Code, "message", appErr.GetDetailedMessage())
	}

	status, body := appErr.ToHTTPResponse()
	h.WriteJSON(w, status, body)
}

// DecodeJSON reads a JSON body into dst. Malformed bodies are validation errors.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return internal.NewValidationError("request body is required", internal.ErrCodeInvalidBody)
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return internal.NewValidationError("request body is required", internal.ErrCodeInvalidBody)
		}
		return internal.NewValidationError("invalid request body", internal.ErrCodeInvalidBody).WithCause(err)
	}
	return nil
}

// IDParam parses the numeric chi URL parameter name.
func (h *BaseHandler) IDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewValidationFieldError(name, "invalid id "+strconv.Quote(raw), internal.ErrCodeInvalidID)
	}
	return id, nil
}

// Principal returns the authenticated actor placed in the context by the
// auth middleware.
func (h *BaseHandler) Principal(r *http.Request) (*internal.Principal, error) {
	p, ok := internal.UserFromContext(r.Context())
	if !ok {
		return nil, internal.ErrUnauthenticated
	}
	return p, nil
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}

	return authHeader[7:]
}
