package transport

import (
	"io"
	"net/http"
	"strings"

	"github.com/frahmantamala/inventory-management/internal"
)

// UploadedFile returns the multipart field named field, or the raw request
// body when the request is not multipart. The caller must call the returned
// close function.
func UploadedFile(r *http.Request, field string, maxBytes int64) (io.Reader, func(), error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return io.LimitReader(r.Body, maxBytes), func() {}, nil
	}

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, nil, internal.NewValidationError("invalid multipart upload", internal.ErrCodeInvalidBody).WithCause(err)
	}
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, nil, internal.NewValidationFieldError(field, field+" is required", internal.ErrCodeInvalidBody)
	}
	return file, func() { _ = file.Close() }, nil
}
