package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/frahmantamala/inventory-management/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSensitive(t *testing.T) {
	for _, name := range []string{"password", "new_password", "Authorization", "refresh_token", "secret_key", "code", "OTP"} {
		assert.True(t, isSensitive(name), name)
	}
	for _, name := range []string{"username", "asset_tag", "barcode", "description"} {
		assert.False(t, isSensitive(name), name)
	}
}

func TestFilterSensitiveBody(t *testing.T) {
	body := filterSensitiveBody([]byte(`{"username":"alice","password":"hunter22","nested":[{"code":"123456","site":"HQ"}]}`))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, "alice", got["username"])
	assert.Equal(t, "[FILTERED]", got["password"])

	nested := got["nested"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "[FILTERED]", nested["code"])
	assert.Equal(t, "HQ", nested["site"])
}

func TestFilterSensitiveBodyPlainText(t *testing.T) {
	assert.Equal(t, "asset_tag,serial", filterSensitiveBody([]byte("asset_tag,serial")))
	assert.Equal(t, "[FILTERED - Contains sensitive data]", filterSensitiveBody([]byte("password=x")))
	assert.Equal(t, "", filterSensitiveBody(nil))
}

func TestRequestIDGeneratesAndPropagates(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(TraceHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceHeader, "trace-abc")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "trace-abc", rec.Header().Get(TraceHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceHeader, "bad id\ninjected")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Len(t, rec.Header().Get(TraceHeader), 36)
}

func TestRecoveryReturnsOpaqueError(t *testing.T) {
	lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 4}))
	handler := RequestID(RecoveryMiddleware(transport.NewBaseHandler(lg))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("database password leaked")
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceHeader, "trace-xyz")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "trace-xyz")
	assert.Contains(t, rec.Body.String(), "internal server error")
	assert.False(t, strings.Contains(rec.Body.String(), "leaked"))
}

func TestLoggingMiddlewareKeepsRequestBody(t *testing.T) {
	var seen string
	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(strings.Builder)
		_, _ = io.Copy(buf, r.Body)
		seen = buf.String()
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"description":"laptop"}`)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, `{"description":"laptop"}`, seen)
}
