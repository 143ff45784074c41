package swagger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	doc, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/api/v1", doc.Servers[0].URL)
	assert.NotNil(t, doc.Paths.Find("/auth/login"))
	assert.NotNil(t, doc.Paths.Find("/equipment/{id}/history"))
	assert.NotNil(t, doc.Paths.Find("/integrations/absolute/sync"))
}

func TestSpecHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	SpecHandler(rec, httptest.NewRequest(http.MethodGet, "/openapi.yml", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "openapi: 3.0.3")
}
