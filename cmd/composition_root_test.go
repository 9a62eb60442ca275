package cmd_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fulfillment/cmd"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompositionRoot_MemoryStorage(t *testing.T) {
	cfg := cmd.Config{
		HTTPPort:     "8080",
		Storage:      cmd.StorageMemory,
		JWTSecret:    "secret",
		FanoutBuffer: 8,
		LogFormat:    "text",
	}
	root, err := cmd.NewCompositionRoot(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer root.Close()

	e, err := root.CreateHTTPServer()
	require.NoError(t, err)

	body := `{"name":"Ada","email":"ada@example.com","address":"1 Main St","productId":"sku-1","title":"Lamp","price":5}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	jobs := root.CreateJobManager()
	require.NoError(t, jobs.StartAll())
	jobs.StopAll()

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `orders{status="Pending"} 1`)
}
