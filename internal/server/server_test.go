package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Kamey12/Apex-Inventory-System/internal/repositories"
	"github.com/Kamey12/Apex-Inventory-System/internal/server"
	"github.com/Kamey12/Apex-Inventory-System/internal/services"
	"github.com/Kamey12/Apex-Inventory-System/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T, staticDir string) *fiber.App {
	t.Helper()
	products := repositories.NewMemoryProductRepository()
	return server.New(server.Options{
		AuthService:    services.NewAuthService(repositories.NewMemoryUserRepository(), "test_jwt_secret"),
		ProductService: services.NewProductService(products, repositories.NewMemoryTransactionRepository(products), nil),
		StaticDir:      staticDir,
	})
}

func get(t *testing.T, app *fiber.App, path string) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestHealth(t *testing.T) {
	resp, body := get(t, newApp(t, ""), "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	assert.Equal(t, "healthy", payload["status"])
}

func TestUnknownAPIRoute(t *testing.T) {
	resp, body := get(t, newApp(t, ""), "/api/nothing-here")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Route not found"}`, body)
}

func TestPublicAlertsRoute(t *testing.T) {
	resp, body := get(t, newApp(t, ""), "/api/products/alerts")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, body)
}

func TestStaticClientFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>apex</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))
	app := newApp(t, dir)

	resp, body := get(t, app, "/app.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "console.log(1)", body)

	resp, body = get(t, app, "/dashboard")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<html>apex</html>", body)

	resp, _ = get(t, app, "/api/unknown")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPanickingHandlerIsLogged(t *testing.T) {
	var buf bytes.Buffer
	products := repositories.NewMemoryProductRepository()
	app := server.New(server.Options{
		AuthService:    services.NewAuthService(repositories.NewMemoryUserRepository(), "test_jwt_secret"),
		ProductService: services.NewProductService(products, repositories.NewMemoryTransactionRepository(products), nil),
		Logger:         logger.New(logger.Config{Env: "production", Level: "info", Out: &buf}),
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, body := get(t, app, "/boom")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Server error"}`, body)

	var line map[string]interface{}
	for _, raw := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &entry))
		if entry["message"] == "request" {
			line = entry
		}
	}
	require.NotNil(t, line, "no request line in %s", buf.String())
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "/boom", line["path"])
	assert.EqualValues(t, http.StatusInternalServerError, line["status"])
}
