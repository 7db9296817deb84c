package loggingmw

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/product_hub/internal/guard"
	"github.com/Skotchmaster/product_hub/internal/logging"
	"github.com/Skotchmaster/product_hub/internal/models"
)

func serveLogged(t *testing.T, h echo.HandlerFunc, reqID string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(logging.NewWithWriter(&buf, "info")))
	e.GET("/products/:id", h)

	req := httptest.NewRequest(http.MethodGet, "/products/7", nil)
	if reqID != "" {
		req.Header.Set(echo.HeaderXRequestID, reqID)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return rec, entry
}

func TestRequestLogger_Success(t *testing.T) {
	rec, entry := serveLogged(t, func(c echo.Context) error {
		guard.SetCurrentUser(c, &models.User{ID: 3})
		logging.FromContext(c.Request().Context()).Debug("hidden")
		return c.NoContent(http.StatusOK)
	}, "req-1")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "request_completed", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "/products/:id", entry["route"])
	assert.Equal(t, "/products/7", entry["path"])
	assert.EqualValues(t, 200, entry["status"])
	assert.EqualValues(t, 3, entry["user_id"])
}

func TestRequestLogger_RendersErrors(t *testing.T) {
	rec, entry := serveLogged(t, func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "Not found.")
	}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "WARN", entry["level"])
	assert.NotContains(t, entry, "user_id")
	assert.NotContains(t, entry, "error")

	rec, entry = serveLogged(t, func(c echo.Context) error {
		return errors.New("db is gone")
	}, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "db is gone", entry["error"])
}
