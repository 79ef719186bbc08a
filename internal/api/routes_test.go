package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pid-digitizer/backend/internal/cad"
	"github.com/pid-digitizer/backend/internal/config"
	"github.com/pid-digitizer/backend/internal/export"
	"github.com/pid-digitizer/backend/internal/testutil"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Advanced.EnableRequestLogging = false

	store := testutil.NewMockStorage(t.TempDir())
	e := echo.New()
	SetupMiddleware(e, cfg)
	RegisterRoutes(e, NewHandlers(&Dependencies{
		Store:   store,
		Exports: export.NewManager(store, nil, export.Options{Timeout: 30 * time.Second}),
		Config:  cfg,
		Version: "test",
	}))
	return e
}

func TestRoutes_Catalog(t *testing.T) {
	e := newTestServer(t)

	tests := []struct {
		path      string
		wantCount int
	}{
		{path: "/api/catalog/symbols", wantCount: len(cad.Catalog())},
		{path: "/api/catalog/layers", wantCount: len(cad.Layers())},
		{path: "/api/catalog/paper-sizes", wantCount: 5},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			var items []map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
			assert.Len(t, items, tt.wantCount)
		})
	}
}

func TestRoutes_HealthAndErrors(t *testing.T) {
	e := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"test"`)
	assert.Contains(t, rec.Body.String(), `"history":false`)

	// History is disabled in this server.
	req = httptest.NewRequest(http.MethodGet, "/api/history/recent", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"SERVICE_UNAVAILABLE"`)

	req = httptest.NewRequest(http.MethodGet, "/api/exports/missing", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)
}

func TestRoutes_ExportThenDownload(t *testing.T) {
	e := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/exports", strings.NewReader(exportBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var record struct {
		FileID string `json:"fileId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))

	req = httptest.NewRequest(http.MethodGet, "/api/exports/"+record.FileID+"/download", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "  0\nSECTION") || strings.HasPrefix(body, "0\nSECTION"))
	assert.Contains(t, body, "P-101")
	assert.Contains(t, body, "EOF")
}

func TestRoutes_RejectsDisallowedInputType(t *testing.T) {
	e := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/exports?filename=drawing.exe", strings.NewReader(exportBody))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"VALIDATION_ERROR"`)
}
