package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopherai-docqa/internal/bootstrap"
	"gopherai-docqa/internal/config"
)

func testApp(t *testing.T) *bootstrap.App {
	t.Helper()
	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	cfg.App.GinMode = "test"
	cfg.Retrieval.Mode = "full_context"
	a, err := bootstrap.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestRouter_Health(t *testing.T) {
	router := NewRouter(testApp(t))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "full_context", body["retrieval_mode"])
	assert.Equal(t, false, body["document_ready"])
	assert.Empty(t, body["dependencies"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_AskBeforeUpload(t *testing.T) {
	router := NewRouter(testApp(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/questions", jsonBody(`{"question":"anything?"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/documents/history", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func jsonBody(s string) *strings.Reader { return strings.NewReader(s) }
