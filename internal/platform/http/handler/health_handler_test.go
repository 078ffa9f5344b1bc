package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupRouter() *gin.Engine {
	h := Health(map[string]any{"catalogEntries": 51, "detector": "http"})
	r := gin.New()
	r.GET("/healthz", h)
	r.HEAD("/healthz", h)
	r.OPTIONS("/healthz", h)
	return r
}

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		method       string
		expectedCode int
		expectBody   bool
	}{
		{"GET", http.MethodGet, http.StatusOK, true},
		{"HEAD", http.MethodHead, http.StatusOK, false},
		{"OPTIONS", http.MethodOptions, http.StatusNoContent, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			setupRouter().ServeHTTP(w, httptest.NewRequest(tt.method, "/healthz", nil))

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			if !tt.expectBody {
				assert.Empty(t, w.Body.String())
				return
			}

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "ok", body["status"])
			assert.Equal(t, float64(51), body["catalogEntries"])
			assert.Equal(t, "http", body["detector"])
		})
	}
}

func TestHealth_StatusCannotBeOverridden(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.GET("/healthz", Health(map[string]any{"status": "degraded"}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}
