package jwtmw

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain はテスト実行前にGinをテストモードに設定します。
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func runMiddleware(secret, authHeader string) (*httptest.ResponseRecorder, *gin.Context) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/meal/estimate", nil)
	if authHeader != "" {
		c.Request.Header.Set("Authorization", authHeader)
	}
	AuthRequired(secret)(c)
	return w, c
}

// TestAuthRequired_MissingBearerToken はBearerトークンがない場合やプレフィックスが不正な場合に401が返されることを検証します。
func TestAuthRequired_MissingBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		authHeader string
	}{
		{"no header", ""},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"bearer lowercase", "bearer token123"},
		{"no space after Bearer", "Bearertoken123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, c := runMiddleware("test-secret", tt.authHeader)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.True(t, c.IsAborted())
		})
	}
}

// TestAuthRequired_EmptySecret は署名鍵が空の場合に500が返されることを検証します。
func TestAuthRequired_EmptySecret(t *testing.T) {
	t.Parallel()

	w, _ := runMiddleware("", "Bearer sometoken")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// TestAuthRequired_InvalidToken は不正なトークン（改ざん・期限切れ等）で401が返されることを検証します。
func TestAuthRequired_InvalidToken(t *testing.T) {
	t.Parallel()

	const testSecret = "test-secret-key-for-invalid"

	tests := []struct {
		name  string
		token string
	}{
		{"malformed token", "not.a.valid.token"},
		{"random string", "randomstring"},
		{"wrong secret", createTokenWithSecret(t, "wrong-secret", "mobile-app", time.Hour)},
		{"expired token", createTokenWithSecret(t, testSecret, "mobile-app", -time.Hour)},
		{"missing subject", createTokenWithSecret(t, testSecret, "", time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, c := runMiddleware(testSecret, "Bearer "+tt.token)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.True(t, c.IsAborted())
		})
	}
}

// TestAuthRequired_ValidToken は有効なトークンでリクエストが通過し、コンテキストにクライアントIDが設定されることを検証します。
func TestAuthRequired_ValidToken(t *testing.T) {
	t.Parallel()

	const testSecret = "test-secret-key-for-valid"

	for _, clientID := range []string{"mobile-app", "web", "batch-01"} {
		t.Run(clientID, func(t *testing.T) {
			t.Parallel()

			token := createTokenWithSecret(t, testSecret, clientID, time.Hour)
			w, c := runMiddleware(testSecret, "Bearer "+token)
			require.False(t, c.IsAborted(), "response: %s", w.Body.String())

			got, exists := c.Get(ContextClientID)
			require.True(t, exists)
			assert.Equal(t, clientID, got)
		})
	}
}

// TestAuthRequired_InvalidSigningMethod はnoneアルゴリズム（未署名）のトークンが拒否されることを検証します。
func TestAuthRequired_InvalidSigningMethod(t *testing.T) {
	t.Parallel()

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "mobile-app",
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	})
	tokenStr, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	w, _ := runMiddleware("test-secret-key-for-signing", "Bearer "+tokenStr)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// createTokenWithSecret はテスト用に指定されたシークレットとクライアントIDで署名済みJWTトークンを生成します。
func createTokenWithSecret(t *testing.T, secret, clientID string, expiration time.Duration) string {
	t.Helper()

	claims := jwt.MapClaims{
		"exp": time.Now().Add(expiration).Unix(),
		"iat": time.Now().Unix(),
	}
	if clientID != "" {
		claims["sub"] = clientID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}
