package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartcal_backend/internal/feature/mealcalorie/usecase"
)

var configKeys = []string{
	"PORT", "CONFIDENCE_THRESHOLD", "NOTE_LOCALE", "MAX_IMAGE_BYTES", "MAX_IMAGE_SIDE", "MAX_IMAGE_PIXELS",
	"CORS_ALLOW_ORIGINS", "JWT_SECRET", "DETECTOR_BACKEND", "INFERENCE_URL", "INFERENCE_TIMEOUT",
	"GEMINI_MODEL", "GEMINI_API_KEY", "DETECTOR_RATE_LIMIT", "CATALOG_SOURCE", "CATALOG_FILE",
	"REDIS_HOST", "DETECTION_CACHE_TTL", "LOG_FORMAT", "LOG_LEVEL",
}

// clearEnv はテスト対象の環境変数を空にします。
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 0.35, cfg.Threshold)
	assert.Equal(t, usecase.LocaleKorean, cfg.Locale)
	assert.Equal(t, 10*1024*1024, cfg.MaxImageBytes)
	assert.Equal(t, 1280, cfg.MaxImageSide)
	assert.Equal(t, 40_000_000, cfg.MaxImagePixels)
	assert.Equal(t, 30*time.Second, cfg.Inference.Timeout)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)
	assert.Equal(t, BackendHTTP, cfg.DetectorBackend)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, 0, cfg.DetectorRateLimit)
	assert.Equal(t, CatalogEmbedded, cfg.CatalogSource)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.AuthEnabled())
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("CONFIDENCE_THRESHOLD", "0.5")
	t.Setenv("NOTE_LOCALE", "EN")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DETECTOR_BACKEND", "gemini")
	t.Setenv("DETECTOR_RATE_LIMIT", "60")
	t.Setenv("CATALOG_SOURCE", "db")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("DETECTION_CACHE_TTL", "1h")
	t.Setenv("INFERENCE_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 0.5, cfg.Threshold)
	assert.Equal(t, usecase.LocaleEnglish, cfg.Locale)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
	assert.True(t, cfg.AuthEnabled())
	assert.Equal(t, BackendGemini, cfg.DetectorBackend)
	assert.Equal(t, 60, cfg.DetectorRateLimit)
	assert.Equal(t, CatalogDB, cfg.CatalogSource)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 5*time.Second, cfg.Inference.Timeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		message string
	}{
		{"threshold above one", "CONFIDENCE_THRESHOLD", "1.5", "CONFIDENCE_THRESHOLD must be within [0, 1]"},
		{"threshold negative", "CONFIDENCE_THRESHOLD", "-0.1", "CONFIDENCE_THRESHOLD must be within [0, 1]"},
		{"threshold not a number", "CONFIDENCE_THRESHOLD", "high", "CONFIDENCE_THRESHOLD"},
		{"threshold NaN", "CONFIDENCE_THRESHOLD", "NaN", "CONFIDENCE_THRESHOLD must be within [0, 1]"},
		{"threshold infinite", "CONFIDENCE_THRESHOLD", "+Inf", "CONFIDENCE_THRESHOLD must be within [0, 1]"},
		{"unknown locale", "NOTE_LOCALE", "ja", "NOTE_LOCALE"},
		{"unknown backend", "DETECTOR_BACKEND", "onnx", "DETECTOR_BACKEND"},
		{"unknown catalog source", "CATALOG_SOURCE", "s3", "CATALOG_SOURCE"},
		{"zero max bytes", "MAX_IMAGE_BYTES", "0", "MAX_IMAGE_BYTES"},
		{"bad max side", "MAX_IMAGE_SIDE", "big", "MAX_IMAGE_SIDE"},
		{"negative rate limit", "DETECTOR_RATE_LIMIT", "-1", "DETECTOR_RATE_LIMIT"},
		{"bad ttl", "DETECTION_CACHE_TTL", "ten", "DETECTION_CACHE_TTL"},
		{"bad inference timeout", "INFERENCE_TIMEOUT", "thirty-seconds", "INFERENCE_TIMEOUT"},
		{"zero inference timeout", "INFERENCE_TIMEOUT", "0s", "INFERENCE_TIMEOUT must be positive"},
		{"zero max pixels", "MAX_IMAGE_PIXELS", "0", "MAX_IMAGE_PIXELS"},
		{"bad log level", "LOG_LEVEL", "loud", "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLoad_ThresholdBoundsAreInclusive(t *testing.T) {
	for _, v := range []string{"0", "1"} {
		t.Run(v, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("CONFIDENCE_THRESHOLD", v)

			_, err := Load()
			assert.NoError(t, err)
		})
	}
}
