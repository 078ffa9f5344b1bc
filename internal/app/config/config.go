// Package config はサーバー全体の設定を環境変数から読み込みます。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"smartcal_backend/internal/feature/mealcalorie/adapters/gemini"
	"smartcal_backend/internal/feature/mealcalorie/adapters/imagecodec"
	"smartcal_backend/internal/feature/mealcalorie/adapters/inference"
	"smartcal_backend/internal/feature/mealcalorie/usecase"
	"smartcal_backend/internal/platform/db"
	"smartcal_backend/internal/platform/logging"
	"smartcal_backend/internal/platform/redis"
)

// 検出バックエンド名
const (
	BackendHTTP   = "http"
	BackendVision = "vision"
	BackendGemini = "gemini"
)

// カタログソース名
const (
	CatalogEmbedded = "embedded"
	CatalogDB       = "db"
)

const defaultCacheTTL = 10 * time.Minute

// Config はサーバーの設定です。
type Config struct {
	Port string

	Threshold      float64
	Locale         usecase.Locale
	MaxImageBytes  int
	MaxImageSide   int
	MaxImagePixels int

	CORSAllowOrigins []string
	JWTSecret        string

	DetectorBackend   string
	Inference         inference.Config
	GeminiModel       string
	GeminiAPIKey      string
	DetectorRateLimit int // 1分あたりの呼び出し上限。0は無制限

	CatalogSource string
	CatalogFile   string // 指定時は埋め込み定義の代わりにこのYAMLを使う
	DB            db.Config

	Redis    redis.Config
	CacheTTL time.Duration

	Logging logging.Config
}

// Load は環境変数から設定を読み込み、検証します。
// 不正な値はすべてまとめて1つのエラーとして返します。
func Load() (Config, error) {
	var errs []error

	cfg := Config{
		Port:             getenv("PORT", "8080"),
		Locale:           usecase.Locale(strings.ToLower(getenv("NOTE_LOCALE", string(usecase.LocaleKorean)))),
		CORSAllowOrigins: splitList(getenv("CORS_ALLOW_ORIGINS", "*")),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		DetectorBackend:  strings.ToLower(getenv("DETECTOR_BACKEND", BackendHTTP)),
		Inference:        inference.LoadConfig(),
		GeminiModel:      getenv("GEMINI_MODEL", gemini.DefaultModel),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		CatalogSource:    strings.ToLower(getenv("CATALOG_SOURCE", CatalogEmbedded)),
		CatalogFile:      os.Getenv("CATALOG_FILE"),
		DB:               db.LoadConfigFromEnv(),
		Redis:            redis.LoadConfigFromEnv(),
		Logging:          logging.LoadConfigFromEnv(),
	}

	var err error
	if cfg.Threshold, err = floatEnv("CONFIDENCE_THRESHOLD", usecase.DefaultConfidenceThreshold); err != nil {
		errs = append(errs, err)
	} else if !(cfg.Threshold >= 0 && cfg.Threshold <= 1) {
		errs = append(errs, fmt.Errorf("CONFIDENCE_THRESHOLD must be within [0, 1], got %v", cfg.Threshold))
	}
	if cfg.MaxImageBytes, err = intEnv("MAX_IMAGE_BYTES", usecase.DefaultMaxImageSize); err != nil {
		errs = append(errs, err)
	} else if cfg.MaxImageBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_IMAGE_BYTES must be positive, got %d", cfg.MaxImageBytes))
	}
	if cfg.MaxImageSide, err = intEnv("MAX_IMAGE_SIDE", imagecodec.DefaultMaxSide); err != nil {
		errs = append(errs, err)
	} else if cfg.MaxImageSide <= 0 {
		errs = append(errs, fmt.Errorf("MAX_IMAGE_SIDE must be positive, got %d", cfg.MaxImageSide))
	}
	if cfg.MaxImagePixels, err = intEnv("MAX_IMAGE_PIXELS", imagecodec.DefaultMaxPixels); err != nil {
		errs = append(errs, err)
	} else if cfg.MaxImagePixels <= 0 {
		errs = append(errs, fmt.Errorf("MAX_IMAGE_PIXELS must be positive, got %d", cfg.MaxImagePixels))
	}
	if cfg.DetectorRateLimit, err = intEnv("DETECTOR_RATE_LIMIT", 0); err != nil {
		errs = append(errs, err)
	} else if cfg.DetectorRateLimit < 0 {
		errs = append(errs, fmt.Errorf("DETECTOR_RATE_LIMIT must not be negative, got %d", cfg.DetectorRateLimit))
	}
	if cfg.CacheTTL, err = durationEnv("DETECTION_CACHE_TTL", defaultCacheTTL); err != nil {
		errs = append(errs, err)
	}
	if cfg.Inference.Timeout, err = durationEnv("INFERENCE_TIMEOUT", inference.DefaultTimeout); err != nil {
		errs = append(errs, err)
	} else if cfg.Inference.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("INFERENCE_TIMEOUT must be positive, got %v", cfg.Inference.Timeout))
	}

	switch cfg.Locale {
	case usecase.LocaleKorean, usecase.LocaleEnglish:
	default:
		errs = append(errs, fmt.Errorf("NOTE_LOCALE must be one of ko, en, got %q", cfg.Locale))
	}
	switch cfg.DetectorBackend {
	case BackendHTTP, BackendVision, BackendGemini:
	default:
		errs = append(errs, fmt.Errorf("DETECTOR_BACKEND must be one of http, vision, gemini, got %q", cfg.DetectorBackend))
	}
	switch cfg.CatalogSource {
	case CatalogEmbedded, CatalogDB:
	default:
		errs = append(errs, fmt.Errorf("CATALOG_SOURCE must be one of embedded, db, got %q", cfg.CatalogSource))
	}
	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// AuthEnabled は推定エンドポイントにBearerトークンを要求するかどうかを返します。
func (c Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func floatEnv(key string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
