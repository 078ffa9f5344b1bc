// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"smartcal_backend/internal/app/config"
	"smartcal_backend/internal/feature/mealcalorie/adapters/gemini"
	"smartcal_backend/internal/feature/mealcalorie/adapters/inference"
	"smartcal_backend/internal/feature/mealcalorie/adapters/throttle"
	"smartcal_backend/internal/feature/mealcalorie/adapters/vision"
	"smartcal_backend/internal/feature/mealcalorie/usecase"
	"smartcal_backend/internal/platform/cache"
	infrahttp "smartcal_backend/internal/platform/http"
	"smartcal_backend/internal/shared/ratelimiter"
)

// nopCloser はクローズ処理を持たないバックエンド用のio.Closerです。
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewBaseDetector creates the detection backend selected by cfg.DetectorBackend.
// vocabulary is the list of catalog keys; the gemini backend constrains its answers to it.
// The returned io.Closer releases backend resources and must be closed on shutdown.
func NewBaseDetector(ctx context.Context, cfg config.Config, vocabulary []string) (usecase.Detector, io.Closer, error) {
	switch cfg.DetectorBackend {
	case config.BackendHTTP:
		httpClient := infrahttp.NewHTTPClient(cfg.Inference.Timeout)
		d := inference.NewDetector(cfg.Inference, httpClient)
		probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		// 起動時点で推論サービスが未起動でも続行する
		if err := d.CheckHealth(probeCtx); err != nil {
			slog.Warn("推論サービスのヘルスチェックに失敗しました", "url", cfg.Inference.URL, "error", err)
		}
		return d, nopCloser{}, nil
	case config.BackendVision:
		d, err := vision.NewVisionObjectDetector(ctx)
		if err != nil {
			return nil, nil, err
		}
		return d, d, nil
	case config.BackendGemini:
		d, err := gemini.NewGeminiFoodDetector(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, vocabulary)
		if err != nil {
			return nil, nil, err
		}
		return d, nopCloser{}, nil
	}
	return nil, nil, fmt.Errorf("unknown detector backend %q", cfg.DetectorBackend)
}

// DecorateDetector wraps a backend with the rate limiter and the Redis cache.
// The cache is outermost so that cache hits do not consume rate limit budget.
// If rdb is nil, caching is bypassed.
func DecorateDetector(base usecase.Detector, cfg config.Config, rdb *redis.Client) *cache.CachingDetector {
	d := base
	if cfg.DetectorRateLimit > 0 {
		d = throttle.NewRateLimitedDetector(d, ratelimiter.NewRateLimiter(cfg.DetectorRateLimit, time.Minute))
		slog.Info("検出バックエンドのレートリミットを有効化", "limit_per_minute", cfg.DetectorRateLimit)
	}
	return cache.NewCachingDetector(rdb, cfg.CacheTTL, d, "detections", cfg.DetectorBackend)
}
