// Package throttle は検出バックエンドへの呼び出し頻度を制限するデコレータを提供します。
package throttle

import (
	"context"
	"fmt"

	"smartcal_backend/internal/feature/mealcalorie/domain"
	"smartcal_backend/internal/feature/mealcalorie/domain/entity"
	"smartcal_backend/internal/feature/mealcalorie/usecase"
	"smartcal_backend/internal/shared/ratelimiter"
)

type rateLimitedDetector struct {
	next    usecase.Detector
	limiter ratelimiter.Limiter
}

// rateLimitedDetectorがDetectorを実装していることをコンパイル時に検証します。
var _ usecase.Detector = (*rateLimitedDetector)(nil)

// NewRateLimitedDetector は呼び出しごとにlimiterの許可を待ってからnextに委譲するDetectorを生成します。
func NewRateLimitedDetector(next usecase.Detector, limiter ratelimiter.Limiter) *rateLimitedDetector {
	return &rateLimitedDetector{next: next, limiter: limiter}
}

// Detect は呼び出し枠が空くまで待機してから検出を実行します。
// 待機中にctxがキャンセルされた場合はバックエンドを呼ばずにエラーを返します。
func (d *rateLimitedDetector) Detect(ctx context.Context, img entity.Image) (entity.DetectionBatch, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return entity.DetectionBatch{}, fmt.Errorf("%w: rate limit wait aborted: %w", domain.ErrDetectionBackend, err)
	}
	return d.next.Detect(ctx, img)
}
