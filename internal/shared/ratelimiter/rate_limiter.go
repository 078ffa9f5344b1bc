package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Limiter は、API呼び出しなどの操作の頻度を制限するインターフェースです。
type Limiter interface {
	Wait(ctx context.Context) error
}

// RateLimiterは、固定ウィンドウ方式でAPI呼び出しなどの操作の頻度を制限します。
// 複数のゴルーチンから同時に使用できます。
type RateLimiter struct {
	mu          sync.Mutex
	limit       int           // ウィンドウあたりの上限
	interval    time.Duration // どの単位でリセットするか
	count       int
	windowStart time.Time
	now         func() time.Time
}

// RateLimiterがLimiterを実装していることをコンパイル時に検証します。
var _ Limiter = (*RateLimiter)(nil)

// NewRateLimiterは新しいRateLimiterのインスタンスを生成します。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:       limit,
		interval:    interval,
		windowStart: time.Now(),
		now:         time.Now,
	}
}

// reserve は呼び出し枠を1つ確保し、その枠が使えるようになるまでの待機時間を返します。
func (rl *RateLimiter) reserve() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	// interval を過ぎたらカウントリセット
	if now.Sub(rl.windowStart) >= rl.interval {
		rl.count = 0
		rl.windowStart = now
	}

	rl.count++
	if rl.count <= rl.limit {
		return rl.windowStart.Sub(now)
	}

	// 次のウィンドウの先頭の枠を確保する
	rl.windowStart = rl.windowStart.Add(rl.interval)
	rl.count = 1
	return rl.windowStart.Sub(now)
}

// Waitはレートリミットの上限に達しているかを確認し、必要であれば次のウィンドウまで待機します。
// 待機中にctxがキャンセルされた場合はctx.Err()を返します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sleep := rl.reserve()
	if sleep <= 0 {
		return nil
	}

	slog.InfoContext(ctx, "レートリミットに到達したため待機します", "limit", rl.limit, "sleep", sleep)
	timer := time.NewTimer(sleep)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
