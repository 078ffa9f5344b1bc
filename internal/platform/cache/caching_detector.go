// Package cache provides caching decorators backed by Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"smartcal_backend/internal/feature/mealcalorie/domain/entity"
	"smartcal_backend/internal/feature/mealcalorie/usecase"
)

const (
	defaultTTL       = 10 * time.Minute
	defaultNamespace = "detections"
)

// CachingDetector decorates a Detector with Redis caching keyed by the image digest.
// Cache failures never fail a request; the inner detector is used instead.
type CachingDetector struct {
	inner     usecase.Detector
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
	backend   string
}

// CachingDetectorがDetectorを実装していることをコンパイル時に検証します。
var _ usecase.Detector = (*CachingDetector)(nil)

// NewCachingDetector decorates a Detector with Redis caching.
// If ttl is 0, it defaults to 10 minutes. If namespace is empty, it uses "detections".
// backend is part of the key so that results from different backends never mix.
func NewCachingDetector(rdb *redis.Client, ttl time.Duration, inner usecase.Detector, namespace, backend string) *CachingDetector {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if namespace == "" {
		namespace = defaultNamespace
	}
	return &CachingDetector{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
		backend:   backend,
	}
}

// Detect returns cached detections for identical image bytes, falling back to the inner detector.
func (c *CachingDetector) Detect(ctx context.Context, img entity.Image) (entity.DetectionBatch, error) {
	if c.rdb == nil {
		return c.inner.Detect(ctx, img)
	}

	key := c.cacheKey(img.Data)

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.DetectionBatch
		if err := json.Unmarshal(b, &out); err == nil {
			slog.DebugContext(ctx, "検出結果キャッシュヒット", "key", key)
			return out, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.Detect(ctx, img)
	if err != nil {
		return entity.DetectionBatch{}, err
	}

	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			slog.WarnContext(ctx, "検出結果のキャッシュ保存に失敗しました", "key", key, "error", err)
		}
	}

	return out, nil
}

// Purge deletes every cached result of this backend. Used after the catalog changes,
// since vocabulary-constrained backends depend on it.
func (c *CachingDetector) Purge(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.deleteByPattern(ctx, c.keyPrefix()+"*")
}

// cacheKey generates a cache key for the given image bytes.
func (c *CachingDetector) cacheKey(data []byte) string {
	sum := sha256.Sum256(data)
	return c.keyPrefix() + hex.EncodeToString(sum[:])
}

func (c *CachingDetector) keyPrefix() string {
	return fmt.Sprintf("%s:%s:", c.namespace, safe(c.backend))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingDetector) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
