package throttle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartcal_backend/internal/feature/mealcalorie/domain"
	"smartcal_backend/internal/feature/mealcalorie/domain/entity"
)

type mockLimiter struct {
	WaitFunc  func(ctx context.Context) error
	WaitCalls int
}

func (m *mockLimiter) Wait(ctx context.Context) error {
	m.WaitCalls++
	return m.WaitFunc(ctx)
}

type mockDetector struct {
	DetectFunc  func(ctx context.Context, img entity.Image) (entity.DetectionBatch, error)
	DetectCalls int
}

func (m *mockDetector) Detect(ctx context.Context, img entity.Image) (entity.DetectionBatch, error) {
	m.DetectCalls++
	return m.DetectFunc(ctx, img)
}

func TestRateLimitedDetector_Detect(t *testing.T) {
	t.Parallel()

	want := entity.DetectionBatch{
		Detections: []entity.RawDetection{{ClassID: 1, Confidence: 0.9}},
		ClassNames: map[int]string{1: "cola"},
	}
	limiter := &mockLimiter{WaitFunc: func(ctx context.Context) error { return nil }}
	next := &mockDetector{DetectFunc: func(ctx context.Context, img entity.Image) (entity.DetectionBatch, error) {
		return want, nil
	}}

	d := NewRateLimitedDetector(next, limiter)
	got, err := d.Detect(context.Background(), entity.Image{Data: []byte("img")})
	require.NoError(t, err)

	assert.Equal(t, want, got)
	assert.Equal(t, 1, limiter.WaitCalls)
	assert.Equal(t, 1, next.DetectCalls)
}

func TestRateLimitedDetector_WaitAborted(t *testing.T) {
	t.Parallel()

	limiter := &mockLimiter{WaitFunc: func(ctx context.Context) error { return context.Canceled }}
	next := &mockDetector{DetectFunc: func(ctx context.Context, img entity.Image) (entity.DetectionBatch, error) {
		t.Fatal("detector must not be called")
		return entity.DetectionBatch{}, nil
	}}

	d := NewRateLimitedDetector(next, limiter)
	_, err := d.Detect(context.Background(), entity.Image{})

	assert.ErrorIs(t, err, domain.ErrDetectionBackend)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, next.DetectCalls)
}
