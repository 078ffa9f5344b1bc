package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartcal_backend/internal/feature/mealcalorie/domain/entity"
)

// mockDetector はテスト用のDetectorモック実装です。
type mockDetector struct {
	detectFn    func(ctx context.Context, img entity.Image) (entity.DetectionBatch, error)
	detectCalls int
}

// Detect はモックのDetect関数を呼び出します。
func (m *mockDetector) Detect(ctx context.Context, img entity.Image) (entity.DetectionBatch, error) {
	m.detectCalls++
	if m.detectFn != nil {
		return m.detectFn(ctx, img)
	}
	return entity.DetectionBatch{}, nil
}

var (
	testImage = entity.Image{Data: []byte("jpeg-bytes"), MIMEType: "image/jpeg"}
	testBatch = entity.DetectionBatch{
		Detections: []entity.RawDetection{
			{ClassID: 7, Confidence: 0.8},
			{ClassID: 9, Confidence: 0.6, Region: &entity.Region{X1: 1, Y1: 2, X2: 3, Y2: 4}},
		},
		ClassNames: map[int]string{7: "kimbap", 9: "cola"},
	}
)

func testKey() string {
	sum := sha256.Sum256(testImage.Data)
	return "detections:http:" + hex.EncodeToString(sum[:])
}

// TestNewCachingDetector_Defaults はデフォルト値（TTLとnamespace）が正しく設定されることを検証します。
func TestNewCachingDetector_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		ttl               time.Duration
		namespace         string
		expectedTTL       time.Duration
		expectedNamespace string
	}{
		{
			name:              "default values when zero/empty",
			expectedTTL:       10 * time.Minute,
			expectedNamespace: "detections",
		},
		{
			name:              "negative ttl uses default",
			ttl:               -1 * time.Minute,
			expectedTTL:       10 * time.Minute,
			expectedNamespace: "detections",
		},
		{
			name:              "custom values preserved",
			ttl:               time.Hour,
			namespace:         "custom",
			expectedTTL:       time.Hour,
			expectedNamespace: "custom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := NewCachingDetector(nil, tt.ttl, &mockDetector{}, tt.namespace, "http")
			assert.Equal(t, tt.expectedTTL, d.ttl)
			assert.Equal(t, tt.expectedNamespace, d.namespace)
		})
	}
}

// TestCachingDetector_Detect_NilRedis はRedisがnilの場合にキャッシュをバイパスすることを検証します。
func TestCachingDetector_Detect_NilRedis(t *testing.T) {
	t.Parallel()

	inner := &mockDetector{detectFn: func(ctx context.Context, img entity.Image) (entity.DetectionBatch, error) {
		return testBatch, nil
	}}

	d := NewCachingDetector(nil, time.Minute, inner, "", "http")
	got, err := d.Detect(context.Background(), testImage)
	require.NoError(t, err)
	assert.Equal(t, testBatch, got)
	assert.Equal(t, 1, inner.detectCalls)
}

// TestCachingDetector_Detect_CacheHit はキャッシュヒット時に内部の検出器を呼ばないことを検証します。
func TestCachingDetector_Detect_CacheHit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cached, err := json.Marshal(testBatch)
	require.NoError(t, err)
	mock.ExpectGet(testKey()).SetVal(string(cached))

	inner := &mockDetector{}
	d := NewCachingDetector(rdb, time.Minute, inner, "", "http")

	got, err := d.Detect(context.Background(), testImage)
	require.NoError(t, err)
	assert.Equal(t, testBatch, got)
	assert.Equal(t, 0, inner.detectCalls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingDetector_Detect_CacheMiss はキャッシュミス時に検出結果を保存することを検証します。
func TestCachingDetector_Detect_CacheMiss(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedJSON, err := json.Marshal(testBatch)
	require.NoError(t, err)
	mock.ExpectGet(testKey()).RedisNil()
	mock.ExpectSet(testKey(), expectedJSON, time.Minute).SetVal("OK")

	inner := &mockDetector{detectFn: func(ctx context.Context, img entity.Image) (entity.DetectionBatch, error) {
		return testBatch, nil
	}}
	d := NewCachingDetector(rdb, time.Minute, inner, "", "http")

	got, err := d.Detect(context.Background(), testImage)
	require.NoError(t, err)
	assert.Equal(t, testBatch, got)
	assert.Equal(t, 1, inner.detectCalls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingDetector_Detect_SetFailureIsIgnored はキャッシュ保存の失敗がリクエストを失敗させないことを検証します。
func TestCachingDetector_Detect_SetFailureIsIgnored(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedJSON, err := json.Marshal(testBatch)
	require.NoError(t, err)
	mock.ExpectGet(testKey()).SetErr(errors.New("connection refused"))
	mock.ExpectSet(testKey(), expectedJSON, time.Minute).SetErr(errors.New("connection refused"))

	inner := &mockDetector{detectFn: func(ctx context.Context, img entity.Image) (entity.DetectionBatch, error) {
		return testBatch, nil
	}}
	d := NewCachingDetector(rdb, time.Minute, inner, "", "http")

	got, err := d.Detect(context.Background(), testImage)
	require.NoError(t, err)
	assert.Equal(t, testBatch, got)
}

// TestCachingDetector_Detect_InnerError は検出器のエラーが伝播され、キャッシュされないことを検証します。
func TestCachingDetector_Detect_InnerError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedErr := errors.New("backend down")
	mock.ExpectGet(testKey()).RedisNil()

	inner := &mockDetector{detectFn: func(ctx context.Context, img entity.Image) (entity.DetectionBatch, error) {
		return entity.DetectionBatch{}, expectedErr
	}}
	d := NewCachingDetector(rdb, time.Minute, inner, "", "http")

	_, err := d.Detect(context.Background(), testImage)
	assert.ErrorIs(t, err, expectedErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingDetector_Detect_CorruptedCache は破損したキャッシュを削除して検出器にフォールバックすることを検証します。
func TestCachingDetector_Detect_CorruptedCache(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedJSON, err := json.Marshal(testBatch)
	require.NoError(t, err)
	mock.ExpectGet(testKey()).SetVal("invalid json")
	mock.ExpectDel(testKey()).SetVal(1)
	mock.ExpectSet(testKey(), expectedJSON, time.Minute).SetVal("OK")

	inner := &mockDetector{detectFn: func(ctx context.Context, img entity.Image) (entity.DetectionBatch, error) {
		return testBatch, nil
	}}
	d := NewCachingDetector(rdb, time.Minute, inner, "", "http")

	got, err := d.Detect(context.Background(), testImage)
	require.NoError(t, err)
	assert.Equal(t, testBatch, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingDetector_Purge はバックエンド単位でキャッシュが削除されることを検証します。
func TestCachingDetector_Purge(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectScan(0, "detections:gemini:*", 200).SetVal([]string{"detections:gemini:aa", "detections:gemini:bb"}, 0)
	mock.ExpectDel("detections:gemini:aa", "detections:gemini:bb").SetVal(2)

	d := NewCachingDetector(rdb, time.Minute, &mockDetector{}, "", "gemini")
	require.NoError(t, d.Purge(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingDetector_Purge_NilRedis はRedisがnilの場合に何もしないことを検証します。
func TestCachingDetector_Purge_NilRedis(t *testing.T) {
	t.Parallel()

	d := NewCachingDetector(nil, time.Minute, &mockDetector{}, "", "gemini")
	assert.NoError(t, d.Purge(context.Background()))
}

// TestSafe はsafe関数がRedisキーで問題となる文字を正しくエスケープすることを検証します。
func TestSafe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"http", "http"},
		{"a b", "a_b"},
		{"key:value", "key_value"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, safe(tt.input))
		})
	}
}
