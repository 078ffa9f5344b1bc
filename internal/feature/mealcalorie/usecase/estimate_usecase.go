package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"smartcal_backend/internal/feature/mealcalorie/domain"
	"smartcal_backend/internal/feature/mealcalorie/domain/entity"
)

// DefaultMaxImageSize は画像アップロードの最大サイズ（10MB）です。
const DefaultMaxImageSize = 10 * 1024 * 1024

// ImageDecoder は転送エンコーディングを解いて検出器向けの画像を準備するインターフェースです。
// 失敗時はdomain.ErrImageDecodeをラップしたエラーを返します。
type ImageDecoder interface {
	// DecodeBase64 はbase64文字列（data URIを含む）を画像バイト列に変換します。
	DecodeBase64(encoded string) ([]byte, error)
	// Decode は画像バイト列を検証・縮小し、検出器に渡せる形に変換します。
	Decode(data []byte) (entity.Image, error)
}

// Detector は画像から物体を検出するバックエンドのインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type Detector interface {
	// Detect は画像から検出結果とクラスID→クラス名の対応表を返します。
	Detect(ctx context.Context, img entity.Image) (entity.DetectionBatch, error)
}

// Options は推定パイプラインの調整値です。
type Options struct {
	Threshold    float64 // 採用する最小信頼度
	MaxImageSize int     // 画像バイト列の最大サイズ
	Locale       Locale  // 説明文のロケール
}

// Estimate は推定結果と、結果から除外された検出の内訳です。
type Estimate struct {
	Result      entity.AggregateResult
	Diagnostics entity.Diagnostics
}

// estimateUsecase は画像→検出→正規化→照合→説明文の推定パイプラインを提供します。
type estimateUsecase struct {
	decoder   ImageDecoder
	detector  Detector
	catalog   CatalogLookup
	formatter *Formatter
	threshold float64
	maxSize   int
}

// NewEstimateUsecase はestimateUsecaseの新しいインスタンスを生成します。
// MaxImageSizeが0以下の場合はDefaultMaxImageSizeを使用します。
func NewEstimateUsecase(dec ImageDecoder, det Detector, cat CatalogLookup, opts Options) *estimateUsecase {
	if opts.MaxImageSize <= 0 {
		opts.MaxImageSize = DefaultMaxImageSize
	}
	return &estimateUsecase{
		decoder:   dec,
		detector:  det,
		catalog:   cat,
		formatter: NewFormatter(opts.Locale),
		threshold: opts.Threshold,
		maxSize:   opts.MaxImageSize,
	}
}

// EstimateBase64 はbase64エンコードされた画像からカロリーを推定します。
func (u *estimateUsecase) EstimateBase64(ctx context.Context, encoded string) (*Estimate, error) {
	if encoded == "" {
		return nil, domain.ErrImageEmpty
	}
	data, err := u.decoder.DecodeBase64(encoded)
	if err != nil {
		return nil, asDecodeError(err)
	}
	return u.EstimateImage(ctx, data)
}

// EstimateImage は画像バイト列からカロリーを推定します。
func (u *estimateUsecase) EstimateImage(ctx context.Context, data []byte) (*Estimate, error) {
	if len(data) == 0 {
		return nil, domain.ErrImageEmpty
	}
	if len(data) > u.maxSize {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", domain.ErrImageTooLarge, len(data), u.maxSize)
	}

	img, err := u.decoder.Decode(data)
	if err != nil {
		return nil, asDecodeError(err)
	}

	batch, err := u.detector.Detect(ctx, img)
	if err != nil {
		if errors.Is(err, domain.ErrDetectionBackend) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrDetectionBackend, err)
	}

	normalized := Normalize(batch.Detections, batch.ClassNames, u.threshold)
	result := Match(normalized, u.catalog, u.formatter)

	diag := entity.Diagnostics{
		Raw:            len(batch.Detections),
		BelowThreshold: len(batch.Detections) - len(normalized),
		Unmatched:      len(normalized) - len(result.Items),
	}
	slog.InfoContext(ctx, "カロリー推定完了",
		"detections", diag.Raw,
		"below_threshold", diag.BelowThreshold,
		"unmatched", diag.Unmatched,
		"matched", len(result.Items),
		"total_calories", result.TotalCalories,
	)

	return &Estimate{Result: result, Diagnostics: diag}, nil
}

// NoFoodMessage は一致する料理がなかった場合の固定メッセージを返します。
func (u *estimateUsecase) NoFoodMessage() string {
	return u.formatter.NoFoodMessage()
}

func asDecodeError(err error) error {
	if errors.Is(err, domain.ErrImageDecode) || errors.Is(err, domain.ErrImageEmpty) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrImageDecode, err)
}
