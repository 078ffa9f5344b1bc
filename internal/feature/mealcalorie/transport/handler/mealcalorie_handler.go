// Package handler はmealcalorieフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"smartcal_backend/internal/feature/mealcalorie/domain"
	"smartcal_backend/internal/feature/mealcalorie/domain/entity"
	"smartcal_backend/internal/feature/mealcalorie/transport/http/dto"
	"smartcal_backend/internal/feature/mealcalorie/usecase"
	"smartcal_backend/internal/platform/http/middleware"
)

const (
	// HeaderDetectionsTotal は検出器が返した検出件数を示すレスポンスヘッダーです。
	HeaderDetectionsTotal = "X-Detections-Total"
	// HeaderDetectionsDropped はしきい値未満またはカタログ外で除外した件数を示すレスポンスヘッダーです。
	HeaderDetectionsDropped = "X-Detections-Dropped"
)

// EstimateUsecase はカロリー推定のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type EstimateUsecase interface {
	EstimateBase64(ctx context.Context, encoded string) (*usecase.Estimate, error)
	EstimateImage(ctx context.Context, data []byte) (*usecase.Estimate, error)
}

// CatalogLister はカタログ一覧を返すインターフェースです。
type CatalogLister interface {
	Entries() []entity.CatalogEntry
}

// MealCalorieHandler は食事画像のカロリー推定に関するHTTPリクエストを処理します。
type MealCalorieHandler struct {
	uc       EstimateUsecase
	catalog  CatalogLister
	maxBytes int64
}

// NewMealCalorieHandler はMealCalorieHandlerの新しいインスタンスを生成します。
// maxBytesはリクエストボディの上限で、0以下の場合はusecase.DefaultMaxImageSizeを基準にします。
func NewMealCalorieHandler(uc EstimateUsecase, catalog CatalogLister, maxBytes int64) *MealCalorieHandler {
	if maxBytes <= 0 {
		maxBytes = usecase.DefaultMaxImageSize
	}
	return &MealCalorieHandler{uc: uc, catalog: catalog, maxBytes: maxBytes}
}

// Estimate はbase64画像を受け取りカロリーを推定します。
//
// エンドポイント: POST /predict, POST /v1/meal/estimate
// Content-Type: application/json
func (h *MealCalorieHandler) Estimate(c *gin.Context) {
	// base64はおよそ4/3倍に膨らむため、JSONの余白を含めて上限を広げる
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes*4/3+1024)

	var req dto.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(c, domain.ErrImageTooLarge)
			return
		}
		slog.WarnContext(c.Request.Context(), "推定リクエストのバリデーションに失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "요청 본문이 올바른 JSON이 아닙니다"})
		return
	}

	est, err := h.uc.EstimateBase64(c.Request.Context(), req.Image)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeEstimate(c, est)
}

// EstimateUpload はアップロードされた画像ファイルからカロリーを推定します。
//
// エンドポイント: POST /v1/meal/estimate/upload
// Content-Type: multipart/form-data
// フィールド: image（画像ファイル）
func (h *MealCalorieHandler) EstimateUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1<<20)

	file, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(c, domain.ErrImageTooLarge)
			return
		}
		slog.WarnContext(c.Request.Context(), "画像ファイルの取得に失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "image 파일이 필요합니다"})
		return
	}
	if file.Size > h.maxBytes {
		h.writeError(c, domain.ErrImageTooLarge)
		return
	}

	f, err := file.Open()
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "画像ファイルのオープンに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "이미지를 읽지 못했습니다"})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("画像ファイルのクローズに失敗", "error", err)
		}
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "画像データの読み取りに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "이미지를 읽지 못했습니다"})
		return
	}

	est, err := h.uc.EstimateImage(c.Request.Context(), data)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeEstimate(c, est)
}

// ListCatalog は登録されている料理の一覧を返します。
//
// エンドポイント: GET /v1/catalog
func (h *MealCalorieHandler) ListCatalog(c *gin.Context) {
	entries := h.catalog.Entries()
	out := make([]dto.CatalogItem, 0, len(entries))
	for _, e := range entries {
		tags := e.Tags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, dto.CatalogItem{
			Key:      e.Key,
			FoodName: e.DisplayName,
			Calories: e.Calories,
			Cuisine:  string(e.Cuisine),
			Category: string(e.Category),
			Portion:  e.PortionDescription,
			Tags:     tags,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *MealCalorieHandler) writeEstimate(c *gin.Context, est *usecase.Estimate) {
	c.Header(HeaderDetectionsTotal, strconv.Itoa(est.Diagnostics.Raw))
	c.Header(HeaderDetectionsDropped, strconv.Itoa(est.Diagnostics.Dropped()))
	c.JSON(http.StatusOK, toEstimateResponse(est.Result))
}

// writeError はエラーの種類に応じたステータスコードとメッセージを返します。
func (h *MealCalorieHandler) writeError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "カロリー推定に失敗", "error", err, "status", status, "requestId", middleware.RequestIDFrom(ctx))
	} else {
		slog.WarnContext(ctx, "カロリー推定リクエストを拒否", "error", err, "status", status, "requestId", middleware.RequestIDFrom(ctx))
	}
	c.JSON(status, dto.ErrorResponse{Error: msg})
}

// errorStatus はエラーをステータスコードとクライアント向けメッセージに変換します。
// 詳細はwriteErrorでログに出し、レスポンスには含めません。
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrImageEmpty):
		return http.StatusBadRequest, "이미지가 비어 있습니다"
	case errors.Is(err, domain.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge, "이미지 크기가 너무 큽니다"
	case errors.Is(err, domain.ErrImageDecode):
		return http.StatusBadRequest, "이미지 디코딩 실패"
	case errors.Is(err, domain.ErrDetectionBackend):
		return http.StatusBadGateway, "음식 인식 중 오류"
	}
	return http.StatusInternalServerError, "서버 내부 오류"
}

func toEstimateResponse(r entity.AggregateResult) dto.EstimateResponse {
	items := make([]dto.FoodItemResponse, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, dto.FoodItemResponse{
			FoodName: it.DisplayName,
			Calories: it.Calories,
			Cuisine:  string(it.Cuisine),
			Category: string(it.Category),
			Portion:  it.PortionDescription,
			Conf:     it.Confidence,
		})
	}
	return dto.EstimateResponse{
		Items:         items,
		TotalCalories: r.TotalCalories,
		Note:          r.Note,
	}
}
