package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"

	"smartcal_backend/internal/feature/mealcalorie/domain"
	"smartcal_backend/internal/feature/mealcalorie/domain/entity"
	"smartcal_backend/internal/feature/mealcalorie/usecase"
)

// maxErrorBody はエラー応答から読み取る本文の最大バイト数です。
const maxErrorBody = 512

// predictResponse は推論サービスのレスポンスボディです。
type predictResponse struct {
	Names      map[int]string `json:"names"`
	Detections []struct {
		ClassID    int       `json:"class_id"`
		Confidence float64   `json:"confidence"`
		Box        []float64 `json:"box,omitempty"`
	} `json:"detections"`
}

// Detector は画像をmultipartで推論サービスに送り、検出結果を受け取ります。
type Detector struct {
	cfg    Config
	client *http.Client
}

// DetectorがDetectorインターフェースを実装していることをコンパイル時に検証します。
var _ usecase.Detector = (*Detector)(nil)

// NewDetector は指定された設定とHTTPクライアントでDetectorの新しいインスタンスを生成します。
func NewDetector(cfg Config, client *http.Client) *Detector {
	return &Detector{cfg: cfg, client: client}
}

// Detect は画像を推論サービスに送信し、検出結果とクラス名の対応表を返します。
func (d *Detector) Detect(ctx context.Context, img entity.Image) (entity.DetectionBatch, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return entity.DetectionBatch{}, fmt.Errorf("%w: create form file: %w", domain.ErrDetectionBackend, err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return entity.DetectionBatch{}, fmt.Errorf("%w: write image: %w", domain.ErrDetectionBackend, err)
	}
	if err := writer.Close(); err != nil {
		return entity.DetectionBatch{}, fmt.Errorf("%w: close multipart: %w", domain.ErrDetectionBackend, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.URL, body)
	if err != nil {
		return entity.DetectionBatch{}, fmt.Errorf("%w: build request: %w", domain.ErrDetectionBackend, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	res, err := d.client.Do(req)
	if err != nil {
		return entity.DetectionBatch{}, fmt.Errorf("%w: %w", domain.ErrDetectionBackend, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return entity.DetectionBatch{}, fmt.Errorf("%w: inference http %d: %s", domain.ErrDetectionBackend, res.StatusCode, bytes.TrimSpace(msg))
	}

	var out predictResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return entity.DetectionBatch{}, fmt.Errorf("%w: decode response: %w", domain.ErrDetectionBackend, err)
	}

	batch := entity.DetectionBatch{
		Detections: make([]entity.RawDetection, 0, len(out.Detections)),
		ClassNames: out.Names,
	}
	for _, det := range out.Detections {
		raw := entity.RawDetection{ClassID: det.ClassID, Confidence: det.Confidence}
		if len(det.Box) == 4 {
			raw.Region = &entity.Region{X1: det.Box[0], Y1: det.Box[1], X2: det.Box[2], Y2: det.Box[3]}
		}
		batch.Detections = append(batch.Detections, raw)
	}
	return batch, nil
}

// CheckHealth は推論サービスの疎通を確認します。
func (d *Detector) CheckHealth(ctx context.Context) error {
	base, err := url.Parse(d.cfg.URL)
	if err != nil {
		return err
	}
	healthURL := base.ResolveReference(&url.URL{Path: "/health"})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL.String(), nil)
	if err != nil {
		return err
	}
	res, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("inference service unhealthy: %d", res.StatusCode)
	}
	return nil
}
