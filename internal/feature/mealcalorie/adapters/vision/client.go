// Package vision はGoogle Cloud Vision APIの物体検出（OBJECT_LOCALIZATION）を使用した検出バックエンドを提供します。
package vision

import (
	"context"
	"fmt"
	"strings"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"smartcal_backend/internal/feature/mealcalorie/domain"
	"smartcal_backend/internal/feature/mealcalorie/domain/entity"
	"smartcal_backend/internal/feature/mealcalorie/usecase"
)

// VisionObjectDetector はGoogle Cloud Vision APIを使用して画像内の物体を検出します。
type VisionObjectDetector struct {
	client *gvision.ImageAnnotatorClient
}

// VisionObjectDetectorがDetectorを実装していることをコンパイル時に検証します。
var _ usecase.Detector = (*VisionObjectDetector)(nil)

// NewVisionObjectDetector はADCを使用してVisionObjectDetectorの新しいインスタンスを生成します。
func NewVisionObjectDetector(ctx context.Context) (*VisionObjectDetector, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &VisionObjectDetector{client: client}, nil
}

// Close はVision APIクライアントを解放します。
func (v *VisionObjectDetector) Close() error {
	return v.client.Close()
}

// Detect は画像バイト列から物体を検出します。
func (v *VisionObjectDetector) Detect(ctx context.Context, img entity.Image) (entity.DetectionBatch, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: img.Data},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_OBJECT_LOCALIZATION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return entity.DetectionBatch{}, fmt.Errorf("%w: vision API request failed: %w", domain.ErrDetectionBackend, err)
	}

	if len(resp.Responses) == 0 {
		return toDetectionBatch(nil), nil
	}

	if resp.Responses[0].Error != nil {
		return entity.DetectionBatch{}, fmt.Errorf("%w: vision API error: %s", domain.ErrDetectionBackend, resp.Responses[0].Error.Message)
	}

	return toDetectionBatch(resp.Responses[0].LocalizedObjectAnnotations), nil
}

// toDetectionBatch はVision APIの検出結果を変換します。
// Vision APIはクラスIDを持たないため、正規化した物体名に出現順でIDを割り当てます。
func toDetectionBatch(objects []*visionpb.LocalizedObjectAnnotation) entity.DetectionBatch {
	batch := entity.DetectionBatch{
		Detections: make([]entity.RawDetection, 0, len(objects)),
		ClassNames: map[int]string{},
	}
	ids := map[string]int{}

	for _, o := range objects {
		name := ClassKey(o.GetName())
		id, ok := ids[name]
		if !ok {
			id = len(ids)
			ids[name] = id
			batch.ClassNames[id] = name
		}
		batch.Detections = append(batch.Detections, entity.RawDetection{
			ClassID:    id,
			Confidence: float64(o.GetScore()),
			Region:     regionOf(o.GetBoundingPoly()),
		})
	}
	return batch
}

// ClassKey はVision APIの物体名をカタログのクラスキー形式（小文字）に正規化します。
func ClassKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// regionOf は正規化座標の多角形から外接矩形を求めます。
func regionOf(poly *visionpb.BoundingPoly) *entity.Region {
	vs := poly.GetNormalizedVertices()
	if len(vs) == 0 {
		return nil
	}
	r := &entity.Region{
		X1: float64(vs[0].GetX()), Y1: float64(vs[0].GetY()),
		X2: float64(vs[0].GetX()), Y2: float64(vs[0].GetY()),
		Normalized: true,
	}
	for _, v := range vs[1:] {
		x, y := float64(v.GetX()), float64(v.GetY())
		r.X1 = min(r.X1, x)
		r.Y1 = min(r.Y1, y)
		r.X2 = max(r.X2, x)
		r.Y2 = max(r.Y2, y)
	}
	return r
}
