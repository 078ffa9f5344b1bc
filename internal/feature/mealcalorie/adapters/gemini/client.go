// Package gemini はGoogle Gemini APIのマルチモーダル入力を使用した検出バックエンドを提供します。
// モデルにはカタログのクラスキー一覧を提示し、その語彙の中から画像内の料理を選ばせます。
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"smartcal_backend/internal/feature/mealcalorie/domain"
	"smartcal_backend/internal/feature/mealcalorie/domain/entity"
	"smartcal_backend/internal/feature/mealcalorie/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
	// promptTemplate は検出プロンプトのテンプレートです。
	promptTemplate = "You are a food detector. List every distinct food or drink portion visible in the image. " +
		"Use only labels from this list: %s. " +
		`Answer with a JSON array of objects {"label": string, "confidence": number between 0 and 1}, ` +
		"one object per visible portion. Answer [] if no listed item is visible."
)

// contentGenerator はgenai.Modelsのうち本アダプタが使うメソッドです。
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// label はモデルが返すJSON配列の要素です。
type label struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// GeminiFoodDetector はGoogle Gemini APIを使用して画像内の料理を検出します。
type GeminiFoodDetector struct {
	models     contentGenerator
	model      string
	vocabulary []string
	index      map[string]int
}

// GeminiFoodDetectorがDetectorを実装していることをコンパイル時に検証します。
var _ usecase.Detector = (*GeminiFoodDetector)(nil)

// NewGeminiFoodDetector はGeminiFoodDetectorの新しいインスタンスを生成します。
// apiKeyが空の場合はADCと環境変数 GOOGLE_GENAI_USE_VERTEXAI, GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION を使用します。
func NewGeminiFoodDetector(ctx context.Context, apiKey, model string, vocabulary []string) (*GeminiFoodDetector, error) {
	var cc *genai.ClientConfig
	if apiKey != "" {
		cc = &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return newDetector(client.Models, model, vocabulary), nil
}

func newDetector(models contentGenerator, model string, vocabulary []string) *GeminiFoodDetector {
	if model == "" {
		model = DefaultModel
	}
	index := make(map[string]int, len(vocabulary))
	for i, v := range vocabulary {
		index[v] = i
	}
	return &GeminiFoodDetector{
		models:     models,
		model:      model,
		vocabulary: append([]string(nil), vocabulary...),
		index:      index,
	}
}

// Detect は画像とプロンプトをGeminiに送り、カタログ語彙に沿った検出結果を返します。
func (g *GeminiFoodDetector) Detect(ctx context.Context, img entity.Image) (entity.DetectionBatch, error) {
	mime := img.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(img.Data, mime),
			genai.NewPartFromText(fmt.Sprintf(promptTemplate, strings.Join(g.vocabulary, ", "))),
		}, genai.RoleUser),
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return entity.DetectionBatch{}, fmt.Errorf("%w: gemini API request failed: %w", domain.ErrDetectionBackend, err)
	}

	return g.parse(resp.Text())
}

// parse はモデルの応答テキストを検出結果に変換します。
// クラスIDは語彙のインデックスで、語彙外のラベルには語彙の後ろに続くIDを割り当てます。
func (g *GeminiFoodDetector) parse(text string) (entity.DetectionBatch, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var labels []label
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &labels); err != nil {
		return entity.DetectionBatch{}, fmt.Errorf("%w: unexpected gemini response: %w", domain.ErrDetectionBackend, err)
	}

	batch := entity.DetectionBatch{
		Detections: make([]entity.RawDetection, 0, len(labels)),
		ClassNames: make(map[int]string, len(g.vocabulary)),
	}
	for i, v := range g.vocabulary {
		batch.ClassNames[i] = v
	}
	extra := map[string]int{}

	for _, l := range labels {
		key := strings.TrimSpace(l.Label)
		id, ok := g.index[key]
		if !ok {
			if id, ok = extra[key]; !ok {
				id = len(g.vocabulary) + len(extra)
				extra[key] = id
				batch.ClassNames[id] = key
			}
		}
		batch.Detections = append(batch.Detections, entity.RawDetection{ClassID: id, Confidence: l.Confidence})
	}
	return batch, nil
}
