package usecase

import (
	"math"

	"smartcal_backend/internal/feature/mealcalorie/domain/entity"
)

// confidencePrecision は表示用に丸める信頼度の小数桁数に対応する倍率です。
const confidencePrecision = 1000

// CatalogLookup はクラスキーから栄養情報を引くカタログのインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type CatalogLookup interface {
	Lookup(classKey string) (entity.CatalogEntry, bool)
}

// Match は正規化済みの検出を検出順にカタログと照合し、集計結果を返します。
// カタログに存在しないクラスは黙って除外します。同じ料理が複数検出された場合はそれぞれ別の品目として数えます。
// 一致が1件もない場合もエラーにはならず、空の品目・合計0・固定メッセージの結果になります。
func Match(detections []entity.NormalizedDetection, catalog CatalogLookup, f *Formatter) entity.AggregateResult {
	items := make([]entity.MatchedItem, 0, len(detections))
	total := 0
	for _, d := range detections {
		e, ok := catalog.Lookup(d.ClassKey)
		if !ok {
			continue
		}
		items = append(items, entity.MatchedItem{
			DisplayName:        e.DisplayName,
			Calories:           e.Calories,
			Cuisine:            e.Cuisine,
			Category:           e.Category,
			PortionDescription: e.PortionDescription,
			Confidence:         RoundConfidence(d.Confidence),
		})
		total += e.Calories
	}

	result := entity.AggregateResult{Items: items, TotalCalories: total}
	result.Note = f.Format(result)
	return result
}

// RoundConfidence は信頼度を小数点以下3桁に丸めます。
func RoundConfidence(c float64) float64 {
	return math.Round(c*confidencePrecision) / confidencePrecision
}
