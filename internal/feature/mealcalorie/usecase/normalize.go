// Package usecase はmealcalorieフィーチャーのビジネスロジックを実装します。
// 検出結果の正規化、カタログ照合と集計、説明文の生成、およびそれらをつなぐ推定パイプラインを含みます。
package usecase

import (
	"smartcal_backend/internal/feature/mealcalorie/domain/entity"
)

// DefaultConfidenceThreshold は検出を採用する最小信頼度のデフォルト値です。
const DefaultConfidenceThreshold = 0.35

// Normalize は生の検出結果をクラスキーに解決し、threshold未満の信頼度の検出を除外します。
// 入力順は保持し、重複排除は行いません。classNamesに存在しないクラスIDは空のキーになり、
// 後段のカタログ照合で除外されます。
func Normalize(raw []entity.RawDetection, classNames map[int]string, threshold float64) []entity.NormalizedDetection {
	out := make([]entity.NormalizedDetection, 0, len(raw))
	for _, d := range raw {
		// NaNや範囲外の値もここで落とす
		if !(d.Confidence >= threshold) || d.Confidence > 1 {
			continue
		}
		out = append(out, entity.NormalizedDetection{
			ClassKey:   classNames[d.ClassID],
			Confidence: d.Confidence,
		})
	}
	return out
}
