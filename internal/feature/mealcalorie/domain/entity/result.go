package entity

// MatchedItem はカタログに一致した1件の検出結果です。
type MatchedItem struct {
	DisplayName        string
	Calories           int
	Cuisine            Cuisine
	Category           Category
	PortionDescription string
	Confidence         float64 // 小数点以下3桁に丸めた信頼度
}

// AggregateResult は1リクエスト分の集計結果です。
// Itemsは検出順で、同一料理の複数検出もそれぞれ1件として含みます。
type AggregateResult struct {
	Items         []MatchedItem
	TotalCalories int
	Note          string
}

// Diagnostics は結果に含まれなかった検出の件数です。レスポンス本体には含めません。
type Diagnostics struct {
	Raw            int // 検出器が返した件数
	BelowThreshold int // しきい値未満で除外した件数
	Unmatched      int // カタログに存在せず除外した件数
}

// Dropped は除外された検出の合計件数を返します。
func (d Diagnostics) Dropped() int {
	return d.BelowThreshold + d.Unmatched
}
