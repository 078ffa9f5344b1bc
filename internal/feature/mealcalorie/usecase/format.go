package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"smartcal_backend/internal/feature/mealcalorie/domain/entity"
)

// Locale は説明文の言語です。
type Locale string

const (
	LocaleKorean  Locale = "ko"
	LocaleEnglish Locale = "en"
)

// messages はロケールごとの定型文です。
type messages struct {
	noFood     string
	disclaimer string
	// line は表示名・カロリー・信頼度・ジャンル・分類・基準量の順に埋める書式です。
	line       string
	categories map[entity.Category]string
}

var localeMessages = map[Locale]messages{
	LocaleKorean: {
		noFood:     "모델이 명확한 음식 객체를 찾지 못했습니다. 음식이 화면 중앙에 잘 보이도록 다시 촬영해 주세요.",
		disclaimer: "모델 기반 자동 인식 결과입니다. 실제 음식 종류, 양, 조리법에 따라 칼로리는 달라질 수 있어요.",
		line:       "%s ≈ %d kcal (신뢰도 %s, 분류: %s / %s, 기준량: %s)",
		categories: map[entity.Category]string{
			entity.CategoryRice:      "밥",
			entity.CategoryFriedRice: "볶음밥",
			entity.CategoryRiceBowl:  "덮밥",
			entity.CategoryNoodles:   "면",
			entity.CategoryBunsik:    "분식",
			entity.CategoryFried:     "튀김",
			entity.CategorySnack:     "간식",
			entity.CategoryMeat:      "고기",
			entity.CategoryStew:      "찌개",
			entity.CategorySoup:      "국",
			entity.CategoryGukbap:    "국밥",
			entity.CategoryTang:      "탕",
			entity.CategoryFastFood:  "패스트푸드",
			entity.CategoryDessert:   "디저트",
			entity.CategorySoda:      "탄산음료",
			entity.CategoryCoffee:    "커피",
			entity.CategoryTea:       "티",
			entity.CategoryJuice:     "주스",
			entity.CategoryFruit:     "과일",
			entity.CategoryVegetable: "채소",
		},
	},
	LocaleEnglish: {
		noFood:     "No food item was clearly recognized. Please retake the photo with the meal centered in the frame.",
		disclaimer: "This is a model-estimated result. Actual calories may differ depending on the real dishes, amounts, and preparation.",
		line:       "%s ≈ %d kcal (confidence %s, category: %s / %s, portion: %s)",
	},
}

// Formatter は集計結果から表示用の説明文を生成します。出力は入力だけで決まります。
type Formatter struct {
	locale Locale
	msg    messages
}

// NewFormatter は指定ロケールのFormatterを生成します。未知のロケールは韓国語にフォールバックします。
func NewFormatter(locale Locale) *Formatter {
	msg, ok := localeMessages[locale]
	if !ok {
		locale = LocaleKorean
		msg = localeMessages[LocaleKorean]
	}
	return &Formatter{locale: locale, msg: msg}
}

// Locale は実際に使用されるロケールを返します。
func (f *Formatter) Locale() Locale {
	return f.locale
}

// NoFoodMessage は一致する料理がなかった場合の固定メッセージを返します。
func (f *Formatter) NoFoodMessage() string {
	return f.msg.noFood
}

// Format は免責文と、品目ごとに1行の説明を改行で連結して返します。
// 品目が空の場合は固定メッセージを返します。resultは変更しません。
func (f *Formatter) Format(result entity.AggregateResult) string {
	if len(result.Items) == 0 {
		return f.msg.noFood
	}

	var b strings.Builder
	b.WriteString(f.msg.disclaimer)
	for _, it := range result.Items {
		b.WriteByte('\n')
		fmt.Fprintf(&b, f.msg.line,
			it.DisplayName,
			it.Calories,
			strconv.FormatFloat(it.Confidence, 'f', -1, 64),
			it.Cuisine,
			f.categoryLabel(it.Category),
			it.PortionDescription,
		)
	}
	return b.String()
}

func (f *Formatter) categoryLabel(c entity.Category) string {
	if label, ok := f.msg.categories[c]; ok {
		return label
	}
	return string(c)
}
