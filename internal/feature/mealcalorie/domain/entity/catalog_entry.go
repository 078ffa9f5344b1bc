// Package entity はmealcalorieフィーチャーのドメインモデルを定義します。
package entity

// Cuisine は料理ジャンルを表す列挙タグです。
type Cuisine string

const (
	CuisineKorean   Cuisine = "Korean"
	CuisineJapanese Cuisine = "Japanese"
	CuisineChinese  Cuisine = "Chinese"
	CuisineWestern  Cuisine = "Western"
	CuisineDessert  Cuisine = "Dessert"
	CuisineDrink    Cuisine = "Drink"
	CuisineProduce  Cuisine = "Produce"
)

// Valid はタグが定義済みの値かどうかを返します。
func (c Cuisine) Valid() bool {
	switch c {
	case CuisineKorean, CuisineJapanese, CuisineChinese, CuisineWestern,
		CuisineDessert, CuisineDrink, CuisineProduce:
		return true
	}
	return false
}

// Category は料理の分類（ご飯・麺・スープなど）を表す列挙タグです。
type Category string

const (
	CategoryRice      Category = "rice"
	CategoryFriedRice Category = "fried_rice"
	CategoryRiceBowl  Category = "rice_bowl"
	CategoryNoodles   Category = "noodles"
	CategoryBunsik    Category = "bunsik"
	CategoryFried     Category = "fried"
	CategorySnack     Category = "snack"
	CategoryMeat      Category = "meat"
	CategoryStew      Category = "stew"
	CategorySoup      Category = "soup"
	CategoryGukbap    Category = "gukbap"
	CategoryTang      Category = "tang"
	CategoryFastFood  Category = "fast_food"
	CategoryDessert   Category = "dessert"
	CategorySoda      Category = "soda"
	CategoryCoffee    Category = "coffee"
	CategoryTea       Category = "tea"
	CategoryJuice     Category = "juice"
	CategoryFruit     Category = "fruit"
	CategoryVegetable Category = "vegetable"
)

var validCategories = map[Category]struct{}{
	CategoryRice: {}, CategoryFriedRice: {}, CategoryRiceBowl: {}, CategoryNoodles: {},
	CategoryBunsik: {}, CategoryFried: {}, CategorySnack: {}, CategoryMeat: {},
	CategoryStew: {}, CategorySoup: {}, CategoryGukbap: {}, CategoryTang: {},
	CategoryFastFood: {}, CategoryDessert: {}, CategorySoda: {}, CategoryCoffee: {},
	CategoryTea: {}, CategoryJuice: {}, CategoryFruit: {}, CategoryVegetable: {},
}

// Valid はタグが定義済みの値かどうかを返します。
func (c Category) Valid() bool {
	_, ok := validCategories[c]
	return ok
}

// CatalogEntry は栄養カタログの1エントリです。
// Keyは検出器のクラス名と一致する正規キーで、カタログ内で一意です。
type CatalogEntry struct {
	Key                string   // 正規クラスキー（例: "k_bibimbap"）
	DisplayName        string   // 表示名
	Calories           int      // 1人前の推定カロリー（kcal, 0以上）
	Cuisine            Cuisine  // 料理ジャンル
	Category           Category // 分類
	PortionDescription string   // 基準量の説明
	Tags               []string // 補助タグ（任意）
}
