package dto

// CatalogItem represents one catalog entry in GET /v1/catalog.
type CatalogItem struct {
	Key      string   `json:"key"`
	FoodName string   `json:"foodName"`
	Calories int      `json:"calories"`
	Cuisine  string   `json:"cuisine"`
	Category string   `json:"category"`
	Portion  string   `json:"portion"`
	Tags     []string `json:"tags"`
}
