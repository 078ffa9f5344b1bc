package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"smartcal_backend/internal/feature/mealcalorie/domain/catalog"
	"smartcal_backend/internal/feature/mealcalorie/domain/entity"
)

// newTestCatalog はkimbapとcolaを含むテスト用カタログを生成します。
func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	c, err := catalog.New([]entity.CatalogEntry{
		{
			Key:                "kimbap",
			DisplayName:        "Kimbap roll",
			Calories:           320,
			Cuisine:            entity.CuisineKorean,
			Category:           entity.CategoryRice,
			PortionDescription: "1 roll",
		},
		{
			Key:                "cola",
			DisplayName:        "Cola",
			Calories:           140,
			Cuisine:            entity.CuisineDrink,
			Category:           entity.CategorySoda,
			PortionDescription: "355ml",
		},
	})
	require.NoError(t, err)
	return c
}

// testClassNames は検出器側のクラスID→クラス名の対応表です。
var testClassNames = map[int]string{0: "person", 7: "kimbap", 9: "cola"}
