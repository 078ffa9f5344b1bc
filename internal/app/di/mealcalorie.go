package di

import (
	"smartcal_backend/internal/app/config"
	"smartcal_backend/internal/feature/mealcalorie/adapters/imagecodec"
	"smartcal_backend/internal/feature/mealcalorie/domain/catalog"
	"smartcal_backend/internal/feature/mealcalorie/transport/handler"
	"smartcal_backend/internal/feature/mealcalorie/usecase"
)

// NewMealCalorieHandler assembles the estimate pipeline (image codec, detector, catalog) behind its HTTP handler.
func NewMealCalorieHandler(cfg config.Config, det usecase.Detector, cat *catalog.Catalog) *handler.MealCalorieHandler {
	uc := usecase.NewEstimateUsecase(imagecodec.New(cfg.MaxImageSide, cfg.MaxImagePixels), det, cat, usecase.Options{
		Threshold:    cfg.Threshold,
		MaxImageSize: cfg.MaxImageBytes,
		Locale:       cfg.Locale,
	})
	return handler.NewMealCalorieHandler(uc, cat, int64(cfg.MaxImageBytes))
}
