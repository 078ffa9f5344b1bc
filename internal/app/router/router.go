package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"smartcal_backend/internal/feature/mealcalorie/transport/handler"
	platformhandler "smartcal_backend/internal/platform/http/handler"
	"smartcal_backend/internal/platform/http/middleware"
	jwtmw "smartcal_backend/internal/platform/jwt"
)

// Options はルーティングに関わる設定です。
type Options struct {
	AllowOrigins []string       // CORSで許可するオリジン。"*"を含む場合はすべて許可
	JWTSecret    string         // 空でない場合、推定・カタログAPIにBearerトークンを要求
	Health       map[string]any // /healthz に含める追加情報
}

func NewRouter(meal *handler.MealCalorieHandler, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())
	r.Use(cors.New(corsConfig(opts.AllowOrigins)))

	// 認証不要
	// 導通確認用
	health := platformhandler.Health(opts.Health)
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)
	r.OPTIONS("/healthz", health)

	// JWT_SECRETが設定されている場合のみ認証必須
	api := r.Group("/")
	if opts.JWTSecret != "" {
		api.Use(jwtmw.AuthRequired(opts.JWTSecret))
	}
	{
		// 既存クライアント互換のエンドポイント
		api.POST("/predict", meal.Estimate)

		api.POST("/v1/meal/estimate", meal.Estimate)
		api.POST("/v1/meal/estimate/upload", meal.EstimateUpload)
		api.GET("/v1/catalog", meal.ListCatalog)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{middleware.HeaderRequestID, handler.HeaderDetectionsTotal, handler.HeaderDetectionsDropped},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
