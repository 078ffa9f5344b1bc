package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"smartcal_backend/internal/app/config"
	"smartcal_backend/internal/app/di"
	"smartcal_backend/internal/app/router"
	"smartcal_backend/internal/platform/db"
	"smartcal_backend/internal/platform/logging"
	infraredis "smartcal_backend/internal/platform/redis"
)

func main() {
	if err := run(); err != nil {
		slog.Error("サーバーを終了します", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// .env はローカル開発用。存在しなくてもよい
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logging.Setup(cfg.Logging); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// カタログ（不正な定義は起動時に失敗させる）
	cat, err := di.NewCatalog(ctx, cfg, func(dsn string) (*gorm.DB, error) {
		return db.ConnectWithRetry(dsn, 60*time.Second, db.OpenPostgres)
	})
	if err != nil {
		return err
	}

	// Redis
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
			slog.Warn("Redisに接続できないため、キャッシュなしで起動します", "error", err)
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("Failed to close Redis client", "error", err)
				}
			}()
		}
	}

	// 検出バックエンド
	base, closer, err := di.NewBaseDetector(ctx, cfg, cat.Keys())
	if err != nil {
		return err
	}
	defer func() {
		if err := closer.Close(); err != nil {
			slog.Warn("検出バックエンドのクローズに失敗", "error", err)
		}
	}()
	detector := di.DecorateDetector(base, cfg, rdb)

	// Handler / ルータ生成
	mealH := di.NewMealCalorieHandler(cfg, detector, cat)
	r := router.NewRouter(mealH, router.Options{
		AllowOrigins: cfg.CORSAllowOrigins,
		JWTSecret:    cfg.JWTSecret,
		Health: map[string]any{
			"catalogEntries": cat.Len(),
			"detector":       cfg.DetectorBackend,
		},
	})

	if !cfg.AuthEnabled() {
		slog.Warn("JWT_SECRET is not set. Estimate endpoints are public.")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("サーバーを起動しました", "addr", srv.Addr, "detector", cfg.DetectorBackend, "catalog_entries", cat.Len(), "locale", cfg.Locale)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("シャットダウンを開始します")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
