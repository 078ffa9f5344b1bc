// catalogseed は埋め込みカタログ定義をデータベースの catalog_entries テーブルへ反映する一回限りのジョブです。
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"smartcal_backend/internal/feature/mealcalorie/adapters/catalogdb"
	"smartcal_backend/internal/feature/mealcalorie/adapters/catalogfile"
	"smartcal_backend/internal/feature/mealcalorie/domain/catalog"
	"smartcal_backend/internal/feature/mealcalorie/domain/entity"
	"smartcal_backend/internal/platform/cache"
	"smartcal_backend/internal/platform/db"
	"smartcal_backend/internal/platform/logging"
	infraredis "smartcal_backend/internal/platform/redis"
)

func main() {
	file := flag.String("file", "", "YAML catalog definition (default: embedded catalog)")
	purge := flag.String("purge-backend", "gemini", "detector backend whose cached detections are purged after seeding (empty to skip)")
	flag.Parse()

	_ = godotenv.Load()
	if err := logging.Setup(logging.LoadConfigFromEnv()); err != nil {
		slog.Error("invalid logging configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := seed(ctx, *file, *purge); err != nil {
		slog.Error("カタログの反映に失敗しました", "error", err)
		os.Exit(1)
	}
	slog.Info("seed ok")
}

func seed(ctx context.Context, file, purgeBackend string) error {
	defs, err := definitions(file)
	if err != nil {
		return err
	}
	// 反映前に検証する
	cat, err := catalog.New(defs)
	if err != nil {
		return err
	}

	gdb, err := db.OpenDB()
	if err != nil {
		return err
	}
	repo := catalogdb.NewCatalogRepository(gdb)
	if err := repo.Migrate(ctx); err != nil {
		return err
	}
	if err := repo.UpsertBatch(ctx, cat.Entries()); err != nil {
		return err
	}
	slog.Info("カタログを反映しました", "entries", cat.Len())

	// 語彙が変わると語彙制約付きバックエンドのキャッシュが古くなるため削除する
	redisCfg := infraredis.LoadConfigFromEnv()
	if purgeBackend == "" || !redisCfg.Enabled() {
		return nil
	}
	rdb, err := infraredis.NewRedisClient(ctx, redisCfg)
	if err != nil {
		slog.Warn("Redisに接続できないため、キャッシュ削除をスキップします", "error", err)
		return nil
	}
	defer func() { _ = rdb.Close() }()

	if err := cache.NewCachingDetector(rdb, 0, nil, "detections", purgeBackend).Purge(ctx); err != nil {
		slog.Warn("検出結果キャッシュの削除に失敗しました", "backend", purgeBackend, "error", err)
	}
	return nil
}

func definitions(file string) ([]entity.CatalogEntry, error) {
	if file == "" {
		return catalogfile.Definitions()
	}
	return catalogfile.ParseFile(file)
}
