package di

import (
	"context"
	"log/slog"

	"smartcal_backend/internal/app/config"
	"smartcal_backend/internal/feature/mealcalorie/adapters/catalogdb"
	"smartcal_backend/internal/feature/mealcalorie/adapters/catalogfile"
	"smartcal_backend/internal/feature/mealcalorie/domain/catalog"
	"smartcal_backend/internal/platform/db"
)

// NewCatalog builds the nutrition catalog from the source selected by cfg.CatalogSource.
// The database source opens a connection with opener, loads every row once and closes it.
func NewCatalog(ctx context.Context, cfg config.Config, opener db.Opener) (*catalog.Catalog, error) {
	if cfg.CatalogSource == config.CatalogDB {
		gdb, err := opener(db.BuildDSN(cfg.DB))
		if err != nil {
			return nil, err
		}
		defer func() {
			if sqlDB, err := gdb.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}()
		cat, err := catalogdb.NewCatalogRepository(gdb).Load(ctx)
		if err != nil {
			return nil, err
		}
		slog.Info("データベースからカタログを読み込みました", "entries", cat.Len())
		return cat, nil
	}

	if cfg.CatalogFile != "" {
		cat, err := catalogfile.LoadFile(cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
		slog.Info("ファイルからカタログを読み込みました", "path", cfg.CatalogFile, "entries", cat.Len())
		return cat, nil
	}

	cat, err := catalogfile.Load()
	if err != nil {
		return nil, err
	}
	slog.Info("埋め込みカタログを読み込みました", "entries", cat.Len())
	return cat, nil
}
