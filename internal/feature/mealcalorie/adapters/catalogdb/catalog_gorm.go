// Package catalogdb はデータベースの catalog_entries テーブルを栄養カタログのソースとして扱います。
package catalogdb

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smartcal_backend/internal/feature/mealcalorie/domain/catalog"
	"smartcal_backend/internal/feature/mealcalorie/domain/entity"
)

type catalogGorm struct {
	db *gorm.DB
}

// NewCatalogRepository はgormを使用したカタログリポジトリを生成します。
func NewCatalogRepository(db *gorm.DB) *catalogGorm {
	return &catalogGorm{db: db}
}

// CatalogEntryModel は catalog_entries テーブルの行です。
type CatalogEntryModel struct {
	ID       uint   `gorm:"primaryKey"`
	Key      string `gorm:"column:class_key;size:64;not null;uniqueIndex"`
	FoodName string `gorm:"size:128;not null"`
	Calories int    `gorm:"not null"`
	Cuisine  string `gorm:"size:32;not null"`
	Category string `gorm:"size:32;not null"`
	Portion  string `gorm:"size:64;not null"`

	Tags []string `gorm:"serializer:json"`
}

func (CatalogEntryModel) TableName() string {
	return "catalog_entries"
}

func toModel(e entity.CatalogEntry) CatalogEntryModel {
	return CatalogEntryModel{
		Key:      e.Key,
		FoodName: e.DisplayName,
		Calories: e.Calories,
		Cuisine:  string(e.Cuisine),
		Category: string(e.Category),
		Portion:  e.PortionDescription,
		Tags:     e.Tags,
	}
}

func toEntity(m CatalogEntryModel) entity.CatalogEntry {
	return entity.CatalogEntry{
		Key:                m.Key,
		DisplayName:        m.FoodName,
		Calories:           m.Calories,
		Cuisine:            entity.Cuisine(m.Cuisine),
		Category:           entity.Category(m.Category),
		PortionDescription: m.Portion,
		Tags:               m.Tags,
	}
}

// Migrate はテーブルを作成または更新します。
func (r *catalogGorm) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&CatalogEntryModel{})
}

// UpsertBatch はキーを基準にエントリを挿入または更新します。
func (r *catalogGorm) UpsertBatch(ctx context.Context, entries []entity.CatalogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	ms := make([]CatalogEntryModel, 0, len(entries))
	for _, e := range entries {
		ms = append(ms, toModel(e))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "class_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"food_name", "calories", "cuisine", "category", "portion", "tags"}),
	}).Create(&ms).Error
}

// FindAll は全エントリをキー順に返します。
func (r *catalogGorm) FindAll(ctx context.Context) ([]entity.CatalogEntry, error) {
	var rows []CatalogEntryModel
	if err := r.db.WithContext(ctx).Order("class_key").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.CatalogEntry, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

// Load はテーブルの全行から検証済みのカタログを構築します。
// 起動時に一度だけ呼ばれ、以降はメモリ上のカタログが使われます。
func (r *catalogGorm) Load(ctx context.Context) (*catalog.Catalog, error) {
	defs, err := r.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog entries: %w", err)
	}
	return catalog.New(defs)
}
