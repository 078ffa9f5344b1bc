// Package catalogfile はYAML形式の栄養カタログ定義を読み込みます。
// 標準の定義はバイナリに埋め込まれています。
package catalogfile

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"smartcal_backend/internal/feature/mealcalorie/domain"
	"smartcal_backend/internal/feature/mealcalorie/domain/catalog"
	"smartcal_backend/internal/feature/mealcalorie/domain/entity"
)

//go:embed catalog.yaml
var embedded []byte

// entryDef はYAML上の1エントリです。
type entryDef struct {
	Key      string   `yaml:"key"`
	FoodName string   `yaml:"foodName"`
	Calories int      `yaml:"calories"`
	Cuisine  string   `yaml:"cuisine"`
	Category string   `yaml:"category"`
	Portion  string   `yaml:"portion"`
	Tags     []string `yaml:"tags,omitempty"`
}

type document struct {
	Entries []entryDef `yaml:"entries"`
}

// Definitions は埋め込みカタログ定義をエントリの列として返します。
func Definitions() ([]entity.CatalogEntry, error) {
	return Parse(embedded)
}

// Parse はYAMLドキュメントをエントリの列に変換します。値の検証はcatalog.Newが行います。
// 未知のフィールド（例: caloriesの代わりのkcal）はErrCatalogIntegrityとして拒否します。
func Parse(data []byte) ([]entity.CatalogEntry, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: failed to parse catalog definition: %w", domain.ErrCatalogIntegrity, err)
	}

	defs := make([]entity.CatalogEntry, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		defs = append(defs, entity.CatalogEntry{
			Key:                e.Key,
			DisplayName:        e.FoodName,
			Calories:           e.Calories,
			Cuisine:            entity.Cuisine(e.Cuisine),
			Category:           entity.Category(e.Category),
			PortionDescription: e.Portion,
			Tags:               e.Tags,
		})
	}
	return defs, nil
}

// Marshal はエントリの列をYAMLドキュメントに変換します。
func Marshal(entries []entity.CatalogEntry) ([]byte, error) {
	doc := document{Entries: make([]entryDef, 0, len(entries))}
	for _, e := range entries {
		doc.Entries = append(doc.Entries, entryDef{
			Key:      e.Key,
			FoodName: e.DisplayName,
			Calories: e.Calories,
			Cuisine:  string(e.Cuisine),
			Category: string(e.Category),
			Portion:  e.PortionDescription,
			Tags:     e.Tags,
		})
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog definition: %w", err)
	}
	return out, nil
}

// Load は埋め込み定義から検証済みのカタログを構築します。
func Load() (*catalog.Catalog, error) {
	defs, err := Definitions()
	if err != nil {
		return nil, err
	}
	return catalog.New(defs)
}

// ParseFile は指定パスのYAMLファイルをエントリの列に変換します。
func ParseFile(path string) ([]entity.CatalogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// LoadFile は指定パスのYAMLファイルから検証済みのカタログを構築します。
func LoadFile(path string) (*catalog.Catalog, error) {
	defs, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return catalog.New(defs)
}
