// Package catalog は栄養カタログ（クラスキー→栄養情報の不変マップ）を提供します。
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"smartcal_backend/internal/feature/mealcalorie/domain"
	"smartcal_backend/internal/feature/mealcalorie/domain/entity"
)

// Catalog は起動時に一度だけ構築される読み取り専用の栄養カタログです。
// 構築後は変更されないため、複数のリクエストからロックなしで共有できます。
type Catalog struct {
	entries map[string]entity.CatalogEntry
	keys    []string
}

// New は定義リストを検証してCatalogを構築します。
// 重複キーや不正なエントリがある場合は、すべての問題を列挙した*domain.CatalogIntegrityErrorを返します。
func New(defs []entity.CatalogEntry) (*Catalog, error) {
	integrity := &domain.CatalogIntegrityError{}
	entries := make(map[string]entity.CatalogEntry, len(defs))
	reported := map[string]bool{}

	for i, d := range defs {
		if problems := validate(d); len(problems) > 0 {
			for _, p := range problems {
				integrity.Problems = append(integrity.Problems, fmt.Sprintf("entry %d (%q): %s", i, d.Key, p))
			}
			continue
		}
		if _, dup := entries[d.Key]; dup {
			if !reported[d.Key] {
				integrity.DuplicateKeys = append(integrity.DuplicateKeys, d.Key)
				reported[d.Key] = true
			}
			continue
		}
		d.Tags = append([]string(nil), d.Tags...)
		entries[d.Key] = d
	}

	if len(integrity.DuplicateKeys) > 0 || len(integrity.Problems) > 0 {
		return nil, integrity
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return &Catalog{entries: entries, keys: keys}, nil
}

// validate は1エントリの不変条件を検査し、違反内容を返します。
func validate(d entity.CatalogEntry) []string {
	var problems []string
	if strings.TrimSpace(d.Key) == "" {
		problems = append(problems, "key is empty")
	}
	if strings.TrimSpace(d.DisplayName) == "" {
		problems = append(problems, "display name is empty")
	}
	if d.Calories < 0 {
		problems = append(problems, fmt.Sprintf("calories must be >= 0, got %d", d.Calories))
	}
	if !d.Cuisine.Valid() {
		problems = append(problems, fmt.Sprintf("unknown cuisine %q", d.Cuisine))
	}
	if !d.Category.Valid() {
		problems = append(problems, fmt.Sprintf("unknown category %q", d.Category))
	}
	return problems
}

// Lookup はクラスキーに対応するエントリを返します。存在しない場合はfalseを返します。
func (c *Catalog) Lookup(classKey string) (entity.CatalogEntry, bool) {
	e, ok := c.entries[classKey]
	if !ok {
		return entity.CatalogEntry{}, false
	}
	e.Tags = append([]string(nil), e.Tags...)
	return e, true
}

// Len はエントリ数を返します。
func (c *Catalog) Len() int {
	return len(c.keys)
}

// Keys はすべてのクラスキーを昇順で返します。
func (c *Catalog) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Entries はすべてのエントリをキーの昇順で返します。
func (c *Catalog) Entries() []entity.CatalogEntry {
	out := make([]entity.CatalogEntry, 0, len(c.keys))
	for _, k := range c.keys {
		e, _ := c.Lookup(k)
		out = append(out, e)
	}
	return out
}
