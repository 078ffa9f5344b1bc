// Package domain はmealcalorieフィーチャーのドメインエラーを定義します。
package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrImageEmpty は画像データが空であることを示します。
	ErrImageEmpty = errors.New("image data is empty")

	// ErrImageTooLarge は画像データが上限サイズを超えていることを示します。
	ErrImageTooLarge = errors.New("image size exceeds maximum")

	// ErrImageDecode は画像データをデコードできなかったことを示します。
	// 部分的にデコードされた画像がパイプラインに渡ることはありません。
	ErrImageDecode = errors.New("image decode failed")

	// ErrDetectionBackend は検出バックエンドの実行に失敗したことを示します。
	ErrDetectionBackend = errors.New("detection backend failed")

	// ErrCatalogIntegrity はカタログ定義が不正であることを示します（起動時のみ）。
	ErrCatalogIntegrity = errors.New("catalog integrity violation")
)

// CatalogIntegrityError はカタログ構築時に見つかった問題をすべて保持します。
type CatalogIntegrityError struct {
	DuplicateKeys []string // 重複したキー（出現順）
	Problems      []string // エントリ単位の検証エラー
}

func (e *CatalogIntegrityError) Error() string {
	parts := make([]string, 0, 2)
	if len(e.DuplicateKeys) > 0 {
		parts = append(parts, fmt.Sprintf("duplicate keys: %s", strings.Join(e.DuplicateKeys, ", ")))
	}
	if len(e.Problems) > 0 {
		parts = append(parts, strings.Join(e.Problems, "; "))
	}
	return fmt.Sprintf("%s: %s", ErrCatalogIntegrity, strings.Join(parts, "; "))
}

// Unwrap はerrors.Is(err, ErrCatalogIntegrity)を成立させます。
func (e *CatalogIntegrityError) Unwrap() error {
	return ErrCatalogIntegrity
}
