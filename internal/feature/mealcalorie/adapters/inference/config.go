// Package inference は外部の物体検出サービス（YOLO推論サーバー）を呼び出す検出バックエンドを提供します。
package inference

import (
	"os"
	"time"
)

const (
	// DefaultURL は推論サービスのデフォルトエンドポイントです。
	DefaultURL = "http://localhost:5000/predict"
	// DefaultTimeout は推論リクエスト全体のデフォルトタイムアウトです。
	DefaultTimeout = 30 * time.Second
)

// Config は推論サービスクライアントの設定です。
type Config struct {
	URL     string        // 推論エンドポイント（例: "http://yolo:5000/predict"）
	Timeout time.Duration // HTTPリクエストのタイムアウト
}

// LoadConfig は環境変数 INFERENCE_URL から推論サービスの設定を読み込みます。
// タイムアウトはデフォルト値になります。INFERENCE_TIMEOUT の解析と検証はアプリ設定側で行います。
func LoadConfig() Config {
	cfg := Config{URL: os.Getenv("INFERENCE_URL"), Timeout: DefaultTimeout}
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	return cfg
}
