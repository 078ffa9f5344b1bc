// Package logging はアプリケーション全体で使うslogロガーを初期化します。
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config はロガーの設定です。
type Config struct {
	Format string // "json" または "text"
	Level  string // "debug", "info", "warn", "error"
}

// LoadConfigFromEnv は環境変数 LOG_FORMAT, LOG_LEVEL から設定を読み込みます。
func LoadConfigFromEnv() Config {
	return Config{
		Format: os.Getenv("LOG_FORMAT"),
		Level:  os.Getenv("LOG_LEVEL"),
	}
}

// ParseLevel はログレベル文字列を解析します。空文字はinfoとして扱います。
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// New は設定に従ってwへ出力するロガーを生成します。
func New(w io.Writer, cfg Config) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(cfg.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", cfg.Format)
}

// Setup は標準エラー出力へのロガーを生成し、slogのデフォルトに設定します。
func Setup(cfg Config) error {
	logger, err := New(os.Stderr, cfg)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}
