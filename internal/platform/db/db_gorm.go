// Package db はPostgreSQLへのgorm接続を提供します。
package db

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	defaultConnectTimeout = 60 * time.Second
	retryInterval         = 3 * time.Second
)

// Config はデータベース接続設定です。
type Config struct {
	User         string
	Password     string
	Name         string
	Host         string
	Port         string
	SSLMode      string
	InstanceName string // Cloud SQLのインスタンス接続名。設定時はUnixソケットで接続します。
}

// LoadConfigFromEnv は環境変数からデータベース設定を読み込みます。
func LoadConfigFromEnv() Config {
	return Config{
		User:         os.Getenv("DB_USER"),
		Password:     os.Getenv("DB_PASSWORD"),
		Name:         os.Getenv("DB_NAME"),
		Host:         os.Getenv("DB_HOST"),
		Port:         os.Getenv("DB_PORT"),
		SSLMode:      os.Getenv("DB_SSLMODE"),
		InstanceName: os.Getenv("INSTANCE_CONNECTION_NAME"),
	}
}

// BuildDSN は接続設定からlibpq形式のDSN文字列を生成します。
// InstanceNameが設定されている場合はHost/Portより優先されます。
func BuildDSN(cfg Config) string {
	host := cfg.Host
	port := cfg.Port
	if cfg.InstanceName != "" {
		host = "/cloudsql/" + cfg.InstanceName
		port = ""
	}
	if host == "" {
		host = "localhost"
	}
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=%s",
		host, cfg.User, cfg.Password, cfg.Name, sslmode)
	if port != "" {
		dsn += " port=" + port
	}
	return dsn
}

// Opener はDSNからgorm接続を開く関数です。
type Opener func(dsn string) (*gorm.DB, error)

// OpenPostgres はpgxのdatabase/sqlドライバ経由でgorm接続を開きます。
func OpenPostgres(dsn string) (*gorm.DB, error) {
	pgxCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres dsn: %w", err)
	}
	sqlDB := stdlib.OpenDB(*pgxCfg)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
}

// ConnectWithRetry はtimeoutに達するまで一定間隔で接続を再試行します。
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %v: %w", timeout, err)
		}
		slog.Warn("DB接続に失敗しました。再試行します", "error", err)
		time.Sleep(retryInterval)
	}
}

// OpenDB は環境変数の設定でPostgreSQLに接続します。
func OpenDB() (*gorm.DB, error) {
	return ConnectWithRetry(BuildDSN(LoadConfigFromEnv()), defaultConnectTimeout, OpenPostgres)
}
