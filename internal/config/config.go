// Package config は環境変数と .env ファイルからアプリケーション設定を読み込む。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	// DriverSQLite はSQLiteバックエンドを表す。
	DriverSQLite = "sqlite"
	// DriverPostgres はPostgreSQLバックエンドを表す。
	DriverPostgres = "postgres"

	defaultJWTSecret = "dev-secret-key"
)

// Config はサーバー起動に必要な設定値。
type Config struct {
	// Port はHTTPサーバーの待ち受けポート。
	Port string
	// DBDriver は永続化バックエンド（sqlite / postgres）。
	DBDriver string
	// SQLitePath はSQLiteのデータベースファイルのパス。
	SQLitePath string
	// DatabaseURL はPostgreSQLの接続文字列。
	DatabaseURL string
	// JWTSecret はアクセストークンの署名鍵。
	JWTSecret string
	// AccessTokenTTL はアクセストークンの有効期間。
	AccessTokenTTL time.Duration
	// CORSOrigins は許可するオリジン。"*" は全オリジンを許可する。
	CORSOrigins []string
	// AdminUsername は初回ログイン時に作成する管理者のユーザー名。
	AdminUsername string
	// AdminPassword は初回ログイン時に作成する管理者のパスワード。
	AdminPassword string
	// FirebaseServerKey はプッシュ配信用のサーバーキー。空の場合は配信を無効にする。
	FirebaseServerKey string
	// LogLevel はログの出力レベル。
	LogLevel zerolog.Level
}

// Load は .env ファイルがあれば読み込んだうえで、環境変数から設定を組み立てる。
// .env が存在しない場合は環境変数と既定値だけを使う。
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf(".envファイルの読み込みに失敗: %w", err)
	}
	return FromEnv()
}

// FromEnv は現在の環境変数から設定を組み立てる。
func FromEnv() (*Config, error) {
	expireMinutes, err := getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60*24)
	if err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(strings.ToLower(getEnvOr("LOG_LEVEL", "info")))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVELが不正です: %w", err)
	}

	cfg := &Config{
		Port:              getEnvOr("PORT", "8000"),
		DBDriver:          strings.ToLower(getEnvOr("DB_DRIVER", DriverSQLite)),
		SQLitePath:        getEnvOr("SQLITE_PATH", "navigator.db"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		JWTSecret:         getEnvOr("JWT_SECRET", getEnvOr("SECRET_KEY", defaultJWTSecret)),
		AccessTokenTTL:    time.Duration(expireMinutes) * time.Minute,
		CORSOrigins:       splitList(getEnvOr("CORS_ORIGINS", "*")),
		AdminUsername:     getEnvOr("ADMIN_USERNAME", "admin"),
		AdminPassword:     getEnvOr("ADMIN_PASSWORD", "admin123"),
		FirebaseServerKey: os.Getenv("FIREBASE_SERVER_KEY"),
		LogLevel:          level,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate は設定値の組み合わせが起動可能なものか検証する。
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATHが空です")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DB_DRIVER=postgres の場合はDATABASE_URLが必要です")
		}
	default:
		return fmt.Errorf("未対応のDB_DRIVERです: %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRETが空です")
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("ACCESS_TOKEN_EXPIRE_MINUTESは正の値で指定してください")
	}
	return nil
}

// UsesDefaultSecret は開発用の署名鍵のまま起動しているかを返す。
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%sは整数で指定してください: %w", key, err)
	}
	return n, nil
}

// splitList はカンマ区切りの値を空要素を除いて分割する。
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
