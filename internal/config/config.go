// Package config はGatewayサービスの設定を環境変数から読み込む。
//
// 起動時にカレントディレクトリの .env を読み込み、その後に環境変数を参照する。
// 既に設定されている環境変数は .env の値で上書きされない。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// デフォルト値。
const (
	DefaultPort            = "5000"
	DefaultCORSOrigin      = "http://localhost:3000"
	DefaultEnvironment     = "development"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultBodyLimit       = 100 * 1024
	DefaultLogLevel        = "info"
)

// EnvProduction は本番環境を表す環境ラベル。
const EnvProduction = "production"

// Config はGatewayサービスの設定値。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string
	// CORSOrigin はクロスオリジンリクエストを許可するオリジン。
	CORSOrigin string
	// Environment はログに出力する実行環境ラベル。
	Environment string
	// ShutdownTimeout は処理中リクエストの完了を待つ最大時間。
	ShutdownTimeout time.Duration
	// BodyLimit はリクエストボディの最大バイト数。
	BodyLimit int64
	// LogLevel はログ出力レベル。
	LogLevel string
}

// IsProduction は本番環境で動作しているかを返す。
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Load は .env ファイルと環境変数から設定を読み込む。
// path が空の場合はカレントディレクトリの .env を読む。ファイルが存在しなくてもエラーにしない。
func Load(path string) (*Config, error) {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf(".envファイルの読み込みに失敗: %w", err)
	}
	return FromEnv()
}

// FromEnv は環境変数のみから設定を組み立てる。
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:            getEnvOr("PORT", DefaultPort),
		CORSOrigin:      getEnvOr("CORS_ORIGIN", DefaultCORSOrigin),
		Environment:     getEnvOr("NODE_ENV", DefaultEnvironment),
		ShutdownTimeout: DefaultShutdownTimeout,
		BodyLimit:       DefaultBodyLimit,
		LogLevel:        getEnvOr("LOG_LEVEL", DefaultLogLevel),
	}

	if _, err := strconv.ParseUint(cfg.Port, 10, 16); err != nil {
		return nil, fmt.Errorf("PORTが不正です: %q", cfg.Port)
	}

	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("SHUTDOWN_TIMEOUTが不正です: %q", v)
		}
		cfg.ShutdownTimeout = d
	}

	if v := os.Getenv("BODY_LIMIT"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("BODY_LIMITが不正です: %q", v)
		}
		cfg.BodyLimit = n
	}

	return cfg, nil
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
