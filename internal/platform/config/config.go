// Package config はアプリケーション設定の定義と読み込みを提供します。
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config はプロセス全体の設定です。
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Auth     AuthConfig     `koanf:"auth"`
	Storage  StorageConfig  `koanf:"storage"`
	Log      LogConfig      `koanf:"log"`
}

// ServerConfig はHTTPサーバーの設定です。
type ServerConfig struct {
	Port         int           `koanf:"port"`
	Mode         string        `koanf:"mode"` // gin mode: debug, release, test
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	CORSOrigins  []string      `koanf:"cors_origins"` // 空の場合CORSは無効
}

// Addr はListen用のアドレスを返します。
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// DatabaseConfig はPostgreSQL接続の設定です。
type DatabaseConfig struct {
	Host        string `koanf:"host"`
	Port        int    `koanf:"port"`
	User        string `koanf:"user"`
	Password    string `koanf:"password"`
	Name        string `koanf:"name"`
	SSLMode     string `koanf:"sslmode"`
	AutoMigrate bool   `koanf:"auto_migrate"`
}

// RedisConfig はRedis接続の設定です。
// Enabledがfalseの場合、セッションはDBに保存されユーザーキャッシュは無効になります。
type RedisConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// Addr はhost:port形式のアドレスを返します。
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AuthConfig はトークン発行と認証エンドポイントの設定です。
type AuthConfig struct {
	JWTSecret      string        `koanf:"jwt_secret"`
	TokenTTL       time.Duration `koanf:"token_ttl"`
	UserCacheTTL   time.Duration `koanf:"user_cache_ttl"`
	RateLimitRPS   float64       `koanf:"rate_limit_rps"` // 0で無効
	RateLimitBurst int           `koanf:"rate_limit_burst"`
}

// Storage backends.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// StorageConfig はレシピ画像の保存先の設定です。
type StorageConfig struct {
	Backend        string `koanf:"backend"`
	MediaRoot      string `koanf:"media_root"`
	MediaURL       string `koanf:"media_url"`
	S3Bucket       string `koanf:"s3_bucket"`
	S3Region       string `koanf:"s3_region"`
	S3PublicURL    string `koanf:"s3_public_url"`
	MaxUploadBytes int64  `koanf:"max_upload_bytes"`
}

// LogConfig はslogの設定です。
type LogConfig struct {
	Level string `koanf:"level"`
}

// Validate は起動できない設定を検出します。
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required (set JWT_SECRET)"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	switch c.Storage.Backend {
	case StorageLocal:
		if c.Storage.MediaRoot == "" {
			errs = append(errs, errors.New("storage.media_root is required for the local backend"))
		}
	case StorageS3:
		if c.Storage.S3Bucket == "" {
			errs = append(errs, errors.New("storage.s3_bucket is required for the s3 backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend must be %q or %q, got %q", StorageLocal, StorageS3, c.Storage.Backend))
	}
	if c.Storage.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("storage.max_upload_bytes must be positive"))
	}
	return errors.Join(errs...)
}
