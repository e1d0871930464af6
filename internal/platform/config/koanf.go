package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar は設定ファイルのパスを上書きする環境変数です。
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfigPaths は設定ファイルの探索順です。最初に見つかったものを使います。
var defaultConfigPaths = []string{"config.yaml", "config.yml"}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			Mode:         "release",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Host:        "localhost",
			Port:        5432,
			User:        "postgres",
			Name:        "recipes",
			SSLMode:     "disable",
			AutoMigrate: true,
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: 6379,
		},
		Auth: AuthConfig{
			TokenTTL:       30 * 24 * time.Hour,
			UserCacheTTL:   5 * time.Minute,
			RateLimitRPS:   5,
			RateLimitBurst: 20,
		},
		Storage: StorageConfig{
			Backend:        StorageLocal,
			MediaRoot:      "./media",
			MediaURL:       "/static/media",
			MaxUploadBytes: 10 << 20,
		},
		Log: LogConfig{Level: "info"},
	}
}

// envMappings は環境変数名（小文字）から設定パスへの対応表です。
// 表にない環境変数は無視します。
var envMappings = map[string]string{
	"port":                  "server.port",
	"gin_mode":              "server.mode",
	"server_read_timeout":   "server.read_timeout",
	"server_write_timeout":  "server.write_timeout",
	"cors_origins":          "server.cors_origins",
	"db_host":               "database.host",
	"db_port":               "database.port",
	"db_user":               "database.user",
	"db_password":           "database.password",
	"db_name":               "database.name",
	"db_sslmode":            "database.sslmode",
	"run_migrations":        "database.auto_migrate",
	"redis_enabled":         "redis.enabled",
	"redis_host":            "redis.host",
	"redis_port":            "redis.port",
	"redis_password":        "redis.password",
	"redis_db":              "redis.db",
	"jwt_secret":            "auth.jwt_secret",
	"token_ttl":             "auth.token_ttl",
	"user_cache_ttl":        "auth.user_cache_ttl",
	"auth_rate_limit_rps":   "auth.rate_limit_rps",
	"auth_rate_limit_burst": "auth.rate_limit_burst",
	"storage_backend":       "storage.backend",
	"media_root":            "storage.media_root",
	"media_url":             "storage.media_url",
	"s3_bucket":             "storage.s3_bucket",
	"aws_region":            "storage.s3_region",
	"s3_public_url":         "storage.s3_public_url",
	"max_upload_bytes":      "storage.max_upload_bytes",
	"log_level":             "log.level",
}

// sliceConfigPaths はカンマ区切り文字列をスライスとして扱う設定パスです。
var sliceConfigPaths = []string{"server.cors_origins"}

// Load はデフォルト値、設定ファイル、環境変数の順に読み込み、後のものほど優先します。
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := splitSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range defaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

// splitSliceFields は環境変数から来た "a,b" 形式の値をスライスに変換します。
// YAMLから読み込まれた値は既にスライスなのでそのままにします。
func splitSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := make([]string, 0)
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
