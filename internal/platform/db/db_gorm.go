// Package db はGORMによるPostgreSQL接続とマイグレーションを提供します。
package db

import (
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"recipe_backend/internal/platform/config"
)

const (
	connectTimeout = 60 * time.Second
	retryInterval  = 3 * time.Second
	slowQuery      = 200 * time.Millisecond

	// pgUniqueViolation はPostgreSQLの一意制約違反のSQLSTATEです。
	pgUniqueViolation = "23505"
)

// BuildDSN は設定からpgx形式（key=value）のDSNを組み立てます。
// 空の値は省略するため、パスワードなしのローカル接続にも使えます。
func BuildDSN(cfg config.DatabaseConfig) string {
	parts := []string{
		"host=" + cfg.Host,
		fmt.Sprintf("port=%d", cfg.Port),
		"user=" + cfg.User,
		"dbname=" + cfg.Name,
	}
	if cfg.Password != "" {
		parts = append(parts, "password="+cfg.Password)
	}
	if cfg.SSLMode != "" {
		parts = append(parts, "sslmode="+cfg.SSLMode)
	}
	return strings.Join(parts, " ")
}

// GormConfig はアプリケーション共通のGORM設定を返します。
// TranslateErrorによりドライバー固有の一意制約違反がgorm.ErrDuplicatedKeyに変換されます。
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(os.Stdout),
	}
}

// newGormLogger はWarn以上のSQLログをwへ出力します。
// 検索で見つからないことは通常の分岐のため、ErrRecordNotFoundはエラーとして記録しません。
func newGormLogger(w io.Writer) logger.Interface {
	return logger.New(log.New(w, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             slowQuery,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// Opener はDSNからDB接続を開く関数です。テストで差し替えます。
type Opener func(dsn string) (*gorm.DB, error)

// postgresOpener はPostgreSQLドライバーで接続を開きます。
func postgresOpener(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), GormConfig())
}

// OpenDB はDBへ接続します。起動直後のDBコンテナを待つため、最大60秒リトライします。
func OpenDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	return ConnectWithRetry(BuildDSN(cfg), connectTimeout, postgresOpener)
}

// ConnectWithRetry はtimeoutを過ぎるまでretryIntervalごとに接続を試みます。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("db connect failed, retrying", "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
}

// Migrate は渡されたモデルのテーブルを作成・更新します。
func Migrate(db *gorm.DB, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// IsUniqueViolation はerrが一意制約違反かどうかを判定します。
// TranslateError済みのエラーとpgconnのエラーの両方に対応します。
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
