// Command maintenance はスキーマの移行と期限切れセッションの削除を1回実行します。
// cronなどから定期実行することを想定しています。
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"recipe_backend/internal/app/di"
	"recipe_backend/internal/platform/config"
	platformdb "recipe_backend/internal/platform/db"
	platformredis "recipe_backend/internal/platform/redis"
)

func main() {
	migrate := flag.Bool("migrate", true, "apply schema migrations")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall deadline")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := platformdb.OpenDB(cfg.Database)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	if *migrate {
		if err := platformdb.Migrate(db, di.Models()...); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
		slog.Info("migration ok")
	}

	if cfg.Redis.Enabled {
		// Redisのセッションは期限でキーが消えるため対象外
		if rdb, err := platformredis.NewRedisClient(ctx, cfg.Redis); err == nil {
			_ = rdb.Close()
			slog.Info("sessions are stored in Redis; nothing to clean")
			return
		}
	}

	n, err := di.NewSessionRepository(nil, db).DeleteExpired(ctx)
	if err != nil {
		slog.Error("session cleanup failed", "error", err)
		os.Exit(1)
	}
	slog.Info("session cleanup ok", "deleted", n)
}
