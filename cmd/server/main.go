package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"

	"recipe_backend/internal/app/di"
	"recipe_backend/internal/app/router"
	authadapters "recipe_backend/internal/feature/auth/adapters"
	authhandler "recipe_backend/internal/feature/auth/transport/handler"
	authusecase "recipe_backend/internal/feature/auth/usecase"
	recipeadapters "recipe_backend/internal/feature/recipe/adapters"
	"recipe_backend/internal/feature/recipe/domain/entity"
	recipehandler "recipe_backend/internal/feature/recipe/transport/handler"
	recipeusecase "recipe_backend/internal/feature/recipe/usecase"
	"recipe_backend/internal/platform/cache"
	"recipe_backend/internal/platform/config"
	platformdb "recipe_backend/internal/platform/db"
	jwtmw "recipe_backend/internal/platform/jwt"
	platformredis "recipe_backend/internal/platform/redis"
	"recipe_backend/internal/platform/validation"
	"recipe_backend/internal/shared/ratelimiter"
)

const (
	shutdownTimeout       = 15 * time.Second
	sessionCleanupPeriod  = time.Hour
	rateLimitSweepPeriod  = time.Minute
	rateLimitIdleDuration = 10 * time.Minute
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log.Level)
	slog.SetDefault(logger)
	gin.SetMode(cfg.Server.Mode)
	if err := validation.Setup(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	db, err := platformdb.OpenDB(cfg.Database)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()
	if cfg.Database.AutoMigrate {
		if err := platformdb.Migrate(db, di.Models()...); err != nil {
			return err
		}
	}

	// Redis
	var rdb *redisv9.Client
	if cfg.Redis.Enabled {
		if tmp, err := platformredis.NewRedisClient(ctx, cfg.Redis); err != nil {
			slog.Warn("Redis unavailable. Running without cache.", "error", err)
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	images, err := di.NewImageStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	// Repository
	// Redisキャッシュでラップ（rdbがnilならそのまま委譲）
	userRepo := cache.NewCachingUserRepository(rdb, cfg.Auth.UserCacheTTL, authadapters.NewUserGorm(db), "users")
	sessionRepo := di.NewSessionRepository(rdb, db)
	recipeRepo := recipeadapters.NewRecipeGorm(db)
	tagRepo := recipeadapters.NewLabelGorm(db, entity.KindTag)
	ingredientRepo := recipeadapters.NewLabelGorm(db, entity.KindIngredient)

	// Usecase
	authUC := authusecase.NewAuthUsecase(userRepo, sessionRepo, jwtmw.NewGenerator(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL))
	recipeUC := recipeusecase.NewRecipeUsecase(recipeRepo, images)

	// Handler
	handlers := router.Handlers{
		Auth:          authhandler.NewAuthHandler(authUC),
		Recipes:       recipehandler.NewRecipeHandler(recipeUC),
		Tags:          recipehandler.NewLabelHandler(recipeusecase.NewLabelUsecase(tagRepo), entity.KindTag),
		Ingredients:   recipehandler.NewLabelHandler(recipeusecase.NewLabelUsecase(ingredientRepo), entity.KindIngredient),
		Authenticator: authUC,
		DB:            sqlDB,
	}
	if cfg.Auth.RateLimitRPS > 0 {
		limiter := ratelimiter.NewRateLimiter(cfg.Auth.RateLimitRPS, cfg.Auth.RateLimitBurst, rateLimitIdleDuration)
		limiter.StartSweeper(rateLimitSweepPeriod, ctx.Done())
		handlers.AuthLimiter = limiter
	}

	opts := router.Options{
		Logger:         logger,
		CORSOrigins:    cfg.Server.CORSOrigins,
		MediaURL:       cfg.Storage.MediaURL,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
	}
	if cfg.Storage.Backend == config.StorageLocal {
		opts.MediaRoot = cfg.Storage.MediaRoot
	}

	go cleanupSessions(ctx, sessionRepo)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.NewRouter(handlers, opts),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "storage", cfg.Storage.Backend, "redis", rdb != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// cleanupSessions は期限切れセッションを定期的に削除します。Redisの場合はTTLで消えるため0件です。
func cleanupSessions(ctx context.Context, sessions authusecase.SessionRepository) {
	ticker := time.NewTicker(sessionCleanupPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.DeleteExpired(ctx)
			if err != nil {
				slog.Warn("session cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("expired sessions removed", "count", n)
			}
		}
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
