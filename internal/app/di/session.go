package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "recipe_backend/internal/feature/auth/adapters"
	"recipe_backend/internal/feature/auth/usecase"
	"recipe_backend/internal/platform/session"
)

// NewSessionRepository creates a SessionRepository implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to the auth_sessions table.
func NewSessionRepository(rdb *redis.Client, db *gorm.DB) usecase.SessionRepository {
	if rdb != nil {
		return session.NewSessionRedis(rdb, "session")
	}
	return authadapters.NewSessionGorm(db)
}
