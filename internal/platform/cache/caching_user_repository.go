// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"recipe_backend/internal/feature/auth/domain/entity"
	"recipe_backend/internal/feature/auth/usecase"
)

// CachingUserRepository decorates a UserRepository with Redis caching of FindByID,
// which runs on every authenticated request.
// Password hashes are never written to Redis; lookups that need them (FindByEmail) bypass the cache.
type CachingUserRepository struct {
	inner     usecase.UserRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.UserRepository = (*CachingUserRepository)(nil)

// cachedUser is the cached projection of entity.User.
type cachedUser struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCachingUserRepository decorates a UserRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "users".
// A nil rdb disables caching entirely.
func NewCachingUserRepository(rdb *redis.Client, ttl time.Duration, inner usecase.UserRepository, namespace string) *CachingUserRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "users"
	}
	return &CachingUserRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Create delegates to the underlying repository. New users are not cached.
func (c *CachingUserRepository) Create(ctx context.Context, user *entity.User) error {
	return c.inner.Create(ctx, user)
}

// FindByEmail always reads through, since login needs the password hash.
func (c *CachingUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return c.inner.FindByEmail(ctx, email)
}

// FindByID checks the cache first then falls back to the database.
func (c *CachingUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}

	key := c.cacheKey(id)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var cu cachedUser
		if err := json.Unmarshal(b, &cu); err == nil {
			return cu.toEntity(), nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	u, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(newCachedUser(u)); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return u, nil
}

// Update writes through and invalidates the cached entry.
func (c *CachingUserRepository) Update(ctx context.Context, id uint, update entity.UserUpdate) (*entity.User, error) {
	u, err := c.inner.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	if c.rdb != nil {
		_ = c.rdb.Del(ctx, c.cacheKey(id)).Err() // Best effort: stale entries expire with the TTL
	}
	return u, nil
}

func (c *CachingUserRepository) cacheKey(id uint) string {
	return fmt.Sprintf("%s:%d", c.namespace, id)
}

func newCachedUser(u *entity.User) cachedUser {
	return cachedUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (cu cachedUser) toEntity() *entity.User {
	return &entity.User{
		ID:        cu.ID,
		Email:     cu.Email,
		Name:      cu.Name,
		CreatedAt: cu.CreatedAt,
		UpdatedAt: cu.UpdatedAt,
	}
}
