package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe_backend/internal/feature/auth/domain"
	"recipe_backend/internal/feature/auth/domain/entity"
)

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// newTestRepo は現在時刻を固定したSessionRedisとモックを返します。
func newTestRepo(t *testing.T) (*SessionRedis, redismock.ClientMock) {
	t.Helper()
	rdb, mock := redismock.NewClientMock()
	repo := NewSessionRedis(rdb, "session")
	repo.now = func() time.Time { return fixedNow }
	return repo, mock
}

func testSession() *entity.Session {
	return &entity.Session{
		ID:        "tok-1",
		UserID:    7,
		UserAgent: "test-agent",
		IPAddress: "127.0.0.1",
		CreatedAt: fixedNow,
		ExpiresAt: fixedNow.Add(time.Hour),
	}
}

func TestNewSessionRedis(t *testing.T) {
	rdb, _ := redismock.NewClientMock()

	assert.Equal(t, "session", NewSessionRedis(rdb, "").prefix, "empty prefix falls back to default")
	assert.Equal(t, "tokens", NewSessionRedis(rdb, "tokens").prefix)
}

func TestSessionRedis_Create(t *testing.T) {
	t.Run("stores session with ttl and tracks it per user", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		s := testSession()
		data, err := json.Marshal(s)
		require.NoError(t, err)

		mock.ExpectSet("session:tok-1", data, time.Hour).SetVal("OK")
		mock.ExpectSAdd("session:user:7", "tok-1").SetVal(1)
		mock.ExpectExpire("session:user:7", time.Hour).SetVal(true)

		require.NoError(t, repo.Create(context.Background(), s))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("expired session is rejected without touching redis", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		s := testSession()
		s.ExpiresAt = fixedNow.Add(-time.Second)

		assert.Error(t, repo.Create(context.Background(), s))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis failure is returned", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		s := testSession()
		data, _ := json.Marshal(s)
		mock.ExpectSet("session:tok-1", data, time.Hour).SetErr(errors.New("connection refused"))

		assert.Error(t, repo.Create(context.Background(), s))
	})
}

func TestSessionRedis_FindByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		data, _ := json.Marshal(testSession())
		mock.ExpectGet("session:tok-1").SetVal(string(data))

		found, err := repo.FindByID(context.Background(), "tok-1")

		require.NoError(t, err)
		assert.Equal(t, uint(7), found.UserID)
		assert.Equal(t, "test-agent", found.UserAgent)
		assert.True(t, found.ExpiresAt.Equal(fixedNow.Add(time.Hour)))
	})

	t.Run("missing key maps to ErrSessionNotFound", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		mock.ExpectGet("session:gone").RedisNil()

		_, err := repo.FindByID(context.Background(), "gone")

		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("corrupted payload", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		mock.ExpectGet("session:bad").SetVal("not json")

		_, err := repo.FindByID(context.Background(), "bad")

		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrSessionNotFound)
	})
}

func TestSessionRedis_RevokeAllByUserID(t *testing.T) {
	t.Run("deletes sessions and the user set", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		mock.ExpectSMembers("session:user:7").SetVal([]string{"a", "b"})
		mock.ExpectDel("session:a", "session:b", "session:user:7").SetVal(3)

		require.NoError(t, repo.RevokeAllByUserID(context.Background(), 7))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("user without sessions", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		mock.ExpectSMembers("session:user:8").SetVal([]string{})
		mock.ExpectDel("session:user:8").SetVal(0)

		require.NoError(t, repo.RevokeAllByUserID(context.Background(), 8))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSessionRedis_DeleteExpired(t *testing.T) {
	repo, mock := newTestRepo(t)

	n, err := repo.DeleteExpired(context.Background())

	assert.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
