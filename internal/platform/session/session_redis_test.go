package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/feature/auth/usecase"
)

// setupTestRedis creates a miniredis-backed repository.
func setupTestRedis(t *testing.T) (*SessionRedis, *redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	return NewSessionRedis(client, "session"), client, mr
}

func newSession(id string, userID uint, age, expiresIn time.Duration) *entity.Session {
	now := time.Now()
	return &entity.Session{
		ID:        id,
		UserID:    userID,
		UserAgent: "test-agent",
		IPAddress: "127.0.0.1",
		CreatedAt: now.Add(-age),
		ExpiresAt: now.Add(expiresIn),
	}
}

func TestSessionRedis_KeyGeneration(t *testing.T) {
	t.Parallel()

	repo := NewSessionRedis(nil, "test-prefix")

	assert.Equal(t, "test-prefix:session-id", repo.sessionKey("session-id"))
	assert.Equal(t, "test-prefix:user:123", repo.userSessionsKey(123))
}

func TestSessionRedis_Create(t *testing.T) {
	t.Parallel()

	t.Run("stores session with TTL and indexes it", func(t *testing.T) {
		t.Parallel()

		repo, client, mr := setupTestRedis(t)
		s := newSession("sid-1", 1, 0, time.Hour)
		s.Remember = true

		require.NoError(t, repo.Create(context.Background(), s, 0))

		ttl := mr.TTL(repo.sessionKey("sid-1"))
		assert.Greater(t, ttl, 59*time.Minute)
		assert.LessOrEqual(t, ttl, time.Hour)

		isMember, err := client.SIsMember(context.Background(), repo.userSessionsKey(1), "sid-1").Result()
		require.NoError(t, err)
		assert.True(t, isMember)

		found, err := repo.FindByID(context.Background(), "sid-1")
		require.NoError(t, err)
		assert.True(t, found.Remember)
		assert.Equal(t, "test-agent", found.UserAgent)
		assert.WithinDuration(t, s.ExpiresAt, found.ExpiresAt, time.Millisecond)
	})

	t.Run("rejects an already expired session", func(t *testing.T) {
		t.Parallel()

		repo, _, _ := setupTestRedis(t)

		assert.Error(t, repo.Create(context.Background(), newSession("old", 1, 2*time.Hour, -time.Hour), 0))
	})
}

func TestSessionRedis_FindByID_Errors(t *testing.T) {
	t.Parallel()

	repo, client, _ := setupTestRedis(t)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, usecase.ErrSessionNotFound)

	require.NoError(t, client.Set(context.Background(), repo.sessionKey("garbage"), "{not json", 0).Err())
	_, err = repo.FindByID(context.Background(), "garbage")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, usecase.ErrSessionNotFound)
}

func TestSessionRedis_ExpiresWithTTL(t *testing.T) {
	t.Parallel()

	repo, _, mr := setupTestRedis(t)
	require.NoError(t, repo.Create(context.Background(), newSession("short", 1, 0, time.Minute), 0))

	mr.FastForward(2 * time.Minute)

	_, err := repo.FindByID(context.Background(), "short")
	assert.ErrorIs(t, err, usecase.ErrSessionNotFound)
}

func TestSessionRedis_Revoke(t *testing.T) {
	t.Parallel()

	repo, _, mr := setupTestRedis(t)
	require.NoError(t, repo.Create(context.Background(), newSession("sid-r", 1, 0, time.Hour), 0))

	require.NoError(t, repo.Revoke(context.Background(), "sid-r"))

	found, err := repo.FindByID(context.Background(), "sid-r")
	require.NoError(t, err)
	assert.True(t, found.IsRevoked())
	assert.Greater(t, mr.TTL(repo.sessionKey("sid-r")), 59*time.Minute, "revocation must keep the original TTL")

	assert.ErrorIs(t, repo.Revoke(context.Background(), "sid-r"), usecase.ErrSessionNotFound)
	assert.ErrorIs(t, repo.Revoke(context.Background(), "missing"), usecase.ErrSessionNotFound)
}

func TestSessionRedis_RevokeAllByUserID(t *testing.T) {
	t.Parallel()

	repo, _, _ := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newSession("a1", 1, 0, time.Hour), 0))
	require.NoError(t, repo.Create(ctx, newSession("a2", 1, 0, time.Hour), 0))
	require.NoError(t, repo.Create(ctx, newSession("b1", 2, 0, time.Hour), 0))
	require.NoError(t, repo.Revoke(ctx, "a2"))

	require.NoError(t, repo.RevokeAllByUserID(ctx, 1))

	for _, id := range []string{"a1", "a2"} {
		s, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, s.IsRevoked(), id)
	}
	b1, err := repo.FindByID(ctx, "b1")
	require.NoError(t, err)
	assert.False(t, b1.IsRevoked())
}

func TestSessionRedis_FindByUserID_And_Count(t *testing.T) {
	t.Parallel()

	repo, client, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newSession("active", 1, 0, time.Hour), 0))
	require.NoError(t, repo.Create(ctx, newSession("revoked", 1, 0, time.Hour), 0))
	require.NoError(t, repo.Create(ctx, newSession("short", 1, 0, time.Minute), 0))
	require.NoError(t, repo.Create(ctx, newSession("other", 2, 0, time.Hour), 0))
	require.NoError(t, repo.Revoke(ctx, "revoked"))
	mr.FastForward(2 * time.Minute)

	sessions, err := repo.FindByUserID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "active", sessions[0].ID)

	count, err := repo.CountByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	isMember, err := client.SIsMember(ctx, repo.userSessionsKey(1), "short").Result()
	require.NoError(t, err)
	assert.False(t, isMember, "expired IDs are dropped from the user index")
}

func TestSessionRedis_Create_EvictsOldestBeyondLimit(t *testing.T) {
	t.Parallel()

	repo, client, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newSession("oldest", 1, 3*time.Hour, 24*time.Hour), 0))
	require.NoError(t, repo.Create(ctx, newSession("older", 1, 2*time.Hour, 24*time.Hour), 0))
	require.NoError(t, repo.Create(ctx, newSession("newer", 1, time.Hour, 24*time.Hour), 0))
	require.NoError(t, repo.Create(ctx, newSession("gone", 1, 4*time.Hour, time.Minute), 0))
	require.NoError(t, repo.Create(ctx, newSession("other", 2, 5*time.Hour, 24*time.Hour), 0))
	mr.FastForward(2 * time.Minute)

	require.NoError(t, repo.Create(ctx, newSession("fresh", 1, 0, 24*time.Hour), 2))

	ids, err := client.SMembers(ctx, repo.userSessionsKey(1)).Result()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"newer", "fresh"}, ids)
	for _, id := range []string{"oldest", "older"} {
		_, err = repo.FindByID(ctx, id)
		assert.ErrorIs(t, err, usecase.ErrSessionNotFound, id)
	}
	_, err = repo.FindByID(ctx, "other")
	assert.NoError(t, err, "other users are untouched")
}

func TestSessionRedis_Create_ConcurrentLoginsRespectLimit(t *testing.T) {
	t.Parallel()

	repo, _, _ := setupTestRedis(t)
	ctx := context.Background()

	const logins = 8
	var wg sync.WaitGroup
	errs := make([]error, logins)
	for i := range logins {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := newSession(fmt.Sprintf("sid-%d", i), 1, time.Duration(logins-i)*time.Second, time.Hour)
			for {
				errs[i] = repo.Create(ctx, s, 3)
				if !errors.Is(errs[i], redis.TxFailedErr) {
					return
				}
			}
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	count, err := repo.CountByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestSessionRedis_DeleteExpired(t *testing.T) {
	t.Parallel()

	repo, client, mr := setupTestRedis(t)
	ctx := context.Background()

	deleted, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	require.NoError(t, repo.Create(ctx, newSession("short-1", 1, 0, time.Minute), 0))
	require.NoError(t, repo.Create(ctx, newSession("short-2", 2, 0, time.Minute), 0))
	require.NoError(t, repo.Create(ctx, newSession("long", 2, 0, time.Hour), 0))
	mr.FastForward(2 * time.Minute)

	deleted, err = repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	members, err := client.SMembers(ctx, repo.userSessionsKey(2)).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"long"}, members)
}
