// Package session stores login sessions in Redis. Each session is a JSON value
// that expires with the session; a per-user set indexes a user's session IDs.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/feature/auth/usecase"
)

// SessionRedis implements usecase.SessionRepository using Redis.
type SessionRedis struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

var _ usecase.SessionRepository = (*SessionRedis)(nil)

// NewSessionRedis creates a new SessionRedis instance.
func NewSessionRedis(client *redis.Client, prefix string) *SessionRedis {
	return &SessionRedis{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

type record struct {
	ID        string     `json:"id"`
	UserID    uint       `json:"user_id"`
	UserAgent string     `json:"user_agent,omitempty"`
	IPAddress string     `json:"ip_address,omitempty"`
	Remember  bool       `json:"remember,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

func toRecord(s *entity.Session) record {
	return record{
		ID:        s.ID,
		UserID:    s.UserID,
		UserAgent: s.UserAgent,
		IPAddress: s.IPAddress,
		Remember:  s.Remember,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
		RevokedAt: s.RevokedAt,
	}
}

func (r record) toEntity() *entity.Session {
	return &entity.Session{
		ID:        r.ID,
		UserID:    r.UserID,
		UserAgent: r.UserAgent,
		IPAddress: r.IPAddress,
		Remember:  r.Remember,
		CreatedAt: r.CreatedAt,
		ExpiresAt: r.ExpiresAt,
		RevokedAt: r.RevokedAt,
	}
}

// sessionKey returns the Redis key for a session.
func (r *SessionRedis) sessionKey(id string) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}

// userSessionsKey returns the Redis key for a user's session set.
func (r *SessionRedis) userSessionsKey(userID uint) string {
	return fmt.Sprintf("%s:user:%d", r.prefix, userID)
}

// maxCreateAttempts bounds retries when a concurrent write to the user's set
// aborts the create transaction.
const maxCreateAttempts = 5

// Create stores session with a TTL equal to its remaining lifetime. With a
// positive limit the user's oldest active sessions are removed in the same
// transaction so that at most limit remain. The user's set is watched, so a
// concurrent login for the same user forces a retry.
func (r *SessionRedis) Create(ctx context.Context, session *entity.Session, limit int) error {
	ttl := session.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return errors.New("session already expired")
	}
	data, err := json.Marshal(toRecord(session))
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	setKey := r.userSessionsKey(session.UserID)
	create := func(tx *redis.Tx) error {
		var evict []string
		if limit > 0 {
			ids, err := r.evictionCandidates(ctx, tx, setKey, limit-1)
			if err != nil {
				return err
			}
			evict = ids
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, id := range evict {
				pipe.Del(ctx, r.sessionKey(id))
				pipe.SRem(ctx, setKey, id)
			}
			pipe.Set(ctx, r.sessionKey(session.ID), data, ttl)
			pipe.SAdd(ctx, setKey, session.ID)
			return nil
		})
		return err
	}

	for range maxCreateAttempts {
		err = r.client.Watch(ctx, create, setKey)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("failed to create session after %d attempts: %w", maxCreateAttempts, err)
}

// evictionCandidates returns the IDs in the user's set to drop so that only the
// newest keep active sessions remain. IDs whose keys have already expired are
// included.
func (r *SessionRedis) evictionCandidates(ctx context.Context, tx *redis.Tx, setKey string, keep int) ([]string, error) {
	ids, err := tx.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, err
	}

	now := r.now()
	var evict []string
	var active []record
	for _, id := range ids {
		data, err := tx.Get(ctx, r.sessionKey(id)).Bytes()
		if errors.Is(err, redis.Nil) {
			evict = append(evict, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		var rec record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session: %w", err)
		}
		s := rec.toEntity()
		if s.IsRevoked() || s.IsExpiredAt(now) {
			continue
		}
		active = append(active, rec)
	}

	if len(active) <= keep {
		return evict, nil
	}
	slices.SortFunc(active, func(a, b record) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	for _, rec := range active[keep:] {
		evict = append(evict, rec.ID)
	}
	return evict, nil
}

// FindByID retrieves a session by its ID.
func (r *SessionRedis) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	data, err := r.client.Get(ctx, r.sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, usecase.ErrSessionNotFound
		}
		return nil, err
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return rec.toEntity(), nil
}

// FindByUserID returns the user's active sessions. IDs whose keys have
// expired are removed from the user's set as a side effect.
func (r *SessionRedis) FindByUserID(ctx context.Context, userID uint) ([]*entity.Session, error) {
	setKey := r.userSessionsKey(userID)
	ids, err := r.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, err
	}

	now := r.now()
	var sessions []*entity.Session
	for _, id := range ids {
		s, err := r.FindByID(ctx, id)
		if errors.Is(err, usecase.ErrSessionNotFound) {
			r.client.SRem(ctx, setKey, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		if !s.IsRevoked() && !s.IsExpiredAt(now) {
			sessions = append(sessions, s)
		}
	}
	return sessions, nil
}

// Revoke marks a session as revoked, keeping its remaining TTL.
func (r *SessionRedis) Revoke(ctx context.Context, id string) error {
	s, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if s.IsRevoked() {
		return usecase.ErrSessionNotFound
	}

	now := r.now()
	s.RevokedAt = &now
	data, err := json.Marshal(toRecord(s))
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return r.client.Set(ctx, r.sessionKey(id), data, redis.KeepTTL).Err()
}

// RevokeAllByUserID revokes all sessions for a user.
func (r *SessionRedis) RevokeAllByUserID(ctx context.Context, userID uint) error {
	ids, err := r.client.SMembers(ctx, r.userSessionsKey(userID)).Result()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := r.Revoke(ctx, id); err != nil && !errors.Is(err, usecase.ErrSessionNotFound) {
			return err
		}
	}
	return nil
}

// DeleteExpired prunes user-set entries whose session keys Redis has already
// expired, and returns how many were removed.
func (r *SessionRedis) DeleteExpired(ctx context.Context) (int64, error) {
	var pruned int64
	iter := r.client.Scan(ctx, 0, r.prefix+":user:*", 100).Iterator()
	for iter.Next(ctx) {
		setKey := iter.Val()
		userID, err := strconv.ParseUint(strings.TrimPrefix(setKey, r.prefix+":user:"), 10, 64)
		if err != nil {
			continue
		}
		ids, err := r.client.SMembers(ctx, setKey).Result()
		if err != nil {
			return pruned, err
		}
		for _, id := range ids {
			n, err := r.client.Exists(ctx, r.sessionKey(id)).Result()
			if err != nil {
				return pruned, err
			}
			if n == 0 {
				if err := r.client.SRem(ctx, r.userSessionsKey(uint(userID)), id).Err(); err != nil {
					return pruned, err
				}
				pruned++
			}
		}
	}
	return pruned, iter.Err()
}

// CountByUserID returns the number of active sessions for a user.
func (r *SessionRedis) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	sessions, err := r.FindByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return int64(len(sessions)), nil
}
