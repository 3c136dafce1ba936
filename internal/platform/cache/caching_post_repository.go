// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"blog_backend/internal/feature/post/domain/entity"
	"blog_backend/internal/feature/post/usecase"
)

// maxSlugTTL caps how long a single post stays cached. Posts are removed only
// by the owner-delete cascade in the database, which never reaches Redis.
const maxSlugTTL = time.Minute

// CachingPostRepository decorates a PostRepository with a Redis read-through
// cache. Posts are immutable once created. The list is cached under a
// generation number that every create bumps, so a list loaded before a create
// can only be written under a key no reader uses any more.
type CachingPostRepository struct {
	inner     usecase.PostRepository
	rdb       *redis.Client
	ttl       time.Duration
	slugTTL   time.Duration
	namespace string
}

var _ usecase.PostRepository = (*CachingPostRepository)(nil)

// NewCachingPostRepository decorates inner with Redis caching. A nil rdb
// disables caching. If ttl is 0, it defaults to 5 minutes. If namespace is
// empty, it uses "posts".
func NewCachingPostRepository(rdb *redis.Client, ttl time.Duration, inner usecase.PostRepository, namespace string) *CachingPostRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "posts"
	}
	return &CachingPostRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		slugTTL:   min(ttl, maxSlugTTL),
		namespace: namespace,
	}
}

// CreateWithSlug creates through the inner repository and bumps the list
// generation.
func (c *CachingPostRepository) CreateWithSlug(ctx context.Context, post *entity.Post, base string, pick usecase.SlugPicker) error {
	if err := c.inner.CreateWithSlug(ctx, post, base, pick); err != nil {
		return err
	}
	if c.rdb == nil {
		return nil
	}
	// Best effort: a stale list expires with the TTL.
	_ = c.rdb.Incr(ctx, c.genKey()).Err()
	return nil
}

// FindBySlug checks the cache first, then falls back to the inner repository.
// Misses are not cached. Hits are kept for at most maxSlugTTL, so a post
// removed with its owner may still be served for that long.
func (c *CachingPostRepository) FindBySlug(ctx context.Context, slug string) (*entity.Post, error) {
	if c.rdb == nil {
		return c.inner.FindBySlug(ctx, slug)
	}

	key := c.slugKey(slug)
	var cached entity.Post
	if c.get(ctx, key, &cached) {
		return &cached, nil
	}

	post, err := c.inner.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, post, c.slugTTL)
	return post, nil
}

// ListAll checks the cache first, then falls back to the inner repository.
// The generation is read before loading, so a create that lands during the
// load leaves the result under a superseded key.
func (c *CachingPostRepository) ListAll(ctx context.Context) ([]entity.Post, error) {
	if c.rdb == nil {
		return c.inner.ListAll(ctx)
	}

	gen, err := c.rdb.Get(ctx, c.genKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return c.inner.ListAll(ctx)
	}

	key := c.listKey(gen)
	var cached []entity.Post
	if c.get(ctx, key, &cached) {
		return cached, nil
	}

	posts, err := c.inner.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, posts, c.ttl)
	return posts, nil
}

// get decodes key into out. Corrupted entries are deleted.
func (c *CachingPostRepository) get(ctx context.Context, key string, out any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return false
	}
	if err := json.Unmarshal(b, out); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

// set stores v under key (best effort).
func (c *CachingPostRepository) set(ctx context.Context, key string, v any, ttl time.Duration) {
	if b, err := json.Marshal(v); err == nil {
		_ = c.rdb.Set(ctx, key, b, ttl).Err()
	}
}

func (c *CachingPostRepository) slugKey(slug string) string {
	return c.namespace + ":slug:" + safe(slug)
}

func (c *CachingPostRepository) genKey() string {
	return c.namespace + ":gen"
}

func (c *CachingPostRepository) listKey(gen int64) string {
	return c.namespace + ":all:" + strconv.FormatInt(gen, 10)
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
