package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	postadapters "blog_backend/internal/feature/post/adapters"
	"blog_backend/internal/feature/post/usecase"
	"blog_backend/internal/platform/cache"
)

// NewPostRepository returns the gorm post repository wrapped in the redis
// read-through cache. With a nil rdb the cache passes every call through.
func NewPostRepository(rdb *redis.Client, db *gorm.DB, ttl time.Duration) usecase.PostRepository {
	return cache.NewCachingPostRepository(rdb, ttl, postadapters.NewPostGorm(db), "posts")
}
