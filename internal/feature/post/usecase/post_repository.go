package usecase

import (
	"context"

	"blog_backend/internal/feature/post/domain/entity"
)

// SlugPicker chooses a slug given the slugs already taken.
type SlugPicker func(taken map[string]struct{}) (string, error)

// PostRepository abstracts the persistence layer for posts.
type PostRepository interface {
	// CreateWithSlug loads every existing slug equal to base or of the form
	// base-<suffix>, calls pick with them and inserts post with the chosen
	// slug, all in one transaction. post.ID, post.Slug and timestamps are
	// filled in on success. A unique violation on the slug yields ErrSlugTaken.
	CreateWithSlug(ctx context.Context, post *entity.Post, base string, pick SlugPicker) error

	// FindBySlug returns ErrPostNotFound when no post has slug.
	FindBySlug(ctx context.Context, slug string) (*entity.Post, error)

	// ListAll returns every post, newest first.
	ListAll(ctx context.Context) ([]entity.Post, error)
}
