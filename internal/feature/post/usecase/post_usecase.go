package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"blog_backend/internal/feature/post/domain/entity"
	"blog_backend/internal/feature/post/domain/slug"
	"blog_backend/internal/shared/validation"
)

// maxCreateAttempts bounds slug reservation: the first try plus one retry
// with a refreshed snapshot.
const maxCreateAttempts = 2

// postUsecase is the post store.
type postUsecase struct {
	posts PostRepository
}

// NewPostUsecase creates a new postUsecase.
func NewPostUsecase(posts PostRepository) *postUsecase {
	return &postUsecase{posts: posts}
}

type postInput struct {
	Title    string `json:"title" validate:"required,min=3,max=200"`
	Category string `json:"category" validate:"required,min=3,max=80"`
	Content  string `json:"content" validate:"required,min=10"`
}

// Create validates the fields, assigns a unique slug derived from title and
// stores the post. It returns validation.Errors for bad input and
// ErrSlugConflict when concurrent creates kept taking the chosen slug.
func (u *postUsecase) Create(ctx context.Context, author entity.Author, title, category, content string) (*entity.Post, error) {
	in := postInput{
		Title:    strings.TrimSpace(title),
		Category: strings.TrimSpace(category),
		Content:  strings.TrimSpace(content),
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	base := slug.Base(in.Title)
	pick := func(taken map[string]struct{}) (string, error) {
		return slug.Assign(in.Title, taken)
	}

	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		post := &entity.Post{
			OwnerID:    author.ID,
			AuthorName: author.Name,
			Title:      in.Title,
			Category:   in.Category,
			Content:    in.Content,
		}
		err := u.posts.CreateWithSlug(ctx, post, base, pick)
		if err == nil {
			slog.Info("post created", "post_id", post.ID, "slug", post.Slug, "owner_id", author.ID)
			return post, nil
		}
		if !errors.Is(err, ErrSlugTaken) {
			return nil, fmt.Errorf("failed to create post: %w", err)
		}
		slog.Warn("slug taken by a concurrent create", "base", base, "attempt", attempt)
	}
	return nil, ErrSlugConflict
}

// GetBySlug returns the post with exactly this slug.
func (u *postUsecase) GetBySlug(ctx context.Context, s string) (*entity.Post, error) {
	if !slug.IsValid(s) {
		return nil, ErrPostNotFound
	}
	post, err := u.posts.FindBySlug(ctx, s)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	return post, nil
}

// ListAll returns all posts, newest first.
func (u *postUsecase) ListAll(ctx context.Context) ([]entity.Post, error) {
	posts, err := u.posts.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}
