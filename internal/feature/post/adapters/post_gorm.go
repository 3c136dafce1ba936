package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"blog_backend/internal/feature/post/domain/entity"
	"blog_backend/internal/feature/post/usecase"
	"blog_backend/internal/platform/db"
)

// postGorm is the gorm implementation of usecase.PostRepository.
type postGorm struct {
	db *gorm.DB
}

var _ usecase.PostRepository = (*postGorm)(nil)

// NewPostGorm creates a new instance of postGorm.
func NewPostGorm(db *gorm.DB) *postGorm {
	return &postGorm{db: db}
}

// CreateWithSlug snapshots the slugs that can collide with base, lets pick
// choose one and inserts the post in the same transaction. The unique index
// on slug rejects a slug reserved concurrently; that case yields
// usecase.ErrSlugTaken so the caller can retry with a fresh snapshot.
func (r *postGorm) CreateWithSlug(ctx context.Context, post *entity.Post, base string, pick usecase.SlugPicker) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []string
		// base is [a-z0-9-] only, so it carries no LIKE wildcards.
		if err := tx.Model(&PostModel{}).
			Where("slug = ? OR slug LIKE ?", base, base+"-%").
			Pluck("slug", &existing).Error; err != nil {
			return err
		}
		taken := make(map[string]struct{}, len(existing))
		for _, s := range existing {
			taken[s] = struct{}{}
		}

		slug, err := pick(taken)
		if err != nil {
			return err
		}

		m := &PostModel{
			OwnerID:  post.OwnerID,
			Title:    post.Title,
			Category: post.Category,
			Content:  post.Content,
			Slug:     slug,
		}
		if err := tx.Omit("Owner").Create(m).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return usecase.ErrSlugTaken
			}
			return err
		}

		post.ID = m.ID
		post.Slug = m.Slug
		post.CreatedAt = m.CreatedAt
		post.UpdatedAt = m.UpdatedAt
		return nil
	})
}

// FindBySlug returns the post with exactly slug, including its author name.
func (r *postGorm) FindBySlug(ctx context.Context, slug string) (*entity.Post, error) {
	var m PostModel
	if err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("slug = ?", slug).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrPostNotFound
		}
		return nil, err
	}
	post := m.ToEntity()
	return &post, nil
}

// ListAll returns every post ordered by id descending (newest first).
func (r *postGorm) ListAll(ctx context.Context) ([]entity.Post, error) {
	var models []PostModel
	if err := r.db.WithContext(ctx).
		Preload("Owner").
		Order("id DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	posts := make([]entity.Post, len(models))
	for i := range models {
		posts[i] = models[i].ToEntity()
	}
	return posts, nil
}
