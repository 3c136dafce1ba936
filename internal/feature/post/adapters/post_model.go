// Package adapters provides repository implementations for the post feature.
package adapters

import (
	"time"

	authentity "blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/feature/post/domain/entity"
)

// PostModel is the GORM model for the posts table. Deleting the owner
// deletes the owner's posts.
type PostModel struct {
	ID        uint            `gorm:"primaryKey"`
	OwnerID   uint            `gorm:"index;not null"`
	Owner     authentity.User `gorm:"constraint:OnDelete:CASCADE"`
	Title     string          `gorm:"size:200;not null"`
	Category  string          `gorm:"size:80;not null"`
	Content   string          `gorm:"type:text;not null"`
	Slug      string          `gorm:"uniqueIndex;size:255;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM.
func (PostModel) TableName() string {
	return "posts"
}

// ToEntity converts the model to a domain entity. AuthorName is set only when
// Owner was preloaded.
func (m *PostModel) ToEntity() entity.Post {
	return entity.Post{
		ID:         m.ID,
		OwnerID:    m.OwnerID,
		AuthorName: m.Owner.Name,
		Title:      m.Title,
		Category:   m.Category,
		Content:    m.Content,
		Slug:       m.Slug,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
