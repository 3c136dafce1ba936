// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User is a registered author. Email is stored trimmed and lowercased and is
// unique across all users.
type User struct {
	ID uint `gorm:"primaryKey"`

	// Name is shown as the author of the user's posts.
	Name string `gorm:"size:120;not null"`

	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Password holds the bcrypt hash, never the plaintext.
	Password string `gorm:"size:255;not null" json:"-"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
