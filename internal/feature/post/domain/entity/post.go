// Package entity defines the domain entities for the post feature.
package entity

import "time"

// Post is a blog article. Slug is assigned once at creation and never changes.
type Post struct {
	ID         uint
	OwnerID    uint
	AuthorName string
	Title      string
	Category   string
	Content    string
	Slug       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// URL returns the public path of the post.
func (p *Post) URL() string {
	return "/post/" + p.Slug + "/"
}

// Author is the user a new post is attributed to.
type Author struct {
	ID   uint
	Name string
}
