// Package usecase implements the post store.
package usecase

import "errors"

var (
	// ErrPostNotFound is returned when no post has the requested slug.
	ErrPostNotFound = errors.New("post not found")

	// ErrSlugTaken is returned by a repository when the unique slug index
	// rejected an insert because a concurrent create won the same slug.
	ErrSlugTaken = errors.New("slug already taken")

	// ErrSlugConflict is returned to callers when the slug was still taken
	// after a retry with a refreshed snapshot. Resubmitting usually succeeds.
	ErrSlugConflict = errors.New("could not reserve a unique slug, please retry")
)
