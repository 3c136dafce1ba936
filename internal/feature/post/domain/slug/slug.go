// Package slug derives the unique, URL-safe identifier of a post from its title.
package slug

import (
	"strconv"
	"strings"

	gosimple "github.com/gosimple/slug"

	"blog_backend/internal/shared/validation"
)

const (
	// Fallback is used when a title has no sluggable characters (e.g. "!!!").
	Fallback = "post"

	// MaxBaseLength caps the base slug so that "<base>-<n>" still fits the
	// 255 character slug column.
	MaxBaseLength = 200
)

// Base normalizes title into lowercase ASCII words joined by single hyphens.
// Non-Latin characters are transliterated and punctuation is dropped. The
// result is never empty.
func Base(title string) string {
	s := gosimple.Make(strings.ReplaceAll(title, "_", " "))
	s = clean(s)
	if len(s) > MaxBaseLength {
		s = s[:MaxBaseLength]
		if i := strings.LastIndexByte(s, '-'); i > 0 {
			s = s[:i]
		}
		s = strings.Trim(s, "-")
	}
	if s == "" {
		return Fallback
	}
	return s
}

// Next returns base when it is not taken, otherwise the first of base-2,
// base-3, ... that is absent from taken.
func Next(base string, taken map[string]struct{}) string {
	if _, ok := taken[base]; !ok {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

// Assign computes the slug for a new post titled title given the slugs that
// already exist. The same inputs always produce the same slug. A blank title
// is rejected with a validation error.
func Assign(title string, existing map[string]struct{}) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", validation.Errors{}.Add("title", "This field is required.")
	}
	return Next(Base(title), existing), nil
}

// IsValid reports whether s has the shape of a slug: lowercase ASCII letters
// and digits in hyphen-separated groups.
func IsValid(s string) bool {
	return s != "" && clean(s) == s
}

// clean keeps [a-z0-9] runs and joins them with single hyphens.
func clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteByte(c + ('a' - 'A'))
		default:
			pendingHyphen = true
		}
	}
	return b.String()
}
