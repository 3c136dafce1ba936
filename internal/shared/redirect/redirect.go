// Package redirect validates user-supplied redirect targets so that a `next`
// parameter can only send the browser to a path on this site.
package redirect

import (
	"net/url"
	"strings"
	"unicode"
)

// DefaultPath is returned whenever a target is missing or unsafe.
const DefaultPath = "/"

// Sanitize returns next when it is a rooted path on this site and DefaultPath
// otherwise. Absolute URLs, scheme-relative URLs ("//host"), backslash
// variants that browsers normalize to "//", paths without a leading slash and
// targets containing control characters are all rejected.
func Sanitize(next string) string {
	if IsSafe(next) {
		return next
	}
	return DefaultPath
}

// IsSafe reports whether next may be used as a redirect target.
func IsSafe(next string) bool {
	if next == "" || !strings.HasPrefix(next, "/") {
		return false
	}
	if strings.HasPrefix(next, "//") || strings.ContainsRune(next, '\\') {
		return false
	}
	for _, r := range next {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return false
		}
	}
	u, err := url.Parse(next)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == "" && u.User == nil
}
