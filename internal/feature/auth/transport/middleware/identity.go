// Package middleware carries the authenticated identity through a request.
// The identity is resolved once from the session cookie and stored on the gin
// context; handlers read it with CurrentUser instead of any global state.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/feature/auth/usecase"
	"blog_backend/internal/platform/csrf"
	"blog_backend/internal/shared/redirect"
)

const (
	identityKey = "identity"

	// LoginPath is where AuthRequired sends anonymous visitors.
	LoginPath = "/login"
)

// IdentityResolver turns a session cookie token into an identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*entity.Identity, error)
}

// SessionCookie describes the login cookie.
type SessionCookie struct {
	Name   string
	Secure bool
}

// Set stores token. Remembered sessions persist until expiresAt; others end
// with the browser session.
func (sc SessionCookie) Set(c *gin.Context, token string, remember bool, expiresAt time.Time) {
	maxAge := 0
	if remember {
		maxAge = int(time.Until(expiresAt).Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, token, maxAge, "/", "", sc.Secure, true)
}

// Clear deletes the cookie.
func (sc SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, "", -1, "/", "", sc.Secure, true)
}

// LoadIdentity resolves the session cookie, if any. Requests with a missing,
// invalid, expired or revoked session continue anonymously and the stale
// cookie is cleared. Storage failures also continue anonymously but keep
// the cookie.
func LoadIdentity(resolver IdentityResolver, cookie SessionCookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookie.Name)
		if err != nil || token == "" {
			c.Next()
			return
		}

		identity, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			if isStale(err) {
				slog.Debug("session cookie rejected", "error", err, "remote_addr", c.ClientIP())
				cookie.Clear(c)
			} else {
				slog.Error("failed to resolve session", "error", err, "remote_addr", c.ClientIP())
			}
			c.Next()
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// isStale reports whether err means the cookie can never become valid again.
func isStale(err error) bool {
	for _, target := range []error{
		usecase.ErrUnauthorized,
		usecase.ErrSessionNotFound,
		usecase.ErrSessionRevoked,
		usecase.ErrSessionExpired,
		usecase.ErrUserNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// CurrentIdentity returns the identity resolved for this request.
func CurrentIdentity(c *gin.Context) (*entity.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*entity.Identity)
	return identity, ok && identity != nil
}

// CurrentUser returns the logged-in user or nil.
func CurrentUser(c *gin.Context) *entity.User {
	if identity, ok := CurrentIdentity(c); ok {
		return identity.User
	}
	return nil
}

// AuthRequired redirects anonymous requests to the login page, carrying the
// requested path as a sanitized next parameter.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentIdentity(c); ok {
			c.Next()
			return
		}
		c.Redirect(http.StatusSeeOther, LoginURL(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// LoginURL returns the login page URL that returns to next after login.
func LoginURL(next string) string {
	next = redirect.Sanitize(next)
	if next == redirect.DefaultPath {
		return LoginPath
	}
	return LoginPath + "?next=" + url.QueryEscape(next)
}

// ViewData adds the values every page template needs.
func ViewData(c *gin.Context, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	data["CurrentUser"] = CurrentUser(c)
	data["CSRFToken"] = csrf.Token(c)
	return data
}
