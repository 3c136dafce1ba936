// Package csrf protects form posts with a signed token bound to a per-browser
// cookie. Safe methods get a fresh token; unsafe methods must echo it back in
// the csrf_token form field or the X-CSRF-Token header.
package csrf

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	CookieName = "csrf_id"
	FormField  = "csrf_token"
	HeaderName = "X-CSRF-Token"

	contextKey = "csrf_token"
	subject    = "csrf"
)

var errMismatch = errors.New("csrf token does not match cookie")

// Config configures the middleware.
type Config struct {
	Secret string
	Secure bool          // set the Secure attribute on the cookie
	TTL    time.Duration // token lifetime; 12h when zero
}

type protector struct {
	secret []byte
	secure bool
	ttl    time.Duration
	now    func() time.Time
}

func newProtector(cfg Config) *protector {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &protector{
		secret: []byte(cfg.Secret),
		secure: cfg.Secure,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Middleware returns the gin middleware.
func Middleware(cfg Config) gin.HandlerFunc {
	return newProtector(cfg).handle
}

// Token returns the token to embed in forms rendered for this request.
func Token(c *gin.Context) string {
	return c.GetString(contextKey)
}

func (p *protector) handle(c *gin.Context) {
	id, err := c.Cookie(CookieName)
	if err != nil || uuid.Validate(id) != nil {
		id = uuid.NewString()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CookieName, id, 0, "/", "", p.secure, true)
	}

	if !isSafeMethod(c.Request.Method) {
		submitted := c.GetHeader(HeaderName)
		if submitted == "" {
			submitted = c.PostForm(FormField)
		}
		if err := p.verify(submitted, id); err != nil {
			slog.Warn("csrf check failed", "error", err, "path", c.Request.URL.Path, "remote_addr", c.ClientIP())
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
	}

	token, err := p.issue(id)
	if err != nil {
		slog.Error("failed to issue csrf token", "error", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Set(contextKey, token)
	c.Next()
}

func (p *protector) issue(id string) (string, error) {
	now := p.now()
	claims := jwt.RegisteredClaims{
		ID:        id,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

func (p *protector) verify(token, id string) error {
	if token == "" {
		return errors.New("csrf token missing")
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(subject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return err
	}
	if claims.ID != id {
		return errMismatch
	}
	return nil
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
