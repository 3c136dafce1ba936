// Package jwtmw signs and verifies the session tokens stored in the login cookie.
package jwtmw

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "blog_backend"

// ErrInvalidToken is returned for malformed, forged or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Generator issues HS256-signed session tokens. A token names a session and
// its user; the session record stays authoritative for revocation.
type Generator struct {
	secret []byte
	now    func() time.Time
}

// NewGenerator creates a Generator signing with secret.
func NewGenerator(secret string) *Generator {
	return &Generator{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Issue returns a signed token for sessionID owned by userID.
func (g *Generator) Issue(sessionID string, userID uint, expiresAt time.Time) (string, error) {
	claims := sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(g.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature, algorithm, issuer and expiry and returns the
// session and user the token names.
func (g *Generator) Parse(tokenStr string) (string, uint, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.SessionID == "" {
		return "", 0, fmt.Errorf("%w: missing session id", ErrInvalidToken)
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return "", 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return claims.SessionID, uint(userID), nil
}
