package entity

import "time"

// Session is an authenticated login of one user from one browser.
// The session cookie carries a signed token that references ID.
type Session struct {
	ID        string     // Random UUID, referenced by the signed cookie token
	UserID    uint       // Owner of the session
	UserAgent string     // Client's User-Agent header at login
	IPAddress string     // Client's IP address at login
	Remember  bool       // Long-lived "remember me" session
	CreatedAt time.Time  // Login time
	ExpiresAt time.Time  // Absolute expiry
	RevokedAt *time.Time // Logout time (nil while active)
}

// IsExpired returns true if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return s.IsExpiredAt(time.Now())
}

// IsExpiredAt reports whether the session is expired at now.
func (s *Session) IsExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// IsRevoked returns true if the session has been revoked.
func (s *Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

// IsValid returns true if the session is neither expired nor revoked.
func (s *Session) IsValid() bool {
	return !s.IsExpired() && !s.IsRevoked()
}

// Identity is the authenticated principal resolved from a request.
type Identity struct {
	User    *User
	Session *Session
}
