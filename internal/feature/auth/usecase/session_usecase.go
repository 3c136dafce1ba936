package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"blog_backend/internal/feature/auth/domain/entity"
)

// TokenIssuer signs and parses the opaque token stored in the session cookie.
type TokenIssuer interface {
	Issue(sessionID string, userID uint, expiresAt time.Time) (string, error)
	Parse(token string) (sessionID string, userID uint, err error)
}

// SessionConfig controls session lifetimes and limits.
type SessionConfig struct {
	TTL         time.Duration // lifetime of a normal session
	RememberTTL time.Duration // lifetime of a "remember me" session
	MaxPerUser  int           // active sessions kept per user; oldest evicted first
}

// ClientInfo describes the browser a session is established for.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

const maxUserAgentLength = 512

// sessionUsecase is the session/identity provider.
type sessionUsecase struct {
	sessions SessionRepository
	users    UserRepository
	tokens   TokenIssuer
	cfg      SessionConfig

	now   func() time.Time
	newID func() string
}

// NewSessionUsecase creates a sessionUsecase. Zero config values fall back to
// 24h, 30 days and 5 sessions.
func NewSessionUsecase(sessions SessionRepository, users UserRepository, tokens TokenIssuer, cfg SessionConfig) *sessionUsecase {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.RememberTTL <= 0 {
		cfg.RememberTTL = 30 * 24 * time.Hour
	}
	if cfg.MaxPerUser <= 0 {
		cfg.MaxPerUser = 5
	}
	return &sessionUsecase{
		sessions: sessions,
		users:    users,
		tokens:   tokens,
		cfg:      cfg,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Establish starts a session for user and returns the signed cookie token.
func (s *sessionUsecase) Establish(ctx context.Context, user *entity.User, remember bool, client ClientInfo) (string, *entity.Session, error) {
	if user == nil || user.ID == 0 {
		return "", nil, ErrUserNotFound
	}

	ttl := s.cfg.TTL
	if remember {
		ttl = s.cfg.RememberTTL
	}
	userAgent := client.UserAgent
	if len(userAgent) > maxUserAgentLength {
		userAgent = userAgent[:maxUserAgentLength]
	}

	now := s.now()
	session := &entity.Session{
		ID:        s.newID(),
		UserID:    user.ID,
		UserAgent: userAgent,
		IPAddress: client.IPAddress,
		Remember:  remember,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.sessions.Create(ctx, session, s.cfg.MaxPerUser); err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.tokens.Issue(session.ID, user.ID, session.ExpiresAt)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	slog.Info("session established", "user_id", user.ID, "session_id", session.ID, "remember", remember)
	return token, session, nil
}

// Resolve returns the identity behind a cookie token. Any failure means the
// request is anonymous; the returned error says why.
func (s *sessionUsecase) Resolve(ctx context.Context, token string) (*entity.Identity, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	sessionID, userID, err := s.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrUnauthorized
	}
	if session.IsRevoked() {
		return nil, ErrSessionRevoked
	}
	if session.IsExpiredAt(s.now()) {
		return nil, ErrSessionExpired
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	return &entity.Identity{User: user, Session: session}, nil
}

// End revokes one session. Ending an unknown session is not an error.
func (s *sessionUsecase) End(ctx context.Context, sessionID string) error {
	if err := s.sessions.Revoke(ctx, sessionID); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// EndAll revokes every session of userID.
func (s *sessionUsecase) EndAll(ctx context.Context, userID uint) error {
	if err := s.sessions.RevokeAllByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	slog.Info("all sessions revoked", "user_id", userID)
	return nil
}

// SweepExpired deletes expired sessions and returns how many were removed.
func (s *sessionUsecase) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return n, nil
}
