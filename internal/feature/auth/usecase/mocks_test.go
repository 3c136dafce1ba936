package usecase

import (
	"context"
	"time"

	"blog_backend/internal/feature/auth/domain/entity"
)

// mockUserRepository is a mock implementation of UserRepository.
type mockUserRepository struct {
	CreateFunc      func(ctx context.Context, user *entity.User) error
	FindByEmailFunc func(ctx context.Context, email string) (*entity.User, error)
	FindByIDFunc    func(ctx context.Context, id uint) (*entity.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	user.ID = 1
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, ErrUserNotFound
}

// mockSessionRepository is a mock implementation of SessionRepository.
type mockSessionRepository struct {
	CreateFunc            func(ctx context.Context, session *entity.Session, limit int) error
	FindByIDFunc          func(ctx context.Context, id string) (*entity.Session, error)
	RevokeFunc            func(ctx context.Context, id string) error
	RevokeAllByUserIDFunc func(ctx context.Context, userID uint) error
	DeleteExpiredFunc     func(ctx context.Context) (int64, error)
	CountByUserIDFunc     func(ctx context.Context, userID uint) (int64, error)
}

func (m *mockSessionRepository) Create(ctx context.Context, session *entity.Session, limit int) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session, limit)
	}
	return nil
}

func (m *mockSessionRepository) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, ErrSessionNotFound
}

func (m *mockSessionRepository) Revoke(ctx context.Context, id string) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, id)
	}
	return nil
}

func (m *mockSessionRepository) RevokeAllByUserID(ctx context.Context, userID uint) error {
	if m.RevokeAllByUserIDFunc != nil {
		return m.RevokeAllByUserIDFunc(ctx, userID)
	}
	return nil
}

func (m *mockSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx)
	}
	return 0, nil
}

func (m *mockSessionRepository) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	if m.CountByUserIDFunc != nil {
		return m.CountByUserIDFunc(ctx, userID)
	}
	return 0, nil
}

// mockTokenIssuer is a mock implementation of TokenIssuer.
type mockTokenIssuer struct {
	IssueFunc func(sessionID string, userID uint, expiresAt time.Time) (string, error)
	ParseFunc func(token string) (string, uint, error)
}

func (m *mockTokenIssuer) Issue(sessionID string, userID uint, expiresAt time.Time) (string, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(sessionID, userID, expiresAt)
	}
	return "token-" + sessionID, nil
}

func (m *mockTokenIssuer) Parse(token string) (string, uint, error) {
	if m.ParseFunc != nil {
		return m.ParseFunc(token)
	}
	return "", 0, ErrUnauthorized
}
