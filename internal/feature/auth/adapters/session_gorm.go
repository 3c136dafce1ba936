package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/feature/auth/usecase"
)

// sessionGorm is the database implementation of usecase.SessionRepository,
// used when Redis is not configured.
type sessionGorm struct {
	db  *gorm.DB
	now func() time.Time
}

// Compile-time check to ensure sessionGorm implements SessionRepository.
var _ usecase.SessionRepository = (*sessionGorm)(nil)

// NewSessionGorm creates a new instance of sessionGorm.
func NewSessionGorm(db *gorm.DB) *sessionGorm {
	return &sessionGorm{db: db, now: time.Now}
}

// Create persists a new session to the database. With a positive limit the
// user's oldest active sessions are deleted in the same transaction so that at
// most limit remain.
func (r *sessionGorm) Create(ctx context.Context, session *entity.Session, limit int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if limit > 0 {
			if err := r.evictOldest(tx, session.UserID, limit-1); err != nil {
				return err
			}
		}
		return tx.Omit("User").Create(SessionModelFromEntity(session)).Error
	})
}

// evictOldest deletes the user's active sessions beyond the newest keep. The
// user row is locked first so concurrent logins of one user run one at a time.
func (r *sessionGorm) evictOldest(tx *gorm.DB, userID uint, keep int) error {
	var owner entity.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", userID).
		Take(&owner).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var ids []string
	if err := tx.Model(&SessionModel{}).
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, r.now()).
		Order("created_at DESC").
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) <= keep {
		return nil
	}
	return tx.Where("id IN ?", ids[keep:]).Delete(&SessionModel{}).Error
}

// FindByID retrieves a session by its ID.
func (r *sessionGorm) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	var model SessionModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrSessionNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// Revoke marks a session as revoked by its ID.
func (r *sessionGorm) Revoke(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&SessionModel{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", r.now())

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrSessionNotFound
	}
	return nil
}

// RevokeAllByUserID revokes all sessions for a given user.
func (r *sessionGorm) RevokeAllByUserID(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Model(&SessionModel{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", r.now()).Error
}

// DeleteExpired removes expired sessions and returns how many were deleted.
func (r *sessionGorm) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", r.now()).
		Delete(&SessionModel{})
	return result.RowsAffected, result.Error
}

// CountByUserID returns the number of active sessions for a user.
func (r *sessionGorm) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&SessionModel{}).
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, r.now()).
		Count(&count).Error
	return count, err
}
