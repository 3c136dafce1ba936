package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/shared/validation"
)

const (
	// BcryptCost is the work factor used for every stored password hash.
	BcryptCost = 12

	// maxPasswordBytes is the bcrypt input limit; longer passwords are rejected
	// rather than silently truncated.
	maxPasswordBytes = 72

	// fallbackDummyHash is used only if generating the per-instance dummy hash fails.
	fallbackDummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
)

// UserRepository abstracts the persistence layer for user entities.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// Create persists a new user. It returns ErrEmailAlreadyExists when the
	// email is taken; the uniqueness check and insert are atomic.
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail returns ErrUserNotFound when no user has the email.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID returns ErrUserNotFound when no user has the ID.
	FindByID(ctx context.Context, id uint) (*entity.User, error)
}

// Option customizes an authUsecase.
type Option func(*authUsecase)

// WithBcryptCost overrides BcryptCost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(u *authUsecase) {
		u.cost = cost
	}
}

// authUsecase is the credential store: it registers users and verifies
// email/password pairs.
type authUsecase struct {
	users     UserRepository
	cost      int
	dummyHash []byte
}

// NewAuthUsecase creates a new authUsecase.
func NewAuthUsecase(users UserRepository, opts ...Option) *authUsecase {
	u := &authUsecase{
		users: users,
		cost:  BcryptCost,
	}
	for _, opt := range opts {
		opt(u)
	}

	// Verify compares against this hash for unknown emails so both paths cost
	// one bcrypt comparison at the configured work factor.
	hash, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), u.cost)
	if err != nil {
		slog.Warn("failed to generate dummy password hash", "error", err)
		hash = []byte(fallbackDummyHash)
	}
	u.dummyHash = hash
	return u
}

// NormalizeEmail trims surrounding whitespace and lowercases email. It is
// applied before every uniqueness check and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type registration struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6"`
}

func (r registration) validate() error {
	var errs validation.Errors
	if err := validation.Struct(r); err != nil && !errors.As(err, &errs) {
		return err
	}
	if len(r.Password) > maxPasswordBytes && errs.For("password") == "" {
		errs = errs.Add("password", fmt.Sprintf("Must be at most %d bytes long.", maxPasswordBytes))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Register creates a user with a bcrypt-hashed password. It returns
// validation.Errors for bad input and ErrEmailAlreadyExists when the
// normalized email is taken.
func (u *authUsecase) Register(ctx context.Context, name, email, password string) (*entity.User, error) {
	in := registration{
		Name:     strings.TrimSpace(name),
		Email:    NormalizeEmail(email),
		Password: password,
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), u.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{Name: in.Name, Email: in.Email, Password: string(hashed)}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Verify returns the user whose email and password match. Unknown emails and
// wrong passwords both yield ErrInvalidCredentials after one bcrypt
// comparison, so neither the result nor the timing reveals which check failed.
func (u *authUsecase) Verify(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := u.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	hash := u.dummyHash
	if err == nil {
		hash = []byte(user.Password)
	}
	compareErr := bcrypt.CompareHashAndPassword(hash, []byte(password))

	if err != nil || compareErr != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
