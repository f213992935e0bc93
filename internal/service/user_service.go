package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"todos-api/internal/auth"
	"todos-api/internal/domain"
	"todos-api/internal/repository"
)

var (
	// ErrInvalidCredentials covers both "no such email" and "wrong password"
	// so login failures do not reveal which addresses are registered.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned when signing up with a registered email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrValidation marks recoverable input errors.
	ErrValidation = errors.New("validation failed")
)

const minPasswordLength = 6

// UserService owns user accounts and their credential list.
type UserService interface {
	// Signup creates the account and issues its first auth token. The token
	// is persisted on the user before it is returned.
	Signup(ctx context.Context, email, password string) (*domain.User, string, error)
	// Login verifies credentials and appends a fresh auth token. Each login
	// gets its own token; concurrent sessions stay independently valid.
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	// FindByToken resolves a presented token to its user. The token must both
	// verify cryptographically and still be present in the user's credential
	// list; a revoked token fails even though its signature is intact.
	FindByToken(ctx context.Context, token string) (*domain.User, error)
	// RemoveToken revokes one token. Removing an absent token succeeds.
	RemoveToken(ctx context.Context, userID, token string) error
	ListTokens(ctx context.Context, userID string) ([]domain.UserToken, error)
}

type userService struct {
	users repository.UserRepository
	codec *auth.TokenCodec
}

func NewUserService(users repository.UserRepository, codec *auth.TokenCodec) UserService {
	return &userService{users: users, codec: codec}
}

func (s *userService) Signup(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, "", validationError("email is required")
	}
	if len(password) < minPasswordLength {
		return nil, "", validationError("password must be at least 6 characters")
	}

	// The only write path carrying a plaintext password; hashing happens
	// here, before the user is ever persisted.
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := s.issueToken(ctx, user.ID, auth.ScopeAuth)
	if err != nil {
		return nil, "", err
	}
	return sanitizeUser(user), token, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.findByCredentials(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(ctx, user.ID, auth.ScopeAuth)
	if err != nil {
		return nil, "", err
	}
	return sanitizeUser(user), token, nil
}

func (s *userService) findByCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) FindByToken(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.codec.Verify(token)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	if claims.Scope != auth.ScopeAuth {
		return nil, auth.ErrInvalidToken
	}

	user, err := s.users.GetByToken(ctx, claims.UserID, token, claims.Scope)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) RemoveToken(ctx context.Context, userID, token string) error {
	return s.users.RemoveToken(ctx, userID, token)
}

func (s *userService) ListTokens(ctx context.Context, userID string) ([]domain.UserToken, error) {
	return s.users.ListTokens(ctx, userID)
}

// issueToken hands the signed token back only after it is durably stored, so
// a persistence failure never leaks a token the store does not know about.
func (s *userService) issueToken(ctx context.Context, userID, scope string) (string, error) {
	token, err := s.codec.Issue(userID, scope)
	if err != nil {
		return "", err
	}
	if err := s.users.AppendToken(ctx, userID, scope, token); err != nil {
		return "", err
	}
	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
