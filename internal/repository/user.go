package repository

import (
	"context"

	"todos-api/internal/domain"
)

// UserRepository defines persistence operations for User entities, including
// the per-user credential list.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByToken resolves the user only if the exact token string is still
	// present in that user's credential list with the given scope.
	GetByToken(ctx context.Context, userID, token, scope string) (*domain.User, error)
	AppendToken(ctx context.Context, userID, scope, token string) error
	// RemoveToken deletes the entry matching the exact token string. Removing
	// an absent token is a no-op, not an error.
	RemoveToken(ctx context.Context, userID, token string) error
	ListTokens(ctx context.Context, userID string) ([]domain.UserToken, error)
}
