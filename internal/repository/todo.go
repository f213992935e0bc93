package repository

import (
	"context"

	"todos-api/internal/domain"
)

// TodoRepository defines persistence operations for Todo entities. Lookups,
// updates and deletes are always constrained by creator id so that another
// user's todo is indistinguishable from a missing one.
type TodoRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, todo *domain.Todo) error
	ListByCreator(ctx context.Context, creatorID string) ([]domain.Todo, error)
	GetByIDAndCreator(ctx context.Context, id, creatorID string) (*domain.Todo, error)
	// Update persists text, completed and completed_at for the row matching
	// both todo.ID and todo.CreatorID; ErrNotFound when no row matches.
	Update(ctx context.Context, todo *domain.Todo) error
	DeleteByIDAndCreator(ctx context.Context, id, creatorID string) error
}
