package service

import (
	"context"
	"strings"
	"time"

	"todos-api/internal/domain"
	"todos-api/internal/repository"
)

// TodoPatch carries the whitelisted fields a caller may change. Nil means
// "leave as is".
type TodoPatch struct {
	Text      *string
	Completed *bool
}

// TodoService coordinates todo operations, always scoped to the creator. A
// todo belonging to another user is reported as not found, never as
// forbidden.
type TodoService interface {
	Create(ctx context.Context, creatorID, text string) (*domain.Todo, error)
	List(ctx context.Context, creatorID string) ([]domain.Todo, error)
	Get(ctx context.Context, id, creatorID string) (*domain.Todo, error)
	Update(ctx context.Context, id, creatorID string, patch TodoPatch) (*domain.Todo, error)
	Delete(ctx context.Context, id, creatorID string) (*domain.Todo, error)
}

type todoService struct {
	todos repository.TodoRepository
}

func NewTodoService(todos repository.TodoRepository) TodoService {
	return &todoService{todos: todos}
}

func (s *todoService) Create(ctx context.Context, creatorID, text string) (*domain.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, validationError("text is required")
	}

	todo := &domain.Todo{
		Text:      text,
		CreatorID: creatorID,
	}
	if err := s.todos.Create(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

func (s *todoService) List(ctx context.Context, creatorID string) ([]domain.Todo, error) {
	return s.todos.ListByCreator(ctx, creatorID)
}

func (s *todoService) Get(ctx context.Context, id, creatorID string) (*domain.Todo, error) {
	return s.todos.GetByIDAndCreator(ctx, id, creatorID)
}

func (s *todoService) Update(ctx context.Context, id, creatorID string, patch TodoPatch) (*domain.Todo, error) {
	todo, err := s.todos.GetByIDAndCreator(ctx, id, creatorID)
	if err != nil {
		return nil, err
	}

	if patch.Text != nil {
		text := strings.TrimSpace(*patch.Text)
		if text == "" {
			return nil, validationError("text is required")
		}
		todo.Text = text
	}

	if patch.Completed != nil && *patch.Completed {
		now := time.Now().UnixMilli()
		todo.Completed = true
		todo.CompletedAt = &now
	} else if patch.Completed != nil {
		todo.Completed = false
		todo.CompletedAt = nil
	}

	// the update statement is itself creator-scoped, so a todo deleted or
	// reassigned between read and write still resolves to not found
	if err := s.todos.Update(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

func (s *todoService) Delete(ctx context.Context, id, creatorID string) (*domain.Todo, error) {
	todo, err := s.todos.GetByIDAndCreator(ctx, id, creatorID)
	if err != nil {
		return nil, err
	}
	if err := s.todos.DeleteByIDAndCreator(ctx, id, creatorID); err != nil {
		return nil, err
	}
	return todo, nil
}
