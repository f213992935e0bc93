package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"todos-api/internal/domain"
	"todos-api/internal/repository"
)

const createTodosTable = `
CREATE TABLE IF NOT EXISTS todos (
	id TEXT PRIMARY KEY,
	text TEXT NOT NULL,
	completed INTEGER NOT NULL DEFAULT 0,
	completed_at INTEGER NULL,
	creator_id TEXT NOT NULL REFERENCES users(id),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_todos_creator ON todos(creator_id);
`

type TodoRepository struct {
	db *sql.DB
}

func NewTodoRepository(db *sql.DB) repository.TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTodosTable); err != nil {
		return fmt.Errorf("create todos table: %w", err)
	}
	return nil
}

func (r *TodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	now := time.Now().UTC()
	todo.ID = uuid.NewString()
	todo.CreatedAt = now
	todo.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
INSERT INTO todos (id, text, completed, completed_at, creator_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		todo.ID,
		todo.Text,
		boolToInt(todo.Completed),
		todo.CompletedAt,
		todo.CreatorID,
		todo.CreatedAt,
		todo.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	return nil
}

func (r *TodoRepository) ListByCreator(ctx context.Context, creatorID string) ([]domain.Todo, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, text, completed, completed_at, creator_id, created_at, updated_at
FROM todos
WHERE creator_id = ?
ORDER BY rowid`,
		creatorID,
	)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	var todos []domain.Todo
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate todos: %w", err)
	}
	return todos, nil
}

func (r *TodoRepository) GetByIDAndCreator(ctx context.Context, id, creatorID string) (*domain.Todo, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, text, completed, completed_at, creator_id, created_at, updated_at
FROM todos
WHERE id = ? AND creator_id = ?`,
		id,
		creatorID,
	)
	return scanTodo(row)
}

func (r *TodoRepository) Update(ctx context.Context, todo *domain.Todo) error {
	todo.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
UPDATE todos
SET text = ?, completed = ?, completed_at = ?, updated_at = ?
WHERE id = ? AND creator_id = ?`,
		todo.Text,
		boolToInt(todo.Completed),
		todo.CompletedAt,
		todo.UpdatedAt,
		todo.ID,
		todo.CreatorID,
	)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update todo rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TodoRepository) DeleteByIDAndCreator(ctx context.Context, id, creatorID string) error {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM todos
WHERE id = ? AND creator_id = ?`,
		id,
		creatorID,
	)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete todo rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanTodo(row interface {
	Scan(dest ...any) error
}) (*domain.Todo, error) {
	var (
		todo        domain.Todo
		completed   int
		completedAt sql.NullInt64
	)
	if err := row.Scan(
		&todo.ID,
		&todo.Text,
		&completed,
		&completedAt,
		&todo.CreatorID,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan todo: %w", err)
	}
	todo.Completed = completed != 0
	if completedAt.Valid {
		v := completedAt.Int64
		todo.CompletedAt = &v
	}
	return &todo, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
