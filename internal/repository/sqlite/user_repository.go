package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"todos-api/internal/domain"
	"todos-api/internal/repository"
)

const createUsersTables = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS user_tokens (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	scope TEXT NOT NULL,
	token TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_user_tokens_user ON user_tokens(user_id);
`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTables); err != nil {
		return fmt.Errorf("create users tables: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (id, email, password_hash, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return repository.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, email, password_hash, created_at, updated_at
FROM users
WHERE email = ?`,
		email,
	)
	return scanUser(row)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, email, password_hash, created_at, updated_at
FROM users
WHERE id = ?`,
		id,
	)
	return scanUser(row)
}

func (r *UserRepository) GetByToken(ctx context.Context, userID, token, scope string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT u.id, u.email, u.password_hash, u.created_at, u.updated_at
FROM users u
WHERE u.id = ?
  AND EXISTS (
	SELECT 1 FROM user_tokens t
	WHERE t.user_id = u.id AND t.token = ? AND t.scope = ?
  )`,
		userID,
		token,
		scope,
	)
	return scanUser(row)
}

func (r *UserRepository) AppendToken(ctx context.Context, userID, scope, token string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO user_tokens (user_id, scope, token, created_at)
VALUES (?, ?, ?, ?)`,
		userID,
		scope,
		token,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

func (r *UserRepository) RemoveToken(ctx context.Context, userID, token string) error {
	if _, err := r.db.ExecContext(ctx, `
DELETE FROM user_tokens
WHERE user_id = ? AND token = ?`,
		userID,
		token,
	); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

func (r *UserRepository) ListTokens(ctx context.Context, userID string) ([]domain.UserToken, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT scope, token
FROM user_tokens
WHERE user_id = ?
ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	var tokens []domain.UserToken
	for rows.Next() {
		var t domain.UserToken
		if err := rows.Scan(&t.Scope, &t.Token); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tokens: %w", err)
	}
	return tokens, nil
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}
