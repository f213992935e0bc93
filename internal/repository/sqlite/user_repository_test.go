package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todos-api/internal/domain"
	"todos-api/internal/repository"
)

func newTestUserRepo(t *testing.T) repository.UserRepository {
	t.Helper()

	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewUserRepository(db)
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func TestUserRepositoryCreateAndLookup(t *testing.T) {
	repo := newTestUserRepo(t)
	ctx := context.Background()

	user := &domain.User{Email: "ethan@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	require.NotEmpty(t, user.ID)

	byEmail, err := repo.GetByEmail(ctx, "ethan@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ethan@example.com", byID.Email)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	repo := newTestUserRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{Email: "dup@example.com", PasswordHash: "h"}))
	err := repo.Create(ctx, &domain.User{Email: "dup@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, repository.ErrEmailTaken)
}

func TestUserRepositoryTokenList(t *testing.T) {
	repo := newTestUserRepo(t)
	ctx := context.Background()

	user := &domain.User{Email: "ethan@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.AppendToken(ctx, user.ID, "auth", "token-one"))
	require.NoError(t, repo.AppendToken(ctx, user.ID, "auth", "token-two"))

	tokens, err := repo.ListTokens(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "token-one", tokens[0].Token)
	assert.Equal(t, "token-two", tokens[1].Token)

	// exact token and scope both required
	found, err := repo.GetByToken(ctx, user.ID, "token-one", "auth")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.GetByToken(ctx, user.ID, "token-one", "other-scope")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetByToken(ctx, user.ID, "token-three", "auth")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.RemoveToken(ctx, user.ID, "token-one"))
	require.NoError(t, repo.RemoveToken(ctx, user.ID, "token-one")) // no-op

	tokens, err = repo.ListTokens(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "token-two", tokens[0].Token)
}

func TestUserRepositoryTokenScopedToUser(t *testing.T) {
	repo := newTestUserRepo(t)
	ctx := context.Background()

	userA := &domain.User{Email: "a@example.com", PasswordHash: "h"}
	userB := &domain.User{Email: "b@example.com", PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, userA))
	require.NoError(t, repo.Create(ctx, userB))

	require.NoError(t, repo.AppendToken(ctx, userA.ID, "auth", "shared-token"))

	_, err := repo.GetByToken(ctx, userB.ID, "shared-token", "auth")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// removing from the wrong user leaves the owner's entry intact
	require.NoError(t, repo.RemoveToken(ctx, userB.ID, "shared-token"))
	tokens, err := repo.ListTokens(ctx, userA.ID)
	require.NoError(t, err)
	assert.Len(t, tokens, 1)
}
