package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todos-api/internal/auth"
	"todos-api/internal/repository"
	"todos-api/internal/repository/sqlite"
)

func newTestRepos(t *testing.T) (repository.UserRepository, repository.TodoRepository) {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := sqlite.NewUserRepository(db)
	todos := sqlite.NewTodoRepository(db)
	require.NoError(t, users.Init(context.Background()))
	require.NoError(t, todos.Init(context.Background()))
	return users, todos
}

func newTestUserService(t *testing.T) (UserService, repository.UserRepository) {
	t.Helper()

	users, _ := newTestRepos(t)
	codec, err := auth.NewTokenCodec("unit-test-secret", time.Hour)
	require.NoError(t, err)
	return NewUserService(users, codec), users
}

func TestSignupIssuesStoredToken(t *testing.T) {
	svc, repo := newTestUserService(t)
	ctx := context.Background()

	user, token, err := svc.Signup(ctx, "Ethan@Example.com ", "useronepass")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ethan@example.com", user.Email)
	assert.Empty(t, user.PasswordHash, "sanitized user must not carry the hash")

	tokens, err := repo.ListTokens(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, auth.ScopeAuth, tokens[0].Scope)
	assert.Equal(t, token, tokens[0].Token)
}

func TestSignupValidation(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, "   ", "useronepass")
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.Signup(ctx, "short@example.com", "abc")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, "dup@example.com", "useronepass")
	require.NoError(t, err)

	_, _, err = svc.Signup(ctx, "dup@example.com", "otherpassword")
	assert.ErrorIs(t, err, ErrEmailTaken)

	// normalization applies before the uniqueness check
	_, _, err = svc.Signup(ctx, " DUP@example.com ", "otherpassword")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginAppendsToken(t *testing.T) {
	svc, repo := newTestUserService(t)
	ctx := context.Background()

	user, _, err := svc.Signup(ctx, "ethan@example.com", "useronepass")
	require.NoError(t, err)

	loggedIn, token, err := svc.Login(ctx, "ethan@example.com", "useronepass")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, user.ID, loggedIn.ID)

	tokens, err := repo.ListTokens(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, tokens, 2, "signup token plus login token")
}

func TestLoginCollapsesFailureModes(t *testing.T) {
	svc, repo := newTestUserService(t)
	ctx := context.Background()

	user, _, err := svc.Signup(ctx, "ethan@example.com", "useronepass")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "ethan@example.com", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "useronepass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	tokens, err := repo.ListTokens(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, tokens, 1, "failed logins must not touch the token list")
}

func TestFindByToken(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	user, token, err := svc.Signup(ctx, "ethan@example.com", "useronepass")
	require.NoError(t, err)

	found, err := svc.FindByToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, user.Email, found.Email)

	_, err = svc.FindByToken(ctx, "garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestFindByTokenAfterRevocation(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	user, token, err := svc.Signup(ctx, "ethan@example.com", "useronepass")
	require.NoError(t, err)

	require.NoError(t, svc.RemoveToken(ctx, user.ID, token))

	// the signature still verifies, but the stored entry is gone
	_, err = svc.FindByToken(ctx, token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestFindByTokenForeignSecret(t *testing.T) {
	svc, repo := newTestUserService(t)
	ctx := context.Background()

	user, _, err := svc.Signup(ctx, "ethan@example.com", "useronepass")
	require.NoError(t, err)

	// a token signed with another secret never resolves, even if a matching
	// row were stored
	foreign, err := auth.NewTokenCodec("some-other-secret", 0)
	require.NoError(t, err)
	forged, err := foreign.Issue(user.ID, auth.ScopeAuth)
	require.NoError(t, err)
	require.NoError(t, repo.AppendToken(ctx, user.ID, auth.ScopeAuth, forged))

	_, err = svc.FindByToken(ctx, forged)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRemoveTokenIdempotent(t *testing.T) {
	svc, repo := newTestUserService(t)
	ctx := context.Background()

	user, token, err := svc.Signup(ctx, "ethan@example.com", "useronepass")
	require.NoError(t, err)

	require.NoError(t, svc.RemoveToken(ctx, user.ID, token))
	require.NoError(t, svc.RemoveToken(ctx, user.ID, token))
	require.NoError(t, svc.RemoveToken(ctx, user.ID, "never-existed"))

	tokens, err := repo.ListTokens(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestConcurrentSessionsStayValid(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	user, first, err := svc.Signup(ctx, "ethan@example.com", "useronepass")
	require.NoError(t, err)

	_, second, err := svc.Login(ctx, "ethan@example.com", "useronepass")
	require.NoError(t, err)

	// revoking one session leaves the other usable
	require.NoError(t, svc.RemoveToken(ctx, user.ID, second))

	found, err := svc.FindByToken(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}
