package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/silverlynx18/sock/pkg/errors"
)

func TestUserCreateAndAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.users.Create(ctx, CreateUserInput{
		Username: "ada",
		Email:    "Ada@Example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", user.Email)
	require.NotEqual(t, "correct horse battery", user.Password)

	authed, err := env.users.Authenticate(ctx, "ada", "correct horse battery")
	require.NoError(t, err)
	require.Equal(t, user.ID, authed.ID)

	// Email works as the identifier too.
	_, err = env.users.Authenticate(ctx, "ada@example.com", "correct horse battery")
	require.NoError(t, err)

	_, err = env.users.Authenticate(ctx, "ada", "wrong password")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestUserCreateRejectsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createUser(t, "ada")

	_, err := env.users.Create(ctx, CreateUserInput{
		Username: "ada",
		Email:    "other@example.com",
		Password: "correct horse battery",
	})
	require.ErrorIs(t, err, ErrUserExists)
}

func TestUserCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.Create(ctx, CreateUserInput{
		Username: "short",
		Email:    "short@example.com",
		Password: "tiny",
	})
	require.Error(t, err)
}

func TestUserLookupHelpers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := env.createUser(t, "ada")

	byEmail, err := env.users.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	require.Equal(t, created.ID, byEmail.ID)

	byUsername, err := env.users.FindByUsername(ctx, "ada")
	require.NoError(t, err)
	require.NotNil(t, byUsername)

	missing, err := env.users.FindByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	require.Nil(t, missing)

	_, err = env.users.GetByID(ctx, "no-such-id")
	require.ErrorIs(t, err, ErrUserNotFound)
}
