package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hangouts-server/store/memstore"
)

func TestSignupAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(memstore.New(), newClock().Now)

	user, err := svc.Signup(ctx, " ellen ", "Ellen@Example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "ellen", user.Username)
	assert.Equal(t, "ellen@example.com", user.Email)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.NotEmpty(t, user.ID)

	got, err := svc.Authenticate(ctx, "ELLEN@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "ellen@example.com", "wrong-password")
	assert.Same(t, ErrInvalidCredentials, err)
	_, err = svc.Authenticate(ctx, "nobody@example.com", "secret123")
	assert.Same(t, ErrInvalidCredentials, err)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(memstore.New(), nil)

	_, err := svc.Signup(ctx, "ellen", "ellen@example.com", "secret123")
	require.NoError(t, err)
	_, err = svc.Signup(ctx, "ellen2", "ellen@example.com", "secret123")
	assert.Same(t, ErrDuplicateUser, err)
}

func TestSignupValidation(t *testing.T) {
	svc := NewUserService(memstore.New(), nil)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "", "a@example.com", "secret123")
	requireAPIError(t, err, http.StatusBadRequest)
	_, err = svc.Signup(ctx, "a", "not-an-email", "secret123")
	requireAPIError(t, err, http.StatusBadRequest)
	_, err = svc.Signup(ctx, "a", "a@example.com", "short")
	requireAPIError(t, err, http.StatusBadRequest)
}

func TestSetPushToken(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	addUser(t, st, "u1", "ellen")
	svc := NewUserService(st, nil)

	require.NoError(t, svc.SetPushToken(ctx, "u1", "token-1"))
	u, err := svc.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "token-1", u.PushToken)

	requireAPIError(t, svc.SetPushToken(ctx, "ghost", "token-1"), http.StatusNotFound)
	requireAPIError(t, svc.SetPushToken(ctx, "u1", " "), http.StatusBadRequest)
}
