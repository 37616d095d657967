package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hangouts-server/models"
	"hangouts-server/store/memstore"
	"hangouts-server/utils/errors"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock { return &fakeClock{t: t0} }

func addUser(t *testing.T, s *memstore.Store, id, username string) models.User {
	t.Helper()
	u := models.User{ID: id, Username: username, Email: username + "@example.com", CreatedAt: t0}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func ptr[T any](v T) *T { return &v }

// requireAPIError asserts err is an *errors.APIError with the given status.
func requireAPIError(t *testing.T, err error, status int) *errors.APIError {
	t.Helper()
	require.Error(t, err)
	apiErr, ok := err.(*errors.APIError)
	require.Truef(t, ok, "expected *APIError, got %T", err)
	require.Equal(t, status, apiErr.Status)
	return apiErr
}
