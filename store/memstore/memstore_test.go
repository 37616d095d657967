package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hangouts-server/models"
	"hangouts-server/store"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func checkin(id, owner, place string, created time.Time, ttl time.Duration) models.Checkin {
	return models.Checkin{
		ID:           id,
		UserID:       owner,
		LocationName: place,
		Location:     models.NewPoint(41.3, -72.9),
		CreatedAt:    created,
		ExpiresAt:    created.Add(ttl),
	}
}

func TestCreateUserRejectsDuplicateEmailAndUsername(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateUser(ctx, models.User{ID: "u1", Username: "ellen", Email: "ellen@example.com"}))

	err := s.CreateUser(ctx, models.User{ID: "u2", Username: "other", Email: "Ellen@example.com"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	err = s.CreateUser(ctx, models.User{ID: "u3", Username: "ellen", Email: "new@example.com"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	u, err := s.GetUserByEmail(ctx, "ELLEN@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = s.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNoRecord)
}

func TestDeleteCheckinCascadesAttendees(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.InsertCheckin(ctx, checkin("c1", "u1", "The Stack", t0, time.Hour)))
	require.NoError(t, s.InsertAttendee(ctx, models.Attendee{CheckinID: "c1", UserID: "u2", Status: models.AttendeeComing}))
	assert.ErrorIs(t, s.InsertAttendee(ctx, models.Attendee{CheckinID: "c1", UserID: "u2"}), store.ErrDuplicate)

	require.NoError(t, s.DeleteCheckin(ctx, "c1"))

	_, err := s.GetAttendee(ctx, "c1", "u2")
	assert.ErrorIs(t, err, store.ErrNoRecord)
	assert.ErrorIs(t, s.DeleteCheckin(ctx, "c1"), store.ErrNoRecord)
}

func TestListActiveCheckinsFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.InsertCheckin(ctx, checkin("old", "u1", "A", t0, time.Hour)))
	require.NoError(t, s.InsertCheckin(ctx, checkin("new", "u1", "B", t0.Add(10*time.Minute), time.Hour)))
	require.NoError(t, s.InsertCheckin(ctx, checkin("expired", "u1", "C", t0.Add(-2*time.Hour), time.Hour)))
	require.NoError(t, s.InsertCheckin(ctx, checkin("stranger", "u9", "D", t0, time.Hour)))

	got, err := s.ListActiveCheckins(ctx, []string{"u1"}, t0.Add(15*time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, "old", got[1].ID)
}

func TestListLocationNamesLimit(t *testing.T) {
	ctx := context.Background()
	s := New()
	for i, place := range []string{"A", "B", "C"} {
		require.NoError(t, s.InsertCheckin(ctx, checkin(place, "u1", place, t0.Add(time.Duration(i)*time.Minute), time.Hour)))
	}
	names, err := s.ListLocationNames(ctx, "", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B"}, names)

	names, err = s.ListLocationNames(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, names, 3)
}

func TestFriendshipStatusTransitions(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.InsertFriendship(ctx, models.Friendship{UserID: "a", FriendID: "b", Status: models.FriendshipPending}))
	assert.ErrorIs(t, s.InsertFriendship(ctx, models.Friendship{UserID: "a", FriendID: "b"}), store.ErrDuplicate)

	ok, err := s.UpdateFriendshipStatus(ctx, "a", "b", models.FriendshipAccepted, models.FriendshipPending)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.UpdateFriendshipStatus(ctx, "a", "b", models.FriendshipPending, models.FriendshipAccepted)
	require.NoError(t, err)
	assert.True(t, ok)

	ids, err := s.ListFriendIDs(ctx, "a", models.FriendshipAccepted)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)

	ids, err = s.ListRequesterIDs(ctx, "b", models.FriendshipPending)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
