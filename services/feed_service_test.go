package services

import (
	"context"
	stderrors "errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hangouts-server/models"
	"hangouts-server/store/memstore"
)

type feedEnv struct {
	feed     *FeedService
	checkins *CheckinService
	friends  *FriendService
	store    *memstore.Store
	clock    *fakeClock
}

func newFeedEnv(t *testing.T) feedEnv {
	t.Helper()
	st := memstore.New()
	addUser(t, st, "v", "viewer")
	addUser(t, st, "f", "friend")
	addUser(t, st, "s", "stranger")
	clock := newClock()
	env := feedEnv{
		feed:     NewFeedService(st, st, st, st, clock.Now),
		checkins: NewCheckinService(st, st, clock.Now),
		friends:  NewFriendService(st, st, clock.Now),
		store:    st,
		clock:    clock,
	}
	_, err := env.friends.Request(context.Background(), "v", "f")
	require.NoError(t, err)
	require.NoError(t, env.friends.Accept(context.Background(), "v", "f"))
	return env
}

func (e feedEnv) post(t *testing.T, owner, place string, minutes int) models.Checkin {
	t.Helper()
	c, err := e.checkins.Create(context.Background(), CreateCheckinInput{
		UserID:          owner,
		Lat:             ptr(41.308),
		Lng:             ptr(-72.927),
		LocationName:    place,
		Message:         "come by",
		DurationMinutes: ptr(minutes),
	})
	require.NoError(t, err)
	return c
}

func feedIDs(items []models.FeedItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestFeedShowsOwnAndFriendsCheckinsNewestFirst(t *testing.T) {
	env := newFeedEnv(t)
	own := env.post(t, "v", "Library", 60)
	env.clock.Advance(time.Minute)
	friends := env.post(t, "f", "Cafe", 60)
	env.clock.Advance(time.Minute)
	env.post(t, "s", "Elsewhere", 60)

	items, err := env.feed.Feed(context.Background(), "v")
	require.NoError(t, err)
	assert.Equal(t, []string{friends.ID, own.ID}, feedIDs(items))

	first := items[0]
	assert.Equal(t, "friend", first.Username)
	assert.Equal(t, "Cafe", first.LocationName)
	assert.Equal(t, "come by", first.Message)
	assert.Equal(t, 41.308, first.Lat)
	assert.Equal(t, -72.927, first.Lng)
	assert.Equal(t, "2025-03-01T12:01:00Z", first.CreatedAt)
	assert.Equal(t, "2025-03-01T13:01:00Z", first.ExpiresAt)
	assert.NotNil(t, first.Attendees)
	assert.Empty(t, first.Attendees)
}

func TestFeedUsesOutgoingEdgesOnly(t *testing.T) {
	env := newFeedEnv(t)
	ctx := context.Background()
	_, err := env.friends.Request(ctx, "s", "v")
	require.NoError(t, err)
	env.post(t, "s", "Pending", 60)

	items, err := env.feed.Feed(ctx, "v")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFeedExcludesExpiredCheckins(t *testing.T) {
	env := newFeedEnv(t)
	ctx := context.Background()
	c := env.post(t, "f", "Short stop", 30)

	env.clock.Advance(10 * time.Minute)
	items, err := env.feed.Feed(ctx, "v")
	require.NoError(t, err)
	require.Equal(t, []string{c.ID}, feedIDs(items))
	assert.Equal(t, 41.308, items[0].Lat)
	assert.Equal(t, -72.927, items[0].Lng)

	env.clock.Advance(20 * time.Minute)
	items, err = env.feed.Feed(ctx, "v")
	require.NoError(t, err)
	assert.Empty(t, items)

	env.clock.Advance(time.Minute)
	items, err = env.feed.Feed(ctx, "v")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFeedListsAttendeesAndUnknownOwner(t *testing.T) {
	env := newFeedEnv(t)
	ctx := context.Background()
	c := env.post(t, "f", "Cafe", 60)
	require.NoError(t, env.store.InsertAttendee(ctx, models.Attendee{CheckinID: c.ID, UserID: "v", Status: models.AttendeeComing, CreatedAt: t0}))

	// A malformed point renders as (0, 0).
	orphan := models.Checkin{
		ID:           "orphan",
		UserID:       "f",
		LocationName: "Lost",
		Location:     models.GeoPoint{Type: "Point"},
		CreatedAt:    t0.Add(-time.Minute),
		ExpiresAt:    t0.Add(time.Hour),
	}
	require.NoError(t, env.store.InsertCheckin(ctx, orphan))

	items, err := env.feed.Feed(ctx, "v")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, []models.FeedAttendee{{UserID: "v", Username: "viewer"}}, items[0].Attendees)
	assert.Equal(t, "orphan", items[1].ID)
	assert.Zero(t, items[1].Lat)
	assert.Zero(t, items[1].Lng)
}

func TestFeedOwnerMissingIsUnknown(t *testing.T) {
	st := memstore.New()
	clock := newClock()
	feed := NewFeedService(st, st, st, st, clock.Now)
	require.NoError(t, st.InsertCheckin(context.Background(), models.Checkin{
		ID:        "c1",
		UserID:    "ghost",
		Location:  models.NewPoint(1, 2),
		CreatedAt: t0,
		ExpiresAt: t0.Add(time.Hour),
	}))

	items, err := feed.Feed(context.Background(), "ghost")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Unknown", items[0].Username)
}

func TestFeedRequiresViewer(t *testing.T) {
	env := newFeedEnv(t)
	_, err := env.feed.Feed(context.Background(), "")
	requireAPIError(t, err, http.StatusBadRequest)
}

type failingCheckins struct {
	*memstore.Store
	err error
}

func (f failingCheckins) ListActiveCheckins(context.Context, []string, time.Time) ([]models.Checkin, error) {
	return nil, f.err
}

type failingAttendees struct {
	*memstore.Store
	err error
}

func (f failingAttendees) ListAttendees(context.Context, string) ([]models.Attendee, error) {
	return nil, f.err
}

func TestFeedFailsWholeOnStoreError(t *testing.T) {
	env := newFeedEnv(t)
	env.post(t, "v", "Cafe", 30)
	env.post(t, "f", "Gym", 30)
	st, now := env.store, env.clock.Now

	cases := map[string]struct {
		feed *FeedService
		msg  string
	}{
		"checkins": {
			feed: NewFeedService(st, failingCheckins{st, stderrors.New("checkins: timeout")}, st, st, now),
			msg:  "checkins: timeout",
		},
		"attendees": {
			feed: NewFeedService(st, st, failingAttendees{st, stderrors.New("attendees: connection reset")}, st, now),
			msg:  "attendees: connection reset",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			items, err := tc.feed.Feed(context.Background(), "v")
			assert.Empty(t, items)
			apiErr := requireAPIError(t, err, http.StatusInternalServerError)
			assert.Equal(t, "STORE_FAILURE", apiErr.Code)
			assert.Equal(t, tc.msg, apiErr.Message)
		})
	}
}
