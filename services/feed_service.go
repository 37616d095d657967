package services

import (
	"context"
	"time"

	"hangouts-server/models"
	"hangouts-server/utils/errors"
)

const unknownUsername = "Unknown"

type FeedService struct {
	friendships FriendshipStore
	checkins    CheckinStore
	attendees   AttendeeStore
	users       UserStore
	clock       Clock
}

func NewFeedService(friendships FriendshipStore, checkins CheckinStore, attendees AttendeeStore, users UserStore, clock Clock) *FeedService {
	return &FeedService{
		friendships: friendships,
		checkins:    checkins,
		attendees:   attendees,
		users:       users,
		clock:       clock,
	}
}

// formatTimestamp renders t as RFC 3339 in UTC, which always ends in Z.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Feed returns the active check-ins of viewer and of everyone viewer has an
// accepted outgoing friendship edge to, newest first. Any store failure
// fails the whole feed.
func (s *FeedService) Feed(ctx context.Context, viewer string) ([]models.FeedItem, error) {
	if viewer == "" {
		return nil, errors.Invalid("user_id required")
	}

	friendIDs, err := s.friendships.ListFriendIDs(ctx, viewer, models.FriendshipAccepted)
	if err != nil {
		return nil, errors.StoreFailure(err)
	}
	owners := append(friendIDs, viewer)

	checkins, err := s.checkins.ListActiveCheckins(ctx, owners, s.clock.now())
	if err != nil {
		return nil, errors.StoreFailure(err)
	}

	attendeesByCheckin := make(map[string][]models.Attendee, len(checkins))
	userIDs := make(map[string]struct{})
	for _, c := range checkins {
		attendees, err := s.attendees.ListAttendees(ctx, c.ID)
		if err != nil {
			return nil, errors.StoreFailure(err)
		}
		attendeesByCheckin[c.ID] = attendees
		userIDs[c.UserID] = struct{}{}
		for _, a := range attendees {
			userIDs[a.UserID] = struct{}{}
		}
	}

	usernames, err := s.usernames(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	feed := make([]models.FeedItem, 0, len(checkins))
	for _, c := range checkins {
		lat, lng, ok := c.Location.LatLng()
		if !ok {
			lat, lng = 0, 0
		}
		attendees := make([]models.FeedAttendee, 0, len(attendeesByCheckin[c.ID]))
		for _, a := range attendeesByCheckin[c.ID] {
			attendees = append(attendees, models.FeedAttendee{UserID: a.UserID, Username: nameOr(usernames, a.UserID)})
		}
		feed = append(feed, models.FeedItem{
			ID:           c.ID,
			UserID:       c.UserID,
			Username:     nameOr(usernames, c.UserID),
			LocationName: c.LocationName,
			Message:      c.Message,
			Lat:          lat,
			Lng:          lng,
			ExpiresAt:    formatTimestamp(c.ExpiresAt),
			CreatedAt:    formatTimestamp(c.CreatedAt),
			Attendees:    attendees,
		})
	}
	return feed, nil
}

func (s *FeedService) usernames(ctx context.Context, ids map[string]struct{}) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	list := make([]string, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}
	users, err := s.users.GetUsersByIDs(ctx, list)
	if err != nil {
		return nil, errors.StoreFailure(err)
	}
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names, nil
}

func nameOr(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return unknownUsername
}
