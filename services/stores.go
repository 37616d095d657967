package services

import (
	"context"
	"time"

	"hangouts-server/models"
)

// The store interfaces below are the only way services reach persistence.
// Each service depends on the narrowest set it needs; every backend in
// store/ satisfies all of them.

type UserStore interface {
	CreateUser(ctx context.Context, user models.User) error
	GetUserByID(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	SetPushToken(ctx context.Context, userID, token string) error
}

type FriendshipStore interface {
	GetFriendship(ctx context.Context, userID, friendID string) (models.Friendship, error)
	InsertFriendship(ctx context.Context, f models.Friendship) error
	UpdateFriendshipStatus(ctx context.Context, userID, friendID string, from, to models.FriendshipStatus) (bool, error)
	DeleteFriendship(ctx context.Context, userID, friendID string, status models.FriendshipStatus) (bool, error)
	// ListFriendIDs returns friend_id of every edge user_id -> friend_id with the status.
	ListFriendIDs(ctx context.Context, userID string, status models.FriendshipStatus) ([]string, error)
	// ListRequesterIDs returns user_id of every edge user_id -> friendID with the status.
	ListRequesterIDs(ctx context.Context, friendID string, status models.FriendshipStatus) ([]string, error)
}

type CheckinStore interface {
	InsertCheckin(ctx context.Context, c models.Checkin) error
	GetCheckin(ctx context.Context, id string) (models.Checkin, error)
	DeleteCheckin(ctx context.Context, id string) error
	// ListActiveCheckins returns check-ins owned by any of ownerIDs with
	// expires_at after now, newest first.
	ListActiveCheckins(ctx context.Context, ownerIDs []string, now time.Time) ([]models.Checkin, error)
	CountCheckins(ctx context.Context, userID string) (int64, error)
	ListLocationNames(ctx context.Context, userID string, limit int) ([]string, error)
}

type AttendeeStore interface {
	GetAttendee(ctx context.Context, checkinID, userID string) (models.Attendee, error)
	InsertAttendee(ctx context.Context, a models.Attendee) error
	ListAttendees(ctx context.Context, checkinID string) ([]models.Attendee, error)
}

// Clock returns the current time. Services default to time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}
