package models

import "time"

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
)

// Friendship is one directed edge. An accepted friendship is stored as two
// accepted edges, one in each direction.
type Friendship struct {
	UserID    string           `json:"user_id" bson:"user_id"`
	FriendID  string           `json:"friend_id" bson:"friend_id"`
	Status    FriendshipStatus `json:"status" bson:"status"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
}
