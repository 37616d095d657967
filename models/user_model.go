package models

import "time"

type User struct {
	ID           string    `json:"id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	PushToken    string    `json:"-" bson:"push_token,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// UserSummary is the public view of a user returned by auth and friend endpoints.
type UserSummary struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

func (u User) Summary() UserSummary {
	return UserSummary{UserID: u.ID, Username: u.Username, Email: u.Email}
}
