package models

import "time"

const (
	DefaultLocationName    = "Unknown Location"
	DefaultDurationMinutes = 60
	// MaxDurationMinutes is one week.
	MaxDurationMinutes = 7 * 24 * 60
)

type Checkin struct {
	ID           string    `json:"id" bson:"_id"`
	UserID       string    `json:"user_id" bson:"user_id"`
	LocationName string    `json:"location_name" bson:"location_name"`
	Location     GeoPoint  `json:"geom" bson:"geom"`
	Message      string    `json:"message" bson:"message"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	ExpiresAt    time.Time `json:"expires_at" bson:"expires_at"`
}

// Active reports whether the check-in has not yet expired at now.
func (c Checkin) Active(now time.Time) bool {
	return now.Before(c.ExpiresAt)
}

const AttendeeComing = "coming"

type Attendee struct {
	CheckinID string    `json:"checkin_id" bson:"checkin_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
