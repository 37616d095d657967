package models

type FeedAttendee struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// FeedItem is a check-in as shown in a viewer's feed. Timestamps are RFC 3339
// strings in UTC with a trailing Z.
type FeedItem struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Username     string         `json:"username"`
	LocationName string         `json:"location_name"`
	Message      string         `json:"message"`
	Lat          float64        `json:"lat"`
	Lng          float64        `json:"lng"`
	ExpiresAt    string         `json:"expires_at"`
	CreatedAt    string         `json:"created_at"`
	Attendees    []FeedAttendee `json:"attendees"`
}

type PlaceCount struct {
	LocationName string `json:"location_name"`
	Count        int    `json:"count"`
}

type UserStats struct {
	TotalCheckins     int64        `json:"total_checkins"`
	FavoritePlaces    []PlaceCount `json:"favorite_places"`
	CommunityTopPlace *PlaceCount  `json:"community_top_place"`
}
