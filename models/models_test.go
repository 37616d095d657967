package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoPointLatLng(t *testing.T) {
	lat, lng, ok := NewPoint(41.3, -72.9).LatLng()
	require.True(t, ok)
	assert.Equal(t, 41.3, lat)
	assert.Equal(t, -72.9, lng)

	for _, p := range []GeoPoint{
		{},
		{Type: "LineString", Coordinates: []float64{1, 2}},
		{Type: "Point", Coordinates: []float64{1}},
	} {
		_, _, ok := p.LatLng()
		assert.False(t, ok, "%+v", p)
	}
}

func TestCheckinActive(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := Checkin{CreatedAt: now, ExpiresAt: now.Add(time.Hour)}

	assert.True(t, c.Active(now))
	assert.True(t, c.Active(now.Add(59*time.Minute)))
	assert.False(t, c.Active(now.Add(time.Hour)))
}

func TestUserJSONHidesSecrets(t *testing.T) {
	u := User{ID: "u1", Username: "ellen", PasswordHash: "hash", PushToken: "device"}
	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "hash")
	assert.NotContains(t, string(b), "device")
	assert.Equal(t, UserSummary{UserID: "u1", Username: "ellen"}, u.Summary())
}
