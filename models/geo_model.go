package models

// GeoPoint is a GeoJSON point. Coordinates are ordered [lng, lat].
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

func NewPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// LatLng extracts latitude and longitude. ok is false when the point is not a
// well-formed two-coordinate Point.
func (p GeoPoint) LatLng() (lat, lng float64, ok bool) {
	if p.Type != "Point" || len(p.Coordinates) != 2 {
		return 0, 0, false
	}
	return p.Coordinates[1], p.Coordinates[0], true
}
