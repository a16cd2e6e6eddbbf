package models

import "time"

// NYC bounding box. Points outside these limits are considered invalid and
// are excluded at load time.
const (
	MinLongitude = -74.3
	MaxLongitude = -73.7
	MinLatitude  = 40.4
	MaxLatitude  = 41.0
)

// Source identifies the provider a restaurant table was exported from.
// It decides which source-specific attributes a dining zone carries.
type Source string

const (
	// SourceGoogleMaps marks tables with place_id and rating columns.
	SourceGoogleMaps Source = "google_maps"
	// SourceOpenStreetMap marks tables with amenity or cuisine columns.
	SourceOpenStreetMap Source = "openstreetmap"
	// SourceUnknown marks tables where neither signature matched.
	SourceUnknown Source = "unknown"
)

// GeoPoint is a single labeled coordinate, immutable once loaded.
// Optional attributes are nil/zero when the source column was absent or the
// row had no value.
type GeoPoint struct {
	Name             string    // Display name, may be empty for trip records.
	Longitude        float64   // Degrees, WGS84.
	Latitude         float64   // Degrees, WGS84.
	Rating           *float64  // Venue rating, google_maps sources only.
	PriceLevel       *float64  // Price level, google_maps sources only.
	UserRatingsTotal *int      // Rating count, google_maps sources only.
	Cuisine          string    // Semicolon-delimited tags, openstreetmap sources only.
	Timestamp        time.Time // Drop-off time, trip records only.
}

// InBounds reports whether the point lies inside the NYC bounding box.
func (p GeoPoint) InBounds() bool {
	return p.Longitude >= MinLongitude && p.Longitude <= MaxLongitude &&
		p.Latitude >= MinLatitude && p.Latitude <= MaxLatitude
}

// WeightedPoint is a GeoPoint with a relative clustering weight.
// Restaurant points always carry weight 1.0; trip points get their weight
// from the dining-hour table.
type WeightedPoint struct {
	GeoPoint
	Weight float64
}
