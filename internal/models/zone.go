package models

import "github.com/paulmach/orb"

// Zone is one clustered area: the buffered convex hull of a cluster's member
// points plus summary attributes. Zones are immutable after construction and
// consumed only by the combiner.
type Zone struct {
	ClusterID   int
	Geometry    orb.Polygon
	MemberCount int

	// Dining-zone attributes. Restaurants holds up to ten sample member
	// names; the remaining fields are nil when the source table did not
	// carry the matching column.
	Restaurants      []string
	AvgRating        *float64
	AvgPriceLevel    *float64
	TotalUserRatings *int
	TopCuisines      []string

	// Arrival-hotspot attribute, min(100, member_count/10).
	PopularityScore float64
}

// HotspotRegion is the intersection of one dining zone and one arrival
// hotspot, scored and ranked. The full set is the pipeline's terminal output.
type HotspotRegion struct {
	Rank            int
	Name            string
	Geometry        orb.Polygon
	RestaurantCount int
	PopularityScore float64
	CombinedScore   float64
}

// Summary holds the aggregate statistics written next to the final regions.
type Summary struct {
	TotalHotspots      int     `json:"total_hotspots"`
	AvgRestaurantCount float64 `json:"avg_restaurant_count"`
	AvgPopularityScore float64 `json:"avg_popularity_score"`
	AvgCombinedScore   float64 `json:"avg_combined_score"`
	// TotalAreaKm2 uses the source's rough planar conversion
	// (squared degrees times 111x111) and is not consistent with the
	// haversine metric used for clustering. Do not use it where
	// geographic-area accuracy matters.
	TotalAreaKm2 float64 `json:"total_area_km2"`
}
