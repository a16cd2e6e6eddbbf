package zones

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/tablescout/hotspots/internal/models"
)

// EncodeDiningZones serializes dining zones as a GeoJSON feature collection.
// Optional attributes appear only when derived.
func EncodeDiningZones(list []models.Zone) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, z := range list {
		f := geojson.NewFeature(z.Geometry)
		f.Properties["cluster_id"] = z.ClusterID
		f.Properties["restaurant_count"] = z.MemberCount
		f.Properties["restaurants"] = z.Restaurants
		if z.AvgRating != nil {
			f.Properties["avg_rating"] = *z.AvgRating
		}
		if z.AvgPriceLevel != nil {
			f.Properties["avg_price_level"] = *z.AvgPriceLevel
		}
		if z.TotalUserRatings != nil {
			f.Properties["total_user_ratings"] = *z.TotalUserRatings
		}
		if len(z.TopCuisines) > 0 {
			f.Properties["top_cuisines"] = z.TopCuisines
		}
		fc.Append(f)
	}
	return fc
}

// EncodeArrivalHotspots serializes taxi arrival zones.
func EncodeArrivalHotspots(list []models.Zone) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, z := range list {
		f := geojson.NewFeature(z.Geometry)
		f.Properties["cluster_id"] = z.ClusterID
		f.Properties["dropoff_count"] = z.MemberCount
		f.Properties["popularity_score"] = z.PopularityScore
		fc.Append(f)
	}
	return fc
}

// EncodeRegions serializes the final ranked hotspot regions, ordered by rank
// ascending as produced by the combiner.
func EncodeRegions(list []models.HotspotRegion) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range list {
		f := geojson.NewFeature(r.Geometry)
		f.Properties["rank"] = r.Rank
		f.Properties["name"] = r.Name
		f.Properties["restaurant_count"] = r.RestaurantCount
		f.Properties["popularity_score"] = r.PopularityScore
		f.Properties["combined_score"] = r.CombinedScore
		fc.Append(f)
	}
	return fc
}

// DecodeDiningZones reads a dining zone layer back from its artifact.
func DecodeDiningZones(fc *geojson.FeatureCollection) ([]models.Zone, error) {
	out := make([]models.Zone, 0, len(fc.Features))
	for i, f := range fc.Features {
		poly, ok := f.Geometry.(orb.Polygon)
		if !ok {
			return nil, fmt.Errorf("dining zone feature %d: unexpected geometry %T", i, f.Geometry)
		}
		z := models.Zone{
			ClusterID:   propInt(f, "cluster_id"),
			Geometry:    poly,
			MemberCount: propInt(f, "restaurant_count"),
			Restaurants: propStrings(f, "restaurants"),
			TopCuisines: propStrings(f, "top_cuisines"),
		}
		if v, ok := propFloat(f, "avg_rating"); ok {
			z.AvgRating = &v
		}
		if v, ok := propFloat(f, "avg_price_level"); ok {
			z.AvgPriceLevel = &v
		}
		if v, ok := propFloat(f, "total_user_ratings"); ok {
			n := int(v)
			z.TotalUserRatings = &n
		}
		out = append(out, z)
	}
	return out, nil
}

// DecodeArrivalHotspots reads an arrival hotspot layer back from its
// artifact.
func DecodeArrivalHotspots(fc *geojson.FeatureCollection) ([]models.Zone, error) {
	out := make([]models.Zone, 0, len(fc.Features))
	for i, f := range fc.Features {
		poly, ok := f.Geometry.(orb.Polygon)
		if !ok {
			return nil, fmt.Errorf("arrival hotspot feature %d: unexpected geometry %T", i, f.Geometry)
		}
		score, _ := propFloat(f, "popularity_score")
		out = append(out, models.Zone{
			ClusterID:       propInt(f, "cluster_id"),
			Geometry:        poly,
			MemberCount:     propInt(f, "dropoff_count"),
			PopularityScore: score,
		})
	}
	return out, nil
}

// JSON numbers decode as float64 and arrays as []interface{}; these helpers
// also accept the native types so encoded collections round-trip without a
// marshal hop.

func propFloat(f *geojson.Feature, key string) (float64, bool) {
	switch v := f.Properties[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func propInt(f *geojson.Feature, key string) int {
	v, ok := propFloat(f, key)
	if !ok {
		return 0
	}
	return int(v)
}

func propStrings(f *geojson.Feature, key string) []string {
	switch v := f.Properties[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
