// Package zones turns cluster assignments into buffered convex-hull
// polygons with per-source summary attributes.
package zones

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/paulmach/orb"

	"github.com/tablescout/hotspots/internal/cluster"
	"github.com/tablescout/hotspots/internal/geometry"
	"github.com/tablescout/hotspots/internal/models"
)

const (
	// DiningBuffer is the outward expansion applied to dining zone hulls,
	// in degrees (~111 m).
	DiningBuffer = 0.001
	// ArrivalBuffer is the larger expansion for taxi arrival hotspots,
	// reflecting drop-off location imprecision relative to a venue.
	ArrivalBuffer = 0.0015

	// minPolygonMembers is the smallest cluster that can form a hull.
	minPolygonMembers = 3
	maxSampleNames    = 10
	topCuisineCount   = 3
	maxPopularity     = 100
)

// BuildDiningZones creates one zone per non-noise cluster with at least
// three members. Smaller clusters cannot support a hull and are skipped,
// never failing the stage. Source-specific attributes are derived only when
// the source table carried them.
func BuildDiningZones(points []models.GeoPoint, labels []int, source models.Source, log *slog.Logger) []models.Zone {
	var out []models.Zone
	for _, label := range clusterOrder(labels) {
		var members []models.GeoPoint
		for i, l := range labels {
			if l == label {
				members = append(members, points[i])
			}
		}
		if len(members) < minPolygonMembers {
			log.Warn("cluster too small for a polygon, skipping", "cluster", label, "members", len(members))
			continue
		}

		coords := make([]orb.Point, len(members))
		for i, m := range members {
			coords[i] = orb.Point{m.Longitude, m.Latitude}
		}
		zone := models.Zone{
			ClusterID:   label,
			Geometry:    geometry.Buffer(geometry.ConvexHull(coords), DiningBuffer),
			MemberCount: len(members),
			Restaurants: sampleNames(members),
		}

		switch source {
		case models.SourceGoogleMaps:
			if avg, ok := meanRating(members); ok {
				v := roundTo(avg, 2)
				zone.AvgRating = &v
			}
			if avg, ok := meanPriceLevel(members); ok {
				v := roundTo(avg, 1)
				zone.AvgPriceLevel = &v
			}
			if total, ok := totalUserRatings(members); ok {
				zone.TotalUserRatings = &total
			}
		case models.SourceOpenStreetMap:
			zone.TopCuisines = topCuisines(members)
		case models.SourceUnknown:
		}
		out = append(out, zone)
	}
	return out
}

// BuildArrivalHotspots creates arrival zones from the replicated drop-off
// coordinates. Counts and popularity are defined on the replicated set, so
// heavier dining windows score higher.
func BuildArrivalHotspots(coords []orb.Point, labels []int, log *slog.Logger) []models.Zone {
	var out []models.Zone
	for _, label := range clusterOrder(labels) {
		var members []orb.Point
		for i, l := range labels {
			if l == label {
				members = append(members, coords[i])
			}
		}
		if len(members) < minPolygonMembers {
			log.Warn("cluster too small for a polygon, skipping", "cluster", label, "members", len(members))
			continue
		}
		out = append(out, models.Zone{
			ClusterID:       label,
			Geometry:        geometry.Buffer(geometry.ConvexHull(members), ArrivalBuffer),
			MemberCount:     len(members),
			PopularityScore: math.Min(maxPopularity, float64(len(members))/10),
		})
	}
	return out
}

// clusterOrder returns the distinct non-noise labels in order of first
// appearance, keeping zone output deterministic.
func clusterOrder(labels []int) []int {
	seen := make(map[int]bool)
	var order []int
	for _, l := range labels {
		if l == cluster.Noise || seen[l] {
			continue
		}
		seen[l] = true
		order = append(order, l)
	}
	return order
}

func sampleNames(members []models.GeoPoint) []string {
	var names []string
	for _, m := range members {
		if m.Name == "" {
			continue
		}
		names = append(names, m.Name)
		if len(names) == maxSampleNames {
			break
		}
	}
	return names
}

func meanRating(members []models.GeoPoint) (float64, bool) {
	sum, n := 0.0, 0
	for _, m := range members {
		if m.Rating != nil {
			sum += *m.Rating
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func meanPriceLevel(members []models.GeoPoint) (float64, bool) {
	sum, n := 0.0, 0
	for _, m := range members {
		if m.PriceLevel != nil {
			sum += *m.PriceLevel
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func totalUserRatings(members []models.GeoPoint) (int, bool) {
	sum, ok := 0, false
	for _, m := range members {
		if m.UserRatingsTotal != nil {
			sum += *m.UserRatingsTotal
			ok = true
		}
	}
	return sum, ok
}

// topCuisines splits semicolon-delimited tags, counts each individually and
// returns the three most frequent. Ties order alphabetically.
func topCuisines(members []models.GeoPoint) []string {
	counts := make(map[string]int)
	for _, m := range members {
		if m.Cuisine == "" {
			continue
		}
		for _, c := range strings.Split(m.Cuisine, ";") {
			c = strings.TrimSpace(c)
			if c != "" {
				counts[c]++
			}
		}
	}
	if len(counts) == 0 {
		return nil
	}
	tags := make([]string, 0, len(counts))
	for c := range counts {
		tags = append(tags, c)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if len(tags) > topCuisineCount {
		tags = tags[:topCuisineCount]
	}
	return tags
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
