// Package dining maps drop-off timestamps to meal-hour weights.
package dining

import (
	"math"
	"time"

	"github.com/paulmach/orb"

	"github.com/tablescout/hotspots/internal/models"
)

// replicationScale turns a weight into a whole number of point copies so the
// clusterer sees density proportional to 0.8 : 0.9 : 1.0.
const replicationScale = 10

// Weight returns the dining-hour weight for a local timestamp.
//
// Weekday lunch 11:30-14:00 -> 0.8, weekday dinner 18:00-21:30 -> 1.0,
// weekend lunch 12:00-15:00 -> 0.9, weekend dinner 18:00-22:30 -> 1.0,
// anything else -> 0. Bounds are inclusive and seconds are ignored.
func Weight(t time.Time) float64 {
	hour := float64(t.Hour()) + float64(t.Minute())/60
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		if hour >= 12 && hour <= 15 {
			return 0.9
		}
		if hour >= 18 && hour <= 22.5 {
			return 1.0
		}
	default:
		if hour >= 11.5 && hour <= 14 {
			return 0.8
		}
		if hour >= 18 && hour <= 21.5 {
			return 1.0
		}
	}
	return 0
}

// FilterDiningHours keeps only points that fall inside a dining window and
// attaches their weight. Weight zero is a hard filter, not a down-weight.
func FilterDiningHours(points []models.GeoPoint) []models.WeightedPoint {
	out := make([]models.WeightedPoint, 0, len(points))
	for _, p := range points {
		w := Weight(p.Timestamp)
		if w == 0 {
			continue
		}
		out = append(out, models.WeightedPoint{GeoPoint: p, Weight: w})
	}
	return out
}

// Replicate expands weighted points into round(weight*10) copies each, the
// coordinate set actually fed to the clusterer. Point duplication is an
// approximation of weighted density estimation; it preserves the relative
// influence ratios of the weight table.
func Replicate(points []models.WeightedPoint) []orb.Point {
	out := make([]orb.Point, 0, len(points)*replicationScale)
	for _, p := range points {
		copies := int(math.Round(p.Weight * replicationScale))
		for range copies {
			out = append(out, orb.Point{p.Longitude, p.Latitude})
		}
	}
	return out
}
