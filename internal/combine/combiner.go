// Package combine intersects the dining-zone layer with the arrival-hotspot
// layer and scores, ranks and names the resulting regions.
package combine

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb/planar"

	"github.com/tablescout/hotspots/internal/geometry"
	"github.com/tablescout/hotspots/internal/models"
	"github.com/tablescout/hotspots/internal/naming"
)

// restaurantTermScale caps the normalized restaurant term of the combined
// score; popularity contributes up to 100 on top.
const restaurantTermScale = 50

// degreesToKm is the rough planar conversion used for the area statistic.
// It is inconsistent with the haversine metric used for clustering and kept
// only for fidelity with the reference output.
const degreesToKm = 111.0

type zoneItem struct {
	rect rtreego.Rect
	idx  int
}

func (z zoneItem) Bounds() rtreego.Rect { return z.rect }

// Combiner computes the final hotspot regions.
type Combiner struct {
	log   *slog.Logger
	namer naming.Namer
}

// NewCombiner returns a combiner that names regions with the given namer.
func NewCombiner(log *slog.Logger, namer naming.Namer) *Combiner {
	return &Combiner{log: log, namer: namer}
}

// Combine intersects every dining zone with every arrival hotspot whose
// bounding boxes overlap, scores the intersection regions, and returns them
// ranked by combined score descending. Zero overlaps is a valid empty
// result, not an error.
func (c *Combiner) Combine(ctx context.Context, dining, arrival []models.Zone) ([]models.HotspotRegion, models.Summary) {
	tree := rtreego.NewTree(2, 25, 50)
	for i, az := range arrival {
		b := az.Geometry.Bound()
		rect, err := rtreego.NewRect(
			rtreego.Point{b.Min[0], b.Min[1]},
			[]float64{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1]},
		)
		if err != nil {
			c.log.WarnContext(ctx, "skipping arrival hotspot with degenerate bounds", "cluster", az.ClusterID, "error", err)
			continue
		}
		tree.Insert(zoneItem{rect: rect, idx: i})
	}

	var regions []models.HotspotRegion
	for _, dz := range dining {
		b := dz.Geometry.Bound()
		rect, err := rtreego.NewRect(
			rtreego.Point{b.Min[0], b.Min[1]},
			[]float64{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1]},
		)
		if err != nil {
			c.log.WarnContext(ctx, "skipping dining zone with degenerate bounds", "cluster", dz.ClusterID, "error", err)
			continue
		}

		candidates := tree.SearchIntersect(rect)
		idxs := make([]int, 0, len(candidates))
		for _, cand := range candidates {
			idxs = append(idxs, cand.(zoneItem).idx)
		}
		// The tree returns candidates in insertion-dependent order; sort
		// so output order only depends on the input layers.
		sort.Ints(idxs)

		for _, i := range idxs {
			az := arrival[i]
			poly, ok := geometry.ClipConvex(dz.Geometry, az.Geometry)
			if !ok {
				continue
			}
			regions = append(regions, models.HotspotRegion{
				Geometry:        poly,
				RestaurantCount: dz.MemberCount,
				PopularityScore: az.PopularityScore,
			})
		}
	}

	if len(regions) == 0 {
		c.log.WarnContext(ctx, "no overlap between dining zones and arrival hotspots")
		return nil, models.Summary{}
	}

	maxCount := 0
	for _, r := range regions {
		if r.RestaurantCount > maxCount {
			maxCount = r.RestaurantCount
		}
	}
	for i := range regions {
		regions[i].CombinedScore = float64(regions[i].RestaurantCount)/float64(maxCount)*restaurantTermScale +
			regions[i].PopularityScore
	}

	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].CombinedScore > regions[j].CombinedScore
	})
	for i := range regions {
		regions[i].Rank = i + 1
		centroid, _ := planar.CentroidArea(regions[i].Geometry)
		regions[i].Name = c.namer.Name(ctx, centroid, regions[i].Rank)
	}

	return regions, summarize(regions)
}

func summarize(regions []models.HotspotRegion) models.Summary {
	s := models.Summary{TotalHotspots: len(regions)}
	var area float64
	for _, r := range regions {
		s.AvgRestaurantCount += float64(r.RestaurantCount)
		s.AvgPopularityScore += r.PopularityScore
		s.AvgCombinedScore += r.CombinedScore
		area += math.Abs(planar.Area(r.Geometry))
	}
	n := float64(len(regions))
	s.AvgRestaurantCount /= n
	s.AvgPopularityScore /= n
	s.AvgCombinedScore /= n
	s.TotalAreaKm2 = area * degreesToKm * degreesToKm
	return s
}
