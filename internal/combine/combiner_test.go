package combine_test

import (
	"log/slog"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablescout/hotspots/internal/combine"
	"github.com/tablescout/hotspots/internal/models"
	"github.com/tablescout/hotspots/internal/naming"
)

func square(x, y, side float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{x, y}, {x + side, y}, {x + side, y + side}, {x, y + side}, {x, y},
	}}
}

func TestCombine_SinglePair(t *testing.T) {
	c := combine.NewCombiner(slog.Default(), naming.StaticNamer{})
	footprint := square(-73.99, 40.73, 0.01)
	dining := []models.Zone{{ClusterID: 0, Geometry: footprint, MemberCount: 20}}
	arrival := []models.Zone{{ClusterID: 0, Geometry: footprint, MemberCount: 800, PopularityScore: 80}}

	regions, summary := c.Combine(t.Context(), dining, arrival)

	require.Len(t, regions, 1)
	r := regions[0]
	assert.Equal(t, 1, r.Rank)
	assert.Equal(t, "Dining Hotspot #1", r.Name)
	assert.Equal(t, 20, r.RestaurantCount)
	assert.InEpsilon(t, 80.0, r.PopularityScore, 1e-9)
	// Max restaurant count, so the restaurant term contributes the full 50.
	assert.InEpsilon(t, 130.0, r.CombinedScore, 1e-9)

	assert.Equal(t, 1, summary.TotalHotspots)
	assert.InEpsilon(t, 20.0, summary.AvgRestaurantCount, 1e-9)
	assert.InEpsilon(t, 130.0, summary.AvgCombinedScore, 1e-9)
	assert.Positive(t, summary.TotalAreaKm2)
}

func TestCombine_RanksByScoreDescending(t *testing.T) {
	c := combine.NewCombiner(slog.Default(), naming.StaticNamer{})
	footA := square(-73.99, 40.73, 0.01)
	footB := square(-73.90, 40.80, 0.01)
	dining := []models.Zone{
		{ClusterID: 0, Geometry: footB, MemberCount: 10},
		{ClusterID: 1, Geometry: footA, MemberCount: 20},
	}
	arrival := []models.Zone{
		{ClusterID: 0, Geometry: footA, PopularityScore: 80},
		{ClusterID: 1, Geometry: footB, PopularityScore: 90},
	}

	regions, summary := c.Combine(t.Context(), dining, arrival)

	require.Len(t, regions, 2)
	// 20/20*50+80 = 130 beats 10/20*50+90 = 115.
	assert.InEpsilon(t, 130.0, regions[0].CombinedScore, 1e-9)
	assert.Equal(t, 20, regions[0].RestaurantCount)
	assert.InEpsilon(t, 115.0, regions[1].CombinedScore, 1e-9)
	for i, r := range regions {
		assert.Equal(t, i+1, r.Rank)
	}
	assert.Equal(t, 2, summary.TotalHotspots)
	assert.InEpsilon(t, 122.5, summary.AvgCombinedScore, 1e-9)
}

func TestCombine_PartialOverlapGeometry(t *testing.T) {
	c := combine.NewCombiner(slog.Default(), naming.StaticNamer{})
	dining := []models.Zone{{ClusterID: 0, Geometry: square(0, 40, 0.02), MemberCount: 8}}
	arrival := []models.Zone{{ClusterID: 0, Geometry: square(0.01, 40.01, 0.02), PopularityScore: 40}}

	regions, _ := c.Combine(t.Context(), dining, arrival)

	require.Len(t, regions, 1)
	bound := regions[0].Geometry.Bound()
	assert.InEpsilon(t, 0.01, bound.Min[0], 1e-9)
	assert.InEpsilon(t, 0.02, bound.Max[0], 1e-9)
	assert.InEpsilon(t, 40.01, bound.Min[1], 1e-9)
	assert.InEpsilon(t, 40.02, bound.Max[1], 1e-9)
}

func TestCombine_NoOverlapIsEmptyNotError(t *testing.T) {
	c := combine.NewCombiner(slog.Default(), naming.StaticNamer{})
	dining := []models.Zone{{ClusterID: 0, Geometry: square(-73.99, 40.73, 0.01), MemberCount: 5}}
	arrival := []models.Zone{{ClusterID: 0, Geometry: square(-73.80, 40.90, 0.01), PopularityScore: 30}}

	regions, summary := c.Combine(t.Context(), dining, arrival)

	assert.Empty(t, regions)
	assert.Equal(t, 0, summary.TotalHotspots)
}

func TestCombine_EmptyLayers(t *testing.T) {
	c := combine.NewCombiner(slog.Default(), naming.StaticNamer{})

	regions, summary := c.Combine(t.Context(), nil, nil)

	assert.Empty(t, regions)
	assert.Equal(t, 0, summary.TotalHotspots)
}

func TestCombine_ScoreBounds(t *testing.T) {
	c := combine.NewCombiner(slog.Default(), naming.StaticNamer{})
	foot := square(-73.99, 40.73, 0.01)
	dining := []models.Zone{
		{ClusterID: 0, Geometry: foot, MemberCount: 3},
		{ClusterID: 1, Geometry: foot, MemberCount: 50},
	}
	arrival := []models.Zone{
		{ClusterID: 0, Geometry: foot, PopularityScore: 0},
		{ClusterID: 1, Geometry: foot, PopularityScore: 100},
	}

	regions, _ := c.Combine(t.Context(), dining, arrival)

	require.Len(t, regions, 4)
	for _, r := range regions {
		assert.GreaterOrEqual(t, r.CombinedScore, 0.0)
		assert.LessOrEqual(t, r.CombinedScore, 150.0)
	}
	assert.InEpsilon(t, 150.0, regions[0].CombinedScore, 1e-9)
}
