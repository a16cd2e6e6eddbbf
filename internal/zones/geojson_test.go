package zones_test

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablescout/hotspots/internal/models"
	"github.com/tablescout/hotspots/internal/zones"
)

func testPolygon() orb.Polygon {
	return orb.Polygon{orb.Ring{
		{-73.99, 40.73}, {-73.98, 40.73}, {-73.98, 40.74}, {-73.99, 40.74}, {-73.99, 40.73},
	}}
}

// The combine stage reads the first two artifacts back from disk, so the
// decode path must survive a real serialization hop.
func TestDiningZoneArtifactRoundTrip(t *testing.T) {
	in := []models.Zone{{
		ClusterID:        0,
		Geometry:         testPolygon(),
		MemberCount:      12,
		Restaurants:      []string{"Joe's Pizza", "Balthazar"},
		AvgRating:        floatPtr(4.35),
		AvgPriceLevel:    floatPtr(2.1),
		TotalUserRatings: intPtr(6600),
	}, {
		ClusterID:   1,
		Geometry:    testPolygon(),
		MemberCount: 5,
		Restaurants: []string{"Katz's"},
		TopCuisines: []string{"deli", "sandwich"},
	}}

	raw, err := zones.EncodeDiningZones(in).MarshalJSON()
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	require.NoError(t, err)

	out, err := zones.DecodeDiningZones(fc)
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, 0, out[0].ClusterID)
	assert.Equal(t, 12, out[0].MemberCount)
	assert.Equal(t, []string{"Joe's Pizza", "Balthazar"}, out[0].Restaurants)
	require.NotNil(t, out[0].AvgRating)
	assert.InEpsilon(t, 4.35, *out[0].AvgRating, 1e-9)
	require.NotNil(t, out[0].TotalUserRatings)
	assert.Equal(t, 6600, *out[0].TotalUserRatings)
	assert.Equal(t, in[0].Geometry, out[0].Geometry)

	assert.Nil(t, out[1].AvgRating)
	assert.Equal(t, []string{"deli", "sandwich"}, out[1].TopCuisines)
}

func TestArrivalHotspotArtifactRoundTrip(t *testing.T) {
	in := []models.Zone{{
		ClusterID:       3,
		Geometry:        testPolygon(),
		MemberCount:     840,
		PopularityScore: 84,
	}}

	raw, err := zones.EncodeArrivalHotspots(in).MarshalJSON()
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	require.NoError(t, err)

	out, err := zones.DecodeArrivalHotspots(fc)
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, 3, out[0].ClusterID)
	assert.Equal(t, 840, out[0].MemberCount)
	assert.InEpsilon(t, 84.0, out[0].PopularityScore, 1e-9)
}

func TestEncodeRegions(t *testing.T) {
	regions := []models.HotspotRegion{{
		Rank:            1,
		Name:            "Dining Hotspot #1",
		Geometry:        testPolygon(),
		RestaurantCount: 20,
		PopularityScore: 80,
		CombinedScore:   130,
	}}

	fc := zones.EncodeRegions(regions)

	require.Len(t, fc.Features, 1)
	props := fc.Features[0].Properties
	assert.Equal(t, 1, props["rank"])
	assert.Equal(t, "Dining Hotspot #1", props["name"])
	assert.Equal(t, 20, props["restaurant_count"])
	assert.InEpsilon(t, 130.0, props["combined_score"].(float64), 1e-9)
}
