package pipeline_test

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Flaque/filet"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tablescout/hotspots/internal/config"
	"github.com/tablescout/hotspots/internal/metrics"
	"github.com/tablescout/hotspots/internal/models"
	"github.com/tablescout/hotspots/internal/naming"
	"github.com/tablescout/hotspots/internal/pipeline"
	"github.com/tablescout/hotspots/test/mocks"
)

// restaurantCSV is a single dense block of eight restaurants on a grid.
func restaurantCSV() string {
	var b strings.Builder
	b.WriteString("name,latitude,longitude\n")
	for i := range 8 {
		lat := 40.7300 + float64(i/3)*0.0004
		lon := -73.9900 + float64(i%3)*0.0004
		fmt.Fprintf(&b, "Restaurant %d,%.6f,%.6f\n", i, lat, lon)
	}
	return b.String()
}

// tripCSV drops one taxi trip on each of five spots around the same block,
// all during a Tuesday dinner window. Dinner weight 1.0 replicates each
// drop-off into ten clustering points.
func tripCSV() string {
	spots := [][2]float64{
		{40.7300, -73.9900},
		{40.7300, -73.9895},
		{40.7300, -73.9905},
		{40.7305, -73.9900},
		{40.7295, -73.9900},
	}
	var b strings.Builder
	b.WriteString("dropoff_latitude,dropoff_longitude,dropoff_datetime\n")
	for _, s := range spots {
		fmt.Fprintf(&b, "%.6f,%.6f,2016-01-05 19:10:00\n", s[0], s[1])
	}
	return b.String()
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := filet.TmpDir(t, "")

	restaurants := filepath.Join(dir, "restaurants.csv")
	require.NoError(t, os.WriteFile(restaurants, []byte(restaurantCSV()), 0o644))
	trips := filepath.Join(dir, "trips.csv")
	require.NoError(t, os.WriteFile(trips, []byte(tripCSV()), 0o644))

	return &config.Config{
		Env:                "local",
		RestaurantsFile:    restaurants,
		TaxiFile:           trips,
		OutputDir:          filepath.Join(dir, "processed"),
		MinClusterSize:     5,
		MinSamples:         2,
		TaxiMinClusterSize: 10,
		TaxiMinSamples:     5,
		SampleFraction:     1.0,
	}
}

func TestPipeline_Run(t *testing.T) {
	defer filet.CleanUp(t)
	cfg := testConfig(t)
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	pipe := pipeline.NewPipeline(slog.Default(), cfg, appMetrics, nil, naming.StaticNamer{})

	require.NoError(t, pipe.Run(t.Context()))

	// All four artifacts exist.
	for _, name := range []string{
		pipeline.DiningZonesFile,
		pipeline.ArrivalHotspotsFile,
		pipeline.HotspotRegionsFile,
		pipeline.StatisticsFile,
	} {
		_, err := os.Stat(filepath.Join(cfg.OutputDir, name))
		require.NoError(t, err, name)
	}

	raw, err := os.ReadFile(filepath.Join(cfg.OutputDir, pipeline.HotspotRegionsFile))
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	require.NoError(t, err)

	require.Len(t, fc.Features, 1)
	props := fc.Features[0].Properties
	assert.EqualValues(t, 1, props["rank"])
	assert.Equal(t, "Dining Hotspot #1", props["name"])
	assert.EqualValues(t, 8, props["restaurant_count"])
	// Five spots with dinner weight 1.0 replicate to 50 drop-offs, so
	// popularity is 5 and the top score is 50 + 5.
	assert.InEpsilon(t, 5.0, props["popularity_score"].(float64), 1e-9)
	assert.InEpsilon(t, 55.0, props["combined_score"].(float64), 1e-9)

	var summary models.Summary
	raw, err = os.ReadFile(filepath.Join(cfg.OutputDir, pipeline.StatisticsFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &summary))
	assert.Equal(t, 1, summary.TotalHotspots)
	assert.InEpsilon(t, 8.0, summary.AvgRestaurantCount, 1e-9)
	assert.InEpsilon(t, 55.0, summary.AvgCombinedScore, 1e-9)
	assert.Positive(t, summary.TotalAreaKm2)
}

func TestPipeline_RunCombineFromArtifacts(t *testing.T) {
	defer filet.CleanUp(t)
	cfg := testConfig(t)
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	pipe := pipeline.NewPipeline(slog.Default(), cfg, appMetrics, nil, naming.StaticNamer{})

	_, err := pipe.RunRestaurants(t.Context())
	require.NoError(t, err)
	_, err = pipe.RunTaxi(t.Context())
	require.NoError(t, err)

	// Stage three alone must be able to resume from the files on disk.
	require.NoError(t, pipe.RunCombine(t.Context()))

	_, err = os.Stat(filepath.Join(cfg.OutputDir, pipeline.HotspotRegionsFile))
	require.NoError(t, err)
}

func TestPipeline_PersistsWhenRepositoryConfigured(t *testing.T) {
	defer filet.CleanUp(t)
	cfg := testConfig(t)
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	mockRepo := mocks.NewInterface(t)
	pipe := pipeline.NewPipeline(slog.Default(), cfg, appMetrics, mockRepo, naming.StaticNamer{})

	mockRepo.On("SaveDiningZones", mock.Anything, mock.Anything).Return(nil).Once()
	mockRepo.On("SaveArrivalHotspots", mock.Anything, mock.Anything).Return(nil).Once()
	mockRepo.On("SaveHotspotRegions", mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, pipe.Run(t.Context()))

	mockRepo.AssertExpectations(t)
}

func TestPipeline_MissingInputFails(t *testing.T) {
	defer filet.CleanUp(t)
	cfg := testConfig(t)
	cfg.RestaurantsFile = filepath.Join(cfg.OutputDir, "missing.csv")
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	pipe := pipeline.NewPipeline(slog.Default(), cfg, appMetrics, nil, naming.StaticNamer{})

	_, err := pipe.RunRestaurants(t.Context())

	require.Error(t, err)
	require.ErrorContains(t, err, "restaurant stage")
}

func TestPipeline_CombineWithoutArtifactsFails(t *testing.T) {
	defer filet.CleanUp(t)
	cfg := testConfig(t)
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	pipe := pipeline.NewPipeline(slog.Default(), cfg, appMetrics, nil, naming.StaticNamer{})

	err := pipe.RunCombine(t.Context())

	require.Error(t, err)
	require.ErrorContains(t, err, "combine stage")
}
