// Package pipeline orchestrates the three batch stages: restaurant dining
// zones, taxi arrival hotspots, and the combined ranked regions.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/tablescout/hotspots/internal/cluster"
	"github.com/tablescout/hotspots/internal/combine"
	"github.com/tablescout/hotspots/internal/config"
	"github.com/tablescout/hotspots/internal/dining"
	"github.com/tablescout/hotspots/internal/loader"
	"github.com/tablescout/hotspots/internal/metrics"
	"github.com/tablescout/hotspots/internal/models"
	"github.com/tablescout/hotspots/internal/naming"
	"github.com/tablescout/hotspots/internal/repository"
	"github.com/tablescout/hotspots/internal/zones"
)

// Artifact file names under the configured output directory.
const (
	DiningZonesFile     = "dining_zones.geojson"
	ArrivalHotspotsFile = "arrival_hotspots.geojson"
	HotspotRegionsFile  = "hotspot_regions.geojson"
	StatisticsFile      = "hotspot_statistics.json"
)

// Pipeline runs the batch stages and writes their artifacts. The repository
// is optional; when nil results are only written to disk.
type Pipeline struct {
	log     *slog.Logger
	cfg     *config.Config
	metrics *metrics.Metrics
	repo    repository.Interface
	namer   naming.Namer
}

// NewPipeline creates a pipeline with the given collaborators.
func NewPipeline(
	log *slog.Logger,
	cfg *config.Config,
	appMetrics *metrics.Metrics,
	repo repository.Interface,
	namer naming.Namer,
) *Pipeline {
	return &Pipeline{
		log:     log,
		cfg:     cfg,
		metrics: appMetrics,
		repo:    repo,
		namer:   namer,
	}
}

// RunRestaurants executes stage one: load restaurants, cluster them and
// polygonize the clusters into dining zones. The zone layer is returned so a
// full run can feed the combiner without re-reading the artifact.
func (p *Pipeline) RunRestaurants(ctx context.Context) ([]models.Zone, error) {
	start := time.Now()

	points, source, err := loader.LoadRestaurants(p.cfg.RestaurantsFile, p.log)
	if err != nil {
		return nil, fmt.Errorf("restaurant stage: %w", err)
	}
	p.metrics.PointsLoaded.WithLabelValues("restaurants").Add(float64(len(points)))

	coords := make([]orb.Point, len(points))
	for i, pt := range points {
		coords[i] = orb.Point{pt.Longitude, pt.Latitude}
	}

	labels := cluster.NewClusterer(p.cfg.MinClusterSize, p.cfg.MinSamples, p.log).Fit(coords)
	found, noise := countLabels(labels)
	p.metrics.ClustersFound.WithLabelValues("restaurants").Set(float64(found))
	p.metrics.NoisePoints.WithLabelValues("restaurants").Set(float64(noise))
	p.log.InfoContext(ctx, "restaurants clustered", "points", len(points), "clusters", found, "noise", noise)

	zoneList := zones.BuildDiningZones(points, labels, source, p.log)
	if len(zoneList) == 0 {
		p.log.WarnContext(ctx, "no dining zones produced", "file", p.cfg.RestaurantsFile)
	}
	p.metrics.ZonesBuilt.WithLabelValues("dining").Set(float64(len(zoneList)))

	if err = p.writeGeoJSON(DiningZonesFile, zones.EncodeDiningZones(zoneList)); err != nil {
		return nil, fmt.Errorf("restaurant stage: %w", err)
	}
	if p.repo != nil {
		if err = p.repo.SaveDiningZones(ctx, zoneList); err != nil {
			return nil, fmt.Errorf("restaurant stage: %w", err)
		}
	}

	p.metrics.StageSeconds.WithLabelValues("restaurants").Observe(time.Since(start).Seconds())
	return zoneList, nil
}

// RunTaxi executes stage two: load taxi trips, keep dining-hour drop-offs,
// replicate them by weight, cluster, and polygonize into arrival hotspots.
func (p *Pipeline) RunTaxi(ctx context.Context) ([]models.Zone, error) {
	start := time.Now()

	trips, err := loader.LoadTrips(p.cfg.TaxiFile, p.cfg.SampleFraction, p.log)
	if err != nil {
		return nil, fmt.Errorf("taxi stage: %w", err)
	}
	p.metrics.PointsLoaded.WithLabelValues("taxi").Add(float64(len(trips)))

	weighted := dining.FilterDiningHours(trips)
	p.metrics.PointsFiltered.WithLabelValues("taxi", "outside_dining_hours").
		Add(float64(len(trips) - len(weighted)))
	if len(weighted) == 0 {
		p.log.WarnContext(ctx, "no drop-offs within dining hours", "file", p.cfg.TaxiFile)
	}

	coords := dining.Replicate(weighted)
	labels := cluster.NewClusterer(p.cfg.TaxiMinClusterSize, p.cfg.TaxiMinSamples, p.log).Fit(coords)
	found, noise := countLabels(labels)
	p.metrics.ClustersFound.WithLabelValues("taxi").Set(float64(found))
	p.metrics.NoisePoints.WithLabelValues("taxi").Set(float64(noise))
	p.log.InfoContext(ctx, "taxi drop-offs clustered",
		"trips", len(trips), "weighted", len(weighted), "replicated", len(coords),
		"clusters", found, "noise", noise)

	zoneList := zones.BuildArrivalHotspots(coords, labels, p.log)
	if len(zoneList) == 0 {
		p.log.WarnContext(ctx, "no arrival hotspots produced", "file", p.cfg.TaxiFile)
	}
	p.metrics.ZonesBuilt.WithLabelValues("arrival").Set(float64(len(zoneList)))

	if err = p.writeGeoJSON(ArrivalHotspotsFile, zones.EncodeArrivalHotspots(zoneList)); err != nil {
		return nil, fmt.Errorf("taxi stage: %w", err)
	}
	if p.repo != nil {
		if err = p.repo.SaveArrivalHotspots(ctx, zoneList); err != nil {
			return nil, fmt.Errorf("taxi stage: %w", err)
		}
	}

	p.metrics.StageSeconds.WithLabelValues("taxi").Observe(time.Since(start).Seconds())
	return zoneList, nil
}

// RunCombine executes stage three from the artifacts of the first two stages.
func (p *Pipeline) RunCombine(ctx context.Context) error {
	diningFC, err := p.readFeatureCollection(DiningZonesFile)
	if err != nil {
		return fmt.Errorf("combine stage: %w", err)
	}
	diningZones, err := zones.DecodeDiningZones(diningFC)
	if err != nil {
		return fmt.Errorf("combine stage: %w", err)
	}

	arrivalFC, err := p.readFeatureCollection(ArrivalHotspotsFile)
	if err != nil {
		return fmt.Errorf("combine stage: %w", err)
	}
	arrivalZones, err := zones.DecodeArrivalHotspots(arrivalFC)
	if err != nil {
		return fmt.Errorf("combine stage: %w", err)
	}

	return p.combine(ctx, diningZones, arrivalZones)
}

// Run executes the three stages in order. The combiner consumes the first two
// stages' in-memory results instead of re-reading their artifacts.
func (p *Pipeline) Run(ctx context.Context) error {
	diningZones, err := p.RunRestaurants(ctx)
	if err != nil {
		return err
	}

	arrivalZones, err := p.RunTaxi(ctx)
	if err != nil {
		return err
	}

	return p.combine(ctx, diningZones, arrivalZones)
}

func (p *Pipeline) combine(ctx context.Context, diningZones, arrivalZones []models.Zone) error {
	start := time.Now()

	regions, summary := combine.NewCombiner(p.log, p.namer).Combine(ctx, diningZones, arrivalZones)
	p.metrics.RegionsProduced.Set(float64(len(regions)))
	p.log.InfoContext(ctx, "hotspot regions combined",
		"dining_zones", len(diningZones), "arrival_hotspots", len(arrivalZones), "regions", len(regions))

	if err := p.writeGeoJSON(HotspotRegionsFile, zones.EncodeRegions(regions)); err != nil {
		return fmt.Errorf("combine stage: %w", err)
	}
	if err := p.writeJSON(StatisticsFile, summary); err != nil {
		return fmt.Errorf("combine stage: %w", err)
	}
	if p.repo != nil {
		if err := p.repo.SaveHotspotRegions(ctx, regions); err != nil {
			return fmt.Errorf("combine stage: %w", err)
		}
	}

	p.metrics.StageSeconds.WithLabelValues("combine").Observe(time.Since(start).Seconds())
	return nil
}

func (p *Pipeline) writeGeoJSON(name string, fc *geojson.FeatureCollection) error {
	raw, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return p.writeFile(name, raw)
}

func (p *Pipeline) writeJSON(name string, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return p.writeFile(name, raw)
}

func (p *Pipeline) writeFile(name string, raw []byte) error {
	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(p.cfg.OutputDir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (p *Pipeline) readFeatureCollection(name string) (*geojson.FeatureCollection, error) {
	raw, err := os.ReadFile(filepath.Join(p.cfg.OutputDir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return fc, nil
}

func countLabels(labels []int) (clusters, noise int) {
	seen := make(map[int]struct{})
	for _, l := range labels {
		if l == cluster.Noise {
			noise++
			continue
		}
		seen[l] = struct{}{}
	}
	return len(seen), noise
}
