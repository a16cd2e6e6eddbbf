package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb/geojson"

	"github.com/tablescout/hotspots/internal/models"
)

// Each save replaces the previous run's rows so the tables always mirror the
// latest pipeline output.

const deleteDiningZonesQuery = `DELETE FROM dining_zones;`

const insertDiningZoneQuery = `
	INSERT INTO dining_zones (
		cluster_id, geometry, restaurant_count, restaurants,
		avg_rating, avg_price_level, total_user_ratings, top_cuisines
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`

const deleteArrivalHotspotsQuery = `DELETE FROM arrival_hotspots;`

const insertArrivalHotspotQuery = `
	INSERT INTO arrival_hotspots (cluster_id, geometry, dropoff_count, popularity_score)
	VALUES ($1, $2, $3, $4);
`

const deleteHotspotRegionsQuery = `DELETE FROM hotspot_regions;`

const insertHotspotRegionQuery = `
	INSERT INTO hotspot_regions (
		rank, name, geometry, restaurant_count, popularity_score, combined_score
	)
	VALUES ($1, $2, $3, $4, $5, $6);
`

// SaveDiningZones replaces the dining_zones table with the given layer.
func (r *Repository) SaveDiningZones(ctx context.Context, zones []models.Zone) error {
	if _, err := r.db.Exec(ctx, deleteDiningZonesQuery); err != nil {
		return fmt.Errorf("failed to clear dining zones: %w", err)
	}

	for _, z := range zones {
		geom, err := marshalGeometry(z)
		if err != nil {
			return fmt.Errorf("failed to encode dining zone %d: %w", z.ClusterID, err)
		}
		_, err = r.db.Exec(ctx, insertDiningZoneQuery,
			z.ClusterID, geom, z.MemberCount, z.Restaurants,
			z.AvgRating, z.AvgPriceLevel, z.TotalUserRatings, z.TopCuisines,
		)
		if err != nil {
			return fmt.Errorf("failed to insert dining zone %d: %w", z.ClusterID, err)
		}
	}

	r.log.DebugContext(ctx, "dining zones saved", "count", len(zones))
	return nil
}

// SaveArrivalHotspots replaces the arrival_hotspots table with the given layer.
func (r *Repository) SaveArrivalHotspots(ctx context.Context, zones []models.Zone) error {
	if _, err := r.db.Exec(ctx, deleteArrivalHotspotsQuery); err != nil {
		return fmt.Errorf("failed to clear arrival hotspots: %w", err)
	}

	for _, z := range zones {
		geom, err := marshalGeometry(z)
		if err != nil {
			return fmt.Errorf("failed to encode arrival hotspot %d: %w", z.ClusterID, err)
		}
		_, err = r.db.Exec(ctx, insertArrivalHotspotQuery,
			z.ClusterID, geom, z.MemberCount, z.PopularityScore,
		)
		if err != nil {
			return fmt.Errorf("failed to insert arrival hotspot %d: %w", z.ClusterID, err)
		}
	}

	r.log.DebugContext(ctx, "arrival hotspots saved", "count", len(zones))
	return nil
}

// SaveHotspotRegions replaces the hotspot_regions table with the ranked
// regions.
func (r *Repository) SaveHotspotRegions(ctx context.Context, regions []models.HotspotRegion) error {
	if _, err := r.db.Exec(ctx, deleteHotspotRegionsQuery); err != nil {
		return fmt.Errorf("failed to clear hotspot regions: %w", err)
	}

	for _, region := range regions {
		geom, err := json.Marshal(geojson.NewGeometry(region.Geometry))
		if err != nil {
			return fmt.Errorf("failed to encode hotspot region %d: %w", region.Rank, err)
		}
		_, err = r.db.Exec(ctx, insertHotspotRegionQuery,
			region.Rank, region.Name, string(geom),
			region.RestaurantCount, region.PopularityScore, region.CombinedScore,
		)
		if err != nil {
			return fmt.Errorf("failed to insert hotspot region %d: %w", region.Rank, err)
		}
	}

	r.log.DebugContext(ctx, "hotspot regions saved", "count", len(regions))
	return nil
}

func marshalGeometry(z models.Zone) (string, error) {
	raw, err := json.Marshal(geojson.NewGeometry(z.Geometry))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
