package naming

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/paulmach/orb"
	"googlemaps.github.io/maps"
)

// GeoClient is the slice of the Google Maps API the namer needs. It allows
// easy mocking in tests.
type GeoClient interface {
	ReverseGeocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// GoogleNamer enriches the ranked name with the neighborhood the region's
// centroid reverse-geocodes to. Any API failure falls back to the plain
// ranked name.
type GoogleNamer struct {
	client GeoClient
	log    *slog.Logger
}

// NewGoogleNamer returns a namer backed by the given Google Maps client.
func NewGoogleNamer(client GeoClient, log *slog.Logger) *GoogleNamer {
	return &GoogleNamer{client: client, log: log}
}

func (g *GoogleNamer) Name(ctx context.Context, centroid orb.Point, rank int) string {
	base := rankedName(rank)

	req := &maps.GeocodingRequest{
		LatLng:     &maps.LatLng{Lat: centroid[1], Lng: centroid[0]},
		ResultType: []string{"neighborhood"},
	}
	results, err := g.client.ReverseGeocode(ctx, req)
	if err != nil {
		g.log.WarnContext(ctx, "reverse geocoding failed, using ranked name", "rank", rank, "error", err)
		return base
	}
	if hood := neighborhood(results); hood != "" {
		return fmt.Sprintf("%s (%s)", base, hood)
	}
	return base
}

func neighborhood(results []maps.GeocodingResult) string {
	for _, res := range results {
		for _, comp := range res.AddressComponents {
			for _, t := range comp.Types {
				if t == "neighborhood" {
					return comp.LongName
				}
			}
		}
	}
	return ""
}
