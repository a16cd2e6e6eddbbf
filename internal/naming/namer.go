// Package naming generates display names for ranked hotspot regions.
package naming

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
)

// Namer produces the display name for a hotspot region. Naming must never
// fail the combine stage, so implementations fall back to the plain ranked
// name instead of returning errors.
type Namer interface {
	Name(ctx context.Context, centroid orb.Point, rank int) string
}

// StaticNamer is the default: plain ranked names with no external lookups.
type StaticNamer struct{}

func (StaticNamer) Name(_ context.Context, _ orb.Point, rank int) string {
	return rankedName(rank)
}

func rankedName(rank int) string {
	return fmt.Sprintf("Dining Hotspot #%d", rank)
}
