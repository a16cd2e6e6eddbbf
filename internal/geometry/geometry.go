// Package geometry holds the convex geometry the zone and combiner stages
// rely on: hull construction, outward buffering, and convex overlay. All
// coordinates are unprojected longitude/latitude degrees.
package geometry

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// bufferSegments is the number of samples used to discretize the disc swept
// around each hull vertex when buffering.
const bufferSegments = 16

// ConvexHull returns the convex hull of pts as a closed counter-clockwise
// ring, using Andrew's monotone chain. Degenerate input (one point, two
// points, collinear sets) yields a degenerate ring; Buffer still expands
// those into proper polygons, matching how the zone stage treats thin
// clusters.
func ConvexHull(pts []orb.Point) orb.Ring {
	if len(pts) == 0 {
		return nil
	}
	sorted := make([]orb.Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i][0] != sorted[j][0] {
			return sorted[i][0] < sorted[j][0]
		}
		return sorted[i][1] < sorted[j][1]
	})
	// Dedupe.
	uniq := sorted[:1]
	for _, p := range sorted[1:] {
		if p != uniq[len(uniq)-1] {
			uniq = append(uniq, p)
		}
	}
	if len(uniq) == 1 {
		return orb.Ring{uniq[0], uniq[0]}
	}

	var lower, upper []orb.Point
	for _, p := range uniq {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	for i := len(uniq) - 1; i >= 0; i-- {
		p := uniq[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	ring := make(orb.Ring, 0, len(lower)+len(upper)-1)
	ring = append(ring, lower[:len(lower)-1]...)
	ring = append(ring, upper[:len(upper)-1]...)
	ring = append(ring, ring[0])
	return ring
}

// Buffer expands a convex ring outward by dist degrees. The result is the
// convex hull of a disc of radius dist swept around every vertex, which for
// convex input approximates the Minkowski sum with a disc. The output is
// always a proper convex polygon, even for degenerate rings.
func Buffer(ring orb.Ring, dist float64) orb.Polygon {
	if len(ring) == 0 {
		return nil
	}
	samples := make([]orb.Point, 0, len(ring)*bufferSegments)
	for _, v := range ring {
		for s := range bufferSegments {
			theta := 2 * math.Pi * float64(s) / bufferSegments
			samples = append(samples, orb.Point{
				v[0] + dist*math.Cos(theta),
				v[1] + dist*math.Sin(theta),
			})
		}
	}
	return orb.Polygon{ConvexHull(samples)}
}

// ClipConvex intersects two convex polygons with Sutherland-Hodgman
// clipping. The boolean is false when the polygons do not overlap in a
// region of positive area.
func ClipConvex(subject, clip orb.Polygon) (orb.Polygon, bool) {
	if len(subject) == 0 || len(clip) == 0 {
		return nil, false
	}
	out := openRing(subject[0])
	clipRing := openRing(clip[0])
	for i := range clipRing {
		a := clipRing[i]
		b := clipRing[(i+1)%len(clipRing)]
		out = clipEdge(out, a, b)
		if len(out) == 0 {
			return nil, false
		}
	}
	if len(out) < 3 {
		return nil, false
	}
	ring := make(orb.Ring, 0, len(out)+1)
	ring = append(ring, out...)
	ring = append(ring, out[0])
	if math.Abs(ringArea(ring)) == 0 {
		return nil, false
	}
	return orb.Polygon{ring}, true
}

// clipEdge keeps the part of poly on the left of the directed edge a->b.
func clipEdge(poly []orb.Point, a, b orb.Point) []orb.Point {
	var out []orb.Point
	for i := range poly {
		cur := poly[i]
		prev := poly[(i+len(poly)-1)%len(poly)]
		curIn := cross(a, b, cur) >= 0
		prevIn := cross(a, b, prev) >= 0
		if curIn {
			if !prevIn {
				out = append(out, intersect(prev, cur, a, b))
			}
			out = append(out, cur)
		} else if prevIn {
			out = append(out, intersect(prev, cur, a, b))
		}
	}
	return out
}

// intersect returns where segment p1-p2 crosses the infinite line a-b.
func intersect(p1, p2, a, b orb.Point) orb.Point {
	dx, dy := b[0]-a[0], b[1]-a[1]
	ex, ey := p2[0]-p1[0], p2[1]-p1[1]
	denom := dx*ey - dy*ex
	if denom == 0 {
		return p2
	}
	t := (dx*(a[1]-p1[1]) - dy*(a[0]-p1[0])) / denom
	return orb.Point{p1[0] + t*ex, p1[1] + t*ey}
}

// ContainsPoint reports whether p lies inside or on the boundary of the
// convex polygon.
func ContainsPoint(poly orb.Polygon, p orb.Point) bool {
	if len(poly) == 0 {
		return false
	}
	ring := openRing(poly[0])
	if len(ring) < 3 {
		return false
	}
	for i := range ring {
		a := ring[i]
		b := ring[(i+1)%len(ring)]
		if cross(a, b, p) < -1e-12 {
			return false
		}
	}
	return true
}

func openRing(r orb.Ring) []orb.Point {
	if len(r) > 1 && r[0] == r[len(r)-1] {
		return r[:len(r)-1]
	}
	return r
}

func ringArea(r orb.Ring) float64 {
	open := openRing(r)
	s := 0.0
	for i := range open {
		j := (i + 1) % len(open)
		s += open[i][0]*open[j][1] - open[j][0]*open[i][1]
	}
	return s / 2
}

func cross(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}
