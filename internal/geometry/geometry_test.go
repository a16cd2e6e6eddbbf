package geometry_test

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablescout/hotspots/internal/geometry"
)

func square(x, y, side float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{x, y}, {x + side, y}, {x + side, y + side}, {x, y + side}, {x, y},
	}}
}

func TestConvexHull(t *testing.T) {
	t.Run("interior points are discarded", func(t *testing.T) {
		pts := []orb.Point{
			{0, 0}, {1, 0}, {1, 1}, {0, 1},
			{0.5, 0.5}, {0.2, 0.8},
		}

		hull := geometry.ConvexHull(pts)

		require.Len(t, hull, 5)
		assert.Equal(t, hull[0], hull[len(hull)-1])
		assert.InEpsilon(t, 1.0, planar.Area(hull), 1e-9)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		pts := []orb.Point{{0, 0}, {0, 0}, {1, 0}, {1, 0}, {0, 1}}

		hull := geometry.ConvexHull(pts)

		require.Len(t, hull, 4)
		assert.InEpsilon(t, 0.5, planar.Area(hull), 1e-9)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, geometry.ConvexHull(nil))
	})
}

func TestBuffer(t *testing.T) {
	t.Run("single point becomes a disc", func(t *testing.T) {
		hull := geometry.ConvexHull([]orb.Point{{-73.99, 40.73}})

		poly := geometry.Buffer(hull, 0.001)

		require.Len(t, poly, 1)
		assert.Positive(t, planar.Area(poly))
		assert.True(t, geometry.ContainsPoint(poly, orb.Point{-73.99, 40.73}))
		assert.True(t, geometry.ContainsPoint(poly, orb.Point{-73.99, 40.7309}))
		assert.False(t, geometry.ContainsPoint(poly, orb.Point{-73.99, 40.7321}))
	})

	t.Run("collinear points become a proper polygon", func(t *testing.T) {
		hull := geometry.ConvexHull([]orb.Point{{0, 0}, {0, 0.001}, {0, 0.002}})

		poly := geometry.Buffer(hull, 0.0005)

		assert.Positive(t, planar.Area(poly))
		assert.True(t, geometry.ContainsPoint(poly, orb.Point{0, 0.001}))
	})

	t.Run("larger distance contains smaller buffer", func(t *testing.T) {
		hull := geometry.ConvexHull([]orb.Point{{0, 0}, {0.001, 0}, {0.0005, 0.001}})

		inner := geometry.Buffer(hull, 0.001)
		outer := geometry.Buffer(hull, 0.0015)

		assert.Greater(t, planar.Area(outer), planar.Area(inner))
		for _, v := range inner[0] {
			assert.True(t, geometry.ContainsPoint(outer, v))
		}
	})
}

func TestClipConvex(t *testing.T) {
	t.Run("identical polygons", func(t *testing.T) {
		a := square(0, 0, 1)

		poly, ok := geometry.ClipConvex(a, a)

		require.True(t, ok)
		assert.InEpsilon(t, 1.0, planar.Area(poly), 1e-9)
	})

	t.Run("partial overlap", func(t *testing.T) {
		a := square(0, 0, 1)
		b := square(0.5, 0.5, 1)

		poly, ok := geometry.ClipConvex(a, b)

		require.True(t, ok)
		assert.InEpsilon(t, 0.25, planar.Area(poly), 1e-9)
	})

	t.Run("disjoint polygons", func(t *testing.T) {
		a := square(0, 0, 1)
		b := square(5, 5, 1)

		_, ok := geometry.ClipConvex(a, b)

		assert.False(t, ok)
	})

	t.Run("shared edge only", func(t *testing.T) {
		a := square(0, 0, 1)
		b := square(1, 0, 1)

		_, ok := geometry.ClipConvex(a, b)

		assert.False(t, ok)
	})
}

func TestContainsPoint(t *testing.T) {
	poly := square(0, 0, 1)

	assert.True(t, geometry.ContainsPoint(poly, orb.Point{0.5, 0.5}))
	assert.True(t, geometry.ContainsPoint(poly, orb.Point{0, 0}))
	assert.True(t, geometry.ContainsPoint(poly, orb.Point{1, 0.5}))
	assert.False(t, geometry.ContainsPoint(poly, orb.Point{1.5, 0.5}))
	assert.False(t, geometry.ContainsPoint(poly, orb.Point{-0.1, 0.1}))
}
