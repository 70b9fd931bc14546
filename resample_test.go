package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flatProjector maps Lng to X and Lat to Y unchanged, so tests can reason in
// plain pixel coordinates.
type flatProjector struct{}

func (flatProjector) Project(g GeoPoint, zoom float64) PixelPoint {
	return PixelPoint{X: g.Lng, Y: g.Lat}
}

func (flatProjector) Unproject(p PixelPoint, zoom float64) GeoPoint {
	return GeoPoint{Lat: p.Y, Lng: p.X}
}

// nanProjector fails projection for the sentinel latitude 999.
type nanProjector struct {
	flatProjector
}

func (nanProjector) Project(g GeoPoint, zoom float64) PixelPoint {
	if g.Lat == 999 {
		return PixelPoint{X: math.NaN(), Y: math.NaN()}
	}
	return PixelPoint{X: g.Lng, Y: g.Lat}
}

func TestResampleStraightLine(t *testing.T) {
	path := []GeoPoint{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 105}}
	segments := resampleRoute(flatProjector{}, "r1", path, 12, 10, 0)
	require.Len(t, segments, 11)

	for i, seg := range segments {
		assert.Equal(t, "r1", seg.RouteID)
		assert.Equal(t, i, seg.Index)
		assert.InDelta(t, 0, seg.HeadingRad, 1e-12)
		if i < 10 {
			assert.InDelta(t, 10, seg.LengthPx, 1e-9)
		}
	}
	// The endpoint is always emitted, so the last segment carries the remainder.
	last := segments[10]
	assert.InDelta(t, 5, last.LengthPx, 1e-9)
	assert.InDelta(t, 105, last.End.Pixel.X, 1e-9)
	assert.InDelta(t, 105, last.End.CumulativeLengthPx, 1e-9)
}

func TestResampleCumulativeLengthMonotonic(t *testing.T) {
	path := []GeoPoint{{Lat: 0, Lng: 0}, {Lat: 40, Lng: 30}, {Lat: 40, Lng: 100}}
	segments := resampleRoute(flatProjector{}, "r1", path, 12, 12, 0)
	require.NotEmpty(t, segments)

	prev := 0.0
	for _, seg := range segments {
		assert.InDelta(t, prev, seg.Start.CumulativeLengthPx, 1e-9)
		assert.Greater(t, seg.End.CumulativeLengthPx, seg.Start.CumulativeLengthPx)
		// The chord can only be shorter than the arc it spans.
		arc := seg.End.CumulativeLengthPx - seg.Start.CumulativeLengthPx
		assert.LessOrEqual(t, seg.LengthPx, arc+1e-9)
		prev = seg.End.CumulativeLengthPx
	}
	// Total arc length is the polyline length: 50 + 70.
	assert.InDelta(t, 120, prev, 1e-9)
}

func TestResampleExactMultiple(t *testing.T) {
	path := []GeoPoint{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 100}}
	segments := resampleRoute(flatProjector{}, "r1", path, 12, 10, 0)
	require.Len(t, segments, 10)
	assert.InDelta(t, 100, segments[9].End.Pixel.X, 1e-9)
	assert.InDelta(t, 100, segments[9].End.CumulativeLengthPx, 1e-9)
}

func TestResampleTooFewPoints(t *testing.T) {
	proj := flatProjector{}
	assert.Nil(t, resampleRoute(proj, "r1", nil, 12, 10, 0))
	assert.Nil(t, resampleRoute(proj, "r1", []GeoPoint{{Lat: 1, Lng: 1}}, 12, 10, 0))
	// Two coincident points have no length to walk.
	assert.Nil(t, resampleRoute(proj, "r1", []GeoPoint{{Lat: 1, Lng: 1}, {Lat: 1, Lng: 1}}, 12, 10, 0))
}

func TestResampleDropsFailedProjections(t *testing.T) {
	path := []GeoPoint{{Lat: 999, Lng: 0}, {Lat: 0, Lng: 0}, {Lat: 0, Lng: 100}}
	segments := resampleRoute(nanProjector{}, "r1", path, 12, 10, 0)
	require.Len(t, segments, 10)
	assert.InDelta(t, 0, segments[0].Start.Pixel.X, 1e-9)

	// With only one usable point left the route yields nothing.
	assert.Nil(t, resampleRoute(nanProjector{}, "r1", []GeoPoint{{Lat: 999, Lng: 0}, {Lat: 0, Lng: 0}}, 12, 10, 0))
}

func TestResampleSimplifiesJitter(t *testing.T) {
	path := []GeoPoint{
		{Lat: 0, Lng: 0},
		{Lat: 1, Lng: 25},
		{Lat: 0, Lng: 50},
		{Lat: 1, Lng: 75},
		{Lat: 0, Lng: 100},
	}
	segments := resampleRoute(flatProjector{}, "r1", path, 12, 10, 1.5)
	require.Len(t, segments, 10)
	for _, seg := range segments {
		assert.InDelta(t, 10, seg.LengthPx, 1e-9)
		assert.InDelta(t, 0, seg.Midpoint.Y, 1e-9)
	}
}

func TestNewSegmentGeometry(t *testing.T) {
	start := Sample{Pixel: PixelPoint{X: 10, Y: 20}, Geo: GeoPoint{Lat: 20, Lng: 10}, CumulativeLengthPx: 50}
	end := Sample{Pixel: PixelPoint{X: 10, Y: 30}, Geo: GeoPoint{Lat: 30, Lng: 10}, CumulativeLengthPx: 60}

	seg := newSegment("r1", 3, start, end)
	require.NotNil(t, seg)
	assert.InDelta(t, 10, seg.LengthPx, 1e-12)
	assert.Equal(t, PixelPoint{X: 10, Y: 25}, seg.Midpoint)
	assert.InDelta(t, math.Pi/2, seg.HeadingRad, 1e-12)
	assert.Equal(t, 10.0, seg.MinX)
	assert.Equal(t, 20.0, seg.MinY)
	assert.Equal(t, 10.0, seg.MaxX)
	assert.Equal(t, 30.0, seg.MaxY)
	assert.Equal(t, map[string]bool{"r1": true}, seg.SharedRoutes)
	assert.Equal(t, map[string]float64{"r1": 50}, seg.RouteOffsets)

	assert.Nil(t, newSegment("r1", 0, start, start))
}
