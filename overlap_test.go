package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSegment builds a segment directly from pixel endpoints, with cum as the
// arc-length offset of its start.
func testSegment(route string, idx int, x1, y1, x2, y2, cum float64) *Segment {
	start := Sample{Pixel: PixelPoint{X: x1, Y: y1}, Geo: GeoPoint{Lat: y1, Lng: x1}, CumulativeLengthPx: cum}
	length := start.Pixel.DistanceTo(PixelPoint{X: x2, Y: y2})
	end := Sample{Pixel: PixelPoint{X: x2, Y: y2}, Geo: GeoPoint{Lat: y2, Lng: x2}, CumulativeLengthPx: cum + length}
	return newSegment(route, idx, start, end)
}

// overlapScenario resamples the given routes on the flat projector and runs
// overlap detection across all of them.
func overlapScenario(t *testing.T, paths map[string][]GeoPoint, stepPx, tolerancePx, headingTolRad, cellPx float64) map[string][]*Segment {
	t.Helper()
	byRoute := make(map[string][]*Segment)
	var all []*Segment
	for id, path := range paths {
		segments := resampleRoute(flatProjector{}, id, path, 12, stepPx, 0)
		require.NotEmpty(t, segments, "route %s produced no segments", id)
		byRoute[id] = segments
		all = append(all, segments...)
	}
	require.NoError(t, findOverlaps(all, cellPx, tolerancePx, headingTolRad))
	return byRoute
}

func TestSegmentsOverlapCoincident(t *testing.T) {
	a := testSegment("a", 0, 0, 0, 10, 0, 0)
	b := testSegment("b", 0, 0, 0, 10, 0, 0)
	assert.True(t, segmentsOverlap(a, b, 6, 0.35))
}

func TestSegmentsOverlapOppositeDirection(t *testing.T) {
	a := testSegment("a", 0, 0, 0, 10, 0, 0)
	b := testSegment("b", 0, 10, 0, 0, 0, 0)
	assert.True(t, segmentsOverlap(a, b, 6, 0.35))
}

func TestSegmentsOverlapNearbyParallel(t *testing.T) {
	a := testSegment("a", 0, 0, 0, 10, 0, 0)
	b := testSegment("b", 0, 0, 3, 10, 3, 0)
	assert.True(t, segmentsOverlap(a, b, 6, 0.35))
}

func TestSegmentsOverlapRejectsParallelOffset(t *testing.T) {
	a := testSegment("a", 0, 0, 0, 10, 0, 0)
	b := testSegment("b", 0, 0, 20, 10, 20, 0)
	assert.False(t, segmentsOverlap(a, b, 6, 0.35))
}

func TestSegmentsOverlapRejectsPerpendicular(t *testing.T) {
	a := testSegment("a", 0, -5, 0, 5, 0, 0)
	b := testSegment("b", 0, 0, -5, 0, 5, 0)
	assert.False(t, segmentsOverlap(a, b, 6, 0.35))
}

// Two long segments crossing at a shallow angle pass the midpoint and heading
// checks; the endpoint-distance rule is what rejects them.
func TestSegmentsOverlapRejectsShallowCrossing(t *testing.T) {
	a := testSegment("a", 0, -50, 0, 50, 0, 0)
	b := testSegment("b", 0, -50, -10, 50, 10, 0)
	assert.False(t, segmentsOverlap(a, b, 2, 0.35))
}

func TestFindOverlapsMarksSharedRoutes(t *testing.T) {
	byRoute := overlapScenario(t, map[string][]GeoPoint{
		"a": {{Lat: 0, Lng: 0}, {Lat: 0, Lng: 100}},
		"b": {{Lat: 0, Lng: 0}, {Lat: 0, Lng: 100}},
	}, 10, 6, 0.35, 64)

	want := map[string]bool{"a": true, "b": true}
	for _, id := range []string{"a", "b"} {
		for _, seg := range byRoute[id] {
			assert.Equal(t, want, seg.SharedRoutes)
		}
	}
	// Each segment records where along the other route the overlap sits.
	assert.Equal(t, 30.0, byRoute["a"][3].RouteOffsets["b"])
	assert.Equal(t, 30.0, byRoute["b"][3].RouteOffsets["a"])
}

func TestFindOverlapsOppositeDirection(t *testing.T) {
	byRoute := overlapScenario(t, map[string][]GeoPoint{
		"a": {{Lat: 0, Lng: 0}, {Lat: 0, Lng: 100}},
		"b": {{Lat: 0, Lng: 100}, {Lat: 0, Lng: 0}},
	}, 10, 6, 0.35, 64)

	want := map[string]bool{"a": true, "b": true}
	for _, seg := range byRoute["a"] {
		assert.Equal(t, want, seg.SharedRoutes)
	}
	// b runs the other way, so a's first segment meets b's last stretch.
	assert.Equal(t, 90.0, byRoute["a"][0].RouteOffsets["b"])
	assert.Equal(t, 0.0, byRoute["a"][9].RouteOffsets["b"])
}

func TestFindOverlapsDisjointRoutes(t *testing.T) {
	byRoute := overlapScenario(t, map[string][]GeoPoint{
		"a": {{Lat: 0, Lng: 0}, {Lat: 0, Lng: 100}},
		"b": {{Lat: 100, Lng: 0}, {Lat: 100, Lng: 100}},
	}, 10, 6, 0.35, 64)

	for _, seg := range byRoute["a"] {
		assert.Equal(t, map[string]bool{"a": true}, seg.SharedRoutes)
	}
	for _, seg := range byRoute["b"] {
		assert.Equal(t, map[string]bool{"b": true}, seg.SharedRoutes)
	}
}

func TestFindOverlapsBadCellSize(t *testing.T) {
	a := testSegment("a", 0, 0, 0, 10, 0, 0)
	b := testSegment("b", 0, 0, 0, 10, 0, 0)

	err := findOverlaps([]*Segment{a, b}, 0, 6, 0.35)
	require.Error(t, err)
	// Segments are untouched when detection fails.
	assert.Equal(t, map[string]bool{"a": true}, a.SharedRoutes)
	assert.Equal(t, map[string]bool{"b": true}, b.SharedRoutes)
}
