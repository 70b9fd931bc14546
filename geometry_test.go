package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebMercatorKnownPoints(t *testing.T) {
	proj := WebMercator{}

	// Zoom 0: the world is one 256px tile, origin at the top-left.
	center := proj.Project(GeoPoint{Lat: 0, Lng: 0}, 0)
	assert.InDelta(t, 128, center.X, 1e-9)
	assert.InDelta(t, 128, center.Y, 1e-9)

	east := proj.Project(GeoPoint{Lat: 0, Lng: 90}, 0)
	assert.InDelta(t, 192, east.X, 1e-9)
	assert.InDelta(t, 128, east.Y, 1e-9)

	dateline := proj.Project(GeoPoint{Lat: 0, Lng: 180}, 0)
	assert.InDelta(t, 256, dateline.X, 1e-9)

	// One zoom level doubles every pixel coordinate.
	z1 := proj.Project(GeoPoint{Lat: 37.7793, Lng: -122.4193}, 1)
	z2 := proj.Project(GeoPoint{Lat: 37.7793, Lng: -122.4193}, 2)
	assert.InDelta(t, 2*z1.X, z2.X, 1e-6)
	assert.InDelta(t, 2*z1.Y, z2.Y, 1e-6)
}

func TestWebMercatorRoundTrip(t *testing.T) {
	proj := WebMercator{}
	points := []GeoPoint{
		{Lat: 0, Lng: 0},
		{Lat: 37.7793, Lng: -122.4193},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 64.1466, Lng: -21.9426},
		{Lat: 85, Lng: 179.9},
		{Lat: -85, Lng: -179.9},
	}
	for _, zoom := range []float64{0, 5, 12, 18} {
		for _, g := range points {
			p := proj.Project(g, zoom)
			require.True(t, p.IsFinite())
			back := proj.Unproject(p, zoom)
			assert.InDelta(t, g.Lat, back.Lat, 1e-9)
			assert.InDelta(t, g.Lng, back.Lng, 1e-9)
		}
	}
}

func TestRDPSimplifyCollinear(t *testing.T) {
	points := []PixelPoint{
		{X: 0, Y: 0},
		{X: 10, Y: 0},
		{X: 20, Y: 0},
		{X: 30, Y: 0},
		{X: 40, Y: 0},
	}
	got := rdpSimplify(points, 1.0)
	assert.Equal(t, []PixelPoint{{X: 0, Y: 0}, {X: 40, Y: 0}}, got)
}

func TestRDPSimplifyKeepsSignificantVertex(t *testing.T) {
	points := []PixelPoint{
		{X: 0, Y: 0},
		{X: 20, Y: 15},
		{X: 40, Y: 0},
	}
	got := rdpSimplify(points, 1.0)
	require.Len(t, got, 3)
	assert.Equal(t, PixelPoint{X: 20, Y: 15}, got[1])

	// A large enough tolerance drops it.
	got = rdpSimplify(points, 20)
	assert.Equal(t, []PixelPoint{{X: 0, Y: 0}, {X: 40, Y: 0}}, got)
}

func TestPixelPointHelpers(t *testing.T) {
	assert.InDelta(t, 5, PixelPoint{X: 0, Y: 0}.DistanceTo(PixelPoint{X: 3, Y: 4}), 1e-12)
	assert.False(t, PixelPoint{X: math.NaN(), Y: 0}.IsFinite())
	assert.False(t, PixelPoint{X: 0, Y: math.Inf(1)}.IsFinite())
	assert.True(t, PixelPoint{X: 1, Y: 2}.IsFinite())

	mid := lerpPixel(PixelPoint{X: 0, Y: 0}, PixelPoint{X: 10, Y: 20}, 0.5)
	assert.Equal(t, PixelPoint{X: 5, Y: 10}, mid)
}
