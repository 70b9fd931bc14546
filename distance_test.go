package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine(t *testing.T) {
	// San Francisco to Los Angeles, roughly 559 km.
	d := haversine(37.7749, -122.4194, 34.0522, -118.2437, EarthRadiusKM)
	assert.InDelta(t, 559, d, 5)

	assert.Zero(t, haversine(37.7749, -122.4194, 37.7749, -122.4194, EarthRadiusKM))
}
