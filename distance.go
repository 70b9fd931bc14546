package main

import (
	"math"
)

const EarthRadiusKM float64 = 6371.0 // Earth radius in kilometers

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}

// haversine returns the great-circle distance between two coordinates in the
// units of the radius passed in.
func haversine(lat1, lon1, lat2, lon2, earthRadius float64) float64 {
	lat1, lon1 = toRadians(lat1), toRadians(lon1)
	lat2, lon2 = toRadians(lat2), toRadians(lon2)

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	a := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}
