package main

import (
	"math"
)

// GeoPoint is a geographic coordinate in decimal degrees.
type GeoPoint struct {
	Lat, Lng float64
}

// PixelPoint is a world-pixel coordinate at some zoom level. Geographic and
// pixel coordinates are separate types so the two spaces can't be mixed up.
type PixelPoint struct {
	X, Y float64
}

func (p PixelPoint) DistanceTo(q PixelPoint) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func (p PixelPoint) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

func lerpPixel(a, b PixelPoint, t float64) PixelPoint {
	return PixelPoint{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

// Projector converts geographic points to world-pixel space at a given zoom
// level and back.
type Projector interface {
	Project(g GeoPoint, zoom float64) PixelPoint
	Unproject(p PixelPoint, zoom float64) GeoPoint
}

// WebMercator projects into absolute world-pixel coordinates with 256px tiles,
// origin at the top-left of the world. Same math as the tile/screen conversions
// in map.go, just not recentered on the viewport.
type WebMercator struct{}

func (WebMercator) Project(g GeoPoint, zoom float64) PixelPoint {
	origin := 256.0 * math.Pow(2, zoom) / 2
	x := origin + g.Lng*math.Pi/180.0*origin/math.Pi
	y := origin - math.Log(math.Tan((g.Lat*math.Pi/180.0+math.Pi/2)/2))*origin/math.Pi
	return PixelPoint{X: x, Y: y}
}

func (WebMercator) Unproject(p PixelPoint, zoom float64) GeoPoint {
	origin := 256.0 * math.Pow(2, zoom) / 2
	lng := (p.X - origin) / origin * 180.0
	latRad := 2*math.Atan(math.Exp((origin-p.Y)*math.Pi/origin)) - math.Pi/2
	return GeoPoint{Lat: latRad * 180.0 / math.Pi, Lng: lng}
}

// BEGIN: Polyline simplification using Ramer-Douglas-Peucker algorithm
func rdpSimplify(points []PixelPoint, epsilon float64) []PixelPoint {
	if len(points) < 2 {
		return points
	}

	dmax := 0.0
	index := 0
	end := len(points) - 1

	for i := 1; i < end; i++ {
		d := perpendicularDistance(points[i], points[0], points[end])
		if d > dmax {
			index = i
			dmax = d
		}
	}

	if dmax > epsilon {
		recResults1 := rdpSimplify(points[:index+1], epsilon)
		recResults2 := rdpSimplify(points[index:], epsilon)

		return append(recResults1[:len(recResults1)-1], recResults2...)
	} else {
		return []PixelPoint{points[0], points[end]}
	}
}

func perpendicularDistance(point, lineStart, lineEnd PixelPoint) float64 {
	dx := lineEnd.X - lineStart.X
	dy := lineEnd.Y - lineStart.Y

	if dx == 0 && dy == 0 {
		return point.DistanceTo(lineStart)
	}

	return math.Abs(dy*point.X-dx*point.Y+lineEnd.X*lineStart.Y-lineEnd.Y*lineStart.X) /
		math.Sqrt(dx*dx+dy*dy)
}

// END: Polyline simplification using Ramer-Douglas-Peucker algorithm

func clampFloat(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
