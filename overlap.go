package main

import (
	"math"
)

// pairKey identifies an unordered pair of segments from two different routes,
// normalized so (A,B) and (B,A) collide.
type pairKey struct {
	loRoute string
	loIndex int
	hiRoute string
	hiIndex int
}

func makePairKey(a, b *Segment) pairKey {
	if a.RouteID < b.RouteID || (a.RouteID == b.RouteID && a.Index <= b.Index) {
		return pairKey{a.RouteID, a.Index, b.RouteID, b.Index}
	}
	return pairKey{b.RouteID, b.Index, a.RouteID, a.Index}
}

// findOverlaps detects which segments of different routes coincide on the
// ground and records, on each segment, the set of routes sharing it and the
// minimal arc-length offset at which each sharing route was observed. The
// updates are symmetric and take minimums, so processing order does not affect
// the result. Returns an error only if the spatial index cannot be built; the
// caller degrades that pass to plain solid strokes.
func findOverlaps(segments []*Segment, cellPx, tolerancePx, headingTolRad float64) error {
	grid, err := newSegmentGrid(cellPx)
	if err != nil {
		return err
	}

	boxes := make([]boundingBox, len(segments))
	for i, s := range segments {
		boxes[i] = boundingBox{MinX: s.MinX, MinY: s.MinY, MaxX: s.MaxX, MaxY: s.MaxY}.expand(tolerancePx)
	}
	grid.Load(boxes)

	tested := make(map[pairKey]bool)
	for i, a := range segments {
		for _, j := range grid.Search(boxes[i]) {
			b := segments[j]
			if b.RouteID == a.RouteID {
				continue
			}
			key := makePairKey(a, b)
			if tested[key] {
				continue
			}
			tested[key] = true

			if !segmentsOverlap(a, b, tolerancePx, headingTolRad) {
				continue
			}

			a.SharedRoutes[b.RouteID] = true
			b.SharedRoutes[a.RouteID] = true
			recordOffset(a, b.RouteID, b.RouteOffsets[b.RouteID])
			recordOffset(b, a.RouteID, a.RouteOffsets[a.RouteID])
		}
	}
	return nil
}

func recordOffset(seg *Segment, routeID string, offset float64) {
	if existing, ok := seg.RouteOffsets[routeID]; !ok || offset < existing {
		seg.RouteOffsets[routeID] = offset
	}
}

// segmentsOverlap is the pair test: midpoints within tolerance, headings
// aligned (either direction of travel), and at least one pair of endpoints
// close enough to rule out parallel-but-offset segments whose midpoints happen
// to be near each other, such as crossing streets at a shallow angle.
func segmentsOverlap(a, b *Segment, tolerancePx, headingTolRad float64) bool {
	if a.Midpoint.DistanceTo(b.Midpoint) > tolerancePx {
		return false
	}

	diff := math.Mod(math.Abs(a.HeadingRad-b.HeadingRad), 2*math.Pi)
	if diff > math.Pi {
		diff = 2*math.Pi - diff
	}
	if diff > headingTolRad && math.Pi-diff > headingTolRad {
		return false
	}

	endpointDist := math.Min(
		math.Min(a.Start.Pixel.DistanceTo(b.Start.Pixel), a.End.Pixel.DistanceTo(b.End.Pixel)),
		math.Min(a.Start.Pixel.DistanceTo(b.End.Pixel), a.End.Pixel.DistanceTo(b.Start.Pixel)),
	)
	return endpointDist <= 2*tolerancePx
}
