package main

import (
	"math"
)

// Sample is one resampled point of a route at the render zoom. Samples live
// for a single render pass only.
type Sample struct {
	Pixel              PixelPoint
	Geo                GeoPoint
	CumulativeLengthPx float64
}

// Segment is a short straight pixel-space chord between two consecutive
// samples of one route, the atomic unit of overlap testing. SharedRoutes and
// RouteOffsets are filled in by findOverlaps; both always cover the segment's
// own route.
type Segment struct {
	RouteID    string
	Index      int
	Start, End Sample
	LengthPx   float64
	MinX, MinY float64
	MaxX, MaxY float64
	Midpoint   PixelPoint
	HeadingRad float64

	SharedRoutes map[string]bool
	RouteOffsets map[string]float64
}

const degenerateSamplePx = 1e-6

// resampleRoute projects a geographic path to pixel space at the given zoom,
// simplifies it, and cuts it into fixed-length segments carrying cumulative
// arc length. Routes that end up with fewer than two usable samples produce no
// segments and are simply absent from that pass.
func resampleRoute(proj Projector, routeID string, path []GeoPoint, zoom, stepPx, simplifyTolPx float64) []*Segment {
	if len(path) < 2 {
		return nil
	}

	pixels := make([]PixelPoint, 0, len(path))
	for _, g := range path {
		p := proj.Project(g, zoom)
		if !p.IsFinite() {
			continue // projection failure, drop the point
		}
		pixels = append(pixels, p)
	}
	if len(pixels) < 2 {
		return nil
	}

	if len(pixels) > 2 && simplifyTolPx > 0 {
		pixels = rdpSimplify(pixels, simplifyTolPx)
	}
	if len(pixels) < 2 {
		return nil
	}

	samples := walkSamples(proj, pixels, zoom, stepPx)
	if len(samples) < 2 {
		return nil
	}

	segments := make([]*Segment, 0, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		seg := newSegment(routeID, len(segments), samples[i-1], samples[i])
		if seg == nil {
			continue
		}
		segments = append(segments, seg)
	}
	return segments
}

// walkSamples walks the pixel polyline accumulating distance and emits a
// sample every stepPx, interpolating the exact cut point inside the current
// leg. Leftover distance carries into the next leg. The first and last points
// are always emitted; a near-zero final leftover is merged into the previous
// sample instead of producing a degenerate one.
func walkSamples(proj Projector, pixels []PixelPoint, zoom, stepPx float64) []Sample {
	samples := []Sample{makeSample(proj, pixels[0], zoom, 0)}
	walked := 0.0
	sinceLast := 0.0

	for i := 1; i < len(pixels); i++ {
		a, b := pixels[i-1], pixels[i]
		legLen := a.DistanceTo(b)
		if legLen <= 0 {
			continue
		}
		posInLeg := 0.0
		remaining := legLen
		for sinceLast+remaining >= stepPx {
			advance := stepPx - sinceLast
			posInLeg += advance
			remaining -= advance
			walked += advance
			cut := lerpPixel(a, b, posInLeg/legLen)
			samples = append(samples, makeSample(proj, cut, zoom, walked))
			sinceLast = 0
		}
		walked += remaining
		sinceLast += remaining
	}

	last := pixels[len(pixels)-1]
	if sinceLast > degenerateSamplePx {
		samples = append(samples, makeSample(proj, last, zoom, walked))
	} else if sinceLast > 0 {
		// Snap the previous sample onto the true endpoint.
		samples[len(samples)-1] = makeSample(proj, last, zoom, walked)
	}
	return samples
}

func makeSample(proj Projector, p PixelPoint, zoom, cum float64) Sample {
	return Sample{
		Pixel:              p,
		Geo:                proj.Unproject(p, zoom),
		CumulativeLengthPx: cum,
	}
}

func newSegment(routeID string, index int, start, end Sample) *Segment {
	length := start.Pixel.DistanceTo(end.Pixel)
	if length <= 0 {
		return nil
	}
	dx := end.Pixel.X - start.Pixel.X
	dy := end.Pixel.Y - start.Pixel.Y
	seg := &Segment{
		RouteID:    routeID,
		Index:      index,
		Start:      start,
		End:        end,
		LengthPx:   length,
		MinX:       math.Min(start.Pixel.X, end.Pixel.X),
		MinY:       math.Min(start.Pixel.Y, end.Pixel.Y),
		MaxX:       math.Max(start.Pixel.X, end.Pixel.X),
		MaxY:       math.Max(start.Pixel.Y, end.Pixel.Y),
		Midpoint:   PixelPoint{X: (start.Pixel.X + end.Pixel.X) / 2, Y: (start.Pixel.Y + end.Pixel.Y) / 2},
		HeadingRad: math.Atan2(dy, dx),
		SharedRoutes: map[string]bool{
			routeID: true,
		},
		RouteOffsets: map[string]float64{
			routeID: math.Min(start.CumulativeLengthPx, end.CumulativeLengthPx),
		},
	}
	return seg
}
