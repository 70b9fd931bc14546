package main

import (
	"sort"
)

// PaintGroup is a maximal contiguous run of one route's segments sharing an
// identical set of overlapping routes; it is the unit actually drawn. A group
// is only ever emitted by the route whose id is the minimum of Routes, so each
// physical overlap produces exactly one group.
type PaintGroup struct {
	Routes       []string // sorted ascending, len >= 1
	Points       []GeoPoint
	LengthPx     float64
	OffsetPx     float64 // leader route's minimal arc-length offset, dash-phase fallback
	RouteOffsets map[string]float64
}

const coincidentPointPx = 1e-6

// buildGroups walks each route's segments in arc-length order and merges
// consecutive segments with an identical shared-route set into paint groups.
// Routes are processed in sorted id order so the output order is deterministic.
func buildGroups(segmentsByRoute map[string][]*Segment) []PaintGroup {
	routeIDs := make([]string, 0, len(segmentsByRoute))
	for id := range segmentsByRoute {
		routeIDs = append(routeIDs, id)
	}
	sort.Strings(routeIDs)

	var groups []PaintGroup
	for _, routeID := range routeIDs {
		segments := segmentsByRoute[routeID]
		sort.Slice(segments, func(i, j int) bool { return segments[i].Index < segments[j].Index })

		var current *groupAccum
		flush := func() {
			if current != nil {
				if g, ok := current.finalize(); ok {
					groups = append(groups, g)
				}
				current = nil
			}
		}

		for _, seg := range segments {
			shared := sortedRoutes(seg.SharedRoutes)
			if shared[0] != routeID {
				// Emitted when its leader route is processed.
				flush()
				continue
			}
			if current != nil && (!stringSlicesEqual(current.routes, shared) || !current.continuesAt(seg)) {
				flush()
			}
			if current == nil {
				current = newGroupAccum(routeID, shared)
			}
			current.append(seg)
		}
		flush()
	}
	return groups
}

type groupAccum struct {
	routeID   string
	routes    []string
	points    []GeoPoint
	lastPixel PixelPoint
	lengthPx  float64
	offsetPx  float64
	offsets   map[string]float64
	hasOffset bool
}

func newGroupAccum(routeID string, routes []string) *groupAccum {
	return &groupAccum{
		routeID: routeID,
		routes:  routes,
		offsets: make(map[string]float64),
	}
}

func (g *groupAccum) continuesAt(seg *Segment) bool {
	return len(g.points) == 0 || g.lastPixel.DistanceTo(seg.Start.Pixel) <= coincidentPointPx
}

func (g *groupAccum) append(seg *Segment) {
	if len(g.points) == 0 {
		g.points = append(g.points, seg.Start.Geo)
		g.lastPixel = seg.Start.Pixel
	}
	if g.lastPixel.DistanceTo(seg.End.Pixel) > coincidentPointPx {
		g.points = append(g.points, seg.End.Geo)
		g.lastPixel = seg.End.Pixel
	}
	g.lengthPx += seg.LengthPx

	own := seg.RouteOffsets[g.routeID]
	if !g.hasOffset || own < g.offsetPx {
		g.offsetPx = own
		g.hasOffset = true
	}
	for _, r := range g.routes {
		if v, ok := seg.RouteOffsets[r]; ok {
			if existing, seen := g.offsets[r]; !seen || v < existing {
				g.offsets[r] = v
			}
		}
	}
}

func (g *groupAccum) finalize() (PaintGroup, bool) {
	if len(g.points) < 2 {
		return PaintGroup{}, false
	}
	return PaintGroup{
		Routes:       g.routes,
		Points:       g.points,
		LengthPx:     g.lengthPx,
		OffsetPx:     g.offsetPx,
		RouteOffsets: g.offsets,
	}, true
}

func sortedRoutes(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
