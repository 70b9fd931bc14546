package main

import (
	"fmt"
	"hash/fnv"
	"image/color"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"
)

// RouteGeometry is a route's raw geographic path, owned by the caller. The
// renderer only reads it during a pass and never holds samples across passes.
type RouteGeometry struct {
	ID   string
	Path []GeoPoint
}

// StrokeHandle identifies one drawn stroke on a MapSurface.
type StrokeHandle int

// MapSurface is the drawing backend. Points are geographic so the surface can
// repaint strokes on every pan without the renderer recomputing anything.
type MapSurface interface {
	CreateStroke(points []GeoPoint, style StrokeStyle) StrokeHandle
	UpdateStroke(handle StrokeHandle, points []GeoPoint, style StrokeStyle)
	RemoveStroke(handle StrokeHandle)
}

// renderState memoizes the inputs of the last completed pass so identical
// re-renders short-circuit without touching the surface.
type renderState struct {
	selectionKey string
	colorSig     string
	geometrySig  string
	zoomKey      string
}

type strokeSpec struct {
	key    string
	points []GeoPoint
	style  StrokeStyle
}

// OverlapRenderer renders selected transit routes as colored strokes, drawing
// portions where several routes run on the same street as interleaved colored
// dashes. It owns all of its mutable state; callers drive it through
// UpdateRoutes, HandleZoomEnd and Reset.
type OverlapRenderer struct {
	cfg     RenderConfig
	proj    Projector
	surface MapSurface
	zoom    func() float64

	geoms    map[string]RouteGeometry
	colors   map[string]color.RGBA
	selected []string

	drawn      map[string]StrokeHandle
	state      renderState
	stateValid bool
}

func NewOverlapRenderer(cfg RenderConfig, proj Projector, surface MapSurface, zoom func() float64) (*OverlapRenderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if proj == nil || surface == nil || zoom == nil {
		return nil, fmt.Errorf("overlap renderer: projector, surface and zoom provider are required")
	}
	return &OverlapRenderer{
		cfg:     cfg,
		proj:    proj,
		surface: surface,
		zoom:    zoom,
		geoms:   make(map[string]RouteGeometry),
		colors:  make(map[string]color.RGBA),
		drawn:   make(map[string]StrokeHandle),
	}, nil
}

// UpdateRoutes replaces the route geometries, the selection and the color
// table, then recomputes. Call whenever any of the three change.
func (r *OverlapRenderer) UpdateRoutes(geoms map[string]RouteGeometry, selected []string, colors map[string]color.RGBA) {
	r.geoms = geoms
	r.colors = colors
	r.selected = append(r.selected[:0:0], selected...)
	r.render()
}

// HandleZoomEnd recomputes at the current zoom level. Bind this to the map
// widget's zoom-end event.
func (r *OverlapRenderer) HandleZoomEnd() {
	r.render()
}

// Reset removes every drawn stroke and clears the render cache. The next
// trigger re-renders from scratch.
func (r *OverlapRenderer) Reset() {
	for key, handle := range r.drawn {
		r.surface.RemoveStroke(handle)
		delete(r.drawn, key)
	}
	r.state = renderState{}
	r.stateValid = false
}

func (r *OverlapRenderer) render() {
	zoom := r.zoom()
	state := r.signature(zoom)
	if r.stateValid && state == r.state {
		return
	}

	segmentsByRoute := make(map[string][]*Segment)
	var all []*Segment
	for _, id := range r.selected {
		geom, ok := r.geoms[id]
		if !ok {
			continue
		}
		segments := resampleRoute(r.proj, id, geom.Path, zoom, r.cfg.StepPx, r.cfg.SimplifyTolerancePx)
		if len(segments) == 0 {
			continue // too few usable points this pass
		}
		segmentsByRoute[id] = segments
		all = append(all, segments...)
	}

	weight := strokeWeight(r.cfg, zoom)
	var specs []strokeSpec
	if err := findOverlaps(all, r.cfg.IndexCellPx, r.cfg.TolerancePx, r.cfg.HeadingTolRad); err != nil {
		log.Printf("overlap detection unavailable, drawing plain strokes: %v", err)
		specs = r.plainStrokeSpecs(segmentsByRoute, weight)
	} else {
		specs = r.groupStrokeSpecs(buildGroups(segmentsByRoute), weight)
	}

	r.applyStrokes(specs)
	r.state = state
	r.stateValid = true
}

// groupStrokeSpecs turns paint groups into keyed stroke specs. Keys are built
// from the group's route set, an occurrence counter along the leader route,
// and the per-route color slot, so repeated passes produce the same keys for
// the same physical spans.
func (r *OverlapRenderer) groupStrokeSpecs(groups []PaintGroup, weight float32) []strokeSpec {
	var specs []strokeSpec
	occurrence := make(map[string]int)
	for _, group := range groups {
		base := strings.Join(group.Routes, "+")
		occ := occurrence[base]
		occurrence[base] = occ + 1

		styles := groupStyles(group, r.colors, weight, r.cfg.DashBasePx, r.cfg.MinDashPx)
		if len(group.Routes) == 1 {
			specs = append(specs, strokeSpec{
				key:    fmt.Sprintf("%s#%d", base, occ),
				points: group.Points,
				style:  styles[0],
			})
			continue
		}
		for i, routeID := range group.Routes {
			specs = append(specs, strokeSpec{
				key:    fmt.Sprintf("%s#%d/%s", base, occ, routeID),
				points: group.Points,
				style:  styles[i],
			})
		}
	}
	return specs
}

// plainStrokeSpecs is the degraded path: every selected route as one solid
// stroke, overlaps ignored.
func (r *OverlapRenderer) plainStrokeSpecs(segmentsByRoute map[string][]*Segment, weight float32) []strokeSpec {
	var specs []strokeSpec
	for _, id := range r.selected {
		segments, ok := segmentsByRoute[id]
		if !ok {
			continue
		}
		points := []GeoPoint{segments[0].Start.Geo}
		for _, seg := range segments {
			points = append(points, seg.End.Geo)
		}
		specs = append(specs, strokeSpec{
			key:    "plain/" + id,
			points: points,
			style: StrokeStyle{
				Color:    r.colors[id],
				WeightPx: weight,
				Opacity:  1,
				Cap:      CapRound,
				Join:     JoinRound,
			},
		})
	}
	return specs
}

// applyStrokes diffs the pass output against the previously drawn strokes:
// existing keys are updated in place, new keys created, stale keys removed.
// Two passes in quick succession therefore converge to the latest one.
func (r *OverlapRenderer) applyStrokes(specs []strokeSpec) {
	keep := make(map[string]bool, len(specs))
	for _, spec := range specs {
		keep[spec.key] = true
		if handle, ok := r.drawn[spec.key]; ok {
			r.surface.UpdateStroke(handle, spec.points, spec.style)
		} else {
			r.drawn[spec.key] = r.surface.CreateStroke(spec.points, spec.style)
		}
	}
	stale := make([]string, 0)
	for key := range r.drawn {
		if !keep[key] {
			stale = append(stale, key)
		}
	}
	sort.Strings(stale)
	for _, key := range stale {
		r.surface.RemoveStroke(r.drawn[key])
		delete(r.drawn, key)
	}
}

func (r *OverlapRenderer) signature(zoom float64) renderState {
	var colorSig, geomSig strings.Builder
	for _, id := range r.selected {
		c := r.colors[id]
		fmt.Fprintf(&colorSig, "%s=%02x%02x%02x%02x;", id, c.R, c.G, c.B, c.A)
		fmt.Fprintf(&geomSig, "%s=%016x;", id, hashPath(r.geoms[id].Path))
	}
	return renderState{
		selectionKey: strings.Join(r.selected, ","),
		colorSig:     colorSig.String(),
		geometrySig:  geomSig.String(),
		zoomKey:      strconv.FormatFloat(zoom, 'g', -1, 64),
	}
}

func hashPath(path []GeoPoint) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	write := func(v float64) {
		bits := math.Float64bits(v)
		for i := 0; i < 8; i++ {
			buf[i] = byte(bits >> (8 * i))
		}
		h.Write(buf[:])
	}
	for _, p := range path {
		write(p.Lat)
		write(p.Lng)
	}
	return h.Sum64()
}
