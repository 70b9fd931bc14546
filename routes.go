package main

import (
	"encoding/json"
	"fmt"
	"image/color"
	"log"
	"os"
	"strconv"

	"github.com/sidsquare/go-polyline"
)

// RouteSet owns the route geometries, display colors and the ordered
// selection the viewer feeds into the overlap renderer.
type RouteSet struct {
	geoms       map[string]RouteGeometry
	colors      map[string]color.RGBA
	names       map[string]string
	order       []string // insertion order, drives the legend
	selected    map[string]bool
	nextOverlay int
}

func NewRouteSet() *RouteSet {
	return &RouteSet{
		geoms:    make(map[string]RouteGeometry),
		colors:   make(map[string]color.RGBA),
		names:    make(map[string]string),
		selected: make(map[string]bool),
	}
}

// Add registers a route and selects it. An empty id gets a synthetic
// overlay-N id, for imported geometry that carries no identifier.
func (rs *RouteSet) Add(id, name string, path []GeoPoint, clr color.RGBA) string {
	if id == "" {
		rs.nextOverlay++
		id = fmt.Sprintf("overlay-%d", rs.nextOverlay)
	}
	if _, exists := rs.geoms[id]; !exists {
		rs.order = append(rs.order, id)
	}
	if name == "" {
		name = id
	}
	rs.geoms[id] = RouteGeometry{ID: id, Path: path}
	rs.colors[id] = clr
	rs.names[id] = name
	rs.selected[id] = true
	return id
}

func (rs *RouteSet) Remove(id string) {
	delete(rs.geoms, id)
	delete(rs.colors, id)
	delete(rs.names, id)
	delete(rs.selected, id)
	for i, o := range rs.order {
		if o == id {
			rs.order = append(rs.order[:i], rs.order[i+1:]...)
			break
		}
	}
}

// Toggle flips a route's selection; it reports whether the id exists.
func (rs *RouteSet) Toggle(id string) bool {
	if _, ok := rs.geoms[id]; !ok {
		return false
	}
	rs.selected[id] = !rs.selected[id]
	return true
}

func (rs *RouteSet) SelectAll() {
	for id := range rs.geoms {
		rs.selected[id] = true
	}
}

func (rs *RouteSet) ClearSelection() {
	for id := range rs.selected {
		rs.selected[id] = false
	}
}

func (rs *RouteSet) SetColor(id string, clr color.RGBA) bool {
	if _, ok := rs.geoms[id]; !ok {
		return false
	}
	rs.colors[id] = clr
	return true
}

// Selected returns the selected route ids in insertion order.
func (rs *RouteSet) Selected() []string {
	var out []string
	for _, id := range rs.order {
		if rs.selected[id] {
			out = append(out, id)
		}
	}
	return out
}

func (rs *RouteSet) All() []string {
	return append([]string(nil), rs.order...)
}

func (rs *RouteSet) Geometries() map[string]RouteGeometry { return rs.geoms }
func (rs *RouteSet) Colors() map[string]color.RGBA       { return rs.colors }
func (rs *RouteSet) Name(id string) string               { return rs.names[id] }
func (rs *RouteSet) IsSelected(id string) bool           { return rs.selected[id] }

// routesFile is the JSON interchange format the osm/ extraction tool writes:
// route geometry as Google encoded polylines, colors as #RRGGBB.
type routesFile struct {
	Routes []routeEntry `json:"routes"`
}

type routeEntry struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Color    string      `json:"color"`
	Polyline string      `json:"polyline,omitempty"`
	Coords   [][]float64 `json:"coords,omitempty"` // [lat,lng] pairs, alternative to polyline
}

// routeCodec decodes Google encoded polylines (2-D, 1e5 scale).
var routeCodec = polyline.Codec{Dim: 2, Scale: 1e5}

var routePalette = []color.RGBA{
	{0xe6, 0x19, 0x4b, 0xff},
	{0x43, 0x63, 0xd8, 0xff},
	{0x3c, 0xb4, 0x4b, 0xff},
	{0xf5, 0x82, 0x31, 0xff},
	{0x91, 0x1e, 0xb4, 0xff},
	{0x46, 0xf0, 0xf0, 0xff},
	{0xf0, 0x32, 0xe6, 0xff},
	{0x80, 0x80, 0x00, 0xff},
}

// LoadRoutesFile imports a routes JSON file into the set and returns how many
// routes it added. Routes with undecodable geometry are skipped with a log
// line, not fatal.
func LoadRoutesFile(filename string, rs *RouteSet) (int, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return 0, err
	}
	return LoadRoutes(data, rs)
}

func LoadRoutes(data []byte, rs *RouteSet) (int, error) {
	var file routesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("routes file: %w", err)
	}

	added := 0
	for i, entry := range file.Routes {
		coords := entry.Coords
		if entry.Polyline != "" {
			var err error
			coords, _, err = routeCodec.DecodeCoords([]byte(entry.Polyline))
			if err != nil {
				log.Printf("Skipping route %q: bad polyline: %v", entry.ID, err)
				continue
			}
		}
		if len(coords) < 2 {
			log.Printf("Skipping route %q: fewer than 2 points", entry.ID)
			continue
		}

		path := make([]GeoPoint, len(coords))
		for j, c := range coords {
			path[j] = GeoPoint{Lat: c[0], Lng: c[1]}
		}

		clr, err := cssHexToColor(entry.Color)
		if err != nil {
			clr = routePalette[(len(rs.order)+i)%len(routePalette)]
		}

		id := rs.Add(entry.ID, entry.Name, path, clr)
		length := 0.0
		for j := 1; j < len(path); j++ {
			length += haversine(path[j-1].Lat, path[j-1].Lng, path[j].Lat, path[j].Lng, EarthRadiusKM)
		}
		log.Printf("Added route %s (%s) with %d points, %.1f km", id, rs.Name(id), len(path), length)
		added++
	}
	return added, nil
}

// cssHexToColor parses #RRGGBB or #RRGGBBAA.
func cssHexToColor(s string) (color.RGBA, error) {
	if len(s) == 0 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("invalid color string %q", s)
	}
	hex := s[1:]
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color string %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return color.RGBA{}, err
	}
	if len(hex) == 6 {
		return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
