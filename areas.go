package main

import (
	"image"
	"image/color"
	"log"

	"github.com/flywave/go-earcut"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	MinAreaSizePx = 5 // areas smaller than this on screen aren't worth filling
)

var (
	whiteImage = ebiten.NewImage(3, 3)
)

// ServiceArea is a filled polygon overlay, e.g. an agency's coverage zone
// imported from KML.
type ServiceArea struct {
	Name   string
	Points []GeoPoint
}

// Stop is a single transit stop marker.
type Stop struct {
	Name     string
	Location GeoPoint
}

var areaFillColor = color.RGBA{0x00, 0xff, 0x00, 0x4D}

// drawServiceArea projects the area to screen coordinates and fills it.
func drawServiceArea(screen *ebiten.Image, area ServiceArea, centerLat, centerLon, zoom float64, screenWidth, screenHeight int) {
	if len(area.Points) < 3 {
		return
	}
	screenPoints := make([]PixelPoint, len(area.Points))
	for i, pt := range area.Points {
		x, y := latLngToScreenCoords(pt.Lat, pt.Lng, centerLat, centerLon, zoom, screenWidth, screenHeight)
		screenPoints[i] = PixelPoint{X: float64(x), Y: float64(y)}
	}
	drawFilledPolygon(screen, screenPoints, areaFillColor)
}

func isPolygonTooSmall(points []PixelPoint) bool {
	if len(points) < 2 {
		return true
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := points[0].X, points[0].Y
	for _, p := range points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return maxX-minX < MinAreaSizePx || maxY-minY < MinAreaSizePx
}

func drawFilledPolygon(screen *ebiten.Image, points []PixelPoint, fillColor color.RGBA) {
	if len(points) < 3 {
		return // A polygon must have at least 3 points
	}

	// Simplify, then drop repeated points; earcut chokes on both.
	points = rdpSimplify(points, 0.1)
	if isPolygonTooSmall(points) {
		return
	}
	points = removeDuplicatePoints(points)
	if len(points) < 3 {
		return
	}

	vertices := make([]ebiten.Vertex, len(points))
	for i, p := range points {
		vertices[i] = ebiten.Vertex{
			DstX:   float32(p.X),
			DstY:   float32(p.Y),
			SrcX:   1,
			SrcY:   1,
			ColorR: float32(fillColor.R) / 255,
			ColorG: float32(fillColor.G) / 255,
			ColorB: float32(fillColor.B) / 255,
			ColorA: float32(fillColor.A) / 255,
		}
	}

	indices, err := earcutPolygon(points)
	if err != nil {
		log.Printf("Failed to triangulate polygon: %+v", points)
		return
	}

	screen.DrawTriangles(vertices, indices, whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image), &ebiten.DrawTrianglesOptions{})

	// Outline
	for i := 0; i < len(points); i++ {
		next := (i + 1) % len(points)
		vector.StrokeLine(screen, float32(points[i].X), float32(points[i].Y), float32(points[next].X), float32(points[next].Y), 2, color.RGBA{0x00, 0x00, 0x00, 0xff}, false)
	}
}

func removeDuplicatePoints(points []PixelPoint) []PixelPoint {
	uniquePoints := []PixelPoint{}
	pointMap := make(map[PixelPoint]bool)

	for _, point := range points {
		if _, exists := pointMap[point]; !exists {
			pointMap[point] = true
			uniquePoints = append(uniquePoints, point)
		}
	}

	return uniquePoints
}

// earcutPolygon performs ear clipping triangulation on the given polygon points
func earcutPolygon(points []PixelPoint) ([]uint16, error) {
	var coords []float64
	for _, point := range points {
		coords = append(coords, point.X, point.Y)
	}

	indices, err := earcut.Earcut(coords, nil, 2)
	if err != nil {
		return nil, err
	}

	var uint16Indices []uint16
	for _, index := range indices {
		uint16Indices = append(uint16Indices, uint16(index))
	}

	return uint16Indices, nil
}

// drawStop draws a stop as a small filled circle with an outline.
func drawStop(screen *ebiten.Image, stop Stop, centerLat, centerLon, zoom float64, screenWidth, screenHeight int) {
	x, y := latLngToScreenCoords(stop.Location.Lat, stop.Location.Lng, centerLat, centerLon, zoom, screenWidth, screenHeight)
	if x < 0 || x > float32(screenWidth) || y < 0 || y > float32(screenHeight) {
		return
	}
	vector.DrawFilledCircle(screen, x, y, 4, color.RGBA{255, 255, 255, 255}, false)
	vector.StrokeCircle(screen, x, y, 4, 1.5, color.RGBA{0, 0, 0, 255}, false)
}
