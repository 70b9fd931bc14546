package main

import (
	"fmt"
	"math"
)

type boundingBox struct {
	MinX, MinY, MaxX, MaxY float64
}

func (b boundingBox) intersects(o boundingBox) bool {
	return b.MinX <= o.MaxX && b.MaxX >= o.MinX && b.MinY <= o.MaxY && b.MaxY >= o.MinY
}

func (b boundingBox) expand(by float64) boundingBox {
	return boundingBox{
		MinX: b.MinX - by,
		MinY: b.MinY - by,
		MaxX: b.MaxX + by,
		MaxY: b.MaxY + by,
	}
}

type gridCell struct {
	X, Y int
}

// segmentGrid is a bulk-loaded uniform grid over bounding boxes. Each box is
// registered in every cell it touches; Search returns the indices of all boxes
// intersecting a query box. Built fresh every render pass, never persisted.
type segmentGrid struct {
	cellPx float64
	cells  map[gridCell][]int
	boxes  []boundingBox
}

func newSegmentGrid(cellPx float64) (*segmentGrid, error) {
	if math.IsNaN(cellPx) || cellPx <= 0 {
		return nil, fmt.Errorf("spatial index: cell size must be > 0, got %v", cellPx)
	}
	return &segmentGrid{
		cellPx: cellPx,
		cells:  make(map[gridCell][]int),
	}, nil
}

// Load bulk-inserts the boxes; indices returned by Search refer to positions
// in this slice.
func (g *segmentGrid) Load(boxes []boundingBox) {
	g.boxes = boxes
	for i, b := range boxes {
		g.eachCell(b, func(c gridCell) {
			g.cells[c] = append(g.cells[c], i)
		})
	}
}

func (g *segmentGrid) Search(query boundingBox) []int {
	var out []int
	seen := make(map[int]bool)
	g.eachCell(query, func(c gridCell) {
		for _, i := range g.cells[c] {
			if seen[i] {
				continue
			}
			seen[i] = true
			if g.boxes[i].intersects(query) {
				out = append(out, i)
			}
		}
	})
	return out
}

func (g *segmentGrid) eachCell(b boundingBox, fn func(gridCell)) {
	x0 := int(math.Floor(b.MinX / g.cellPx))
	x1 := int(math.Floor(b.MaxX / g.cellPx))
	y0 := int(math.Floor(b.MinY / g.cellPx))
	y1 := int(math.Floor(b.MaxY / g.cellPx))
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			fn(gridCell{X: x, Y: y})
		}
	}
}
