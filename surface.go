package main

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// StrokeSurface is the ebiten-backed MapSurface. Strokes are retained in
// geographic coordinates and repainted every redraw relative to the current
// map center, so panning never involves the overlap renderer.
type StrokeSurface struct {
	strokes map[StrokeHandle]*surfaceStroke
	order   []StrokeHandle
	next    StrokeHandle
}

type surfaceStroke struct {
	points []GeoPoint
	style  StrokeStyle
}

func NewStrokeSurface() *StrokeSurface {
	return &StrokeSurface{
		strokes: make(map[StrokeHandle]*surfaceStroke),
	}
}

func (s *StrokeSurface) CreateStroke(points []GeoPoint, style StrokeStyle) StrokeHandle {
	s.next++
	handle := s.next
	s.strokes[handle] = &surfaceStroke{points: points, style: style}
	s.order = append(s.order, handle)
	return handle
}

func (s *StrokeSurface) UpdateStroke(handle StrokeHandle, points []GeoPoint, style StrokeStyle) {
	if stroke, ok := s.strokes[handle]; ok {
		stroke.points = points
		stroke.style = style
	}
}

func (s *StrokeSurface) RemoveStroke(handle StrokeHandle) {
	if _, ok := s.strokes[handle]; !ok {
		return
	}
	delete(s.strokes, handle)
	for i, h := range s.order {
		if h == handle {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Draw paints all strokes onto dst. Solid strokes go first so dashed shared
// spans always read on top of them.
func (s *StrokeSurface) Draw(dst *ebiten.Image, centerLat, centerLon, zoom float64, screenWidth, screenHeight int) {
	for pass := 0; pass < 2; pass++ {
		for _, handle := range s.order {
			stroke := s.strokes[handle]
			dashed := stroke.style.DashLengthPx > 0
			if (pass == 0) == dashed {
				continue
			}
			s.drawStroke(dst, stroke, centerLat, centerLon, zoom, screenWidth, screenHeight)
		}
	}
}

func (s *StrokeSurface) drawStroke(dst *ebiten.Image, stroke *surfaceStroke, centerLat, centerLon, zoom float64, screenWidth, screenHeight int) {
	if len(stroke.points) < 2 {
		return
	}

	pts := make([]PixelPoint, len(stroke.points))
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i, g := range stroke.points {
		x, y := latLngToScreenCoords(g.Lat, g.Lng, centerLat, centerLon, zoom, screenWidth, screenHeight)
		pts[i] = PixelPoint{X: float64(x), Y: float64(y)}
		minX = math.Min(minX, pts[i].X)
		minY = math.Min(minY, pts[i].Y)
		maxX = math.Max(maxX, pts[i].X)
		maxY = math.Max(maxY, pts[i].Y)
	}

	// Off-screen strokes are skipped entirely.
	margin := float64(stroke.style.WeightPx) + 2
	if maxX < -margin || maxY < -margin || minX > float64(screenWidth)+margin || minY > float64(screenHeight)+margin {
		return
	}

	clr := stroke.style.Color
	if stroke.style.Opacity < 1 {
		clr.A = uint8(float64(clr.A) * stroke.style.Opacity)
	}

	if stroke.style.DashLengthPx <= 0 {
		drawPolyline(dst, pts, stroke.style.WeightPx, clr, stroke.style.Cap)
		return
	}
	drawDashedPolyline(dst, pts, stroke.style.DashLengthPx, stroke.style.GapLengthPx, stroke.style.DashOffsetPx, stroke.style.WeightPx, clr)
}

// drawPolyline strokes a connected polyline with round joins via the vector
// path API, the same DrawTriangles setup the area fill uses.
func drawPolyline(dst *ebiten.Image, pts []PixelPoint, width float32, clr color.RGBA, capStyle LineCap) {
	var path vector.Path
	path.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		path.LineTo(float32(p.X), float32(p.Y))
	}

	op := &vector.StrokeOptions{}
	op.Width = width
	op.LineJoin = vector.LineJoinRound
	if capStyle == CapRound {
		op.LineCap = vector.LineCapRound
	} else {
		op.LineCap = vector.LineCapButt
	}

	vs, is := path.AppendVerticesAndIndicesForStroke(nil, nil, op)
	for i := range vs {
		vs[i].SrcX = 1
		vs[i].SrcY = 1
		vs[i].ColorR = float32(clr.R) / 255
		vs[i].ColorG = float32(clr.G) / 255
		vs[i].ColorB = float32(clr.B) / 255
		vs[i].ColorA = float32(clr.A) / 255
	}
	dst.DrawTriangles(vs, is, whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image), &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

// drawDashedPolyline walks the polyline carrying the dash pattern phase across
// legs, so the dash cadence is continuous around corners. Dashes get butt ends
// by construction (plain stroked line pieces).
func drawDashedPolyline(dst *ebiten.Image, pts []PixelPoint, dashLen, gapLen, offset float64, width float32, clr color.RGBA) {
	pattern := dashLen + gapLen
	if pattern <= 0 {
		return
	}
	patPos := math.Mod(offset, pattern)
	if patPos < 0 {
		patPos += pattern
	}

	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		legLen := a.DistanceTo(b)
		if legLen <= 0 {
			continue
		}
		pos := 0.0
		for pos < legLen-1e-9 {
			inDash := patPos < dashLen
			run := pattern - patPos
			if inDash {
				run = dashLen - patPos
			}
			if run > legLen-pos {
				run = legLen - pos
			}
			if inDash {
				p0 := lerpPixel(a, b, pos/legLen)
				p1 := lerpPixel(a, b, (pos+run)/legLen)
				vector.StrokeLine(dst, float32(p0.X), float32(p0.Y), float32(p1.X), float32(p1.Y), width, clr, true)
			}
			pos += run
			patPos = math.Mod(patPos+run, pattern)
		}
	}
}
