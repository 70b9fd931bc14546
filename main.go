package main

import (
	"fmt"
	"image/color"
	"log"
	"math"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type Game struct {
	ScreenWidth  int
	ScreenHeight int
	basemap      string
	TextBoxText  string
	LastCmdText  string

	Routes *RouteSet
	Areas  []ServiceArea
	Stops  []Stop

	surface  *StrokeSurface
	renderer *OverlapRenderer

	centerLat      float64
	centerLon      float64
	zoom           int
	tileCache      TileImageCache
	panning        bool
	panStartMouseX int
	panStartMouseY int
	panStartLat    float64
	panStartLon    float64
	gps            *GPS
	emptyTile      *ebiten.Image
	offscreenImage *ebiten.Image
	needRedraw     bool
}

func Initialize() (*Game, error) {
	g := &Game{}
	g.centerLat = 37.7793
	g.centerLon = -122.4193
	g.zoom = 12
	g.basemap = OSM

	g.Routes = NewRouteSet()
	g.tileCache = NewTileImageCache()

	g.emptyTile = ebiten.NewImage(256, 256)
	g.emptyTile.Fill(color.RGBA{R: 0, G: 0, B: 0, A: 255})

	g.gps = NewGPS()

	g.ScreenWidth = 1024
	g.ScreenHeight = 768
	g.offscreenImage = ebiten.NewImage(g.ScreenWidth, g.ScreenHeight)
	g.needRedraw = true

	// For polygon and stroke drawing
	whiteImage.Fill(color.White)

	g.surface = NewStrokeSurface()
	renderer, err := NewOverlapRenderer(DefaultRenderConfig(), WebMercator{}, g.surface, func() float64 {
		return float64(g.zoom)
	})
	if err != nil {
		return nil, err
	}
	g.renderer = renderer

	return g, nil
}

// syncRenderer pushes the current routes, selection and colors into the
// overlap renderer and schedules a repaint.
func (g *Game) syncRenderer() {
	g.renderer.UpdateRoutes(g.Routes.Geometries(), g.Routes.Selected(), g.Routes.Colors())
	g.needRedraw = true
}

func (g *Game) runCommand(cmd string) {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case GOOGLEHYBRID, GOOGLEAERIAL, BINGHYBRID, BINGAERIAL, OSM:
		g.basemap = fields[0]
		g.tileCache = NewTileImageCache()
	case "STARTGPS":
		if !g.gps.running {
			if err := g.gps.Start(); err != nil {
				log.Printf("GPS start failed: %v", err)
			}
		}
	case "STOPGPS":
		if g.gps.running {
			g.gps.Stop()
		}
	case "IMPORT":
		clipboardContent, err := clipboard.ReadAll()
		if err != nil {
			fmt.Printf("Error reading clipboard: %v\n", err)
			return
		}
		g.importPayload(strings.TrimSpace(clipboardContent))
		g.syncRenderer()
	case "ALL":
		g.Routes.SelectAll()
		g.syncRenderer()
	case "NONE":
		g.Routes.ClearSelection()
		g.syncRenderer()
	case "SHOW", "HIDE", "TOGGLE":
		if len(fields) < 2 {
			return
		}
		id := fields[1]
		switch fields[0] {
		case "TOGGLE":
			if !g.Routes.Toggle(id) {
				log.Printf("No route %q", id)
				return
			}
		case "SHOW":
			if !g.Routes.IsSelected(id) && !g.Routes.Toggle(id) {
				log.Printf("No route %q", id)
				return
			}
		case "HIDE":
			if g.Routes.IsSelected(id) && !g.Routes.Toggle(id) {
				log.Printf("No route %q", id)
				return
			}
		}
		g.syncRenderer()
	case "COLOR":
		if len(fields) < 3 {
			return
		}
		clr, err := cssHexToColor(fields[2])
		if err != nil {
			log.Printf("Bad color %q: %v", fields[2], err)
			return
		}
		if !g.Routes.SetColor(fields[1], clr) {
			log.Printf("No route %q", fields[1])
			return
		}
		g.syncRenderer()
	case "CLEAR":
		g.renderer.Reset()
		g.Routes = NewRouteSet()
		g.Areas = nil
		g.Stops = nil
		g.syncRenderer()
	}
}

// importPayload takes whatever IMPORT found on the clipboard: a path to a
// routes JSON or KML/KMZ file, or an inline routes JSON document.
func (g *Game) importPayload(payload string) {
	if payload == "" {
		return
	}
	if _, err := os.Stat(payload); err == nil {
		lower := strings.ToLower(payload)
		switch {
		case strings.HasSuffix(lower, ".kml") || strings.HasSuffix(lower, ".kmz"):
			if err := LoadKMLFile(payload, g); err != nil {
				log.Printf("KML import failed: %v", err)
			}
		default:
			if _, err := LoadRoutesFile(payload, g.Routes); err != nil {
				log.Printf("Routes import failed: %v", err)
			}
		}
		return
	}
	if _, err := LoadRoutes([]byte(payload), g.Routes); err != nil {
		log.Printf("Inline routes import failed: %v", err)
	}
}

// identifyRoute reports which selected routes run under the cursor, searching
// each route path within a small pixel threshold.
func (g *Game) identifyRoute(mouseX, mouseY int) {
	const threshold = 5.0

	var hits []string
	for _, id := range g.Routes.Selected() {
		geom := g.Routes.Geometries()[id]
		for i := 0; i+1 < len(geom.Path); i++ {
			x1, y1 := latLngToScreenCoords(geom.Path[i].Lat, geom.Path[i].Lng, g.centerLat, g.centerLon, float64(g.zoom), g.ScreenWidth, g.ScreenHeight)
			x2, y2 := latLngToScreenCoords(geom.Path[i+1].Lat, geom.Path[i+1].Lng, g.centerLat, g.centerLon, float64(g.zoom), g.ScreenWidth, g.ScreenHeight)
			if pointLineSegmentDistance(float64(mouseX), float64(mouseY), float64(x1), float64(y1), float64(x2), float64(y2)) <= threshold {
				hits = append(hits, id)
				break
			}
		}
	}
	if len(hits) == 0 {
		return
	}
	fmt.Printf("Routes here: %s\n", strings.Join(hits, ", "))
	if err := clipboard.WriteAll(hits[0]); err == nil {
		g.LastCmdText = "Copied " + hits[0]
	}
}

func (g *Game) Update() error {
	if droppedFiles := ebiten.DroppedFiles(); droppedFiles != nil {
		if err := LoadKMLDroppedFiles(droppedFiles, g); err != nil {
			log.Println(err)
		}
		g.syncRenderer()
	}

	if inpututil.IsKeyJustReleased(ebiten.KeyEnter) {
		cmd := g.TextBoxText
		if cmd == "" {
			cmd = g.LastCmdText
		} else {
			g.LastCmdText = cmd
		}
		g.runCommand(cmd)
		g.TextBoxText = ""
		g.needRedraw = true
	} else {
		g.handleTextInput()
	}

	// Click to identify routes under the cursor
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		mouseX, mouseY := ebiten.CursorPosition()
		if mouseX == g.panStartMouseX && mouseY == g.panStartMouseY {
			g.identifyRoute(mouseX, mouseY)
		}
	}

	// Zoomers...
	_, scrollY := ebiten.Wheel()
	scrollThreshold := 0.2
	mouseX, mouseY := ebiten.CursorPosition()

	if scrollY > scrollThreshold || scrollY < -scrollThreshold {
		// Calculate the world coordinates before zooming
		preZoomLat, preZoomLon := screenCoordsToLatLng(mouseX, mouseY, g)

		if scrollY > scrollThreshold {
			g.zoom++
		} else if scrollY < -scrollThreshold {
			g.zoom--
		}

		// Clamp the zoom level within a valid range
		g.zoom = int(math.Max(0, math.Min(21, float64(g.zoom))))

		// Adjust the center to keep the coordinates under the mouse locked
		postZoomLat, postZoomLon := screenCoordsToLatLng(mouseX, mouseY, g)
		g.centerLat += preZoomLat - postZoomLat
		g.centerLon += preZoomLon - postZoomLon

		// Strokes are recomputed per zoom level, not per pan
		g.renderer.HandleZoomEnd()
		g.needRedraw = true
	}

	// Panning
	tileWidth := 360 / math.Pow(2, float64(g.zoom))
	panSpeed := tileWidth * 0.5

	if ebiten.IsKeyPressed(ebiten.KeyLeft) {
		g.centerLon -= panSpeed
		g.needRedraw = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyRight) {
		g.centerLon += panSpeed
		g.needRedraw = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyUp) {
		g.centerLat += panSpeed
		g.needRedraw = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyDown) {
		g.centerLat -= panSpeed
		g.needRedraw = true
	}

	// Panning with middle mouse button or left-drag
	mouseX, mouseY = ebiten.CursorPosition()
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle) || ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if !g.panning {
			g.panning = true
			g.panStartMouseX, g.panStartMouseY = mouseX, mouseY
			g.panStartLat, g.panStartLon = screenCoordsToLatLng(mouseX, mouseY, g)
		} else {
			postLat, postLon := screenCoordsToLatLng(mouseX, mouseY, g)
			g.centerLat += g.panStartLat - postLat
			g.centerLon += g.panStartLon - postLon
		}
		g.needRedraw = true
	} else {
		g.panning = false
	}

	// Clamp the coordinates to valid values
	g.centerLat = math.Min(math.Max(g.centerLat, -85.05112878), 85.05112878)
	g.centerLon = math.Min(math.Max(g.centerLon, -180), 180)

	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.needRedraw {
		g.needRedraw = false // Reset the flag
		g.offscreenImage.Clear()

		// Calculate the center pixel coordinates of the game window
		centerX := g.ScreenWidth / 2
		centerY := g.ScreenHeight / 2

		// Get the tile coordinates and pixel coordinates of the center point
		tileX, tileY := latLngToTile(g.centerLat, g.centerLon, g.zoom)
		pixelX, pixelY := latLngToTilePixel(g.centerLat, g.centerLon, g.zoom)

		// Calculate the tile offset to center the pixel coordinates in the game window
		tileOffsetX := centerX - pixelX
		tileOffsetY := centerY - pixelY

		// Calculate the number of tiles needed to cover the window
		numHorizontalTiles := int(math.Ceil(float64(g.ScreenWidth)/256)) + 2
		numVerticalTiles := int(math.Ceil(float64(g.ScreenHeight)/256)) + 2

		// Calculate the starting tile coordinates based on the center tile
		startTileX := tileX - numHorizontalTiles/2
		startTileY := tileY - numVerticalTiles/2

		// Draw the tiles within the window
		for i := 0; i < numHorizontalTiles; i++ {
			for j := 0; j < numVerticalTiles; j++ {
				op := &ebiten.DrawImageOptions{}
				tileOffsetXForTile := tileOffsetX + ((i - numHorizontalTiles/2) * 256)
				tileOffsetYForTile := tileOffsetY + ((j - numVerticalTiles/2) * 256)
				op.GeoM.Translate(float64(tileOffsetXForTile), float64(tileOffsetYForTile))
				if drawTile(g.offscreenImage, g.emptyTile, &g.tileCache, startTileX+i, startTileY+j, g.zoom, g.basemap, op) {
					g.needRedraw = true
				}
			}
		}

		// Service areas under the routes
		for _, area := range g.Areas {
			drawServiceArea(g.offscreenImage, area, g.centerLat, g.centerLon, float64(g.zoom), g.ScreenWidth, g.ScreenHeight)
		}

		// Route strokes (solid and interleaved dashed spans)
		g.surface.Draw(g.offscreenImage, g.centerLat, g.centerLon, float64(g.zoom), g.ScreenWidth, g.ScreenHeight)

		// Stops on top
		for _, stop := range g.Stops {
			drawStop(g.offscreenImage, stop, g.centerLat, g.centerLon, float64(g.zoom), g.ScreenWidth, g.ScreenHeight)
		}
	}

	// Draw the off-screen image to the screen
	screen.DrawImage(g.offscreenImage, nil)

	// Draw the current GPS position
	if g.gps.running {
		gpsX, gpsY := latLngToScreenCoords(g.gps.latitude, g.gps.longitude, g.centerLat, g.centerLon, float64(g.zoom), g.ScreenWidth, g.ScreenHeight)
		gpsCircleRadius := 10.0 * g.gps.hdop
		drawGPSMarker(screen, gpsX, gpsY, float32(gpsCircleRadius), g.gps.course)
	}

	g.DrawLegend(screen)
	g.DrawTextbox(screen, g.ScreenWidth, g.ScreenHeight)

	// Draw the crosshair at the mouse position
	mouseX, mouseY := ebiten.CursorPosition()
	drawSquareCrosshair(screen, float32(mouseX), float32(mouseY), 10, 100, color.RGBA{255, 255, 255, 255})

	lat, lon := screenCoordsToLatLng(mouseX, mouseY, g)
	debugString := fmt.Sprintf("Zoom: %d, Coords: %f, %f\n%d Routes (%d selected), %d Areas, %d Stops\n%.0f FPS",
		g.zoom, lat, lon, len(g.Routes.All()), len(g.Routes.Selected()), len(g.Areas), len(g.Stops), ebiten.ActualFPS())
	ebitenutil.DebugPrint(screen, debugString)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	if g.ScreenWidth != outsideWidth || g.ScreenHeight != outsideHeight {
		// Recreate the off-screen image with the new dimensions
		g.offscreenImage = ebiten.NewImage(outsideWidth, outsideHeight)
		g.needRedraw = true
	}

	g.ScreenWidth = outsideWidth
	g.ScreenHeight = outsideHeight
	return outsideWidth, outsideHeight
}

func main() {
	game, err := Initialize()
	if err != nil {
		log.Fatalf("Error initializing program: %v", err)
	}

	// Optional routes file on the command line
	if len(os.Args) > 1 {
		game.importPayload(os.Args[1])
		game.syncRenderer()
	}

	startWorkerPool(10)

	ebiten.SetWindowSize(game.ScreenWidth, game.ScreenHeight)
	ebiten.SetWindowTitle("TransitForge")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetCursorMode(ebiten.CursorModeHidden)

	if err := ebiten.RunGame(game); err != nil {
		fmt.Println(err)
	}
}
