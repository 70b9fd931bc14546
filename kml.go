package main

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"image/color"
	"io"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// KML import: LineString placemarks become transit routes, Polygon placemarks
// become service areas, Point placemarks become stop markers. Line colors are
// resolved through the document styles the same way the geometry is.

type KML struct {
	XMLName   xml.Name   `xml:"kml"`
	Documents []Document `xml:"Document"`
	Folders   []Folder   `xml:"Folder"` // Folders without a document
}

type Document struct {
	XMLName    xml.Name    `xml:"Document"`
	Folders    []Folder    `xml:"Folder"`
	Documents  []Document  `xml:"Document"` // Handle nested documents
	Placemarks []Placemark `xml:"Placemark"`
	Styles     []Style     `xml:"Style"`
	StyleMaps  []StyleMap  `xml:"StyleMap"`
}

type Folder struct {
	XMLName    xml.Name    `xml:"Folder"`
	Name       string      `xml:"name"`
	Placemarks []Placemark `xml:"Placemark"`
	Folders    []Folder    `xml:"Folder"`
	Documents  []Document  `xml:"Document"`
}

type Placemark struct {
	Name          string        `xml:"name"`
	StyleURL      string        `xml:"styleUrl"`
	Style         Style         `xml:"Style"`
	Point         Point         `xml:"Point"`
	LineString    LineString    `xml:"LineString"`
	Polygon       Polygon       `xml:"Polygon"`
	MultiGeometry MultiGeometry `xml:"MultiGeometry"`
}

type Polygon struct {
	OuterBoundaryIs OuterBoundaryIs `xml:"outerBoundaryIs"`
}

type OuterBoundaryIs struct {
	LinearRing LinearRing `xml:"LinearRing"`
}

type LinearRing struct {
	Coordinates string `xml:"coordinates"`
}

type MultiGeometry struct {
	LineStrings []LineString `xml:"LineString"`
	Polygons    []Polygon    `xml:"Polygon"`
}

type Point struct {
	Coordinates string `xml:"coordinates"`
}

type LineString struct {
	Coordinates string `xml:"coordinates"`
}

type StyleMap struct {
	XMLName xml.Name `xml:"StyleMap"`
	ID      string   `xml:"id,attr"`
	Pairs   []Pair   `xml:"Pair"`
}

type Pair struct {
	Key      string `xml:"key"`
	StyleURL string `xml:"styleUrl"`
}

type Style struct {
	XMLName   xml.Name  `xml:"Style"`
	ID        string    `xml:"id,attr"`
	LineStyle LineStyle `xml:"LineStyle"`
}

type LineStyle struct {
	Color string  `xml:"color"`
	Width float64 `xml:"width"`
}

// kmlImporter collects the style tables while walking a document tree and
// pushes the extracted geometry into the game's route set and overlays.
type kmlImporter struct {
	game     *Game
	styles   map[string]string            // style id -> KML color
	styleMap map[string]map[string]string // style map id -> key -> style id
	added    int
}

func newKMLImporter(game *Game) *kmlImporter {
	return &kmlImporter{
		game:     game,
		styles:   make(map[string]string),
		styleMap: make(map[string]map[string]string),
	}
}

func (imp *kmlImporter) walk(folders []Folder, documents []Document) {
	for _, folder := range folders {
		imp.placemarks(folder.Placemarks)
		imp.walk(folder.Folders, folder.Documents)
	}
	for _, document := range documents {
		for _, styleMap := range document.StyleMaps {
			pairs := make(map[string]string)
			for _, pair := range styleMap.Pairs {
				pairs[pair.Key] = strings.TrimPrefix(pair.StyleURL, "#")
			}
			imp.styleMap[styleMap.ID] = pairs
		}
		for _, style := range document.Styles {
			imp.styles[style.ID] = style.LineStyle.Color
		}
		imp.placemarks(document.Placemarks)
		imp.walk(document.Folders, document.Documents)
	}
}

// lineColor resolves a placemark's line color through styleUrl, with StyleMap
// indirection, or an embedded style.
func (imp *kmlImporter) lineColor(placemark Placemark) (color.RGBA, bool) {
	styleURL := strings.TrimPrefix(placemark.StyleURL, "#")
	if styleURL != "" {
		if pairs, ok := imp.styleMap[styleURL]; ok {
			styleURL = pairs["normal"]
		}
		if kmlColor, ok := imp.styles[styleURL]; ok {
			if clr, err := hexStringToColor(kmlColor); err == nil {
				return clr, true
			}
		}
	}
	if placemark.Style.LineStyle.Color != "" {
		if clr, err := hexStringToColor(placemark.Style.LineStyle.Color); err == nil {
			return clr, true
		}
	}
	return color.RGBA{}, false
}

func (imp *kmlImporter) placemarks(placemarks []Placemark) {
	for _, placemark := range placemarks {
		lineStrings := placemark.MultiGeometry.LineStrings
		if len(placemark.LineString.Coordinates) > 0 {
			lineStrings = append(lineStrings, placemark.LineString)
		}
		polygons := placemark.MultiGeometry.Polygons
		if len(placemark.Polygon.OuterBoundaryIs.LinearRing.Coordinates) > 0 {
			polygons = append(polygons, placemark.Polygon)
		}

		for _, lineString := range lineStrings {
			path, err := parseKMLCoordinates(lineString.Coordinates)
			if err != nil {
				log.Printf("Skipping line %q: %v", placemark.Name, err)
				continue
			}
			if len(path) < 2 {
				continue
			}
			clr, ok := imp.lineColor(placemark)
			if !ok {
				clr = routePalette[(len(imp.game.Routes.All())+imp.added)%len(routePalette)]
			}
			id := imp.game.Routes.Add("", placemark.Name, path, clr)
			log.Printf("Added route %s (%s) with %d points from KML", id, placemark.Name, len(path))
			imp.added++
		}

		for _, polygon := range polygons {
			ring, err := parseKMLCoordinates(polygon.OuterBoundaryIs.LinearRing.Coordinates)
			if err != nil {
				log.Printf("Skipping polygon %q: %v", placemark.Name, err)
				continue
			}
			// Drop the closing point if it repeats the first one.
			if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
				ring = ring[:len(ring)-1]
			}
			if len(ring) < 3 {
				continue
			}
			imp.game.Areas = append(imp.game.Areas, ServiceArea{Name: placemark.Name, Points: ring})
			log.Printf("Added service area %q with %d points", placemark.Name, len(ring))
		}

		if len(placemark.Point.Coordinates) > 0 {
			pts, err := parseKMLCoordinates(placemark.Point.Coordinates)
			if err == nil && len(pts) > 0 {
				imp.game.Stops = append(imp.game.Stops, Stop{Name: placemark.Name, Location: pts[0]})
			}
		}
	}
}

// parseKMLCoordinates parses a KML coordinate blob. In KMLs, longitude comes
// before latitude.
func parseKMLCoordinates(raw string) ([]GeoPoint, error) {
	var out []GeoPoint
	for _, token := range strings.Fields(strings.TrimSpace(raw)) {
		parts := strings.Split(token, ",")
		if len(parts) < 2 {
			continue
		}
		lng, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, err
		}
		lat, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, err
		}
		out = append(out, GeoPoint{Lat: lat, Lng: lng})
	}
	return out, nil
}

// hexStringToColor parses a KML color, which is aabbggrr.
func hexStringToColor(hex string) (color.RGBA, error) {
	if len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color string")
	}

	a, err := strconv.ParseUint(hex[0:2], 16, 8)
	if err != nil {
		return color.RGBA{}, err
	}

	b, err := strconv.ParseUint(hex[2:4], 16, 8)
	if err != nil {
		return color.RGBA{}, err
	}

	g, err := strconv.ParseUint(hex[4:6], 16, 8)
	if err != nil {
		return color.RGBA{}, err
	}

	r, err := strconv.ParseUint(hex[6:8], 16, 8)
	if err != nil {
		return color.RGBA{}, err
	}

	return color.RGBA{
		R: uint8(r),
		G: uint8(g),
		B: uint8(b),
		A: uint8(a),
	}, nil
}

// LoadKMLFile imports routes, areas and stops from a .kml or .kmz file.
func LoadKMLFile(filename string, game *Game) error {
	var kmlData []byte
	var err error

	if strings.HasSuffix(strings.ToLower(filename), ".kmz") {
		r, err := zip.OpenReader(filename)
		if err != nil {
			return err
		}
		defer r.Close()

		// Find the KML file inside the KMZ archive
		for _, f := range r.File {
			if strings.HasSuffix(strings.ToLower(f.Name), ".kml") {
				rc, err := f.Open()
				if err != nil {
					return err
				}
				defer rc.Close()

				kmlData, err = io.ReadAll(rc)
				if err != nil {
					return err
				}
				break
			}
		}
		if kmlData == nil {
			return fmt.Errorf("no KML file found in the KMZ archive")
		}
	} else {
		kmlData, err = os.ReadFile(filename)
		if err != nil {
			return err
		}
	}

	return LoadKML(kmlData, game)
}

// LoadKMLDroppedFiles imports every KML/KMZ file dropped onto the window.
func LoadKMLDroppedFiles(droppedFiles fs.FS, game *Game) error {
	files, _ := fs.ReadDir(droppedFiles, ".")
	for _, fileEntry := range files {
		if fileEntry.IsDir() {
			continue
		}
		fileInfo, err := fileEntry.Info()
		if err != nil {
			log.Println("Error getting file info:", err)
			continue
		}

		file, err := droppedFiles.Open(fileEntry.Name())
		if err != nil {
			log.Println("Error opening file:", err)
			continue
		}

		var kmlData []byte
		if strings.HasSuffix(strings.ToLower(fileEntry.Name()), ".kmz") {
			content, err := io.ReadAll(file)
			if err != nil {
				return err
			}
			r, err := zip.NewReader(bytes.NewReader(content), fileInfo.Size())
			if err != nil {
				return err
			}

			// Find the KML file inside the KMZ archive
			for _, f := range r.File {
				if strings.HasSuffix(strings.ToLower(f.Name), ".kml") {
					rc, err := f.Open()
					if err != nil {
						return err
					}
					defer rc.Close()

					kmlData, err = io.ReadAll(rc)
					if err != nil {
						return err
					}
					break
				}
			}
			if kmlData == nil {
				return fmt.Errorf("no KML file found in the KMZ archive")
			}
		} else {
			kmlData, err = io.ReadAll(file)
			if err != nil {
				return err
			}
		}

		if err := LoadKML(kmlData, game); err != nil {
			return err
		}
	}
	return nil
}

func LoadKML(kmlData []byte, game *Game) error {
	var err error

	// Check if the data is UTF-16 encoded and convert it to UTF-8 if necessary
	if len(kmlData) >= 2 && kmlData[0] == 0xFF && kmlData[1] == 0xFE {
		log.Println("Found UTF-16 little Endian")
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		kmlData, err = io.ReadAll(transform.NewReader(bytes.NewReader(kmlData), decoder))
		if err != nil {
			return err
		}
	} else if len(kmlData) >= 2 && kmlData[0] == 0xFE && kmlData[1] == 0xFF {
		log.Println("Found UTF-16 Big Endian")
		decoder := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		kmlData, err = io.ReadAll(transform.NewReader(bytes.NewReader(kmlData), decoder))
		if err != nil {
			return err
		}
	}

	kmlString := string(kmlData)
	kmlString = strings.Replace(kmlString, `encoding="UTF-16"`, `encoding="UTF-8"`, 1)
	// Remove the 'kml:' prefix from the KML data that some files seem to have..
	kmlString = strings.Replace(kmlString, "<kml:", "<", -1)
	kmlString = strings.Replace(kmlString, "</kml:", "</", -1)
	kmlData = []byte(kmlString)

	var kml KML
	if err := xml.Unmarshal(kmlData, &kml); err != nil {
		return err
	}

	imp := newKMLImporter(game)
	imp.walk(kml.Folders, nil)
	imp.walk(nil, kml.Documents)
	return nil
}
