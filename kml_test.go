package main

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
<Document>
  <Style id="line-red"><LineStyle><color>ff0000ff</color><width>2</width></LineStyle></Style>
  <StyleMap id="line-red-map">
    <Pair><key>normal</key><styleUrl>#line-red</styleUrl></Pair>
    <Pair><key>highlight</key><styleUrl>#line-red</styleUrl></Pair>
  </StyleMap>
  <Placemark>
    <name>Route 14</name>
    <styleUrl>#line-red-map</styleUrl>
    <LineString><coordinates>
      -122.42,37.77,0 -122.41,37.75,0 -122.39,37.73,0
    </coordinates></LineString>
  </Placemark>
  <Folder>
    <name>Overlays</name>
    <Placemark>
      <name>Coverage</name>
      <Polygon><outerBoundaryIs><LinearRing><coordinates>
        -122.42,37.77,0 -122.41,37.77,0 -122.41,37.78,0 -122.42,37.77,0
      </coordinates></LinearRing></outerBoundaryIs></Polygon>
    </Placemark>
    <Placemark>
      <name>Stop A</name>
      <Point><coordinates>-122.415,37.765,0</coordinates></Point>
    </Placemark>
  </Folder>
</Document>
</kml>`

func TestLoadKML(t *testing.T) {
	game := &Game{Routes: NewRouteSet()}
	require.NoError(t, LoadKML([]byte(sampleKML), game))

	ids := game.Routes.All()
	require.Len(t, ids, 1)
	assert.Equal(t, "Route 14", game.Routes.Name(ids[0]))
	// KML colors are aabbggrr; ff0000ff is opaque red.
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, game.Routes.Colors()[ids[0]])

	path := game.Routes.Geometries()[ids[0]].Path
	require.Len(t, path, 3)
	assert.InDelta(t, 37.77, path[0].Lat, 1e-9)
	assert.InDelta(t, -122.42, path[0].Lng, 1e-9)

	require.Len(t, game.Areas, 1)
	assert.Equal(t, "Coverage", game.Areas[0].Name)
	// The repeated closing point is dropped.
	assert.Len(t, game.Areas[0].Points, 3)

	require.Len(t, game.Stops, 1)
	assert.Equal(t, "Stop A", game.Stops[0].Name)
	assert.InDelta(t, 37.765, game.Stops[0].Location.Lat, 1e-9)
}

func TestLoadKMLNamespacePrefix(t *testing.T) {
	prefixed := `<?xml version="1.0" encoding="UTF-8"?>
<kml:kml xmlns:kml="http://www.opengis.net/kml/2.2">
<kml:Document>
  <kml:Placemark>
    <kml:name>Line</kml:name>
    <kml:LineString><kml:coordinates>0,0,0 1,1,0</kml:coordinates></kml:LineString>
  </kml:Placemark>
</kml:Document>
</kml:kml>`

	game := &Game{Routes: NewRouteSet()}
	require.NoError(t, LoadKML([]byte(prefixed), game))
	assert.Len(t, game.Routes.All(), 1)
}

func TestParseKMLCoordinates(t *testing.T) {
	pts, err := parseKMLCoordinates("-122.42,37.77,0 -122.41,37.75")
	require.NoError(t, err)
	require.Len(t, pts, 2)
	// Longitude comes first in KML.
	assert.Equal(t, GeoPoint{Lat: 37.77, Lng: -122.42}, pts[0])
	assert.Equal(t, GeoPoint{Lat: 37.75, Lng: -122.41}, pts[1])

	_, err = parseKMLCoordinates("abc,def")
	assert.Error(t, err)
}

func TestHexStringToColor(t *testing.T) {
	clr, err := hexStringToColor("ff0000ff")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xff, G: 0, B: 0, A: 0xff}, clr)

	clr, err = hexStringToColor("7fff0000")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0, G: 0, B: 0xff, A: 0x7f}, clr)

	_, err = hexStringToColor("short")
	assert.Error(t, err)
}
