package main

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRoutesCoords(t *testing.T) {
	data := []byte(`{"routes":[
		{"id":"14","name":"Mission","color":"#ff0000","coords":[[37.77,-122.42],[37.75,-122.41],[37.73,-122.39]]},
		{"id":"49","name":"Van Ness","color":"bogus","coords":[[37.80,-122.42],[37.74,-122.42]]},
		{"id":"short","coords":[[37.77,-122.42]]}
	]}`)

	rs := NewRouteSet()
	added, err := LoadRoutes(data, rs)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	assert.Equal(t, []string{"14", "49"}, rs.All())
	assert.Equal(t, "Mission", rs.Name("14"))
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, rs.Colors()["14"])
	// Unparseable color falls back to the palette.
	assert.NotEqual(t, color.RGBA{}, rs.Colors()["49"])

	geom := rs.Geometries()["14"]
	require.Len(t, geom.Path, 3)
	assert.InDelta(t, 37.77, geom.Path[0].Lat, 1e-9)
	assert.InDelta(t, -122.42, geom.Path[0].Lng, 1e-9)
}

func TestLoadRoutesPolyline(t *testing.T) {
	// The canonical encoded polyline example.
	data := []byte(`{"routes":[{"id":"p1","name":"Encoded","color":"#0000ff","polyline":"_p~iF~ps|U_ulLnnqC_mqNvxq` + "`" + `@"}]}`)

	rs := NewRouteSet()
	added, err := LoadRoutes(data, rs)
	require.NoError(t, err)
	require.Equal(t, 1, added)

	path := rs.Geometries()["p1"].Path
	require.Len(t, path, 3)
	assert.InDelta(t, 38.5, path[0].Lat, 1e-5)
	assert.InDelta(t, -120.2, path[0].Lng, 1e-5)
	assert.InDelta(t, 40.7, path[1].Lat, 1e-5)
	assert.InDelta(t, -120.95, path[1].Lng, 1e-5)
	assert.InDelta(t, 43.252, path[2].Lat, 1e-5)
	assert.InDelta(t, -126.453, path[2].Lng, 1e-5)
}

func TestLoadRoutesBadJSON(t *testing.T) {
	rs := NewRouteSet()
	_, err := LoadRoutes([]byte("not json"), rs)
	assert.Error(t, err)
}

func TestRouteSetSelection(t *testing.T) {
	rs := NewRouteSet()
	path := []GeoPoint{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}}
	rs.Add("14", "Mission", path, color.RGBA{R: 0xff, A: 0xff})
	rs.Add("49", "Van Ness", path, color.RGBA{B: 0xff, A: 0xff})

	assert.Equal(t, []string{"14", "49"}, rs.Selected())

	require.True(t, rs.Toggle("14"))
	assert.Equal(t, []string{"49"}, rs.Selected())
	assert.False(t, rs.Toggle("nope"))

	rs.SelectAll()
	assert.Equal(t, []string{"14", "49"}, rs.Selected())

	rs.ClearSelection()
	assert.Empty(t, rs.Selected())

	rs.SelectAll()
	rs.Remove("14")
	assert.Equal(t, []string{"49"}, rs.All())
	assert.Equal(t, []string{"49"}, rs.Selected())
}

func TestRouteSetSyntheticIDs(t *testing.T) {
	rs := NewRouteSet()
	path := []GeoPoint{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}}
	id1 := rs.Add("", "Imported", path, color.RGBA{A: 0xff})
	id2 := rs.Add("", "", path, color.RGBA{A: 0xff})
	assert.Equal(t, "overlay-1", id1)
	assert.Equal(t, "overlay-2", id2)
	assert.Equal(t, "Imported", rs.Name(id1))
	assert.Equal(t, "overlay-2", rs.Name(id2)) // falls back to the id
}

func TestCSSHexToColor(t *testing.T) {
	clr, err := cssHexToColor("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xff, G: 0x80, B: 0x00, A: 0xff}, clr)

	clr, err = cssHexToColor("#11223344")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x44}, clr)

	for _, bad := range []string{"", "red", "#12345", "#gggggg"} {
		_, err := cssHexToColor(bad)
		assert.Error(t, err, "input %q", bad)
	}
}
