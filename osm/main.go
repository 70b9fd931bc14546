// Fetches OSM data for a bounding box and extracts public transport route
// relations into the routes JSON the viewer imports.
//
// Usage: osm <left,bottom,right,top> > routes.json
package main

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"os"
)

type Osm struct {
	XMLName   xml.Name   `xml:"osm"`
	Nodes     []Node     `xml:"node"`
	Ways      []Way      `xml:"way"`
	Relations []Relation `xml:"relation"`
}

type Node struct {
	XMLName xml.Name `xml:"node"`
	Id      int64    `xml:"id,attr"`
	Lat     float64  `xml:"lat,attr"`
	Lon     float64  `xml:"lon,attr"`
}

type Way struct {
	XMLName xml.Name  `xml:"way"`
	Id      int64     `xml:"id,attr"`
	Nodes   []WayNode `xml:"nd"`
	Tags    []Tag     `xml:"tag"`
}

type WayNode struct {
	XMLName xml.Name `xml:"nd"`
	Ref     int64    `xml:"ref,attr"`
}

type Relation struct {
	XMLName xml.Name `xml:"relation"`
	Id      int64    `xml:"id,attr"`
	Members []Member `xml:"member"`
	Tags    []Tag    `xml:"tag"`
}

type Member struct {
	XMLName xml.Name `xml:"member"`
	Type    string   `xml:"type,attr"`
	Ref     int64    `xml:"ref,attr"`
	Role    string   `xml:"role,attr"`
}

type Tag struct {
	XMLName xml.Name `xml:"tag"`
	Key     string   `xml:"k,attr"`
	Value   string   `xml:"v,attr"`
}

type routesFile struct {
	Routes []routeEntry `json:"routes"`
}

type routeEntry struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Color  string      `json:"color,omitempty"`
	Coords [][]float64 `json:"coords"`
}

var transitRouteTypes = map[string]bool{
	"bus":        true,
	"trolleybus": true,
	"tram":       true,
	"light_rail": true,
	"subway":     true,
	"train":      true,
	"ferry":      true,
}

func tagValue(tags []Tag, key string) string {
	for _, tag := range tags {
		if tag.Key == key {
			return tag.Value
		}
	}
	return ""
}

// assemblePath concatenates a relation's member ways into one coordinate
// sequence, reversing ways as needed so consecutive ways connect. Gaps are
// bridged by just continuing; the viewer's renderer treats them as geometric
// breaks.
func assemblePath(rel Relation, ways map[int64]Way, nodes map[int64]Node) [][]float64 {
	var path [][]float64
	var lastRef int64 = -1

	for _, member := range rel.Members {
		if member.Type != "way" || member.Role == "platform" || member.Role == "stop" {
			continue
		}
		way, ok := ways[member.Ref]
		if !ok || len(way.Nodes) < 2 {
			continue
		}

		refs := make([]int64, len(way.Nodes))
		for i, nd := range way.Nodes {
			refs[i] = nd.Ref
		}
		if lastRef >= 0 && refs[len(refs)-1] == lastRef {
			// Reverse so this way continues from the previous one
			for i, j := 0, len(refs)-1; i < j; i, j = i+1, j-1 {
				refs[i], refs[j] = refs[j], refs[i]
			}
		}

		for i, ref := range refs {
			if i == 0 && ref == lastRef {
				continue // shared joint node
			}
			node, ok := nodes[ref]
			if !ok {
				continue
			}
			path = append(path, []float64{node.Lat, node.Lon})
		}
		lastRef = refs[len(refs)-1]
	}
	return path
}

func main() {
	bbox := "-122.45,37.76,-122.39,37.81"
	if len(os.Args) > 1 {
		bbox = os.Args[1]
	}

	url := fmt.Sprintf("https://api.openstreetmap.org/api/0.6/map?bbox=%s", bbox)
	resp, err := http.Get(url)
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		panic(err)
	}

	var osm Osm
	if err := xml.Unmarshal(body, &osm); err != nil {
		panic(err)
	}

	nodes := make(map[int64]Node, len(osm.Nodes))
	for _, node := range osm.Nodes {
		nodes[node.Id] = node
	}
	ways := make(map[int64]Way, len(osm.Ways))
	for _, way := range osm.Ways {
		ways[way.Id] = way
	}

	var out routesFile
	for _, rel := range osm.Relations {
		if tagValue(rel.Tags, "type") != "route" || !transitRouteTypes[tagValue(rel.Tags, "route")] {
			continue
		}

		path := assemblePath(rel, ways, nodes)
		if len(path) < 2 {
			continue
		}

		id := tagValue(rel.Tags, "ref")
		if id == "" {
			id = fmt.Sprintf("rel-%d", rel.Id)
		}
		name := tagValue(rel.Tags, "name")

		out.Routes = append(out.Routes, routeEntry{
			ID:     id,
			Name:   name,
			Color:  tagValue(rel.Tags, "colour"),
			Coords: path,
		})
		fmt.Fprintf(os.Stderr, "Route %s (%s): %d points\n", id, name, len(path))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		panic(err)
	}
}
