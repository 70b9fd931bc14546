package main

import (
	"image/color"
	"math"
)

type LineCap int

const (
	CapRound LineCap = iota
	CapButt
)

type LineJoin int

const (
	JoinRound LineJoin = iota
)

// StrokeStyle describes one stroke on the map surface. A zero DashLengthPx
// means solid.
type StrokeStyle struct {
	Color        color.RGBA
	WeightPx     float32
	Opacity      float64
	DashLengthPx float64
	GapLengthPx  float64
	DashOffsetPx float64
	Cap          LineCap
	Join         LineJoin
}

// dashPattern is the per-route dash phase layout for one shared paint group:
// a dash-plus-gap cycle covers exactly one dash of every sharing route.
type dashPattern struct {
	DashLengthPx    float64
	GapLengthPx     float64
	PatternLengthPx float64
	// OffsetsPx holds one dash offset per route, ordered as group.Routes,
	// each reduced into [0, PatternLengthPx).
	OffsetsPx []float64
}

// synthesizeDashes computes the interleaved dash layout for a shared group.
// The dash phase is anchored on the route with the largest recorded overlap
// offset (ties to the smaller route id) so the established overlap edge stays
// visually stable as routes come and go; each route's offset is then snapped
// by whole pattern cycles onto its own recorded offset, landing a dash
// boundary exactly where the matcher observed the real-world overlap point.
func synthesizeDashes(group PaintGroup, dashBasePx, minDashPx float64) dashPattern {
	n := len(group.Routes)

	dashLength := math.Min(dashBasePx, group.LengthPx/float64(n))
	if dashLength <= 0 {
		dashLength = minDashPx
	}
	gapLength := dashLength * float64(n-1)
	patternLength := dashLength + gapLength

	anchorIdx := 0
	anchorOffset := group.OffsetPx
	found := false
	for i, r := range group.Routes {
		v, ok := group.RouteOffsets[r]
		if !ok {
			continue
		}
		if !found || v > anchorOffset || (v == anchorOffset && r < group.Routes[anchorIdx]) {
			anchorIdx = i
			anchorOffset = v
			found = true
		}
	}
	if !found {
		anchorIdx = 0
		anchorOffset = group.OffsetPx
	}

	baseOffset := anchorOffset - dashLength*float64(anchorIdx)

	offsets := make([]float64, n)
	for i, r := range group.Routes {
		raw := baseOffset + dashLength*float64(i)
		if recorded, ok := group.RouteOffsets[r]; ok {
			raw += math.Round((recorded-raw)/patternLength) * patternLength
		}
		raw = math.Mod(raw, patternLength)
		if raw < 0 {
			raw += patternLength
		}
		offsets[i] = raw
	}

	return dashPattern{
		DashLengthPx:    dashLength,
		GapLengthPx:     gapLength,
		PatternLengthPx: patternLength,
		OffsetsPx:       offsets,
	}
}

// groupStyles renders a paint group into one style per stroke: a single solid
// stroke for an exclusive group, or one dashed stroke per route for a shared
// group. Shared strokes use butt caps so dashes don't visually overlap at
// their meeting points.
func groupStyles(group PaintGroup, colors map[string]color.RGBA, weight float32, dashBasePx, minDashPx float64) []StrokeStyle {
	if len(group.Routes) == 1 {
		return []StrokeStyle{{
			Color:    colors[group.Routes[0]],
			WeightPx: weight,
			Opacity:  1,
			Cap:      CapRound,
			Join:     JoinRound,
		}}
	}

	pattern := synthesizeDashes(group, dashBasePx, minDashPx)
	styles := make([]StrokeStyle, len(group.Routes))
	for i, r := range group.Routes {
		styles[i] = StrokeStyle{
			Color:        colors[r],
			WeightPx:     weight,
			Opacity:      1,
			DashLengthPx: pattern.DashLengthPx,
			GapLengthPx:  pattern.GapLengthPx,
			DashOffsetPx: pattern.OffsetsPx[i],
			Cap:          CapButt,
			Join:         JoinRound,
		}
	}
	return styles
}
