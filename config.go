package main

import "fmt"

// RenderConfig holds the tunables for the overlap-aware route renderer. It is
// built once at startup and never mutated; NewOverlapRenderer rejects invalid
// values before any rendering happens.
type RenderConfig struct {
	StepPx              float64 // resample step along each route, in pixels
	SimplifyTolerancePx float64 // Ramer-Douglas-Peucker tolerance, 0 disables
	TolerancePx         float64 // midpoint distance for two segments to coincide
	HeadingTolRad       float64 // heading difference for two segments to coincide
	IndexCellPx         float64 // spatial index cell size

	DashBasePx float64 // default dash length for shared spans
	MinDashPx  float64 // floor for degenerate dash lengths

	// Stroke weight ramp: weight grows/shrinks with zoom around WeightBaseZoom,
	// clamped to [WeightMinPx, WeightMaxPx].
	WeightBasePx       float64
	WeightPerZoom      float64
	WeightBaseZoom     float64
	WeightMaxZoomDelta float64
	WeightMinPx        float64
	WeightMaxPx        float64
}

func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		StepPx:              12,
		SimplifyTolerancePx: 1.5,
		TolerancePx:         6,
		HeadingTolRad:       0.35,
		IndexCellPx:         64,
		DashBasePx:          24,
		MinDashPx:           6,
		WeightBasePx:        4,
		WeightPerZoom:       0.5,
		WeightBaseZoom:      13,
		WeightMaxZoomDelta:  4,
		WeightMinPx:         2,
		WeightMaxPx:         8,
	}
}

// Validate reports configuration-time invariant violations. The spatial index
// cell size is deliberately not checked here: a bad cell size surfaces when the
// index is built and degrades that pass instead of failing startup.
func (c RenderConfig) Validate() error {
	if c.StepPx <= 0 {
		return fmt.Errorf("render config: StepPx must be > 0, got %v", c.StepPx)
	}
	if c.SimplifyTolerancePx < 0 {
		return fmt.Errorf("render config: SimplifyTolerancePx must be >= 0, got %v", c.SimplifyTolerancePx)
	}
	if c.TolerancePx <= 0 {
		return fmt.Errorf("render config: TolerancePx must be > 0, got %v", c.TolerancePx)
	}
	if c.HeadingTolRad <= 0 {
		return fmt.Errorf("render config: HeadingTolRad must be > 0, got %v", c.HeadingTolRad)
	}
	if c.DashBasePx <= 0 {
		return fmt.Errorf("render config: DashBasePx must be > 0, got %v", c.DashBasePx)
	}
	if c.MinDashPx <= 0 {
		return fmt.Errorf("render config: MinDashPx must be > 0, got %v", c.MinDashPx)
	}
	if c.WeightMinPx <= 0 || c.WeightMaxPx < c.WeightMinPx {
		return fmt.Errorf("render config: stroke weight bounds invalid (%v, %v)", c.WeightMinPx, c.WeightMaxPx)
	}
	return nil
}

// strokeWeight is the shared stroke width for every stroke of one render pass.
func strokeWeight(cfg RenderConfig, zoom float64) float32 {
	delta := clampFloat(zoom-cfg.WeightBaseZoom, -cfg.WeightMaxZoomDelta, cfg.WeightMaxZoomDelta)
	w := cfg.WeightBasePx + cfg.WeightPerZoom*delta
	return float32(clampFloat(w, cfg.WeightMinPx, cfg.WeightMaxPx))
}
