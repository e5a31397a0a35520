// Package profile defines named calibrations of the reconciliation
// pipeline. A run activates exactly one profile; strict and relaxed
// threshold sets are never mixed within a run.
package profile

import (
	"fmt"

	"github.com/isuzumi2025-cell/MEKIKI-sub002/audit"
	"github.com/isuzumi2025-cell/MEKIKI-sub002/cluster"
	"github.com/isuzumi2025-cell/MEKIKI-sub002/match"
	"github.com/isuzumi2025-cell/MEKIKI-sub002/stitch"
)

// Profile is one named calibration covering every pipeline stage
type Profile struct {
	Name    string
	Cluster cluster.Config
	Stitch  stitch.Config
	Match   match.Config
	Audit   audit.Config
}

// Relaxed returns the calibration for sparse layouts such as rendered
// web pages
func Relaxed() Profile {
	return Profile{
		Name:    "relaxed",
		Cluster: cluster.DefaultConfig(),
		Stitch:  stitch.DefaultConfig(),
		Match:   match.DefaultConfig(),
		Audit:   audit.DefaultConfig(),
	}
}

// Strict returns the calibration for dense print-oriented layouts
func Strict() Profile {
	p := Relaxed()
	p.Name = "strict"
	p.Cluster = cluster.StrictConfig()
	return p
}

// ByName returns a built-in profile. An empty name selects relaxed.
func ByName(name string) (Profile, error) {
	switch name {
	case "strict":
		return Strict(), nil
	case "relaxed", "":
		return Relaxed(), nil
	default:
		return Profile{}, fmt.Errorf("unknown profile %q", name)
	}
}

// Validate rejects calibrations that cannot drive a run
func (p Profile) Validate() error {
	c := p.Cluster
	if c.MinHorizontalOverlap <= 0 || c.MinHorizontalOverlap > 1 {
		return fmt.Errorf("profile %s: min_horizontal_overlap %g outside (0, 1]", p.Name, c.MinHorizontalOverlap)
	}
	if c.LeftEdgeTolerancePx < 0 || c.VerticalGapCapPx <= 0 || c.HorizontalGapPx <= 0 || c.AbsorptionRadiusPx < 0 {
		return fmt.Errorf("profile %s: clustering distances must be positive", p.Name)
	}
	if c.MaxFontSizeRatio < 1 {
		return fmt.Errorf("profile %s: max_font_size_ratio %g below 1", p.Name, c.MaxFontSizeRatio)
	}
	if c.FontGapFactor <= 0 {
		return fmt.Errorf("profile %s: font_gap_factor %g must be positive", p.Name, c.FontGapFactor)
	}
	if c.AreaPercentile < 0 || c.AreaPercentile > 0.5 {
		return fmt.Errorf("profile %s: area_percentile %g outside [0, 0.5]", p.Name, c.AreaPercentile)
	}
	if c.MinTextLength < 0 {
		return fmt.Errorf("profile %s: min_text_length %d negative", p.Name, c.MinTextLength)
	}

	if p.Stitch.TargetDPI <= 0 {
		return fmt.Errorf("profile %s: target_dpi %g must be positive", p.Name, p.Stitch.TargetDPI)
	}
	if p.Stitch.ScaleTolerancePx <= 0 {
		return fmt.Errorf("profile %s: scale_tolerance_px %g must be positive", p.Name, p.Stitch.ScaleTolerancePx)
	}

	m := p.Match
	if m.MinScore <= 0 || m.MinScore > 1 {
		return fmt.Errorf("profile %s: min_score %g outside (0, 1]", p.Name, m.MinScore)
	}
	if m.MatchThreshold < m.MinScore || m.MatchThreshold > 1 {
		return fmt.Errorf("profile %s: match_threshold %g outside [min_score, 1]", p.Name, m.MatchThreshold)
	}
	if m.VirtualInversionRatio <= 0 || m.VirtualInversionRatio > 1 {
		return fmt.Errorf("profile %s: virtual_inversion_ratio %g outside (0, 1]", p.Name, m.VirtualInversionRatio)
	}

	if p.Audit.AvgErrorLimitPx <= 0 {
		return fmt.Errorf("profile %s: avg_error_limit_px %g must be positive", p.Name, p.Audit.AvgErrorLimitPx)
	}
	if p.Audit.MinMatchBaseline < 0 {
		return fmt.Errorf("profile %s: min_match_baseline %d negative", p.Name, p.Audit.MinMatchBaseline)
	}

	return nil
}
