package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/isuzumi2025-cell/MEKIKI-sub002/match"
)

// profileDoc is the YAML shape of a profile file. Sections are
// pre-filled from the base profile before unmarshaling, so a file only
// states the values it overrides.
type profileDoc struct {
	Name    string         `yaml:"name"`
	Base    string         `yaml:"base"`
	Cluster clusterSection `yaml:"cluster"`
	Stitch  stitchSection  `yaml:"stitch"`
	Match   matchSection   `yaml:"match"`
	Audit   auditSection   `yaml:"audit"`
}

type clusterSection struct {
	MinHorizontalOverlap float64 `yaml:"min_horizontal_overlap"`
	LeftEdgeTolerancePx  float64 `yaml:"left_edge_tolerance_px"`
	FontGapFactor        float64 `yaml:"font_gap_factor"`
	VerticalGapCapPx     float64 `yaml:"vertical_gap_cap_px"`
	MaxFontSizeRatio     float64 `yaml:"max_font_size_ratio"`
	HorizontalGapPx      float64 `yaml:"horizontal_gap_px"`
	AreaPercentile       float64 `yaml:"area_percentile"`
	MinTextLength        int     `yaml:"min_text_length"`
	AbsorptionRadiusPx   float64 `yaml:"absorption_radius_px"`
}

type stitchSection struct {
	TargetDPI        float64 `yaml:"target_dpi"`
	ScaleTolerancePx float64 `yaml:"scale_tolerance_px"`
}

type matchSection struct {
	MinScore              float64 `yaml:"min_score"`
	MatchThreshold        float64 `yaml:"match_threshold"`
	Metric                string  `yaml:"metric"`
	NormalizeText         bool    `yaml:"normalize_text"`
	FoldCase              bool    `yaml:"fold_case"`
	VirtualInversionRatio float64 `yaml:"virtual_inversion_ratio"`
}

type auditSection struct {
	AvgErrorLimitPx  float64 `yaml:"avg_error_limit_px"`
	MinMatchBaseline int     `yaml:"min_match_baseline"`
}

// Load reads a profile file, overlaying its values on the base profile
// it names (relaxed when unspecified), and validates the result.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("profile: %w", err)
	}
	return Parse(data)
}

// Parse overlays YAML profile data on its base profile
func Parse(data []byte) (Profile, error) {
	var head struct {
		Base string `yaml:"base"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return Profile{}, fmt.Errorf("profile: %w", err)
	}

	base, err := ByName(head.Base)
	if err != nil {
		return Profile{}, fmt.Errorf("profile base: %w", err)
	}

	doc := profileDoc{
		Name: base.Name,
		Cluster: clusterSection{
			MinHorizontalOverlap: base.Cluster.MinHorizontalOverlap,
			LeftEdgeTolerancePx:  base.Cluster.LeftEdgeTolerancePx,
			FontGapFactor:        base.Cluster.FontGapFactor,
			VerticalGapCapPx:     base.Cluster.VerticalGapCapPx,
			MaxFontSizeRatio:     base.Cluster.MaxFontSizeRatio,
			HorizontalGapPx:      base.Cluster.HorizontalGapPx,
			AreaPercentile:       base.Cluster.AreaPercentile,
			MinTextLength:        base.Cluster.MinTextLength,
			AbsorptionRadiusPx:   base.Cluster.AbsorptionRadiusPx,
		},
		Stitch: stitchSection{
			TargetDPI:        base.Stitch.TargetDPI,
			ScaleTolerancePx: base.Stitch.ScaleTolerancePx,
		},
		Match: matchSection{
			MinScore:              base.Match.MinScore,
			MatchThreshold:        base.Match.MatchThreshold,
			Metric:                base.Match.Metric.String(),
			NormalizeText:         base.Match.NormalizeText,
			FoldCase:              base.Match.FoldCase,
			VirtualInversionRatio: base.Match.VirtualInversionRatio,
		},
		Audit: auditSection{
			AvgErrorLimitPx:  base.Audit.AvgErrorLimitPx,
			MinMatchBaseline: base.Audit.MinMatchBaseline,
		},
	}

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Profile{}, fmt.Errorf("profile: %w", err)
	}

	metric, err := parseMetric(doc.Match.Metric)
	if err != nil {
		return Profile{}, fmt.Errorf("profile %s: %w", doc.Name, err)
	}

	p := Profile{Name: doc.Name}
	p.Cluster.MinHorizontalOverlap = doc.Cluster.MinHorizontalOverlap
	p.Cluster.LeftEdgeTolerancePx = doc.Cluster.LeftEdgeTolerancePx
	p.Cluster.FontGapFactor = doc.Cluster.FontGapFactor
	p.Cluster.VerticalGapCapPx = doc.Cluster.VerticalGapCapPx
	p.Cluster.MaxFontSizeRatio = doc.Cluster.MaxFontSizeRatio
	p.Cluster.HorizontalGapPx = doc.Cluster.HorizontalGapPx
	p.Cluster.AreaPercentile = doc.Cluster.AreaPercentile
	p.Cluster.MinTextLength = doc.Cluster.MinTextLength
	p.Cluster.AbsorptionRadiusPx = doc.Cluster.AbsorptionRadiusPx
	p.Stitch.TargetDPI = doc.Stitch.TargetDPI
	p.Stitch.ScaleTolerancePx = doc.Stitch.ScaleTolerancePx
	p.Match.MinScore = doc.Match.MinScore
	p.Match.MatchThreshold = doc.Match.MatchThreshold
	p.Match.Metric = metric
	p.Match.NormalizeText = doc.Match.NormalizeText
	p.Match.FoldCase = doc.Match.FoldCase
	p.Match.VirtualInversionRatio = doc.Match.VirtualInversionRatio
	p.Audit.AvgErrorLimitPx = doc.Audit.AvgErrorLimitPx
	p.Audit.MinMatchBaseline = doc.Audit.MinMatchBaseline

	if err := p.Validate(); err != nil {
		return Profile{}, err
	}

	return p, nil
}

func parseMetric(name string) (match.Metric, error) {
	switch name {
	case "edit-distance", "":
		return match.MetricEditDistance, nil
	case "token-overlap":
		return match.MetricTokenOverlap, nil
	default:
		return 0, fmt.Errorf("unknown metric %q", name)
	}
}
