// Package audit verifies the invariants of a completed reconciliation
// run: identifier integrity, coordinate fidelity, and match quality.
// The audit reads run output and regenerates its report from scratch;
// it never mutates pipeline data.
package audit

import (
	"fmt"
	"sort"

	"github.com/isuzumi2025-cell/MEKIKI-sub002/model"
	"github.com/isuzumi2025-cell/MEKIKI-sub002/stitch"
)

// Config holds configuration for the audit engine
type Config struct {
	// AvgErrorLimitPx is the maximum acceptable mean disagreement
	// between rendered and scaled page dimensions (default: 2.0)
	AvgErrorLimitPx float64

	// MinMatchBaseline is the minimum acceptable number of match
	// classifications; 0 disables the floor (default: 0)
	MinMatchBaseline int
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		AvgErrorLimitPx:  2.0,
		MinMatchBaseline: 0,
	}
}

// Input bundles the output of a completed run for auditing
type Input struct {
	Web        *stitch.Layout
	Document   *stitch.Layout
	Candidates []model.MatchCandidate

	// Rendered page dimensions, when previews are available
	WebRenders      []stitch.RenderedPage
	DocumentRenders []stitch.RenderedPage
}

// Engine runs the audit checks
type Engine struct {
	config Config
}

// New creates an audit engine with default configuration
func New() *Engine {
	return &Engine{
		config: DefaultConfig(),
	}
}

// NewWithConfig creates an audit engine with custom configuration
func NewWithConfig(config Config) *Engine {
	return &Engine{
		config: config,
	}
}

// Audit runs all checks and assembles the report
func (e *Engine) Audit(in Input) *Report {
	return &Report{
		Identifiers:  e.auditIdentifiers(in),
		Coordinates:  e.auditCoordinates(in),
		MatchQuality: e.auditMatchQuality(in.Candidates),
	}
}

// auditIdentifiers verifies prefix, zero-padding, uniqueness, and
// contiguity from 1 for both sources
func (e *Engine) auditIdentifiers(in Input) IdentifierResult {
	result := IdentifierResult{Passed: true}

	for _, layout := range []*stitch.Layout{in.Web, in.Document} {
		if layout == nil {
			continue
		}

		count, findings := e.checkSourceIdentifiers(layout, &result)
		if layout.Source == model.SourceDocument {
			result.DocumentCount = count
		} else {
			result.WebCount = count
		}
		result.Findings = append(result.Findings, findings...)
	}

	if hasSeverity(result.Findings, SeverityCritical) {
		result.Passed = false
	}
	return result
}

func (e *Engine) checkSourceIdentifiers(layout *stitch.Layout, result *IdentifierResult) (int, []Finding) {
	var findings []Finding

	seen := make(map[int]int)
	var counters []int
	for _, p := range layout.Paragraphs {
		kind, n, err := model.ParseID(p.ID)
		if err != nil {
			findings = append(findings, critical("%s: %v", layout.Source, err))
			continue
		}
		if kind != layout.Source {
			findings = append(findings, critical("%s: identifier %s carries the wrong prefix", layout.Source, p.ID))
			continue
		}
		seen[n]++
		counters = append(counters, n)
	}

	for _, n := range sortedKeys(seen) {
		if seen[n] > 1 {
			result.DuplicateCount += seen[n] - 1
			findings = append(findings, critical("%s: identifier %s assigned %d times",
				layout.Source, model.FormatID(layout.Source, n), seen[n]))
		}
	}

	// Contiguity from 1: every gap before the highest counter is a hole
	expect := 1
	for _, n := range sortedKeys(seen) {
		if n > expect {
			result.GapCount += n - expect
			findings = append(findings, critical("%s: identifier sequence jumps from %d to %d",
				layout.Source, expect-1, n))
		}
		if n >= expect {
			expect = n + 1
		}
	}

	return len(counters), findings
}

// auditCoordinates verifies bbox validity, stitched-Y monotonicity
// across page boundaries, and rendered-vs-scaled dimension error
func (e *Engine) auditCoordinates(in Input) CoordinateResult {
	result := CoordinateResult{Passed: true}

	type sourceRenders struct {
		layout  *stitch.Layout
		renders []stitch.RenderedPage
	}

	for _, sr := range []sourceRenders{
		{in.Web, in.WebRenders},
		{in.Document, in.DocumentRenders},
	} {
		if sr.layout == nil {
			continue
		}

		result.Findings = append(result.Findings, e.checkGeometry(sr.layout)...)
		e.checkRenderError(sr.layout, sr.renders, &result)
	}

	if result.PagesChecked > 0 {
		result.AvgErrorPx = result.totalError / float64(result.PagesChecked)
		if result.AvgErrorPx > e.config.AvgErrorLimitPx {
			result.Findings = append(result.Findings, critical(
				"mean render error %.2fpx exceeds the %.2fpx limit (max %.2fpx over %d pages)",
				result.AvgErrorPx, e.config.AvgErrorLimitPx, result.MaxErrorPx, result.PagesChecked))
		}
	}

	if hasSeverity(result.Findings, SeverityCritical) {
		result.Passed = false
	}
	return result
}

func (e *Engine) checkGeometry(layout *stitch.Layout) []Finding {
	var findings []Finding

	width, height := layout.CanvasSize()
	prevMax := -1.0
	prevPage := 0

	for _, geom := range layout.Pages {
		pageMin := -1.0
		pageMax := -1.0
		for _, p := range layout.Paragraphs {
			if p.Page != geom.Number {
				continue
			}
			if !p.BBox.IsValid() {
				findings = append(findings, critical("%s %s: degenerate bounding box %+v",
					layout.Source, p.ID, p.BBox))
				continue
			}
			if p.BBox.X1 < 0 || p.BBox.Y1 < 0 || p.BBox.X2 > width || p.BBox.Y2 > height {
				findings = append(findings, info("%s %s: bounding box extends outside the stitched canvas",
					layout.Source, p.ID))
			}
			if pageMin < 0 || p.BBox.Y1 < pageMin {
				pageMin = p.BBox.Y1
			}
			if p.BBox.Y2 > pageMax {
				pageMax = p.BBox.Y2
			}
		}

		if pageMin < 0 {
			continue // page has no paragraphs
		}
		if prevMax >= 0 && pageMin <= prevMax {
			findings = append(findings, critical(
				"%s: page %d paragraphs start at y=%.1f, inside page %d which ends at y=%.1f",
				layout.Source, geom.Number, pageMin, prevPage, prevMax))
		}
		if pageMax > prevMax {
			prevMax = pageMax
		}
		prevPage = geom.Number
	}

	return findings
}

func (e *Engine) checkRenderError(layout *stitch.Layout, renders []stitch.RenderedPage, result *CoordinateResult) {
	for _, r := range renders {
		for _, geom := range layout.Pages {
			if geom.Number != r.Number {
				continue
			}
			err := maxFloat64(absFloat64(r.Width-geom.Width), absFloat64(r.Height-geom.Height))
			result.totalError += err
			result.PagesChecked++
			if err > result.MaxErrorPx {
				result.MaxErrorPx = err
			}
		}
	}
}

// auditMatchQuality verifies the verdict table: virtual count, match
// floor, and the shape of the similarity distribution
func (e *Engine) auditMatchQuality(candidates []model.MatchCandidate) MatchQualityResult {
	result := MatchQualityResult{Passed: true}

	for _, c := range candidates {
		switch c.Classification {
		case model.ClassMatch:
			result.Matches++
		case model.ClassMismatch:
			result.Mismatches++
		default:
			result.Unmatched++
		}
		if c.Virtual {
			result.VirtualCount++
		}

		bucket := int(c.Similarity * 10)
		if bucket > 9 {
			bucket = 9
		}
		if bucket < 0 {
			bucket = 0
		}
		result.Histogram[bucket]++
	}

	if result.VirtualCount > 0 {
		result.Findings = append(result.Findings, major(
			"%d virtual matches detected; expected none", result.VirtualCount))
	}
	if e.config.MinMatchBaseline > 0 && result.Matches < e.config.MinMatchBaseline {
		result.Findings = append(result.Findings, major(
			"%d matches, below the %d baseline", result.Matches, e.config.MinMatchBaseline))
	}

	// A healthy distribution is bimodal: strong pairs near 1.0 and
	// unmatched leftovers near 0. Mass piling up in the middle means
	// the pairing degraded.
	total := len(candidates)
	if total >= 5 {
		low := result.Histogram[0] + result.Histogram[1]
		high := result.Histogram[8] + result.Histogram[9]
		mid := total - low - high
		if mid > low+high {
			result.Findings = append(result.Findings, major(
				"similarity distribution is flattened: %d mid-range scores against %d at the extremes",
				mid, low+high))
		}
	}

	if hasSeverity(result.Findings, SeverityMajor) || hasSeverity(result.Findings, SeverityCritical) {
		result.Passed = false
	}
	return result
}

// Helper functions

func critical(format string, args ...interface{}) Finding {
	return Finding{Severity: SeverityCritical, Message: fmt.Sprintf(format, args...)}
}

func major(format string, args ...interface{}) Finding {
	return Finding{Severity: SeverityMajor, Message: fmt.Sprintf(format, args...)}
}

func info(format string, args ...interface{}) Finding {
	return Finding{Severity: SeverityInfo, Message: fmt.Sprintf(format, args...)}
}

func hasSeverity(findings []Finding, s Severity) bool {
	for _, f := range findings {
		if f.Severity == s {
			return true
		}
	}
	return false
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func absFloat64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxFloat64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
