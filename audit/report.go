package audit

import (
	"fmt"
	"strings"
)

// Severity ranks an audit finding
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityMajor
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityMajor:
		return "MAJOR"
	default:
		return "INFO"
	}
}

// Finding is a single audit observation
type Finding struct {
	Severity Severity
	Message  string
}

// IdentifierResult reports identifier integrity per source
type IdentifierResult struct {
	Passed         bool
	Findings       []Finding
	WebCount       int
	DocumentCount  int
	DuplicateCount int
	GapCount       int
}

// CoordinateResult reports geometric fidelity
type CoordinateResult struct {
	Passed       bool
	Findings     []Finding
	AvgErrorPx   float64
	MaxErrorPx   float64
	PagesChecked int

	totalError float64
}

// MatchQualityResult reports the shape of the verdict table
type MatchQualityResult struct {
	Passed       bool
	Findings     []Finding
	Matches      int
	Mismatches   int
	Unmatched    int
	VirtualCount int

	// Histogram buckets similarity scores into tenths; scores of 1.0
	// land in the top bucket
	Histogram [10]int
}

// Report is the complete audit outcome for one run
type Report struct {
	Identifiers  IdentifierResult
	Coordinates  CoordinateResult
	MatchQuality MatchQualityResult
}

// Passed reports whether every check passed
func (r *Report) Passed() bool {
	if r == nil {
		return false
	}
	return r.Identifiers.Passed && r.Coordinates.Passed && r.MatchQuality.Passed
}

// Findings returns all findings across checks
func (r *Report) Findings() []Finding {
	if r == nil {
		return nil
	}
	var all []Finding
	all = append(all, r.Identifiers.Findings...)
	all = append(all, r.Coordinates.Findings...)
	all = append(all, r.MatchQuality.Findings...)
	return all
}

// CriticalCount returns the number of critical findings
func (r *Report) CriticalCount() int {
	n := 0
	for _, f := range r.Findings() {
		if f.Severity == SeverityCritical {
			n++
		}
	}
	return n
}

// MajorCount returns the number of major findings
func (r *Report) MajorCount() int {
	n := 0
	for _, f := range r.Findings() {
		if f.Severity == SeverityMajor {
			n++
		}
	}
	return n
}

// ExitCode maps the report onto the process exit contract: 0 unless at
// least one critical finding exists.
func (r *Report) ExitCode() int {
	if r == nil || r.CriticalCount() > 0 {
		return 1
	}
	return 0
}

// Promotable reports whether the run may gate a promotion: critical
// findings abort and major findings block.
func (r *Report) Promotable() bool {
	return r != nil && r.CriticalCount() == 0 && r.MajorCount() == 0
}

// String renders the report for terminal output
func (r *Report) String() string {
	if r == nil {
		return ""
	}

	var sb strings.Builder

	writeCheck(&sb, "identifier audit", r.Identifiers.Passed, r.Identifiers.Findings)
	fmt.Fprintf(&sb, "  web %d, document %d, duplicates %d, gaps %d\n",
		r.Identifiers.WebCount, r.Identifiers.DocumentCount,
		r.Identifiers.DuplicateCount, r.Identifiers.GapCount)

	writeCheck(&sb, "coordinate audit", r.Coordinates.Passed, r.Coordinates.Findings)
	if r.Coordinates.PagesChecked > 0 {
		fmt.Fprintf(&sb, "  avg error %.2fpx, max %.2fpx over %d pages\n",
			r.Coordinates.AvgErrorPx, r.Coordinates.MaxErrorPx, r.Coordinates.PagesChecked)
	} else {
		sb.WriteString("  no rendered pages supplied\n")
	}

	writeCheck(&sb, "match quality audit", r.MatchQuality.Passed, r.MatchQuality.Findings)
	fmt.Fprintf(&sb, "  matches %d, mismatches %d, unmatched %d, virtual %d\n",
		r.MatchQuality.Matches, r.MatchQuality.Mismatches,
		r.MatchQuality.Unmatched, r.MatchQuality.VirtualCount)
	fmt.Fprintf(&sb, "  histogram %v\n", r.MatchQuality.Histogram)

	if r.Passed() {
		sb.WriteString("result: PASS\n")
	} else {
		fmt.Fprintf(&sb, "result: FAIL (%d critical, %d major)\n", r.CriticalCount(), r.MajorCount())
	}

	return sb.String()
}

func writeCheck(sb *strings.Builder, name string, passed bool, findings []Finding) {
	status := "PASS"
	if !passed {
		status = "FAIL"
	}
	fmt.Fprintf(sb, "%s: %s\n", name, status)
	for _, f := range findings {
		fmt.Fprintf(sb, "  %s: %s\n", f.Severity, f.Message)
	}
}
