package mekiki

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/isuzumi2025-cell/MEKIKI-sub002/audit"
	"github.com/isuzumi2025-cell/MEKIKI-sub002/cluster"
	"github.com/isuzumi2025-cell/MEKIKI-sub002/match"
	"github.com/isuzumi2025-cell/MEKIKI-sub002/model"
	"github.com/isuzumi2025-cell/MEKIKI-sub002/profile"
	"github.com/isuzumi2025-cell/MEKIKI-sub002/stitch"
)

// Run holds one reconciliation: a web page set, a document page set, and
// the calibration that governs every stage. Each configuration method
// returns a new Run instance, making it safe for concurrent use and
// allowing method chaining.
type Run struct {
	// Inputs
	web      model.PageSet
	document model.PageSet

	// Rendered page evidence, optional per source
	webRenders      []stitch.RenderedPage
	documentRenders []stitch.RenderedPage

	// Configuration
	prof profile.Profile
	log  zerolog.Logger

	// Accumulated error (fail-fast)
	err error
}

// Result carries everything one run produced: both normalized layouts,
// the pairing decisions, and the audit report.
type Result struct {
	Web        *stitch.Layout
	Document   *stitch.Layout
	Candidates []model.MatchCandidate
	Report     *audit.Report
}

// Passed reports whether the run's audit found no critical problems.
func (r *Result) Passed() bool {
	return r != nil && r.Report.Passed()
}

// clone creates a shallow copy of the Run with its own render slices.
// This ensures immutability - each chain method returns a new instance.
func (r *Run) clone() *Run {
	newRun := &Run{
		web:             r.web,
		document:        r.document,
		webRenders:      append([]stitch.RenderedPage(nil), r.webRenders...),
		documentRenders: append([]stitch.RenderedPage(nil), r.documentRenders...),
		prof:            r.prof,
		log:             r.log,
		err:             r.err,
	}
	return newRun
}

// ============================================================================
// Configuration Methods (return new Run instance)
// ============================================================================

// Profile selects the calibration for every pipeline stage. The profile
// is validated immediately; a bad profile surfaces from Reconcile.
//
// Example:
//
//	result, _, err := mekiki.NewRun(web, doc).Profile(profile.Strict()).Reconcile(ctx)
func (r *Run) Profile(p profile.Profile) *Run {
	newRun := r.clone()
	if err := p.Validate(); err != nil {
		if newRun.err == nil {
			newRun.err = err
		}
		return newRun
	}
	newRun.prof = p
	return newRun
}

// ProfileNamed selects a built-in calibration by name. An empty name
// keeps the relaxed default.
//
// Example:
//
//	result, _, err := mekiki.NewRun(web, doc).ProfileNamed("strict").Reconcile(ctx)
func (r *Run) ProfileNamed(name string) *Run {
	newRun := r.clone()
	p, err := profile.ByName(name)
	if err != nil {
		if newRun.err == nil {
			newRun.err = err
		}
		return newRun
	}
	newRun.prof = p
	return newRun
}

// Logger attaches a logger for stage tracing. The default discards
// everything.
func (r *Run) Logger(log zerolog.Logger) *Run {
	newRun := r.clone()
	newRun.log = log
	return newRun
}

// WebRenders supplies measured preview dimensions for the web pages.
// When present, the scaled geometry is verified against them before any
// identifier is assigned. Multiple calls are cumulative.
func (r *Run) WebRenders(renders ...stitch.RenderedPage) *Run {
	newRun := r.clone()
	newRun.webRenders = append(newRun.webRenders, renders...)
	return newRun
}

// DocumentRenders supplies measured preview dimensions for the document
// pages. Multiple calls are cumulative.
func (r *Run) DocumentRenders(renders ...stitch.RenderedPage) *Run {
	newRun := r.clone()
	newRun.documentRenders = append(newRun.documentRenders, renders...)
	return newRun
}

// MatchBaseline overrides the profile's minimum acceptable match count.
// Runs that pair fewer paragraphs than the baseline fail the audit.
//
// Example:
//
//	result, _, err := mekiki.NewRun(web, doc).MatchBaseline(12).Reconcile(ctx)
func (r *Run) MatchBaseline(n int) *Run {
	newRun := r.clone()
	newRun.prof.Audit.MinMatchBaseline = n
	return newRun
}

// ============================================================================
// Terminal Operation
// ============================================================================

// Reconcile executes the full pipeline: cluster and normalize each
// source, pair paragraphs across the two, and audit the outcome.
//
// Returns the result, any warnings encountered during processing, and an
// error if reconciliation failed. Warnings indicate non-fatal issues
// (e.g., fragments dropped during clustering) where the run succeeded
// but coverage may be incomplete. An audit failure is not an error; it
// is reported through Result.Report.
//
// Example:
//
//	result, warnings, err := mekiki.NewRun(web, document).Reconcile(ctx)
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", mekiki.FormatWarnings(warnings))
//	}
//	if !result.Passed() {
//	    // inspect result.Report.Findings()
//	}
func (r *Run) Reconcile(ctx context.Context) (*Result, []Warning, error) {
	if r.err != nil {
		return nil, nil, r.err
	}
	if r.web.Source != model.SourceWeb {
		return nil, nil, fmt.Errorf("web input tagged %s", r.web.Source)
	}
	if r.document.Source != model.SourceDocument {
		return nil, nil, fmt.Errorf("document input tagged %s", r.document.Source)
	}

	r.log.Info().
		Str("profile", r.prof.Name).
		Int("web_fragments", r.web.FragmentCount()).
		Int("document_fragments", r.document.FragmentCount()).
		Msg("reconciliation started")

	var (
		webLayout *stitch.Layout
		docLayout *stitch.Layout
		webWarns  []Warning
		docWarns  []Warning
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		webLayout, webWarns, err = r.processSource(gctx, r.web, r.webRenders)
		return err
	})
	g.Go(func() error {
		var err error
		docLayout, docWarns, err = r.processSource(gctx, r.document, r.documentRenders)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	warnings := append(webWarns, docWarns...)

	matcher := match.NewWithConfig(r.prof.Match)
	candidates := matcher.Match(webLayout.Paragraphs, docLayout.Paragraphs)

	engine := audit.NewWithConfig(r.prof.Audit)
	report := engine.Audit(audit.Input{
		Web:             webLayout,
		Document:        docLayout,
		Candidates:      candidates,
		WebRenders:      r.webRenders,
		DocumentRenders: r.documentRenders,
	})

	r.log.Info().
		Int("web_paragraphs", len(webLayout.Paragraphs)).
		Int("document_paragraphs", len(docLayout.Paragraphs)).
		Int("candidates", len(candidates)).
		Int("critical_findings", report.CriticalCount()).
		Bool("passed", report.Passed()).
		Msg("reconciliation finished")

	return &Result{
		Web:        webLayout,
		Document:   docLayout,
		Candidates: candidates,
		Report:     report,
	}, warnings, nil
}

// processSource runs the single-source half of the pipeline: validate,
// cluster page by page, then normalize into stitched space. Dropped
// fragments become warnings, not errors.
func (r *Run) processSource(ctx context.Context, set model.PageSet, renders []stitch.RenderedPage) (*stitch.Layout, []Warning, error) {
	if err := set.Validate(); err != nil {
		return nil, nil, err
	}

	clusterer := cluster.NewWithConfig(r.prof.Cluster)
	groups := make([][]cluster.Group, len(set.Pages))
	var warnings []Warning

	for i, page := range set.Pages {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		pageGroups, dropped := clusterer.Cluster(page.Fragments)
		groups[i] = pageGroups
		for _, frag := range dropped {
			warnings = append(warnings, Warning{
				Stage:   "cluster",
				Source:  set.Source,
				Page:    page.Number,
				Message: fmt.Sprintf("fragment %q dropped: degenerate bounding box", snippet(frag.Text)),
			})
		}

		r.log.Debug().
			Str("source", set.Source.String()).
			Int("page", page.Number).
			Int("fragments", len(page.Fragments)).
			Int("groups", len(pageGroups)).
			Int("dropped", len(dropped)).
			Msg("page clustered")
	}

	normalizer := stitch.NewWithConfig(r.prof.Stitch)
	layout, err := normalizer.Normalize(set, groups, renders)
	if err != nil {
		return nil, nil, fmt.Errorf("normalizing %s: %w", set.Source, err)
	}

	return layout, warnings, nil
}

// snippet shortens fragment text for warning messages.
func snippet(s string) string {
	const max = 40
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}
