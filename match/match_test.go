package match

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/isuzumi2025-cell/MEKIKI-sub002/model"
)

// makeWeb creates web-side paragraphs in reading order
func makeWeb(texts ...string) []model.Paragraph {
	ps := make([]model.Paragraph, len(texts))
	for i, text := range texts {
		ps[i] = model.Paragraph{
			ID:     model.FormatID(model.SourceWeb, i+1),
			Text:   text,
			Source: model.SourceWeb,
		}
	}
	return ps
}

// makeDoc creates document-side paragraphs in reading order
func makeDoc(texts ...string) []model.Paragraph {
	ps := make([]model.Paragraph, len(texts))
	for i, text := range texts {
		ps[i] = model.Paragraph{
			ID:     model.FormatID(model.SourceDocument, i+1),
			Text:   text,
			Source: model.SourceDocument,
		}
	}
	return ps
}

func TestMatcher_IdenticalParagraphs(t *testing.T) {
	matcher := New()
	candidates := matcher.Match(makeWeb("Hello World"), makeDoc("Hello World"))

	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(candidates))
	}

	c := candidates[0]
	if c.WebID != "W-001" || c.DocumentID != "P-001" {
		t.Errorf("Expected W-001/P-001, got %s/%s", c.WebID, c.DocumentID)
	}
	if c.Similarity != 1.0 {
		t.Errorf("Expected similarity 1.0, got %g", c.Similarity)
	}
	if c.Classification != model.ClassMatch {
		t.Errorf("Expected match, got %v", c.Classification)
	}
	if c.Virtual {
		t.Error("Expected non-virtual match")
	}
}

func TestMatcher_CurrencyNotationMismatch(t *testing.T) {
	matcher := New()
	candidates := matcher.Match(
		makeWeb("Price: 100円"),
		makeDoc("Price: ¥100"),
	)

	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(candidates))
	}

	c := candidates[0]
	if c.Classification != model.ClassMismatch {
		t.Errorf("Expected explicit mismatch, got %v (similarity %g)", c.Classification, c.Similarity)
	}
	if c.Similarity < 0.5 || c.Similarity >= 0.85 {
		t.Errorf("Expected similarity in the mismatch band, got %g", c.Similarity)
	}
}

func TestMatcher_UnrelatedTextsUnmatched(t *testing.T) {
	matcher := New()
	candidates := matcher.Match(
		makeWeb("completely different content"),
		makeDoc("zzz qqq xxx"),
	)

	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(candidates))
	}

	if candidates[0].WebID != "W-001" || candidates[0].DocumentID != "" {
		t.Errorf("Expected web-only candidate, got %+v", candidates[0])
	}
	if candidates[0].Classification != model.ClassUnmatched {
		t.Errorf("Expected unmatched, got %v", candidates[0].Classification)
	}
	if candidates[1].DocumentID != "P-001" || candidates[1].WebID != "" {
		t.Errorf("Expected document-only candidate, got %+v", candidates[1])
	}
}

func TestMatcher_GreedyOneToOne(t *testing.T) {
	matcher := New()
	// Both web paragraphs resemble the single document paragraph; the
	// exact copy must win and the other side stays unmatched
	candidates := matcher.Match(
		makeWeb("alpha beta gamma delta", "alpha beta gamma"),
		makeDoc("alpha beta gamma"),
	)

	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(candidates))
	}

	var assigned, unassigned *model.MatchCandidate
	for i := range candidates {
		if candidates[i].Assigned() {
			assigned = &candidates[i]
		} else {
			unassigned = &candidates[i]
		}
	}

	if assigned == nil || assigned.WebID != "W-002" {
		t.Fatalf("Expected W-002 to take the pairing, got %+v", assigned)
	}
	if assigned.Similarity != 1.0 {
		t.Errorf("Expected similarity 1.0, got %g", assigned.Similarity)
	}
	if unassigned == nil || unassigned.WebID != "W-001" {
		t.Errorf("Expected W-001 unmatched, got %+v", unassigned)
	}
}

func TestMatcher_TieBreaksByCombinedIndex(t *testing.T) {
	matcher := New()
	// Two identical web paragraphs compete for one document paragraph
	// with the same score; the lower combined index wins
	candidates := matcher.Match(
		makeWeb("repeated text", "repeated text"),
		makeDoc("repeated text"),
	)

	if !candidates[0].Assigned() || candidates[0].WebID != "W-001" {
		t.Errorf("Expected W-001 assigned, got %+v", candidates[0])
	}
	if candidates[1].Assigned() {
		t.Errorf("Expected W-002 unmatched, got %+v", candidates[1])
	}
}

func TestMatcher_ThresholdBoundary(t *testing.T) {
	matcher := New()
	// 20 runes with 3 substitutions: similarity exactly 0.85
	a := strings.Repeat("a", 20)
	b := "bbb" + strings.Repeat("a", 17)

	candidates := matcher.Match(makeWeb(a), makeDoc(b))

	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(candidates))
	}
	if math.Abs(candidates[0].Similarity-0.85) > 0.0001 {
		t.Fatalf("Expected similarity 0.85, got %g", candidates[0].Similarity)
	}
	if candidates[0].Classification != model.ClassMatch {
		t.Errorf("Expected score at threshold to classify as match, got %v", candidates[0].Classification)
	}
}

func TestMatcher_VirtualFlag(t *testing.T) {
	matcher := New()
	// The web page shows a closing line first; the document has the
	// same line at the very end. Lexically perfect, spatially inverted
	// against every other pair.
	web := makeWeb(
		"thanks for reading our closing line",
		"alpha paragraph body text",
		"beta paragraph body text",
		"gamma paragraph body text",
		"delta paragraph body text",
	)
	doc := makeDoc(
		"alpha paragraph body text",
		"beta paragraph body text",
		"gamma paragraph body text",
		"delta paragraph body text",
		"thanks for reading our closing line",
	)

	candidates := matcher.Match(web, doc)

	if len(candidates) != 5 {
		t.Fatalf("Expected 5 candidates, got %d", len(candidates))
	}

	virtualCount := 0
	for _, c := range candidates {
		if c.Virtual {
			virtualCount++
			if c.WebID != "W-001" {
				t.Errorf("Expected only W-001 flagged virtual, got %s", c.WebID)
			}
		}
	}
	if virtualCount != 1 {
		t.Errorf("Expected 1 virtual pair, got %d", virtualCount)
	}
}

func TestMatcher_WellOrderedRunHasNoVirtuals(t *testing.T) {
	matcher := New()
	texts := []string{
		"first paragraph body",
		"second paragraph body",
		"third paragraph body",
		"fourth paragraph body",
	}

	candidates := matcher.Match(makeWeb(texts...), makeDoc(texts...))

	for _, c := range candidates {
		if c.Virtual {
			t.Errorf("Expected no virtual pairs, got %+v", c)
		}
	}
}

func TestMatcher_Deterministic(t *testing.T) {
	matcher := New()
	web := makeWeb("alpha beta", "beta gamma", "gamma delta")
	doc := makeDoc("gamma delta", "alpha beta", "beta gamma")

	first := matcher.Match(web, doc)
	second := matcher.Match(web, doc)

	if !reflect.DeepEqual(first, second) {
		t.Error("Expected identical candidates from identical inputs")
	}
}

func TestMatcher_EmptyInputs(t *testing.T) {
	matcher := New()

	if got := matcher.Match(nil, nil); len(got) != 0 {
		t.Errorf("Expected 0 candidates, got %d", len(got))
	}

	candidates := matcher.Match(makeWeb("only side"), nil)
	if len(candidates) != 1 || candidates[0].Classification != model.ClassUnmatched {
		t.Errorf("Expected single unmatched candidate, got %+v", candidates)
	}
}

func TestMatcher_TokenOverlapMetric(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Metric = MetricTokenOverlap
	matcher := NewWithConfig(cfg)

	got := matcher.Similarity("the cat sat", "the cat")
	if math.Abs(got-0.8) > 0.0001 {
		t.Errorf("Similarity() = %g, want 0.8", got)
	}
}

func TestMatcher_NormalizationToggle(t *testing.T) {
	on := New()
	if got := on.Similarity("Hello 　 World", "Hello World"); got != 1.0 {
		t.Errorf("Expected normalized texts identical, got %g", got)
	}

	cfg := DefaultConfig()
	cfg.NormalizeText = false
	off := NewWithConfig(cfg)
	if got := off.Similarity("Hello 　 World", "Hello World"); got == 1.0 {
		t.Error("Expected raw comparison to differ, got 1.0")
	}
}

func TestMatcher_CaseFolding(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FoldCase = true
	matcher := NewWithConfig(cfg)

	if got := matcher.Similarity("HELLO WORLD", "hello world"); got != 1.0 {
		t.Errorf("Expected case-folded texts identical, got %g", got)
	}
}
