// Package match pairs paragraphs across the two sources by text
// similarity, with a spatial plausibility check on the result.
package match

import (
	"sort"
	"strings"

	"github.com/isuzumi2025-cell/MEKIKI-sub002/internal/textnorm"
	"github.com/isuzumi2025-cell/MEKIKI-sub002/model"
)

// Metric selects the similarity measure
type Metric int

const (
	// MetricEditDistance scores by normalized Levenshtein distance
	MetricEditDistance Metric = iota

	// MetricTokenOverlap scores by the Dice coefficient over tokens
	MetricTokenOverlap
)

func (m Metric) String() string {
	switch m {
	case MetricTokenOverlap:
		return "token-overlap"
	default:
		return "edit-distance"
	}
}

// Config holds configuration for cross-source matching
type Config struct {
	// MinScore is the floor below which no pairing is attempted
	// (default: 0.5)
	MinScore float64

	// MatchThreshold is the score at or above which an assigned pair
	// classifies as a match; assigned pairs below it are mismatches
	// (default: 0.85)
	MatchThreshold float64

	// Metric selects the similarity measure (default: edit distance)
	Metric Metric

	// NormalizeText canonicalizes text before comparison (default: true)
	NormalizeText bool

	// FoldCase lowercases before comparison (default: false)
	FoldCase bool

	// VirtualInversionRatio is the fraction of other assigned pairs a
	// pair must be order-inverted against to be flagged virtual
	// (default: 0.5)
	VirtualInversionRatio float64
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		MinScore:              0.5,
		MatchThreshold:        0.85,
		Metric:                MetricEditDistance,
		NormalizeText:         true,
		FoldCase:              false,
		VirtualInversionRatio: 0.5,
	}
}

// Matcher pairs web paragraphs against document paragraphs
type Matcher struct {
	config Config
}

// New creates a matcher with default configuration
func New() *Matcher {
	return &Matcher{
		config: DefaultConfig(),
	}
}

// NewWithConfig creates a matcher with custom configuration
func NewWithConfig(config Config) *Matcher {
	return &Matcher{
		config: config,
	}
}

// Similarity computes the configured text similarity in [0, 1]
func (m *Matcher) Similarity(a, b string) float64 {
	if m.config.Metric == MetricTokenOverlap {
		return diceSimilarity(m.tokens(a), m.tokens(b))
	}
	return levenshteinSimilarity(m.canon(a), m.canon(b))
}

func (m *Matcher) canon(s string) string {
	if !m.config.NormalizeText {
		return s
	}
	if m.config.FoldCase {
		return textnorm.Fold(s)
	}
	return textnorm.Normalize(s)
}

func (m *Matcher) tokens(s string) []string {
	if !m.config.NormalizeText {
		return strings.Fields(s)
	}
	if m.config.FoldCase {
		return strings.Fields(textnorm.Fold(s))
	}
	return textnorm.Tokens(s)
}

// Match produces the verdict table for two normalized sources. Both
// inputs must be in reading order. Pairing is greedy one-to-one,
// highest score first; every paragraph appears in exactly one candidate.
func (m *Matcher) Match(web, doc []model.Paragraph) []model.MatchCandidate {
	type pairing struct {
		wi, di int
		score  float64
	}

	var pool []pairing
	for wi := range web {
		for di := range doc {
			score := m.Similarity(web[wi].Text, doc[di].Text)
			if score >= m.config.MinScore {
				pool = append(pool, pairing{wi: wi, di: di, score: score})
			}
		}
	}

	// Step 1: Highest score first; ties broken by lower combined index,
	// then lower web index
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].score != pool[j].score {
			return pool[i].score > pool[j].score
		}
		ci, cj := pool[i].wi+pool[i].di, pool[j].wi+pool[j].di
		if ci != cj {
			return ci < cj
		}
		if pool[i].wi != pool[j].wi {
			return pool[i].wi < pool[j].wi
		}
		return pool[i].di < pool[j].di
	})

	// Step 2: Greedy one-to-one assignment
	webTo := make([]int, len(web))
	docTo := make([]int, len(doc))
	for i := range webTo {
		webTo[i] = -1
	}
	for i := range docTo {
		docTo[i] = -1
	}
	scores := make([]float64, len(web))

	for _, p := range pool {
		if webTo[p.wi] != -1 || docTo[p.di] != -1 {
			continue
		}
		webTo[p.wi] = p.di
		docTo[p.di] = p.wi
		scores[p.wi] = p.score
	}

	// Step 3: Spatial plausibility
	virtual := m.flagVirtual(webTo)

	// Step 4: Emit candidates, web side first, then leftover document
	// paragraphs
	candidates := make([]model.MatchCandidate, 0, len(web)+len(doc))
	for wi := range web {
		di := webTo[wi]
		if di < 0 {
			candidates = append(candidates, model.MatchCandidate{
				WebID:          web[wi].ID,
				Classification: model.ClassUnmatched,
			})
			continue
		}

		class := model.ClassMismatch
		if scores[wi] >= m.config.MatchThreshold {
			class = model.ClassMatch
		}
		candidates = append(candidates, model.MatchCandidate{
			WebID:          web[wi].ID,
			DocumentID:     doc[di].ID,
			Similarity:     scores[wi],
			Classification: class,
			Virtual:        virtual[wi],
		})
	}
	for di := range doc {
		if docTo[di] == -1 {
			candidates = append(candidates, model.MatchCandidate{
				DocumentID:     doc[di].ID,
				Classification: model.ClassUnmatched,
			})
		}
	}

	return candidates
}

// flagVirtual marks assigned pairs whose vertical ordering is inverted
// against most other assigned pairs. Text can repeat across a document;
// position cannot, so a lexically perfect pair in the wrong place gets
// flagged rather than silently accepted.
func (m *Matcher) flagVirtual(webTo []int) map[int]bool {
	var ws, ds []int
	for wi, di := range webTo {
		if di >= 0 {
			ws = append(ws, wi)
			ds = append(ds, di)
		}
	}

	flags := make(map[int]bool)
	if len(ws) < 3 {
		return flags
	}

	for i := range ws {
		inverted := 0
		for j := range ws {
			if i == j {
				continue
			}
			if (ws[i] < ws[j]) != (ds[i] < ds[j]) {
				inverted++
			}
		}
		if float64(inverted)/float64(len(ws)-1) > m.config.VirtualInversionRatio {
			flags[ws[i]] = true
		}
	}

	return flags
}
