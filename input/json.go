package input

import (
	"encoding/json"
	"fmt"

	"github.com/isuzumi2025-cell/MEKIKI-sub002/model"
)

// jsonDocument is the canonical wire form of a rendering: one source,
// ordered pages, fragments with corner-form pixel boxes.
type jsonDocument struct {
	Source     string     `json:"source,omitempty"`
	Provenance string     `json:"provenance,omitempty"`
	DPI        float64    `json:"dpi"`
	Pages      []jsonPage `json:"pages"`
}

type jsonPage struct {
	Number    int            `json:"number"`
	Width     float64        `json:"width"`
	Height    float64        `json:"height"`
	Fragments []jsonFragment `json:"fragments"`
}

type jsonFragment struct {
	Text       string     `json:"text"`
	BBox       [4]float64 `json:"bbox"` // x1, y1, x2, y2
	Confidence float64    `json:"confidence"`
	FontSize   float64    `json:"font_size,omitempty"`
}

// DecodeJSON decodes the canonical fragment wire form into a PageSet
// for the given source. Records that cannot be used are dropped with a
// warning each; structural problems fail the whole decode.
func DecodeJSON(data []byte, source model.SourceKind) (model.PageSet, []model.Warning, error) {
	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.PageSet{}, nil, fmt.Errorf("decoding fragment payload: %w", err)
	}

	if doc.Source != "" && doc.Source != source.String() {
		return model.PageSet{}, nil, fmt.Errorf("payload declares source %q, expected %s", doc.Source, source)
	}

	provenance, err := parseProvenance(doc.Provenance)
	if err != nil {
		return model.PageSet{}, nil, err
	}

	set := model.PageSet{
		Source:     source,
		Provenance: provenance,
		SourceDPI:  doc.DPI,
	}

	var warnings []model.Warning
	for _, pg := range doc.Pages {
		page := model.PageFragments{
			Number: pg.Number,
			Width:  pg.Width,
			Height: pg.Height,
		}

		for _, fr := range pg.Fragments {
			frag, reason := buildFragment(fr, pg.Number)
			if reason != "" {
				warnings = append(warnings, decodeWarning(source, pg.Number, reason))
				continue
			}
			page.Fragments = append(page.Fragments, frag)
		}

		set.Pages = append(set.Pages, page)
	}

	if err := set.Validate(); err != nil {
		return model.PageSet{}, nil, err
	}
	return set, warnings, nil
}

// buildFragment converts one wire record, returning a drop reason for
// records that would poison downstream stages.
func buildFragment(fr jsonFragment, page int) (model.Fragment, string) {
	if fr.Text == "" {
		return model.Fragment{}, "dropped fragment with empty text"
	}

	box := model.NewBBox(fr.BBox[0], fr.BBox[1], fr.BBox[2], fr.BBox[3])
	if !box.IsValid() {
		return model.Fragment{}, fmt.Sprintf("dropped fragment %q with degenerate bbox [%g %g %g %g]",
			fr.Text, fr.BBox[0], fr.BBox[1], fr.BBox[2], fr.BBox[3])
	}

	if fr.Confidence < 0 || fr.Confidence > 1 {
		return model.Fragment{}, fmt.Sprintf("dropped fragment %q with confidence %g outside [0, 1]", fr.Text, fr.Confidence)
	}

	return model.Fragment{
		Text:       fr.Text,
		BBox:       box,
		Page:       page,
		Confidence: fr.Confidence,
		FontSize:   fr.FontSize,
	}, ""
}

func parseProvenance(name string) (model.Provenance, error) {
	switch name {
	case "", "text_layer":
		return model.ProvenanceTextLayer, nil
	case "optical":
		return model.ProvenanceOptical, nil
	default:
		return 0, fmt.Errorf("unknown provenance %q", name)
	}
}

func decodeWarning(source model.SourceKind, page int, message string) model.Warning {
	return model.Warning{
		Stage:   "decode",
		Source:  source,
		Page:    page,
		Message: message,
	}
}
