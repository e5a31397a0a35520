package input

import (
	"strings"
	"testing"

	"github.com/isuzumi2025-cell/MEKIKI-sub002/model"
)

const webPayload = `{
	"source": "web",
	"provenance": "text_layer",
	"dpi": 96,
	"pages": [
		{
			"number": 1,
			"width": 1280,
			"height": 2000,
			"fragments": [
				{"text": "Hello", "bbox": [100, 200, 180, 224], "confidence": 1.0, "font_size": 16},
				{"text": "World", "bbox": [188, 200, 270, 224], "confidence": 0.98}
			]
		},
		{
			"number": 2,
			"width": 1280,
			"height": 2000,
			"fragments": []
		}
	]
}`

func TestDecodeJSONBasic(t *testing.T) {
	set, warnings, err := DecodeJSON([]byte(webPayload), model.SourceWeb)
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", warnings)
	}

	if set.Source != model.SourceWeb {
		t.Errorf("Source = %v, want web", set.Source)
	}
	if set.Provenance != model.ProvenanceTextLayer {
		t.Errorf("Provenance = %v, want text_layer", set.Provenance)
	}
	if set.SourceDPI != 96 {
		t.Errorf("SourceDPI = %g, want 96", set.SourceDPI)
	}
	if len(set.Pages) != 2 {
		t.Fatalf("Expected 2 pages, got %d", len(set.Pages))
	}
	if set.Pages[0].Width != 1280 || set.Pages[0].Height != 2000 {
		t.Errorf("Page 1 dimensions = %gx%g", set.Pages[0].Width, set.Pages[0].Height)
	}
	if set.FragmentCount() != 2 {
		t.Fatalf("Expected 2 fragments, got %d", set.FragmentCount())
	}

	first := set.Pages[0].Fragments[0]
	if first.Text != "Hello" {
		t.Errorf("Text = %q, want Hello", first.Text)
	}
	if first.BBox != model.NewBBox(100, 200, 180, 224) {
		t.Errorf("BBox = %+v", first.BBox)
	}
	if first.Page != 1 {
		t.Errorf("Page = %d, want 1", first.Page)
	}
	if first.FontSize != 16 {
		t.Errorf("FontSize = %g, want 16", first.FontSize)
	}
}

func TestDecodeJSONDropsMalformedRecords(t *testing.T) {
	payload := `{
		"dpi": 96,
		"pages": [
			{
				"number": 1,
				"width": 1280,
				"height": 2000,
				"fragments": [
					{"text": "keep", "bbox": [10, 10, 60, 30], "confidence": 0.9},
					{"text": "", "bbox": [10, 40, 60, 60], "confidence": 0.9},
					{"text": "inverted", "bbox": [300, 200, 100, 224], "confidence": 0.9},
					{"text": "overconfident", "bbox": [10, 70, 60, 90], "confidence": 1.5}
				]
			}
		]
	}`

	set, warnings, err := DecodeJSON([]byte(payload), model.SourceDocument)
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}

	if set.FragmentCount() != 1 {
		t.Errorf("Expected 1 surviving fragment, got %d", set.FragmentCount())
	}
	if set.Pages[0].Fragments[0].Text != "keep" {
		t.Errorf("Survivor = %q, want keep", set.Pages[0].Fragments[0].Text)
	}

	if len(warnings) != 3 {
		t.Fatalf("Expected 3 warnings, got %d: %v", len(warnings), warnings)
	}
	for _, w := range warnings {
		if w.Stage != "decode" {
			t.Errorf("Warning stage = %q, want decode", w.Stage)
		}
		if w.Source != model.SourceDocument {
			t.Errorf("Warning source = %v, want document", w.Source)
		}
		if w.Page != 1 {
			t.Errorf("Warning page = %d, want 1", w.Page)
		}
	}
	if !strings.Contains(warnings[1].Message, "inverted") {
		t.Errorf("Warning message = %q, want offending text named", warnings[1].Message)
	}
}

func TestDecodeJSONSourceMismatch(t *testing.T) {
	payload := `{"source": "document", "dpi": 96, "pages": [{"number": 1, "width": 100, "height": 100, "fragments": []}]}`

	if _, _, err := DecodeJSON([]byte(payload), model.SourceWeb); err == nil {
		t.Error("Expected error for declared source mismatch")
	}
}

func TestDecodeJSONStructuralErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"broken json", `{"pages": [`},
		{"wrong field type", `{"dpi": 96, "pages": [{"number": 1, "width": 100, "height": 100, "fragments": [{"text": "x", "bbox": "wide"}]}]}`},
		{"zero dpi", `{"pages": [{"number": 1, "width": 100, "height": 100, "fragments": []}]}`},
		{"pages out of order", `{"dpi": 96, "pages": [{"number": 2, "width": 100, "height": 100, "fragments": []}]}`},
		{"zero page size", `{"dpi": 96, "pages": [{"number": 1, "width": 0, "height": 100, "fragments": []}]}`},
		{"unknown provenance", `{"provenance": "psychic", "dpi": 96, "pages": [{"number": 1, "width": 100, "height": 100, "fragments": []}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := DecodeJSON([]byte(tt.payload), model.SourceWeb); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestDecodeJSONShortBBoxDropped(t *testing.T) {
	// A three-element bbox leaves the fourth coordinate zero, which
	// cannot form a valid box below the first row
	payload := `{
		"dpi": 96,
		"pages": [
			{
				"number": 1,
				"width": 100,
				"height": 100,
				"fragments": [{"text": "short", "bbox": [10, 20, 30], "confidence": 0.5}]
			}
		]
	}`

	set, warnings, err := DecodeJSON([]byte(payload), model.SourceWeb)
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	if set.FragmentCount() != 0 {
		t.Errorf("Expected fragment dropped, got %d", set.FragmentCount())
	}
	if len(warnings) != 1 {
		t.Errorf("Expected 1 warning, got %d", len(warnings))
	}
}
