package input

import (
	"strings"
	"testing"

	"github.com/isuzumi2025-cell/MEKIKI-sub002/model"
)

const scanExport = `<!DOCTYPE html>
<html>
<head><title></title></head>
<body>
<div class='ocr_page' id='page_1' title='image "p1.png"; bbox 0 0 2480 3508; ppageno 0; scan_res 300 300'>
 <div class='ocr_carea' title='bbox 200 300 1200 500'>
  <p class='ocr_par' title='bbox 200 300 1200 500'>
   <span class='ocr_line' title='bbox 200 300 790 360; x_size 42'>
    <span class='ocrx_word' title='bbox 200 300 480 360; x_wconf 96; x_size 42'>Hello</span>
    <span class='ocrx_word' title='bbox 500 300 790 360; x_wconf 93; x_size 42'>World</span>
   </span>
  </p>
 </div>
</div>
<div class='ocr_page' id='page_2' title='bbox 0 0 2480 3508; ppageno 1'>
 <span class='ocrx_word' title='bbox 220 400 600 470'>Appendix</span>
 <span class='ocrx_word' title='x_wconf 51'>ghost</span>
 <span class='ocrx_word' title='bbox 0 0 10 10'>  </span>
</div>
</body>
</html>`

func TestDecodeHOCRBasic(t *testing.T) {
	set, _, err := DecodeHOCR([]byte(scanExport), model.SourceDocument)
	if err != nil {
		t.Fatalf("DecodeHOCR() error = %v", err)
	}

	if set.Source != model.SourceDocument {
		t.Errorf("Source = %v, want document", set.Source)
	}
	if set.Provenance != model.ProvenanceOptical {
		t.Errorf("Provenance = %v, want optical", set.Provenance)
	}
	if set.SourceDPI != 300 {
		t.Errorf("SourceDPI = %g, want 300 from scan_res", set.SourceDPI)
	}

	if len(set.Pages) != 2 {
		t.Fatalf("Expected 2 pages, got %d", len(set.Pages))
	}
	if set.Pages[0].Width != 2480 || set.Pages[0].Height != 3508 {
		t.Errorf("Page 1 dimensions = %gx%g, want 2480x3508", set.Pages[0].Width, set.Pages[0].Height)
	}
}

func TestDecodeHOCRFlattensGroupingLevels(t *testing.T) {
	set, _, err := DecodeHOCR([]byte(scanExport), model.SourceDocument)
	if err != nil {
		t.Fatalf("DecodeHOCR() error = %v", err)
	}

	// Words nested under carea/par/line come out as flat fragments
	page1 := set.Pages[0]
	if len(page1.Fragments) != 2 {
		t.Fatalf("Expected 2 fragments on page 1, got %d", len(page1.Fragments))
	}

	hello := page1.Fragments[0]
	if hello.Text != "Hello" {
		t.Errorf("Text = %q, want Hello", hello.Text)
	}
	if hello.BBox != model.NewBBox(200, 300, 480, 360) {
		t.Errorf("BBox = %+v", hello.BBox)
	}
	if hello.Page != 1 {
		t.Errorf("Page = %d, want 1", hello.Page)
	}
	if hello.Confidence != 0.96 {
		t.Errorf("Confidence = %g, want 0.96", hello.Confidence)
	}
	if hello.FontSize != 42 {
		t.Errorf("FontSize = %g, want 42 from x_size", hello.FontSize)
	}
}

func TestDecodeHOCRWordDefaults(t *testing.T) {
	set, warnings, err := DecodeHOCR([]byte(scanExport), model.SourceDocument)
	if err != nil {
		t.Fatalf("DecodeHOCR() error = %v", err)
	}

	page2 := set.Pages[1]
	if len(page2.Fragments) != 1 {
		t.Fatalf("Expected 1 surviving fragment on page 2, got %d", len(page2.Fragments))
	}

	appendix := page2.Fragments[0]
	if appendix.Text != "Appendix" {
		t.Errorf("Text = %q, want Appendix", appendix.Text)
	}
	// No x_wconf means full confidence, no x_size means box height
	if appendix.Confidence != 1 {
		t.Errorf("Confidence = %g, want 1", appendix.Confidence)
	}
	if appendix.FontSize != 70 {
		t.Errorf("FontSize = %g, want 70 from box height", appendix.FontSize)
	}

	// The bboxless word and the empty word each produce a warning
	if len(warnings) != 2 {
		t.Fatalf("Expected 2 warnings, got %d: %v", len(warnings), warnings)
	}
	if !strings.Contains(warnings[0].Message, "ghost") {
		t.Errorf("Warning = %q, want dropped word named", warnings[0].Message)
	}
	for _, w := range warnings {
		if w.Page != 2 {
			t.Errorf("Warning page = %d, want 2", w.Page)
		}
	}
}

func TestDecodeHOCRNoPages(t *testing.T) {
	plain := `<!DOCTYPE html><html><body><p>Just a web page.</p></body></html>`

	if _, _, err := DecodeHOCR([]byte(plain), model.SourceDocument); err == nil {
		t.Error("Expected error for markup without ocr_page elements")
	}
}

func TestDecodeHOCRMissingResolution(t *testing.T) {
	export := `<html><body>
	<div class='ocr_page' title='bbox 0 0 1280 2000'>
	 <span class='ocrx_word' title='bbox 10 10 90 34; x_wconf 90'>Solo</span>
	</div>
	</body></html>`

	set, warnings, err := DecodeHOCR([]byte(export), model.SourceWeb)
	if err != nil {
		t.Fatalf("DecodeHOCR() error = %v", err)
	}
	if set.SourceDPI != 96 {
		t.Errorf("SourceDPI = %g, want fallback 96", set.SourceDPI)
	}

	found := false
	for _, w := range warnings {
		if strings.Contains(w.Message, "96") {
			found = true
		}
	}
	if !found {
		t.Error("Expected a warning about the assumed resolution")
	}
}

func TestDecodeHOCRDegeneratePage(t *testing.T) {
	export := `<html><body><div class='ocr_page' title='bbox 0 0 0 0'></div></body></html>`

	if _, _, err := DecodeHOCR([]byte(export), model.SourceWeb); err == nil {
		t.Error("Expected error for page with degenerate bbox")
	}
}

func TestParseTitleProps(t *testing.T) {
	props := parseTitleProps(`image "p1.png"; bbox 100 200 300 240; x_wconf 95`)

	if got := props["bbox"]; len(got) != 4 || got[0] != "100" || got[3] != "240" {
		t.Errorf("bbox values = %v", got)
	}
	if got := props["x_wconf"]; len(got) != 1 || got[0] != "95" {
		t.Errorf("x_wconf values = %v", got)
	}
	if _, ok := props["missing"]; ok {
		t.Error("Expected missing key to be absent")
	}

	if box, ok := propBBox(props); !ok || box != model.NewBBox(100, 200, 300, 240) {
		t.Errorf("propBBox() = %+v, %v", box, ok)
	}

	if _, ok := propBBox(parseTitleProps("bbox 1 2 3")); ok {
		t.Error("Expected short bbox to be rejected")
	}
	if _, ok := propBBox(parseTitleProps("bbox a b c d")); ok {
		t.Error("Expected non-numeric bbox to be rejected")
	}
}
