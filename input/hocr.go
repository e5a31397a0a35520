package input

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/isuzumi2025-cell/MEKIKI-sub002/model"
)

// hOCR encodes recognition output as HTML: ocr_page elements hold the
// page geometry in their title attribute, ocrx_word elements hold the
// recognized words. Grouping classes between the two (ocr_carea,
// ocr_par, ocr_line) are ignored; paragraph assembly is the
// clusterer's job, so words come out flat.

// DecodeHOCR decodes an hOCR export into an optical-provenance PageSet
// for the given source. Words that cannot be used are dropped with a
// warning each; pages without usable geometry fail the whole decode.
func DecodeHOCR(data []byte, source model.SourceKind) (model.PageSet, []model.Warning, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return model.PageSet{}, nil, fmt.Errorf("parsing hOCR: %w", err)
	}

	var pageNodes []*html.Node
	collectByClass(doc, "ocr_page", &pageNodes)
	if len(pageNodes) == 0 {
		return model.PageSet{}, nil, errors.New("hOCR payload has no ocr_page elements")
	}

	set := model.PageSet{
		Source:     source,
		Provenance: model.ProvenanceOptical,
		SourceDPI:  96,
	}

	var warnings []model.Warning
	resolved := false

	for i, pageNode := range pageNodes {
		number := i + 1
		props := parseTitleProps(attrValue(pageNode, "title"))

		box, ok := propBBox(props)
		if !ok || !box.IsValid() {
			return model.PageSet{}, nil, fmt.Errorf("hOCR page %d: missing or degenerate bbox", number)
		}

		page := model.PageFragments{
			Number: number,
			Width:  box.Width(),
			Height: box.Height(),
		}

		// Scanner exports record the capture resolution per page; the
		// first one wins since a source has a single native resolution.
		if !resolved {
			if res, ok := propFloat(props, "scan_res"); ok && res > 0 {
				set.SourceDPI = res
				resolved = true
			}
		}

		var wordNodes []*html.Node
		collectByClass(pageNode, "ocrx_word", &wordNodes)

		for _, wordNode := range wordNodes {
			frag, reason := buildWord(wordNode, number)
			if reason != "" {
				warnings = append(warnings, decodeWarning(source, number, reason))
				continue
			}
			page.Fragments = append(page.Fragments, frag)
		}

		set.Pages = append(set.Pages, page)
	}

	if !resolved {
		warnings = append(warnings, decodeWarning(source, 0, "capture resolution missing, assuming 96 DPI"))
	}

	if err := set.Validate(); err != nil {
		return model.PageSet{}, nil, err
	}
	return set, warnings, nil
}

// buildWord converts one ocrx_word element, returning a drop reason
// for words that would poison downstream stages.
func buildWord(n *html.Node, page int) (model.Fragment, string) {
	text := strings.TrimSpace(textContent(n))
	if text == "" {
		return model.Fragment{}, "dropped word with empty text"
	}

	props := parseTitleProps(attrValue(n, "title"))
	box, ok := propBBox(props)
	if !ok || !box.IsValid() {
		return model.Fragment{}, fmt.Sprintf("dropped word %q with unusable bbox", text)
	}

	frag := model.Fragment{
		Text:       text,
		BBox:       box,
		Page:       page,
		Confidence: 1,
	}

	if conf, ok := propFloat(props, "x_wconf"); ok {
		frag.Confidence = clamp01(conf / 100)
	}
	if size, ok := propFloat(props, "x_size"); ok && size > 0 {
		frag.FontSize = size
	} else {
		frag.FontSize = box.Height()
	}

	return frag, ""
}

// collectByClass gathers elements carrying the given class, in
// document order. Matching elements are not descended into again for
// the same class, so nested pages cannot double-report.
func collectByClass(n *html.Node, class string, out *[]*html.Node) {
	if n.Type == html.ElementNode && hasClass(n, class) {
		*out = append(*out, n)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectByClass(c, class, out)
	}
}

func hasClass(n *html.Node, class string) bool {
	for _, field := range strings.Fields(attrValue(n, "class")) {
		if field == class {
			return true
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// textContent extracts all text content from a node and its
// descendants.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// parseTitleProps splits an hOCR title attribute into its properties.
// The attribute packs semicolon-separated entries, each a name
// followed by space-separated values, e.g.
// "bbox 100 200 300 240; x_wconf 95".
func parseTitleProps(title string) map[string][]string {
	props := make(map[string][]string)
	for _, entry := range strings.Split(title, ";") {
		fields := strings.Fields(entry)
		if len(fields) < 2 {
			continue
		}
		props[fields[0]] = fields[1:]
	}
	return props
}

func propBBox(props map[string][]string) (model.BBox, bool) {
	vals, ok := props["bbox"]
	if !ok || len(vals) != 4 {
		return model.BBox{}, false
	}

	var coords [4]float64
	for i, v := range vals {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return model.BBox{}, false
		}
		coords[i] = f
	}
	return model.NewBBox(coords[0], coords[1], coords[2], coords[3]), true
}

func propFloat(props map[string][]string, key string) (float64, bool) {
	vals, ok := props[key]
	if !ok || len(vals) == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(vals[0], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
