package cluster

import (
	"sort"
	"strings"

	"github.com/isuzumi2025-cell/MEKIKI-sub002/model"
)

// Group represents a provisional paragraph: a cluster of fragments on
// one page, before normalization and identifier assignment. Coordinates
// remain page-local.
type Group struct {
	// Text is the assembled text in reading order
	Text string

	// BBox is the union of all member bounding boxes
	BBox model.BBox

	// Fragments are the member fragments in reading order
	Fragments []model.Fragment

	// Confidence is the mean member confidence
	Confidence float64

	// FontSize is the largest member font size estimate
	FontSize float64
}

// FragmentCount returns the number of member fragments
func (g *Group) FragmentCount() int {
	if g == nil {
		return 0
	}
	return len(g.Fragments)
}

// finalizeGroup sorts the members into reading order and computes the
// group's box, text, confidence, and font size
func finalizeGroup(members []model.Fragment) Group {
	sortFragmentsInReadingOrder(members)

	g := Group{
		Fragments: members,
		BBox:      members[0].BBox,
	}

	confidence := 0.0
	for _, f := range members {
		g.BBox = g.BBox.Union(f.BBox)
		confidence += f.Confidence
		if est := fontOrHeight(f); est > g.FontSize {
			g.FontSize = est
		}
	}
	g.Confidence = confidence / float64(len(members))
	g.Text = assembleText(members)

	return g
}

// mergeGroups combines two groups and re-finalizes the result
func mergeGroups(a, b Group) Group {
	members := make([]model.Fragment, 0, len(a.Fragments)+len(b.Fragments))
	members = append(members, a.Fragments...)
	members = append(members, b.Fragments...)
	return finalizeGroup(members)
}

// sortFragmentsInReadingOrder orders fragments top-to-bottom, with
// fragments on the same line ordered left-to-right
func sortFragmentsInReadingOrder(fragments []model.Fragment) {
	sort.Slice(fragments, func(i, j int) bool {
		yDiff := fragments[i].BBox.Y1 - fragments[j].BBox.Y1
		tolerance := min(fragments[i].BBox.Height(), fragments[j].BBox.Height()) * 0.5
		if absFloat64(yDiff) > tolerance {
			return yDiff < 0
		}
		return fragments[i].BBox.X1 < fragments[j].BBox.X1
	})
}

// sortGroupsInReadingOrder orders groups top-to-bottom, left-to-right
func sortGroupsInReadingOrder(groups []Group) {
	sort.Slice(groups, func(i, j int) bool {
		yDiff := groups[i].BBox.Y1 - groups[j].BBox.Y1
		if absFloat64(yDiff) > 10 { // Tolerance for "same row"
			return yDiff < 0
		}
		return groups[i].BBox.X1 < groups[j].BBox.X1
	})
}

// assembleText joins fragment text in reading order. Fragments on the
// same line are separated by a space when the gap is wide enough;
// line changes become newlines.
func assembleText(fragments []model.Fragment) string {
	var sb strings.Builder

	for i, frag := range fragments {
		if i > 0 {
			prev := fragments[i-1]
			if prev.BBox.VerticalOverlaps(frag.BBox) {
				gap := frag.BBox.X1 - prev.BBox.X2
				if gap > frag.BBox.Height()*0.1 {
					sb.WriteString(" ")
				}
			} else {
				sb.WriteString("\n")
			}
		}
		sb.WriteString(frag.Text)
	}

	return sb.String()
}
