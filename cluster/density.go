package cluster

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// densityPass absorbs isolated provisional paragraphs into their
// nearest substantial neighbor. Isolation is judged against the page's
// own area distribution, so dense and sparse pages self-calibrate.
func (c *Clusterer) densityPass(groups []Group) []Group {
	if len(groups) <= 1 {
		return groups
	}

	cutoff := areaCutoff(groups, c.config.AreaPercentile)

	isolated := make([]bool, len(groups))
	hasHost := false
	for i := range groups {
		isolated[i] = c.isIsolated(groups[i], cutoff)
		if !isolated[i] {
			hasHost = true
		}
	}
	if !hasHost {
		return groups
	}

	// Assign each isolated group to its nearest host within the radius
	absorbedBy := make([]int, len(groups))
	for i := range absorbedBy {
		absorbedBy[i] = -1
	}
	for i := range groups {
		if isolated[i] {
			absorbedBy[i] = c.nearestHost(groups, isolated, i)
		}
	}

	hosted := make(map[int][]int)
	for i, host := range absorbedBy {
		if host >= 0 {
			hosted[host] = append(hosted[host], i)
		}
	}

	result := make([]Group, 0, len(groups))
	for i := range groups {
		if absorbedBy[i] >= 0 {
			continue
		}
		g := groups[i]
		for _, k := range hosted[i] {
			g = mergeGroups(g, groups[k])
		}
		result = append(result, g)
	}

	return result
}

// nearestHost returns the index of the closest non-isolated group
// within the absorption radius, or -1 when none qualifies
func (c *Clusterer) nearestHost(groups []Group, isolated []bool, i int) int {
	best := -1
	bestDist := 0.0

	for j := range groups {
		if j == i || isolated[j] {
			continue
		}
		d := groups[i].BBox.EdgeDistance(groups[j].BBox)
		if best == -1 || d < bestDist {
			best = j
			bestDist = d
		}
	}

	if best >= 0 && bestDist <= c.config.AbsorptionRadiusPx {
		return best
	}
	return -1
}

// isIsolated reports whether a group falls below the page's area cutoff
// or carries too little text to stand on its own
func (c *Clusterer) isIsolated(g Group, cutoff float64) bool {
	if utf8.RuneCountInString(strings.TrimSpace(g.Text)) < c.config.MinTextLength {
		return true
	}
	return g.BBox.Area() < cutoff
}

// areaCutoff returns the area at the configured percentile of the
// page's sorted area distribution
func areaCutoff(groups []Group, percentile float64) float64 {
	areas := make([]float64, len(groups))
	for i, g := range groups {
		areas[i] = g.BBox.Area()
	}
	sort.Float64s(areas)

	idx := int(float64(len(areas)) * percentile)
	if idx >= len(areas) {
		idx = len(areas) - 1
	}
	return areas[idx]
}
