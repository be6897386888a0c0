package artifacts

import "sort"

type groupKey struct {
	category Category
	safety   Safety
	pattern  string
}

// Summarize groups artifacts by (category, safety, pattern) and returns the
// groups in pattern-table order. Patterns missing from the table sort last,
// by category then name. Items inside a group are sorted by path.
func Summarize(items []Artifact) []Summary {
	grouped := make(map[groupKey][]Artifact)
	var order []groupKey
	for _, item := range items {
		key := groupKey{item.Category, item.Safety, item.Pattern}
		if _, ok := grouped[key]; !ok {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], item)
	}

	summaries := make([]Summary, 0, len(order))
	for _, key := range order {
		members := grouped[key]
		sort.Slice(members, func(i, j int) bool { return members[i].Path < members[j].Path })

		var total int64
		for _, m := range members {
			if m.SizeBytes != nil {
				total += *m.SizeBytes
			}
		}
		summaries = append(summaries, Summary{
			Category:       key.category,
			Safety:         key.safety,
			Count:          len(members),
			TotalSizeBytes: total,
			Items:          members,
			Pattern:        key.pattern,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		pi, pj := patternPosition(summaries[i].Pattern), patternPosition(summaries[j].Pattern)
		if pi != pj {
			return pi < pj
		}
		if summaries[i].Category != summaries[j].Category {
			return summaries[i].Category.String() < summaries[j].Category.String()
		}
		return summaries[i].Pattern < summaries[j].Pattern
	})
	return summaries
}

// SummarizeWithEmpty is Summarize plus a zero-count placeholder for every
// known pattern that had no matches, so callers can show "0 found" rows in
// the full fixed order.
func SummarizeWithEmpty(items []Artifact) []Summary {
	byPattern := make(map[string]Summary)
	for _, s := range Summarize(items) {
		byPattern[s.Pattern] = s
	}

	summaries := make([]Summary, 0, len(patternTable))
	for _, p := range patternTable {
		label := p.label()
		if existing, ok := byPattern[label]; ok {
			summaries = append(summaries, existing)
			continue
		}
		summaries = append(summaries, Summary{
			Category: p.category,
			Safety:   p.safety,
			Items:    []Artifact{},
			Pattern:  label,
		})
	}
	return summaries
}

// Flatten returns every artifact held by the given groups.
func Flatten(groups []Summary) []Artifact {
	var items []Artifact
	for _, g := range groups {
		items = append(items, g.Items...)
	}
	return items
}

// TotalCount sums Count over groups.
func TotalCount(groups []Summary) int {
	n := 0
	for _, g := range groups {
		n += g.Count
	}
	return n
}

// TotalSize sums TotalSizeBytes over groups.
func TotalSize(groups []Summary) int64 {
	var n int64
	for _, g := range groups {
		n += g.TotalSizeBytes
	}
	return n
}
