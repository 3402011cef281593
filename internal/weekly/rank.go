package weekly

import "sort"

// Rank returns the top N items ordered by weighted score, then breadth of
// matched categories, then appearance count. The sort is stable so remaining
// ties keep input order, and the input slice is left untouched.
func Rank(items []AggregatedItem, topN int) []AggregatedItem {
	ranked := make([]AggregatedItem, len(items))
	copy(ranked, items)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.WeightedScore() != b.WeightedScore() {
			return a.WeightedScore() > b.WeightedScore()
		}
		if len(a.Categories) != len(b.Categories) {
			return len(a.Categories) > len(b.Categories)
		}
		return a.Appearances > b.Appearances
	})

	if topN >= 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}

	return ranked
}
